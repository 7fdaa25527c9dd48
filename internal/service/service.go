package service

import (
	"context"
	"crypto/rand"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"konterhp/backend/internal/domain"
	"konterhp/backend/internal/store"
	"konterhp/backend/internal/suggestion"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

type Service struct {
	repo              store.Repository
	suggester         *suggestion.Engine
	lowStockThreshold int
}

func New(repo store.Repository, suggester *suggestion.Engine, lowStockThreshold int) *Service {
	if lowStockThreshold < 1 {
		lowStockThreshold = 5
	}

	return &Service{
		repo:              repo,
		suggester:         suggester,
		lowStockThreshold: lowStockThreshold,
	}
}

func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Service) CreateCategory(ctx context.Context, req domain.CategoryCreateRequest) (domain.Category, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return domain.Category{}, store.ErrInvalidInput
	}

	created, err := s.repo.CreateCategory(ctx, domain.Category{Name: req.Name})
	if err != nil {
		return domain.Category{}, err
	}

	s.logAudit(ctx, "category_create", "category", created.ID, created.Name)
	return *created, nil
}

func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "superuser" {
		return fmt.Errorf("superuser role required")
	}
	if strings.TrimSpace(id) == "" {
		return store.ErrInvalidInput
	}

	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return err
	}

	s.logAudit(ctx, "category_delete", "category", id, "")
	return nil
}

func (s *Service) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	if filter.Limit < 1 {
		filter.Limit = 100
	}
	return s.repo.ListProducts(ctx, filter)
}

func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Product{}, store.ErrInvalidInput
	}
	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	return *product, nil
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.CategoryID = strings.TrimSpace(req.CategoryID)
	if req.Condition == "" {
		req.Condition = domain.ConditionNew
	}

	if req.Name == "" || req.CategoryID == "" {
		return domain.Product{}, store.ErrInvalidInput
	}
	if req.Condition != domain.ConditionNew && req.Condition != domain.ConditionUsed {
		return domain.Product{}, store.ErrInvalidInput
	}
	if req.PurchasePriceCents < 0 || req.SellingPriceCents < 1 {
		return domain.Product{}, store.ErrInvalidInput
	}
	if req.Quantity < 0 || req.WarrantyDays < 0 {
		return domain.Product{}, store.ErrInvalidInput
	}

	product := domain.Product{
		CategoryID:         req.CategoryID,
		Name:               req.Name,
		Description:        strings.TrimSpace(req.Description),
		SerialNumber:       strings.TrimSpace(req.SerialNumber),
		Condition:          req.Condition,
		SupplierName:       strings.TrimSpace(req.SupplierName),
		SupplierPhone:      strings.TrimSpace(req.SupplierPhone),
		PurchasePriceCents: req.PurchasePriceCents,
		SellingPriceCents:  req.SellingPriceCents,
		Quantity:           req.Quantity,
		PTAApproved:        req.PTAApproved,
		WarrantyDays:       req.WarrantyDays,
	}

	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return domain.Product{}, err
	}

	s.logAudit(ctx, "product_create", "product", created.ID, fmt.Sprintf("name=%s,price=%d,qty=%d", created.Name, created.SellingPriceCents, created.Quantity))
	return *created, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id string, req domain.ProductUpdateRequest) (domain.Product, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Product{}, store.ErrInvalidInput
	}

	updated, err := s.repo.UpdateProduct(ctx, id, req)
	if err != nil {
		return domain.Product{}, err
	}

	s.logAudit(ctx, "product_update", "product", updated.ID, updated.Name)
	return *updated, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "superuser" {
		return fmt.Errorf("superuser role required")
	}
	if strings.TrimSpace(id) == "" {
		return store.ErrInvalidInput
	}

	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return err
	}

	s.logAudit(ctx, "product_delete", "product", id, "")
	return nil
}

func (s *Service) AdjustStock(ctx context.Context, id string, req domain.StockAdjustRequest) (domain.Product, error) {
	if strings.TrimSpace(id) == "" || req.Delta == 0 {
		return domain.Product{}, store.ErrInvalidInput
	}

	// Manual corrections may not drive quantity below zero; sales are the
	// only path allowed to do that. The store re-checks the floor inside
	// the atomic update, this read just rejects early.
	current, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	if current.Quantity+req.Delta < 0 {
		return domain.Product{}, store.ErrInvalidInput
	}

	adjusted, err := s.repo.AdjustProductQuantity(ctx, id, req.Delta)
	if err != nil {
		return domain.Product{}, err
	}

	s.logAudit(ctx, "stock_adjust", "product", id, fmt.Sprintf("delta=%d,reason=%s", req.Delta, strings.TrimSpace(req.Reason)))
	return *adjusted, nil
}

func (s *Service) LowStockProducts(ctx context.Context, limit int) ([]domain.Product, error) {
	if limit < 1 {
		limit = 50
	}
	return s.repo.ListLowStockProducts(ctx, s.lowStockThreshold, limit)
}

func (s *Service) CreateSale(ctx context.Context, req domain.SaleCreateRequest) (domain.SaleResponse, error) {
	if req.PaymentType == "" {
		req.PaymentType = domain.PaymentCash
	}
	if !isSupportedPaymentType(req.PaymentType) {
		return domain.SaleResponse{}, store.ErrInvalidInput
	}
	if len(req.Items) == 0 {
		return domain.SaleResponse{}, store.ErrInvalidInput
	}
	for _, line := range req.Items {
		if strings.TrimSpace(line.ProductID) == "" || line.Quantity < 1 {
			return domain.SaleResponse{}, store.ErrInvalidInput
		}
		if line.UnitPriceCents < 0 || line.LineTotalCents < 0 || line.PurchasePriceCents < 0 {
			return domain.SaleResponse{}, store.ErrInvalidInput
		}
	}

	productIDs := make([]string, 0, len(req.Items))
	for _, line := range req.Items {
		productIDs = append(productIDs, line.ProductID)
	}
	products, err := s.repo.GetProductsByIDs(ctx, productIDs)
	if err != nil {
		return domain.SaleResponse{}, err
	}
	for _, line := range req.Items {
		if _, exists := products[line.ProductID]; !exists {
			return domain.SaleResponse{}, store.ErrInvalidInput
		}
	}

	// Line totals and profits are caller-supplied snapshots of the prices
	// quoted at the counter; they are summed, never recomputed.
	subtotal := int64(0)
	profitSum := int64(0)
	for _, line := range req.Items {
		subtotal += line.LineTotalCents
		profitSum += line.ProfitCents
	}

	discountCents, err := resolveDiscount(subtotal, req.DiscountType, req.DiscountAmount)
	if err != nil {
		return domain.SaleResponse{}, err
	}

	netTotal := subtotal - discountCents
	// A discount comes straight out of profit, full amount, not prorated
	// across lines.
	totalProfit := profitSum - discountCents

	actor, _ := ActorFromContext(ctx)
	now := time.Now().UTC()

	items := make([]domain.SaleItem, 0, len(req.Items))
	for _, line := range req.Items {
		name := strings.TrimSpace(line.ProductName)
		if name == "" {
			name = products[line.ProductID].Name
		}
		items = append(items, domain.SaleItem{
			ProductID:          line.ProductID,
			ProductName:        name,
			Quantity:           line.Quantity,
			UnitPriceCents:     line.UnitPriceCents,
			PurchasePriceCents: line.PurchasePriceCents,
			LineTotalCents:     line.LineTotalCents,
			ProfitCents:        line.ProfitCents,
			SerialIMEI:         strings.TrimSpace(line.SerialIMEI),
			WarrantyDays:       line.WarrantyDays,
			Remarks:            strings.TrimSpace(line.Remarks),
		})
	}

	sale := domain.Sale{
		InvoiceNumber:    generateInvoiceNumber(now),
		CustomerName:     strings.TrimSpace(req.CustomerName),
		CustomerPhone:    strings.TrimSpace(req.CustomerPhone),
		PaymentType:      req.PaymentType,
		SubtotalCents:    subtotal,
		DiscountType:     req.DiscountType,
		DiscountAmount:   req.DiscountAmount,
		DiscountCents:    discountCents,
		NetTotalCents:    netTotal,
		TotalProfitCents: totalProfit,
		CreatedBy:        actor.Username,
		SaleDate:         now,
		Items:            items,
	}

	created, err := s.repo.CreateSale(ctx, sale)
	if err != nil {
		return domain.SaleResponse{}, err
	}

	s.logAudit(ctx, "sale_create", "sale", created.ID, fmt.Sprintf("invoice=%s,net=%d", created.InvoiceNumber, created.NetTotalCents))

	return domain.SaleResponse{
		SaleID:           created.ID,
		InvoiceNumber:    created.InvoiceNumber,
		SubtotalCents:    created.SubtotalCents,
		DiscountCents:    created.DiscountCents,
		NetTotalCents:    created.NetTotalCents,
		TotalProfitCents: created.TotalProfitCents,
		SaleDate:         created.SaleDate,
	}, nil
}

func (s *Service) GetSale(ctx context.Context, id string) (domain.Sale, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Sale{}, store.ErrInvalidInput
	}
	sale, err := s.repo.GetSaleByID(ctx, id)
	if err != nil {
		return domain.Sale{}, err
	}
	return *sale, nil
}

func (s *Service) GetSaleByInvoice(ctx context.Context, invoiceNumber string) (domain.Sale, error) {
	if strings.TrimSpace(invoiceNumber) == "" {
		return domain.Sale{}, store.ErrInvalidInput
	}
	sale, err := s.repo.GetSaleByInvoice(ctx, invoiceNumber)
	if err != nil {
		return domain.Sale{}, err
	}
	return *sale, nil
}

func (s *Service) SearchSales(ctx context.Context, req domain.SaleSearchRequest) ([]domain.Sale, error) {
	filter, err := buildSaleFilter(req)
	if err != nil {
		return nil, err
	}
	if filter.Limit < 1 {
		filter.Limit = 100
	}
	return s.repo.SearchSales(ctx, filter)
}

func (s *Service) ProcessReturn(ctx context.Context, req domain.ReturnCreateRequest) (domain.ReturnResponse, error) {
	if strings.TrimSpace(req.SaleID) == "" || strings.TrimSpace(req.SaleItemID) == "" {
		return domain.ReturnResponse{}, store.ErrInvalidInput
	}
	if req.Quantity < 1 {
		return domain.ReturnResponse{}, store.ErrInvalidInput
	}

	actor, _ := ActorFromContext(ctx)

	created, err := s.repo.CreateReturn(ctx, domain.Return{
		SaleID:     req.SaleID,
		SaleItemID: req.SaleItemID,
		ProductID:  strings.TrimSpace(req.ProductID),
		Quantity:   req.Quantity,
		Reason:     strings.TrimSpace(req.Reason),
		CreatedBy:  actor.Username,
	})
	if err != nil {
		return domain.ReturnResponse{}, err
	}

	s.logAudit(ctx, "return_create", "return", created.ID, fmt.Sprintf("sale=%s,qty=%d,amount=%d", created.SaleID, created.Quantity, created.ReturnAmountCents))

	resp := domain.ReturnResponse{
		ReturnID:          created.ID,
		ReturnAmountCents: created.ReturnAmountCents,
		ReturnProfitCents: created.ReturnProfitCents,
	}

	sale, err := s.repo.GetSaleByID(ctx, created.SaleID)
	if err != nil {
		log.Printf("[service] WARN: return %s committed but sale refetch failed: %v", created.ID, err)
		return resp, nil
	}
	for _, item := range sale.Items {
		if item.ID == created.SaleItemID {
			resp.ReturnedQuantity = item.ReturnedQuantity
			resp.RemainingReturnable = item.Quantity - item.ReturnedQuantity
			break
		}
	}

	return resp, nil
}

func (s *Service) ListReturns(ctx context.Context, fromDate string, toDate string, limit int) ([]domain.Return, error) {
	from, to, err := parseDateWindow(fromDate, toDate)
	if err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = 100
	}
	return s.repo.ListReturns(ctx, domain.ReturnFilter{From: from, To: to, Limit: limit})
}

func (s *Service) CreateExpense(ctx context.Context, req domain.ExpenseCreateRequest) (domain.Expense, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "superuser" {
		return domain.Expense{}, fmt.Errorf("superuser role required")
	}

	req.Description = strings.TrimSpace(req.Description)
	if req.Description == "" || req.AmountCents < 1 {
		return domain.Expense{}, store.ErrInvalidInput
	}

	expenseDate := time.Now().UTC()
	if strings.TrimSpace(req.ExpenseDate) != "" {
		parsed, err := time.Parse("2006-01-02", req.ExpenseDate)
		if err != nil {
			return domain.Expense{}, store.ErrInvalidInput
		}
		expenseDate = parsed.UTC()
	}

	created, err := s.repo.CreateExpense(ctx, domain.Expense{
		Description: req.Description,
		AmountCents: req.AmountCents,
		ExpenseDate: expenseDate,
		CreatedBy:   actor.Username,
	})
	if err != nil {
		return domain.Expense{}, err
	}

	s.logAudit(ctx, "expense_create", "expense", created.ID, fmt.Sprintf("amount=%d", created.AmountCents))
	return *created, nil
}

func (s *Service) ListExpenses(ctx context.Context, fromDate string, toDate string, limit int) ([]domain.Expense, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "superuser" {
		return nil, fmt.Errorf("superuser role required")
	}

	from, to, err := parseDateWindow(fromDate, toDate)
	if err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = 100
	}
	return s.repo.ListExpenses(ctx, from, to, limit)
}

func (s *Service) DeleteExpense(ctx context.Context, id string) error {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "superuser" {
		return fmt.Errorf("superuser role required")
	}
	if strings.TrimSpace(id) == "" {
		return store.ErrInvalidInput
	}

	if err := s.repo.DeleteExpense(ctx, id); err != nil {
		return err
	}

	s.logAudit(ctx, "expense_delete", "expense", id, "")
	return nil
}

func (s *Service) Dashboard(ctx context.Context, fromDate string, toDate string) (domain.DashboardStats, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "superuser" {
		return domain.DashboardStats{}, fmt.Errorf("superuser role required")
	}

	var from, to time.Time
	if strings.TrimSpace(fromDate) == "" && strings.TrimSpace(toDate) == "" {
		now := time.Now().UTC()
		from = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		to = from.Add(24 * time.Hour)
	} else {
		var err error
		from, to, err = parseDateWindow(fromDate, toDate)
		if err != nil {
			return domain.DashboardStats{}, err
		}
	}

	return s.repo.GetDashboardStats(ctx, from, to, s.lowStockThreshold)
}

func (s *Service) TopProducts(ctx context.Context, fromDate string, toDate string, limit int) ([]domain.TopProduct, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "superuser" {
		return nil, fmt.Errorf("superuser role required")
	}

	from, to, err := parseDateWindow(fromDate, toDate)
	if err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = 5
	}
	return s.repo.GetTopProducts(ctx, from, to, limit)
}

func (s *Service) SuggestAddon(ctx context.Context, req domain.SuggestionRequest) (domain.SuggestionResponse, error) {
	if len(req.Items) == 0 {
		return domain.SuggestionResponse{}, nil
	}

	cartIDs := make([]string, 0, len(req.Items))
	for _, line := range req.Items {
		if strings.TrimSpace(line.ProductID) == "" {
			continue
		}
		cartIDs = append(cartIDs, line.ProductID)
	}
	if len(cartIDs) == 0 {
		return domain.SuggestionResponse{}, nil
	}

	coCounts, err := s.repo.GetCoPurchaseCounts(ctx, cartIDs, 10)
	if err != nil {
		return domain.SuggestionResponse{}, err
	}

	candidateIDs := make([]string, 0, len(coCounts))
	for _, c := range coCounts {
		candidateIDs = append(candidateIDs, c.ProductID)
	}
	products, err := s.repo.GetProductsByIDs(ctx, candidateIDs)
	if err != nil {
		return domain.SuggestionResponse{}, err
	}

	return s.suggester.Suggest(ctx, req, products, coCounts), nil
}

func (s *Service) ExportSalesCSV(ctx context.Context, req domain.SaleSearchRequest, w io.Writer) error {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "superuser" {
		return fmt.Errorf("superuser role required")
	}

	filter, err := buildSaleFilter(req)
	if err != nil {
		return err
	}
	filter.Limit = 0

	sales, err := s.repo.SearchSales(ctx, filter)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	header := []string{
		"invoice_number", "sale_date", "customer_name", "customer_phone", "payment_type",
		"product_name", "quantity", "returned_quantity", "unit_price_cents", "line_total_cents",
		"profit_cents", "serial_imei", "discount_cents", "net_total_cents",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, sale := range sales {
		for _, item := range sale.Items {
			record := []string{
				sale.InvoiceNumber,
				sale.SaleDate.UTC().Format(time.RFC3339),
				sale.CustomerName,
				sale.CustomerPhone,
				sale.PaymentType,
				item.ProductName,
				strconv.Itoa(item.Quantity),
				strconv.Itoa(item.ReturnedQuantity),
				strconv.FormatInt(item.UnitPriceCents, 10),
				strconv.FormatInt(item.LineTotalCents, 10),
				strconv.FormatInt(item.ProfitCents, 10),
				item.SerialIMEI,
				strconv.FormatInt(sale.DiscountCents, 10),
				strconv.FormatInt(sale.NetTotalCents, 10),
			}
			if err := writer.Write(record); err != nil {
				return err
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	s.logAudit(ctx, "sales_export", "sale", "", fmt.Sprintf("rows=%d", len(sales)))
	return nil
}

func (s *Service) ExportBackup(ctx context.Context) (*domain.BackupSnapshot, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "superuser" {
		return nil, fmt.Errorf("superuser role required")
	}

	snapshot, err := s.repo.ExportSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	s.logAudit(ctx, "backup_export", "backup", "", fmt.Sprintf("sales=%d,products=%d", len(snapshot.Sales), len(snapshot.Products)))
	return snapshot, nil
}

func (s *Service) RestoreBackup(ctx context.Context, snapshot domain.BackupSnapshot) error {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "superuser" {
		return fmt.Errorf("superuser role required")
	}

	if err := s.repo.RestoreSnapshot(ctx, snapshot); err != nil {
		return err
	}

	s.logAudit(ctx, "backup_restore", "backup", "", fmt.Sprintf("sales=%d,products=%d,users=%d", len(snapshot.Sales), len(snapshot.Products), len(snapshot.Users)))
	return nil
}

func (s *Service) ListAuditLogs(ctx context.Context, date string, limit int) ([]domain.AuditLog, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "superuser" {
		return nil, fmt.Errorf("superuser role required")
	}
	if limit < 1 {
		limit = 100
	}

	var from time.Time
	if strings.TrimSpace(date) == "" {
		from = time.Now().UTC().Add(-24 * time.Hour)
	} else {
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			return nil, store.ErrInvalidInput
		}
		from = parsed.UTC()
	}
	to := from.Add(24 * time.Hour)

	return s.repo.ListAuditLogs(ctx, from, to, limit)
}

func (s *Service) logAudit(ctx context.Context, action string, entityType string, entityID string, detail string) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		actor = domain.Actor{Username: "system", Role: "system"}
	}

	if err := s.repo.CreateAuditLog(ctx, domain.AuditLog{
		ActorUsername: actor.Username,
		ActorRole:     actor.Role,
		Action:        action,
		EntityType:    entityType,
		EntityID:      entityID,
		Detail:        detail,
		CreatedAt:     time.Now().UTC(),
	}); err != nil {
		log.Printf("[audit] WARN: failed to write audit log action=%s entity=%s/%s: %v", action, entityType, entityID, err)
	}
}

func resolveDiscount(subtotal int64, discountType string, amount float64) (int64, error) {
	if amount < 0 {
		return 0, store.ErrInvalidInput
	}

	var cents int64
	switch discountType {
	case "":
		if amount != 0 {
			return 0, store.ErrInvalidInput
		}
		return 0, nil
	case domain.DiscountFlat:
		cents = int64(math.Round(amount))
	case domain.DiscountPercentage:
		if amount > 100 {
			return 0, store.ErrInvalidInput
		}
		cents = int64(math.Round(float64(subtotal) * amount / 100))
	default:
		return 0, store.ErrInvalidInput
	}

	if cents > subtotal {
		return 0, store.ErrInvalidInput
	}
	return cents, nil
}

func buildSaleFilter(req domain.SaleSearchRequest) (domain.SaleFilter, error) {
	from, to, err := parseDateWindow(req.FromDate, req.ToDate)
	if err != nil {
		return domain.SaleFilter{}, err
	}

	return domain.SaleFilter{
		From:          from,
		To:            to,
		InvoiceNumber: strings.TrimSpace(req.InvoiceNumber),
		Customer:      strings.TrimSpace(req.Customer),
		Phone:         strings.TrimSpace(req.Phone),
		SerialIMEI:    strings.TrimSpace(req.SerialIMEI),
		Limit:         req.Limit,
	}, nil
}

// parseDateWindow turns inclusive YYYY-MM-DD bounds into a half-open UTC
// window. Empty strings leave that side unbounded.
func parseDateWindow(fromDate string, toDate string) (time.Time, time.Time, error) {
	var from, to time.Time

	if strings.TrimSpace(fromDate) != "" {
		parsed, err := time.Parse("2006-01-02", fromDate)
		if err != nil {
			return time.Time{}, time.Time{}, store.ErrInvalidInput
		}
		from = parsed.UTC()
	}
	if strings.TrimSpace(toDate) != "" {
		parsed, err := time.Parse("2006-01-02", toDate)
		if err != nil {
			return time.Time{}, time.Time{}, store.ErrInvalidInput
		}
		to = parsed.UTC().Add(24 * time.Hour)
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return time.Time{}, time.Time{}, store.ErrInvalidInput
	}

	return from, to, nil
}

func isSupportedPaymentType(paymentType string) bool {
	switch paymentType {
	case domain.PaymentCash, domain.PaymentBankTransfer, domain.PaymentCard:
		return true
	}
	return false
}

func generateInvoiceNumber(now time.Time) string {
	buf := make([]byte, 2)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("INV-%s-%d", now.UTC().Format("20060102-150405"), now.UnixNano()%10000)
	}
	return fmt.Sprintf("INV-%s-%s", now.UTC().Format("20060102-150405"), strings.ToUpper(hex.EncodeToString(buf)))
}
