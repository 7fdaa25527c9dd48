package memory

import (
	"context"
	"fmt"
	"log"
	"math"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"konterhp/backend/internal/domain"
	"konterhp/backend/internal/store"
)

type Store struct {
	mu              sync.RWMutex
	categoriesByID  map[string]domain.Category
	productsByID    map[string]domain.Product
	salesByID       map[string]*domain.Sale
	salesByInvoice  map[string]*domain.Sale
	returnsByID     map[string]domain.Return
	expensesByID    map[string]domain.Expense
	auditLogs       []domain.AuditLog
	usersByUsername map[string]domain.UserAccount
}

// seedUsers builds the initial in-memory user accounts for dev/demo mode.
// Credentials are read from SEED_OWNER_PASSWORD and SEED_ADMIN_PASSWORD
// environment variables. If unset, hardcoded dev defaults are used with a
// warning printed to stdout. These credentials are never used in production
// (the backend uses PostgreSQL when DATABASE_URL is set).
func seedUsers() map[string]domain.UserAccount {
	ownerPwd := envOr("SEED_OWNER_PASSWORD", "owner123")
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	if os.Getenv("SEED_OWNER_PASSWORD") == "" || os.Getenv("SEED_ADMIN_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_OWNER_PASSWORD and SEED_ADMIN_PASSWORD to override.")
	}

	now := time.Now().UTC()
	users := map[string]domain.UserAccount{}
	for _, u := range []struct {
		username string
		password string
		role     string
	}{
		{"owner", ownerPwd, "superuser"},
		{"admin", adminPwd, "admin"},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed password for %s: %v", u.username, err)
		}
		users[u.username] = domain.UserAccount{
			ID:        uuid.NewString(),
			Username:  u.username,
			Password:  string(hash),
			Role:      u.role,
			Active:    true,
			CreatedAt: now,
		}
	}
	return users
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func NewSeeded() *Store {
	now := time.Now().UTC()

	categoryNames := []string{"smartphones", "accessories", "spare-parts"}
	categories := make(map[string]domain.Category, len(categoryNames))
	categoryIDs := make(map[string]string, len(categoryNames))
	for _, name := range categoryNames {
		id := uuid.NewString()
		categories[id] = domain.Category{ID: id, Name: name, CreatedAt: now}
		categoryIDs[name] = id
	}

	seed := []domain.Product{
		{CategoryID: categoryIDs["smartphones"], Name: "Samsung Galaxy A16 8/256", Condition: "new", SupplierName: "PT Mega Ponsel", SupplierPhone: "+62-812-7700-1100", PurchasePriceCents: 2550000, SellingPriceCents: 2799000, Quantity: 6, PTAApproved: true, WarrantyDays: 365},
		{CategoryID: categoryIDs["smartphones"], Name: "Xiaomi Redmi 13C 6/128", Condition: "new", SupplierName: "PT Mega Ponsel", SupplierPhone: "+62-812-7700-1100", PurchasePriceCents: 1350000, SellingPriceCents: 1499000, Quantity: 8, PTAApproved: true, WarrantyDays: 365},
		{CategoryID: categoryIDs["smartphones"], Name: "Infinix Hot 40i 8/128", Condition: "new", SupplierName: "CV Sinar Cellular", PurchasePriceCents: 1150000, SellingPriceCents: 1299000, Quantity: 7, PTAApproved: true, WarrantyDays: 365},
		{CategoryID: categoryIDs["smartphones"], Name: "iPhone 12 128GB Bekas", Condition: "used", SerialNumber: "356981110245771", PurchasePriceCents: 5200000, SellingPriceCents: 5850000, Quantity: 3, PTAApproved: true, WarrantyDays: 30},
		{CategoryID: categoryIDs["smartphones"], Name: "Oppo A18 4/64 Bekas", Condition: "used", SerialNumber: "358442071199034", PurchasePriceCents: 1100000, SellingPriceCents: 1350000, Quantity: 2, PTAApproved: true, WarrantyDays: 14},
		{CategoryID: categoryIDs["accessories"], Name: "Charger Type-C 33W", Condition: "new", SupplierName: "CV Sinar Cellular", PurchasePriceCents: 45000, SellingPriceCents: 85000, Quantity: 40, WarrantyDays: 90},
		{CategoryID: categoryIDs["accessories"], Name: "Kabel Data Lightning 1m", Condition: "new", SupplierName: "CV Sinar Cellular", PurchasePriceCents: 22000, SellingPriceCents: 45000, Quantity: 55},
		{CategoryID: categoryIDs["accessories"], Name: "TWS Bluetooth M10", Condition: "new", PurchasePriceCents: 38000, SellingPriceCents: 75000, Quantity: 30, WarrantyDays: 30},
		{CategoryID: categoryIDs["accessories"], Name: "Tempered Glass Universal", Condition: "new", PurchasePriceCents: 5000, SellingPriceCents: 20000, Quantity: 120},
		{CategoryID: categoryIDs["accessories"], Name: "Softcase Silikon A16", Condition: "new", PurchasePriceCents: 8000, SellingPriceCents: 25000, Quantity: 60},
		{CategoryID: categoryIDs["spare-parts"], Name: "LCD Redmi Note 11 Original", Condition: "new", SupplierName: "Toko Part Sejati", SupplierPhone: "+62-813-9921-4478", PurchasePriceCents: 285000, SellingPriceCents: 450000, Quantity: 4, WarrantyDays: 30},
		{CategoryID: categoryIDs["spare-parts"], Name: "Baterai iPhone 11", Condition: "new", SupplierName: "Toko Part Sejati", SupplierPhone: "+62-813-9921-4478", PurchasePriceCents: 145000, SellingPriceCents: 280000, Quantity: 5, WarrantyDays: 30},
	}

	products := make(map[string]domain.Product, len(seed))
	for _, p := range seed {
		p.ID = uuid.NewString()
		p.CreatedAt = now
		p.UpdatedAt = now
		products[p.ID] = p
	}

	return &Store{
		categoriesByID:  categories,
		productsByID:    products,
		salesByID:       make(map[string]*domain.Sale),
		salesByInvoice:  make(map[string]*domain.Sale),
		returnsByID:     make(map[string]domain.Return),
		expensesByID:    make(map[string]domain.Expense),
		auditLogs:       make([]domain.AuditLog, 0, 128),
		usersByUsername: seedUsers(),
	}
}

func (s *Store) CreateCategory(_ context.Context, category domain.Category) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		return nil, store.ErrInvalidInput
	}
	for _, existing := range s.categoriesByID {
		if strings.EqualFold(existing.Name, category.Name) {
			return nil, store.ErrInvalidInput
		}
	}
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	if category.CreatedAt.IsZero() {
		category.CreatedAt = time.Now().UTC()
	}

	s.categoriesByID[category.ID] = category
	created := category
	return &created, nil
}

func (s *Store) ListCategories(_ context.Context) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	categories := make([]domain.Category, 0, len(s.categoriesByID))
	for _, category := range s.categoriesByID {
		categories = append(categories, category)
	}
	slices.SortFunc(categories, func(a, b domain.Category) int {
		return cmpString(a.Name, b.Name)
	})
	return categories, nil
}

func (s *Store) GetCategoryByID(_ context.Context, id string) (*domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	category, exists := s.categoriesByID[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyCategory := category
	return &copyCategory, nil
}

func (s *Store) DeleteCategory(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.categoriesByID[id]; !exists {
		return store.ErrNotFound
	}
	for _, product := range s.productsByID {
		if product.CategoryID == id {
			return store.ErrCategoryInUse
		}
	}
	delete(s.categoriesByID, id)
	return nil
}

func (s *Store) CreateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product.Name = strings.TrimSpace(product.Name)
	if product.Name == "" || product.CategoryID == "" {
		return nil, store.ErrInvalidInput
	}
	if product.Condition != domain.ConditionNew && product.Condition != domain.ConditionUsed {
		return nil, store.ErrInvalidInput
	}
	if product.PurchasePriceCents < 0 || product.SellingPriceCents < 0 || product.Quantity < 0 || product.WarrantyDays < 0 {
		return nil, store.ErrInvalidInput
	}
	if _, exists := s.categoriesByID[product.CategoryID]; !exists {
		return nil, store.ErrNotFound
	}

	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now

	s.productsByID[product.ID] = product
	created := product
	return &created, nil
}

func (s *Store) UpdateProduct(_ context.Context, id string, update domain.ProductUpdateRequest) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, exists := s.productsByID[id]
	if !exists {
		return nil, store.ErrNotFound
	}

	if update.CategoryID != nil {
		if _, ok := s.categoriesByID[*update.CategoryID]; !ok {
			return nil, store.ErrNotFound
		}
		product.CategoryID = *update.CategoryID
	}
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, store.ErrInvalidInput
		}
		product.Name = name
	}
	if update.Description != nil {
		product.Description = *update.Description
	}
	if update.SerialNumber != nil {
		product.SerialNumber = *update.SerialNumber
	}
	if update.Condition != nil {
		if *update.Condition != domain.ConditionNew && *update.Condition != domain.ConditionUsed {
			return nil, store.ErrInvalidInput
		}
		product.Condition = *update.Condition
	}
	if update.SupplierName != nil {
		product.SupplierName = *update.SupplierName
	}
	if update.SupplierPhone != nil {
		product.SupplierPhone = *update.SupplierPhone
	}
	if update.PurchasePriceCents != nil {
		if *update.PurchasePriceCents < 0 {
			return nil, store.ErrInvalidInput
		}
		product.PurchasePriceCents = *update.PurchasePriceCents
	}
	if update.SellingPriceCents != nil {
		if *update.SellingPriceCents < 0 {
			return nil, store.ErrInvalidInput
		}
		product.SellingPriceCents = *update.SellingPriceCents
	}
	if update.PTAApproved != nil {
		product.PTAApproved = *update.PTAApproved
	}
	if update.WarrantyDays != nil {
		if *update.WarrantyDays < 0 {
			return nil, store.ErrInvalidInput
		}
		product.WarrantyDays = *update.WarrantyDays
	}
	product.UpdatedAt = time.Now().UTC()

	s.productsByID[id] = product
	updated := product
	return &updated, nil
}

func (s *Store) DeleteProduct(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.productsByID[id]; !exists {
		return store.ErrNotFound
	}
	delete(s.productsByID, id)
	return nil
}

func (s *Store) GetProductByID(_ context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, exists := s.productsByID[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyProduct := product
	return &copyProduct, nil
}

func (s *Store) GetProductsByIDs(_ context.Context, ids []string) (map[string]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]domain.Product, len(ids))
	for _, id := range ids {
		if p, ok := s.productsByID[id]; ok {
			result[id] = p
		}
	}
	return result, nil
}

func (s *Store) ListProducts(_ context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, 0, len(s.productsByID))
	for _, p := range s.productsByID {
		if filter.CategoryID != "" && p.CategoryID != filter.CategoryID {
			continue
		}
		if filter.Condition != "" && p.Condition != filter.Condition {
			continue
		}
		if filter.Query != "" && !containsFold(p.Name, filter.Query) &&
			!containsFold(p.Description, filter.Query) &&
			!containsFold(p.SerialNumber, filter.Query) {
			continue
		}
		products = append(products, p)
	}

	slices.SortFunc(products, func(a, b domain.Product) int {
		return cmpString(a.Name, b.Name)
	})
	if filter.Limit > 0 && len(products) > filter.Limit {
		products = products[:filter.Limit]
	}
	return products, nil
}

func (s *Store) ListLowStockProducts(_ context.Context, threshold int, limit int) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, 0, 16)
	for _, p := range s.productsByID {
		if p.Quantity < threshold {
			products = append(products, p)
		}
	}
	slices.SortFunc(products, func(a, b domain.Product) int {
		if a.Quantity == b.Quantity {
			return cmpString(a.Name, b.Name)
		}
		return a.Quantity - b.Quantity
	})
	if limit > 0 && len(products) > limit {
		products = products[:limit]
	}
	return products, nil
}

func (s *Store) AdjustProductQuantity(_ context.Context, productID string, delta int) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, exists := s.productsByID[productID]
	if !exists {
		return nil, store.ErrNotFound
	}
	// Floor check happens under the lock so concurrent adjustments cannot
	// race past a stale read.
	if product.Quantity+delta < 0 {
		return nil, store.ErrInvalidInput
	}
	product.Quantity += delta
	product.UpdatedAt = time.Now().UTC()
	s.productsByID[productID] = product
	adjusted := product
	return &adjusted, nil
}

func (s *Store) CreateSale(_ context.Context, sale domain.Sale) (*domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(sale.InvoiceNumber) == "" || len(sale.Items) == 0 {
		return nil, store.ErrInvalidInput
	}
	if _, exists := s.salesByInvoice[sale.InvoiceNumber]; exists {
		return nil, store.ErrDuplicateInvoice
	}

	// Validate every line before mutating anything so a failure on item k
	// leaves no partial state behind.
	for _, item := range sale.Items {
		if item.Quantity < 1 {
			return nil, store.ErrInvalidInput
		}
		if _, exists := s.productsByID[item.ProductID]; !exists {
			return nil, fmt.Errorf("product %s unavailable", item.ProductID)
		}
	}

	if sale.ID == "" {
		sale.ID = uuid.NewString()
	}
	if sale.SaleDate.IsZero() {
		sale.SaleDate = time.Now().UTC()
	}
	for i := range sale.Items {
		if sale.Items[i].ID == "" {
			sale.Items[i].ID = uuid.NewString()
		}
		sale.Items[i].SaleID = sale.ID
		sale.Items[i].ReturnedQuantity = 0
	}

	// Quantity may go negative on oversell; sale creation does not guard
	// against insufficient stock.
	for _, item := range sale.Items {
		product := s.productsByID[item.ProductID]
		product.Quantity -= item.Quantity
		product.UpdatedAt = sale.SaleDate
		s.productsByID[item.ProductID] = product
	}

	saleCopy := cloneSale(&sale)
	s.salesByID[sale.ID] = saleCopy
	s.salesByInvoice[sale.InvoiceNumber] = saleCopy

	return cloneSale(saleCopy), nil
}

func (s *Store) GetSaleByID(_ context.Context, id string) (*domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sale, ok := s.salesByID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneSale(sale), nil
}

func (s *Store) GetSaleByInvoice(_ context.Context, invoiceNumber string) (*domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sale, ok := s.salesByInvoice[invoiceNumber]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneSale(sale), nil
}

func (s *Store) SearchSales(_ context.Context, filter domain.SaleFilter) ([]domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Sale, 0, 64)
	for _, sale := range s.salesByID {
		if !filter.From.IsZero() && sale.SaleDate.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && !sale.SaleDate.Before(filter.To) {
			continue
		}
		if filter.InvoiceNumber != "" && !containsFold(sale.InvoiceNumber, filter.InvoiceNumber) {
			continue
		}
		if filter.Customer != "" && !containsFold(sale.CustomerName, filter.Customer) {
			continue
		}
		if filter.Phone != "" && !containsFold(sale.CustomerPhone, filter.Phone) {
			continue
		}
		if filter.SerialIMEI != "" {
			matched := false
			for _, item := range sale.Items {
				if containsFold(item.SerialIMEI, filter.SerialIMEI) {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		result = append(result, *cloneSale(sale))
	}

	slices.SortFunc(result, func(a, b domain.Sale) int {
		if a.SaleDate.Equal(b.SaleDate) {
			return cmpString(b.ID, a.ID)
		}
		if a.SaleDate.After(b.SaleDate) {
			return -1
		}
		return 1
	})
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (s *Store) CreateReturn(_ context.Context, ret domain.Return) (*domain.Return, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ret.Quantity < 1 {
		return nil, store.ErrInvalidInput
	}

	sale, ok := s.salesByID[ret.SaleID]
	if !ok {
		return nil, store.ErrNotFound
	}
	itemIndex := -1
	for i := range sale.Items {
		if sale.Items[i].ID == ret.SaleItemID {
			itemIndex = i
			break
		}
	}
	if itemIndex < 0 {
		return nil, store.ErrNotFound
	}
	item := sale.Items[itemIndex]
	if ret.ProductID != "" && ret.ProductID != item.ProductID {
		return nil, store.ErrInvalidInput
	}
	ret.ProductID = item.ProductID

	product, ok := s.productsByID[item.ProductID]
	if !ok {
		return nil, store.ErrNotFound
	}

	// Remaining balance is re-derived from the current row state so repeated
	// partial returns cannot exceed the purchased quantity.
	remaining := item.Quantity - item.ReturnedQuantity
	if ret.Quantity > remaining {
		return nil, store.ErrInvalidInput
	}

	ret.ReturnAmountCents = item.UnitPriceCents * int64(ret.Quantity)
	ret.ReturnProfitCents = int64(math.Round(float64(item.ProfitCents) * float64(ret.Quantity) / float64(item.Quantity)))
	if ret.ID == "" {
		ret.ID = uuid.NewString()
	}
	if ret.ReturnDate.IsZero() {
		ret.ReturnDate = time.Now().UTC()
	}

	sale.Items[itemIndex].ReturnedQuantity += ret.Quantity
	sale.NetTotalCents -= ret.ReturnAmountCents
	sale.TotalProfitCents -= ret.ReturnProfitCents

	product.Quantity += ret.Quantity
	product.UpdatedAt = ret.ReturnDate
	s.productsByID[item.ProductID] = product

	s.returnsByID[ret.ID] = ret
	created := ret
	return &created, nil
}

func (s *Store) ListReturns(_ context.Context, filter domain.ReturnFilter) ([]domain.Return, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Return, 0, 64)
	for _, ret := range s.returnsByID {
		if !filter.From.IsZero() && ret.ReturnDate.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && !ret.ReturnDate.Before(filter.To) {
			continue
		}
		result = append(result, ret)
	}

	slices.SortFunc(result, func(a, b domain.Return) int {
		if a.ReturnDate.Equal(b.ReturnDate) {
			return cmpString(b.ID, a.ID)
		}
		if a.ReturnDate.After(b.ReturnDate) {
			return -1
		}
		return 1
	})
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (s *Store) CreateExpense(_ context.Context, expense domain.Expense) (*domain.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expense.Description = strings.TrimSpace(expense.Description)
	if expense.Description == "" || expense.AmountCents < 1 {
		return nil, store.ErrInvalidInput
	}
	if expense.ID == "" {
		expense.ID = uuid.NewString()
	}
	if expense.ExpenseDate.IsZero() {
		expense.ExpenseDate = time.Now().UTC()
	}

	s.expensesByID[expense.ID] = expense
	created := expense
	return &created, nil
}

func (s *Store) ListExpenses(_ context.Context, from time.Time, to time.Time, limit int) ([]domain.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Expense, 0, 64)
	for _, expense := range s.expensesByID {
		if !from.IsZero() && expense.ExpenseDate.Before(from) {
			continue
		}
		if !to.IsZero() && !expense.ExpenseDate.Before(to) {
			continue
		}
		result = append(result, expense)
	}

	slices.SortFunc(result, func(a, b domain.Expense) int {
		if a.ExpenseDate.Equal(b.ExpenseDate) {
			return cmpString(b.ID, a.ID)
		}
		if a.ExpenseDate.After(b.ExpenseDate) {
			return -1
		}
		return 1
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) DeleteExpense(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.expensesByID[id]; !exists {
		return store.ErrNotFound
	}
	delete(s.expensesByID, id)
	return nil
}

func (s *Store) GetDashboardStats(_ context.Context, from time.Time, to time.Time, lowStockThreshold int) (domain.DashboardStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := domain.DashboardStats{}
	inWindow := func(at time.Time) bool {
		if !from.IsZero() && at.Before(from) {
			return false
		}
		if !to.IsZero() && !at.Before(to) {
			return false
		}
		return true
	}

	for _, sale := range s.salesByID {
		if !inWindow(sale.SaleDate) {
			continue
		}
		stats.SalesCount++
		stats.RevenueCents += sale.NetTotalCents
		stats.ProfitCents += sale.TotalProfitCents
	}
	for _, ret := range s.returnsByID {
		if !inWindow(ret.ReturnDate) {
			continue
		}
		stats.ReturnsCount++
		stats.ReturnAmountCents += ret.ReturnAmountCents
	}
	for _, expense := range s.expensesByID {
		if !inWindow(expense.ExpenseDate) {
			continue
		}
		stats.ExpenseCents += expense.AmountCents
	}
	for _, product := range s.productsByID {
		stats.ProductCount++
		if product.Quantity < lowStockThreshold {
			stats.LowStockCount++
		}
	}
	stats.CategoryCount = int64(len(s.categoriesByID))

	return stats, nil
}

func (s *Store) GetTopProducts(_ context.Context, from time.Time, to time.Time, limit int) ([]domain.TopProduct, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byProduct := map[string]*domain.TopProduct{}
	for _, sale := range s.salesByID {
		if !from.IsZero() && sale.SaleDate.Before(from) {
			continue
		}
		if !to.IsZero() && !sale.SaleDate.Before(to) {
			continue
		}
		for _, item := range sale.Items {
			sold := item.Quantity - item.ReturnedQuantity
			if sold < 1 {
				continue
			}
			entry := byProduct[item.ProductID]
			if entry == nil {
				entry = &domain.TopProduct{ProductID: item.ProductID, ProductName: item.ProductName}
				byProduct[item.ProductID] = entry
			}
			entry.QuantitySold += sold
			entry.RevenueCents += item.UnitPriceCents * int64(sold)
		}
	}

	result := make([]domain.TopProduct, 0, len(byProduct))
	for _, entry := range byProduct {
		result = append(result, *entry)
	}
	slices.SortFunc(result, func(a, b domain.TopProduct) int {
		if a.QuantitySold == b.QuantitySold {
			return cmpString(a.ProductName, b.ProductName)
		}
		return b.QuantitySold - a.QuantitySold
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) GetCoPurchaseCounts(_ context.Context, productIDs []string, limit int) ([]domain.CoPurchaseCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inCart := make(map[string]struct{}, len(productIDs))
	for _, id := range productIDs {
		inCart[id] = struct{}{}
	}

	counts := map[string]int{}
	for _, sale := range s.salesByID {
		matched := false
		for _, item := range sale.Items {
			if _, ok := inCart[item.ProductID]; ok {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		for _, item := range sale.Items {
			if _, ok := inCart[item.ProductID]; ok {
				continue
			}
			counts[item.ProductID]++
		}
	}

	result := make([]domain.CoPurchaseCount, 0, len(counts))
	for id, count := range counts {
		result = append(result, domain.CoPurchaseCount{ProductID: id, Count: count})
	}
	slices.SortFunc(result, func(a, b domain.CoPurchaseCount) int {
		if a.Count == b.Count {
			return cmpString(a.ProductID, b.ProductID)
		}
		return b.Count - a.Count
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) CreateAuditLog(_ context.Context, entry domain.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	s.auditLogs = append(s.auditLogs, entry)
	return nil
}

func (s *Store) ListAuditLogs(_ context.Context, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.AuditLog, 0, 64)
	for _, entry := range s.auditLogs {
		if !from.IsZero() && entry.CreatedAt.Before(from) {
			continue
		}
		if !to.IsZero() && !entry.CreatedAt.Before(to) {
			continue
		}
		result = append(result, entry)
	}

	slices.SortFunc(result, func(a, b domain.AuditLog) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return cmpString(b.ID, a.ID)
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) ExportSnapshot(_ context.Context) (*domain.BackupSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := domain.BackupSnapshot{
		ExportedAt: time.Now().UTC(),
		Categories: make([]domain.Category, 0, len(s.categoriesByID)),
		Products:   make([]domain.Product, 0, len(s.productsByID)),
		Sales:      make([]domain.Sale, 0, len(s.salesByID)),
		Returns:    make([]domain.Return, 0, len(s.returnsByID)),
		Expenses:   make([]domain.Expense, 0, len(s.expensesByID)),
		Users:      make([]domain.UserAccount, 0, len(s.usersByUsername)),
	}

	for _, category := range s.categoriesByID {
		snapshot.Categories = append(snapshot.Categories, category)
	}
	for _, product := range s.productsByID {
		snapshot.Products = append(snapshot.Products, product)
	}
	for _, sale := range s.salesByID {
		snapshot.Sales = append(snapshot.Sales, *cloneSale(sale))
	}
	for _, ret := range s.returnsByID {
		snapshot.Returns = append(snapshot.Returns, ret)
	}
	for _, expense := range s.expensesByID {
		snapshot.Expenses = append(snapshot.Expenses, expense)
	}
	for _, user := range s.usersByUsername {
		snapshot.Users = append(snapshot.Users, user)
	}

	slices.SortFunc(snapshot.Categories, func(a, b domain.Category) int { return cmpString(a.Name, b.Name) })
	slices.SortFunc(snapshot.Products, func(a, b domain.Product) int { return cmpString(a.Name, b.Name) })
	slices.SortFunc(snapshot.Sales, func(a, b domain.Sale) int { return cmpString(a.InvoiceNumber, b.InvoiceNumber) })
	slices.SortFunc(snapshot.Returns, func(a, b domain.Return) int { return cmpString(a.ID, b.ID) })
	slices.SortFunc(snapshot.Expenses, func(a, b domain.Expense) int { return cmpString(a.ID, b.ID) })
	slices.SortFunc(snapshot.Users, func(a, b domain.UserAccount) int { return cmpString(a.Username, b.Username) })

	return &snapshot, nil
}

func (s *Store) RestoreSnapshot(_ context.Context, snapshot domain.BackupSnapshot) error {
	categories := make(map[string]domain.Category, len(snapshot.Categories))
	for _, category := range snapshot.Categories {
		if category.ID == "" || strings.TrimSpace(category.Name) == "" {
			return store.ErrInvalidInput
		}
		categories[category.ID] = category
	}

	products := make(map[string]domain.Product, len(snapshot.Products))
	for _, product := range snapshot.Products {
		if product.ID == "" || strings.TrimSpace(product.Name) == "" {
			return store.ErrInvalidInput
		}
		if _, ok := categories[product.CategoryID]; !ok {
			return store.ErrInvalidInput
		}
		products[product.ID] = product
	}

	salesByID := make(map[string]*domain.Sale, len(snapshot.Sales))
	salesByInvoice := make(map[string]*domain.Sale, len(snapshot.Sales))
	for i := range snapshot.Sales {
		sale := cloneSale(&snapshot.Sales[i])
		if sale.ID == "" || strings.TrimSpace(sale.InvoiceNumber) == "" {
			return store.ErrInvalidInput
		}
		if _, dup := salesByInvoice[sale.InvoiceNumber]; dup {
			return store.ErrDuplicateInvoice
		}
		for j := range sale.Items {
			sale.Items[j].SaleID = sale.ID
		}
		salesByID[sale.ID] = sale
		salesByInvoice[sale.InvoiceNumber] = sale
	}

	returns := make(map[string]domain.Return, len(snapshot.Returns))
	for _, ret := range snapshot.Returns {
		if ret.ID == "" {
			return store.ErrInvalidInput
		}
		if _, ok := salesByID[ret.SaleID]; !ok {
			return store.ErrInvalidInput
		}
		returns[ret.ID] = ret
	}

	expenses := make(map[string]domain.Expense, len(snapshot.Expenses))
	for _, expense := range snapshot.Expenses {
		if expense.ID == "" {
			return store.ErrInvalidInput
		}
		expenses[expense.ID] = expense
	}

	users := make(map[string]domain.UserAccount, len(snapshot.Users))
	for _, user := range snapshot.Users {
		username := strings.ToLower(strings.TrimSpace(user.Username))
		if username == "" || strings.TrimSpace(user.Password) == "" {
			return store.ErrInvalidInput
		}
		user.Username = username
		users[username] = user
	}

	// Swap everything in one critical section so a validated snapshot
	// replaces the previous state atomically.
	s.mu.Lock()
	defer s.mu.Unlock()

	s.categoriesByID = categories
	s.productsByID = products
	s.salesByID = salesByID
	s.salesByInvoice = salesByInvoice
	s.returnsByID = returns
	s.expensesByID = expenses
	s.usersByUsername = users

	return nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username := strings.ToLower(strings.TrimSpace(user.Username))
	if username == "" || strings.TrimSpace(user.Password) == "" {
		return store.ErrInvalidInput
	}
	if _, exists := s.usersByUsername[username]; exists {
		return store.ErrInvalidInput
	}
	user.Username = username
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = "admin"
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.Active = true
	s.usersByUsername[user.Username] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.UserAccount, 0, len(s.usersByUsername))
	for _, user := range s.usersByUsername {
		users = append(users, user)
	}
	slices.SortFunc(users, func(a, b domain.UserAccount) int {
		return cmpString(a.Username, b.Username)
	})
	return users, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, username string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || strings.TrimSpace(password) == "" {
		return store.ErrInvalidInput
	}
	user, exists := s.usersByUsername[username]
	if !exists {
		return store.ErrNotFound
	}
	user.Password = password
	s.usersByUsername[username] = user
	return nil
}

func cmpString(a string, b string) int {
	if a == b {
		return 0
	}
	if a < b {
		return -1
	}
	return 1
}

func containsFold(haystack string, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func cloneSale(src *domain.Sale) *domain.Sale {
	if src == nil {
		return nil
	}
	dup := *src
	dupItems := make([]domain.SaleItem, len(src.Items))
	copy(dupItems, src.Items)
	dup.Items = dupItems
	return &dup
}
