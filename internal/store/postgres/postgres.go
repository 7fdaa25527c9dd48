package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"konterhp/backend/internal/domain"
	"konterhp/backend/internal/store"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

const categoryColumns = "id, name, created_at"

const productColumns = "id, category_id, name, description, serial_number, condition, supplier_name, supplier_phone, purchase_price_cents, selling_price_cents, quantity, pta_approved, warranty_days, created_at, updated_at"

const saleColumns = "id, invoice_number, customer_name, customer_phone, payment_type, subtotal_cents, discount_type, discount_amount, discount_cents, net_total_cents, total_profit_cents, created_by, sale_date"

const saleItemColumns = "id, sale_id, product_id, product_name, quantity, returned_quantity, unit_price_cents, purchase_price_cents, line_total_cents, profit_cents, serial_imei, warranty_days, remarks"

const returnColumns = "id, sale_id, sale_item_id, product_id, quantity, return_amount_cents, return_profit_cents, reason, created_by, return_date"

func (s *Store) CreateCategory(ctx context.Context, category domain.Category) (*domain.Category, error) {
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		return nil, store.ErrInvalidInput
	}
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	if category.CreatedAt.IsZero() {
		category.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, created_at)
		VALUES ($1, $2, $3)
	`, category.ID, category.Name, category.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidInput
		}
		return nil, err
	}

	created := category
	return &created, nil
}

func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]domain.Category, 0, 16)
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return categories, nil
}

func (s *Store) GetCategoryByID(ctx context.Context, id string) (*domain.Category, error) {
	var c domain.Category
	err := s.db.QueryRowContext(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return store.ErrCategoryInUse
		}
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
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

	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`, product.ID, product.CategoryID, product.Name, nullIfEmpty(product.Description),
		nullIfEmpty(product.SerialNumber), product.Condition, nullIfEmpty(product.SupplierName),
		nullIfEmpty(product.SupplierPhone), product.PurchasePriceCents, product.SellingPriceCents,
		product.Quantity, product.PTAApproved, product.WarrantyDays, product.CreatedAt, product.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, store.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidInput
		}
		return nil, err
	}

	created := product
	return &created, nil
}

func (s *Store) UpdateProduct(ctx context.Context, id string, update domain.ProductUpdateRequest) (*domain.Product, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = $1
		FOR UPDATE
	`, id)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	if update.CategoryID != nil {
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

	_, err = tx.ExecContext(ctx, `
		UPDATE products
		SET category_id = $1, name = $2, description = $3, serial_number = $4, condition = $5,
			supplier_name = $6, supplier_phone = $7, purchase_price_cents = $8, selling_price_cents = $9,
			pta_approved = $10, warranty_days = $11, updated_at = $12
		WHERE id = $13
	`, product.CategoryID, product.Name, nullIfEmpty(product.Description), nullIfEmpty(product.SerialNumber),
		product.Condition, nullIfEmpty(product.SupplierName), nullIfEmpty(product.SupplierPhone),
		product.PurchasePriceCents, product.SellingPriceCents, product.PTAApproved, product.WarrantyDays,
		product.UpdatedAt, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &product, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = $1
	`, id)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (s *Store) GetProductsByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	if len(ids) == 0 {
		return map[string]domain.Product{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]domain.Product, len(ids))
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result[product.ID] = product
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (s *Store) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	conditions := make([]string, 0, 3)
	args := make([]any, 0, 4)

	if filter.CategoryID != "" {
		args = append(args, filter.CategoryID)
		conditions = append(conditions, fmt.Sprintf("category_id = $%d", len(args)))
	}
	if filter.Condition != "" {
		args = append(args, filter.Condition)
		conditions = append(conditions, fmt.Sprintf("condition = $%d", len(args)))
	}
	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d OR serial_number ILIKE $%d)", n, n, n))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY name"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 64)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}

func (s *Store) ListLowStockProducts(ctx context.Context, threshold int, limit int) ([]domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE quantity < $1
		ORDER BY quantity, name
	`
	args := []any{threshold}
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 16)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}

func (s *Store) AdjustProductQuantity(ctx context.Context, productID string, delta int) (*domain.Product, error) {
	// Adjust and floor-check in one statement; manual corrections never
	// drive quantity negative, no matter how they interleave.
	row := s.db.QueryRowContext(ctx, `
		UPDATE products
		SET quantity = quantity + $1, updated_at = now()
		WHERE id = $2 AND quantity + $1 >= 0
		RETURNING `+productColumns+`
	`, delta, productID)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// No row updated: the product is missing or the delta would
			// cross the zero floor.
			var exists bool
			if err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists); err != nil {
				return nil, err
			}
			if !exists {
				return nil, store.ErrNotFound
			}
			return nil, store.ErrInvalidInput
		}
		return nil, err
	}
	return &product, nil
}

func (s *Store) CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error) {
	if strings.TrimSpace(sale.InvoiceNumber) == "" || len(sale.Items) == 0 {
		return nil, store.ErrInvalidInput
	}
	for _, item := range sale.Items {
		if item.Quantity < 1 {
			return nil, store.ErrInvalidInput
		}
	}

	if sale.ID == "" {
		sale.ID = uuid.NewString()
	}
	if sale.SaleDate.IsZero() {
		sale.SaleDate = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	// Lock every referenced product row up front; a missing row fails the
	// whole sale before any mutation.
	ids := uniqueProductIDs(sale.Items)
	rows, err := tx.QueryContext(ctx, `
		SELECT id FROM products WHERE id = ANY($1) FOR UPDATE
	`, ids)
	if err != nil {
		return nil, err
	}
	locked := make(map[string]bool, len(ids))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		locked[id] = true
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()
	for _, id := range ids {
		if !locked[id] {
			return nil, fmt.Errorf("product %s unavailable", id)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sales (`+saleColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`, sale.ID, sale.InvoiceNumber, nullIfEmpty(sale.CustomerName), nullIfEmpty(sale.CustomerPhone),
		sale.PaymentType, sale.SubtotalCents, sale.DiscountType, sale.DiscountAmount, sale.DiscountCents,
		sale.NetTotalCents, sale.TotalProfitCents, nullIfEmpty(sale.CreatedBy), sale.SaleDate)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrDuplicateInvoice
		}
		return nil, err
	}

	for i := range sale.Items {
		item := &sale.Items[i]
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		item.SaleID = sale.ID
		item.ReturnedQuantity = 0

		_, err = tx.ExecContext(ctx, `
			INSERT INTO sale_items (`+saleItemColumns+`, position)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		`, item.ID, item.SaleID, item.ProductID, item.ProductName, item.Quantity, item.ReturnedQuantity,
			item.UnitPriceCents, item.PurchasePriceCents, item.LineTotalCents, item.ProfitCents,
			nullIfEmpty(item.SerialIMEI), item.WarrantyDays, nullIfEmpty(item.Remarks), i)
		if err != nil {
			return nil, err
		}

		// Decrement without a floor check; oversell drives quantity negative.
		_, err = tx.ExecContext(ctx, `
			UPDATE products
			SET quantity = quantity - $1, updated_at = $2
			WHERE id = $3
		`, item.Quantity, sale.SaleDate, item.ProductID)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	created := sale
	return &created, nil
}

func (s *Store) GetSaleByID(ctx context.Context, id string) (*domain.Sale, error) {
	return s.getSale(ctx, "id = $1", id)
}

func (s *Store) GetSaleByInvoice(ctx context.Context, invoiceNumber string) (*domain.Sale, error) {
	return s.getSale(ctx, "invoice_number = $1", invoiceNumber)
}

func (s *Store) getSale(ctx context.Context, where string, arg any) (*domain.Sale, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+saleColumns+` FROM sales WHERE `+where, arg)
	sale, err := scanSale(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	itemMap, err := loadSaleItems(ctx, s.db, []string{sale.ID})
	if err != nil {
		return nil, err
	}
	sale.Items = itemMap[sale.ID]

	return &sale, nil
}

func (s *Store) SearchSales(ctx context.Context, filter domain.SaleFilter) ([]domain.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales`
	conditions := make([]string, 0, 6)
	args := make([]any, 0, 7)

	if !filter.From.IsZero() {
		args = append(args, filter.From)
		conditions = append(conditions, fmt.Sprintf("sale_date >= $%d", len(args)))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		conditions = append(conditions, fmt.Sprintf("sale_date < $%d", len(args)))
	}
	if filter.InvoiceNumber != "" {
		args = append(args, "%"+filter.InvoiceNumber+"%")
		conditions = append(conditions, fmt.Sprintf("invoice_number ILIKE $%d", len(args)))
	}
	if filter.Customer != "" {
		args = append(args, "%"+filter.Customer+"%")
		conditions = append(conditions, fmt.Sprintf("customer_name ILIKE $%d", len(args)))
	}
	if filter.Phone != "" {
		args = append(args, "%"+filter.Phone+"%")
		conditions = append(conditions, fmt.Sprintf("customer_phone ILIKE $%d", len(args)))
	}
	if filter.SerialIMEI != "" {
		args = append(args, "%"+filter.SerialIMEI+"%")
		conditions = append(conditions, fmt.Sprintf("EXISTS (SELECT 1 FROM sale_items si WHERE si.sale_id = sales.id AND si.serial_imei ILIKE $%d)", len(args)))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY sale_date DESC, id DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sales := make([]domain.Sale, 0, 64)
	saleIDs := make([]string, 0, 64)
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, sale)
		saleIDs = append(saleIDs, sale.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	itemMap, err := loadSaleItems(ctx, s.db, saleIDs)
	if err != nil {
		return nil, err
	}
	for i := range sales {
		sales[i].Items = itemMap[sales[i].ID]
	}

	return sales, nil
}

func (s *Store) CreateReturn(ctx context.Context, ret domain.Return) (*domain.Return, error) {
	if ret.Quantity < 1 {
		return nil, store.ErrInvalidInput
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var saleID string
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM sales WHERE id = $1 FOR UPDATE
	`, ret.SaleID).Scan(&saleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	var (
		productID                   string
		quantity, returnedQuantity  int
		unitPriceCents, profitCents int64
	)
	err = tx.QueryRowContext(ctx, `
		SELECT product_id, quantity, returned_quantity, unit_price_cents, profit_cents
		FROM sale_items
		WHERE id = $1 AND sale_id = $2
		FOR UPDATE
	`, ret.SaleItemID, ret.SaleID).Scan(&productID, &quantity, &returnedQuantity, &unitPriceCents, &profitCents)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	if ret.ProductID != "" && ret.ProductID != productID {
		return nil, store.ErrInvalidInput
	}
	ret.ProductID = productID

	var currentStock int
	err = tx.QueryRowContext(ctx, `
		SELECT quantity FROM products WHERE id = $1 FOR UPDATE
	`, productID).Scan(&currentStock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	// Row state inside the transaction decides the remaining balance, so
	// concurrent partial returns cannot exceed the purchased quantity.
	remaining := quantity - returnedQuantity
	if ret.Quantity > remaining {
		return nil, store.ErrInvalidInput
	}

	ret.ReturnAmountCents = unitPriceCents * int64(ret.Quantity)
	ret.ReturnProfitCents = int64(math.Round(float64(profitCents) * float64(ret.Quantity) / float64(quantity)))
	if ret.ID == "" {
		ret.ID = uuid.NewString()
	}
	if ret.ReturnDate.IsZero() {
		ret.ReturnDate = time.Now().UTC()
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE sale_items
		SET returned_quantity = returned_quantity + $1
		WHERE id = $2
	`, ret.Quantity, ret.SaleItemID)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE products
		SET quantity = quantity + $1, updated_at = $2
		WHERE id = $3
	`, ret.Quantity, ret.ReturnDate, productID)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE sales
		SET net_total_cents = net_total_cents - $1, total_profit_cents = total_profit_cents - $2
		WHERE id = $3
	`, ret.ReturnAmountCents, ret.ReturnProfitCents, ret.SaleID)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO returns (`+returnColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, ret.ID, ret.SaleID, ret.SaleItemID, ret.ProductID, ret.Quantity, ret.ReturnAmountCents,
		ret.ReturnProfitCents, nullIfEmpty(ret.Reason), nullIfEmpty(ret.CreatedBy), ret.ReturnDate)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	created := ret
	return &created, nil
}

func (s *Store) ListReturns(ctx context.Context, filter domain.ReturnFilter) ([]domain.Return, error) {
	query := `SELECT ` + returnColumns + ` FROM returns`
	conditions := make([]string, 0, 2)
	args := make([]any, 0, 3)

	if !filter.From.IsZero() {
		args = append(args, filter.From)
		conditions = append(conditions, fmt.Sprintf("return_date >= $%d", len(args)))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		conditions = append(conditions, fmt.Sprintf("return_date < $%d", len(args)))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY return_date DESC, id DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	returns := make([]domain.Return, 0, 64)
	for rows.Next() {
		ret, err := scanReturn(rows)
		if err != nil {
			return nil, err
		}
		returns = append(returns, ret)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return returns, nil
}

func (s *Store) CreateExpense(ctx context.Context, expense domain.Expense) (*domain.Expense, error) {
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

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO expenses (id, description, amount_cents, expense_date, created_by)
		VALUES ($1, $2, $3, $4, $5)
	`, expense.ID, expense.Description, expense.AmountCents, expense.ExpenseDate, nullIfEmpty(expense.CreatedBy))
	if err != nil {
		return nil, err
	}

	created := expense
	return &created, nil
}

func (s *Store) ListExpenses(ctx context.Context, from time.Time, to time.Time, limit int) ([]domain.Expense, error) {
	query := `SELECT id, description, amount_cents, expense_date, created_by FROM expenses`
	conditions := make([]string, 0, 2)
	args := make([]any, 0, 3)

	if !from.IsZero() {
		args = append(args, from)
		conditions = append(conditions, fmt.Sprintf("expense_date >= $%d", len(args)))
	}
	if !to.IsZero() {
		args = append(args, to)
		conditions = append(conditions, fmt.Sprintf("expense_date < $%d", len(args)))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY expense_date DESC, id DESC"
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expenses := make([]domain.Expense, 0, 64)
	for rows.Next() {
		var e domain.Expense
		var createdBy sql.NullString
		if err := rows.Scan(&e.ID, &e.Description, &e.AmountCents, &e.ExpenseDate, &createdBy); err != nil {
			return nil, err
		}
		e.CreatedBy = createdBy.String
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return expenses, nil
}

func (s *Store) DeleteExpense(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) GetDashboardStats(ctx context.Context, from time.Time, to time.Time, lowStockThreshold int) (domain.DashboardStats, error) {
	var stats domain.DashboardStats

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(net_total_cents), 0), COALESCE(SUM(total_profit_cents), 0)
		FROM sales
		WHERE ($1::timestamptz IS NULL OR sale_date >= $1)
		  AND ($2::timestamptz IS NULL OR sale_date < $2)
	`, nullTime(from), nullTime(to)).Scan(&stats.SalesCount, &stats.RevenueCents, &stats.ProfitCents)
	if err != nil {
		return stats, err
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(return_amount_cents), 0)
		FROM returns
		WHERE ($1::timestamptz IS NULL OR return_date >= $1)
		  AND ($2::timestamptz IS NULL OR return_date < $2)
	`, nullTime(from), nullTime(to)).Scan(&stats.ReturnsCount, &stats.ReturnAmountCents)
	if err != nil {
		return stats, err
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount_cents), 0)
		FROM expenses
		WHERE ($1::timestamptz IS NULL OR expense_date >= $1)
		  AND ($2::timestamptz IS NULL OR expense_date < $2)
	`, nullTime(from), nullTime(to)).Scan(&stats.ExpenseCents)
	if err != nil {
		return stats, err
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE quantity < $1)
		FROM products
	`, lowStockThreshold).Scan(&stats.ProductCount, &stats.LowStockCount)
	if err != nil {
		return stats, err
	}

	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&stats.CategoryCount)
	if err != nil {
		return stats, err
	}

	return stats, nil
}

func (s *Store) GetTopProducts(ctx context.Context, from time.Time, to time.Time, limit int) ([]domain.TopProduct, error) {
	query := `
		SELECT si.product_id, si.product_name,
			SUM(si.quantity - si.returned_quantity),
			SUM(si.unit_price_cents * (si.quantity - si.returned_quantity))
		FROM sale_items si
		JOIN sales s ON s.id = si.sale_id
		WHERE (si.quantity - si.returned_quantity) >= 1
		  AND ($1::timestamptz IS NULL OR s.sale_date >= $1)
		  AND ($2::timestamptz IS NULL OR s.sale_date < $2)
		GROUP BY si.product_id, si.product_name
		ORDER BY 3 DESC, 2 ASC
	`
	args := []any{nullTime(from), nullTime(to)}
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.TopProduct, 0, 16)
	for rows.Next() {
		var tp domain.TopProduct
		if err := rows.Scan(&tp.ProductID, &tp.ProductName, &tp.QuantitySold, &tp.RevenueCents); err != nil {
			return nil, err
		}
		result = append(result, tp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (s *Store) GetCoPurchaseCounts(ctx context.Context, productIDs []string, limit int) ([]domain.CoPurchaseCount, error) {
	if len(productIDs) == 0 {
		return []domain.CoPurchaseCount{}, nil
	}

	query := `
		SELECT si.product_id, COUNT(*)
		FROM sale_items si
		WHERE si.sale_id IN (
			SELECT DISTINCT sale_id FROM sale_items WHERE product_id = ANY($1)
		)
		AND NOT (si.product_id = ANY($1))
		GROUP BY si.product_id
		ORDER BY 2 DESC, 1 ASC
	`
	args := []any{productIDs}
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.CoPurchaseCount, 0, 16)
	for rows.Next() {
		var c domain.CoPurchaseCount
		if err := rows.Scan(&c.ProductID, &c.Count); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (s *Store) CreateAuditLog(ctx context.Context, entry domain.AuditLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, actor_username, actor_role, action, entity_type, entity_id, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, entry.ID, entry.ActorUsername, entry.ActorRole, entry.Action, entry.EntityType,
		nullIfEmpty(entry.EntityID), nullIfEmpty(entry.Detail), entry.CreatedAt)
	return err
}

func (s *Store) ListAuditLogs(ctx context.Context, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	query := `SELECT id, actor_username, actor_role, action, entity_type, entity_id, detail, created_at FROM audit_logs`
	conditions := make([]string, 0, 2)
	args := make([]any, 0, 3)

	if !from.IsZero() {
		args = append(args, from)
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if !to.IsZero() {
		args = append(args, to)
		conditions = append(conditions, fmt.Sprintf("created_at < $%d", len(args)))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]domain.AuditLog, 0, 64)
	for rows.Next() {
		var entry domain.AuditLog
		var entityID, detail sql.NullString
		if err := rows.Scan(&entry.ID, &entry.ActorUsername, &entry.ActorRole, &entry.Action,
			&entry.EntityType, &entityID, &detail, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.EntityID = entityID.String
		entry.Detail = detail.String
		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return logs, nil
}

func (s *Store) ExportSnapshot(ctx context.Context) (*domain.BackupSnapshot, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable, ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	snapshot := domain.BackupSnapshot{ExportedAt: time.Now().UTC()}

	catRows, err := tx.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	for catRows.Next() {
		var c domain.Category
		if err := catRows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			catRows.Close()
			return nil, err
		}
		snapshot.Categories = append(snapshot.Categories, c)
	}
	if err := catRows.Err(); err != nil {
		catRows.Close()
		return nil, err
	}
	catRows.Close()

	prodRows, err := tx.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY name`)
	if err != nil {
		return nil, err
	}
	for prodRows.Next() {
		product, err := scanProduct(prodRows)
		if err != nil {
			prodRows.Close()
			return nil, err
		}
		snapshot.Products = append(snapshot.Products, product)
	}
	if err := prodRows.Err(); err != nil {
		prodRows.Close()
		return nil, err
	}
	prodRows.Close()

	saleRows, err := tx.QueryContext(ctx, `SELECT `+saleColumns+` FROM sales ORDER BY invoice_number`)
	if err != nil {
		return nil, err
	}
	saleIDs := make([]string, 0, 256)
	for saleRows.Next() {
		sale, err := scanSale(saleRows)
		if err != nil {
			saleRows.Close()
			return nil, err
		}
		snapshot.Sales = append(snapshot.Sales, sale)
		saleIDs = append(saleIDs, sale.ID)
	}
	if err := saleRows.Err(); err != nil {
		saleRows.Close()
		return nil, err
	}
	saleRows.Close()

	itemMap, err := loadSaleItems(ctx, tx, saleIDs)
	if err != nil {
		return nil, err
	}
	for i := range snapshot.Sales {
		snapshot.Sales[i].Items = itemMap[snapshot.Sales[i].ID]
	}

	retRows, err := tx.QueryContext(ctx, `SELECT `+returnColumns+` FROM returns ORDER BY id`)
	if err != nil {
		return nil, err
	}
	for retRows.Next() {
		ret, err := scanReturn(retRows)
		if err != nil {
			retRows.Close()
			return nil, err
		}
		snapshot.Returns = append(snapshot.Returns, ret)
	}
	if err := retRows.Err(); err != nil {
		retRows.Close()
		return nil, err
	}
	retRows.Close()

	expRows, err := tx.QueryContext(ctx, `SELECT id, description, amount_cents, expense_date, created_by FROM expenses ORDER BY id`)
	if err != nil {
		return nil, err
	}
	for expRows.Next() {
		var e domain.Expense
		var createdBy sql.NullString
		if err := expRows.Scan(&e.ID, &e.Description, &e.AmountCents, &e.ExpenseDate, &createdBy); err != nil {
			expRows.Close()
			return nil, err
		}
		e.CreatedBy = createdBy.String
		snapshot.Expenses = append(snapshot.Expenses, e)
	}
	if err := expRows.Err(); err != nil {
		expRows.Close()
		return nil, err
	}
	expRows.Close()

	userRows, err := tx.QueryContext(ctx, `SELECT id, username, password, role, active, created_at FROM app_users ORDER BY username`)
	if err != nil {
		return nil, err
	}
	for userRows.Next() {
		var u domain.UserAccount
		if err := userRows.Scan(&u.ID, &u.Username, &u.Password, &u.Role, &u.Active, &u.CreatedAt); err != nil {
			userRows.Close()
			return nil, err
		}
		snapshot.Users = append(snapshot.Users, u)
	}
	if err := userRows.Err(); err != nil {
		userRows.Close()
		return nil, err
	}
	userRows.Close()

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &snapshot, nil
}

func (s *Store) RestoreSnapshot(ctx context.Context, snapshot domain.BackupSnapshot) error {
	for _, category := range snapshot.Categories {
		if category.ID == "" || strings.TrimSpace(category.Name) == "" {
			return store.ErrInvalidInput
		}
	}
	for _, product := range snapshot.Products {
		if product.ID == "" || strings.TrimSpace(product.Name) == "" {
			return store.ErrInvalidInput
		}
	}
	for _, sale := range snapshot.Sales {
		if sale.ID == "" || strings.TrimSpace(sale.InvoiceNumber) == "" {
			return store.ErrInvalidInput
		}
	}
	for _, ret := range snapshot.Returns {
		if ret.ID == "" {
			return store.ErrInvalidInput
		}
	}
	for _, expense := range snapshot.Expenses {
		if expense.ID == "" {
			return store.ErrInvalidInput
		}
	}
	for _, user := range snapshot.Users {
		if strings.TrimSpace(user.Username) == "" || strings.TrimSpace(user.Password) == "" {
			return store.ErrInvalidInput
		}
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	// Child tables first so foreign keys never block the wipe.
	for _, table := range []string{"returns", "sale_items", "sales", "expenses", "products", "categories", "app_users"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return err
		}
	}

	for _, category := range snapshot.Categories {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO categories (id, name, created_at)
			VALUES ($1, $2, $3)
		`, category.ID, category.Name, category.CreatedAt)
		if err != nil {
			return restoreErr(err)
		}
	}

	for _, product := range snapshot.Products {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO products (`+productColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		`, product.ID, product.CategoryID, product.Name, nullIfEmpty(product.Description),
			nullIfEmpty(product.SerialNumber), product.Condition, nullIfEmpty(product.SupplierName),
			nullIfEmpty(product.SupplierPhone), product.PurchasePriceCents, product.SellingPriceCents,
			product.Quantity, product.PTAApproved, product.WarrantyDays, product.CreatedAt, product.UpdatedAt)
		if err != nil {
			return restoreErr(err)
		}
	}

	for _, sale := range snapshot.Sales {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO sales (`+saleColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		`, sale.ID, sale.InvoiceNumber, nullIfEmpty(sale.CustomerName), nullIfEmpty(sale.CustomerPhone),
			sale.PaymentType, sale.SubtotalCents, sale.DiscountType, sale.DiscountAmount, sale.DiscountCents,
			sale.NetTotalCents, sale.TotalProfitCents, nullIfEmpty(sale.CreatedBy), sale.SaleDate)
		if err != nil {
			return restoreErr(err)
		}
		for i, item := range sale.Items {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO sale_items (`+saleItemColumns+`, position)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
			`, item.ID, sale.ID, item.ProductID, item.ProductName, item.Quantity, item.ReturnedQuantity,
				item.UnitPriceCents, item.PurchasePriceCents, item.LineTotalCents, item.ProfitCents,
				nullIfEmpty(item.SerialIMEI), item.WarrantyDays, nullIfEmpty(item.Remarks), i)
			if err != nil {
				return restoreErr(err)
			}
		}
	}

	for _, ret := range snapshot.Returns {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO returns (`+returnColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		`, ret.ID, ret.SaleID, ret.SaleItemID, ret.ProductID, ret.Quantity, ret.ReturnAmountCents,
			ret.ReturnProfitCents, nullIfEmpty(ret.Reason), nullIfEmpty(ret.CreatedBy), ret.ReturnDate)
		if err != nil {
			return restoreErr(err)
		}
	}

	for _, expense := range snapshot.Expenses {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO expenses (id, description, amount_cents, expense_date, created_by)
			VALUES ($1, $2, $3, $4, $5)
		`, expense.ID, expense.Description, expense.AmountCents, expense.ExpenseDate, nullIfEmpty(expense.CreatedBy))
		if err != nil {
			return restoreErr(err)
		}
	}

	for _, user := range snapshot.Users {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO app_users (id, username, password, role, active, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, user.ID, strings.ToLower(strings.TrimSpace(user.Username)), user.Password, user.Role, user.Active, user.CreatedAt)
		if err != nil {
			return restoreErr(err)
		}
	}

	return tx.Commit()
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	username := strings.ToLower(strings.TrimSpace(user.Username))
	if username == "" || strings.TrimSpace(user.Password) == "" {
		return store.ErrInvalidInput
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = "admin"
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_users (id, username, password, role, active, created_at)
		VALUES ($1, $2, $3, $4, true, $5)
	`, user.ID, username, user.Password, user.Role, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrInvalidInput
		}
		return err
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, password, role, active, created_at
		FROM app_users
		ORDER BY username
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 8)
	for rows.Next() {
		var u domain.UserAccount
		if err := rows.Scan(&u.ID, &u.Username, &u.Password, &u.Role, &u.Active, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, username string, password string) error {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || strings.TrimSpace(password) == "" {
		return store.ErrInvalidInput
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE app_users SET password = $1 WHERE username = $2
	`, password, username)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func loadSaleItems(ctx context.Context, q querier, saleIDs []string) (map[string][]domain.SaleItem, error) {
	itemMap := make(map[string][]domain.SaleItem, len(saleIDs))
	if len(saleIDs) == 0 {
		return itemMap, nil
	}

	rows, err := q.QueryContext(ctx, `
		SELECT `+saleItemColumns+`
		FROM sale_items
		WHERE sale_id = ANY($1)
		ORDER BY sale_id, position
	`, saleIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanSaleItem(rows)
		if err != nil {
			return nil, err
		}
		itemMap[item.SaleID] = append(itemMap[item.SaleID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return itemMap, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var p domain.Product
	var description, serial, supplierName, supplierPhone sql.NullString
	err := row.Scan(&p.ID, &p.CategoryID, &p.Name, &description, &serial, &p.Condition,
		&supplierName, &supplierPhone, &p.PurchasePriceCents, &p.SellingPriceCents,
		&p.Quantity, &p.PTAApproved, &p.WarrantyDays, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.Product{}, err
	}
	p.Description = description.String
	p.SerialNumber = serial.String
	p.SupplierName = supplierName.String
	p.SupplierPhone = supplierPhone.String
	return p, nil
}

func scanSale(row rowScanner) (domain.Sale, error) {
	var sale domain.Sale
	var customerName, customerPhone, createdBy sql.NullString
	err := row.Scan(&sale.ID, &sale.InvoiceNumber, &customerName, &customerPhone, &sale.PaymentType,
		&sale.SubtotalCents, &sale.DiscountType, &sale.DiscountAmount, &sale.DiscountCents,
		&sale.NetTotalCents, &sale.TotalProfitCents, &createdBy, &sale.SaleDate)
	if err != nil {
		return domain.Sale{}, err
	}
	sale.CustomerName = customerName.String
	sale.CustomerPhone = customerPhone.String
	sale.CreatedBy = createdBy.String
	return sale, nil
}

func scanSaleItem(row rowScanner) (domain.SaleItem, error) {
	var item domain.SaleItem
	var serial, remarks sql.NullString
	err := row.Scan(&item.ID, &item.SaleID, &item.ProductID, &item.ProductName, &item.Quantity,
		&item.ReturnedQuantity, &item.UnitPriceCents, &item.PurchasePriceCents, &item.LineTotalCents,
		&item.ProfitCents, &serial, &item.WarrantyDays, &remarks)
	if err != nil {
		return domain.SaleItem{}, err
	}
	item.SerialIMEI = serial.String
	item.Remarks = remarks.String
	return item, nil
}

func scanReturn(row rowScanner) (domain.Return, error) {
	var ret domain.Return
	var reason, createdBy sql.NullString
	err := row.Scan(&ret.ID, &ret.SaleID, &ret.SaleItemID, &ret.ProductID, &ret.Quantity,
		&ret.ReturnAmountCents, &ret.ReturnProfitCents, &reason, &createdBy, &ret.ReturnDate)
	if err != nil {
		return domain.Return{}, err
	}
	ret.Reason = reason.String
	ret.CreatedBy = createdBy.String
	return ret, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

func restoreErr(err error) error {
	if isUniqueViolation(err) {
		return store.ErrDuplicateInvoice
	}
	if isForeignKeyViolation(err) {
		return store.ErrInvalidInput
	}
	return err
}

func nullIfEmpty(val string) any {
	if strings.TrimSpace(val) == "" {
		return nil
	}
	return val
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

func uniqueProductIDs(items []domain.SaleItem) []string {
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	sort.Strings(ids)
	return ids
}
