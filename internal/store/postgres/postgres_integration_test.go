package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"konterhp/backend/internal/domain"
	"konterhp/backend/internal/store"
)

func TestSaleAndReturnAdjustInventory(t *testing.T) {
	databaseURL := os.Getenv("KONTERHP_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set KONTERHP_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})

	stamp := time.Now().UnixNano()
	categoryID := fmt.Sprintf("cat-it-%d", stamp)
	productID := fmt.Sprintf("prod-it-%d", stamp)
	saleID := fmt.Sprintf("sale-it-%d", stamp)
	invoice := fmt.Sprintf("INV-IT-%d", stamp)

	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM returns WHERE sale_id = $1`, saleID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM sale_items WHERE sale_id = $1`, saleID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM sales WHERE id = $1`, saleID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, productID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, categoryID)
	})

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, created_at)
		VALUES ($1, $2, now())
	`, categoryID, fmt.Sprintf("Aksesoris IT %d", stamp)); err != nil {
		t.Fatalf("insert category: %v", err)
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1, $2, 'Charger IT', null, null, 'new', null, null, 45000, 85000, 10, true, 0, now(), now())
	`, productID, categoryID); err != nil {
		t.Fatalf("insert product: %v", err)
	}

	sale, err := s.CreateSale(ctx, domain.Sale{
		ID:               saleID,
		InvoiceNumber:    invoice,
		PaymentType:      domain.PaymentCash,
		SubtotalCents:    170000,
		NetTotalCents:    170000,
		TotalProfitCents: 80000,
		CreatedBy:        "integration",
		Items: []domain.SaleItem{{
			ProductID:          productID,
			ProductName:        "Charger IT",
			Quantity:           2,
			UnitPriceCents:     85000,
			PurchasePriceCents: 45000,
			LineTotalCents:     170000,
			ProfitCents:        80000,
		}},
	})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
	if len(sale.Items) != 1 || sale.Items[0].ID == "" {
		t.Fatalf("expected a persisted sale item, got %+v", sale.Items)
	}

	var qty int
	if err := s.db.QueryRowContext(ctx, `
		SELECT quantity FROM products WHERE id = $1
	`, productID).Scan(&qty); err != nil {
		t.Fatalf("query stock: %v", err)
	}
	if qty != 8 {
		t.Fatalf("expected stock 8 after sale, got %d", qty)
	}

	_, err = s.CreateSale(ctx, domain.Sale{
		InvoiceNumber:    invoice,
		PaymentType:      domain.PaymentCash,
		SubtotalCents:    85000,
		NetTotalCents:    85000,
		TotalProfitCents: 40000,
		Items: []domain.SaleItem{{
			ProductID:      productID,
			ProductName:    "Charger IT",
			Quantity:       1,
			UnitPriceCents: 85000,
			LineTotalCents: 85000,
			ProfitCents:    40000,
		}},
	})
	if !errors.Is(err, store.ErrDuplicateInvoice) {
		t.Fatalf("expected duplicate invoice error, got %v", err)
	}

	ret, err := s.CreateReturn(ctx, domain.Return{
		SaleID:     saleID,
		SaleItemID: sale.Items[0].ID,
		Quantity:   1,
		Reason:     "integration test return",
		CreatedBy:  "integration",
	})
	if err != nil {
		t.Fatalf("create return: %v", err)
	}
	if ret.ReturnAmountCents != 85000 {
		t.Fatalf("expected return amount 85000, got %d", ret.ReturnAmountCents)
	}
	if ret.ReturnProfitCents != 40000 {
		t.Fatalf("expected return profit 40000, got %d", ret.ReturnProfitCents)
	}

	if err := s.db.QueryRowContext(ctx, `
		SELECT quantity FROM products WHERE id = $1
	`, productID).Scan(&qty); err != nil {
		t.Fatalf("query stock: %v", err)
	}
	if qty != 9 {
		t.Fatalf("expected stock 9 after return restock, got %d", qty)
	}

	updated, err := s.GetSaleByID(ctx, saleID)
	if err != nil {
		t.Fatalf("get sale: %v", err)
	}
	if updated.NetTotalCents != 85000 {
		t.Fatalf("expected net total 85000 after return, got %d", updated.NetTotalCents)
	}
	if updated.TotalProfitCents != 40000 {
		t.Fatalf("expected total profit 40000 after return, got %d", updated.TotalProfitCents)
	}
	if len(updated.Items) != 1 || updated.Items[0].ReturnedQuantity != 1 {
		t.Fatalf("expected returned quantity 1 on the sale item, got %+v", updated.Items)
	}

	if _, err := s.AdjustProductQuantity(ctx, productID, -100); !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected floor rejection for oversized correction, got %v", err)
	}
	if _, err := s.AdjustProductQuantity(ctx, fmt.Sprintf("prod-missing-%d", stamp), -1); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found for unknown product, got %v", err)
	}
	adjusted, err := s.AdjustProductQuantity(ctx, productID, -9)
	if err != nil {
		t.Fatalf("adjust to floor: %v", err)
	}
	if adjusted.Quantity != 0 {
		t.Fatalf("expected quantity 0 after draining stock, got %d", adjusted.Quantity)
	}
}
