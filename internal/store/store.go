package store

import (
	"context"
	"errors"
	"time"

	"konterhp/backend/internal/domain"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrDuplicateInvoice = errors.New("duplicate invoice number")
	ErrCategoryInUse    = errors.New("category in use")
)

type Repository interface {
	CreateCategory(ctx context.Context, category domain.Category) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	GetCategoryByID(ctx context.Context, id string) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error
	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, update domain.ProductUpdateRequest) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	GetProductByID(ctx context.Context, id string) (*domain.Product, error)
	GetProductsByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error)
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	ListLowStockProducts(ctx context.Context, threshold int, limit int) ([]domain.Product, error)
	AdjustProductQuantity(ctx context.Context, productID string, delta int) (*domain.Product, error)
	CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error)
	GetSaleByID(ctx context.Context, id string) (*domain.Sale, error)
	GetSaleByInvoice(ctx context.Context, invoiceNumber string) (*domain.Sale, error)
	SearchSales(ctx context.Context, filter domain.SaleFilter) ([]domain.Sale, error)
	CreateReturn(ctx context.Context, ret domain.Return) (*domain.Return, error)
	ListReturns(ctx context.Context, filter domain.ReturnFilter) ([]domain.Return, error)
	CreateExpense(ctx context.Context, expense domain.Expense) (*domain.Expense, error)
	ListExpenses(ctx context.Context, from time.Time, to time.Time, limit int) ([]domain.Expense, error)
	DeleteExpense(ctx context.Context, id string) error
	GetDashboardStats(ctx context.Context, from time.Time, to time.Time, lowStockThreshold int) (domain.DashboardStats, error)
	GetTopProducts(ctx context.Context, from time.Time, to time.Time, limit int) ([]domain.TopProduct, error)
	GetCoPurchaseCounts(ctx context.Context, productIDs []string, limit int) ([]domain.CoPurchaseCount, error)
	CreateAuditLog(ctx context.Context, entry domain.AuditLog) error
	ListAuditLogs(ctx context.Context, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error)
	ExportSnapshot(ctx context.Context) (*domain.BackupSnapshot, error)
	RestoreSnapshot(ctx context.Context, snapshot domain.BackupSnapshot) error
	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error
}
