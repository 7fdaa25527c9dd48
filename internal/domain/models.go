package domain

import "time"

type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type CategoryCreateRequest struct {
	Name string `json:"name"`
}

type Product struct {
	ID                 string    `json:"id"`
	CategoryID         string    `json:"category_id"`
	Name               string    `json:"name"`
	Description        string    `json:"description,omitempty"`
	SerialNumber       string    `json:"serial_number,omitempty"`
	Condition          string    `json:"condition"`
	SupplierName       string    `json:"supplier_name,omitempty"`
	SupplierPhone      string    `json:"supplier_phone,omitempty"`
	PurchasePriceCents int64     `json:"purchase_price_cents"`
	SellingPriceCents  int64     `json:"selling_price_cents"`
	Quantity           int       `json:"quantity"`
	PTAApproved        bool      `json:"pta_approved"`
	WarrantyDays       int       `json:"warranty_days"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type ProductCreateRequest struct {
	CategoryID         string `json:"category_id"`
	Name               string `json:"name"`
	Description        string `json:"description,omitempty"`
	SerialNumber       string `json:"serial_number,omitempty"`
	Condition          string `json:"condition"`
	SupplierName       string `json:"supplier_name,omitempty"`
	SupplierPhone      string `json:"supplier_phone,omitempty"`
	PurchasePriceCents int64  `json:"purchase_price_cents"`
	SellingPriceCents  int64  `json:"selling_price_cents"`
	Quantity           int    `json:"quantity"`
	PTAApproved        bool   `json:"pta_approved"`
	WarrantyDays       int    `json:"warranty_days"`
}

type ProductUpdateRequest struct {
	CategoryID         *string `json:"category_id,omitempty"`
	Name               *string `json:"name,omitempty"`
	Description        *string `json:"description,omitempty"`
	SerialNumber       *string `json:"serial_number,omitempty"`
	Condition          *string `json:"condition,omitempty"`
	SupplierName       *string `json:"supplier_name,omitempty"`
	SupplierPhone      *string `json:"supplier_phone,omitempty"`
	PurchasePriceCents *int64  `json:"purchase_price_cents,omitempty"`
	SellingPriceCents  *int64  `json:"selling_price_cents,omitempty"`
	PTAApproved        *bool   `json:"pta_approved,omitempty"`
	WarrantyDays       *int    `json:"warranty_days,omitempty"`
}

type StockAdjustRequest struct {
	Delta  int    `json:"delta"`
	Reason string `json:"reason,omitempty"`
}

type ProductFilter struct {
	Query      string
	CategoryID string
	Condition  string
	Limit      int
}

type SaleLineRequest struct {
	ProductID          string `json:"product_id"`
	ProductName        string `json:"product_name"`
	Quantity           int    `json:"quantity"`
	UnitPriceCents     int64  `json:"unit_price_cents"`
	PurchasePriceCents int64  `json:"purchase_price_cents"`
	LineTotalCents     int64  `json:"line_total_cents"`
	ProfitCents        int64  `json:"profit_cents"`
	SerialIMEI         string `json:"serial_imei,omitempty"`
	WarrantyDays       int    `json:"warranty_days,omitempty"`
	Remarks            string `json:"remarks,omitempty"`
}

type SaleCreateRequest struct {
	CustomerName   string            `json:"customer_name,omitempty"`
	CustomerPhone  string            `json:"customer_phone,omitempty"`
	PaymentType    string            `json:"payment_type"`
	DiscountAmount float64           `json:"discount_amount"`
	DiscountType   string            `json:"discount_type,omitempty"`
	Items          []SaleLineRequest `json:"items"`
}

type SaleItem struct {
	ID                 string `json:"id"`
	SaleID             string `json:"sale_id"`
	ProductID          string `json:"product_id"`
	ProductName        string `json:"product_name"`
	Quantity           int    `json:"quantity"`
	ReturnedQuantity   int    `json:"returned_quantity"`
	UnitPriceCents     int64  `json:"unit_price_cents"`
	PurchasePriceCents int64  `json:"purchase_price_cents"`
	LineTotalCents     int64  `json:"line_total_cents"`
	ProfitCents        int64  `json:"profit_cents"`
	SerialIMEI         string `json:"serial_imei,omitempty"`
	WarrantyDays       int    `json:"warranty_days,omitempty"`
	Remarks            string `json:"remarks,omitempty"`
}

type Sale struct {
	ID               string     `json:"id"`
	InvoiceNumber    string     `json:"invoice_number"`
	CustomerName     string     `json:"customer_name,omitempty"`
	CustomerPhone    string     `json:"customer_phone,omitempty"`
	PaymentType      string     `json:"payment_type"`
	SubtotalCents    int64      `json:"subtotal_cents"`
	DiscountType     string     `json:"discount_type,omitempty"`
	DiscountAmount   float64    `json:"discount_amount"`
	DiscountCents    int64      `json:"discount_cents"`
	NetTotalCents    int64      `json:"net_total_cents"`
	TotalProfitCents int64      `json:"total_profit_cents"`
	CreatedBy        string     `json:"created_by"`
	SaleDate         time.Time  `json:"sale_date"`
	Items            []SaleItem `json:"items,omitempty"`
}

type SaleResponse struct {
	SaleID           string    `json:"sale_id"`
	InvoiceNumber    string    `json:"invoice_number"`
	SubtotalCents    int64     `json:"subtotal_cents"`
	DiscountCents    int64     `json:"discount_cents"`
	NetTotalCents    int64     `json:"net_total_cents"`
	TotalProfitCents int64     `json:"total_profit_cents"`
	SaleDate         time.Time `json:"sale_date"`
}

type SaleFilter struct {
	From          time.Time
	To            time.Time
	InvoiceNumber string
	Customer      string
	Phone         string
	SerialIMEI    string
	Limit         int
}

type SaleSearchRequest struct {
	FromDate      string
	ToDate        string
	InvoiceNumber string
	Customer      string
	Phone         string
	SerialIMEI    string
	Limit         int
}

type ReturnCreateRequest struct {
	SaleID     string `json:"sale_id"`
	SaleItemID string `json:"sale_item_id"`
	ProductID  string `json:"product_id"`
	Quantity   int    `json:"quantity"`
	Reason     string `json:"reason,omitempty"`
}

type Return struct {
	ID                string    `json:"id"`
	SaleID            string    `json:"sale_id"`
	SaleItemID        string    `json:"sale_item_id"`
	ProductID         string    `json:"product_id"`
	Quantity          int       `json:"quantity"`
	ReturnAmountCents int64     `json:"return_amount_cents"`
	ReturnProfitCents int64     `json:"return_profit_cents"`
	Reason            string    `json:"reason,omitempty"`
	CreatedBy         string    `json:"created_by"`
	ReturnDate        time.Time `json:"return_date"`
}

type ReturnResponse struct {
	ReturnID            string `json:"return_id"`
	ReturnAmountCents   int64  `json:"return_amount_cents"`
	ReturnProfitCents   int64  `json:"return_profit_cents"`
	ReturnedQuantity    int    `json:"returned_quantity"`
	RemainingReturnable int    `json:"remaining_returnable"`
}

type ReturnFilter struct {
	From  time.Time
	To    time.Time
	Limit int
}

type Expense struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	AmountCents int64     `json:"amount_cents"`
	ExpenseDate time.Time `json:"expense_date"`
	CreatedBy   string    `json:"created_by"`
}

type ExpenseCreateRequest struct {
	Description string `json:"description"`
	AmountCents int64  `json:"amount_cents"`
	ExpenseDate string `json:"expense_date,omitempty"`
}

type DashboardStats struct {
	SalesCount        int64 `json:"sales_count"`
	RevenueCents      int64 `json:"revenue_cents"`
	ProfitCents       int64 `json:"profit_cents"`
	ExpenseCents      int64 `json:"expense_cents"`
	ReturnsCount      int64 `json:"returns_count"`
	ReturnAmountCents int64 `json:"return_amount_cents"`
	ProductCount      int64 `json:"product_count"`
	LowStockCount     int64 `json:"low_stock_count"`
	CategoryCount     int64 `json:"category_count"`
}

type TopProduct struct {
	ProductID    string `json:"product_id"`
	ProductName  string `json:"product_name"`
	QuantitySold int    `json:"quantity_sold"`
	RevenueCents int64  `json:"revenue_cents"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	UserID      string `json:"user_id"`
	ExpiresAt   string `json:"expires_at"`
}

type Actor struct {
	UserID   string
	Username string
	Role     string
}

type StaffCreateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type StaffUser struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// UserAccount is the persistence model for auth credentials. Password holds
// a bcrypt hash; it is serialized only inside backup snapshots, never by the
// regular user endpoints.
type UserAccount struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"password"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type AuditLog struct {
	ID            string    `json:"id"`
	ActorUsername string    `json:"actor_username"`
	ActorRole     string    `json:"actor_role"`
	Action        string    `json:"action"`
	EntityType    string    `json:"entity_type"`
	EntityID      string    `json:"entity_id"`
	Detail        string    `json:"detail"`
	CreatedAt     time.Time `json:"created_at"`
}

type CartLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type SuggestionRequest struct {
	Items []CartLine `json:"items"`
}

type AddonSuggestion struct {
	ProductID           string  `json:"product_id"`
	Name                string  `json:"name"`
	SellingPriceCents   int64   `json:"selling_price_cents"`
	ExpectedProfitCents int64   `json:"expected_profit_cents"`
	ReasonCode          string  `json:"reason_code"`
	Confidence          float64 `json:"confidence"`
}

type SuggestionResponse struct {
	Suggestion *AddonSuggestion `json:"suggestion,omitempty"`
	LatencyMS  int64            `json:"latency_ms"`
}

type CoPurchaseCount struct {
	ProductID string `json:"product_id"`
	Count     int    `json:"count"`
}

type BackupSnapshot struct {
	ExportedAt time.Time     `json:"exported_at"`
	Categories []Category    `json:"categories"`
	Products   []Product     `json:"products"`
	Sales      []Sale        `json:"sales"`
	Returns    []Return      `json:"returns"`
	Expenses   []Expense     `json:"expenses"`
	Users      []UserAccount `json:"users"`
}

const (
	ConditionNew  = "new"
	ConditionUsed = "used"
)

const (
	PaymentCash         = "cash"
	PaymentBankTransfer = "bank_transfer"
	PaymentCard         = "card"
)

const (
	DiscountFlat       = "flat"
	DiscountPercentage = "percentage"
)
