package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"konterhp/backend/internal/domain"
	"konterhp/backend/internal/service"
	"konterhp/backend/internal/store/memory"
	"konterhp/backend/internal/suggestion"
)

// newTestAPI builds a full API with an in-memory store, real AuthManager and
// real Service so handler tests exercise the complete request path.
func newTestAPI(t *testing.T) *API {
	t.Helper()

	repo := memory.NewSeeded()
	engine := suggestion.NewEngine(nil, 0)
	svc := service.New(repo, engine, 5)
	auth := NewAuthManager("test-secret-key", time.Hour, "135792", repo)

	api := New(svc, auth, "*")
	t.Cleanup(api.Close)
	return api
}

func TestHandleHealth(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["ok"] != true {
		t.Fatalf("expected ok:true, got %v", body["ok"])
	}
}

func TestHandleLogin_Success(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	payload, _ := json.Marshal(map[string]string{
		"username": "admin",
		"password": "admin123",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var body domain.LoginResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.AccessToken == "" {
		t.Fatalf("expected access_token in response")
	}
	if body.Role != "admin" {
		t.Fatalf("expected admin role, got %q", body.Role)
	}
}

func TestHandleLogin_InvalidCredentials(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	payload, _ := json.Marshal(map[string]string{
		"username": "admin",
		"password": "wrongpassword",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestHandleProducts_RequiresAuth(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestHandleProducts_WithValidToken(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginAsAdmin(t, api)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?q=charger", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var body struct {
		Products []domain.Product `json:"products"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Products) != 1 || body.Products[0].Name != "Charger Type-C 33W" {
		t.Fatalf("expected charger search hit, got %+v", body.Products)
	}
}

func findProductOverHTTP(t *testing.T, api *API, token string, name string) domain.Product {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list products failed: %d %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Products []domain.Product `json:"products"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode products: %v", err)
	}
	for _, product := range body.Products {
		if product.Name == name {
			return product
		}
	}
	t.Fatalf("product %q not found", name)
	return domain.Product{}
}

func TestSaleAndReturnFlowOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginAsAdmin(t, api)
	csrf := fetchCSRFToken(t, api)
	charger := findProductOverHTTP(t, api, token, "Charger Type-C 33W")

	salePayload, _ := json.Marshal(domain.SaleCreateRequest{
		PaymentType: "cash",
		Items: []domain.SaleLineRequest{
			{
				ProductID:          charger.ID,
				Quantity:           2,
				UnitPriceCents:     85000,
				PurchasePriceCents: 45000,
				LineTotalCents:     170000,
				ProfitCents:        80000,
			},
		},
	})
	saleReq := httptest.NewRequest(http.MethodPost, "/api/v1/sales", bytes.NewReader(salePayload))
	saleReq.Header.Set("Content-Type", "application/json")
	saleReq.Header.Set("Authorization", "Bearer "+token)
	saleReq.Header.Set("X-CSRF-Token", csrf)
	saleRec := httptest.NewRecorder()
	handler.ServeHTTP(saleRec, saleReq)

	if saleRec.Code != http.StatusCreated {
		t.Fatalf("create sale expected 201, got %d (body: %s)", saleRec.Code, saleRec.Body.String())
	}

	var saleResp domain.SaleResponse
	if err := json.NewDecoder(saleRec.Body).Decode(&saleResp); err != nil {
		t.Fatalf("decode sale response: %v", err)
	}
	if saleResp.NetTotalCents != 170000 {
		t.Fatalf("expected net total 170000, got %d", saleResp.NetTotalCents)
	}

	getReq := httptest.NewRequest(http.MethodGet, "/api/v1/sales/"+saleResp.SaleID, nil)
	getReq.Header.Set("Authorization", "Bearer "+token)
	getRec := httptest.NewRecorder()
	handler.ServeHTTP(getRec, getReq)
	if getRec.Code != http.StatusOK {
		t.Fatalf("get sale expected 200, got %d", getRec.Code)
	}

	var saleBody struct {
		Sale domain.Sale `json:"sale"`
	}
	if err := json.NewDecoder(getRec.Body).Decode(&saleBody); err != nil {
		t.Fatalf("decode sale: %v", err)
	}
	if len(saleBody.Sale.Items) != 1 {
		t.Fatalf("expected 1 sale item, got %d", len(saleBody.Sale.Items))
	}

	returnPayload, _ := json.Marshal(domain.ReturnCreateRequest{
		SaleID:     saleBody.Sale.ID,
		SaleItemID: saleBody.Sale.Items[0].ID,
		ProductID:  charger.ID,
		Quantity:   1,
		Reason:     "port longgar",
	})
	returnReq := httptest.NewRequest(http.MethodPost, "/api/v1/returns", bytes.NewReader(returnPayload))
	returnReq.Header.Set("Content-Type", "application/json")
	returnReq.Header.Set("Authorization", "Bearer "+token)
	returnReq.Header.Set("X-CSRF-Token", csrf)
	returnRec := httptest.NewRecorder()
	handler.ServeHTTP(returnRec, returnReq)

	if returnRec.Code != http.StatusCreated {
		t.Fatalf("return expected 201, got %d (body: %s)", returnRec.Code, returnRec.Body.String())
	}

	var returnResp domain.ReturnResponse
	if err := json.NewDecoder(returnRec.Body).Decode(&returnResp); err != nil {
		t.Fatalf("decode return response: %v", err)
	}
	if returnResp.ReturnAmountCents != 85000 {
		t.Fatalf("expected return amount 85000, got %d", returnResp.ReturnAmountCents)
	}

	invoiceReq := httptest.NewRequest(http.MethodGet, "/api/v1/sales/invoice/"+saleResp.InvoiceNumber, nil)
	invoiceReq.Header.Set("Authorization", "Bearer "+token)
	invoiceRec := httptest.NewRecorder()
	handler.ServeHTTP(invoiceRec, invoiceReq)
	if invoiceRec.Code != http.StatusOK {
		t.Fatalf("invoice lookup expected 200, got %d", invoiceRec.Code)
	}

	var invoiceBody struct {
		Sale domain.Sale `json:"sale"`
	}
	if err := json.NewDecoder(invoiceRec.Body).Decode(&invoiceBody); err != nil {
		t.Fatalf("decode invoice lookup: %v", err)
	}
	if invoiceBody.Sale.NetTotalCents != 85000 {
		t.Fatalf("expected net total 85000 after return, got %d", invoiceBody.Sale.NetTotalCents)
	}
}

func TestStockAdjustEndpoint(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginAsAdmin(t, api)
	csrf := fetchCSRFToken(t, api)
	battery := findProductOverHTTP(t, api, token, "Baterai iPhone 11")

	payload, _ := json.Marshal(domain.StockAdjustRequest{Delta: -2, Reason: "dipakai servis"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/"+battery.ID+"/stock", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-CSRF-Token", csrf)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var body struct {
		Product domain.Product `json:"product"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Product.Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", body.Product.Quantity)
	}

	tooMuch, _ := json.Marshal(domain.StockAdjustRequest{Delta: -10, Reason: "salah hitung"})
	badReq := httptest.NewRequest(http.MethodPost, "/api/v1/products/"+battery.ID+"/stock", bytes.NewReader(tooMuch))
	badReq.Header.Set("Content-Type", "application/json")
	badReq.Header.Set("Authorization", "Bearer "+token)
	badReq.Header.Set("X-CSRF-Token", csrf)
	badRec := httptest.NewRecorder()
	handler.ServeHTTP(badRec, badReq)

	if badRec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative stock, got %d", badRec.Code)
	}
}

func TestUsersEndpointSuperuserOnly(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	adminToken := loginAsAdmin(t, api)
	ownerToken := loginAsOwner(t, api)
	csrf := fetchCSRFToken(t, api)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for admin on users, got %d", rec.Code)
	}

	listReq := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	listReq.Header.Set("Authorization", "Bearer "+ownerToken)
	listRec := httptest.NewRecorder()
	handler.ServeHTTP(listRec, listReq)
	if listRec.Code != http.StatusOK {
		t.Fatalf("expected 200 for owner on users, got %d", listRec.Code)
	}

	createPayload, _ := json.Marshal(domain.StaffCreateRequest{Username: "kasir1", Password: "rahasia1"})
	createReq := httptest.NewRequest(http.MethodPost, "/api/v1/users", bytes.NewReader(createPayload))
	createReq.Header.Set("Content-Type", "application/json")
	createReq.Header.Set("Authorization", "Bearer "+ownerToken)
	createReq.Header.Set("X-CSRF-Token", csrf)
	createRec := httptest.NewRecorder()
	handler.ServeHTTP(createRec, createReq)
	if createRec.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating staff, got %d (body: %s)", createRec.Code, createRec.Body.String())
	}

	dupReq := httptest.NewRequest(http.MethodPost, "/api/v1/users", bytes.NewReader(createPayload))
	dupReq.Header.Set("Content-Type", "application/json")
	dupReq.Header.Set("Authorization", "Bearer "+ownerToken)
	dupReq.Header.Set("X-CSRF-Token", csrf)
	dupRec := httptest.NewRecorder()
	handler.ServeHTTP(dupRec, dupReq)
	if dupRec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate username, got %d", dupRec.Code)
	}

	weakPayload, _ := json.Marshal(domain.StaffCreateRequest{Username: "ab", Password: "rahasia1"})
	weakReq := httptest.NewRequest(http.MethodPost, "/api/v1/users", bytes.NewReader(weakPayload))
	weakReq.Header.Set("Content-Type", "application/json")
	weakReq.Header.Set("Authorization", "Bearer "+ownerToken)
	weakReq.Header.Set("X-CSRF-Token", csrf)
	weakRec := httptest.NewRecorder()
	handler.ServeHTTP(weakRec, weakReq)
	if weakRec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for weak username, got %d", weakRec.Code)
	}
}

func TestOwnerOnlyRoutesRejectAdminToken(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginAsAdmin(t, api)

	for _, path := range []string{
		"/api/v1/reports/dashboard",
		"/api/v1/reports/top-products",
		"/api/v1/expenses",
		"/api/v1/export/sales.csv",
		"/api/v1/backup",
		"/api/v1/audit-logs",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403 for admin on %s, got %d", path, rec.Code)
		}
	}
}

func TestDashboardEndpointSupportsHTMLFormat(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginAsOwner(t, api)

	jsonReq := httptest.NewRequest(http.MethodGet, "/api/v1/reports/dashboard", nil)
	jsonReq.Header.Set("Authorization", "Bearer "+token)
	jsonRec := httptest.NewRecorder()
	handler.ServeHTTP(jsonRec, jsonReq)
	if jsonRec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", jsonRec.Code)
	}

	var stats domain.DashboardStats
	if err := json.NewDecoder(jsonRec.Body).Decode(&stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.ProductCount != 12 {
		t.Fatalf("expected 12 products, got %d", stats.ProductCount)
	}

	htmlReq := httptest.NewRequest(http.MethodGet, "/api/v1/reports/dashboard?format=html", nil)
	htmlReq.Header.Set("Authorization", "Bearer "+token)
	htmlRec := httptest.NewRecorder()
	handler.ServeHTTP(htmlRec, htmlReq)
	if htmlRec.Code != http.StatusOK {
		t.Fatalf("expected 200 for html report, got %d", htmlRec.Code)
	}
	if got := htmlRec.Header().Get("Content-Type"); !strings.Contains(got, "text/html") {
		t.Fatalf("expected text/html content type, got %q", got)
	}
	if !strings.Contains(htmlRec.Body.String(), "KonterHP Sales Report") {
		t.Fatalf("expected report heading in html body")
	}
}

func TestSalesCSVExportEndpoint(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginAsOwner(t, api)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/export/sales.csv", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); !strings.Contains(got, "text/csv") {
		t.Fatalf("expected text/csv content type, got %q", got)
	}
	if !strings.HasPrefix(rec.Body.String(), "invoice_number,") {
		t.Fatalf("expected CSV header, got %q", rec.Body.String())
	}
}

func TestCartSuggestionEndpoint(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginAsAdmin(t, api)
	csrf := fetchCSRFToken(t, api)
	charger := findProductOverHTTP(t, api, token, "Charger Type-C 33W")

	payload, _ := json.Marshal(domain.SuggestionRequest{
		Items: []domain.CartLine{{ProductID: charger.ID, Quantity: 1}},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/suggestion", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-CSRF-Token", csrf)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var resp domain.SuggestionResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode suggestion: %v", err)
	}
	if resp.Suggestion != nil {
		t.Fatalf("expected no suggestion without purchase history, got %+v", resp.Suggestion)
	}
}

// brokenSaleRepo fails every sale insert the way a lost database would.
type brokenSaleRepo struct {
	*memory.Store
}

func (brokenSaleRepo) CreateSale(context.Context, domain.Sale) (*domain.Sale, error) {
	return nil, fmt.Errorf("write sale: connection reset by peer")
}

func TestStorageFailureIsMaskedAsInternalError(t *testing.T) {
	repo := brokenSaleRepo{memory.NewSeeded()}
	svc := service.New(repo, suggestion.NewEngine(nil, 0), 5)
	api := New(svc, NewAuthManager("test-secret-key", time.Hour, "135792", repo), "*")
	t.Cleanup(api.Close)
	handler := api.Handler()
	token := loginAsAdmin(t, api)
	csrf := fetchCSRFToken(t, api)
	charger := findProductOverHTTP(t, api, token, "Charger Type-C 33W")

	payload, _ := json.Marshal(domain.SaleCreateRequest{
		PaymentType: "cash",
		Items: []domain.SaleLineRequest{
			{
				ProductID:          charger.ID,
				Quantity:           1,
				UnitPriceCents:     85000,
				PurchasePriceCents: 45000,
				LineTotalCents:     85000,
				ProfitCents:        40000,
			},
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sales", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-CSRF-Token", csrf)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for storage failure, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "connection reset") {
		t.Fatalf("storage error leaked to client: %s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "internal server error") {
		t.Fatalf("expected masked message, got: %s", rec.Body.String())
	}
}

func buildRestoreForm(t *testing.T, pin string, snapshot []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("owner_pin", pin); err != nil {
		t.Fatalf("write pin field: %v", err)
	}
	part, err := writer.CreateFormFile("backup", "backup.json")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(snapshot); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func TestBackupAndRestoreOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	adminToken := loginAsAdmin(t, api)
	ownerToken := loginAsOwner(t, api)
	csrf := fetchCSRFToken(t, api)

	forbidden := httptest.NewRequest(http.MethodGet, "/api/v1/backup", nil)
	forbidden.Header.Set("Authorization", "Bearer "+adminToken)
	forbiddenRec := httptest.NewRecorder()
	handler.ServeHTTP(forbiddenRec, forbidden)
	if forbiddenRec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for admin backup, got %d", forbiddenRec.Code)
	}

	backupReq := httptest.NewRequest(http.MethodGet, "/api/v1/backup", nil)
	backupReq.Header.Set("Authorization", "Bearer "+ownerToken)
	backupRec := httptest.NewRecorder()
	handler.ServeHTTP(backupRec, backupReq)
	if backupRec.Code != http.StatusOK {
		t.Fatalf("expected 200 for owner backup, got %d (body: %s)", backupRec.Code, backupRec.Body.String())
	}

	var snapshot domain.BackupSnapshot
	if err := json.NewDecoder(backupRec.Body).Decode(&snapshot); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if len(snapshot.Products) != 12 {
		t.Fatalf("expected 12 products in snapshot, got %d", len(snapshot.Products))
	}

	raw, err := json.Marshal(snapshot)
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}

	wrongBody, wrongType := buildRestoreForm(t, "999999", raw)
	wrongReq := httptest.NewRequest(http.MethodPost, "/api/v1/restore", wrongBody)
	wrongReq.Header.Set("Content-Type", wrongType)
	wrongReq.Header.Set("Authorization", "Bearer "+ownerToken)
	wrongReq.Header.Set("X-CSRF-Token", csrf)
	wrongRec := httptest.NewRecorder()
	handler.ServeHTTP(wrongRec, wrongReq)
	if wrongRec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for wrong pin, got %d (body: %s)", wrongRec.Code, wrongRec.Body.String())
	}

	goodBody, goodType := buildRestoreForm(t, "135792", raw)
	goodReq := httptest.NewRequest(http.MethodPost, "/api/v1/restore", goodBody)
	goodReq.Header.Set("Content-Type", goodType)
	goodReq.Header.Set("Authorization", "Bearer "+ownerToken)
	goodReq.Header.Set("X-CSRF-Token", csrf)
	goodRec := httptest.NewRecorder()
	handler.ServeHTTP(goodRec, goodReq)
	if goodRec.Code != http.StatusOK {
		t.Fatalf("expected 200 restoring backup, got %d (body: %s)", goodRec.Code, goodRec.Body.String())
	}

	var result map[string]any
	if err := json.NewDecoder(goodRec.Body).Decode(&result); err != nil {
		t.Fatalf("decode restore result: %v", err)
	}
	if fmt.Sprintf("%v", result["products"]) != "12" {
		t.Fatalf("expected 12 restored products, got %v", result["products"])
	}
}
