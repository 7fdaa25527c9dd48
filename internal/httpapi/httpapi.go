package httpapi

import (
	"bytes"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"konterhp/backend/internal/domain"
	"konterhp/backend/internal/service"
	"konterhp/backend/internal/store"
)

type API struct {
	service       *service.Service
	auth          *AuthManager
	allowedOrigin string
	loginLimiter  *attemptLimiter
	pinLimiter    *attemptLimiter
	csrfSecret    []byte
}

func New(svc *service.Service, auth *AuthManager, allowedOrigin string) *API {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		// Fall back to a deterministic secret if crypto/rand fails (should not happen in practice).
		secret = []byte("csrf-fallback-secret-change-me!!")
	}

	return &API{
		service:       svc,
		auth:          auth,
		allowedOrigin: allowedOrigin,
		loginLimiter:  newAttemptLimiter(5, time.Minute),
		pinLimiter:    newAttemptLimiter(8, time.Minute),
		csrfSecret:    secret,
	}
}

// Close stops the rate limiter sweep goroutines. Safe to call more than once.
func (a *API) Close() {
	a.loginLimiter.Stop()
	a.pinLimiter.Stop()
}

// attemptLimiter throttles sensitive endpoints per client key. Each key gets
// its own token bucket sized to the burst; stale buckets are dropped by a
// background sweep so one-off clients do not accumulate forever.
type attemptLimiter struct {
	mu       sync.Mutex
	clients  map[string]*limiterEntry
	limit    rate.Limit
	burst    int
	stop     chan struct{}
	stopOnce sync.Once
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newAttemptLimiter(burst int, window time.Duration) *attemptLimiter {
	if burst < 1 {
		burst = 1
	}
	l := &attemptLimiter{
		clients: make(map[string]*limiterEntry),
		limit:   rate.Every(window / time.Duration(burst)),
		burst:   burst,
		stop:    make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

// Stop ends the background sweep. Allow keeps working afterwards, the
// limiter just no longer evicts stale buckets.
func (l *attemptLimiter) Stop() {
	l.stopOnce.Do(func() {
		close(l.stop)
	})
}

func (l *attemptLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.clients[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter.Allow()
}

func (l *attemptLimiter) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-15 * time.Minute)
			l.mu.Lock()
			for key, entry := range l.clients {
				if entry.lastSeen.Before(cutoff) {
					delete(l.clients, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

func clientKey(r *http.Request) string {
	addrPort, err := netip.ParseAddrPort(r.RemoteAddr)
	if err == nil {
		return addrPort.Addr().String()
	}
	if idx := strings.LastIndex(r.RemoteAddr, ":"); idx > 0 {
		return r.RemoteAddr[:idx]
	}
	return r.RemoteAddr
}

// generateCSRFToken derives a token from the current hour bucket so tokens
// expire on their own without server-side session state.
func (a *API) generateCSRFToken() string {
	return a.csrfTokenForBucket(time.Now().UTC())
}

func (a *API) csrfTokenForBucket(now time.Time) string {
	bucket := now.Truncate(time.Hour).Unix()
	mac := hmac.New(sha256.New, a.csrfSecret)
	fmt.Fprintf(mac, "%d", bucket)
	return hex.EncodeToString(mac.Sum(nil))
}

// validateCSRFToken accepts the current and previous hour bucket so requests
// issued right before a bucket rollover still pass.
func (a *API) validateCSRFToken(token string) bool {
	if token == "" {
		return false
	}
	now := time.Now().UTC()
	current := a.csrfTokenForBucket(now)
	previous := a.csrfTokenForBucket(now.Add(-time.Hour))
	return hmac.Equal([]byte(token), []byte(current)) || hmac.Equal([]byte(token), []byte(previous))
}

func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", a.handleHealth)
	mux.HandleFunc("/api/v1/auth/login", a.handleLogin)
	mux.HandleFunc("/api/v1/auth/csrf-token", a.handleCSRFToken)

	mux.HandleFunc("/api/v1/users", a.requireAuth(a.handleUsers, "superuser"))

	mux.HandleFunc("/api/v1/categories", a.requireAuth(a.handleCategories, "admin", "superuser"))
	mux.HandleFunc("/api/v1/categories/", a.requireAuth(a.handleCategoryActions, "admin", "superuser"))

	mux.HandleFunc("/api/v1/products", a.requireAuth(a.handleProducts, "admin", "superuser"))
	mux.HandleFunc("/api/v1/products/", a.requireAuth(a.handleProductActions, "admin", "superuser"))

	mux.HandleFunc("/api/v1/cart/suggestion", a.requireAuth(a.handleCartSuggestion, "admin", "superuser"))

	mux.HandleFunc("/api/v1/sales", a.requireAuth(a.handleSales, "admin", "superuser"))
	mux.HandleFunc("/api/v1/sales/", a.requireAuth(a.handleSaleActions, "admin", "superuser"))

	mux.HandleFunc("/api/v1/returns", a.requireAuth(a.handleReturns, "admin", "superuser"))

	mux.HandleFunc("/api/v1/expenses", a.requireAuth(a.handleExpenses, "superuser"))
	mux.HandleFunc("/api/v1/expenses/", a.requireAuth(a.handleExpenseActions, "superuser"))

	mux.HandleFunc("/api/v1/reports/dashboard", a.requireAuth(a.handleDashboard, "superuser"))
	mux.HandleFunc("/api/v1/reports/top-products", a.requireAuth(a.handleTopProducts, "superuser"))
	mux.HandleFunc("/api/v1/reports/low-stock", a.requireAuth(a.handleLowStock, "admin", "superuser"))
	mux.HandleFunc("/api/v1/export/sales.csv", a.requireAuth(a.handleSalesExport, "superuser"))

	mux.HandleFunc("/api/v1/backup", a.requireAuth(a.handleBackup, "superuser"))
	mux.HandleFunc("/api/v1/restore", a.requireAuth(a.handleRestore, "superuser"))
	mux.HandleFunc("/api/v1/audit-logs", a.requireAuth(a.handleAuditLogs, "superuser"))

	return a.withMiddleware(mux)
}

func (a *API) requireAuth(next http.HandlerFunc, roles ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authorization := r.Header.Get("Authorization")
		if len(authorization) < 7 || !strings.EqualFold(authorization[:7], "bearer ") {
			writeError(w, http.StatusUnauthorized, errors.New("missing bearer token"))
			return
		}

		token := strings.TrimSpace(authorization[len("Bearer "):])
		actor, err := a.auth.ParseToken(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err)
			return
		}

		if !isRoleAllowed(actor.Role, roles) {
			writeError(w, http.StatusForbidden, errors.New("forbidden role"))
			return
		}

		next(w, r.WithContext(service.WithActor(r.Context(), actor)))
	}
}

func isRoleAllowed(role string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, candidate := range allowed {
		if candidate == role {
			return true
		}
	}
	return false
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	if !a.loginLimiter.Allow("login:" + clientKey(r)) {
		writeError(w, http.StatusTooManyRequests, errors.New("too many login attempts"))
		return
	}

	var req domain.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp, err := a.auth.Login(req)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleCSRFToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"csrf_token": a.generateCSRFToken()})
}

var csrfExemptPaths = map[string]bool{
	"/api/v1/auth/login": true,
}

func (a *API) checkCSRF(r *http.Request) error {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return nil
	}
	if csrfExemptPaths[r.URL.Path] {
		return nil
	}
	if !a.validateCSRFToken(r.Header.Get("X-CSRF-Token")) {
		return errors.New("missing or invalid CSRF token")
	}
	return nil
}

func (a *API) handleUsers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"users": a.auth.ListStaff()})
	case http.MethodPost:
		var req domain.StaffCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		user, err := a.auth.CreateStaff(req)
		if err != nil {
			status := statusForError(err)
			if strings.Contains(strings.ToLower(err.Error()), "already exists") {
				status = http.StatusConflict
			}
			writeError(w, status, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"user": user})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleCategories(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		categories, err := a.service.ListCategories(r.Context())
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
	case http.MethodPost:
		var req domain.CategoryCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		category, err := a.service.CreateCategory(r.Context(), req)
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"category": category})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleCategoryActions(w http.ResponseWriter, r *http.Request) {
	categoryID := strings.TrimSpace(strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/categories/"), "/"))
	if categoryID == "" {
		writeError(w, http.StatusBadRequest, errors.New("category id required"))
		return
	}

	if r.Method != http.MethodDelete {
		writeMethodNotAllowed(w)
		return
	}

	if err := a.service.DeleteCategory(r.Context(), categoryID); err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (a *API) handleProducts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		filter := domain.ProductFilter{
			Query:      strings.TrimSpace(r.URL.Query().Get("q")),
			CategoryID: strings.TrimSpace(r.URL.Query().Get("category_id")),
			Condition:  strings.TrimSpace(r.URL.Query().Get("condition")),
			Limit:      parsePositiveLimit(r.URL.Query().Get("limit"), 100, 500),
		}

		products, err := a.service.ListProducts(r.Context(), filter)
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"products": products})
	case http.MethodPost:
		var req domain.ProductCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		product, err := a.service.CreateProduct(r.Context(), req)
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"product": product})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleProductActions(w http.ResponseWriter, r *http.Request) {
	tail := strings.TrimSpace(strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/products/"), "/"))
	if tail == "" {
		writeError(w, http.StatusBadRequest, errors.New("product id required"))
		return
	}

	if strings.HasSuffix(tail, "/stock") {
		a.handleStockAdjust(w, r, strings.TrimSuffix(tail, "/stock"))
		return
	}

	productID := tail
	switch r.Method {
	case http.MethodGet:
		product, err := a.service.GetProduct(r.Context(), productID)
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"product": product})
	case http.MethodPatch:
		var req domain.ProductUpdateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		product, err := a.service.UpdateProduct(r.Context(), productID, req)
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"product": product})
	case http.MethodDelete:
		if err := a.service.DeleteProduct(r.Context(), productID); err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleStockAdjust(w http.ResponseWriter, r *http.Request, productID string) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	productID = strings.TrimSpace(strings.Trim(productID, "/"))
	if productID == "" {
		writeError(w, http.StatusBadRequest, errors.New("product id required"))
		return
	}

	var req domain.StockAdjustRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	product, err := a.service.AdjustStock(r.Context(), productID, req)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"product": product})
}

func (a *API) handleCartSuggestion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	var req domain.SuggestionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp, err := a.service.SuggestAddon(r.Context(), req)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleSales(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		req := saleSearchFromQuery(r)
		sales, err := a.service.SearchSales(r.Context(), req)
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"sales": sales})
	case http.MethodPost:
		var req domain.SaleCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		resp, err := a.service.CreateSale(r.Context(), req)
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusCreated, resp)
	default:
		writeMethodNotAllowed(w)
	}
}

func saleSearchFromQuery(r *http.Request) domain.SaleSearchRequest {
	query := r.URL.Query()
	return domain.SaleSearchRequest{
		FromDate:      strings.TrimSpace(query.Get("from")),
		ToDate:        strings.TrimSpace(query.Get("to")),
		InvoiceNumber: strings.TrimSpace(query.Get("invoice")),
		Customer:      strings.TrimSpace(query.Get("customer")),
		Phone:         strings.TrimSpace(query.Get("phone")),
		SerialIMEI:    strings.TrimSpace(query.Get("serial")),
		Limit:         parsePositiveLimit(query.Get("limit"), 100, 500),
	}
}

func (a *API) handleSaleActions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	tail := strings.TrimSpace(strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/sales/"), "/"))
	if tail == "" {
		writeError(w, http.StatusBadRequest, errors.New("sale id required"))
		return
	}

	var (
		sale domain.Sale
		err  error
	)
	if strings.HasPrefix(tail, "invoice/") {
		invoiceNumber := strings.TrimSpace(strings.TrimPrefix(tail, "invoice/"))
		if invoiceNumber == "" {
			writeError(w, http.StatusBadRequest, errors.New("invoice number required"))
			return
		}
		sale, err = a.service.GetSaleByInvoice(r.Context(), invoiceNumber)
	} else {
		sale, err = a.service.GetSale(r.Context(), tail)
	}
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sale": sale})
}

func (a *API) handleReturns(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		from := strings.TrimSpace(r.URL.Query().Get("from"))
		to := strings.TrimSpace(r.URL.Query().Get("to"))
		limit := parsePositiveLimit(r.URL.Query().Get("limit"), 100, 500)

		returns, err := a.service.ListReturns(r.Context(), from, to, limit)
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"returns": returns})
	case http.MethodPost:
		var req domain.ReturnCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		resp, err := a.service.ProcessReturn(r.Context(), req)
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusCreated, resp)
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		from := strings.TrimSpace(r.URL.Query().Get("from"))
		to := strings.TrimSpace(r.URL.Query().Get("to"))
		limit := parsePositiveLimit(r.URL.Query().Get("limit"), 100, 500)

		expenses, err := a.service.ListExpenses(r.Context(), from, to, limit)
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"expenses": expenses})
	case http.MethodPost:
		var req domain.ExpenseCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		expense, err := a.service.CreateExpense(r.Context(), req)
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"expense": expense})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleExpenseActions(w http.ResponseWriter, r *http.Request) {
	expenseID := strings.TrimSpace(strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/expenses/"), "/"))
	if expenseID == "" {
		writeError(w, http.StatusBadRequest, errors.New("expense id required"))
		return
	}

	if r.Method != http.MethodDelete {
		writeMethodNotAllowed(w)
		return
	}

	if err := a.service.DeleteExpense(r.Context(), expenseID); err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (a *API) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	from := strings.TrimSpace(r.URL.Query().Get("from"))
	to := strings.TrimSpace(r.URL.Query().Get("to"))
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))

	stats, err := a.service.Dashboard(r.Context(), from, to)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}

	if format == "html" {
		topProducts, err := a.service.TopProducts(r.Context(), from, to, 5)
		if err != nil {
			topProducts = nil
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(dashboardToPrintableHTML(stats, topProducts, from, to)))
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func (a *API) handleTopProducts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	from := strings.TrimSpace(r.URL.Query().Get("from"))
	to := strings.TrimSpace(r.URL.Query().Get("to"))
	limit := parsePositiveLimit(r.URL.Query().Get("limit"), 5, 50)

	products, err := a.service.TopProducts(r.Context(), from, to, limit)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": products})
}

func (a *API) handleLowStock(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	limit := parsePositiveLimit(r.URL.Query().Get("limit"), 50, 200)
	products, err := a.service.LowStockProducts(r.Context(), limit)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": products})
}

func (a *API) handleSalesExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	req := saleSearchFromQuery(r)

	// Render into a buffer first so a mid-export failure still produces a
	// clean error response instead of a truncated file.
	var buf bytes.Buffer
	if err := a.service.ExportSalesCSV(r.Context(), req, &buf); err != nil {
		writeError(w, statusForError(err), err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"sales-export-%s.csv\"", time.Now().UTC().Format("20060102")))
	_, _ = w.Write(buf.Bytes())
}

func (a *API) handleBackup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	snapshot, err := a.service.ExportBackup(r.Context())
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"konterhp-backup-%s.json\"", time.Now().UTC().Format("20060102")))
	writeJSON(w, http.StatusOK, snapshot)
}

const restoreUploadLimit = 10 << 20

func (a *API) handleRestore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	if !a.pinLimiter.Allow("pin:restore:" + clientKey(r)) {
		writeError(w, http.StatusTooManyRequests, errors.New("too many owner pin attempts"))
		return
	}

	// Snapshots can exceed the JSON body cap, so the upload arrives as
	// multipart with its own limit.
	r.Body = http.MaxBytesReader(w, r.Body, restoreUploadLimit)
	if err := r.ParseMultipartForm(restoreUploadLimit); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("multipart form with a backup file required"))
		return
	}

	if !a.auth.ValidateOwnerPIN(r.FormValue("owner_pin")) {
		writeError(w, http.StatusForbidden, errors.New("invalid owner pin"))
		return
	}

	file, _, err := r.FormFile("backup")
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("backup file required"))
		return
	}
	defer func() { _ = file.Close() }()

	var snapshot domain.BackupSnapshot
	if err := json.NewDecoder(file).Decode(&snapshot); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid backup file: %w", err))
		return
	}

	if err := a.service.RestoreBackup(r.Context(), snapshot); err != nil {
		writeError(w, statusForError(err), err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":         true,
		"categories": len(snapshot.Categories),
		"products":   len(snapshot.Products),
		"sales":      len(snapshot.Sales),
		"returns":    len(snapshot.Returns),
		"expenses":   len(snapshot.Expenses),
	})
}

func (a *API) handleAuditLogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	date := strings.TrimSpace(r.URL.Query().Get("date"))
	limit := parsePositiveLimit(r.URL.Query().Get("limit"), 100, 500)

	logs, err := a.service.ListAuditLogs(r.Context(), date, limit)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"logs": logs})
}

func (a *API) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startedAt := time.Now()

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		w.Header().Set("Access-Control-Allow-Origin", a.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-CSRF-Token")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PATCH,DELETE,OPTIONS")
		w.Header().Set("Vary", "Origin")

		// Cap JSON bodies; the restore upload sets its own larger limit.
		if r.Method == http.MethodPost || r.Method == http.MethodPatch || r.Method == http.MethodPut {
			contentType := r.Header.Get("Content-Type")
			if strings.Contains(contentType, "application/json") {
				r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
			}
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		if err := a.checkCSRF(r); err != nil {
			writeError(w, http.StatusForbidden, err)
			return
		}

		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(startedAt))
	})
}

// dashboardHTMLTmpl is the html/template used to render the printable shop report.
// All user-controlled fields are auto-escaped by html/template to prevent XSS.
var dashboardHTMLTmpl = template.Must(template.New("dashboard-report").Parse(`<!doctype html>
<html>
<head>
  <meta charset="utf-8" />
  <title>Shop Report {{.RangeLabel}}</title>
  <style>
    body { font-family: sans-serif; margin: 24px; }
    table { width: 100%; border-collapse: collapse; margin-top: 8px; }
    th, td { border: 1px solid #ddd; padding: 6px; font-size: 13px; }
    h2, h3 { margin-bottom: 4px; }
  </style>
</head>
<body>
  <h2>KonterHP Sales Report</h2>
  <p>Period: {{.RangeLabel}} | Generated: {{.GeneratedAt}}</p>
  <p>Sales: {{.Stats.SalesCount}} | Revenue: {{.Stats.RevenueCents}} | Profit: {{.Stats.ProfitCents}} | Expenses: {{.Stats.ExpenseCents}}</p>
  <p>Returns: {{.Stats.ReturnsCount}} (amount {{.Stats.ReturnAmountCents}})</p>
  <p>Inventory: {{.Stats.ProductCount}} products in {{.Stats.CategoryCount}} categories, {{.Stats.LowStockCount}} low on stock</p>

{{if .TopProducts}}
  <h3>Top Products</h3>
  <table>
    <thead><tr><th>Product</th><th>Qty Sold</th><th>Revenue Cents</th></tr></thead>
    <tbody>{{range .TopProducts}}<tr><td>{{.ProductName}}</td><td style="text-align:right;">{{.QuantitySold}}</td><td style="text-align:right;">{{.RevenueCents}}</td></tr>{{end}}</tbody>
  </table>
{{end}}
</body>
</html>
`))

type dashboardReportData struct {
	Stats       domain.DashboardStats
	TopProducts []domain.TopProduct
	RangeLabel  string
	GeneratedAt string
}

func dashboardToPrintableHTML(stats domain.DashboardStats, topProducts []domain.TopProduct, from string, to string) string {
	rangeLabel := "hari ini"
	if from != "" || to != "" {
		rangeLabel = strings.TrimSpace(from + " s/d " + to)
	}

	data := dashboardReportData{
		Stats:       stats,
		TopProducts: topProducts,
		RangeLabel:  rangeLabel,
		GeneratedAt: time.Now().UTC().Format("2006-01-02 15:04") + " UTC",
	}

	var buf bytes.Buffer
	if err := dashboardHTMLTmpl.Execute(&buf, data); err != nil {
		return "<html><body><p>report rendering failed</p></body></html>"
	}
	return buf.String()
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func parsePositiveLimit(raw string, fallback int, max int) int {
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 1 {
		return fallback
	}
	if parsed > max {
		return max
	}
	return parsed
}

func writeMethodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
}

// statusForError maps known domain failures onto HTTP statuses. Anything
// unrecognized is a storage fault; writeError masks those.
func statusForError(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrDuplicateInvoice), errors.Is(err, store.ErrCategoryInUse):
		return http.StatusConflict
	case strings.Contains(strings.ToLower(err.Error()), "superuser role required"):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	message := err.Error()
	if status >= http.StatusInternalServerError {
		log.Printf("internal error (status %d): %v", status, err)
		message = "internal server error"
	}
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}
