package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/GideonMwiti/garagemaster-sub000/internal/auth"
	"github.com/GideonMwiti/garagemaster-sub000/internal/events"
	invH "github.com/GideonMwiti/garagemaster-sub000/internal/inventory/handler"
	invUC "github.com/GideonMwiti/garagemaster-sub000/internal/inventory/usecase"
	invoiceH "github.com/GideonMwiti/garagemaster-sub000/internal/invoice/handler"
	invoiceUC "github.com/GideonMwiti/garagemaster-sub000/internal/invoice/usecase"
	jobH "github.com/GideonMwiti/garagemaster-sub000/internal/jobcard/handler"
	jobUC "github.com/GideonMwiti/garagemaster-sub000/internal/jobcard/usecase"
	"github.com/GideonMwiti/garagemaster-sub000/internal/model"
	payH "github.com/GideonMwiti/garagemaster-sub000/internal/payment/handler"
	payUC "github.com/GideonMwiti/garagemaster-sub000/internal/payment/usecase"
	"github.com/GideonMwiti/garagemaster-sub000/internal/settings"
	"github.com/GideonMwiti/garagemaster-sub000/internal/store"
	"github.com/GideonMwiti/garagemaster-sub000/internal/store/memory"
	"github.com/GideonMwiti/garagemaster-sub000/pkg/logger"
	"github.com/shopspring/decimal"
)

const secret = "test-secret"

type testServer struct {
	handler http.Handler
	tokens  *auth.Tokens
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := logger.NewNop()
	s := memory.New()
	s.SeedService(model.ServiceItem{ID: "svc-1", TenantID: "garage-1", Name: "Brake inspection", Price: decimal.NewFromInt(100)})
	s.SeedItem(model.InventoryItem{
		ID: "item-1", TenantID: "garage-1", PartCode: "BRK-01", Name: "Brake pad",
		Quantity: 5, ReorderLevel: 1, SellingPrice: decimal.NewFromInt(25),
	})

	pub := events.NewRecorder()
	policy := store.RetryPolicy{Attempts: 1}
	sp := settings.NewStatic(settings.Defaults{TaxRate: decimal.NewFromInt(10), InvoicePrefix: "INV", PaymentTermsDays: 7})

	invoices := invoiceUC.NewInvoiceUseCase(s, policy, sp, pub, log)
	tokens := auth.NewTokens(secret)
	h := Handlers{
		Inventory: invH.NewInventoryHandler(invUC.NewInventoryUseCase(s, policy, pub, log), log),
		JobCards:  jobH.NewJobCardHandler(jobUC.NewJobCardUseCase(s, policy, invoices, pub, log), log),
		Invoices:  invoiceH.NewInvoiceHandler(invoices, log),
		Payments:  payH.NewPaymentHandler(payUC.NewPaymentUseCase(s, policy, pub, log), log),
	}
	return &testServer{
		handler: NewRouter(h, tokens, Options{AllowedOrigins: []string{"*"}}, log),
		tokens:  tokens,
	}
}

func (ts *testServer) token(t *testing.T, tenant, role string) string {
	t.Helper()
	tok, err := ts.tokens.Issue(model.Actor{TenantID: tenant, UserID: "user-" + role, Role: role}, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return tok
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, want, rec.Body.String())
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	expectStatus(t, ts.do(t, http.MethodGet, "/health", "", nil), http.StatusOK)
}

func TestAuthentication(t *testing.T) {
	ts := newTestServer(t)
	other := auth.NewTokens("another-secret")
	forged, err := other.Issue(model.Actor{TenantID: "garage-1", UserID: "u", Role: model.RoleOwner}, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"garbage token", "not-a-jwt", http.StatusUnauthorized},
		{"wrong signature", forged, http.StatusUnauthorized},
		{"valid token", ts.token(t, "garage-1", model.RoleOwner), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectStatus(t, ts.do(t, http.MethodGet, "/inventory/item-1", tt.token, nil), tt.want)
		})
	}
}

func TestJobToCash(t *testing.T) {
	ts := newTestServer(t)
	tech := ts.token(t, "garage-1", model.RoleTechnician)
	cashier := ts.token(t, "garage-1", model.RoleCashier)

	rec := ts.do(t, http.MethodPost, "/jobcards", tech, map[string]any{
		"vehicle_id":          "vehicle-1",
		"customer_id":         "customer-1",
		"problem_description": "Grinding noise when braking",
	})
	expectStatus(t, rec, http.StatusCreated)
	job := decode[model.JobCard](t, rec)

	expectStatus(t, ts.do(t, http.MethodPost, "/jobcards/"+job.ID+"/services", tech, map[string]any{"service_id": "svc-1"}), http.StatusCreated)
	expectStatus(t, ts.do(t, http.MethodPost, "/jobcards/"+job.ID+"/parts", tech, map[string]any{"inventory_id": "item-1", "quantity": 2}), http.StatusCreated)

	rec = ts.do(t, http.MethodPost, "/jobcards/"+job.ID+"/complete", tech, nil)
	expectStatus(t, rec, http.StatusCreated)
	inv := decode[model.Invoice](t, rec)
	if !inv.TotalAmount.Equal(decimal.NewFromInt(165)) {
		t.Fatalf("total = %s, want 165", inv.TotalAmount)
	}

	expectStatus(t, ts.do(t, http.MethodPost, "/payments", cashier, map[string]any{"invoice_id": inv.ID, "amount": "165", "method": "card"}), http.StatusCreated)

	rec = ts.do(t, http.MethodGet, "/invoices/"+inv.ID, cashier, nil)
	expectStatus(t, rec, http.StatusOK)
	view := decode[struct {
		Status  model.InvoiceStatus `json:"status"`
		Balance decimal.Decimal     `json:"balance"`
	}](t, rec)
	if view.Status != model.InvoicePaid || !view.Balance.IsZero() {
		t.Errorf("status/balance = %s/%s, want paid/0", view.Status, view.Balance)
	}

	rec = ts.do(t, http.MethodGet, "/invoices/"+inv.ID+"/payments", cashier, nil)
	expectStatus(t, rec, http.StatusOK)
	if payments := decode[[]model.Payment](t, rec); len(payments) != 1 {
		t.Errorf("payments = %d, want 1", len(payments))
	}

	rec = ts.do(t, http.MethodGet, "/inventory/item-1", tech, nil)
	expectStatus(t, rec, http.StatusOK)
	if item := decode[model.InventoryItem](t, rec); item.Quantity != 3 {
		t.Errorf("stock = %d, want 3", item.Quantity)
	}
}

func TestErrorMapping(t *testing.T) {
	ts := newTestServer(t)
	owner := ts.token(t, "garage-1", model.RoleOwner)

	rec := ts.do(t, http.MethodPost, "/jobcards", owner, map[string]any{
		"vehicle_id":          "vehicle-1",
		"customer_id":         "customer-1",
		"problem_description": "Oil leak",
	})
	expectStatus(t, rec, http.StatusCreated)
	job := decode[model.JobCard](t, rec)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"insufficient stock", http.MethodPost, "/jobcards/" + job.ID + "/parts", map[string]any{"inventory_id": "item-1", "quantity": 6}, http.StatusUnprocessableEntity},
		{"unknown job", http.MethodGet, "/jobcards/missing", nil, http.StatusNotFound},
		{"unknown field", http.MethodPost, "/jobcards/" + job.ID + "/services", map[string]any{"service": "svc-1"}, http.StatusBadRequest},
		{"non-positive payment", http.MethodPost, "/payments", map[string]any{"invoice_id": "x", "amount": "0"}, http.StatusBadRequest},
		{"closing through update", http.MethodPatch, "/jobcards/" + job.ID, map[string]any{"status": "completed"}, http.StatusUnprocessableEntity},
		{"bad date filter", http.MethodGet, "/inventory/item-1/adjustments?start_date=yesterday", nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, tt.method, tt.path, owner, tt.body)
			expectStatus(t, rec, tt.want)
			if body := decode[map[string]string](t, rec); body["error"] == "" {
				t.Errorf("missing error message")
			}
		})
	}
}

func TestRoleChecks(t *testing.T) {
	ts := newTestServer(t)
	tests := []struct {
		name string
		role string
		want int
	}{
		{"technician cannot overwrite stock", model.RoleTechnician, http.StatusForbidden},
		{"cashier cannot overwrite stock", model.RoleCashier, http.StatusForbidden},
		{"manager can overwrite stock", model.RoleManager, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPost, "/inventory/item-1/force", ts.token(t, "garage-1", tt.role), map[string]any{"quantity": 12})
			expectStatus(t, rec, tt.want)
		})
	}
}

func TestTenantResolution(t *testing.T) {
	ts := newTestServer(t)
	super, err := ts.tokens.Issue(model.Actor{UserID: "root", Role: model.RoleSuperAdmin}, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	expectStatus(t, ts.do(t, http.MethodGet, "/inventory/item-1", super, nil), http.StatusBadRequest)
	expectStatus(t, ts.do(t, http.MethodGet, "/inventory/item-1", super, nil, auth.TenantHeader, "garage-1"), http.StatusOK)

	// Ordinary users cannot switch tenants.
	outsider := ts.token(t, "garage-2", model.RoleOwner)
	expectStatus(t, ts.do(t, http.MethodGet, "/inventory/item-1", outsider, nil, auth.TenantHeader, "garage-1"), http.StatusNotFound)
}
