package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/mamadbah2/armory/internal/config"
	"github.com/mamadbah2/armory/internal/domain/models"
	"github.com/mamadbah2/armory/internal/repository/memory"
	"github.com/mamadbah2/armory/internal/server/handlers"
	auditsvc "github.com/mamadbah2/armory/internal/service/audit"
	"github.com/mamadbah2/armory/internal/service/balance"
	inventorysvc "github.com/mamadbah2/armory/internal/service/inventory"
	reportingsvc "github.com/mamadbah2/armory/internal/service/reporting"
)

const testSecret = "test-secret"

type env struct {
	engine *gin.Engine
	store  *memory.Store
	b1     models.Base
	b2     models.Base
	eq     models.Equipment
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	b1, err := store.CreateBase(ctx, models.Base{Name: "Alpha", Location: "North"})
	if err != nil {
		t.Fatalf("create base: %v", err)
	}
	b2, err := store.CreateBase(ctx, models.Base{Name: "Bravo", Location: "South"})
	if err != nil {
		t.Fatalf("create base: %v", err)
	}
	eq, err := store.CreateEquipment(ctx, models.Equipment{Name: "Rifle", Type: "Weapon", UnitPrice: 1200})
	if err != nil {
		t.Fatalf("create equipment: %v", err)
	}

	auditService := auditsvc.NewService(store, nil, nil)
	engine := balance.NewEngine(store, nil)
	reportingService := reportingsvc.NewService(engine, store, store, nil, nil)
	inventoryService := inventorysvc.NewService(store, store, auditService, nil)

	r := New(config.AuthConfig{JWTSecret: testSecret},
		handlers.NewDashboardHandler(reportingService, nil),
		handlers.NewLedgerHandler(inventoryService, nil),
		handlers.NewAuditHandler(auditService, nil),
		nil)

	return &env{engine: r, store: store, b1: b1, b2: b2, eq: eq}
}

func signToken(t *testing.T, name string, role models.Role, base string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":  name,
		"role": string(role),
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	if base != "" {
		claims["base"] = base
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func (e *env) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func TestMissingTokenIsRejected(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodGet, "/dashboard", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestInvalidTokenIsRejected(t *testing.T) {
	e := newEnv(t)

	claims := jwt.MapClaims{"sub": "spy", "role": "Admin", "exp": time.Now().Add(time.Hour).Unix()}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("wrong-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	w := e.do(t, http.MethodGet, "/dashboard", forged, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestDashboardRoundTrip(t *testing.T) {
	e := newEnv(t)
	token := signToken(t, "hq", models.RoleAdmin, "")

	w := e.do(t, http.MethodPost, "/purchases", token, map[string]any{
		"base":         e.b1.ID.Hex(),
		"equipment":    e.eq.ID.Hex(),
		"quantity":     10,
		"purchaseDate": "2025-01-01",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create purchase status = %d, body = %s", w.Code, w.Body.String())
	}

	w = e.do(t, http.MethodPost, "/transfers", token, map[string]any{
		"fromBase":     e.b1.ID.Hex(),
		"toBase":       e.b2.ID.Hex(),
		"equipment":    e.eq.ID.Hex(),
		"quantity":     3,
		"transferDate": "2025-01-05",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create transfer status = %d, body = %s", w.Code, w.Body.String())
	}

	w = e.do(t, http.MethodPost, "/expenditures", token, map[string]any{
		"base":            e.b1.ID.Hex(),
		"equipment":       e.eq.ID.Hex(),
		"quantity":        2,
		"expenditureDate": "2025-01-10",
		"reason":          "training",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create expenditure status = %d, body = %s", w.Code, w.Body.String())
	}

	path := fmt.Sprintf("/dashboard?base=%s&equipment=%s&fromDate=2025-01-01&toDate=2025-01-31", e.b1.ID.Hex(), e.eq.ID.Hex())
	w = e.do(t, http.MethodGet, path, token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("dashboard status = %d, body = %s", w.Code, w.Body.String())
	}

	var report models.BalanceReport
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	want := models.BalanceReport{
		Purchases:      10,
		TransfersOut:   3,
		Expended:       2,
		NetMovement:    5,
		ClosingBalance: 5,
	}
	if report != want {
		t.Errorf("report = %+v, want %+v", report, want)
	}

	// Three mutations, three audit entries.
	w = e.do(t, http.MethodGet, "/auditlog", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("auditlog status = %d", w.Code)
	}
	var logs []models.AuditRecord
	if err := json.Unmarshal(w.Body.Bytes(), &logs); err != nil {
		t.Fatalf("decode logs: %v", err)
	}
	if len(logs) != 3 {
		t.Errorf("got %d audit records, want 3", len(logs))
	}
}

func TestValidationErrorsMapTo400(t *testing.T) {
	e := newEnv(t)
	token := signToken(t, "hq", models.RoleAdmin, "")

	path := fmt.Sprintf("/dashboard?equipment=%s&fromDate=2025-02-01&toDate=2025-01-01", e.eq.ID.Hex())
	w := e.do(t, http.MethodGet, path, token, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("inverted range status = %d, want 400", w.Code)
	}

	w = e.do(t, http.MethodPost, "/transfers", token, map[string]any{
		"fromBase":     e.b1.ID.Hex(),
		"toBase":       e.b1.ID.Hex(),
		"equipment":    e.eq.ID.Hex(),
		"quantity":     1,
		"transferDate": "2025-01-05",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("same-base transfer status = %d, want 400", w.Code)
	}
}

func TestAuthorizationErrorsMapTo403(t *testing.T) {
	e := newEnv(t)

	// Commander with no assigned base claim.
	token := signToken(t, "cdr", models.RoleCommander, "")
	path := fmt.Sprintf("/dashboard?equipment=%s&fromDate=2025-01-01&toDate=2025-01-31", e.eq.ID.Hex())
	w := e.do(t, http.MethodGet, path, token, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}

	// Non-admin creating a base.
	token = signToken(t, "cdr", models.RoleCommander, e.b1.ID.Hex())
	w = e.do(t, http.MethodPost, "/bases", token, map[string]any{"name": "Charlie"})
	if w.Code != http.StatusForbidden {
		t.Errorf("create base status = %d, want 403", w.Code)
	}
}

func TestNonAdminDashboardPinnedToOwnBase(t *testing.T) {
	e := newEnv(t)
	adminToken := signToken(t, "hq", models.RoleAdmin, "")

	w := e.do(t, http.MethodPost, "/purchases", adminToken, map[string]any{
		"base":         e.b2.ID.Hex(),
		"equipment":    e.eq.ID.Hex(),
		"quantity":     50,
		"purchaseDate": "2025-01-01",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create purchase status = %d", w.Code)
	}

	// Commander assigned to Alpha asks for Bravo's numbers and gets Alpha's.
	token := signToken(t, "cdr", models.RoleCommander, e.b1.ID.Hex())
	path := fmt.Sprintf("/dashboard?base=%s&equipment=%s&fromDate=2025-01-01&toDate=2025-01-31", e.b2.ID.Hex(), e.eq.ID.Hex())
	w = e.do(t, http.MethodGet, path, token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("dashboard status = %d", w.Code)
	}

	var report models.BalanceReport
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Purchases != 0 || report.ClosingBalance != 0 {
		t.Errorf("report = %+v, want zeros for the commander's own empty base", report)
	}
}

func TestHealthzIsPublic(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}
