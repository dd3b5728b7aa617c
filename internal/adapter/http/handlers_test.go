package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/rmess/messd/internal/adapter/jsonfile"
	"github.com/rmess/messd/internal/domain/billing"
	"github.com/rmess/messd/internal/middleware"
	"github.com/rmess/messd/internal/service"
)

func newTestRouter(t *testing.T) chi.Router {
	t.Helper()

	store, err := jsonfile.Open(filepath.Join(t.TempDir(), "state.json"), service.Bootstrap)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	notif := service.NewNotificationService(store, nil)
	h := NewHandlers(
		service.NewUserService(store),
		service.NewSettingsService(store),
		service.NewAttendanceService(store, nil, billing.DefaultTariff()),
		service.NewLedgerService(store, nil),
		service.NewCashboxService(store),
		service.NewMenuService(store, notif),
		notif,
		service.NewRegistrationService(store),
		service.NewHistoryService(store),
	)

	r := chi.NewRouter()
	r.Use(middleware.TenantID)
	MountRoutes(r, h)
	return r
}

func doRequest(t *testing.T, r chi.Router, method, path, body, actor string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if actor != "" {
		req.Header.Set("X-Actor-ID", actor)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

// extractField pulls a top-level string field out of a JSON response body.
func extractField(t *testing.T, body, field string) string {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal([]byte(body), &m); err != nil {
		t.Fatalf("parse response %q: %v", body, err)
	}
	v, ok := m[field].(string)
	if !ok {
		t.Fatalf("response missing string field %q: %s", field, body)
	}
	return v
}

func TestCreateAndListUsers(t *testing.T) {
	r := newTestRouter(t)

	rec := doRequest(t, r, http.MethodPost, "/api/v1/users",
		`{"name":"alice","password":"pw","role":"student"}`, "admin-1")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create user status = %d, body %s", rec.Code, rec.Body)
	}
	if strings.Contains(rec.Body.String(), "passwordHash") {
		t.Error("create response leaked password hash")
	}

	rec = doRequest(t, r, http.MethodGet, "/api/v1/users", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list users status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"alice"`) {
		t.Errorf("list missing created user: %s", rec.Body)
	}
}

func TestCreateUserRequiresActor(t *testing.T) {
	r := newTestRouter(t)

	rec := doRequest(t, r, http.MethodPost, "/api/v1/users",
		`{"name":"alice","password":"pw","role":"student"}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 without actor header", rec.Code)
	}
}

func TestGetUserNotFound(t *testing.T) {
	r := newTestRouter(t)

	rec := doRequest(t, r, http.MethodGet, "/api/v1/users/nope", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestDuplicateUsernameConflicts(t *testing.T) {
	r := newTestRouter(t)

	body := `{"name":"alice","password":"pw","role":"student"}`
	if rec := doRequest(t, r, http.MethodPost, "/api/v1/users", body, "admin-1"); rec.Code != http.StatusCreated {
		t.Fatalf("first create status = %d", rec.Code)
	}
	rec := doRequest(t, r, http.MethodPost, "/api/v1/users", body, "admin-1")
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate create status = %d, want 409", rec.Code)
	}
}

func TestToggleOutsideWindowForbidden(t *testing.T) {
	r := newTestRouter(t)

	rec := doRequest(t, r, http.MethodPost, "/api/v1/users",
		`{"name":"alice","password":"pw","role":"student"}`, "admin-1")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create user status = %d", rec.Code)
	}
	id := extractField(t, rec.Body.String(), "id")

	// Default windows are 07-10 and 19-22; exactly one meal can be closed at
	// any hour, so pick whichever is closed right now. The override flag must
	// still succeed for that meal.
	for _, m := range []string{"Breakfast", "Dinner"} {
		rec = doRequest(t, r, http.MethodPost, "/api/v1/attendance/toggle",
			`{"userId":"`+id+`","date":"2026-03-10","meal":"`+m+`"}`, id)
		if rec.Code == http.StatusForbidden {
			rec = doRequest(t, r, http.MethodPost, "/api/v1/attendance/toggle",
				`{"userId":"`+id+`","date":"2026-03-10","meal":"`+m+`","override":true}`, "admin-1")
			if rec.Code != http.StatusOK {
				t.Fatalf("override toggle status = %d, body %s", rec.Code, rec.Body)
			}
			return
		}
	}
	t.Skip("both meal windows open at test time")
}

func TestLoginBadCredentials(t *testing.T) {
	r := newTestRouter(t)

	rec := doRequest(t, r, http.MethodPost, "/api/v1/auth/login",
		`{"username":"admin","password":"wrong"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRegistrationFlow(t *testing.T) {
	r := newTestRouter(t)

	rec := doRequest(t, r, http.MethodPost, "/api/v1/registrations",
		`{"name":"Dana","age":28,"profession":"Engineer","contactNumber":"555","username":"dana","password":"pw"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit status = %d, body %s", rec.Code, rec.Body)
	}
	if strings.Contains(rec.Body.String(), "passwordHash") {
		t.Error("submit response leaked password hash")
	}
	id := extractField(t, rec.Body.String(), "id")

	rec = doRequest(t, r, http.MethodPost, "/api/v1/registrations/"+id+"/approve", "", "admin-1")
	if rec.Code != http.StatusOK {
		t.Fatalf("approve status = %d, body %s", rec.Code, rec.Body)
	}

	rec = doRequest(t, r, http.MethodPost, "/api/v1/registrations/"+id+"/approve", "", "admin-1")
	if rec.Code != http.StatusConflict {
		t.Fatalf("second approve status = %d, want 409", rec.Code)
	}
}
