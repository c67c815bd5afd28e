package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/salonibalkondekar/analytics/internal/api"
	"github.com/salonibalkondekar/analytics/internal/auth"
	"github.com/salonibalkondekar/analytics/internal/config"
	"github.com/salonibalkondekar/analytics/internal/database"
	"github.com/salonibalkondekar/analytics/internal/models"
)

func setupServer(t *testing.T) *echo.Echo {
	t.Helper()

	if err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "analytics.db")}); err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cfg := config.Config{
		AdminPassword:        "test-admin",
		SecretKey:            "test-secret",
		SessionLifetime:      time.Hour,
		RateLimitRequests:    1000,
		RateLimitWindow:      time.Minute,
		RateLimitBlockPeriod: time.Minute,
		ModelLimit:           10,
	}

	e := echo.New()
	api.RegisterRoutes(e, cfg, auth.NewService(cfg))
	return e
}

func doForm(e *echo.Echo, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func doJSON(e *echo.Echo, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("bad JSON response %q: %v", rec.Body.String(), err)
	}
	return out
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookieName {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func loginAs(t *testing.T, e *echo.Echo, email, name string) (*http.Cookie, map[string]any) {
	t.Helper()
	rec := doForm(e, "/auth/create-session", url.Values{"email": {email}, "name": {name}})
	if rec.Code != http.StatusOK {
		t.Fatalf("create-session status = %d: %s", rec.Code, rec.Body.String())
	}
	return sessionCookie(t, rec), decode(t, rec)
}

func TestHealthCheck(t *testing.T) {
	e := setupServer(t)

	rec := doJSON(e, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := decode(t, rec); body["status"] != "healthy" {
		t.Errorf("body = %v", body)
	}
}

func TestAnonymousSessionIssuance(t *testing.T) {
	e := setupServer(t)

	rec := doJSON(e, http.MethodPost, "/session", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	body := decode(t, rec)
	if body["success"] != true {
		t.Errorf("body = %v", body)
	}
	cookie := sessionCookie(t, rec)
	if cookie.Value != body["session_id"] {
		t.Errorf("cookie %q does not match session_id %v", cookie.Value, body["session_id"])
	}
	if !cookie.HttpOnly {
		t.Error("session cookie not HttpOnly")
	}
}

func TestUserSessionLifecycle(t *testing.T) {
	e := setupServer(t)

	cookie, body := loginAs(t, e, "alice@example.com", "Alice")

	user, ok := body["user"].(map[string]any)
	if !ok {
		t.Fatalf("no user in response: %v", body)
	}
	if user["email"] != "alice@example.com" || user["can_generate"] != true {
		t.Errorf("user = %v", user)
	}
	if tok, _ := body["csrf_token"].(string); len(tok) != 32 {
		t.Errorf("csrf_token = %v", body["csrf_token"])
	}

	rec := doJSON(e, http.MethodGet, "/auth/current-user", "", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("current-user status = %d", rec.Code)
	}
	if got := decode(t, rec); got["email"] != "alice@example.com" {
		t.Errorf("current-user = %v", got)
	}

	// Destroy, then the same cookie no longer authenticates.
	rec = doJSON(e, http.MethodPost, "/auth/destroy-session", "", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("destroy status = %d", rec.Code)
	}

	rec = doJSON(e, http.MethodGet, "/auth/current-user", "", cookie)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("current-user after destroy status = %d, want 401", rec.Code)
	}

	// Destroying again still succeeds.
	rec = doJSON(e, http.MethodPost, "/auth/destroy-session", "", cookie)
	if rec.Code != http.StatusOK {
		t.Errorf("second destroy status = %d, want 200", rec.Code)
	}
}

func TestCreateSessionValidation(t *testing.T) {
	e := setupServer(t)

	rec := doForm(e, "/auth/create-session", url.Values{"email": {"alice@example.com"}})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing name: status = %d, want 400", rec.Code)
	}

	rec = doForm(e, "/auth/create-session", url.Values{"name": {"Alice"}})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing email: status = %d, want 400", rec.Code)
	}
}

func TestBlockedUserCannotLogin(t *testing.T) {
	e := setupServer(t)

	cookie, body := loginAs(t, e, "mallory@example.com", "Mallory")
	userID := body["user"].(map[string]any)["id"].(string)

	if err := database.NewUserRepo().SetBlocked(userID, true, "abuse"); err != nil {
		t.Fatal(err)
	}

	rec := doForm(e, "/auth/create-session", url.Values{
		"email": {"mallory@example.com"}, "name": {"Mallory"},
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("blocked login status = %d, want 403", rec.Code)
	}
	if got := decode(t, rec); got["error"] != "Account blocked: abuse" {
		t.Errorf("body = %v", got)
	}

	// The pre-block session is unaffected by this endpoint.
	rec = doJSON(e, http.MethodGet, "/auth/current-user", "", cookie)
	if rec.Code != http.StatusOK {
		t.Errorf("existing session status = %d", rec.Code)
	}
}

func TestTrackPageView(t *testing.T) {
	e := setupServer(t)

	rec := doJSON(e, http.MethodPost, "/track/pageview",
		`{"site":"portfolio","path":"/projects"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var count int
	err := database.DB.QueryRow(
		"SELECT COUNT(*) FROM page_views WHERE site = 'portfolio' AND path = '/projects'",
	).Scan(&count)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("recorded views = %d, want 1", count)
	}
}

func TestTrackCADEventRequiresSession(t *testing.T) {
	e := setupServer(t)

	rec := doJSON(e, http.MethodPost, "/track/cad-event",
		`{"event_type":"generate","prompt":"a cube"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no session: status = %d, want 401", rec.Code)
	}

	cookie, _ := loginAs(t, e, "alice@example.com", "Alice")
	rec = doJSON(e, http.MethodPost, "/track/cad-event",
		`{"event_type":"generate","prompt":"a cube"}`, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("with session: status = %d: %s", rec.Code, rec.Body.String())
	}

	var count int
	err := database.DB.QueryRow(
		"SELECT COUNT(*) FROM cad_events WHERE event_type = 'generate'",
	).Scan(&count)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("recorded events = %d, want 1", count)
	}
}

func TestIncrementUserCount(t *testing.T) {
	e := setupServer(t)

	cookie, body := loginAs(t, e, "alice@example.com", "Alice")
	userID := body["user"].(map[string]any)["id"].(string)

	rec := doJSON(e, http.MethodPost, "/users/increment-count?user_id="+userID, "", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if got := decode(t, rec); got["model_count"] != float64(1) {
		t.Errorf("model_count = %v, want 1", got["model_count"])
	}

	// A session may only increment its own user.
	rec = doJSON(e, http.MethodPost, "/users/increment-count?user_id=someone-else", "", cookie)
	if rec.Code != http.StatusForbidden {
		t.Errorf("foreign user_id status = %d, want 403", rec.Code)
	}

	// At the ceiling the endpoint refuses with the limit in the body.
	if _, err := database.DB.Exec("UPDATE users SET model_count = 10 WHERE id = ?", userID); err != nil {
		t.Fatal(err)
	}
	rec = doJSON(e, http.MethodPost, "/users/increment-count?user_id="+userID, "", cookie)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("at ceiling status = %d, want 403", rec.Code)
	}
	got := decode(t, rec)
	if got["error"] != "Model limit exceeded" || got["limit"] != float64(10) {
		t.Errorf("body = %v", got)
	}
}

func TestGetUserInfoUnknownUser(t *testing.T) {
	e := setupServer(t)

	rec := doJSON(e, http.MethodGet, "/users/nobody/info", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := decode(t, rec); got["model_count"] != float64(0) {
		t.Errorf("body = %v", got)
	}
}

func TestModelStoreAndDownload(t *testing.T) {
	e := setupServer(t)

	cookie, _ := loginAs(t, e, "alice@example.com", "Alice")

	rec := doJSON(e, http.MethodPost, "/models/store",
		`{"model_id":"m-1","prompt":"a bracket","generated_code":"cube()","stl_file_size":512}`,
		cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("store status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(e, http.MethodPost, "/models/m-1/download", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("download status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(e, http.MethodGet, "/models/m-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	got := decode(t, rec)
	if got["download_count"] != float64(1) {
		t.Errorf("download_count = %v, want 1", got["download_count"])
	}

	rec = doJSON(e, http.MethodPost, "/models/missing/download", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing model download status = %d, want 404", rec.Code)
	}
}

func TestAdminLoginAudited(t *testing.T) {
	e := setupServer(t)
	logs := database.NewAdminLogRepo()

	rec := doForm(e, "/admin/login", url.Values{"password": {"wrong"}})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password status = %d, want 401", rec.Code)
	}
	if n, _ := logs.CountByAction(models.ActionLoginFailed); n != 1 {
		t.Errorf("failed login audit entries = %d, want 1", n)
	}

	rec = doForm(e, "/admin/login", url.Values{"password": {"test-admin"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("correct password status = %d", rec.Code)
	}
	if n, _ := logs.CountByAction(models.ActionLoginSuccess); n != 1 {
		t.Errorf("successful login audit entries = %d, want 1", n)
	}
}

func TestAdminEndpointsRequirePassword(t *testing.T) {
	e := setupServer(t)

	for _, path := range []string{"/admin/stats", "/admin/users", "/admin/models", "/admin/logs"} {
		rec := doJSON(e, http.MethodGet, path, "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s without password: status = %d, want 401", path, rec.Code)
		}
	}

	rec := doJSON(e, http.MethodGet, "/admin/stats?password=test-admin", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("stats with password: status = %d: %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	for _, key := range []string{"page_views", "cad_events", "users"} {
		if _, ok := body[key]; !ok {
			t.Errorf("stats payload missing %q: %v", key, body)
		}
	}
}

func TestAdminResetUserCount(t *testing.T) {
	e := setupServer(t)

	_, body := loginAs(t, e, "alice@example.com", "Alice")
	userID := body["user"].(map[string]any)["id"].(string)

	if _, err := database.DB.Exec("UPDATE users SET model_count = 7 WHERE id = ?", userID); err != nil {
		t.Fatal(err)
	}

	rec := doForm(e, "/admin/reset-user-count", url.Values{
		"password": {"test-admin"},
		"user_id":  {userID},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	user, err := database.NewUserRepo().GetByID(userID)
	if err != nil {
		t.Fatal(err)
	}
	if user.ModelCount != 0 {
		t.Errorf("model_count = %d, want 0", user.ModelCount)
	}

	if n, _ := database.NewAdminLogRepo().CountByAction(models.ActionResetUserCount); n != 1 {
		t.Errorf("reset audit entries = %d, want 1", n)
	}

	rec = doForm(e, "/admin/reset-user-count", url.Values{
		"password": {"test-admin"},
		"user_id":  {"nobody"},
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown user status = %d, want 404", rec.Code)
	}
}
