package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/stockdesk/internal/auth"
	"github.com/odyssey-erp/stockdesk/internal/shared"
	"github.com/odyssey-erp/stockdesk/internal/view"
	_ "github.com/odyssey-erp/stockdesk/testing"
)

const operatorEmail = "admin@stockdesk.test"

func newAuthHandler(t *testing.T, onLogout func(string)) (*auth.Handler, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })
	sessionManager := shared.NewSessionManager(redisClient, "test_session", time.Hour, false)
	csrfManager := shared.NewCSRFManager("csrfsecret")
	templates, err := view.NewEngine()
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte("correctpass"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	service := auth.NewService(operatorEmail, string(hashed))
	return auth.NewHandler(nil, service, templates, sessionManager, csrfManager, onLogout), sessionManager
}

func serve(t *testing.T, sm *shared.SessionManager, req *http.Request, h http.HandlerFunc) (*httptest.ResponseRecorder, *shared.Session) {
	t.Helper()
	sess, err := sm.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	ctx := shared.ContextWithSession(req.Context(), sess)
	res := httptest.NewRecorder()
	h(res, req.WithContext(ctx))
	if err := sm.Commit(ctx, res, sess); err != nil {
		t.Fatalf("commit session: %v", err)
	}
	return res, sess
}

func postLogin(email, password string) *http.Request {
	form := url.Values{}
	form.Set("email", email)
	form.Set("password", password)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestLoginPage(t *testing.T) {
	handler, sessionManager := newAuthHandler(t, nil)

	res, sess := serve(t, sessionManager, httptest.NewRequest(http.MethodGet, "/auth/login", nil), handler.ShowLoginForTest)
	if res.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "<form") {
		t.Fatalf("expected login form in body")
	}
	if sess.Get(shared.CSRFSessionKey) == "" {
		t.Fatalf("csrf token not set")
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	handler, sessionManager := newAuthHandler(t, nil)

	res, sess := serve(t, sessionManager, postLogin(operatorEmail, "wrongpass"), handler.HandleLoginForTest)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "Invalid email or password") {
		t.Fatalf("expected error message in response")
	}
	if sess.User() != "" {
		t.Fatalf("session must stay anonymous")
	}
}

func TestLoginValidationErrors(t *testing.T) {
	handler, sessionManager := newAuthHandler(t, nil)

	res, _ := serve(t, sessionManager, postLogin("not-an-email", ""), handler.HandleLoginForTest)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
	body := res.Body.String()
	if !strings.Contains(body, "Enter a valid email address") || !strings.Contains(body, "Password is required") {
		t.Fatalf("expected field errors, got %s", body)
	}
}

func TestLoginSuccessRenewsSession(t *testing.T) {
	handler, sessionManager := newAuthHandler(t, nil)

	_, anonymous := serve(t, sessionManager, httptest.NewRequest(http.MethodGet, "/auth/login", nil), handler.ShowLoginForTest)
	req := postLogin(" ADMIN@stockdesk.test ", "correctpass")
	req.AddCookie(&http.Cookie{Name: sessionManager.CookieName(), Value: anonymous.ID})
	res, sess := serve(t, sessionManager, req, handler.HandleLoginForTest)
	if res.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", res.Code)
	}
	if sess.User() != operatorEmail {
		t.Fatalf("expected operator in session, got %q", sess.User())
	}
	if sess.ID == anonymous.ID {
		t.Fatalf("session id must be renewed on login")
	}
}

func TestLogoutDropsWorkspace(t *testing.T) {
	var dropped string
	handler, sessionManager := newAuthHandler(t, func(id string) { dropped = id })

	router := chi.NewRouter()
	router.Route("/auth", handler.MountRoutes)
	res, sess := serve(t, sessionManager, httptest.NewRequest(http.MethodPost, "/auth/logout", nil), router.ServeHTTP)
	if res.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", res.Code)
	}
	if dropped != sess.ID {
		t.Fatalf("expected workspace of %q to be dropped, got %q", sess.ID, dropped)
	}
}

func TestRequireUser(t *testing.T) {
	_, sessionManager := newAuthHandler(t, nil)
	protected := auth.RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	res, _ := serve(t, sessionManager, httptest.NewRequest(http.MethodGet, "/categories", nil), protected.ServeHTTP)
	if res.Code != http.StatusSeeOther || res.Header().Get("Location") != "/auth/login" {
		t.Fatalf("expected redirect to login, got %d %q", res.Code, res.Header().Get("Location"))
	}

	req := httptest.NewRequest(http.MethodGet, "/categories", nil)
	sess, _ := sessionManager.Load(context.Background(), req)
	sess.SetUser(operatorEmail)
	res = httptest.NewRecorder()
	protected.ServeHTTP(res, req.WithContext(shared.ContextWithSession(req.Context(), sess)))
	if res.Code != http.StatusNoContent {
		t.Fatalf("expected pass-through, got %d", res.Code)
	}
}
