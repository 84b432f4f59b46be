package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/sentinelops/sentinel/internal/api"
	"github.com/sentinelops/sentinel/internal/session"
)

// mockBackend implements Backend for testing
type mockBackend struct {
	loginResp   *api.TokenResponse
	loginErr    error
	rangerResp  *api.TokenResponse
	rangerErr   error
	scanResp    *api.TokenResponse
	scanErr     error
	meResp      *api.UserInfo
	meErr       error
	loginCalls  int
	rangerCalls int
	scanCalls   int
}

func (m *mockBackend) Login(ctx context.Context, email, password string) (*api.TokenResponse, error) {
	m.loginCalls++
	return m.loginResp, m.loginErr
}

func (m *mockBackend) RangerLogin(ctx context.Context, email, password string) (*api.TokenResponse, error) {
	m.rangerCalls++
	return m.rangerResp, m.rangerErr
}

func (m *mockBackend) ScanQR(ctx context.Context, qrToken string) (*api.TokenResponse, error) {
	m.scanCalls++
	if m.scanErr == nil && m.scanResp == nil {
		return nil, errors.New("no response configured")
	}
	return m.scanResp, m.scanErr
}

func (m *mockBackend) Me(ctx context.Context) (*api.UserInfo, error) {
	return m.meResp, m.meErr
}

func agentToken() *api.TokenResponse {
	return &api.TokenResponse{
		AccessToken: "abc",
		TokenType:   "bearer",
		UserID:      "42",
		Email:       "ranger@ops.io",
		FullName:    "Test Ranger",
		Role:        "agent",
	}
}

func newTestController(t *testing.T, backend Backend) (*Controller, *session.Store) {
	t.Helper()
	store, err := session.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return NewController(backend, store, zerolog.Nop()), store
}

func TestLoginWithPassword_SavesSession(t *testing.T) {
	backend := &mockBackend{rangerResp: agentToken()}
	ctrl, store := newTestController(t, backend)

	user, err := ctrl.LoginWithPassword(context.Background(), "ranger@ops.io", "x", false)
	if err != nil {
		t.Fatalf("LoginWithPassword() error = %v", err)
	}

	if user.Role != session.RoleAgent {
		t.Errorf("user.Role = %q, want agent", user.Role)
	}
	if user.ID != "42" {
		t.Errorf("user.ID = %q, want 42", user.ID)
	}

	sess, ok := store.Load()
	if !ok {
		t.Fatal("session not saved after login")
	}
	want := session.Session{Token: "abc", UserID: "42", Email: "ranger@ops.io", Role: session.RoleAgent}
	if sess != want {
		t.Errorf("session = %+v, want %+v", sess, want)
	}
}

func TestLoginWithPassword_FlowSelectsEndpoint(t *testing.T) {
	backend := &mockBackend{loginResp: agentToken(), rangerResp: agentToken()}
	ctrl, _ := newTestController(t, backend)

	ctrl.LoginWithPassword(context.Background(), "a@b.c", "x", true)
	if backend.loginCalls != 1 || backend.rangerCalls != 0 {
		t.Errorf("admin flow: login=%d ranger=%d, want 1/0", backend.loginCalls, backend.rangerCalls)
	}

	ctrl.LoginWithPassword(context.Background(), "a@b.c", "x", false)
	if backend.rangerCalls != 1 {
		t.Errorf("ranger flow: rangerCalls = %d, want 1", backend.rangerCalls)
	}
}

func TestLoginWithPassword_ServerRoleWins(t *testing.T) {
	// The user picked the ranger tab but the server says technician.
	tok := agentToken()
	tok.Role = "technician"
	backend := &mockBackend{rangerResp: tok}
	ctrl, store := newTestController(t, backend)

	user, err := ctrl.LoginWithPassword(context.Background(), "ranger@ops.io", "x", false)
	if err != nil {
		t.Fatalf("LoginWithPassword() error = %v", err)
	}

	if user.Role != session.RoleTechnician {
		t.Errorf("user.Role = %q, want server-assigned technician", user.Role)
	}
	sess, _ := store.Load()
	if sess.Role != session.RoleTechnician {
		t.Errorf("session.Role = %q, want technician", sess.Role)
	}
}

func TestLoginWithPassword_FailureLeavesNoSession(t *testing.T) {
	backend := &mockBackend{rangerErr: &api.RequestError{Kind: api.KindAPI, Status: 401, Message: "Invalid email or password"}}
	ctrl, store := newTestController(t, backend)

	_, err := ctrl.LoginWithPassword(context.Background(), "ranger@ops.io", "bad", false)
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := store.Load(); ok {
		t.Error("failed login must not leave a session")
	}
}

func TestLoginWithQRToken(t *testing.T) {
	backend := &mockBackend{scanResp: agentToken()}
	ctrl, store := newTestController(t, backend)

	user, err := ctrl.LoginWithQRToken(context.Background(), "qr-token-1")
	if err != nil {
		t.Fatalf("LoginWithQRToken() error = %v", err)
	}
	if user.Email != "ranger@ops.io" {
		t.Errorf("user.Email = %q", user.Email)
	}
	if _, ok := store.Load(); !ok {
		t.Error("session not saved after QR login")
	}
}

func TestLogout_Idempotent(t *testing.T) {
	backend := &mockBackend{rangerResp: agentToken()}
	ctrl, store := newTestController(t, backend)

	ctrl.LoginWithPassword(context.Background(), "ranger@ops.io", "x", false)

	if err := ctrl.Logout(); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if _, ok := store.Load(); ok {
		t.Error("session still present after logout")
	}

	// Second logout observes the same state as the first
	if err := ctrl.Logout(); err != nil {
		t.Errorf("second Logout() error = %v", err)
	}
	if _, ok := store.Load(); ok {
		t.Error("session reappeared after second logout")
	}
}

func TestCurrentUser(t *testing.T) {
	backend := &mockBackend{rangerResp: agentToken()}
	ctrl, _ := newTestController(t, backend)

	if _, ok := ctrl.CurrentUser(); ok {
		t.Error("CurrentUser() ok = true before login")
	}

	ctrl.LoginWithPassword(context.Background(), "ranger@ops.io", "x", false)

	user, ok := ctrl.CurrentUser()
	if !ok {
		t.Fatal("CurrentUser() ok = false after login")
	}
	if user.ID != "42" || user.Role != session.RoleAgent {
		t.Errorf("CurrentUser() = %+v", user)
	}
}

func TestRefreshCurrentUser_UpdatesSession(t *testing.T) {
	backend := &mockBackend{
		rangerResp: agentToken(),
		meResp:     &api.UserInfo{UserID: "42", Email: "ranger@ops.io", FullName: "Test Ranger", Role: "technician"},
	}
	ctrl, store := newTestController(t, backend)
	ctrl.LoginWithPassword(context.Background(), "ranger@ops.io", "x", false)

	user, err := ctrl.RefreshCurrentUser(context.Background())
	if err != nil {
		t.Fatalf("RefreshCurrentUser() error = %v", err)
	}
	if user.Role != session.RoleTechnician {
		t.Errorf("refreshed role = %q, want technician", user.Role)
	}

	sess, _ := store.Load()
	if sess.Role != session.RoleTechnician {
		t.Errorf("session role = %q, want technician", sess.Role)
	}
	if sess.Token != "abc" {
		t.Errorf("refresh must keep the token, got %q", sess.Token)
	}
}

func TestRefreshCurrentUser_AgainstBackendMeShape(t *testing.T) {
	// End to end through the real HTTP client: /auth/me reports the
	// user id under "id", and refresh must still save a full session.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/me" {
			t.Errorf("path = %q, want /auth/me", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"42","email":"ranger@ops.io","full_name":"Test Ranger","role":"agent","age":25,"status":"active","permissions":{"can_view_missions":true},"last_login":"2026-08-01T12:00:00Z"}`))
	}))
	defer server.Close()

	store, err := session.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if err := store.Save(session.Session{Token: "abc", UserID: "42", Email: "ranger@ops.io", Role: session.RoleAgent}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	client := api.NewClient(api.Config{BaseURL: server.URL, Store: store, Logger: zerolog.Nop()})
	ctrl := NewController(client, store, zerolog.Nop())

	user, err := ctrl.RefreshCurrentUser(context.Background())
	if err != nil {
		t.Fatalf("RefreshCurrentUser() error = %v", err)
	}
	if user.ID != "42" {
		t.Errorf("user.ID = %q, want 42", user.ID)
	}

	sess, ok := store.Load()
	if !ok {
		t.Fatal("session absent after successful refresh")
	}
	if sess.UserID != "42" {
		t.Errorf("session.UserID = %q, want 42", sess.UserID)
	}
}

func TestRefreshCurrentUser_AuthFailureClearsSession(t *testing.T) {
	backend := &mockBackend{
		rangerResp: agentToken(),
		meErr:      &api.RequestError{Kind: api.KindAPI, Status: http.StatusUnauthorized, Message: "token expired"},
	}
	ctrl, store := newTestController(t, backend)
	ctrl.LoginWithPassword(context.Background(), "ranger@ops.io", "x", false)

	_, err := ctrl.RefreshCurrentUser(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := store.Load(); ok {
		t.Error("session must be cleared on 401")
	}
}

func TestRefreshCurrentUser_NetworkErrorKeepsSession(t *testing.T) {
	backend := &mockBackend{
		rangerResp: agentToken(),
		meErr:      &api.RequestError{Kind: api.KindNetwork, Message: "connection refused"},
	}
	ctrl, store := newTestController(t, backend)
	ctrl.LoginWithPassword(context.Background(), "ranger@ops.io", "x", false)

	_, err := ctrl.RefreshCurrentUser(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := store.Load(); !ok {
		t.Error("transient network failure must not clear the session")
	}
}

func TestRequireRole(t *testing.T) {
	backend := &mockBackend{rangerResp: agentToken()}
	ctrl, _ := newTestController(t, backend)

	if err := ctrl.RequireRole(session.RoleAgent); !errors.Is(err, ErrNotLoggedIn) {
		t.Errorf("RequireRole() before login = %v, want ErrNotLoggedIn", err)
	}

	ctrl.LoginWithPassword(context.Background(), "ranger@ops.io", "x", false)

	if err := ctrl.RequireRole(session.RoleAgent); err != nil {
		t.Errorf("RequireRole(agent) = %v, want nil", err)
	}
	if err := ctrl.RequireRole(""); err != nil {
		t.Errorf("RequireRole(\"\") = %v, want nil with any session", err)
	}
	if err := ctrl.RequireRole(session.RoleAdmin); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("RequireRole(admin) = %v, want ErrAccessDenied", err)
	}
}
