// Package auth implements login, logout and role gating for the
// Sentinel client.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sentinelops/sentinel/internal/api"
	"github.com/sentinelops/sentinel/internal/session"
)

var (
	// ErrNotLoggedIn means no session is present; the caller should
	// route to login.
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrAccessDenied means a session exists but its role does not
	// match the required one. Never silently falls through.
	ErrAccessDenied = errors.New("access denied")
)

// User is the resolved identity returned to callers for routing.
type User struct {
	ID       string
	Email    string
	FullName string
	Role     session.Role
}

// Backend is the slice of the API client the controller needs.
type Backend interface {
	Login(ctx context.Context, email, password string) (*api.TokenResponse, error)
	RangerLogin(ctx context.Context, email, password string) (*api.TokenResponse, error)
	ScanQR(ctx context.Context, qrToken string) (*api.TokenResponse, error)
	Me(ctx context.Context) (*api.UserInfo, error)
}

// Controller owns the session lifecycle. It is the only component that
// writes the session store; the request client and realtime channel
// only read it.
type Controller struct {
	backend Backend
	store   *session.Store
	logger  zerolog.Logger
}

// NewController creates a session controller.
func NewController(backend Backend, store *session.Store, logger zerolog.Logger) *Controller {
	return &Controller{backend: backend, store: store, logger: logger}
}

// LoginWithPassword authenticates with email and password. adminFlow
// selects the admin login endpoint over the ranger one; that choice
// only picks the path. The role that routes the user afterwards is the
// one the server returns, which may differ from the flow the user
// picked.
func (c *Controller) LoginWithPassword(ctx context.Context, email, password string, adminFlow bool) (*User, error) {
	var (
		tok *api.TokenResponse
		err error
	)
	if adminFlow {
		tok, err = c.backend.Login(ctx, email, password)
	} else {
		tok, err = c.backend.RangerLogin(ctx, email, password)
	}
	if err != nil {
		return nil, err
	}

	return c.establish(tok)
}

// LoginWithQRToken authenticates with a scanned badge token. Empty
// tokens are rejected by the API client before any network call.
func (c *Controller) LoginWithQRToken(ctx context.Context, qrToken string) (*User, error) {
	tok, err := c.backend.ScanQR(ctx, qrToken)
	if err != nil {
		return nil, err
	}

	return c.establish(tok)
}

// establish persists the session from a token response and returns the
// resolved user.
func (c *Controller) establish(tok *api.TokenResponse) (*User, error) {
	sess := session.Session{
		Token:  tok.AccessToken,
		UserID: tok.UserID,
		Email:  tok.Email,
		Role:   session.Role(tok.Role),
	}
	if err := c.store.Save(sess); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	c.logger.Info().Str("email", tok.Email).Str("role", tok.Role).Msg("logged in")

	return &User{
		ID:       tok.UserID,
		Email:    tok.Email,
		FullName: tok.FullName,
		Role:     session.Role(tok.Role),
	}, nil
}

// Logout clears the session. It succeeds locally regardless of server
// reachability and is safe to call when already logged out.
func (c *Controller) Logout() error {
	if err := c.store.Clear(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	c.logger.Info().Msg("logged out")
	return nil
}

// CurrentUser returns the cached identity without a network call.
func (c *Controller) CurrentUser() (*User, bool) {
	sess, ok := c.store.Load()
	if !ok {
		return nil, false
	}
	return &User{ID: sess.UserID, Email: sess.Email, Role: sess.Role}, true
}

// RefreshCurrentUser revalidates the session against the server and
// updates the cached identity. An auth failure clears the session so
// the next guard check forces re-login.
func (c *Controller) RefreshCurrentUser(ctx context.Context) (*User, error) {
	sess, ok := c.store.Load()
	if !ok {
		return nil, ErrNotLoggedIn
	}

	info, err := c.backend.Me(ctx)
	if err != nil {
		if reqErr, isReq := api.AsRequestError(err); isReq && reqErr.IsAuthFailure() {
			c.logger.Warn().Int("status", reqErr.Status).Msg("session rejected, clearing")
			c.store.Clear()
		}
		return nil, err
	}

	sess.UserID = info.UserID
	sess.Email = info.Email
	sess.Role = session.Role(info.Role)
	if err := c.store.Save(sess); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	return &User{
		ID:       info.UserID,
		Email:    info.Email,
		FullName: info.FullName,
		Role:     session.Role(info.Role),
	}, nil
}

// RequireRole gates an operation. An empty role only requires a
// session; otherwise the session's role must match exactly.
func (c *Controller) RequireRole(role session.Role) error {
	sess, ok := c.store.Load()
	if !ok {
		return ErrNotLoggedIn
	}
	if role != "" && sess.Role != role {
		return fmt.Errorf("%w: requires role %q, session has %q", ErrAccessDenied, role, sess.Role)
	}
	return nil
}
