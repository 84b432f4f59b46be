package api

import (
	"context"
	"net/url"
	"strconv"
	"time"
)

// User is one onboarded ranger as the admin screens see it.
type User struct {
	ID        string     `json:"_id"`
	Email     string     `json:"email"`
	FullName  string     `json:"full_name"`
	Role      string     `json:"role"`
	Status    string     `json:"status"`
	Score     int        `json:"score"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

// UserCreate is the admin onboarding payload.
type UserCreate struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UserCreated is the onboarding response; the QR token is shown once so
// the new ranger's badge can be printed.
type UserCreated struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	QRToken  string `json:"qr_token"`
}

// UserUpdate carries the fields of a partial user edit.
type UserUpdate struct {
	FullName string `json:"full_name,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
}

// IdentityLog is one auth audit event.
type IdentityLog struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	IPAddress string    `json:"ip_address,omitempty"`
	Reason    string    `json:"reason,omitempty"`
}

// DashboardStats fetches the admin dashboard counters.
func (c *Client) DashboardStats(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := c.getJSON(ctx, "/admin/dashboard-stats", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateUser onboards a ranger and returns their one-time QR token.
func (c *Client) CreateUser(ctx context.Context, req UserCreate) (*UserCreated, error) {
	var out UserCreated
	if err := c.postJSON(ctx, "/admin/create-user", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListUsers lists all onboarded users.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var out []User
	if err := c.getJSON(ctx, "/admin/users", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetUser fetches one user.
func (c *Client) GetUser(ctx context.Context, id string) (*User, error) {
	var out User
	if err := c.getJSON(ctx, "/admin/users/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateUser applies a partial edit.
func (c *Client) UpdateUser(ctx context.Context, id string, req UserUpdate) (*User, error) {
	var out User
	if err := c.putJSON(ctx, "/admin/users/"+url.PathEscape(id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SuspendUser deactivates a user account.
func (c *Client) SuspendUser(ctx context.Context, id string) error {
	return c.putJSON(ctx, "/admin/users/"+url.PathEscape(id)+"/suspend", nil, nil)
}

// ActivateUser reactivates a suspended account.
func (c *Client) ActivateUser(ctx context.Context, id string) error {
	return c.putJSON(ctx, "/admin/users/"+url.PathEscape(id)+"/activate", nil, nil)
}

// DeleteUser removes a user account.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	_, err := c.Delete(ctx, "/admin/users/"+url.PathEscape(id))
	return err
}

// IdentityLogs fetches the auth audit trail.
func (c *Client) IdentityLogs(ctx context.Context, limit int) ([]IdentityLog, error) {
	var opts []RequestOption
	if limit > 0 {
		opts = append(opts, WithQuery("limit", strconv.Itoa(limit)))
	}

	var out []IdentityLog
	if err := c.getJSON(ctx, "/admin/identity-logs", &out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
