package api

import (
	"context"
	"strings"
)

// TokenResponse is returned by every login variant.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	FullName    string `json:"full_name"`
	Role        string `json:"role"`
}

// UserInfo is the /auth/me shape. Unlike the login endpoints, this one
// reports the user id under "id".
type UserInfo struct {
	UserID   string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// RangerStats summarizes a ranger's standing as /auth/ranger-stats
// reports it. CurrentIssue is the active task title, empty when idle.
type RangerStats struct {
	PerformanceScore   int    `json:"performance_score"`
	CompletedMissions  int    `json:"completed_missions"`
	InProgressMissions int    `json:"in_progress_missions"`
	CompletedIssues    int    `json:"completed_issues"`
	CurrentIssue       string `json:"current_issue"`
	Age                int    `json:"age"`
	MaritalStatus      string `json:"marital_status"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type scanQRRequest struct {
	QRToken string `json:"qr_token"`
}

// Login authenticates via the admin login endpoint.
func (c *Client) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	var out TokenResponse
	if err := c.postJSON(ctx, "/auth/login", loginRequest{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RangerLogin authenticates via the ranger (technician/agent) endpoint.
// The server rejects admins here; which roles may use which endpoint is
// its call, not ours.
func (c *Client) RangerLogin(ctx context.Context, email, password string) (*TokenResponse, error) {
	var out TokenResponse
	if err := c.postJSON(ctx, "/auth/ranger/login", loginRequest{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ScanQR exchanges a QR badge token for a session token. An empty token
// never leaves the client.
func (c *Client) ScanQR(ctx context.Context, qrToken string) (*TokenResponse, error) {
	if strings.TrimSpace(qrToken) == "" {
		return nil, validationError("QR token is empty")
	}

	var out TokenResponse
	if err := c.postJSON(ctx, "/auth/scan", scanQRRequest{QRToken: qrToken}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// QRValidation is the /auth/qr/validate shape.
type QRValidation struct {
	Valid            bool   `json:"valid"`
	UserID           string `json:"user_id"`
	Email            string `json:"email"`
	FullName         string `json:"full_name"`
	Role             string `json:"role"`
	Expired          bool   `json:"expired"`
	ExpiresInMinutes int    `json:"expires_in_minutes"`
}

// ValidateQR checks a QR token without logging in.
func (c *Client) ValidateQR(ctx context.Context, qrToken string) (*QRValidation, error) {
	if strings.TrimSpace(qrToken) == "" {
		return nil, validationError("QR token is empty")
	}

	var out QRValidation
	if err := c.postJSON(ctx, "/auth/qr/validate", scanQRRequest{QRToken: qrToken}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TokenValidation is the /auth/validate shape.
type TokenValidation struct {
	Valid    bool   `json:"valid"`
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// ValidateToken checks whether the current bearer token is still good.
// The endpoint takes the token as a query parameter rather than reading
// the Authorization header.
func (c *Client) ValidateToken(ctx context.Context) (*TokenValidation, error) {
	token := c.store.Token()
	if token == "" {
		return nil, validationError("no session token to validate")
	}

	var out TokenValidation
	if err := c.getJSON(ctx, "/auth/validate", &out, WithQuery("token", token)); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me fetches the authenticated user's identity.
func (c *Client) Me(ctx context.Context) (*UserInfo, error) {
	var out UserInfo
	if err := c.getJSON(ctx, "/auth/me", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MyRangerStats fetches the authenticated ranger's score summary.
func (c *Client) MyRangerStats(ctx context.Context) (*RangerStats, error) {
	var out RangerStats
	if err := c.getJSON(ctx, "/auth/ranger-stats", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
