package api

import (
	"context"
	"net/url"
	"sort"
	"time"
)

// Issue lifecycle states.
const (
	IssuePending    = "pending"
	IssueInProgress = "in_progress"
	IssueCompleted  = "completed"
	IssueFailed     = "failed"
)

// Issue priorities.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Issue categories.
const (
	CategoryCCTV        = "cctv"
	CategoryDoorAccess  = "door_access"
	CategoryComputer    = "computer"
	CategoryPowerSupply = "power_supply"
	CategoryNetwork     = "network"
	CategoryOther       = "other"
)

// Issue is one facility ticket.
type Issue struct {
	ID              string     `json:"_id"`
	IssueNumber     int        `json:"issue_number"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Priority        string     `json:"priority"`
	Category        string     `json:"category"`
	Location        string     `json:"location,omitempty"`
	Status          string     `json:"status"`
	CreatedBy       string     `json:"created_by"`
	CreatedByName   string     `json:"created_by_name"`
	CreatedByRole   string     `json:"created_by_role"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	AssignedTo      string     `json:"assigned_to,omitempty"`
	AssignedToName  string     `json:"assigned_to_name,omitempty"`
	AssignedAt      *time.Time `json:"assigned_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	Outcome         string     `json:"outcome,omitempty"`
	ResolutionNotes string     `json:"resolution_notes,omitempty"`
}

// IssueCreate is the create-ticket payload.
type IssueCreate struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Category    string `json:"category,omitempty"`
	Location    string `json:"location,omitempty"`
}

// IssueFilter narrows ListIssues.
type IssueFilter struct {
	Status   string
	Priority string
	Category string
}

// TechnicianScore is one technician candidate with the server-computed
// score used for assignment ranking.
type TechnicianScore struct {
	ID           string `json:"_id"`
	FullName     string `json:"full_name"`
	Email        string `json:"email"`
	Score        int    `json:"score"`
	Availability string `json:"availability"`
	ActiveIssues int    `json:"active_issues"`
	SolvedIssues int    `json:"solved_issues"`
	FailedIssues int    `json:"failed_issues"`
}

// CreateIssue opens a facility ticket.
func (c *Client) CreateIssue(ctx context.Context, req IssueCreate) (*Issue, error) {
	var out Issue
	if err := c.postJSON(ctx, "/facility-ops/issues", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListIssues lists open tickets matching the filter.
func (c *Client) ListIssues(ctx context.Context, filter IssueFilter) ([]Issue, error) {
	var opts []RequestOption
	if filter.Status != "" {
		opts = append(opts, WithQuery("status", filter.Status))
	}
	if filter.Priority != "" {
		opts = append(opts, WithQuery("priority", filter.Priority))
	}
	if filter.Category != "" {
		opts = append(opts, WithQuery("category", filter.Category))
	}

	var out []Issue
	if err := c.getJSON(ctx, "/facility-ops/issues", &out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// SolvedIssues lists resolved tickets.
func (c *Client) SolvedIssues(ctx context.Context) ([]Issue, error) {
	var out []Issue
	if err := c.getJSON(ctx, "/facility-ops/issues/solved", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetIssue fetches one ticket.
func (c *Client) GetIssue(ctx context.Context, id string) (*Issue, error) {
	var out Issue
	if err := c.getJSON(ctx, "/facility-ops/issues/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AssignIssue assigns a ticket to a technician.
func (c *Client) AssignIssue(ctx context.Context, issueID, technicianID, notes string) (*Issue, error) {
	body := map[string]string{"technician_id": technicianID}
	if notes != "" {
		body["notes"] = notes
	}

	var out Issue
	if err := c.postJSON(ctx, "/facility-ops/issues/"+url.PathEscape(issueID)+"/assign", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitOutcome reports the technician's result on an assigned ticket.
func (c *Client) SubmitOutcome(ctx context.Context, issueID, outcome, notes string) (*Issue, error) {
	body := map[string]string{"outcome": outcome, "notes": notes}

	var out Issue
	if err := c.postJSON(ctx, "/facility-ops/issues/"+url.PathEscape(issueID)+"/outcome", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetIssueStatus moves a ticket through its lifecycle.
func (c *Client) SetIssueStatus(ctx context.Context, issueID, status, notes string) (*Issue, error) {
	body := map[string]string{"status": status}
	if notes != "" {
		body["notes"] = notes
	}

	var out Issue
	if err := c.patchJSON(ctx, "/facility-ops/issues/"+url.PathEscape(issueID)+"/status", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteIssue removes a ticket.
func (c *Client) DeleteIssue(ctx context.Context, id string) error {
	_, err := c.Delete(ctx, "/facility-ops/issues/"+url.PathEscape(id))
	return err
}

// Technicians lists assignable technicians, highest score first.
func (c *Client) Technicians(ctx context.Context) ([]TechnicianScore, error) {
	var out []TechnicianScore
	if err := c.getJSON(ctx, "/facility-ops/technicians", &out); err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out, nil
}

// FacilityStats fetches ticket counters.
func (c *Client) FacilityStats(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := c.getJSON(ctx, "/facility-ops/stats", &out); err != nil {
		return nil, err
	}
	return out, nil
}
