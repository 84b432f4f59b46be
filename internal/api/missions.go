package api

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/url"
	"sort"
	"time"
)

// Mission lifecycle states.
const (
	MissionPending    = "pending"
	MissionInProgress = "in_progress"
	MissionCompleted  = "completed"
	MissionFailed     = "failed"
	MissionAborted    = "aborted"
)

// Mission difficulty tiers.
const (
	DifficultySearch = "search"
	DifficultyHard   = "hard"
	DifficultyInsane = "insane"
)

// Mission is one card on the ops planner board.
type Mission struct {
	ID                string            `json:"_id"`
	Title             string            `json:"title"`
	Description       string            `json:"description,omitempty"`
	Difficulty        string            `json:"difficulty"`
	Status            string            `json:"status"`
	CreatedBy         string            `json:"created_by"`
	CreatedByName     string            `json:"created_by_name,omitempty"`
	AssignedAgentID   string            `json:"assigned_agent_id,omitempty"`
	AssignedAgentName string            `json:"assigned_agent_name,omitempty"`
	DueDate           *time.Time        `json:"due_date,omitempty"`
	Tags              []string          `json:"tags"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
	CompletedAt       *time.Time        `json:"completed_at,omitempty"`
	CompletionNotes   string            `json:"completion_notes,omitempty"`
	Documents         []MissionDocument `json:"documents,omitempty"`
}

// MissionDocument is a file attached to a mission.
type MissionDocument struct {
	Filename   string    `json:"filename"`
	UploadDate time.Time `json:"upload_date"`
	UploadedBy string    `json:"uploaded_by"`
	FileSize   int64     `json:"file_size"`
}

// MissionCreate is the create-mission payload.
type MissionCreate struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Difficulty  string     `json:"difficulty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
}

// MissionUpdate carries the fields of a partial mission edit.
type MissionUpdate struct {
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	Difficulty  string     `json:"difficulty,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
}

// MissionFilter narrows ListMissions.
type MissionFilter struct {
	Status     string
	Difficulty string
	AgentID    string
}

// AgentScore is one eligible agent with the server-computed score.
type AgentScore struct {
	ID                string `json:"_id"`
	FullName          string `json:"full_name"`
	Email             string `json:"email"`
	Score             int    `json:"score"`
	Availability      string `json:"availability"`
	ActiveMissions    int    `json:"active_missions"`
	CompletedMissions int    `json:"completed_missions"`
	FailedMissions    int    `json:"failed_missions"`
}

// AgentWork is the workload view for a single agent.
type AgentWork struct {
	AssignedMissions  []Mission `json:"assigned_missions"`
	CompletedMissions []Mission `json:"completed_missions"`
	FailedMissions    []Mission `json:"failed_missions"`
	CurrentScore      int       `json:"current_score"`
	TotalMissions     int       `json:"total_missions"`
}

// KanbanColumn is one status column of the board.
type KanbanColumn struct {
	Status   string    `json:"status"`
	Missions []Mission `json:"missions"`
}

// KanbanBoard is the whole ops planner board.
type KanbanBoard struct {
	Columns []KanbanColumn `json:"columns"`
	Total   int            `json:"total"`
}

// ActivityEntry is one line of a mission's audit trail.
type ActivityEntry struct {
	Timestamp       time.Time `json:"timestamp"`
	Action          string    `json:"action"`
	PerformedBy     string    `json:"performed_by"`
	PerformedByName string    `json:"performed_by_name"`
	Details         string    `json:"details,omitempty"`
}

// CreateMission creates a mission on the board.
func (c *Client) CreateMission(ctx context.Context, req MissionCreate) (*Mission, error) {
	var out Mission
	if err := c.postJSON(ctx, "/api/ops-planner/missions", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListMissions lists missions matching the filter.
func (c *Client) ListMissions(ctx context.Context, filter MissionFilter) ([]Mission, error) {
	var opts []RequestOption
	if filter.Status != "" {
		opts = append(opts, WithQuery("status", filter.Status))
	}
	if filter.Difficulty != "" {
		opts = append(opts, WithQuery("difficulty", filter.Difficulty))
	}
	if filter.AgentID != "" {
		opts = append(opts, WithQuery("agent_id", filter.AgentID))
	}

	var out []Mission
	if err := c.getJSON(ctx, "/api/ops-planner/missions", &out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// GetMission fetches one mission.
func (c *Client) GetMission(ctx context.Context, id string) (*Mission, error) {
	var out Mission
	if err := c.getJSON(ctx, "/api/ops-planner/missions/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateMission applies a partial edit.
func (c *Client) UpdateMission(ctx context.Context, id string, req MissionUpdate) (*Mission, error) {
	var out Mission
	if err := c.patchJSON(ctx, "/api/ops-planner/missions/"+url.PathEscape(id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteMission removes a mission.
func (c *Client) DeleteMission(ctx context.Context, id string) error {
	_, err := c.Delete(ctx, "/api/ops-planner/missions/"+url.PathEscape(id))
	return err
}

// AssignMission assigns a mission to an agent. Eligibility and scoring
// are enforced server-side.
func (c *Client) AssignMission(ctx context.Context, missionID, agentID string) (*Mission, error) {
	body := map[string]string{"agent_id": agentID}

	var out Mission
	if err := c.postJSON(ctx, "/api/ops-planner/missions/"+url.PathEscape(missionID)+"/assign", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetMissionStatus moves a mission through its lifecycle.
func (c *Client) SetMissionStatus(ctx context.Context, missionID, status, notes string) (*Mission, error) {
	body := map[string]string{"status": status}
	if notes != "" {
		body["completion_notes"] = notes
	}

	var out Mission
	if err := c.patchJSON(ctx, "/api/ops-planner/missions/"+url.PathEscape(missionID)+"/status", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Board fetches the kanban board.
func (c *Client) Board(ctx context.Context) (*KanbanBoard, error) {
	var out KanbanBoard
	if err := c.getJSON(ctx, "/api/ops-planner/board", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AvailableAgents lists agents eligible for assignment, highest score
// first. The server computes scores; ordering before display was the
// dashboard's job and stays on this side of the wire.
func (c *Client) AvailableAgents(ctx context.Context) ([]AgentScore, error) {
	var out []AgentScore
	if err := c.getJSON(ctx, "/api/ops-planner/agents/available", &out); err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out, nil
}

// AgentWork fetches another agent's workload (admin view).
func (c *Client) AgentWork(ctx context.Context, agentID string) (*AgentWork, error) {
	var out AgentWork
	if err := c.getJSON(ctx, "/api/ops-planner/agents/"+url.PathEscape(agentID)+"/work", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MyWork fetches the authenticated agent's workload.
func (c *Client) MyWork(ctx context.Context) (*AgentWork, error) {
	var out AgentWork
	if err := c.getJSON(ctx, "/api/ops-planner/my-work", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadMissionDocument attaches a file to a mission as multipart form
// data. The multipart writer owns the content type so its boundary
// reaches the server intact.
func (c *Client) UploadMissionDocument(ctx context.Context, missionID, filename string, file io.Reader) (*MissionDocument, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, validationError("build multipart body: %v", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, validationError("read upload: %v", err)
	}
	if err := writer.Close(); err != nil {
		return nil, validationError("finish multipart body: %v", err)
	}

	resp, err := c.Post(ctx,
		"/api/ops-planner/missions/"+url.PathEscape(missionID)+"/documents",
		Multipart{ContentType: writer.FormDataContentType(), Body: &buf})
	if err != nil {
		return nil, err
	}

	var out MissionDocument
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MissionDocuments lists a mission's attachments.
func (c *Client) MissionDocuments(ctx context.Context, missionID string) ([]MissionDocument, error) {
	var out []MissionDocument
	if err := c.getJSON(ctx, "/api/ops-planner/missions/"+url.PathEscape(missionID)+"/documents", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MissionActivity fetches a mission's audit trail.
func (c *Client) MissionActivity(ctx context.Context, missionID string) ([]ActivityEntry, error) {
	var out []ActivityEntry
	if err := c.getJSON(ctx, "/api/ops-planner/missions/"+url.PathEscape(missionID)+"/activity", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PlannerStats fetches board-level counters.
func (c *Client) PlannerStats(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := c.getJSON(ctx, "/api/ops-planner/stats", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ValidMissionStatus reports whether status is a known lifecycle state.
func ValidMissionStatus(status string) bool {
	switch status {
	case MissionPending, MissionInProgress, MissionCompleted, MissionFailed, MissionAborted:
		return true
	}
	return false
}

// ValidDifficulty reports whether difficulty is a known tier.
func ValidDifficulty(difficulty string) bool {
	switch difficulty {
	case DifficultySearch, DifficultyHard, DifficultyInsane:
		return true
	}
	return false
}
