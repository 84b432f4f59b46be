package api

import (
	"context"
	"net/url"
	"strconv"
	"time"
)

// NotificationType classifies a notification for display.
type NotificationType string

const (
	NotifySecurity NotificationType = "security"
	NotifyInfo     NotificationType = "info"
	NotifyWarning  NotificationType = "warning"
	NotifyError    NotificationType = "error"
	NotifySuccess  NotificationType = "success"
	NotifyDocument NotificationType = "document"
	NotifyUser     NotificationType = "user"
	NotifySystem   NotificationType = "system"
)

// Notification priority levels.
const (
	PriorityCritical = "critical"
	// high/medium/low shared with issue priorities
)

// Notification is one entry in the notification center. Bulk-fetched
// and realtime-delivered notifications share this shape, so downstream
// code cannot tell how one arrived.
type Notification struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Details   string           `json:"details,omitempty"`
	Priority  string           `json:"priority"`
	CreatedAt time.Time        `json:"created_at"`
	IsRead    bool             `json:"is_read"`
	ActionURL string           `json:"action_url,omitempty"`
}

// NotificationList is the bulk fetch reply. The unread count is not
// part of the payload; consumers track it locally from IsRead.
type NotificationList struct {
	Notifications []Notification `json:"notifications"`
	Total         int            `json:"total"`
	Limit         int            `json:"limit"`
	Offset        int            `json:"offset"`
}

// NotificationStats summarizes the notification center.
type NotificationStats struct {
	Total       int            `json:"total_notifications"`
	UnreadCount int            `json:"unread_count"`
	ReadCount   int            `json:"read_count"`
	ByPriority  map[string]int `json:"by_priority"`
	ByType      map[string]int `json:"by_type"`
}

// ListNotifications fetches the notification center contents.
func (c *Client) ListNotifications(ctx context.Context, limit, offset int) (*NotificationList, error) {
	opts := []RequestOption{}
	if limit > 0 {
		opts = append(opts, WithQuery("limit", strconv.Itoa(limit)))
	}
	if offset > 0 {
		opts = append(opts, WithQuery("offset", strconv.Itoa(offset)))
	}

	var out NotificationList
	if err := c.getJSON(ctx, "/api/notifications/", &out, opts...); err != nil {
		return nil, err
	}
	return &out, nil
}

// MarkNotificationRead marks one notification read server-side.
func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	return c.postJSON(ctx, "/api/notifications/"+url.PathEscape(id)+"/read", nil, nil)
}

// MarkAllNotificationsRead marks everything read server-side.
func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.postJSON(ctx, "/api/notifications/mark-all-read", nil, nil)
}

// DeleteNotification removes one notification server-side.
func (c *Client) DeleteNotification(ctx context.Context, id string) error {
	_, err := c.Delete(ctx, "/api/notifications/"+url.PathEscape(id))
	return err
}

// GetNotificationStats fetches center-level counters.
func (c *Client) GetNotificationStats(ctx context.Context) (*NotificationStats, error) {
	var out NotificationStats
	if err := c.getJSON(ctx, "/api/notifications/stats", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
