// Package inbox holds the client-side notification list.
package inbox

import (
	"sync"

	"github.com/sentinelops/sentinel/internal/api"
)

// Inbox is the in-memory notification center state: a newest-first,
// de-duplicated list and an unread counter. The counter is maintained
// by every local mutation, so it always equals the number of held
// unread notifications without refetching.
type Inbox struct {
	mu     sync.Mutex
	items  []api.Notification
	unread int
}

// New creates an empty inbox.
func New() *Inbox {
	return &Inbox{}
}

// Reset replaces the contents from a bulk fetch. Duplicate IDs keep
// their first occurrence.
func (b *Inbox) Reset(items []api.Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.items = b.items[:0]
	b.unread = 0
	seen := make(map[string]struct{}, len(items))
	for _, n := range items {
		if _, dup := seen[n.ID]; dup {
			continue
		}
		seen[n.ID] = struct{}{}
		b.items = append(b.items, n)
		if !n.IsRead {
			b.unread++
		}
	}
}

// Add prepends a notification delivered over the realtime channel.
// Returns false for a duplicate ID, which leaves inbox state and the
// unread counter untouched.
func (b *Inbox) Add(n api.Notification) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, existing := range b.items {
		if existing.ID == n.ID {
			return false
		}
	}

	b.items = append([]api.Notification{n}, b.items...)
	if !n.IsRead {
		b.unread++
	}
	return true
}

// MarkRead marks one notification read. Returns false if the ID is
// unknown.
func (b *Inbox) MarkRead(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.items {
		if b.items[i].ID == id {
			if !b.items[i].IsRead {
				b.items[i].IsRead = true
				b.unread--
			}
			return true
		}
	}
	return false
}

// MarkAllRead marks everything read and returns how many changed.
func (b *Inbox) MarkAllRead() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	changed := 0
	for i := range b.items {
		if !b.items[i].IsRead {
			b.items[i].IsRead = true
			changed++
		}
	}
	b.unread = 0
	return changed
}

// Remove deletes one notification. Returns false if the ID is unknown.
func (b *Inbox) Remove(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.items {
		if b.items[i].ID == id {
			if !b.items[i].IsRead {
				b.unread--
			}
			b.items = append(b.items[:i], b.items[i+1:]...)
			return true
		}
	}
	return false
}

// Clear empties the inbox.
func (b *Inbox) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.items = nil
	b.unread = 0
}

// List returns a copy of the notifications, newest first.
func (b *Inbox) List() []api.Notification {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]api.Notification, len(b.items))
	copy(out, b.items)
	return out
}

// UnreadCount returns the number of unread notifications.
func (b *Inbox) UnreadCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.unread
}

// Len returns the total number of notifications.
func (b *Inbox) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}
