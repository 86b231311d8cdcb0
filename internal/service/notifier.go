package service

import (
	"log/slog"
	"sync"

	"github.com/msomdec/event-tracker/internal/domain"
)

// Notifier fans reminder notifications out to a user's live subscribers.
// It is safe for concurrent use.
type Notifier struct {
	mu     sync.Mutex
	subs   map[int64]map[chan domain.Notification]struct{}
	buffer int
}

// NewNotifier creates a Notifier whose subscriber channels hold up to buffer
// undelivered notifications.
func NewNotifier(buffer int) *Notifier {
	if buffer < 1 {
		buffer = 1
	}
	return &Notifier{
		subs:   make(map[int64]map[chan domain.Notification]struct{}),
		buffer: buffer,
	}
}

// Subscribe registers a subscriber for userID. The returned cancel func
// unregisters it and closes the channel; it is safe to call more than once.
func (n *Notifier) Subscribe(userID int64) (<-chan domain.Notification, func()) {
	ch := make(chan domain.Notification, n.buffer)

	n.mu.Lock()
	if n.subs[userID] == nil {
		n.subs[userID] = make(map[chan domain.Notification]struct{})
	}
	n.subs[userID][ch] = struct{}{}
	n.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			delete(n.subs[userID], ch)
			if len(n.subs[userID]) == 0 {
				delete(n.subs, userID)
			}
			close(ch)
		})
	}
	return ch, cancel
}

// Publish sends note to every subscriber of note.UserID without blocking and
// returns how many received it. Subscribers with a full buffer miss it.
func (n *Notifier) Publish(note domain.Notification) int {
	n.mu.Lock()
	defer n.mu.Unlock()

	sent := 0
	for ch := range n.subs[note.UserID] {
		select {
		case ch <- note:
			sent++
		default:
			slog.Warn("notification dropped, subscriber buffer full", "user_id", note.UserID, "reminder_id", note.ReminderID)
		}
	}
	return sent
}

// SubscriberCount returns the number of live subscribers for userID.
func (n *Notifier) SubscriberCount(userID int64) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs[userID])
}
