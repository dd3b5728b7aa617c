package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rmess/messd/internal/domain"
	"github.com/rmess/messd/internal/domain/history"
	"github.com/rmess/messd/internal/domain/notification"
	"github.com/rmess/messd/internal/port/broadcast"
	"github.com/rmess/messd/internal/port/statestore"
)

// EventNotificationSent is the broadcast event type for new notifications.
const EventNotificationSent = "notification.sent"

// NotificationService stores user-visible messages and pushes them to every
// configured broadcaster (websocket hub, NATS). Broadcast failures never
// affect the stored notification.
type NotificationService struct {
	store        statestore.Store
	broadcasters []broadcast.Broadcaster
}

// NewNotificationService creates a NotificationService.
func NewNotificationService(store statestore.Store, broadcasters []broadcast.Broadcaster) *NotificationService {
	return &NotificationService{store: store, broadcasters: broadcasters}
}

// Send appends a notification for the given recipients and logs a System
// audit entry. Long recipient lists are elided to a count in the audit text.
func (s *NotificationService) Send(ctx context.Context, content string, recipientIDs []string, senderID, tenantID string) (*notification.Notification, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", domain.ErrValidation)
	}
	if len(recipientIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one recipient is required", domain.ErrValidation)
	}

	var n notification.Notification
	err := s.store.Update(ctx, func(st *statestore.State) error {
		n = appendNotification(st, content, recipientIDs, senderID, tenantID)
		recipients := strings.Join(recipientIDs, ", ")
		if len(recipientIDs) > 10 {
			recipients = fmt.Sprintf("%d users", len(recipientIDs))
		}
		appendHistory(st, history.CategorySystem,
			fmt.Sprintf("Sent notification to %s.", recipients), senderID, tenantID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Publish(ctx, EventNotificationSent, n)
	return &n, nil
}

// MarkRead records that the user has read the notification. Repeated calls
// are idempotent.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID, userID string) error {
	return s.store.Update(ctx, func(st *statestore.State) error {
		for i := range st.Notifications {
			n := &st.Notifications[i]
			if n.ID != notificationID {
				continue
			}
			if !n.ReadByUser(userID) {
				n.ReadBy = append(n.ReadBy, userID)
			}
			return nil
		}
		return fmt.Errorf("notification %s: %w", notificationID, domain.ErrNotFound)
	})
}

// ListFor returns the notifications addressed to the user, newest first.
func (s *NotificationService) ListFor(ctx context.Context, userID string) ([]notification.Notification, error) {
	var out []notification.Notification
	err := s.store.View(ctx, func(st *statestore.State) error {
		for _, n := range st.Notifications {
			if n.For(userID) {
				out = append(out, n)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

// Publish pushes an event to every broadcaster.
func (s *NotificationService) Publish(ctx context.Context, eventType string, payload any) {
	for _, b := range s.broadcasters {
		b.BroadcastEvent(ctx, eventType, payload)
	}
	slog.Debug("event broadcast", "type", eventType, "broadcasters", len(s.broadcasters))
}

// appendNotification adds a notification to the in-flight state transition.
func appendNotification(st *statestore.State, content string, recipientIDs []string, senderID, tenantID string) notification.Notification {
	n := notification.Notification{
		ID:           uuid.NewString(),
		Content:      content,
		RecipientIDs: recipientIDs,
		SenderID:     senderID,
		Timestamp:    time.Now(),
		ReadBy:       []string{},
		TenantID:     tenantID,
	}
	st.Notifications = append(st.Notifications, n)
	return n
}
