// Package notification defines user-visible messages and their read state.
package notification

import "time"

// Notification is a message fanned out to a set of recipients within a
// tenant. ReadBy accumulates the recipients that have seen it.
type Notification struct {
	ID           string    `json:"id"`
	Content      string    `json:"content"`
	RecipientIDs []string  `json:"recipientIds"`
	SenderID     string    `json:"senderId"`
	Timestamp    time.Time `json:"timestamp"`
	ReadBy       []string  `json:"readBy"`
	TenantID     string    `json:"tenantId"`
}

// For reports whether the notification addresses the given user.
func (n *Notification) For(userID string) bool {
	for _, id := range n.RecipientIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// ReadByUser reports whether the given user has already read it.
func (n *Notification) ReadByUser(userID string) bool {
	for _, id := range n.ReadBy {
		if id == userID {
			return true
		}
	}
	return false
}
