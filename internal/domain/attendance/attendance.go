// Package attendance defines the per-user, per-meal attendance mark.
package attendance

import (
	"time"

	"github.com/rmess/messd/internal/domain/meal"
)

// DateLayout is the calendar-day format used throughout the store.
const DateLayout = "2006-01-02"

// Mark records that a user attended a meal on a calendar day. The triple
// (UserID, Date, Meal) is the primary key: at most one mark may exist per
// triple, and presence means attended.
type Mark struct {
	UserID   string    `json:"userId"`
	TenantID string    `json:"tenantId"`
	Date     string    `json:"date"` // YYYY-MM-DD, tenant-local
	Meal     meal.Meal `json:"meal"`
	MarkedAt time.Time `json:"markedAt"`
}
