// Package history defines the append-only audit record written by every
// state-mutating operation.
package history

import "time"

// Category classifies an audit entry.
type Category string

const (
	CategoryUserManagement       Category = "User Management"
	CategoryMenuManagement       Category = "Menu Management"
	CategoryAttendanceManagement Category = "Attendance Management"
	CategoryFinancialAdmin       Category = "Financial Admin"
	CategorySystem               Category = "System"
	CategoryTenantManagement     Category = "Tenant Management"
)

// TenantSystem is the tenant tag for entries that are not scoped to any
// tenant, such as registration workflow events.
const TenantSystem = "system"

// ActorSystem is the actor tag for entries produced by the system itself.
const ActorSystem = "system"

// Entry is one audit record. Entries are never edited or deleted.
type Entry struct {
	ID          string    `json:"id"`
	Type        Category  `json:"type"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
	ActorID     string    `json:"actorId"`
	TenantID    string    `json:"tenantId"` // tenant id or "system"
}
