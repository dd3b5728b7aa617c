// Package tenant defines the tenant (mess) domain model for multi-tenancy.
package tenant

import "github.com/rmess/messd/internal/domain/meal"

// Window is a half-open [Start, End) wall-clock hour range, hours 0-23.
// A window with Start >= End never opens; that configuration is accepted
// as-is rather than silently corrected.
type Window struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains reports whether the given hour falls inside the window.
func (w Window) Contains(hour int) bool {
	return hour >= w.Start && hour < w.End
}

// Settings holds per-tenant configuration. MealTimes is keyed by meal.
type Settings struct {
	MealTimes map[meal.Meal]Window `json:"mealTimes"`
}

// DefaultSettings returns a fresh copy of the system default schedule:
// breakfast 07-10, dinner 19-22. Each call allocates a new map so tenants
// never share settings by reference.
func DefaultSettings() *Settings {
	return &Settings{
		MealTimes: map[meal.Meal]Window{
			meal.Breakfast: {Start: 7, End: 10},
			meal.Dinner:    {Start: 19, End: 22},
		},
	}
}

// Tenant represents an isolated mess organization. Every core entity is
// partitioned by tenant; absence of Settings means attendance is closed.
type Tenant struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	OwnerID  string    `json:"ownerId"`
	Settings *Settings `json:"settings,omitempty"`
}
