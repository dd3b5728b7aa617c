// Package menu defines the per-day, per-tenant menu.
package menu

import "github.com/rmess/messd/internal/domain/meal"

// Menu holds the dishes for one calendar day within a tenant. The JSON keys
// for the dishes match the meal identifiers so the persisted document stays
// compatible with the historical layout.
type Menu struct {
	Date      string `json:"date"` // YYYY-MM-DD
	TenantID  string `json:"tenantId"`
	Breakfast string `json:"Breakfast,omitempty"`
	Dinner    string `json:"Dinner,omitempty"`
}

// Dish returns the dish set for the given meal, or "" when unset.
func (m *Menu) Dish(which meal.Meal) string {
	if which == meal.Breakfast {
		return m.Breakfast
	}
	return m.Dinner
}

// SetDish records the dish for the given meal.
func (m *Menu) SetDish(which meal.Meal, dish string) {
	if which == meal.Breakfast {
		m.Breakfast = dish
		return
	}
	m.Dinner = dish
}
