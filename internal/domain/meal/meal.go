// Package meal defines the meal identifiers shared across attendance,
// billing and tenant settings.
package meal

// Meal identifies one of the two daily meals.
type Meal string

const (
	Breakfast Meal = "Breakfast"
	Dinner    Meal = "Dinner"
)

// Valid is the set of all meal identifiers.
var Valid = map[Meal]bool{
	Breakfast: true,
	Dinner:    true,
}

// All lists the meals in serving order.
func All() []Meal {
	return []Meal{Breakfast, Dinner}
}
