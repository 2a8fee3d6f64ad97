package models

import "time"

// Food request statuses.
const (
	FoodRequestPending  = "pending"
	FoodRequestApproved = "approved"
	FoodRequestStocked  = "stocked"
	FoodRequestDeclined = "declined"
)

// FoodRequest is a user's request to stock a new item. FoodItem and
// Description pass through the content filter before acceptance.
type FoodRequest struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Phone       string    `db:"phone"`
	Room        string    `db:"room"`
	FoodItem    string    `db:"food_item"`
	Description string    `db:"description"`
	Fingerprint string    `db:"fingerprint"`
	Status      string    `db:"status"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}
