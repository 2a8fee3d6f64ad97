package models

import "time"

// Order statuses. Cancelled and rejected orders count toward the
// fingerprint's abuse history.
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
	OrderStatusRejected  = "rejected"
)

// AbuseHistoryStatuses are the order statuses counted by the orchestrator's
// historical-abuse check.
var AbuseHistoryStatuses = []string{OrderStatusCancelled, OrderStatusRejected}

// OrderItem is one line of an order.
type OrderItem struct {
	Name     string `json:"name"`
	Price    int    `json:"price"`
	Quantity int    `json:"quantity"`
}

// Order is an accepted store order. Phone is stored normalized (10 digits).
type Order struct {
	ID          string      `db:"id"`
	Name        string      `db:"name"`
	Phone       string      `db:"phone"`
	Room        string      `db:"room"`
	Fingerprint string      `db:"fingerprint"`
	Items       []OrderItem `db:"items"`
	Total       int         `db:"total"`
	Notes       string      `db:"notes"`
	Status      string      `db:"status"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}
