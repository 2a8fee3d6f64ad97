package models

import "time"

// Order log statuses.
const (
	OrderLogValid   = "valid"
	OrderLogInvalid = "invalid"
	OrderLogBlocked = "blocked"
)

// OrderLog is an append-only audit record of a submission outcome. The engine
// only ever writes these; operators read them through the admin panel.
type OrderLog struct {
	ID          string    `db:"id"`
	Fingerprint string    `db:"fingerprint"`
	Phone       string    `db:"phone"`
	IP          string    `db:"ip"`
	Status      string    `db:"status"`
	Reason      string    `db:"reason"`
	CreatedAt   time.Time `db:"created_at"`
}
