package models

import "time"

// AttemptRecord is the time-boxed abuse ledger row for one device. Created on
// the first failed attempt, incremented on each hard validation failure, and
// reset on any accepted submission. When FailedAttempts crosses the threshold
// BlockedUntil is set to now + block window; the block is lifted lazily the
// next time the record is read after expiry.
type AttemptRecord struct {
	DeviceID       string     `db:"device_id"`
	FailedAttempts int        `db:"failed_attempts"`
	BlockedUntil   *time.Time `db:"blocked_until"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

// Blocked reports whether the record carries an active block at t.
func (a *AttemptRecord) Blocked(t time.Time) bool {
	return a.BlockedUntil != nil && t.Before(*a.BlockedUntil)
}
