package models

import "time"

// DeviceSecurityRecord is the sticky abuse ledger row for one device
// fingerprint. Unlike AttemptRecord blocks, IsBlocked never expires on its
// own; only an explicit admin unblock clears it. Both ledgers are consulted
// independently at the admission gate.
type DeviceSecurityRecord struct {
	Fingerprint     string    `db:"fingerprint"`
	InvalidAttempts int       `db:"invalid_attempts"`
	IsBlocked       bool      `db:"is_blocked"`
	BlockedReason   string    `db:"blocked_reason"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}
