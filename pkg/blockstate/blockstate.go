// Package blockstate is the client-side mirror of the server's time-boxed
// abuse ledger. A front-end embeds it (wasm or via codegen) to short-circuit
// submissions from an already-blocked device without a network round trip and
// to drive the "you are blocked" countdown.
//
// The mirror is best-effort only: it tracks locally observed hard failures
// with the same thresholds as the server, but the server ledgers stay
// authoritative. Clearing local storage clears the mirror and nothing else.
package blockstate

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/bh1mart/bh1mart/pkg/fraud"
)

// Store is the local persistence the host environment provides
// (localStorage, a state file, an in-memory map). Any call may fail; the
// tracker treats every store failure as "not blocked" so a broken store never
// locks a user out or crashes the flow.
type Store interface {
	Load() ([]byte, error)
	Save(data []byte) error
	Clear() error
}

// State is the mirror's view of the local device.
type State struct {
	Blocked      bool
	Attempts     int
	BlockedUntil *time.Time
}

type record struct {
	Attempts     int        `json:"attempts"`
	BlockedUntil *time.Time `json:"blockedUntil,omitempty"`
	BlockedAt    *time.Time `json:"blockedAt,omitempty"`
}

// Tracker applies the shared abuse thresholds to a local store.
type Tracker struct {
	store Store
	now   func() time.Time
}

// NewTracker creates a Tracker over the given store.
func NewTracker(store Store) *Tracker {
	return &Tracker{store: store, now: time.Now}
}

// Check returns the current local block state. An expired block is cleared as
// a side effect, mirroring the server's lazy expiry-on-read.
func (t *Tracker) Check() State {
	data, err := t.store.Load()
	if err != nil || len(data) == 0 {
		return State{}
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return State{}
	}

	if rec.BlockedUntil != nil {
		if !t.now().Before(*rec.BlockedUntil) {
			// Block expired, clear it.
			_ = t.store.Clear()
			return State{}
		}
		return State{Blocked: true, Attempts: rec.Attempts, BlockedUntil: rec.BlockedUntil}
	}

	return State{Attempts: rec.Attempts}
}

// RecordFailure counts one locally observed hard validation failure. Callers
// must only invoke this for hard (fraud-signal) verdicts; soft format errors
// never count toward a block, matching the server policy. Once the attempt
// count reaches the shared threshold the device is blocked for the shared
// window. Recording while already blocked is a no-op.
func (t *Tracker) RecordFailure() {
	current := t.Check()
	if current.Blocked {
		return
	}

	rec := record{Attempts: current.Attempts + 1}
	if rec.Attempts >= fraud.MaxFailedAttempts {
		now := t.now()
		until := now.Add(fraud.BlockDuration)
		rec.BlockedUntil = &until
		rec.BlockedAt = &now
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return
	}
	_ = t.store.Save(data)
}

// Reset clears the mirror. Called after a submission the server accepted.
func (t *Tracker) Reset() {
	_ = t.store.Clear()
}

// TimeRemaining formats the time left on a block for the interstitial,
// e.g. "3h 12m" or "45m". Returns "expired" for past deadlines.
func (t *Tracker) TimeRemaining(blockedUntil time.Time) string {
	diff := blockedUntil.Sub(t.now())
	if diff <= 0 {
		return "expired"
	}

	hours := int(diff / time.Hour)
	minutes := int(diff % time.Hour / time.Minute)
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
