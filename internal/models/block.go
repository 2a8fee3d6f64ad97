package models

import "time"

// BlockKind tags the variant of a BlockState.
type BlockKind int

const (
	// BlockNone means neither ledger has an active block.
	BlockNone BlockKind = iota
	// BlockTimeBoxed is an AttemptRecord block with a fixed expiry.
	BlockTimeBoxed
	// BlockSticky is a DeviceSecurityRecord block that only an admin lifts.
	BlockSticky
)

// BlockState is the admission gate's combined view of both abuse ledgers for
// one device. The gate ORs the two checks; when both ledgers have tripped the
// time-boxed variant wins so the user-facing message stays consistent.
type BlockState struct {
	Kind  BlockKind
	Until time.Time // valid for BlockTimeBoxed
}

// Blocked reports whether any block is active.
func (b BlockState) Blocked() bool {
	return b.Kind != BlockNone
}

// Message returns the fixed user-facing rejection text. The wording never
// reveals counters or which ledger tripped.
func (b BlockState) Message() string {
	switch b.Kind {
	case BlockTimeBoxed:
		return "Your device has been temporarily blocked due to repeated invalid orders. Try again after 24 hours."
	case BlockSticky:
		return "Order access denied."
	default:
		return ""
	}
}
