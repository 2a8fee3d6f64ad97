// Package fraud contains the pure heuristics used to spot fake order
// submissions: phone and name plausibility scoring, junk-text detection and
// the content filter for free-text fields. Everything in this package is
// synchronous, side-effect free and safe to share between the API server and
// any front-end build, so there is exactly one implementation of each check.
package fraud

import "time"

// Severity classifies a failed check.
//
// Soft failures are input-format problems the user can fix; they are surfaced
// verbatim and never counted against a device. Hard failures are fraud
// signals; callers surface only a generic message and penalize the device.
type Severity string

const (
	SeverityNone Severity = "none"
	SeveritySoft Severity = "soft"
	SeverityHard Severity = "hard"
)

// Abuse thresholds shared by the server-side ledgers and the client-side
// mirror. Both sides must agree on these or the mirror drifts.
const (
	MaxFailedAttempts = 2
	BlockDuration     = 24 * time.Hour
)

// Verdict is the result of a validation check. Validators never return
// errors; a malformed input is just an invalid verdict.
type Verdict struct {
	Valid    bool
	Severity Severity
	Reason   string
}

// PhoneVerdict extends Verdict with the normalized 10-digit number, which is
// what gets persisted and logged regardless of how the user typed it.
type PhoneVerdict struct {
	Verdict
	Normalized string
}

func valid() Verdict {
	return Verdict{Valid: true, Severity: SeverityNone}
}

func soft(reason string) Verdict {
	return Verdict{Valid: false, Severity: SeveritySoft, Reason: reason}
}

func hard(reason string) Verdict {
	return Verdict{Valid: false, Severity: SeverityHard, Reason: reason}
}
