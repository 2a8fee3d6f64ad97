package services

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/bh1mart/bh1mart/internal/models"
	"github.com/bh1mart/bh1mart/pkg/fraud"
)

var roomPattern = regexp.MustCompile(`^[A-Za-z]-\d{3}$`)

// OrderHistory exposes the slice of past-order data the validator needs.
type OrderHistory interface {
	CountByFingerprintAndStatus(ctx context.Context, fingerprint string, statuses []string) (int, error)
}

// ValidationInput carries the user-supplied order fields through validation.
type ValidationInput struct {
	Name        string
	Phone       string
	Room        string
	Fingerprint string
}

// ValidationResult is the orchestrator's verdict plus the normalized phone,
// which is what downstream persistence uses whether or not the submission
// passed.
type ValidationResult struct {
	fraud.Verdict
	NormalizedPhone string
}

// OrderValidator runs the full pre-admission check sequence over an order
// submission. Checks run in a fixed order and the first failure wins, so a
// submission never accumulates more than one verdict.
type OrderValidator struct {
	history      OrderHistory
	maxCancelled int
	logger       *slog.Logger
}

// NewOrderValidator creates a new OrderValidator
func NewOrderValidator(history OrderHistory, maxCancelled int, logger *slog.Logger) *OrderValidator {
	return &OrderValidator{
		history:      history,
		maxCancelled: maxCancelled,
		logger:       logger,
	}
}

// Validate runs, in order: phone, name, name junk-text, room format, room
// junk-text, then the device's cancelled/rejected order history. The history
// check is skipped when the fingerprint is empty, and fails open when the
// count query errors.
func (v *OrderValidator) Validate(ctx context.Context, in ValidationInput) ValidationResult {
	phone := fraud.ValidatePhone(in.Phone)
	if !phone.Valid {
		return ValidationResult{Verdict: phone.Verdict, NormalizedPhone: phone.Normalized}
	}

	result := ValidationResult{NormalizedPhone: phone.Normalized}

	if name := fraud.ValidateName(in.Name); !name.Valid {
		result.Verdict = name
		return result
	}
	if fraud.IsJunkText(in.Name) {
		result.Verdict = fraud.Verdict{Severity: fraud.SeverityHard, Reason: "Name contains junk or test data"}
		return result
	}

	room := strings.TrimSpace(in.Room)
	if !roomPattern.MatchString(room) {
		result.Verdict = fraud.Verdict{
			Severity: fraud.SeveritySoft,
			Reason:   "Room must be in a format like A-201 (block letter, dash, 3 digits)",
		}
		return result
	}
	if fraud.IsJunkText(room) {
		result.Verdict = fraud.Verdict{Severity: fraud.SeverityHard, Reason: "Room contains junk or test data"}
		return result
	}

	if in.Fingerprint != "" {
		count, err := v.history.CountByFingerprintAndStatus(ctx, in.Fingerprint, models.AbuseHistoryStatuses)
		if err != nil {
			v.logger.Error("order history check failed, failing open",
				slog.String("fingerprint", in.Fingerprint),
				slog.Any("error", err))
		} else if count > v.maxCancelled {
			result.Verdict = fraud.Verdict{Severity: fraud.SeverityHard, Reason: "Too many cancelled orders from this device"}
			return result
		}
	}

	result.Verdict = fraud.Verdict{Valid: true, Severity: fraud.SeverityNone}
	return result
}
