package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bh1mart/bh1mart/internal/models"
	"github.com/bh1mart/bh1mart/pkg/fraud"
)

// FoodRequestStore is the persistence interface for food requests.
type FoodRequestStore interface {
	Create(ctx context.Context, fr *models.FoodRequest) (*models.FoodRequest, error)
	GetByID(ctx context.Context, id string) (*models.FoodRequest, error)
	List(ctx context.Context, limit, offset int) ([]*models.FoodRequest, error)
	UpdateStatus(ctx context.Context, id, status string) (*models.FoodRequest, error)
}

// SubmitFoodRequestInput is one stock-this-item request from a user.
type SubmitFoodRequestInput struct {
	Name        string
	Phone       string
	Room        string
	FoodItem    string
	Description string
	Fingerprint string
	IP          string
	UserAgent   string
}

// FoodRequestService handles user requests for items the store does not
// stock yet. Free-text fields go through the content filter; a match rejects
// the request with a generic message but, unlike order fraud signals, never
// feeds the abuse ledgers.
type FoodRequestService struct {
	requests FoodRequestStore
	gate     *AdmissionGate
	notifier Notifier
	logger   *slog.Logger
}

// NewFoodRequestService creates a new FoodRequestService
func NewFoodRequestService(requests FoodRequestStore, gate *AdmissionGate, notifier Notifier, logger *slog.Logger) *FoodRequestService {
	return &FoodRequestService{
		requests: requests,
		gate:     gate,
		notifier: notifier,
		logger:   logger,
	}
}

// Submit checks the admission gate and the content filter, then persists the
// request and notifies the operator.
func (s *FoodRequestService) Submit(ctx context.Context, in SubmitFoodRequestInput) (*SubmitResult, error) {
	fingerprint := in.Fingerprint
	if fingerprint == "" {
		fingerprint = FallbackFingerprint(in.IP, in.UserAgent)
	}

	if state := s.gate.Check(ctx, fingerprint); state.Blocked() {
		return &SubmitResult{
			Status:     SubmitBlocked,
			Message:    state.Message(),
			RetryAfter: state.Until,
		}, nil
	}

	if verdict := fraud.ValidateContent(in.FoodItem); !verdict.Valid {
		return &SubmitResult{Status: SubmitRejected, Severity: verdict.Severity, Message: verdict.Reason}, nil
	}
	if desc := strings.TrimSpace(in.Description); desc != "" {
		if verdict := fraud.ValidateContent(desc); !verdict.Valid {
			return &SubmitResult{Status: SubmitRejected, Severity: verdict.Severity, Message: verdict.Reason}, nil
		}
	}

	request, err := s.requests.Create(ctx, &models.FoodRequest{
		Name:        strings.TrimSpace(in.Name),
		Phone:       fraud.NormalizePhone(in.Phone),
		Room:        strings.ToUpper(strings.TrimSpace(in.Room)),
		FoodItem:    strings.TrimSpace(in.FoodItem),
		Description: strings.TrimSpace(in.Description),
		Fingerprint: fingerprint,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create food request: %w", err)
	}

	if s.notifier != nil {
		s.notifier.NotifyFoodRequest(ctx, request)
	}

	return &SubmitResult{Status: SubmitAccepted, Message: "Request submitted successfully"}, nil
}

// Get returns one request for the public tracking page.
func (s *FoodRequestService) Get(ctx context.Context, id string) (*models.FoodRequest, error) {
	return s.requests.GetByID(ctx, id)
}

// List returns recent requests for the admin panel.
func (s *FoodRequestService) List(ctx context.Context, limit, offset int) ([]*models.FoodRequest, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.requests.List(ctx, limit, offset)
}

// UpdateStatus moves a request through its lifecycle.
func (s *FoodRequestService) UpdateStatus(ctx context.Context, id, status string) (*models.FoodRequest, error) {
	switch status {
	case models.FoodRequestPending, models.FoodRequestApproved,
		models.FoodRequestStocked, models.FoodRequestDeclined:
	default:
		return nil, fmt.Errorf("%w: unknown request status %q", models.ErrBadRequest, status)
	}
	return s.requests.UpdateStatus(ctx, id, status)
}
