package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/skip2/go-qrcode"

	"github.com/bh1mart/bh1mart/internal/models"
	"github.com/bh1mart/bh1mart/pkg/fraud"
	pkglogger "github.com/bh1mart/bh1mart/pkg/logger"
)

// GenericRejectMessage is the only thing a hard validation failure reveals to
// the user. Specific fraud reasons stay in the audit trail.
const GenericRejectMessage = "Invalid order information. Please check your details and try again."

// SubmitStatus is the outcome class of one order submission.
type SubmitStatus string

const (
	SubmitAccepted SubmitStatus = "accepted"
	SubmitBlocked  SubmitStatus = "blocked"
	SubmitRejected SubmitStatus = "rejected"
)

// SubmitOrderInput is one order submission as received from the client.
type SubmitOrderInput struct {
	Name        string
	Phone       string
	Room        string
	Fingerprint string
	Items       []models.OrderItem
	Notes       string
	IP          string
	UserAgent   string
}

// SubmitResult is what the handler turns into an HTTP response. Message is
// user-facing; blocked and hard-rejected submissions never expose internals
// through it.
type SubmitResult struct {
	Status       SubmitStatus
	Order        *models.Order
	WhatsAppLink string
	Message      string
	Severity     fraud.Severity
	RetryAfter   time.Time
}

// OrderStore is the persistence interface the order service needs beyond
// what the validator already consumes.
type OrderStore interface {
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	GetByID(ctx context.Context, id string) (*models.Order, error)
	List(ctx context.Context, limit, offset int) ([]*models.Order, error)
	UpdateStatus(ctx context.Context, id, status string) (*models.Order, error)
}

// AuditTrail appends submission outcomes to the order log.
type AuditTrail interface {
	Create(ctx context.Context, log *models.OrderLog) error
}

// Notifier delivers operator notifications. Implementations must not block
// submission on delivery failure.
type Notifier interface {
	NotifyOrder(ctx context.Context, order *models.Order)
	NotifyFoodRequest(ctx context.Context, request *models.FoodRequest)
}

// OrderService owns the order submission pipeline: admission gate, fraud
// validation, ledger side effects, persistence and notification.
type OrderService struct {
	orders         OrderStore
	logs           AuditTrail
	gate           *AdmissionGate
	validator      *OrderValidator
	abuse          *AbuseService
	devices        *DeviceSecurityService
	notifier       Notifier
	whatsappNumber string
	logger         *slog.Logger
	audit          *pkglogger.AuditLogger
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orders OrderStore,
	logs AuditTrail,
	gate *AdmissionGate,
	validator *OrderValidator,
	abuse *AbuseService,
	devices *DeviceSecurityService,
	notifier Notifier,
	whatsappNumber string,
	logger *slog.Logger,
	audit *pkglogger.AuditLogger,
) *OrderService {
	return &OrderService{
		orders:         orders,
		logs:           logs,
		gate:           gate,
		validator:      validator,
		abuse:          abuse,
		devices:        devices,
		notifier:       notifier,
		whatsappNumber: whatsappNumber,
		logger:         logger,
		audit:          audit,
	}
}

// SubmitOrder runs the full admission pipeline for one submission.
//
// Side-effect policy: a blocked device gets a log entry and nothing else; a
// soft failure gets a log entry and its reason surfaced verbatim; a hard
// failure increments BOTH ledgers and surfaces only the generic message; an
// accepted order resets the time-boxed ledger, persists the order and logs a
// valid entry.
func (s *OrderService) SubmitOrder(ctx context.Context, in SubmitOrderInput) (*SubmitResult, error) {
	fingerprint := in.Fingerprint
	if fingerprint == "" {
		fingerprint = FallbackFingerprint(in.IP, in.UserAgent)
	}

	if state := s.gate.Check(ctx, fingerprint); state.Blocked() {
		s.appendLog(ctx, fingerprint, in.Phone, in.IP, models.OrderLogBlocked, "device blocked")
		return &SubmitResult{
			Status:     SubmitBlocked,
			Message:    state.Message(),
			RetryAfter: state.Until,
		}, nil
	}

	verdict := s.validator.Validate(ctx, ValidationInput{
		Name:        in.Name,
		Phone:       in.Phone,
		Room:        in.Room,
		Fingerprint: fingerprint,
	})

	if !verdict.Valid {
		s.appendLog(ctx, fingerprint, verdict.NormalizedPhone, in.IP, models.OrderLogInvalid, verdict.Reason)

		result := &SubmitResult{Status: SubmitRejected, Severity: verdict.Severity}
		switch verdict.Severity {
		case fraud.SeverityHard:
			s.abuse.RecordFailedAttempt(ctx, fingerprint)
			s.devices.RecordInvalidAttempt(ctx, fingerprint)
			result.Message = GenericRejectMessage
		default:
			result.Message = verdict.Reason
		}
		return result, nil
	}

	s.abuse.ResetAttempts(ctx, fingerprint)

	order, err := s.orders.Create(ctx, &models.Order{
		Name:        strings.TrimSpace(in.Name),
		Phone:       verdict.NormalizedPhone,
		Room:        strings.ToUpper(strings.TrimSpace(in.Room)),
		Fingerprint: fingerprint,
		Items:       in.Items,
		Total:       orderTotal(in.Items),
		Notes:       in.Notes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.appendLog(ctx, fingerprint, order.Phone, in.IP, models.OrderLogValid, "order accepted")

	if s.notifier != nil {
		s.notifier.NotifyOrder(ctx, order)
	}

	return &SubmitResult{
		Status:       SubmitAccepted,
		Order:        order,
		WhatsAppLink: s.WhatsAppLink(order),
		Message:      "Order placed successfully",
	}, nil
}

// GetOrder returns one order by id.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	return s.orders.GetByID(ctx, id)
}

// ListOrders returns recent orders for the admin panel.
func (s *OrderService) ListOrders(ctx context.Context, limit, offset int) ([]*models.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.orders.List(ctx, limit, offset)
}

// UpdateStatus moves an order through its lifecycle. Rejects unknown
// statuses before touching the store.
func (s *OrderService) UpdateStatus(ctx context.Context, id, status string) (*models.Order, error) {
	switch status {
	case models.OrderStatusPending, models.OrderStatusConfirmed, models.OrderStatusDelivered,
		models.OrderStatusCancelled, models.OrderStatusRejected:
	default:
		return nil, fmt.Errorf("%w: unknown order status %q", models.ErrBadRequest, status)
	}
	return s.orders.UpdateStatus(ctx, id, status)
}

// WhatsAppLink builds the wa.me deep link that pre-fills the order message
// for the store's WhatsApp number.
func (s *OrderService) WhatsAppLink(order *models.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New order from %s (Room %s)\n", order.Name, order.Room)
	for _, item := range order.Items {
		fmt.Fprintf(&b, "- %dx %s (₹%d)\n", item.Quantity, item.Name, item.Price*item.Quantity)
	}
	fmt.Fprintf(&b, "Total: ₹%d", order.Total)
	if order.Notes != "" {
		fmt.Fprintf(&b, "\nNotes: %s", order.Notes)
	}
	return fmt.Sprintf("https://wa.me/%s?text=%s", s.whatsappNumber, url.QueryEscape(b.String()))
}

// OrderQR renders the order's WhatsApp link as a PNG for the confirmation
// screen.
func (s *OrderService) OrderQR(ctx context.Context, id string) ([]byte, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	png, err := qrcode.Encode(s.WhatsAppLink(order), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr code: %w", err)
	}
	return png, nil
}

func (s *OrderService) appendLog(ctx context.Context, fingerprint, phone, ip, status, reason string) {
	s.audit.LogSubmission(fingerprint, phone, ip, status, reason)

	err := s.logs.Create(ctx, &models.OrderLog{
		Fingerprint: fingerprint,
		Phone:       phone,
		IP:          ip,
		Status:      status,
		Reason:      reason,
	})
	if err != nil {
		s.logger.Error("failed to append order log",
			slog.String("fingerprint", fingerprint),
			slog.String("status", status),
			slog.Any("error", err))
	}
}

func orderTotal(items []models.OrderItem) int {
	total := 0
	for _, item := range items {
		total += item.Price * item.Quantity
	}
	return total
}
