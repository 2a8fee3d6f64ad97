package logger

import (
	"context"
	"log/slog"
	"time"
)

// AuditLogger emits the structured security trail: submission outcomes,
// ledger transitions and operator actions. Phone numbers are masked before
// they reach the log stream.
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{
		logger: logger,
	}
}

// LogSubmission records one order/food-request submission outcome.
func (al *AuditLogger) LogSubmission(fingerprint, phone, ip, status, reason string) {
	attrs := []slog.Attr{
		slog.String("audit_type", "submission"),
		slog.String("fingerprint", fingerprint),
		slog.String("phone", SanitizedPhone(phone)),
		slog.String("status", status),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}
	if ip != "" {
		attrs = append(attrs, slog.String("ip_address", ip))
	}
	if reason != "" {
		attrs = append(attrs, slog.String("reason", reason))
	}

	level := slog.LevelInfo
	if status != "valid" {
		level = slog.LevelWarn
	}
	al.logger.LogAttrs(context.Background(), level, "audit", attrs...)
}

// LogDeviceBlocked records a ledger crossing its threshold.
func (al *AuditLogger) LogDeviceBlocked(fingerprint, ledger string) {
	al.logger.LogAttrs(context.Background(), slog.LevelWarn, "audit",
		slog.String("audit_type", "device_block"),
		slog.String("fingerprint", fingerprint),
		slog.String("ledger", ledger),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	)
}

// LogDeviceUnblocked records an operator lifting a sticky block.
func (al *AuditLogger) LogDeviceUnblocked(fingerprint, adminEmail string) {
	al.logger.LogAttrs(context.Background(), slog.LevelInfo, "audit",
		slog.String("audit_type", "device_unblock"),
		slog.String("fingerprint", fingerprint),
		slog.String("admin", SanitizedEmail(adminEmail)),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	)
}

// LogAdminLogin records an operator login attempt.
func (al *AuditLogger) LogAdminLogin(email, ip string, success bool) {
	attrs := []slog.Attr{
		slog.String("audit_type", "admin_login"),
		slog.String("email", SanitizedEmail(email)),
		slog.Bool("success", success),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}
	if ip != "" {
		attrs = append(attrs, slog.String("ip_address", ip))
	}

	if success {
		al.logger.LogAttrs(context.Background(), slog.LevelInfo, "audit", attrs...)
	} else {
		al.logger.LogAttrs(context.Background(), slog.LevelWarn, "audit", attrs...)
	}
}
