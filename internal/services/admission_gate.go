package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/bh1mart/bh1mart/internal/models"
)

// AdmissionGate combines both abuse ledgers into one pre-validation check.
// Either ledger alone is enough to turn a submission away; when both have
// tripped, the time-boxed result is returned so the user sees the message
// with a retry window.
type AdmissionGate struct {
	abuse   *AbuseService
	devices *DeviceSecurityService
}

// NewAdmissionGate creates a new AdmissionGate
func NewAdmissionGate(abuse *AbuseService, devices *DeviceSecurityService) *AdmissionGate {
	return &AdmissionGate{abuse: abuse, devices: devices}
}

// Check consults both ledgers for the device. An empty fingerprint passes;
// anonymous submissions are admitted rather than punished for a client that
// could not fingerprint itself.
func (g *AdmissionGate) Check(ctx context.Context, fingerprint string) models.BlockState {
	if fingerprint == "" {
		return models.BlockState{}
	}

	if state := g.abuse.CheckBlock(ctx, fingerprint); state.Blocked() {
		return state
	}
	return g.devices.CheckBlock(ctx, fingerprint)
}

// FallbackFingerprint derives a stable device identifier from the client IP
// and User-Agent for requests that arrive without a browser fingerprint.
// Truncated to 32 hex chars to match the client-side format.
func FallbackFingerprint(ip, userAgent string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%s", ip, userAgent)))
	return hex.EncodeToString(sum[:])[:32]
}
