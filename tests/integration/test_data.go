package integration

import (
	"context"
	"sync"

	"github.com/bh1mart/bh1mart/internal/models"
)

// CapturingNotifier records operator notifications instead of sending email.
type CapturingNotifier struct {
	mu       sync.Mutex
	Orders   []*models.Order
	Requests []*models.FoodRequest
}

func (n *CapturingNotifier) NotifyOrder(ctx context.Context, order *models.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Orders = append(n.Orders, order)
}

func (n *CapturingNotifier) NotifyFoodRequest(ctx context.Context, request *models.FoodRequest) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Requests = append(n.Requests, request)
}

// OrderPayload builds a clean order submission body for the given fingerprint.
func OrderPayload(fingerprint string) map[string]any {
	return map[string]any{
		"name":        "Rahul Sharma",
		"phone":       "9812345670",
		"room":        "A-201",
		"fingerprint": fingerprint,
		"items": []map[string]any{
			{"name": "Maggi", "price": 30, "quantity": 2},
			{"name": "Kurkure", "price": 35, "quantity": 1},
		},
	}
}

// FraudulentOrderPayload is OrderPayload with a known-fake phone number, which
// counts as a hard validation failure.
func FraudulentOrderPayload(fingerprint string) map[string]any {
	payload := OrderPayload(fingerprint)
	payload["phone"] = "9999999999"
	return payload
}
