package domain

import (
	"time"

	"github.com/google/uuid"
)

// ITNLogEntry is an audit record of one inbound notification delivery
// attempt, written best-effort regardless of whether the delivery passed
// verification. RawFields is the form body re-encoded as key=value lines.
type ITNLogEntry struct {
	ID               uuid.UUID `json:"id"`
	GatewayPaymentID string    `json:"gateway_payment_id"`
	PurchaseID       string    `json:"purchase_id"`
	Outcome          string    `json:"outcome"`
	SourceIP         string    `json:"source_ip"`
	RawFields        string    `json:"raw_fields"`
	CreatedAt        time.Time `json:"created_at"`
}
