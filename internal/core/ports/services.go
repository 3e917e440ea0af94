package ports

import (
	"context"
	"time"

	"github.com/craigsandeman1/fitmom-payments/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SignatureService produces and verifies PayFast parameter signatures.
//
// The gateway defines per-direction field ordering: outbound checkout forms
// sign fields in lexical order, inbound ITN verification signs them in the
// gateway's fixed protocol field order. The two encodings must never be
// mixed, so each direction gets its own method.
type SignatureService interface {
	// SignCheckout signs an outbound parameter set in lexical field order.
	SignCheckout(params map[string]string, passphrase string) string
	// SignNotification signs an inbound parameter set in the gateway's
	// fixed ITN field order, excluding the signature field itself.
	SignNotification(params map[string]string, passphrase string) string
	// VerifyNotification recomputes the ITN signature and compares it
	// against the declared one in constant time.
	VerifyNotification(params map[string]string, declared string, passphrase string) bool
}

// ReconcileOutcome describes how a verified notification was applied.
type ReconcileOutcome string

const (
	// OutcomeApplied: this delivery performed the pending -> terminal transition.
	OutcomeApplied ReconcileOutcome = "applied"
	// OutcomeReplay: the purchase was already in the delivered terminal state.
	OutcomeReplay ReconcileOutcome = "replay"
	// OutcomeConflict: the purchase is terminal in a different state than delivered.
	OutcomeConflict ReconcileOutcome = "conflict"
	// OutcomeUnknownStatus: unrecognized gateway status, no transition applied.
	OutcomeUnknownStatus ReconcileOutcome = "unknown_status"
)

// ReconcileResult is returned for every notification that passed
// authentication and lookup.
type ReconcileResult struct {
	PurchaseID       uuid.UUID
	GatewayPaymentID string
	Status           domain.PurchaseStatus
	Outcome          ReconcileOutcome
}

// ReconcileService authenticates inbound payment notifications and drives
// the purchase lifecycle transition exactly once per terminal outcome.
type ReconcileService interface {
	Reconcile(ctx context.Context, n *domain.Notification) (*ReconcileResult, error)
}

// CheckoutRequest is the input for creating a checkout.
type CheckoutRequest struct {
	Email    string
	ItemName string
	Amount   decimal.Decimal
}

// FormField is one ordered name/value pair of the gateway redirect form.
type FormField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// CheckoutRedirect holds everything the client needs to POST the buyer to
// the gateway: the process URL and the signed, ordered field set.
type CheckoutRedirect struct {
	PurchaseID uuid.UUID   `json:"purchase_id"`
	ProcessURL string      `json:"process_url"`
	Fields     []FormField `json:"fields"`
}

// CheckoutService creates pending purchases and answers status queries.
type CheckoutService interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutRedirect, error)
	GetStatus(ctx context.Context, id uuid.UUID) (*domain.Purchase, error)
	ListPurchases(ctx context.Context, params PurchaseListParams) ([]domain.Purchase, int64, error)
}

// NotificationSender dispatches an HTML notification to one or more recipients.
type NotificationSender interface {
	Send(ctx context.Context, to []string, subject string, htmlBody string) error
}

// NotificationCache is the Redis fast path for already-reconciled gateway
// payment ids. Best-effort only: the conditional store write remains the
// durable at-most-once guard.
type NotificationCache interface {
	Get(ctx context.Context, gatewayPaymentID string) ([]byte, error) // nil when absent
	Set(ctx context.Context, gatewayPaymentID string, value []byte, ttl time.Duration) error
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations for admin sessions.
type TokenService interface {
	Generate(userID uuid.UUID, email string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	UserID uuid.UUID
	Email  string
}

// LoginResult is returned on successful admin login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
}

// AuthService authenticates admin users.
type AuthService interface {
	Login(ctx context.Context, email string, password string) (*LoginResult, error)
}
