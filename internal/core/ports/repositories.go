package ports

import (
	"context"

	"github.com/craigsandeman1/fitmom-payments/internal/core/domain"

	"github.com/google/uuid"
)

// PurchaseRepository defines persistence operations for purchases.
type PurchaseRepository interface {
	Create(ctx context.Context, purchase *domain.Purchase) error
	// GetByID returns nil, nil when no purchase exists for the id.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Purchase, error)
	// CompletePending applies a terminal status to a purchase only if it is
	// still pending. The write is conditional: exactly one of any number of
	// concurrent callers observes applied=true for a given purchase.
	CompletePending(ctx context.Context, id uuid.UUID, status domain.PurchaseStatus, paymentRef string) (applied bool, err error)
	List(ctx context.Context, params PurchaseListParams) ([]domain.Purchase, int64, error)
}

// PurchaseListParams holds filter + pagination for listing purchases.
type PurchaseListParams struct {
	Status   *domain.PurchaseStatus
	Email    string
	Page     int
	PageSize int
}

// ITNLogRepository persists the audit trail of inbound notification attempts.
type ITNLogRepository interface {
	Create(ctx context.Context, entry *domain.ITNLogEntry) error
}

// UserRepository defines persistence operations for admin-capable users.
type UserRepository interface {
	// GetByEmail returns nil, nil when no user exists for the email.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// RoleLookup resolves whether an identity holds the admin role.
type RoleLookup interface {
	IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
}
