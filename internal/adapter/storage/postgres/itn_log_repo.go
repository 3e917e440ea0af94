package postgres

import (
	"context"
	"fmt"

	"github.com/craigsandeman1/fitmom-payments/internal/core/domain"
)

// ITNLogRepo implements ports.ITNLogRepository.
type ITNLogRepo struct {
	pool Pool
}

// NewITNLogRepo creates a new ITNLogRepo.
func NewITNLogRepo(pool Pool) *ITNLogRepo {
	return &ITNLogRepo{pool: pool}
}

// Create appends a notification delivery record to the audit trail.
func (r *ITNLogRepo) Create(ctx context.Context, entry *domain.ITNLogEntry) error {
	query := `INSERT INTO itn_log (id, gateway_payment_id, purchase_id, outcome, source_ip, raw_fields, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		entry.ID, entry.GatewayPaymentID, entry.PurchaseID, entry.Outcome,
		entry.SourceIP, entry.RawFields, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert itn log entry: %w", err)
	}
	return nil
}
