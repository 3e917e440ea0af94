package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/craigsandeman1/fitmom-payments/internal/core/domain"
	"github.com/craigsandeman1/fitmom-payments/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PurchaseRepo implements ports.PurchaseRepository.
type PurchaseRepo struct {
	pool Pool
}

// NewPurchaseRepo creates a new PurchaseRepo.
func NewPurchaseRepo(pool Pool) *PurchaseRepo {
	return &PurchaseRepo{pool: pool}
}

// Create inserts a new purchase.
func (r *PurchaseRepo) Create(ctx context.Context, p *domain.Purchase) error {
	query := `INSERT INTO purchases (id, email, meal_plan, amount, status, payment_reference, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.Email, p.MealPlan, p.Amount, p.Status, p.PaymentReference,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert purchase: %w", err)
	}
	return nil
}

// GetByID fetches a purchase by UUID. Returns nil, nil when absent.
func (r *PurchaseRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Purchase, error) {
	query := `SELECT id, email, meal_plan, amount, status, payment_reference, created_at, updated_at
		FROM purchases WHERE id = $1`

	return r.scanPurchase(r.pool.QueryRow(ctx, query, id))
}

// CompletePending conditionally moves a pending purchase to a terminal
// status. The WHERE clause on the current status makes the transition
// at-most-once: concurrent deliveries race on the row and exactly one
// observes applied = true.
func (r *PurchaseRepo) CompletePending(ctx context.Context, id uuid.UUID, status domain.PurchaseStatus, paymentRef string) (bool, error) {
	query := `UPDATE purchases SET status = $1, payment_reference = $2, updated_at = $3
		WHERE id = $4 AND status = 'pending'`

	tag, err := r.pool.Exec(ctx, query, status, paymentRef, time.Now().UTC(), id)
	if err != nil {
		return false, fmt.Errorf("transition purchase: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// List fetches purchases with filtering and pagination.
func (r *PurchaseRepo) List(ctx context.Context, params ports.PurchaseListParams) ([]domain.Purchase, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	if params.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *params.Status)
		argIdx++
	}
	if params.Email != "" {
		conditions = append(conditions, fmt.Sprintf("email = $%d", argIdx))
		args = append(args, params.Email)
		argIdx++
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM purchases %s", where)
	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count purchases: %w", err)
	}

	offset := (params.Page - 1) * params.PageSize
	dataQuery := fmt.Sprintf(`SELECT id, email, meal_plan, amount, status, payment_reference, created_at, updated_at
		FROM purchases %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	var purchases []domain.Purchase
	for rows.Next() {
		p := domain.Purchase{}
		err := rows.Scan(
			&p.ID, &p.Email, &p.MealPlan, &p.Amount, &p.Status,
			&p.PaymentReference, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan purchase row: %w", err)
		}
		purchases = append(purchases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate purchase rows: %w", err)
	}
	return purchases, total, nil
}

// scanPurchase is a helper to scan a single row into a Purchase.
func (r *PurchaseRepo) scanPurchase(row pgx.Row) (*domain.Purchase, error) {
	p := &domain.Purchase{}
	err := row.Scan(
		&p.ID, &p.Email, &p.MealPlan, &p.Amount, &p.Status,
		&p.PaymentReference, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan purchase: %w", err)
	}
	return p, nil
}
