package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/craigsandeman1/fitmom-payments/internal/core/domain"
	"github.com/craigsandeman1/fitmom-payments/internal/core/ports"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPurchase() *domain.Purchase {
	plan := "12 Week Meal Plan"
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Purchase{
		ID:        uuid.New(),
		Email:     "buyer@example.com",
		MealPlan:  &plan,
		Amount:    decimal.RequireFromString("450.00"),
		Status:    domain.PurchaseStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func purchaseColumns() []string {
	return []string{"id", "email", "meal_plan", "amount", "status", "payment_reference", "created_at", "updated_at"}
}

func purchaseRow(p *domain.Purchase) *pgxmock.Rows {
	return pgxmock.NewRows(purchaseColumns()).AddRow(
		p.ID, p.Email, p.MealPlan, p.Amount, p.Status,
		p.PaymentReference, p.CreatedAt, p.UpdatedAt,
	)
}

func TestPurchaseRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPurchaseRepo(mock)
	p := newTestPurchase()

	mock.ExpectExec("INSERT INTO purchases").
		WithArgs(p.ID, p.Email, p.MealPlan, p.Amount, p.Status,
			p.PaymentReference, p.CreatedAt, p.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Create(context.Background(), p)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurchaseRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPurchaseRepo(mock)
	p := newTestPurchase()

	mock.ExpectQuery("SELECT .+ FROM purchases WHERE id").
		WithArgs(p.ID).
		WillReturnRows(purchaseRow(p))

	got, err := repo.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, p.ID, got.ID)
	assert.True(t, p.Amount.Equal(got.Amount))
	assert.Equal(t, domain.PurchaseStatusPending, got.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurchaseRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPurchaseRepo(mock)
	id := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM purchases WHERE id").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(purchaseColumns()))

	got, err := repo.GetByID(context.Background(), id)
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurchaseRepo_CompletePending_Applied(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPurchaseRepo(mock)
	id := uuid.New()

	mock.ExpectExec("UPDATE purchases SET status").
		WithArgs(domain.PurchaseStatusCompleted, "1089250", pgxmock.AnyArg(), id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	applied, err := repo.CompletePending(context.Background(), id, domain.PurchaseStatusCompleted, "1089250")
	require.NoError(t, err)
	assert.True(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurchaseRepo_CompletePending_AlreadyTerminal(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPurchaseRepo(mock)
	id := uuid.New()

	// No row matches when the purchase already left pending.
	mock.ExpectExec("UPDATE purchases SET status").
		WithArgs(domain.PurchaseStatusCompleted, "1089250", pgxmock.AnyArg(), id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	applied, err := repo.CompletePending(context.Background(), id, domain.PurchaseStatusCompleted, "1089250")
	require.NoError(t, err)
	assert.False(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurchaseRepo_CompletePending_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPurchaseRepo(mock)
	id := uuid.New()

	mock.ExpectExec("UPDATE purchases SET status").
		WithArgs(domain.PurchaseStatusCompleted, "1089250", pgxmock.AnyArg(), id).
		WillReturnError(errors.New("connection reset"))

	_, err = repo.CompletePending(context.Background(), id, domain.PurchaseStatusCompleted, "1089250")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurchaseRepo_List_WithStatusFilter(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPurchaseRepo(mock)
	p := newTestPurchase()
	p.Status = domain.PurchaseStatusCompleted
	status := domain.PurchaseStatusCompleted

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM purchases WHERE status").
		WithArgs(status).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery("SELECT .+ FROM purchases WHERE status .+ ORDER BY created_at DESC").
		WithArgs(status, 20, 0).
		WillReturnRows(purchaseRow(p))

	purchases, total, err := repo.List(context.Background(), ports.PurchaseListParams{
		Status: &status, Page: 1, PageSize: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, purchases, 1)
	assert.Equal(t, p.ID, purchases[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
