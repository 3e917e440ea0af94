package integration

import (
	"context"
	"sync"

	"github.com/craigsandeman1/fitmom-payments/internal/core/domain"
	"github.com/craigsandeman1/fitmom-payments/internal/core/ports"

	"github.com/google/uuid"
)

// --- In-Memory Purchase Repo ---

type inMemoryPurchaseRepo struct {
	mu        sync.Mutex
	purchases map[uuid.UUID]*domain.Purchase
}

func newInMemoryPurchaseRepo() *inMemoryPurchaseRepo {
	return &inMemoryPurchaseRepo{purchases: make(map[uuid.UUID]*domain.Purchase)}
}

func (r *inMemoryPurchaseRepo) Create(ctx context.Context, p *domain.Purchase) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.purchases[p.ID] = &cp
	return nil
}

func (r *inMemoryPurchaseRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Purchase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.purchases[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

// CompletePending mirrors the conditional UPDATE of the SQL implementation:
// the status check and the write happen under one lock, so concurrent
// callers observe at most one applied transition.
func (r *inMemoryPurchaseRepo) CompletePending(ctx context.Context, id uuid.UUID, status domain.PurchaseStatus, paymentRef string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.purchases[id]
	if !ok || p.Status != domain.PurchaseStatusPending {
		return false, nil
	}
	p.Status = status
	p.PaymentReference = paymentRef
	return true, nil
}

func (r *inMemoryPurchaseRepo) List(ctx context.Context, params ports.PurchaseListParams) ([]domain.Purchase, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Purchase
	for _, p := range r.purchases {
		if params.Status != nil && p.Status != *params.Status {
			continue
		}
		if params.Email != "" && p.Email != params.Email {
			continue
		}
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

// --- In-Memory ITN Log Repo ---

type inMemoryITNLogRepo struct {
	mu      sync.Mutex
	entries []*domain.ITNLogEntry
}

func newInMemoryITNLogRepo() *inMemoryITNLogRepo {
	return &inMemoryITNLogRepo{}
}

func (r *inMemoryITNLogRepo) Create(ctx context.Context, entry *domain.ITNLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *inMemoryITNLogRepo) outcomes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Outcome
	}
	return out
}

// --- In-Memory User Repo & Role Lookup ---

type inMemoryUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newInMemoryUserRepo() *inMemoryUserRepo {
	return &inMemoryUserRepo{users: make(map[string]*domain.User)}
}

func (r *inMemoryUserRepo) add(u *domain.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.Email] = u
}

func (r *inMemoryUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return nil, nil
	}
	return u, nil
}

type inMemoryRoleLookup struct {
	mu     sync.Mutex
	admins map[uuid.UUID]bool
}

func newInMemoryRoleLookup() *inMemoryRoleLookup {
	return &inMemoryRoleLookup{admins: make(map[uuid.UUID]bool)}
}

func (r *inMemoryRoleLookup) grantAdmin(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.admins[id] = true
}

func (r *inMemoryRoleLookup) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.admins[userID], nil
}

// --- Recording Sender ---

type sentMail struct {
	To      []string
	Subject string
	Body    string
}

type recordingSender struct {
	mu   sync.Mutex
	sent []sentMail
}

func (s *recordingSender) Send(ctx context.Context, to []string, subject string, htmlBody string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentMail{To: to, Subject: subject, Body: htmlBody})
	return nil
}

func (s *recordingSender) all() []sentMail {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]sentMail, len(s.sent))
	copy(out, s.sent)
	return out
}

func (s *recordingSender) countSubject(subject string) int {
	n := 0
	for _, m := range s.all() {
		if m.Subject == subject {
			n++
		}
	}
	return n
}
