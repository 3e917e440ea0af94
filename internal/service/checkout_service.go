package service

import (
	"context"
	"fmt"
	"time"

	"github.com/craigsandeman1/fitmom-payments/internal/core/domain"
	"github.com/craigsandeman1/fitmom-payments/internal/core/ports"
	"github.com/craigsandeman1/fitmom-payments/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// checkoutFieldOrder is the order the redirect form fields are rendered in.
// The checkout signature itself is computed over the lexical field order.
var checkoutFieldOrder = []string{
	"merchant_id",
	"merchant_key",
	"return_url",
	"cancel_url",
	"notify_url",
	"email_address",
	"m_payment_id",
	"amount",
	"item_name",
}

// CheckoutConfig holds the gateway settings needed to build redirect forms.
type CheckoutConfig struct {
	MerchantID  string
	MerchantKey string
	Passphrase  string
	ProcessURL  string
	ReturnURL   string
	CancelURL   string
	NotifyURL   string
}

// CheckoutServiceImpl implements ports.CheckoutService.
type CheckoutServiceImpl struct {
	purchaseRepo ports.PurchaseRepository
	sigSvc       ports.SignatureService
	cfg          CheckoutConfig
	log          zerolog.Logger
}

// NewCheckoutService creates a new CheckoutServiceImpl.
func NewCheckoutService(
	purchaseRepo ports.PurchaseRepository,
	sigSvc ports.SignatureService,
	cfg CheckoutConfig,
	log zerolog.Logger,
) *CheckoutServiceImpl {
	return &CheckoutServiceImpl{
		purchaseRepo: purchaseRepo,
		sigSvc:       sigSvc,
		cfg:          cfg,
		log:          log,
	}
}

// CreateCheckout records a pending purchase and returns the signed gateway
// redirect form. The purchase id travels to the gateway as m_payment_id and
// comes back on the ITN as the correlation id.
func (s *CheckoutServiceImpl) CreateCheckout(ctx context.Context, req ports.CheckoutRequest) (*ports.CheckoutRedirect, error) {
	if !req.Amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}

	now := time.Now().UTC()
	purchase := &domain.Purchase{
		ID:        uuid.New(),
		Email:     req.Email,
		Amount:    req.Amount,
		Status:    domain.PurchaseStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.ItemName != "" {
		purchase.MealPlan = &req.ItemName
	}

	if err := s.purchaseRepo.Create(ctx, purchase); err != nil {
		return nil, apperror.ErrStoreFailure(fmt.Errorf("create purchase: %w", err))
	}

	params := map[string]string{
		"merchant_id":   s.cfg.MerchantID,
		"merchant_key":  s.cfg.MerchantKey,
		"return_url":    s.cfg.ReturnURL,
		"cancel_url":    s.cfg.CancelURL,
		"notify_url":    s.cfg.NotifyURL,
		"email_address": req.Email,
		"m_payment_id":  purchase.ID.String(),
		"amount":        req.Amount.StringFixed(2),
		"item_name":     req.ItemName,
	}
	signature := s.sigSvc.SignCheckout(params, s.cfg.Passphrase)

	fields := make([]ports.FormField, 0, len(checkoutFieldOrder)+1)
	for _, name := range checkoutFieldOrder {
		if params[name] == "" {
			continue
		}
		fields = append(fields, ports.FormField{Name: name, Value: params[name]})
	}
	fields = append(fields, ports.FormField{Name: domain.FieldSignature, Value: signature})

	s.log.Info().
		Str("purchase_id", purchase.ID.String()).
		Str("amount", req.Amount.StringFixed(2)).
		Msg("checkout created")

	return &ports.CheckoutRedirect{
		PurchaseID: purchase.ID,
		ProcessURL: s.cfg.ProcessURL,
		Fields:     fields,
	}, nil
}

// GetStatus returns the purchase for client status polling.
func (s *CheckoutServiceImpl) GetStatus(ctx context.Context, id uuid.UUID) (*domain.Purchase, error) {
	purchase, err := s.purchaseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrStoreFailure(fmt.Errorf("fetch purchase %s: %w", id, err))
	}
	if purchase == nil {
		return nil, apperror.ErrNotFound("Purchase")
	}
	return purchase, nil
}

// ListPurchases returns a filtered page of purchases for the admin area.
func (s *CheckoutServiceImpl) ListPurchases(ctx context.Context, params ports.PurchaseListParams) ([]domain.Purchase, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = 20
	}

	purchases, total, err := s.purchaseRepo.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.ErrStoreFailure(fmt.Errorf("list purchases: %w", err))
	}
	return purchases, total, nil
}
