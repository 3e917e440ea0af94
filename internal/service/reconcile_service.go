package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/craigsandeman1/fitmom-payments/internal/core/domain"
	"github.com/craigsandeman1/fitmom-payments/internal/core/ports"
	"github.com/craigsandeman1/fitmom-payments/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const reconcileCacheTTL = 24 * time.Hour

// requiredITNFields must be present and non-empty before any further
// processing of an inbound notification.
var requiredITNFields = []string{
	domain.FieldGatewayPaymentID,
	domain.FieldPaymentStatus,
	domain.FieldMerchantID,
	domain.FieldSignature,
	domain.FieldPaymentID,
}

// ReconcileConfig holds the gateway identity and delivery settings the
// reconciler needs, read from process configuration at startup.
type ReconcileConfig struct {
	MerchantID         string
	Passphrase         string
	TrustedIPs         []string
	SkipOriginCheck    bool
	OperatorRecipients []string
}

// ReconcileServiceImpl implements ports.ReconcileService.
type ReconcileServiceImpl struct {
	purchaseRepo ports.PurchaseRepository
	itnLogRepo   ports.ITNLogRepository // nil = audit trail disabled
	cache        ports.NotificationCache
	sender       ports.NotificationSender
	sigSvc       ports.SignatureService
	cfg          ReconcileConfig
	trusted      map[string]struct{}
	log          zerolog.Logger
}

// NewReconcileService creates a new ReconcileServiceImpl.
func NewReconcileService(
	purchaseRepo ports.PurchaseRepository,
	itnLogRepo ports.ITNLogRepository,
	cache ports.NotificationCache,
	sender ports.NotificationSender,
	sigSvc ports.SignatureService,
	cfg ReconcileConfig,
	log zerolog.Logger,
) *ReconcileServiceImpl {
	trusted := make(map[string]struct{}, len(cfg.TrustedIPs))
	for _, ip := range cfg.TrustedIPs {
		trusted[strings.TrimSpace(ip)] = struct{}{}
	}
	return &ReconcileServiceImpl{
		purchaseRepo: purchaseRepo,
		itnLogRepo:   itnLogRepo,
		cache:        cache,
		sender:       sender,
		sigSvc:       sigSvc,
		cfg:          cfg,
		trusted:      trusted,
		log:          log,
	}
}

// Reconcile authenticates an inbound notification and applies the purchase
// transition at most once. Authentication failures return an error before
// any state is touched; once the conditional write has committed, downstream
// notification failures are logged and swallowed.
func (s *ReconcileServiceImpl) Reconcile(ctx context.Context, n *domain.Notification) (*ports.ReconcileResult, error) {
	gatewayID := n.Get(domain.FieldGatewayPaymentID)

	// Step 1: origin allow-list
	if !s.cfg.SkipOriginCheck {
		if _, ok := s.trusted[n.SourceIP]; !ok {
			s.audit(ctx, n, "untrusted_origin")
			return nil, apperror.ErrUntrustedOrigin(fmt.Errorf("source %s not in gateway allow-list", n.SourceIP))
		}
	}

	// Step 2: structural check
	var missing []string
	for _, f := range requiredITNFields {
		if strings.TrimSpace(n.Get(f)) == "" {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		s.audit(ctx, n, "malformed")
		return nil, apperror.ErrMalformedNotification(fmt.Errorf("missing fields: %s", strings.Join(missing, ", ")))
	}

	// Step 3: signature check. Must precede any state mutation. The
	// received/expected pair is for the log only, never for the response.
	if !s.sigSvc.VerifyNotification(n.Fields, n.Signature(), s.cfg.Passphrase) {
		expected := s.sigSvc.SignNotification(n.Fields, s.cfg.Passphrase)
		s.log.Warn().
			Str("gateway_payment_id", gatewayID).
			Str("received_signature", n.Signature()).
			Str("expected_signature", expected).
			Msg("itn signature verification failed")
		s.audit(ctx, n, "invalid_signature")
		return nil, apperror.ErrInvalidSignature(fmt.Errorf("signature mismatch for pf_payment_id %s", gatewayID))
	}

	// Step 4: merchant identity
	if n.Get(domain.FieldMerchantID) != s.cfg.MerchantID {
		s.audit(ctx, n, "merchant_mismatch")
		return nil, apperror.ErrMerchantMismatch(
			fmt.Errorf("merchant %s does not match configured merchant", n.Get(domain.FieldMerchantID)))
	}

	// Replay fast path: only consulted after authentication, so a forged
	// notification can never be answered from the cache.
	if cached := s.cachedResult(ctx, gatewayID); cached != nil {
		s.log.Debug().Str("gateway_payment_id", gatewayID).Msg("itn replay answered from cache")
		return cached, nil
	}

	// Step 5: purchase lookup
	purchaseID, err := uuid.Parse(n.Get(domain.FieldPaymentID))
	if err != nil {
		s.audit(ctx, n, "malformed")
		return nil, apperror.ErrMalformedNotification(fmt.Errorf("m_payment_id is not a valid purchase id: %w", err))
	}

	purchase, err := s.purchaseRepo.GetByID(ctx, purchaseID)
	if err != nil {
		return nil, apperror.ErrStoreFailure(fmt.Errorf("fetch purchase %s: %w", purchaseID, err))
	}
	if purchase == nil {
		s.audit(ctx, n, "unknown_purchase")
		return nil, apperror.ErrUnknownPurchase(fmt.Errorf("no purchase for id %s", purchaseID))
	}

	result := &ports.ReconcileResult{
		PurchaseID:       purchaseID,
		GatewayPaymentID: gatewayID,
	}

	// Step 6: status mapping. Unrecognized values are a soft success so the
	// gateway still gets its acknowledgment and stops redelivering.
	target, ok := domain.MapGatewayStatus(n.Get(domain.FieldPaymentStatus))
	if !ok {
		s.log.Warn().
			Str("purchase_id", purchaseID.String()).
			Str("payment_status", n.Get(domain.FieldPaymentStatus)).
			Msg("unrecognized gateway payment status, no transition applied")
		s.audit(ctx, n, "unknown_status")
		result.Status = purchase.Status
		result.Outcome = ports.OutcomeUnknownStatus
		return result, nil
	}
	result.Status = target

	// Step 7: idempotent transition
	switch {
	case purchase.Status == target:
		// Redelivery of an already-applied outcome.
		s.audit(ctx, n, "replay")
		result.Outcome = ports.OutcomeReplay
		return result, nil

	case purchase.IsTerminal():
		// Terminal in a different state than delivered: consistency
		// conflict, logged but acknowledged so the gateway stops retrying.
		s.log.Error().
			Str("purchase_id", purchaseID.String()).
			Str("current_status", string(purchase.Status)).
			Str("delivered_status", string(target)).
			Msg("itn delivered a terminal status conflicting with the stored one")
		s.audit(ctx, n, "conflict")
		result.Status = purchase.Status
		result.Outcome = ports.OutcomeConflict
		return result, nil
	}

	applied, err := s.purchaseRepo.CompletePending(ctx, purchaseID, target, gatewayID)
	if err != nil {
		return nil, apperror.ErrStoreFailure(fmt.Errorf("transition purchase %s to %s: %w", purchaseID, target, err))
	}
	if !applied {
		// A concurrent delivery won the conditional write.
		s.log.Info().
			Str("purchase_id", purchaseID.String()).
			Msg("concurrent itn delivery already applied the transition")
		s.audit(ctx, n, "replay")
		result.Outcome = ports.OutcomeReplay
		return result, nil
	}

	s.log.Info().
		Str("purchase_id", purchaseID.String()).
		Str("gateway_payment_id", gatewayID).
		Str("status", string(target)).
		Msg("purchase transition applied")
	s.audit(ctx, n, "applied")
	result.Outcome = ports.OutcomeApplied

	// Step 8: side effects, only for the delivery that performed the
	// completed transition. The financial state is already durable, so
	// delivery failures never propagate.
	if target == domain.PurchaseStatusCompleted {
		purchase.Status = target
		purchase.PaymentReference = gatewayID
		s.sendConfirmations(ctx, purchase)
	}

	s.cacheResult(ctx, gatewayID, result)

	return result, nil
}

// sendConfirmations dispatches the buyer confirmation and the operator
// notice. Failures are logged and swallowed.
func (s *ReconcileServiceImpl) sendConfirmations(ctx context.Context, p *domain.Purchase) {
	if body, err := buyerConfirmationBody(p); err != nil {
		s.log.Error().Err(err).Str("purchase_id", p.ID.String()).Msg("buyer confirmation render failed")
	} else if err := s.sender.Send(ctx, []string{p.Email}, "Your meal plan purchase is confirmed", body); err != nil {
		s.log.Error().Err(err).Str("purchase_id", p.ID.String()).Msg("buyer confirmation delivery failed")
	}

	if len(s.cfg.OperatorRecipients) == 0 {
		return
	}
	if body, err := operatorNoticeBody(p); err != nil {
		s.log.Error().Err(err).Str("purchase_id", p.ID.String()).Msg("operator notice render failed")
	} else if err := s.sender.Send(ctx, s.cfg.OperatorRecipients, "New meal plan purchase", body); err != nil {
		s.log.Error().Err(err).Str("purchase_id", p.ID.String()).Msg("operator notice delivery failed")
	}
}

// cachedResult returns a previously reconciled result for the gateway
// payment id, marked as a replay. Best-effort: cache errors degrade to the
// database path.
func (s *ReconcileServiceImpl) cachedResult(ctx context.Context, gatewayID string) *ports.ReconcileResult {
	if s.cache == nil || gatewayID == "" {
		return nil
	}
	raw, err := s.cache.Get(ctx, gatewayID)
	if err != nil {
		s.log.Warn().Err(err).Str("gateway_payment_id", gatewayID).Msg("itn cache read failed, falling through to store")
		return nil
	}
	if raw == nil {
		return nil
	}
	var result ports.ReconcileResult
	if err := json.Unmarshal(raw, &result); err != nil {
		s.log.Warn().Err(err).Str("gateway_payment_id", gatewayID).Msg("itn cache entry corrupt, ignoring")
		return nil
	}
	result.Outcome = ports.OutcomeReplay
	return &result
}

func (s *ReconcileServiceImpl) cacheResult(ctx context.Context, gatewayID string, result *ports.ReconcileResult) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, gatewayID, raw, reconcileCacheTTL); err != nil {
		s.log.Warn().Err(err).Str("gateway_payment_id", gatewayID).Msg("itn cache write failed")
	}
}

// audit records the delivery attempt best-effort.
func (s *ReconcileServiceImpl) audit(ctx context.Context, n *domain.Notification, outcome string) {
	if s.itnLogRepo == nil {
		return
	}
	entry := &domain.ITNLogEntry{
		ID:               uuid.New(),
		GatewayPaymentID: n.Get(domain.FieldGatewayPaymentID),
		PurchaseID:       n.Get(domain.FieldPaymentID),
		Outcome:          outcome,
		SourceIP:         n.SourceIP,
		RawFields:        flattenFields(n.Fields),
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.itnLogRepo.Create(ctx, entry); err != nil {
		s.log.Warn().Err(err).Str("outcome", outcome).Msg("itn audit write failed")
	}
}

// flattenFields renders the field map as sorted key=value lines for the
// audit trail.
func flattenFields(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(fields[k])
		b.WriteByte('\n')
	}
	return b.String()
}
