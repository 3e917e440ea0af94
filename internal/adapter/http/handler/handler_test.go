package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/craigsandeman1/fitmom-payments/internal/adapter/http/dto"
	"github.com/craigsandeman1/fitmom-payments/internal/core/domain"
	"github.com/craigsandeman1/fitmom-payments/internal/core/ports"
	"github.com/craigsandeman1/fitmom-payments/internal/core/ports/mocks"
	"github.com/craigsandeman1/fitmom-payments/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// --- Notify Handler Tests ---

func postForm(h *NotifyHandler, form url.Values) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/payfast/notify",
		strings.NewReader(form.Encode()))
	c.Request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	h.Notify(c)
	return w
}

func TestNotify_Acknowledged(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReconcile := mocks.NewMockReconcileService(ctrl)
	h := NewNotifyHandler(mockReconcile, zerolog.Nop())

	purchaseID := uuid.New()
	var received *domain.Notification
	mockReconcile.EXPECT().Reconcile(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, n *domain.Notification) (*ports.ReconcileResult, error) {
			received = n
			return &ports.ReconcileResult{
				PurchaseID:       purchaseID,
				GatewayPaymentID: "1089250",
				Status:           domain.PurchaseStatusCompleted,
				Outcome:          ports.OutcomeApplied,
			}, nil
		})

	form := url.Values{}
	form.Set("m_payment_id", purchaseID.String())
	form.Set("pf_payment_id", "1089250")
	form.Set("payment_status", "COMPLETE")
	form.Set("merchant_id", "10000100")
	form.Set("signature", "abc123")

	w := postForm(h, form)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
	require.NotNil(t, received)
	assert.Equal(t, "1089250", received.Fields["pf_payment_id"])
	assert.Equal(t, "COMPLETE", received.Fields["payment_status"])
}

func TestNotify_RejectionsAreVaguePlainText(t *testing.T) {
	cases := []struct {
		name       string
		err        *apperror.AppError
		wantStatus int
		wantBody   string
	}{
		{"invalid signature", apperror.ErrInvalidSignature(assert.AnError), http.StatusBadRequest, "invalid notification"},
		{"malformed", apperror.ErrMalformedNotification(assert.AnError), http.StatusBadRequest, "invalid notification"},
		{"merchant mismatch", apperror.ErrMerchantMismatch(assert.AnError), http.StatusBadRequest, "invalid notification"},
		{"untrusted origin", apperror.ErrUntrustedOrigin(assert.AnError), http.StatusForbidden, "forbidden"},
		{"unknown purchase", apperror.ErrUnknownPurchase(assert.AnError), http.StatusBadRequest, "invalid notification"},
		{"store failure", apperror.ErrStoreFailure(assert.AnError), http.StatusInternalServerError, "Internal database error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockReconcile := mocks.NewMockReconcileService(ctrl)
			mockReconcile.EXPECT().Reconcile(gomock.Any(), gomock.Any()).Return(nil, tc.err)
			h := NewNotifyHandler(mockReconcile, zerolog.Nop())

			form := url.Values{}
			form.Set("pf_payment_id", "1089250")

			w := postForm(h, form)
			assert.Equal(t, tc.wantStatus, w.Code)
			assert.Equal(t, tc.wantBody, w.Body.String())
		})
	}
}

// --- Payment Handler Tests ---

func TestCreateCheckout_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCheckout := mocks.NewMockCheckoutService(ctrl)
	h := NewPaymentHandler(mockCheckout)

	purchaseID := uuid.New()
	mockCheckout.EXPECT().CreateCheckout(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req ports.CheckoutRequest) (*ports.CheckoutRedirect, error) {
			assert.Equal(t, "buyer@example.com", req.Email)
			assert.True(t, req.Amount.Equal(decimal.RequireFromString("450.00")))
			return &ports.CheckoutRedirect{
				PurchaseID: purchaseID,
				ProcessURL: "https://sandbox.payfast.co.za/eng/process",
				Fields: []ports.FormField{
					{Name: "merchant_id", Value: "10000100"},
					{Name: "signature", Value: "abc"},
				},
			}, nil
		})

	body, _ := json.Marshal(dto.CheckoutRequest{
		Email:    "buyer@example.com",
		ItemName: "12 Week Meal Plan",
		Amount:   "450.00",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/payments", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.CreateCheckout(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, purchaseID.String(), data["purchase_id"])
	assert.Equal(t, "https://sandbox.payfast.co.za/eng/process", data["process_url"])
}

func TestCreateCheckout_ValidationError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCheckout := mocks.NewMockCheckoutService(ctrl)
	h := NewPaymentHandler(mockCheckout)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/payments", bytes.NewReader([]byte(`{"email":"bad"}`)))
	c.Request.Header.Set("Content-Type", "application/json")

	h.CreateCheckout(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetStatus_BareJSONShape(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCheckout := mocks.NewMockCheckoutService(ctrl)
	h := NewPaymentHandler(mockCheckout)

	id := uuid.New()
	plan := "12 Week Meal Plan"
	now := time.Now().UTC().Truncate(time.Second)
	mockCheckout.EXPECT().GetStatus(gomock.Any(), id).Return(&domain.Purchase{
		ID:        id,
		Email:     "buyer@example.com",
		MealPlan:  &plan,
		Amount:    decimal.RequireFromString("450.00"),
		Status:    domain.PurchaseStatusCompleted,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/payments/status?id="+id.String(), nil)

	h.GetStatus(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	// Bare object, no envelope.
	assert.NotContains(t, resp, "data")
	assert.Equal(t, id.String(), resp["id"])
	assert.Equal(t, "completed", resp["status"])
	assert.Equal(t, "450.00", resp["amount"])
	assert.Equal(t, plan, resp["mealPlan"])
	assert.Contains(t, resp, "createdAt")
	assert.Contains(t, resp, "updatedAt")
}

func TestGetStatus_MissingID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewPaymentHandler(mocks.NewMockCheckoutService(ctrl))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/payments/status", nil)

	h.GetStatus(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetStatus_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCheckout := mocks.NewMockCheckoutService(ctrl)
	h := NewPaymentHandler(mockCheckout)

	id := uuid.New()
	mockCheckout.EXPECT().GetStatus(gomock.Any(), id).Return(nil, apperror.ErrNotFound("Purchase"))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/payments/status?id="+id.String(), nil)

	h.GetStatus(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// --- Auth Handler Tests ---

func TestLogin_ReturnsToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	expires := time.Now().Add(time.Hour)
	mockAuth.EXPECT().Login(gomock.Any(), "chloe@fitmomchloe.com", "secret").
		Return(&ports.LoginResult{Token: "jwt-token", ExpiresAt: expires}, nil)

	body, _ := json.Marshal(dto.LoginRequest{Email: "chloe@fitmomchloe.com", Password: "secret"})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Login(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "jwt-token", data["token"])
	assert.Equal(t, float64(expires.Unix()), data["expiry"])
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	mockAuth.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, apperror.ErrInvalidCredentials())

	body, _ := json.Marshal(dto.LoginRequest{Email: "chloe@fitmomchloe.com", Password: "wrong"})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Login(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// --- Admin Handler Tests ---

func TestListPurchases_Paginates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCheckout := mocks.NewMockCheckoutService(ctrl)
	h := NewAdminHandler(mockCheckout)

	status := domain.PurchaseStatusCompleted
	mockCheckout.EXPECT().ListPurchases(gomock.Any(), ports.PurchaseListParams{
		Status: &status, Page: 2, PageSize: 10,
	}).Return([]domain.Purchase{
		{ID: uuid.New(), Email: "buyer@example.com", Amount: decimal.RequireFromString("450.00"), Status: status},
	}, int64(11), nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/admin/purchases?status=completed&page=2&page_size=10", nil)

	h.ListPurchases(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(11), data["total"])
	assert.Equal(t, float64(2), data["total_pages"])
	assert.Len(t, data["items"], 1)
}

// --- Health Handler Tests ---

type fakeChecker struct {
	name string
	err  error
}

func (f fakeChecker) Ping(_ context.Context) error { return f.err }
func (f fakeChecker) Name() string                 { return f.name }

func TestHealthCheck_AllHealthy(t *testing.T) {
	r := gin.New()
	r.GET("/health", HealthCheck(fakeChecker{name: "postgresql"}, fakeChecker{name: "redis"}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
}

func TestHealthCheck_Degraded(t *testing.T) {
	r := gin.New()
	r.GET("/health", HealthCheck(
		fakeChecker{name: "postgresql"},
		fakeChecker{name: "redis", err: assert.AnError},
	))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp["status"])
}
