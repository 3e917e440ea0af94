package handler

import (
	"net/http"
	"time"

	"github.com/craigsandeman1/fitmom-payments/internal/adapter/http/dto"
	"github.com/craigsandeman1/fitmom-payments/internal/core/ports"
	"github.com/craigsandeman1/fitmom-payments/pkg/apperror"
	"github.com/craigsandeman1/fitmom-payments/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentHandler handles checkout creation and status polling.
type PaymentHandler struct {
	checkoutSvc ports.CheckoutService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(checkoutSvc ports.CheckoutService) *PaymentHandler {
	return &PaymentHandler{checkoutSvc: checkoutSvc}
}

// CreateCheckout handles POST /api/v1/payments.
func (h *PaymentHandler) CreateCheckout(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		response.Error(c, apperror.ErrInvalidAmount())
		return
	}

	redirect, err := h.checkoutSvc.CreateCheckout(c.Request.Context(), ports.CheckoutRequest{
		Email:    req.Email,
		ItemName: req.ItemName,
		Amount:   amount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	fields := make([]dto.FormField, 0, len(redirect.Fields))
	for _, f := range redirect.Fields {
		fields = append(fields, dto.FormField{Name: f.Name, Value: f.Value})
	}

	response.Created(c, dto.CheckoutResponse{
		PurchaseID: redirect.PurchaseID.String(),
		ProcessURL: redirect.ProcessURL,
		Fields:     fields,
	})
}

// GetStatus handles GET /api/v1/payments/status?id=<uuid>. The storefront
// polls this directly, so the payload is a bare object without the response
// envelope.
func (h *PaymentHandler) GetStatus(c *gin.Context) {
	raw := c.Query("id")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required"})
		return
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a valid uuid"})
		return
	}

	purchase, err := h.checkoutSvc.GetStatus(c.Request.Context(), id)
	if err != nil {
		if appErr, ok := err.(*apperror.AppError); ok {
			c.JSON(appErr.HTTPStatus, gin.H{"error": appErr.Message})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, dto.PurchaseStatusResponse{
		ID:        purchase.ID.String(),
		Status:    string(purchase.Status),
		Amount:    purchase.Amount.StringFixed(2),
		CreatedAt: purchase.CreatedAt.Format(time.RFC3339),
		UpdatedAt: purchase.UpdatedAt.Format(time.RFC3339),
		MealPlan:  purchase.MealPlan,
	})
}
