package handler

import (
	"strconv"
	"time"

	"github.com/craigsandeman1/fitmom-payments/internal/adapter/http/dto"
	"github.com/craigsandeman1/fitmom-payments/internal/core/domain"
	"github.com/craigsandeman1/fitmom-payments/internal/core/ports"
	"github.com/craigsandeman1/fitmom-payments/pkg/response"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves the admin purchase listing.
type AdminHandler struct {
	checkoutSvc ports.CheckoutService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(checkoutSvc ports.CheckoutService) *AdminHandler {
	return &AdminHandler{checkoutSvc: checkoutSvc}
}

// ListPurchases handles GET /api/v1/admin/purchases.
// Query params: status, email, page, page_size.
func (h *AdminHandler) ListPurchases(c *gin.Context) {
	params := ports.PurchaseListParams{
		Email: c.Query("email"),
	}
	if raw := c.Query("status"); raw != "" {
		status := domain.PurchaseStatus(raw)
		params.Status = &status
	}
	params.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	params.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = 20
	}

	purchases, total, err := h.checkoutSvc.ListPurchases(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.PurchaseResponse, 0, len(purchases))
	for _, p := range purchases {
		items = append(items, dto.PurchaseResponse{
			ID:               p.ID.String(),
			Email:            p.Email,
			MealPlan:         p.MealPlan,
			Amount:           p.Amount.StringFixed(2),
			Status:           string(p.Status),
			PaymentReference: p.PaymentReference,
			CreatedAt:        p.CreatedAt.Format(time.RFC3339),
			UpdatedAt:        p.UpdatedAt.Format(time.RFC3339),
		})
	}

	totalPages := int((total + int64(params.PageSize) - 1) / int64(params.PageSize))
	response.OK(c, dto.PurchaseListResponse{
		Items:      items,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages,
	})
}
