package handler

import (
	"errors"
	"net/http"

	"github.com/craigsandeman1/fitmom-payments/internal/core/domain"
	"github.com/craigsandeman1/fitmom-payments/internal/core/ports"
	"github.com/craigsandeman1/fitmom-payments/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// NotifyHandler handles the PayFast ITN callback. Unlike the rest of the
// API it speaks plain text: the gateway only looks at the HTTP status and
// retries anything that is not a 200.
type NotifyHandler struct {
	reconcileSvc ports.ReconcileService
	log          zerolog.Logger
}

// NewNotifyHandler creates a new NotifyHandler.
func NewNotifyHandler(reconcileSvc ports.ReconcileService, log zerolog.Logger) *NotifyHandler {
	return &NotifyHandler{reconcileSvc: reconcileSvc, log: log}
}

// Notify handles POST /api/v1/payfast/notify.
func (h *NotifyHandler) Notify(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		c.String(http.StatusBadRequest, "invalid notification")
		return
	}

	fields := make(map[string]string, len(c.Request.PostForm))
	for key, values := range c.Request.PostForm {
		if len(values) > 0 {
			fields[key] = values[0]
		}
	}

	n := &domain.Notification{
		Fields:   fields,
		SourceIP: c.ClientIP(),
	}

	result, err := h.reconcileSvc.Reconcile(c.Request.Context(), n)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			h.log.Warn().Err(err).Str("source_ip", n.SourceIP).Msg("itn rejected")
			c.String(appErr.HTTPStatus, appErr.Message)
			return
		}
		h.log.Error().Err(err).Msg("itn processing failed")
		c.String(http.StatusInternalServerError, "Internal server error")
		return
	}

	h.log.Info().
		Str("purchase_id", result.PurchaseID.String()).
		Str("outcome", string(result.Outcome)).
		Msg("itn acknowledged")

	c.String(http.StatusOK, "OK")
}
