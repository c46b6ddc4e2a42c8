package handlers

import (
	"net/http"
	"strconv"
	"time"

	"chainpay.backend/internal/domain/entities"
	domainerrors "chainpay.backend/internal/domain/errors"
	"chainpay.backend/internal/interfaces/http/response"
	"chainpay.backend/internal/usecases"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type WebhookHandler struct {
	dispatcher *usecases.WebhookDispatcher
}

func NewWebhookHandler(dispatcher *usecases.WebhookDispatcher) *WebhookHandler {
	return &WebhookHandler{dispatcher: dispatcher}
}

// ResendWebhook re-sends the last transition event for a payment
// POST /api/v1/payments/:id/webhooks/resend
func (h *WebhookHandler) ResendWebhook(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid payment ID"))
		return
	}

	if err := h.dispatcher.Resend(c.Request.Context(), id); err != nil {
		switch err {
		case domainerrors.ErrNotFound:
			response.Error(c, domainerrors.NotFound("payment not found"))
		case domainerrors.ErrNoTransitionToSend:
			response.Error(c, domainerrors.Conflict("payment has no transition to resend"))
		default:
			response.Error(c, err)
		}
		return
	}

	response.Success(c, http.StatusAccepted, gin.H{"resent": true})
}

// ListDeliveries returns the webhook delivery log
// GET /api/v1/webhooks/deliveries?paymentId=&succeeded=&from=&to=
func (h *WebhookHandler) ListDeliveries(c *gin.Context) {
	var filter entities.WebhookDeliveryFilter

	if raw := c.Query("paymentId"); raw != "" {
		paymentID, err := uuid.Parse(raw)
		if err != nil {
			response.Error(c, domainerrors.BadRequest("invalid payment ID"))
			return
		}
		filter.PaymentID = &paymentID
	}

	if raw := c.Query("succeeded"); raw != "" {
		succeeded, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, domainerrors.BadRequest("invalid succeeded flag"))
			return
		}
		filter.Succeeded = &succeeded
	}

	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Error(c, domainerrors.BadRequest("invalid from timestamp"))
			return
		}
		filter.From = &from
	}

	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Error(c, domainerrors.BadRequest("invalid to timestamp"))
			return
		}
		filter.To = &to
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	deliveries, total, err := h.dispatcher.Deliveries(c.Request.Context(), filter, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"deliveries": deliveries,
		"pagination": gin.H{
			"page":       page,
			"limit":      limit,
			"total":      total,
			"totalPages": (total + limit - 1) / limit,
		},
	})
}
