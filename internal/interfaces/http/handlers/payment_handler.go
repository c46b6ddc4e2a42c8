package handlers

import (
	"net/http"
	"strconv"

	domainerrors "chainpay.backend/internal/domain/errors"
	"chainpay.backend/internal/interfaces/http/middleware"
	"chainpay.backend/internal/interfaces/http/response"
	"chainpay.backend/internal/usecases"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentHandler struct {
	payments   *usecases.PaymentUsecase
	reconciler *usecases.ReconcilerUsecase
}

func NewPaymentHandler(payments *usecases.PaymentUsecase, reconciler *usecases.ReconcilerUsecase) *PaymentHandler {
	return &PaymentHandler{
		payments:   payments,
		reconciler: reconciler,
	}
}

type CreatePaymentRequest struct {
	FaceAmountUSD string `json:"faceAmountUsd" binding:"required"`
	Description   string `json:"description"`
}

// CreatePayment creates a new payment request
// POST /api/v1/payments
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	merchantID, exists := middleware.GetMerchantID(c)
	if !exists {
		response.Error(c, domainerrors.Unauthorized("unauthorized"))
		return
	}

	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	faceAmount, err := decimal.NewFromString(req.FaceAmountUSD)
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid face amount"))
		return
	}

	payment, err := h.payments.CreatePayment(c.Request.Context(), merchantID, faceAmount, req.Description)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, payment)
}

// GetPayment gets a payment request by ID
// GET /api/v1/payments/:id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid payment ID"))
		return
	}

	payment, err := h.payments.GetPayment(c.Request.Context(), id)
	if err != nil {
		if err == domainerrors.ErrNotFound {
			response.Error(c, domainerrors.NotFound("payment not found"))
			return
		}
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, payment)
}

// ListPayments lists payment requests for the authenticated merchant
// GET /api/v1/payments
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	merchantID, exists := middleware.GetMerchantID(c)
	if !exists {
		response.Error(c, domainerrors.Unauthorized("unauthorized"))
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	offset := (page - 1) * limit

	payments, total, err := h.payments.ListPayments(c.Request.Context(), merchantID, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"payments": payments,
		"pagination": gin.H{
			"page":       page,
			"limit":      limit,
			"total":      total,
			"totalPages": (total + limit - 1) / limit,
		},
	})
}

type SelectAssetRequest struct {
	Network  string `json:"network" binding:"required"`
	Currency string `json:"currency" binding:"required"`
	Address  string `json:"address"`
}

// SelectAsset records the payer's payment-method choice and quotes the amount
// POST /api/v1/pay/:id/select
func (h *PaymentHandler) SelectAsset(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid payment ID"))
		return
	}

	var req SelectAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	payment, err := h.payments.SelectAsset(c.Request.Context(), id, req.Network, req.Address, req.Currency)
	if err != nil {
		response.Error(c, mapSelectionError(err))
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"paymentId":          payment.ID,
		"expectedAmount":     payment.ExpectedAmount,
		"destinationAddress": payment.DestinationAddress,
		"asset":              payment.Asset,
		"expiresAt":          payment.ExpiresAt,
	})
}

// GetPublicPayment gets the payer-facing view of a payment
// GET /api/v1/pay/:id
func (h *PaymentHandler) GetPublicPayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid payment ID"))
		return
	}

	payment, err := h.payments.GetPayment(c.Request.Context(), id)
	if err != nil {
		if err == domainerrors.ErrNotFound {
			response.Error(c, domainerrors.NotFound("payment not found"))
			return
		}
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"paymentId":          payment.ID,
		"faceAmountUsd":      payment.FaceAmountUSD,
		"description":        payment.Description,
		"status":             payment.Status,
		"asset":              payment.Asset,
		"destinationAddress": payment.DestinationAddress,
		"expectedAmount":     payment.ExpectedAmount,
		"expiresAt":          payment.ExpiresAt,
	})
}

// GetStatus returns the payment's current status and matched reference
// GET /api/v1/pay/:id/status
func (h *PaymentHandler) GetStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid payment ID"))
		return
	}

	payment, err := h.payments.GetPayment(c.Request.Context(), id)
	if err != nil {
		if err == domainerrors.ErrNotFound {
			response.Error(c, domainerrors.NotFound("payment not found"))
			return
		}
		response.Error(c, err)
		return
	}

	body := gin.H{"status": payment.Status}
	if payment.MatchedTxRef.Valid {
		body["txRef"] = payment.MatchedTxRef.String
	}

	response.Success(c, http.StatusOK, body)
}

// CheckNow triggers an on-demand reconciliation of one payment
// POST /api/v1/pay/:id/check
func (h *PaymentHandler) CheckNow(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid payment ID"))
		return
	}

	payment, err := h.reconciler.CheckNow(c.Request.Context(), id)
	if err != nil {
		if err == domainerrors.ErrNotFound {
			response.Error(c, domainerrors.NotFound("payment not found"))
			return
		}
		response.Error(c, err)
		return
	}

	body := gin.H{"status": payment.Status}
	if payment.MatchedTxRef.Valid {
		body["txRef"] = payment.MatchedTxRef.String
	}

	response.Success(c, http.StatusOK, body)
}

func mapSelectionError(err error) error {
	switch err {
	case domainerrors.ErrNotFound:
		return domainerrors.NotFound("payment not found")
	case domainerrors.ErrUnsupportedNetwork:
		return domainerrors.BadRequest("unsupported network")
	case domainerrors.ErrUnsupportedCurrency:
		return domainerrors.BadRequest("unsupported currency")
	case domainerrors.ErrNoActiveWallet:
		return domainerrors.BadRequest("no active wallet for network")
	case domainerrors.ErrPaymentTerminal:
		return domainerrors.Conflict("payment already in terminal status")
	case domainerrors.ErrPriceUnavailable:
		return domainerrors.NewAppError(http.StatusServiceUnavailable, "price unavailable", err)
	default:
		return err
	}
}
