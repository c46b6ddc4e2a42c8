package handlers

import (
	"net/http"

	domainerrors "chainpay.backend/internal/domain/errors"
	"chainpay.backend/internal/interfaces/http/middleware"
	"chainpay.backend/internal/interfaces/http/response"
	"chainpay.backend/internal/usecases"
	"chainpay.backend/pkg/jwt"

	"github.com/gin-gonic/gin"
)

type MerchantHandler struct {
	merchants  *usecases.MerchantUsecase
	jwtService *jwt.JWTService
}

func NewMerchantHandler(merchants *usecases.MerchantUsecase, jwtService *jwt.JWTService) *MerchantHandler {
	return &MerchantHandler{
		merchants:  merchants,
		jwtService: jwtService,
	}
}

type CreateMerchantRequest struct {
	Name       string `json:"name" binding:"required"`
	WebhookURL string `json:"webhookUrl"`
}

// CreateMerchant registers a merchant and issues an access token. The
// webhook signing secret is returned once here and never again.
// POST /api/v1/merchants
func (h *MerchantHandler) CreateMerchant(c *gin.Context) {
	var req CreateMerchantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	merchant, err := h.merchants.CreateMerchant(c.Request.Context(), req.Name, req.WebhookURL)
	if err != nil {
		response.Error(c, err)
		return
	}

	token, err := h.jwtService.GenerateToken(merchant.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"merchant":      merchant,
		"webhookSecret": merchant.WebhookSecret,
		"accessToken":   token,
	})
}

// GetMerchant returns the authenticated merchant's profile
// GET /api/v1/merchants/me
func (h *MerchantHandler) GetMerchant(c *gin.Context) {
	merchantID, exists := middleware.GetMerchantID(c)
	if !exists {
		response.Error(c, domainerrors.Unauthorized("unauthorized"))
		return
	}

	merchant, err := h.merchants.GetMerchant(c.Request.Context(), merchantID)
	if err != nil {
		if err == domainerrors.ErrNotFound {
			response.Error(c, domainerrors.NotFound("merchant not found"))
			return
		}
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, merchant)
}
