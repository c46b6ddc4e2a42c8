package handlers

import (
	"net/http"

	domainerrors "chainpay.backend/internal/domain/errors"
	"chainpay.backend/internal/interfaces/http/middleware"
	"chainpay.backend/internal/interfaces/http/response"
	"chainpay.backend/internal/usecases"

	"github.com/gin-gonic/gin"
)

type WalletHandler struct {
	wallets *usecases.WalletUsecase
}

func NewWalletHandler(wallets *usecases.WalletUsecase) *WalletHandler {
	return &WalletHandler{wallets: wallets}
}

type AddWalletRequest struct {
	Network  string `json:"network" binding:"required"`
	Currency string `json:"currency" binding:"required"`
	Address  string `json:"address" binding:"required"`
}

// AddWallet registers a destination wallet for the merchant
// POST /api/v1/wallets
func (h *WalletHandler) AddWallet(c *gin.Context) {
	merchantID, exists := middleware.GetMerchantID(c)
	if !exists {
		response.Error(c, domainerrors.Unauthorized("unauthorized"))
		return
	}

	var req AddWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	wallet, err := h.wallets.AddWallet(c.Request.Context(), merchantID, req.Network, req.Currency, req.Address)
	if err != nil {
		switch err {
		case domainerrors.ErrUnsupportedNetwork:
			response.Error(c, domainerrors.BadRequest("unsupported network"))
		case domainerrors.ErrUnsupportedCurrency:
			response.Error(c, domainerrors.BadRequest("unsupported currency"))
		default:
			response.Error(c, err)
		}
		return
	}

	response.Success(c, http.StatusCreated, wallet)
}

// ListWallets lists the merchant's active wallets
// GET /api/v1/wallets
func (h *WalletHandler) ListWallets(c *gin.Context) {
	merchantID, exists := middleware.GetMerchantID(c)
	if !exists {
		response.Error(c, domainerrors.Unauthorized("unauthorized"))
		return
	}

	wallets, err := h.wallets.ListWallets(c.Request.Context(), merchantID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"wallets": wallets})
}
