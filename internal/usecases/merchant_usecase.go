package usecases

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"chainpay.backend/internal/domain/entities"
	domainerrors "chainpay.backend/internal/domain/errors"
	"chainpay.backend/internal/domain/repositories"
	"chainpay.backend/pkg/utils"

	"github.com/google/uuid"
)

// MerchantUsecase manages merchant accounts and their webhook configuration
type MerchantUsecase struct {
	merchantRepo repositories.MerchantRepository
}

// NewMerchantUsecase creates a new merchant usecase
func NewMerchantUsecase(merchantRepo repositories.MerchantRepository) *MerchantUsecase {
	return &MerchantUsecase{merchantRepo: merchantRepo}
}

// CreateMerchant registers a merchant. The webhook signing secret is
// generated server-side and returned once on creation.
func (u *MerchantUsecase) CreateMerchant(ctx context.Context, name, webhookURL string) (*entities.Merchant, error) {
	if name == "" {
		return nil, domainerrors.BadRequest("merchant name is required")
	}

	secret, err := generateWebhookSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to generate webhook secret: %w", err)
	}

	merchant := &entities.Merchant{
		ID:            utils.GenerateUUIDv7(),
		Name:          name,
		WebhookURL:    webhookURL,
		WebhookSecret: secret,
		IsActive:      true,
	}

	if err := u.merchantRepo.Create(ctx, merchant); err != nil {
		return nil, err
	}

	return merchant, nil
}

// GetMerchant returns a merchant by id
func (u *MerchantUsecase) GetMerchant(ctx context.Context, id uuid.UUID) (*entities.Merchant, error) {
	return u.merchantRepo.GetByID(ctx, id)
}

func generateWebhookSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
