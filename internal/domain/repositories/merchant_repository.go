package repositories

import (
	"context"

	"chainpay.backend/internal/domain/entities"
	"github.com/google/uuid"
)

// MerchantRepository resolves merchant webhook configuration
type MerchantRepository interface {
	Create(ctx context.Context, merchant *entities.Merchant) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Merchant, error)
}
