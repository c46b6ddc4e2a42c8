package repositories

import (
	"context"

	"chainpay.backend/internal/domain/entities"
	"github.com/google/uuid"
)

// WalletRepository is the wallet directory consumed at asset-selection time
type WalletRepository interface {
	Create(ctx context.Context, wallet *entities.Wallet) error
	ListActive(ctx context.Context, merchantID uuid.UUID) ([]*entities.Wallet, error)
}
