package repositories

import (
	"context"
	"time"

	"chainpay.backend/internal/domain/entities"
	"chainpay.backend/internal/infrastructure/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WalletRepositoryImpl implements WalletRepository
type WalletRepositoryImpl struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) *WalletRepositoryImpl {
	return &WalletRepositoryImpl{db: db}
}

func (r *WalletRepositoryImpl) Create(ctx context.Context, wallet *entities.Wallet) error {
	m := &models.Wallet{
		ID:         wallet.ID,
		MerchantID: wallet.MerchantID,
		Network:    wallet.Network,
		Currency:   wallet.Currency,
		Address:    wallet.Address,
		IsActive:   wallet.IsActive,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *WalletRepositoryImpl) ListActive(ctx context.Context, merchantID uuid.UUID) ([]*entities.Wallet, error) {
	var ms []models.Wallet
	if err := r.db.WithContext(ctx).
		Where("merchant_id = ? AND is_active = ?", merchantID, true).
		Order("created_at ASC").
		Find(&ms).Error; err != nil {
		return nil, err
	}

	var wallets []*entities.Wallet
	for _, m := range ms {
		wallets = append(wallets, &entities.Wallet{
			ID:         m.ID,
			MerchantID: m.MerchantID,
			Network:    m.Network,
			Currency:   m.Currency,
			Address:    m.Address,
			IsActive:   m.IsActive,
			CreatedAt:  m.CreatedAt,
			UpdatedAt:  m.UpdatedAt,
		})
	}
	return wallets, nil
}
