package repositories

import (
	"context"
	"errors"
	"time"

	"chainpay.backend/internal/domain/entities"
	domainerrors "chainpay.backend/internal/domain/errors"
	"chainpay.backend/internal/infrastructure/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MerchantRepositoryImpl implements MerchantRepository
type MerchantRepositoryImpl struct {
	db *gorm.DB
}

func NewMerchantRepository(db *gorm.DB) *MerchantRepositoryImpl {
	return &MerchantRepositoryImpl{db: db}
}

func (r *MerchantRepositoryImpl) Create(ctx context.Context, merchant *entities.Merchant) error {
	m := &models.Merchant{
		ID:            merchant.ID,
		Name:          merchant.Name,
		WebhookURL:    merchant.WebhookURL,
		WebhookSecret: merchant.WebhookSecret,
		IsActive:      merchant.IsActive,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *MerchantRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.Merchant, error) {
	var m models.Merchant
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return &entities.Merchant{
		ID:            m.ID,
		Name:          m.Name,
		WebhookURL:    m.WebhookURL,
		WebhookSecret: m.WebhookSecret,
		IsActive:      m.IsActive,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}, nil
}
