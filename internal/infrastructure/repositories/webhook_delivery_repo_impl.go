package repositories

import (
	"context"
	"time"

	"chainpay.backend/internal/domain/entities"
	"chainpay.backend/internal/infrastructure/models"
	"gorm.io/gorm"
)

// WebhookDeliveryRepositoryImpl implements WebhookDeliveryRepository
type WebhookDeliveryRepositoryImpl struct {
	db *gorm.DB
}

func NewWebhookDeliveryRepository(db *gorm.DB) *WebhookDeliveryRepositoryImpl {
	return &WebhookDeliveryRepositoryImpl{db: db}
}

func (r *WebhookDeliveryRepositoryImpl) Create(ctx context.Context, delivery *entities.WebhookDelivery) error {
	m := &models.WebhookDelivery{
		ID:         delivery.ID,
		PaymentID:  delivery.PaymentID,
		TargetURL:  delivery.TargetURL,
		Event:      string(delivery.Event),
		HTTPStatus: delivery.HTTPStatus,
		Succeeded:  delivery.Succeeded,
		Attempt:    delivery.Attempt,
		CreatedAt:  time.Now(),
	}
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *WebhookDeliveryRepositoryImpl) List(ctx context.Context, filter entities.WebhookDeliveryFilter, limit, offset int) ([]*entities.WebhookDelivery, int, error) {
	q := r.db.WithContext(ctx).Model(&models.WebhookDelivery{})
	if filter.PaymentID != nil {
		q = q.Where("payment_id = ?", *filter.PaymentID)
	}
	if filter.Succeeded != nil {
		q = q.Where("succeeded = ?", *filter.Succeeded)
	}
	if filter.From != nil {
		q = q.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("created_at <= ?", *filter.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.WebhookDelivery
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	var deliveries []*entities.WebhookDelivery
	for _, m := range ms {
		deliveries = append(deliveries, &entities.WebhookDelivery{
			ID:         m.ID,
			PaymentID:  m.PaymentID,
			TargetURL:  m.TargetURL,
			Event:      entities.PaymentStatus(m.Event),
			HTTPStatus: m.HTTPStatus,
			Succeeded:  m.Succeeded,
			Attempt:    m.Attempt,
			CreatedAt:  m.CreatedAt,
		})
	}
	return deliveries, int(total), nil
}
