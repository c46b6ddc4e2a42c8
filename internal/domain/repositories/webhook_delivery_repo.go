package repositories

import (
	"context"

	"chainpay.backend/internal/domain/entities"
)

// WebhookDeliveryRepository is an append-only log of notification attempts
type WebhookDeliveryRepository interface {
	Create(ctx context.Context, delivery *entities.WebhookDelivery) error
	List(ctx context.Context, filter entities.WebhookDeliveryFilter, limit, offset int) ([]*entities.WebhookDelivery, int, error)
}
