package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// WebhookDelivery is one attempted notification to a merchant endpoint.
// Retries and manual resends each add a row; HTTPStatus is null when the
// attempt failed before receiving a response.
type WebhookDelivery struct {
	ID         uuid.UUID     `json:"id"`
	PaymentID  uuid.UUID     `json:"paymentId"`
	TargetURL  string        `json:"targetUrl"`
	Event      PaymentStatus `json:"event"`
	HTTPStatus null.Int      `json:"httpStatus,omitempty"`
	Succeeded  bool          `json:"succeeded"`
	Attempt    int           `json:"attempt"`
	CreatedAt  time.Time     `json:"createdAt"`
}

// WebhookDeliveryFilter narrows delivery-log queries
type WebhookDeliveryFilter struct {
	PaymentID *uuid.UUID
	Succeeded *bool
	From      *time.Time
	To        *time.Time
}
