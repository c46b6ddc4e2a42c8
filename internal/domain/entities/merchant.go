package entities

import (
	"time"

	"github.com/google/uuid"
)

// Merchant owns payment requests and receives webhook notifications
type Merchant struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	WebhookURL    string    `json:"webhookUrl,omitempty"`
	WebhookSecret string    `json:"-"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
