package entities

import (
	"time"

	"github.com/google/uuid"
)

// Wallet is a merchant-configured destination address for one network/currency
type Wallet struct {
	ID         uuid.UUID `json:"id"`
	MerchantID uuid.UUID `json:"merchantId"`
	Network    string    `json:"network"`
	Currency   string    `json:"currency"`
	Address    string    `json:"address"`
	IsActive   bool      `json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
