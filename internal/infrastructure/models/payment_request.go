package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

type PaymentRequest struct {
	ID                 uuid.UUID   `gorm:"type:uuid;primaryKey"`
	MerchantID         uuid.UUID   `gorm:"type:uuid;not null;index"`
	FaceAmountUSD      string      `gorm:"column:face_amount_usd;type:decimal(18,2);not null"`
	Description        string      `gorm:"type:text"`
	Network            string      `gorm:"type:varchar(50)"`
	Symbol             string      `gorm:"type:varchar(20)"`
	AssetKind          string      `gorm:"type:varchar(20)"`
	ContractOrMint     string      `gorm:"type:varchar(255)"`
	Decimals           int         `gorm:"default:0"`
	DestinationAddress string      `gorm:"type:varchar(255)"`
	ExpectedAmount     string      `gorm:"type:decimal(36,18)"`
	Status             string      `gorm:"type:varchar(20);not null;index"`
	MatchedTxRef       null.String `gorm:"type:varchar(255)"`
	QuotedAt           *time.Time
	ExpiresAt          time.Time `gorm:"not null;index"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type WebhookDelivery struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	PaymentID  uuid.UUID `gorm:"type:uuid;not null;index"`
	TargetURL  string    `gorm:"type:varchar(500);not null"`
	Event      string    `gorm:"type:varchar(20);not null"`
	HTTPStatus null.Int  `gorm:"column:http_status"`
	Succeeded  bool      `gorm:"not null;index"`
	Attempt    int       `gorm:"not null"`
	CreatedAt  time.Time `gorm:"index"`
}
