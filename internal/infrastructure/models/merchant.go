package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Merchant struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name          string    `gorm:"type:varchar(255);not null"`
	WebhookURL    string    `gorm:"column:webhook_url;type:varchar(500)"`
	WebhookSecret string    `gorm:"type:varchar(255)"`
	IsActive      bool      `gorm:"default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

type Wallet struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	MerchantID uuid.UUID `gorm:"type:uuid;not null;index"`
	Network    string    `gorm:"type:varchar(50);not null"`
	Currency   string    `gorm:"type:varchar(20);not null"`
	Address    string    `gorm:"type:varchar(255);not null"`
	IsActive   bool      `gorm:"default:true;index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}
