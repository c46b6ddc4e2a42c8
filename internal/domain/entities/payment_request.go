package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// PaymentStatus represents the status of a payment request
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// IsTerminal reports whether no further transition is permitted
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusCompleted || s == PaymentStatusFailed
}

// SelectedAsset is the payment method chosen by the payer. It is nil until
// the payer selects one; DestinationAddress is set together with it.
type SelectedAsset struct {
	Network        string    `json:"network"`
	Symbol         string    `json:"symbol"`
	Kind           AssetKind `json:"kind"`
	ContractOrMint string    `json:"contractOrMint,omitempty"`
	Decimals       int       `json:"decimals"`
}

// PaymentRequest represents a merchant's request for payment in crypto.
// FaceAmountUSD is immutable once set; ExpectedAmount is recomputed whenever
// the asset is (re)selected or re-quoted. Records are append-only.
type PaymentRequest struct {
	ID                 uuid.UUID       `json:"id"`
	MerchantID         uuid.UUID       `json:"merchantId"`
	FaceAmountUSD      decimal.Decimal `json:"faceAmountUsd"`
	Description        string          `json:"description,omitempty"`
	Asset              *SelectedAsset  `json:"asset,omitempty"`
	DestinationAddress string          `json:"destinationAddress,omitempty"`
	ExpectedAmount     decimal.Decimal `json:"expectedAmount"`
	Status             PaymentStatus   `json:"status"`
	MatchedTxRef       null.String     `json:"matchedTxRef,omitempty"`
	QuotedAt           *time.Time      `json:"quotedAt,omitempty"`
	ExpiresAt          time.Time       `json:"expiresAt"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

// HasSelection reports whether the payer has chosen an asset and destination
func (p *PaymentRequest) HasSelection() bool {
	return p.Asset != nil && p.DestinationAddress != ""
}

// IsExpired reports whether the payment is past its expiry window at t
func (p *PaymentRequest) IsExpired(t time.Time) bool {
	return t.After(p.ExpiresAt)
}
