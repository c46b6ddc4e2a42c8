package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is an ephemeral USD price observation for a symbol. A quote older
// than the configured staleness window must not be used to compute a new
// expected amount without refreshing first.
type Quote struct {
	Symbol     string          `json:"symbol"`
	PriceUSD   decimal.Decimal `json:"priceUsd"`
	ObservedAt time.Time       `json:"observedAt"`
}
