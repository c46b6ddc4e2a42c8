package usecases

import (
	"context"
	"strings"
	"sync"
	"time"

	"chainpay.backend/internal/domain/entities"
	domainerrors "chainpay.backend/internal/domain/errors"
	"chainpay.backend/pkg/logger"
	"chainpay.backend/pkg/metrics"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PriceSource provides current USD prices for ticker symbols
type PriceSource interface {
	PriceUSD(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// symbolAliases canonicalizes tickers before every oracle call and cache
// lookup. POL is the rebranded gas token still listed as MATIC upstream.
var symbolAliases = map[string]string{
	"POL":  "MATIC",
	"WETH": "ETH",
}

// fallbackPricesUSD are approximate last-known-good prices used when the
// oracle is unreachable. Quoting degrades gracefully, it never blocks
// checkout.
var fallbackPricesUSD = map[string]decimal.Decimal{
	"ETH":   decimal.NewFromInt(3200),
	"BNB":   decimal.NewFromInt(600),
	"SOL":   decimal.NewFromInt(150),
	"MATIC": decimal.NewFromFloat(0.5),
	"USDC":  decimal.NewFromInt(1),
	"USDT":  decimal.NewFromInt(1),
}

// CanonicalSymbol maps a ticker to the symbol known by the price oracle
func CanonicalSymbol(symbol string) string {
	upper := strings.ToUpper(symbol)
	if alias, ok := symbolAliases[upper]; ok {
		return alias
	}
	return upper
}

// QuoteManager converts USD face amounts into crypto amounts against a
// short-TTL price cache.
type QuoteManager struct {
	source   PriceSource
	ttl      time.Duration
	recorder metrics.Recorder
	now      func() time.Time

	mu    sync.Mutex
	cache map[string]entities.Quote
}

// NewQuoteManager creates a new quote manager
func NewQuoteManager(source PriceSource, ttl time.Duration, recorder metrics.Recorder) *QuoteManager {
	return &QuoteManager{
		source:   source,
		ttl:      ttl,
		recorder: recorder,
		now:      time.Now,
		cache:    make(map[string]entities.Quote),
	}
}

// Quote returns the current USD price for a symbol. Cache hits within the
// TTL are served directly; otherwise the oracle is consulted, falling back
// to a static price table when it is unavailable.
func (m *QuoteManager) Quote(ctx context.Context, symbol string) (entities.Quote, error) {
	canonical := CanonicalSymbol(symbol)

	m.mu.Lock()
	cached, ok := m.cache[canonical]
	m.mu.Unlock()
	if ok && m.now().Sub(cached.ObservedAt) < m.ttl {
		return cached, nil
	}

	// No lock while the oracle call is in flight
	price, err := m.source.PriceUSD(ctx, canonical)
	if err != nil {
		fallback, ok := fallbackPricesUSD[canonical]
		if !ok {
			return entities.Quote{}, domainerrors.ErrPriceUnavailable
		}
		logger.Warn(ctx, "price oracle unavailable, using fallback price",
			zap.String("symbol", canonical),
			zap.Error(err),
		)
		m.recorder.IncCounter(metrics.CounterOracleFallbacks, nil)

		// Fallback quotes are not cached so the next call retries the oracle
		return entities.Quote{
			Symbol:     canonical,
			PriceUSD:   fallback,
			ObservedAt: m.now(),
		}, nil
	}

	quote := entities.Quote{
		Symbol:     canonical,
		PriceUSD:   price,
		ObservedAt: m.now(),
	}

	m.mu.Lock()
	m.cache[canonical] = quote
	m.mu.Unlock()

	return quote, nil
}

// ToAssetAmount converts a USD face amount into the asset amount a payer
// must send, rounded half-up to the asset's display precision.
func (m *QuoteManager) ToAssetAmount(ctx context.Context, faceUSD decimal.Decimal, symbol string, displayDecimals int32) (decimal.Decimal, entities.Quote, error) {
	quote, err := m.Quote(ctx, symbol)
	if err != nil {
		return decimal.Zero, entities.Quote{}, err
	}
	if quote.PriceUSD.IsZero() {
		return decimal.Zero, entities.Quote{}, domainerrors.ErrPriceUnavailable
	}

	amount := faceUSD.DivRound(quote.PriceUSD, displayDecimals)
	return amount, quote, nil
}
