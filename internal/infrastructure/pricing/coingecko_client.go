package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"chainpay.backend/internal/domain/errors"

	"github.com/shopspring/decimal"
)

// coingeckoIDs maps ticker symbols to CoinGecko asset identifiers
var coingeckoIDs = map[string]string{
	"ETH":   "ethereum",
	"BNB":   "binancecoin",
	"SOL":   "solana",
	"MATIC": "matic-network",
	"USDC":  "usd-coin",
	"USDT":  "tether",
}

// CoinGeckoClient fetches spot prices from a CoinGecko-compatible API
type CoinGeckoClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewCoinGeckoClient creates a new price client
func NewCoinGeckoClient(baseURL string, timeout time.Duration) *CoinGeckoClient {
	return &CoinGeckoClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// PriceUSD returns the current USD price for a ticker symbol
func (c *CoinGeckoClient) PriceUSD(ctx context.Context, symbol string) (decimal.Decimal, error) {
	id, ok := coingeckoIDs[strings.ToUpper(symbol)]
	if !ok {
		return decimal.Zero, errors.ErrUnsupportedCurrency
	}

	params := url.Values{}
	params.Set("ids", id)
	params.Set("vs_currencies", "usd")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/simple/price?"+params.Encode(), nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to build price request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("price request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("price oracle returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to read price response: %w", err)
	}

	// {"ethereum": {"usd": 3250.42}}
	var payload map[string]map[string]json.Number
	if err := json.Unmarshal(body, &payload); err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode price response: %w", err)
	}

	raw, ok := payload[id]["usd"]
	if !ok {
		return decimal.Zero, errors.ErrPriceUnavailable
	}

	price, err := decimal.NewFromString(raw.String())
	if err != nil || price.IsZero() || price.IsNegative() {
		return decimal.Zero, errors.ErrPriceUnavailable
	}

	return price, nil
}
