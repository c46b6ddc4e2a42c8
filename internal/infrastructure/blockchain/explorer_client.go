package blockchain

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// TransferRecord is a single inbound or outbound transfer reported by an
// Etherscan-compatible account-history API. Value is an integer amount in
// the asset's base units (wei for native transfers).
type TransferRecord struct {
	Hash          string
	To            string
	From          string
	Value         string
	Contract      string
	Confirmations int64
	Failed        bool
}

type explorerEnvelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

type explorerTx struct {
	Hash            string `json:"hash"`
	To              string `json:"to"`
	From            string `json:"from"`
	Value           string `json:"value"`
	ContractAddress string `json:"contractAddress"`
	Confirmations   string `json:"confirmations"`
	IsError         string `json:"isError"`
}

// ExplorerClient queries an Etherscan-compatible account-history API.
// Results come back newest first so recent payments are found quickly.
type ExplorerClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewExplorerClient creates a client for one explorer endpoint
func NewExplorerClient(baseURL, apiKey string, timeout time.Duration) *ExplorerClient {
	return &ExplorerClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// TokenTransfers returns recent ERC-20 transfers touching the address,
// restricted to the given token contract.
func (c *ExplorerClient) TokenTransfers(ctx context.Context, address, contract string) ([]TransferRecord, error) {
	params := url.Values{}
	params.Set("module", "account")
	params.Set("action", "tokentx")
	params.Set("address", address)
	params.Set("contractaddress", contract)
	return c.query(ctx, params)
}

// NativeTransfers returns recent native-coin transactions touching the address
func (c *ExplorerClient) NativeTransfers(ctx context.Context, address string) ([]TransferRecord, error) {
	params := url.Values{}
	params.Set("module", "account")
	params.Set("action", "txlist")
	params.Set("address", address)
	return c.query(ctx, params)
}

func (c *ExplorerClient) query(ctx context.Context, params url.Values) ([]TransferRecord, error) {
	params.Set("sort", "desc")
	params.Set("page", "1")
	params.Set("offset", "50")
	if c.apiKey != "" {
		params.Set("apikey", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build explorer request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("explorer request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("explorer returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read explorer response: %w", err)
	}

	var envelope explorerEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode explorer response: %w", err)
	}

	// Explorers report "no transactions found" as status 0 with an empty
	// result list, which is not an error for reconciliation. Real failures
	// (rate limits, bad params) carry a string result instead of a list.
	var txs []explorerTx
	if err := json.Unmarshal(envelope.Result, &txs); err != nil {
		return nil, fmt.Errorf("explorer error: %s: %s", envelope.Message, string(envelope.Result))
	}

	records := make([]TransferRecord, 0, len(txs))
	for _, tx := range txs {
		confirmations, _ := strconv.ParseInt(tx.Confirmations, 10, 64)
		records = append(records, TransferRecord{
			Hash:          tx.Hash,
			To:            tx.To,
			From:          tx.From,
			Value:         tx.Value,
			Contract:      tx.ContractAddress,
			Confirmations: confirmations,
			Failed:        tx.IsError == "1",
		})
	}

	return records, nil
}
