package blockchain

import (
	"fmt"
	"sync"
	"time"

	"chainpay.backend/internal/config"
)

// ClientFactory manages chain data-source clients keyed by network
type ClientFactory struct {
	explorerURLs map[string]string
	apiKey       string
	timeout      time.Duration

	explorers map[string]*ExplorerClient
	solana    *SolanaClient
	mu        sync.RWMutex
}

// NewClientFactory creates a new client factory from chain configuration
func NewClientFactory(cfg config.ChainsConfig, timeout time.Duration) *ClientFactory {
	return &ClientFactory{
		explorerURLs: map[string]string{
			"ethereum": cfg.EthereumExplorerURL,
			"base":     cfg.BaseExplorerURL,
			"bsc":      cfg.BscExplorerURL,
		},
		apiKey:    cfg.ExplorerAPIKey,
		timeout:   timeout,
		explorers: make(map[string]*ExplorerClient),
		solana:    NewSolanaClient(cfg.SolanaRPC),
	}
}

// GetExplorer returns the account-history client for an EVM network.
// If a client already exists for the network, it returns the cached client.
func (f *ClientFactory) GetExplorer(network string) (*ExplorerClient, error) {
	f.mu.RLock()
	client, ok := f.explorers[network]
	f.mu.RUnlock()
	if ok {
		return client, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	// Double check
	if client, ok := f.explorers[network]; ok {
		return client, nil
	}

	baseURL, ok := f.explorerURLs[network]
	if !ok || baseURL == "" {
		return nil, fmt.Errorf("no explorer configured for network %s", network)
	}

	newClient := NewExplorerClient(baseURL, f.apiKey, f.timeout)
	f.explorers[network] = newClient
	return newClient, nil
}

// GetSolana returns the shared Solana RPC client
func (f *ClientFactory) GetSolana() *SolanaClient {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.solana
}

// RegisterExplorer injects/overrides the cached client for a network.
// Useful for deterministic unit tests.
func (f *ClientFactory) RegisterExplorer(network string, client *ExplorerClient) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.explorers[network] = client
}
