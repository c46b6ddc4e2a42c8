package blockchain

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// SignatureInfo is one entry from an address signature listing
type SignatureInfo struct {
	Signature string
	Failed    bool
}

// TokenBalanceInfo is a pre or post token balance attached to a transaction
type TokenBalanceInfo struct {
	Owner    string
	Mint     string
	UIAmount string
	Decimals uint8
}

// TransactionInfo carries the balance movements of a confirmed transaction.
// Native balances are lamports indexed by account key position.
type TransactionInfo struct {
	Failed            bool
	AccountKeys       []string
	PreBalances       []uint64
	PostBalances      []uint64
	PreTokenBalances  []TokenBalanceInfo
	PostTokenBalances []TokenBalanceInfo
}

// SolanaClient reads confirmed transaction history over JSON-RPC
type SolanaClient struct {
	client *rpc.Client
	rpcURL string
}

// NewSolanaClient creates a new Solana RPC client
func NewSolanaClient(rpcURL string) *SolanaClient {
	return &SolanaClient{
		client: rpc.New(rpcURL),
		rpcURL: rpcURL,
	}
}

// RecentSignatures returns the most recent transaction signatures touching the
// address, newest first.
func (c *SolanaClient) RecentSignatures(ctx context.Context, address string, limit int) ([]SignatureInfo, error) {
	pubkey, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return nil, fmt.Errorf("invalid solana address %s: %w", address, err)
	}

	out, err := c.client.GetSignaturesForAddressWithOpts(ctx, pubkey, &rpc.GetSignaturesForAddressOpts{
		Limit:      &limit,
		Commitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list signatures: %w", err)
	}

	infos := make([]SignatureInfo, 0, len(out))
	for _, sig := range out {
		infos = append(infos, SignatureInfo{
			Signature: sig.Signature.String(),
			Failed:    sig.Err != nil,
		})
	}

	return infos, nil
}

// Transaction fetches a confirmed transaction by signature
func (c *SolanaClient) Transaction(ctx context.Context, signature string) (*TransactionInfo, error) {
	sig, err := solana.SignatureFromBase58(signature)
	if err != nil {
		return nil, fmt.Errorf("invalid signature %s: %w", signature, err)
	}

	maxVersion := uint64(0)
	result, err := c.client.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
		Encoding:                       solana.EncodingBase64,
		Commitment:                     rpc.CommitmentConfirmed,
		MaxSupportedTransactionVersion: &maxVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transaction: %w", err)
	}
	if result == nil || result.Meta == nil {
		return nil, fmt.Errorf("transaction %s has no metadata", signature)
	}

	parsed, err := result.Transaction.GetTransaction()
	if err != nil {
		return nil, fmt.Errorf("failed to decode transaction: %w", err)
	}

	keys := make([]string, 0, len(parsed.Message.AccountKeys))
	for _, key := range parsed.Message.AccountKeys {
		keys = append(keys, key.String())
	}

	return &TransactionInfo{
		Failed:            result.Meta.Err != nil,
		AccountKeys:       keys,
		PreBalances:       result.Meta.PreBalances,
		PostBalances:      result.Meta.PostBalances,
		PreTokenBalances:  toTokenBalances(result.Meta.PreTokenBalances),
		PostTokenBalances: toTokenBalances(result.Meta.PostTokenBalances),
	}, nil
}

func toTokenBalances(balances []rpc.TokenBalance) []TokenBalanceInfo {
	infos := make([]TokenBalanceInfo, 0, len(balances))
	for _, b := range balances {
		info := TokenBalanceInfo{
			Mint: b.Mint.String(),
		}
		if b.Owner != nil {
			info.Owner = b.Owner.String()
		}
		if b.UiTokenAmount != nil {
			info.UIAmount = b.UiTokenAmount.UiAmountString
			info.Decimals = b.UiTokenAmount.Decimals
		}
		infos = append(infos, info)
	}
	return infos
}
