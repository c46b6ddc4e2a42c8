package usecases

import (
	"context"
	"errors"
	"testing"

	"chainpay.backend/internal/domain/entities"
	"chainpay.backend/internal/infrastructure/blockchain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	solDestination = "7nYabs8mDE6GyZHZ2XkQqRWDmpSZhBLWAYvA3MQhGuyr"
	usdcMint       = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
)

func solPayment(expected string) *entities.PaymentRequest {
	return &entities.PaymentRequest{
		ID: uuid.New(),
		Asset: &entities.SelectedAsset{
			Network:  "solana",
			Symbol:   "SOL",
			Kind:     entities.AssetKindNative,
			Decimals: 9,
		},
		DestinationAddress: solDestination,
		ExpectedAmount:     decimal.RequireFromString(expected),
		Status:             entities.PaymentStatusPending,
	}
}

func splPayment(expected string) *entities.PaymentRequest {
	p := solPayment(expected)
	p.Asset = &entities.SelectedAsset{
		Network:        "solana",
		Symbol:         "USDC",
		Kind:           entities.AssetKindToken,
		ContractOrMint: usdcMint,
		Decimals:       6,
	}
	return p
}

func defaultEpsilon() decimal.Decimal {
	return decimal.RequireFromString("0.000001")
}

func TestSolanaMatcher_NativeLamportExact(t *testing.T) {
	reader := &mockSolanaReader{
		signatures: []blockchain.SignatureInfo{{Signature: "sig1"}},
		transactions: map[string]*blockchain.TransactionInfo{
			"sig1": {
				AccountKeys:  []string{"sender", solDestination},
				PreBalances:  []uint64{1000000000, 500000000},
				PostBalances: []uint64{750000000, 750000000},
			},
		},
	}
	matcher := NewSolanaMatcher(reader, entities.AssetKindNative, 10, defaultEpsilon())

	txRef, found, err := matcher.FindMatch(context.Background(), solPayment("0.25"))
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "sig1", txRef)
}

func TestSolanaMatcher_NativeOneLamportOffRejected(t *testing.T) {
	reader := &mockSolanaReader{
		signatures: []blockchain.SignatureInfo{{Signature: "sig1"}},
		transactions: map[string]*blockchain.TransactionInfo{
			"sig1": {
				AccountKeys:  []string{"sender", solDestination},
				PreBalances:  []uint64{1000000000, 500000000},
				PostBalances: []uint64{750000001, 749999999},
			},
		},
	}
	matcher := NewSolanaMatcher(reader, entities.AssetKindNative, 10, defaultEpsilon())

	_, found, err := matcher.FindMatch(context.Background(), solPayment("0.25"))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSolanaMatcher_NativeBalanceDecreaseRejected(t *testing.T) {
	reader := &mockSolanaReader{
		signatures: []blockchain.SignatureInfo{{Signature: "sig1"}},
		transactions: map[string]*blockchain.TransactionInfo{
			"sig1": {
				AccountKeys:  []string{solDestination, "receiver"},
				PreBalances:  []uint64{750000000, 500000000},
				PostBalances: []uint64{500000000, 750000000},
			},
		},
	}
	matcher := NewSolanaMatcher(reader, entities.AssetKindNative, 10, defaultEpsilon())

	_, found, err := matcher.FindMatch(context.Background(), solPayment("0.25"))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSolanaMatcher_TokenWithinEpsilon(t *testing.T) {
	reader := &mockSolanaReader{
		signatures: []blockchain.SignatureInfo{{Signature: "sig1"}},
		transactions: map[string]*blockchain.TransactionInfo{
			"sig1": {
				PreTokenBalances: []blockchain.TokenBalanceInfo{
					{Owner: solDestination, Mint: usdcMint, UIAmount: "10"},
				},
				PostTokenBalances: []blockchain.TokenBalanceInfo{
					{Owner: solDestination, Mint: usdcMint, UIAmount: "60.0000005"},
				},
			},
		},
	}
	matcher := NewSolanaMatcher(reader, entities.AssetKindToken, 10, defaultEpsilon())

	txRef, found, err := matcher.FindMatch(context.Background(), splPayment("50"))
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "sig1", txRef)
}

func TestSolanaMatcher_TokenOutsideEpsilonRejected(t *testing.T) {
	reader := &mockSolanaReader{
		signatures: []blockchain.SignatureInfo{{Signature: "sig1"}},
		transactions: map[string]*blockchain.TransactionInfo{
			"sig1": {
				PreTokenBalances: []blockchain.TokenBalanceInfo{
					{Owner: solDestination, Mint: usdcMint, UIAmount: "10"},
				},
				PostTokenBalances: []blockchain.TokenBalanceInfo{
					{Owner: solDestination, Mint: usdcMint, UIAmount: "60.00001"},
				},
			},
		},
	}
	matcher := NewSolanaMatcher(reader, entities.AssetKindToken, 10, defaultEpsilon())

	_, found, err := matcher.FindMatch(context.Background(), splPayment("50"))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSolanaMatcher_TokenAccountCreatedByTransfer(t *testing.T) {
	// No pre balance entry: the token account did not exist before
	reader := &mockSolanaReader{
		signatures: []blockchain.SignatureInfo{{Signature: "sig1"}},
		transactions: map[string]*blockchain.TransactionInfo{
			"sig1": {
				PostTokenBalances: []blockchain.TokenBalanceInfo{
					{Owner: solDestination, Mint: usdcMint, UIAmount: "50"},
				},
			},
		},
	}
	matcher := NewSolanaMatcher(reader, entities.AssetKindToken, 10, defaultEpsilon())

	_, found, err := matcher.FindMatch(context.Background(), splPayment("50"))
	require.NoError(t, err)
	assert.True(t, found)
}

func TestSolanaMatcher_WrongMintRejected(t *testing.T) {
	reader := &mockSolanaReader{
		signatures: []blockchain.SignatureInfo{{Signature: "sig1"}},
		transactions: map[string]*blockchain.TransactionInfo{
			"sig1": {
				PostTokenBalances: []blockchain.TokenBalanceInfo{
					{Owner: solDestination, Mint: "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB", UIAmount: "50"},
				},
			},
		},
	}
	matcher := NewSolanaMatcher(reader, entities.AssetKindToken, 10, defaultEpsilon())

	_, found, err := matcher.FindMatch(context.Background(), splPayment("50"))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSolanaMatcher_FailedSignatureSkipped(t *testing.T) {
	reader := &mockSolanaReader{
		signatures: []blockchain.SignatureInfo{
			{Signature: "sig1", Failed: true},
			{Signature: "sig2"},
		},
		transactions: map[string]*blockchain.TransactionInfo{
			"sig2": {
				AccountKeys:  []string{"sender", solDestination},
				PreBalances:  []uint64{1000000000, 0},
				PostBalances: []uint64{750000000, 250000000},
			},
		},
	}
	matcher := NewSolanaMatcher(reader, entities.AssetKindNative, 10, defaultEpsilon())

	txRef, found, err := matcher.FindMatch(context.Background(), solPayment("0.25"))
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "sig2", txRef)
}

func TestSolanaMatcher_UnreadableTransactionSkipped(t *testing.T) {
	reader := &mockSolanaReader{
		signatures: []blockchain.SignatureInfo{
			{Signature: "sig1"},
			{Signature: "sig2"},
		},
		txErr: map[string]error{"sig1": errors.New("node timeout")},
		transactions: map[string]*blockchain.TransactionInfo{
			"sig2": {
				AccountKeys:  []string{"sender", solDestination},
				PreBalances:  []uint64{1000000000, 0},
				PostBalances: []uint64{750000000, 250000000},
			},
		},
	}
	matcher := NewSolanaMatcher(reader, entities.AssetKindNative, 10, defaultEpsilon())

	txRef, found, err := matcher.FindMatch(context.Background(), solPayment("0.25"))
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "sig2", txRef)
}

func TestSolanaMatcher_PageSizeLimitsScan(t *testing.T) {
	reader := &mockSolanaReader{
		signatures: []blockchain.SignatureInfo{
			{Signature: "sig1"},
			{Signature: "sig2"},
		},
		transactions: map[string]*blockchain.TransactionInfo{
			"sig1": {AccountKeys: []string{"other"}, PreBalances: []uint64{0}, PostBalances: []uint64{0}},
			"sig2": {
				AccountKeys:  []string{"sender", solDestination},
				PreBalances:  []uint64{1000000000, 0},
				PostBalances: []uint64{750000000, 250000000},
			},
		},
	}
	matcher := NewSolanaMatcher(reader, entities.AssetKindNative, 1, defaultEpsilon())

	_, found, err := matcher.FindMatch(context.Background(), solPayment("0.25"))
	require.NoError(t, err)
	assert.False(t, found, "the match lies beyond the scan page")
}
