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
	testDestination  = "0x1111111111111111111111111111111111111111"
	testUSDCContract = "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
)

func usdcPayment(expected string) *entities.PaymentRequest {
	return &entities.PaymentRequest{
		ID:         uuid.New(),
		MerchantID: uuid.New(),
		Asset: &entities.SelectedAsset{
			Network:        "ethereum",
			Symbol:         "USDC",
			Kind:           entities.AssetKindToken,
			ContractOrMint: testUSDCContract,
			Decimals:       6,
		},
		DestinationAddress: testDestination,
		ExpectedAmount:     decimal.RequireFromString(expected),
		Status:             entities.PaymentStatusPending,
	}
}

func historyFor(history AccountHistory) func(string) (AccountHistory, error) {
	return func(string) (AccountHistory, error) { return history, nil }
}

func TestEVMMatcher_TokenExactMatch(t *testing.T) {
	history := &mockHistory{token: []blockchain.TransferRecord{
		{Hash: "0xaaa", To: testDestination, Value: "50000000", Contract: testUSDCContract, Confirmations: 6},
	}}
	matcher := NewEVMMatcher(historyFor(history), entities.AssetKindToken, 5)

	txRef, found, err := matcher.FindMatch(context.Background(), usdcPayment("50"))
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "0xaaa", txRef)
}

func TestEVMMatcher_OffByOneBaseUnitRejected(t *testing.T) {
	history := &mockHistory{token: []blockchain.TransferRecord{
		{Hash: "0xaaa", To: testDestination, Value: "49999999", Contract: testUSDCContract, Confirmations: 6},
		{Hash: "0xbbb", To: testDestination, Value: "50000001", Contract: testUSDCContract, Confirmations: 6},
	}}
	matcher := NewEVMMatcher(historyFor(history), entities.AssetKindToken, 5)

	_, found, err := matcher.FindMatch(context.Background(), usdcPayment("50"))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestEVMMatcher_BelowConfirmationThreshold(t *testing.T) {
	history := &mockHistory{token: []blockchain.TransferRecord{
		{Hash: "0xaaa", To: testDestination, Value: "50000000", Contract: testUSDCContract, Confirmations: 4},
	}}
	matcher := NewEVMMatcher(historyFor(history), entities.AssetKindToken, 5)

	_, found, err := matcher.FindMatch(context.Background(), usdcPayment("50"))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestEVMMatcher_FailedTransferSkipped(t *testing.T) {
	history := &mockHistory{token: []blockchain.TransferRecord{
		{Hash: "0xaaa", To: testDestination, Value: "50000000", Confirmations: 6, Failed: true},
		{Hash: "0xbbb", To: testDestination, Value: "50000000", Confirmations: 6},
	}}
	matcher := NewEVMMatcher(historyFor(history), entities.AssetKindToken, 5)

	txRef, found, err := matcher.FindMatch(context.Background(), usdcPayment("50"))
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "0xbbb", txRef)
}

func TestEVMMatcher_RecipientComparedCaseInsensitive(t *testing.T) {
	// Explorer reports lowercase addresses, wallets are often checksummed
	history := &mockHistory{token: []blockchain.TransferRecord{
		{Hash: "0xaaa", To: "0xabcdef1111111111111111111111111111111111", Value: "50000000", Confirmations: 6},
	}}
	matcher := NewEVMMatcher(historyFor(history), entities.AssetKindToken, 5)

	payment := usdcPayment("50")
	payment.DestinationAddress = "0xABCDEF1111111111111111111111111111111111"

	_, found, err := matcher.FindMatch(context.Background(), payment)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestEVMMatcher_OtherRecipientSkipped(t *testing.T) {
	history := &mockHistory{token: []blockchain.TransferRecord{
		{Hash: "0xaaa", To: "0x2222222222222222222222222222222222222222", Value: "50000000", Confirmations: 6},
	}}
	matcher := NewEVMMatcher(historyFor(history), entities.AssetKindToken, 5)

	_, found, err := matcher.FindMatch(context.Background(), usdcPayment("50"))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestEVMMatcher_NativeMatch(t *testing.T) {
	history := &mockHistory{native: []blockchain.TransferRecord{
		{Hash: "0xccc", To: testDestination, Value: "15625000000000000", Confirmations: 12},
	}}
	matcher := NewEVMMatcher(historyFor(history), entities.AssetKindNative, 5)

	payment := &entities.PaymentRequest{
		ID: uuid.New(),
		Asset: &entities.SelectedAsset{
			Network:  "ethereum",
			Symbol:   "ETH",
			Kind:     entities.AssetKindNative,
			Decimals: 18,
		},
		DestinationAddress: testDestination,
		ExpectedAmount:     decimal.RequireFromString("0.015625"),
		Status:             entities.PaymentStatusPending,
	}

	txRef, found, err := matcher.FindMatch(context.Background(), payment)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "0xccc", txRef)
}

func TestEVMMatcher_HistoryErrorPropagates(t *testing.T) {
	history := &mockHistory{err: errors.New("rate limited")}
	matcher := NewEVMMatcher(historyFor(history), entities.AssetKindToken, 5)

	_, found, err := matcher.FindMatch(context.Background(), usdcPayment("50"))
	assert.Error(t, err)
	assert.False(t, found)
}
