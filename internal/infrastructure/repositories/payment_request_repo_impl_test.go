package repositories

import (
	"context"
	"testing"
	"time"

	"chainpay.backend/internal/domain/entities"
	domainerrors "chainpay.backend/internal/domain/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedPaymentRequest(t *testing.T, repo *PaymentRequestRepositoryImpl, merchantID uuid.UUID, expiresAt time.Time) *entities.PaymentRequest {
	t.Helper()
	req := &entities.PaymentRequest{
		ID:            uuid.New(),
		MerchantID:    merchantID,
		FaceAmountUSD: decimal.RequireFromString("50"),
		Description:   "test order",
		Status:        entities.PaymentStatusPending,
		ExpiresAt:     expiresAt,
	}
	require.NoError(t, repo.Create(context.Background(), req))
	return req
}

func usdcSelection() *entities.SelectedAsset {
	return &entities.SelectedAsset{
		Network:        "ethereum",
		Symbol:         "USDC",
		Kind:           entities.AssetKindToken,
		ContractOrMint: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
		Decimals:       6,
	}
}

func TestPaymentRequestRepository_CreateAndGetByID(t *testing.T) {
	db := newTestDB(t)
	createPaymentRequestTable(t, db)
	repo := NewPaymentRequestRepository(db)
	ctx := context.Background()

	created := seedPaymentRequest(t, repo, uuid.New(), time.Now().Add(5*time.Minute))

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, entities.PaymentStatusPending, got.Status)
	assert.True(t, got.FaceAmountUSD.Equal(decimal.RequireFromString("50")))
	assert.Nil(t, got.Asset)
	assert.False(t, got.HasSelection())
}

func TestPaymentRequestRepository_GetByIDNotFound(t *testing.T) {
	db := newTestDB(t)
	createPaymentRequestTable(t, db)
	repo := NewPaymentRequestRepository(db)

	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestPaymentRequestRepository_UpdateSelection(t *testing.T) {
	db := newTestDB(t)
	createPaymentRequestTable(t, db)
	repo := NewPaymentRequestRepository(db)
	ctx := context.Background()

	req := seedPaymentRequest(t, repo, uuid.New(), time.Now().Add(5*time.Minute))
	quotedAt := time.Now()

	won, err := repo.UpdateSelection(ctx, req.ID, usdcSelection(), "0xabc", decimal.RequireFromString("50.000000"), quotedAt)
	require.NoError(t, err)
	assert.True(t, won)

	got, err := repo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Asset)
	assert.Equal(t, "USDC", got.Asset.Symbol)
	assert.Equal(t, 6, got.Asset.Decimals)
	assert.Equal(t, "0xabc", got.DestinationAddress)
	assert.True(t, got.ExpectedAmount.Equal(decimal.RequireFromString("50")))
	assert.True(t, got.HasSelection())
	require.NotNil(t, got.QuotedAt)
}

func TestPaymentRequestRepository_UpdateSelectionRejectedWhenTerminal(t *testing.T) {
	db := newTestDB(t)
	createPaymentRequestTable(t, db)
	repo := NewPaymentRequestRepository(db)
	ctx := context.Background()

	req := seedPaymentRequest(t, repo, uuid.New(), time.Now().Add(5*time.Minute))

	won, err := repo.MarkFailed(ctx, req.ID)
	require.NoError(t, err)
	require.True(t, won)

	won, err = repo.UpdateSelection(ctx, req.ID, usdcSelection(), "0xabc", decimal.RequireFromString("50"), time.Now())
	require.NoError(t, err)
	assert.False(t, won)
}

func TestPaymentRequestRepository_MarkCompletedOnlyOnce(t *testing.T) {
	db := newTestDB(t)
	createPaymentRequestTable(t, db)
	repo := NewPaymentRequestRepository(db)
	ctx := context.Background()

	req := seedPaymentRequest(t, repo, uuid.New(), time.Now().Add(5*time.Minute))

	won, err := repo.MarkCompleted(ctx, req.ID, "0xdeadbeef")
	require.NoError(t, err)
	assert.True(t, won)

	// second writer loses the race, the recorded tx ref stays put
	won, err = repo.MarkCompleted(ctx, req.ID, "0xother")
	require.NoError(t, err)
	assert.False(t, won)

	won, err = repo.MarkFailed(ctx, req.ID)
	require.NoError(t, err)
	assert.False(t, won)

	got, err := repo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.PaymentStatusCompleted, got.Status)
	assert.Equal(t, "0xdeadbeef", got.MatchedTxRef.String)
}

func TestPaymentRequestRepository_MarkFailedOnlyOnce(t *testing.T) {
	db := newTestDB(t)
	createPaymentRequestTable(t, db)
	repo := NewPaymentRequestRepository(db)
	ctx := context.Background()

	req := seedPaymentRequest(t, repo, uuid.New(), time.Now().Add(5*time.Minute))

	won, err := repo.MarkFailed(ctx, req.ID)
	require.NoError(t, err)
	assert.True(t, won)

	won, err = repo.MarkCompleted(ctx, req.ID, "0xdeadbeef")
	require.NoError(t, err)
	assert.False(t, won)

	got, err := repo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.PaymentStatusFailed, got.Status)
	assert.False(t, got.MatchedTxRef.Valid)
}

func TestPaymentRequestRepository_UpdateExpectedAmount(t *testing.T) {
	db := newTestDB(t)
	createPaymentRequestTable(t, db)
	repo := NewPaymentRequestRepository(db)
	ctx := context.Background()

	req := seedPaymentRequest(t, repo, uuid.New(), time.Now().Add(5*time.Minute))
	_, err := repo.UpdateSelection(ctx, req.ID, usdcSelection(), "0xabc", decimal.RequireFromString("50"), time.Now().Add(-time.Minute))
	require.NoError(t, err)

	won, err := repo.UpdateExpectedAmount(ctx, req.ID, decimal.RequireFromString("51.25"), time.Now())
	require.NoError(t, err)
	assert.True(t, won)

	got, err := repo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.True(t, got.ExpectedAmount.Equal(decimal.RequireFromString("51.25")))
	assert.True(t, got.FaceAmountUSD.Equal(decimal.RequireFromString("50")), "face amount never changes")
}

func TestPaymentRequestRepository_ListExpiredPending(t *testing.T) {
	db := newTestDB(t)
	createPaymentRequestTable(t, db)
	repo := NewPaymentRequestRepository(db)
	ctx := context.Background()
	now := time.Now()

	expired := seedPaymentRequest(t, repo, uuid.New(), now.Add(-time.Minute))
	seedPaymentRequest(t, repo, uuid.New(), now.Add(5*time.Minute))

	alreadyDone := seedPaymentRequest(t, repo, uuid.New(), now.Add(-time.Minute))
	_, err := repo.MarkCompleted(ctx, alreadyDone.ID, "0xdeadbeef")
	require.NoError(t, err)

	got, err := repo.ListExpiredPending(ctx, now, 100)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, expired.ID, got[0].ID)
}

func TestPaymentRequestRepository_ListPendingWithSelection(t *testing.T) {
	db := newTestDB(t)
	createPaymentRequestTable(t, db)
	repo := NewPaymentRequestRepository(db)
	ctx := context.Background()

	selected := seedPaymentRequest(t, repo, uuid.New(), time.Now().Add(5*time.Minute))
	_, err := repo.UpdateSelection(ctx, selected.ID, usdcSelection(), "0xabc", decimal.RequireFromString("50"), time.Now())
	require.NoError(t, err)

	// no selection yet, must not show up in the match scan
	seedPaymentRequest(t, repo, uuid.New(), time.Now().Add(5*time.Minute))

	got, err := repo.ListPendingWithSelection(ctx, 100)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, selected.ID, got[0].ID)
	assert.True(t, got[0].HasSelection())
}

func TestPaymentRequestRepository_ListStaleQuotes(t *testing.T) {
	db := newTestDB(t)
	createPaymentRequestTable(t, db)
	repo := NewPaymentRequestRepository(db)
	ctx := context.Background()
	now := time.Now()

	stale := seedPaymentRequest(t, repo, uuid.New(), now.Add(5*time.Minute))
	_, err := repo.UpdateSelection(ctx, stale.ID, usdcSelection(), "0xabc", decimal.RequireFromString("50"), now.Add(-2*time.Minute))
	require.NoError(t, err)

	fresh := seedPaymentRequest(t, repo, uuid.New(), now.Add(5*time.Minute))
	_, err = repo.UpdateSelection(ctx, fresh.ID, usdcSelection(), "0xdef", decimal.RequireFromString("50"), now)
	require.NoError(t, err)

	got, err := repo.ListStaleQuotes(ctx, now.Add(-time.Minute), 100)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, stale.ID, got[0].ID)
}

func TestPaymentRequestRepository_GetByMerchantID(t *testing.T) {
	db := newTestDB(t)
	createPaymentRequestTable(t, db)
	repo := NewPaymentRequestRepository(db)
	ctx := context.Background()

	merchantID := uuid.New()
	for i := 0; i < 3; i++ {
		seedPaymentRequest(t, repo, merchantID, time.Now().Add(5*time.Minute))
	}
	seedPaymentRequest(t, repo, uuid.New(), time.Now().Add(5*time.Minute))

	got, total, err := repo.GetByMerchantID(ctx, merchantID, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, got, 2)

	got, total, err = repo.GetByMerchantID(ctx, merchantID, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, got, 1)
}
