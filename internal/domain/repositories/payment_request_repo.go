package repositories

import (
	"context"
	"time"

	"chainpay.backend/internal/domain/entities"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentRequestRepository is the authoritative ledger for payment requests.
// All terminal transitions are conditional writes guarded by "current status
// is pending"; the bool result reports whether this caller won the write.
type PaymentRequestRepository interface {
	Create(ctx context.Context, request *entities.PaymentRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.PaymentRequest, error)
	GetByMerchantID(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]*entities.PaymentRequest, int, error)

	// UpdateSelection sets the asset, destination and expected amount while
	// the payment is still pending. Returns false if the payment left
	// pending in the meantime.
	UpdateSelection(ctx context.Context, id uuid.UUID, asset *entities.SelectedAsset, destination string, expectedAmount decimal.Decimal, quotedAt time.Time) (bool, error)

	// UpdateExpectedAmount refreshes the quoted amount; pending-guarded.
	UpdateExpectedAmount(ctx context.Context, id uuid.UUID, expectedAmount decimal.Decimal, quotedAt time.Time) (bool, error)

	// MarkCompleted transitions pending -> completed with the matched chain
	// reference. No-op (false) when the record is already terminal.
	MarkCompleted(ctx context.Context, id uuid.UUID, txRef string) (bool, error)

	// MarkFailed transitions pending -> failed. No-op (false) when terminal.
	MarkFailed(ctx context.Context, id uuid.UUID) (bool, error)

	// ListExpiredPending returns pending requests whose expiry passed before asOf.
	ListExpiredPending(ctx context.Context, asOf time.Time, limit int) ([]*entities.PaymentRequest, error)

	// ListPendingWithSelection returns pending requests that have an asset selected.
	ListPendingWithSelection(ctx context.Context, limit int) ([]*entities.PaymentRequest, error)

	// ListStaleQuotes returns pending selected requests quoted before cutoff.
	ListStaleQuotes(ctx context.Context, cutoff time.Time, limit int) ([]*entities.PaymentRequest, error)
}
