package repositories

import (
	"context"
	"errors"
	"time"

	"chainpay.backend/internal/domain/entities"
	domainerrors "chainpay.backend/internal/domain/errors"
	"chainpay.backend/internal/infrastructure/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentRequestRepositoryImpl implements PaymentRequestRepository
type PaymentRequestRepositoryImpl struct {
	db *gorm.DB
}

func NewPaymentRequestRepository(db *gorm.DB) *PaymentRequestRepositoryImpl {
	return &PaymentRequestRepositoryImpl{db: db}
}

func (r *PaymentRequestRepositoryImpl) Create(ctx context.Context, req *entities.PaymentRequest) error {
	m := &models.PaymentRequest{
		ID:            req.ID,
		MerchantID:    req.MerchantID,
		FaceAmountUSD: req.FaceAmountUSD.String(),
		Description:   req.Description,
		Status:        string(req.Status),
		ExpiresAt:     req.ExpiresAt,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *PaymentRequestRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.PaymentRequest, error) {
	var m models.PaymentRequest
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

func (r *PaymentRequestRepositoryImpl) GetByMerchantID(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]*entities.PaymentRequest, int, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.PaymentRequest{}).
		Where("merchant_id = ?", merchantID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.PaymentRequest
	if err := r.db.WithContext(ctx).
		Where("merchant_id = ?", merchantID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	var requests []*entities.PaymentRequest
	for _, m := range ms {
		model := m
		requests = append(requests, r.toEntity(&model))
	}
	return requests, int(total), nil
}

func (r *PaymentRequestRepositoryImpl) UpdateSelection(ctx context.Context, id uuid.UUID, asset *entities.SelectedAsset, destination string, expectedAmount decimal.Decimal, quotedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.PaymentRequest{}).
		Where("id = ? AND status = ?", id, entities.PaymentStatusPending).
		Updates(map[string]interface{}{
			"network":             asset.Network,
			"symbol":              asset.Symbol,
			"asset_kind":          string(asset.Kind),
			"contract_or_mint":    asset.ContractOrMint,
			"decimals":            asset.Decimals,
			"destination_address": destination,
			"expected_amount":     expectedAmount.String(),
			"quoted_at":           quotedAt,
			"updated_at":          time.Now(),
		})
	return res.RowsAffected > 0, res.Error
}

func (r *PaymentRequestRepositoryImpl) UpdateExpectedAmount(ctx context.Context, id uuid.UUID, expectedAmount decimal.Decimal, quotedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.PaymentRequest{}).
		Where("id = ? AND status = ?", id, entities.PaymentStatusPending).
		Updates(map[string]interface{}{
			"expected_amount": expectedAmount.String(),
			"quoted_at":       quotedAt,
			"updated_at":      time.Now(),
		})
	return res.RowsAffected > 0, res.Error
}

// MarkCompleted is a conditional write: only one caller can win the
// pending -> completed transition even when sweep and on-demand checks race.
func (r *PaymentRequestRepositoryImpl) MarkCompleted(ctx context.Context, id uuid.UUID, txRef string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.PaymentRequest{}).
		Where("id = ? AND status = ?", id, entities.PaymentStatusPending).
		Updates(map[string]interface{}{
			"status":         entities.PaymentStatusCompleted,
			"matched_tx_ref": txRef,
			"updated_at":     time.Now(),
		})
	return res.RowsAffected > 0, res.Error
}

func (r *PaymentRequestRepositoryImpl) MarkFailed(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.PaymentRequest{}).
		Where("id = ? AND status = ?", id, entities.PaymentStatusPending).
		Updates(map[string]interface{}{
			"status":     entities.PaymentStatusFailed,
			"updated_at": time.Now(),
		})
	return res.RowsAffected > 0, res.Error
}

func (r *PaymentRequestRepositoryImpl) ListExpiredPending(ctx context.Context, asOf time.Time, limit int) ([]*entities.PaymentRequest, error) {
	var ms []models.PaymentRequest
	if err := r.db.WithContext(ctx).
		Where("status = ? AND expires_at < ?", entities.PaymentStatusPending, asOf).
		Limit(limit).
		Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toEntities(ms), nil
}

func (r *PaymentRequestRepositoryImpl) ListPendingWithSelection(ctx context.Context, limit int) ([]*entities.PaymentRequest, error) {
	var ms []models.PaymentRequest
	if err := r.db.WithContext(ctx).
		Where("status = ? AND destination_address <> ''", entities.PaymentStatusPending).
		Limit(limit).
		Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toEntities(ms), nil
}

func (r *PaymentRequestRepositoryImpl) ListStaleQuotes(ctx context.Context, cutoff time.Time, limit int) ([]*entities.PaymentRequest, error) {
	var ms []models.PaymentRequest
	if err := r.db.WithContext(ctx).
		Where("status = ? AND destination_address <> '' AND quoted_at < ?", entities.PaymentStatusPending, cutoff).
		Limit(limit).
		Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toEntities(ms), nil
}

func (r *PaymentRequestRepositoryImpl) toEntities(ms []models.PaymentRequest) []*entities.PaymentRequest {
	var requests []*entities.PaymentRequest
	for _, m := range ms {
		model := m
		requests = append(requests, r.toEntity(&model))
	}
	return requests
}

func (r *PaymentRequestRepositoryImpl) toEntity(m *models.PaymentRequest) *entities.PaymentRequest {
	e := &entities.PaymentRequest{
		ID:                 m.ID,
		MerchantID:         m.MerchantID,
		FaceAmountUSD:      parseDecimal(m.FaceAmountUSD),
		Description:        m.Description,
		DestinationAddress: m.DestinationAddress,
		ExpectedAmount:     parseDecimal(m.ExpectedAmount),
		Status:             entities.PaymentStatus(m.Status),
		MatchedTxRef:       m.MatchedTxRef,
		QuotedAt:           m.QuotedAt,
		ExpiresAt:          m.ExpiresAt,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
	if m.Network != "" {
		e.Asset = &entities.SelectedAsset{
			Network:        m.Network,
			Symbol:         m.Symbol,
			Kind:           entities.AssetKind(m.AssetKind),
			ContractOrMint: m.ContractOrMint,
			Decimals:       m.Decimals,
		}
	}
	return e
}

func parseDecimal(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
