package usecases

import (
	"context"
	"strings"
	"time"

	"chainpay.backend/internal/domain/entities"
	domainerrors "chainpay.backend/internal/domain/errors"
	"chainpay.backend/internal/domain/repositories"
	"chainpay.backend/pkg/logger"
	"chainpay.backend/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentUsecase handles the payment request lifecycle up to reconciliation:
// creation, asset selection with quoting, and quote refresh.
type PaymentUsecase struct {
	paymentRepo  repositories.PaymentRequestRepository
	walletRepo   repositories.WalletRepository
	assets       *AssetRegistry
	quotes       *QuoteManager
	expiryWindow time.Duration
	now          func() time.Time
}

// NewPaymentUsecase creates a new payment usecase
func NewPaymentUsecase(
	paymentRepo repositories.PaymentRequestRepository,
	walletRepo repositories.WalletRepository,
	assets *AssetRegistry,
	quotes *QuoteManager,
	expiryWindow time.Duration,
) *PaymentUsecase {
	return &PaymentUsecase{
		paymentRepo:  paymentRepo,
		walletRepo:   walletRepo,
		assets:       assets,
		quotes:       quotes,
		expiryWindow: expiryWindow,
		now:          time.Now,
	}
}

// CreatePayment creates a pending payment request for a USD face amount.
// No asset is selected yet; the expiry clock starts now.
func (u *PaymentUsecase) CreatePayment(ctx context.Context, merchantID uuid.UUID, faceAmountUSD decimal.Decimal, description string) (*entities.PaymentRequest, error) {
	if !faceAmountUSD.IsPositive() {
		return nil, domainerrors.BadRequest("face amount must be positive")
	}

	now := u.now()
	payment := &entities.PaymentRequest{
		ID:            utils.GenerateUUIDv7(),
		MerchantID:    merchantID,
		FaceAmountUSD: faceAmountUSD,
		Description:   description,
		Status:        entities.PaymentStatusPending,
		ExpiresAt:     now.Add(u.expiryWindow),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := u.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	logger.Info(ctx, "payment request created",
		zap.String("payment_id", payment.ID.String()),
		zap.String("merchant_id", merchantID.String()),
		zap.String("face_amount_usd", faceAmountUSD.String()),
	)

	return payment, nil
}

// SelectAsset records the payer's choice of network, currency and destination
// address, quoting the USD face amount into the asset at the current price.
// Re-selection is allowed while the payment is pending; each selection
// recomputes the expected amount.
func (u *PaymentUsecase) SelectAsset(ctx context.Context, paymentID uuid.UUID, network, address, currency string) (*entities.PaymentRequest, error) {
	payment, err := u.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status.IsTerminal() {
		return nil, domainerrors.ErrPaymentTerminal
	}

	descriptor, err := u.assets.Resolve(network, currency)
	if err != nil {
		return nil, err
	}

	destination, err := u.resolveDestination(ctx, payment.MerchantID, descriptor, address)
	if err != nil {
		return nil, err
	}

	amount, quote, err := u.quotes.ToAssetAmount(ctx, payment.FaceAmountUSD, descriptor.Symbol, descriptor.DisplayDecimals)
	if err != nil {
		return nil, err
	}

	selected := &entities.SelectedAsset{
		Network:        descriptor.Network,
		Symbol:         descriptor.Symbol,
		Kind:           descriptor.Kind,
		ContractOrMint: descriptor.ContractOrMint,
		Decimals:       descriptor.Decimals,
	}

	won, err := u.paymentRepo.UpdateSelection(ctx, paymentID, selected, destination, amount, quote.ObservedAt)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, domainerrors.ErrPaymentTerminal
	}

	logger.Info(ctx, "payment asset selected",
		zap.String("payment_id", paymentID.String()),
		zap.String("network", descriptor.Network),
		zap.String("symbol", descriptor.Symbol),
		zap.String("expected_amount", amount.String()),
	)

	return u.paymentRepo.GetByID(ctx, paymentID)
}

// resolveDestination picks the destination address from the merchant's
// active wallets. An explicit address must belong to the wallet directory;
// an empty one selects the first active wallet for the network/currency.
func (u *PaymentUsecase) resolveDestination(ctx context.Context, merchantID uuid.UUID, descriptor entities.AssetDescriptor, address string) (string, error) {
	wallets, err := u.walletRepo.ListActive(ctx, merchantID)
	if err != nil {
		return "", err
	}

	for _, wallet := range wallets {
		if !strings.EqualFold(wallet.Network, descriptor.Network) {
			continue
		}
		if !strings.EqualFold(wallet.Currency, descriptor.Symbol) {
			continue
		}
		if address == "" || strings.EqualFold(wallet.Address, address) {
			return wallet.Address, nil
		}
	}

	return "", domainerrors.ErrNoActiveWallet
}

// GetPayment returns the payment request by id
func (u *PaymentUsecase) GetPayment(ctx context.Context, id uuid.UUID) (*entities.PaymentRequest, error) {
	return u.paymentRepo.GetByID(ctx, id)
}

// ListPayments returns a merchant's payment requests, newest first
func (u *PaymentUsecase) ListPayments(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]*entities.PaymentRequest, int, error) {
	return u.paymentRepo.GetByMerchantID(ctx, merchantID, limit, offset)
}

// RefreshStaleQuotes re-quotes pending payments whose expected amount was
// computed before the cutoff, so displayed amounts track the market. Only
// pending payments are touched; the conditional write drops any payment
// that reached a terminal status in the meantime.
func (u *PaymentUsecase) RefreshStaleQuotes(ctx context.Context, staleAfter time.Duration, limit int) {
	cutoff := u.now().Add(-staleAfter)

	payments, err := u.paymentRepo.ListStaleQuotes(ctx, cutoff, limit)
	if err != nil {
		logger.Error(ctx, "failed to list stale quotes", zap.Error(err))
		return
	}

	for _, payment := range payments {
		if payment.Asset == nil {
			continue
		}

		descriptor, err := u.assets.Resolve(payment.Asset.Network, payment.Asset.Symbol)
		if err != nil {
			continue
		}

		amount, quote, err := u.quotes.ToAssetAmount(ctx, payment.FaceAmountUSD, descriptor.Symbol, descriptor.DisplayDecimals)
		if err != nil {
			logger.Warn(ctx, "failed to refresh quote",
				zap.String("payment_id", payment.ID.String()),
				zap.Error(err),
			)
			continue
		}

		if _, err := u.paymentRepo.UpdateExpectedAmount(ctx, payment.ID, amount, quote.ObservedAt); err != nil {
			logger.Error(ctx, "failed to store refreshed quote",
				zap.String("payment_id", payment.ID.String()),
				zap.Error(err),
			)
		}
	}
}
