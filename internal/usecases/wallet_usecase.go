package usecases

import (
	"context"

	"chainpay.backend/internal/domain/entities"
	domainerrors "chainpay.backend/internal/domain/errors"
	"chainpay.backend/internal/domain/repositories"
	"chainpay.backend/pkg/utils"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
)

// WalletUsecase manages the merchant wallet directory consumed at
// asset-selection time.
type WalletUsecase struct {
	walletRepo repositories.WalletRepository
	assets     *AssetRegistry
}

// NewWalletUsecase creates a new wallet usecase
func NewWalletUsecase(walletRepo repositories.WalletRepository, assets *AssetRegistry) *WalletUsecase {
	return &WalletUsecase{
		walletRepo: walletRepo,
		assets:     assets,
	}
}

// AddWallet registers a destination address for one network/currency pair
func (u *WalletUsecase) AddWallet(ctx context.Context, merchantID uuid.UUID, network, currency, address string) (*entities.Wallet, error) {
	descriptor, err := u.assets.Resolve(network, currency)
	if err != nil {
		return nil, err
	}

	if err := validateAddress(descriptor.Family, address); err != nil {
		return nil, err
	}

	wallet := &entities.Wallet{
		ID:         utils.GenerateUUIDv7(),
		MerchantID: merchantID,
		Network:    descriptor.Network,
		Currency:   descriptor.Symbol,
		Address:    address,
		IsActive:   true,
	}

	if err := u.walletRepo.Create(ctx, wallet); err != nil {
		return nil, err
	}

	return wallet, nil
}

// ListWallets returns the merchant's active wallets
func (u *WalletUsecase) ListWallets(ctx context.Context, merchantID uuid.UUID) ([]*entities.Wallet, error) {
	return u.walletRepo.ListActive(ctx, merchantID)
}

func validateAddress(family entities.NetworkFamily, address string) error {
	switch family {
	case entities.NetworkFamilyEVM:
		if !common.IsHexAddress(address) {
			return domainerrors.BadRequest("invalid EVM address")
		}
	case entities.NetworkFamilySolana:
		if _, err := solana.PublicKeyFromBase58(address); err != nil {
			return domainerrors.BadRequest("invalid Solana address")
		}
	default:
		return domainerrors.ErrUnsupportedNetwork
	}
	return nil
}
