package usecases

import (
	"context"

	"chainpay.backend/internal/domain/entities"
	"chainpay.backend/internal/infrastructure/blockchain"

	"github.com/ethereum/go-ethereum/common"
)

// AccountHistory is an Etherscan-compatible account-history source
type AccountHistory interface {
	TokenTransfers(ctx context.Context, address, contract string) ([]blockchain.TransferRecord, error)
	NativeTransfers(ctx context.Context, address string) ([]blockchain.TransferRecord, error)
}

// EVMMatcher matches pending payments against EVM account history. Transfer
// values are integer base units reported verbatim, so matching is
// amount-exact: the transferred amount must equal the expected amount to the
// base unit.
type EVMMatcher struct {
	historyFor    func(network string) (AccountHistory, error)
	kind          entities.AssetKind
	confirmations int64
}

// NewEVMMatcher creates a matcher for one EVM asset kind
func NewEVMMatcher(historyFor func(network string) (AccountHistory, error), kind entities.AssetKind, confirmations int64) *EVMMatcher {
	return &EVMMatcher{
		historyFor:    historyFor,
		kind:          kind,
		confirmations: confirmations,
	}
}

// FindMatch scans recent transfers to the destination address, newest first
func (m *EVMMatcher) FindMatch(ctx context.Context, request *entities.PaymentRequest) (string, bool, error) {
	asset := request.Asset

	history, err := m.historyFor(asset.Network)
	if err != nil {
		return "", false, err
	}

	var records []blockchain.TransferRecord
	if m.kind == entities.AssetKindToken {
		records, err = history.TokenTransfers(ctx, request.DestinationAddress, asset.ContractOrMint)
	} else {
		records, err = history.NativeTransfers(ctx, request.DestinationAddress)
	}
	if err != nil {
		return "", false, err
	}

	expectedBase := ToBaseUnits(request.ExpectedAmount, asset.Decimals)
	destination := common.HexToAddress(request.DestinationAddress)

	for _, record := range records {
		if record.Failed {
			continue
		}
		if common.HexToAddress(record.To) != destination {
			continue
		}
		if record.Value != expectedBase {
			continue
		}
		if record.Confirmations < m.confirmations {
			continue
		}
		return record.Hash, true, nil
	}

	return "", false, nil
}
