package usecases

import (
	"context"
	"strconv"

	"chainpay.backend/internal/domain/entities"
	"chainpay.backend/internal/infrastructure/blockchain"
	"chainpay.backend/pkg/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SolanaReader reads confirmed transaction history for an address
type SolanaReader interface {
	RecentSignatures(ctx context.Context, address string, limit int) ([]blockchain.SignatureInfo, error)
	Transaction(ctx context.Context, signature string) (*blockchain.TransactionInfo, error)
}

const lamportDecimals = 9

// SolanaMatcher matches pending payments against recent Solana transactions.
// Native SOL is matched lamport-exact from the account balance delta. SPL
// token balances are only available as human-scaled UI amounts, so token
// matching tolerates a small absolute epsilon instead of exact equality.
type SolanaMatcher struct {
	reader   SolanaReader
	kind     entities.AssetKind
	pageSize int
	epsilon  decimal.Decimal
}

// NewSolanaMatcher creates a matcher for one Solana asset kind
func NewSolanaMatcher(reader SolanaReader, kind entities.AssetKind, pageSize int, epsilon decimal.Decimal) *SolanaMatcher {
	return &SolanaMatcher{
		reader:   reader,
		kind:     kind,
		pageSize: pageSize,
		epsilon:  epsilon,
	}
}

// FindMatch scans the most recent signatures for the destination, newest
// first, and returns the first qualifying transaction.
func (m *SolanaMatcher) FindMatch(ctx context.Context, request *entities.PaymentRequest) (string, bool, error) {
	signatures, err := m.reader.RecentSignatures(ctx, request.DestinationAddress, m.pageSize)
	if err != nil {
		return "", false, err
	}

	for _, sig := range signatures {
		if sig.Failed {
			continue
		}

		tx, err := m.reader.Transaction(ctx, sig.Signature)
		if err != nil {
			// A single unreadable transaction is no match this cycle
			logger.Warn(ctx, "failed to fetch solana transaction",
				zap.String("signature", sig.Signature),
				zap.Error(err),
			)
			continue
		}
		if tx.Failed {
			continue
		}

		var matched bool
		if m.kind == entities.AssetKindToken {
			matched = m.matchesTokenTransfer(tx, request)
		} else {
			matched = m.matchesNativeTransfer(tx, request)
		}
		if matched {
			return sig.Signature, true, nil
		}
	}

	return "", false, nil
}

// matchesNativeTransfer compares the destination's lamport balance delta
// against the expected amount for exact equality.
func (m *SolanaMatcher) matchesNativeTransfer(tx *blockchain.TransactionInfo, request *entities.PaymentRequest) bool {
	index := -1
	for i, key := range tx.AccountKeys {
		if key == request.DestinationAddress {
			index = i
			break
		}
	}
	if index < 0 || index >= len(tx.PreBalances) || index >= len(tx.PostBalances) {
		return false
	}

	pre := tx.PreBalances[index]
	post := tx.PostBalances[index]
	if post <= pre {
		return false
	}

	received := strconv.FormatUint(post-pre, 10)
	return received == ToBaseUnits(request.ExpectedAmount, lamportDecimals)
}

// matchesTokenTransfer compares pre and post token balances for the
// (owner = destination, mint = asset mint) pair.
func (m *SolanaMatcher) matchesTokenTransfer(tx *blockchain.TransactionInfo, request *entities.PaymentRequest) bool {
	mint := request.Asset.ContractOrMint

	post, ok := tokenBalanceFor(tx.PostTokenBalances, request.DestinationAddress, mint)
	if !ok {
		return false
	}
	// Absent pre balance means the token account was created by this
	// transaction; the delta is the full post amount.
	pre, _ := tokenBalanceFor(tx.PreTokenBalances, request.DestinationAddress, mint)

	delta := post.Sub(pre)
	if !delta.IsPositive() {
		return false
	}

	return delta.Sub(request.ExpectedAmount).Abs().LessThanOrEqual(m.epsilon)
}

func tokenBalanceFor(balances []blockchain.TokenBalanceInfo, owner, mint string) (decimal.Decimal, bool) {
	for _, balance := range balances {
		if balance.Owner != owner || balance.Mint != mint {
			continue
		}
		amount, err := decimal.NewFromString(balance.UIAmount)
		if err != nil {
			return decimal.Zero, false
		}
		return amount, true
	}
	return decimal.Zero, false
}
