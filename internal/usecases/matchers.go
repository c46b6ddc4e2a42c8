package usecases

import (
	"context"

	"chainpay.backend/internal/domain/entities"
	domainerrors "chainpay.backend/internal/domain/errors"
)

// TransferMatcher decides whether a qualifying inbound transfer exists for a
// pending payment. Implementations are read-only against chain data; the
// caller owns the resulting state transition.
type TransferMatcher interface {
	// FindMatch returns the chain reference of the first qualifying
	// transfer, or found=false when none exists yet.
	FindMatch(ctx context.Context, request *entities.PaymentRequest) (txRef string, found bool, err error)
}

type matcherKey struct {
	family entities.NetworkFamily
	kind   entities.AssetKind
}

// MatcherRegistry selects the matcher implementation for a payment by its
// (network family, asset kind) pair. Adding a chain family is additive:
// register another implementation, no branching changes.
type MatcherRegistry struct {
	assets   *AssetRegistry
	matchers map[matcherKey]TransferMatcher
}

// NewMatcherRegistry creates an empty matcher registry
func NewMatcherRegistry(assets *AssetRegistry) *MatcherRegistry {
	return &MatcherRegistry{
		assets:   assets,
		matchers: make(map[matcherKey]TransferMatcher),
	}
}

// Register installs a matcher for a network family and asset kind
func (r *MatcherRegistry) Register(family entities.NetworkFamily, kind entities.AssetKind, matcher TransferMatcher) {
	r.matchers[matcherKey{family: family, kind: kind}] = matcher
}

// ForPayment returns the matcher for the payment's selected asset
func (r *MatcherRegistry) ForPayment(request *entities.PaymentRequest) (TransferMatcher, error) {
	if !request.HasSelection() {
		return nil, domainerrors.ErrBadRequest
	}

	family, err := r.assets.Family(request.Asset.Network)
	if err != nil {
		return nil, err
	}

	matcher, ok := r.matchers[matcherKey{family: family, kind: request.Asset.Kind}]
	if !ok {
		return nil, domainerrors.ErrUnsupportedNetwork
	}
	return matcher, nil
}
