package usecases

import (
	"strings"

	"chainpay.backend/internal/domain/entities"
	domainerrors "chainpay.backend/internal/domain/errors"

	"github.com/shopspring/decimal"
)

// AssetRegistry is the static table of payable assets per network
type AssetRegistry struct {
	families map[string]entities.NetworkFamily
	assets   map[string]map[string]entities.AssetDescriptor
}

// NewAssetRegistry creates a registry seeded with the supported assets
func NewAssetRegistry() *AssetRegistry {
	registry := &AssetRegistry{
		families: map[string]entities.NetworkFamily{
			"ethereum": entities.NetworkFamilyEVM,
			"base":     entities.NetworkFamilyEVM,
			"bsc":      entities.NetworkFamilyEVM,
			"solana":   entities.NetworkFamilySolana,
		},
		assets: make(map[string]map[string]entities.AssetDescriptor),
	}

	registry.add(entities.AssetDescriptor{
		Network: "ethereum", Family: entities.NetworkFamilyEVM, Symbol: "ETH",
		Kind: entities.AssetKindNative, Decimals: 18, DisplayDecimals: 8,
	})
	registry.add(entities.AssetDescriptor{
		Network: "ethereum", Family: entities.NetworkFamilyEVM, Symbol: "USDC",
		Kind: entities.AssetKindToken, ContractOrMint: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
		Decimals: 6, DisplayDecimals: 6,
	})
	registry.add(entities.AssetDescriptor{
		Network: "ethereum", Family: entities.NetworkFamilyEVM, Symbol: "USDT",
		Kind: entities.AssetKindToken, ContractOrMint: "0xdAC17F958D2ee523a2206206994597C13D831ec7",
		Decimals: 6, DisplayDecimals: 6,
	})
	registry.add(entities.AssetDescriptor{
		Network: "base", Family: entities.NetworkFamilyEVM, Symbol: "ETH",
		Kind: entities.AssetKindNative, Decimals: 18, DisplayDecimals: 8,
	})
	registry.add(entities.AssetDescriptor{
		Network: "base", Family: entities.NetworkFamilyEVM, Symbol: "USDC",
		Kind: entities.AssetKindToken, ContractOrMint: "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913",
		Decimals: 6, DisplayDecimals: 6,
	})
	registry.add(entities.AssetDescriptor{
		Network: "bsc", Family: entities.NetworkFamilyEVM, Symbol: "BNB",
		Kind: entities.AssetKindNative, Decimals: 18, DisplayDecimals: 8,
	})
	// Binance-pegged USDC uses 18 decimals, unlike the 6-decimal originals
	registry.add(entities.AssetDescriptor{
		Network: "bsc", Family: entities.NetworkFamilyEVM, Symbol: "USDC",
		Kind: entities.AssetKindToken, ContractOrMint: "0x8AC76a51cc950d9822D68b83fE1Ad97B32Cd580d",
		Decimals: 18, DisplayDecimals: 6,
	})
	registry.add(entities.AssetDescriptor{
		Network: "solana", Family: entities.NetworkFamilySolana, Symbol: "SOL",
		Kind: entities.AssetKindNative, Decimals: 9, DisplayDecimals: 9,
	})
	registry.add(entities.AssetDescriptor{
		Network: "solana", Family: entities.NetworkFamilySolana, Symbol: "USDC",
		Kind: entities.AssetKindToken, ContractOrMint: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
		Decimals: 6, DisplayDecimals: 6,
	})

	return registry
}

func (r *AssetRegistry) add(desc entities.AssetDescriptor) {
	network := strings.ToLower(desc.Network)
	if r.assets[network] == nil {
		r.assets[network] = make(map[string]entities.AssetDescriptor)
	}
	r.assets[network][strings.ToUpper(desc.Symbol)] = desc
}

// Resolve looks up the asset descriptor for a network and symbol
func (r *AssetRegistry) Resolve(network, symbol string) (entities.AssetDescriptor, error) {
	bySymbol, ok := r.assets[strings.ToLower(network)]
	if !ok {
		return entities.AssetDescriptor{}, domainerrors.ErrUnsupportedNetwork
	}
	desc, ok := bySymbol[strings.ToUpper(symbol)]
	if !ok {
		return entities.AssetDescriptor{}, domainerrors.ErrUnsupportedCurrency
	}
	return desc, nil
}

// Family returns the matching strategy family for a network
func (r *AssetRegistry) Family(network string) (entities.NetworkFamily, error) {
	family, ok := r.families[strings.ToLower(network)]
	if !ok {
		return "", domainerrors.ErrUnsupportedNetwork
	}
	return family, nil
}

// Networks returns the supported network identifiers
func (r *AssetRegistry) Networks() []string {
	networks := make([]string, 0, len(r.families))
	for network := range r.families {
		networks = append(networks, network)
	}
	return networks
}

// ToBaseUnits converts a human decimal amount to the integer string used
// on-chain. The conversion is exact; any fraction beyond the asset's
// precision is truncated, never rounded.
func ToBaseUnits(amount decimal.Decimal, decimals int) string {
	return amount.Shift(int32(decimals)).Truncate(0).BigInt().String()
}

// FromBaseUnits reconstructs the decimal amount from an on-chain integer string
func FromBaseUnits(baseUnits string, decimals int) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(baseUnits)
	if err != nil {
		return decimal.Zero, err
	}
	return value.Shift(-int32(decimals)), nil
}
