package entities

// NetworkFamily selects the matching strategy for a network
type NetworkFamily string

const (
	NetworkFamilyEVM    NetworkFamily = "evm"
	NetworkFamilySolana NetworkFamily = "solana"
)

// AssetKind distinguishes a chain's native coin from a fungible token
type AssetKind string

const (
	AssetKindNative AssetKind = "native"
	AssetKindToken  AssetKind = "token"
)

// AssetDescriptor describes a payable asset on a specific network.
// ContractOrMint is empty for native coins; for tokens it is the ERC-20
// contract address on EVM networks and the SPL mint address on Solana.
// Decimals is the on-chain integer precision; DisplayDecimals is the
// precision shown to payers (and used for expected-amount rounding).
type AssetDescriptor struct {
	Network         string        `json:"network"`
	Family          NetworkFamily `json:"family"`
	Symbol          string        `json:"symbol"`
	Kind            AssetKind     `json:"kind"`
	ContractOrMint  string        `json:"contractOrMint,omitempty"`
	Decimals        int           `json:"decimals"`
	DisplayDecimals int32         `json:"displayDecimals"`
}
