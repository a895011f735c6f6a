package types

// Network represents supported Aptos networks.
type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkTestnet Network = "testnet"
	NetworkDevnet  Network = "devnet"
)

// Fullnode REST endpoints per network.
var fullnodeURLs = map[Network]string{
	NetworkMainnet: "https://fullnode.mainnet.aptoslabs.com/v1",
	NetworkTestnet: "https://fullnode.testnet.aptoslabs.com/v1",
	NetworkDevnet:  "https://fullnode.devnet.aptoslabs.com/v1",
}

// FullnodeURL returns the default fullnode endpoint for the network,
// or an empty string for an unknown network.
func (n Network) FullnodeURL() string {
	return fullnodeURLs[n]
}

func (n Network) IsTestnet() bool {
	return n == NetworkTestnet || n == NetworkDevnet
}

func (n Network) String() string {
	return string(n)
}

// On-chain descriptors for the APT transfer every fee payment uses.
const (
	EntryFunctionPayload = "entry_function_payload"
	CoinTransferFunction = "0x1::coin::transfer"
	AptosCoinType        = "0x1::aptos_coin::AptosCoin"
	CoinStoreResource    = "0x1::coin::CoinStore<0x1::aptos_coin::AptosCoin>"
)
