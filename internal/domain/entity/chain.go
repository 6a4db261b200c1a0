package entity

// NativeCurrency describes the gas currency of a chain.
type NativeCurrency struct {
	Name     string `json:"name" yaml:"name"`
	Symbol   string `json:"symbol" yaml:"symbol"`
	Decimals uint8  `json:"decimals" yaml:"decimals"`
}

// Chain holds the static definition of an EVM network.
type Chain struct {
	ID               uint64         `json:"chainId" yaml:"chainId"`
	Name             string         `json:"name" yaml:"name"`
	Identifier       string         `json:"identifier" yaml:"identifier"`
	NativeCurrency   NativeCurrency `json:"nativeCurrency" yaml:"nativeCurrency"`
	RPCURLs          []string       `json:"rpcUrls" yaml:"rpcUrls"`
	BlockExplorerURL string         `json:"blockExplorerUrl,omitempty" yaml:"blockExplorerUrl,omitempty"`
	// PlatformID is the CoinGecko asset platform; empty when token prices are not supported.
	PlatformID string `json:"platformId,omitempty" yaml:"platformId,omitempty"`
	// NativeCoinID is the CoinGecko coin id of the native currency.
	NativeCoinID              string `json:"nativeCoinId,omitempty" yaml:"nativeCoinId,omitempty"`
	WrappedNativeTokenAddress string `json:"wrappedNativeTokenAddress,omitempty" yaml:"wrappedNativeTokenAddress,omitempty"`
	Testnet                   bool   `json:"testnet" yaml:"testnet"`
}

// SupportsTokenPrices reports whether a price platform is known for the chain.
func (c Chain) SupportsTokenPrices() bool {
	return c.PlatformID != ""
}

// NativeToken returns the chain's native asset expressed as a Token under the sentinel address.
func (c Chain) NativeToken() Token {
	return Token{
		ChainID:  c.ID,
		Address:  NativeTokenAddress,
		Name:     c.NativeCurrency.Name,
		Symbol:   c.NativeCurrency.Symbol,
		Decimals: c.NativeCurrency.Decimals,
	}
}

// AddChainParameters is the wallet_addEthereumChain (EIP-3085) payload for a chain.
type AddChainParameters struct {
	ChainID           string         `json:"chainId"`
	ChainName         string         `json:"chainName"`
	NativeCurrency    NativeCurrency `json:"nativeCurrency"`
	RPCURLs           []string       `json:"rpcUrls"`
	BlockExplorerURLs []string       `json:"blockExplorerUrls,omitempty"`
}
