package networkdefinition

import "market_aggregator/internal/domain/entity"

var (
	ether  = entity.NativeCurrency{Name: "Ether", Symbol: "ETH", Decimals: 18}
	matic  = entity.NativeCurrency{Name: "Matic", Symbol: "MATIC", Decimals: 18}
	avax   = entity.NativeCurrency{Name: "Avalanche", Symbol: "AVAX", Decimals: 18}
	ftm    = entity.NativeCurrency{Name: "Fantom", Symbol: "FTM", Decimals: 18}
	celo   = entity.NativeCurrency{Name: "Celo", Symbol: "CELO", Decimals: 18}
	goerli = entity.NativeCurrency{Name: "Goerli Ether", Symbol: "ETH", Decimals: 18}
)

// chainTemplate is a static chain definition plus the keyed RPC templates for it.
// %s in infura/alchemy is replaced with the API key.
type chainTemplate struct {
	chain   entity.Chain
	infura  string
	alchemy string
}

// Predefined chain definitions
var knownChains = []chainTemplate{ //nolint:gochecknoglobals // Global for definitions
	{
		chain: entity.Chain{
			ID:                        1,
			Name:                      "Ethereum Mainnet",
			Identifier:                "ethereum",
			NativeCurrency:            ether,
			RPCURLs:                   []string{"https://cloudflare-eth.com", "https://ethereum-rpc.publicnode.com"},
			BlockExplorerURL:          "https://etherscan.io",
			PlatformID:                "ethereum",
			NativeCoinID:              "ethereum",
			WrappedNativeTokenAddress: "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2", // WETH
		},
		infura:  "https://mainnet.infura.io/v3/%s",
		alchemy: "https://eth-mainnet.alchemyapi.io/v2/%s",
	},
	{
		chain: entity.Chain{
			ID:                        10,
			Name:                      "Optimism",
			Identifier:                "optimism",
			NativeCurrency:            ether,
			RPCURLs:                   []string{"https://mainnet.optimism.io"},
			BlockExplorerURL:          "https://optimistic.etherscan.io",
			PlatformID:                "optimistic-ethereum",
			NativeCoinID:              "ethereum",
			WrappedNativeTokenAddress: "0x4200000000000000000000000000000000000006",
		},
		infura: "https://optimism-mainnet.infura.io/v3/%s",
	},
	{
		chain: entity.Chain{
			ID:                        137,
			Name:                      "Polygon Mainnet",
			Identifier:                "polygon",
			NativeCurrency:            matic,
			RPCURLs:                   []string{"https://polygon-rpc.com"},
			BlockExplorerURL:          "https://polygonscan.com",
			PlatformID:                "polygon-pos",
			NativeCoinID:              "matic-network",
			WrappedNativeTokenAddress: "0x0d500b1d8e8ef31e21c99d1db9a6444d3adf1270", // WMATIC
		},
		infura: "https://polygon-mainnet.infura.io/v3/%s",
	},
	{
		chain: entity.Chain{
			ID:               250,
			Name:             "Fantom Opera",
			Identifier:       "fantom",
			NativeCurrency:   ftm,
			RPCURLs:          []string{"https://rpc.ftm.tools"},
			BlockExplorerURL: "https://ftmscan.com",
			PlatformID:       "fantom",
			NativeCoinID:     "fantom",
		},
	},
	{
		chain: entity.Chain{
			ID:                        8453,
			Name:                      "Base",
			Identifier:                "base",
			NativeCurrency:            ether,
			RPCURLs:                   []string{"https://mainnet.base.org"},
			BlockExplorerURL:          "https://basescan.org",
			PlatformID:                "base",
			NativeCoinID:              "ethereum",
			WrappedNativeTokenAddress: "0x4200000000000000000000000000000000000006",
		},
	},
	{
		chain: entity.Chain{
			ID:                        42161,
			Name:                      "Arbitrum One",
			Identifier:                "arbitrum",
			NativeCurrency:            ether,
			RPCURLs:                   []string{"https://arb1.arbitrum.io/rpc"},
			BlockExplorerURL:          "https://arbiscan.io",
			PlatformID:                "arbitrum-one",
			NativeCoinID:              "ethereum",
			WrappedNativeTokenAddress: "0x82af49447d8a07e3bd95bd0d56f35241523fbab1", // WETH on Arbitrum
		},
		infura: "https://arbitrum-mainnet.infura.io/v3/%s",
	},
	{
		chain: entity.Chain{
			ID:               42220,
			Name:             "Celo",
			Identifier:       "celo",
			NativeCurrency:   celo,
			RPCURLs:          []string{"https://forno.celo.org"},
			BlockExplorerURL: "https://celoscan.io",
			PlatformID:       "celo",
			NativeCoinID:     "celo",
		},
	},
	{
		chain: entity.Chain{
			ID:               43114,
			Name:             "Avalanche",
			Identifier:       "avalanche",
			NativeCurrency:   avax,
			RPCURLs:          []string{"https://api.avax.network/ext/bc/C/rpc"},
			BlockExplorerURL: "https://snowtrace.io",
			PlatformID:       "avalanche-c-chain",
			NativeCoinID:     "avalanche-2",
		},
	},
	// Testnets: no prices except the Mumbai platform CoinGecko still lists.
	{
		chain: entity.Chain{
			ID:               5,
			Name:             "Goerli",
			Identifier:       "goerli",
			NativeCurrency:   goerli,
			RPCURLs:          []string{"https://rpc.ankr.com/eth_goerli"},
			BlockExplorerURL: "https://goerli.etherscan.io",
			Testnet:          true,
		},
		infura: "https://goerli.infura.io/v3/%s",
	},
	{
		chain: entity.Chain{
			ID:               11155111,
			Name:             "Sepolia",
			Identifier:       "sepolia",
			NativeCurrency:   entity.NativeCurrency{Name: "Sepolia Ether", Symbol: "ETH", Decimals: 18},
			RPCURLs:          []string{"https://rpc.sepolia.org"},
			BlockExplorerURL: "https://sepolia.etherscan.io",
			Testnet:          true,
		},
		infura: "https://sepolia.infura.io/v3/%s",
	},
	{
		chain: entity.Chain{
			ID:               80001,
			Name:             "Mumbai",
			Identifier:       "mumbai",
			NativeCurrency:   matic,
			RPCURLs:          []string{"https://rpc-mumbai.maticvigil.com"},
			BlockExplorerURL: "https://mumbai.polygonscan.com",
			PlatformID:       "polygon-mumbai",
			Testnet:          true,
		},
		infura: "https://polygon-mumbai.infura.io/v3/%s",
	},
}
