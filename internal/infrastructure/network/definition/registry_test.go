package networkdefinition

import (
	"testing"

	"market_aggregator/internal/domain/entity"
	"market_aggregator/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_AllSortedByID(t *testing.T) {
	r := NewRegistry(logger.Nop{}, RPCOptions{})

	all := r.All()
	require.Len(t, all, len(knownChains))
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].ID, all[i].ID)
	}
}

func TestRegistry_PlatformSupport(t *testing.T) {
	r := NewRegistry(logger.Nop{}, RPCOptions{})

	polygon, ok := r.Get(137)
	require.True(t, ok)
	assert.Equal(t, "polygon-pos", polygon.PlatformID)
	assert.Equal(t, "matic-network", polygon.NativeCoinID)
	assert.True(t, r.IsSupportedPlatform(137))

	assert.False(t, r.IsSupportedPlatform(5), "goerli has no price platform")
	assert.False(t, r.IsSupportedPlatform(999999))

	_, ok = r.Get(999999)
	assert.False(t, ok)
}

func TestRegistry_KeyedRPCFirst(t *testing.T) {
	r := NewRegistry(logger.Nop{}, RPCOptions{InfuraAPIKey: "inf", AlchemyAPIKey: "alc"})

	eth, _ := r.Get(1)
	require.GreaterOrEqual(t, len(eth.RPCURLs), 3)
	assert.Equal(t, "https://mainnet.infura.io/v3/inf", eth.RPCURLs[0])
	assert.Equal(t, "https://eth-mainnet.alchemyapi.io/v2/alc", eth.RPCURLs[1])
	assert.Equal(t, "https://cloudflare-eth.com", eth.RPCURLs[2])

	base, _ := r.Get(8453)
	assert.Equal(t, []string{"https://mainnet.base.org"}, base.RPCURLs)
}

func TestRegistry_OverrideReplacesURLs(t *testing.T) {
	r := NewRegistry(logger.Nop{}, RPCOptions{
		InfuraAPIKey: "inf",
		Overrides:    map[uint64][]string{10: {"http://localhost:8545"}},
	})

	op, _ := r.Get(10)
	assert.Equal(t, []string{"http://localhost:8545"}, op.RPCURLs)
}

func TestRegistry_AddChainParameters(t *testing.T) {
	r := NewRegistry(logger.Nop{}, RPCOptions{})

	params, err := r.AddChainParameters(137)
	require.NoError(t, err)
	assert.Equal(t, "0x89", params.ChainID)
	assert.Equal(t, "Polygon Mainnet", params.ChainName)
	assert.Equal(t, "MATIC", params.NativeCurrency.Symbol)
	assert.Equal(t, []string{"https://polygonscan.com"}, params.BlockExplorerURLs)

	_, err = r.AddChainParameters(12345)
	assert.ErrorIs(t, err, entity.ErrUnsupportedChain)
}

func TestChain_NativeToken(t *testing.T) {
	r := NewRegistry(logger.Nop{}, RPCOptions{})
	avax, _ := r.Get(43114)

	native := avax.NativeToken()
	assert.True(t, native.IsNative())
	assert.Equal(t, "AVAX", native.Symbol)
	assert.Equal(t, uint8(18), native.Decimals)
	assert.Equal(t, uint64(43114), native.ChainID)
}
