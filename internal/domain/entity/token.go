package entity

import (
	"strconv"
	"strings"
)

// NativeTokenAddress is the sentinel address standing for a chain's native asset.
const NativeTokenAddress = "0xeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee"

// ZeroAddress represents the Ethereum zero address.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// Token holds the display metadata of a fungible token.
type Token struct {
	ChainID  uint64 `json:"chainId" yaml:"chainId"`
	Address  string `json:"address" yaml:"address"`
	Name     string `json:"name" yaml:"name"`
	Symbol   string `json:"symbol" yaml:"symbol"`
	Decimals uint8  `json:"decimals" yaml:"decimals"`
	LogoURI  string `json:"logoURI,omitempty" yaml:"logoURI,omitempty"`
}

// IsNative reports whether the token is the native asset sentinel.
func (t Token) IsNative() bool {
	return IsNativeAddress(t.Address)
}

// Key is the case-insensitive identity of a token.
func (t Token) Key() string {
	return TokenKey(t.ChainID, t.Address)
}

// Same reports whether both tokens share the same (chainId, address) identity.
func (t Token) Same(other Token) bool {
	return t.ChainID == other.ChainID && strings.EqualFold(t.Address, other.Address)
}

// TokenKey builds the identity key for a (chainId, address) pair.
func TokenKey(chainID uint64, address string) string {
	return strings.ToLower(address) + "@" + strconv.FormatUint(chainID, 10)
}

// IsNativeAddress reports whether address is the native sentinel (or the zero address).
func IsNativeAddress(address string) bool {
	return strings.EqualFold(address, NativeTokenAddress) || strings.EqualFold(address, ZeroAddress)
}
