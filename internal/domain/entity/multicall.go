package entity

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// ContractCall describes a single read-only contract call to be bundled into a multicall.
type ContractCall struct {
	Target common.Address
	ABI    *abi.ABI
	Method string
	Args   []any
}

// CallResult is the decoded outcome of one ContractCall, positionally aligned with the request.
type CallResult struct {
	Success bool
	Values  []any
	Err     error
}

// First returns the first decoded return value, or nil.
func (r CallResult) First() any {
	if !r.Success || len(r.Values) == 0 {
		return nil
	}
	return r.Values[0]
}

// String returns the first return value as a string.
func (r CallResult) String() (string, bool) {
	s, ok := r.First().(string)
	return s, ok
}

// Address returns the first return value as an address.
func (r CallResult) Address() (common.Address, bool) {
	a, ok := r.First().(common.Address)
	return a, ok
}

// BigInt returns the first return value as a big integer.
func (r CallResult) BigInt() (*big.Int, bool) {
	b, ok := r.First().(*big.Int)
	return b, ok && b != nil
}

// Uint8 returns the first return value as uint8 (ERC-20 decimals).
func (r CallResult) Uint8() (uint8, bool) {
	switch v := r.First().(type) {
	case uint8:
		return v, true
	case *big.Int:
		if v != nil && v.IsUint64() && v.Uint64() <= 255 {
			return uint8(v.Uint64()), true
		}
	}
	return 0, false
}
