package utils

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// IsHexAddress reports whether s is a 0x-prefixed 20-byte hex address.
func IsHexAddress(s string) bool {
	return len(s) == 42 && strings.HasPrefix(s, "0x") && common.IsHexAddress(s)
}

// FilterValidAddresses drops every entry that is not a well-formed address.
func FilterValidAddresses(addresses []string) []string {
	valid := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		if IsHexAddress(addr) {
			valid = append(valid, addr)
		}
	}
	return valid
}

// LowerAll lower-cases every element.
func LowerAll(items []string) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = strings.ToLower(item)
	}
	return out
}
