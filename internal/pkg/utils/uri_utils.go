package utils

import (
	"fmt"
	"math/big"
	"strings"
)

const (
	ipfsScheme    = "ipfs://"
	arweaveScheme = "ar://"

	DefaultIPFSGateway    = "https://ipfs.io/ipfs/"
	DefaultArweaveGateway = "https://arweave.net/"
)

// ContentURIToURL rewrites content-addressed URIs (ipfs://, ar://) to their HTTP gateway form.
// Other URIs are returned unchanged.
func ContentURIToURL(uri string, ipfsGateway string) string {
	if ipfsGateway == "" {
		ipfsGateway = DefaultIPFSGateway
	}
	if !strings.HasSuffix(ipfsGateway, "/") {
		ipfsGateway += "/"
	}

	switch {
	case strings.HasPrefix(uri, ipfsScheme):
		path := strings.TrimPrefix(uri, ipfsScheme)
		path = strings.TrimPrefix(path, "ipfs/")
		return ipfsGateway + path
	case strings.HasPrefix(uri, arweaveScheme):
		return DefaultArweaveGateway + strings.TrimPrefix(uri, arweaveScheme)
	default:
		return uri
	}
}

// ExpandERC1155URI substitutes the {id} placeholder with the 64 hex digit token id.
func ExpandERC1155URI(uri string, id string) string {
	if !strings.Contains(uri, "{id}") {
		return uri
	}
	n, ok := ParseBigInt(id)
	if !ok {
		return uri
	}
	return strings.ReplaceAll(uri, "{id}", fmt.Sprintf("%064x", new(big.Int).Abs(n)))
}
