package entity

import "errors"

var (
	// ErrUnsupportedChain means the chain id is not present in the chain registry.
	ErrUnsupportedChain = errors.New("unsupported chain")

	// ErrInvalidAddress means an address argument is not a well-formed 20-byte hex string.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrAccountRequired is returned when ERC-1155 resolution is requested without an account.
	ErrAccountRequired = errors.New("account is required for ERC1155 tokens")

	// ErrIncompleteResponse means a multicall returned fewer results than calls submitted.
	ErrIncompleteResponse = errors.New("incomplete metadata response")

	// ErrMissingMetadata means an owner or token URI could not be read for a token id.
	ErrMissingMetadata = errors.New("missing critical metadata")

	// ErrMalformedTokenURI means an inline data URI could not be decoded.
	ErrMalformedTokenURI = errors.New("malformed token uri")

	// ErrUpstream means an external service returned an error or an unusable response.
	ErrUpstream = errors.New("upstream service failure")

	// ErrTimeout means an operation exceeded its deadline.
	ErrTimeout = errors.New("operation timed out")
)
