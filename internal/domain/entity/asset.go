package entity

import (
	"math/big"
	"time"
)

// NFTType is the token standard of an NFT contract.
type NFTType string

const (
	NFTTypeERC721  NFTType = "ERC721"
	NFTTypeERC1155 NFTType = "ERC1155"
)

// AssetAttribute is a single trait from token metadata.
type AssetAttribute struct {
	DisplayType string `json:"display_type,omitempty"`
	TraitType   string `json:"trait_type"`
	Value       any    `json:"value"`
}

// AssetMetadata is the parsed JSON document a token URI points to.
type AssetMetadata struct {
	Name        string           `json:"name"`
	Image       string           `json:"image,omitempty"`
	Description string           `json:"description,omitempty"`
	Attributes  []AssetAttribute `json:"attributes,omitempty"`
}

// AssetErrorContext identifies the token an AssetError belongs to.
type AssetErrorContext struct {
	ContractAddress string `json:"contractAddress"`
	TokenID         string `json:"tokenId"`
	ChainID         uint64 `json:"chainId,omitempty"`
}

// AssetError records a non-fatal problem met while resolving an asset.
type AssetError struct {
	Message string             `json:"message"`
	Code    string             `json:"code,omitempty"`
	Retries int                `json:"retries,omitempty"`
	Context *AssetErrorContext `json:"context,omitempty"`
}

// Asset is a resolved NFT.
type Asset struct {
	ID              string         `json:"id"`
	ChainID         uint64         `json:"chainId"`
	ContractAddress string         `json:"contractAddress"`
	Owner           string         `json:"owner"`
	Balance         *big.Int       `json:"balance,omitempty"`
	TokenURI        string         `json:"tokenURI"`
	CollectionName  string         `json:"collectionName"`
	Symbol          string         `json:"symbol"`
	Type            NFTType        `json:"type,omitempty"`
	Metadata        *AssetMetadata `json:"metadata,omitempty"`
	Error           *AssetError    `json:"error,omitempty"`
	LastUpdated     time.Time      `json:"lastUpdated"`
}

// Collection is the name and symbol of an NFT contract.
type Collection struct {
	ChainID         uint64  `json:"chainId"`
	ContractAddress string  `json:"contractAddress"`
	CollectionName  string  `json:"collectionName"`
	Symbol          string  `json:"symbol"`
	NFTType         NFTType `json:"nftType,omitempty"`
}

// AssetsRequest describes a batch asset resolution.
type AssetsRequest struct {
	ChainID   uint64
	Contract  string
	IDs       []string
	Account   string
	IsERC1155 bool
	// WithMetadata fetches and parses each token URI after ownership is resolved.
	WithMetadata    bool
	DefaultMetadata *AssetMetadata
}

// ENSMetadata is the document served by the ENS metadata service.
type ENSMetadata struct {
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	Image           string           `json:"image"`
	ImageURL        string           `json:"image_url"`
	URL             string           `json:"url"`
	Version         int              `json:"version"`
	Attributes      []AssetAttribute `json:"attributes"`
	BackgroundImage string           `json:"background_image"`
}
