package entity

import "github.com/shopspring/decimal"

// SellOrBuy is the direction of an order relative to the NFT.
type SellOrBuy string

const (
	SellOrBuyAll  SellOrBuy = "all"
	SellOrBuySell SellOrBuy = "sell"
	SellOrBuyBuy  SellOrBuy = "buy"
)

// OrderStatus filters orders by lifecycle state.
type OrderStatus string

const (
	OrderStatusOpen      OrderStatus = "open"
	OrderStatusFilled    OrderStatus = "filled"
	OrderStatusExpired   OrderStatus = "expired"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusAll       OrderStatus = "all"
)

// OrderVisibility filters public and private orders.
type OrderVisibility string

const (
	OrderVisibilityPublic  OrderVisibility = "public"
	OrderVisibilityPrivate OrderVisibility = "private"
)

// OrderSignature is the maker signature of a swap order.
type OrderSignature struct {
	R             string `json:"r"`
	S             string `json:"s"`
	SignatureType int    `json:"signatureType"`
	V             int    `json:"v"`
}

// SwapAPIOrder is the signed 0x v4 order embedded in an order-book entry.
type SwapAPIOrder struct {
	Direction             int            `json:"direction"`
	Erc20Token            string         `json:"erc20Token"`
	Erc20TokenAmount      string         `json:"erc20TokenAmount"`
	Erc721Token           string         `json:"erc721Token,omitempty"`
	Erc721TokenID         string         `json:"erc721TokenId,omitempty"`
	Erc721TokenProperties []any          `json:"erc721TokenProperties,omitempty"`
	Erc1155Token          string         `json:"erc1155Token,omitempty"`
	Erc1155TokenID        string         `json:"erc1155TokenId,omitempty"`
	Erc1155TokenAmount    string         `json:"erc1155TokenAmount,omitempty"`
	Expiry                string         `json:"expiry"`
	Fees                  []any          `json:"fees"`
	Maker                 string         `json:"maker"`
	Nonce                 string         `json:"nonce"`
	Signature             OrderSignature `json:"signature"`
	Taker                 string         `json:"taker"`
}

// OrderBookItem is one entry of the external order book, optionally enriched.
type OrderBookItem struct {
	Erc20Token       string         `json:"erc20Token"`
	Erc20TokenAmount string         `json:"erc20TokenAmount"`
	NftToken         string         `json:"nftToken"`
	NftTokenID       string         `json:"nftTokenId"`
	NftTokenAmount   string         `json:"nftTokenAmount"`
	NftType          NFTType        `json:"nftType"`
	SellOrBuyNft     SellOrBuy      `json:"sellOrBuyNft"`
	ChainID          string         `json:"chainId"`
	Order            SwapAPIOrder   `json:"order"`
	Orders           []SwapAPIOrder `json:"orders,omitempty"`

	Asset    *Asset              `json:"asset,omitempty"`
	Token    *Token              `json:"token,omitempty"`
	UsdValue decimal.NullDecimal `json:"usdValue"`
}

// OrderFilter selects a page of the order book.
type OrderFilter struct {
	ChainID      uint64
	Maker        string
	Taker        string
	NftToken     string
	NftTokenID   string
	Erc20Token   string
	SellOrBuyNft SellOrBuy
	Status       OrderStatus
	Visibility   OrderVisibility
	Offset       int
	Limit        int
}

// OrderPage is one page of enriched orders.
// HasNextPage is inferred from a full page and may be a false positive on the last page.
type OrderPage struct {
	Orders      []OrderBookItem `json:"orders"`
	Offset      int             `json:"offset"`
	Limit       int             `json:"limit"`
	HasNextPage bool            `json:"hasNextPage"`
}
