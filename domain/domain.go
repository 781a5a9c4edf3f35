package domain

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// Address is a chain account address in its canonical text form.
type Address string

// Symbol identifies a token on the ledger, eg. "SOUL".
type Symbol string

// TokenId is the decimal text form of a non-fungible instance id.
type TokenId string

// SaleHash is the hex encoded content hash identifying a crowdsale.
type SaleHash string

// EventKind of a settlement notification.
type EventKind string

const (
	EventOrderCreated   EventKind = "orderCreated"
	EventOrderFilled    EventKind = "orderFilled"
	EventOrderCancelled EventKind = "orderCancelled"
	EventSaleMilestone  EventKind = "saleMilestone"
)

const (
	// MaxListingDuration caps how far in the future an auction may end.
	MaxListingDuration = 30 * 24 * time.Hour

	// RoyaltyProtocolVersion is the protocol version royalty support
	// became active at.
	RoyaltyProtocolVersion = 4

	// MaxRoyaltyPercent caps the royalty a series may claim on a sale.
	MaxRoyaltyPercent = 50

	// FiatDecimals is the decimal scale sale prices are quoted at.
	FiatDecimals = 8
)

// SwapContract is the name the exchange engine is dispatched under.
const SwapContract = "swap"

// SwapMethod converts escrowed funds from one fungible asset to another.
const SwapMethod = "SwapTokens"

// Storage keyspaces. Every entity type gets its own namespaced region of
// the injected store.
const (
	KeyspaceAuctions     = "market.auctions."
	KeyspaceAuctionIds   = "market.auctionIds."
	KeyspaceSales        = "sale.info."
	KeyspaceSaleSupply   = "sale.supply."
	KeyspaceBuyerAmounts = "sale.buyerAmounts."
	KeyspaceBuyers       = "sale.buyers."
	KeyspaceWhitelist    = "sale.whitelist."
)

// MinSalePrice is the protocol minimum crowdsale price, 0.001 at fiat
// decimal scale.
func MinSalePrice() *big.Int {
	return decimal.NewFromFloat(0.001).Shift(FiatDecimals).BigInt()
}
