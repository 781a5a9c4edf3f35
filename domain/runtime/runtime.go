// Package runtime declares the services the hosting chain environment has
// to supply to the settlement engines. The engines never reach around these
// interfaces: everything they know about tokens, time, identity and other
// contracts comes through here, which keeps every operation deterministic
// and replayable.
package runtime

import (
	"math/big"
	"time"

	"github.com/meridian-chain/corecontracts/base/ctx"
	"github.com/meridian-chain/corecontracts/domain"
)

// TokenInfo is the ledger's metadata for one asset.
type TokenInfo struct {
	Symbol       domain.Symbol `json:"symbol"`
	Decimals     int32         `json:"decimals"`
	Fungible     bool          `json:"fungible"`
	Transferable bool          `json:"transferable"`
}

// NFTInstance is the ledger's view of one non-fungible instance.
type NFTInstance struct {
	TokenId      domain.TokenId `json:"tokenId"`
	CurrentChain string         `json:"currentChain"`
	CurrentOwner domain.Address `json:"currentOwner"`
	Creator      domain.Address `json:"creator"`
	SeriesId     string         `json:"seriesId"`
}

// Ledger is the underlying token ledger. Transfers either fully apply or
// return an error; the enclosing transaction provides rollback.
type Ledger interface {
	ChainName(ctx ctx.Ctx) string
	Token(ctx ctx.Ctx, symbol domain.Symbol) (*TokenInfo, error)
	ReadNFT(ctx ctx.Ctx, symbol domain.Symbol, tokenId domain.TokenId) (*NFTInstance, error)
	TransferFungible(ctx ctx.Ctx, symbol domain.Symbol, from, to domain.Address, amount *big.Int) error
	TransferNFT(ctx ctx.Ctx, symbol domain.Symbol, from, to domain.Address, tokenId domain.TokenId) error
	BalanceOf(ctx ctx.Ctx, symbol domain.Symbol, holder domain.Address) *big.Int

	// ConvertQuoteToBase and ConvertBaseToQuote apply the ledger's
	// canonical price and decimal conversion. Both directions use the
	// same rule so settlement math round-trips consistently.
	ConvertQuoteToBase(amount, price *big.Int, base, quote *TokenInfo) *big.Int
	ConvertBaseToQuote(amount, price *big.Int, base, quote *TokenInfo) *big.Int
}

// Identity answers whether the current transaction proved authorization
// for an address.
type Identity interface {
	IsWitness(ctx ctx.Ctx, addr domain.Address) bool
}

// Clock is the transaction execution time source.
type Clock interface {
	Now(ctx ctx.Ctx) time.Time
}

// EventBus is append-only notification emission. Fire and forget; a bus
// must never affect settlement control flow.
type EventBus interface {
	Notify(ctx ctx.Ctx, kind domain.EventKind, addr domain.Address, data interface{})
}

// Dispatcher invokes another on-chain service by name, synchronously and as
// part of the caller's atomic unit. A returned error aborts the caller.
type Dispatcher interface {
	Call(ctx ctx.Ctx, contract, method string, args ...interface{}) error
}

// FeatureGate exposes the monotonically increasing protocol version that
// gates optional behavior.
type FeatureGate interface {
	ProtocolVersion(ctx ctx.Ctx) int
}

// RoyaltyAccessor is a declared read-only accessor on a series, invoked per
// instance.
type RoyaltyAccessor interface {
	RoyaltiesOf(ctx ctx.Ctx, tokenId domain.TokenId) (*big.Int, error)
}

// SeriesRegistry is the capability query surface over series definitions.
// RoyaltyAccessor reports false when the series declares no royalty method.
type SeriesRegistry interface {
	RoyaltyAccessor(ctx ctx.Ctx, symbol domain.Symbol, seriesId string) (RoyaltyAccessor, bool)
}

// SystemClock is a Clock backed by wall time, for processes running outside
// a transaction context.
type SystemClock struct{}

func (SystemClock) Now(ctx.Ctx) time.Time { return time.Now() }
