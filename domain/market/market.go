package market

import (
	"math/big"
	"time"

	"github.com/meridian-chain/corecontracts/base/ctx"
	"github.com/meridian-chain/corecontracts/domain"
)

// AuctionId is the composite key of a live auction. At most one auction can
// exist per id.
type AuctionId struct {
	BaseSymbol domain.Symbol  `json:"baseSymbol" param:"symbol"`
	TokenId    domain.TokenId `json:"tokenId" param:"tokenId"`
}

// Key is the persisted form, `baseSymbol + "." + tokenId`.
func (id AuctionId) Key() string {
	return string(id.BaseSymbol) + "." + string(id.TokenId)
}

// Auction is a sealed single-item listing. The record is immutable once
// created and destroyed exactly when settlement completes.
type Auction struct {
	Creator     domain.Address `json:"creator"`
	StartDate   time.Time      `json:"startDate"`
	EndDate     time.Time      `json:"endDate"`
	BaseSymbol  domain.Symbol  `json:"baseSymbol"`
	QuoteSymbol domain.Symbol  `json:"quoteSymbol"`
	TokenId     domain.TokenId `json:"tokenId"`
	Price       *big.Int       `json:"price"`
}

func (a *Auction) ToId() AuctionId {
	return AuctionId{
		BaseSymbol: a.BaseSymbol,
		TokenId:    a.TokenId,
	}
}

// EventData is the payload attached to order notifications.
type EventData struct {
	Id          domain.TokenId `json:"id"`
	BaseSymbol  domain.Symbol  `json:"baseSymbol"`
	QuoteSymbol domain.Symbol  `json:"quoteSymbol"`
	Price       *big.Int       `json:"price"`
}

// Repo persists auctions in the market's namespaced storage region,
// keeping the auction map and the enumeration index in step.
type Repo interface {
	Set(ctx ctx.Ctx, auction *Auction) error
	FindOne(ctx ctx.Ctx, id AuctionId) (*Auction, error)
	FindAll(ctx ctx.Ctx) ([]*Auction, error)
	Has(ctx ctx.Ctx, id AuctionId) (bool, error)
	Remove(ctx ctx.Ctx, id AuctionId) error
}

// UseCase is the auction lifecycle and settlement engine.
type UseCase interface {
	SellToken(ctx ctx.Ctx, seller domain.Address, baseSymbol, quoteSymbol domain.Symbol, tokenId domain.TokenId, price *big.Int, endDate time.Time) error
	BuyToken(ctx ctx.Ctx, buyer domain.Address, baseSymbol domain.Symbol, tokenId domain.TokenId) error
	CancelSale(ctx ctx.Ctx, baseSymbol domain.Symbol, tokenId domain.TokenId) error
	GetAuctions(ctx ctx.Ctx) ([]*Auction, error)
	GetAuction(ctx ctx.Ctx, baseSymbol domain.Symbol, tokenId domain.TokenId) (*Auction, error)
	HasAuction(ctx ctx.Ctx, baseSymbol domain.Symbol, tokenId domain.TokenId) (bool, error)
}
