package usecase

import (
	"math/big"
	"time"

	"github.com/meridian-chain/corecontracts/base/ctx"
	"github.com/meridian-chain/corecontracts/base/log"
	"github.com/meridian-chain/corecontracts/domain"
	"github.com/meridian-chain/corecontracts/domain/market"
	"github.com/meridian-chain/corecontracts/domain/runtime"
)

type MarketUseCaseCfg struct {
	AuctionRepo market.Repo
	Ledger      runtime.Ledger
	Identity    runtime.Identity
	Clock       runtime.Clock
	Events      runtime.EventBus
	Gate        runtime.FeatureGate
	Series      runtime.SeriesRegistry

	// EscrowAddress is the market contract's own address, custodian of
	// every listed instance.
	EscrowAddress domain.Address
}

type impl struct {
	auctionRepo market.Repo
	ledger      runtime.Ledger
	identity    runtime.Identity
	clock       runtime.Clock
	events      runtime.EventBus
	gate        runtime.FeatureGate
	series      runtime.SeriesRegistry
	escrow      domain.Address
}

func New(cfg *MarketUseCaseCfg) market.UseCase {
	return &impl{
		auctionRepo: cfg.AuctionRepo,
		ledger:      cfg.Ledger,
		identity:    cfg.Identity,
		clock:       cfg.Clock,
		events:      cfg.Events,
		gate:        cfg.Gate,
		series:      cfg.Series,
		escrow:      cfg.EscrowAddress,
	}
}

func (im *impl) SellToken(ctx ctx.Ctx, seller domain.Address, baseSymbol, quoteSymbol domain.Symbol, tokenId domain.TokenId, price *big.Int, endDate time.Time) error {
	if !im.identity.IsWitness(ctx, seller) {
		return domain.ErrInvalidWitness
	}

	now := im.clock.Now(ctx)
	if !endDate.After(now) {
		return domain.ErrInvalidEndDate
	}
	if endDate.After(now.Add(domain.MaxListingDuration)) {
		ctx.WithFields(log.Fields{
			"endDate": endDate,
			"max":     now.Add(domain.MaxListingDuration),
		}).Error("listing end date over the allowed duration")
		return domain.ErrEndDateTooDistant
	}

	quoteToken, err := im.ledger.Token(ctx, quoteSymbol)
	if err != nil {
		return domain.ErrTokenNotFound
	}
	if !quoteToken.Fungible {
		return domain.ErrTokenNotFungible
	}

	baseToken, err := im.ledger.Token(ctx, baseSymbol)
	if err != nil {
		return domain.ErrTokenNotFound
	}
	if baseToken.Fungible {
		return domain.ErrTokenFungible
	}

	nft, err := im.ledger.ReadNFT(ctx, baseSymbol, tokenId)
	if err != nil {
		return err
	}
	if nft.CurrentChain != im.ledger.ChainName(ctx) {
		return domain.ErrNFTNotOnChain
	}
	if nft.CurrentOwner != seller {
		return domain.ErrInvalidOwner
	}

	if err := im.ledger.TransferNFT(ctx, baseSymbol, seller, im.escrow, tokenId); err != nil {
		ctx.WithFields(log.Fields{
			"err":     err,
			"tokenId": tokenId,
		}).Error("failed to ledger.TransferNFT")
		return err
	}

	auction := &market.Auction{
		Creator:     seller,
		StartDate:   now,
		EndDate:     endDate,
		BaseSymbol:  baseSymbol,
		QuoteSymbol: quoteSymbol,
		TokenId:     tokenId,
		Price:       price,
	}
	if err := im.auctionRepo.Set(ctx, auction); err != nil {
		ctx.WithFields(log.Fields{
			"err":     err,
			"auction": auction,
		}).Error("failed to auctionRepo.Set")
		return err
	}

	im.events.Notify(ctx, domain.EventOrderCreated, seller, market.EventData{
		Id:          tokenId,
		BaseSymbol:  baseSymbol,
		QuoteSymbol: quoteSymbol,
		Price:       price,
	})
	return nil
}

func (im *impl) BuyToken(ctx ctx.Ctx, buyer domain.Address, baseSymbol domain.Symbol, tokenId domain.TokenId) error {
	if !im.identity.IsWitness(ctx, buyer) {
		return domain.ErrInvalidWitness
	}

	auction, err := im.auctionRepo.FindOne(ctx, market.AuctionId{BaseSymbol: baseSymbol, TokenId: tokenId})
	if err != nil {
		return err
	}

	if err := im.settle(ctx, buyer, auction); err != nil {
		return err
	}

	im.events.Notify(ctx, domain.EventOrderFilled, buyer, market.EventData{
		Id:          auction.TokenId,
		BaseSymbol:  auction.BaseSymbol,
		QuoteSymbol: auction.QuoteSymbol,
		Price:       auction.Price,
	})
	return nil
}

func (im *impl) CancelSale(ctx ctx.Ctx, baseSymbol domain.Symbol, tokenId domain.TokenId) error {
	auction, err := im.auctionRepo.FindOne(ctx, market.AuctionId{BaseSymbol: baseSymbol, TokenId: tokenId})
	if err != nil {
		return err
	}

	// Before the end date cancellation is the creator's call. Afterwards
	// anyone may sweep the expired listing.
	if im.clock.Now(ctx).Before(auction.EndDate) {
		if !im.identity.IsWitness(ctx, auction.Creator) {
			return domain.ErrInvalidWitness
		}
	}

	if err := im.settle(ctx, auction.Creator, auction); err != nil {
		return err
	}

	im.events.Notify(ctx, domain.EventOrderCancelled, auction.Creator, market.EventData{
		Id:          auction.TokenId,
		BaseSymbol:  auction.BaseSymbol,
		QuoteSymbol: auction.QuoteSymbol,
		Price:       big.NewInt(0),
	})
	return nil
}

// settle moves the auction from listed to removed, terminally. The buyer is
// the acquiring party; when it is the creator no payment leg runs. Any
// failed check aborts the whole settlement.
func (im *impl) settle(ctx ctx.Ctx, buyer domain.Address, auction *market.Auction) error {
	baseToken, err := im.ledger.Token(ctx, auction.BaseSymbol)
	if err != nil {
		return domain.ErrTokenNotFound
	}
	if baseToken.Fungible {
		return domain.ErrTokenFungible
	}

	// The escrowed instance has to still be on this chain and held by
	// the market itself.
	nft, err := im.ledger.ReadNFT(ctx, auction.BaseSymbol, auction.TokenId)
	if err != nil {
		return err
	}
	if nft.CurrentChain != im.ledger.ChainName(ctx) {
		return domain.ErrNFTNotOnChain
	}
	if nft.CurrentOwner != im.escrow {
		return domain.ErrInvalidOwner
	}

	if buyer != auction.Creator {
		if err := im.payOut(ctx, buyer, auction, nft); err != nil {
			return err
		}
	}

	if err := im.ledger.TransferNFT(ctx, auction.BaseSymbol, im.escrow, buyer, auction.TokenId); err != nil {
		ctx.WithFields(log.Fields{
			"err":     err,
			"tokenId": auction.TokenId,
		}).Error("failed to ledger.TransferNFT")
		return err
	}

	if err := im.auctionRepo.Remove(ctx, auction.ToId()); err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  auction.ToId(),
		}).Error("failed to auctionRepo.Remove")
		return err
	}
	return nil
}

// payOut runs the payment leg of a genuine sale: the royalty split when the
// protocol and series support it, then the remainder to the creator.
func (im *impl) payOut(ctx ctx.Ctx, buyer domain.Address, auction *market.Auction, nft *runtime.NFTInstance) error {
	quoteToken, err := im.ledger.Token(ctx, auction.QuoteSymbol)
	if err != nil {
		return domain.ErrTokenNotFound
	}
	if !quoteToken.Fungible {
		return domain.ErrTokenNotFungible
	}

	if im.ledger.BalanceOf(ctx, auction.QuoteSymbol, buyer).Cmp(auction.Price) < 0 {
		ctx.WithFields(log.Fields{
			"buyer":  buyer,
			"symbol": auction.QuoteSymbol,
			"price":  auction.Price,
		}).Error("not enough balance to fill order")
		return domain.ErrInsufficientBalance
	}

	finalAmount := new(big.Int).Set(auction.Price)

	if im.gate.ProtocolVersion(ctx) >= domain.RoyaltyProtocolVersion {
		if accessor, ok := im.series.RoyaltyAccessor(ctx, auction.BaseSymbol, nft.SeriesId); ok {
			pct, err := accessor.RoyaltiesOf(ctx, auction.TokenId)
			if err != nil {
				return err
			}
			// clamp to [0, ceiling]: a percentage outside that range
			// must never grow the payment past the listed price
			if pct.Sign() < 0 {
				pct = big.NewInt(0)
			} else if pct.Cmp(big.NewInt(domain.MaxRoyaltyPercent)) > 0 {
				pct = big.NewInt(domain.MaxRoyaltyPercent)
			}
			royaltyFee := new(big.Int).Mul(finalAmount, pct)
			royaltyFee.Div(royaltyFee, big.NewInt(100))
			if royaltyFee.Sign() > 0 {
				if err := im.ledger.TransferFungible(ctx, auction.QuoteSymbol, buyer, nft.Creator, royaltyFee); err != nil {
					return err
				}
			}
			finalAmount.Sub(finalAmount, royaltyFee)
		}
	}

	return im.ledger.TransferFungible(ctx, auction.QuoteSymbol, buyer, auction.Creator, finalAmount)
}

func (im *impl) GetAuctions(ctx ctx.Ctx) ([]*market.Auction, error) {
	res, err := im.auctionRepo.FindAll(ctx)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
		}).Error("failed to auctionRepo.FindAll")
		return nil, err
	}
	return res, nil
}

func (im *impl) GetAuction(ctx ctx.Ctx, baseSymbol domain.Symbol, tokenId domain.TokenId) (*market.Auction, error) {
	return im.auctionRepo.FindOne(ctx, market.AuctionId{BaseSymbol: baseSymbol, TokenId: tokenId})
}

func (im *impl) HasAuction(ctx ctx.Ctx, baseSymbol domain.Symbol, tokenId domain.TokenId) (bool, error) {
	return im.auctionRepo.Has(ctx, market.AuctionId{BaseSymbol: baseSymbol, TokenId: tokenId})
}
