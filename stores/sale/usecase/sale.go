package usecase

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/meridian-chain/corecontracts/base/ctx"
	"github.com/meridian-chain/corecontracts/base/log"
	"github.com/meridian-chain/corecontracts/domain"
	"github.com/meridian-chain/corecontracts/domain/runtime"
	"github.com/meridian-chain/corecontracts/domain/sale"
)

type SaleUseCaseCfg struct {
	SaleRepo   sale.Repo
	Ledger     runtime.Ledger
	Identity   runtime.Identity
	Clock      runtime.Clock
	Events     runtime.EventBus
	Dispatcher runtime.Dispatcher

	// EscrowAddress is the sale contract's own address, holding the
	// escrowed sell asset and collected funds until close.
	EscrowAddress domain.Address

	// SettlementSymbol is the only receive asset currently allowed,
	// pending a more general exchange facility.
	SettlementSymbol domain.Symbol
}

type impl struct {
	saleRepo   sale.Repo
	ledger     runtime.Ledger
	identity   runtime.Identity
	clock      runtime.Clock
	events     runtime.EventBus
	dispatcher runtime.Dispatcher
	escrow     domain.Address
	settlement domain.Symbol
}

func New(cfg *SaleUseCaseCfg) sale.UseCase {
	return &impl{
		saleRepo:   cfg.SaleRepo,
		ledger:     cfg.Ledger,
		identity:   cfg.Identity,
		clock:      cfg.Clock,
		events:     cfg.Events,
		dispatcher: cfg.Dispatcher,
		escrow:     cfg.EscrowAddress,
		settlement: cfg.SettlementSymbol,
	}
}

func (im *impl) CreateSale(ctx ctx.Ctx, def sale.Definition) (domain.SaleHash, error) {
	if !im.identity.IsWitness(ctx, def.Creator) {
		return "", domain.ErrInvalidWitness
	}

	sellToken, err := im.ledger.Token(ctx, def.SellSymbol)
	if err != nil {
		return "", domain.ErrTokenNotFound
	}
	if !sellToken.Fungible {
		return "", domain.ErrTokenNotFungible
	}
	if !sellToken.Transferable {
		return "", domain.ErrTokenNotTransferable
	}

	if def.Price == nil || def.Price.Cmp(domain.MinSalePrice()) < 0 {
		return "", domain.ErrInvalidPrice
	}
	if def.SoftCap == nil || def.SoftCap.Sign() < 0 {
		return "", domain.ErrInvalidSoftCap
	}
	if def.HardCap == nil || def.HardCap.Sign() <= 0 {
		return "", domain.ErrInvalidHardCap
	}
	if def.HardCap.Cmp(def.SoftCap) < 0 {
		return "", domain.ErrCapMismatch
	}
	if def.UserLimit == nil || def.UserLimit.Sign() < 0 {
		return "", domain.ErrInvalidUserLimit
	}
	if def.ReceiveSymbol == def.SellSymbol {
		return "", domain.ErrInvalidReceiveToken
	}
	// TODO lift this once the generalized exchange facility lands
	if def.ReceiveSymbol != im.settlement {
		return "", domain.ErrInvalidReceiveToken
	}

	if err := im.ledger.TransferFungible(ctx, def.SellSymbol, def.Creator, im.escrow, def.HardCap); err != nil {
		ctx.WithFields(log.Fields{
			"err":     err,
			"creator": def.Creator,
			"hardCap": def.HardCap,
		}).Error("failed to escrow sale supply")
		return "", err
	}

	hash, err := def.Hash()
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
		}).Error("failed to def.Hash")
		return "", err
	}

	s := &sale.Sale{Definition: def, Hash: hash}
	if err := im.saleRepo.Create(ctx, s); err != nil {
		ctx.WithFields(log.Fields{
			"err":  err,
			"hash": hash,
		}).Error("failed to saleRepo.Create")
		return "", err
	}
	if err := im.saleRepo.SetSupply(ctx, hash, big.NewInt(0)); err != nil {
		return "", err
	}

	im.notifyMilestone(ctx, def.Creator, hash, sale.MilestoneCreation)
	return hash, nil
}

func (im *impl) IsSaleActive(ctx ctx.Ctx, hash domain.SaleHash) bool {
	s, err := im.saleRepo.FindOne(ctx, hash)
	if err != nil || s.Finalized {
		return false
	}
	now := im.clock.Now(ctx)
	return !now.Before(s.StartDate) && !now.After(s.EndDate)
}

func (im *impl) AddToWhitelist(ctx ctx.Ctx, hash domain.SaleHash, target domain.Address) error {
	if _, err := im.whitelistSale(ctx, hash); err != nil {
		return err
	}

	listed, err := im.saleRepo.IsWhitelisted(ctx, hash, target)
	if err != nil {
		return err
	}
	if listed {
		return nil
	}

	if err := im.saleRepo.AddToWhitelist(ctx, hash, target); err != nil {
		ctx.WithFields(log.Fields{
			"err":    err,
			"hash":   hash,
			"target": target,
		}).Error("failed to saleRepo.AddToWhitelist")
		return err
	}
	im.notifyMilestone(ctx, target, hash, sale.MilestoneAddedToWhitelist)
	return nil
}

func (im *impl) RemoveFromWhitelist(ctx ctx.Ctx, hash domain.SaleHash, target domain.Address) error {
	if _, err := im.whitelistSale(ctx, hash); err != nil {
		return err
	}

	listed, err := im.saleRepo.IsWhitelisted(ctx, hash, target)
	if err != nil {
		return err
	}
	if !listed {
		return nil
	}

	if err := im.saleRepo.RemoveFromWhitelist(ctx, hash, target); err != nil {
		ctx.WithFields(log.Fields{
			"err":    err,
			"hash":   hash,
			"target": target,
		}).Error("failed to saleRepo.RemoveFromWhitelist")
		return err
	}
	im.notifyMilestone(ctx, target, hash, sale.MilestoneRemovedFromWhitelist)
	return nil
}

// whitelistSale loads a sale and checks it can have its whitelist managed:
// active, capability enabled, and the creator witnessed this transaction.
func (im *impl) whitelistSale(ctx ctx.Ctx, hash domain.SaleHash) (*sale.Sale, error) {
	if !im.IsSaleActive(ctx, hash) {
		return nil, domain.ErrSaleNotActive
	}
	s, err := im.saleRepo.FindOne(ctx, hash)
	if err != nil {
		return nil, err
	}
	if !s.RequiresWhitelist {
		return nil, domain.ErrWhitelistDisabled
	}
	if !im.identity.IsWitness(ctx, s.Creator) {
		return nil, domain.ErrInvalidWitness
	}
	return s, nil
}

func (im *impl) Purchase(ctx ctx.Ctx, buyer domain.Address, hash domain.SaleHash, quoteSymbol domain.Symbol, quoteAmount *big.Int) error {
	quoteToken, err := im.ledger.Token(ctx, quoteSymbol)
	if err != nil {
		return domain.ErrTokenNotFound
	}

	if !im.IsSaleActive(ctx, hash) {
		return domain.ErrSaleNotActive
	}
	s, err := im.saleRepo.FindOne(ctx, hash)
	if err != nil {
		return err
	}

	if quoteSymbol == s.SellSymbol {
		return domain.ErrInvalidQuoteToken
	}
	if !im.identity.IsWitness(ctx, buyer) {
		return domain.ErrInvalidWitness
	}
	if s.RequiresWhitelist {
		listed, err := im.saleRepo.IsWhitelisted(ctx, hash, buyer)
		if err != nil {
			return err
		}
		if !listed {
			return domain.ErrNotWhitelisted
		}
	}

	sellToken, err := im.ledger.Token(ctx, s.SellSymbol)
	if err != nil {
		return domain.ErrTokenNotFound
	}

	convertedAmount := im.ledger.ConvertQuoteToBase(quoteAmount, s.Price, sellToken, quoteToken)

	// reject anything that rounds below one whole sell-token unit
	wholeUnits := decimal.NewFromBigInt(convertedAmount, -sellToken.Decimals)
	if wholeUnits.LessThan(decimal.New(1, 0)) {
		return domain.ErrPurchaseTooSmall
	}

	previousSupply, err := im.saleRepo.Supply(ctx, hash)
	if err != nil {
		return err
	}
	nextSupply := new(big.Int).Add(previousSupply, convertedAmount)

	if nextSupply.Cmp(s.HardCap) > 0 {
		// clamp to the remaining headroom and recompute the payment for
		// it; this purchase fills the hard cap
		convertedAmount = new(big.Int).Sub(s.HardCap, previousSupply)
		if convertedAmount.Sign() <= 0 {
			return domain.ErrHardCapReached
		}
		quoteAmount = im.ledger.ConvertBaseToQuote(convertedAmount, s.Price, sellToken, quoteToken)
		nextSupply.Set(s.HardCap)
	}

	totalAmount, err := im.saleRepo.PurchasedAmount(ctx, hash, buyer)
	if err != nil {
		return err
	}
	newTotal := new(big.Int).Add(totalAmount, convertedAmount)
	if s.UserLimit.Sign() > 0 && newTotal.Cmp(s.UserLimit) > 0 {
		return domain.ErrUserLimitExceeded
	}

	if err := im.ledger.TransferFungible(ctx, quoteSymbol, buyer, im.escrow, quoteAmount); err != nil {
		ctx.WithFields(log.Fields{
			"err":    err,
			"buyer":  buyer,
			"amount": quoteAmount,
		}).Error("failed to collect purchase funds")
		return err
	}

	if quoteSymbol != s.ReceiveSymbol {
		// synchronous conversion of the escrowed quote asset, part of
		// the same atomic unit
		if err := im.dispatcher.Call(ctx, domain.SwapContract, domain.SwapMethod, im.escrow, quoteSymbol, s.ReceiveSymbol, quoteAmount); err != nil {
			ctx.WithFields(log.Fields{
				"err":   err,
				"quote": quoteSymbol,
			}).Error("swap dispatch failed")
			return err
		}
	}

	if err := im.saleRepo.SetSupply(ctx, hash, nextSupply); err != nil {
		return err
	}
	if err := im.saleRepo.SetPurchasedAmount(ctx, hash, buyer, newTotal); err != nil {
		return err
	}
	if err := im.saleRepo.AddParticipant(ctx, hash, buyer); err != nil {
		return err
	}

	if nextSupply.Cmp(s.HardCap) == 0 {
		im.notifyMilestone(ctx, buyer, hash, sale.MilestoneHardCap)
	} else if previousSupply.Cmp(s.SoftCap) < 0 && nextSupply.Cmp(s.SoftCap) >= 0 {
		im.notifyMilestone(ctx, buyer, hash, sale.MilestoneSoftCap)
	}
	return nil
}

// CloseSale is permissionless so refunds can always be triggered once the
// end date has passed.
func (im *impl) CloseSale(ctx ctx.Ctx, caller domain.Address, hash domain.SaleHash) error {
	if !im.identity.IsWitness(ctx, caller) {
		return domain.ErrInvalidWitness
	}

	s, err := im.saleRepo.FindOne(ctx, hash)
	if err != nil {
		return err
	}
	if s.Finalized {
		return domain.ErrSaleNotFound
	}
	if !im.clock.Now(ctx).After(s.EndDate) {
		return domain.ErrSaleNotEnded
	}

	soldSupply, err := im.saleRepo.Supply(ctx, hash)
	if err != nil {
		return err
	}
	buyers, err := im.saleRepo.Participants(ctx, hash)
	if err != nil {
		return err
	}

	sellToken, err := im.ledger.Token(ctx, s.SellSymbol)
	if err != nil {
		return domain.ErrTokenNotFound
	}
	receiveToken, err := im.ledger.Token(ctx, s.ReceiveSymbol)
	if err != nil {
		return domain.ErrTokenNotFound
	}

	if soldSupply.Cmp(s.SoftCap) >= 0 {
		// viable raise: buyers get their tokens, the creator gets the
		// proceeds plus whatever part of the escrow went unsold
		for _, buyer := range buyers {
			amount, err := im.saleRepo.PurchasedAmount(ctx, hash, buyer)
			if err != nil {
				return err
			}
			if err := im.ledger.TransferFungible(ctx, s.SellSymbol, im.escrow, buyer, amount); err != nil {
				return err
			}
		}

		fundsAmount := im.ledger.ConvertBaseToQuote(soldSupply, s.Price, sellToken, receiveToken)
		if err := im.ledger.TransferFungible(ctx, s.ReceiveSymbol, im.escrow, s.Creator, fundsAmount); err != nil {
			return err
		}

		if unsold := new(big.Int).Sub(s.HardCap, soldSupply); unsold.Sign() > 0 {
			if err := im.ledger.TransferFungible(ctx, s.SellSymbol, im.escrow, s.Creator, unsold); err != nil {
				return err
			}
		}

		im.notifyMilestone(ctx, s.Creator, hash, sale.MilestoneCompletion)
	} else {
		// raise failed: buyers are refunded in the receive asset, the
		// whole escrowed supply goes back to the creator
		for _, buyer := range buyers {
			amount, err := im.saleRepo.PurchasedAmount(ctx, hash, buyer)
			if err != nil {
				return err
			}
			refund := im.ledger.ConvertBaseToQuote(amount, s.Price, sellToken, receiveToken)
			if err := im.ledger.TransferFungible(ctx, s.ReceiveSymbol, im.escrow, buyer, refund); err != nil {
				return err
			}
		}

		if err := im.ledger.TransferFungible(ctx, s.SellSymbol, im.escrow, s.Creator, s.HardCap); err != nil {
			return err
		}

		im.notifyMilestone(ctx, s.Creator, hash, sale.MilestoneRefund)
	}

	if err := im.saleRepo.SetFinalized(ctx, hash); err != nil {
		ctx.WithFields(log.Fields{
			"err":  err,
			"hash": hash,
		}).Error("failed to saleRepo.SetFinalized")
		return err
	}
	return nil
}

func (im *impl) GetSales(ctx ctx.Ctx) ([]*sale.Sale, error) {
	return im.saleRepo.FindAll(ctx)
}

func (im *impl) GetSale(ctx ctx.Ctx, hash domain.SaleHash) (*sale.Sale, error) {
	return im.saleRepo.FindOne(ctx, hash)
}

func (im *impl) GetSaleParticipants(ctx ctx.Ctx, hash domain.SaleHash) ([]domain.Address, error) {
	return im.saleRepo.Participants(ctx, hash)
}

func (im *impl) GetSaleWhitelists(ctx ctx.Ctx, hash domain.SaleHash) ([]domain.Address, error) {
	return im.saleRepo.Whitelisted(ctx, hash)
}

func (im *impl) IsWhitelisted(ctx ctx.Ctx, hash domain.SaleHash, target domain.Address) (bool, error) {
	return im.saleRepo.IsWhitelisted(ctx, hash, target)
}

func (im *impl) GetPurchasedAmount(ctx ctx.Ctx, hash domain.SaleHash, buyer domain.Address) (*big.Int, error) {
	return im.saleRepo.PurchasedAmount(ctx, hash, buyer)
}

func (im *impl) notifyMilestone(ctx ctx.Ctx, addr domain.Address, hash domain.SaleHash, kind sale.Milestone) {
	im.events.Notify(ctx, domain.EventSaleMilestone, addr, sale.EventData{
		SaleHash: hash,
		Kind:     kind,
	})
}
