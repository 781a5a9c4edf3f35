package repository

import (
	"encoding/json"
	"math/big"

	"github.com/meridian-chain/corecontracts/base/ctx"
	"github.com/meridian-chain/corecontracts/base/log"
	"github.com/meridian-chain/corecontracts/domain"
	"github.com/meridian-chain/corecontracts/domain/sale"
	"github.com/meridian-chain/corecontracts/service/keyvalue"
)

type saleRepoImpl struct {
	sales     keyvalue.Store
	supply    keyvalue.Store
	amounts   keyvalue.Store
	buyers    keyvalue.Store
	whitelist keyvalue.Store
}

// NewSaleRepo lays a sale's state out as parallel per-id sub-regions: the
// sale record, its sold supply, per-buyer cumulative amounts, the
// participant set and the whitelist set.
func NewSaleRepo(store keyvalue.Store) sale.Repo {
	return &saleRepoImpl{
		sales:     keyvalue.Namespace(store, domain.KeyspaceSales),
		supply:    keyvalue.Namespace(store, domain.KeyspaceSaleSupply),
		amounts:   keyvalue.Namespace(store, domain.KeyspaceBuyerAmounts),
		buyers:    keyvalue.Namespace(store, domain.KeyspaceBuyers),
		whitelist: keyvalue.Namespace(store, domain.KeyspaceWhitelist),
	}
}

func subKey(hash domain.SaleHash, addr domain.Address) []byte {
	return []byte(string(hash) + "." + string(addr))
}

func (im *saleRepoImpl) put(ctx ctx.Ctx, s *sale.Sale) error {
	value, err := json.Marshal(s)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":  err,
			"sale": s,
		}).Error("failed to json.Marshal")
		return err
	}
	return im.sales.Put(ctx, []byte(s.Hash), value)
}

func (im *saleRepoImpl) Create(ctx ctx.Ctx, s *sale.Sale) error {
	return im.put(ctx, s)
}

func (im *saleRepoImpl) FindOne(ctx ctx.Ctx, hash domain.SaleHash) (*sale.Sale, error) {
	raw, err := im.sales.Get(ctx, []byte(hash))
	if err == keyvalue.ErrNotFound {
		return nil, domain.ErrSaleNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":  err,
			"hash": hash,
		}).Error("failed to sales.Get")
		return nil, err
	}

	res := sale.Sale{}
	if err := json.Unmarshal(raw, &res); err != nil {
		ctx.WithFields(log.Fields{
			"err":  err,
			"hash": hash,
		}).Error("failed to json.Unmarshal")
		return nil, err
	}
	return &res, nil
}

func (im *saleRepoImpl) FindAll(ctx ctx.Ctx) ([]*sale.Sale, error) {
	res := []*sale.Sale{}
	err := im.sales.Visit(ctx, nil, func(_, raw []byte) error {
		s := sale.Sale{}
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		res = append(res, &s)
		return nil
	})
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
		}).Error("failed to sales.Visit")
		return nil, err
	}
	return res, nil
}

func (im *saleRepoImpl) Has(ctx ctx.Ctx, hash domain.SaleHash) (bool, error) {
	return im.sales.Has(ctx, []byte(hash))
}

func (im *saleRepoImpl) SetFinalized(ctx ctx.Ctx, hash domain.SaleHash) error {
	s, err := im.FindOne(ctx, hash)
	if err != nil {
		return err
	}
	s.Finalized = true
	return im.put(ctx, s)
}

func (im *saleRepoImpl) Supply(ctx ctx.Ctx, hash domain.SaleHash) (*big.Int, error) {
	raw, err := im.supply.Get(ctx, []byte(hash))
	if err == keyvalue.ErrNotFound {
		return big.NewInt(0), nil
	} else if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(raw), nil
}

func (im *saleRepoImpl) SetSupply(ctx ctx.Ctx, hash domain.SaleHash, supply *big.Int) error {
	return im.supply.Put(ctx, []byte(hash), supply.Bytes())
}

func (im *saleRepoImpl) PurchasedAmount(ctx ctx.Ctx, hash domain.SaleHash, buyer domain.Address) (*big.Int, error) {
	raw, err := im.amounts.Get(ctx, subKey(hash, buyer))
	if err == keyvalue.ErrNotFound {
		return big.NewInt(0), nil
	} else if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(raw), nil
}

func (im *saleRepoImpl) SetPurchasedAmount(ctx ctx.Ctx, hash domain.SaleHash, buyer domain.Address, amount *big.Int) error {
	return im.amounts.Put(ctx, subKey(hash, buyer), amount.Bytes())
}

func (im *saleRepoImpl) AddParticipant(ctx ctx.Ctx, hash domain.SaleHash, buyer domain.Address) error {
	return im.buyers.Put(ctx, subKey(hash, buyer), []byte(buyer))
}

func (im *saleRepoImpl) Participants(ctx ctx.Ctx, hash domain.SaleHash) ([]domain.Address, error) {
	return im.members(ctx, im.buyers, hash)
}

func (im *saleRepoImpl) AddToWhitelist(ctx ctx.Ctx, hash domain.SaleHash, target domain.Address) error {
	return im.whitelist.Put(ctx, subKey(hash, target), []byte(target))
}

func (im *saleRepoImpl) RemoveFromWhitelist(ctx ctx.Ctx, hash domain.SaleHash, target domain.Address) error {
	return im.whitelist.Delete(ctx, subKey(hash, target))
}

func (im *saleRepoImpl) IsWhitelisted(ctx ctx.Ctx, hash domain.SaleHash, target domain.Address) (bool, error) {
	return im.whitelist.Has(ctx, subKey(hash, target))
}

func (im *saleRepoImpl) Whitelisted(ctx ctx.Ctx, hash domain.SaleHash) ([]domain.Address, error) {
	return im.members(ctx, im.whitelist, hash)
}

func (im *saleRepoImpl) members(ctx ctx.Ctx, set keyvalue.Store, hash domain.SaleHash) ([]domain.Address, error) {
	res := []domain.Address{}
	err := set.Visit(ctx, []byte(string(hash)+"."), func(_, value []byte) error {
		res = append(res, domain.Address(value))
		return nil
	})
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":  err,
			"hash": hash,
		}).Error("failed to set.Visit")
		return nil, err
	}
	return res, nil
}
