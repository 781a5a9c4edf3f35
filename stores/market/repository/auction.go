package repository

import (
	"encoding/json"

	"github.com/meridian-chain/corecontracts/base/ctx"
	"github.com/meridian-chain/corecontracts/base/log"
	"github.com/meridian-chain/corecontracts/domain"
	"github.com/meridian-chain/corecontracts/domain/market"
	"github.com/meridian-chain/corecontracts/service/keyvalue"
)

type auctionRepoImpl struct {
	auctions keyvalue.Store
	ids      keyvalue.Store
}

// NewAuctionRepo stores auctions under the market's namespaced regions: the
// auction map plus a parallel id index mirroring its keys for enumeration.
func NewAuctionRepo(store keyvalue.Store) market.Repo {
	return &auctionRepoImpl{
		auctions: keyvalue.Namespace(store, domain.KeyspaceAuctions),
		ids:      keyvalue.Namespace(store, domain.KeyspaceAuctionIds),
	}
}

func (im *auctionRepoImpl) Set(ctx ctx.Ctx, auction *market.Auction) error {
	key := []byte(auction.ToId().Key())
	value, err := json.Marshal(auction)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":     err,
			"auction": auction,
		}).Error("failed to json.Marshal")
		return err
	}
	if err := im.auctions.Put(ctx, key, value); err != nil {
		return err
	}
	return im.ids.Put(ctx, key, key)
}

func (im *auctionRepoImpl) FindOne(ctx ctx.Ctx, id market.AuctionId) (*market.Auction, error) {
	raw, err := im.auctions.Get(ctx, []byte(id.Key()))
	if err == keyvalue.ErrNotFound {
		return nil, domain.ErrAuctionNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("failed to auctions.Get")
		return nil, err
	}

	res := market.Auction{}
	if err := json.Unmarshal(raw, &res); err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("failed to json.Unmarshal")
		return nil, err
	}
	return &res, nil
}

func (im *auctionRepoImpl) FindAll(ctx ctx.Ctx) ([]*market.Auction, error) {
	res := []*market.Auction{}
	err := im.ids.Visit(ctx, nil, func(_, id []byte) error {
		raw, err := im.auctions.Get(ctx, id)
		if err != nil {
			return err
		}
		auction := market.Auction{}
		if err := json.Unmarshal(raw, &auction); err != nil {
			return err
		}
		res = append(res, &auction)
		return nil
	})
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
		}).Error("failed to ids.Visit")
		return nil, err
	}
	return res, nil
}

func (im *auctionRepoImpl) Has(ctx ctx.Ctx, id market.AuctionId) (bool, error) {
	return im.auctions.Has(ctx, []byte(id.Key()))
}

func (im *auctionRepoImpl) Remove(ctx ctx.Ctx, id market.AuctionId) error {
	key := []byte(id.Key())
	if err := im.auctions.Delete(ctx, key); err != nil {
		return err
	}
	return im.ids.Delete(ctx, key)
}
