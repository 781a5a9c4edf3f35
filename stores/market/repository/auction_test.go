package repository

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/meridian-chain/corecontracts/base/ctx"
	"github.com/meridian-chain/corecontracts/domain"
	"github.com/meridian-chain/corecontracts/domain/market"
	"github.com/meridian-chain/corecontracts/service/keyvalue"
)

type auctionRepoSuite struct {
	suite.Suite

	ctx ctx.Ctx
	im  market.Repo
}

func (s *auctionRepoSuite) SetupTest() {
	s.ctx = ctx.Background()
	s.im = NewAuctionRepo(keyvalue.NewInMemory())
}

func TestAuctionRepoSuite(t *testing.T) {
	suite.Run(t, new(auctionRepoSuite))
}

func makeAuction(symbol domain.Symbol, tokenId domain.TokenId) *market.Auction {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	return &market.Auction{
		Creator:     "alice",
		StartDate:   start,
		EndDate:     start.Add(24 * time.Hour),
		BaseSymbol:  symbol,
		QuoteSymbol: "SOUL",
		TokenId:     tokenId,
		Price:       big.NewInt(1000),
	}
}

func (s *auctionRepoSuite) TestFindOne() {
	auction := makeAuction("NACHO", "7")
	s.NoError(s.im.Set(s.ctx, auction))

	got, err := s.im.FindOne(s.ctx, auction.ToId())
	s.NoError(err)
	s.Equal(auction.Creator, got.Creator)
	s.Equal(auction.TokenId, got.TokenId)
	s.Equal(0, auction.Price.Cmp(got.Price))
	s.True(auction.EndDate.Equal(got.EndDate))
}

func (s *auctionRepoSuite) TestFindOneMissing() {
	_, err := s.im.FindOne(s.ctx, market.AuctionId{BaseSymbol: "NACHO", TokenId: "404"})
	s.Equal(domain.ErrAuctionNotFound, err)
}

func (s *auctionRepoSuite) TestFindAllFollowsIndex() {
	s.NoError(s.im.Set(s.ctx, makeAuction("NACHO", "2")))
	s.NoError(s.im.Set(s.ctx, makeAuction("NACHO", "1")))
	s.NoError(s.im.Set(s.ctx, makeAuction("CROWN", "9")))

	all, err := s.im.FindAll(s.ctx)
	s.NoError(err)
	s.Len(all, 3)
}

func (s *auctionRepoSuite) TestRemoveDropsMapAndIndex() {
	auction := makeAuction("NACHO", "1")
	s.NoError(s.im.Set(s.ctx, auction))
	s.NoError(s.im.Remove(s.ctx, auction.ToId()))

	has, err := s.im.Has(s.ctx, auction.ToId())
	s.NoError(err)
	s.False(has)

	all, err := s.im.FindAll(s.ctx)
	s.NoError(err)
	s.Len(all, 0)
}

func (s *auctionRepoSuite) TestCompositeKeysDoNotCollide() {
	s.NoError(s.im.Set(s.ctx, makeAuction("NACHO", "12")))

	has, err := s.im.Has(s.ctx, market.AuctionId{BaseSymbol: "NACHO", TokenId: "1"})
	s.NoError(err)
	s.False(has)
}
