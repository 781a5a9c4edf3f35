package repository

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/meridian-chain/corecontracts/base/ctx"
	"github.com/meridian-chain/corecontracts/domain"
	"github.com/meridian-chain/corecontracts/domain/sale"
	"github.com/meridian-chain/corecontracts/service/keyvalue"
)

type saleRepoSuite struct {
	suite.Suite

	ctx  ctx.Ctx
	im   sale.Repo
	hash domain.SaleHash
}

func (s *saleRepoSuite) SetupTest() {
	s.ctx = ctx.Background()
	s.im = NewSaleRepo(keyvalue.NewInMemory())

	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	def := sale.Definition{
		Creator:       "alice",
		Name:          "launch",
		StartDate:     start,
		EndDate:       start.Add(7 * 24 * time.Hour),
		SellSymbol:    "GAME",
		ReceiveSymbol: "SOUL",
		Price:         big.NewInt(100_000_000),
		SoftCap:       big.NewInt(500),
		HardCap:       big.NewInt(1000),
		UserLimit:     big.NewInt(0),
	}
	hash, err := def.Hash()
	s.Require().NoError(err)
	s.hash = hash
	s.Require().NoError(s.im.Create(s.ctx, &sale.Sale{Definition: def, Hash: hash}))
}

func TestSaleRepoSuite(t *testing.T) {
	suite.Run(t, new(saleRepoSuite))
}

func (s *saleRepoSuite) TestFindOne() {
	got, err := s.im.FindOne(s.ctx, s.hash)
	s.NoError(err)
	s.Equal(domain.Address("alice"), got.Creator)
	s.False(got.Finalized)
}

func (s *saleRepoSuite) TestFindOneMissing() {
	_, err := s.im.FindOne(s.ctx, "0xdead")
	s.Equal(domain.ErrSaleNotFound, err)
}

func (s *saleRepoSuite) TestSetFinalized() {
	s.NoError(s.im.SetFinalized(s.ctx, s.hash))
	got, err := s.im.FindOne(s.ctx, s.hash)
	s.NoError(err)
	s.True(got.Finalized)
}

func (s *saleRepoSuite) TestSupplyDefaultsToZero() {
	supply, err := s.im.Supply(s.ctx, s.hash)
	s.NoError(err)
	s.Equal(int64(0), supply.Int64())
}

func (s *saleRepoSuite) TestSetSupply() {
	s.NoError(s.im.SetSupply(s.ctx, s.hash, big.NewInt(700)))
	supply, err := s.im.Supply(s.ctx, s.hash)
	s.NoError(err)
	s.Equal(int64(700), supply.Int64())
}

func (s *saleRepoSuite) TestPurchasedAmounts() {
	amount, err := s.im.PurchasedAmount(s.ctx, s.hash, "bob")
	s.NoError(err)
	s.Equal(int64(0), amount.Int64())

	s.NoError(s.im.SetPurchasedAmount(s.ctx, s.hash, "bob", big.NewInt(300)))
	amount, err = s.im.PurchasedAmount(s.ctx, s.hash, "bob")
	s.NoError(err)
	s.Equal(int64(300), amount.Int64())
}

func (s *saleRepoSuite) TestParticipantsAreIdempotent() {
	s.NoError(s.im.AddParticipant(s.ctx, s.hash, "bob"))
	s.NoError(s.im.AddParticipant(s.ctx, s.hash, "bob"))
	s.NoError(s.im.AddParticipant(s.ctx, s.hash, "carol"))

	buyers, err := s.im.Participants(s.ctx, s.hash)
	s.NoError(err)
	s.Equal([]domain.Address{"bob", "carol"}, buyers)
}

func (s *saleRepoSuite) TestWhitelistMembership() {
	listed, err := s.im.IsWhitelisted(s.ctx, s.hash, "bob")
	s.NoError(err)
	s.False(listed)

	s.NoError(s.im.AddToWhitelist(s.ctx, s.hash, "bob"))
	listed, err = s.im.IsWhitelisted(s.ctx, s.hash, "bob")
	s.NoError(err)
	s.True(listed)

	all, err := s.im.Whitelisted(s.ctx, s.hash)
	s.NoError(err)
	s.Equal([]domain.Address{"bob"}, all)

	s.NoError(s.im.RemoveFromWhitelist(s.ctx, s.hash, "bob"))
	listed, err = s.im.IsWhitelisted(s.ctx, s.hash, "bob")
	s.NoError(err)
	s.False(listed)
}

func (s *saleRepoSuite) TestSubRegionsAreScopedPerSale() {
	other := domain.SaleHash("0xother")
	s.NoError(s.im.AddParticipant(s.ctx, s.hash, "bob"))

	buyers, err := s.im.Participants(s.ctx, other)
	s.NoError(err)
	s.Len(buyers, 0)
}
