package http

import (
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"

	"github.com/meridian-chain/corecontracts/base/ctx"
	"github.com/meridian-chain/corecontracts/base/delivery"
	"github.com/meridian-chain/corecontracts/base/ptr"
	"github.com/meridian-chain/corecontracts/domain/market"
	"github.com/meridian-chain/corecontracts/middleware"
	"github.com/meridian-chain/corecontracts/service/keyvalue"
	marketRepo "github.com/meridian-chain/corecontracts/stores/market/repository"
)

type handlerSuite struct {
	suite.Suite

	ctx  ctx.Ctx
	e    *echo.Echo
	repo market.Repo
}

func (s *handlerSuite) SetupTest() {
	s.ctx = ctx.Background()
	s.e = echo.New()
	middL := middleware.InitMiddleware()
	s.e.Use(middL.AddContext())
	s.repo = marketRepo.NewAuctionRepo(keyvalue.NewInMemory())
	New(s.e, s.repo)
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(handlerSuite))
}

func (s *handlerSuite) get(path string) (*httptest.ResponseRecorder, delivery.JsonResponse) {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	res := delivery.JsonResponse{}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &res))
	return rec, res
}

func (s *handlerSuite) TestGetAuctionsFiltered() {
	s.Require().NoError(s.repo.Set(s.ctx, &market.Auction{
		Creator: "alice", BaseSymbol: "NACHO", QuoteSymbol: "SOUL", TokenId: "7", Price: big.NewInt(10),
	}))
	s.Require().NoError(s.repo.Set(s.ctx, &market.Auction{
		Creator: "bob", BaseSymbol: "NACHO", QuoteSymbol: "KCAL", TokenId: "8", Price: big.NewInt(20),
	}))

	rec, res := s.get("/market/auctions?quoteSymbol=SOUL")
	s.Equal(http.StatusOK, rec.Code)
	s.Len(res.Data.([]interface{}), 1)

	rec, res = s.get("/market/auctions")
	s.Equal(http.StatusOK, rec.Code)
	s.Len(res.Data.([]interface{}), 2)
}

func (s *handlerSuite) TestGetAuctionNotFound() {
	rec, res := s.get("/market/auction/NACHO/404")
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal(delivery.JsonResponseStatusFail, res.Status)
}

func (s *handlerSuite) TestGetAuctionBadSymbol() {
	rec, _ := s.get("/market/auction/nacho/7")
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *handlerSuite) TestFilterAuctions() {
	auctions := []*market.Auction{
		{Creator: "alice", BaseSymbol: "NACHO", QuoteSymbol: "SOUL", TokenId: "7"},
		{Creator: "bob", BaseSymbol: "NACHO", QuoteSymbol: "KCAL", TokenId: "8"},
		{Creator: "alice", BaseSymbol: "GHOST", QuoteSymbol: "SOUL", TokenId: "9"},
	}

	tests := []struct {
		desc   string
		params *SearchParams
		expLen int
	}{
		{
			desc:   "no filters",
			params: &SearchParams{},
			expLen: 3,
		},
		{
			desc:   "by quote symbol",
			params: &SearchParams{QuoteSymbol: ptr.String("SOUL")},
			expLen: 2,
		},
		{
			desc:   "by base symbol and creator",
			params: &SearchParams{BaseSymbol: ptr.String("NACHO"), Creator: ptr.String("alice")},
			expLen: 1,
		},
		{
			desc:   "no match",
			params: &SearchParams{Creator: ptr.String("mallory")},
			expLen: 0,
		},
	}
	for _, t := range tests {
		s.Len(filterAuctions(auctions, t.params), t.expLen, t.desc)
	}
}
