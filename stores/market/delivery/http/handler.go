package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/meridian-chain/corecontracts/base/ctx"
	"github.com/meridian-chain/corecontracts/base/delivery"
	"github.com/meridian-chain/corecontracts/domain"
	"github.com/meridian-chain/corecontracts/domain/market"
	"github.com/meridian-chain/corecontracts/middleware"
)

type handler struct {
	auctions market.Repo
}

// New registers the read-only auction query surface. Settlement itself only
// runs inside the chain runtime; this surface serves indexers and frontends
// off the replicated contract storage.
func New(e *echo.Echo, auctions market.Repo) {
	h := &handler{auctions}

	gs := e.Group("/market")

	gs.GET("/auctions", h.getAuctions)

	g := e.Group("/market/auction/:symbol/:tokenId", middleware.IsValidSymbol("symbol"))

	g.GET("", h.getAuction)
}

// SearchParams are the optional auction list filters.
type SearchParams struct {
	BaseSymbol  *string `query:"baseSymbol"`
	QuoteSymbol *string `query:"quoteSymbol"`
	Creator     *string `query:"creator"`
}

func (h *handler) getAuctions(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := &SearchParams{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}

	res, err := h.auctions.FindAll(ctx)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, filterAuctions(res, p))
}

func filterAuctions(auctions []*market.Auction, p *SearchParams) []*market.Auction {
	res := []*market.Auction{}
	for _, a := range auctions {
		if p.BaseSymbol != nil && a.BaseSymbol != domain.Symbol(*p.BaseSymbol) {
			continue
		}
		if p.QuoteSymbol != nil && a.QuoteSymbol != domain.Symbol(*p.QuoteSymbol) {
			continue
		}
		if p.Creator != nil && a.Creator != domain.Address(*p.Creator) {
			continue
		}
		res = append(res, a)
	}
	return res
}

func (h *handler) getAuction(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	id := market.AuctionId{}
	if err := c.Bind(&id); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}

	res, err := h.auctions.FindOne(ctx, id)
	if err == domain.ErrAuctionNotFound {
		return delivery.MakeJsonResp(c, http.StatusNotFound, err)
	} else if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}
