package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/meridian-chain/corecontracts/base/ctx"
	"github.com/meridian-chain/corecontracts/base/delivery"
	"github.com/meridian-chain/corecontracts/domain"
	"github.com/meridian-chain/corecontracts/domain/runtime"
	"github.com/meridian-chain/corecontracts/domain/sale"
	"github.com/meridian-chain/corecontracts/middleware"
)

type handler struct {
	sales sale.Repo
	clock runtime.Clock
}

// New registers the read-only sale query surface over the replicated
// contract storage.
func New(e *echo.Echo, sales sale.Repo, clock runtime.Clock) {
	h := &handler{sales, clock}

	gs := e.Group("/sales")

	gs.GET("", h.getSales)

	g := e.Group("/sale/:hash", middleware.IsValidSaleHash("hash"))

	g.GET("", h.getSale)

	g.GET("/active", h.getActive)

	g.GET("/supply", h.getSupply)

	g.GET("/participants", h.getParticipants)

	g.GET("/whitelist", h.getWhitelist)

	g.GET("/balance/:address", h.getPurchasedAmount)
}

func (h *handler) hash(c echo.Context) domain.SaleHash {
	return domain.SaleHash(c.Param("hash"))
}

func (h *handler) getSales(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	res, err := h.sales.FindAll(ctx)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) getSale(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	res, err := h.sales.FindOne(ctx, h.hash(c))
	if err == domain.ErrSaleNotFound {
		return delivery.MakeJsonResp(c, http.StatusNotFound, err)
	} else if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) getActive(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	s, err := h.sales.FindOne(ctx, h.hash(c))
	if err == domain.ErrSaleNotFound {
		return delivery.MakeJsonResp(c, http.StatusNotFound, err)
	} else if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	now := h.clock.Now(ctx)
	active := !s.Finalized && !now.Before(s.StartDate) && !now.After(s.EndDate)
	return delivery.MakeJsonResp(c, http.StatusOK, map[string]bool{"active": active})
}

func (h *handler) getSupply(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	hash := h.hash(c)
	if found, err := h.sales.Has(ctx, hash); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	} else if !found {
		return delivery.MakeJsonResp(c, http.StatusNotFound, domain.ErrSaleNotFound)
	}

	supply, err := h.sales.Supply(ctx, hash)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, map[string]string{"supply": supply.String()})
}

func (h *handler) getParticipants(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	res, err := h.sales.Participants(ctx, h.hash(c))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) getWhitelist(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	res, err := h.sales.Whitelisted(ctx, h.hash(c))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) getPurchasedAmount(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	buyer := domain.Address(c.Param("address"))
	amount, err := h.sales.PurchasedAmount(ctx, h.hash(c), buyer)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, map[string]string{"amount": amount.String()})
}
