package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"credit-ledger/pkg/rate"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// QuoteStore holds live benchmark quotes keyed by term in months.
type QuoteStore interface {
	rate.QuoteProvider
	Set(ctx context.Context, termMonths int, pct decimal.Decimal) error
}

type RateHandler struct{ quotes QuoteStore }

func NewRateHandler(quotes QuoteStore) *RateHandler { return &RateHandler{quotes: quotes} }

// parseTerm accepts "3M", "3m" or "3".
func parseTerm(raw string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSuffix(strings.ToUpper(strings.TrimSpace(raw)), "M"))
	return n, err == nil && n > 0
}

type quoteReq struct {
	Rate json.Number `json:"rate" validate:"required,pct"`
}

type quoteResp struct {
	Term   string          `json:"term"`
	Rate   decimal.Decimal `json:"rate"`
	Source rate.Source     `json:"source"`
}

func (h *RateHandler) Put(c echo.Context) error {
	term, ok := parseTerm(c.Param("term"))
	if !ok {
		return badParam(c, "term", "must be a positive number of months, e.g. 3M")
	}
	var req quoteReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	if err := h.quotes.Set(c.Request().Context(), term, dec(req.Rate)); err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "rate store unavailable"})
	}
	return c.JSON(http.StatusOK, quoteResp{Term: rate.TermLabel(term), Rate: dec(req.Rate), Source: rate.SourceLive})
}

// Get answers with the live quote when one is stored, else the standard or estimated rate.
func (h *RateHandler) Get(c echo.Context) error {
	term, ok := parseTerm(c.Param("term"))
	if !ok {
		return badParam(c, "term", "must be a positive number of months, e.g. 3M")
	}
	v, src, err := rate.Resolve(c.Request().Context(), h.quotes, term, nil)
	if err != nil {
		c.Logger().Warn(err)
		v, src, err = rate.Resolve(c.Request().Context(), nil, term, nil)
	}
	if err != nil {
		return badParam(c, "term", err.Error())
	}
	return c.JSON(http.StatusOK, quoteResp{Term: rate.TermLabel(term), Rate: v, Source: src})
}
