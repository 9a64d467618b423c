package http

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Check pings one backing store for the health endpoint.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

type Handler struct{ checks []Check }

func NewHandler(checks ...Check) *Handler { return &Handler{checks: checks} }

// Health answers 200 when every check passes and 503 naming the failed ones otherwise.
func (h *Handler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status, code := "ok", http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for _, ck := range h.checks {
		if err := ck.Ping(ctx); err != nil {
			deps[ck.Name] = err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
			continue
		}
		deps[ck.Name] = "ok"
	}
	body := map[string]any{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339Nano),
	}
	if len(deps) > 0 {
		body["dependencies"] = deps
	}
	return c.JSON(code, body)
}

type Handlers struct {
	Health     *Handler
	Loans      *LoanHandler
	Facilities *FacilityHandler
	Collateral *CollateralHandler
	Exposure   *ExposureHandler
	Rates      *RateHandler
}

// Register mounts every route. mutating is applied to state-changing routes only.
func Register(e *echo.Echo, h Handlers, mutating ...echo.MiddlewareFunc) {
	e.GET("/health", h.Health.Health)

	if l := h.Loans; l != nil {
		e.POST("/loans", l.Draw, mutating...)
		e.GET("/loans/:loan_id", l.Get)
		e.GET("/loans/:loan_id/chain", l.Chain)
		e.GET("/loans/:loan_id/transactions", l.Transactions)
		e.GET("/loans/:loan_id/accrued-interest", l.AccruedInterest)
		e.POST("/loans/:loan_id/repayments", l.Repay, mutating...)
		e.POST("/loans/:loan_id/settle", l.Settle, mutating...)
		e.POST("/loans/:loan_id/settle/reverse", l.ReverseSettlement, mutating...)
		e.POST("/loans/:loan_id/revolve", l.Revolve, mutating...)
		e.POST("/loans/:loan_id/cancel", l.Cancel, mutating...)
		e.DELETE("/loans/:loan_id", l.Delete, mutating...)
	}
	if f := h.Facilities; f != nil {
		e.POST("/banks", f.CreateBank, mutating...)
		e.GET("/banks/:bank_id", f.GetBank)
		e.POST("/facilities", f.CreateFacility, mutating...)
		e.GET("/facilities", f.ListFacilities)
		e.GET("/facilities/:facility_id", f.GetFacility)
		e.PUT("/facilities/:facility_id/margin", f.UpdateMargin, mutating...)
		e.POST("/facilities/:facility_id/credit-lines", f.CreateCreditLine, mutating...)
		e.GET("/facilities/:facility_id/credit-lines", f.ListCreditLines)
		e.GET("/utilization/:id", f.Utilization)
	}
	if c := h.Collateral; c != nil {
		e.POST("/collaterals", c.Create, mutating...)
		e.POST("/collaterals/:collateral_id/assignments", c.Assign, mutating...)
		e.GET("/collaterals/:collateral_id/assignments", c.Assignments)
	}
	if x := h.Exposure; x != nil {
		e.POST("/users/:user_id/exposure", x.Upsert, mutating...)
		e.GET("/users/:user_id/exposure", x.List)
	}
	if r := h.Rates; r != nil {
		e.PUT("/rates/:term", r.Put, mutating...)
		e.GET("/rates/:term", r.Get)
	}
}
