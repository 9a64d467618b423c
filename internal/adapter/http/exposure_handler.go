package http

import (
	"net/http"
	"time"

	"credit-ledger/internal/usecase/exposure"

	"github.com/labstack/echo/v4"
)

type ExposureHandler struct {
	uc  *exposure.Usecase
	now func() time.Time
}

func NewExposureHandler(uc *exposure.Usecase) *ExposureHandler {
	return &ExposureHandler{uc: uc, now: time.Now}
}

func (h *ExposureHandler) snapshotDate(c echo.Context) (time.Time, error) {
	d, err := queryDate(c, "date")
	if err != nil {
		return time.Time{}, err
	}
	if d == nil {
		return h.now().UTC(), nil
	}
	return *d, nil
}

// POST /users/:user_id/exposure?date=YYYY-MM-DD recomputes that day's snapshot.
func (h *ExposureHandler) Upsert(c echo.Context) error {
	d, err := h.snapshotDate(c)
	if err != nil {
		return badParam(c, "date", err.Error())
	}
	rows, err := h.uc.Upsert(c.Request().Context(), c.Param("user_id"), d)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"snapshots": rows})
}

func (h *ExposureHandler) List(c echo.Context) error {
	d, err := h.snapshotDate(c)
	if err != nil {
		return badParam(c, "date", err.Error())
	}
	rows, err := h.uc.List(c.Request().Context(), c.Param("user_id"), d)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"snapshots": rows})
}
