package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"credit-ledger/internal/domain/apperr"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// HeaderActorID names the caller recorded on audit rows.
const HeaderActorID = "Ax-Actor-Id"

const dateLayout = "2006-01-02"

func actorOf(c echo.Context) string {
	return strings.TrimSpace(c.Request().Header.Get(HeaderActorID))
}

// bind decodes and validates the body. It writes the 400/422 response itself and
// reports false when the handler should stop.
func bind(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}

// Map domain errors → HTTP codes
func statusOf(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusUnprocessableEntity
	case apperr.KindPrecondition, apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func respondError(c echo.Context, err error) error {
	status := statusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
		c.Logger().Error(err)
	}
	return c.JSON(status, ErrorResponse{Error: msg, Code: apperr.CodeOf(err)})
}

// badParam answers 400 for malformed path or query input.
func badParam(c echo.Context, field, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "invalid parameter",
		Details: []FieldError{{Field: field, Message: msg}},
	})
}

// Request bodies carry money and rates as json.Number so both 1000.5 and "1000.50"
// are accepted; validators have already checked the format.
func dec(n json.Number) decimal.Decimal {
	d, _ := decimal.NewFromString(string(n))
	return d
}

func optDec(n json.Number) *decimal.Decimal {
	if n == "" {
		return nil
	}
	d := dec(n)
	return &d
}

func date(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, _ := time.Parse(dateLayout, s)
	return t
}

func optDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t := date(s)
	return &t
}

func queryDate(c echo.Context, name string) (*time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, errors.New("must be a date in " + dateLayout + " format")
	}
	return &t, nil
}

func containsFieldMsg(list []FieldError, field, substr string) bool {
	for _, e := range list {
		if e.Field == field && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}
