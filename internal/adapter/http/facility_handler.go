package http

import (
	"encoding/json"
	"net/http"

	"credit-ledger/internal/usecase/facility"
	"credit-ledger/internal/usecase/utilization"

	"github.com/labstack/echo/v4"
)

type FacilityHandler struct {
	uc   *facility.Usecase
	util *utilization.Usecase
}

func NewFacilityHandler(uc *facility.Usecase, util *utilization.Usecase) *FacilityHandler {
	return &FacilityHandler{uc: uc, util: util}
}

type createBankReq struct {
	OwnerUserID string `json:"owner_user_id" validate:"required,max=32"`
	Name        string `json:"name"          validate:"required,max=128"`
}

func (h *FacilityHandler) CreateBank(c echo.Context) error {
	var req createBankReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	b, err := h.uc.CreateBank(c.Request().Context(), facility.CreateBankInput{
		OwnerUserID: req.OwnerUserID, Name: req.Name, ActorID: actorOf(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *FacilityHandler) GetBank(c echo.Context) error {
	b, err := h.uc.GetBank(c.Request().Context(), c.Param("bank_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

type createFacilityReq struct {
	OwnerUserID       string      `json:"owner_user_id"             validate:"required,max=32"`
	BankID            string      `json:"bank_id"                   validate:"required,hex32"`
	Name              string      `json:"name"                      validate:"required,max=128"`
	Type              string      `json:"type"                      validate:"required"`
	CreditLimit       json.Number `json:"credit_limit"              validate:"required,dec2"`
	Margin            json.Number `json:"cost_of_funding_margin"    validate:"required,pct"`
	StartDate         string      `json:"start_date"                validate:"required,datetime=2006-01-02"`
	ExpiryDate        string      `json:"expiry_date"               validate:"omitempty,datetime=2006-01-02"`
	RevolvingTracking bool        `json:"revolving_tracking"`
	MaxRevolvingDays  *int        `json:"max_revolving_period_days" validate:"omitempty,gte=1"`
}

func (h *FacilityHandler) CreateFacility(c echo.Context) error {
	var req createFacilityReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	f, err := h.uc.CreateFacility(c.Request().Context(), facility.CreateFacilityInput{
		OwnerUserID:       req.OwnerUserID,
		BankID:            req.BankID,
		Name:              req.Name,
		Type:              req.Type,
		CreditLimit:       dec(req.CreditLimit),
		Margin:            dec(req.Margin),
		StartDate:         date(req.StartDate),
		ExpiryDate:        optDate(req.ExpiryDate),
		RevolvingTracking: req.RevolvingTracking,
		MaxRevolvingDays:  req.MaxRevolvingDays,
		ActorID:           actorOf(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, f)
}

func (h *FacilityHandler) GetFacility(c echo.Context) error {
	f, err := h.uc.GetFacility(c.Request().Context(), c.Param("facility_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, f)
}

// GET /facilities?owner_user_id=...
func (h *FacilityHandler) ListFacilities(c echo.Context) error {
	owner := c.QueryParam("owner_user_id")
	if owner == "" {
		return badParam(c, "owner_user_id", "is required")
	}
	out, err := h.uc.ListFacilities(c.Request().Context(), owner)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"facilities": out})
}

type createCreditLineReq struct {
	Name                 string      `json:"name"                   validate:"required,max=128"`
	CreditLimit          json.Number `json:"credit_limit"           validate:"required,dec2"`
	InterestRateOverride json.Number `json:"interest_rate_override" validate:"omitempty,pct"`
}

func (h *FacilityHandler) CreateCreditLine(c echo.Context) error {
	var req createCreditLineReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	cl, err := h.uc.CreateCreditLine(c.Request().Context(), facility.CreateCreditLineInput{
		FacilityID:           c.Param("facility_id"),
		Name:                 req.Name,
		CreditLimit:          dec(req.CreditLimit),
		InterestRateOverride: optDec(req.InterestRateOverride),
		ActorID:              actorOf(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, cl)
}

func (h *FacilityHandler) ListCreditLines(c echo.Context) error {
	out, err := h.uc.ListCreditLines(c.Request().Context(), c.Param("facility_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"credit_lines": out})
}

type updateMarginReq struct {
	Margin json.Number `json:"cost_of_funding_margin" validate:"required,pct"`
	Reason string      `json:"reason"`
}

func (h *FacilityHandler) UpdateMargin(c echo.Context) error {
	var req updateMarginReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	f, err := h.uc.UpdateMargin(c.Request().Context(), facility.UpdateMarginInput{
		FacilityID: c.Param("facility_id"), Margin: dec(req.Margin), Reason: req.Reason, ActorID: actorOf(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, f)
}

// GET /utilization/:id takes a facility id or a credit line id.
func (h *FacilityHandler) Utilization(c echo.Context) error {
	res, err := h.util.Compute(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
