package http

import (
	"encoding/json"
	"net/http"

	"credit-ledger/internal/usecase/collateral"

	"github.com/labstack/echo/v4"
)

type CollateralHandler struct{ uc *collateral.Usecase }

func NewCollateralHandler(uc *collateral.Usecase) *CollateralHandler {
	return &CollateralHandler{uc: uc}
}

type createCollateralReq struct {
	OwnerUserID string      `json:"owner_user_id" validate:"required,max=32"`
	Description string      `json:"description"`
	Value       json.Number `json:"value"         validate:"omitempty,dec2"`
}

func (h *CollateralHandler) Create(c echo.Context) error {
	var req createCollateralReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	out, err := h.uc.Create(c.Request().Context(), collateral.CreateInput{
		OwnerUserID: req.OwnerUserID, Description: req.Description, Value: optDec(req.Value),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

// Exactly one of facility_id, credit_line_id and bank_id must be set.
type assignCollateralReq struct {
	FacilityID    string      `json:"facility_id"    validate:"omitempty,hex32"`
	CreditLineID  string      `json:"credit_line_id" validate:"omitempty,hex32"`
	BankID        string      `json:"bank_id"        validate:"omitempty,hex32"`
	PledgeType    string      `json:"pledge_type"    validate:"required,pledge"`
	PledgedValue  json.Number `json:"pledged_value"  validate:"omitempty,dec2"`
	AdvanceRate   json.Number `json:"advance_rate"   validate:"omitempty,pct"`
	EffectiveDate string      `json:"effective_date" validate:"required,datetime=2006-01-02"`
	ReleaseDate   string      `json:"release_date"   validate:"omitempty,datetime=2006-01-02"`
}

func (h *CollateralHandler) Assign(c echo.Context) error {
	var req assignCollateralReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	out, err := h.uc.Assign(c.Request().Context(), collateral.AssignInput{
		CollateralID:  c.Param("collateral_id"),
		FacilityID:    req.FacilityID,
		CreditLineID:  req.CreditLineID,
		BankID:        req.BankID,
		PledgeType:    req.PledgeType,
		PledgedValue:  optDec(req.PledgedValue),
		AdvanceRate:   optDec(req.AdvanceRate),
		EffectiveDate: date(req.EffectiveDate),
		ReleaseDate:   optDate(req.ReleaseDate),
		ActorID:       actorOf(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *CollateralHandler) Assignments(c echo.Context) error {
	out, err := h.uc.Assignments(c.Request().Context(), c.Param("collateral_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"assignments": out})
}
