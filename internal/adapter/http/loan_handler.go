package http

import (
	"encoding/json"
	"net/http"

	"credit-ledger/internal/domain/ledger"
	"credit-ledger/internal/usecase/loan"

	"github.com/labstack/echo/v4"
)

type LoanHandler struct{ uc *loan.Usecase }

func NewLoanHandler(uc *loan.Usecase) *LoanHandler { return &LoanHandler{uc: uc} }

type drawReq struct {
	FacilityID     string      `json:"facility_id"      validate:"required,hex32"`
	CreditLineID   string      `json:"credit_line_id"   validate:"omitempty,hex32"`
	Amount         json.Number `json:"amount"           validate:"required,dec2"`
	StartDate      string      `json:"start_date"       validate:"omitempty,datetime=2006-01-02"`
	DueDate        string      `json:"due_date"         validate:"omitempty,datetime=2006-01-02"`
	TermMonths     int         `json:"term_months"      validate:"gte=0,lte=360"`
	TermDays       int         `json:"term_days"        validate:"gte=0,lte=3650"`
	BenchmarkRate  json.Number `json:"benchmark_rate"   validate:"omitempty,pct"`
	InterestBasis  string      `json:"interest_basis"   validate:"omitempty,basis"`
	ChargesDueDate string      `json:"charges_due_date" validate:"omitempty,datetime=2006-01-02"`
	Memo           string      `json:"memo"`
}

func (h *LoanHandler) Draw(c echo.Context) error {
	var req drawReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	res, err := h.uc.Draw(c.Request().Context(), loan.DrawInput{
		FacilityID:     req.FacilityID,
		CreditLineID:   req.CreditLineID,
		Amount:         dec(req.Amount),
		StartDate:      date(req.StartDate),
		DueDate:        optDate(req.DueDate),
		TermMonths:     req.TermMonths,
		TermDays:       req.TermDays,
		BenchmarkRate:  optDec(req.BenchmarkRate),
		InterestBasis:  req.InterestBasis,
		ChargesDueDate: optDate(req.ChargesDueDate),
		Memo:           req.Memo,
		ActorID:        actorOf(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *LoanHandler) Get(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) Chain(c echo.Context) error {
	out, err := h.uc.Chain(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"cycles": out})
}

func (h *LoanHandler) Transactions(c echo.Context) error {
	out, err := h.uc.Transactions(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"transactions": out})
}

// GET /loans/:loan_id/accrued-interest?as_of=YYYY-MM-DD
func (h *LoanHandler) AccruedInterest(c echo.Context) error {
	asOf, err := queryDate(c, "as_of")
	if err != nil {
		return badParam(c, "as_of", err.Error())
	}
	out, err := h.uc.AccruedInterest(c.Request().Context(), c.Param("loan_id"), asOf)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

type allocationReq struct {
	Interest  json.Number `json:"interest"  validate:"omitempty,dec2"`
	Principal json.Number `json:"principal" validate:"omitempty,dec2"`
	Fees      json.Number `json:"fees"      validate:"omitempty,dec2"`
}

type repaymentReq struct {
	Amount         json.Number    `json:"amount"          validate:"required,dec2"`
	Date           string         `json:"date"            validate:"omitempty,datetime=2006-01-02"`
	Allocation     *allocationReq `json:"allocation"`
	IdempotencyKey string         `json:"idempotency_key" validate:"omitempty,max=128"`
	Memo           string         `json:"memo"`
}

func (h *LoanHandler) Repay(c echo.Context) error {
	var req repaymentReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	in := loan.RepaymentInput{
		LoanID:         c.Param("loan_id"),
		Amount:         dec(req.Amount),
		Date:           date(req.Date),
		IdempotencyKey: req.IdempotencyKey,
		Memo:           req.Memo,
		ActorID:        actorOf(c),
	}
	if req.Allocation != nil {
		in.Allocation = &ledger.Allocation{
			Interest:  dec(req.Allocation.Interest),
			Principal: dec(req.Allocation.Principal),
			Fees:      dec(req.Allocation.Fees),
		}
	}
	res, err := h.uc.RecordRepayment(c.Request().Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	if res.Replayed {
		return c.JSON(http.StatusOK, res)
	}
	return c.JSON(http.StatusCreated, res)
}

type settleReq struct {
	Date   string      `json:"date"   validate:"omitempty,datetime=2006-01-02"`
	Amount json.Number `json:"amount" validate:"omitempty,dec2"`
	Memo   string      `json:"memo"`
}

func (h *LoanHandler) Settle(c echo.Context) error {
	var req settleReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	out, err := h.uc.Settle(c.Request().Context(), loan.SettleInput{
		LoanID:  c.Param("loan_id"),
		Date:    date(req.Date),
		Amount:  optDec(req.Amount),
		Memo:    req.Memo,
		ActorID: actorOf(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

type reasonReq struct {
	Reason string `json:"reason" validate:"max=1000"`
}

func (h *LoanHandler) ReverseSettlement(c echo.Context) error {
	var req reasonReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	out, err := h.uc.ReverseSettlement(c.Request().Context(), loan.ReverseInput{
		LoanID: c.Param("loan_id"), Reason: req.Reason, ActorID: actorOf(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

type revolveReq struct {
	TermMonths    int         `json:"term_months"    validate:"gte=0,lte=360"`
	TermDays      int         `json:"term_days"      validate:"gte=0,lte=3650"`
	BenchmarkRate json.Number `json:"benchmark_rate" validate:"omitempty,pct"`
	Margin        json.Number `json:"margin"         validate:"omitempty,pct"`
	StartDate     string      `json:"start_date"     validate:"omitempty,datetime=2006-01-02"`
	DueDate       string      `json:"due_date"       validate:"omitempty,datetime=2006-01-02"`
	Memo          string      `json:"memo"`
}

func (h *LoanHandler) Revolve(c echo.Context) error {
	var req revolveReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	res, err := h.uc.Revolve(c.Request().Context(), loan.RevolveInput{
		LoanID:        c.Param("loan_id"),
		TermMonths:    req.TermMonths,
		TermDays:      req.TermDays,
		BenchmarkRate: optDec(req.BenchmarkRate),
		Margin:        optDec(req.Margin),
		StartDate:     optDate(req.StartDate),
		DueDate:       optDate(req.DueDate),
		Memo:          req.Memo,
		ActorID:       actorOf(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *LoanHandler) Cancel(c echo.Context) error {
	var req reasonReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	out, err := h.uc.Cancel(c.Request().Context(), loan.CancelInput{
		LoanID: c.Param("loan_id"), Reason: req.Reason, ActorID: actorOf(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// DELETE /loans/:loan_id erases a cancelled loan. Its ledger rows stay.
func (h *LoanHandler) Delete(c echo.Context) error {
	err := h.uc.PermanentlyDelete(c.Request().Context(), loan.DeleteInput{
		LoanID: c.Param("loan_id"), ActorID: actorOf(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
