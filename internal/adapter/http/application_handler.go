package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	domain "p2p-backoffice/internal/domain/application"
	disbDomain "p2p-backoffice/internal/domain/disbursement"
	"p2p-backoffice/internal/domain/rate"
	"p2p-backoffice/internal/usecase/application"
	"p2p-backoffice/internal/usecase/disbursement"
)

type ApplicationHandler struct {
	base
	uc    *application.Usecase
	disbs *disbursement.Usecase
}

func NewApplicationHandler(uc *application.Usecase, disbs *disbursement.Usecase, log *zap.Logger) *ApplicationHandler {
	return &ApplicationHandler{base: newBase(log), uc: uc, disbs: disbs}
}

type createApplicationReq struct {
	BorrowerID      uint64  `json:"borrower_id"      validate:"required,gt=0"`
	LoanTypeID      uint64  `json:"loan_type_id"     validate:"required,gt=0"`
	RequestedAmount float64 `json:"requested_amount" validate:"required,gt=0,dec2"`
	Purpose         string  `json:"purpose"          validate:"max=2000"`
	ApplicationDate string  `json:"application_date" validate:"omitempty,datelike"`
}

func (h *ApplicationHandler) Create(c echo.Context) error {
	var req createApplicationReq
	if next, err := bindAndValidate(c, &req); !next {
		return err
	}
	a, err := h.uc.Create(c.Request().Context(), application.CreateInput{
		BorrowerID:      req.BorrowerID,
		LoanTypeID:      req.LoanTypeID,
		RequestedAmount: req.RequestedAmount,
		Purpose:         req.Purpose,
		ApplicationDate: parseDate(req.ApplicationDate),
	})
	if err != nil {
		return h.writeError(c, err)
	}
	return ok(c, http.StatusCreated, "loan application created", a)
}

func (h *ApplicationHandler) Get(c echo.Context) error {
	a, err := h.uc.Get(c.Request().Context(), c.Param("application_id"))
	if err != nil {
		return h.writeError(c, err)
	}
	return ok(c, http.StatusOK, "", a)
}

func (h *ApplicationHandler) List(c echo.Context) error {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid limit")
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid offset")
	}
	borrower, err := queryUint(c, "borrower_id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid borrower_id")
	}
	page, err := h.uc.List(c.Request().Context(), domain.ListFilter{
		Status:     domain.Status(c.QueryParam("status")),
		BorrowerID: borrower,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return h.writeError(c, err)
	}
	return ok(c, http.StatusOK, "", page)
}

func (h *ApplicationHandler) Schedule(c echo.Context) error {
	rows, err := h.uc.Schedule(c.Request().Context(), c.Param("application_id"))
	if err != nil {
		return h.writeError(c, err)
	}
	return ok(c, http.StatusOK, "", rows)
}

func (h *ApplicationHandler) transition(c echo.Context, msg string, fn func(context.Context, string) (*domain.LoanApplication, error)) error {
	a, err := fn(c.Request().Context(), c.Param("application_id"))
	if err != nil {
		return h.writeError(c, err)
	}
	return ok(c, http.StatusOK, msg, a)
}

func (h *ApplicationHandler) Submit(c echo.Context) error {
	return h.transition(c, "application submitted", h.uc.Submit)
}

func (h *ApplicationHandler) Review(c echo.Context) error {
	return h.transition(c, "application under review", h.uc.Review)
}

type approveReq struct {
	ApprovedAmount float64 `json:"approved_amount" validate:"gte=0,dec2"`
}

func (h *ApplicationHandler) Approve(c echo.Context) error {
	var req approveReq
	if next, err := bindAndValidate(c, &req); !next {
		return err
	}
	a, err := h.uc.Approve(c.Request().Context(), c.Param("application_id"), application.ApproveInput{
		Actor:  actor(c),
		Amount: req.ApprovedAmount,
	})
	if err != nil {
		return h.writeError(c, err)
	}
	return ok(c, http.StatusOK, "application approved", a)
}

type rejectReq struct {
	Reason string `json:"reason" validate:"required,max=2000"`
}

func (h *ApplicationHandler) Reject(c echo.Context) error {
	var req rejectReq
	if next, err := bindAndValidate(c, &req); !next {
		return err
	}
	a, err := h.uc.Reject(c.Request().Context(), c.Param("application_id"), req.Reason)
	if err != nil {
		return h.writeError(c, err)
	}
	return ok(c, http.StatusOK, "application rejected", a)
}

func (h *ApplicationHandler) Activate(c echo.Context) error {
	return h.transition(c, "loan activated", h.uc.Activate)
}

func (h *ApplicationHandler) Complete(c echo.Context) error {
	return h.transition(c, "loan completed", h.uc.Complete)
}

func (h *ApplicationHandler) MarkDefaulted(c echo.Context) error {
	return h.transition(c, "loan marked as defaulted", h.uc.MarkDefaulted)
}

type disburseReq struct {
	Amount           float64 `json:"amount"              validate:"gte=0,dec2"`
	Method           string  `json:"disbursement_method" validate:"omitempty,oneof=bank_transfer cash blockchain"`
	BankAccount      string  `json:"bank_account"        validate:"max=64"`
	BankName         string  `json:"bank_name"           validate:"max=128"`
	Notes            string  `json:"notes"`
	DisbursementDate string  `json:"disbursement_date"   validate:"omitempty,datelike"`
}

// RequestDisbursement opens a draft disbursement; no money moves.
func (h *ApplicationHandler) RequestDisbursement(c echo.Context) error {
	var req disburseReq
	if next, err := bindAndValidate(c, &req); !next {
		return err
	}
	d, err := h.disbs.CreateForApplication(c.Request().Context(), c.Param("application_id"), disbursement.CreateInput{
		Amount:           req.Amount,
		Method:           disbDomain.Method(req.Method),
		BankAccount:      req.BankAccount,
		BankName:         req.BankName,
		Notes:            req.Notes,
		DisbursementDate: parseDate(req.DisbursementDate),
		Actor:            actor(c),
	})
	if err != nil {
		return h.writeError(c, err)
	}
	return ok(c, http.StatusCreated, "disbursement requested", d)
}

type quoteReq struct {
	Principal     float64 `json:"principal"      validate:"required,gt=0,dec2"`
	TermMonths    int     `json:"term_months"    validate:"required,gt=0,lte=360"`
	CreditScore   *int    `json:"credit_score"   validate:"omitempty,gte=0,lte=1000"`
	HasCollateral bool    `json:"has_collateral"`
	RiskLevel     string  `json:"risk_level"     validate:"omitempty,oneof=low medium high"`
}

func (h *ApplicationHandler) Quote(c echo.Context) error {
	var req quoteReq
	if next, err := bindAndValidate(c, &req); !next {
		return err
	}
	term := req.TermMonths
	q, err := h.uc.Quote(c.Request().Context(), application.QuoteInput{
		Principal:  req.Principal,
		TermMonths: req.TermMonths,
		Profile: rate.Profile{
			CreditScore:   req.CreditScore,
			TermMonths:    &term,
			HasCollateral: req.HasCollateral,
			RiskLevel:     rate.RiskLevel(req.RiskLevel),
		},
	})
	if err != nil {
		return h.writeError(c, err)
	}
	return ok(c, http.StatusOK, "", q)
}
