package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	domain "p2p-backoffice/internal/domain/disbursement"
	"p2p-backoffice/internal/usecase/disbursement"
)

type DisbursementHandler struct {
	base
	uc *disbursement.Usecase
}

func NewDisbursementHandler(uc *disbursement.Usecase, log *zap.Logger) *DisbursementHandler {
	return &DisbursementHandler{base: newBase(log), uc: uc}
}

func (h *DisbursementHandler) Get(c echo.Context) error {
	d, err := h.uc.Get(c.Request().Context(), c.Param("disbursement_id"))
	if err != nil {
		return h.writeError(c, err)
	}
	return ok(c, http.StatusOK, "", d)
}

func (h *DisbursementHandler) List(c echo.Context) error {
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

type updateDisbursementReq struct {
	Amount      *float64 `json:"amount"              validate:"omitempty,gt=0,dec2"`
	Method      *string  `json:"disbursement_method" validate:"omitempty,oneof=bank_transfer cash blockchain"`
	BankAccount *string  `json:"bank_account"        validate:"omitempty,max=64"`
	BankName    *string  `json:"bank_name"           validate:"omitempty,max=128"`
	Notes       *string  `json:"notes"`
}

func (h *DisbursementHandler) Update(c echo.Context) error {
	var req updateDisbursementReq
	if next, err := bindAndValidate(c, &req); !next {
		return err
	}
	in := disbursement.UpdateInput{
		Amount:      req.Amount,
		BankAccount: req.BankAccount,
		BankName:    req.BankName,
		Notes:       req.Notes,
	}
	if req.Method != nil {
		m := domain.Method(*req.Method)
		in.Method = &m
	}
	d, err := h.uc.Update(c.Request().Context(), c.Param("disbursement_id"), in)
	if err != nil {
		return h.writeError(c, err)
	}
	return ok(c, http.StatusOK, "disbursement updated", d)
}

func (h *DisbursementHandler) step(c echo.Context, msg string, fn func(ctx context.Context, id, actor string) (*domain.Disbursement, error)) error {
	d, err := fn(c.Request().Context(), c.Param("disbursement_id"), actor(c))
	if err != nil {
		return h.writeError(c, err)
	}
	return ok(c, http.StatusOK, msg, d)
}

func (h *DisbursementHandler) Submit(c echo.Context) error {
	return h.step(c, "disbursement submitted for approval", h.uc.Submit)
}

func (h *DisbursementHandler) Approve(c echo.Context) error {
	return h.step(c, "disbursement approved", h.uc.Approve)
}

func (h *DisbursementHandler) Cancel(c echo.Context) error {
	return h.step(c, "disbursement cancelled", h.uc.Cancel)
}

// Process moves the money; a failed transfer answers 502 with the
// disbursement back in approved.
func (h *DisbursementHandler) Process(c echo.Context) error {
	return h.step(c, "disbursement processed", h.uc.Process)
}

func (h *DisbursementHandler) Reject(c echo.Context) error {
	var req rejectReq
	if next, err := bindAndValidate(c, &req); !next {
		return err
	}
	d, err := h.uc.Reject(c.Request().Context(), c.Param("disbursement_id"), actor(c), req.Reason)
	if err != nil {
		return h.writeError(c, err)
	}
	return ok(c, http.StatusOK, "disbursement rejected", d)
}
