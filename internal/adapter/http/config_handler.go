package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"p2p-backoffice/internal/usecase/loanconfig"
)

type ConfigHandler struct {
	base
	p *loanconfig.Provider
}

func NewConfigHandler(p *loanconfig.Provider, log *zap.Logger) *ConfigHandler {
	return &ConfigHandler{base: newBase(log), p: p}
}

func (h *ConfigHandler) Public(c echo.Context) error {
	out, err := h.p.PublicConfig(c.Request().Context())
	if err != nil {
		return h.writeError(c, err)
	}
	return ok(c, http.StatusOK, "", out)
}

func (h *ConfigHandler) TestConnection(c echo.Context) error {
	if err := h.p.TestConnection(c.Request().Context()); err != nil {
		return h.writeError(c, err)
	}
	return ok(c, http.StatusOK, "connection ok", nil)
}

func (h *ConfigHandler) Sync(c echo.Context) error {
	cfg, err := h.p.SyncConfig(c.Request().Context())
	if err != nil {
		return h.writeError(c, err)
	}
	return ok(c, http.StatusOK, "configuration synced", map[string]string{"external_id": cfg.ExternalID})
}

type createLoanTypeReq struct {
	Name           string  `json:"name"             validate:"required,max=128"`
	Code           string  `json:"code"             validate:"required,max=32"`
	Description    string  `json:"description"`
	InterestRate   float64 `json:"interest_rate"    validate:"gte=0,dec2"`
	TermMonths     int     `json:"term_months"      validate:"required,gt=0,lte=360"`
	MinAmount      float64 `json:"min_amount"       validate:"gte=0,dec2"`
	MaxAmount      float64 `json:"max_amount"       validate:"gte=0,dec2"`
	ServiceFeeRate float64 `json:"service_fee_rate" validate:"gte=0,dec2"`
	LateFeeRate    float64 `json:"late_fee_rate"    validate:"gte=0,dec2"`
}

func (h *ConfigHandler) CreateLoanType(c echo.Context) error {
	var req createLoanTypeReq
	if next, err := bindAndValidate(c, &req); !next {
		return err
	}
	t, err := h.p.CreateLoanType(c.Request().Context(), loanconfig.CreateLoanTypeInput(req))
	if err != nil {
		return h.writeError(c, err)
	}
	return ok(c, http.StatusCreated, "loan type created", t)
}

func (h *ConfigHandler) ListLoanTypes(c echo.Context) error {
	out, err := h.p.ListLoanTypes(c.Request().Context())
	if err != nil {
		return h.writeError(c, err)
	}
	return ok(c, http.StatusOK, "", out)
}

func (h *ConfigHandler) GetLoanType(c echo.Context) error {
	tid, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid loan type id")
	}
	t, err := h.p.GetLoanType(c.Request().Context(), tid)
	if err != nil {
		return h.writeError(c, err)
	}
	return ok(c, http.StatusOK, "", t)
}
