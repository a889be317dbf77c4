package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"p2p-backoffice/internal/usecase/dashboard"
)

type DashboardHandler struct {
	base
	uc *dashboard.Usecase
}

func NewDashboardHandler(uc *dashboard.Usecase, log *zap.Logger) *DashboardHandler {
	return &DashboardHandler{base: newBase(log), uc: uc}
}

func (h *DashboardHandler) Stats(c echo.Context) error {
	from, err := queryDate(c, "from")
	if err != nil {
		return fail(c, http.StatusBadRequest, "from must be YYYY-MM-DD")
	}
	to, err := queryDate(c, "to")
	if err != nil {
		return fail(c, http.StatusBadRequest, "to must be YYYY-MM-DD")
	}
	st, err := h.uc.Stats(c.Request().Context(), from, to)
	if err != nil {
		return h.writeError(c, err)
	}
	return ok(c, http.StatusOK, "", st)
}

func (h *DashboardHandler) PublicLoans(c echo.Context) error {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid limit")
	}
	loans, err := h.uc.PublicLoans(c.Request().Context(), limit)
	if err != nil {
		return h.writeError(c, err)
	}
	return ok(c, http.StatusOK, "", map[string]any{"count": len(loans), "items": loans})
}
