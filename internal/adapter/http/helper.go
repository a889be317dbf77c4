package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"p2p-backoffice/internal/adapter/middleware"
	"p2p-backoffice/internal/adapter/remote"
	"p2p-backoffice/internal/domain/application"
	"p2p-backoffice/internal/domain/disbursement"
	"p2p-backoffice/internal/domain/loanconfig"
	"p2p-backoffice/internal/domain/mirror"
	"p2p-backoffice/internal/domain/rate"
	"p2p-backoffice/internal/infrastructure/logger"
)

const dateLayout = "2006-01-02"

// Response is the envelope every route answers with.
type Response struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Error   string       `json:"error,omitempty"`
	Details []FieldError `json:"details,omitempty"`
	Data    any          `json:"data,omitempty"`
}

func ok(c echo.Context, code int, msg string, data any) error {
	return c.JSON(code, Response{Success: true, Message: msg, Data: data})
}

func fail(c echo.Context, code int, msg string) error {
	return c.JSON(code, Response{Success: false, Error: msg})
}

func invalid(c echo.Context, err error) error {
	return c.JSON(http.StatusUnprocessableEntity, Response{
		Success: false,
		Error:   "validation failed",
		Details: ToFieldErrors(err),
	})
}

// bindAndValidate writes the 400/422 itself and reports whether to go on.
func bindAndValidate(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, fail(c, http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(req); err != nil {
		return false, invalid(c, err)
	}
	return true, nil
}

// StatusFor maps domain errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, application.ErrNotFound),
		errors.Is(err, disbursement.ErrNotFound),
		errors.Is(err, loanconfig.ErrNotFound),
		errors.Is(err, loanconfig.ErrNoActiveConfig):
		return http.StatusNotFound
	case errors.Is(err, application.ErrInvalidTransition),
		errors.Is(err, disbursement.ErrInvalidTransition),
		errors.Is(err, application.ErrLimitReached),
		errors.Is(err, mirror.ErrSyncInProgress):
		return http.StatusConflict
	case errors.Is(err, application.ErrInvalidAmount),
		errors.Is(err, disbursement.ErrInvalidAmount),
		errors.Is(err, loanconfig.ErrInvalidConfig),
		errors.Is(err, loanconfig.ErrInvalidType),
		errors.Is(err, rate.ErrInvalidTerm),
		errors.Is(err, rate.ErrInvalidRate),
		errors.Is(err, rate.ErrOutOfRange),
		errors.Is(err, rate.ErrInvalidFactor):
		return http.StatusUnprocessableEntity
	case errors.Is(err, disbursement.ErrTransferFailed),
		errors.Is(err, remote.ErrRemote):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

type base struct{ log *zap.Logger }

func newBase(log *zap.Logger) base { return base{log: logger.OrNop(log)} }

// writeError hides internal failures behind a generic message.
func (b base) writeError(c echo.Context, err error) error {
	code := StatusFor(err)
	if code == http.StatusInternalServerError {
		b.log.Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Error(err))
		return fail(c, code, "internal error")
	}
	return fail(c, code, err.Error())
}

func actor(c echo.Context) string {
	return strings.TrimSpace(c.Request().Header.Get(middleware.HeaderOperatorID))
}

func queryInt(c echo.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func queryUint(c echo.Context, name string) (uint64, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseUint(raw, 10, 64)
}

func queryDate(c echo.Context, name string) (time.Time, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, raw)
}

func parseDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil
	}
	return &t
}
