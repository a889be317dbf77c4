package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"p2p-backoffice/internal/domain/mirror"
	mirrorUC "p2p-backoffice/internal/usecase/mirror"
)

// SourceFunc resolves a mirror source per request; the export source depends
// on the active configuration.
type SourceFunc func(ctx context.Context) (mirror.Source, error)

type SyncHandler struct {
	base
	svc    *mirrorUC.Service
	docs   SourceFunc
	export SourceFunc
}

func NewSyncHandler(svc *mirrorUC.Service, docs, export SourceFunc, log *zap.Logger) *SyncHandler {
	return &SyncHandler{base: newBase(log), svc: svc, docs: docs, export: export}
}

func (h *SyncHandler) sync(c echo.Context, src SourceFunc) error {
	if src == nil {
		return fail(c, http.StatusServiceUnavailable, "source not configured")
	}
	s, err := src(c.Request().Context())
	if err != nil {
		return h.writeError(c, err)
	}
	rep, err := h.svc.Sync(c.Request().Context(), s)
	if err != nil {
		return h.writeError(c, err)
	}
	return ok(c, http.StatusOK, "sync finished", rep)
}

func (h *SyncHandler) Mongo(c echo.Context) error { return h.sync(c, h.docs) }

func (h *SyncHandler) Export(c echo.Context) error { return h.sync(c, h.export) }

func (h *SyncHandler) Import(c echo.Context) error {
	rep, err := h.svc.Import(c.Request().Context())
	if err != nil {
		return h.writeError(c, err)
	}
	return ok(c, http.StatusOK, "import finished", rep)
}
