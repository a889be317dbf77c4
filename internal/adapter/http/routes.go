package http

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Health        *Handler
	Config        *ConfigHandler
	Applications  *ApplicationHandler
	Disbursements *DisbursementHandler
	Sync          *SyncHandler
	Dashboard     *DashboardHandler
}

// Register mounts every route. mw wraps the /api/v1 group; the idempotency
// middleware only acts on mutating methods.
func Register(e *echo.Echo, h Handlers, mw ...echo.MiddlewareFunc) {
	e.GET("/health", h.Health.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1", mw...)

	api.GET("/config", h.Config.Public)
	api.POST("/config/test-connection", h.Config.TestConnection)
	api.POST("/config/sync", h.Config.Sync)
	api.GET("/loan-types", h.Config.ListLoanTypes)
	api.POST("/loan-types", h.Config.CreateLoanType)
	api.GET("/loan-types/:id", h.Config.GetLoanType)

	api.POST("/rates/quote", h.Applications.Quote)

	apps := api.Group("/applications")
	apps.POST("", h.Applications.Create)
	apps.GET("", h.Applications.List)
	apps.GET("/:application_id", h.Applications.Get)
	apps.GET("/:application_id/schedule", h.Applications.Schedule)
	apps.POST("/:application_id/submit", h.Applications.Submit)
	apps.POST("/:application_id/review", h.Applications.Review)
	apps.POST("/:application_id/approve", h.Applications.Approve)
	apps.POST("/:application_id/reject", h.Applications.Reject)
	apps.POST("/:application_id/disburse", h.Applications.RequestDisbursement)
	apps.POST("/:application_id/activate", h.Applications.Activate)
	apps.POST("/:application_id/complete", h.Applications.Complete)
	apps.POST("/:application_id/default", h.Applications.MarkDefaulted)

	disbs := api.Group("/disbursements")
	disbs.GET("", h.Disbursements.List)
	disbs.GET("/:disbursement_id", h.Disbursements.Get)
	disbs.PATCH("/:disbursement_id", h.Disbursements.Update)
	disbs.POST("/:disbursement_id/submit", h.Disbursements.Submit)
	disbs.POST("/:disbursement_id/approve", h.Disbursements.Approve)
	disbs.POST("/:disbursement_id/reject", h.Disbursements.Reject)
	disbs.POST("/:disbursement_id/cancel", h.Disbursements.Cancel)
	disbs.POST("/:disbursement_id/process", h.Disbursements.Process)

	api.POST("/sync/mongo", h.Sync.Mongo)
	api.POST("/sync/export", h.Sync.Export)
	api.POST("/sync/import", h.Sync.Import)

	api.GET("/dashboard/stats", h.Dashboard.Stats)
	api.GET("/website/loans", h.Dashboard.PublicLoans)
}
