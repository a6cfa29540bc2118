package http

import (
	"github.com/begintolern/linkmint-core/internal/delivery/http/handlers"
	"github.com/begintolern/linkmint-core/internal/delivery/http/middleware"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterDeps struct {
	Commissions *handlers.CommissionHandler
	Payouts     *handlers.PayoutHandler
	Disburse    *handlers.DisburseHandler
	Ops         *handlers.OpsHandler
	JWTSecret   string
	AllowList   map[string]bool
}

func NewRouter(deps RouterDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(echomiddleware.Recover())

	authRequired := middleware.Auth(deps.JWTSecret, deps.AllowList)
	adminOnly := middleware.AdminOnly()

	// Unauthenticated operational surface.
	e.GET("/health", deps.Ops.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")

	commissions := api.Group("/commissions", authRequired)
	commissions.GET("", deps.Commissions.List, adminOnly)
	commissions.GET("/:id", deps.Commissions.GetByID, adminOnly)
	commissions.POST("/:id/approve", deps.Commissions.Approve, adminOnly)
	commissions.POST("/:id/mark-paid", deps.Commissions.MarkPaid, adminOnly)
	commissions.POST("/:id/fail", deps.Commissions.Fail, adminOnly)
	api.GET("/users/:user_id/balance", deps.Commissions.Balance, authRequired, adminOnly)

	payouts := api.Group("/payout-requests", authRequired)
	payouts.POST("", deps.Payouts.Submit)
	payouts.GET("/:id", deps.Payouts.GetByID)
	payouts.POST("/:id/approve", deps.Payouts.Approve, adminOnly)
	payouts.POST("/:id/deny", deps.Payouts.Deny, adminOnly)

	api.POST("/disbursements/run", deps.Disburse.Run, authRequired, adminOnly)

	opsGroup := api.Group("/ops", authRequired, adminOnly)
	opsGroup.POST("/heal/:action", deps.Ops.Heal)
	opsGroup.POST("/float/topup", deps.Ops.FloatTopUp)

	return e
}
