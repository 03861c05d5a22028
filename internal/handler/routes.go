package handler

import (
	"go-carwash-pullout/internal/metrics"
	"go-carwash-pullout/internal/middleware"
	"go-carwash-pullout/internal/model"
	"go-carwash-pullout/internal/repository"
	"go-carwash-pullout/internal/ws"
	"go-carwash-pullout/pkg/jwt"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

// Router holds everything the HTTP surface needs.
type Router struct {
	Auth      *AuthHandler
	Pullout   *PulloutHandler
	Supply    *SupplyHandler
	Dashboard *DashboardHandler

	UserRepo repository.UserRepository
	Tokens   *jwt.Manager
	Hub      *ws.Hub
	Metrics  *metrics.Collector
}

func (r *Router) Register(app *fiber.App) {
	requireAuth := middleware.RequireAuth(r.UserRepo, r.Tokens)
	can := middleware.RequirePrivilege

	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", r.Auth.Login)
	auth.Post("/validate-token", r.Auth.ValidateToken)
	auth.Post("/heartbeat", requireAuth, r.Auth.Heartbeat)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", requireAuth)

	protected.Get("/dashboard/stats", can(model.PrivDashboardView), r.Dashboard.GetDashboardStats)
	protected.Get("/dashboard/stock-movement", can(model.PrivDashboardView), r.Dashboard.GetStockMovement)

	// Static segments before /:id
	pullouts := protected.Group("/pullout-requests")
	pullouts.Get("/", can(model.PrivPulloutView), r.Pullout.GetPulloutRequests)
	pullouts.Get("/returnable/list", can(model.PrivPulloutView), r.Pullout.GetReturnable)
	pullouts.Post("/return/:detailId", can(model.PrivPulloutReturn), r.Pullout.ReturnSupply)
	pullouts.Post("/", can(model.PrivPulloutCreate), r.Pullout.CreatePulloutRequest)
	pullouts.Get("/:id", can(model.PrivPulloutView), r.Pullout.GetPulloutRequest)
	pullouts.Post("/:id/approve", can(model.PrivPulloutApprove), r.Pullout.ApprovePulloutRequest)
	pullouts.Post("/:id/reject", can(model.PrivPulloutApprove), r.Pullout.RejectPulloutRequest)
	pullouts.Delete("/:id", can(model.PrivPulloutDelete), r.Pullout.DeletePulloutRequest)

	supplies := protected.Group("/supplies")
	supplies.Get("/", can(model.PrivSupplyView), r.Supply.GetSupplies)
	supplies.Get("/low-stock", can(model.PrivSupplyView), r.Supply.GetLowStock)
	supplies.Post("/", can(model.PrivSupplyCreate), r.Supply.CreateSupply)
	supplies.Put("/:id", can(model.PrivSupplyUpdate), r.Supply.UpdateSupply)
	supplies.Post("/:id/adjust", can(model.PrivSupplyAdjust), r.Supply.AdjustStock)
	supplies.Get("/:id/movements", can(model.PrivSupplyView), r.Supply.GetMovements)

	if r.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(r.Metrics.Handler()))
	}

	if r.Hub != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return c.SendStatus(fiber.StatusUpgradeRequired)
		})
		app.Get("/ws", websocket.New(func(c *websocket.Conn) {
			r.Hub.Register <- c
			defer func() { r.Hub.Unregister <- c }()

			for {
				// Keep alive loop
				if _, _, err := c.ReadMessage(); err != nil {
					break
				}
			}
		}))
	}
}
