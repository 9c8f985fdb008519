package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	coreport "github.com/amirhossein-jamali/credits-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/credits-ledger/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/credits-ledger/internal/infrastructure/adapter/api/middleware"
)

// Handlers groups every HTTP handler the router mounts
type Handlers struct {
	User     *handler.UserHandler
	Earn     *handler.EarnHandler
	Store    *handler.StoreHandler
	Giveaway *handler.GiveawayHandler
	Admin    *handler.AdminHandler
	Health   *handler.HealthHandler
}

// SetupRoutes configures all the routes for the API
func SetupRoutes(router *gin.Engine, h Handlers, adminToken string) {
	router.GET("/health", h.Health.Health)

	v1 := router.Group("/v1")

	// POST /v1/users is called by the auth layer, which also sets X-User-ID
	v1.POST("/users", h.User.CreateUser)
	v1.GET("/store/items", h.Store.ListItems)

	me := v1.Group("/me", middleware.UserIdentity())
	{
		me.GET("", h.User.GetMe)
		me.POST("/earn", h.Earn.Submit)
		me.GET("/earn-events", h.Earn.ListEvents)
		me.POST("/redemptions", h.Store.Redeem)
		me.GET("/redemptions", h.Store.ListRedemptions)
		me.GET("/inventory", h.Store.GetInventory)
		me.POST("/giveaways/:giveawayId/entries", h.Giveaway.Enter)
		me.GET("/giveaways/:giveawayId/entries", h.Giveaway.GetEntries)
	}

	admin := v1.Group("/admin", middleware.AdminToken(adminToken))
	{
		admin.POST("/users/:userId/ban", h.Admin.Ban)
		admin.DELETE("/users/:userId/ban", h.Admin.Unban)
		admin.POST("/redemptions/:redemptionId/fulfill", h.Admin.Fulfill)
	}
}

// SetupMiddlewares configures global middlewares for the API.
// Logger wraps ErrorHandler so the logged status is the one actually written.
func SetupMiddlewares(router *gin.Engine, logger coreport.Logger, timeProvider coreport.TimeProvider, allowedOrigins []string) {
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger, timeProvider))
	router.Use(middleware.ErrorHandler(logger))
	if len(allowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins: allowedOrigins,
			AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders: []string{
				"Origin", "Content-Type",
				middleware.UserIDHeader, middleware.DeviceIDHeader, middleware.RequestIDHeader,
			},
			ExposeHeaders: []string{middleware.RequestIDHeader},
			MaxAge:        12 * time.Hour,
		}))
	}
}

// NewRouter builds a gin engine with middlewares and routes mounted
func NewRouter(h Handlers, logger coreport.Logger, timeProvider coreport.TimeProvider, adminToken string, allowedOrigins []string) *gin.Engine {
	router := gin.New()
	SetupMiddlewares(router, logger, timeProvider, allowedOrigins)
	SetupRoutes(router, h, adminToken)
	return router
}
