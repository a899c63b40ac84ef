package api

import (
	"net/http"

	"bank-backend/config"
	"bank-backend/internal/api/v1/account"
	"bank-backend/internal/api/v1/auth"
	"bank-backend/internal/api/v1/report"
	"bank-backend/internal/api/v1/transaction"
	userRoutes "bank-backend/internal/api/v1/user"
	"bank-backend/internal/metrics"
	"bank-backend/internal/middleware"
	"bank-backend/internal/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the HTTP engine. Storage must already be connected.
func NewRouter(cfg *config.Config) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Logger(),
		gin.Recovery(),
		middleware.SecurityHeaders(),
		middleware.Metrics(),
	)

	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	}
	router.Use(cors.New(corsConfig))

	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := router.Group("/api")
	api.Use(middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow).Handler(), middleware.RequireJSON())
	{
		api.GET("/health", Health)

		auth.RegisterRoutes(api)

		authorized := api.Group("")
		authorized.Use(middleware.AuthMiddleware(), middleware.RequestMeta())
		{
			userRoutes.RegisterRoutes(authorized)
			account.RegisterRoutes(authorized)
			transaction.RegisterRoutes(authorized)
			report.RegisterRoutes(authorized)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		utils.RespondError(c, utils.NewNotFoundError("route not found"))
	})

	return router
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
