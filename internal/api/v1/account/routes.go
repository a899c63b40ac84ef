package account

import (
	"bank-backend/internal/middleware"
	"bank-backend/internal/models"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.RouterGroup) {
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	accounts := router.Group("/accounts")
	accounts.GET("", adminOnly, ListAccounts)
	accounts.POST("", CreateAccount)
	accounts.GET("/number/:accountNumber", GetAccountByNumber)
	accounts.GET("/user/:userId", GetUserAccounts)
	accounts.GET("/:id", GetAccount)
	accounts.PATCH("/:id", adminOnly, UpdateAccount)
	accounts.PATCH("/:id/deactivate", adminOnly, DeactivateAccount)
	accounts.DELETE("/:id", adminOnly, DeleteAccount)
}
