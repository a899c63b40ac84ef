package transaction

import (
	"bank-backend/internal/middleware"
	"bank-backend/internal/models"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.RouterGroup) {
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	transactions := router.Group("/transactions")
	transactions.GET("", adminOnly, ListTransactions)
	transactions.GET("/export", adminOnly, ExportTransactions)
	transactions.GET("/account/:accountId", GetAccountTransactions)
	transactions.POST("/deposit", Deposit)
	transactions.POST("/withdraw", Withdraw)
	transactions.POST("/transfer", Transfer)
	transactions.GET("/:id", GetTransaction)
	transactions.PATCH("/:id/cancel", CancelTransaction)
}
