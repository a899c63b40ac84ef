package report

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	reports := router.Group("/reports")
	reports.GET("/transactions/:id/receipt", GetReceipt)
	reports.GET("/accounts/:accountId/balance", GetAccountBalance)
	reports.GET("/accounts/:accountId/summary", GetTransactionSummary)
	reports.GET("/accounts/:accountId/statement", ExportStatement)
}
