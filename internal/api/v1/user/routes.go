package user

import (
	"bank-backend/internal/middleware"
	"bank-backend/internal/models"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	auth.GET("/me", CurrentUser)

	users := router.Group("/users")
	users.GET("", middleware.RequireRole(models.RoleAdmin), ListUsers)
	users.GET("/:id", GetUser)
	users.PATCH("/:id", UpdateUser)
	users.DELETE("/:id", middleware.RequireRole(models.RoleAdmin), DeleteUser)
}
