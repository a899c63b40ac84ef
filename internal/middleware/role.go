package middleware

import (
	"bank-backend/internal/utils"
	"bank-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequireRole must run after AuthMiddleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			utils.RespondError(c, utils.NewUnauthorizedError("authentication required"))
			return
		}

		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}

		logger.Log.Warn("Forbidden role access attempt",
			zap.Uint("user_id", user.ID),
			zap.String("role", user.Role),
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString("RequestID")))
		utils.RespondError(c, utils.NewForbiddenError("you do not have permission to perform this action"))
	}
}
