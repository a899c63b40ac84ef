package middleware

import (
	"errors"

	"bank-backend/internal/models"
	"bank-backend/internal/services"
	"bank-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	userKey  = "user"
	tokenKey = "token"
)

// AuthMiddleware authenticates the bearer token and stores the user in the context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := utils.ExtractToken(c)
		if err != nil {
			utils.RespondError(c, utils.NewUnauthorizedError(err.Error()))
			return
		}

		isDenylisted, err := services.IsDenylisted(c.Request.Context(), tokenString)
		if err != nil {
			utils.RespondError(c, utils.NewInternalError("failed to check token status", err))
			return
		}
		if isDenylisted {
			utils.RespondError(c, utils.NewUnauthorizedError("token has been revoked"))
			return
		}

		claims, err := utils.ValidateToken(tokenString)
		if err != nil {
			utils.RespondError(c, utils.NewUnauthorizedError("invalid or expired token"))
			return
		}

		userIDFloat, ok := claims["user_id"].(float64)
		if !ok {
			utils.RespondError(c, utils.NewUnauthorizedError("invalid user id in token"))
			return
		}

		user, err := services.FindUserByID(c.Request.Context(), uint(userIDFloat))
		if err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				utils.RespondError(c, utils.NewUnauthorizedError("user not found"))
				return
			}
			utils.RespondError(c, err)
			return
		}

		c.Set(userKey, user)
		c.Set(tokenKey, tokenString)
		c.Next()
	}
}

// CurrentUser returns the user set by AuthMiddleware, or nil.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

func CurrentToken(c *gin.Context) string {
	return c.GetString(tokenKey)
}
