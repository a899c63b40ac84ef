package auth

import (
	"bank-backend/internal/api/v1/user"
	"bank-backend/internal/middleware"
	"bank-backend/internal/services"
	"bank-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

// Register creates a client user and returns it with a token.
func Register(c *gin.Context) {
	var input RegisterInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	u, token, err := services.RegisterUser(c.Request.Context(), services.RegisterInput{
		Name:       input.Name,
		Email:      input.Email,
		Password:   input.Password,
		NationalID: input.NationalID,
		Phone:      input.Phone,
		Address:    input.Address,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondCreated(c, "User registered successfully", AuthResponse{
		User:  user.NewUserResponse(u),
		Token: token,
	})
}

func Login(c *gin.Context) {
	var input LoginInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	token, u, err := services.LoginUser(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondOK(c, "Logged in successfully", AuthResponse{
		User:  user.NewUserResponse(u),
		Token: token,
	})
}

// Logout revokes the token the request was authenticated with.
func Logout(c *gin.Context) {
	if err := services.LogoutUser(c.Request.Context(), middleware.CurrentToken(c)); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, "Logged out successfully", nil)
}
