package user

import (
	"net/http"

	"bank-backend/internal/middleware"
	"bank-backend/internal/models"
	"bank-backend/internal/services"
	"bank-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

// CurrentUser returns the authenticated user.
func CurrentUser(c *gin.Context) {
	u := middleware.CurrentUser(c)
	if u == nil {
		utils.RespondError(c, utils.NewUnauthorizedError("unauthorized"))
		return
	}
	utils.RespondOK(c, "User information retrieved successfully", NewUserResponse(u))
}

// ListUsers returns a paginated list of users. Admin only.
func ListUsers(c *gin.Context) {
	page, limit, ok := utils.ParsePagination(c)
	if !ok {
		return
	}

	users, total, err := services.FindUsers(c.Request.Context(), page, limit)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	items := make([]UserResponse, 0, len(users))
	for i := range users {
		items = append(items, NewUserResponse(&users[i]))
	}

	utils.RespondOK(c, "Users retrieved successfully", UserListResponse{
		Users: items,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

func GetUser(c *gin.Context) {
	id, ok := selfOrAdmin(c)
	if !ok {
		return
	}

	u, err := services.FindUserByID(c.Request.Context(), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, "User retrieved successfully", NewUserResponse(u))
}

func UpdateUser(c *gin.Context) {
	id, ok := selfOrAdmin(c)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	u, err := services.UpdateUser(c.Request.Context(), id, services.UpdateUserInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		NationalID: req.NationalID,
		Phone:      req.Phone,
		Address:    req.Address,
		Role:       req.Role,
	}, middleware.CurrentUser(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, "User updated successfully", NewUserResponse(u))
}

// DeleteUser removes a user without accounts. Admin only.
func DeleteUser(c *gin.Context) {
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := services.DeleteUser(c.Request.Context(), id); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// selfOrAdmin parses :id and allows the caller when it is that user or an admin.
func selfOrAdmin(c *gin.Context) (uint, bool) {
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return 0, false
	}
	u := middleware.CurrentUser(c)
	if u == nil || (u.ID != id && u.Role != models.RoleAdmin) {
		utils.RespondError(c, utils.NewForbiddenError("you can only access your own profile"))
		return 0, false
	}
	return id, true
}
