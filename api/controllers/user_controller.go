package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hyeonkim-dev/docintake/api/middlewares"
	"github.com/hyeonkim-dev/docintake/auth"
	"github.com/hyeonkim-dev/docintake/tool"
	"github.com/hyeonkim-dev/docintake/userstore"
)

type UserController struct {
	users userstore.Store
}

func NewUserController(users userstore.Store) *UserController {
	return &UserController{users: users}
}

// HandleGetMe returns the authenticated user's profile.
// GET /api/user/v1/me
func (ctrl *UserController) HandleGetMe(c *gin.Context) {
	user, err := ctrl.users.FindByID(c.Request.Context(), c.GetString(middlewares.ContextUserID))
	if errors.Is(err, userstore.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, tool.FastReturnError("User not found"))
		return
	}
	if err != nil {
		tool.DefaultLogger.Errorf("[User] Failed to load user: %v", err)
		c.JSON(http.StatusInternalServerError, tool.FastReturnError("Failed to load user"))
		return
	}
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(user.Public()))
}

type UpdateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// HandleUpdateMe updates name and/or email of the authenticated user.
// PATCH /api/user/v1/me
func (ctrl *UserController) HandleUpdateMe(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Invalid request body"))
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" && req.Email == "" {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Nothing to update"))
		return
	}
	if req.Email != "" {
		if err := auth.ValidateEmail(req.Email); err != nil {
			c.JSON(http.StatusBadRequest, tool.FastReturnError(err.Error()))
			return
		}
	}

	user, err := ctrl.users.FindByID(c.Request.Context(), c.GetString(middlewares.ContextUserID))
	if errors.Is(err, userstore.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, tool.FastReturnError("User not found"))
		return
	}
	if err != nil {
		tool.DefaultLogger.Errorf("[User] Failed to load user: %v", err)
		c.JSON(http.StatusInternalServerError, tool.FastReturnError("Failed to load user"))
		return
	}
	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if err := ctrl.users.Update(c.Request.Context(), user); err != nil {
		tool.DefaultLogger.Errorf("[User] Failed to update user: %v", err)
		c.JSON(http.StatusInternalServerError, tool.FastReturnError("Failed to update user"))
		return
	}
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(user.Public()))
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// HandleChangePassword verifies the current password and stores a new hash.
// POST /api/user/v1/change-password
func (ctrl *UserController) HandleChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Invalid request body"))
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" || req.ConfirmPassword == "" {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("currentPassword, newPassword and confirmPassword are required"))
		return
	}
	if err := auth.ValidatePassword(req.NewPassword); err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError(err.Error()))
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Password and confirm password do not match"))
		return
	}

	user, err := ctrl.users.FindByID(c.Request.Context(), c.GetString(middlewares.ContextUserID))
	if errors.Is(err, userstore.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, tool.FastReturnError("User not found"))
		return
	}
	if err != nil {
		tool.DefaultLogger.Errorf("[User] Failed to load user: %v", err)
		c.JSON(http.StatusInternalServerError, tool.FastReturnError("Failed to load user"))
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		c.JSON(http.StatusUnauthorized, tool.FastReturnError("Current password is incorrect"))
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		tool.DefaultLogger.Errorf("[User] Failed to hash password: %v", err)
		c.JSON(http.StatusInternalServerError, tool.FastReturnError("Failed to change password"))
		return
	}
	if err := ctrl.users.UpdatePassword(c.Request.Context(), user.ID, hash); err != nil {
		tool.DefaultLogger.Errorf("[User] Failed to store password: %v", err)
		c.JSON(http.StatusInternalServerError, tool.FastReturnError("Failed to change password"))
		return
	}
	c.JSON(http.StatusOK, tool.FastReturnSuccess("Password changed"))
}
