package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hyeonkim-dev/docintake/api/middlewares"
	"github.com/hyeonkim-dev/docintake/auth"
	"github.com/hyeonkim-dev/docintake/tool"
	"github.com/hyeonkim-dev/docintake/types"
	"github.com/hyeonkim-dev/docintake/userstore"
)

type AuthController struct {
	users  userstore.Store
	tokens *auth.TokenService
}

func NewAuthController(users userstore.Store, tokens *auth.TokenService) *AuthController {
	return &AuthController{users: users, tokens: tokens}
}

type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// HandleRegister creates a new account.
// POST /api/auth/v1/register
func (ctrl *AuthController) HandleRegister(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Invalid request body"))
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)

	if req.Name == "" || req.Email == "" || req.Password == "" || req.ConfirmPassword == "" {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("name, email, password and confirmPassword are required"))
		return
	}
	if err := auth.ValidateEmail(req.Email); err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError(err.Error()))
		return
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError(err.Error()))
		return
	}
	if req.Password != req.ConfirmPassword {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Password and confirm password do not match"))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		tool.DefaultLogger.Errorf("[Auth] Failed to hash password: %v", err)
		c.JSON(http.StatusInternalServerError, tool.FastReturnError("Registration failed"))
		return
	}
	user := &types.User{
		ID:           tool.GenerateRandomUUID(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Plan:         "free",
	}
	if err := ctrl.users.Create(c.Request.Context(), user); err != nil {
		if errors.Is(err, userstore.ErrEmailTaken) {
			c.JSON(http.StatusConflict, tool.FastReturnError("Email already registered"))
			return
		}
		tool.DefaultLogger.Errorf("[Auth] Failed to create user: %v", err)
		c.JSON(http.StatusInternalServerError, tool.FastReturnError("Registration failed"))
		return
	}
	tool.DefaultLogger.Infof("[Auth] Registered user %s", user.ID)
	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    user.Public(),
	})
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin checks credentials and issues a bearer token.
// POST /api/auth/v1/login
func (ctrl *AuthController) HandleLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Invalid request body"))
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("email and password are required"))
		return
	}
	if err := auth.ValidateEmail(req.Email); err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError(err.Error()))
		return
	}

	user, err := ctrl.users.FindByEmail(c.Request.Context(), req.Email)
	if errors.Is(err, userstore.ErrUserNotFound) {
		c.JSON(http.StatusUnauthorized, tool.FastReturnError("Invalid email or password"))
		return
	}
	if err != nil {
		tool.DefaultLogger.Errorf("[Auth] Failed to look up user: %v", err)
		c.JSON(http.StatusInternalServerError, tool.FastReturnError("Login failed"))
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, tool.FastReturnError("Invalid email or password"))
		return
	}

	token, err := ctrl.tokens.Issue(user.ID, user.Email)
	if err != nil {
		tool.DefaultLogger.Errorf("[Auth] Failed to issue token: %v", err)
		c.JSON(http.StatusInternalServerError, tool.FastReturnError("Login failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user.Public(),
	})
}

// HandleLogout revokes the presented token.
// POST /api/auth/v1/logout (authenticated)
func (ctrl *AuthController) HandleLogout(c *gin.Context) {
	token := c.GetString(middlewares.ContextToken)
	if token != "" {
		ctrl.tokens.Revoke(token)
	}
	c.JSON(http.StatusOK, tool.FastReturnSuccess("Logged out"))
}

// HandleStatus reports whether the presented token is valid.
// GET /api/auth/v1/status (authenticated)
func (ctrl *AuthController) HandleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"userId":        c.GetString(middlewares.ContextUserID),
	})
}
