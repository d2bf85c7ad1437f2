package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	appctx "dcolumn/internal/core/context"
	"dcolumn/internal/domain/auth"
	"dcolumn/internal/infrastructure/http/v1/dto"
)

// AuthHandler serves login and account management.
type AuthHandler struct {
	BaseHandler
	svc *auth.Service
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Login verifies credentials and issues a token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	token, err := h.svc.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.OK(c, dto.LoginResponse{
		Token:     token,
		ExpiresAt: time.Now().UTC().Add(auth.TokenTTL),
	})
}

// Register creates an API account. Admin only.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterUserRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.svc.RegisterUser(c.Request.Context(), req.Username, req.Email, req.Password, req.IsAdmin)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, user)
}

// Me returns the authenticated user context.
func (h *AuthHandler) Me(c *gin.Context) {
	user := appctx.GetUser(c.Request.Context())
	h.OK(c, gin.H{
		"userId":   user.UserID,
		"username": user.Username,
		"email":    user.Email,
		"isAdmin":  user.IsAdmin,
	})
}
