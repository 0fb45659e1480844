package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anamul94/AITutor/internal/middleware"
	"github.com/anamul94/AITutor/internal/services"
	"github.com/anamul94/AITutor/internal/types"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func currentUser(c *gin.Context) (*types.User, bool) {
	value, exists := c.Get(middleware.CtxUserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*types.User)
	return user, ok
}

func (ah *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", errors.New("invalid request body"))
		return
	}
	user, err := ah.authService.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", errors.New("invalid request body"))
		return
	}
	token, _, err := ah.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"access_token": token, "token_type": "bearer"})
}

func (ah *AuthHandler) Me(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "unauthorized", services.ErrInvalidCredentials)
		return
	}
	RespondOK(c, user)
}

// Logout is acknowledged client-side by discarding the token; JWT auth keeps
// no server-side session to invalidate.
func (ah *AuthHandler) Logout(c *gin.Context) {
	RespondOK(c, gin.H{"message": "Logged out successfully"})
}
