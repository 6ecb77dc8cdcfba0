package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers donor and admin auth routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, mw *Middleware) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/verify-email", h.VerifyEmail)
		authGroup.POST("/login", h.Login)
		authGroup.GET("/me", mw.RequireAuth(), h.Me)
	}

	adminGroup := r.Group("/admin")
	{
		adminGroup.POST("/login", h.LoginAdmin)
		adminGroup.GET("/users", mw.RequireAuth(), mw.RequireRole(RoleAdmin), h.ListUsers)
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": err.Error()})
		return
	}
	user, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "email_taken", "message": "email already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "server error"})
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *Handler) VerifyEmail(c *gin.Context) {
	var req VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": err.Error()})
		return
	}
	if err := h.service.VerifyEmail(c.Request.Context(), req); err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "account not found"})
		case errors.Is(err, ErrCodeExpired):
			c.JSON(http.StatusBadRequest, gin.H{"error": "code_invalid", "message": "verification code invalid or expired"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "server error"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "email verified"})
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": err.Error()})
		return
	}
	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials", "message": "invalid email or password"})
		case errors.Is(err, ErrEmailNotVerified):
			c.JSON(http.StatusForbidden, gin.H{"error": "email_not_verified", "message": "verify your email before logging in"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "server error"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token": result.Token,
		"user":  result.User,
	})
}

func (h *Handler) LoginAdmin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": err.Error()})
		return
	}
	token, err := h.service.LoginAdmin(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials", "message": "invalid credentials"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "role": RoleAdmin})
}

func (h *Handler) Me(c *gin.Context) {
	principal, _ := PrincipalFromContext(c)
	if principal.Role != RoleDonor {
		c.JSON(http.StatusOK, gin.H{"id": principal.ID, "role": principal.Role})
		return
	}
	user, err := h.service.GetUser(c.Request.Context(), principal.ID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "account not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "server error"})
		return
	}
	c.JSON(http.StatusOK, users)
}
