package organization

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ngo-connect/donation-portal/donation-portal-backend/internal/auth"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers organization and admin verification routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, mw *auth.Middleware) {
	orgGroup := r.Group("/organizations")
	{
		orgGroup.POST("/register", h.Register)
		orgGroup.POST("/verify-email", h.VerifyEmail)
		orgGroup.POST("/login", h.Login)

		me := orgGroup.Group("/me", mw.RequireAuth(), mw.RequireRole(auth.RoleOrganization))
		{
			me.GET("", h.Profile)
			me.POST("/verification", h.SubmitVerification)
		}
	}

	adminGroup := r.Group("/admin", mw.RequireAuth(), mw.RequireRole(auth.RoleAdmin))
	{
		adminGroup.GET("/organizations", h.List)
		adminGroup.GET("/organizations/:id/document", h.Document)
		adminGroup.PUT("/organizations/:id/verify", h.Verify)
		adminGroup.PUT("/organizations/:id/reject", h.Reject)
		adminGroup.PUT("/organizations/:id/revoke", h.Revoke)
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": err.Error()})
		return
	}
	org, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "email_taken", "message": "email already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "server error"})
		return
	}
	c.JSON(http.StatusCreated, org)
}

func (h *Handler) VerifyEmail(c *gin.Context) {
	var req VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": err.Error()})
		return
	}
	if err := h.service.VerifyEmail(c.Request.Context(), req); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "account not found"})
		case errors.Is(err, auth.ErrCodeExpired):
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
	token, org, err := h.service.Login(c.Request.Context(), req)
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
	c.JSON(http.StatusOK, gin.H{"token": token, "organization": org})
}

func (h *Handler) Profile(c *gin.Context) {
	principal, _ := auth.PrincipalFromContext(c)
	orgID, err := uuid.Parse(principal.ID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "invalid principal"})
		return
	}
	org, err := h.service.Get(c.Request.Context(), orgID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "organization not found"})
		return
	}
	c.JSON(http.StatusOK, org)
}

func (h *Handler) SubmitVerification(c *gin.Context) {
	principal, _ := auth.PrincipalFromContext(c)
	orgID, err := uuid.Parse(principal.ID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "invalid principal"})
		return
	}

	var req SubmitVerificationRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": err.Error()})
		return
	}
	fileHeader, err := c.FormFile("document")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": "document file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "server error"})
		return
	}
	defer file.Close()

	org, err := h.service.SubmitVerification(c.Request.Context(), orgID, req, file,
		fileHeader.Filename, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, org)
}

func (h *Handler) List(c *gin.Context) {
	orgs, err := h.service.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "server error"})
		return
	}
	c.JSON(http.StatusOK, orgs)
}

func (h *Handler) Document(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": "invalid organization id"})
		return
	}
	url, err := h.service.DocumentURL(c.Request.Context(), orgID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (h *Handler) Verify(c *gin.Context) {
	h.adminTransition(c, h.service.Verify)
}

func (h *Handler) Reject(c *gin.Context) {
	h.adminTransition(c, h.service.RejectVerification)
}

func (h *Handler) Revoke(c *gin.Context) {
	h.adminTransition(c, h.service.Revoke)
}

func (h *Handler) adminTransition(c *gin.Context, fn func(ctx context.Context, id uuid.UUID) (*Organization, error)) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": "invalid organization id"})
		return
	}
	org, err := fn(c.Request.Context(), orgID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, org)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "organization not found"})
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrStatusConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "status_conflict", "message": "verification status does not allow this action"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "server error"})
	}
}
