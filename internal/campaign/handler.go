package campaign

import (
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

// RegisterRoutes registers campaign routes. Browsing requires any
// authenticated principal; mutation is limited to the owning organization.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, mw *auth.Middleware) {
	campaigns := r.Group("/campaigns", mw.RequireAuth())
	{
		campaigns.GET("", h.List)
		campaigns.GET("/mine", mw.RequireRole(auth.RoleOrganization), h.ListMine)
		campaigns.POST("", mw.RequireRole(auth.RoleOrganization), h.Create)
		campaigns.GET("/:id", h.Get)
		campaigns.DELETE("/:id", mw.RequireRole(auth.RoleOrganization), h.Delete)
		campaigns.GET("/:id/image", h.Image)
		campaigns.GET("/:id/contributions", h.ListContributions)
		campaigns.POST("/:id/comments", h.AddComment)
		campaigns.GET("/:id/comments", h.ListComments)
	}
}

func (h *Handler) Create(c *gin.Context) {
	principal, _ := auth.PrincipalFromContext(c)
	orgID, err := uuid.Parse(principal.ID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "invalid principal"})
		return
	}

	var req CreateRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": err.Error()})
		return
	}
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": "image file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "server error"})
		return
	}
	defer file.Close()

	created, err := h.service.Create(c.Request.Context(), orgID, req, file,
		fileHeader.Filename, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "server error"})
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) List(c *gin.Context) {
	campaigns, err := h.service.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "server error"})
		return
	}
	c.JSON(http.StatusOK, campaigns)
}

func (h *Handler) ListMine(c *gin.Context) {
	principal, _ := auth.PrincipalFromContext(c)
	orgID, err := uuid.Parse(principal.ID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "invalid principal"})
		return
	}
	campaigns, err := h.service.ListByOrganization(c.Request.Context(), orgID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "server error"})
		return
	}
	c.JSON(http.StatusOK, campaigns)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := h.campaignID(c)
	if !ok {
		return
	}
	found, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, found)
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := h.campaignID(c)
	if !ok {
		return
	}
	principal, _ := auth.PrincipalFromContext(c)
	orgID, err := uuid.Parse(principal.ID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "invalid principal"})
		return
	}
	if err := h.service.Delete(c.Request.Context(), id, orgID); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "campaign removed", "id": id})
}

func (h *Handler) Image(c *gin.Context) {
	id, ok := h.campaignID(c)
	if !ok {
		return
	}
	url, err := h.service.ImageURL(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (h *Handler) ListContributions(c *gin.Context) {
	id, ok := h.campaignID(c)
	if !ok {
		return
	}
	contribs, err := h.service.ListContributions(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, contribs)
}

func (h *Handler) AddComment(c *gin.Context) {
	id, ok := h.campaignID(c)
	if !ok {
		return
	}
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": err.Error()})
		return
	}
	principal, _ := auth.PrincipalFromContext(c)
	comment, err := h.service.AddComment(c.Request.Context(), id, principal, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (h *Handler) ListComments(c *gin.Context) {
	id, ok := h.campaignID(c)
	if !ok {
		return
	}
	comments, err := h.service.ListComments(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (h *Handler) campaignID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": "invalid campaign id"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "campaign not found"})
	case errors.Is(err, ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden", "message": "campaign belongs to another organization"})
	case errors.Is(err, ErrHasContributions):
		c.JSON(http.StatusConflict, gin.H{"error": "has_contributions", "message": "campaigns with recorded contributions cannot be deleted"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "server error"})
	}
}
