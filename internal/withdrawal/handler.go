package withdrawal

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ngo-connect/donation-portal/donation-portal-backend/internal/auth"
	"ngo-connect/donation-portal/donation-portal-backend/internal/ledger"
	"ngo-connect/donation-portal/donation-portal-backend/internal/organization"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers organization-facing withdrawal routes and the
// admin settlement routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, mw *auth.Middleware) {
	orgGroup := r.Group("/withdrawals", mw.RequireAuth(), mw.RequireRole(auth.RoleOrganization))
	{
		orgGroup.POST("", h.Request)
		orgGroup.GET("", h.ListMine)
		orgGroup.GET("/balance", h.Balance)
	}

	adminGroup := r.Group("/admin/withdrawals", mw.RequireAuth(), mw.RequireRole(auth.RoleAdmin))
	{
		adminGroup.GET("", h.ListPending)
		adminGroup.PUT("/:id/approve", h.Approve)
		adminGroup.PUT("/:id/reject", h.Reject)
	}
}

func (h *Handler) Request(c *gin.Context) {
	orgID, ok := h.callerOrgID(c)
	if !ok {
		return
	}
	req, err := h.service.Request(c.Request.Context(), orgID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

func (h *Handler) ListMine(c *gin.Context) {
	orgID, ok := h.callerOrgID(c)
	if !ok {
		return
	}
	reqs, err := h.service.ListForOrganization(c.Request.Context(), orgID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reqs)
}

func (h *Handler) Balance(c *gin.Context) {
	orgID, ok := h.callerOrgID(c)
	if !ok {
		return
	}
	balance, err := h.service.Balance(c.Request.Context(), orgID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"available_balance": balance})
}

func (h *Handler) ListPending(c *gin.Context) {
	reqs, err := h.service.ListPending(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reqs)
}

func (h *Handler) Approve(c *gin.Context) {
	h.settle(c, h.service.Approve)
}

func (h *Handler) Reject(c *gin.Context) {
	h.settle(c, h.service.Reject)
}

func (h *Handler) settle(c *gin.Context, fn func(ctx context.Context, id uuid.UUID) (*WithdrawalRequest, error)) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": "invalid request id"})
		return
	}
	req, err := fn(c.Request.Context(), requestID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *Handler) callerOrgID(c *gin.Context) (uuid.UUID, bool) {
	principal, _ := auth.PrincipalFromContext(c)
	orgID, err := uuid.Parse(principal.ID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "invalid principal"})
		return uuid.Nil, false
	}
	return orgID, true
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "withdrawal request not found"})
	case errors.Is(err, organization.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "organization not found"})
	case errors.Is(err, ErrVerificationRequired):
		c.JSON(http.StatusForbidden, gin.H{"error": "verification_required", "message": "organization must be verified before withdrawing"})
	case errors.Is(err, ErrAlreadyPending):
		c.JSON(http.StatusConflict, gin.H{"error": "already_pending", "message": "a withdrawal request is already pending"})
	case errors.Is(err, ErrNotPending):
		c.JSON(http.StatusConflict, gin.H{"error": "not_pending", "message": "request has already been settled"})
	case errors.Is(err, ErrNoFundsAvailable):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no_funds", "message": "no funds available for withdrawal"})
	case errors.Is(err, ledger.ErrInconsistent):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "server error"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "server error"})
	}
}
