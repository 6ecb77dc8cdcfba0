package payment

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ngo-connect/donation-portal/donation-portal-backend/internal/auth"
	"ngo-connect/donation-portal/donation-portal-backend/internal/campaign"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers payment routes. Any authenticated principal may
// fund any campaign.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, mw *auth.Middleware) {
	payments := r.Group("/payments", mw.RequireAuth())
	{
		payments.POST("/order", h.CreateOrder)
		payments.POST("/verify", h.Confirm)
	}
}

type createOrderRequest struct {
	CampaignID string `json:"campaign_id" binding:"required,uuid"`
	Amount     int64  `json:"amount" binding:"required,gt=0"`
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": err.Error()})
		return
	}
	principal, _ := auth.PrincipalFromContext(c)
	donorID, err := uuid.Parse(principal.ID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "invalid principal"})
		return
	}
	campaignID, _ := uuid.Parse(req.CampaignID)

	order, err := h.service.CreateOrder(c.Request.Context(), campaignID, donorID, req.Amount)
	if err != nil {
		if errors.Is(err, campaign.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "campaign not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "server error"})
		return
	}
	c.JSON(http.StatusOK, order)
}

type confirmRequest struct {
	OrderID    string `json:"order_id" binding:"required"`
	PaymentID  string `json:"payment_id" binding:"required"`
	Signature  string `json:"signature" binding:"required"`
	CampaignID string `json:"campaign_id" binding:"required,uuid"`
	Amount     int64  `json:"amount" binding:"required,gt=0"`
}

func (h *Handler) Confirm(c *gin.Context) {
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": err.Error()})
		return
	}
	principal, _ := auth.PrincipalFromContext(c)
	donorID, err := uuid.Parse(principal.ID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "invalid principal"})
		return
	}
	campaignID, _ := uuid.Parse(req.CampaignID)

	contrib, err := h.service.Confirm(c.Request.Context(), ConfirmParams{
		OrderID:    req.OrderID,
		PaymentID:  req.PaymentID,
		Signature:  req.Signature,
		CampaignID: campaignID,
		DonorID:    donorID,
		Amount:     req.Amount,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidSignature):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_signature", "message": "payment verification failed"})
		case errors.Is(err, campaign.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "campaign not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "server error"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "payment verified",
		"payment_id": contrib.PaymentRef,
	})
}
