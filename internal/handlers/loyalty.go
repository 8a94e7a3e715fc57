package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/PeeapDev/merchant-backend/internal/services"
)

type LoyaltyHandler struct {
	loyaltyService services.LoyaltyService
}

func NewLoyaltyHandler(loyaltyService services.LoyaltyService) *LoyaltyHandler {
	return &LoyaltyHandler{loyaltyService: loyaltyService}
}

func (lh *LoyaltyHandler) GetSettings(c *gin.Context) {
	settings, err := lh.loyaltyService.GetSettings(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (lh *LoyaltyHandler) UpdateSettings(c *gin.Context) {
	var req struct {
		Enabled          bool  `json:"enabled"`
		EarnRateBPS      int64 `json:"earn_rate_bps"`
		RedeemValueCents int64 `json:"redeem_value_cents"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	settings, err := lh.loyaltyService.UpdateSettings(c.Request.Context(), req.Enabled, req.EarnRateBPS, req.RedeemValueCents)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (lh *LoyaltyHandler) GetAccount(c *gin.Context) {
	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer id"})
		return
	}
	account, err := lh.loyaltyService.GetAccount(c.Request.Context(), customerID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, account)
}

func (lh *LoyaltyHandler) ListTransactions(c *gin.Context) {
	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer id"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	transactions, err := lh.loyaltyService.ListTransactions(c.Request.Context(), customerID, limit)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": transactions})
}

func (lh *LoyaltyHandler) Adjust(c *gin.Context) {
	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer id"})
		return
	}
	var req struct {
		Points int64  `json:"points"`
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	account, err := lh.loyaltyService.Adjust(c.Request.Context(), customerID, req.Points, req.Reason)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, account)
}
