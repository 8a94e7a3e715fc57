package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/PeeapDev/merchant-backend/internal/requestdata"
	"github.com/PeeapDev/merchant-backend/internal/services"
	"github.com/PeeapDev/merchant-backend/internal/types"
)

type WalletHandler struct {
	walletService services.WalletService
}

func NewWalletHandler(walletService services.WalletService) *WalletHandler {
	return &WalletHandler{walletService: walletService}
}

// GetMine resolves the merchant's own wallet.
func (wh *WalletHandler) GetMine(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.MerchantID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	wallet, err := wh.walletService.GetWallet(c.Request.Context(), types.WalletOwnerMerchant, rd.MerchantID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, wallet)
}

func (wh *WalletHandler) Transfer(c *gin.Context) {
	var req struct {
		FromWalletID uuid.UUID `json:"from_wallet_id"`
		ToWalletID   uuid.UUID `json:"to_wallet_id"`
		AmountCents  int64     `json:"amount_cents"`
		Reason       string    `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	transferID, err := wh.walletService.Transfer(c.Request.Context(), req.FromWalletID, req.ToWalletID, req.AmountCents, types.WalletKindTransfer, req.Reason)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transfer_id": transferID})
}

func (wh *WalletHandler) Topup(c *gin.Context) {
	var req struct {
		WalletID    uuid.UUID `json:"wallet_id"`
		AmountCents int64     `json:"amount_cents"`
		Reason      string    `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	transferID, err := wh.walletService.Topup(c.Request.Context(), req.WalletID, req.AmountCents, req.Reason)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transfer_id": transferID})
}

func (wh *WalletHandler) Reverse(c *gin.Context) {
	var req struct {
		TransferID uuid.UUID `json:"transfer_id"`
		Reason     string    `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	reversalID, err := wh.walletService.Reverse(c.Request.Context(), req.TransferID, req.Reason)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reversal_id": reversalID})
}

func (wh *WalletHandler) ListEntries(c *gin.Context) {
	walletID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid wallet id"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	entries, err := wh.walletService.ListEntries(c.Request.Context(), walletID, limit)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
