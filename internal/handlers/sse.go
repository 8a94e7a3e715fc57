package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/PeeapDev/merchant-backend/internal/requestdata"
	"github.com/PeeapDev/merchant-backend/internal/sse"
)

type SSEHandler struct {
	hub *sse.SSEHub
}

func NewSSEHandler(hub *sse.SSEHub) *SSEHandler {
	return &SSEHandler{hub: hub}
}

// Stream opens the event channel for the caller's merchant. The
// connection is held until the client disconnects.
func (sh *SSEHandler) Stream(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.MerchantID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	client := sh.hub.NewSSEClient(rd.UserID)
	sh.hub.AddChannel(client, rd.MerchantID.String())
	defer sh.hub.RemoveClient(client)
	sh.hub.ServeHTTP(c.Writer, c.Request, client)
}
