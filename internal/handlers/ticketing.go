package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/PeeapDev/merchant-backend/internal/services"
)

type TicketingHandler struct {
	ticketingService services.TicketingService
}

func NewTicketingHandler(ticketingService services.TicketingService) *TicketingHandler {
	return &TicketingHandler{ticketingService: ticketingService}
}

func (th *TicketingHandler) CreateEvent(c *gin.Context) {
	var req struct {
		Name     string     `json:"name"`
		Venue    string     `json:"venue"`
		StartsAt time.Time  `json:"starts_at"`
		EndsAt   *time.Time `json:"ends_at"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	event, err := th.ticketingService.CreateEvent(c.Request.Context(), services.CreateEventInput{
		Name:     req.Name,
		Venue:    req.Venue,
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, event)
}

func (th *TicketingHandler) PublishEvent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}
	if err := th.ticketingService.PublishEvent(c.Request.Context(), eventID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": "true"})
}

func (th *TicketingHandler) CancelEvent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}
	if err := th.ticketingService.CancelEvent(c.Request.Context(), eventID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": "true"})
}

func (th *TicketingHandler) ListEvents(c *gin.Context) {
	events, err := th.ticketingService.ListEvents(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (th *TicketingHandler) CreateTicketType(c *gin.Context) {
	var req struct {
		EventID    uuid.UUID `json:"event_id"`
		Name       string    `json:"name"`
		PriceCents int64     `json:"price_cents"`
		Capacity   int64     `json:"capacity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	ticketType, err := th.ticketingService.CreateTicketType(c.Request.Context(), services.CreateTicketTypeInput{
		EventID:    req.EventID,
		Name:       req.Name,
		PriceCents: req.PriceCents,
		Capacity:   req.Capacity,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, ticketType)
}

func (th *TicketingHandler) ListTicketTypes(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}
	ticketTypes, err := th.ticketingService.ListTicketTypes(c.Request.Context(), eventID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticket_types": ticketTypes})
}

func (th *TicketingHandler) RedeemTicket(c *gin.Context) {
	var req struct {
		QRCode uuid.UUID `json:"qr_code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	result, err := th.ticketingService.RedeemTicket(c.Request.Context(), req.QRCode)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}
