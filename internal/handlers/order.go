package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/PeeapDev/merchant-backend/internal/services"
	"github.com/PeeapDev/merchant-backend/internal/types"
)

type OrderHandler struct {
	orderService    services.OrderService
	checkoutService services.CheckoutService
}

func NewOrderHandler(orderService services.OrderService, checkoutService services.CheckoutService) *OrderHandler {
	return &OrderHandler{orderService: orderService, checkoutService: checkoutService}
}

func (oh *OrderHandler) Checkout(c *gin.Context) {
	var input services.CheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	result, err := oh.checkoutService.Checkout(c.Request.Context(), input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (oh *OrderHandler) Get(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}
	order, err := oh.orderService.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, order)
}

func (oh *OrderHandler) List(c *gin.Context) {
	var statuses []string
	if raw := c.Query("status"); raw != "" {
		statuses = strings.Split(raw, ",")
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	orders, err := oh.orderService.ListOrders(c.Request.Context(), statuses, limit)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (oh *OrderHandler) KitchenQueue(c *gin.Context) {
	queue, err := oh.orderService.KitchenQueue(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": queue})
}

func (oh *OrderHandler) Transition(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	order, err := oh.orderService.TransitionOrder(c.Request.Context(), orderID, req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, order)
}

func (oh *OrderHandler) Bump(c *gin.Context) {
	oh.simpleTransition(c, oh.orderService.BumpOrder)
}

func (oh *OrderHandler) Recall(c *gin.Context) {
	oh.simpleTransition(c, oh.orderService.RecallOrder)
}

func (oh *OrderHandler) Cancel(c *gin.Context) {
	oh.simpleTransition(c, oh.orderService.CancelOrder)
}

func (oh *OrderHandler) simpleTransition(c *gin.Context, fn func(ctx context.Context, id uuid.UUID) (*types.Order, error)) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}
	order, err := fn(c.Request.Context(), orderID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, order)
}
