package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/PeeapDev/merchant-backend/internal/services"
)

type ProductHandler struct {
	productService services.ProductService
}

func NewProductHandler(productService services.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

func (ph *ProductHandler) Create(c *gin.Context) {
	var req struct {
		SKU          string `json:"sku"`
		Name         string `json:"name"`
		Category     string `json:"category"`
		PriceCents   int64  `json:"price_cents"`
		TaxRateBPS   int64  `json:"tax_rate_bps"`
		TrackStock   bool   `json:"track_stock"`
		ReorderLevel int64  `json:"reorder_level"`
		OpeningStock int64  `json:"opening_stock"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	product, err := ph.productService.CreateProduct(c.Request.Context(), services.CreateProductInput{
		SKU:          req.SKU,
		Name:         req.Name,
		Category:     req.Category,
		PriceCents:   req.PriceCents,
		TaxRateBPS:   req.TaxRateBPS,
		TrackStock:   req.TrackStock,
		ReorderLevel: req.ReorderLevel,
		OpeningStock: req.OpeningStock,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, product)
}

func (ph *ProductHandler) Update(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}
	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	product, err := ph.productService.UpdateProduct(c.Request.Context(), productID, updates)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, product)
}

func (ph *ProductHandler) Get(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}
	product, err := ph.productService.GetProduct(c.Request.Context(), productID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, product)
}

func (ph *ProductHandler) List(c *gin.Context) {
	activeOnly := c.Query("active") == "true"
	products, err := ph.productService.ListProducts(c.Request.Context(), activeOnly)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (ph *ProductHandler) AdjustStock(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}
	var req struct {
		Quantity int64  `json:"quantity"`
		Reason   string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	onHand, err := ph.productService.AdjustStock(c.Request.Context(), productID, req.Quantity, req.Reason)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"on_hand": onHand})
}

func (ph *ProductHandler) StockHistory(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	movements, err := ph.productService.StockHistory(c.Request.Context(), productID, limit)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"movements": movements})
}

func (ph *ProductHandler) LowStock(c *gin.Context) {
	products, err := ph.productService.LowStock(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}
