package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/PeeapDev/merchant-backend/internal/services"
)

type SupplierHandler struct {
	supplierService services.SupplierService
}

func NewSupplierHandler(supplierService services.SupplierService) *SupplierHandler {
	return &SupplierHandler{supplierService: supplierService}
}

func (sh *SupplierHandler) Create(c *gin.Context) {
	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone"`
		Notes string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	supplier, err := sh.supplierService.CreateSupplier(c.Request.Context(), services.CreateSupplierInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Notes: req.Notes,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, supplier)
}

func (sh *SupplierHandler) Update(c *gin.Context) {
	supplierID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid supplier id"})
		return
	}
	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := sh.supplierService.UpdateSupplier(c.Request.Context(), supplierID, updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": "true"})
}

func (sh *SupplierHandler) List(c *gin.Context) {
	suppliers, err := sh.supplierService.ListSuppliers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"suppliers": suppliers})
}

func (sh *SupplierHandler) CreatePurchaseOrder(c *gin.Context) {
	var req struct {
		SupplierID uuid.UUID `json:"supplier_id"`
		Notes      string    `json:"notes"`
		Lines      []struct {
			ProductID     uuid.UUID `json:"product_id"`
			Quantity      int64     `json:"quantity"`
			UnitCostCents int64     `json:"unit_cost_cents"`
		} `json:"lines"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	lines := make([]services.PurchaseOrderLineInput, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, services.PurchaseOrderLineInput{
			ProductID:     l.ProductID,
			Quantity:      l.Quantity,
			UnitCostCents: l.UnitCostCents,
		})
	}
	po, err := sh.supplierService.CreatePurchaseOrder(c.Request.Context(), req.SupplierID, req.Notes, lines)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, po)
}

func (sh *SupplierHandler) PlacePurchaseOrder(c *gin.Context) {
	sh.transitionPO(c, sh.supplierService.PlacePurchaseOrder)
}

func (sh *SupplierHandler) ReceivePurchaseOrder(c *gin.Context) {
	sh.transitionPO(c, sh.supplierService.ReceivePurchaseOrder)
}

func (sh *SupplierHandler) CancelPurchaseOrder(c *gin.Context) {
	sh.transitionPO(c, sh.supplierService.CancelPurchaseOrder)
}

func (sh *SupplierHandler) ListPurchaseOrders(c *gin.Context) {
	orders, err := sh.supplierService.ListPurchaseOrders(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"purchase_orders": orders})
}

func (sh *SupplierHandler) GetPurchaseOrderLines(c *gin.Context) {
	poID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid purchase order id"})
		return
	}
	lines, err := sh.supplierService.GetPurchaseOrderLines(c.Request.Context(), poID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"lines": lines})
}

func (sh *SupplierHandler) transitionPO(c *gin.Context, fn func(ctx context.Context, id uuid.UUID) error) {
	poID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid purchase order id"})
		return
	}
	if err := fn(c.Request.Context(), poID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": "true"})
}
