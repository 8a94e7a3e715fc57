package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PeeapDev/merchant-backend/internal/services"
)

type StorefrontHandler struct {
	storefrontService services.StorefrontService
}

func NewStorefrontHandler(storefrontService services.StorefrontService) *StorefrontHandler {
	return &StorefrontHandler{storefrontService: storefrontService}
}

func (sh *StorefrontHandler) GetMine(c *gin.Context) {
	storefront, err := sh.storefrontService.GetMine(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, storefront)
}

func (sh *StorefrontHandler) Update(c *gin.Context) {
	var input services.UpdateStorefrontInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	storefront, err := sh.storefrontService.Update(c.Request.Context(), input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, storefront)
}

// PublicCatalog is unauthenticated: it serves the public marketplace
// page for a storefront slug.
func (sh *StorefrontHandler) PublicCatalog(c *gin.Context) {
	catalog, err := sh.storefrontService.PublicCatalog(c.Request.Context(), c.Param("slug"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, catalog)
}
