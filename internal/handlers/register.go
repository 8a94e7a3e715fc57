package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PeeapDev/merchant-backend/internal/services"
)

type RegisterHandler struct {
	registerService services.RegisterService
}

func NewRegisterHandler(registerService services.RegisterService) *RegisterHandler {
	return &RegisterHandler{registerService: registerService}
}

func (rh *RegisterHandler) Create(c *gin.Context) {
	var req struct {
		Label string `json:"label"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	register, err := rh.registerService.CreateRegister(c.Request.Context(), req.Label)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, register)
}

func (rh *RegisterHandler) List(c *gin.Context) {
	registers, err := rh.registerService.ListRegisters(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"registers": registers})
}
