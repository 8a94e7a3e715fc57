package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/PeeapDev/merchant-backend/internal/jobs"
)

type JobsHandler struct {
	jobsService jobs.Service
}

func NewJobsHandler(jobsService jobs.Service) *JobsHandler {
	return &JobsHandler{jobsService: jobsService}
}

var enqueueableJobTypes = map[string]bool{
	jobs.TypeSyncReconcile: true,
	jobs.TypeStockAlerts:   true,
}

func (jh *JobsHandler) Enqueue(c *gin.Context) {
	var req struct {
		JobType    string         `json:"job_type"`
		EntityType string         `json:"entity_type"`
		EntityID   *uuid.UUID     `json:"entity_id,omitempty"`
		Payload    map[string]any `json:"payload,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if !enqueueableJobTypes[req.JobType] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown job type"})
		return
	}
	job, err := jh.jobsService.Enqueue(c.Request.Context(), req.JobType, req.EntityType, req.EntityID, req.Payload)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, job)
}

func (jh *JobsHandler) Get(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}
	job, err := jh.jobsService.Get(c.Request.Context(), jobID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, job)
}
