package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hyeonkim-dev/docintake/api/middlewares"
	"github.com/hyeonkim-dev/docintake/intake"
	"github.com/hyeonkim-dev/docintake/jobstore"
	"github.com/hyeonkim-dev/docintake/tool"
	"github.com/hyeonkim-dev/docintake/types"
)

type IntakeController struct {
	pipeline *intake.Pipeline
	jobs     jobstore.Store
	broker   *intake.ProgressBroker
	limits   types.LimitsConfig
}

func NewIntakeController(pipeline *intake.Pipeline, jobs jobstore.Store, broker *intake.ProgressBroker, limits types.LimitsConfig) *IntakeController {
	return &IntakeController{
		pipeline: pipeline,
		jobs:     jobs,
		broker:   broker,
		limits:   limits,
	}
}

type BatchUploadRequest struct {
	Username string                  `json:"username"`
	Files    []intake.BatchFileInput `json:"files"`
}

// HandleBatchUpload runs an HTTP batch upload to completion and returns the
// per-file results. Progress events published while it runs are visible on
// the SSE progress stream keyed by the caller's user id.
// POST /api/intake/v1/upload
func (ctrl *IntakeController) HandleBatchUpload(c *gin.Context) {
	var req BatchUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Invalid request body"))
		return
	}
	if len(req.Files) == 0 {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("No files provided"))
		return
	}
	if ctrl.limits.MaxFilesPerJob > 0 && len(req.Files) > ctrl.limits.MaxFilesPerJob {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Too many files in one batch"))
		return
	}
	username := req.Username
	if username == "" {
		username = c.GetString(middlewares.ContextEmail)
	}

	jobID := tool.GenerateRandomUUID()
	subscriberKey := c.GetString(middlewares.ContextUserID)

	tool.DefaultLogger.Infof("[Intake] Batch upload job %s: %d files for %s", jobID, len(req.Files), username)
	results := ctrl.pipeline.RunBatch(c.Request.Context(), subscriberKey, username, jobID, req.Files, ctrl.broker)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"jobId":   jobID,
		"results": results,
	})
}

// HandleGetJob returns the stored state of a job.
// GET /api/intake/v1/jobs/:jobId
func (ctrl *IntakeController) HandleGetJob(c *gin.Context) {
	jobID := c.Param("jobId")
	job, err := ctrl.jobs.Get(c.Request.Context(), jobID)
	if errors.Is(err, jobstore.ErrJobNotFound) {
		c.JSON(http.StatusNotFound, tool.FastReturnError("Unknown job: "+jobID))
		return
	}
	if err != nil {
		tool.DefaultLogger.Errorf("[Intake] Failed to load job %s: %v", jobID, err)
		c.JSON(http.StatusInternalServerError, tool.FastReturnError("Failed to load job"))
		return
	}
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(job))
}
