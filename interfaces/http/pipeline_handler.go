package http

import (
	"context"
	"errors"
	"net/http"

	"youtube-etl/domain/dto"
	"youtube-etl/domain/errs"
	"youtube-etl/infrastructure/logger"
	"youtube-etl/usecase"

	"github.com/gin-gonic/gin"
)

const (
	defaultRunListLimit = 20
	maxRunListLimit     = 100
)

// IPipelineHandler defines the HTTP handlers for pipeline runs
type IPipelineHandler interface {
	ListRuns(ctx *gin.Context)
	LatestRun(ctx *gin.Context)
	TriggerRun(ctx *gin.Context)
}

// PipelineHandler implements the pipeline HTTP handlers
type PipelineHandler struct {
	pipeline usecase.IPipelineUsecase
	// baseCtx outlives the request; manually triggered runs are bound to it.
	baseCtx context.Context
}

// NewPipelineHandler creates a new pipeline handler instance
func NewPipelineHandler(baseCtx context.Context, pipeline usecase.IPipelineUsecase) IPipelineHandler {
	return &PipelineHandler{pipeline: pipeline, baseCtx: baseCtx}
}

// ListRuns handles GET /api/runs
func (h *PipelineHandler) ListRuns(ctx *gin.Context) {
	req := &dto.RunListRequest{}
	if err := ctx.ShouldBindQuery(req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: true, Message: "Invalid limit parameter"})
		return
	}
	if req.Limit <= 0 {
		req.Limit = defaultRunListLimit
	}
	if req.Limit > maxRunListLimit {
		req.Limit = maxRunListLimit
	}

	runs, err := h.pipeline.ListRuns(ctx.Request.Context(), req.Limit)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while listing pipeline runs")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: true, Message: "Failed to list pipeline runs"})
		return
	}

	ctx.JSON(http.StatusOK, dto.RunListResponse{Items: runs, Count: len(runs)})
}

// LatestRun handles GET /api/runs/latest
func (h *PipelineHandler) LatestRun(ctx *gin.Context) {
	run, err := h.pipeline.LatestRun(ctx.Request.Context())
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while getting latest pipeline run")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: true, Message: "Failed to get latest pipeline run"})
		return
	}
	if run == nil {
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Error: true, Message: "No pipeline run recorded yet"})
		return
	}

	ctx.JSON(http.StatusOK, run)
}

// TriggerRun handles POST /api/runs
func (h *PipelineHandler) TriggerRun(ctx *gin.Context) {
	run, err := h.pipeline.Start(h.baseCtx, usecase.TriggerManual)
	if errors.Is(err, errs.ErrRunInProgress) {
		ctx.JSON(http.StatusConflict, dto.ErrorResponse{Error: true, Message: err.Error()})
		return
	}
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while triggering pipeline run")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: true, Message: "Failed to trigger pipeline run"})
		return
	}

	ctx.JSON(http.StatusAccepted, dto.TriggerRunResponse{
		RunID:   run.ID,
		DagID:   run.DagID,
		Message: "Pipeline run started",
	})
}
