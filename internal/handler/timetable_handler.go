package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-timetabler/internal/dto"
	"github.com/noah-isme/campus-timetabler/internal/models"
	"github.com/noah-isme/campus-timetabler/internal/service"
	appErrors "github.com/noah-isme/campus-timetabler/pkg/errors"
	"github.com/noah-isme/campus-timetabler/pkg/response"
)

type timetableOrchestrator interface {
	Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error)
	Negotiate(ctx context.Context, req dto.NegotiateRequest) (*dto.NegotiateResponse, error)
	Grids(ctx context.Context, runID string) (*dto.TimetableGridsResponse, error)
	Summary(ctx context.Context, runID string) (*dto.WorkloadSummaryResponse, error)
	Latest(ctx context.Context, query dto.TimetableQuery) (*models.Schedule, error)
	Violations(ctx context.Context, runID string) ([]models.Violation, error)
}

// TimetableHandler exposes the scheduling pipeline over HTTP.
type TimetableHandler struct {
	service timetableOrchestrator
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(svc *service.TimetableService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// Generate builds and stores a fresh schedule for a department and semester.
func (h *TimetableHandler) Generate(c *gin.Context) {
	var req dto.GenerateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generate payload"))
		return
	}
	resp, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, resp)
}

// Negotiate runs the repair pass over a stored run.
func (h *TimetableHandler) Negotiate(c *gin.Context) {
	req := dto.NegotiateRequest{RunID: c.Param("id")}
	resp, err := h.service.Negotiate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

// Latest returns the current run for a department and semester.
func (h *TimetableHandler) Latest(c *gin.Context) {
	var query dto.TimetableQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable query"))
		return
	}
	sched, err := h.service.Latest(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sched)
}

// Grids returns the per-section weekly grids of a run.
func (h *TimetableHandler) Grids(c *gin.Context) {
	resp, err := h.service.Grids(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

// Summary returns the workload rollup of a run.
func (h *TimetableHandler) Summary(c *gin.Context) {
	resp, err := h.service.Summary(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

// Violations returns the stored repair output of a run.
func (h *TimetableHandler) Violations(c *gin.Context) {
	violations, err := h.service.Violations(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"violations": violations})
}
