package service

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-timetabler/internal/dto"
	"github.com/noah-isme/campus-timetabler/internal/engine"
	"github.com/noah-isme/campus-timetabler/internal/models"
	appErrors "github.com/noah-isme/campus-timetabler/pkg/errors"
	"github.com/noah-isme/campus-timetabler/pkg/export"
	"github.com/noah-isme/campus-timetabler/pkg/jobs"
	"github.com/noah-isme/campus-timetabler/pkg/storage"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
}

type runLoader interface {
	Run(ctx context.Context, runID string) (*models.Schedule, error)
}

// exportJob is the queue payload for one rendering task.
type exportJob struct {
	RunID    string
	Format   string
	Filename string
}

// ExportService renders stored runs into CSV or PDF files. Rendering happens
// on the jobs queue; the request returns immediately with the artifact name
// and a download follows once the worker finishes.
type ExportService struct {
	runs      runLoader
	storage   fileStorage
	csv       csvRenderer
	pdf       pdfRenderer
	queue     *jobs.Queue
	signer    *storage.DownloadTokenSigner
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewExportService constructs an ExportService. Call Start before enqueueing.
func NewExportService(runs runLoader, files fileStorage, signer *storage.DownloadTokenSigner, metrics *MetricsService, logger *zap.Logger, queueCfg jobs.QueueConfig) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ExportService{
		runs:      runs,
		storage:   files,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		signer:    signer,
		metrics:   metrics,
		validator: validator.New(),
		logger:    logger,
	}
	queueCfg.Logger = logger
	s.queue = jobs.NewQueue("timetable-exports", s.handleJob, queueCfg)
	return s
}

// Start launches the rendering workers.
func (s *ExportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the rendering workers.
func (s *ExportService) Stop() {
	s.queue.Stop()
}

// Enqueue validates the request and schedules the rendering job.
func (s *ExportService) Enqueue(ctx context.Context, req dto.ExportRequest) (*dto.ExportResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export payload")
	}

	// Fail fast on unknown runs instead of letting the worker discover it.
	if _, err := s.runs.Run(ctx, req.RunID); err != nil {
		return nil, err
	}

	jobID := uuid.NewString()
	filename := fmt.Sprintf("timetable/%s-%d.%s", req.RunID, time.Now().UTC().Unix(), req.Format)
	err := s.queue.Enqueue(jobs.Job{
		ID:   jobID,
		Type: "render-" + req.Format,
		Payload: exportJob{
			RunID:    req.RunID,
			Format:   req.Format,
			Filename: filename,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("enqueue export: %w", err)
	}

	token, expiresAt, err := s.signer.Generate(jobID, filename)
	if err != nil {
		return nil, fmt.Errorf("sign download token: %w", err)
	}

	return &dto.ExportResponse{
		JobID:         jobID,
		RunID:         req.RunID,
		Format:        req.Format,
		Filename:      filename,
		DownloadToken: token,
		ExpiresAt:     expiresAt,
	}, nil
}

// Download validates the token and returns a handle to the artifact.
func (s *ExportService) Download(token string) (*os.File, error) {
	_, relPath, _, err := s.signer.Parse(token)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export not ready or not found")
	}
	return file, nil
}

func (s *ExportService) handleJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(exportJob)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", job.Payload)
	}

	sched, err := s.runs.Run(ctx, payload.RunID)
	if err != nil {
		s.metrics.ObserveExport(payload.Format, "error")
		return fmt.Errorf("load run %s: %w", payload.RunID, err)
	}

	data, err := s.render(sched, payload.Format)
	if err != nil {
		s.metrics.ObserveExport(payload.Format, "error")
		return err
	}

	if _, err := s.storage.Save(payload.Filename, data); err != nil {
		s.metrics.ObserveExport(payload.Format, "error")
		return err
	}

	s.metrics.ObserveExport(payload.Format, "ok")
	s.logger.Info("export rendered",
		zap.String("job_id", job.ID),
		zap.String("run_id", payload.RunID),
		zap.String("file", payload.Filename),
	)
	return nil
}

// render produces one document per run: every section grid followed by the
// workload summary tables.
func (s *ExportService) render(sched *models.Schedule, format string) ([]byte, error) {
	grids := engine.BuildSectionGrids(sched)
	summary := engine.BuildWorkloadSummary(sched)

	switch format {
	case "csv":
		var out []byte
		for _, grid := range grids {
			chunk, err := s.csv.Render(engine.GridDataset(grid))
			if err != nil {
				return nil, fmt.Errorf("render grid %s: %w", grid.SectionID, err)
			}
			out = append(out, []byte(grid.SectionID+"\n")...)
			out = append(out, chunk...)
			out = append(out, '\n')
		}
		chunk, err := s.csv.Render(engine.SummaryDataset(summary))
		if err != nil {
			return nil, fmt.Errorf("render summary: %w", err)
		}
		out = append(out, chunk...)
		out = append(out, '\n')
		chunk, err = s.csv.Render(engine.FacultyDataset(summary))
		if err != nil {
			return nil, fmt.Errorf("render faculty summary: %w", err)
		}
		out = append(out, chunk...)
		return out, nil
	case "pdf":
		// One grid per page keeps each section readable; the summary uses
		// the first dataset's document.
		if len(grids) == 0 {
			return s.pdf.Render(engine.SummaryDataset(summary), "Workload Summary")
		}
		combined := engine.GridDataset(grids[0])
		for _, grid := range grids[1:] {
			next := engine.GridDataset(grid)
			combined.Rows = append(combined.Rows, map[string]string{"Time Slot": grid.SectionID})
			combined.Rows = append(combined.Rows, next.Rows...)
		}
		return s.pdf.Render(combined, fmt.Sprintf("Timetable %s Semester %d", sched.Department, sched.Semester))
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}
