package dto

import (
	"time"

	"github.com/noah-isme/campus-timetabler/internal/engine"
	"github.com/noah-isme/campus-timetabler/internal/models"
)

// GenerateTimetableRequest asks for a fresh schedule run for one department
// and semester. Mode and seed override the configured defaults when set.
type GenerateTimetableRequest struct {
	Department string `json:"department" validate:"required"`
	Semester   int    `json:"semester" validate:"required,min=1,max=10"`
	Mode       string `json:"mode" validate:"omitempty,oneof=exact heuristic"`
	Seed       *int64 `json:"seed" validate:"omitempty"`
	Negotiate  bool   `json:"negotiate"`
}

// GenerateTimetableResponse returns the stored run with solver metadata.
type GenerateTimetableResponse struct {
	RunID       string              `json:"run_id"`
	Department  string              `json:"department"`
	Semester    int                 `json:"semester"`
	Mode        models.ScheduleMode `json:"mode"`
	Status      string              `json:"status"`
	SolveStatus string              `json:"solve_status,omitempty"`
	Verified    bool                `json:"verified"`
	Seed        int64               `json:"seed"`
	Assignments int                 `json:"assignments"`
	Shortfalls  []models.Shortfall  `json:"shortfalls,omitempty"`
	Violations  []models.Violation  `json:"violations,omitempty"`
	Elapsed     time.Duration       `json:"elapsed_ms"`
	CreatedAt   time.Time           `json:"created_at"`
}

// NegotiateRequest triggers a repair pass over a stored run.
type NegotiateRequest struct {
	RunID string `json:"run_id" validate:"required"`
}

// NegotiateResponse returns the repair outcome.
type NegotiateResponse struct {
	RunID      string             `json:"run_id"`
	Status     string             `json:"status"`
	Violations []models.Violation `json:"violations"`
	Resolved   int                `json:"resolved"`
	Unresolved int                `json:"unresolved"`
}

// TimetableQuery filters run lookups by department and semester.
type TimetableQuery struct {
	Department string `form:"department" json:"department" validate:"required"`
	Semester   int    `form:"semester" json:"semester" validate:"required,min=1,max=10"`
}

// TimetableGridsResponse returns the per-section weekly grids of a run.
type TimetableGridsResponse struct {
	RunID  string               `json:"run_id"`
	Status string               `json:"status"`
	Grids  []engine.SectionGrid `json:"grids"`
}

// WorkloadSummaryResponse returns the run-level reporting rollup.
type WorkloadSummaryResponse struct {
	RunID   string                 `json:"run_id"`
	Summary engine.WorkloadSummary `json:"summary"`
}

// ExportRequest asks for a rendered artifact of a stored run.
type ExportRequest struct {
	RunID  string `json:"run_id" validate:"required"`
	Format string `json:"format" validate:"required,oneof=csv pdf"`
}

// ExportResponse acknowledges a queued export. The download token fetches
// the artifact once rendering finishes.
type ExportResponse struct {
	JobID         string    `json:"job_id"`
	RunID         string    `json:"run_id"`
	Format        string    `json:"format"`
	Filename      string    `json:"filename"`
	DownloadToken string    `json:"download_token"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// TokenRequest exchanges the admin secret for a bearer token.
type TokenRequest struct {
	Secret string `json:"secret" validate:"required"`
}

// TokenResponse carries a signed admin token.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
