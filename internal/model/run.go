package model

import "time"

// RunStatus tracks a pipeline run through its phases.
type RunStatus string

const (
	RunStatusQueued      RunStatus = "queued"
	RunStatusNormalizing RunStatus = "normalizing"
	RunStatusSourcing    RunStatus = "sourcing"
	RunStatusGenerating  RunStatus = "generating"
	RunStatusComplete    RunStatus = "complete"
	RunStatusNoMatch     RunStatus = "no_match"
	RunStatusFailed      RunStatus = "failed"
)

// Run is the persisted record of one pipeline invocation. Only metadata and
// outcome counters are stored; lead contents never are.
type Run struct {
	ID         string     `json:"id"`
	ICPText    string     `json:"icp_text"`
	Status     RunStatus  `json:"status"`
	Source     Provenance `json:"source,omitempty"`
	LeadCount  int        `json:"lead_count"`
	DurationMs int64      `json:"duration_ms"`
	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// RunResult is the final outcome written back onto a run.
type RunResult struct {
	Source     Provenance `json:"source,omitempty"`
	LeadCount  int        `json:"lead_count"`
	DurationMs int64      `json:"duration_ms"`
	Error      string     `json:"error,omitempty"`
}

// PhaseStatus tracks an individual phase within a run.
type PhaseStatus string

const (
	PhaseStatusRunning  PhaseStatus = "running"
	PhaseStatusComplete PhaseStatus = "complete"
	PhaseStatusFailed   PhaseStatus = "failed"
)

// RunPhase records the timing and outcome of one pipeline phase.
type RunPhase struct {
	ID         string      `json:"id"`
	RunID      string      `json:"run_id"`
	Name       string      `json:"name"`
	Status     PhaseStatus `json:"status"`
	DurationMs int64       `json:"duration_ms"`
	Error      string      `json:"error,omitempty"`
	StartedAt  time.Time   `json:"started_at"`
}

// GenerateRequest is the inbound request for one end-to-end run.
type GenerateRequest struct {
	ICPDescription string         `json:"icpDescription"`
	Geography      string         `json:"geography,omitempty"`
	CompanySize    string         `json:"companySize,omitempty"`
	CompanyContext *SellerContext `json:"companyContext,omitempty"`
}

// GenerateResponse is the successful outbound shape.
type GenerateResponse struct {
	Leads  []EnrichedLead `json:"leads"`
	Source Provenance     `json:"source"`
}

// ErrorResponse is the failure outbound shape.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}
