// Package source produces candidate leads for a structured ICP, either from
// the Apollo provider or from a bundled sample set.
package source

import (
	"context"

	"github.com/sells-group/outreach-cli/internal/model"
)

// LeadSource yields up to maxResults candidate leads for an ICP.
type LeadSource interface {
	Fetch(ctx context.Context, icp model.StructuredICP, maxResults int) ([]model.CandidateLead, error)
}

// SampleSource serves the bundled seed leads. It never fails and never makes
// a network call, so fallback runs are deterministic for a given ICP.
type SampleSource struct{}

// NewSampleSource creates the fallback lead source.
func NewSampleSource() *SampleSource {
	return &SampleSource{}
}

// Fetch returns the full sample set; ranking decides what survives.
func (s *SampleSource) Fetch(_ context.Context, _ model.StructuredICP, _ int) ([]model.CandidateLead, error) {
	leads := make([]model.CandidateLead, len(sampleLeads))
	copy(leads, sampleLeads)
	return leads, nil
}
