package model

import "strings"

// ApolloIDPrefix namespaces lead IDs sourced from the Apollo provider.
// Scoring grants these a baseline boost because provider-side query filters
// already constrained them.
const ApolloIDPrefix = "apollo-"

// Provenance identifies where a run's leads came from.
type Provenance string

const (
	ProvenancePrimary  Provenance = "primary-provider"
	ProvenanceFallback Provenance = "fallback-sample"
)

// CandidateLead is a sourced, unscored lead in a provider-agnostic shape.
// IDs are unique within a single run; leads are never mutated after sourcing.
type CandidateLead struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Title          string   `json:"title"`
	LinkedInURL    string   `json:"linkedin_url"`
	Company        string   `json:"company"`
	CompanySize    int      `json:"company_size"`
	Location       string   `json:"location"`
	Industry       string   `json:"industry"`
	TechStack      []string `json:"tech_stack"`
	HiringSignals  []string `json:"hiring_signals"`
	FundingEvents  []string `json:"funding_events"`
	CompanySummary string   `json:"company_summary"`
}

// FirstName returns the lead's first name, or the full name when it has no
// separable parts.
func (l CandidateLead) FirstName() string {
	fields := strings.Fields(l.Name)
	if len(fields) == 0 {
		return l.Name
	}
	return fields[0]
}

// FromApollo reports whether this lead was sourced from the primary provider.
func (l CandidateLead) FromApollo() bool {
	return strings.HasPrefix(l.ID, ApolloIDPrefix)
}

// ScoredLead is a CandidateLead plus ranking output. ResearchSummary is a
// pure function of the candidate's fields.
type ScoredLead struct {
	CandidateLead
	FitScore        int    `json:"fit_score"`
	ResearchSummary string `json:"research_summary"`
}

// PersonalizedEmail is a generated outreach draft. Nothing is ever sent.
type PersonalizedEmail struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// GeneratedContent is the per-lead output of the content generator. The JSON
// tags match the schema the model is instructed to emit.
type GeneratedContent struct {
	FitExplanation string `json:"fitExplanation"`
	Subject        string `json:"subject"`
	Body           string `json:"body"`
}

// EnrichedLead is the final per-lead output unit returned to callers.
type EnrichedLead struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	Title             string            `json:"title"`
	Company           string            `json:"company"`
	CompanySummary    string            `json:"companySummary"`
	FitScore          int               `json:"fitScore"`
	FitExplanation    string            `json:"fitExplanation"`
	ResearchSummary   string            `json:"researchSummary"`
	PersonalizedEmail PersonalizedEmail `json:"personalizedEmail"`
	Source            Provenance        `json:"source"`
}
