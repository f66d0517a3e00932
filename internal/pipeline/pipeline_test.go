package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/source"
	"github.com/sells-group/outreach-cli/pkg/anthropic"
)

const icpReply = `{
	"roles": ["VP of Engineering", "Head of Engineering"],
	"industries": ["SaaS"],
	"company_size_range": {"min": 100, "max": 1000},
	"locations": [],
	"signals": ["hiring engineers", "recent funding"]
}`

// newTestClient wires an anthropic mock that answers the normalization call
// with a fixed ICP and every other call with an acceptable draft anchored on
// whichever company the prompt mentions.
func newTestClient(t *testing.T) *mockAnthropicClient {
	t.Helper()
	client := &mockAnthropicClient{}
	client.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return len(req.System) > 0 && req.System[0].Text == icpNormalizationSystemPrompt
	})).Return(textResponse(icpReply), nil)
	for _, company := range []string{"Stackline", "Finli", "Memo Health", "Launchpad HQ", "Rentable"} {
		client.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
			return mentionsCompany(req, company)
		})).Return(textResponse(draftJSON(t, company)), nil)
	}
	return client
}

func mentionsCompany(req anthropic.MessageRequest, company string) bool {
	for _, m := range req.Messages {
		if m.Role == "user" && strings.Contains(m.Content, company) {
			return true
		}
	}
	return false
}

func newTestPipeline(client anthropic.Client, primary source.LeadSource) *Pipeline {
	opts := Options{
		Model:     testModel,
		MaxTokens: 1024,
		MaxLeads:  5,
		Seller:    model.DefaultSellerContext(),
	}
	return New(opts, nil, client, primary, source.NewSampleSource())
}

func TestRun_RejectsShortICP(t *testing.T) {
	p := newTestPipeline(&mockAnthropicClient{}, nil)

	_, err := p.Run(context.Background(), model.GenerateRequest{ICPDescription: "too short"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = p.Run(context.Background(), model.GenerateRequest{ICPDescription: "   \t  "})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRun_FallbackWhenNoPrimaryConfigured(t *testing.T) {
	client := newTestClient(t)
	p := newTestPipeline(client, nil)

	resp, err := p.Run(context.Background(), model.GenerateRequest{
		ICPDescription: "VPs of Engineering at Series B SaaS companies with 100-1000 employees",
	})
	require.NoError(t, err)

	assert.Equal(t, model.ProvenanceFallback, resp.Source)
	assert.NotEmpty(t, resp.Leads)
	assert.LessOrEqual(t, len(resp.Leads), 5)
	for _, lead := range resp.Leads {
		assert.Equal(t, model.ProvenanceFallback, lead.Source)
		assert.NotEmpty(t, lead.PersonalizedEmail.Body)
		assert.NotEmpty(t, lead.FitExplanation)
		assert.GreaterOrEqual(t, lead.FitScore, 1)
		assert.LessOrEqual(t, lead.FitScore, 100)
	}
}

func TestRun_FallbackIsDeterministic(t *testing.T) {
	client := newTestClient(t)
	p := newTestPipeline(client, nil)
	req := model.GenerateRequest{
		ICPDescription: "VPs of Engineering at Series B SaaS companies with 100-1000 employees",
	}

	first, err := p.Run(context.Background(), req)
	require.NoError(t, err)
	second, err := p.Run(context.Background(), req)
	require.NoError(t, err)

	require.Equal(t, len(first.Leads), len(second.Leads))
	for i := range first.Leads {
		assert.Equal(t, first.Leads[i].ID, second.Leads[i].ID)
		assert.Equal(t, first.Leads[i].FitScore, second.Leads[i].FitScore)
	}
}

func TestRun_PrimarySourceErrorFallsBackSilently(t *testing.T) {
	client := newTestClient(t)
	primary := &mockLeadSource{}
	primary.On("Fetch", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, eris.New("apollo: search failed: 500"))

	p := newTestPipeline(client, primary)
	resp, err := p.Run(context.Background(), model.GenerateRequest{
		ICPDescription: "VPs of Engineering at Series B SaaS companies with 100-1000 employees",
	})
	require.NoError(t, err)

	assert.Equal(t, model.ProvenanceFallback, resp.Source)
	assert.NotEmpty(t, resp.Leads)
	primary.AssertExpectations(t)
}

func TestRun_PrimaryEmptyResultFallsBack(t *testing.T) {
	client := newTestClient(t)
	primary := &mockLeadSource{}
	primary.On("Fetch", mock.Anything, mock.Anything, mock.Anything).
		Return([]model.CandidateLead{}, nil)

	p := newTestPipeline(client, primary)
	resp, err := p.Run(context.Background(), model.GenerateRequest{
		ICPDescription: "VPs of Engineering at Series B SaaS companies with 100-1000 employees",
	})
	require.NoError(t, err)

	assert.Equal(t, model.ProvenanceFallback, resp.Source)
	primary.AssertExpectations(t)
}

func TestRun_PrimaryLeadsCarryPrimaryProvenance(t *testing.T) {
	client := newTestClient(t)
	primary := &mockLeadSource{}
	primary.On("Fetch", mock.Anything, mock.Anything, mock.Anything).Return([]model.CandidateLead{
		{
			ID:          model.ApolloIDPrefix + "p1",
			Name:        "Jordan Blake",
			Title:       "VP of Engineering",
			Company:     "Stackline",
			CompanySize: 300,
			Location:    "San Francisco, CA, US",
			Industry:    "SaaS",
			HiringSignals: []string{
				"Hiring backend engineers",
			},
		},
	}, nil)

	p := newTestPipeline(client, primary)
	resp, err := p.Run(context.Background(), model.GenerateRequest{
		ICPDescription: "VPs of Engineering at Series B SaaS companies with 100-1000 employees",
	})
	require.NoError(t, err)

	assert.Equal(t, model.ProvenancePrimary, resp.Source)
	require.Len(t, resp.Leads, 1)
	assert.Equal(t, model.ProvenancePrimary, resp.Leads[0].Source)
}

func TestRun_NoLeadsMatched(t *testing.T) {
	// Normalize to a US-only ICP so the mismatched lead scores zero on every
	// factor.
	client := &mockAnthropicClient{}
	client.On("CreateMessage", mock.Anything, mock.Anything).Return(textResponse(`{
		"roles": ["VP of Engineering"],
		"industries": ["SaaS"],
		"company_size_range": {"min": 100, "max": 1000},
		"locations": ["US"],
		"signals": ["hiring engineers"]
	}`), nil)

	// Primary returns one lead that cannot score above zero.
	primary := &mockLeadSource{}
	primary.On("Fetch", mock.Anything, mock.Anything, mock.Anything).Return([]model.CandidateLead{
		{
			ID:       "other-1",
			Name:     "Pat Doe",
			Title:    "Chief Revenue Officer",
			Company:  "Acme Logistics",
			Location: "Berlin, Germany",
			Industry: "Freight",
		},
	}, nil)

	fallback := &mockLeadSource{}
	fallback.On("Fetch", mock.Anything, mock.Anything, mock.Anything).
		Return([]model.CandidateLead{}, nil)

	opts := Options{Model: testModel, MaxTokens: 1024, MaxLeads: 5, Seller: model.DefaultSellerContext()}
	p := New(opts, nil, client, primary, fallback)

	// The primary yields only a zero-scoring lead and the fallback yields
	// nothing, so ranking leaves nothing to generate.
	resp, err := p.Run(context.Background(), model.GenerateRequest{
		ICPDescription: "VPs of Engineering at Series B SaaS companies with 100-1000 employees",
	})
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrNoLeadsMatched)
}

func TestRun_GenerationFailureFailsRun(t *testing.T) {
	client := &mockAnthropicClient{}
	client.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return len(req.System) > 0 && req.System[0].Text == icpNormalizationSystemPrompt
	})).Return(textResponse(icpReply), nil)
	client.On("CreateMessage", mock.Anything, mock.Anything).
		Return(nil, eris.New("anthropic: create message: overloaded"))

	p := newTestPipeline(client, nil)
	_, err := p.Run(context.Background(), model.GenerateRequest{
		ICPDescription: "VPs of Engineering at Series B SaaS companies with 100-1000 employees",
	})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidInput)
	assert.NotErrorIs(t, err, ErrNoLeadsMatched)
}

func TestRun_RequestSellerContextOverridesDefault(t *testing.T) {
	client := &mockAnthropicClient{}
	client.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return len(req.System) > 0 && req.System[0].Text == icpNormalizationSystemPrompt
	})).Return(textResponse(icpReply), nil)
	client.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return len(req.System) > 0 && strings.Contains(req.System[0].Text, "Acme Build Tools")
	})).Return(textResponse(draftJSON(t, "Stackline")), nil)

	primary := &mockLeadSource{}
	primary.On("Fetch", mock.Anything, mock.Anything, mock.Anything).Return([]model.CandidateLead{
		{
			ID:          model.ApolloIDPrefix + "p1",
			Name:        "Jordan Blake",
			Title:       "VP of Engineering",
			Company:     "Stackline",
			CompanySize: 300,
			Industry:    "SaaS",
		},
	}, nil)

	p := newTestPipeline(client, primary)
	_, err := p.Run(context.Background(), model.GenerateRequest{
		ICPDescription: "VPs of Engineering at Series B SaaS companies with 100-1000 employees",
		CompanyContext: &model.SellerContext{
			CompanyName:        "Acme Build Tools",
			ProductDescription: "Build caching for monorepos.",
			SenderName:         "Sam Lee",
			SenderTitle:        "AE",
		},
	})
	require.NoError(t, err)
	client.AssertExpectations(t)
}

func TestRun_ResearchBriefsEnrichSummary(t *testing.T) {
	client := &mockAnthropicClient{}
	client.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return len(req.System) > 0 && req.System[0].Text == icpNormalizationSystemPrompt
	})).Return(textResponse(icpReply), nil)
	client.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return len(req.System) > 0 && req.System[0].Text == researchBriefSystemPrompt
	})).Return(textResponse("Stackline raised a Series B and is scaling its platform team."), nil)
	client.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return len(req.System) > 0 && req.System[0].Text == formatSummarySystemPrompt
	})).Return(textResponse("Stackline is a 300-person retail analytics SaaS company."), nil)
	client.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return mentionsCompany(req, "Stackline")
	})).Return(textResponse(draftJSON(t, "Stackline")), nil)

	primary := &mockLeadSource{}
	primary.On("Fetch", mock.Anything, mock.Anything, mock.Anything).Return([]model.CandidateLead{
		{
			ID:          model.ApolloIDPrefix + "p1",
			Name:        "Jordan Blake",
			Title:       "VP of Engineering",
			Company:     "Stackline",
			CompanySize: 300,
			Industry:    "SaaS",
		},
	}, nil)

	opts := Options{
		Model:          testModel,
		MaxTokens:      1024,
		MaxLeads:       5,
		ResearchBriefs: true,
		Seller:         model.DefaultSellerContext(),
	}
	p := New(opts, nil, client, primary, source.NewSampleSource())

	resp, err := p.Run(context.Background(), model.GenerateRequest{
		ICPDescription: "VPs of Engineering at Series B SaaS companies with 100-1000 employees",
	})
	require.NoError(t, err)
	require.Len(t, resp.Leads, 1)

	// The formatted summary replaces the deterministic one and the brief is
	// appended after it.
	assert.Equal(t,
		"Stackline is a 300-person retail analytics SaaS company. Stackline raised a Series B and is scaling its platform team.",
		resp.Leads[0].ResearchSummary,
	)
	client.AssertExpectations(t)
}

func TestRun_RecordsRunLifecycle(t *testing.T) {
	client := newTestClient(t)
	st := &mockStore{}
	st.On("CreateRun", mock.Anything, mock.Anything).
		Return(&model.Run{ID: "run-1", Status: model.RunStatusQueued}, nil)
	st.On("UpdateRunStatus", mock.Anything, "run-1", mock.Anything).Return(nil)
	st.On("CreatePhase", mock.Anything, "run-1", mock.Anything).
		Return(&model.RunPhase{ID: "phase-1", RunID: "run-1"}, nil)
	st.On("CompletePhase", mock.Anything, "phase-1", model.PhaseStatusComplete, mock.Anything, "").Return(nil)
	st.On("UpdateRunResult", mock.Anything, "run-1", model.RunStatusComplete, mock.MatchedBy(func(r model.RunResult) bool {
		return r.LeadCount > 0 && r.Source == model.ProvenanceFallback
	})).Return(nil)

	opts := Options{Model: testModel, MaxTokens: 1024, MaxLeads: 5, Seller: model.DefaultSellerContext()}
	p := New(opts, st, client, nil, source.NewSampleSource())

	_, err := p.Run(context.Background(), model.GenerateRequest{
		ICPDescription: "VPs of Engineering at Series B SaaS companies with 100-1000 employees",
	})
	require.NoError(t, err)
	st.AssertExpectations(t)
}

func TestRun_StoreFailuresDoNotFailRun(t *testing.T) {
	client := newTestClient(t)
	st := &mockStore{}
	st.On("CreateRun", mock.Anything, mock.Anything).Return(nil, eris.New("sqlite: insert run: disk full"))

	opts := Options{Model: testModel, MaxTokens: 1024, MaxLeads: 5, Seller: model.DefaultSellerContext()}
	p := New(opts, st, client, nil, source.NewSampleSource())

	resp, err := p.Run(context.Background(), model.GenerateRequest{
		ICPDescription: "VPs of Engineering at Series B SaaS companies with 100-1000 employees",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Leads)
}
