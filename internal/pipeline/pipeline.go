// Package pipeline runs the end-to-end lead generation flow: ICP
// normalization, sourcing, scoring, and per-lead content generation.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/scoring"
	"github.com/sells-group/outreach-cli/internal/source"
	"github.com/sells-group/outreach-cli/internal/store"
	"github.com/sells-group/outreach-cli/pkg/anthropic"
)

// minICPLength is the floor for a usable ICP description.
const minICPLength = 10

var (
	// ErrInvalidInput marks a request rejected before any work starts.
	ErrInvalidInput = eris.New("pipeline: icp description must be at least 10 characters")

	// ErrNoLeadsMatched marks a run where sourcing and scoring produced
	// nothing to generate content for.
	ErrNoLeadsMatched = eris.New("pipeline: no leads matched the icp")
)

// Options configures a Pipeline.
type Options struct {
	Model          string
	MaxTokens      int64
	MaxLeads       int
	ResearchBriefs bool
	Seller         model.SellerContext
}

// Pipeline orchestrates a full generation run.
type Pipeline struct {
	opts       Options
	store      store.Store
	normalizer *Normalizer
	primary    source.LeadSource
	fallback   source.LeadSource
	anthropic  anthropic.Client
}

// New assembles a pipeline. primary may be nil when no provider key is
// configured; every run then uses the fallback source directly.
func New(opts Options, st store.Store, client anthropic.Client, primary, fallback source.LeadSource) *Pipeline {
	if opts.MaxLeads <= 0 {
		opts.MaxLeads = 5
	}
	return &Pipeline{
		opts:       opts,
		store:      st,
		normalizer: NewNormalizer(client, opts.Model, opts.MaxTokens),
		primary:    primary,
		fallback:   fallback,
		anthropic:  client,
	}
}

// Run executes one end-to-end generation. Store write failures are logged and
// never fail the run; the store is an observer, not a dependency.
func (p *Pipeline) Run(ctx context.Context, req model.GenerateRequest) (*model.GenerateResponse, error) {
	log := zap.L()
	start := time.Now()

	icpText := strings.TrimSpace(req.ICPDescription)
	if len(icpText) < minICPLength {
		return nil, ErrInvalidInput
	}

	run := p.createRun(ctx, icpText)

	trackPhase := func(name string, fn func() error) error {
		var phaseID string
		if run != nil {
			if phase, phaseErr := p.store.CreatePhase(ctx, run.ID, name); phaseErr != nil {
				log.Warn("pipeline: failed to create phase", zap.String("phase", name), zap.Error(phaseErr))
			} else {
				phaseID = phase.ID
			}
		}

		phaseStart := time.Now()
		fnErr := fn()
		duration := time.Since(phaseStart).Milliseconds()

		status := model.PhaseStatusComplete
		errMsg := ""
		if fnErr != nil {
			status = model.PhaseStatusFailed
			errMsg = fnErr.Error()
			log.Error("pipeline: phase failed",
				zap.String("phase", name),
				zap.Int64("duration_ms", duration),
				zap.Error(fnErr),
			)
		} else {
			log.Info("pipeline: phase complete",
				zap.String("phase", name),
				zap.Int64("duration_ms", duration),
			)
		}

		if phaseID != "" {
			if completeErr := p.store.CompletePhase(ctx, phaseID, status, duration, errMsg); completeErr != nil {
				log.Warn("pipeline: failed to complete phase", zap.String("phase", name), zap.Error(completeErr))
			}
		}
		return fnErr
	}

	var totalUsage anthropic.TokenUsage

	// Phase 1: normalize the ICP text into a structured filter.
	p.setStatus(ctx, run, model.RunStatusNormalizing)
	var icp model.StructuredICP
	if err := trackPhase("normalize", func() error {
		normalized, usage, normErr := p.normalizer.Normalize(ctx, icpText, req.Geography, req.CompanySize)
		if normErr != nil {
			return normErr
		}
		totalUsage.Add(usage)
		icp = normalized
		return nil
	}); err != nil {
		p.finishRun(ctx, run, model.RunStatusFailed, model.RunResult{DurationMs: time.Since(start).Milliseconds(), Error: err.Error()})
		return nil, err
	}

	// Phase 2: source candidates, silently degrading to the sample set.
	p.setStatus(ctx, run, model.RunStatusSourcing)
	var candidates []model.CandidateLead
	provenance := model.ProvenanceFallback
	_ = trackPhase("source", func() error {
		candidates, provenance = p.sourceCandidates(ctx, icp)
		return nil
	})

	// Phase 3: score and rank.
	ranked := scoring.Rank(candidates, icp, p.opts.MaxLeads)
	if len(ranked) == 0 {
		p.finishRun(ctx, run, model.RunStatusNoMatch, model.RunResult{
			Source:     provenance,
			DurationMs: time.Since(start).Milliseconds(),
		})
		return nil, ErrNoLeadsMatched
	}

	// Phase 4: per-lead content generation, fanned out.
	p.setStatus(ctx, run, model.RunStatusGenerating)
	seller := req.CompanyContext
	if seller == nil || seller.IsZero() {
		s := p.opts.Seller
		seller = &s
	}
	generator := NewGenerator(p.anthropic, p.opts.Model, p.opts.MaxTokens, *seller)

	enriched := make([]model.EnrichedLead, len(ranked))
	usages := make([]anthropic.TokenUsage, len(ranked))
	genErr := trackPhase("generate", func() error {
		g, gCtx := errgroup.WithContext(ctx)
		for i, lead := range ranked {
			g.Go(func() error {
				out, usage, leadErr := p.generateLead(gCtx, generator, lead, icp, provenance)
				if leadErr != nil {
					return leadErr
				}
				enriched[i] = out
				usages[i] = usage
				return nil
			})
		}
		return g.Wait()
	})
	if genErr != nil {
		p.finishRun(ctx, run, model.RunStatusFailed, model.RunResult{
			Source:     provenance,
			DurationMs: time.Since(start).Milliseconds(),
			Error:      genErr.Error(),
		})
		return nil, genErr
	}

	for _, u := range usages {
		totalUsage.Add(u)
	}
	totalUsage.LogCost(p.opts.Model, "run")

	duration := time.Since(start).Milliseconds()
	p.finishRun(ctx, run, model.RunStatusComplete, model.RunResult{
		Source:     provenance,
		LeadCount:  len(enriched),
		DurationMs: duration,
	})

	log.Info("pipeline: run complete",
		zap.Int("leads", len(enriched)),
		zap.String("source", string(provenance)),
		zap.Int64("duration_ms", duration),
	)

	return &model.GenerateResponse{Leads: enriched, Source: provenance}, nil
}

// sourceCandidates tries the primary provider and degrades to the fallback
// sample set when the provider is unconfigured, errors, or matches nobody.
func (p *Pipeline) sourceCandidates(ctx context.Context, icp model.StructuredICP) ([]model.CandidateLead, model.Provenance) {
	if p.primary != nil {
		candidates, err := p.primary.Fetch(ctx, icp, p.opts.MaxLeads)
		if err != nil {
			zap.L().Warn("pipeline: primary source failed, falling back to samples", zap.Error(err))
		} else if len(candidates) == 0 {
			zap.L().Info("pipeline: primary source matched nobody, falling back to samples")
		} else {
			return candidates, model.ProvenancePrimary
		}
	}

	candidates, err := p.fallback.Fetch(ctx, icp, p.opts.MaxLeads)
	if err != nil {
		// The sample source cannot fail; guard anyway.
		zap.L().Error("pipeline: fallback source failed", zap.Error(err))
		return nil, model.ProvenanceFallback
	}
	return candidates, model.ProvenanceFallback
}

// generateLead produces the final enriched output for one ranked lead. The
// optional research brief and summary rewrite run concurrently before the
// main generation call; either failing softly keeps the deterministic text.
func (p *Pipeline) generateLead(ctx context.Context, generator *Generator, lead model.ScoredLead, icp model.StructuredICP, provenance model.Provenance) (model.EnrichedLead, anthropic.TokenUsage, error) {
	var usage anthropic.TokenUsage
	research := lead.ResearchSummary

	if p.opts.ResearchBriefs {
		// Each goroutine writes only its own slot; usage is folded after Wait.
		var brief, formatted string
		var briefUsage, formatUsage anthropic.TokenUsage
		g, gCtx := errgroup.WithContext(ctx)
		g.Go(func() error {
			b, u, briefErr := generator.ResearchBrief(gCtx, lead)
			if briefErr != nil {
				zap.L().Warn("pipeline: research brief failed", zap.String("lead_id", lead.ID), zap.Error(briefErr))
				return nil
			}
			brief = b
			briefUsage = u
			return nil
		})
		g.Go(func() error {
			f, u, fmtErr := generator.FormatSummary(gCtx, lead.ResearchSummary)
			if fmtErr != nil {
				zap.L().Warn("pipeline: summary formatting failed", zap.String("lead_id", lead.ID), zap.Error(fmtErr))
				return nil
			}
			formatted = f
			formatUsage = u
			return nil
		})
		_ = g.Wait()
		usage.Add(briefUsage)
		usage.Add(formatUsage)

		if formatted != "" {
			research = formatted
		}
		if brief != "" {
			research = research + " " + brief
		}
	}

	content, genUsage, err := generator.Generate(ctx, lead, icp, research)
	usage.Add(genUsage)
	if err != nil {
		return model.EnrichedLead{}, usage, err
	}

	return model.EnrichedLead{
		ID:              lead.ID,
		Name:            lead.Name,
		Title:           lead.Title,
		Company:         lead.Company,
		CompanySummary:  lead.CompanySummary,
		FitScore:        lead.FitScore,
		FitExplanation:  content.FitExplanation,
		ResearchSummary: research,
		PersonalizedEmail: model.PersonalizedEmail{
			Subject: content.Subject,
			Body:    content.Body,
		},
		Source: provenance,
	}, usage, nil
}

// run-log helpers; every store failure is logged and swallowed.

func (p *Pipeline) createRun(ctx context.Context, icpText string) *model.Run {
	if p.store == nil {
		return nil
	}
	run, err := p.store.CreateRun(ctx, icpText)
	if err != nil {
		zap.L().Warn("pipeline: failed to create run record", zap.Error(err))
		return nil
	}
	return run
}

func (p *Pipeline) setStatus(ctx context.Context, run *model.Run, status model.RunStatus) {
	if run == nil {
		return
	}
	if err := p.store.UpdateRunStatus(ctx, run.ID, status); err != nil {
		zap.L().Warn("pipeline: failed to update run status", zap.String("run_id", run.ID), zap.Error(err))
	}
}

func (p *Pipeline) finishRun(ctx context.Context, run *model.Run, status model.RunStatus, result model.RunResult) {
	if run == nil {
		return
	}
	if err := p.store.UpdateRunResult(ctx, run.ID, status, result); err != nil {
		zap.L().Warn("pipeline: failed to record run result", zap.String("run_id", run.ID), zap.Error(err))
	}
}
