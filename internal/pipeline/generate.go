package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/pkg/anthropic"
)

// minBodyLength is the acceptance floor for a generated email body. Anything
// shorter reads as a throwaway draft.
const minBodyLength = 200

// maxGenerateAttempts bounds regeneration when a draft fails the acceptance
// gate. The last attempt is kept regardless so a lead is never dropped over
// draft quality.
const maxGenerateAttempts = 2

// Generator produces per-lead fit explanations and personalized email drafts.
type Generator struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	seller    model.SellerContext
}

// NewGenerator creates a generator writing on behalf of the given seller.
func NewGenerator(client anthropic.Client, modelID string, maxTokens int64, seller model.SellerContext) *Generator {
	return &Generator{client: client, model: modelID, maxTokens: maxTokens, seller: seller}
}

// Generate produces content for one scored lead. A completion transport error
// propagates; an unparseable reply degrades to a templated draft. Drafts that
// fail the acceptance gate trigger one bounded regeneration.
func (g *Generator) Generate(ctx context.Context, lead model.ScoredLead, icp model.StructuredICP, research string) (model.GeneratedContent, anthropic.TokenUsage, error) {
	icpJSON, err := json.Marshal(icp)
	if err != nil {
		return model.GeneratedContent{}, anthropic.TokenUsage{}, eris.Wrap(err, "pipeline: marshal icp")
	}

	system := []anthropic.SystemBlock{
		{Text: emailGenerationSystemPrompt(g.seller), CacheControl: &anthropic.CacheControl{TTL: "5m"}},
	}
	userContent := emailUserContent(lead, string(icpJSON), research)

	var usage anthropic.TokenUsage
	var content model.GeneratedContent

	for attempt := 1; attempt <= maxGenerateAttempts; attempt++ {
		resp, callErr := g.client.CreateMessage(ctx, anthropic.MessageRequest{
			Model:     g.model,
			MaxTokens: g.maxTokens,
			System:    system,
			Messages: []anthropic.Message{
				{Role: "user", Content: userContent},
			},
		})
		if callErr != nil {
			return model.GeneratedContent{}, usage, eris.Wrapf(callErr, "pipeline: generate content for %s", lead.ID)
		}
		usage.Add(resp.Usage)

		raw := cleanJSON(extractText(resp))
		if jsonErr := json.Unmarshal([]byte(raw), &content); jsonErr != nil {
			zap.L().Warn("pipeline: unparseable generation reply, using templated draft",
				zap.String("lead_id", lead.ID),
				zap.Error(jsonErr),
			)
			return g.templatedContent(lead), usage, nil
		}

		if passesGate(content, lead.CandidateLead) {
			return content, usage, nil
		}

		zap.L().Debug("pipeline: draft failed acceptance gate",
			zap.String("lead_id", lead.ID),
			zap.Int("attempt", attempt),
			zap.Int("body_length", len(content.Body)),
		)
	}

	// Both attempts fell short of the gate; ship the last draft anyway.
	return content, usage, nil
}

// passesGate checks that a draft body is substantial and actually mentions
// the lead it was written for.
func passesGate(content model.GeneratedContent, lead model.CandidateLead) bool {
	body := strings.ToLower(content.Body)
	if len(content.Body) < minBodyLength {
		return false
	}
	return strings.Contains(body, strings.ToLower(lead.Company)) ||
		strings.Contains(body, strings.ToLower(lead.FirstName()))
}

// templatedContent is the deterministic draft used when the model's reply
// cannot be parsed.
func (g *Generator) templatedContent(lead model.ScoredLead) model.GeneratedContent {
	signal := "your team's growth"
	if len(lead.HiringSignals) > 0 {
		signal = strings.ToLower(strings.TrimSpace(lead.HiringSignals[0]))
	}

	body := fmt.Sprintf(
		"Hi %s,\n\nI noticed %s is growing its engineering organization (%s), and teams at that stage usually start feeling the drag of slow, brittle deploy pipelines.\n\n%s helps engineering teams like yours ship faster with less risk: %s\n\nWould you be open to a 15-minute call next week to see whether it fits how %s ships today?\n\nBest,\n%s\n%s, %s",
		lead.FirstName(), lead.Company, signal,
		g.seller.CompanyName, g.seller.ProductDescription,
		lead.Company,
		g.seller.SenderName, g.seller.SenderTitle, g.seller.CompanyName,
	)

	return model.GeneratedContent{
		FitExplanation: fmt.Sprintf("%s matches the target profile: %s at a %s company of roughly %d people, with active engineering growth signals.",
			lead.Company, lead.Title, lead.Industry, lead.CompanySize),
		Subject: fmt.Sprintf("Shipping velocity at %s", lead.Company),
		Body:    body,
	}
}

// ResearchBrief asks the model for a short situational brief on the lead's
// company. Optional; callers treat an error as "no brief".
func (g *Generator) ResearchBrief(ctx context.Context, lead model.ScoredLead) (string, anthropic.TokenUsage, error) {
	resp, err := g.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     g.model,
		MaxTokens: g.maxTokens,
		System: []anthropic.SystemBlock{
			{Text: researchBriefSystemPrompt},
		},
		Messages: []anthropic.Message{
			{Role: "user", Content: leadProfileText(lead)},
		},
	})
	if err != nil {
		return "", anthropic.TokenUsage{}, eris.Wrapf(err, "pipeline: research brief for %s", lead.ID)
	}
	return extractText(resp), resp.Usage, nil
}

// FormatSummary rewrites the deterministic research summary as natural prose.
// Optional; callers keep the deterministic summary on error.
func (g *Generator) FormatSummary(ctx context.Context, summary string) (string, anthropic.TokenUsage, error) {
	resp, err := g.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     g.model,
		MaxTokens: g.maxTokens,
		System: []anthropic.SystemBlock{
			{Text: formatSummarySystemPrompt},
		},
		Messages: []anthropic.Message{
			{Role: "user", Content: summary},
		},
	})
	if err != nil {
		return "", anthropic.TokenUsage{}, eris.Wrap(err, "pipeline: format summary")
	}
	return extractText(resp), resp.Usage, nil
}

func leadProfileText(lead model.ScoredLead) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Company: %s (%s)\n", lead.Company, lead.Industry)
	fmt.Fprintf(&b, "Size: ~%d employees\n", lead.CompanySize)
	fmt.Fprintf(&b, "Location: %s\n", lead.Location)
	fmt.Fprintf(&b, "Tech stack: %s\n", strings.Join(lead.TechStack, ", "))
	fmt.Fprintf(&b, "Hiring: %s\n", strings.Join(lead.HiringSignals, "; "))
	fmt.Fprintf(&b, "Funding: %s\n", strings.Join(lead.FundingEvents, "; "))
	fmt.Fprintf(&b, "About: %s\n", lead.CompanySummary)
	return b.String()
}
