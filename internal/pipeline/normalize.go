package pipeline

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/pkg/anthropic"
)

// Normalizer converts free-form ICP text into a StructuredICP via one
// completion call.
type Normalizer struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewNormalizer creates a normalizer bound to a completion client.
func NewNormalizer(client anthropic.Client, modelID string, maxTokens int64) *Normalizer {
	return &Normalizer{client: client, model: modelID, maxTokens: maxTokens}
}

// Normalize parses ICP text into a structured filter. Optional geography and
// company-size hints are appended as extra lines so the model folds them in.
// An unparseable model reply degrades to the default ICP rather than failing;
// only transport-level completion errors propagate.
func (n *Normalizer) Normalize(ctx context.Context, icpText, geography, companySize string) (model.StructuredICP, anthropic.TokenUsage, error) {
	input := icpText
	if geography != "" {
		input += "\nGeography: " + geography
	}
	if companySize != "" {
		input += "\nCompany size: " + companySize
	}

	resp, err := n.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     n.model,
		MaxTokens: n.maxTokens,
		System: []anthropic.SystemBlock{
			{Text: icpNormalizationSystemPrompt, CacheControl: &anthropic.CacheControl{TTL: "5m"}},
		},
		Messages: []anthropic.Message{
			{Role: "user", Content: input},
		},
	})
	if err != nil {
		return model.StructuredICP{}, anthropic.TokenUsage{}, eris.Wrap(err, "pipeline: normalize icp")
	}

	raw := cleanJSON(extractText(resp))

	var icp model.StructuredICP
	if jsonErr := json.Unmarshal([]byte(raw), &icp); jsonErr != nil {
		zap.L().Warn("pipeline: unparseable icp reply, using default icp",
			zap.Error(jsonErr),
			zap.String("reply_prefix", truncate(raw, 120)),
		)
		return model.DefaultICP(), resp.Usage, nil
	}

	icp.Normalize()
	return icp, resp.Usage, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.TrimSpace(s[:n]) + "..."
}
