package pipeline

import (
	"strings"

	"github.com/sells-group/outreach-cli/pkg/anthropic"
)

// extractText concatenates the text blocks of a completion response.
func extractText(resp *anthropic.MessageResponse) string {
	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return strings.TrimSpace(b.String())
}

// cleanJSON strips markdown code fences that models sometimes wrap around
// JSON output despite instructions not to.
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
