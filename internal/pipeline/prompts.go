package pipeline

import (
	"fmt"
	"strings"

	"github.com/sells-group/outreach-cli/internal/model"
)

// icpNormalizationSystemPrompt instructs the model to convert free-form ICP
// text into the StructuredICP JSON shape.
const icpNormalizationSystemPrompt = `You are an expert B2B sales operations assistant. Your sole job is to parse a free-form Ideal Customer Profile (ICP) description written by a salesperson and convert it into a strict JSON object.

## Output schema

{
  "roles": ["string"],                      // Job title keywords to target. Always include common variants.
  "industries": ["string"],                 // Industry/vertical names (e.g. "SaaS", "FinTech", "HealthTech")
  "company_size_range": {"min": 0, "max": 0}, // Employee headcount bounds
  "locations": ["string"],                  // Geographic regions (e.g. "US", "EU", "North America"). Use [] if "any".
  "signals": ["string"]                     // Buying signals to look for (e.g. "hiring engineers", "recent funding", "series b", "kubernetes")
}

## Rules
- Output ONLY valid JSON. No markdown, no explanation, no prose.
- If a field is not mentioned, use a sensible default: empty array [] or {"min": 0, "max": 999999}.
- For roles, always expand abbreviations (e.g. "VPE" means "VP of Engineering").
- For locations, normalize to canonical names: "US" not "United States of America".
- Signals should be lowercase keyword phrases, no more than 5 words each.

## Example 1
Input:
"We want VPs of Engineering at Series B SaaS companies with 200-500 employees who are actively hiring backend engineers."

Output:
{
  "roles": ["VP of Engineering", "VP Engineering", "Head of Engineering"],
  "industries": ["SaaS", "B2B Software"],
  "company_size_range": { "min": 200, "max": 500 },
  "locations": [],
  "signals": ["series b", "hiring backend engineers", "engineering growth", "recent funding"]
}

## Example 2
Input:
"Head of Eng or CTO at US-based FinTech or HealthTech startups, 100-300 people, post-Series A, using Kubernetes."

Output:
{
  "roles": ["Head of Engineering", "CTO", "Chief Technology Officer", "VP Engineering"],
  "industries": ["FinTech", "HealthTech", "Financial Technology", "Health Technology"],
  "company_size_range": { "min": 100, "max": 300 },
  "locations": ["US"],
  "signals": ["kubernetes", "series a", "post-series a", "hiring engineers", "cloud infrastructure"]
}`

// emailGenerationSystemPrompt builds the fit-reasoning and email-writing
// instructions around the seller's product facts, so the model never has to
// invent what is being sold.
func emailGenerationSystemPrompt(seller model.SellerContext) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are a senior SDR at %s.\n\n", seller.CompanyName)
	fmt.Fprintf(&b, "## About %s (use these facts, do not invent others)\n", seller.CompanyName)
	fmt.Fprintf(&b, "- **Core product**: %s\n", seller.ProductDescription)
	for i, vp := range seller.ValueProps {
		fmt.Fprintf(&b, "- **Value prop %d**: %s\n", i+1, vp)
	}

	b.WriteString(`
## Your task
Given a lead's profile and research summary, produce a JSON object with:
1. "fitExplanation": 2-4 sentences explaining why this specific company and person are a strong fit RIGHT NOW. Reference concrete signals from their profile (hiring, funding, tech stack, growth stage). Be direct and analytical, not flattery.
2. "subject": A compelling, specific cold email subject line (under 10 words, no punctuation at start).
3. "body": A cold outbound email body (120-220 words). Requirements:
   - Professional but conversational tone.
   - Reference AT LEAST ONE specific company detail from the research (funding event, hiring signals, tech stack item, or company milestone).
   - Explicitly connect that detail to a pain point the product solves.
   - One clear, low-friction call to action (e.g., "15-minute call").
   - No cheesy opener. No "I hope this finds you well." No excessive flattery.
   - Do NOT invent facts not present in the research summary.
`)
	fmt.Fprintf(&b, "   - Sign off from: %s, %s, %s.\n", seller.SenderName, seller.SenderTitle, seller.CompanyName)
	b.WriteString(`
## Output schema (output ONLY valid JSON, no markdown, no prose)
{
  "fitExplanation": "string",
  "subject": "string",
  "body": "string"
}`)

	return b.String()
}

// emailUserContent renders the per-lead prompt body embedding the ICP, the
// lead's fields, and the research text.
func emailUserContent(lead model.ScoredLead, icpJSON string, research string) string {
	var b strings.Builder

	b.WriteString("## Structured ICP (target profile)\n")
	b.WriteString(icpJSON)
	b.WriteString("\n\n## Lead profile\n")
	fmt.Fprintf(&b, "- Name: %s\n", lead.Name)
	fmt.Fprintf(&b, "- Title: %s\n", lead.Title)
	fmt.Fprintf(&b, "- Company: %s (%s)\n", lead.Company, lead.Industry)
	fmt.Fprintf(&b, "- Company size: ~%d employees\n", lead.CompanySize)
	fmt.Fprintf(&b, "- Location: %s\n", lead.Location)
	fmt.Fprintf(&b, "- Tech stack: %s\n", strings.Join(lead.TechStack, ", "))
	fmt.Fprintf(&b, "- Hiring signals: %s\n", strings.Join(lead.HiringSignals, "; "))
	fmt.Fprintf(&b, "- Funding events: %s\n", strings.Join(lead.FundingEvents, "; "))
	fmt.Fprintf(&b, "- Research summary: %s\n", research)
	b.WriteString("\nGenerate the JSON output now.")

	return b.String()
}

// researchBriefSystemPrompt asks for a short situational brief on a company.
const researchBriefSystemPrompt = `You are a B2B sales researcher. Given a company's profile data, write a 3-4 sentence brief on the company's current situation: what it does, its growth stage, and what its hiring and funding activity suggest about near-term engineering priorities. Plain prose, no headings, no bullet points, no speculation beyond the data given.`

// formatSummarySystemPrompt asks for a human-readable rewrite of the
// deterministic research summary.
const formatSummarySystemPrompt = `You are a B2B sales researcher. Rewrite the following machine-built research summary as 2-3 natural sentences a salesperson could skim. Keep every fact, drop nothing, add nothing. Plain prose only.`
