// Package scoring ranks candidate leads against a structured ICP using five
// independent weighted factors. Scoring is pure and deterministic: no I/O,
// no failure modes, missing fields simply contribute zero.
package scoring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sells-group/outreach-cli/internal/model"
)

// Factor weights. The five factors sum to at most 100 before the provider
// baseline boost and final clamp.
const (
	titleExactPoints      = 30
	titleKeywordPoints    = 15
	industryExactPoints   = 20
	industrySaaSPoints    = 10
	sizeExactPoints       = 20
	sizeNearPoints        = 10
	locationPoints        = 10
	signalPoints          = 5
	signalCap             = 20
	providerBaselineBoost = 30
)

// titleKeywords are common engineering-leadership titles that earn partial
// credit when none of the ICP roles match the lead's title directly.
var titleKeywords = []string{
	"vp of engineering",
	"vp engineering",
	"head of engineering",
	"head of eng",
	"director of engineering",
	"chief technology officer",
	"cto",
	"engineering manager",
	"staff engineer",
	"principal engineer",
}

// usLocationHints are substrings that identify a US location when the ICP
// asks for a US/North America region rather than a specific place.
var usLocationHints = []string{"us", ", ca", ", ny", ", tx", ", wa", ", il"}

// euLocationHints identify European locations for an "EU" region filter.
var euLocationHints = []string{"uk", "europe", "germany", "france", "netherlands"}

func norm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// titleScore: exact substring match of an ICP role wins 30; a secondary
// keyword match wins 15; only the best check counts.
func titleScore(lead model.CandidateLead, icp model.StructuredICP) int {
	title := norm(lead.Title)
	for _, role := range icp.Roles {
		if strings.Contains(title, norm(role)) {
			return titleExactPoints
		}
	}
	for _, kw := range titleKeywords {
		if strings.Contains(title, kw) {
			return titleKeywordPoints
		}
	}
	return 0
}

func industryScore(lead model.CandidateLead, icp model.StructuredICP) int {
	industry := norm(lead.Industry)
	for _, ind := range icp.Industries {
		if strings.Contains(industry, norm(ind)) {
			return industryExactPoints
		}
	}
	if strings.Contains(industry, "saas") || strings.Contains(industry, "software") {
		return industrySaaSPoints
	}
	return 0
}

func sizeScore(lead model.CandidateLead, icp model.StructuredICP) int {
	r := icp.CompanySizeRange
	size := lead.CompanySize
	if size >= r.Min && size <= r.Max {
		return sizeExactPoints
	}
	if float64(size) >= float64(r.Min)*0.8 && float64(size) <= float64(r.Max)*1.2 {
		return sizeNearPoints
	}
	return 0
}

// locationScore: an empty ICP location set is a universal pass. Otherwise the
// first matching ICP location wins; there is no stacking.
func locationScore(lead model.CandidateLead, icp model.StructuredICP) int {
	if len(icp.Locations) == 0 {
		return locationPoints
	}
	loc := norm(lead.Location)
	for _, l := range icp.Locations {
		nl := norm(l)
		if nl == "any" {
			return locationPoints
		}
		if strings.Contains(loc, nl) {
			return locationPoints
		}
		if nl == "us" || nl == "united states" || nl == "north america" {
			for _, hint := range usLocationHints {
				if strings.Contains(loc, hint) {
					return locationPoints
				}
			}
		}
		if nl == "eu" {
			for _, hint := range euLocationHints {
				if strings.Contains(loc, hint) {
					return locationPoints
				}
			}
		}
	}
	return 0
}

// signalScore: 5 points per ICP signal phrase found anywhere in the lead's
// combined signal text, +5 for 2+ hiring signals, +5 for any funding event,
// capped at 20.
func signalScore(lead model.CandidateLead, icp model.StructuredICP) int {
	parts := make([]string, 0, len(lead.HiringSignals)+len(lead.FundingEvents)+len(lead.TechStack)+1)
	for _, s := range lead.HiringSignals {
		parts = append(parts, norm(s))
	}
	for _, f := range lead.FundingEvents {
		parts = append(parts, norm(f))
	}
	for _, t := range lead.TechStack {
		parts = append(parts, norm(t))
	}
	parts = append(parts, norm(lead.CompanySummary))
	allText := strings.Join(parts, " ")

	score := 0
	for _, signal := range icp.Signals {
		if strings.Contains(allText, norm(signal)) {
			score += signalPoints
		}
	}
	if len(lead.HiringSignals) >= 2 {
		score += signalPoints
	}
	if len(lead.FundingEvents) >= 1 {
		score += signalPoints
	}
	if score > signalCap {
		return signalCap
	}
	return score
}

// Score computes the lead's fit score and its deterministic research summary.
// Apollo-sourced leads get a flat baseline boost before clamping: provider-side
// query filters already constrained them, and their local signal data is often
// sparse.
func Score(lead model.CandidateLead, icp model.StructuredICP) (int, string) {
	raw := titleScore(lead, icp) +
		industryScore(lead, icp) +
		sizeScore(lead, icp) +
		locationScore(lead, icp) +
		signalScore(lead, icp)

	if lead.FromApollo() {
		raw += providerBaselineBoost
	}

	if raw > 100 {
		raw = 100
	}
	if raw < 0 {
		raw = 0
	}
	return raw, BuildResearchSummary(lead)
}

// BuildResearchSummary concatenates the candidate's fields into the research
// text passed to content generation. Pure function of the lead.
func BuildResearchSummary(lead model.CandidateLead) string {
	return fmt.Sprintf(
		"Company: %s (%s), ~%d employees, located in %s. %s Tech stack: %s. Currently hiring: %s. Funding history: %s.",
		lead.Company,
		lead.Industry,
		lead.CompanySize,
		lead.Location,
		lead.CompanySummary,
		strings.Join(lead.TechStack, ", "),
		strings.Join(lead.HiringSignals, ", "),
		strings.Join(lead.FundingEvents, "; "),
	)
}

// Rank scores every candidate, sorts descending by fit score (stable, so ties
// keep source order), truncates to maxResults, and drops zero-score leads. A
// zero-score lead is never surfaced, even as a filler.
func Rank(leads []model.CandidateLead, icp model.StructuredICP, maxResults int) []model.ScoredLead {
	scored := make([]model.ScoredLead, 0, len(leads))
	for _, lead := range leads {
		score, summary := Score(lead, icp)
		scored = append(scored, model.ScoredLead{
			CandidateLead:   lead,
			FitScore:        score,
			ResearchSummary: summary,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].FitScore > scored[j].FitScore
	})

	if maxResults > 0 && len(scored) > maxResults {
		scored = scored[:maxResults]
	}

	kept := scored[:0]
	for _, s := range scored {
		if s.FitScore > 0 {
			kept = append(kept, s)
		}
	}
	return kept
}
