package source

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/pkg/apollo"
)

// searchSizeCap replaces an open-ended upper bound in the provider query;
// Apollo rejects the unbounded sentinel.
const searchSizeCap = 10000

// maxTitlesPerQuery limits how many ICP roles go into the provider query.
const maxTitlesPerQuery = 5

// techStackKeep caps the engineering-relevant tech entries kept per lead so
// the generation prompt stays focused.
const techStackKeep = 8

// ApolloSource sources leads through Apollo's two-phase pipeline: a cheap
// person search, then one paid enrichment lookup per unique company.
type ApolloSource struct {
	client        apollo.Client
	searchResults int
}

// ApolloOption configures an ApolloSource.
type ApolloOption func(*ApolloSource)

// WithSearchResults overrides how many person records the search phase
// requests. Zero keeps the default of twice the requested lead count.
func WithSearchResults(n int) ApolloOption {
	return func(s *ApolloSource) {
		s.searchResults = n
	}
}

// NewApolloSource creates the primary lead source.
func NewApolloSource(client apollo.Client, opts ...ApolloOption) *ApolloSource {
	s := &ApolloSource{client: client}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch searches people matching the ICP, dedups them by company, enriches
// each unique company in parallel, and maps the results into candidate leads.
// Returns an empty slice (not an error) when the search matches nobody; the
// caller decides how to degrade. An individual enrichment failure degrades
// only that one candidate.
func (s *ApolloSource) Fetch(ctx context.Context, icp model.StructuredICP, maxResults int) ([]model.CandidateLead, error) {
	// Phase 1: free person search. Request extra records to absorb
	// post-filtering loss from the company dedup.
	perPage := s.searchResults
	if perPage < maxResults {
		perPage = maxResults * 2
	}
	people, err := s.client.SearchPeople(ctx, buildSearchQuery(icp, perPage))
	if err != nil {
		return nil, eris.Wrap(err, "source: apollo people search")
	}
	if len(people) == 0 {
		return []model.CandidateLead{}, nil
	}

	unique := dedupByCompany(people, maxResults)

	// Phase 2: per-company enrichment, in parallel. One org credit each.
	leads := make([]model.CandidateLead, len(unique))
	g, gCtx := errgroup.WithContext(ctx)
	for i, person := range unique {
		g.Go(func() error {
			domain := deriveCompanyDomain(person.OrganizationName)
			org, enrichErr := s.client.EnrichOrganization(gCtx, domain)
			if enrichErr != nil {
				zap.L().Warn("source: enrichment failed, continuing without org data",
					zap.String("company", person.OrganizationName),
					zap.String("domain", domain),
					zap.Error(enrichErr),
				)
				org = nil
			}
			leads[i] = mapCandidate(person, org)
			return nil
		})
	}
	_ = g.Wait()

	return leads, nil
}

// buildSearchQuery translates the ICP into Apollo search filters.
func buildSearchQuery(icp model.StructuredICP, perPage int) apollo.SearchQuery {
	titles := icp.Roles
	if len(titles) > maxTitlesPerQuery {
		titles = titles[:maxTitlesPerQuery]
	}

	sizeMin := icp.CompanySizeRange.Min
	sizeMax := icp.CompanySizeRange.Max
	if sizeMax >= model.SizeMaxUnbounded {
		sizeMax = searchSizeCap
	}

	return apollo.SearchQuery{
		Titles:         titles,
		Seniorities:    inferSeniorities(icp.Roles),
		EmployeeRanges: []string{fmt.Sprintf("%d,%d", sizeMin, sizeMax)},
		Locations:      mapLocations(icp.Locations),
		PerPage:        perPage,
	}
}

// inferSeniorities derives Apollo seniority tokens from the joined role text.
func inferSeniorities(roles []string) []string {
	roleText := strings.ToLower(strings.Join(roles, " "))
	var out []string
	if strings.Contains(roleText, "vp") || strings.Contains(roleText, "vice president") {
		out = append(out, "vp")
	}
	if strings.Contains(roleText, "head") || strings.Contains(roleText, "director") {
		out = append(out, "head", "director")
	}
	if strings.Contains(roleText, "cto") || strings.Contains(roleText, "chief") {
		out = append(out, "c_suite")
	}
	return out
}

// mapLocations expands canonical ICP regions into Apollo location strings.
func mapLocations(locations []string) []string {
	var out []string
	for _, l := range locations {
		switch strings.ToLower(strings.TrimSpace(l)) {
		case "", "any":
			// no filter
		case "us", "united states":
			out = append(out, "United States")
		case "north america":
			out = append(out, "United States", "Canada")
		case "eu":
			out = append(out, "United Kingdom", "Germany", "France", "Netherlands", "Sweden")
		default:
			out = append(out, l)
		}
	}
	return out
}

// dedupByCompany collapses person records by trimmed lowercase company name,
// keeping first occurrences until maxResults unique companies are collected.
// Records with no company name are discarded.
func dedupByCompany(people []apollo.Person, maxResults int) []apollo.Person {
	seen := make(map[string]bool, len(people))
	var unique []apollo.Person
	for _, p := range people {
		key := strings.ToLower(strings.TrimSpace(p.OrganizationName))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, p)
		if len(unique) >= maxResults {
			break
		}
	}
	return unique
}

var legalSuffixRe = regexp.MustCompile(`(?i)\s+(inc|llc|corp|ltd|co|hq|group)\.?$`)
var nonAlnumRe = regexp.MustCompile(`[^a-z0-9]`)

// deriveCompanyDomain guesses a company's domain from its name, e.g.
// "Memo Health" -> "memohealth.com". Resolves often enough for SaaS companies
// that a miss is just a null enrichment.
func deriveCompanyDomain(companyName string) string {
	name := strings.ToLower(companyName)
	name = legalSuffixRe.ReplaceAllString(name, "")
	name = nonAlnumRe.ReplaceAllString(name, "")
	return name + ".com"
}

// engineeringTech is the allow-list of engineering-relevant tech keywords
// kept on a candidate's stack.
var engineeringTech = []string{
	"kubernetes", "docker", "github", "gitlab", "jenkins", "circleci",
	"terraform", "aws", "gcp", "azure", "python", "java", "node", "react",
	"typescript", "go", "rust", "redis", "kafka", "postgres", "mysql",
	"datadog", "sentry", "pagerduty", "jira", "linear",
}

func filterTechStack(names []string) []string {
	var kept []string
	for _, t := range names {
		tl := strings.ToLower(t)
		for _, kw := range engineeringTech {
			if strings.Contains(tl, kw) {
				kept = append(kept, t)
				break
			}
		}
		if len(kept) >= techStackKeep {
			break
		}
	}
	return kept
}

// formatFundingEvent renders a funding event in the same shape as the sample
// data: "<type> $<amount> led by <first investor> (<month year>)".
func formatFundingEvent(ev apollo.FundingEvent) string {
	var b strings.Builder
	b.WriteString(ev.Type)
	if ev.Amount != "" {
		b.WriteString(" $" + ev.Amount)
	}
	if ev.Investors != "" {
		first := strings.TrimSpace(strings.SplitN(ev.Investors, ",", 2)[0])
		b.WriteString(" led by " + first)
	}
	if ev.Date != "" {
		// Apollo dates arrive as either bare dates or full timestamps.
		t, err := time.Parse("2006-01-02", ev.Date)
		if err != nil {
			t, err = time.Parse(time.RFC3339, ev.Date)
		}
		if err == nil {
			b.WriteString(" (" + t.Format("January 2006") + ")")
		}
	}
	return b.String()
}

// mapCandidate merges a person record and a possibly-nil enrichment record
// into a candidate lead.
func mapCandidate(person apollo.Person, org *apollo.Organization) model.CandidateLead {
	companyName := person.OrganizationName
	if org != nil && org.Name != "" {
		companyName = org.Name
	}
	if companyName == "" {
		companyName = "Unknown Company"
	}

	// Last names from api_search are obfuscated (e.g. "Do***e"); keep them,
	// they still read naturally on a lead card.
	name := person.FirstName
	if person.LastName != "" {
		name = person.FirstName + " " + person.LastName
	}

	title := person.Title
	if title == "" {
		title = "Engineering Leader"
	}

	location := "United States"
	industry := "Software"
	companySize := 200
	var techStack, hiringSignals, fundingEvents []string
	var summary string

	if org != nil {
		var locParts []string
		for _, p := range []string{org.City, org.State, org.Country} {
			if p != "" {
				locParts = append(locParts, p)
			}
		}
		if len(locParts) > 0 {
			location = strings.Join(locParts, ", ")
		}
		if org.Industry != "" {
			industry = org.Industry
		}
		if org.EstimatedNumEmployees > 0 {
			companySize = org.EstimatedNumEmployees
		}

		techStack = filterTechStack(org.TechnologyNames)

		// Newest two funding events.
		events := make([]apollo.FundingEvent, len(org.FundingEvents))
		copy(events, org.FundingEvents)
		sort.SliceStable(events, func(i, j int) bool {
			return events[i].Date > events[j].Date
		})
		if len(events) > 2 {
			events = events[:2]
		}
		for _, ev := range events {
			fundingEvents = append(fundingEvents, formatFundingEvent(ev))
		}

		// Hiring signals are inferred, not fetched: recent funding implies
		// scaling, and headcount implies engineering team size.
		if org.LatestFundingStage != "" {
			hiringSignals = append(hiringSignals,
				fmt.Sprintf("Recently completed %s round - likely scaling engineering team", org.LatestFundingStage))
		}
		if org.EstimatedNumEmployees > 50 {
			est := int(math.Round(float64(org.EstimatedNumEmployees) * 0.25))
			hiringSignals = append(hiringSignals,
				fmt.Sprintf("Engineering team at ~%d-person scale (est. 25%% of %d total)", est, org.EstimatedNumEmployees))
		}

		if org.ShortDescription != "" {
			summary = org.ShortDescription
			if len(summary) > 400 {
				summary = summary[:400]
			}
		}
	}

	if len(techStack) == 0 {
		techStack = []string{"AWS", "GitHub"}
	}
	if summary == "" {
		summary = fmt.Sprintf("%s is a %s company with approximately %d employees.", companyName, strings.ToLower(industry), companySize)
	}

	return model.CandidateLead{
		ID:             model.ApolloIDPrefix + person.ID,
		Name:           name,
		Title:          title,
		LinkedInURL:    "https://linkedin.com/in/search?q=" + strings.ReplaceAll(person.FirstName, " ", "+"),
		Company:        companyName,
		CompanySize:    companySize,
		Location:       location,
		Industry:       industry,
		TechStack:      techStack,
		HiringSignals:  hiringSignals,
		FundingEvents:  fundingEvents,
		CompanySummary: summary,
	}
}
