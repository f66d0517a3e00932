// Package apollo wraps the Apollo.io REST API for person search and
// organization enrichment. People search is free; organization enrichment
// consumes one org credit per unique company, so callers dedup first.
package apollo

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.apollo.io/api/v1"

// Client defines the Apollo API operations used by the lead source.
type Client interface {
	// SearchPeople runs a person search against the free api_search
	// endpoint, falling back to the standard (credit-consuming) search
	// endpoint when the API key lacks Master-key permissions.
	SearchPeople(ctx context.Context, query SearchQuery) ([]Person, error)

	// EnrichOrganization looks up a company by domain. A 404 means the
	// company is unknown and yields (nil, nil), not an error.
	EnrichOrganization(ctx context.Context, domain string) (*Organization, error)
}

// SearchQuery holds the provider-side filters for a person search.
type SearchQuery struct {
	Titles         []string
	Seniorities    []string
	EmployeeRanges []string // "min,max" strings
	Locations      []string
	PerPage        int
}

// Person is a normalized person-search record. Both api_search and
// mixed_people/search payload variants map into this one shape.
type Person struct {
	ID               string
	FirstName        string
	LastName         string
	Title            string
	OrganizationName string
}

// FundingEvent is a single funding round on an organization record.
type FundingEvent struct {
	Date      string `json:"date"`
	Type      string `json:"type"`
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
	Investors string `json:"investors"`
}

// Organization is an enrichment record for one company.
type Organization struct {
	ID                    string         `json:"id"`
	Name                  string         `json:"name"`
	PrimaryDomain         string         `json:"primary_domain"`
	Industry              string         `json:"industry"`
	EstimatedNumEmployees int            `json:"estimated_num_employees"`
	ShortDescription      string         `json:"short_description"`
	City                  string         `json:"city"`
	State                 string         `json:"state"`
	Country               string         `json:"country"`
	TechnologyNames       []string       `json:"technology_names"`
	LatestFundingStage    string         `json:"latest_funding_stage"`
	FundingEvents         []FundingEvent `json:"funding_events"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit overrides the default request rate limit.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		} else {
			c.limiter = nil
		}
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates an Apollo API client. Calls are throttled to 5 req/s by
// default to stay under Apollo's per-minute limits.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(5, 5),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

// rawPerson covers both person-search payload variants: api_search returns
// last_name_obfuscated and a bare organization name, mixed_people/search
// returns last_name and a richer organization object.
type rawPerson struct {
	ID                 string `json:"id"`
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name"`
	LastNameObfuscated string `json:"last_name_obfuscated"`
	Title              string `json:"title"`
	Organization       *struct {
		Name string `json:"name"`
	} `json:"organization"`
}

// normalizePerson adapts either payload variant into the internal shape.
func normalizePerson(p rawPerson) Person {
	last := p.LastName
	if last == "" {
		last = p.LastNameObfuscated
	}
	person := Person{
		ID:        p.ID,
		FirstName: p.FirstName,
		LastName:  last,
		Title:     p.Title,
	}
	if p.Organization != nil {
		person.OrganizationName = p.Organization.Name
	}
	return person
}

func (q SearchQuery) values() url.Values {
	params := url.Values{}
	for _, t := range q.Titles {
		params.Add("person_titles[]", t)
	}
	for _, s := range q.Seniorities {
		params.Add("person_seniorities[]", s)
	}
	for _, r := range q.EmployeeRanges {
		params.Add("organization_num_employees_ranges[]", r)
	}
	for _, l := range q.Locations {
		params.Add("organization_locations[]", l)
	}
	if q.PerPage > 0 {
		params.Set("per_page", strconv.Itoa(q.PerPage))
	}
	return params
}

func (c *httpClient) SearchPeople(ctx context.Context, query SearchQuery) ([]Person, error) {
	if err := c.wait(ctx); err != nil {
		return nil, eris.Wrap(err, "apollo: rate limit")
	}

	params := query.values().Encode()

	// Attempt 1: api_search, free but requires a Master API key.
	status, body, err := c.post(ctx, "/mixed_people/api_search?"+params)
	if err != nil {
		return nil, err
	}
	if status == http.StatusOK {
		return decodePeople(body)
	}
	if status != http.StatusForbidden {
		return nil, eris.Errorf("apollo: people search failed: %d: %s", status, string(body))
	}

	// 403 = not a Master key. Fall back to the standard search endpoint,
	// which works with regular keys but may consume export credits.
	zap.L().Warn("apollo: api_search returned 403, falling back to mixed_people/search")

	status, body, err = c.post(ctx, "/mixed_people/search?"+params)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, eris.Errorf("apollo: people search failed: %d: %s", status, string(body))
	}
	return decodePeople(body)
}

func decodePeople(body []byte) ([]Person, error) {
	var payload struct {
		People []rawPerson `json:"people"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, eris.Wrap(err, "apollo: unmarshal people search response")
	}
	people := make([]Person, 0, len(payload.People))
	for _, p := range payload.People {
		people = append(people, normalizePerson(p))
	}
	return people, nil
}

func (c *httpClient) EnrichOrganization(ctx context.Context, domain string) (*Organization, error) {
	if err := c.wait(ctx); err != nil {
		return nil, eris.Wrap(err, "apollo: rate limit")
	}

	reqURL := c.baseURL + "/organizations/enrich?domain=" + url.QueryEscape(domain)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "apollo: create request")
	}
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("Cache-Control", "no-cache")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "apollo: send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "apollo: read response")
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil // company not found, not an error
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("apollo: enrich %s failed: %d: %s", domain, resp.StatusCode, string(body))
	}

	var payload struct {
		Organization *Organization `json:"organization"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, eris.Wrapf(err, "apollo: unmarshal enrichment for %s", domain)
	}
	return payload.Organization, nil
}

// post issues an empty-body POST (Apollo search endpoints take all filters as
// query parameters) and returns the status and body without interpreting them.
func (c *httpClient) post(ctx context.Context, pathAndQuery string) (int, []byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+pathAndQuery, nil)
	if err != nil {
		return 0, nil, eris.Wrap(err, "apollo: create request")
	}
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Cache-Control", "no-cache")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return 0, nil, eris.Wrap(err, "apollo: send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, eris.Wrap(err, "apollo: read response")
	}
	return resp.StatusCode, body, nil
}
