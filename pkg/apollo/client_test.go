package apollo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-key", WithBaseURL(srv.URL), WithRateLimit(0))
}

func TestSearchPeople_APISearchSuccess(t *testing.T) {
	var gotPath, gotKey string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-api-key")
		assert.Equal(t, http.MethodPost, r.Method)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"people": [
			{"id": "p1", "first_name": "Sarah", "last_name_obfuscated": "Ch**", "title": "VP of Engineering", "organization": {"name": "Stackline"}},
			{"id": "p2", "first_name": "Marcus", "last_name": "Williams", "title": "Head of Engineering", "organization": {"name": "Finli"}}
		]}`))
	})

	people, err := client.SearchPeople(context.Background(), SearchQuery{
		Titles:  []string{"VP of Engineering"},
		PerPage: 10,
	})
	require.NoError(t, err)

	assert.Equal(t, "/mixed_people/api_search", gotPath)
	assert.Equal(t, "test-key", gotKey)
	require.Len(t, people, 2)
	assert.Equal(t, "Ch**", people[0].LastName)
	assert.Equal(t, "Stackline", people[0].OrganizationName)
	assert.Equal(t, "Williams", people[1].LastName)
}

func TestSearchPeople_FallsBackOn403(t *testing.T) {
	var paths []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if strings.Contains(r.URL.Path, "api_search") {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error": "master key required"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"people": [{"id": "p1", "first_name": "Sarah", "last_name": "Chen", "title": "VP of Engineering", "organization": {"name": "Stackline"}}]}`))
	})

	people, err := client.SearchPeople(context.Background(), SearchQuery{Titles: []string{"VP of Engineering"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"/mixed_people/api_search", "/mixed_people/search"}, paths)
	require.Len(t, people, 1)
	assert.Equal(t, "Chen", people[0].LastName)
}

func TestSearchPeople_HardErrorOnOtherStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "invalid key"}`))
	})

	_, err := client.SearchPeople(context.Background(), SearchQuery{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestSearchPeople_SendsQueryParams(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, []string{"VP of Engineering", "CTO"}, q["person_titles[]"])
		assert.Equal(t, []string{"vp", "c_suite"}, q["person_seniorities[]"])
		assert.Equal(t, []string{"100,1000"}, q["organization_num_employees_ranges[]"])
		assert.Equal(t, []string{"United States"}, q["organization_locations[]"])
		assert.Equal(t, "10", q.Get("per_page"))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"people": []}`))
	})

	_, err := client.SearchPeople(context.Background(), SearchQuery{
		Titles:         []string{"VP of Engineering", "CTO"},
		Seniorities:    []string{"vp", "c_suite"},
		EmployeeRanges: []string{"100,1000"},
		Locations:      []string{"United States"},
		PerPage:        10,
	})
	assert.NoError(t, err)
}

func TestEnrichOrganization_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/organizations/enrich", r.URL.Path)
		assert.Equal(t, "stackline.com", r.URL.Query().Get("domain"))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"organization": {
			"id": "org1",
			"name": "Stackline",
			"primary_domain": "stackline.com",
			"industry": "information technology & services",
			"estimated_num_employees": 280,
			"short_description": "Retail analytics platform.",
			"city": "Seattle",
			"state": "Washington",
			"country": "United States",
			"technology_names": ["AWS", "Kubernetes"],
			"latest_funding_stage": "Series B",
			"funding_events": [{"date": "2024-03-01", "type": "Series B", "amount": "45M", "currency": "$", "investors": "Sapphire Ventures"}]
		}}`))
	})

	org, err := client.EnrichOrganization(context.Background(), "stackline.com")
	require.NoError(t, err)
	require.NotNil(t, org)

	assert.Equal(t, "Stackline", org.Name)
	assert.Equal(t, 280, org.EstimatedNumEmployees)
	assert.Equal(t, "Series B", org.LatestFundingStage)
	require.Len(t, org.FundingEvents, 1)
	assert.Equal(t, "Sapphire Ventures", org.FundingEvents[0].Investors)
}

func TestEnrichOrganization_NotFoundIsNil(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": "not found"}`))
	})

	org, err := client.EnrichOrganization(context.Background(), "nonexistentcompany.com")
	assert.NoError(t, err)
	assert.Nil(t, org)
}

func TestEnrichOrganization_ServerErrorPropagates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "boom"}`))
	})

	_, err := client.EnrichOrganization(context.Background(), "stackline.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestNormalizePerson(t *testing.T) {
	tests := []struct {
		name string
		raw  rawPerson
		want Person
	}{
		{
			name: "obfuscated last name variant",
			raw:  rawPerson{ID: "p1", FirstName: "Sarah", LastNameObfuscated: "Ch**", Title: "VP"},
			want: Person{ID: "p1", FirstName: "Sarah", LastName: "Ch**", Title: "VP"},
		},
		{
			name: "full last name wins over obfuscated",
			raw:  rawPerson{ID: "p2", FirstName: "Marcus", LastName: "Williams", LastNameObfuscated: "Wi**"},
			want: Person{ID: "p2", FirstName: "Marcus", LastName: "Williams"},
		},
		{
			name: "missing organization",
			raw:  rawPerson{ID: "p3", FirstName: "Priya"},
			want: Person{ID: "p3", FirstName: "Priya"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizePerson(tt.raw))
		})
	}
}
