package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidateLead_FirstName(t *testing.T) {
	tests := []struct {
		name string
		full string
		want string
	}{
		{"two parts", "Sarah Chen", "Sarah"},
		{"single name", "Sarah", "Sarah"},
		{"obfuscated last name", "Sarah Ch**", "Sarah"},
		{"empty", "", ""},
		{"whitespace only", "   ", "   "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lead := CandidateLead{Name: tt.full}
			assert.Equal(t, tt.want, lead.FirstName())
		})
	}
}

func TestCandidateLead_FromApollo(t *testing.T) {
	assert.True(t, CandidateLead{ID: ApolloIDPrefix + "123"}.FromApollo())
	assert.False(t, CandidateLead{ID: "lead-001"}.FromApollo())
	assert.False(t, CandidateLead{}.FromApollo())
}

func TestStructuredICP_Normalize(t *testing.T) {
	var icp StructuredICP
	icp.Normalize()

	assert.NotNil(t, icp.Roles)
	assert.NotNil(t, icp.Industries)
	assert.NotNil(t, icp.Locations)
	assert.NotNil(t, icp.Signals)
	assert.Equal(t, SizeRange{Min: 0, Max: SizeMaxUnbounded}, icp.CompanySizeRange)
}

func TestStructuredICP_NormalizeKeepsExplicitRange(t *testing.T) {
	icp := StructuredICP{CompanySizeRange: SizeRange{Min: 100, Max: 500}}
	icp.Normalize()
	assert.Equal(t, SizeRange{Min: 100, Max: 500}, icp.CompanySizeRange)
}

func TestDefaultICP_IsFullyPopulated(t *testing.T) {
	icp := DefaultICP()

	assert.NotEmpty(t, icp.Roles)
	assert.NotEmpty(t, icp.Industries)
	assert.NotEmpty(t, icp.Signals)
	assert.NotNil(t, icp.Locations)
	assert.Greater(t, icp.CompanySizeRange.Max, icp.CompanySizeRange.Min)
}

func TestSellerContext_IsZero(t *testing.T) {
	assert.True(t, SellerContext{}.IsZero())
	assert.False(t, SellerContext{CompanyName: "DeployFlow"}.IsZero())
	assert.False(t, DefaultSellerContext().IsZero())
}

func TestEnrichedLead_JSONShape(t *testing.T) {
	lead := EnrichedLead{
		ID:       "lead-001",
		Name:     "Sarah Chen",
		FitScore: 85,
		PersonalizedEmail: PersonalizedEmail{
			Subject: "Hello",
			Body:    "Body text",
		},
		Source: ProvenanceFallback,
	}

	raw, err := json.Marshal(lead)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	// The wire format is camelCase end to end.
	assert.Contains(t, decoded, "fitScore")
	assert.Contains(t, decoded, "fitExplanation")
	assert.Contains(t, decoded, "personalizedEmail")
	assert.Equal(t, "fallback-sample", decoded["source"])
}

func TestGenerateRequest_JSONShape(t *testing.T) {
	raw := `{"icpDescription": "VPs of Engineering", "geography": "US", "companySize": "100-500"}`

	var req GenerateRequest
	require.NoError(t, json.Unmarshal([]byte(raw), &req))

	assert.Equal(t, "VPs of Engineering", req.ICPDescription)
	assert.Equal(t, "US", req.Geography)
	assert.Nil(t, req.CompanyContext)
}
