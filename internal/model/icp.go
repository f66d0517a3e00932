package model

// SizeRange is an inclusive employee-headcount range. Max uses
// SizeMaxUnbounded as the "no upper bound" sentinel.
type SizeRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// SizeMaxUnbounded is the sentinel for an open-ended company size range.
const SizeMaxUnbounded = 999999

// StructuredICP is the normalized targeting filter produced from free-form
// ICP text. Every field is always populated: slices are non-nil and the size
// range defaults to [0, SizeMaxUnbounded]. Created once per pipeline run and
// immutable afterwards.
type StructuredICP struct {
	Roles            []string  `json:"roles"`
	Industries       []string  `json:"industries"`
	CompanySizeRange SizeRange `json:"company_size_range"`
	Locations        []string  `json:"locations"`
	Signals          []string  `json:"signals"`
}

// Normalize fills in zero values so consumers never see a partial ICP.
func (icp *StructuredICP) Normalize() {
	if icp.Roles == nil {
		icp.Roles = []string{}
	}
	if icp.Industries == nil {
		icp.Industries = []string{}
	}
	if icp.Locations == nil {
		icp.Locations = []string{}
	}
	if icp.Signals == nil {
		icp.Signals = []string{}
	}
	if icp.CompanySizeRange.Min == 0 && icp.CompanySizeRange.Max == 0 {
		icp.CompanySizeRange.Max = SizeMaxUnbounded
	}
}

// DefaultICP is the fallback targeting filter used when the normalization
// model returns something unparseable, so a run never halts on a malformed
// reply.
func DefaultICP() StructuredICP {
	return StructuredICP{
		Roles:            []string{"VP of Engineering", "Head of Engineering"},
		Industries:       []string{"SaaS"},
		CompanySizeRange: SizeRange{Min: 100, Max: 1000},
		Locations:        []string{},
		Signals:          []string{"hiring engineers", "recent funding"},
	}
}
