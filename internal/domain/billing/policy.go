package billing

import (
	"fmt"
	"sort"
	"strings"

	"github.com/okian/workpulse/internal/domain/types"
)

// Policy is the SOW rule table for one project: a daily hour cap per
// category. Categories absent from Caps are uncapped.
type Policy struct {
	Project string
	Caps    map[types.Category]float64
}

// CapFor returns the daily cap for a category, if one is configured.
func (p Policy) CapFor(c types.Category) (float64, bool) {
	capHours, ok := p.Caps[c]
	return capHours, ok
}

// Describe renders the rule table as display strings, one per category.
func (p Policy) Describe() map[string]string {
	out := make(map[string]string)
	for _, c := range types.AllCategories() {
		if capHours, ok := p.Caps[c]; ok {
			out[c.String()] = fmt.Sprintf("max %.1f hours/day (SOW cap)", capHours)
		} else {
			out[c.String()] = "no cap (bill all hours)"
		}
	}
	return out
}

// PolicySet holds the injectable per-project policy table.
type PolicySet struct {
	policies map[string]Policy
}

// NewPolicySet builds a set from explicit policies. A project appearing
// twice or carrying a negative cap is a construction-time error, since a
// broken policy table must never reach the billing path.
func NewPolicySet(policies ...Policy) (*PolicySet, error) {
	s := &PolicySet{policies: make(map[string]Policy)}
	for _, p := range policies {
		project := strings.ToLower(strings.TrimSpace(p.Project))
		if project == "" {
			return nil, fmt.Errorf("%w: empty project name", ErrInvalidPolicy)
		}
		if _, dup := s.policies[project]; dup {
			return nil, fmt.Errorf("%w: duplicate policy for %q", ErrInvalidPolicy, project)
		}
		for category, capHours := range p.Caps {
			if capHours < 0 {
				return nil, fmt.Errorf("%w: negative cap %.2f for %s/%s", ErrInvalidPolicy, capHours, project, category)
			}
		}
		p.Project = project
		s.policies[project] = p
	}
	return s, nil
}

// NewPolicySetFromTable builds a set from the configuration shape:
// project -> category token -> cap hours. Unknown category tokens are a
// construction-time error rather than a silent pass-through.
func NewPolicySetFromTable(table map[string]map[string]float64) (*PolicySet, error) {
	policies := make([]Policy, 0, len(table))
	for project, caps := range table {
		p := Policy{Project: project, Caps: make(map[types.Category]float64)}
		for token, capHours := range caps {
			category, err := types.ParseCategory(token)
			if err != nil {
				return nil, fmt.Errorf("%w: project %q: %v", ErrInvalidPolicy, project, err)
			}
			p.Caps[category] = capHours
		}
		policies = append(policies, p)
	}
	// Map iteration order is random; sort for deterministic duplicate errors.
	sort.Slice(policies, func(a, b int) bool { return policies[a].Project < policies[b].Project })
	return NewPolicySet(policies...)
}

// DefaultPolicySet returns the shipped SOW table: Lyell caps ETL and
// reporting at 4h/day, DataPlatr bills everything.
func DefaultPolicySet() *PolicySet {
	s, err := NewPolicySet(
		Policy{
			Project: "lyell",
			Caps: map[types.Category]float64{
				types.CategoryETL:       4,
				types.CategoryReporting: 4,
			},
		},
		Policy{Project: "dataplatr"},
	)
	if err != nil {
		// The built-in table is statically valid.
		panic(err)
	}
	return s
}

// Lookup returns the policy for a project. Requesting a project without a
// policy is an explicit failure per the propagation rules.
func (s *PolicySet) Lookup(project string) (Policy, error) {
	p, ok := s.policies[strings.ToLower(strings.TrimSpace(project))]
	if !ok {
		return Policy{}, fmt.Errorf("%w: %q", ErrUnknownProject, project)
	}
	return p, nil
}

// Projects returns the configured project names, sorted.
func (s *PolicySet) Projects() []string {
	out := make([]string, 0, len(s.policies))
	for project := range s.policies {
		out = append(out, project)
	}
	sort.Strings(out)
	return out
}
