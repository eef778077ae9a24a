// Package chart maps engine outputs into renderer-ready chart descriptors.
//
// The builder is the deterministic fallback path: whatever the narrative
// layer returns, a structurally valid descriptor always exists locally, so a
// downstream renderer never sees a malformed payload.
package chart

import (
	"fmt"
	"sort"
	"strings"

	"github.com/okian/workpulse/internal/domain/billing"
	"github.com/okian/workpulse/internal/domain/perf"
	"github.com/okian/workpulse/internal/domain/team"
	"github.com/okian/workpulse/internal/domain/types"
)

// Renderer chart type tokens understood by the front end.
const (
	TypeBar           = "bar"
	TypeHorizontalBar = "horizontalBar"
	TypeLine          = "line"
	TypePie           = "pie"
	TypeDoughnut      = "doughnut"
)

// palette cycles through the renderer's house colors.
var palette = []string{"#36A2EB", "#4BC0C0", "#FFCE56", "#FF9F40", "#FF6384", "#9966FF"}

// Dataset is one series within a descriptor.
type Dataset struct {
	Label           string    `json:"label"`
	Data            []float64 `json:"data"`
	BackgroundColor []string  `json:"backgroundColor,omitempty"`
	BorderColor     string    `json:"borderColor,omitempty"`
	Fill            bool      `json:"fill,omitempty"`
}

// Descriptor is the chart-data contract consumed by the renderer. NoChart
// marks the explicit "nothing to draw" case; when it is false, Labels and
// Datasets are non-empty.
type Descriptor struct {
	Kind      types.ChartKind   `json:"-"`
	ChartType string            `json:"chartType"`
	Title     string            `json:"chartTitle"`
	Labels    []string          `json:"labels"`
	Datasets  []Dataset         `json:"datasets"`
	Options   map[string]string `json:"options"`
	NoChart   bool              `json:"no_chart"`
}

// Builder constructs descriptors from engine outputs.
type Builder struct {
	topN int
}

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithTopN bounds ranking charts to the n best entries.
func WithTopN(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.topN = n
		}
	}
}

const defaultTopN = 10

// NewBuilder creates a chart builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{topN: defaultTopN}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Inputs bundles the engine outputs a chart can draw from. Unused fields
// may be left zero; the builder only reads what the kind needs.
type Inputs struct {
	Team        team.Metrics
	Individuals []perf.Metrics
	Billing     []billing.Summary
}

// Resolve prefers an externally supplied descriptor when it passes
// structural validation, and otherwise falls back to the deterministic
// builder. The external layer is an overlay, never a dependency: the local
// result exists regardless of what the override looks like.
func (b *Builder) Resolve(override *Descriptor, kind types.ChartKind, in Inputs) Descriptor {
	if override != nil && Validate(*override) == nil {
		return *override
	}
	return b.Build(kind, in)
}

// Validate checks the structural contract an external descriptor must meet
// before it may replace the built-in one.
func Validate(d Descriptor) error {
	switch {
	case strings.TrimSpace(d.ChartType) == "":
		return fmt.Errorf("%w: missing chartType", ErrInvalidDescriptor)
	case d.ChartType == "none":
		return fmt.Errorf("%w: chartType none", ErrInvalidDescriptor)
	case len(d.Labels) == 0:
		return fmt.Errorf("%w: empty labels", ErrInvalidDescriptor)
	case len(d.Datasets) == 0:
		return fmt.Errorf("%w: empty datasets", ErrInvalidDescriptor)
	}
	for _, ds := range d.Datasets {
		if len(ds.Data) == 0 {
			return fmt.Errorf("%w: dataset %q has no data", ErrInvalidDescriptor, ds.Label)
		}
	}
	return nil
}

// Build produces the deterministic descriptor for a chart kind. Empty
// inputs yield the explicit NoChart marker rather than a malformed payload.
func (b *Builder) Build(kind types.ChartKind, in Inputs) Descriptor {
	var d Descriptor
	switch kind {
	case types.ChartStatusDistribution:
		d = b.statusDistribution(in.Team)
	case types.ChartTopByRate:
		d = b.topByRate(in.Individuals)
	case types.ChartTopByHours:
		d = b.topByHours(in.Individuals)
	case types.ChartCategoryBreakdown:
		d = b.categoryBreakdown(in.Billing)
	case types.ChartProjectDistribution:
		d = b.projectDistribution(in.Individuals)
	case types.ChartDailyProjectHours:
		d = b.dailyProjectHours(in.Billing)
	case types.ChartBillingEfficiency:
		d = b.billingEfficiency(in.Billing)
	default:
		return noChart(kind)
	}
	d.Kind = kind
	if d.Options == nil {
		d.Options = map[string]string{}
	}
	return d
}

func noChart(kind types.ChartKind) Descriptor {
	return Descriptor{
		Kind:      kind,
		ChartType: "none",
		Title:     "No data available",
		Labels:    []string{},
		Datasets:  []Dataset{},
		Options:   map[string]string{},
		NoChart:   true,
	}
}

func (b *Builder) statusDistribution(tm team.Metrics) Descriptor {
	if len(tm.StatusDistribution) == 0 {
		return noChart(types.ChartStatusDistribution)
	}
	var labels []string
	var data []float64
	for _, status := range types.AllStatuses() {
		if count, ok := tm.StatusDistribution[status.String()]; ok {
			labels = append(labels, status.String())
			data = append(data, float64(count))
		}
	}
	return Descriptor{
		ChartType: TypeDoughnut,
		Title:     "Reporting Status Distribution",
		Labels:    labels,
		Datasets: []Dataset{{
			Label:           "Employees",
			Data:            data,
			BackgroundColor: colors(len(data)),
		}},
	}
}

func (b *Builder) topByRate(individuals []perf.Metrics) Descriptor {
	if len(individuals) == 0 {
		return noChart(types.ChartTopByRate)
	}
	sorted := make([]perf.Metrics, len(individuals))
	copy(sorted, individuals)
	sort.Slice(sorted, func(a, b int) bool {
		if sorted[a].SubmissionRate != sorted[b].SubmissionRate {
			return sorted[a].SubmissionRate > sorted[b].SubmissionRate
		}
		return sorted[a].Name < sorted[b].Name
	})
	sorted = sorted[:minInt(b.topN, len(sorted))]

	labels := make([]string, 0, len(sorted))
	data := make([]float64, 0, len(sorted))
	for _, im := range sorted {
		labels = append(labels, im.Name)
		data = append(data, im.SubmissionRate*100)
	}
	return Descriptor{
		ChartType: TypeHorizontalBar,
		Title:     "Top Submitters by Submission Rate",
		Labels:    labels,
		Datasets: []Dataset{{
			Label:           "Submission Rate (%)",
			Data:            data,
			BackgroundColor: colors(len(data)),
		}},
		Options: map[string]string{"xAxisLabel": "Rate (%)", "yAxisLabel": "Employees"},
	}
}

func (b *Builder) topByHours(individuals []perf.Metrics) Descriptor {
	var withHours []perf.Metrics
	for _, im := range individuals {
		if im.AvgDailyHours > 0 {
			withHours = append(withHours, im)
		}
	}
	if len(withHours) == 0 {
		return noChart(types.ChartTopByHours)
	}
	sort.Slice(withHours, func(a, b int) bool {
		if withHours[a].AvgDailyHours != withHours[b].AvgDailyHours {
			return withHours[a].AvgDailyHours > withHours[b].AvgDailyHours
		}
		return withHours[a].Name < withHours[b].Name
	})
	withHours = withHours[:minInt(b.topN, len(withHours))]

	labels := make([]string, 0, len(withHours))
	data := make([]float64, 0, len(withHours))
	for _, im := range withHours {
		labels = append(labels, im.Name)
		data = append(data, im.AvgDailyHours)
	}
	return Descriptor{
		ChartType: TypeHorizontalBar,
		Title:     "Top Employees by Average Daily Hours",
		Labels:    labels,
		Datasets: []Dataset{{
			Label:           "Avg Daily Hours",
			Data:            data,
			BackgroundColor: colors(len(data)),
		}},
		Options: map[string]string{"xAxisLabel": "Hours", "yAxisLabel": "Employees"},
	}
}

func (b *Builder) categoryBreakdown(summaries []billing.Summary) Descriptor {
	totals := make(map[types.Category]float64)
	for _, s := range summaries {
		for category, ct := range s.CategoryBreakdown {
			totals[category] += ct.ActualHours
		}
	}
	if len(totals) == 0 {
		return noChart(types.ChartCategoryBreakdown)
	}
	var labels []string
	var data []float64
	for _, category := range types.AllCategories() {
		if hours, ok := totals[category]; ok {
			labels = append(labels, category.String())
			data = append(data, hours)
		}
	}
	return Descriptor{
		ChartType: TypePie,
		Title:     "Hours by Work Category",
		Labels:    labels,
		Datasets: []Dataset{{
			Label:           "Hours",
			Data:            data,
			BackgroundColor: colors(len(data)),
		}},
	}
}

func (b *Builder) projectDistribution(individuals []perf.Metrics) Descriptor {
	totals := make(map[string]float64)
	for _, im := range individuals {
		for project, share := range im.ProjectDistribution {
			totals[project] += share.Hours
		}
	}
	if len(totals) == 0 {
		return noChart(types.ChartProjectDistribution)
	}
	projects := make([]string, 0, len(totals))
	for project := range totals {
		projects = append(projects, project)
	}
	sort.Strings(projects)

	data := make([]float64, 0, len(projects))
	for _, project := range projects {
		data = append(data, totals[project])
	}
	return Descriptor{
		ChartType: TypeDoughnut,
		Title:     "Team Hours by Project",
		Labels:    projects,
		Datasets: []Dataset{{
			Label:           "Hours",
			Data:            data,
			BackgroundColor: colors(len(data)),
		}},
	}
}

func (b *Builder) dailyProjectHours(summaries []billing.Summary) Descriptor {
	daySet := make(map[string]struct{})
	perProject := make(map[string]map[string]float64)
	for _, s := range summaries {
		for _, day := range s.Days {
			key := day.Date.Format("2006-01-02")
			daySet[key] = struct{}{}
			if perProject[s.Project] == nil {
				perProject[s.Project] = make(map[string]float64)
			}
			perProject[s.Project][key] += day.ActualHours
		}
	}
	if len(daySet) == 0 {
		return noChart(types.ChartDailyProjectHours)
	}

	days := make([]string, 0, len(daySet))
	for day := range daySet {
		days = append(days, day)
	}
	sort.Strings(days)

	projects := make([]string, 0, len(perProject))
	for project := range perProject {
		projects = append(projects, project)
	}
	sort.Strings(projects)

	datasets := make([]Dataset, 0, len(projects))
	for i, project := range projects {
		data := make([]float64, 0, len(days))
		for _, day := range days {
			data = append(data, perProject[project][day])
		}
		datasets = append(datasets, Dataset{
			Label:       project,
			Data:        data,
			BorderColor: palette[i%len(palette)],
			Fill:        false,
		})
	}
	return Descriptor{
		ChartType: TypeLine,
		Title:     "Daily Hours by Project",
		Labels:    days,
		Datasets:  datasets,
		Options:   map[string]string{"xAxisLabel": "Date", "yAxisLabel": "Hours"},
	}
}

func (b *Builder) billingEfficiency(summaries []billing.Summary) Descriptor {
	var labels []string
	var data []float64
	for _, s := range summaries {
		for _, emp := range s.Employees {
			labels = append(labels, fmt.Sprintf("%s (%s)", emp.EmployeeRef, s.Project))
			data = append(data, emp.EfficiencyPct)
		}
	}
	if len(labels) == 0 {
		return noChart(types.ChartBillingEfficiency)
	}
	return Descriptor{
		ChartType: TypeBar,
		Title:     "Billing Efficiency by Employee",
		Labels:    labels,
		Datasets: []Dataset{{
			Label:           "Efficiency (%)",
			Data:            data,
			BackgroundColor: colors(len(data)),
		}},
		Options: map[string]string{"xAxisLabel": "Employee", "yAxisLabel": "Billable %"},
	}
}

func colors(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = palette[i%len(palette)]
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
