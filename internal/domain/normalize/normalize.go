// Package normalize converts free-text report fields into typed values.
//
// Every parser returns a tagged result instead of silently coercing: callers
// see whether the original text was actually understood, and fall back to the
// documented defaults (zero hours, zero tasks) when it was not.
package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/okian/workpulse/internal/domain/model"
	"github.com/okian/workpulse/internal/domain/types"
)

// UnclassifiedProject is the project token assigned when a report row
// carries no recognizable project tag.
const UnclassifiedProject = "unclassified"

const minutesPerHour = 60

// HoursResult is the tagged outcome of parsing a time-spent field.
type HoursResult struct {
	Hours  float64
	Parsed bool
	Raw    string
}

// TasksResult is the tagged outcome of counting a tasks-completed field.
type TasksResult struct {
	Count  int
	Parsed bool
	Raw    string
}

// DateResult is the tagged outcome of parsing a date field.
type DateResult struct {
	Date   time.Time
	Parsed bool
	Raw    string
}

var (
	hourPattern     = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:hrs|hours|hour|hr|h)`)
	minutePattern   = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:mins|minutes|minute|min|m)`)
	combinedPattern = regexp.MustCompile(`(\d+)\s*(?:hrs?|hours?|h)\s*(\d+)?\s*(?:mins?|minutes?|m)?`)
	numberPattern   = regexp.MustCompile(`\b\d+(?:\.\d+)?\b`)
	numberedLine    = regexp.MustCompile(`^\d+\.`)
	bracketTag      = regexp.MustCompile(`\[([^\]]+)\]`)
)

// dateLayouts are tried in order; the first exact match wins. Day-first
// formats come before month-first ones, matching how the source data is
// predominantly entered.
var dateLayouts = []string{
	"02/01/2006",
	"01/02/2006",
	"2006-01-02",
	"02-01-2006",
	"01-02-2006",
}

// ParseHours extracts a non-negative hour total from free text such as
// "4 hrs 30 mins", "2.5h" or a bare "6". An explicit zero still counts as
// parsed; only text with no recognizable duration yields an unparsed
// result.
func ParseHours(raw string) HoursResult {
	text := strings.ToLower(strings.TrimSpace(raw))
	if text == "" {
		return HoursResult{Raw: raw}
	}

	var total float64
	parsed := false
	for _, m := range hourPattern.FindAllStringSubmatch(text, -1) {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		total += v
		parsed = true
	}
	for _, m := range minutePattern.FindAllStringSubmatch(text, -1) {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		total += v / minutesPerHour
		parsed = true
	}

	// Marker-free entries like "4 30" fall through to the combined shape.
	if !parsed {
		if m := combinedPattern.FindStringSubmatch(text); m != nil {
			hours, _ := strconv.ParseFloat(m[1], 64)
			var mins float64
			if m[2] != "" {
				mins, _ = strconv.ParseFloat(m[2], 64)
			}
			total = hours + mins/minutesPerHour
			parsed = true
		}
	}

	// Last resort: treat the first bare number as hours.
	if !parsed {
		if m := numberPattern.FindString(text); m != "" {
			total, _ = strconv.ParseFloat(m, 64)
			parsed = true
		}
	}

	if !parsed {
		return HoursResult{Raw: raw}
	}
	return HoursResult{Hours: round2(total), Parsed: true, Raw: raw}
}

// CountTasks estimates how many tasks a tasks-completed field describes.
// Numbered lists are counted exactly; otherwise each non-empty line counts
// once, with long comma-separated lines counted per clause. Any non-empty
// text counts as at least one task.
func CountTasks(raw string) TasksResult {
	text := strings.TrimSpace(raw)
	if text == "" {
		return TasksResult{Raw: raw}
	}

	lines := strings.Split(text, "\n")
	numbered := 0
	for _, line := range lines {
		if numberedLine.MatchString(strings.TrimSpace(line)) {
			numbered++
		}
	}
	if numbered > 0 {
		return TasksResult{Count: numbered, Parsed: true, Raw: raw}
	}

	const commaClauseMinLen = 20
	count := 0
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "-") || strings.HasPrefix(line, ":") {
			continue
		}
		commas := strings.Count(line, ",")
		if commas > 0 && len(line) > commaClauseMinLen {
			count += commas + 1
		} else {
			count++
		}
	}
	if count < 1 {
		count = 1
	}
	return TasksResult{Count: count, Parsed: true, Raw: raw}
}

// ParseDate parses a calendar date from the formats the report form has
// produced over time. The result is truncated to a UTC calendar day.
func ParseDate(raw string) DateResult {
	text := strings.TrimSpace(raw)
	if text == "" {
		return DateResult{Raw: raw}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return DateResult{Date: model.DayOf(t), Parsed: true, Raw: raw}
		}
	}
	return DateResult{Raw: raw}
}

// ProjectNormalizer maps raw project tags to canonical lowercase tokens.
type ProjectNormalizer struct {
	aliases map[string][]string
}

// ProjectOption applies a configuration option to the ProjectNormalizer.
type ProjectOption func(*ProjectNormalizer)

// WithProjectAliases replaces the canonical-token alias table.
func WithProjectAliases(aliases map[string][]string) ProjectOption {
	return func(n *ProjectNormalizer) {
		if len(aliases) > 0 {
			n.aliases = aliases
		}
	}
}

// NewProjectNormalizer creates a normalizer with the default alias table.
func NewProjectNormalizer(opts ...ProjectOption) *ProjectNormalizer {
	n := &ProjectNormalizer{
		aliases: map[string][]string{
			"lyell":     {"lyell"},
			"dataplatr": {"dataplatr", "datapltr", "data platr"},
		},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize lowercases and trims the raw tag, collapses known aliases to
// their canonical token, and falls back to UnclassifiedProject for empty
// input. Unknown but non-empty tags pass through lowercased.
func (n *ProjectNormalizer) Normalize(raw string) string {
	name := strings.ToLower(strings.TrimSpace(raw))
	if name == "" {
		return UnclassifiedProject
	}
	for canonical, aliases := range n.aliases {
		for _, alias := range aliases {
			if strings.Contains(name, alias) {
				return canonical
			}
		}
	}
	return name
}

// categoryKeywords are evaluated in order; the first category with a
// matching keyword wins, so more specific tokens sit before generic ones.
var categoryKeywords = []struct {
	category types.Category
	patterns []*regexp.Regexp
}{
	{types.CategoryETL, compileAll(`\[etl\]`, `etl`, `data pipeline`, `data processing`)},
	{types.CategoryReporting, compileAll(`\[report[^\]]*\]`, `report`, `dashboard`, `analytics`, `visualization`)},
	{types.CategoryDevelopment, compileAll(`\[development\]`, `development`, `\bdev\b`, `coding`, `programming`)},
	{types.CategoryTesting, compileAll(`\[testing\]`, `\[qa\]`, `testing`, `\bqa\b`, `quality assurance`)},
	{types.CategoryArchitect, compileAll(`architect`, `\bdesign\b`, `planning`, `strategy`)},
}

func compileAll(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(p))
	}
	return compiled
}

// ExtractCategory derives the billing category from raw task text using
// keyword heuristics, then bracket tags like "[ETL] pipeline rework".
// Text matching nothing lands in CategoryOther.
func ExtractCategory(taskText string) types.Category {
	text := strings.ToLower(taskText)
	if strings.TrimSpace(text) == "" {
		return types.CategoryOther
	}

	for _, entry := range categoryKeywords {
		for _, p := range entry.patterns {
			if p.MatchString(text) {
				return entry.category
			}
		}
	}

	if m := bracketTag.FindStringSubmatch(text); m != nil {
		tag := strings.ToLower(m[1])
		switch {
		case strings.Contains(tag, "etl"):
			return types.CategoryETL
		case strings.Contains(tag, "dev"):
			return types.CategoryDevelopment
		case strings.Contains(tag, "test"), strings.Contains(tag, "qa"):
			return types.CategoryTesting
		case strings.Contains(tag, "report"):
			return types.CategoryReporting
		case strings.Contains(tag, "architect"):
			return types.CategoryArchitect
		}
	}

	return types.CategoryOther
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
