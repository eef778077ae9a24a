// Package types contains closed enumerations shared across the application.
package types

import (
	"fmt"
	"strings"
)

// Status is the discrete performance classification for an employee.
type Status int

// Status values, ordered from worst to best.
const (
	StatusNonReporter Status = iota
	StatusVeryPoor
	StatusPoor
	StatusInconsistent
	StatusGood
	StatusExcellent
)

var statusNames = map[Status]string{
	StatusNonReporter:  "Non-Reporter",
	StatusVeryPoor:     "Very Poor",
	StatusPoor:         "Poor",
	StatusInconsistent: "Inconsistent",
	StatusGood:         "Good",
	StatusExcellent:    "Excellent",
}

// String returns the display label for the status.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// AllStatuses returns every valid status in worst-to-best order.
func AllStatuses() []Status {
	return []Status{
		StatusNonReporter,
		StatusVeryPoor,
		StatusPoor,
		StatusInconsistent,
		StatusGood,
		StatusExcellent,
	}
}

// ParseStatus converts a display label back into a Status.
func ParseStatus(s string) (Status, error) {
	for status, name := range statusNames {
		if strings.EqualFold(name, s) {
			return status, nil
		}
	}
	return 0, fmt.Errorf("unknown status: %q", s)
}

// Category is the work category a report row bills under.
type Category int

// Category values. CategoryOther is the fallback for unrecognized task text.
const (
	CategoryETL Category = iota
	CategoryReporting
	CategoryDevelopment
	CategoryTesting
	CategoryArchitect
	CategoryOther
)

var categoryNames = map[Category]string{
	CategoryETL:         "etl",
	CategoryReporting:   "reporting",
	CategoryDevelopment: "development",
	CategoryTesting:     "testing",
	CategoryArchitect:   "architect",
	CategoryOther:       "other",
}

// String returns the lowercase billing token for the category.
func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// AllCategories returns every valid category.
func AllCategories() []Category {
	return []Category{
		CategoryETL,
		CategoryReporting,
		CategoryDevelopment,
		CategoryTesting,
		CategoryArchitect,
		CategoryOther,
	}
}

// ParseCategory converts a billing token into a Category.
func ParseCategory(s string) (Category, error) {
	for category, name := range categoryNames {
		if strings.EqualFold(name, s) {
			return category, nil
		}
	}
	return 0, fmt.Errorf("unknown category: %q", s)
}

// ChartKind identifies one of the fixed chart layouts the builder can emit.
type ChartKind int

// ChartKind values.
const (
	ChartStatusDistribution ChartKind = iota
	ChartTopByRate
	ChartTopByHours
	ChartCategoryBreakdown
	ChartProjectDistribution
	ChartDailyProjectHours
	ChartBillingEfficiency
)

var chartKindNames = map[ChartKind]string{
	ChartStatusDistribution:  "status_distribution",
	ChartTopByRate:           "top_by_rate",
	ChartTopByHours:          "top_by_hours",
	ChartCategoryBreakdown:   "category_breakdown",
	ChartProjectDistribution: "project_distribution",
	ChartDailyProjectHours:   "daily_project_hours",
	ChartBillingEfficiency:   "billing_efficiency",
}

// String returns the wire token for the chart kind.
func (k ChartKind) String() string {
	if name, ok := chartKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ChartKind(%d)", int(k))
}

// AllChartKinds returns every valid chart kind.
func AllChartKinds() []ChartKind {
	return []ChartKind{
		ChartStatusDistribution,
		ChartTopByRate,
		ChartTopByHours,
		ChartCategoryBreakdown,
		ChartProjectDistribution,
		ChartDailyProjectHours,
		ChartBillingEfficiency,
	}
}

// ParseChartKind converts a wire token into a ChartKind.
func ParseChartKind(s string) (ChartKind, error) {
	for kind, name := range chartKindNames {
		if strings.EqualFold(name, s) {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown chart kind: %q", s)
}
