// Package sampledata generates realistic roster and work report fixtures
// for local development and demos.
package sampledata

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/okian/workpulse/internal/domain/model"
	"github.com/okian/workpulse/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
)

// Archetype reporting profiles. Rates are the chance an employee submits
// on a given working day; hour bounds feed the time-spent field.
const (
	caseElite        = 0
	caseSteady       = 1
	caseInconsistent = 2
	casePoor         = 3
	caseGhost        = 4
	archetypeCount   = 5

	eliteRate        = 0.95
	steadyRate       = 0.8
	inconsistentRate = 0.6
	poorRate         = 0.35
	ghostRate        = 0.05

	eliteHoursMin   = 7.5
	eliteHoursRange = 2.0
	usualHoursMin   = 4.0
	usualHoursRange = 5.5
)

// Data quality knobs: a slice of rows exercises the degraded paths on
// purpose so the audit counters have something to count.
const (
	sloppyEmailChance    = 0.15
	unknownReporterRate  = 0.03
	badDateChance        = 0.02
	unparseableTimeRate  = 0.05
	bareNumberTimeChance = 0.2
)

var firstNames = []string{
	"Jane", "Bob", "Priya", "Diego", "Mei", "Tunde", "Sara", "Ivan",
	"Leila", "Tom", "Anya", "Noah", "Fatima", "Liam", "Aiko", "Omar",
}

var lastNames = []string{
	"Doe", "Smith", "Patel", "Garcia", "Chen", "Okafor", "Novak",
	"Petrov", "Haddad", "Baker", "Kim", "Schmidt", "Rossi", "Tanaka",
}

var taskTemplates = map[string][]string{
	"etl": {
		"1. ETL pipeline ingest for %s\n2. Data processing cleanup",
		"1. [ETL] Incremental load fixes\n2. Pipeline monitoring",
	},
	"reporting": {
		"1. Weekly report refresh\n2. Dashboard tweaks for %s",
		"1. [Reporting] Analytics export\n2. Visualization polish",
	},
	"development": {
		"1. Development of %s API endpoints\n2. Code review",
		"1. Coding session on ingestion service\n2. Bug fixes",
	},
	"testing": {
		"1. Testing regression suite\n2. QA signoff for %s",
		"1. [QA] Test data setup\n2. Quality assurance triage",
	},
	"other": {
		"1. Weekly sync\n2. Documentation for %s",
		"1. Planning\n2. Stakeholder review",
	},
}

var categoryKeys = []string{"etl", "reporting", "development", "testing", "other"}

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

func randomIndex(n int) int {
	if n <= 0 {
		return 0
	}
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

// Dataset is one generated roster plus its report rows.
type Dataset struct {
	ID      uuid.UUID
	Roster  []model.RosterRow
	Reports []model.WorkReportRow
}

// Generator produces datasets under a fixed shape configuration.
type Generator struct {
	employees int
	days      int
	start     time.Time
	projects  []string
}

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithEmployees sets the roster size.
func WithEmployees(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.employees = n
		}
	}
}

// WithDays sets the number of consecutive working days to cover.
func WithDays(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.days = n
		}
	}
}

// WithStartDate sets the first working day.
func WithStartDate(t time.Time) Option {
	return func(g *Generator) {
		if !t.IsZero() {
			g.start = model.DayOf(t)
		}
	}
}

// WithProjects sets the project names report rows draw from.
func WithProjects(projects []string) Option {
	return func(g *Generator) {
		if len(projects) > 0 {
			g.projects = projects
		}
	}
}

// NewGenerator creates a generator with default shape.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		employees: 12,
		days:      20,
		start:     model.Day(2025, 1, 6),
		projects:  []string{"Lyell", "DataPlatr"},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate builds one dataset. Rows come out in submission order, the way
// a form export would.
func (g *Generator) Generate(ctx context.Context) (Dataset, error) {
	ds := Dataset{ID: uuid.New()}

	type employee struct {
		name      string
		email     string
		archetype int
	}
	people := make([]employee, g.employees)
	for i := range people {
		first := firstNames[i%len(firstNames)]
		last := lastNames[(i/len(firstNames)+i)%len(lastNames)]
		name := first + " " + last
		email := fmt.Sprintf("%s.%s%d@example.com", lower(first), lower(last), i)
		people[i] = employee{name: name, email: email, archetype: i % archetypeCount}
		ds.Roster = append(ds.Roster, model.RosterRow{
			NameEmail:              fmt.Sprintf("%s <%s>", name, email),
			Mobile:                 fmt.Sprintf("555-0%03d", 100+i),
			EmergencyContactNumber: fmt.Sprintf("555-0%03d", 500+i),
			EmergencyContactName:   lastNames[(i+1)%len(lastNames)] + " (family)",
		})
	}

	for day := 0; day < g.days; day++ {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}
		date := g.start.AddDate(0, 0, day)
		for _, p := range people {
			if getRandomFloat() > submissionRate(p.archetype) {
				continue
			}
			ds.Reports = append(ds.Reports, g.reportRow(p.name, p.email, p.archetype, date))
		}
		// The occasional contractor who never made it onto the roster.
		if getRandomFloat() < unknownReporterRate*float64(g.employees) {
			ds.Reports = append(ds.Reports, g.reportRow("Temp Contractor", "contractor@elsewhere.com", caseSteady, date))
		}
	}

	logger.Get().Info(ctx, "generated sample dataset",
		logger.String("id", ds.ID.String()),
		logger.Int("employees", len(ds.Roster)),
		logger.Int("reports", len(ds.Reports)),
	)
	return ds, nil
}

func submissionRate(archetype int) float64 {
	switch archetype {
	case caseElite:
		return eliteRate
	case caseSteady:
		return steadyRate
	case caseInconsistent:
		return inconsistentRate
	case casePoor:
		return poorRate
	default:
		return ghostRate
	}
}

func (g *Generator) reportRow(name, email string, archetype int, date time.Time) model.WorkReportRow {
	project := g.projects[randomIndex(len(g.projects))]
	category := categoryKeys[randomIndex(len(categoryKeys))]
	templates := taskTemplates[category]
	tasks := templates[randomIndex(len(templates))]
	if strings.Contains(tasks, "%s") {
		tasks = fmt.Sprintf(tasks, project)
	}

	reportedEmail := email
	if getRandomFloat() < sloppyEmailChance {
		reportedEmail = " " + upperFirst(email) + " "
	}

	dateText := date.Format("02/01/2006")
	switch {
	case getRandomFloat() < badDateChance:
		dateText = "next monday"
	case getRandomFloat() < 0.3:
		dateText = date.Format("2006-01-02")
	}

	return model.WorkReportRow{
		Timestamp:     date.Format("2006-01-02") + " 18:04:11",
		EmailAddress:  reportedEmail,
		Name:          name,
		Date:          dateText,
		Project:       project,
		TasksText:     tasks,
		TimeSpentText: timeText(archetype),
	}
}

func timeText(archetype int) string {
	r := getRandomFloat()
	var hours float64
	if archetype == caseElite {
		hours = eliteHoursMin + r*eliteHoursRange
	} else {
		hours = usualHoursMin + r*usualHoursRange
	}

	switch {
	case getRandomFloat() < unparseableTimeRate:
		return "full day"
	case getRandomFloat() < bareNumberTimeChance:
		return fmt.Sprintf("%.1f", hours)
	default:
		whole := int(hours)
		minutes := int((hours - float64(whole)) * 60)
		if minutes == 0 {
			return fmt.Sprintf("%d hr", whole)
		}
		return fmt.Sprintf("%d hr %d min", whole, minutes)
	}
}

func lower(s string) string {
	out := []rune(s)
	for i, r := range out {
		if r >= 'A' && r <= 'Z' {
			out[i] = r + ('a' - 'A')
		}
	}
	return string(out)
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	out := []rune(s)
	if out[0] >= 'a' && out[0] <= 'z' {
		out[0] -= 'a' - 'A'
	}
	return string(out)
}
