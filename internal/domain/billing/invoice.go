package billing

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/okian/workpulse/internal/domain/model"
)

// DefaultHourlyRate is the shipped billing rate in currency units per hour.
const DefaultHourlyRate = 75.0

// InvoiceStatusGenerated marks a freshly built invoice that has not been
// sent or reconciled yet.
const InvoiceStatusGenerated = "generated"

// InvoiceLine is one employee's row on a monthly invoice.
type InvoiceLine struct {
	EmployeeRef   string  `json:"employee_ref"`
	TotalHours    float64 `json:"total_hours"`
	BillableHours float64 `json:"billable_hours"`
	ExtraHours    float64 `json:"extra_hours"`
	DaysWorked    int     `json:"days_worked"`
	EfficiencyPct float64 `json:"billing_efficiency"`
	Amount        float64 `json:"billable_amount"`
}

// InvoiceCategoryLine is one category's row on a monthly invoice.
type InvoiceCategoryLine struct {
	Category      string   `json:"category"`
	TotalHours    float64  `json:"total_hours"`
	BillableHours float64  `json:"billable_hours"`
	ExtraHours    float64  `json:"extra_hours"`
	CapHours      *float64 `json:"cap_hours,omitempty"`
	Amount        float64  `json:"billable_amount"`
}

// Invoice is the structured monthly invoice for one project. It is a pure
// projection of the billing summary for the calendar month plus the hourly
// rate; rendering and delivery are left to external collaborators.
type Invoice struct {
	Number           string                `json:"invoice_number"`
	Project          string                `json:"project"`
	Year             int                   `json:"year"`
	Month            int                   `json:"month"`
	MonthName        string                `json:"month_name"`
	PeriodStart      time.Time             `json:"period_start"`
	PeriodEnd        time.Time             `json:"period_end"`
	GeneratedAt      time.Time             `json:"generated_at"`
	HourlyRate       float64               `json:"hourly_rate"`
	TotalHours       float64               `json:"total_hours"`
	TotalBillable    float64               `json:"total_billable_hours"`
	TotalExtra       float64               `json:"total_extra_hours"`
	TotalAmount      float64               `json:"total_billable_amount"`
	TotalEmployees   int                   `json:"total_employees"`
	DaysWorked       int                   `json:"total_days_worked"`
	Employees        []InvoiceLine         `json:"employee_breakdown"`
	Categories       []InvoiceCategoryLine `json:"category_breakdown"`
	HasSOWViolations bool                  `json:"has_sow_violations"`
	RulesApplied     map[string]string     `json:"rules_applied"`
	Status           string                `json:"status"`
}

// Period identifies one calendar month that carries billable data.
type Period struct {
	Year      int    `json:"year"`
	Month     int    `json:"month"`
	MonthName string `json:"month_name"`
}

// invoiceNumber renders the invoice identifier, e.g. INV-LYELL-2025-01-001.
// One invoice is issued per project per month, so the sequence is fixed.
func invoiceNumber(project string, year int, month time.Month) string {
	return fmt.Sprintf("INV-%s-%d-%02d-001", strings.ToUpper(project), year, int(month))
}

// MonthlyInvoice builds the invoice for one project's calendar month at the
// given hourly rate. The underlying figures come from Bill, so SOW caps are
// already applied; extra hours appear on the invoice but never in amounts.
func (e *Engine) MonthlyInvoice(project string, records []model.WorkRecord, year int, month time.Month, rate float64) (Invoice, error) {
	if rate <= 0 {
		return Invoice{}, fmt.Errorf("%w: %.2f", ErrInvalidRate, rate)
	}
	policy, err := e.policies.Lookup(project)
	if err != nil {
		return Invoice{}, err
	}

	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	s, err := e.Bill(project, records, start, end)
	if err != nil {
		return Invoice{}, err
	}

	inv := Invoice{
		Number:           invoiceNumber(policy.Project, year, month),
		Project:          policy.Project,
		Year:             year,
		Month:            int(month),
		MonthName:        month.String(),
		PeriodStart:      start,
		PeriodEnd:        end,
		GeneratedAt:      time.Now().UTC(),
		HourlyRate:       rate,
		TotalHours:       s.TotalHours,
		TotalBillable:    s.TotalBillable,
		TotalExtra:       s.TotalExtra,
		TotalAmount:      round2(s.TotalBillable * rate),
		TotalEmployees:   len(s.Employees),
		DaysWorked:       s.TotalDays,
		HasSOWViolations: s.HasSOWViolations,
		RulesApplied:     s.RulesApplied,
		Status:           InvoiceStatusGenerated,
	}

	daysWorked := make(map[string]map[time.Time]struct{})
	for _, r := range s.Records {
		days, ok := daysWorked[r.EmployeeRef]
		if !ok {
			days = make(map[time.Time]struct{})
			daysWorked[r.EmployeeRef] = days
		}
		days[r.Date] = struct{}{}
	}
	for _, roll := range s.Employees {
		inv.Employees = append(inv.Employees, InvoiceLine{
			EmployeeRef:   roll.EmployeeRef,
			TotalHours:    roll.TotalHours,
			BillableHours: roll.BillableHours,
			ExtraHours:    roll.ExtraHours,
			DaysWorked:    len(daysWorked[roll.EmployeeRef]),
			EfficiencyPct: roll.EfficiencyPct,
			Amount:        round2(roll.BillableHours * rate),
		})
	}
	// Heaviest contributors first, the order the invoice is read in.
	sort.Slice(inv.Employees, func(a, b int) bool {
		la, lb := inv.Employees[a], inv.Employees[b]
		if la.TotalHours != lb.TotalHours {
			return la.TotalHours > lb.TotalHours
		}
		return la.EmployeeRef < lb.EmployeeRef
	})

	for category, totals := range s.CategoryBreakdown {
		line := InvoiceCategoryLine{
			Category:      category.String(),
			TotalHours:    round2(totals.ActualHours),
			BillableHours: round2(totals.BillableHours),
			ExtraHours:    round2(totals.ExtraHours),
			Amount:        round2(totals.BillableHours * rate),
		}
		if capHours, ok := policy.CapFor(category); ok {
			line.CapHours = &capHours
		}
		inv.Categories = append(inv.Categories, line)
	}
	sort.Slice(inv.Categories, func(a, b int) bool {
		la, lb := inv.Categories[a], inv.Categories[b]
		if la.TotalHours != lb.TotalHours {
			return la.TotalHours > lb.TotalHours
		}
		return la.Category < lb.Category
	})

	return inv, nil
}

// InvoicePeriods lists the months with billable data for a project, newest
// first.
func (e *Engine) InvoicePeriods(project string, records []model.WorkRecord) ([]Period, error) {
	policy, err := e.policies.Lookup(project)
	if err != nil {
		return nil, err
	}

	seen := make(map[Period]struct{})
	for _, r := range records {
		if r.Project != policy.Project || r.Hours <= 0 {
			continue
		}
		month := r.Date.Month()
		seen[Period{Year: r.Date.Year(), Month: int(month), MonthName: month.String()}] = struct{}{}
	}
	out := make([]Period, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Year != out[b].Year {
			return out[a].Year > out[b].Year
		}
		return out[a].Month > out[b].Month
	})
	return out, nil
}
