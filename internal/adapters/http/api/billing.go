// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/okian/workpulse/internal/domain/billing"
	"github.com/okian/workpulse/internal/domain/normalize"
)

// BillingDependencies defines the interface for billing reads.
type BillingDependencies interface {
	BillingSummary(ctx context.Context, project string, from, to time.Time) (billing.Summary, error)
	DailyBillingReport(ctx context.Context, project string, day time.Time) (billing.Summary, error)
	ProjectOverview(ctx context.Context) ([]billing.Summary, error)
	MonthlyInvoice(ctx context.Context, project string, year int, month time.Month) (billing.Invoice, error)
	InvoicePeriods(ctx context.Context, project string) ([]billing.Period, error)
}

// BillingHandler handles billing requests.
type BillingHandler struct {
	deps BillingDependencies
}

// NewBillingHandler creates a new billing handler.
func NewBillingHandler(deps BillingDependencies) *BillingHandler {
	return &BillingHandler{deps: deps}
}

// HandleGetBilling handles GET /billing/{project} requests. Optional
// query parameters: from and to bound the billed period inclusively, and
// date requests a single-day report instead.
func (h *BillingHandler) HandleGetBilling(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	project := pathParam(r.URL.Path, "/billing/")
	if project == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	q := r.URL.Query()
	if raw := q.Get("date"); raw != "" {
		day := normalize.ParseDate(raw)
		if !day.Parsed {
			writeError(w, http.StatusBadRequest, "bad_date", ErrBadRequest)
			return
		}
		sum, err := h.deps.DailyBillingReport(r.Context(), project, day.Date)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sum)
		return
	}

	from, ok := optionalDate(q.Get("from"))
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_date", ErrBadRequest)
		return
	}
	to, ok := optionalDate(q.Get("to"))
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_date", ErrBadRequest)
		return
	}

	sum, err := h.deps.BillingSummary(r.Context(), project, from, to)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// HandleGetOverview handles GET /projects requests.
func (h *BillingHandler) HandleGetOverview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	all, err := h.deps.ProjectOverview(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, all)
}

// HandleGetInvoice handles GET /invoice/{project} requests. With year and
// month query parameters it returns the monthly invoice; without them it
// lists the months that have billable data.
func (h *BillingHandler) HandleGetInvoice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	project := pathParam(r.URL.Path, "/invoice/")
	if project == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	q := r.URL.Query()
	if q.Get("year") == "" && q.Get("month") == "" {
		periods, err := h.deps.InvoicePeriods(r.Context(), project)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, periods)
		return
	}

	year, err := strconv.Atoi(q.Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_year", ErrBadRequest)
		return
	}
	month, err := strconv.Atoi(q.Get("month"))
	if err != nil || month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "bad_month", ErrBadRequest)
		return
	}

	inv, err := h.deps.MonthlyInvoice(r.Context(), project, year, time.Month(month))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

// optionalDate parses a query date, accepting the same formats the ingest
// pipeline does. Empty input yields a zero time and ok.
func optionalDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, true
	}
	res := normalize.ParseDate(raw)
	return res.Date, res.Parsed
}
