package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/workpulse/internal/adapters/http/api"
	service "github.com/okian/workpulse/internal/app"
	"github.com/okian/workpulse/internal/domain/billing"
	"github.com/okian/workpulse/internal/domain/chart"
	"github.com/okian/workpulse/internal/domain/model"
	"github.com/okian/workpulse/internal/domain/perf"
	"github.com/okian/workpulse/internal/domain/team"
	"github.com/okian/workpulse/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

// stubDeps implements api.Dependencies over canned data.
type stubDeps struct {
	refreshed int
}

func (s *stubDeps) Employees(_ context.Context) ([]model.EmployeeIdentity, error) {
	return []model.EmployeeIdentity{
		{PrimaryEmail: "bob@co.com", DisplayName: "Bob Smith"},
		{PrimaryEmail: "jane@co.com", DisplayName: "Jane Doe"},
	}, nil
}

func (s *stubDeps) EmployeeMetrics(_ context.Context, query string) (perf.Metrics, error) {
	if query != "jane@co.com" && query != "bob@co.com" {
		return perf.Metrics{}, fmt.Errorf("%w: %s", service.ErrUnknownEmployee, query)
	}
	return perf.Metrics{Email: query, StatusLabel: "Good", DaysSubmitted: 3}, nil
}

func (s *stubDeps) CompareEmployees(ctx context.Context, queries []string) ([]perf.Metrics, error) {
	out := make([]perf.Metrics, 0, len(queries))
	for _, q := range queries {
		m, err := s.EmployeeMetrics(ctx, q)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *stubDeps) EmployeeSummary(ctx context.Context, query string) (service.EmployeeSummary, error) {
	m, err := s.EmployeeMetrics(ctx, query)
	if err != nil {
		return service.EmployeeSummary{}, err
	}
	return service.EmployeeSummary{
		Identity: model.EmployeeIdentity{PrimaryEmail: m.Email},
		Metrics:  m,
	}, nil
}

func (s *stubDeps) TeamMetrics(_ context.Context) (team.Metrics, error) {
	return team.Metrics{TotalEmployees: 2, TotalWorkingDays: 3}, nil
}

func (s *stubDeps) BillingSummary(_ context.Context, project string, from, to time.Time) (billing.Summary, error) {
	if project != "lyell" {
		return billing.Summary{}, fmt.Errorf("%w: %s", billing.ErrUnknownProject, project)
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return billing.Summary{}, service.ErrInvalidRange
	}
	return billing.Summary{Project: project, TotalHours: 13.5, TotalBillable: 11}, nil
}

func (s *stubDeps) DailyBillingReport(ctx context.Context, project string, day time.Time) (billing.Summary, error) {
	return s.BillingSummary(ctx, project, day, day)
}

func (s *stubDeps) ProjectOverview(_ context.Context) ([]billing.Summary, error) {
	return []billing.Summary{{Project: "dataplatr"}, {Project: "lyell"}}, nil
}

func (s *stubDeps) MonthlyInvoice(_ context.Context, project string, year int, month time.Month) (billing.Invoice, error) {
	if project != "lyell" {
		return billing.Invoice{}, fmt.Errorf("%w: %s", billing.ErrUnknownProject, project)
	}
	return billing.Invoice{Number: "INV-LYELL-2025-01-001", Project: project, Year: year, Month: int(month)}, nil
}

func (s *stubDeps) InvoicePeriods(_ context.Context, project string) ([]billing.Period, error) {
	if project != "lyell" {
		return nil, fmt.Errorf("%w: %s", billing.ErrUnknownProject, project)
	}
	return []billing.Period{{Year: 2025, Month: 1, MonthName: "January"}}, nil
}

func (s *stubDeps) Chart(_ context.Context, kind types.ChartKind, override *chart.Descriptor) (chart.Descriptor, error) {
	if override != nil && chart.Validate(*override) == nil {
		return *override, nil
	}
	return chart.Descriptor{
		ChartType: "bar",
		Title:     kind.String(),
		Labels:    []string{"Good"},
		Datasets:  []chart.Dataset{{Label: "count", Data: []float64{2}}},
	}, nil
}

func (s *stubDeps) Refresh(_ context.Context) error {
	s.refreshed++
	return nil
}

func (s *stubDeps) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": true, "records": 4}
}

func newTestServer() (*httptest.Server, *stubDeps) {
	deps := &stubDeps{}
	mux := http.NewServeMux()
	api.NewServer(deps, deps).Register(context.Background(), mux)
	return httptest.NewServer(mux), deps
}

func getJSON(t *testing.T, url string, into any) int {
	t.Helper()
	resp, err := http.Get(url) //nolint:gosec // test server URL
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if into != nil {
		if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestEmployeeEndpoints(t *testing.T) {
	Convey("Given the API server", t, func() {
		ts, _ := newTestServer()
		defer ts.Close()

		Convey("When listing employees", func() {
			var ids []model.EmployeeIdentity
			code := getJSON(t, ts.URL+"/employees", &ids)

			Convey("Then the roster should come back", func() {
				So(code, ShouldEqual, http.StatusOK)
				So(ids, ShouldHaveLength, 2)
			})
		})

		Convey("When fetching performance for a known employee", func() {
			var m perf.Metrics
			code := getJSON(t, ts.URL+"/performance/jane@co.com", &m)

			Convey("Then metrics should be returned", func() {
				So(code, ShouldEqual, http.StatusOK)
				So(m.Email, ShouldEqual, "jane@co.com")
				So(m.DaysSubmitted, ShouldEqual, 3)
			})
		})

		Convey("When fetching performance for an unknown employee", func() {
			code := getJSON(t, ts.URL+"/performance/nobody@co.com", nil)

			Convey("Then it should 404", func() {
				So(code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When the path parameter is missing", func() {
			code := getJSON(t, ts.URL+"/performance/", nil)

			Convey("Then it should 400", func() {
				So(code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When comparing two employees", func() {
			var all []perf.Metrics
			code := getJSON(t, ts.URL+"/compare?employees=jane@co.com,bob@co.com", &all)

			Convey("Then both metric sets should be returned", func() {
				So(code, ShouldEqual, http.StatusOK)
				So(all, ShouldHaveLength, 2)
			})
		})

		Convey("When comparing fewer than two employees", func() {
			code := getJSON(t, ts.URL+"/compare?employees=jane@co.com", nil)

			Convey("Then it should 400", func() {
				So(code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When fetching a summary", func() {
			var sum service.EmployeeSummary
			code := getJSON(t, ts.URL+"/summary/bob@co.com", &sum)

			Convey("Then the summary should be returned", func() {
				So(code, ShouldEqual, http.StatusOK)
				So(sum.Identity.PrimaryEmail, ShouldEqual, "bob@co.com")
			})
		})
	})
}

func TestTeamAndBillingEndpoints(t *testing.T) {
	Convey("Given the API server", t, func() {
		ts, _ := newTestServer()
		defer ts.Close()

		Convey("When fetching team metrics", func() {
			var tm team.Metrics
			code := getJSON(t, ts.URL+"/team", &tm)

			Convey("Then the aggregate should be returned", func() {
				So(code, ShouldEqual, http.StatusOK)
				So(tm.TotalEmployees, ShouldEqual, 2)
			})
		})

		Convey("When billing a known project", func() {
			var sum billing.Summary
			code := getJSON(t, ts.URL+"/billing/lyell", &sum)

			Convey("Then the summary should be returned", func() {
				So(code, ShouldEqual, http.StatusOK)
				So(sum.Project, ShouldEqual, "lyell")
				So(sum.TotalBillable, ShouldEqual, 11)
			})
		})

		Convey("When billing with a date range", func() {
			code := getJSON(t, ts.URL+"/billing/lyell?from=2025-01-06&to=2025-01-08", nil)

			Convey("Then it should succeed", func() {
				So(code, ShouldEqual, http.StatusOK)
			})
		})

		Convey("When billing a single day", func() {
			code := getJSON(t, ts.URL+"/billing/lyell?date=06/01/2025", nil)

			Convey("Then it should succeed", func() {
				So(code, ShouldEqual, http.StatusOK)
			})
		})

		Convey("When the date cannot be parsed", func() {
			code := getJSON(t, ts.URL+"/billing/lyell?from=tomorrow", nil)

			Convey("Then it should 400", func() {
				So(code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When billing an unknown project", func() {
			code := getJSON(t, ts.URL+"/billing/atlantis", nil)

			Convey("Then it should 404", func() {
				So(code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When fetching the project overview", func() {
			var all []billing.Summary
			code := getJSON(t, ts.URL+"/projects", &all)

			Convey("Then every project should appear", func() {
				So(code, ShouldEqual, http.StatusOK)
				So(all, ShouldHaveLength, 2)
			})
		})

		Convey("When fetching a monthly invoice", func() {
			var inv billing.Invoice
			code := getJSON(t, ts.URL+"/invoice/lyell?year=2025&month=1", &inv)

			Convey("Then the invoice should be returned", func() {
				So(code, ShouldEqual, http.StatusOK)
				So(inv.Number, ShouldEqual, "INV-LYELL-2025-01-001")
				So(inv.Month, ShouldEqual, 1)
			})
		})

		Convey("When listing invoice periods", func() {
			var periods []billing.Period
			code := getJSON(t, ts.URL+"/invoice/lyell", &periods)

			Convey("Then the available months should be returned", func() {
				So(code, ShouldEqual, http.StatusOK)
				So(periods, ShouldHaveLength, 1)
				So(periods[0].MonthName, ShouldEqual, "January")
			})
		})

		Convey("When the invoice month is out of range", func() {
			code := getJSON(t, ts.URL+"/invoice/lyell?year=2025&month=13", nil)

			Convey("Then it should 400", func() {
				So(code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the invoice year is not a number", func() {
			code := getJSON(t, ts.URL+"/invoice/lyell?year=twenty&month=1", nil)

			Convey("Then it should 400", func() {
				So(code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When invoicing an unknown project", func() {
			code := getJSON(t, ts.URL+"/invoice/atlantis?year=2025&month=1", nil)

			Convey("Then it should 404", func() {
				So(code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestChartAndRefreshEndpoints(t *testing.T) {
	Convey("Given the API server", t, func() {
		ts, deps := newTestServer()
		defer ts.Close()

		Convey("When fetching a chart", func() {
			var d chart.Descriptor
			code := getJSON(t, ts.URL+"/chart/status_distribution", &d)

			Convey("Then a valid descriptor should be returned", func() {
				So(code, ShouldEqual, http.StatusOK)
				So(chart.Validate(d), ShouldBeNil)
			})
		})

		Convey("When requesting an unknown chart kind", func() {
			code := getJSON(t, ts.URL+"/chart/sparkline", nil)

			Convey("Then it should 404", func() {
				So(code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When posting an invalid override", func() {
			body, _ := json.Marshal(chart.Descriptor{ChartType: "none"})
			resp, err := http.Post(ts.URL+"/chart/status_distribution", "application/json", bytes.NewReader(body))
			So(err, ShouldBeNil)
			defer func() { _ = resp.Body.Close() }()

			var d chart.Descriptor
			So(json.NewDecoder(resp.Body).Decode(&d), ShouldBeNil)

			Convey("Then the local chart should be returned instead", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(d.ChartType, ShouldEqual, "bar")
			})
		})

		Convey("When posting a body that is not JSON", func() {
			resp, err := http.Post(ts.URL+"/chart/status_distribution", "application/json", bytes.NewReader([]byte("{not json")))
			So(err, ShouldBeNil)
			defer func() { _ = resp.Body.Close() }()

			var d chart.Descriptor
			So(json.NewDecoder(resp.Body).Decode(&d), ShouldBeNil)

			Convey("Then the local chart should be returned, not an error", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(d.ChartType, ShouldEqual, "bar")
			})
		})

		Convey("When refreshing", func() {
			resp, err := http.Post(ts.URL+"/refresh", "application/json", nil)
			So(err, ShouldBeNil)
			_ = resp.Body.Close()

			Convey("Then the snapshot should be rebuilt", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(deps.refreshed, ShouldEqual, 1)
			})
		})

		Convey("When refreshing with GET", func() {
			code := getJSON(t, ts.URL+"/refresh", nil)

			Convey("Then it should not be routed", func() {
				So(code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When fetching stats", func() {
			var stats map[string]interface{}
			code := getJSON(t, ts.URL+"/stats", &stats)

			Convey("Then service stats should be returned", func() {
				So(code, ShouldEqual, http.StatusOK)
				So(stats["started"], ShouldBeTrue)
			})
		})
	})
}
