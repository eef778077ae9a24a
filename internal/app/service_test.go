package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/workpulse/internal/adapters/source"
	service "github.com/okian/workpulse/internal/app"
	"github.com/okian/workpulse/internal/domain/billing"
	"github.com/okian/workpulse/internal/domain/chart"
	"github.com/okian/workpulse/internal/domain/model"
	"github.com/okian/workpulse/internal/domain/types"
	"github.com/okian/workpulse/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func testRoster() source.StaticRoster {
	return source.StaticRoster{
		{NameEmail: "Jane Doe <jane@co.com>", Mobile: "555-0101"},
		{NameEmail: "Bob Smith <bob@co.com>", Mobile: "555-0201"},
	}
}

func testReports() source.StaticReports {
	return source.StaticReports{
		// Jane reports all three days on Lyell; 6h of ETL on day one
		// exceeds the 4h/day SOW cap.
		{EmailAddress: " Jane@Co.com ", Name: "Jane Doe", Date: "06/01/2025", Project: "Lyell",
			TasksText: "1. ETL pipeline ingest\n2. ETL cleanup", TimeSpentText: "6 hr"},
		{EmailAddress: "jane@co.com", Name: "Jane Doe", Date: "07/01/2025", Project: "Lyell",
			TasksText: "1. ETL ingest", TimeSpentText: "4 hr 30 min"},
		{EmailAddress: "jane@co.com", Name: "Jane Doe", Date: "08/01/2025", Project: "Lyell",
			TasksText: "1. Data pipeline maintenance", TimeSpentText: "3 hr"},
		// Bob reports once, on DataPlatr, uncapped.
		{EmailAddress: "bob@co.com", Name: "Bob Smith", Date: "06/01/2025", Project: "DataPlatr",
			TasksText: "1. Data modeling", TimeSpentText: "12 hr"},
	}
}

func startTestService(t *testing.T, opts ...service.Option) *service.Service {
	t.Helper()
	if err := logger.Init(); err != nil {
		t.Fatalf("init logger: %v", err)
	}
	base := []service.Option{
		service.WithRoster(testRoster()),
		service.WithReports(testReports()),
	}
	svc := service.New(append(base, opts...)...)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	return svc
}

func TestServiceLifecycle(t *testing.T) {
	Convey("Given a service over static sources", t, func() {
		ctx := context.Background()

		Convey("When starting and refreshing", func() {
			svc := startTestService(t)
			defer svc.Stop()

			So(svc.Refresh(ctx), ShouldBeNil)

			Convey("Then stats should describe the snapshot", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldBeTrue)
				So(stats["records"], ShouldEqual, 4)
				So(stats["employees"], ShouldEqual, 2)
				So(stats["unresolvedRatio"], ShouldEqual, 0.0)
			})
		})

		Convey("When refreshing before start", func() {
			svc := service.New(
				service.WithRoster(testRoster()),
				service.WithReports(testReports()),
			)

			Convey("Then it should be rejected", func() {
				So(errors.Is(svc.Refresh(ctx), service.ErrNotStarted), ShouldBeTrue)
			})
		})

		Convey("When started twice", func() {
			svc := startTestService(t)
			defer svc.Stop()

			Convey("Then the second start should be a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})
		})
	})
}

func TestServiceEmployeeReads(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := startTestService(t)
		defer svc.Stop()

		Convey("When listing employees", func() {
			ids, err := svc.Employees(ctx)

			Convey("Then they should come back name-sorted", func() {
				So(err, ShouldBeNil)
				So(ids, ShouldHaveLength, 2)
				So(ids[0].DisplayName, ShouldEqual, "Bob Smith")
				So(ids[1].DisplayName, ShouldEqual, "Jane Doe")
			})
		})

		Convey("When querying by a sloppy email alias", func() {
			m, err := svc.EmployeeMetrics(ctx, "  JANE@CO.COM ")

			Convey("Then it should resolve to the canonical identity", func() {
				So(err, ShouldBeNil)
				So(m.Email, ShouldEqual, "jane@co.com")
				So(m.DaysSubmitted, ShouldEqual, 3)
				So(m.SubmissionRate, ShouldEqual, 1)
				So(m.TotalHours, ShouldEqual, 13.5)
			})
		})

		Convey("When querying by name", func() {
			m, err := svc.EmployeeMetrics(ctx, "Bob")

			Convey("Then the fuzzy name path should resolve", func() {
				So(err, ShouldBeNil)
				So(m.Email, ShouldEqual, "bob@co.com")
				So(m.DaysSubmitted, ShouldEqual, 1)
			})
		})

		Convey("When querying an unknown employee", func() {
			_, err := svc.EmployeeMetrics(ctx, "nobody@co.com")

			Convey("Then it should report the sentinel", func() {
				So(errors.Is(err, service.ErrUnknownEmployee), ShouldBeTrue)
			})
		})

		Convey("When comparing employees", func() {
			all, err := svc.CompareEmployees(ctx, []string{"jane@co.com", "bob@co.com"})

			Convey("Then both results should come back in order", func() {
				So(err, ShouldBeNil)
				So(all, ShouldHaveLength, 2)
				So(all[0].Email, ShouldEqual, "jane@co.com")
				So(all[1].Email, ShouldEqual, "bob@co.com")
			})
		})

		Convey("When fetching a summary", func() {
			sum, err := svc.EmployeeSummary(ctx, "bob@co.com")

			Convey("Then attendance detail should be included", func() {
				So(err, ShouldBeNil)
				So(sum.Identity.DisplayName, ShouldEqual, "Bob Smith")
				So(sum.SubmittedDays, ShouldHaveLength, 1)
				So(sum.MissedDays, ShouldHaveLength, 2)
			})
		})
	})
}

func TestServiceTeamAndBilling(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := startTestService(t)
		defer svc.Stop()

		Convey("When aggregating the team", func() {
			tm, err := svc.TeamMetrics(ctx)

			Convey("Then the cohort counts should add up", func() {
				So(err, ShouldBeNil)
				So(tm.TotalEmployees, ShouldEqual, 2)
				So(tm.TotalWorkingDays, ShouldEqual, 3)
				total := 0
				for _, n := range tm.StatusDistribution {
					total += n
				}
				So(total, ShouldEqual, 2)
			})
		})

		Convey("When billing Lyell", func() {
			sum, err := svc.BillingSummary(ctx, "lyell", time.Time{}, time.Time{})

			Convey("Then the ETL cap should apply", func() {
				So(err, ShouldBeNil)
				So(sum.Project, ShouldEqual, "lyell")
				So(sum.TotalHours, ShouldEqual, 13.5)
				So(sum.TotalBillable, ShouldEqual, 11)
				So(sum.TotalExtra, ShouldEqual, 2.5)
				So(sum.HasSOWViolations, ShouldBeTrue)
			})
		})

		Convey("When billing DataPlatr", func() {
			sum, err := svc.BillingSummary(ctx, "dataplatr", time.Time{}, time.Time{})

			Convey("Then nothing should be capped", func() {
				So(err, ShouldBeNil)
				So(sum.TotalHours, ShouldEqual, 12)
				So(sum.TotalBillable, ShouldEqual, 12)
				So(sum.HasSOWViolations, ShouldBeFalse)
			})
		})

		Convey("When billing with an inverted range", func() {
			from := model.Day(2025, 1, 8)
			to := model.Day(2025, 1, 6)
			_, err := svc.BillingSummary(ctx, "lyell", from, to)

			Convey("Then it should be rejected", func() {
				So(errors.Is(err, service.ErrInvalidRange), ShouldBeTrue)
			})
		})

		Convey("When billing an unknown project", func() {
			_, err := svc.BillingSummary(ctx, "atlantis", time.Time{}, time.Time{})

			Convey("Then the billing sentinel should surface", func() {
				So(errors.Is(err, billing.ErrUnknownProject), ShouldBeTrue)
			})
		})

		Convey("When asking for a daily report", func() {
			day := model.Day(2025, 1, 6)
			sum, err := svc.DailyBillingReport(ctx, "lyell", day)

			Convey("Then only that day should be billed", func() {
				So(err, ShouldBeNil)
				So(sum.TotalHours, ShouldEqual, 6)
				So(sum.TotalBillable, ShouldEqual, 4)
			})
		})

		Convey("When building the project overview", func() {
			all, err := svc.ProjectOverview(ctx)

			Convey("Then every configured project should appear", func() {
				So(err, ShouldBeNil)
				So(all, ShouldHaveLength, 2)
			})
		})

		Convey("When invoicing Lyell for January", func() {
			inv, err := svc.MonthlyInvoice(ctx, "lyell", 2025, time.January)

			Convey("Then billable hours price at the configured rate", func() {
				So(err, ShouldBeNil)
				So(inv.Number, ShouldEqual, "INV-LYELL-2025-01-001")
				So(inv.TotalBillable, ShouldEqual, 11)
				So(inv.TotalAmount, ShouldEqual, 825)
				So(inv.HasSOWViolations, ShouldBeTrue)
			})
		})

		Convey("When listing invoice periods", func() {
			periods, err := svc.InvoicePeriods(ctx, "lyell")

			Convey("Then January is the only month with data", func() {
				So(err, ShouldBeNil)
				So(periods, ShouldHaveLength, 1)
				So(periods[0].Month, ShouldEqual, 1)
			})
		})
	})

	Convey("Given a service with a custom hourly rate", t, func() {
		svc := startTestService(t, service.WithHourlyRate(100))
		defer svc.Stop()

		Convey("When invoicing Lyell", func() {
			inv, err := svc.MonthlyInvoice(context.Background(), "lyell", 2025, time.January)

			Convey("Then the configured rate overrides the default", func() {
				So(err, ShouldBeNil)
				So(inv.HourlyRate, ShouldEqual, 100)
				So(inv.TotalAmount, ShouldEqual, 1100)
			})
		})
	})
}

func TestServiceCharts(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := startTestService(t)
		defer svc.Stop()

		Convey("When building each chart kind", func() {
			for _, kind := range types.AllChartKinds() {
				d, err := svc.Chart(ctx, kind, nil)
				So(err, ShouldBeNil)
				So(chart.Validate(d), ShouldBeNil)
			}
		})

		Convey("When supplying an invalid override", func() {
			override := &chart.Descriptor{ChartType: "none"}
			d, err := svc.Chart(ctx, types.ChartStatusDistribution, override)

			Convey("Then the local builder should win", func() {
				So(err, ShouldBeNil)
				So(d.ChartType, ShouldNotEqual, "none")
				So(d.Labels, ShouldNotBeEmpty)
			})
		})

		Convey("When supplying a valid override", func() {
			override := &chart.Descriptor{
				ChartType: "bar",
				Title:     "External",
				Labels:    []string{"a"},
				Datasets:  []chart.Dataset{{Label: "x", Data: []float64{1}}},
			}
			d, err := svc.Chart(ctx, types.ChartStatusDistribution, override)

			Convey("Then it should be used as-is", func() {
				So(err, ShouldBeNil)
				So(d.Title, ShouldEqual, "External")
			})
		})
	})
}
