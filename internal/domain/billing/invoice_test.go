package billing_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/workpulse/internal/domain/billing"
	"github.com/okian/workpulse/internal/domain/model"
	"github.com/okian/workpulse/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func invoiceRecords() []model.WorkRecord {
	return []model.WorkRecord{
		// Jane's ETL day blows the 4h cap; her reporting day stays under it.
		rec("jane@co.com", day(6), 6, "lyell", types.CategoryETL),
		rec("jane@co.com", day(7), 3, "lyell", types.CategoryReporting),
		rec("bob@co.com", day(6), 2, "lyell", types.CategoryDevelopment),
		// February activity must stay off the January invoice.
		rec("jane@co.com", model.Day(2025, time.February, 3), 4, "lyell", types.CategoryETL),
	}
}

func TestMonthlyInvoice(t *testing.T) {
	Convey("Given the default SOW policy set", t, func() {
		engine := billing.NewEngine(billing.DefaultPolicySet())

		Convey("When invoicing Lyell for January", func() {
			inv, err := engine.MonthlyInvoice("lyell", invoiceRecords(), 2025, time.January, billing.DefaultHourlyRate)
			So(err, ShouldBeNil)

			Convey("Then the header identifies the period", func() {
				So(inv.Number, ShouldEqual, "INV-LYELL-2025-01-001")
				So(inv.Project, ShouldEqual, "lyell")
				So(inv.MonthName, ShouldEqual, "January")
				So(inv.PeriodStart, ShouldResemble, day(1))
				So(inv.PeriodEnd, ShouldResemble, day(31))
				So(inv.GeneratedAt.IsZero(), ShouldBeFalse)
				So(inv.Status, ShouldEqual, billing.InvoiceStatusGenerated)
			})

			Convey("Then amounts come from capped hours only", func() {
				So(inv.TotalHours, ShouldEqual, 11)
				So(inv.TotalBillable, ShouldEqual, 9)
				So(inv.TotalExtra, ShouldEqual, 2)
				So(inv.TotalAmount, ShouldEqual, 675)
				So(inv.HourlyRate, ShouldEqual, 75)
				So(inv.HasSOWViolations, ShouldBeTrue)
			})

			Convey("Then employees list heaviest first", func() {
				So(inv.TotalEmployees, ShouldEqual, 2)
				So(inv.Employees, ShouldHaveLength, 2)
				So(inv.Employees[0].EmployeeRef, ShouldEqual, "jane@co.com")
				So(inv.Employees[0].TotalHours, ShouldEqual, 9)
				So(inv.Employees[0].BillableHours, ShouldEqual, 7)
				So(inv.Employees[0].DaysWorked, ShouldEqual, 2)
				So(inv.Employees[0].Amount, ShouldEqual, 525)
				So(inv.Employees[0].EfficiencyPct, ShouldEqual, 77.8)
				So(inv.Employees[1].EmployeeRef, ShouldEqual, "bob@co.com")
				So(inv.Employees[1].Amount, ShouldEqual, 150)
				So(inv.Employees[1].EfficiencyPct, ShouldEqual, 100)
			})

			Convey("Then categories list heaviest first with their caps", func() {
				So(inv.Categories, ShouldHaveLength, 3)
				So(inv.Categories[0].Category, ShouldEqual, "etl")
				So(inv.Categories[0].TotalHours, ShouldEqual, 6)
				So(inv.Categories[0].BillableHours, ShouldEqual, 4)
				So(inv.Categories[0].ExtraHours, ShouldEqual, 2)
				So(*inv.Categories[0].CapHours, ShouldEqual, 4)
				So(inv.Categories[0].Amount, ShouldEqual, 300)
				So(inv.Categories[1].Category, ShouldEqual, "reporting")
				So(inv.Categories[1].Amount, ShouldEqual, 225)
				So(inv.Categories[2].Category, ShouldEqual, "development")
				So(inv.Categories[2].CapHours, ShouldBeNil)
				So(inv.Categories[2].Amount, ShouldEqual, 150)
			})
		})

		Convey("When the month has no activity", func() {
			inv, err := engine.MonthlyInvoice("lyell", invoiceRecords(), 2025, time.March, billing.DefaultHourlyRate)

			Convey("Then an empty but well-formed invoice comes back", func() {
				So(err, ShouldBeNil)
				So(inv.Number, ShouldEqual, "INV-LYELL-2025-03-001")
				So(inv.TotalAmount, ShouldEqual, 0)
				So(inv.TotalEmployees, ShouldEqual, 0)
				So(inv.Employees, ShouldBeEmpty)
				So(inv.RulesApplied, ShouldNotBeEmpty)
			})
		})

		Convey("When the rate is not positive", func() {
			_, err := engine.MonthlyInvoice("lyell", invoiceRecords(), 2025, time.January, 0)

			Convey("Then it is rejected", func() {
				So(errors.Is(err, billing.ErrInvalidRate), ShouldBeTrue)
			})
		})

		Convey("When the project has no policy", func() {
			_, err := engine.MonthlyInvoice("atlantis", invoiceRecords(), 2025, time.January, billing.DefaultHourlyRate)

			Convey("Then the unknown-project sentinel surfaces", func() {
				So(errors.Is(err, billing.ErrUnknownProject), ShouldBeTrue)
			})
		})
	})
}

func TestInvoicePeriods(t *testing.T) {
	Convey("Given records spanning two months", t, func() {
		engine := billing.NewEngine(billing.DefaultPolicySet())

		Convey("When listing Lyell's invoice periods", func() {
			periods, err := engine.InvoicePeriods("lyell", invoiceRecords())

			Convey("Then each month appears once, newest first", func() {
				So(err, ShouldBeNil)
				So(periods, ShouldResemble, []billing.Period{
					{Year: 2025, Month: 2, MonthName: "February"},
					{Year: 2025, Month: 1, MonthName: "January"},
				})
			})
		})

		Convey("When the project has no records", func() {
			periods, err := engine.InvoicePeriods("dataplatr", invoiceRecords())

			Convey("Then the list is empty", func() {
				So(err, ShouldBeNil)
				So(periods, ShouldBeEmpty)
			})
		})

		Convey("When the project has no policy", func() {
			_, err := engine.InvoicePeriods("atlantis", invoiceRecords())

			Convey("Then the unknown-project sentinel surfaces", func() {
				So(errors.Is(err, billing.ErrUnknownProject), ShouldBeTrue)
			})
		})
	})
}
