package perf_test

import (
	"testing"
	"time"

	"github.com/okian/workpulse/internal/domain/model"
	"github.com/okian/workpulse/internal/domain/perf"
	"github.com/okian/workpulse/internal/domain/submission"
	"github.com/okian/workpulse/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func day(d int) time.Time {
	return model.Day(2025, time.January, d)
}

func rec(email string, d time.Time, hours float64, tasks int, project string, category types.Category) model.WorkRecord {
	return model.WorkRecord{
		EmployeeRef: email,
		Date:        d,
		Hours:       hours,
		TaskCount:   tasks,
		Project:     project,
		Category:    category,
	}
}

func eightHourDays(email string, days ...int) []model.WorkRecord {
	out := make([]model.WorkRecord, 0, len(days))
	for _, d := range days {
		out = append(out, rec(email, day(d), 8, 2, "lyell", types.CategoryETL))
	}
	return out
}

func forEmployee(all []model.WorkRecord, email string) []model.WorkRecord {
	var out []model.WorkRecord
	for _, r := range all {
		if r.EmployeeRef == email {
			out = append(out, r)
		}
	}
	return out
}

func TestClassify(t *testing.T) {
	Convey("Given the default classification thresholds", t, func() {
		engine := perf.NewEngine()
		jane := model.EmployeeIdentity{PrimaryEmail: "jane@co.com", DisplayName: "Jane Doe"}

		compute := func(records []model.WorkRecord) perf.Metrics {
			idx := submission.Build(records)
			return engine.Compute(jane, forEmployee(records, jane.PrimaryEmail), idx)
		}

		Convey("When an employee submits every day with in-band hours", func() {
			m := compute(eightHourDays("jane@co.com", 6, 7, 8, 9, 10, 11, 12, 13, 14, 15))

			Convey("Then the status is Excellent", func() {
				So(m.SubmissionRate, ShouldEqual, 1.0)
				So(m.MaxGap, ShouldEqual, 0)
				So(m.AvgDailyHours, ShouldEqual, 8)
				So(m.Status, ShouldEqual, types.StatusExcellent)
				So(m.StatusLabel, ShouldEqual, "Excellent")
			})
		})

		Convey("When the rate is adequate but a three-day gap exists", func() {
			// 7 of 10 working days submitted; 8-10 January missed back to back.
			m := compute(eightHourDays("jane@co.com", 6, 7, 11, 12, 13, 14, 15))

			Convey("Then the gap drives the status to Inconsistent", func() {
				So(m.SubmissionRate, ShouldEqual, 0.7)
				So(m.MaxGap, ShouldEqual, 3)
				So(m.Status, ShouldEqual, types.StatusInconsistent)
			})
		})

		Convey("When the rate falls below 0.7", func() {
			m := compute(eightHourDays("jane@co.com", 6, 7, 9, 11, 13, 15))

			Convey("Then the status is Poor", func() {
				So(m.SubmissionRate, ShouldEqual, 0.6)
				So(m.Status, ShouldEqual, types.StatusPoor)
			})
		})

		Convey("When the rate falls below 0.5", func() {
			m := compute(eightHourDays("jane@co.com", 6, 8, 12, 15))

			Convey("Then the status is Very Poor", func() {
				So(m.SubmissionRate, ShouldEqual, 0.4)
				So(m.Status, ShouldEqual, types.StatusVeryPoor)
			})
		})

		Convey("When an employee on the roster never submits", func() {
			records := eightHourDays("bob@co.com", 6, 7, 8)
			idx := submission.Build(records)
			m := engine.Compute(jane, nil, idx)

			Convey("Then the status is Non-Reporter", func() {
				So(m.DaysSubmitted, ShouldEqual, 0)
				So(m.DaysMissed, ShouldEqual, 3)
				So(m.Status, ShouldEqual, types.StatusNonReporter)
			})
		})

		Convey("When hours sit outside the expected band", func() {
			records := make([]model.WorkRecord, 0, 10)
			for d := 6; d <= 15; d++ {
				records = append(records, rec("jane@co.com", day(d), 12, 2, "lyell", types.CategoryETL))
			}
			m := compute(records)

			Convey("Then a perfect rate still lands on Good", func() {
				So(m.SubmissionRate, ShouldEqual, 1.0)
				So(m.AvgDailyHours, ShouldEqual, 12)
				So(m.Status, ShouldEqual, types.StatusGood)
			})
		})
	})

	Convey("Given a custom policy", t, func() {
		policy := perf.DefaultPolicy()
		policy.InconsistentMinGap = 5
		engine := perf.NewEngine(perf.WithPolicy(policy))
		jane := model.EmployeeIdentity{PrimaryEmail: "jane@co.com", DisplayName: "Jane Doe"}

		Convey("When a three-day gap no longer trips the threshold", func() {
			records := eightHourDays("jane@co.com", 6, 7, 11, 12, 13, 14, 15)
			idx := submission.Build(records)
			m := engine.Compute(jane, records, idx)

			Convey("Then the employee classifies as Good instead", func() {
				So(m.MaxGap, ShouldEqual, 3)
				So(m.Status, ShouldEqual, types.StatusGood)
			})
		})
	})
}

func TestWorkloadAggregates(t *testing.T) {
	Convey("Given records across projects and categories", t, func() {
		engine := perf.NewEngine()
		jane := model.EmployeeIdentity{PrimaryEmail: "jane@co.com", DisplayName: "Jane Doe"}
		records := []model.WorkRecord{
			rec("jane@co.com", day(6), 6, 2, "lyell", types.CategoryETL),
			rec("jane@co.com", day(7), 2, 1, "lyell", types.CategoryETL),
			rec("jane@co.com", day(7), 4, 3, "dataplatr", types.CategoryReporting),
		}
		idx := submission.Build(records)
		m := engine.Compute(jane, records, idx)

		Convey("Then totals and per-day averages come from active days", func() {
			So(m.TotalReports, ShouldEqual, 3)
			So(m.TotalHours, ShouldEqual, 12)
			So(m.AvgDailyHours, ShouldEqual, 6)
			So(m.AvgTasksPerDay, ShouldEqual, 3)
			So(m.CompletionRatio, ShouldEqual, 2)
		})

		Convey("Then the project distribution carries hours, share and days", func() {
			So(m.ProjectDistribution, ShouldHaveLength, 2)
			So(m.ProjectDistribution["lyell"].Hours, ShouldEqual, 8)
			So(m.ProjectDistribution["lyell"].Percentage, ShouldEqual, 66.7)
			So(m.ProjectDistribution["lyell"].Days, ShouldEqual, 2)
			So(m.ProjectDistribution["dataplatr"].Hours, ShouldEqual, 4)
			So(m.PrimaryProject, ShouldEqual, "lyell")
		})

		Convey("Then the category breakdown counts report rows", func() {
			So(m.CategoryBreakdown[types.CategoryETL].Count, ShouldEqual, 2)
			So(m.CategoryBreakdown[types.CategoryETL].Percentage, ShouldEqual, 66.7)
			So(m.CategoryBreakdown[types.CategoryReporting].Count, ShouldEqual, 1)
			So(m.TaskDiversity, ShouldEqual, 0.67)
		})

		Convey("Then workload day counters use per-record hours", func() {
			So(m.UnderutilizedDays, ShouldEqual, 3)
			So(m.OverloadedDays, ShouldEqual, 0)
		})

		Convey("Then the period reflects the dataset range", func() {
			So(m.PeriodStart, ShouldResemble, day(6))
			So(m.PeriodEnd, ShouldResemble, day(7))
		})
	})

	Convey("Given a recency window anchored on the dataset's latest date", t, func() {
		engine := perf.NewEngine()
		jane := model.EmployeeIdentity{PrimaryEmail: "jane@co.com", DisplayName: "Jane Doe"}
		records := eightHourDays("jane@co.com", 6, 7, 8, 9, 10, 11, 12, 13, 14, 15)
		idx := submission.Build(records)
		m := engine.Compute(jane, records, idx)

		Convey("Then recent submissions count days inside the window", func() {
			// Latest date is 15 January; the 7-day window covers 9-15.
			So(m.RecentSubmissions, ShouldEqual, 7)
			So(m.ExtendedSubmissions, ShouldEqual, 10)
		})
	})

	Convey("Given no records and an empty index", t, func() {
		engine := perf.NewEngine()
		jane := model.EmployeeIdentity{PrimaryEmail: "jane@co.com", DisplayName: "Jane Doe"}
		m := engine.Compute(jane, nil, submission.Build(nil))

		Convey("Then every aggregate is a well-defined zero", func() {
			So(m.SubmissionRate, ShouldEqual, 0)
			So(m.AvgDailyHours, ShouldEqual, 0)
			So(m.TotalHours, ShouldEqual, 0)
			So(m.Status, ShouldEqual, types.StatusNonReporter)
		})
	})
}

func TestComputeIsIdempotent(t *testing.T) {
	Convey("Given a mixed record set for one employee", t, func() {
		engine := perf.NewEngine()
		jane := model.EmployeeIdentity{PrimaryEmail: "jane@co.com", DisplayName: "Jane Doe"}
		records := []model.WorkRecord{
			rec("jane@co.com", day(6), 6, 2, "lyell", types.CategoryETL),
			rec("jane@co.com", day(7), 2.5, 1, "lyell", types.CategoryReporting),
			rec("jane@co.com", day(9), 4, 3, "dataplatr", types.CategoryDevelopment),
		}
		idx := submission.Build(records)

		Convey("When metrics are computed twice from the same inputs", func() {
			first := engine.Compute(jane, records, idx)
			second := engine.Compute(jane, records, idx)

			Convey("Then both results are identical", func() {
				So(second, ShouldResemble, first)
			})
		})
	})
}
