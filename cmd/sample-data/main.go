package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/workpulse/internal/sampledata"
	"github.com/okian/workpulse/pkg/logger"
)

// Default configuration constants.
const (
	defaultEmployees = 12
	defaultDays      = 20
	defaultTimeout   = 30 * time.Second
)

func main() {
	var (
		employees = flag.Int("employees", defaultEmployees, "Number of roster employees to generate")
		days      = flag.Int("days", defaultDays, "Number of consecutive working days to cover")
		start     = flag.String("start", "", "First working day (YYYY-MM-DD, default: 2025-01-06)")
		outDir    = flag.String("out", "data", "Output directory for roster.csv and reports.csv")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	opts := []sampledata.Option{
		sampledata.WithEmployees(*employees),
		sampledata.WithDays(*days),
	}
	if *start != "" {
		t, err := time.Parse("2006-01-02", *start)
		if err != nil {
			os.Stderr.WriteString("invalid -start date: " + err.Error() + "\n")
			return
		}
		opts = append(opts, sampledata.WithStartDate(t))
	}

	ds, err := sampledata.NewGenerator(opts...).Generate(ctx)
	if err != nil {
		os.Stderr.WriteString("generation failed: " + err.Error() + "\n")
		return
	}

	if err := sampledata.WriteCSV(ds, *outDir); err != nil {
		os.Stderr.WriteString("write failed: " + err.Error() + "\n")
		return
	}

	logger.Get().Info(ctx, "sample data written",
		logger.String("dir", *outDir),
		logger.Int("roster", len(ds.Roster)),
		logger.Int("reports", len(ds.Reports)),
	)
}
