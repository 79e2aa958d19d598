package services

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"feetrack/internal/core"
	"feetrack/internal/feecal"
)

// Extractor runs the whole determination: per-school fee standings, the
// combined defaulter list, and the headline stats.
type Extractor struct {
	schedules  []feecal.Schedule
	defaulters *DefaulterService
	opening    *OpeningBalanceService
}

func NewExtractor(schedules []feecal.Schedule) *Extractor {
	return &Extractor{
		schedules:  schedules,
		defaulters: NewDefaulterService(schedules),
		opening:    NewOpeningBalanceService(schedules),
	}
}

// RunResult is everything one snapshot produces. It is immutable once
// returned; report rendering and the HTTP layer only read it.
type RunResult struct {
	AsOf     core.Date
	Schools  []SchoolReport
	Combined []core.CombinedDefaulter
	Stats    []core.SchoolStats
}

// Run computes the full result for one snapshot. Identical snapshots give
// identical results; nothing here reads the clock or mutates the input.
func (e *Extractor) Run(ctx context.Context, snap core.Snapshot) RunResult {
	slog.InfoContext(ctx, "Starting defaulter extraction",
		"as_of", snap.AsOf.Format("2006-01-02"),
		"contacts", len(snap.Contacts),
		"invoices", len(snap.Invoices),
		"payments", len(snap.Payments))

	result := RunResult{AsOf: snap.AsOf}
	for _, sched := range e.schedules {
		report := e.defaulters.Report(snap, sched)
		stats := schoolStats(snap, report)
		slog.InfoContext(ctx, "School processed",
			"school", sched.School,
			"defaulters", stats.Defaulters,
			"due_periods", len(report.DueKeys),
			"outstanding", stats.Outstanding.String())
		result.Schools = append(result.Schools, report)
		result.Stats = append(result.Stats, stats)
	}

	result.Combined = e.opening.CombinedDefaulters(snap)
	slog.InfoContext(ctx, "Combined defaulter list built", "rows", len(result.Combined))
	return result
}

func schoolStats(snap core.Snapshot, report SchoolReport) core.SchoolStats {
	outstanding := decimal.Zero
	grades := make(map[string]struct{})
	for _, st := range report.Students {
		outstanding = outstanding.Add(st.Total)
		grades[st.Grade] = struct{}{}
	}
	return core.SchoolStats{
		School:         report.Schedule.School,
		TotalStudents:  snap.SchoolEnrollment(report.Schedule.School),
		Defaulters:     len(report.Students),
		Outstanding:    outstanding,
		GradesAffected: len(grades),
	}
}
