package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"feetrack/internal/books"
	"feetrack/internal/books/file"
	"feetrack/internal/core"
	"feetrack/internal/feecal"
	"feetrack/internal/log"
	"feetrack/internal/report"
	"feetrack/internal/services"
)

func main() {
	_ = godotenv.Load()

	var (
		contactsPath = flag.String("contacts", "", "contacts export (.csv or .xlsx)")
		invoicesPath = flag.String("invoices", "", "invoices export (.csv or .xlsx)")
		paymentsPath = flag.String("payments", "", "customer payments export, optional")
		outDir       = flag.String("out", "reports", "directory the report tree is written to")
		asOfFlag     = flag.String("as-of", "", "run date as YYYY-MM-DD, default today")
		schedulePath = flag.String("schedule", "", "fee calendar override file, default built-in")
		zipPath      = flag.String("zip", "", "also write the report archive to this file")
	)
	flag.Parse()

	logger := log.New(log.Config{
		Level:     log.ParseLevel(os.Getenv("LOG_LEVEL")),
		Component: log.ComponentApp,
	})
	log.SetDefault(logger)

	if *contactsPath == "" || *invoicesPath == "" {
		fmt.Fprintln(os.Stderr, "usage: feetrack -contacts contacts.csv -invoices invoices.csv [options]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	asOf := core.DateOf(time.Now())
	if *asOfFlag != "" {
		asOf = core.ParseDate(*asOfFlag)
		if asOf.IsZero() {
			logger.Error("Invalid -as-of date", "value", *asOfFlag)
			os.Exit(1)
		}
	}

	schedules := feecal.Default()
	if *schedulePath != "" {
		loaded, err := feecal.Load(*schedulePath)
		if err != nil {
			logger.Error("Failed to load fee calendar", "error", err, "path", *schedulePath)
			os.Exit(1)
		}
		schedules = loaded
	}

	ctx := context.Background()
	src := file.Source{
		ContactsPath: *contactsPath,
		InvoicesPath: *invoicesPath,
		PaymentsPath: *paymentsPath,
	}
	snap, err := books.LoadSnapshot(ctx, src, src, src, asOf)
	if err != nil {
		logger.Error("Failed to load billing exports", "error", err)
		os.Exit(1)
	}

	result := services.NewExtractor(schedules).Run(ctx, snap)
	files, err := report.Render(result)
	if err != nil {
		logger.Error("Failed to render reports", "error", err)
		os.Exit(1)
	}
	if err := report.WriteTree(*outDir, files); err != nil {
		logger.Error("Failed to write report tree", "error", err, "dir", *outDir)
		os.Exit(1)
	}

	if *zipPath != "" {
		f, err := os.Create(*zipPath)
		if err != nil {
			logger.Error("Failed to create archive", "error", err, "path", *zipPath)
			os.Exit(1)
		}
		if err := report.Zip(f, files); err != nil {
			f.Close()
			logger.Error("Failed to write archive", "error", err, "path", *zipPath)
			os.Exit(1)
		}
		if err := f.Close(); err != nil {
			logger.Error("Failed to close archive", "error", err, "path", *zipPath)
			os.Exit(1)
		}
	}

	for _, st := range result.Stats {
		logger.Info("School summary",
			log.FieldSchool, string(st.School),
			log.FieldStudents, st.TotalStudents,
			log.FieldDefaulters, st.Defaulters,
			log.FieldOutstanding, report.FormatINR(st.Outstanding),
			"grades_affected", st.GradesAffected)
	}
	logger.Info("Report tree written",
		"dir", *outDir,
		log.FieldFiles, len(files),
		log.FieldAsOf, asOf.Format("2006-01-02"))
}
