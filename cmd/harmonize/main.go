package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anusha/bdaycal/internal/config"
	"github.com/anusha/bdaycal/internal/harmonize"
	"github.com/anusha/bdaycal/internal/ical"
	"github.com/anusha/bdaycal/internal/logging"
	"github.com/anusha/bdaycal/internal/store"
)

func main() {
	var (
		inputPath  = flag.String("input", "", "Path to the legacy .ics file (overrides HARMONIZER_INPUT)")
		outputPath = flag.String("output", "", "Path for the harmonized .ics file (overrides HARMONIZER_OUTPUT)")
		traceDir   = flag.String("trace-dir", "", "Directory for the trace database (overrides TRACE_DB_DIR)")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging).With("component", "harmonize")

	input := cfg.Harmonizer.InputPath
	if *inputPath != "" {
		input = *inputPath
	}
	output := cfg.Harmonizer.OutputPath
	if *outputPath != "" {
		output = *outputPath
	}
	trace := cfg.Trace.Dir
	if *traceDir != "" {
		trace = *traceDir
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	records, err := loadRecords(input)
	if err != nil {
		logger.Error("failed to load input calendar", "error", err, "path", input)
		os.Exit(1)
	}
	if len(records) == 0 {
		logger.Error("input calendar contains no events", "path", input)
		os.Exit(1)
	}

	pipeline := harmonize.NewPipeline(rulesFromConfig(cfg.Harmonizer), nil, cfg.Harmonizer.CalendarName, logger)

	start := time.Now()
	logger.Info("harmonizing calendar", "entries", len(records), "input", input)
	result, err := pipeline.Run(records)
	if err != nil {
		logger.Error("harmonization failed, no output written", "error", err)
		os.Exit(1)
	}

	if err := os.WriteFile(output, []byte(result.Document), 0o644); err != nil {
		logger.Error("failed to write output calendar", "error", err, "path", output)
		os.Exit(1)
	}

	if trace != "" {
		if err := recordTrace(ctx, trace, input, start, result); err != nil {
			logger.Warn("failed to record trace run", "error", err)
		}
	}

	logger.Info("harmonization complete", "entries", len(result.Records), "output", output, "duration", time.Since(start).String())
}

func loadRecords(path string) ([]harmonize.RawRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	return ical.Decode(file)
}

func rulesFromConfig(cfg config.HarmonizerConfig) harmonize.Rules {
	rules := harmonize.DefaultRules()
	if cfg.AlarmHour > 0 {
		rules.AlarmOffset = time.Duration(cfg.AlarmHour) * time.Hour
	}
	if cfg.MinBirthYear > 0 {
		rules.MinYear = cfg.MinBirthYear
	}
	return rules
}

func recordTrace(ctx context.Context, dir, source string, startedAt time.Time, result harmonize.Result) error {
	traceStore, err := store.NewSQLiteStore(dir)
	if err != nil {
		return err
	}
	defer traceStore.Close()

	run := store.Run{
		Source:      source,
		StartedAt:   startedAt.UTC(),
		CompletedAt: time.Now().UTC(),
	}
	for _, rec := range result.Records {
		run.Entries = append(run.Entries, store.RunEntry{
			SourceUID:    rec.Entry.SourceUID,
			GeneratedUID: rec.UID,
			Name:         rec.Entry.Name,
			Month:        int(rec.Entry.Month),
			Day:          rec.Entry.Day,
			Year:         rec.Entry.Year,
			YearKnown:    rec.Entry.YearKnown,
		})
	}

	_, err = traceStore.RecordRun(ctx, run)
	return err
}
