package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/anusha/bdaycal/internal/datagen"
)

func main() {
	cfg := datagen.DefaultConfig()
	var (
		entries           = flag.Int("entries", cfg.NumEntries, "number of birthday entries to generate")
		proseYearChance   = flag.Float64("prose-year-chance", cfg.ProseYearChance, "probability of a 'born in YYYY' description")
		yearlessChance    = flag.Float64("yearless-chance", cfg.YearlessDateChance, "probability of a yearless --MMDD start date")
		placeholderChance = flag.Float64("placeholder-chance", cfg.PlaceholderChance, "probability of a placeholder authoring-year start date")
		missingNameChance = flag.Float64("missing-name-chance", cfg.MissingNameChance, "probability of a missing summary")
		seed              = flag.Int64("seed", cfg.Seed, "random seed for deterministic generation")
		output            = flag.String("output", "data/input.ics", "path to write the generated calendar")
		writeStdout       = flag.Bool("stdout", false, "write the calendar to stdout instead of a file")
	)
	flag.Parse()

	genCfg := datagen.Config{
		NumEntries:         *entries,
		ProseYearChance:    clampProbability(*proseYearChance),
		YearlessDateChance: clampProbability(*yearlessChance),
		PlaceholderChance:  clampProbability(*placeholderChance),
		MissingNameChance:  clampProbability(*missingNameChance),
		Seed:               *seed,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	gen := datagen.New(genCfg)
	doc, err := gen.Generate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generation failed: %v\n", err)
		os.Exit(1)
	}

	if *writeStdout {
		fmt.Fprint(os.Stdout, doc)
		return
	}

	if err := datagen.WriteCalendar(doc, *output); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write calendar: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "Generated %d legacy entries into %s\n", genCfg.NumEntries, *output)
}

func clampProbability(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
