// Package datagen produces deliberately messy legacy birthday calendars for
// demos and fixtures: mixed date shapes, prose birth years, placeholder
// years, and missing summaries.
package datagen

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// Generator synthesises legacy VCALENDAR documents.
type Generator struct {
	cfg  Config
	rand *rand.Rand
}

// New returns a configured Generator instance.
func New(cfg Config) *Generator {
	if cfg.NumEntries <= 0 {
		cfg.NumEntries = DefaultConfig().NumEntries
	}
	if cfg.ProseYearChance <= 0 {
		cfg.ProseYearChance = DefaultConfig().ProseYearChance
	}
	if cfg.YearlessDateChance <= 0 {
		cfg.YearlessDateChance = DefaultConfig().YearlessDateChance
	}
	if cfg.PlaceholderChance <= 0 {
		cfg.PlaceholderChance = DefaultConfig().PlaceholderChance
	}
	if cfg.MissingNameChance <= 0 {
		cfg.MissingNameChance = DefaultConfig().MissingNameChance
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	return &Generator{
		cfg:  cfg,
		rand: rand.New(rand.NewSource(cfg.Seed)),
	}
}

var (
	firstNames = []string{
		"Ada", "Bruno", "Carla", "Dmitri", "Elena", "Farid", "Greta", "Hugo",
		"Ines", "Jonas", "Katya", "Lars", "Mina", "Noor", "Otto", "Priya",
	}
	lastNames = []string{
		"Abbott", "Brandt", "Costa", "Dorn", "Eriksen", "Fischer", "Gupta",
		"Hassan", "Ivanova", "Jensen", "Klein", "Larsen", "Moreau", "Novak",
	}
)

// Generate synthesises one legacy calendar document. It respects context
// cancellation between entries.
func (g *Generator) Generate(ctx context.Context) (string, error) {
	var b strings.Builder
	writeLine := func(line string) {
		b.WriteString(line)
		b.WriteString("\r\n")
	}

	writeLine("BEGIN:VCALENDAR")
	writeLine("VERSION:2.0")
	writeLine("PRODID:-//Legacy Birthday Export//EN")

	currentYear := time.Now().Year()
	for i := 0; i < g.cfg.NumEntries; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		uid := fmt.Sprintf("legacy-%04d@example.net", i+1)
		name := g.randomFullName()
		month := 1 + g.rand.Intn(12)
		day := 1 + g.rand.Intn(28)
		birthYear := 1940 + g.rand.Intn(60)

		writeLine("BEGIN:VEVENT")
		writeLine("UID:" + uid)

		if g.rand.Float64() >= g.cfg.MissingNameChance {
			writeLine("SUMMARY:" + name)
		}

		switch {
		case g.rand.Float64() < g.cfg.YearlessDateChance:
			writeLine(fmt.Sprintf("DTSTART:--%02d%02d", month, day))
			if g.rand.Float64() < g.cfg.ProseYearChance {
				writeLine(fmt.Sprintf("DESCRIPTION:%s was born in %d.", name, birthYear))
			}
		case g.rand.Float64() < g.cfg.PlaceholderChance:
			// The export tool stamped the authoring year instead of a birth year.
			writeLine(fmt.Sprintf("DTSTART;VALUE=DATE:%04d%02d%02d", currentYear, month, day))
		default:
			writeLine(fmt.Sprintf("DTSTART;VALUE=DATE:%04d%02d%02d", birthYear, month, day))
		}

		writeLine("END:VEVENT")
	}

	writeLine("END:VCALENDAR")
	return b.String(), nil
}

func (g *Generator) randomFullName() string {
	first := firstNames[g.rand.Intn(len(firstNames))]
	last := lastNames[g.rand.Intn(len(lastNames))]
	return first + " " + last
}
