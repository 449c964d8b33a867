package datagen

// Config drives the synthetic legacy-calendar generator.
type Config struct {
	NumEntries         int
	ProseYearChance    float64 // probability of a "born in YYYY" description
	YearlessDateChance float64 // probability of a --MMDD style DTSTART
	PlaceholderChance  float64 // probability of DTSTART carrying the authoring year
	MissingNameChance  float64 // probability of an empty SUMMARY
	Seed               int64
}

// DefaultConfig returns baseline settings producing a representative mix of
// legacy entry shapes.
func DefaultConfig() Config {
	return Config{
		NumEntries:         25,
		ProseYearChance:    0.4,
		YearlessDateChance: 0.35,
		PlaceholderChance:  0.15,
		MissingNameChance:  0.1,
		Seed:               42,
	}
}
