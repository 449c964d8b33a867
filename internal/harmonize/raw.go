package harmonize

// RawRecord mirrors one legacy VEVENT as handed over by the input boundary.
// Fields hold unprocessed property values; absent properties are empty.
type RawRecord struct {
	UID         string
	Summary     string
	Description string
	DTStart     string
}
