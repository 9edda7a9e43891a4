package trace

// Summary aggregates statistics from a Writer.
type Summary struct {
	Format        Format
	Path          string
	Signals       int    // signals bound after depth filtering
	Dumps         int    // Dump calls while open
	ValueChanges  int    // value lines written, initial values included
	LastTimestamp uint64 // timestamp of the last Dump
}

// Summarize returns the statistics collected so far.
// Safe for a nil Writer (returns a zero Summary).
func Summarize(w *Writer) Summary {
	if w == nil {
		return Summary{}
	}
	return Summary{
		Format:        w.format,
		Path:          w.path,
		Signals:       len(w.signals),
		Dumps:         w.dumps,
		ValueChanges:  w.changes,
		LastTimestamp: w.lastTime,
	}
}
