package ir

// Version constants recorded on every run.
const (
	// LogVersion is the run-log record schema version.
	LogVersion = "1"

	// GeneratorVersion changes whenever the same seed and catalog may
	// render different statements.
	GeneratorVersion = "0.3.0"
)
