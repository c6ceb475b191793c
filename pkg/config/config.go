// Package config loads the corrector's run configuration. Every numeric
// tunable here ends up threaded into the pipeline as an explicit parameter;
// the correction core itself never reads configuration or environment state.
package config

// Data is the complete loaded configuration for one batch run.
type Data struct {
	// Source is the root of the instrument output tree to correct.
	Source string
	// Destination is the root the corrected tree is mirrored under.
	Destination string
	// Catalog is the path of the SQLite run ledger. Empty disables it.
	Catalog string
	// Workers bounds how many files are corrected concurrently.
	Workers int

	Correction CorrectionData
	Downsample DownsampleData
}

// CorrectionData holds the site-tuned correction and recombination
// thresholds. The values shipped as defaults were tuned for the system 18
// deployment and should be reviewed per site.
type CorrectionData struct {
	BackgroundToleranceSeconds float64
	SNRThreshold               float64
	MinAzimuthSpreadDegrees    float64
	MinBeams                   int
}

// DownsampleData controls gate reduction of oversized files.
type DownsampleData struct {
	Enabled       bool
	MaxGates      int
	TruncateGates int
	TargetGates   int
}

// Provider abstracts where configuration comes from.
type Provider interface {
	LoadConfig() (*Data, error)
}
