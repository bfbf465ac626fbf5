package manifest

// FileName is the manifest written next to the outputs.
const FileName = "imgfit.manifest.json"

// SupportedManifestVersion is the current schema version.
const SupportedManifestVersion = 1

// Manifest is the top-level output of an imgfit run.
type Manifest struct {
	Version     int              `json:"version"`
	GeneratedAt string           `json:"generated_at"`
	Profile     string           `json:"profile"`
	BuildInfo   *BuildInfo       `json:"build_info,omitempty"`
	Files       map[string]Entry `json:"files"`
	Stats       Stats            `json:"stats"`
}

// BuildInfo captures run parameters for diagnostics.
type BuildInfo struct {
	Workers      int    `json:"workers"`
	CeilingKB    int    `json:"ceiling_kb"`
	StartQuality int    `json:"start_quality"`
	Step         int    `json:"step"`
	BaseSize     int    `json:"base_size"`
	Format       string `json:"format"`
}

// Entry describes one source image and what was produced for it.
type Entry struct {
	Original OriginalInfo `json:"original"`
	Output   *Output      `json:"output,omitempty"`
	Skipped  bool         `json:"skipped,omitempty"` // output was not smaller than the source
}

// OriginalInfo holds metadata about the source image.
type OriginalInfo struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
	Size   int64  `json:"size"`
}

// Output is the size-bounded encoding of an entry.
type Output struct {
	Format   string `json:"format"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Size     int64  `json:"size"`     // bytes on disk
	Quality  int    `json:"quality"`  // quality the output was encoded at
	Attempts int    `json:"attempts"` // encodes performed
	Fits     bool   `json:"fits"`     // size/1024 <= ceiling
	Hash     string `json:"hash"`     // 16 hex chars of xxhash64
	Path     string `json:"path"`     // relative to the manifest
}

// Stats aggregates run metrics.
type Stats struct {
	TotalInputBytes  int64 `json:"total_input_bytes"`
	TotalOutputBytes int64 `json:"total_output_bytes"`
	TotalFiles       int   `json:"total_files"`
	TotalOutputs     int   `json:"total_outputs"`
	OverCeiling      int   `json:"over_ceiling,omitempty"`
	Skipped          int   `json:"skipped,omitempty"`
}
