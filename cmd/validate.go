package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/AnyUserName/imgfit-cli/internal/hasher"
	"github.com/AnyUserName/imgfit-cli/internal/manifest"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <manifest_path>",
	Short: "Validate an imgfit manifest and check the referenced files",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, args []string) error {
	manifestPath := args[0]
	if info, err := os.Stat(manifestPath); err == nil && info.IsDir() {
		manifestPath = filepath.Join(manifestPath, manifest.FileName)
	}

	m, err := manifest.ReadJSON(manifestPath)
	if err != nil {
		return err
	}

	errs := validateManifest(m, filepath.Dir(manifestPath))
	if len(errs) == 0 {
		fmt.Println("  ✓ Manifest is valid")
		fmt.Printf("  ✓ %d files, %d outputs, all present and matching\n", m.Stats.TotalFiles, m.Stats.TotalOutputs)
		return nil
	}

	fmt.Printf("  ✗ Manifest has %d error(s):\n", len(errs))
	for _, e := range errs {
		fmt.Printf("    • %s\n", e)
	}
	return fmt.Errorf("validation failed with %d errors", len(errs))
}

func validateManifest(m *manifest.Manifest, baseDir string) []string {
	var errs []string

	if m.Version != manifest.SupportedManifestVersion {
		errs = append(errs, fmt.Sprintf("unsupported manifest version: %d", m.Version))
	}

	seenPaths := map[string]string{}
	for key, e := range m.Files {
		if e.Original.Width <= 0 || e.Original.Height <= 0 {
			errs = append(errs, fmt.Sprintf("file %q: invalid original dimensions %dx%d",
				key, e.Original.Width, e.Original.Height))
		}

		o := e.Output
		if o == nil {
			if !e.Skipped {
				errs = append(errs, fmt.Sprintf("file %q: no output", key))
			}
			continue
		}
		if e.Skipped {
			errs = append(errs, fmt.Sprintf("file %q: both skipped and has output", key))
		}
		if o.Format == "" {
			errs = append(errs, fmt.Sprintf("file %q: empty format", key))
		}
		if o.Width <= 0 || o.Height <= 0 {
			errs = append(errs, fmt.Sprintf("file %q: invalid output dimensions %dx%d", key, o.Width, o.Height))
		}
		if o.Quality < 0 || o.Quality > 100 {
			errs = append(errs, fmt.Sprintf("file %q: quality %d out of range", key, o.Quality))
		}
		if o.Attempts < 1 {
			errs = append(errs, fmt.Sprintf("file %q: attempts %d < 1", key, o.Attempts))
		}
		if m.BuildInfo != nil && o.Fits != (int(o.Size/1024) <= m.BuildInfo.CeilingKB) {
			errs = append(errs, fmt.Sprintf("file %q: fits=%v disagrees with size %d and ceiling %d KB",
				key, o.Fits, o.Size, m.BuildInfo.CeilingKB))
		}
		if o.Path == "" {
			errs = append(errs, fmt.Sprintf("file %q: missing path", key))
			continue
		}
		if other, dup := seenPaths[o.Path]; dup {
			errs = append(errs, fmt.Sprintf("file %q: path %q already used by %q", key, o.Path, other))
		}
		seenPaths[o.Path] = key

		errs = append(errs, checkOutputFile(key, o, filepath.Join(baseDir, filepath.FromSlash(o.Path)))...)
	}

	// Verify stats consistency.
	outputs := 0
	for _, e := range m.Files {
		if e.Output != nil {
			outputs++
		}
	}
	if m.Stats.TotalFiles != len(m.Files) {
		errs = append(errs, fmt.Sprintf("stats.total_files mismatch: %d != %d", m.Stats.TotalFiles, len(m.Files)))
	}
	if m.Stats.TotalOutputs != outputs {
		errs = append(errs, fmt.Sprintf("stats.total_outputs mismatch: %d != %d", m.Stats.TotalOutputs, outputs))
	}

	return errs
}

func checkOutputFile(key string, o *manifest.Output, fullPath string) []string {
	f, err := os.Open(fullPath)
	if err != nil {
		return []string{fmt.Sprintf("file %q: output not found: %s", key, o.Path)}
	}
	defer f.Close()

	var errs []string
	if info, err := f.Stat(); err == nil && info.Size() != o.Size {
		errs = append(errs, fmt.Sprintf("file %q: size mismatch: manifest=%d, disk=%d", key, o.Size, info.Size()))
	}
	sum, err := hasher.ContentHashReader(f, hasher.FullLen)
	if err != nil {
		return append(errs, fmt.Sprintf("file %q: hash %s: %v", key, o.Path, err))
	}
	if sum != o.Hash {
		errs = append(errs, fmt.Sprintf("file %q: hash mismatch: manifest=%s, disk=%s", key, o.Hash, sum))
	}
	return errs
}
