package cmd

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/AnyUserName/imgfit-cli/internal/manifest"
	"github.com/AnyUserName/imgfit-cli/internal/pipeline"
	"github.com/AnyUserName/imgfit-cli/internal/profile"
	"github.com/spf13/cobra"
)

var (
	fitOutDir    string
	fitProfile   string
	fitWorkers   int
	fitCeilingKB int
	fitQuality   int
	fitStep      int
	fitBaseSize  int
	fitFormat    string
	fitNoRegress bool
)

var fitCmd = &cobra.Command{
	Use:   "fit <input>",
	Short: "Fit images under a size ceiling and write them with a manifest",
	Long: `Takes an image file or scans a directory for images (png, jpg, jpeg,
webp, gif, bmp, tiff), downsamples each according to the profile's base size,
re-encodes at decreasing quality until it fits the ceiling, and writes the
results plus imgfit.manifest.json.

Output filenames are content-addressed: <name>.<hash>.ext`,
	Args: cobra.ExactArgs(1),
	RunE: runFit,
}

func init() {
	fitCmd.Flags().StringVarP(&fitOutDir, "out", "o", "", "output directory (default from config)")
	addProfileFlags(fitCmd)
	fitCmd.Flags().IntVarP(&fitWorkers, "workers", "w", 0, "parallel workers (0 = NumCPU)")
	fitCmd.Flags().BoolVar(&fitNoRegress, "no-regress-size", true, "skip outputs not smaller than the source file")
	rootCmd.AddCommand(fitCmd)
}

// addProfileFlags registers the flags shared by fit and upload.
func addProfileFlags(c *cobra.Command) {
	c.Flags().StringVarP(&fitProfile, "profile", "p", "", "profile: "+fmt.Sprint(profile.Names()))
	c.Flags().IntVar(&fitCeilingKB, "ceiling-kb", 0, "size ceiling in KB (0 = profile default)")
	c.Flags().IntVarP(&fitQuality, "quality", "q", 0, "start quality 1-100 (0 = profile default)")
	c.Flags().IntVar(&fitStep, "step", 0, "quality decrement per retry (0 = profile default)")
	c.Flags().IntVar(&fitBaseSize, "base-size", -1, "shortest-side base for downsampling, 0 disables (-1 = profile default)")
	c.Flags().StringVarP(&fitFormat, "format", "f", "", "output format: jpeg, webp, avif (empty = profile default)")
}

// resolveProfile layers profile defaults, config and flags, in that order.
func resolveProfile() (profile.Profile, error) {
	name := cfg.Profile
	if fitProfile != "" {
		name = fitProfile
	}
	if !profile.Known(name) {
		log.Warn().Str("profile", name).Msgf("unknown profile, using %s defaults", profile.DefaultName)
	}
	prof := profile.Get(name)

	override := func(dst *int, fromCfg, fromFlag int) {
		if fromCfg > 0 {
			*dst = fromCfg
		}
		if fromFlag > 0 {
			*dst = fromFlag
		}
	}
	override(&prof.CeilingKB, cfg.Fit.CeilingKB, fitCeilingKB)
	override(&prof.StartQuality, cfg.Fit.StartQuality, fitQuality)
	override(&prof.Step, cfg.Fit.Step, fitStep)
	if cfg.Fit.BaseSize != nil {
		prof.BaseSize = *cfg.Fit.BaseSize
	}
	if fitBaseSize >= 0 {
		prof.BaseSize = fitBaseSize
	}
	if cfg.Fit.Format != "" {
		prof.Format = cfg.Fit.Format
	}
	if fitFormat != "" {
		prof.Format = fitFormat
	}
	return prof, prof.Validate()
}

func runFit(_ *cobra.Command, args []string) error {
	start := time.Now()

	prof, err := resolveProfile()
	if err != nil {
		return err
	}

	outDir := cfg.Output
	if fitOutDir != "" {
		outDir = fitOutDir
	}
	absInput, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolve input path: %w", err)
	}
	absOutput, err := filepath.Abs(outDir)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}
	workers := cfg.Workers
	if fitWorkers > 0 {
		workers = fitWorkers
	}

	log.Debug().
		Str("input", absInput).
		Str("output", absOutput).
		Str("profile", prof.Name).
		Int("ceiling_kb", prof.CeilingKB).
		Int("base_size", prof.BaseSize).
		Msg("fit")

	p := pipeline.New(pipeline.Config{
		Input:         absInput,
		OutputDir:     absOutput,
		Profile:       prof,
		Workers:       workers,
		NoRegressSize: fitNoRegress,
		Log:           log,
	})

	m, err := p.Run()
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	manifestPath := filepath.Join(absOutput, manifest.FileName)
	if err := manifest.WriteJSON(m, manifestPath); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	printFitReport(m, time.Since(start))
	return nil
}

func printFitReport(m *manifest.Manifest, elapsed time.Duration) {
	fmt.Println()
	fmt.Println("  imgfit done")
	fmt.Println()

	s := m.Stats
	ratio := float64(0)
	if s.TotalInputBytes > 0 {
		ratio = float64(s.TotalOutputBytes) / float64(s.TotalInputBytes) * 100
	}

	fmt.Printf("  Files:       %d\n", s.TotalFiles)
	fmt.Printf("  Outputs:     %d\n", s.TotalOutputs)
	if m.BuildInfo != nil {
		fmt.Printf("  Ceiling:     %d KB (%s)\n", m.BuildInfo.CeilingKB, m.BuildInfo.Format)
	}
	fmt.Printf("  Input size:  %s\n", formatBytes(s.TotalInputBytes))
	fmt.Printf("  Output size: %s\n", formatBytes(s.TotalOutputBytes))
	fmt.Printf("  Ratio:       %.1f%% of original\n", ratio)
	if s.OverCeiling > 0 {
		fmt.Printf("  Over budget: %d (quality floor reached)\n", s.OverCeiling)
	}
	if s.Skipped > 0 {
		fmt.Printf("  Skipped:     %d (not smaller than source)\n", s.Skipped)
	}
	fmt.Printf("  Time:        %s\n", elapsed.Round(time.Millisecond))
	fmt.Println()

	// Top 10 largest sources.
	type row struct {
		key     string
		in, out int64
		quality int
	}
	var rows []row
	for key, e := range m.Files {
		r := row{key: key, in: e.Original.Size, quality: -1}
		if e.Output != nil {
			r.out = e.Output.Size
			r.quality = e.Output.Quality
		}
		rows = append(rows, r)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].in != rows[j].in {
			return rows[i].in > rows[j].in
		}
		return rows[i].key < rows[j].key
	})
	n := min(len(rows), 10)
	if n == 0 {
		return
	}
	fmt.Printf("  Top %d largest (original → fitted):\n", n)
	for _, r := range rows[:n] {
		if r.quality < 0 {
			fmt.Printf("    %-40s %8s   skipped\n", truncKey(r.key, 40), formatBytes(r.in))
			continue
		}
		fmt.Printf("    %-40s %8s → %8s  q=%d\n",
			truncKey(r.key, 40), formatBytes(r.in), formatBytes(r.out), r.quality)
	}
	fmt.Println()
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

func truncKey(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max+3:]
}
