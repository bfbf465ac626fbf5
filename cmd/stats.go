package cmd

import (
	"fmt"
	"sort"

	"github.com/AnyUserName/imgfit-cli/internal/manifest"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats <out_dir_or_manifest>",
	Short: "Display statistics for a fitted output directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(_ *cobra.Command, args []string) error {
	m, err := manifest.ReadJSON(args[0])
	if err != nil {
		return err
	}
	printStats(m)
	return nil
}

func printStats(m *manifest.Manifest) {
	fmt.Println()
	fmt.Printf("  Manifest version: %d\n", m.Version)
	fmt.Printf("  Generated:        %s\n", m.GeneratedAt)
	fmt.Printf("  Profile:          %s\n", m.Profile)
	if b := m.BuildInfo; b != nil {
		fmt.Printf("  Ceiling:          %d KB\n", b.CeilingKB)
		fmt.Printf("  Quality:          start %d, step %d\n", b.StartQuality, b.Step)
		fmt.Printf("  Base size:        %d\n", b.BaseSize)
		fmt.Printf("  Workers:          %d\n", b.Workers)
	}
	fmt.Println()

	s := m.Stats
	fmt.Printf("  Total files:      %d\n", s.TotalFiles)
	fmt.Printf("  Total outputs:    %d\n", s.TotalOutputs)
	fmt.Printf("  Input size:       %s\n", formatBytes(s.TotalInputBytes))
	fmt.Printf("  Output size:      %s\n", formatBytes(s.TotalOutputBytes))
	if s.TotalInputBytes > 0 {
		ratio := float64(s.TotalOutputBytes) / float64(s.TotalInputBytes) * 100
		fmt.Printf("  Compression:      %.1f%% of original\n", ratio)
	}
	fmt.Println()

	// Per-format breakdown.
	formatStats := map[string]struct {
		count int
		bytes int64
	}{}
	// Per-quality breakdown, with the number of encodes it took.
	qualityStats := map[int]struct {
		count    int
		attempts int
	}{}
	for _, e := range m.Files {
		if e.Output == nil {
			continue
		}
		fs := formatStats[e.Output.Format]
		fs.count++
		fs.bytes += e.Output.Size
		formatStats[e.Output.Format] = fs

		qs := qualityStats[e.Output.Quality]
		qs.count++
		qs.attempts += e.Output.Attempts
		qualityStats[e.Output.Quality] = qs
	}

	fmt.Println("  Format breakdown:")
	for _, f := range []string{"avif", "webp", "jpeg"} {
		if fs, ok := formatStats[f]; ok {
			fmt.Printf("    %-6s  %4d files  %s\n", f, fs.count, formatBytes(fs.bytes))
		}
	}
	fmt.Println()

	var qualities []int
	for q := range qualityStats {
		qualities = append(qualities, q)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(qualities)))
	fmt.Println("  Quality breakdown:")
	for _, q := range qualities {
		qs := qualityStats[q]
		fmt.Printf("    q=%-3d  %4d files  %.1f encodes avg\n", q, qs.count, float64(qs.attempts)/float64(qs.count))
	}
	fmt.Println()

	var warnings []string
	for key, e := range m.Files {
		if e.Output == nil && !e.Skipped {
			warnings = append(warnings, fmt.Sprintf("file %q has no output", key))
		}
		if e.Output != nil && !e.Output.Fits {
			warnings = append(warnings, fmt.Sprintf("file %q is over the ceiling (%s)", key, formatBytes(e.Output.Size)))
		}
	}
	sort.Strings(warnings)
	if len(warnings) > 0 {
		fmt.Printf("  Warnings (%d):\n", len(warnings))
		for _, w := range warnings {
			fmt.Printf("    ⚠ %s\n", w)
		}
		fmt.Println()
	}
}
