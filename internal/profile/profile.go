package profile

import (
	"fmt"
	"sort"

	"github.com/AnyUserName/imgfit-cli/internal/fit"
	"github.com/AnyUserName/imgfit-cli/internal/sample"
)

// DefaultName is used when no profile is requested or the name is unknown.
const DefaultName = "upload"

// Profile defines the size budget and downsampling for one kind of target.
type Profile struct {
	Name         string
	CeilingKB    int    // size budget in whole KB
	StartQuality int    // first quality tried, 1-100
	Step         int    // quality decrement per retry
	BaseSize     int    // shortest-side base for downsampling, 0 = keep size
	Format       string // output format, falls back to jpeg when unavailable
}

// Built-in profiles.
var profiles = map[string]Profile{
	"upload": {
		Name:         "upload",
		CeilingKB:    100,
		StartQuality: fit.DefaultStartQuality,
		Step:         fit.DefaultStep,
		BaseSize:     sample.Base480,
		Format:       "jpeg",
	},
	"preview": {
		Name:         "preview",
		CeilingKB:    64,
		StartQuality: fit.DefaultStartQuality,
		Step:         fit.DefaultStep,
		BaseSize:     sample.Base320,
		Format:       "jpeg",
	},
	"avatar": {
		Name:         "avatar",
		CeilingKB:    32,
		StartQuality: fit.DefaultStartQuality,
		Step:         fit.DefaultStep,
		BaseSize:     sample.Base160,
		Format:       "jpeg",
	},
	"original": {
		Name:         "original",
		CeilingKB:    100,
		StartQuality: fit.DefaultStartQuality,
		Step:         fit.DefaultStep,
		BaseSize:     0,
		Format:       "jpeg",
	},
}

// Get returns a profile by name. Falls back to upload if unknown.
func Get(name string) Profile {
	if p, ok := profiles[name]; ok {
		return p
	}
	p := profiles[DefaultName]
	if name != "" {
		p.Name = name // preserve requested name
	}
	return p
}

// Known reports whether name is a built-in profile.
func Known(name string) bool {
	_, ok := profiles[name]
	return ok
}

// Names lists the built-in profiles alphabetically.
func Names() []string {
	names := make([]string, 0, len(profiles))
	for n := range profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// FitOptions converts the profile to options for fit.Encoder.Compress.
func (p Profile) FitOptions() fit.Options {
	return fit.Options{
		CeilingKB:    p.CeilingKB,
		StartQuality: p.StartQuality,
		Step:         p.Step,
	}
}

// Validate checks that the profile can drive a compression run.
func (p Profile) Validate() error {
	if p.BaseSize < 0 {
		return fmt.Errorf("profile %q: base size must not be negative, got %d", p.Name, p.BaseSize)
	}
	if err := p.FitOptions().Validate(); err != nil {
		return fmt.Errorf("profile %q: %w", p.Name, err)
	}
	return nil
}
