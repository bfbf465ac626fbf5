package pipeline

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/AnyUserName/imgfit-cli/internal/encoder"
	"github.com/AnyUserName/imgfit-cli/internal/fit"
	"github.com/AnyUserName/imgfit-cli/internal/logger"
	"github.com/AnyUserName/imgfit-cli/internal/manifest"
	"github.com/AnyUserName/imgfit-cli/internal/profile"
)

// Config holds all parameters for a pipeline run.
type Config struct {
	Input         string // file or directory
	OutputDir     string
	Profile       profile.Profile
	Workers       int
	NoRegressSize bool // skip outputs not smaller than the source file
	Log           *logger.Logger
}

// Pipeline orchestrates image processing.
type Pipeline struct {
	cfg      Config
	registry *encoder.Registry
	log      *logger.Logger
}

// New creates a configured pipeline using the default encoder registry.
func New(cfg Config) *Pipeline {
	return NewWithRegistry(cfg, encoder.NewRegistry())
}

// NewWithRegistry creates a pipeline over a custom set of encoders.
func NewWithRegistry(cfg Config, registry *encoder.Registry) *Pipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	log := cfg.Log
	if log == nil {
		log = logger.Nop()
	}
	return &Pipeline{cfg: cfg, registry: registry, log: log}
}

// Run executes the pipeline and returns the manifest. Individual failures
// are logged; the run only fails when nothing could be processed.
func (p *Pipeline) Run() (*manifest.Manifest, error) {
	prof := p.cfg.Profile
	if err := prof.Validate(); err != nil {
		return nil, err
	}

	enc, exact, err := p.registry.Resolve(prof.Format)
	if err != nil {
		return nil, err
	}
	if !exact {
		p.log.Warn().Str("requested", prof.Format).Str("using", enc.Format()).Msg("format unavailable, falling back")
	}
	p.log.Debug().Msg(p.registry.String())

	sources, err := ScanImages(p.cfg.Input)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no images found in %s", p.cfg.Input)
	}
	p.log.Debug().Int("count", len(sources)).Msg("found images")

	proc := &processor{
		fit:           fit.New(encoder.NewCodec(enc), p.log),
		enc:           enc,
		profile:       prof,
		outputDir:     p.cfg.OutputDir,
		noRegressSize: p.cfg.NoRegressSize,
		log:           p.log,
	}

	results := make([]processResult, len(sources))
	var wg sync.WaitGroup
	sem := make(chan struct{}, p.cfg.Workers)

	for i, src := range sources {
		wg.Add(1)
		go func(idx int, s Source) {
			defer wg.Done()
			sem <- struct{}{}        // acquire
			defer func() { <-sem }() // release

			p.log.Debug().Str("key", s.Key).Msg("processing")
			results[idx] = proc.process(s)
		}(i, src)
	}
	wg.Wait()

	m := manifest.New(prof.Name)
	var failed int
	for _, r := range results {
		if r.err != nil {
			failed++
			p.log.Error().Err(r.err).Str("key", r.key).Msg("failed")
			continue
		}
		m.Files[r.key] = r.entry
	}

	if failed > 0 {
		if failed == len(sources) {
			return nil, fmt.Errorf("all %d images failed to process", failed)
		}
		p.log.Warn().Msgf("%d of %d images had errors", failed, len(sources))
	}

	m.BuildInfo = &manifest.BuildInfo{
		Workers:      p.cfg.Workers,
		CeilingKB:    prof.CeilingKB,
		StartQuality: prof.StartQuality,
		Step:         prof.Step,
		BaseSize:     prof.BaseSize,
		Format:       enc.Format(),
	}
	m.ComputeStats()
	return m, nil
}
