package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/kkyr/fig"
)

const (
	EnvPrefix = "IMGFIT"
	FileName  = "imgfit.yaml"
)

// Config is the file/env configuration. CLI flags override it.
type Config struct {
	Profile string `fig:"profile" default:"upload"`
	Output  string `fig:"output" default:"./imgfit_out"`
	Workers int    `fig:"workers"`

	Log struct {
		Debug   bool `fig:"debug"`
		NoColor bool `fig:"no_color"`
	} `fig:"log"`

	// Fit values override the chosen profile when non-zero. BaseSize is
	// applied whenever it is set, so base_size: 0 turns downsampling off.
	Fit struct {
		CeilingKB    int    `fig:"ceiling_kb"`
		StartQuality int    `fig:"start_quality"`
		Step         int    `fig:"step"`
		BaseSize     *int   `fig:"base_size"`
		Format       string `fig:"format"`
	} `fig:"fit"`

	Upload struct {
		URL            string        `fig:"url"`
		Field          string        `fig:"field" default:"uploadedfile"`
		ConnectTimeout time.Duration `fig:"connect_timeout" default:"5s"`
		ReadTimeout    time.Duration `fig:"read_timeout" default:"30s"`
		MaxRetries     *int          `fig:"max_retries"` // unset = client default, 0 = no retries
	} `fig:"upload"`
}

// Load reads the configuration. With an explicit path the file must exist.
// Otherwise imgfit.yaml is looked up in the working directory and
// ~/.imgfit; when neither has one, defaults and IMGFIT_* env vars apply.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		err := fig.Load(&cfg,
			fig.File(filepath.Base(path)),
			fig.Dirs(filepath.Dir(path)),
			fig.UseEnv(EnvPrefix),
		)
		if err != nil {
			return nil, err
		}
		return &cfg, nil
	}

	dirs := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".imgfit"))
	}
	err := fig.Load(&cfg, fig.File(FileName), fig.Dirs(dirs...), fig.UseEnv(EnvPrefix))
	if errors.Is(err, fig.ErrFileNotFound) {
		cfg = Config{}
		err = fig.Load(&cfg, fig.IgnoreFile(), fig.UseEnv(EnvPrefix))
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
