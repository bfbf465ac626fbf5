package profile

import (
	"errors"
	"testing"

	"github.com/AnyUserName/imgfit-cli/internal/fit"
)

func TestGet_BuiltIn(t *testing.T) {
	for _, name := range Names() {
		p := Get(name)
		if p.Name != name {
			t.Errorf("%s: name %q", name, p.Name)
		}
		if err := p.Validate(); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}

func TestGet_UnknownFallsBack(t *testing.T) {
	p := Get("custom")
	if p.Name != "custom" {
		t.Errorf("name: got %q", p.Name)
	}
	if p.CeilingKB != 100 || p.BaseSize != 480 {
		t.Errorf("expected upload defaults, got %+v", p)
	}
	if Known("custom") {
		t.Error("custom should not be known")
	}
	if Get("").Name != DefaultName {
		t.Errorf("empty name: got %q", Get("").Name)
	}
}

func TestValidate(t *testing.T) {
	p := Get("avatar")
	p.CeilingKB = 0
	if err := p.Validate(); !errors.Is(err, fit.ErrInvalidInput) {
		t.Errorf("zero ceiling: got %v", err)
	}

	p = Get("avatar")
	p.BaseSize = -1
	if err := p.Validate(); err == nil {
		t.Error("negative base size accepted")
	}
}

func TestFitOptions(t *testing.T) {
	opts := Get("preview").FitOptions()
	if opts.CeilingKB != 64 || opts.StartQuality != 100 || opts.Step != 10 {
		t.Errorf("options: %+v", opts)
	}
}
