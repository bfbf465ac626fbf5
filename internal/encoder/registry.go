package encoder

import (
	"fmt"
	"strings"
)

// DefaultFormat is used whenever a requested format is unavailable.
const DefaultFormat = "jpeg"

// priority is the order formats are listed in.
var priority = []string{"avif", "webp", "jpeg"}

// Registry holds all available encoders keyed by format.
type Registry struct {
	encoders map[string]Encoder
}

// NewRegistry creates a registry, probing all encoders for availability.
func NewRegistry() *Registry {
	return NewRegistryWith(NewAVIFEncoder(), NewWebPEncoder(), &JPEGEncoder{})
}

// NewRegistryWith registers only the given encoders that report Available.
func NewRegistryWith(all ...Encoder) *Registry {
	r := &Registry{encoders: make(map[string]Encoder)}
	for _, enc := range all {
		if enc.Available() {
			r.encoders[enc.Format()] = enc
		}
	}
	return r
}

// Get returns an encoder for the given format, or nil if unavailable.
// "jpg" is accepted as an alias of "jpeg".
func (r *Registry) Get(format string) Encoder {
	return r.encoders[normalize(format)]
}

// Resolve returns the encoder for format, falling back to DefaultFormat.
// The bool is false when the fallback was used.
func (r *Registry) Resolve(format string) (Encoder, bool, error) {
	if enc := r.Get(format); enc != nil {
		return enc, true, nil
	}
	if enc := r.encoders[DefaultFormat]; enc != nil {
		return enc, false, nil
	}
	return nil, false, fmt.Errorf("no encoder for %q and no %s fallback", format, DefaultFormat)
}

// Available returns all available format names in priority order.
func (r *Registry) Available() []string {
	var result []string
	for _, f := range priority {
		if _, ok := r.encoders[f]; ok {
			result = append(result, f)
		}
	}
	return result
}

// String returns a summary of available encoders.
func (r *Registry) String() string {
	avail := r.Available()
	if len(avail) == 0 {
		return "no encoders available"
	}
	return fmt.Sprintf("encoders: %s", strings.Join(avail, ", "))
}

func normalize(format string) string {
	f := strings.ToLower(strings.TrimPrefix(format, "."))
	if f == "jpg" {
		return "jpeg"
	}
	return f
}
