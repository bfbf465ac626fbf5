package pipeline

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/AnyUserName/imgfit-cli/internal/encoder"
	"github.com/AnyUserName/imgfit-cli/internal/fit"
	"github.com/AnyUserName/imgfit-cli/internal/hasher"
	"github.com/AnyUserName/imgfit-cli/internal/logger"
	"github.com/AnyUserName/imgfit-cli/internal/manifest"
	"github.com/AnyUserName/imgfit-cli/internal/profile"
	"github.com/AnyUserName/imgfit-cli/internal/sample"
)

// Fitted is a decoded, downsampled and size-bounded image.
type Fitted struct {
	fit.Result
	OrigWidth, OrigHeight int
	Width, Height         int
}

// MaxPixels bounds the images FitBytes will fully decode.
const MaxPixels = 16384 * 16384

// FitBytes runs decode → downsample → size-bounded encode on raw image bytes.
// The header is read first so unusable or oversized images are rejected
// before the full decode.
func FitBytes(f *fit.Encoder, data []byte, prof profile.Profile) (Fitted, error) {
	if len(data) == 0 {
		return Fitted{}, fmt.Errorf("%w: zero-byte image", fit.ErrInvalidInput)
	}
	hdr, format, err := encoder.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Fitted{}, fmt.Errorf("%w: %v", fit.ErrCodec, err)
	}
	if hdr.Width <= 0 || hdr.Height <= 0 || int64(hdr.Width)*int64(hdr.Height) > MaxPixels {
		return Fitted{}, fmt.Errorf("%w: %s image is %dx%d", fit.ErrInvalidInput, format, hdr.Width, hdr.Height)
	}

	img, err := f.Decode(data)
	if err != nil {
		return Fitted{}, err
	}
	ob := img.Bounds()

	img = sample.Downsample(img, prof.BaseSize)
	b := img.Bounds()

	res, err := f.Compress(img, prof.FitOptions())
	if err != nil {
		return Fitted{}, err
	}
	return Fitted{
		Result:     res,
		OrigWidth:  ob.Dx(),
		OrigHeight: ob.Dy(),
		Width:      b.Dx(),
		Height:     b.Dy(),
	}, nil
}

// processResult holds the result of processing a single source image.
type processResult struct {
	key   string
	entry manifest.Entry
	err   error
}

type processor struct {
	fit           *fit.Encoder
	enc           encoder.Encoder
	profile       profile.Profile
	outputDir     string
	noRegressSize bool
	log           *logger.Logger
}

// process handles a single source image: read, fit, write.
func (p *processor) process(src Source) processResult {
	result := processResult{key: src.Key}

	data, err := os.ReadFile(src.AbsPath)
	if err != nil {
		result.err = fmt.Errorf("read %s: %w", src.RelPath, err)
		return result
	}

	fitted, err := FitBytes(p.fit, data, p.profile)
	if err != nil {
		result.err = fmt.Errorf("fit %s: %w", src.RelPath, err)
		return result
	}

	result.entry.Original = manifest.OriginalInfo{
		Width:  fitted.OrigWidth,
		Height: fitted.OrigHeight,
		Format: src.Format,
		Size:   src.Size,
	}

	fits := fitted.Fits(p.profile.CeilingKB)
	if !fits {
		p.log.Warn().
			Str("key", src.Key).
			Int("size_kb", fitted.SizeKB()).
			Int("ceiling_kb", p.profile.CeilingKB).
			Msg("over ceiling at quality floor")
	}

	// Skip output if encoded size >= original (--no-regress-size).
	if p.noRegressSize && int64(len(fitted.Data)) >= src.Size {
		p.log.Debug().
			Str("key", src.Key).
			Int("encoded", len(fitted.Data)).
			Int64("original", src.Size).
			Msg("skip: not smaller than source")
		result.entry.Skipped = true
		return result
	}

	contentHash := hasher.ContentHash(fitted.Data, hasher.FullLen)

	// Build filename: key.hash8.ext, mirroring the source sub-directory.
	keyDir := path.Dir(src.Key)
	fileName := fmt.Sprintf("%s.%s.%s", path.Base(src.Key), contentHash[:8], p.enc.Extension())
	relPath := path.Join(keyDir, fileName)

	if err := saveFile(filepath.Join(p.outputDir, filepath.FromSlash(relPath)), fitted.Data); err != nil {
		result.err = fmt.Errorf("write %s: %w", relPath, err)
		return result
	}

	result.entry.Output = &manifest.Output{
		Format:   p.enc.Format(),
		Width:    fitted.Width,
		Height:   fitted.Height,
		Size:     int64(len(fitted.Data)),
		Quality:  fitted.Quality,
		Attempts: fitted.Attempts,
		Fits:     fits,
		Hash:     contentHash,
		Path:     relPath,
	}
	p.log.Debug().
		Str("key", src.Key).
		Int("quality", fitted.Quality).
		Int("attempts", fitted.Attempts).
		Msg("done")
	return result
}

// saveFile creates parent directories and writes data. A partially written
// file is removed.
func saveFile(dst string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		os.Remove(dst)
		return err
	}
	return nil
}
