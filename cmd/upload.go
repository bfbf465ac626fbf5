package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/AnyUserName/imgfit-cli/internal/encoder"
	"github.com/AnyUserName/imgfit-cli/internal/fit"
	"github.com/AnyUserName/imgfit-cli/internal/pipeline"
	"github.com/AnyUserName/imgfit-cli/internal/upload"
	"github.com/spf13/cobra"
)

var (
	uploadURL   string
	uploadField string
	uploadSave  string
)

var uploadCmd = &cobra.Command{
	Use:   "upload <image>",
	Short: "Fit one image under the ceiling and POST it as multipart/form-data",
	Long: `Downsamples and re-encodes the image like "fit", then uploads the result
as a single file part. The server's response body is printed with blank
lines removed. 5xx responses and network errors are retried.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVar(&uploadURL, "url", "", "upload endpoint (default from config)")
	uploadCmd.Flags().StringVar(&uploadField, "field", "", "form field name (default from config)")
	uploadCmd.Flags().StringVar(&uploadSave, "save", "", "also write the fitted image to this path")
	addProfileFlags(uploadCmd)
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	src := args[0]

	prof, err := resolveProfile()
	if err != nil {
		return err
	}
	enc, exact, err := encoder.NewRegistry().Resolve(prof.Format)
	if err != nil {
		return err
	}
	if !exact {
		log.Warn().Str("requested", prof.Format).Str("using", enc.Format()).Msg("format unavailable, falling back")
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read %s: %w", src, err)
	}
	fitted, err := pipeline.FitBytes(fit.New(encoder.NewCodec(enc), log), data, prof)
	if err != nil {
		return fmt.Errorf("fit %s: %w", src, err)
	}
	if !fitted.Fits(prof.CeilingKB) {
		log.Warn().Int("size_kb", fitted.SizeKB()).Int("ceiling_kb", prof.CeilingKB).Msg("over ceiling at quality floor")
	}
	log.Info().
		Str("file", src).
		Str("from", formatBytes(int64(len(data)))).
		Str("to", formatBytes(int64(len(fitted.Data)))).
		Int("quality", fitted.Quality).
		Msg("fitted")

	if uploadSave != "" {
		if err := os.MkdirAll(filepath.Dir(uploadSave), 0o755); err != nil {
			return fmt.Errorf("save: %w", err)
		}
		if err := os.WriteFile(uploadSave, fitted.Data, 0o644); err != nil {
			return fmt.Errorf("save: %w", err)
		}
	}

	uc := upload.Config{
		URL:            cfg.Upload.URL,
		FieldName:      cfg.Upload.Field,
		ConnectTimeout: cfg.Upload.ConnectTimeout,
		ReadTimeout:    cfg.Upload.ReadTimeout,
		MaxRetries:     maxRetries(cfg.Upload.MaxRetries),
	}
	if uploadURL != "" {
		uc.URL = uploadURL
	}
	if uploadField != "" {
		uc.FieldName = uploadField
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	name := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)) + "." + enc.Extension()
	resp, err := upload.New(uc, log).Upload(ctx, name, fitted.Data)
	if err != nil {
		return err
	}
	fmt.Println(resp)
	return nil
}

// maxRetries maps the config value onto upload.Config: unset keeps the
// client default and an explicit 0 disables retries.
func maxRetries(n *int) int {
	switch {
	case n == nil:
		return 0
	case *n <= 0:
		return -1
	default:
		return *n
	}
}
