// Package upload posts an encoded image as multipart/form-data.
package upload

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/AnyUserName/imgfit-cli/internal/logger"
)

const (
	DefaultFieldName      = "uploadedfile"
	DefaultConnectTimeout = 5 * time.Second
	DefaultReadTimeout    = 30 * time.Second
	DefaultMaxRetries     = 2

	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes = 1 << 20
)

var ErrNoURL = errors.New("upload: no URL configured")

// StatusError is returned for any non-200 response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upload: server returned %d: %s", e.Code, e.Body)
}

// Temporary reports whether the request may succeed if retried: server
// errors and 429. Other 4xx responses are final.
func (e *StatusError) Temporary() bool {
	return e.Code >= 500 || e.Code == http.StatusTooManyRequests
}

// Config for a Client. Zero values take the defaults.
type Config struct {
	URL            string
	FieldName      string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	MaxRetries     int // retries after the first attempt; 0 = DefaultMaxRetries, negative disables
}

func (c Config) withDefaults() Config {
	if c.FieldName == "" {
		c.FieldName = DefaultFieldName
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	return c
}

// Client uploads files to a single endpoint.
type Client struct {
	cfg     Config
	http    *http.Client
	log     *logger.Logger
	backoff func() backoff.BackOff
}

// New creates a Client. A nil log discards output.
func New(cfg Config, log *logger.Logger) *Client {
	cfg = cfg.withDefaults()
	if log == nil {
		log = logger.Nop()
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: cfg.ConnectTimeout}).DialContext,
		TLSHandshakeTimeout:   cfg.ConnectTimeout,
		ResponseHeaderTimeout: cfg.ReadTimeout,
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Transport: transport},
		log:  log,
		backoff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
	}
}

// ContentType guesses the part content type from the file extension.
func ContentType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".bmp":
		return "image/bmp"
	case ".webp":
		return "image/webp"
	case ".avif":
		return "image/avif"
	default:
		return "application/octet-stream"
	}
}

// Upload posts data as a single file part named after filename and returns
// the response body with each line trimmed and blank lines dropped.
// Transport errors, 5xx and 429 responses are retried; other statuses are not.
func (c *Client) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	if c.cfg.URL == "" {
		return "", ErrNoURL
	}
	body, contentType, err := c.encodeForm(filename, data)
	if err != nil {
		return "", err
	}

	var resp string
	attempt := 0
	op := func() error {
		attempt++
		r, err := c.post(ctx, body, contentType)
		if err == nil {
			resp = r
			return nil
		}
		var se *StatusError
		if errors.As(err, &se) && !se.Temporary() {
			return backoff.Permanent(err)
		}
		if ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		c.log.Warn().Err(err).Int("attempt", attempt).Str("file", filename).Msg("upload failed")
		return err
	}

	b := backoff.WithContext(backoff.WithMaxRetries(c.backoff(), uint64(c.cfg.MaxRetries)), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return "", err
	}
	c.log.Debug().Str("file", filename).Int("bytes", len(data)).Int("attempts", attempt).Msg("uploaded")
	return resp, nil
}

func (c *Client) encodeForm(filename string, data []byte) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`,
		c.cfg.FieldName, filepath.Base(filename)))
	h.Set("Content-Type", ContentType(filename))

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("create form part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", fmt.Errorf("write form part: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func (c *Client) post(ctx context.Context, body []byte, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.ConnectTimeout+c.cfg.ReadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", contentType)

	res, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("post %s: %w", c.cfg.URL, err)
	}
	defer res.Body.Close()

	text, err := readLines(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		return "", &StatusError{Code: res.StatusCode, Body: text}
	}
	return text, nil
}

// readLines concatenates trimmed non-empty lines.
func readLines(r io.Reader) (string, error) {
	var sb strings.Builder
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxResponseBytes)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			sb.WriteString(line)
		}
	}
	return sb.String(), sc.Err()
}
