// Package fetch retrieves company websites and condenses their HTML for
// model extraction.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/company-profiler/internal/apperr"
)

// userAgent identifies the profiler to target sites.
const userAgent = "Mozilla/5.0 (compatible; CompanyProfiler/1.0)"

// Config tunes the website fetcher.
type Config struct {
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxBytes    int64   `yaml:"max_bytes" mapstructure:"max_bytes"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// Fetcher retrieves a single page over plain HTTP. Redirects are followed
// by the underlying client; outbound requests share a rate limiter so
// batch analysis does not hammer target sites.
type Fetcher struct {
	client   *http.Client
	limiter  *rate.Limiter
	maxBytes int64
}

// New creates a Fetcher from config, applying defaults for zero values.
func New(cfg Config) *Fetcher {
	timeout := 15 * time.Second
	if cfg.TimeoutSecs > 0 {
		timeout = time.Duration(cfg.TimeoutSecs) * time.Second
	}
	maxBytes := int64(512 * 1024)
	if cfg.MaxBytes > 0 {
		maxBytes = cfg.MaxBytes
	}
	perSec := 4.0
	if cfg.RatePerSec > 0 {
		perSec = cfg.RatePerSec
	}

	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		limiter:  rate.NewLimiter(rate.Limit(perSec), 1),
		maxBytes: maxBytes,
	}
}

// FetchCondensed retrieves targetURL and returns its condensed text. A
// non-2xx response or transport failure surfaces as a client-facing fetch
// error carrying the upstream status or reason.
func (f *Fetcher) FetchCondensed(ctx context.Context, targetURL string) (string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return "", eris.Wrap(err, "fetch: rate limiter")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return "", apperr.FetchFailed(
			fmt.Sprintf("Unable to retrieve content from %s", targetURL), err.Error())
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", apperr.FetchFailed(
			fmt.Sprintf("Unable to retrieve content from %s", targetURL), err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", apperr.FetchFailed(
			fmt.Sprintf("Unable to retrieve content from %s", targetURL),
			fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode)))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return "", apperr.FetchFailed(
			fmt.Sprintf("Unable to retrieve content from %s", targetURL), err.Error())
	}

	zap.L().Debug("fetched website",
		zap.String("url", targetURL),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
	)

	// The byte cap can land mid-rune; drop invalid sequences so the
	// condensed text stays clean UTF-8.
	return Condense(strings.ToValidUTF8(string(body), "")), nil
}
