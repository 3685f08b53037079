package images

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"checkout_service/internal/infrastructure/retry"
)

// Source identifies which step of the chain produced an image.
type Source string

const (
	SourceStore     Source = "store"
	SourcePublic    Source = "public"
	SourceEmbedded  Source = "embedded"
	SourceEmergency Source = "emergency"
)

// Result of a single resolution. Payload is the base64 encoded image.
type Result struct {
	Success bool
	Payload string
	Source  Source
	Err     string
	Latency time.Duration
	Cached  bool
}

// Provider is one strategy for producing an image. Lower priorities are
// tried first.
type Provider interface {
	Name() string
	Priority() int
	GetImage(ctx context.Context, ref string) Result
	IsHealthy() bool
}

const maxImageBytes = 5 << 20

var (
	ErrNotImage   = errors.New("images: response is not an image")
	ErrEmptyImage = errors.New("images: empty response body")
	ErrNoURL      = errors.New("images: no url configured")
)

func failed(source Source, start time.Time, err error) Result {
	return Result{Source: source, Err: err.Error(), Latency: time.Since(start)}
}

// fetch downloads rawURL and checks that the body sniffs as an image.
func fetch(ctx context.Context, client *http.Client, rawURL string, timeout time.Duration) ([]byte, *mimetype.MIME, error) {
	if rawURL == "" {
		return nil, nil, ErrNoURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, &retry.HTTPError{StatusCode: resp.StatusCode, Status: resp.Status}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, nil, fmt.Errorf("read image body: %w", err)
	}
	if len(body) == 0 {
		return nil, nil, ErrEmptyImage
	}
	mt := mimetype.Detect(body)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotImage, mt.String())
	}
	return body, mt, nil
}

func isAbsoluteURL(ref string) bool {
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
