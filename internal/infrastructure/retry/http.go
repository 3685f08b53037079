package retry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

const maxResponseBody = 1 << 20

// ErrDecodeBody marks a 2xx response whose body is not valid JSON for T.
var ErrDecodeBody = errors.New("decode response body")

// HTTPError is a non-2xx response. 4xx is permanent, 5xx is retryable.
type HTTPError struct {
	StatusCode int
	Status     string
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("unexpected http status %d", e.StatusCode)
}

// SendJSON performs one request and decodes a 2xx body into T.
// Any other status becomes an *HTTPError carrying the body.
func SendJSON[T any](client *http.Client, req *http.Request) (T, error) {
	var out T
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return out, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return out, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return out, &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status, Body: body}
	}
	if len(body) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("%w: %w", ErrDecodeBody, err)
	}
	return out, nil
}

// DoHTTP retries an HTTP call built by newRequest. The request is rebuilt per
// attempt so bodies are never reused. A 2xx whose body does not decode into T
// ends the loop with ErrDecodeBody.
func DoHTTP[T any](ctx context.Context, client *http.Client, newRequest func(ctx context.Context) (*http.Request, error), opts Options) Result[T] {
	return Do(ctx, func(ctx context.Context) (T, error) {
		req, err := newRequest(ctx)
		if err != nil {
			var zero T
			return zero, err
		}
		return SendJSON[T](client, req)
	}, opts)
}
