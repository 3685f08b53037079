package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"syscall"
	"time"
)

// ErrAttemptTimeout is returned when a single attempt exceeds Options.Timeout.
var ErrAttemptTimeout = errors.New("retry: attempt timed out")

// Options controls Do. Start from DefaultOptions and override fields;
// the zero value means "no retries, no delay, no per-attempt timeout, retry nothing".
type Options struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	// Timeout bounds each attempt. Zero disables the per-attempt timeout.
	Timeout time.Duration

	RetryOn5xx          bool
	RetryOnTimeout      bool
	RetryOnNetworkError bool

	// OnRetry runs before each retry with the retry number (1-based) and the
	// error that caused it.
	OnRetry func(retry int, err error)
}

func DefaultOptions() Options {
	return Options{
		MaxRetries:          3,
		InitialDelay:        time.Second,
		MaxDelay:            10 * time.Second,
		Timeout:             30 * time.Second,
		RetryOn5xx:          true,
		RetryOnTimeout:      true,
		RetryOnNetworkError: true,
	}
}

// Result is the outcome of Do. Err holds the last error when Success is false.
type Result[T any] struct {
	Success       bool
	Data          T
	Err           error
	Attempts      int
	TotalDuration time.Duration
}

// Delay returns the backoff before retry n (1-based): min(initial*2^(n-1), max).
func Delay(retry int, initial, max time.Duration) time.Duration {
	if retry < 1 || initial <= 0 {
		return 0
	}
	d := initial
	for i := 1; i < retry; i++ {
		if max > 0 && d >= max {
			return max
		}
		d *= 2
	}
	if max > 0 && d > max {
		return max
	}
	return d
}

// Do runs op until it succeeds, a non-retryable error is returned, retries are
// exhausted, or ctx is done. Attempts are strictly sequential.
func Do[T any](ctx context.Context, op func(ctx context.Context) (T, error), opts Options) Result[T] {
	start := time.Now()
	res := Result[T]{}

	for attempt := 0; attempt <= opts.MaxRetries; attempt++ {
		if attempt > 0 {
			if opts.OnRetry != nil {
				opts.OnRetry(attempt, res.Err)
			}
			if err := sleep(ctx, Delay(attempt, opts.InitialDelay, opts.MaxDelay)); err != nil {
				res.Err = fmt.Errorf("retry aborted after %d attempts: %w", res.Attempts, err)
				break
			}
		}

		res.Attempts++
		data, err := runAttempt(ctx, op, opts.Timeout)
		if err == nil {
			res.Success = true
			res.Data = data
			res.Err = nil
			res.TotalDuration = time.Since(start)
			return res
		}
		res.Err = err

		// The caller gave up; an attempt timeout leaves ctx intact.
		if ctx.Err() != nil {
			break
		}
		if !IsRetryable(err, opts) {
			break
		}
	}

	res.TotalDuration = time.Since(start)
	return res
}

func runAttempt[T any](ctx context.Context, op func(ctx context.Context) (T, error), timeout time.Duration) (T, error) {
	if timeout <= 0 {
		return op(ctx)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		data T
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		data, err := op(attemptCtx)
		done <- outcome{data: data, err: err}
	}()

	select {
	case out := <-done:
		return out.data, out.err
	case <-attemptCtx.Done():
		var zero T
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		return zero, fmt.Errorf("%w after %s", ErrAttemptTimeout, timeout)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsRetryable classifies err:
//   - an undecodable 2xx body is never retried: the call already succeeded upstream
//   - timeouts follow RetryOnTimeout
//   - network failures follow RetryOnNetworkError
//   - HTTP 5xx follows RetryOn5xx, HTTP 4xx is never retried
//   - anything else follows RetryOnNetworkError
func IsRetryable(err error, opts Options) bool {
	if err == nil || errors.Is(err, ErrDecodeBody) {
		return false
	}
	if IsTimeout(err) {
		return opts.RetryOnTimeout
	}
	if IsNetworkError(err) {
		return opts.RetryOnNetworkError
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		switch {
		case httpErr.StatusCode >= 500 && httpErr.StatusCode < 600:
			return opts.RetryOn5xx
		case httpErr.StatusCode >= 400 && httpErr.StatusCode < 500:
			return false
		}
	}
	return opts.RetryOnNetworkError
}

func IsTimeout(err error) bool {
	if errors.Is(err, ErrAttemptTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func IsNetworkError(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
