package images

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"
)

// StoreProvider fetches the referenced image from the primary store and falls
// back to the store's default image.
type StoreProvider struct {
	client     *http.Client
	defaultURL string
	timeout    time.Duration
	breaker    *Breaker
}

func NewStoreProvider(client *http.Client, defaultURL string, timeout time.Duration, breaker *Breaker) *StoreProvider {
	if breaker == nil {
		breaker = NewBreaker(DefaultFailureThreshold, DefaultCooldown)
	}
	return &StoreProvider{client: client, defaultURL: defaultURL, timeout: timeout, breaker: breaker}
}

func (p *StoreProvider) Name() string    { return "store" }
func (p *StoreProvider) Priority() int   { return 1 }
func (p *StoreProvider) IsHealthy() bool { return p.breaker.Healthy() }

func (p *StoreProvider) GetImage(ctx context.Context, ref string) Result {
	start := time.Now()
	var payload string

	err := p.breaker.ExecuteContext(ctx, func() error {
		if isAbsoluteURL(ref) {
			body, _, err := fetch(ctx, p.client, ref, p.timeout)
			if err == nil {
				payload = base64.StdEncoding.EncodeToString(body)
				return nil
			}
		}
		body, _, err := fetch(ctx, p.client, p.defaultURL, p.timeout)
		if err != nil {
			return fmt.Errorf("store default image: %w", err)
		}
		payload = base64.StdEncoding.EncodeToString(body)
		return nil
	})
	if err != nil {
		return failed(SourceStore, start, err)
	}
	return Result{Success: true, Payload: payload, Source: SourceStore, Latency: time.Since(start)}
}
