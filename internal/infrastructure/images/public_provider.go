package images

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"net/http"
	"time"
)

// PublicAssetProvider serves the public default asset, always as PNG.
type PublicAssetProvider struct {
	client  *http.Client
	url     string
	timeout time.Duration
	breaker *Breaker
}

func NewPublicAssetProvider(client *http.Client, url string, timeout time.Duration, breaker *Breaker) *PublicAssetProvider {
	if breaker == nil {
		breaker = NewBreaker(DefaultFailureThreshold, DefaultCooldown)
	}
	return &PublicAssetProvider{client: client, url: url, timeout: timeout, breaker: breaker}
}

func (p *PublicAssetProvider) Name() string    { return "public" }
func (p *PublicAssetProvider) Priority() int   { return 2 }
func (p *PublicAssetProvider) IsHealthy() bool { return p.breaker.Healthy() }

func (p *PublicAssetProvider) GetImage(ctx context.Context, _ string) Result {
	start := time.Now()
	var payload string

	err := p.breaker.ExecuteContext(ctx, func() error {
		body, mt, err := fetch(ctx, p.client, p.url, p.timeout)
		if err != nil {
			return err
		}
		if !mt.Is("image/png") {
			if body, err = toPNG(body); err != nil {
				return fmt.Errorf("convert %s to png: %w", mt.String(), err)
			}
		}
		payload = base64.StdEncoding.EncodeToString(body)
		return nil
	})
	if err != nil {
		return failed(SourcePublic, start, err)
	}
	return Result{Success: true, Payload: payload, Source: SourcePublic, Latency: time.Since(start)}
}

func toPNG(raw []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
