package interfaces

import "context"

// IImageResolver always returns a non-empty base64 encoded image.
type IImageResolver interface {
	ResolveBase64(ctx context.Context, ref string) string
}
