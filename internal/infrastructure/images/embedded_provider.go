package images

import "context"

// 32x32 light grey PNG.
const embeddedPlaceholder = "iVBORw0KGgoAAAANSUhEUgAAACAAAAAgCAIAAAD8GO2jAAAAKklEQVR42u3NsQkAAAgDsP7/pzj4hFc4CIHsSfWcikAgEAgEAoFAIPgSLI/X3Jd49CIAAAAAAElFTkSuQmCC"

// 1x1 PNG returned only when every provider failed.
const emergencyPlaceholder = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

const EmbeddedPriority = 99

// EmbeddedProvider never does I/O and never fails.
type EmbeddedProvider struct{}

func NewEmbeddedProvider() *EmbeddedProvider { return &EmbeddedProvider{} }

func (EmbeddedProvider) Name() string    { return "embedded" }
func (EmbeddedProvider) Priority() int   { return EmbeddedPriority }
func (EmbeddedProvider) IsHealthy() bool { return true }

func (EmbeddedProvider) GetImage(context.Context, string) Result {
	return Result{Success: true, Payload: embeddedPlaceholder, Source: SourceEmbedded}
}
