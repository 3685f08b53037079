package observability

import "go.uber.org/zap"

// NewLogger builds the process logger.
func NewLogger(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
