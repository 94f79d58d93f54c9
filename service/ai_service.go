package service

import (
	"context"
)

// StreamHandler receives completion deltas as they arrive.
type StreamHandler func(chunk string)

// AIService is the completion capability: one call per user query.
type AIService interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteStream(ctx context.Context, prompt string, handler StreamHandler) error
}
