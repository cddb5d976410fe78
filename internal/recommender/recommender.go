// Package recommender asks a chat-completion model for a PC parts list and
// decodes its JSON answer into build components.
package recommender

import (
	"context"
	"errors"

	"github.com/angelmondragon/pcforge-backend/pkg/types"
)

var (
	// ErrRateLimited means the provider rejected the call for rate or quota reasons.
	ErrRateLimited = errors.New("recommender: rate limited")
	// ErrNotConfigured means no API key is available.
	ErrNotConfigured = errors.New("recommender: not configured")
)

// Result is the model's answer before catalog reconciliation. Zero values
// mean the model omitted the field.
type Result struct {
	Analysis           string
	Components         []types.BuildComponent
	TotalPrice         string
	PerformanceRating  int
	EstimatedPowerDraw string
}

// Recommender produces a parts list for a questionnaire.
type Recommender interface {
	Recommend(ctx context.Context, req types.BuildRequirements) (Result, error)
}
