package imagegen

import (
	"context"

	"jewelshot/internal/domain"
)

// Call is a single request to the synthesis capability: every reference
// image plus one variant prompt.
type Call struct {
	VariantID string
	// Images is shared by every variant of a run and must not be modified.
	Images    []domain.ReferenceImage
	Prompt    string
}

// Synthesizer is the boundary to the external image model.
type Synthesizer interface {
	// Ready reports configuration problems (for example a missing API key)
	// without touching the network.
	Ready() error
	// Synthesize returns the first inline image of the response, or nil when
	// the response carried none.
	Synthesize(ctx context.Context, call Call) (*domain.ImagePayload, error)
}
