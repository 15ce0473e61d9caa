package imagegen

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"jewelshot/internal/domain"
)

// Stats counts gateway outcomes for the metrics endpoint.
type Stats struct {
	Succeeded atomic.Int64
	Failed    atomic.Int64
	Images    atomic.Int64
}

// Gateway fans a photoshoot request out to the synthesizer, one call per
// variant, and joins the results.
type Gateway struct {
	synth    Synthesizer
	variants []domain.GenerationVariant
	logger   zerolog.Logger
	stats    *Stats
}

// Option customizes a Gateway.
type Option func(*Gateway)

// WithLogger sets the gateway logger.
func WithLogger(l zerolog.Logger) Option {
	return func(g *Gateway) { g.logger = l }
}

// WithStats records outcomes into s.
func WithStats(s *Stats) Option {
	return func(g *Gateway) { g.stats = s }
}

// NewGateway builds a gateway over synth using the fixed variants.
func NewGateway(synth Synthesizer, opts ...Option) *Gateway {
	g := &Gateway{
		synth:    synth,
		variants: domain.Variants,
		logger:   zerolog.New(io.Discard),
		stats:    &Stats{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type variantResult struct {
	payload *domain.ImagePayload
	err     error
}

// Synthesize runs every variant concurrently and returns the produced images
// in variant order. Individual variant failures are tolerated; the call only
// fails when no variant produced an image.
func (g *Gateway) Synthesize(ctx context.Context, req *domain.PhotoshootRequest) ([]domain.ImagePayload, error) {
	if req == nil {
		return nil, errors.New("imagegen: nil request")
	}
	if g.synth == nil {
		return nil, domain.ErrMissingCredential
	}
	if err := g.synth.Ready(); err != nil {
		g.stats.Failed.Add(1)
		return nil, err
	}

	images := req.ReferenceImages()
	results := make([]variantResult, len(g.variants))
	started := time.Now()

	var wg sync.WaitGroup
	for i, variant := range g.variants {
		wg.Add(1)
		go func() {
			defer wg.Done()
			payload, err := g.synth.Synthesize(ctx, Call{
				VariantID: variant.ID,
				Images:    images,
				Prompt:    BuildPrompt(variant, req),
			})
			if payload != nil && payload.VariantID == "" {
				payload.VariantID = variant.ID
			}
			results[i] = variantResult{payload: payload, err: err}
		}()
	}
	wg.Wait()

	out, err := g.collect(req, results)
	if err != nil {
		g.stats.Failed.Add(1)
		g.logger.Warn().
			Err(err).
			Str("request_id", req.ID()).
			Dur("elapsed", time.Since(started)).
			Msg("imagegen: photoshoot produced no images")
		return nil, err
	}
	g.stats.Succeeded.Add(1)
	g.stats.Images.Add(int64(len(out)))
	g.logger.Info().
		Str("request_id", req.ID()).
		Int("images", len(out)).
		Dur("elapsed", time.Since(started)).
		Msg("imagegen: photoshoot synthesized")
	return out, nil
}

func (g *Gateway) collect(req *domain.PhotoshootRequest, results []variantResult) ([]domain.ImagePayload, error) {
	var (
		out      []domain.ImagePayload
		firstErr error
		failures int
	)
	for i, res := range results {
		variant := g.variants[i]
		if res.err != nil {
			failures++
			if firstErr == nil {
				firstErr = res.err
			}
			g.logger.Warn().
				Err(res.err).
				Str("request_id", req.ID()).
				Str("variant", variant.ID).
				Msg("imagegen: variant failed")
			continue
		}
		if res.payload == nil || len(res.payload.Data) == 0 {
			g.logger.Debug().
				Str("request_id", req.ID()).
				Str("variant", variant.ID).
				Msg("imagegen: variant returned no inline image")
			continue
		}
		out = append(out, *res.payload)
	}
	if len(out) > 0 {
		return out, nil
	}
	// All variants errored; report the first error in variant order.
	if failures == len(results) {
		return nil, firstErr
	}
	return nil, fmt.Errorf("%w (%d of %d variants failed)", domain.ErrNoUsableResult, failures, len(results))
}
