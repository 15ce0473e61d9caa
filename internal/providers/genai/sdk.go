package genai

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	gensdk "github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"jewelshot/internal/domain"
	"jewelshot/internal/imagegen"
)

// SDKSynthesizer talks to Gemini through the official Go SDK.
type SDKSynthesizer struct {
	model  string
	logger zerolog.Logger

	mu     sync.Mutex
	client *gensdk.Client
}

// NewSDKSynthesizer creates the SDK client when an API key is present. With
// no key the synthesizer is returned unconfigured and Ready reports it.
func NewSDKSynthesizer(ctx context.Context, opts Options) (*SDKSynthesizer, error) {
	s := &SDKSynthesizer{
		model:  strings.TrimSpace(opts.Model),
		logger: zerolog.New(io.Discard),
	}
	if s.model == "" {
		s.model = DefaultModel
	}
	if opts.Logger != nil {
		s.logger = *opts.Logger
	}
	key := strings.TrimSpace(opts.APIKey)
	if key == "" {
		return s, nil
	}
	clientOpts := []option.ClientOption{option.WithAPIKey(key)}
	if opts.HTTPClient != nil {
		clientOpts = append(clientOpts, option.WithHTTPClient(opts.HTTPClient))
	}
	client, err := gensdk.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create gemini sdk client: %w", err)
	}
	s.client = client
	return s, nil
}

// Ready fails when the SDK client was not created.
func (s *SDKSynthesizer) Ready() error {
	if s == nil {
		return domain.ErrMissingCredential
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		return domain.ErrMissingCredential
	}
	return nil
}

// Synthesize sends the reference images and prompt and returns the first
// blob part of the first candidate.
func (s *SDKSynthesizer) Synthesize(ctx context.Context, call imagegen.Call) (*domain.ImagePayload, error) {
	if err := s.Ready(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	client := s.client
	s.mu.Unlock()

	parts := make([]gensdk.Part, 0, len(call.Images)+1)
	for _, img := range call.Images {
		mime := img.MIMEType
		if mime == "" {
			mime = "image/png"
		}
		parts = append(parts, gensdk.Blob{MIMEType: mime, Data: img.Data})
	}
	parts = append(parts, gensdk.Text(call.Prompt))

	model := client.GenerativeModel(s.model)
	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, classifyTransportError(ctx, "generate content", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, nil
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		blob, ok := part.(gensdk.Blob)
		if !ok || len(blob.Data) == 0 {
			continue
		}
		mime := blob.MIMEType
		if mime == "" {
			mime = "image/png"
		}
		s.logger.Debug().
			Str("variant", call.VariantID).
			Str("model", s.model).
			Int("bytes", len(blob.Data)).
			Msg("genai: sdk returned inline image")
		return &domain.ImagePayload{VariantID: call.VariantID, MIMEType: mime, Data: blob.Data}, nil
	}
	return nil, nil
}

// Close releases the SDK client.
func (s *SDKSynthesizer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	return err
}

var _ imagegen.Synthesizer = (*SDKSynthesizer)(nil)
