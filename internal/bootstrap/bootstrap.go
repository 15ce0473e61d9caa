// Package bootstrap assembles the collaborators shared by the API server and
// the terminal studio from a loaded configuration.
package bootstrap

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"jewelshot/internal/imagegen"
	"jewelshot/internal/infra"
	"jewelshot/internal/infra/credentials"
	"jewelshot/internal/ledger"
	"jewelshot/internal/providers/genai"
	"jewelshot/internal/providers/supabase"
	"jewelshot/internal/session"
	"jewelshot/internal/viewstate"
)

// Services holds the process-wide collaborators. Per-client state is built
// by NewController.
type Services struct {
	Config   *infra.Config
	Logger   zerolog.Logger
	Gateway  *imagegen.Gateway
	Stats    *imagegen.Stats
	Provider session.Provider

	closers []func()
}

// New resolves the Gemini key, picks the synthesis driver and builds the
// session provider. Missing configuration never fails: the affected
// operations report a configuration error instead.
func New(ctx context.Context, cfg *infra.Config, logger zerolog.Logger) (*Services, error) {
	s := &Services{Config: cfg, Logger: logger, Stats: &imagegen.Stats{}}

	key := resolveGeminiKey(ctx, cfg, logger, s)

	var synth imagegen.Synthesizer
	opts := genai.Options{APIKey: key, BaseURL: cfg.GeminiBaseURL, Model: cfg.GeminiModel, Logger: &logger}
	switch cfg.SynthesisDriver {
	case infra.SynthesisDriverSDK:
		sdk, err := genai.NewSDKSynthesizer(ctx, opts)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.closers = append(s.closers, func() { _ = sdk.Close() })
		synth = sdk
	default:
		synth = genai.NewClient(opts)
	}
	if err := synth.Ready(); err != nil {
		logger.Warn().Err(err).Msg("image synthesis disabled until GEMINI_API_KEY is set")
	}
	s.Gateway = imagegen.NewGateway(synth,
		imagegen.WithLogger(logger.With().Str("component", "gateway").Logger()),
		imagegen.WithStats(s.Stats),
	)

	provider, err := supabase.NewClient(supabase.Options{URL: cfg.SupabaseURL, AnonKey: cfg.SupabaseAnonKey})
	if err != nil {
		logger.Warn().Err(err).Msg("sign-in disabled until SUPABASE_URL and SUPABASE_ANON_KEY are set")
	} else {
		s.Provider = provider
	}

	return s, nil
}

func resolveGeminiKey(ctx context.Context, cfg *infra.Config, logger zerolog.Logger, s *Services) string {
	if cfg.GeminiAPIKey != "" || cfg.DatabaseURL == "" {
		return cfg.GeminiAPIKey
	}
	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		if !errors.Is(err, infra.ErrNoDatabase) {
			logger.Warn().Err(err).Msg("credential store unavailable")
		}
		return ""
	}
	s.closers = append(s.closers, pool.Close)

	store := credentials.NewStore(infra.NewSQLRunner(pool, logger))
	lookupCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	key, err := credentials.ResolveGeminiKey(lookupCtx, "", store)
	if err != nil {
		logger.Warn().Err(err).Msg("gemini key lookup failed")
		return ""
	}
	return key
}

// NewController builds the controller of one client with its own session
// store, draft and ledger.
func (s *Services) NewController(clientID string) *viewstate.Controller {
	logger := s.Logger
	return viewstate.New(viewstate.Options{
		ClientID:         clientID,
		Sessions:         session.NewStore(s.Provider, session.WithLogger(logger)),
		Gateway:          s.Gateway,
		Ledger:           ledger.New(),
		Logger:           &logger,
		SynthesisTimeout: s.Config.SynthesisTimeout,
	})
}

// Close releases pools and SDK clients.
func (s *Services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}
