package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jewelshot/internal/domain"
	"jewelshot/internal/infra"
	"jewelshot/internal/viewstate"
)

func TestNewWithoutSecrets(t *testing.T) {
	cfg := &infra.Config{SynthesisDriver: infra.SynthesisDriverREST, SynthesisTimeout: time.Second}
	s, err := New(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer s.Close()

	assert.Nil(t, s.Provider)
	require.NotNil(t, s.Gateway)

	ctrl := s.NewController("client-1")
	defer ctrl.Close()
	ctrl.Start(context.Background())

	_, err = ctrl.SignIn(context.Background(), "ana@example.com", "secret123")
	assert.ErrorIs(t, err, domain.ErrSessionUnconfigured)
	assert.Equal(t, viewstate.ViewAuth, ctrl.State().View)
}

func TestNewWithSupabaseConfig(t *testing.T) {
	cfg := &infra.Config{
		GeminiAPIKey:    "k",
		SynthesisDriver: infra.SynthesisDriverREST,
		SupabaseURL:     "https://project.supabase.co",
		SupabaseAnonKey: "anon",
	}
	s, err := New(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer s.Close()
	assert.NotNil(t, s.Provider)
}

func TestNewSDKDriverWithoutKey(t *testing.T) {
	cfg := &infra.Config{SynthesisDriver: infra.SynthesisDriverSDK}
	s, err := New(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	s.Close()
}
