package handlers

import (
	"net/http"
	"slices"

	"jewelshot/internal/domain"
	"jewelshot/internal/middleware"
)

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}

type limitsDTO struct {
	MinImages     int `json:"minImages"`
	MaxImages     int `json:"maxImages"`
	MaxAssetBytes int `json:"maxAssetBytes"`
}

type configDTO struct {
	Synthesis bool      `json:"synthesis"`
	Auth      bool      `json:"auth"`
	Missing   []string  `json:"missing"`
	Model     string    `json:"model"`
	Driver    string    `json:"driver"`
	Limits    limitsDTO `json:"limits"`
	Locale    string    `json:"locale"`
	Country   string    `json:"country,omitempty"`
}

// ConfigStatus tells the UI which features are usable and which locale the
// request resolved to.
func (a *App) ConfigStatus(w http.ResponseWriter, r *http.Request) {
	missing := a.Config.Missing()
	if missing == nil {
		missing = []string{}
	}
	a.json(w, http.StatusOK, configDTO{
		Synthesis: !slices.Contains(missing, "GEMINI_API_KEY"),
		Auth:      !slices.Contains(missing, "SUPABASE_URL") && !slices.Contains(missing, "SUPABASE_ANON_KEY"),
		Missing:   missing,
		Model:     a.Config.GeminiModel,
		Driver:    a.Config.SynthesisDriver,
		Limits: limitsDTO{
			MinImages:     domain.MinImages,
			MaxImages:     domain.MaxImages,
			MaxAssetBytes: domain.MaxAssetBytes,
		},
		Locale:  middleware.LocaleFromContext(r.Context()),
		Country: middleware.CountryFromContext(r.Context()),
	})
}

type placementDTO struct {
	ID               domain.Placement `json:"id"`
	Label            string           `json:"label"`
	DefaultDirective string           `json:"defaultDirective"`
}

type styleDTO struct {
	ID    domain.BackgroundStyle `json:"id"`
	Label string                 `json:"label"`
}

type variantDTO struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

func (a *App) Catalog(w http.ResponseWriter, r *http.Request) {
	placements := make([]placementDTO, 0, len(domain.Placements))
	for _, p := range domain.Placements {
		placements = append(placements, placementDTO{ID: p, Label: p.Label(), DefaultDirective: p.DefaultDirective()})
	}
	styles := make([]styleDTO, 0, len(domain.Styles))
	for _, s := range domain.Styles {
		styles = append(styles, styleDTO{ID: s, Label: s.Label()})
	}
	variants := make([]variantDTO, 0, len(domain.Variants))
	for _, v := range domain.Variants {
		variants = append(variants, variantDTO{ID: v.ID, Label: v.Label})
	}
	a.json(w, http.StatusOK, map[string]any{
		"placements":       placements,
		"styles":           styles,
		"variants":         variants,
		"defaultPlacement": domain.DefaultPlacement,
		"defaultStyle":     domain.DefaultStyle,
	})
}
