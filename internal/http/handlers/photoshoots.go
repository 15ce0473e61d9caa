package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"jewelshot/internal/domain"
	"jewelshot/pkg/zip"
)

type photoshootRequest struct {
	Placement string `json:"placement" validate:"omitempty,max=32"`
	Style     string `json:"style" validate:"omitempty,max=32"`
	Directive string `json:"directive" validate:"max=2000"`
}

// SubmitPhotoshoot validates the draft and starts synthesis. The response
// is sent once the view is Processing; poll /api/state for the outcome.
func (a *App) SubmitPhotoshoot(w http.ResponseWriter, r *http.Request) {
	var req photoshootRequest
	if !a.decode(w, r, &req) {
		return
	}
	ctrl := a.controller(r)
	st, err := ctrl.Submit(r.Context(), req.Placement, req.Style, req.Directive)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.writeState(w, r, http.StatusAccepted, st, ctrl.Draft().Len())
}

type resultDTO struct {
	VariantID string `json:"variantId"`
	Label     string `json:"label"`
	MIMEType  string `json:"mimeType"`
	DataURL   string `json:"dataUrl"`
}

func (a *App) Results(w http.ResponseWriter, r *http.Request) {
	st := a.controller(r).State()
	out := make([]resultDTO, 0, len(st.Results))
	for _, img := range st.Results {
		out = append(out, resultDTO{
			VariantID: img.VariantID,
			Label:     domain.VariantLabel(img.VariantID),
			MIMEType:  img.MIMEType,
			DataURL:   img.DataURL(),
		})
	}
	a.json(w, http.StatusOK, map[string]any{"view": st.View, "results": out})
}

// ResultsArchive downloads the current results as a zip.
func (a *App) ResultsArchive(w http.ResponseWriter, r *http.Request) {
	st := a.controller(r).State()
	if len(st.Results) == 0 {
		a.fail(w, r, fmt.Errorf("results: %w", domain.ErrNotFound))
		return
	}
	placement := string(domain.DefaultPlacement)
	if st.LastRequest != nil {
		placement = string(st.LastRequest.Placement())
	}
	assets := make([]zip.Asset, 0, len(st.Results))
	for _, img := range st.Results {
		assets = append(assets, zip.Asset{
			Filename: fmt.Sprintf("jewelshot-%s-%s%s", placement, img.VariantID, extensionFor(img.MIMEType)),
			MIME:     img.MIMEType,
			Data:     img.Data,
		})
	}
	data, err := zip.ArchiveAssets(assets)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="jewelshot-%s.zip"`, placement))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (a *App) Projects(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{"projects": a.controller(r).Ledger().List()})
}

func extensionFor(mime string) string {
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}
