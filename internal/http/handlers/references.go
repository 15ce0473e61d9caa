package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"jewelshot/internal/domain"
	"jewelshot/internal/i18n"
	"jewelshot/internal/middleware"
	"jewelshot/internal/photoshoot"
	"jewelshot/internal/viewstate"
)

const maxUploadBody = domain.MaxImages*domain.MaxAssetBytes + 1<<20

type referenceDTO struct {
	Index    int    `json:"index"`
	Name     string `json:"name"`
	MIMEType string `json:"mimeType"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Size     int    `json:"size"`
}

type rejectionDTO struct {
	Name    string `json:"name"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func referenceList(images []domain.ReferenceImage) []referenceDTO {
	out := make([]referenceDTO, 0, len(images))
	for i, img := range images {
		out = append(out, referenceDTO{
			Index:    i,
			Name:     img.Name,
			MIMEType: img.MIMEType,
			Width:    img.Width,
			Height:   img.Height,
			Size:     img.Size(),
		})
	}
	return out
}

func (a *App) ListReferences(w http.ResponseWriter, r *http.Request) {
	ctrl := a.controller(r)
	a.json(w, http.StatusOK, map[string]any{"images": referenceList(ctrl.Draft().Images())})
}

// AddReferences decodes a multipart batch under the "files" field into the
// draft. Only allowed on the Configure view.
func (a *App) AddReferences(w http.ResponseWriter, r *http.Request) {
	ctrl := a.controller(r)
	if v := ctrl.State().View; v != viewstate.ViewConfigure {
		a.fail(w, r, domain.ErrInvalidTransition)
		return
	}
	locale := middleware.LocaleFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	if err := r.ParseMultipartForm(16 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.fail(w, r, domain.ErrAssetTooLarge)
			return
		}
		a.error(w, http.StatusBadRequest, i18n.MsgInvalidPayload, i18n.Sprintf(locale, i18n.MsgInvalidPayload))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	files := r.MultipartForm.File["files"]
	uploads := make([]photoshoot.Upload, 0, len(files))
	for _, fh := range files {
		uploads = append(uploads, photoshoot.Upload{
			Name: fh.Filename,
			Size: fh.Size,
			Open: func() (io.ReadCloser, error) { return fh.Open() },
		})
	}

	res, err := ctrl.Draft().Add(r.Context(), uploads)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	rejected := make([]rejectionDTO, 0, len(res.Rejected))
	for _, rej := range res.Rejected {
		rejected = append(rejected, rejectionDTO{
			Name:    rej.Name,
			Code:    i18n.KeyFor(rej.Err),
			Message: i18n.ErrorMessage(locale, rej.Err),
		})
	}
	out := map[string]any{
		"images":   referenceList(ctrl.Draft().Images()),
		"rejected": rejected,
	}
	if len(rejected) > 0 {
		out["message"] = i18n.Sprintf(locale, i18n.MsgReferencesRejected, len(rejected))
	}
	a.json(w, http.StatusOK, out)
}

func (a *App) RemoveReference(w http.ResponseWriter, r *http.Request) {
	ctrl := a.controller(r)
	if v := ctrl.State().View; v != viewstate.ViewConfigure {
		a.fail(w, r, domain.ErrInvalidTransition)
		return
	}
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		a.fail(w, r, domain.ErrNotFound)
		return
	}
	if err := ctrl.Draft().Remove(idx); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"images": referenceList(ctrl.Draft().Images())})
}
