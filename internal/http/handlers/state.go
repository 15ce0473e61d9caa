package handlers

import (
	"net/http"

	"jewelshot/internal/domain"
	"jewelshot/internal/i18n"
	"jewelshot/internal/middleware"
	"jewelshot/internal/viewstate"
)

type noticeDTO struct {
	Kind    domain.ErrorKind `json:"kind"`
	Code    string           `json:"code"`
	Message string           `json:"message"`
}

type requestDTO struct {
	ID         string                 `json:"id"`
	Placement  domain.Placement       `json:"placement"`
	Style      domain.BackgroundStyle `json:"style"`
	Directive  string                 `json:"directive"`
	ImageCount int                    `json:"imageCount"`
}

type stateDTO struct {
	View        viewstate.View `json:"view"`
	Ready       bool           `json:"ready"`
	SignedIn    bool           `json:"signedIn"`
	Email       string         `json:"email,omitempty"`
	Epoch       uint64         `json:"epoch"`
	Notice      *noticeDTO     `json:"notice,omitempty"`
	ResultCount int            `json:"resultCount"`
	DraftCount  int            `json:"draftCount"`
	LastRequest *requestDTO    `json:"lastRequest,omitempty"`
}

func toStateDTO(locale string, st viewstate.State, draftCount int) stateDTO {
	out := stateDTO{
		View:        st.View,
		Ready:       st.Ready,
		SignedIn:    st.SignedIn(),
		Epoch:       st.Epoch,
		ResultCount: len(st.Results),
		DraftCount:  draftCount,
	}
	if st.Session != nil {
		out.Email = st.Session.Email
	}
	if n := st.Notice; n != nil {
		dto := &noticeDTO{Kind: n.Kind, Code: i18n.MsgInternal, Message: n.Message}
		if n.Err != nil {
			dto.Code = i18n.KeyFor(n.Err)
			dto.Message = i18n.ErrorMessage(locale, n.Err)
		}
		out.Notice = dto
	}
	if req := st.LastRequest; req != nil {
		out.LastRequest = &requestDTO{
			ID:         req.ID(),
			Placement:  req.Placement(),
			Style:      req.Style(),
			Directive:  req.Directive(),
			ImageCount: req.ImageCount(),
		}
	}
	return out
}

func (a *App) writeState(w http.ResponseWriter, r *http.Request, code int, st viewstate.State, draftCount int) {
	a.json(w, code, toStateDTO(middleware.LocaleFromContext(r.Context()), st, draftCount))
}

func (a *App) State(w http.ResponseWriter, r *http.Request) {
	ctrl := a.controller(r)
	a.writeState(w, r, http.StatusOK, ctrl.State(), ctrl.Draft().Len())
}

type navigateRequest struct {
	Action string `json:"action" validate:"required,oneof=create back new home dismiss"`
}

var navigateEvents = map[string]viewstate.Event{
	"create":  viewstate.CreateNewRequested{},
	"back":    viewstate.BackRequested{},
	"new":     viewstate.NewPhotoshootRequested{},
	"home":    viewstate.HomeRequested{},
	"dismiss": viewstate.NoticeDismissed{},
}

func (a *App) Navigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if !a.decode(w, r, &req) {
		return
	}
	ctrl := a.controller(r)
	st, err := ctrl.Dispatch(r.Context(), navigateEvents[req.Action])
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.writeState(w, r, http.StatusOK, st, ctrl.Draft().Len())
}
