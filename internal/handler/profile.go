package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/voceapacientilor/vocea/internal/ctxkeys"
	"github.com/voceapacientilor/vocea/internal/model"
	"github.com/voceapacientilor/vocea/internal/service"
	"github.com/voceapacientilor/vocea/internal/ui"
	"github.com/voceapacientilor/vocea/internal/ui/pages"
	"github.com/voceapacientilor/vocea/internal/validation"
)

type ProfileHandler struct {
	profileService *service.ProfileService
	sessionService *service.SessionService
}

func NewProfileHandler(profileService *service.ProfileService, sessionService *service.SessionService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		sessionService: sessionService,
	}
}

func (h *ProfileHandler) Page(w http.ResponseWriter, r *http.Request) {
	session := ctxkeys.Session(r.Context())

	ui.Render(w, r, pages.Profile(profileData(session, nil)))
}

// Update saves the editable fields, then refreshes the session so the
// response and every later request see the new values.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	session := ctxkeys.Session(r.Context())

	in := service.UpdateProfileInput{
		FullName:     r.FormValue("full_name"),
		County:       r.FormValue("county"),
		ShowRealName: r.FormValue("show_real_name") != "",
	}

	_, err := h.profileService.Update(session.UserID(), in)

	var verr *validation.Errors
	if errors.As(err, &verr) {
		data := profileData(session, verr)
		data.Form = in
		h.render(w, r, data)
		return
	}
	if err != nil {
		slog.Error("failed to update profile", "error", err, "user_id", session.UserID())
		failure(w, r, "Profilul nu a putut fi salvat. Încearcă din nou.")
		return
	}

	refreshed, err := h.sessionService.Refresh(session)
	if err != nil {
		slog.Error("failed to refresh session", "error", err, "user_id", session.UserID())
		failure(w, r, "Profilul a fost salvat, dar pagina nu a putut fi actualizată. Reîncarcă pagina.")
		return
	}
	r = r.WithContext(ctxkeys.WithSession(r.Context(), refreshed))

	if !isHTMX(r) {
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}

	h.render(w, r, profileData(refreshed, nil))
	toastSuccess(w, r, "Profil actualizat", "Modificările au fost salvate.")
}

func (h *ProfileHandler) render(w http.ResponseWriter, r *http.Request, data pages.ProfileData) {
	if isHTMX(r) {
		ui.Render(w, r, pages.ProfileForm(data))
		return
	}
	ui.RenderStatus(w, r, http.StatusUnprocessableEntity, pages.Profile(data))
}

func profileData(session *model.Session, errs *validation.Errors) pages.ProfileData {
	data := pages.ProfileData{
		Errors:   errs,
		Counties: model.Counties,
	}
	if session == nil || session.Profile == nil {
		return data
	}

	data.Email = session.Profile.Email
	data.Form = service.UpdateProfileInput{
		FullName:     session.Profile.Name(),
		County:       session.Profile.CountyName(),
		ShowRealName: session.Profile.ShowRealName,
	}
	return data
}
