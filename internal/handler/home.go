package handler

import (
	"net/http"

	"github.com/voceapacientilor/vocea/internal/ui"
	"github.com/voceapacientilor/vocea/internal/ui/pages"
)

// StatusHandler renders the error pages.
type StatusHandler struct{}

func NewStatusHandler() *StatusHandler {
	return &StatusHandler{}
}

func (h *StatusHandler) NotFoundPage(w http.ResponseWriter, r *http.Request) {
	ui.RenderStatus(w, r, http.StatusNotFound, pages.NotFound())
}

func (h *StatusHandler) ForbiddenPage(w http.ResponseWriter, r *http.Request) {
	if isHTMX(r) {
		toastError(w, r, "Această acțiune este disponibilă doar administratorilor.")
		return
	}
	ui.RenderStatus(w, r, http.StatusForbidden, pages.Forbidden())
}

// ExpiredFormPage answers a form whose csrf token no longer matches the cookie.
func (h *StatusHandler) ExpiredFormPage(w http.ResponseWriter, r *http.Request) {
	if isHTMX(r) {
		toastError(w, r, "Sesiunea formularului a expirat. Reîncarcă pagina și încearcă din nou.")
		return
	}
	ui.RenderStatus(w, r, http.StatusForbidden, pages.ExpiredForm())
}
