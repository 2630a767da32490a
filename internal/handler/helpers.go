package handler

import (
	"net/http"

	"github.com/voceapacientilor/vocea/internal/ui"
	"github.com/voceapacientilor/vocea/internal/ui/components/toast"
	"github.com/voceapacientilor/vocea/internal/ui/pages"
)

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// redirect uses HX-Redirect for HTMX requests so the browser does a full navigation.
func redirect(w http.ResponseWriter, r *http.Request, target string) {
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", target)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func toastError(w http.ResponseWriter, r *http.Request, description string) {
	ui.RenderToast(w, r, toast.Props{
		Title:       "Eroare",
		Description: description,
		Variant:     toast.VariantError,
	})
}

func toastSuccess(w http.ResponseWriter, r *http.Request, title, description string) {
	ui.RenderToast(w, r, toast.Props{
		Title:       title,
		Description: description,
		Variant:     toast.VariantSuccess,
		Duration:    5000,
	})
}

// failure reports an unexpected error: a toast for HTMX requests, an error page otherwise.
func failure(w http.ResponseWriter, r *http.Request, description string) {
	if isHTMX(r) {
		toastError(w, r, description)
		return
	}
	ui.RenderStatus(w, r, http.StatusInternalServerError, pages.Message("A apărut o eroare", description))
}
