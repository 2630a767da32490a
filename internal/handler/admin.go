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
)

type AdminHandler struct {
	moderationService *service.ModerationService
	forbidden         http.HandlerFunc
}

func NewAdminHandler(moderationService *service.ModerationService, forbidden http.HandlerFunc) *AdminHandler {
	return &AdminHandler{
		moderationService: moderationService,
		forbidden:         forbidden,
	}
}

// Queue lists pending posts with nothing selected.
func (h *AdminHandler) Queue(w http.ResponseWriter, r *http.Request) {
	session := ctxkeys.Session(r.Context())

	queue, ok := h.pending(w, r, session)
	if !ok {
		return
	}

	h.render(w, r, pages.AdminData{Queue: queue})
}

// Show lists pending posts with one post opened for review.
func (h *AdminHandler) Show(w http.ResponseWriter, r *http.Request) {
	session := ctxkeys.Session(r.Context())
	postID := r.PathValue("id")

	queue, ok := h.pending(w, r, session)
	if !ok {
		return
	}

	selected, err := h.moderationService.Post(session, postID)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			h.forbidden(w, r)
			return
		}
		if !errors.Is(err, service.ErrPostNotFound) {
			slog.Error("failed to load post for review", "error", err, "post_id", postID)
		}
		h.render(w, r, pages.AdminData{Queue: queue})
		toastError(w, r, "Mărturia nu a fost găsită.")
		return
	}

	h.render(w, r, pages.AdminData{Queue: queue, Selected: selected})
}

func (h *AdminHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, model.PostStatusApproved)
}

func (h *AdminHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, model.PostStatusRejected)
}

// decide applies a moderation decision, then refetches the queue and clears the selection.
func (h *AdminHandler) decide(w http.ResponseWriter, r *http.Request, status model.PostStatus) {
	session := ctxkeys.Session(r.Context())
	postID := r.PathValue("id")

	var err error
	if status == model.PostStatusApproved {
		err = h.moderationService.Approve(r.Context(), session, postID)
	} else {
		err = h.moderationService.Reject(r.Context(), session, postID)
	}

	if errors.Is(err, service.ErrForbidden) {
		h.forbidden(w, r)
		return
	}

	if !isHTMX(r) {
		if err != nil && !errors.Is(err, service.ErrInvalidTransition) && !errors.Is(err, service.ErrPostNotFound) {
			slog.Error("moderation failed", "error", err, "post_id", postID, "status", status)
		}
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}

	queue, ok := h.pending(w, r, session)
	if !ok {
		return
	}

	w.Header().Set("HX-Push-Url", "/admin")
	ui.Render(w, r, pages.AdminContent(pages.AdminData{Queue: queue}))

	switch {
	case err == nil && status == model.PostStatusApproved:
		toastSuccess(w, r, "Mărturie aprobată", "Mărturia este acum publică.")
	case err == nil:
		toastSuccess(w, r, "Mărturie respinsă", "Mărturia nu va fi publicată.")
	case errors.Is(err, service.ErrInvalidTransition):
		toastError(w, r, "Această mărturie a fost deja moderată.")
	case errors.Is(err, service.ErrPostNotFound):
		toastError(w, r, "Mărturia nu a fost găsită.")
	default:
		slog.Error("moderation failed", "error", err, "post_id", postID, "status", status)
		toastError(w, r, "Decizia nu a putut fi salvată. Încearcă din nou.")
	}
}

// pending fetches the queue. A fetch failure is logged and shown as an empty queue.
func (h *AdminHandler) pending(w http.ResponseWriter, r *http.Request, session *model.Session) ([]*service.ModeratedPost, bool) {
	queue, err := h.moderationService.Pending(session)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			h.forbidden(w, r)
			return nil, false
		}
		slog.Error("failed to load moderation queue", "error", err)
		return nil, true
	}
	return queue, true
}

func (h *AdminHandler) render(w http.ResponseWriter, r *http.Request, data pages.AdminData) {
	if isHTMX(r) {
		ui.Render(w, r, pages.AdminContent(data))
		return
	}
	ui.Render(w, r, pages.Admin(data))
}
