package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/voceapacientilor/vocea/internal/ctxkeys"
	"github.com/voceapacientilor/vocea/internal/model"
	"github.com/voceapacientilor/vocea/internal/service"
	"github.com/voceapacientilor/vocea/internal/ui"
	"github.com/voceapacientilor/vocea/internal/ui/pages"
	"github.com/voceapacientilor/vocea/internal/validation"
)

type PostHandler struct {
	postService *service.PostService
}

func NewPostHandler(postService *service.PostService) *PostHandler {
	return &PostHandler{
		postService: postService,
	}
}

// List renders the approved posts. Filter changes from the page only swap the list.
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := model.PostFilter{
		County:   r.URL.Query().Get("county"),
		Hospital: r.URL.Query().Get("hospital"),
	}

	posts, err := h.postService.List(filter)
	if err != nil {
		slog.Error("failed to list posts", "error", err, "county", filter.County, "hospital", filter.Hospital)
		posts = nil
	}

	data := pages.HomeData{
		Posts:    posts,
		Filter:   filter,
		Counties: model.Counties,
	}

	if isHTMX(r) {
		ui.Render(w, r, pages.PostList(data))
		return
	}

	ui.Render(w, r, pages.Home(data))
}

func (h *PostHandler) Detail(w http.ResponseWriter, r *http.Request) {
	session := ctxkeys.Session(r.Context())

	data, ok := h.loadDetail(w, r, r.PathValue("id"))
	if !ok {
		return
	}
	data.Reply.Anonymous = session.DefaultAnonymous()

	ui.Render(w, r, pages.PostDetail(data))
}

// Reply adds a reply and re-renders the whole detail from fresh fetches.
func (h *PostHandler) Reply(w http.ResponseWriter, r *http.Request) {
	session := ctxkeys.Session(r.Context())
	postID := r.PathValue("id")

	body := r.FormValue("body")
	anonymous := r.FormValue("anonymous") != ""

	_, err := h.postService.AddReply(session, postID, body, anonymous)

	var form pages.ReplyForm
	var notice string
	var failed bool

	var verr *validation.Errors
	switch {
	case err == nil:
		if !isHTMX(r) {
			http.Redirect(w, r, "/posts/"+postID, http.StatusSeeOther)
			return
		}
		form.Anonymous = session.DefaultAnonymous()
		notice = "Răspunsul tău a fost publicat."
	case errors.As(err, &verr):
		form = pages.ReplyForm{Body: body, Anonymous: anonymous, Errors: verr}
	case errors.Is(err, service.ErrAuthRequired):
		redirect(w, r, "/auth?next=/posts/"+postID)
		return
	case errors.Is(err, service.ErrPostNotFound):
		h.notFound(w, r)
		return
	default:
		slog.Error("failed to add reply", "error", err, "post_id", postID, "user_id", session.UserID())
		form = pages.ReplyForm{Body: body, Anonymous: anonymous}
		failed = true
	}

	data, ok := h.loadDetail(w, r, postID)
	if !ok {
		return
	}
	data.Reply = form
	data.Notice = notice

	if !isHTMX(r) {
		ui.RenderStatus(w, r, http.StatusUnprocessableEntity, pages.PostDetail(data))
		return
	}

	ui.Render(w, r, pages.PostDetailContent(data))
	if failed {
		toastError(w, r, "Răspunsul nu a putut fi salvat. Încearcă din nou.")
	}
}

// loadDetail issues the post, replies and attachments fetches independently.
// Only a missing post stops the page; the other two degrade to empty lists.
func (h *PostHandler) loadDetail(w http.ResponseWriter, r *http.Request, postID string) (pages.PostDetailData, bool) {
	session := ctxkeys.Session(r.Context())

	post, err := h.postService.Post(postID, session)
	if err != nil {
		if !errors.Is(err, service.ErrPostNotFound) {
			slog.Error("failed to load post", "error", err, "post_id", postID)
		}
		h.notFound(w, r)
		return pages.PostDetailData{}, false
	}

	replies, err := h.postService.Replies(postID)
	if err != nil {
		slog.Error("failed to load replies", "error", err, "post_id", postID)
		replies = nil
	}

	attachments, err := h.postService.Attachments(postID)
	if err != nil {
		slog.Error("failed to load attachments", "error", err, "post_id", postID)
		attachments = nil
	}

	return pages.PostDetailData{
		Post:        post,
		Replies:     replies,
		Attachments: attachments,
	}, true
}

func (h *PostHandler) notFound(w http.ResponseWriter, r *http.Request) {
	if isHTMX(r) {
		toastError(w, r, "Mărturia nu a fost găsită.")
		return
	}
	ui.RenderStatus(w, r, http.StatusNotFound, pages.NotFound())
}

func (h *PostHandler) NewPage(w http.ResponseWriter, r *http.Request) {
	session := ctxkeys.Session(r.Context())

	ui.Render(w, r, pages.NewPost(pages.NewPostData{
		Form:     service.CreatePostInput{IsAnonymous: session.DefaultAnonymous()},
		Counties: model.Counties,
		Today:    time.Now().Format(time.DateOnly),
	}))
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	session := ctxkeys.Session(r.Context())

	form, images, err := readPostForm(r)
	switch {
	case err == nil:
	case truncatedUpload(err):
		slog.Warn("post form cut at the request size cap", "error", err, "user_id", session.UserID())
		images.Warn("Unele imagini nu au fost primite: împreună depășesc dimensiunea maximă a cererii.")
	default:
		slog.Warn("failed to read post form", "error", err, "user_id", session.UserID())
		failure(w, r, "Formularul nu a putut fi citit. Verifică dimensiunea imaginilor și încearcă din nou.")
		return
	}

	in := service.CreatePostInput{
		Title:        form.Get("title"),
		Body:         form.Get("body"),
		HospitalName: form.Get("hospital_name"),
		Locality:     form.Get("locality"),
		County:       form.Get("county"),
		IncidentDate: form.Get("incident_date"),
		IsAnonymous:  form.Get("anonymous") != "",
	}

	result, err := h.postService.Create(r.Context(), session, in, images)

	var verr *validation.Errors
	switch {
	case err == nil:
	case errors.As(err, &verr):
		data := pages.NewPostData{
			Form:     in,
			Errors:   verr,
			Counties: model.Counties,
			Today:    time.Now().Format(time.DateOnly),
		}
		if isHTMX(r) {
			ui.Render(w, r, pages.NewPostForm(data))
			return
		}
		ui.RenderStatus(w, r, http.StatusUnprocessableEntity, pages.NewPost(data))
		return
	case errors.Is(err, service.ErrAuthRequired):
		redirect(w, r, "/auth?next=/posts/new")
		return
	default:
		slog.Error("failed to create post", "error", err, "user_id", session.UserID())
		failure(w, r, "Mărturia nu a putut fi salvată. Încearcă din nou.")
		return
	}

	if isHTMX(r) {
		ui.Render(w, r, pages.PostSubmittedContent(result))
		toastSuccess(w, r, "Mărturie trimisă", "Va fi publicată după aprobarea unui moderator.")
		return
	}
	ui.Render(w, r, pages.PostSubmitted(result))
}
