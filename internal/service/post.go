package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/voceapacientilor/vocea/internal/model"
	"github.com/voceapacientilor/vocea/internal/repository"
	"github.com/voceapacientilor/vocea/internal/storage"
	"github.com/voceapacientilor/vocea/internal/validation"
)

var (
	ErrAuthRequired = errors.New("authentication required")
	ErrPostNotFound = repository.ErrPostNotFound
)

type PostService struct {
	postRepo       repository.PostRepository
	replyRepo      repository.ReplyRepository
	attachmentRepo repository.AttachmentRepository
	storage        storage.Storage
	now            func() time.Time
}

func NewPostService(
	postRepo repository.PostRepository,
	replyRepo repository.ReplyRepository,
	attachmentRepo repository.AttachmentRepository,
	storage storage.Storage,
) *PostService {
	return &PostService{
		postRepo:       postRepo,
		replyRepo:      replyRepo,
		attachmentRepo: attachmentRepo,
		storage:        storage,
		now:            time.Now,
	}
}

type CreatePostInput struct {
	Title        string
	Body         string
	HospitalName string
	Locality     string
	County       string
	IncidentDate string // YYYY-MM-DD or empty
	IsAnonymous  bool
}

type CreatePostResult struct {
	Post        *model.Post
	Attachments []*model.Attachment
	// Warnings describe images that were left out. The post itself was saved.
	Warnings []string
}

// List returns approved posts matching filter, newest first.
func (s *PostService) List(filter model.PostFilter) ([]*model.Post, error) {
	filter.County = strings.TrimSpace(filter.County)
	filter.Hospital = strings.TrimSpace(filter.Hospital)
	return s.postRepo.Approved(filter)
}

// Post returns a single post. Posts that are not approved are only visible to admins.
func (s *PostService) Post(id string, viewer *model.Session) (*model.Post, error) {
	post, err := s.postRepo.ByID(id)
	if err != nil {
		return nil, err
	}
	if !post.IsApproved() && !viewer.IsAdmin() {
		return nil, ErrPostNotFound
	}
	return post, nil
}

func (s *PostService) Replies(postID string) ([]*model.Reply, error) {
	return s.replyRepo.ByPostID(postID)
}

// Attachments lists a post's images with browser-loadable URLs.
func (s *PostService) Attachments(postID string) ([]*model.Attachment, error) {
	attachments, err := s.attachmentRepo.ByPostID(postID)
	if err != nil {
		return nil, err
	}
	for _, a := range attachments {
		a.URL = s.storage.URL(a.FilePath)
	}
	return attachments, nil
}

// Create validates and stores a new pending post, then uploads the images
// the selection accepted one at a time. Image failures are reported as
// warnings and never undo the post.
func (s *PostService) Create(ctx context.Context, session *model.Session, in CreatePostInput, images *validation.ImageSelection) (*CreatePostResult, error) {
	if session == nil {
		return nil, ErrAuthRequired
	}

	in.Title = validation.SanitizeText(in.Title)
	in.Body = validation.SanitizeText(in.Body)
	in.HospitalName = validation.SanitizeText(in.HospitalName)
	in.Locality = validation.SanitizeText(in.Locality)
	in.County = strings.TrimSpace(in.County)
	in.IncidentDate = strings.TrimSpace(in.IncidentDate)

	var errs validation.Errors
	errs.Check("title", validation.ValidateTitle(in.Title))
	errs.Check("body", validation.ValidatePostBody(in.Body))
	errs.Check("hospital_name", validation.ValidatePlace(in.HospitalName, "Numele spitalului"))
	errs.Check("locality", validation.ValidatePlace(in.Locality, "Localitatea"))
	errs.Check("county", validation.ValidateCounty(in.County))
	errs.Check("incident_date", validation.ValidateIncidentDate(in.IncidentDate, s.now()))
	if err := errs.OrNil(); err != nil {
		return nil, err
	}

	if images == nil {
		images = &validation.ImageSelection{}
	}

	post := &model.Post{
		AuthorID:     session.UserID(),
		Title:        nilIfEmpty(in.Title),
		Body:         in.Body,
		HospitalName: in.HospitalName,
		Locality:     in.Locality,
		County:       in.County,
		IncidentDate: nilIfEmpty(in.IncidentDate),
		Status:       model.PostStatusPending,
		DisplayName:  model.DisplayName(session.Profile, in.IsAnonymous),
		IsAnonymous:  in.IsAnonymous,
	}

	err := s.postRepo.Create(post)
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	result := &CreatePostResult{Post: post, Warnings: images.Warnings()}

	var lastMillis int64
	for _, img := range images.Accepted {
		millis := s.now().UnixMilli()
		if millis <= lastMillis {
			millis = lastMillis + 1
		}
		lastMillis = millis

		attachment, err := s.attachImage(ctx, post.ID, img, millis)
		if err != nil {
			slog.Error("failed to attach image", "error", err, "post_id", post.ID, "file", img.Filename)
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s: imaginea nu a putut fi încărcată", img.Filename))
			continue
		}
		result.Attachments = append(result.Attachments, attachment)
	}

	slog.Info("post created", "post_id", post.ID, "attachments", len(result.Attachments))
	return result, nil
}

func (s *PostService) attachImage(ctx context.Context, postID string, img *validation.Image, millis int64) (*model.Attachment, error) {
	path := ObjectKey(postID, millis, fileExtension(img.Filename))

	err := s.storage.Save(ctx, path, bytes.NewReader(img.Data), img.ContentType)
	if err != nil {
		return nil, err
	}

	attachment := &model.Attachment{
		PostID:   postID,
		FilePath: path,
		FileName: img.Filename,
		FileSize: img.Size(),
	}

	err = s.attachmentRepo.Create(attachment)
	if err != nil {
		if delErr := s.storage.Delete(ctx, path); delErr != nil {
			slog.Error("failed to delete orphaned image", "error", delErr, "path", path)
		}
		return nil, err
	}

	return attachment, nil
}

// AddReply appends a reply to an approved post.
func (s *PostService) AddReply(session *model.Session, postID, body string, anonymous bool) (*model.Reply, error) {
	if session == nil {
		return nil, ErrAuthRequired
	}

	body = validation.SanitizeText(body)

	var errs validation.Errors
	errs.Check("body", validation.ValidateReplyBody(body))
	if err := errs.OrNil(); err != nil {
		return nil, err
	}

	post, err := s.postRepo.ByID(postID)
	if err != nil {
		return nil, err
	}
	if !post.IsApproved() {
		return nil, ErrPostNotFound
	}

	reply := &model.Reply{
		PostID:      post.ID,
		AuthorID:    session.UserID(),
		Body:        body,
		DisplayName: model.DisplayName(session.Profile, anonymous),
		IsAnonymous: anonymous,
	}

	err = s.replyRepo.Create(reply)
	if err != nil {
		return nil, fmt.Errorf("failed to create reply: %w", err)
	}

	slog.Info("reply created", "post_id", post.ID, "reply_id", reply.ID)
	return reply, nil
}

// ObjectKey names a post image in the bucket: posts/<postId>-<epochMillis>.<ext>
func ObjectKey(postID string, millis int64, ext string) string {
	return fmt.Sprintf("posts/%s-%d.%s", postID, millis, ext)
}

// fileExtension returns the text after the last dot, or the whole name when there is none.
func fileExtension(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}
