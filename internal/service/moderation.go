package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/voceapacientilor/vocea/internal/model"
	"github.com/voceapacientilor/vocea/internal/repository"
	"github.com/voceapacientilor/vocea/internal/storage"
)

var (
	ErrForbidden         = errors.New("admin privileges required")
	ErrInvalidTransition = repository.ErrInvalidTransition
)

// ModeratedPost is a post shown in the admin queue together with its images.
type ModeratedPost struct {
	Post        *model.Post
	Attachments []*model.Attachment
}

// ModerationService is the only path that changes a post's status.
// Every method re-checks that the actor is an admin.
type ModerationService struct {
	postRepo       repository.PostRepository
	attachmentRepo repository.AttachmentRepository
	userRepo       repository.UserRepository
	storage        storage.Storage
	emailService   *EmailService
	notifyAuthors  bool
}

func NewModerationService(
	postRepo repository.PostRepository,
	attachmentRepo repository.AttachmentRepository,
	userRepo repository.UserRepository,
	storage storage.Storage,
	emailService *EmailService,
	notifyAuthors bool,
) *ModerationService {
	return &ModerationService{
		postRepo:       postRepo,
		attachmentRepo: attachmentRepo,
		userRepo:       userRepo,
		storage:        storage,
		emailService:   emailService,
		notifyAuthors:  notifyAuthors,
	}
}

// Pending lists posts awaiting a decision, newest first.
func (s *ModerationService) Pending(actor *model.Session) ([]*ModeratedPost, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	posts, err := s.postRepo.Pending()
	if err != nil {
		return nil, err
	}

	queue := make([]*ModeratedPost, 0, len(posts))
	for _, p := range posts {
		queue = append(queue, &ModeratedPost{Post: p, Attachments: s.attachments(p.ID)})
	}
	return queue, nil
}

// Post returns any post, whatever its status, for review.
func (s *ModerationService) Post(actor *model.Session, id string) (*ModeratedPost, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	post, err := s.postRepo.ByID(id)
	if err != nil {
		return nil, err
	}
	return &ModeratedPost{Post: post, Attachments: s.attachments(post.ID)}, nil
}

func (s *ModerationService) Approve(ctx context.Context, actor *model.Session, id string) error {
	return s.decide(ctx, actor, id, model.PostStatusApproved)
}

func (s *ModerationService) Reject(ctx context.Context, actor *model.Session, id string) error {
	return s.decide(ctx, actor, id, model.PostStatusRejected)
}

func (s *ModerationService) decide(ctx context.Context, actor *model.Session, id string, next model.PostStatus) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}

	err := s.postRepo.UpdateStatus(id, next)
	if err != nil {
		return fmt.Errorf("moderate post %s: %w", id, err)
	}

	slog.Info("post moderated", "post_id", id, "status", next, "admin_id", actor.UserID())

	if s.notifyAuthors {
		s.notifyAuthor(ctx, id, next)
	}
	return nil
}

// notifyAuthor emails the decision. Failures are logged only.
func (s *ModerationService) notifyAuthor(ctx context.Context, id string, status model.PostStatus) {
	post, err := s.postRepo.ByID(id)
	if err != nil {
		slog.Warn("failed to load post for notification", "error", err, "post_id", id)
		return
	}

	author, err := s.userRepo.ByID(post.AuthorID)
	if err != nil {
		slog.Warn("failed to load author for notification", "error", err, "post_id", id)
		return
	}

	if status == model.PostStatusApproved {
		err = s.emailService.SendPostApprovedEmail(ctx, author.Email, post.ID, post.HospitalName)
	} else {
		err = s.emailService.SendPostRejectedEmail(ctx, author.Email, post.ID, post.HospitalName)
	}
	if err != nil {
		slog.Warn("failed to send moderation email", "error", err, "post_id", id)
	}
}

func (s *ModerationService) attachments(postID string) []*model.Attachment {
	attachments, err := s.attachmentRepo.ByPostID(postID)
	if err != nil {
		slog.Error("failed to load attachments", "error", err, "post_id", postID)
		return nil
	}
	for _, a := range attachments {
		a.URL = s.storage.URL(a.FilePath)
	}
	return attachments
}
