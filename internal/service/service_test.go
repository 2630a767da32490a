package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/voceapacientilor/vocea/internal/db"
	"github.com/voceapacientilor/vocea/internal/model"
	"github.com/voceapacientilor/vocea/internal/repository"
	"github.com/voceapacientilor/vocea/internal/validation"
)

// memStorage is an in-memory storage.Storage. failSaves lists the 1-based
// Save calls that should fail.
type memStorage struct {
	mu        sync.Mutex
	objects   map[string][]byte
	types     map[string]string
	saves     int
	failSaves map[int]bool
}

func newMemStorage() *memStorage {
	return &memStorage{objects: map[string][]byte{}, types: map[string]string{}, failSaves: map[int]bool{}}
}

func (m *memStorage) Save(_ context.Context, path string, file io.Reader, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.saves++
	if m.failSaves[m.saves] {
		return errors.New("bucket unavailable")
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	m.objects[path] = data
	m.types[path] = contentType
	return nil
}

func (m *memStorage) Delete(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, path)
	return nil
}

func (m *memStorage) URL(path string) string { return "https://cdn.test/" + path }

func (m *memStorage) Close() error { return nil }

type fixture struct {
	db          *sqlx.DB
	storage     *memStorage
	users       repository.UserRepository
	profiles    repository.ProfileRepository
	tokens      repository.TokenRepository
	posts       *PostService
	moderation  *ModerationService
	auth        *AuthService
	sessions    *SessionService
	profileSvc  *ProfileService
	postRepo    repository.PostRepository
	attachments repository.AttachmentRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=foreign_keys(1)&_time_format=sqlite"
	conn, err := db.Init("sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(conn) })
	require.NoError(t, db.RunMigrations(conn.DB, "sqlite"))

	f := &fixture{
		db:          conn,
		storage:     newMemStorage(),
		users:       repository.NewUserRepository(conn),
		profiles:    repository.NewProfileRepository(conn),
		tokens:      repository.NewTokenRepository(conn),
		postRepo:    repository.NewPostRepository(conn),
		attachments: repository.NewAttachmentRepository(conn),
	}

	email := NewEmailService("", "noreply@test", "http://localhost:8090", "Vocea Pacienților", true)
	f.posts = NewPostService(f.postRepo, repository.NewReplyRepository(conn), f.attachments, f.storage)
	f.moderation = NewModerationService(f.postRepo, f.attachments, f.users, f.storage, email, true)
	f.auth = NewAuthService(f.users, f.profiles, f.tokens, email, "test-secret", false,
		time.Hour, 24*time.Hour, 10*time.Minute)
	f.sessions = NewSessionService(f.users, f.profiles)
	f.profileSvc = NewProfileService(f.profiles)
	return f
}

// session creates a verified account and returns its session.
func (f *fixture) session(t *testing.T, email, fullName string, admin bool) *model.Session {
	t.Helper()

	now := time.Now().UTC()
	user, err := f.auth.createAccount(email, nil, &now, fullName)
	require.NoError(t, err)
	if admin {
		require.NoError(t, f.profiles.SetAdminByEmail(email, true))
	}

	s, err := f.sessions.Load(user.ID)
	require.NoError(t, err)
	return s
}

var (
	pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)
	gifBytes = append([]byte("GIF89a"), make([]byte, 64)...)
)

type upload struct {
	name string
	data []byte
}

func images(t *testing.T, uploads ...upload) *validation.ImageSelection {
	t.Helper()

	sel := &validation.ImageSelection{}
	for _, u := range uploads {
		require.NoError(t, sel.Add(u.name, bytes.NewReader(u.data)))
	}
	return sel
}

func pngs(n int) []upload {
	ups := make([]upload, n)
	for i := range ups {
		ups[i] = upload{fmt.Sprintf("poza%d.png", i+1), pngBytes}
	}
	return ups
}

func validInput() CreatePostInput {
	return CreatePostInput{
		Title:        "Așteptare lungă la UPU",
		Body:         "Am așteptat șase ore la urgențe fără să fiu consultat de un medic.",
		HospitalName: "Spitalul Județean de Urgență",
		Locality:     "Cluj-Napoca",
		County:       "Cluj",
		IncidentDate: "2024-11-02",
	}
}
