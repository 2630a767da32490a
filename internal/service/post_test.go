package service

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voceapacientilor/vocea/internal/model"
	"github.com/voceapacientilor/vocea/internal/validation"
)

func TestCreatePost(t *testing.T) {
	ctx := context.Background()

	t.Run("requires session", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.posts.Create(ctx, nil, validInput(), nil)
		assert.ErrorIs(t, err, ErrAuthRequired)
	})

	t.Run("short body is rejected before any write", func(t *testing.T) {
		f := newFixture(t)
		s := f.session(t, "ana@example.ro", "Ana", false)

		in := validInput()
		in.Body = strings.Repeat("a", 29)
		_, err := f.posts.Create(ctx, s, in, images(t, pngs(1)...))

		var verrs *validation.Errors
		require.ErrorAs(t, err, &verrs)
		assert.NotEmpty(t, verrs.Get("body"))

		pending, err := f.postRepo.Pending()
		require.NoError(t, err)
		assert.Empty(t, pending)
		assert.Zero(t, f.storage.saves)
	})

	t.Run("markup is stripped before length check", func(t *testing.T) {
		f := newFixture(t)
		s := f.session(t, "ana@example.ro", "Ana", false)

		in := validInput()
		in.Body = "<p>" + strings.Repeat("<b>x</b>", 20) + "</p>"
		_, err := f.posts.Create(ctx, s, in, nil)
		var verrs *validation.Errors
		require.ErrorAs(t, err, &verrs)
	})

	t.Run("new post is pending and hidden from listing", func(t *testing.T) {
		f := newFixture(t)
		s := f.session(t, "ana@example.ro", "Ana Pop", false)

		res, err := f.posts.Create(ctx, s, validInput(), nil)
		require.NoError(t, err)
		assert.Equal(t, model.PostStatusPending, res.Post.Status)
		assert.Equal(t, "Ana Pop", res.Post.DisplayName)

		list, err := f.posts.List(model.PostFilter{})
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("anonymous and unnamed display names", func(t *testing.T) {
		f := newFixture(t)
		named := f.session(t, "ana@example.ro", "Ana Pop", false)
		unnamed := f.session(t, "ion@example.ro", "", false)

		in := validInput()
		in.IsAnonymous = true
		res, err := f.posts.Create(ctx, named, in, nil)
		require.NoError(t, err)
		assert.Equal(t, "Anonim", res.Post.DisplayName)
		assert.True(t, res.Post.IsAnonymous)

		res, err = f.posts.Create(ctx, unnamed, validInput(), nil)
		require.NoError(t, err)
		assert.Equal(t, "Utilizator", res.Post.DisplayName)
	})

	t.Run("six images keep the first five", func(t *testing.T) {
		f := newFixture(t)
		s := f.session(t, "ana@example.ro", "Ana", false)

		res, err := f.posts.Create(ctx, s, validInput(), images(t, pngs(6)...))
		require.NoError(t, err)
		require.Len(t, res.Attachments, 5)
		assert.Len(t, f.storage.objects, 5)

		key := regexp.MustCompile(`^posts/` + regexp.QuoteMeta(res.Post.ID) + `-\d+\.png$`)
		seen := map[string]bool{}
		for i, a := range res.Attachments {
			assert.Regexp(t, key, a.FilePath)
			assert.Equal(t, "image/png", f.storage.types[a.FilePath])
			assert.False(t, seen[a.FilePath], "object keys are unique")
			seen[a.FilePath] = true
			assert.Equal(t, pngs(6)[i].name, a.FileName)
		}

		stored, err := f.posts.Attachments(res.Post.ID)
		require.NoError(t, err)
		require.Len(t, stored, 5)
		assert.True(t, strings.HasPrefix(stored[0].URL, "https://cdn.test/posts/"))
	})

	t.Run("invalid images are excluded with a warning", func(t *testing.T) {
		f := newFixture(t)
		s := f.session(t, "ana@example.ro", "Ana", false)

		res, err := f.posts.Create(ctx, s, validInput(), images(t, upload{"ok.png", pngBytes}, upload{"anim.gif", gifBytes}))
		require.NoError(t, err)
		assert.Len(t, res.Attachments, 1)
		require.Len(t, res.Warnings, 1)
		assert.Contains(t, res.Warnings[0], "anim.gif")
	})

	t.Run("stored content type follows the bytes", func(t *testing.T) {
		f := newFixture(t)
		s := f.session(t, "ana@example.ro", "Ana", false)

		res, err := f.posts.Create(ctx, s, validInput(), images(t, upload{"scanare.jpg", pngBytes}))
		require.NoError(t, err)
		require.Len(t, res.Attachments, 1)

		a := res.Attachments[0]
		assert.True(t, strings.HasSuffix(a.FilePath, ".jpg"))
		assert.Equal(t, "image/png", f.storage.types[a.FilePath])
		assert.Equal(t, int64(len(pngBytes)), a.FileSize)
	})

	t.Run("failed upload is skipped and the post kept", func(t *testing.T) {
		f := newFixture(t)
		f.storage.failSaves[2] = true
		s := f.session(t, "ana@example.ro", "Ana", false)

		res, err := f.posts.Create(ctx, s, validInput(), images(t, pngs(3)...))
		require.NoError(t, err)
		assert.Len(t, res.Attachments, 2)
		require.Len(t, res.Warnings, 1)
		assert.Contains(t, res.Warnings[0], "poza2.png")

		_, err = f.postRepo.ByID(res.Post.ID)
		require.NoError(t, err)

		stored, err := f.attachments.ByPostID(res.Post.ID)
		require.NoError(t, err)
		assert.Len(t, stored, 2)
	})
}

func TestPostVisibility(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	author := f.session(t, "ana@example.ro", "Ana", false)
	admin := f.session(t, "admin@example.ro", "Admin", true)

	res, err := f.posts.Create(ctx, author, validInput(), nil)
	require.NoError(t, err)

	_, err = f.posts.Post(res.Post.ID, nil)
	assert.ErrorIs(t, err, ErrPostNotFound)
	_, err = f.posts.Post(res.Post.ID, author)
	assert.ErrorIs(t, err, ErrPostNotFound)

	got, err := f.posts.Post(res.Post.ID, admin)
	require.NoError(t, err)
	assert.Equal(t, model.PostStatusPending, got.Status)

	require.NoError(t, f.moderation.Approve(ctx, admin, res.Post.ID))
	got, err = f.posts.Post(res.Post.ID, nil)
	require.NoError(t, err)
	assert.True(t, got.IsApproved())

	_, err = f.posts.Post("missing", admin)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestAddReply(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	author := f.session(t, "ana@example.ro", "Ana", false)
	replier := f.session(t, "ion@example.ro", "Ion Ionescu", false)
	admin := f.session(t, "admin@example.ro", "Admin", true)

	res, err := f.posts.Create(ctx, author, validInput(), nil)
	require.NoError(t, err)
	postID := res.Post.ID

	_, err = f.posts.AddReply(replier, postID, "Și eu am pățit la fel.", false)
	assert.ErrorIs(t, err, ErrPostNotFound, "pending posts take no replies")

	require.NoError(t, f.moderation.Approve(ctx, admin, postID))

	_, err = f.posts.AddReply(nil, postID, "Anonim fără cont", false)
	assert.ErrorIs(t, err, ErrAuthRequired)

	_, err = f.posts.AddReply(replier, postID, strings.Repeat("a", 501), false)
	var verrs *validation.Errors
	require.ErrorAs(t, err, &verrs)

	_, err = f.posts.AddReply(replier, postID, "   ", false)
	require.ErrorAs(t, err, &verrs)

	first, err := f.posts.AddReply(replier, postID, strings.Repeat("ă", 500), false)
	require.NoError(t, err)
	assert.Equal(t, "Ion Ionescu", first.DisplayName)

	second, err := f.posts.AddReply(replier, postID, "Anonim de data asta", true)
	require.NoError(t, err)
	assert.Equal(t, "Anonim", second.DisplayName)

	replies, err := f.posts.Replies(postID)
	require.NoError(t, err)
	require.Len(t, replies, 2)
	assert.Equal(t, first.ID, replies[0].ID)

	list, err := f.posts.List(model.PostFilter{County: "Cluj", Hospital: "județean"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].ReplyCount)
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "posts/p1-1700000000000.jpg", ObjectKey("p1", 1700000000000, "jpg"))
	assert.Equal(t, "png", fileExtension("scan.final.png"))
	assert.Equal(t, "JPG", fileExtension("IMG_1.JPG"))
	assert.Equal(t, "fara-extensie", fileExtension("fara-extensie"))
	assert.Equal(t, "image/png", imageContentType("PNG"))
	assert.Equal(t, "image/jpeg", imageContentType("jpeg"))
}
