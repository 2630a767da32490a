package service

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voceapacientilor/vocea/internal/model"
	"github.com/voceapacientilor/vocea/internal/validation"
)

func latestToken(t *testing.T, f *fixture, userID, tokenType string) string {
	t.Helper()

	var token string
	err := f.db.Get(&token, `SELECT token FROM tokens WHERE user_id = $1 AND type = $2 AND used_at IS NULL`, userID, tokenType)
	require.NoError(t, err)
	return token
}

func TestRegisterVerifyLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.auth.Register(ctx, "bad", "short", "")
	var verrs *validation.Errors
	require.ErrorAs(t, err, &verrs)
	assert.NotEmpty(t, verrs.Get("email"))
	assert.NotEmpty(t, verrs.Get("password"))

	user, err := f.auth.Register(ctx, " Maria@Example.ro ", "ceai-verde-si-munte", "<i>Maria</i> Pop")
	require.NoError(t, err)
	assert.Equal(t, "maria@example.ro", user.Email)

	profile, err := f.profiles.ByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maria Pop", profile.Name())
	assert.False(t, profile.ShowRealName)
	assert.False(t, profile.IsAdmin)

	_, err = f.auth.Register(ctx, "maria@example.ro", "ceai-verde-si-munte", "")
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)

	_, err = f.auth.Login("maria@example.ro", "ceai-verde-si-munte")
	assert.ErrorIs(t, err, ErrEmailNotVerified)

	// presenting a token on the wrong endpoint burns it
	token := latestToken(t, f, user.ID, model.TokenTypeEmailVerify)
	_, err = f.auth.VerifyMagicLink(token)
	assert.ErrorIs(t, err, ErrInvalidLink)
	_, err = f.auth.VerifyEmail(token)
	assert.ErrorIs(t, err, ErrInvalidLink)
}

func TestVerifyEmailThenLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	user, err := f.auth.Register(ctx, "maria@example.ro", "ceai-verde-si-munte", "")
	require.NoError(t, err)

	verified, err := f.auth.VerifyEmail(latestToken(t, f, user.ID, model.TokenTypeEmailVerify))
	require.NoError(t, err)
	assert.True(t, verified.IsVerified())

	got, err := f.auth.Login("MARIA@example.ro", "ceai-verde-si-munte")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = f.auth.Login("maria@example.ro", "parola-gresita-lunga")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.auth.Login("nimeni@example.ro", "ceai-verde-si-munte")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestMagicLink(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	assert.ErrorIs(t, f.auth.SendMagicLink(ctx, "nu-e-email"), ErrInvalidEmail)
	require.NoError(t, f.auth.SendMagicLink(ctx, "nou@example.ro"))

	user, err := f.users.ByEmail("nou@example.ro")
	require.NoError(t, err)
	assert.False(t, user.HasPassword())
	assert.False(t, user.IsVerified())

	token := latestToken(t, f, user.ID, model.TokenTypeMagicLink)
	got, err := f.auth.VerifyMagicLink(token)
	require.NoError(t, err)
	assert.True(t, got.IsVerified())

	_, err = f.auth.VerifyMagicLink(token)
	assert.ErrorIs(t, err, ErrInvalidLink, "links are single use")

	_, err = f.auth.Login("nou@example.ro", "orice-parola-lunga")
	assert.ErrorIs(t, err, ErrPasswordless)
}

func TestAuthenticateOAuth(t *testing.T) {
	f := newFixture(t)

	user, err := f.auth.AuthenticateOAuth("Gh@Example.ro", "Gheorghe", "github")
	require.NoError(t, err)
	assert.True(t, user.IsVerified())

	again, err := f.auth.AuthenticateOAuth("gh@example.ro", "", "google")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)

	profile, err := f.profiles.ByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Gheorghe", profile.Name())
}

func TestUnverifiedPasswordDoesNotSurviveTakeover(t *testing.T) {
	ctx := context.Background()

	t.Run("oauth", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.auth.Register(ctx, "victima@example.ro", "parola-atacatorului", "")
		require.NoError(t, err)

		owner, err := f.auth.AuthenticateOAuth("victima@example.ro", "Victima", "google")
		require.NoError(t, err)
		assert.True(t, owner.IsVerified())
		assert.False(t, owner.HasPassword())

		_, err = f.auth.Login("victima@example.ro", "parola-atacatorului")
		assert.ErrorIs(t, err, ErrPasswordless)
	})

	t.Run("magic link", func(t *testing.T) {
		f := newFixture(t)

		user, err := f.auth.Register(ctx, "victima@example.ro", "parola-atacatorului", "")
		require.NoError(t, err)
		require.NoError(t, f.auth.SendMagicLink(ctx, "victima@example.ro"))

		owner, err := f.auth.VerifyMagicLink(latestToken(t, f, user.ID, model.TokenTypeMagicLink))
		require.NoError(t, err)
		assert.False(t, owner.HasPassword())

		stored, err := f.users.ByID(user.ID)
		require.NoError(t, err)
		assert.Nil(t, stored.PasswordHash)

		_, err = f.auth.Login("victima@example.ro", "parola-atacatorului")
		assert.ErrorIs(t, err, ErrPasswordless)
	})

	t.Run("verified password is kept", func(t *testing.T) {
		f := newFixture(t)

		user, err := f.auth.Register(ctx, "maria@example.ro", "ceai-verde-si-munte", "")
		require.NoError(t, err)
		_, err = f.auth.VerifyEmail(latestToken(t, f, user.ID, model.TokenTypeEmailVerify))
		require.NoError(t, err)

		_, err = f.auth.AuthenticateOAuth("maria@example.ro", "", "github")
		require.NoError(t, err)

		_, err = f.auth.Login("maria@example.ro", "ceai-verde-si-munte")
		assert.NoError(t, err)
	})
}

func TestJWT(t *testing.T) {
	f := newFixture(t)
	user := &model.User{ID: "user-1"}

	token, err := f.auth.GenerateJWT(user)
	require.NoError(t, err)

	id, err := f.auth.VerifyJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)

	_, err = f.auth.VerifyJWT(token + "x")
	assert.Error(t, err)

	other := NewAuthService(nil, nil, nil, nil, "other-secret", false, 0, 0, 0)
	_, err = other.VerifyJWT(token)
	assert.Error(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, f.auth.SignIn(rec, user))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, AuthCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
}
