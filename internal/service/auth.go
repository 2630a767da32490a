package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/voceapacientilor/vocea/internal/model"
	"github.com/voceapacientilor/vocea/internal/repository"
	"github.com/voceapacientilor/vocea/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

const AuthCookieName = "auth_token"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrPasswordless       = errors.New("account has no password")
	ErrInvalidLink        = errors.New("invalid or expired link")
)

type AuthService struct {
	userRepository         repository.UserRepository
	profileRepository      repository.ProfileRepository
	tokenRepository        repository.TokenRepository
	emailService           *EmailService
	jwtSecret              string
	isProduction           bool
	jwtExpiry              time.Duration
	tokenEmailVerifyExpiry time.Duration
	tokenMagicLinkExpiry   time.Duration
}

func NewAuthService(
	userRepository repository.UserRepository,
	profileRepository repository.ProfileRepository,
	tokenRepository repository.TokenRepository,
	emailService *EmailService,
	jwtSecret string,
	isProduction bool,
	jwtExpiry time.Duration,
	tokenEmailVerifyExpiry time.Duration,
	tokenMagicLinkExpiry time.Duration,
) *AuthService {
	return &AuthService{
		userRepository:         userRepository,
		profileRepository:      profileRepository,
		tokenRepository:        tokenRepository,
		emailService:           emailService,
		jwtSecret:              jwtSecret,
		isProduction:           isProduction,
		jwtExpiry:              jwtExpiry,
		tokenEmailVerifyExpiry: tokenEmailVerifyExpiry,
		tokenMagicLinkExpiry:   tokenMagicLinkExpiry,
	}
}

func (s *AuthService) Login(email, password string) (*model.User, error) {
	email = validation.NormalizeEmail(email)

	user, err := s.userRepository.ByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !user.HasPassword() {
		return nil, ErrPasswordless
	}

	if s.ComparePassword(password, *user.PasswordHash) != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsVerified() {
		return nil, ErrEmailNotVerified
	}

	return user, nil
}

// Register creates a password account with its profile and mails a verification link.
// The account cannot sign in with its password until the email is verified.
func (s *AuthService) Register(ctx context.Context, email, password, fullName string) (*model.User, error) {
	email = validation.NormalizeEmail(email)
	fullName = validation.SanitizeText(fullName)

	var errs validation.Errors
	errs.Check("email", validation.ValidateEmail(email))
	errs.Check("password", validation.ValidatePassword(password))
	errs.Check("full_name", validation.ValidateFullName(fullName))
	if err := errs.OrNil(); err != nil {
		return nil, err
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.createAccount(email, &hash, nil, fullName)
	if err != nil {
		return nil, err
	}

	err = s.sendToken(ctx, user, model.TokenTypeEmailVerify, s.tokenEmailVerifyExpiry, s.emailService.SendVerificationEmail)
	if err != nil {
		return nil, err
	}

	slog.Info("user registered", "user_id", user.ID)
	return user, nil
}

// VerifyEmail consumes a verification token and marks the email verified.
func (s *AuthService) VerifyEmail(token string) (*model.User, error) {
	return s.consumeLink(token, model.TokenTypeEmailVerify)
}

// SendMagicLink mails a one-time sign-in link, creating a passwordless
// account when the address is new.
func (s *AuthService) SendMagicLink(ctx context.Context, email string) error {
	email = validation.NormalizeEmail(email)

	if validation.ValidateEmail(email) != nil {
		return ErrInvalidEmail
	}

	user, err := s.userRepository.ByEmail(email)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return fmt.Errorf("failed to lookup user: %w", err)
		}

		user, err = s.createAccount(email, nil, nil, "")
		if err != nil {
			return err
		}
		slog.Info("new passwordless user created", "user_id", user.ID)
	}

	err = s.sendToken(ctx, user, model.TokenTypeMagicLink, s.tokenMagicLinkExpiry, s.emailService.SendMagicLinkEmail)
	if err != nil {
		return err
	}

	slog.Info("magic link sent", "user_id", user.ID)
	return nil
}

// VerifyMagicLink consumes a magic link token. Opening the link proves
// ownership of the address, so the email is marked verified too.
func (s *AuthService) VerifyMagicLink(token string) (*model.User, error) {
	return s.consumeLink(token, model.TokenTypeMagicLink)
}

// AuthenticateOAuth signs in with a provider-verified email, creating the
// account on first use.
func (s *AuthService) AuthenticateOAuth(email, name, provider string) (*model.User, error) {
	email = validation.NormalizeEmail(email)

	if validation.ValidateEmail(email) != nil {
		return nil, ErrInvalidEmail
	}

	user, err := s.userRepository.ByEmail(email)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to lookup user: %w", err)
		}

		now := time.Now().UTC()
		user, err = s.createAccount(email, nil, &now, validation.SanitizeText(name))
		if err != nil {
			return nil, err
		}

		slog.Info("new OAuth user created", "user_id", user.ID, "provider", provider)
		return user, nil
	}

	err = s.markVerified(user, false)
	if err != nil {
		return nil, err
	}

	slog.Info("user authenticated via OAuth", "user_id", user.ID, "provider", provider)
	return user, nil
}

func (s *AuthService) createAccount(email string, passwordHash *string, verifiedAt *time.Time, fullName string) (*model.User, error) {
	now := time.Now().UTC()
	user := &model.User{
		ID:              uuid.New().String(),
		Email:           email,
		PasswordHash:    passwordHash,
		EmailVerifiedAt: verifiedAt,
		CreatedAt:       now,
	}

	err := s.userRepository.Create(user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	profile := &model.UserProfile{
		ID:        user.ID,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if fullName != "" {
		profile.FullName = &fullName
	}

	err = s.profileRepository.Create(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	return user, nil
}

func (s *AuthService) sendToken(
	ctx context.Context,
	user *model.User,
	tokenType string,
	expiry time.Duration,
	send func(ctx context.Context, email, token string) error,
) error {
	err := s.tokenRepository.DeleteByUserAndType(user.ID, tokenType)
	if err != nil {
		slog.Warn("failed to delete old tokens", "error", err, "user_id", user.ID, "type", tokenType)
	}

	value, err := s.GenerateToken()
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}

	err = s.tokenRepository.Create(&model.Token{
		UserID:    user.ID,
		Type:      tokenType,
		Token:     value,
		ExpiresAt: time.Now().UTC().Add(expiry),
	})
	if err != nil {
		return fmt.Errorf("failed to create token: %w", err)
	}

	err = send(ctx, user.Email, value)
	if err != nil {
		slog.Error("failed to send email", "error", err, "user_id", user.ID, "type", tokenType)
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

func (s *AuthService) consumeLink(token, tokenType string) (*model.User, error) {
	t, err := s.tokenRepository.ConsumeToken(token)
	if err != nil {
		return nil, ErrInvalidLink
	}

	if t.Type != tokenType {
		return nil, ErrInvalidLink
	}

	user, err := s.userRepository.ByID(t.UserID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	err = s.markVerified(user, tokenType == model.TokenTypeEmailVerify)
	if err != nil {
		return nil, err
	}

	slog.Info("user authenticated via link", "user_id", user.ID, "type", tokenType)
	return user, nil
}

// markVerified records that the caller controls the user's mailbox. A
// password set on a never-verified account was chosen by whoever registered
// the address first, so it only survives the registration's own
// verification link.
func (s *AuthService) markVerified(user *model.User, keepPassword bool) error {
	if user.IsVerified() {
		return nil
	}

	now := time.Now().UTC()
	user.EmailVerifiedAt = &now
	if !keepPassword && user.HasPassword() {
		user.PasswordHash = nil
		slog.Info("dropped password set before verification", "user_id", user.ID)
	}
	if err := s.userRepository.Update(user); err != nil {
		return fmt.Errorf("failed to mark email as verified: %w", err)
	}
	return nil
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func (s *AuthService) ComparePassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

func (s *AuthService) GenerateToken() (string, error) {
	bytes := make([]byte, 32)
	_, err := rand.Read(bytes)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

func (s *AuthService) GenerateJWT(user *model.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"exp":     now.Add(s.jwtExpiry).Unix(),
		"iat":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// VerifyJWT validates the signature and expiry and returns the user id.
func (s *AuthService) VerifyJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	userID, _ := claims["user_id"].(string)
	if strings.TrimSpace(userID) == "" {
		return "", fmt.Errorf("token has no user_id claim")
	}
	return userID, nil
}

// SignIn issues a session cookie for user.
func (s *AuthService) SignIn(w http.ResponseWriter, user *model.User) error {
	token, err := s.GenerateJWT(user)
	if err != nil {
		return fmt.Errorf("failed to generate session token: %w", err)
	}
	s.SetJWTCookie(w, token, time.Now().Add(s.jwtExpiry))
	return nil
}

func (s *AuthService) SetJWTCookie(w http.ResponseWriter, token string, expiry time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    token,
		Expires:  expiry,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *AuthService) ClearJWTCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}
