package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"shootdesk-backend/internal/models"
	"shootdesk-backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 6
	minNameLength     = 2
	maxNameLength     = 100
	resetTokenTTL     = 30 * time.Minute
	resetPurpose      = "password_reset"
)

// ErrInvalidCredentials is returned when email and password do not match
var ErrInvalidCredentials = errors.New("invalid email or password")

// SignUpInput holds the fields of a new account
type SignUpInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
}

// SignInResult is returned on successful sign in
type SignInResult struct {
	Token   string          `json:"token"`
	Session *Session        `json:"-"`
	Profile *models.Profile `json:"profile"`
}

// AuthService handles accounts, credentials and sessions
type AuthService struct {
	store     *repository.Store
	sessions  *SessionStore
	jwtSecret string
	hashCost  int
	now       func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(store *repository.Store, sessions *SessionStore, jwtSecret string) *AuthService {
	return &AuthService{
		store:     store,
		sessions:  sessions,
		jwtSecret: jwtSecret,
		hashCost:  bcrypt.DefaultCost,
		now:       time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateSignUp(in SignUpInput) error {
	addr, err := mail.ParseAddress(in.Email)
	if err != nil || addr.Address != in.Email {
		return validationf("email", "please enter a valid email address")
	}
	if len(in.Password) < minPasswordLength {
		return validationf("password", "password must be at least %d characters", minPasswordLength)
	}
	n := utf8.RuneCountInString(in.Name)
	if n < minNameLength || n > maxNameLength {
		return validationf("name", "name must be between %d and %d characters", minNameLength, maxNameLength)
	}
	return nil
}

// SignUp registers a new photographer account
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (*models.Profile, error) {
	return s.CreateUser(ctx, in, models.RolePhotographer)
}

// CreateUser creates an account with the given role
func (s *AuthService) CreateUser(ctx context.Context, in SignUpInput, role models.Role) (*models.Profile, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)

	if !role.Valid() {
		return nil, validationf("role", "unknown role %q", role)
	}
	if err := validateSignUp(in); err != nil {
		return nil, err
	}

	if _, err := s.store.Credentials.GetByEmail(ctx, in.Email); err == nil {
		return nil, validationf("email", "an account with this email already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, backend("look up credential", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now().UTC()
	profile := &models.Profile{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.Phone != "" {
		profile.Phone = &in.Phone
	}

	cred := &models.Credential{
		ProfileID:    profile.ID,
		Email:        in.Email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Credentials.CreateAccount(ctx, profile, cred); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, validationf("email", "an account with this email already exists")
		}
		return nil, backend("create account", err)
	}

	log.Info().
		Str("profile_id", profile.ID).
		Str("role", string(role)).
		Msg("Account created")

	return profile, nil
}

// SignIn verifies credentials and opens a session
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	cred, err := s.store.Credentials.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, backend("look up credential", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	profile, err := s.store.Profiles.GetByID(ctx, cred.ProfileID)
	if err != nil {
		return nil, backend("get profile", err)
	}

	session := s.sessions.Create(profile)
	token, err := s.GenerateJWT(session)
	if err != nil {
		s.sessions.Delete(session.ID)
		return nil, err
	}

	log.Info().Str("profile_id", profile.ID).Msg("Signed in")

	return &SignInResult{Token: token, Session: session, Profile: profile}, nil
}

// SignOut invalidates the session behind a token
func (s *AuthService) SignOut(session *Session) {
	s.sessions.Delete(session.ID)
	log.Info().Str("profile_id", session.ProfileID).Msg("Signed out")
}

// Authenticate resolves a token to its live session
func (s *AuthService) Authenticate(tokenString string) (*Session, error) {
	claims, err := s.parseJWT(tokenString)
	if err != nil {
		return nil, ErrUnauthorized
	}

	sid, _ := claims["sid"].(string)
	userID, _ := claims["user_id"].(string)
	if sid == "" || userID == "" {
		return nil, ErrUnauthorized
	}

	session, ok := s.sessions.Get(sid)
	if !ok || session.ProfileID != userID {
		return nil, ErrUnauthorized
	}
	return session, nil
}

// GenerateJWT generates a JWT token for a session
func (s *AuthService) GenerateJWT(session *Session) (string, error) {
	claims := jwt.MapClaims{
		"user_id": session.ProfileID,
		"sid":     session.ID,
		"exp":     session.ExpiresAt.Unix(),
		"iat":     session.CreatedAt.Unix(),
	}
	return s.sign(claims)
}

func (s *AuthService) sign(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

func (s *AuthService) parseJWT(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// RequestPasswordReset issues a short-lived reset token for an email.
// Unknown emails succeed silently. The token is delivered through the log.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	cred, err := s.store.Credentials.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Info().Msg("Password reset requested for unknown email")
			return "", nil
		}
		return "", backend("look up credential", err)
	}

	now := s.now()
	token, err := s.sign(jwt.MapClaims{
		"user_id": cred.ProfileID,
		"purpose": resetPurpose,
		"pwh":     passwordFingerprint(cred.PasswordHash),
		"exp":     now.Add(resetTokenTTL).Unix(),
		"iat":     now.Unix(),
	})
	if err != nil {
		return "", err
	}

	log.Info().
		Str("profile_id", cred.ProfileID).
		Str("reset_token", token).
		Msg("Password reset token issued")

	return token, nil
}

// ResetPassword sets a new password using a reset token and ends existing sessions
func (s *AuthService) ResetPassword(ctx context.Context, tokenString, newPassword string) error {
	claims, err := s.parseJWT(tokenString)
	if err != nil {
		return validationf("token", "reset link is invalid or has expired")
	}
	if purpose, _ := claims["purpose"].(string); purpose != resetPurpose {
		return validationf("token", "reset link is invalid or has expired")
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return validationf("token", "reset link is invalid or has expired")
	}

	if len(newPassword) < minPasswordLength {
		return validationf("password", "password must be at least %d characters", minPasswordLength)
	}

	// A token is bound to the password it was issued against, so it stops working once used.
	cred, err := s.store.Credentials.GetByProfileID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return validationf("token", "reset link is invalid or has expired")
		}
		return backend("look up credential", err)
	}
	if fingerprint, _ := claims["pwh"].(string); fingerprint != passwordFingerprint(cred.PasswordHash) {
		return validationf("token", "reset link is invalid or has expired")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.hashCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.store.Credentials.UpdatePasswordHash(ctx, userID, string(hash)); err != nil {
		return backend("update password", err)
	}

	s.sessions.DeleteForProfile(userID)
	log.Info().Str("profile_id", userID).Msg("Password reset")
	return nil
}

// passwordFingerprint identifies a stored password hash without revealing it
func passwordFingerprint(hash string) string {
	sum := sha256.Sum256([]byte(hash))
	return hex.EncodeToString(sum[:8])
}

// Profile returns the profile behind a session
func (s *AuthService) Profile(ctx context.Context, session *Session) (*models.Profile, error) {
	profile, err := s.store.Profiles.GetByID(ctx, session.ProfileID)
	if err != nil {
		return nil, backend("get profile", err)
	}
	return profile, nil
}

// UpdatePushToken registers or clears the caller's device token
func (s *AuthService) UpdatePushToken(ctx context.Context, session *Session, token string) error {
	token = strings.TrimSpace(token)
	var ptr *string
	if token != "" {
		ptr = &token
	}
	if err := s.store.Profiles.UpdatePushToken(ctx, session.ProfileID, ptr); err != nil {
		return backend("update push token", err)
	}
	return nil
}
