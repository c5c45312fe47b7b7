// Package auth registers and signs in users and resolves bearer tokens
// to actors.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/nhle/taskflow/internal/clock"
	"github.com/nhle/taskflow/internal/model"
	"github.com/nhle/taskflow/internal/policy"
	"github.com/nhle/taskflow/internal/store"
)

// HashCost is the bcrypt work factor for stored passwords.
const HashCost = bcrypt.DefaultCost

// MinResetPasswordLength is the shortest password an admin may set.
const MinResetPasswordLength = 6

// Session is a user together with a freshly issued token.
type Session struct {
	model.User
	Token string `json:"token"`
}

// RegisterInput is the body of a registration request.
type RegisterInput struct {
	Name             string  `json:"name"`
	Email            string  `json:"email"`
	Password         string  `json:"password"`
	ProfileImageURL  *string `json:"profileImageUrl"`
	AdminInviteToken string  `json:"adminInviteToken"`
}

// LoginInput is the body of a login request.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileInput is the body of a profile update. Empty fields are kept.
type ProfileInput struct {
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Password        string  `json:"password"`
	ProfileImageURL *string `json:"profileImageUrl"`
}

// ResetPasswordInput is the body of an admin password reset.
type ResetPasswordInput struct {
	NewPassword string `json:"newPassword"`
}

// Service manages accounts and tokens.
type Service struct {
	store       store.Store
	tokens      *Tokens
	inviteToken string
	clock       clock.Clock
	log         zerolog.Logger
}

// NewService returns a Service. Registrations presenting inviteToken
// become admins; an empty inviteToken disables admin registration.
func NewService(s store.Store, tokens *Tokens, inviteToken string, c clock.Clock, log zerolog.Logger) *Service {
	return &Service{
		store:       s,
		tokens:      tokens,
		inviteToken: inviteToken,
		clock:       c,
		log:         log.With().Str("component", "auth").Logger(),
	}
}

// HashPassword returns the bcrypt hash of password. Passwords bcrypt
// cannot hash in full fail with a validation error.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", model.Validationf("Password must be at most 72 bytes")
	}
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// Register creates a member account, or an admin account when the
// invite token matches, and signs it in.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	name := strings.TrimSpace(in.Name)
	email := model.NormalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, model.Validationf("Name, email and password are required")
	}

	role := model.RoleMember
	if s.isInviteToken(in.AdminInviteToken) {
		role = model.RoleAdmin
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	user := model.User{
		Name:            name,
		Email:           email,
		Password:        hash,
		ProfileImageURL: in.ProfileImageURL,
		Role:            role,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.CreateUser(ctx, &user); err != nil {
		return nil, err
	}
	s.log.Info().Str("user", user.ID).Str("role", string(role)).Msg("user registered")
	return s.session(user)
}

func (s *Service) isInviteToken(token string) bool {
	if s.inviteToken == "" || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.inviteToken)) == 1
}

// Login checks the credentials and signs the user in. Unknown emails and
// wrong passwords fail identically.
func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	invalid := model.Unauthorizedf("Invalid email or password")

	user, err := s.store.GetUserByEmail(ctx, in.Email)
	if errors.Is(err, model.ErrNotFound) {
		s.log.Debug().Msg("login failed: unknown email")
		return nil, invalid
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)) != nil {
		s.log.Debug().Str("user", user.ID).Msg("login failed: wrong password")
		return nil, invalid
	}
	return s.session(*user)
}

// Authenticate resolves a bearer token to the actor it was issued for.
func (s *Service) Authenticate(ctx context.Context, token string) (model.Actor, error) {
	id, err := s.tokens.Verify(token)
	if err != nil {
		return model.Actor{}, err
	}
	user, err := s.store.GetUserByID(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return model.Actor{}, model.Unauthorizedf("Token failed")
	}
	if err != nil {
		return model.Actor{}, err
	}
	return user.Actor(), nil
}

// Profile returns the actor's own account.
func (s *Service) Profile(ctx context.Context, actor model.Actor) (*model.User, error) {
	return s.store.GetUserByID(ctx, actor.ID)
}

// UpdateProfile changes the actor's own account and returns a new session.
func (s *Service) UpdateProfile(ctx context.Context, actor model.Actor, in ProfileInput) (*Session, error) {
	user, err := s.store.GetUserByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		user.Name = name
	}
	if email := model.NormalizeEmail(in.Email); email != "" {
		user.Email = email
	}
	if in.Password != "" {
		hash, err := HashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hash
	}
	if in.ProfileImageURL != nil {
		user.ProfileImageURL = in.ProfileImageURL
	}
	user.UpdatedAt = s.clock.Now().UTC()

	if err := s.store.SaveUser(ctx, *user); err != nil {
		return nil, err
	}
	return s.session(*user)
}

// User returns the account with the given ID.
func (s *Service) User(ctx context.Context, actor model.Actor, id string) (*model.User, error) {
	if err := policy.Authorize(policy.ReadUser, actor, nil); err != nil {
		return nil, err
	}
	return s.store.GetUserByID(ctx, id)
}

// ResetPassword sets a new password on the account with the given ID.
func (s *Service) ResetPassword(ctx context.Context, actor model.Actor, id string, newPassword string) error {
	if err := policy.Authorize(policy.ResetPassword, actor, nil); err != nil {
		s.log.Debug().Str("actor", actor.ID).Msg("password reset denied")
		return err
	}
	if utf8.RuneCountInString(newPassword) < MinResetPasswordLength {
		return model.Validationf("Password must be at least %d characters", MinResetPasswordLength)
	}

	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.Password = hash
	user.UpdatedAt = s.clock.Now().UTC()
	if err := s.store.SaveUser(ctx, *user); err != nil {
		return err
	}
	s.log.Info().Str("user", user.ID).Str("actor", actor.ID).Msg("password reset")
	return nil
}

func (s *Service) session(user model.User) (*Session, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Token: token}, nil
}
