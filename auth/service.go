// Package auth implements registration, login and the bearer-token gate.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"recipebook/common"
	"recipebook/logging"
	"recipebook/models"
	"recipebook/uploads"
	"recipebook/users"
	"recipebook/utils"
)

type RegisterInput struct {
	Username       string        `json:"username" validate:"required,max=50,username"`
	Email          string        `json:"email"    validate:"required,email"`
	Password       string        `json:"password" validate:"required,maxbytes=72"`
	ProfilePicture *uploads.File `json:"-"        validate:"-"`
}

type Service struct {
	users   users.Store
	tokens  *Tokens
	uploads *uploads.Store
	log     logging.Logger
	now     func() time.Time
}

func NewService(store users.Store, tokens *Tokens, up *uploads.Store, log logging.Logger) *Service {
	return &Service{users: store, tokens: tokens, uploads: up, log: logging.OrNop(log), now: time.Now}
}

// Register validates the input, rejects duplicate usernames and emails, stores
// the optional profile picture and creates the user.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	if err := utils.Validate(in); err != nil {
		return nil, err
	}

	if err := s.ensureAvailable(ctx, in.Username, in.Email); err != nil {
		return nil, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}

	if in.ProfilePicture != nil && s.uploads != nil {
		url, err := s.uploads.Save(ctx, in.Username, *in.ProfilePicture)
		if err != nil {
			return nil, fmt.Errorf("save profile picture: %w", err)
		}
		user.ProfilePicture = url
	}

	if err := s.users.Create(ctx, user); err != nil {
		if user.ProfilePicture != "" {
			s.uploads.Remove(ctx, user.ProfilePicture)
		}
		return nil, err
	}
	s.log.Info(ctx, "user registered", "user_id", user.ID.Hex(), "username", user.Username)
	return user, nil
}

func (s *Service) ensureAvailable(ctx context.Context, username, email string) error {
	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return users.ErrUsernameTaken
	} else if !errors.Is(err, common.ErrNotFound) {
		return err
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return users.ErrEmailTaken
	} else if !errors.Is(err, common.ErrNotFound) {
		return err
	}
	return nil
}

// Login verifies the credentials and issues a token.
func (s *Service) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", nil, common.ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !CheckPassword(user.PasswordHash, password) {
		return "", nil, common.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, user, nil
}

// Refresh issues a new token for an already authenticated user.
func (s *Service) Refresh(_ context.Context, user *models.User) (string, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// Authenticate runs the token gate on an Authorization header value:
// parse the header, verify signature, check expiry, resolve the user.
// Each stage fails with its own error kind.
func (s *Service) Authenticate(ctx context.Context, header string) (*models.User, error) {
	raw, err := ParseAuthorizationHeader(header)
	if err != nil {
		return nil, err
	}

	userID, err := s.tokens.Verify(raw)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnknownUser
		}
		return nil, err
	}
	return user, nil
}
