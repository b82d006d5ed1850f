package auth

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"recipebook/common"
	"recipebook/models"
	"recipebook/uploads"
	"recipebook/users"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestService(t *testing.T) (*Service, *users.MemoryStore) {
	t.Helper()
	store := users.NewMemoryStore()
	up, err := uploads.NewStore(t.TempDir(), nil)
	require.NoError(t, err)
	return NewService(store, NewTokens("secret", time.Hour), up, nil), store
}

func register(t *testing.T, s *Service, username, email string) {
	t.Helper()
	_, err := s.Register(context.Background(), RegisterInput{Username: username, Email: email, Password: "pw-" + username})
	require.NoError(t, err)
}

func TestRegister_StoresHashNotPassword(t *testing.T) {
	s, store := newTestService(t)

	u, err := s.Register(context.Background(), RegisterInput{Username: " asha ", Email: "asha@example.com", Password: "hunter2"})
	require.NoError(t, err)
	assert.Equal(t, "asha", u.Username)
	assert.False(t, u.CreatedAt.IsZero())

	stored, err := store.FindByUsername(context.Background(), "asha")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", stored.PasswordHash)
	assert.True(t, CheckPassword(stored.PasswordHash, "hunter2"))
}

func TestRegister_DuplicateUsername(t *testing.T) {
	s, _ := newTestService(t)
	register(t, s, "asha", "asha@example.com")

	_, err := s.Register(context.Background(), RegisterInput{Username: "asha", Email: "new@example.com", Password: "x"})
	assert.ErrorIs(t, err, users.ErrUsernameTaken)
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	s, _ := newTestService(t)
	register(t, s, "asha", "asha@example.com")

	_, err := s.Register(context.Background(), RegisterInput{Username: "bela", Email: "asha@example.com", Password: "x"})
	assert.ErrorIs(t, err, users.ErrEmailTaken)
}

func TestRegister_Validation(t *testing.T) {
	s, _ := newTestService(t)
	tests := []struct {
		name string
		in   RegisterInput
		msg  string
	}{
		{"no username", RegisterInput{Email: "a@x.io", Password: "p"}, "Username is required"},
		{"no email", RegisterInput{Username: "a", Password: "p"}, "Email is required"},
		{"no password", RegisterInput{Username: "a", Email: "a@x.io"}, "Password is required"},
		{"long username", RegisterInput{Username: strings.Repeat("a", 51), Email: "a@x.io", Password: "p"}, "Username must be at most 50 characters"},
		{"long password", RegisterInput{Username: "a", Email: "a@x.io", Password: strings.Repeat("p", 73)}, "Password must be at most 72 bytes"},
		{"multibyte password", RegisterInput{Username: "a", Email: "a@x.io", Password: strings.Repeat("é", 37)}, "Password must be at most 72 bytes"},
		{"bad email", RegisterInput{Username: "a", Email: "not-an-email", Password: "p"}, "Invalid email address"},
		{"underscore username", RegisterInput{Username: "bob_", Email: "a@x.io", Password: "p"}, "Username may only contain letters, digits, '.' and '-'"},
		{"punctuation username", RegisterInput{Username: "bob!", Email: "a@x.io", Password: "p"}, "Username may only contain letters, digits, '.' and '-'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Register(context.Background(), tt.in)
			assert.ErrorIs(t, err, common.ErrValidation)
			assert.Equal(t, tt.msg, common.Message(err))
		})
	}
}

func TestRegister_ProfilePicture(t *testing.T) {
	s, _ := newTestService(t)

	u, err := s.Register(context.Background(), RegisterInput{
		Username:       "asha",
		Email:          "asha@example.com",
		Password:       "p",
		ProfilePicture: &uploads.File{Name: "me.txt", Body: strings.NewReader("hi")},
	})
	require.NoError(t, err)
	assert.Equal(t, "/uploads/asha_me.txt", u.ProfilePicture)
}

type failingCreate struct {
	*users.MemoryStore
}

func (failingCreate) Create(context.Context, *models.User) error {
	return errors.New("insert failed")
}

func TestRegister_FailedCreateRemovesPicture(t *testing.T) {
	dir := t.TempDir()
	up, err := uploads.NewStore(dir, nil)
	require.NoError(t, err)
	s := NewService(failingCreate{users.NewMemoryStore()}, NewTokens("secret", time.Hour), up, nil)

	_, err = s.Register(context.Background(), RegisterInput{
		Username:       "asha",
		Email:          "asha@example.com",
		Password:       "p",
		ProfilePicture: &uploads.File{Name: "me.txt", Body: strings.NewReader("hi")},
	})
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLogin(t *testing.T) {
	s, _ := newTestService(t)
	register(t, s, "asha", "asha@example.com")

	token, u, err := s.Login(context.Background(), "asha", "pw-asha")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "asha", u.Username)

	_, _, err = s.Login(context.Background(), "asha", "wrong")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)

	_, _, err = s.Login(context.Background(), "nobody", "pw")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestAuthenticate_Stages(t *testing.T) {
	s, store := newTestService(t)
	register(t, s, "asha", "asha@example.com")
	ctx := context.Background()

	token, user, err := s.Login(ctx, "asha", "pw-asha")
	require.NoError(t, err)

	got, err := s.Authenticate(ctx, "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = s.Authenticate(ctx, "")
	assert.ErrorIs(t, err, common.ErrMalformedHeader)

	_, err = s.Authenticate(ctx, "Bearer")
	assert.ErrorIs(t, err, common.ErrMalformedHeader)

	_, err = s.Authenticate(ctx, "Bearer "+token+"x")
	assert.ErrorIs(t, err, common.ErrInvalidToken)

	s.tokens.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = s.Authenticate(ctx, "Bearer "+token)
	assert.ErrorIs(t, err, common.ErrExpiredToken)
	s.tokens.now = time.Now

	require.NoError(t, store.Delete(ctx, user.ID))
	_, err = s.Authenticate(ctx, "Bearer "+token)
	assert.ErrorIs(t, err, common.ErrUnknownUser)
}

func TestAuthenticate_TokenForUnknownID(t *testing.T) {
	s, _ := newTestService(t)

	token, err := s.tokens.Issue(primitive.NewObjectID())
	require.NoError(t, err)

	_, err = s.Authenticate(context.Background(), "Bearer "+token)
	assert.ErrorIs(t, err, common.ErrUnknownUser)
}

func TestRefresh(t *testing.T) {
	s, _ := newTestService(t)
	register(t, s, "asha", "asha@example.com")
	ctx := context.Background()
	_, user, err := s.Login(ctx, "asha", "pw-asha")
	require.NoError(t, err)

	token, err := s.Refresh(ctx, user)
	require.NoError(t, err)

	got, err := s.Authenticate(ctx, "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}
