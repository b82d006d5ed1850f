// Package users is the credential store: usernames, emails and password hashes.
package users

import (
	"context"

	"recipebook/common"
	"recipebook/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound      = common.NotFound("User not found")
	ErrUsernameTaken = common.Validation("Username already exists")
	ErrEmailTaken    = common.Validation("Email already exists")
)

type Store interface {
	// Create inserts u and sets u.ID. Duplicate usernames or emails yield
	// ErrUsernameTaken or ErrEmailTaken.
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// FindMany returns the users that exist among ids, keyed by id.
	FindMany(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}
