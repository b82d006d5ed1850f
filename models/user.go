package models

import (
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Usernames prefix stored upload names as "<username>_<file>", so they may not
// contain '_' themselves.
var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9.-]+$`)

func ValidUsername(s string) bool {
	return usernamePattern.MatchString(s)
}

type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"             json:"id"`
	Username       string             `bson:"username"                  json:"username"`
	Email          string             `bson:"email"                     json:"email"`
	PasswordHash   string             `bson:"password_hash"             json:"-"`
	ProfilePicture string             `bson:"profile_picture,omitempty" json:"profile_picture,omitempty"`
	CreatedAt      time.Time          `bson:"created_at"                json:"created_at"`
}

// UserSummary is the public shape returned by login and profile endpoints.
type UserSummary struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	ProfilePicture string `json:"profile_picture,omitempty"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:             u.ID.Hex(),
		Username:       u.Username,
		Email:          u.Email,
		ProfilePicture: u.ProfilePicture,
	}
}
