// Package recipes owns recipe documents: storage, ownership rules, likes,
// comments and the denormalized listing.
package recipes

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"recipebook/common"
	"recipebook/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrNotFound = common.NotFound("Recipe not found")

// Filter narrows a listing. Zero values match everything; a Limit of 0 means
// no limit.
type Filter struct {
	Author     primitive.ObjectID
	Cuisine    models.Cuisine
	Difficulty models.Difficulty
	Search     string
	Offset     int64
	Limit      int64
}

// FilterFromQuery reads the listing query parameters. Unparseable or negative
// offset/limit values are ignored.
func FilterFromQuery(q url.Values) Filter {
	f := Filter{
		Cuisine:    models.Cuisine(q.Get("cuisine")),
		Difficulty: models.Difficulty(q.Get("difficulty")),
		Search:     q.Get("search"),
	}
	if n, err := strconv.ParseInt(q.Get("offset"), 10, 64); err == nil && n > 0 {
		f.Offset = n
	}
	if n, err := strconv.ParseInt(q.Get("limit"), 10, 64); err == nil && n > 0 {
		f.Limit = n
	}
	return f
}

// Key is a stable string form of f, used for cache keys.
func (f Filter) Key() string {
	v := url.Values{}
	if !f.Author.IsZero() {
		v.Set("author", f.Author.Hex())
	}
	if f.Cuisine != "" {
		v.Set("cuisine", string(f.Cuisine))
	}
	if f.Difficulty != "" {
		v.Set("difficulty", string(f.Difficulty))
	}
	if f.Search != "" {
		v.Set("search", f.Search)
	}
	if f.Offset > 0 {
		v.Set("offset", strconv.FormatInt(f.Offset, 10))
	}
	if f.Limit > 0 {
		v.Set("limit", strconv.FormatInt(f.Limit, 10))
	}
	return v.Encode()
}

type Store interface {
	// Insert stores r and sets r.ID.
	Insert(ctx context.Context, r *models.Recipe) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Recipe, error)
	// List returns matching recipes newest first.
	List(ctx context.Context, f Filter) ([]models.Recipe, error)
	// Update applies the present fields of p, stamps updated_at and returns the
	// stored result.
	Update(ctx context.Context, id primitive.ObjectID, p models.RecipePatch, now time.Time) (*models.Recipe, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByAuthor(ctx context.Context, author primitive.ObjectID) (int64, error)
	// ToggleLike flips userID's membership in likes as a single step and
	// reports the new state and like count.
	ToggleLike(ctx context.Context, id, userID primitive.ObjectID) (liked bool, count int, err error)
	AddComment(ctx context.Context, id primitive.ObjectID, c models.Comment) error
}

// normalize replaces nil slices so stored documents never hold null arrays.
func normalize(r *models.Recipe) {
	if r.Ingredients == nil {
		r.Ingredients = []string{}
	}
	if r.Steps == nil {
		r.Steps = []string{}
	}
	if r.Likes == nil {
		r.Likes = []primitive.ObjectID{}
	}
	if r.Comments == nil {
		r.Comments = []models.Comment{}
	}
}
