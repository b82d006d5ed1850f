package mq

import (
	"context"
	"time"
)

const (
	RecipeCreated   = "recipe.created"
	RecipeUpdated   = "recipe.updated"
	RecipeDeleted   = "recipe.deleted"
	RecipeLiked     = "recipe.liked"
	RecipeUnliked   = "recipe.unliked"
	RecipeCommented = "recipe.commented"
)

type Event struct {
	Type     string    `json:"type"`
	RecipeID string    `json:"recipe_id"`
	UserID   string    `json:"user_id"`
	At       time.Time `json:"at"`
}

// Publisher receives domain events after a mutation has been persisted.
// Publish must not block the request path.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) {}

func OrNop(p Publisher) Publisher {
	if p == nil {
		return Nop{}
	}
	return p
}
