package recipes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"recipebook/common"
	"recipebook/logging"
	"recipebook/models"
	"recipebook/mq"
	"recipebook/uploads"
	"recipebook/users"
	"recipebook/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Authorize reports whether callerID may mutate r.
func Authorize(r *models.Recipe, callerID primitive.ObjectID) error {
	if r.Author != callerID {
		return common.Forbidden("You are not allowed to modify this recipe")
	}
	return nil
}

// CreateInput carries a new recipe. Empty Cuisine and Difficulty fall back to
// Other and Easy.
type CreateInput struct {
	Title       string            `json:"title"        validate:"required,max=100"`
	Description string            `json:"description"`
	Ingredients []string          `json:"ingredients"`
	Steps       []string          `json:"steps"`
	ImageURL    string            `json:"image_url"`
	Cuisine     models.Cuisine    `json:"cuisine"      validate:"oneof=Indian Italian Chinese Mexican Other"`
	Difficulty  models.Difficulty `json:"difficulty"   validate:"oneof=Easy Medium Hard"`
	CookingTime int               `json:"cooking_time" validate:"min=0"`
	Image       *uploads.File     `json:"-"            validate:"-"`
}

type Service struct {
	store   Store
	users   users.Store
	uploads *uploads.Store
	cache   ListCache
	events  mq.Publisher
	log     logging.Logger
	now     func() time.Time
}

func NewService(store Store, us users.Store, up *uploads.Store, cache ListCache, events mq.Publisher, log logging.Logger) *Service {
	if cache == nil {
		cache = NopCache{}
	}
	return &Service{
		store:   store,
		users:   us,
		uploads: up,
		cache:   cache,
		events:  mq.OrNop(events),
		log:     logging.OrNop(log),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// ParseID maps a malformed id to ErrNotFound, same as an unknown one.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrNotFound
	}
	return oid, nil
}

func (s *Service) Create(ctx context.Context, caller *models.User, in CreateInput) (*models.Recipe, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Cuisine == "" {
		in.Cuisine = models.CuisineOther
	}
	if in.Difficulty == "" {
		in.Difficulty = models.DifficultyEasy
	}
	if err := utils.Validate(in); err != nil {
		return nil, err
	}

	now := s.now()
	r := &models.Recipe{
		Title:       in.Title,
		Description: in.Description,
		Ingredients: in.Ingredients,
		Steps:       in.Steps,
		ImageURL:    in.ImageURL,
		Cuisine:     in.Cuisine,
		Difficulty:  in.Difficulty,
		CookingTime: in.CookingTime,
		CreatedAt:   now,
		UpdatedAt:   now,
		Author:      caller.ID,
	}
	if in.Image != nil {
		url, err := s.uploads.Save(ctx, caller.Username, *in.Image)
		if err != nil {
			return nil, fmt.Errorf("save recipe image: %w", err)
		}
		r.ImageURL = url
	}

	if err := s.store.Insert(ctx, r); err != nil {
		if in.Image != nil {
			s.uploads.Remove(ctx, r.ImageURL)
		}
		return nil, err
	}
	s.changed(ctx, mq.RecipeCreated, r.ID, caller.ID)
	return r, nil
}

// List returns the denormalized listing for f, through the cache.
func (s *Service) List(ctx context.Context, f Filter) ([]models.RecipeView, error) {
	key := f.Key()
	if views, ok := s.cache.Get(ctx, key); ok {
		return views, nil
	}
	views, err := s.list(ctx, f)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, views)
	return views, nil
}

// ListByAuthor bypasses the cache; it backs the caller's own listing.
func (s *Service) ListByAuthor(ctx context.Context, author primitive.ObjectID) ([]models.RecipeView, error) {
	return s.list(ctx, Filter{Author: author})
}

func (s *Service) list(ctx context.Context, f Filter) ([]models.RecipeView, error) {
	rs, err := s.store.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, rs)
}

// views resolves authors and commenters to usernames with one user lookup.
func (s *Service) views(ctx context.Context, rs []models.Recipe) ([]models.RecipeView, error) {
	seen := make(map[primitive.ObjectID]struct{})
	var ids []primitive.ObjectID
	add := func(id primitive.ObjectID) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	for i := range rs {
		add(rs[i].Author)
		for _, c := range rs[i].Comments {
			add(c.UserID)
		}
	}

	byID, err := s.users.FindMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	name := func(id primitive.ObjectID) string {
		if u, ok := byID[id]; ok {
			return u.Username
		}
		return ""
	}

	out := make([]models.RecipeView, 0, len(rs))
	for i := range rs {
		r := &rs[i]
		comments := make([]models.CommentView, 0, len(r.Comments))
		for _, c := range r.Comments {
			comments = append(comments, models.CommentView{User: name(c.UserID), Content: c.Content, CreatedAt: c.CreatedAt})
		}
		out = append(out, models.RecipeView{
			ID:          r.ID.Hex(),
			Title:       r.Title,
			Description: r.Description,
			Ingredients: nonNil(r.Ingredients),
			Steps:       nonNil(r.Steps),
			ImageURL:    r.ImageURL,
			Cuisine:     r.Cuisine,
			Difficulty:  r.Difficulty,
			CookingTime: r.CookingTime,
			Author:      name(r.Author),
			LikesCount:  len(r.Likes),
			Comments:    comments,
			CreatedAt:   r.CreatedAt,
			UpdatedAt:   r.UpdatedAt,
		})
	}
	return out, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// owned loads the recipe and checks that caller is its author.
func (s *Service) owned(ctx context.Context, id string, caller *models.User) (*models.Recipe, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	r, err := s.store.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if err := Authorize(r, caller.ID); err != nil {
		return nil, err
	}
	return r, nil
}

// Update applies p to the caller's recipe. A non-nil image replaces image_url.
func (s *Service) Update(ctx context.Context, caller *models.User, id string, p models.RecipePatch, image *uploads.File) (*models.Recipe, error) {
	r, err := s.owned(ctx, id, caller)
	if err != nil {
		return nil, err
	}

	if p.Empty() && image == nil {
		return nil, common.Validation("No fields to update")
	}
	if p.Title != nil {
		t := strings.TrimSpace(*p.Title)
		p.Title = &t
	}
	if err := utils.Validate(p); err != nil {
		return nil, err
	}
	if image != nil {
		url, err := s.uploads.Save(ctx, caller.Username, *image)
		if err != nil {
			return nil, fmt.Errorf("save recipe image: %w", err)
		}
		p.ImageURL = &url
	}

	updated, err := s.store.Update(ctx, r.ID, p, s.now())
	if err != nil {
		if image != nil && *p.ImageURL != r.ImageURL {
			s.uploads.Remove(ctx, *p.ImageURL)
		}
		return nil, err
	}
	s.changed(ctx, mq.RecipeUpdated, r.ID, caller.ID)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, caller *models.User, id string) error {
	r, err := s.owned(ctx, id, caller)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, r.ID); err != nil {
		return err
	}
	s.changed(ctx, mq.RecipeDeleted, r.ID, caller.ID)
	return nil
}

func (s *Service) ToggleLike(ctx context.Context, caller *models.User, id string) (bool, int, error) {
	oid, err := ParseID(id)
	if err != nil {
		return false, 0, err
	}
	liked, count, err := s.store.ToggleLike(ctx, oid, caller.ID)
	if err != nil {
		return false, 0, err
	}
	event := mq.RecipeUnliked
	if liked {
		event = mq.RecipeLiked
	}
	s.changed(ctx, event, oid, caller.ID)
	return liked, count, nil
}

func (s *Service) AddComment(ctx context.Context, caller *models.User, id, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, common.Validation("Content is required")
	}
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}

	c := models.Comment{UserID: caller.ID, Content: content, CreatedAt: s.now()}
	if err := s.store.AddComment(ctx, oid, c); err != nil {
		return nil, err
	}
	s.changed(ctx, mq.RecipeCommented, oid, caller.ID)
	return &c, nil
}

// DeleteByAuthor removes every recipe written by author.
func (s *Service) DeleteByAuthor(ctx context.Context, author primitive.ObjectID) (int64, error) {
	n, err := s.store.DeleteByAuthor(ctx, author)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.cache.Invalidate(ctx)
	}
	return n, nil
}

func (s *Service) changed(ctx context.Context, eventType string, recipeID, userID primitive.ObjectID) {
	s.cache.Invalidate(ctx)
	s.events.Publish(ctx, mq.Event{
		Type:     eventType,
		RecipeID: recipeID.Hex(),
		UserID:   userID.Hex(),
		At:       s.now(),
	})
	s.log.Debug(ctx, "recipe changed", "event", eventType, "recipe_id", recipeID.Hex())
}
