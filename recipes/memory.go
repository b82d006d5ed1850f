package recipes

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"recipebook/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore keeps recipes in process memory. Every method returns copies,
// so callers never share slices with the store.
type MemoryStore struct {
	mu      sync.RWMutex
	recipes map[primitive.ObjectID]*models.Recipe
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{recipes: make(map[primitive.ObjectID]*models.Recipe)}
}

func clone(r *models.Recipe) models.Recipe {
	c := *r
	c.Ingredients = append([]string{}, r.Ingredients...)
	c.Steps = append([]string{}, r.Steps...)
	c.Likes = append([]primitive.ObjectID{}, r.Likes...)
	c.Comments = append([]models.Comment{}, r.Comments...)
	return c
}

func (s *MemoryStore) Insert(_ context.Context, r *models.Recipe) error {
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	normalize(r)
	c := clone(r)

	s.mu.Lock()
	s.recipes[r.ID] = &c
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.recipes[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := clone(r)
	return &c, nil
}

func (s *MemoryStore) List(_ context.Context, f Filter) ([]models.Recipe, error) {
	s.mu.RLock()
	out := []models.Recipe{}
	search := strings.ToLower(f.Search)
	for _, r := range s.recipes {
		if !f.Author.IsZero() && r.Author != f.Author {
			continue
		}
		if f.Cuisine != "" && r.Cuisine != f.Cuisine {
			continue
		}
		if f.Difficulty != "" && r.Difficulty != f.Difficulty {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(r.Title), search) {
			continue
		}
		out = append(out, clone(r))
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})

	if f.Offset > 0 {
		if f.Offset >= int64(len(out)) {
			return []models.Recipe{}, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < int64(len(out)) {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *MemoryStore) Update(_ context.Context, id primitive.ObjectID, p models.RecipePatch, now time.Time) (*models.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.recipes[id]
	if !ok {
		return nil, ErrNotFound
	}
	p.Apply(r, now)
	c := clone(r)
	return &c, nil
}

func (s *MemoryStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.recipes[id]; !ok {
		return ErrNotFound
	}
	delete(s.recipes, id)
	return nil
}

func (s *MemoryStore) DeleteByAuthor(_ context.Context, author primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, r := range s.recipes {
		if r.Author == author {
			delete(s.recipes, id)
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) ToggleLike(_ context.Context, id, userID primitive.ObjectID) (bool, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.recipes[id]
	if !ok {
		return false, 0, ErrNotFound
	}
	liked := r.ToggleLike(userID)
	return liked, len(r.Likes), nil
}

func (s *MemoryStore) AddComment(_ context.Context, id primitive.ObjectID, c models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.recipes[id]
	if !ok {
		return ErrNotFound
	}
	r.Comments = append(r.Comments, c)
	return nil
}
