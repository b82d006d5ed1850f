package recipes

import (
	"context"
	"sync"
	"testing"
	"time"

	"recipebook/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func insert(t *testing.T, s Store, r models.Recipe) *models.Recipe {
	t.Helper()
	require.NoError(t, s.Insert(context.Background(), &r))
	return &r
}

func TestMemoryStore_InsertNormalizesSlices(t *testing.T) {
	s := NewMemoryStore()
	r := insert(t, s, models.Recipe{Title: "Dal", Author: primitive.NewObjectID()})
	require.False(t, r.ID.IsZero())

	got, err := s.FindByID(context.Background(), r.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.Ingredients)
	assert.NotNil(t, got.Steps)
	assert.NotNil(t, got.Likes)
	assert.NotNil(t, got.Comments)
}

func TestMemoryStore_FindByIDReturnsCopy(t *testing.T) {
	s := NewMemoryStore()
	r := insert(t, s, models.Recipe{Title: "Dal", Ingredients: []string{"lentils"}})

	got, err := s.FindByID(context.Background(), r.ID)
	require.NoError(t, err)
	got.Ingredients[0] = "changed"

	again, err := s.FindByID(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"lentils"}, again.Ingredients)
}

func TestMemoryStore_NotFound(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	id := primitive.NewObjectID()

	_, err := s.FindByID(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Update(ctx, id, models.RecipePatch{}, t0)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, id), ErrNotFound)
	_, _, err = s.ToggleLike(ctx, id, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.AddComment(ctx, id, models.Comment{}), ErrNotFound)
}

func TestMemoryStore_ListOrderAndFilters(t *testing.T) {
	s := NewMemoryStore()
	alice, bob := primitive.NewObjectID(), primitive.NewObjectID()
	insert(t, s, models.Recipe{Title: "Paneer Tikka", Cuisine: models.CuisineIndian, Difficulty: models.DifficultyMedium, Author: alice, CreatedAt: t0})
	insert(t, s, models.Recipe{Title: "Risotto", Cuisine: models.CuisineItalian, Difficulty: models.DifficultyHard, Author: bob, CreatedAt: t0.Add(time.Hour)})
	insert(t, s, models.Recipe{Title: "Tikka Masala", Cuisine: models.CuisineIndian, Difficulty: models.DifficultyEasy, Author: bob, CreatedAt: t0.Add(2 * time.Hour)})
	ctx := context.Background()

	titles := func(f Filter) []string {
		rs, err := s.List(ctx, f)
		require.NoError(t, err)
		out := []string{}
		for _, r := range rs {
			out = append(out, r.Title)
		}
		return out
	}

	assert.Equal(t, []string{"Tikka Masala", "Risotto", "Paneer Tikka"}, titles(Filter{}))
	assert.Equal(t, []string{"Tikka Masala", "Paneer Tikka"}, titles(Filter{Cuisine: models.CuisineIndian}))
	assert.Equal(t, []string{"Risotto"}, titles(Filter{Difficulty: models.DifficultyHard}))
	assert.Equal(t, []string{"Tikka Masala", "Risotto"}, titles(Filter{Author: bob}))
	assert.Equal(t, []string{"Tikka Masala", "Paneer Tikka"}, titles(Filter{Search: "tikka"}))
	assert.Equal(t, []string{"Risotto"}, titles(Filter{Offset: 1, Limit: 1}))
	assert.Equal(t, []string{}, titles(Filter{Offset: 5}))
}

func TestMemoryStore_UpdatePartial(t *testing.T) {
	s := NewMemoryStore()
	r := insert(t, s, models.Recipe{
		Title:       "Dal",
		Ingredients: []string{"lentils", "salt"},
		Steps:       []string{"boil"},
		Cuisine:     models.CuisineIndian,
		CookingTime: 30,
		CreatedAt:   t0,
		UpdatedAt:   t0,
	})

	title := "Dal Tadka"
	got, err := s.Update(context.Background(), r.ID, models.RecipePatch{Title: &title}, t0.Add(time.Minute))
	require.NoError(t, err)

	assert.Equal(t, "Dal Tadka", got.Title)
	assert.Equal(t, []string{"lentils", "salt"}, got.Ingredients)
	assert.Equal(t, []string{"boil"}, got.Steps)
	assert.Equal(t, models.CuisineIndian, got.Cuisine)
	assert.Equal(t, 30, got.CookingTime)
	assert.True(t, got.CreatedAt.Equal(t0))
	assert.True(t, got.UpdatedAt.Equal(t0.Add(time.Minute)))
}

func TestMemoryStore_ToggleLikeTwiceRestores(t *testing.T) {
	s := NewMemoryStore()
	other := primitive.NewObjectID()
	r := insert(t, s, models.Recipe{Title: "Dal", Likes: []primitive.ObjectID{other}})
	user := primitive.NewObjectID()
	ctx := context.Background()

	liked, n, err := s.ToggleLike(ctx, r.ID, user)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 2, n)

	liked, n, err = s.ToggleLike(ctx, r.ID, user)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, 1, n)

	got, err := s.FindByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{other}, got.Likes)
}

func TestMemoryStore_ConcurrentLikesAndComments(t *testing.T) {
	s := NewMemoryStore()
	r := insert(t, s, models.Recipe{Title: "Dal"})
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			user := primitive.NewObjectID()
			_, _, _ = s.ToggleLike(ctx, r.ID, user)
			_ = s.AddComment(ctx, r.ID, models.Comment{UserID: user, Content: "yum"})
		}()
	}
	wg.Wait()

	got, err := s.FindByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Len(t, got.Likes, n)
	assert.Len(t, got.Comments, n)
}

func TestMemoryStore_DeleteByAuthor(t *testing.T) {
	s := NewMemoryStore()
	alice, bob := primitive.NewObjectID(), primitive.NewObjectID()
	insert(t, s, models.Recipe{Title: "a1", Author: alice})
	insert(t, s, models.Recipe{Title: "a2", Author: alice})
	keep := insert(t, s, models.Recipe{Title: "b1", Author: bob})
	ctx := context.Background()

	n, err := s.DeleteByAuthor(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	rs, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, rs, 1)
	assert.Equal(t, keep.ID, rs[0].ID)
}

func TestFilterFromQueryAndKey(t *testing.T) {
	f := FilterFromQuery(map[string][]string{
		"cuisine": {"Indian"},
		"search":  {"dal"},
		"offset":  {"-3"},
		"limit":   {"abc"},
	})
	assert.Equal(t, Filter{Cuisine: models.CuisineIndian, Search: "dal"}, f)
	assert.Equal(t, "cuisine=Indian&search=dal", f.Key())

	f = FilterFromQuery(map[string][]string{"offset": {"10"}, "limit": {"5"}})
	assert.Equal(t, int64(10), f.Offset)
	assert.Equal(t, int64(5), f.Limit)
	assert.Equal(t, "", Filter{}.Key())
}
