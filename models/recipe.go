package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Cuisine string

const (
	CuisineIndian  Cuisine = "Indian"
	CuisineItalian Cuisine = "Italian"
	CuisineChinese Cuisine = "Chinese"
	CuisineMexican Cuisine = "Mexican"
	CuisineOther   Cuisine = "Other"
)

var Cuisines = []Cuisine{CuisineIndian, CuisineItalian, CuisineChinese, CuisineMexican, CuisineOther}

func (c Cuisine) Valid() bool {
	for _, v := range Cuisines {
		if c == v {
			return true
		}
	}
	return false
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

func (d Difficulty) Valid() bool {
	for _, v := range Difficulties {
		if d == v {
			return true
		}
	}
	return false
}

type Comment struct {
	UserID    primitive.ObjectID `bson:"user"       json:"user"`
	Content   string             `bson:"content"    json:"content"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

type Recipe struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty"       json:"id"`
	Title       string               `bson:"title"               json:"title"`
	Description string               `bson:"description"         json:"description"`
	Ingredients []string             `bson:"ingredients"         json:"ingredients"`
	Steps       []string             `bson:"steps"               json:"steps"`
	ImageURL    string               `bson:"image_url,omitempty" json:"image_url,omitempty"`
	Cuisine     Cuisine              `bson:"cuisine"             json:"cuisine"`
	Difficulty  Difficulty           `bson:"difficulty"          json:"difficulty"`
	CookingTime int                  `bson:"cooking_time"        json:"cooking_time"`
	CreatedAt   time.Time            `bson:"created_at"          json:"created_at"`
	UpdatedAt   time.Time            `bson:"updated_at"          json:"updated_at"`
	Author      primitive.ObjectID   `bson:"author"              json:"author"`
	Likes       []primitive.ObjectID `bson:"likes"               json:"likes"`
	Comments    []Comment            `bson:"comments"            json:"comments"`
}

func (r *Recipe) LikedBy(userID primitive.ObjectID) bool {
	for _, id := range r.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// ToggleLike removes userID from Likes if present, adds it otherwise, and
// reports whether the user now likes the recipe.
func (r *Recipe) ToggleLike(userID primitive.ObjectID) bool {
	for i, id := range r.Likes {
		if id == userID {
			r.Likes = append(r.Likes[:i], r.Likes[i+1:]...)
			return false
		}
	}
	r.Likes = append(r.Likes, userID)
	return true
}

// RecipePatch is a partial update. Nil fields are left untouched.
type RecipePatch struct {
	Title       *string     `json:"title,omitempty"        validate:"omitnil,min=1,max=100"`
	Description *string     `json:"description,omitempty"`
	Ingredients *[]string   `json:"ingredients,omitempty"`
	Steps       *[]string   `json:"steps,omitempty"`
	ImageURL    *string     `json:"image_url,omitempty"`
	Cuisine     *Cuisine    `json:"cuisine,omitempty"      validate:"omitnil,oneof=Indian Italian Chinese Mexican Other"`
	Difficulty  *Difficulty `json:"difficulty,omitempty"   validate:"omitnil,oneof=Easy Medium Hard"`
	CookingTime *int        `json:"cooking_time,omitempty" validate:"omitnil,min=0"`
}

func (p RecipePatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Ingredients == nil && p.Steps == nil &&
		p.ImageURL == nil && p.Cuisine == nil && p.Difficulty == nil && p.CookingTime == nil
}

// Apply copies the present fields onto r and stamps UpdatedAt.
func (p RecipePatch) Apply(r *Recipe, now time.Time) {
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.Ingredients != nil {
		r.Ingredients = append([]string{}, (*p.Ingredients)...)
	}
	if p.Steps != nil {
		r.Steps = append([]string{}, (*p.Steps)...)
	}
	if p.ImageURL != nil {
		r.ImageURL = *p.ImageURL
	}
	if p.Cuisine != nil {
		r.Cuisine = *p.Cuisine
	}
	if p.Difficulty != nil {
		r.Difficulty = *p.Difficulty
	}
	if p.CookingTime != nil {
		r.CookingTime = *p.CookingTime
	}
	r.UpdatedAt = now
}

type CommentView struct {
	User      string    `json:"user"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// RecipeView is the denormalized listing shape: author and commenters are
// resolved to usernames, likes collapse to a count.
type RecipeView struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Ingredients []string      `json:"ingredients"`
	Steps       []string      `json:"steps"`
	ImageURL    string        `json:"image_url"`
	Cuisine     Cuisine       `json:"cuisine"`
	Difficulty  Difficulty    `json:"difficulty"`
	CookingTime int           `json:"cooking_time"`
	Author      string        `json:"author"`
	LikesCount  int           `json:"likes_count"`
	Comments    []CommentView `json:"comments"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
