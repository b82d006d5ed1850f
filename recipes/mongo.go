package recipes

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"recipebook/db"
	"recipebook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll}
}

func (s *MongoStore) Insert(ctx context.Context, r *models.Recipe) error {
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	normalize(r)
	if _, err := s.coll.InsertOne(ctx, r); err != nil {
		return fmt.Errorf("insert recipe: %w", err)
	}
	return nil
}

func (s *MongoStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Recipe, error) {
	var r models.Recipe
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&r); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find recipe: %w", err)
	}
	return &r, nil
}

func (s *MongoStore) List(ctx context.Context, f Filter) ([]models.Recipe, error) {
	query := bson.M{}
	if !f.Author.IsZero() {
		query["author"] = f.Author
	}
	if f.Cuisine != "" {
		query["cuisine"] = f.Cuisine
	}
	if f.Difficulty != "" {
		query["difficulty"] = f.Difficulty
	}
	if f.Search != "" {
		query["title"] = bson.M{"$regex": regexp.QuoteMeta(f.Search), "$options": "i"}
	}

	cursor, err := s.coll.Find(ctx, query, db.OptionsFindLatest(f.Offset, f.Limit))
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	defer cursor.Close(ctx)

	out := []models.Recipe{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode recipes: %w", err)
	}
	return out, nil
}

func (s *MongoStore) Update(ctx context.Context, id primitive.ObjectID, p models.RecipePatch, now time.Time) (*models.Recipe, error) {
	set := bson.M{"updated_at": now}
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Ingredients != nil {
		set["ingredients"] = *p.Ingredients
	}
	if p.Steps != nil {
		set["steps"] = *p.Steps
	}
	if p.ImageURL != nil {
		set["image_url"] = *p.ImageURL
	}
	if p.Cuisine != nil {
		set["cuisine"] = *p.Cuisine
	}
	if p.Difficulty != nil {
		set["difficulty"] = *p.Difficulty
	}
	if p.CookingTime != nil {
		set["cooking_time"] = *p.CookingTime
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var r models.Recipe
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&r)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update recipe: %w", err)
	}
	return &r, nil
}

func (s *MongoStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) DeleteByAuthor(ctx context.Context, author primitive.ObjectID) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.M{"author": author})
	if err != nil {
		return 0, fmt.Errorf("delete recipes by author: %w", err)
	}
	return res.DeletedCount, nil
}

// ToggleLike runs the membership flip server-side in an update pipeline, so
// concurrent toggles never lose each other's writes.
func (s *MongoStore) ToggleLike(ctx context.Context, id, userID primitive.ObjectID) (bool, int, error) {
	likes := bson.D{{Key: "$ifNull", Value: bson.A{"$likes", bson.A{}}}}
	toggle := bson.D{{Key: "$cond", Value: bson.D{
		{Key: "if", Value: bson.D{{Key: "$in", Value: bson.A{userID, likes}}}},
		{Key: "then", Value: bson.D{{Key: "$filter", Value: bson.D{
			{Key: "input", Value: likes},
			{Key: "cond", Value: bson.D{{Key: "$ne", Value: bson.A{"$$this", userID}}}},
		}}}},
		{Key: "else", Value: bson.D{{Key: "$concatArrays", Value: bson.A{likes, bson.A{userID}}}}},
	}}}
	pipeline := mongo.Pipeline{{{Key: "$set", Value: bson.D{{Key: "likes", Value: toggle}}}}}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"likes": 1})
	var r models.Recipe
	if err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, pipeline, opts).Decode(&r); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, 0, ErrNotFound
		}
		return false, 0, fmt.Errorf("toggle like: %w", err)
	}
	return r.LikedBy(userID), len(r.Likes), nil
}

func (s *MongoStore) AddComment(ctx context.Context, id primitive.ObjectID, c models.Comment) error {
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$push": bson.M{"comments": c}})
	if err != nil {
		return fmt.Errorf("add comment: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
