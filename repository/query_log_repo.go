package repository

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// QueryLogEntry is one answered customer query, kept for support review.
type QueryLogEntry struct {
	ID        string   `bson:"_id,omitempty" json:"id"`
	Email     string   `bson:"email" json:"email"`
	Query     string   `bson:"query" json:"query"`
	Response  string   `bson:"response" json:"response"`
	Sources   []string `bson:"sources" json:"sources"`
	CreatedAt int64    `bson:"created_at" json:"created_at"`
}

type QueryLogRepo struct {
	collection *mongo.Collection
}

func NewQueryLogRepo(collection *mongo.Collection) *QueryLogRepo {
	return &QueryLogRepo{
		collection: collection,
	}
}

// LogQuery records an answered query. Failures are logged and swallowed; the
// query log must never fail the request path.
func (r *QueryLogRepo) LogQuery(ctx context.Context, email, query, response string, sources []string) {
	entry := QueryLogEntry{
		Email:     email,
		Query:     query,
		Response:  response,
		Sources:   sources,
		CreatedAt: time.Now().Unix(),
	}
	if _, err := r.collection.InsertOne(ctx, entry); err != nil {
		log.Printf("Failed to log query: %v", err)
	}
}

// Recent returns the newest limit entries, newest first.
func (r *QueryLogRepo) Recent(ctx context.Context, limit int64) ([]QueryLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	cursor, err := r.collection.Find(ctx, bson.D{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []QueryLogEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
