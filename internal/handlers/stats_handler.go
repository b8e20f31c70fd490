package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"book-catalog-service/internal/utils"
)

type StatsHandler struct {
	BookCollection *mongo.Collection
}

func (h *StatsHandler) runPipeline(ctx context.Context, w http.ResponseWriter, pipeline mongo.Pipeline) {
	cursor, err := h.BookCollection.Aggregate(ctx, pipeline)
	if err != nil {
		utils.JSONError(w, "Aggregation failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	results := []bson.M{}
	if err = cursor.All(ctx, &results); err != nil {
		utils.JSONError(w, "Failed to decode aggregation results", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(results)
}

// GET /stats/authors
//
// One row per distinct author with the number of books attributed to them,
// busiest authors first.
func (h *StatsHandler) AuthorCounts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$author"},
			{Key: "book_count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "book_count", Value: -1},
			{Key: "_id", Value: 1},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "author", Value: "$_id"},
			{Key: "book_count", Value: 1},
		}}},
	}

	h.runPipeline(ctx, w, pipeline)
}

// GET /stats/genres
func (h *StatsHandler) GenreStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$genre"},
			{Key: "book_count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "avg_price", Value: bson.D{{Key: "$avg", Value: "$price"}}},
			{Key: "min_price", Value: bson.D{{Key: "$min", Value: "$price"}}},
			{Key: "max_price", Value: bson.D{{Key: "$max", Value: "$price"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "genre", Value: "$_id"},
			{Key: "book_count", Value: 1},
			{Key: "avg_price", Value: 1},
			{Key: "min_price", Value: 1},
			{Key: "max_price", Value: 1},
		}}},
	}

	h.runPipeline(ctx, w, pipeline)
}

// GET /stats/top-rated?limit=n
//
// Unwinds embedded reviews so each one counts individually, then ranks books
// by average rating. Books without reviews fall out at the unwind stage.
func (h *StatsHandler) TopRated(w http.ResponseWriter, r *http.Request) {
	limit := int64(10)
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			utils.JSONError(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$unwind", Value: "$reviews"}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$_id"},
			{Key: "title", Value: bson.D{{Key: "$first", Value: "$title"}}},
			{Key: "author", Value: bson.D{{Key: "$first", Value: "$author"}}},
			{Key: "avg_rating", Value: bson.D{{Key: "$avg", Value: "$reviews.rating"}}},
			{Key: "review_count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "avg_rating", Value: -1},
			{Key: "review_count", Value: -1},
		}}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "title", Value: 1},
			{Key: "author", Value: 1},
			{Key: "avg_rating", Value: 1},
			{Key: "review_count", Value: 1},
		}}},
	}

	h.runPipeline(ctx, w, pipeline)
}
