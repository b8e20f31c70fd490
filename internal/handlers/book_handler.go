package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"book-catalog-service/internal/cache"
	"book-catalog-service/internal/constants"
	"book-catalog-service/internal/models"
	"book-catalog-service/internal/utils"
)

var errInvalidPagination = errors.New("invalid pagination parameter")

type BookHandler struct {
	BookCollection *mongo.Collection
	Cache          *cache.BookCache
	AuditLogger    utils.Logger
}

func NewBookHandler(bookColl *mongo.Collection, bookCache *cache.BookCache, logger utils.Logger) *BookHandler {
	return &BookHandler{
		BookCollection: bookColl,
		Cache:          bookCache,
		AuditLogger:    logger,
	}
}

// POST /books
func (h *BookHandler) AddBook(w http.ResponseWriter, r *http.Request) {
	var book models.Book
	if err := json.NewDecoder(r.Body).Decode(&book); err != nil {
		utils.JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := book.Validate(); err != nil {
		utils.JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	book.ID = primitive.NewObjectID()
	if book.Reviews == nil {
		book.Reviews = []models.Review{}
	}
	book.CreatedAt = time.Now()
	book.UpdatedAt = time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := h.BookCollection.InsertOne(ctx, book)
	if err != nil {
		utils.JSONError(w, "Insert failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.AuditLogger.Log(ctx, models.BookEntity, constants.Create, book)

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(book)
}

// POST /books/batch
func (h *BookHandler) AddBooks(w http.ResponseWriter, r *http.Request) {
	var books []models.Book
	if err := json.NewDecoder(r.Body).Decode(&books); err != nil {
		utils.JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if len(books) == 0 {
		utils.JSONError(w, "Empty batch", http.StatusBadRequest)
		return
	}

	docs := make([]interface{}, 0, len(books))
	now := time.Now()
	for i := range books {
		if err := books[i].Validate(); err != nil {
			utils.JSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		books[i].ID = primitive.NewObjectID()
		if books[i].Reviews == nil {
			books[i].Reviews = []models.Review{}
		}
		books[i].CreatedAt = now
		books[i].UpdatedAt = now
		docs = append(docs, books[i])
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res, err := h.BookCollection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	if err != nil {
		utils.JSONError(w, "Batch insert failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.AuditLogger.Log(ctx, models.BookEntity, constants.BatchCreate, res.InsertedIDs)

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"inserted_count": len(res.InsertedIDs),
		"inserted_ids":   res.InsertedIDs,
	})
}

// buildBookFilter translates list query params into a filter document.
// Supported: author= (equality), genre=a,b (disjunction), published_before=,
// published_after= (year bounds), min_price=, max_price= (price bounds),
// min_rating= (element match against embedded reviews).
func buildBookFilter(r *http.Request) (bson.M, error) {
	q := r.URL.Query()
	filter := bson.M{}

	if author := q.Get("author"); author != "" {
		filter["author"] = author
	}

	if genres := q.Get("genre"); genres != "" {
		parts := strings.Split(genres, ",")
		if len(parts) == 1 {
			filter["genre"] = parts[0]
		} else {
			or := make([]bson.M, 0, len(parts))
			for _, g := range parts {
				or = append(or, bson.M{"genre": g})
			}
			filter["$or"] = or
		}
	}

	year := bson.M{}
	if v := q.Get("published_before"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, err
		}
		year["$lt"] = n
	}
	if v := q.Get("published_after"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, err
		}
		year["$gt"] = n
	}
	if len(year) > 0 {
		filter["publication_year"] = year
	}

	price := bson.M{}
	if v := q.Get("min_price"); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, err
		}
		price["$gt"] = n
	}
	if v := q.Get("max_price"); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, err
		}
		price["$lt"] = n
	}
	if len(price) > 0 {
		filter["price"] = price
	}

	if v := q.Get("min_rating"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, err
		}
		filter["reviews"] = bson.M{"$elemMatch": bson.M{"rating": bson.M{"$gte": n}}}
	}

	return filter, nil
}

// buildFindOptions translates fields=, sort=, skip= and limit= params.
// fields is a comma list of projected field names; the identifier is included
// only when "id" is listed. sort entries take a leading '-' for descending.
func buildFindOptions(r *http.Request) (*options.FindOptions, error) {
	q := r.URL.Query()
	opts := options.Find()

	if fields := q.Get("fields"); fields != "" {
		projection := bson.D{}
		includeID := false
		for _, f := range strings.Split(fields, ",") {
			if f == "id" || f == "_id" {
				includeID = true
				continue
			}
			projection = append(projection, bson.E{Key: f, Value: 1})
		}
		if !includeID {
			projection = append(projection, bson.E{Key: "_id", Value: 0})
		}
		opts.SetProjection(projection)
	}

	if sortParam := q.Get("sort"); sortParam != "" {
		sort := bson.D{}
		for _, key := range strings.Split(sortParam, ",") {
			dir := 1
			if strings.HasPrefix(key, "-") {
				dir = -1
				key = strings.TrimPrefix(key, "-")
			}
			sort = append(sort, bson.E{Key: key, Value: dir})
		}
		opts.SetSort(sort)
	}

	if v := q.Get("skip"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			return nil, errInvalidPagination
		}
		opts.SetSkip(n)
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			return nil, errInvalidPagination
		}
		opts.SetLimit(n)
	}

	return opts, nil
}

// GET /books
func (h *BookHandler) GetBooks(w http.ResponseWriter, r *http.Request) {
	filter, err := buildBookFilter(r)
	if err != nil {
		utils.JSONError(w, "Invalid filter parameter", http.StatusBadRequest)
		return
	}

	opts, err := buildFindOptions(r)
	if err != nil {
		utils.JSONError(w, "Invalid pagination parameter", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cursor, err := h.BookCollection.Find(ctx, filter, opts)
	if err != nil {
		utils.JSONError(w, "Failed to fetch books", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	books := []bson.M{}
	if err = cursor.All(ctx, &books); err != nil {
		utils.JSONError(w, "Error decoding books", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(books)
}

// GET /books/search?q=term
func (h *BookHandler) SearchBooks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		utils.JSONError(w, "Missing search term", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	filter := bson.M{"$text": bson.M{"$search": query}}

	opts := options.Find().
		SetProjection(bson.M{"score": bson.M{"$meta": "textScore"}}).
		SetSort(bson.M{"score": bson.M{"$meta": "textScore"}})

	cursor, err := h.BookCollection.Find(ctx, filter, opts)
	if err != nil {
		utils.JSONError(w, "Failed to search books: "+err.Error(), http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	results := []bson.M{}
	if err = cursor.All(ctx, &results); err != nil {
		utils.JSONError(w, "Failed to decode books", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(results)
}

// GET /books/count
func (h *BookHandler) CountBooks(w http.ResponseWriter, r *http.Request) {
	filter, err := buildBookFilter(r)
	if err != nil {
		utils.JSONError(w, "Invalid filter parameter", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$count", Value: "count"}},
	}

	cursor, err := h.BookCollection.Aggregate(ctx, pipeline)
	if err != nil {
		utils.JSONError(w, "Count failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	var results []struct {
		Count int64 `bson:"count"`
	}
	if err = cursor.All(ctx, &results); err != nil {
		utils.JSONError(w, "Count failed", http.StatusInternalServerError)
		return
	}

	// $count emits nothing when the match stage matches nothing
	var count int64
	if len(results) > 0 {
		count = results[0].Count
	}

	json.NewEncoder(w).Encode(map[string]int64{"count": count})
}

// GET /books/{id}
func (h *BookHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	bookID, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		utils.JSONError(w, "Invalid book ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if book, ok := h.Cache.GetBook(ctx, idStr); ok {
		json.NewEncoder(w).Encode(book)
		return
	}

	var book models.Book
	err = h.BookCollection.FindOne(ctx, bson.M{"_id": bookID}).Decode(&book)
	if err != nil {
		utils.JSONError(w, "Book not found", http.StatusNotFound)
		return
	}

	h.Cache.SetBook(ctx, idStr, &book)

	json.NewEncoder(w).Encode(book)
}

// PUT /books/{id}
func (h *BookHandler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	bookID, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		utils.JSONError(w, "Invalid book ID", http.StatusBadRequest)
		return
	}

	var updateData map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&updateData); err != nil {
		utils.JSONError(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	delete(updateData, "id")
	delete(updateData, "_id")
	delete(updateData, "reviews") // append-only, via POST /books/{id}/reviews

	if len(updateData) == 0 {
		utils.JSONError(w, "No update fields provided", http.StatusBadRequest)
		return
	}

	if price, ok := updateData["price"].(float64); ok && price < 0 {
		utils.JSONError(w, "Price must be non-negative", http.StatusBadRequest)
		return
	}

	updateData["updated_at"] = time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := h.BookCollection.UpdateOne(
		ctx,
		bson.M{"_id": bookID},
		bson.M{"$set": updateData},
	)

	if err != nil {
		utils.JSONError(w, "Update failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if result.MatchedCount == 0 {
		utils.JSONError(w, "Book not found", http.StatusNotFound)
		return
	}

	h.Cache.InvalidateBook(ctx, idStr)
	h.AuditLogger.Log(ctx, models.BookEntity, constants.Update, updateData)

	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":        "Book updated successfully",
		"matched_count":  result.MatchedCount,
		"modified_count": result.ModifiedCount,
	})
}

// POST /books/{id}/reviews
func (h *BookHandler) AddReview(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	bookID, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		utils.JSONError(w, "Invalid book ID", http.StatusBadRequest)
		return
	}

	var review models.Review
	if err := json.NewDecoder(r.Body).Decode(&review); err != nil {
		utils.JSONError(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	if err := review.Validate(); err != nil {
		utils.JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := h.BookCollection.UpdateOne(
		ctx,
		bson.M{"_id": bookID},
		bson.M{
			"$push": bson.M{"reviews": review},
			"$set":  bson.M{"updated_at": time.Now()},
		},
	)

	if err != nil {
		utils.JSONError(w, "Failed to add review: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if result.MatchedCount == 0 {
		utils.JSONError(w, "Book not found", http.StatusNotFound)
		return
	}

	h.Cache.InvalidateBook(ctx, idStr)
	h.AuditLogger.Log(ctx, models.ReviewEntity, constants.AddReview, review)

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(review)
}

type PriceAdjustmentRequest struct {
	Genre           string  `json:"genre"`
	PublishedBefore int     `json:"published_before"`
	Increment       float64 `json:"increment"`
}

// POST /books/price-adjustments
//
// Applies a price increment to every book matching the filter. Zero matches
// is not an error; the counts in the response say what happened.
func (h *BookHandler) AdjustPrices(w http.ResponseWriter, r *http.Request) {
	var req PriceAdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	if req.Increment == 0 {
		utils.JSONError(w, "Increment must be non-zero", http.StatusBadRequest)
		return
	}

	filter := bson.M{}
	if req.Genre != "" {
		filter["genre"] = req.Genre
	}
	if req.PublishedBefore != 0 {
		filter["publication_year"] = bson.M{"$lt": req.PublishedBefore}
	}
	if len(filter) == 0 {
		utils.JSONError(w, "Filter required: genre or published_before", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := h.BookCollection.UpdateMany(
		ctx,
		filter,
		bson.M{
			"$inc": bson.M{"price": req.Increment},
			"$set": bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		utils.JSONError(w, "Price adjustment failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.AuditLogger.Log(ctx, models.BookEntity, constants.AdjustPrice, req)

	json.NewEncoder(w).Encode(map[string]interface{}{
		"matched_count":  result.MatchedCount,
		"modified_count": result.ModifiedCount,
	})
}

// DELETE /books/{id}
func (h *BookHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	bookID, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		utils.JSONError(w, "Invalid book ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := h.BookCollection.DeleteOne(ctx, bson.M{"_id": bookID})
	if err != nil {
		utils.JSONError(w, "Delete failed", http.StatusInternalServerError)
		return
	}
	if result.DeletedCount == 0 {
		utils.JSONError(w, "Book not found", http.StatusNotFound)
		return
	}

	h.Cache.InvalidateBook(ctx, idStr)
	h.AuditLogger.Log(ctx, models.BookEntity, constants.Delete, idStr)

	w.WriteHeader(http.StatusNoContent)
}

// DELETE /books
//
// Bulk removal by predicate. An empty predicate is refused rather than
// interpreted as delete-everything.
func (h *BookHandler) DeleteBooks(w http.ResponseWriter, r *http.Request) {
	filter, err := buildBookFilter(r)
	if err != nil {
		utils.JSONError(w, "Invalid filter parameter", http.StatusBadRequest)
		return
	}

	if len(filter) == 0 {
		utils.JSONError(w, "Filter required for bulk delete", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := h.BookCollection.DeleteMany(ctx, filter)
	if err != nil {
		utils.JSONError(w, "Delete failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.AuditLogger.Log(ctx, models.BookEntity, constants.BulkDelete, filter)

	json.NewEncoder(w).Encode(map[string]int64{"deleted_count": result.DeletedCount})
}
