package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"book-catalog-service/internal/constants"
	"book-catalog-service/internal/models"
	"book-catalog-service/internal/utils"
)

type IndexHandler struct {
	BookCollection *mongo.Collection
	AuditLogger    utils.Logger
}

// IndexKey is one entry of an ordered index key document. Type is 1 or -1
// for a regular index, or "text" for a text index.
type IndexKey struct {
	Field string      `json:"field"`
	Type  interface{} `json:"type"`
}

type CreateIndexRequest struct {
	Keys   []IndexKey `json:"keys"`
	Name   string     `json:"name"`
	Unique bool       `json:"unique"`
}

// POST /indexes
func (h *IndexHandler) CreateIndex(w http.ResponseWriter, r *http.Request) {
	var req CreateIndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	if len(req.Keys) == 0 {
		utils.JSONError(w, "At least one index key required", http.StatusBadRequest)
		return
	}

	keys := bson.D{}
	for _, k := range req.Keys {
		if k.Field == "" {
			utils.JSONError(w, "Index key field must not be empty", http.StatusBadRequest)
			return
		}
		switch v := k.Type.(type) {
		case string:
			if v != "text" {
				utils.JSONError(w, "Index key type must be 1, -1 or \"text\"", http.StatusBadRequest)
				return
			}
			keys = append(keys, bson.E{Key: k.Field, Value: "text"})
		case float64:
			// JSON numbers decode as float64
			if v != 1 && v != -1 {
				utils.JSONError(w, "Index key type must be 1, -1 or \"text\"", http.StatusBadRequest)
				return
			}
			keys = append(keys, bson.E{Key: k.Field, Value: int32(v)})
		default:
			utils.JSONError(w, "Index key type must be 1, -1 or \"text\"", http.StatusBadRequest)
			return
		}
	}

	opts := options.Index()
	if req.Name != "" {
		opts.SetName(req.Name)
	}
	if req.Unique {
		opts.SetUnique(true)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	name, err := h.BookCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    keys,
		Options: opts,
	})
	if err != nil {
		utils.JSONError(w, "Index creation failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.AuditLogger.Log(ctx, models.BookEntity, constants.CreateIndex, name)

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"name": name})
}

// GET /indexes
func (h *IndexHandler) ListIndexes(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cursor, err := h.BookCollection.Indexes().List(ctx)
	if err != nil {
		utils.JSONError(w, "Failed to list indexes: "+err.Error(), http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	indexes := []bson.M{}
	if err = cursor.All(ctx, &indexes); err != nil {
		utils.JSONError(w, "Failed to decode indexes", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(indexes)
}

// DELETE /indexes/{name}
func (h *IndexHandler) DropIndex(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := h.BookCollection.Indexes().DropOne(ctx, name); err != nil {
		utils.JSONError(w, "Failed to drop index: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.AuditLogger.Log(ctx, models.BookEntity, constants.DropIndex, name)

	w.WriteHeader(http.StatusNoContent)
}

// DELETE /indexes
func (h *IndexHandler) DropIndexes(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := h.BookCollection.Indexes().DropAll(ctx); err != nil {
		utils.JSONError(w, "Failed to drop indexes: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.AuditLogger.Log(ctx, models.BookEntity, constants.DropIndex, "*")

	w.WriteHeader(http.StatusNoContent)
}
