package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"book-catalog-service/internal/handlers"
)

func TestStatsHandler_AuthorCounts(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	if mt.Client != nil {
		defer mt.Client.Disconnect(context.Background())
	}

	mt.Run("one row per author with counts", func(mt *mtest.T) {
		handler := handlers.StatsHandler{BookCollection: mt.Coll}

		router := mux.NewRouter()
		router.HandleFunc("/stats/authors", handler.AuthorCounts).Methods("GET")

		first := mtest.CreateCursorResponse(1, "test.books", mtest.FirstBatch,
			bson.D{{Key: "author", Value: "Frank Herbert"}, {Key: "book_count", Value: 3}},
			bson.D{{Key: "author", Value: "Dan Simmons"}, {Key: "book_count", Value: 1}},
		)
		end := mtest.CreateCursorResponse(0, "test.books", mtest.NextBatch)
		mt.AddMockResponses(first, end)

		req := httptest.NewRequest(http.MethodGet, "/stats/authors", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		res := w.Result()
		defer res.Body.Close()

		if res.StatusCode != http.StatusOK {
			t.Errorf("expected status OK, got %v", res.Status)
		}

		var rows []map[string]interface{}
		if err := json.NewDecoder(res.Body).Decode(&rows); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(rows) != 2 {
			t.Fatalf("expected 2 rows, got %d", len(rows))
		}
		if rows[0]["author"] != "Frank Herbert" || rows[0]["book_count"] != float64(3) {
			t.Errorf("unexpected first row: %v", rows[0])
		}
	})
}

func TestStatsHandler_GenreStats(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	if mt.Client != nil {
		defer mt.Client.Disconnect(context.Background())
	}

	mt.Run("per-genre price summary", func(mt *mtest.T) {
		handler := handlers.StatsHandler{BookCollection: mt.Coll}

		router := mux.NewRouter()
		router.HandleFunc("/stats/genres", handler.GenreStats).Methods("GET")

		first := mtest.CreateCursorResponse(1, "test.books", mtest.FirstBatch,
			bson.D{
				{Key: "genre", Value: "Science Fiction"},
				{Key: "book_count", Value: 2},
				{Key: "avg_price", Value: 13.25},
				{Key: "min_price", Value: 12.00},
				{Key: "max_price", Value: 14.50},
			},
		)
		end := mtest.CreateCursorResponse(0, "test.books", mtest.NextBatch)
		mt.AddMockResponses(first, end)

		req := httptest.NewRequest(http.MethodGet, "/stats/genres", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		res := w.Result()
		defer res.Body.Close()

		if res.StatusCode != http.StatusOK {
			t.Errorf("expected status OK, got %v", res.Status)
		}

		var rows []map[string]interface{}
		if err := json.NewDecoder(res.Body).Decode(&rows); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(rows) != 1 || rows[0]["avg_price"] != 13.25 {
			t.Errorf("unexpected rows: %v", rows)
		}
	})
}

func TestStatsHandler_TopRated(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	if mt.Client != nil {
		defer mt.Client.Disconnect(context.Background())
	}

	mt.Run("ranked by average rating", func(mt *mtest.T) {
		handler := handlers.StatsHandler{BookCollection: mt.Coll}

		router := mux.NewRouter()
		router.HandleFunc("/stats/top-rated", handler.TopRated).Methods("GET")

		first := mtest.CreateCursorResponse(1, "test.books", mtest.FirstBatch,
			bson.D{
				{Key: "title", Value: "Dune"},
				{Key: "author", Value: "Frank Herbert"},
				{Key: "avg_rating", Value: 4.5},
				{Key: "review_count", Value: 2},
			},
		)
		end := mtest.CreateCursorResponse(0, "test.books", mtest.NextBatch)
		mt.AddMockResponses(first, end)

		req := httptest.NewRequest(http.MethodGet, "/stats/top-rated?limit=5", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		res := w.Result()
		defer res.Body.Close()

		if res.StatusCode != http.StatusOK {
			t.Errorf("expected status OK, got %v", res.Status)
		}

		var rows []map[string]interface{}
		if err := json.NewDecoder(res.Body).Decode(&rows); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(rows) != 1 || rows[0]["avg_rating"] != 4.5 {
			t.Errorf("unexpected rows: %v", rows)
		}
	})

	mt.Run("invalid limit rejected", func(mt *mtest.T) {
		handler := handlers.StatsHandler{BookCollection: mt.Coll}

		router := mux.NewRouter()
		router.HandleFunc("/stats/top-rated", handler.TopRated).Methods("GET")

		req := httptest.NewRequest(http.MethodGet, "/stats/top-rated?limit=0", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		res := w.Result()
		defer res.Body.Close()

		if res.StatusCode != http.StatusBadRequest {
			t.Errorf("expected status BadRequest, got %v", res.Status)
		}
	})
}
