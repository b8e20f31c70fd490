package handlers_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"book-catalog-service/internal/handlers"
)

func TestIndexHandler_CreateIndex(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	if mt.Client != nil {
		defer mt.Client.Disconnect(context.Background())
	}

	mt.Run("successful compound index", func(mt *mtest.T) {
		handler := handlers.IndexHandler{BookCollection: mt.Coll}

		router := mux.NewRouter()
		router.HandleFunc("/indexes", handler.CreateIndex).Methods("POST")

		mt.AddMockResponses(mtest.CreateSuccessResponse())

		body := []byte(`{"keys":[{"field":"genre","type":1},{"field":"price","type":-1}]}`)
		req := httptest.NewRequest(http.MethodPost, "/indexes", bytes.NewReader(body))
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		res := w.Result()
		defer res.Body.Close()

		if res.StatusCode != http.StatusCreated {
			t.Errorf("expected status Created, got %v", res.Status)
		}
	})

	mt.Run("text index accepted", func(mt *mtest.T) {
		handler := handlers.IndexHandler{BookCollection: mt.Coll}

		router := mux.NewRouter()
		router.HandleFunc("/indexes", handler.CreateIndex).Methods("POST")

		mt.AddMockResponses(mtest.CreateSuccessResponse())

		body := []byte(`{"keys":[{"field":"title","type":"text"}]}`)
		req := httptest.NewRequest(http.MethodPost, "/indexes", bytes.NewReader(body))
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		res := w.Result()
		defer res.Body.Close()

		if res.StatusCode != http.StatusCreated {
			t.Errorf("expected status Created, got %v", res.Status)
		}
	})

	mt.Run("bad direction rejected", func(mt *mtest.T) {
		handler := handlers.IndexHandler{BookCollection: mt.Coll}

		router := mux.NewRouter()
		router.HandleFunc("/indexes", handler.CreateIndex).Methods("POST")

		body := []byte(`{"keys":[{"field":"genre","type":2}]}`)
		req := httptest.NewRequest(http.MethodPost, "/indexes", bytes.NewReader(body))
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		res := w.Result()
		defer res.Body.Close()

		if res.StatusCode != http.StatusBadRequest {
			t.Errorf("expected status BadRequest, got %v", res.Status)
		}
	})

	mt.Run("missing keys rejected", func(mt *mtest.T) {
		handler := handlers.IndexHandler{BookCollection: mt.Coll}

		router := mux.NewRouter()
		router.HandleFunc("/indexes", handler.CreateIndex).Methods("POST")

		req := httptest.NewRequest(http.MethodPost, "/indexes", bytes.NewReader([]byte(`{"keys":[]}`)))
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		res := w.Result()
		defer res.Body.Close()

		if res.StatusCode != http.StatusBadRequest {
			t.Errorf("expected status BadRequest, got %v", res.Status)
		}
	})
}
