package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"book-catalog-service/configs"
	"book-catalog-service/internal/cache"
	"book-catalog-service/internal/daemon"
	"book-catalog-service/internal/db"
	"book-catalog-service/internal/handlers"
	"book-catalog-service/internal/middleware"
	"book-catalog-service/internal/utils"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	cfg := configs.LoadConfig()
	db.Connect(cfg.MongoURI)
	utils.InitJwtSecret(cfg.JWTSecret)

	bookCache := cache.NewBookCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, time.Duration(cfg.CacheTTLSecs)*time.Second)
	if err := bookCache.Connect(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Redis connection failed")
	}

	r := mux.NewRouter()
	r.Use(middleware.RequestLogger)
	r.Use(middleware.JSONMiddleware)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "OK")
	})

	authHandler := &handlers.AuthHandler{
		ConfigCreds: struct {
			UserId       string
			Username     string
			UserPassword string
		}{UserId: cfg.UserId, Username: cfg.UserName, UserPassword: cfg.UserPassword},
	}
	r.HandleFunc("/login", authHandler.Login).Methods("POST")

	auditCol := db.GetCollection(cfg.DBName, "audit_logs")
	auditLogger := utils.Logger{Collection: auditCol}

	bookColl := db.GetCollection(cfg.DBName, "books")

	bookHandler := handlers.NewBookHandler(bookColl, bookCache, auditLogger)

	booksRouter := r.PathPrefix("/").Subrouter()
	booksRouter.Use(middleware.JWTAuthMiddleware)

	booksRouter.HandleFunc("/books", bookHandler.AddBook).Methods("POST")
	booksRouter.HandleFunc("/books", bookHandler.GetBooks).Methods("GET")
	booksRouter.HandleFunc("/books", bookHandler.DeleteBooks).Methods("DELETE")
	booksRouter.HandleFunc("/books/batch", bookHandler.AddBooks).Methods("POST")
	booksRouter.HandleFunc("/books/search", bookHandler.SearchBooks).Methods("GET")
	booksRouter.HandleFunc("/books/count", bookHandler.CountBooks).Methods("GET")
	booksRouter.HandleFunc("/books/price-adjustments", bookHandler.AdjustPrices).Methods("POST")
	booksRouter.HandleFunc("/books/{id}", bookHandler.GetBook).Methods("GET")
	booksRouter.HandleFunc("/books/{id}", bookHandler.UpdateBook).Methods("PUT")
	booksRouter.HandleFunc("/books/{id}", bookHandler.DeleteBook).Methods("DELETE")
	booksRouter.HandleFunc("/books/{id}/reviews", bookHandler.AddReview).Methods("POST")

	statsHandler := &handlers.StatsHandler{BookCollection: bookColl}

	booksRouter.HandleFunc("/stats/authors", statsHandler.AuthorCounts).Methods("GET")
	booksRouter.HandleFunc("/stats/genres", statsHandler.GenreStats).Methods("GET")
	booksRouter.HandleFunc("/stats/top-rated", statsHandler.TopRated).Methods("GET")

	indexHandler := &handlers.IndexHandler{BookCollection: bookColl, AuditLogger: auditLogger}

	booksRouter.HandleFunc("/indexes", indexHandler.CreateIndex).Methods("POST")
	booksRouter.HandleFunc("/indexes", indexHandler.ListIndexes).Methods("GET")
	booksRouter.HandleFunc("/indexes", indexHandler.DropIndexes).Methods("DELETE")
	booksRouter.HandleFunc("/indexes/{name}", indexHandler.DropIndex).Methods("DELETE")

	logExporter := daemon.LogExporter{Coll: auditCol}
	logExporter.InitLogExporter()

	var server = http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	log.Info().Msg("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Graceful shutdown failed")
	}

	bookCache.Close()
	db.Disconnect(ctx)

	log.Info().Msg("Server shut down.")
}
