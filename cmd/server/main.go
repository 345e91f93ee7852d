package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"symptom-triage/internal/core"
	"symptom-triage/internal/db"
	httpserver "symptom-triage/internal/http"
	"symptom-triage/internal/llm"
)

func main() {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL must be set")
	}
	dbConn, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dbConn.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping database: %v", err)
	}
	if err := db.Migrate(context.Background(), dbConn); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}
	repo := db.NewRepository(dbConn)

	channel := os.Getenv("POSTGRES_NOTIFY_CHANNEL")
	if channel == "" {
		channel = "intake_finalized"
	}
	notifier := db.NewNotifier(dbConn, dbURL, channel)

	// A missing provider credential is surfaced here, before the first call.
	// The server still runs: every generator substitutes its deterministic
	// fallback, so the conversation can always proceed.
	cfg := llm.LoadConfig()
	client, err := llm.New(context.Background(), cfg)
	if err != nil {
		log.Printf("AI generation disabled (%v); running with deterministic fallbacks", err)
		client = nil
	} else {
		log.Printf("AI provider: %s", cfg.Provider)
	}
	gen := core.NewGenerator(client)

	srv := httpserver.NewServer(repo, notifier, gen)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	addr := ":" + port
	log.Printf("Listening on %s", addr)
	if err := http.ListenAndServe(addr, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
