package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"restopos/internal/api"
	"restopos/internal/config"
	"restopos/internal/database"
	"restopos/internal/migrations"
	"restopos/internal/seed"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg := config.Load()
	db := database.Connect(cfg.DatabaseDSN)
	defer db.Close()

	migrations.Run(db)
	seed.EnsureLookups(db)
	seed.LoadCatalog(db, cfg.CatalogCSV)

	handler := api.New(db, cfg.Secret, logger)

	logger.Info("restopos server starting", "port", cfg.HTTPPort)
	if err := http.ListenAndServe(":"+cfg.HTTPPort, handler.Router(cfg.CORSOrigins)); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
