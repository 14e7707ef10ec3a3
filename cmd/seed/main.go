package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"time"

	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/db"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/seed"
)

func main() {
	config.LoadEnvFile(".env")
	cfg := config.Load()
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")

	file := flag.String("file", cfg.SeedFile, "YAML catalog to load")
	reindex := flag.Bool("index", cfg.ESURL != "", "index all products into Elasticsearch afterwards")
	flag.Parse()

	logger := logging.New(cfg.LogLevel).With("service", "storefront-seed")
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	gdb, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer db.Close(gdb)

	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	catalog, err := seed.LoadFile(*file)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}

	r := &repo.GormRepo{DB: gdb}
	created, err := seed.Apply(ctx, r, catalog)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	logger.Info("seed_applied", "file", *file, "created", created, "in_file", len(catalog.Products))

	if !*reindex {
		return
	}

	es, err := search.NewClient(ctx, search.Config{
		URL:      cfg.ESURL,
		User:     cfg.ESUser,
		Password: cfg.ESPassword,
		Index:    cfg.ESIndex,
	})
	if err != nil {
		log.Fatalf("elasticsearch: %v", err)
	}

	products, err := r.ListProducts(ctx)
	if err != nil {
		log.Fatalf("list products: %v", err)
	}
	if err := es.IndexProducts(ctx, products); err != nil {
		log.Fatalf("index products: %v", err)
	}
	logger.Info("products_indexed", "index", cfg.ESIndex, "count", len(products))
}
