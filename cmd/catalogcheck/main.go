// Command catalogcheck loads a rule catalog and reports structural errors and
// trigger issues. With -publish the catalog is uploaded to S3 once it is clean.
//
// Usage: catalogcheck [-source path|s3://bucket/key] [-publish s3://bucket/key]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"taxdocs/internal/catalog"
	"taxdocs/internal/config"
	"taxdocs/internal/requirement"
	"taxdocs/internal/storage"
	s3storage "taxdocs/internal/storage/s3"
	"taxdocs/pkg/logger"
)

const timeout = 2 * time.Minute

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}

	source := flag.String("source", cfg.Catalog.Source, "catalog file path or s3://bucket/key; empty checks the embedded catalog")
	publish := flag.String("publish", "", "upload the catalog to this s3://bucket/key when it has no issues")
	flag.Parse()

	if err := logger.Init(cfg.Log.Level, cfg.Log.Development()); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	src, err := storage.OpenCatalogSource(ctx, *source, &cfg.S3)
	if err != nil {
		log.Error("opening catalog source", zap.Error(err))
		return 1
	}
	data, err := src.Fetch(ctx)
	if err != nil {
		log.Error("fetching catalog", zap.String("source", src.Describe()), zap.Error(err))
		return 1
	}
	cat, err := catalog.Load(data)
	if err != nil {
		log.Error("catalog rejected", zap.String("source", src.Describe()), zap.Error(err))
		return 1
	}

	issues := requirement.NewResolver(cat).ValidateAllConditions()
	for _, issue := range issues {
		log.Warn("condition issue", zap.String("issue", issue))
	}
	log.Info("catalog checked",
		zap.String("source", src.Describe()),
		zap.String("version", cat.Version()),
		zap.Int("categories", len(cat.CategoryIDs())),
		zap.Int("forms", len(cat.FormTypes())),
		zap.Int("issues", len(issues)),
	)
	if len(issues) > 0 {
		return 1
	}

	if *publish == "" {
		return 0
	}
	client, err := s3storage.NewClient(ctx, &cfg.S3)
	if err != nil {
		log.Error("creating s3 client", zap.Error(err))
		return 1
	}
	dest, err := s3storage.NewCatalogStore(client, *publish)
	if err != nil {
		log.Error("invalid publish target", zap.Error(err))
		return 1
	}
	if err := dest.Publish(ctx, data); err != nil {
		log.Error("publishing catalog", zap.Error(err))
		return 1
	}
	log.Info("catalog published", zap.String("target", dest.Describe()))
	return 0
}
