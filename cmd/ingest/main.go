// Command ingest runs batch reconciliation passes over scraped raw records.
// It reads a YAML manifest describing the sources (store name, logo, records
// file), ingests each source's records into the catalog, and optionally
// reconciles availability afterwards.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/comparaqp/backend/config"
	"github.com/comparaqp/backend/internal/domain"
	"github.com/comparaqp/backend/internal/infrastructure/sqlite"
	"github.com/comparaqp/backend/internal/usecase"
)

// manifest describes the sources of one ingestion run.
type manifest struct {
	Sources []source `yaml:"sources"`
}

type source struct {
	Store   string `yaml:"store"`
	LogoURL string `yaml:"logo_url"`
	File    string `yaml:"file"`
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ingest",
		Short:         "Batch ingestion for the grocery price catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var (
		manifestPath string
		reconcile    bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Ingest every source listed in the manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngestion(cmd, manifestPath, reconcile)
		},
	}

	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "path to the sources manifest (required)")
	cmd.Flags().BoolVar(&reconcile, "reconcile", false, "mark prices unobserved by this run as unavailable")
	cmd.MarkFlagRequired("manifest")

	return cmd
}

func runIngestion(cmd *cobra.Command, manifestPath string, reconcile bool) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger, err := newLogger(cfg.Server.Environment)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer logger.Sync()

	m, err := loadManifest(manifestPath)
	if err != nil {
		return err
	}
	if len(m.Sources) == 0 {
		return fmt.Errorf("manifest %s lists no sources", manifestPath)
	}

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	repo := sqlite.NewCatalogRepository(db)
	ingestService := usecase.NewIngestService(repo, usecase.IngestConfig{
		BrandThreshold:        cfg.Matching.BrandThreshold,
		CategoryThreshold:     cfg.Matching.CategoryThreshold,
		ProductThreshold:      cfg.Matching.ProductThreshold,
		MinCommonTokens:       cfg.Matching.MinCommonTokens,
		TokenOverlapThreshold: cfg.Matching.TokenOverlapThreshold,
		DefaultBrand:          cfg.Catalog.DefaultBrand,
		DefaultCategory:       cfg.Catalog.DefaultCategory,
	}, logger)

	ctx := cmd.Context()
	for _, src := range m.Sources {
		records, err := loadRecords(src.File)
		if err != nil {
			logger.Error("skipping source, records unreadable",
				zap.String("store", src.Store),
				zap.String("file", src.File),
				zap.Error(err))
			continue
		}

		store, err := repo.GetOrCreateStore(ctx, src.Store, src.LogoURL)
		if err != nil {
			return fmt.Errorf("resolving store %q: %w", src.Store, err)
		}

		result, err := ingestService.Ingest(ctx, store.ID, records)
		if err != nil {
			return fmt.Errorf("ingesting %q: %w", src.Store, err)
		}

		logger.Info("source ingested",
			zap.String("store", store.Name),
			zap.Int("stored", result.Stored()),
			zap.Int("created", result.Created),
			zap.Int("updated", result.Updated),
			zap.Int("skipped", result.Skipped),
			zap.Int("errored", result.Errored))

		if reconcile {
			if _, err := ingestService.Reconcile(ctx, store.ID, result.ObservedProductIDs); err != nil {
				return fmt.Errorf("reconciling %q: %w", store.Name, err)
			}
		}
	}

	return nil
}

func loadManifest(path string) (*manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}

func loadRecords(path string) ([]domain.RawRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var records []domain.RawRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing records: %w", err)
	}
	return records, nil
}

func newLogger(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
