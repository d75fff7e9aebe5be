package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teslawire/teslawire/internal/api"
	"github.com/teslawire/teslawire/internal/assets"
	"github.com/teslawire/teslawire/internal/config"
	"github.com/teslawire/teslawire/internal/enrich"
	"github.com/teslawire/teslawire/internal/fetcher"
	"github.com/teslawire/teslawire/internal/images"
	"github.com/teslawire/teslawire/internal/sanitizer"
	"github.com/teslawire/teslawire/internal/scraper"
	"github.com/teslawire/teslawire/internal/source"
	"github.com/teslawire/teslawire/internal/store"
	syncer "github.com/teslawire/teslawire/internal/sync"
)

var dryRun bool

// pipeline bundles the wired components plus their teardown.
type pipeline struct {
	orchestrator *syncer.Orchestrator
	fetcher      fetcher.Fetcher
	store        store.ArticleStore
}

func (p *pipeline) close(ctx context.Context, logger *slog.Logger) {
	if err := p.fetcher.Close(); err != nil {
		logger.Warn("fetcher close failed", "error", err)
	}
	if err := p.store.Close(ctx); err != nil {
		logger.Warn("store close failed", "error", err)
	}
}

// buildPipeline wires every component from config.
func buildPipeline(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pipeline, error) {
	f, err := fetcher.New(&cfg.Fetcher, logger)
	if err != nil {
		return nil, fmt.Errorf("create fetcher: %w", err)
	}

	adapters, err := source.Build(cfg.Sources.List, f, logger)
	if err != nil {
		return nil, err
	}

	st, err := store.NewMongoStore(ctx, &cfg.Store, logger)
	if err != nil {
		return nil, err
	}

	assetStore := assets.NewHTTPStore(&cfg.Assets, logger)

	orchestrator := syncer.New(
		adapters,
		scraper.New(f, &cfg.Scraper, logger),
		sanitizer.New(logger),
		images.NewUploader(assetStore, &cfg.Images, logger),
		assetStore,
		enrich.NewEngine(&cfg.AI, logger),
		st,
		&cfg.Sync,
		cfg.Sources.List,
		logger,
	)

	return &pipeline{orchestrator: orchestrator, fetcher: f, store: st}, nil
}

// syncCmd creates the "sync" subcommand.
func syncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run the ingestion pipeline once",
		RunE:  runSync,
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "fetch and dedup only, print candidates, write nothing")
	return cmd
}

func runSync(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := setupLogger(&cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := buildPipeline(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer p.close(context.Background(), logger)

	if dryRun {
		candidates, summary, err := p.orchestrator.DryRun(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%d candidate(s), %d skipped\n", len(candidates), summary.Skipped)
		for _, c := range candidates {
			fmt.Printf("  %-14s %s  %s\n", c.Source, c.PublishedAt.Format("2006-01-02 15:04"), c.Title)
		}
		return nil
	}

	summary, runErr := p.orchestrator.Run(ctx)
	out, _ := json.MarshalIndent(summary, "", "  ")
	fmt.Println(string(out))

	if runErr != nil {
		return fmt.Errorf("run aborted: %w", runErr)
	}
	return nil
}

// listCmd creates the "list" subcommand.
func listCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the most recently published imported articles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := setupLogger(&cfg.Logging)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			st, err := store.NewMongoStore(ctx, &cfg.Store, logger)
			if err != nil {
				return err
			}
			defer st.Close(context.Background())

			articles, err := st.ListRecent(ctx, limit)
			if err != nil {
				return err
			}
			for _, a := range articles {
				published := " "
				if a.IsPublished {
					published = "*"
				}
				fmt.Printf("%s %-14s %s  %s\n", published, a.Source, a.PublishedAt.Format("2006-01-02 15:04"), a.TitleTranslated)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of articles to show")
	return cmd
}

// serveCmd creates the "serve" subcommand.
func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP trigger endpoint",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := setupLogger(&cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := buildPipeline(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer p.close(context.Background(), logger)

	server := api.NewServer(&cfg.Server, p.orchestrator, logger)
	return server.ListenAndServe(ctx)
}
