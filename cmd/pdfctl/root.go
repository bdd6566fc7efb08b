package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"pdfchat-be/internal/bootstrap"
	"pdfchat-be/internal/config"
	"pdfchat-be/internal/pkg/logger"
	"pdfchat-be/pkg/database"
	"pdfchat-be/pkg/embedding"
	"pdfchat-be/pkg/rag/ingest"
	"pdfchat-be/pkg/storage"
	"pdfchat-be/pkg/vectorindex"

	"github.com/spf13/cobra"
)

type globalFlags struct {
	index   string
	root    string
	verbose bool
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "pdfctl",
		Short: "Ingest PDFs and ask grounded questions from the terminal",
		Long: `pdfctl runs the ingestion and answer pipeline without the HTTP server.

Configuration comes from the same environment (or .env) as the server.
With --index memory nothing is persisted, so "ask" needs --ingest.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&flags.index, "index", "", "Vector index: pgvector or memory (default from VECTOR_INDEX)")
	cmd.PersistentFlags().StringVar(&flags.root, "root", ".", "Local storage root for uploaded files")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Log pipeline steps to logs/pdfctl.log")

	cmd.AddCommand(newIngestCmd(flags))
	cmd.AddCommand(newAskCmd(flags))
	cmd.AddCommand(newNamespaceCmd())
	return cmd
}

// runtime is the pipeline wired from config and flags.
type runtime struct {
	cfg      *config.Config
	store    storage.DocumentStore
	embedder *embedding.Embedder
	index    vectorindex.Index
	pipeline *ingest.Pipeline
	log      logger.ILogger
}

func newRuntime(flags *globalFlags) (*runtime, error) {
	cfg := config.Load()
	if flags.index != "" {
		cfg.RAG.VectorIndex = flags.index
	}

	var log logger.ILogger = logger.NewNopLogger()
	if flags.verbose {
		log = logger.NewIsolatedLogger("logs/pdfctl.log")
	}

	rt := &runtime{
		cfg:   cfg,
		store: storage.NewLocalStore(flags.root, cfg.Storage.LocalBaseURL),
		log:   log,
	}

	embedder, err := bootstrap.NewEmbedder(cfg.Ai)
	if err != nil {
		return nil, err
	}
	rt.embedder = embedder

	if cfg.RAG.VectorIndex == "memory" {
		rt.index = vectorindex.NewMemoryIndex(cfg.Ai.EmbeddingDimensions)
	} else {
		db, err := database.Open(cfg.Database.Connection, database.DefaultOptions(true))
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		rt.index, err = bootstrap.NewVectorIndex(cfg.RAG.VectorIndex, db, cfg.Ai.EmbeddingDimensions)
		if err != nil {
			return nil, err
		}
	}

	rt.pipeline = bootstrap.NewIngestPipeline(rt.store, rt.embedder, rt.index, cfg.RAG, log)
	return rt, nil
}

// ingestFile copies path into local storage under a fresh key and indexes it.
func (rt *runtime) ingestFile(ctx context.Context, path string) (*ingest.Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	key := storage.NewFileKey(filepath.Base(path), time.Now())
	if err := rt.store.Upload(ctx, key, f, info.Size(), "application/pdf"); err != nil {
		return nil, fmt.Errorf("store %s: %w", path, err)
	}
	return rt.pipeline.Ingest(ctx, key)
}
