package cli

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/thebraudalf/fnb-docbot/internal/adapter/fs"
	"github.com/thebraudalf/fnb-docbot/internal/api"
)

var watchUploads bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Start the HTTP server exposing ingestion and query endpoints.

Endpoints:
  POST /ingest   multipart file upload (max 10 files per request)
  POST /query    answer a question from the ingested content
  POST /reset    drop the index and the upload registry
  GET  /stats    index statistics
  GET  /sources  per-source ingest ledger
  GET  /health   liveness probe

With --watch, files dropped into the upload directory are ingested
automatically.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&watchUploads, "watch", false, "watch the upload directory and ingest new files")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	comps, err := buildComponents(GetConfig())
	if err != nil {
		return err
	}
	defer comps.close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if watchUploads || comps.cfg.Watch.Enabled {
		if err := startUploadWatch(ctx, comps); err != nil {
			return err
		}
	}

	server := api.NewServer(
		comps.ingest,
		comps.query,
		comps.store,
		comps.registry,
		comps.uploadDir,
		comps.cfg.Server.Addr,
	)
	return server.Start(ctx)
}

// startUploadWatch ingests files appearing in the upload directory.
// The ingestion artifact itself is skipped so query-side caching does
// not feed back into the pipeline.
func startUploadWatch(ctx context.Context, comps *components) error {
	watcher, err := fs.NewWatcher(
		comps.ingest.SupportedExtensions(),
		[]string{"document.json"},
	)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	events, err := watcher.Watch(ctx, comps.uploadDir)
	if err != nil {
		watcher.Stop()
		return fmt.Errorf("failed to watch %s: %w", comps.uploadDir, err)
	}

	log.Printf("[INFO] watching %s for new files", comps.uploadDir)

	go func() {
		defer watcher.Stop()
		for path := range events {
			result, err := comps.ingest.IngestBatch(ctx, []string{path})
			if err != nil {
				log.Printf("[WARN] auto-ingest %s: %v", path, err)
				continue
			}
			for _, e := range result.Errors {
				log.Printf("[WARN] auto-ingest: %s", e)
			}
			if result.ChunksAdded > 0 {
				log.Printf("[INFO] auto-ingested %s: %d chunks", path, result.ChunksAdded)
			}
		}
	}()
	return nil
}
