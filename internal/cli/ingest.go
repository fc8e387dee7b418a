package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/thebraudalf/fnb-docbot/internal/adapter/fs"
	"github.com/thebraudalf/fnb-docbot/internal/usecase"
)

var ingestDir string

var ingestCmd = &cobra.Command{
	Use:   "ingest [files...]",
	Short: "Ingest files into the index",
	Long: `Extract, chunk, embed and index the given files. Directories are
scanned with --dir using the configured include patterns.

Batches are capped at 10 files; larger sets are split automatically.

Examples:
  docbot ingest manual.pdf notes.txt
  docbot ingest --dir ./docs`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestDir, "dir", "", "ingest all supported files under this directory")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	comps, err := buildComponents(GetConfig())
	if err != nil {
		return err
	}
	defer comps.close()

	paths := args
	if ingestDir != "" {
		root, err := filepath.Abs(ingestDir)
		if err != nil {
			return fmt.Errorf("invalid directory: %w", err)
		}
		found, err := collectSupported(comps, root)
		if err != nil {
			return err
		}
		paths = append(paths, found...)
	}
	if len(paths) == 0 {
		return fmt.Errorf("nothing to ingest: pass files or --dir")
	}

	fmt.Printf("Ingesting %d file(s)...\n", len(paths))

	bar := progressbar.NewOptions(len(paths),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Ingesting[reset]"),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)

	var totalFiles, totalChunks, totalChars int
	var warnings []string

	// Larger sets are split into batches of the upload limit.
	for start := 0; start < len(paths); start += usecase.MaxBatchFiles {
		end := start + usecase.MaxBatchFiles
		if end > len(paths) {
			end = len(paths)
		}

		result, err := comps.ingest.IngestBatch(context.Background(), paths[start:end])
		if err != nil {
			return fmt.Errorf("ingestion failed: %w", err)
		}

		totalFiles += result.FileCount
		totalChunks += result.ChunksAdded
		totalChars += result.CharCount
		warnings = append(warnings, result.Errors...)
		bar.Set(end)
	}

	fmt.Printf("\nIngestion complete:\n")
	fmt.Printf("  Files ingested: %d\n", totalFiles)
	fmt.Printf("  Chunks indexed: %d\n", totalChunks)
	fmt.Printf("  Characters:     %d\n", totalChars)

	if len(warnings) > 0 {
		fmt.Printf("\nWarnings:\n")
		for _, w := range warnings {
			fmt.Printf("  - %s\n", w)
		}
	}

	stats := comps.store.Stats()
	fmt.Printf("\nIndex stored at: %s (%d vectors)\n", stats.PersistDir, stats.TotalVectors)
	return nil
}

// collectSupported finds ingestable files under root.
func collectSupported(comps *components, root string) ([]string, error) {
	patterns := make([]string, 0, len(comps.ingest.SupportedExtensions()))
	for _, ext := range comps.ingest.SupportedExtensions() {
		patterns = append(patterns, "**/*"+ext)
	}

	walker := fs.NewWalker(patterns, nil)
	found, err := walker.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("no supported files under %s", root)
	}
	return found, nil
}
