package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/thebraudalf/fnb-docbot/config"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop the index and the upload registry",
	Long: `Remove all vectors, passages and source records, and delete the
cached ingestion artifact. The on-disk files are rewritten empty so the
next run starts clean.`,
	RunE: runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	comps, err := buildComponents(GetConfig())
	if err != nil {
		return err
	}
	defer comps.close()

	if err := comps.store.Reset(); err != nil {
		return fmt.Errorf("failed to reset store: %w", err)
	}
	if err := comps.registry.Clear(); err != nil {
		return fmt.Errorf("failed to clear registry: %w", err)
	}
	if err := os.Remove(config.ArtifactPath(comps.uploadDir)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove artifact: %w", err)
	}

	fmt.Println("Index reset.")
	return nil
}
