package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	comps, err := buildComponents(GetConfig())
	if err != nil {
		return err
	}
	defer comps.close()

	stats := comps.store.Stats()
	fmt.Printf("Index statistics:\n")
	fmt.Printf("  Vectors:   %d\n", stats.TotalVectors)
	fmt.Printf("  Passages:  %d\n", stats.TotalPassages)
	fmt.Printf("  Model:     %s\n", stats.Model)
	fmt.Printf("  Directory: %s\n", stats.PersistDir)

	records, err := comps.registry.ListSources()
	if err != nil {
		return fmt.Errorf("failed to list sources: %w", err)
	}
	if len(records) > 0 {
		fmt.Printf("\nSources:\n")
		for _, r := range records {
			fmt.Printf("  %-30s %5d chunks  %8d chars  %s\n",
				r.Source, r.Chunks, r.Chars, r.IngestedAt.Format("2006-01-02 15:04"))
		}
	}
	return nil
}
