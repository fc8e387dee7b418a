package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question about the ingested content",
	Long: `Answer a question from the indexed documents. The answer is grounded
in the most recent ingestion batch when its artifact is present,
otherwise in a nearest-neighbor search of the index.

Example:
  docbot ask "how do I reset my password?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	comps, err := buildComponents(GetConfig())
	if err != nil {
		return err
	}
	defer comps.close()

	question := strings.Join(args, " ")

	answer, err := comps.query.Answer(context.Background(), question)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	fmt.Println(answer)
	return nil
}
