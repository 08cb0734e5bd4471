package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"monu/internal/adapter/highlight"
)

var (
	diffJSON   bool
	diffMarkup bool
)

var diffCmd = &cobra.Command{
	Use:   "diff ORIGINAL CORRECTED",
	Short: "Highlight the word-level difference between two texts",
	Long: `Highlight the difference between two texts without calling the oracle.

Examples:
  monu diff "alot of time" "a lot of time"
  monu diff --markup "He go" "He goes"`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

func init() {
	rootCmd.AddCommand(diffCmd)
	diffCmd.Flags().BoolVar(&diffJSON, "json", false, "print annotated units as JSON")
	diffCmd.Flags().BoolVar(&diffMarkup, "markup", false, "print [r%...%r]/[g%...%g] markup instead of colors")
}

func runDiff(cmd *cobra.Command, args []string) error {
	seq, err := highlight.BuildChecked(args[0], args[1])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case diffJSON:
		return json.NewEncoder(out).Encode(seq)
	case diffMarkup:
		fmt.Fprintln(out, highlight.Markup(seq))
	default:
		fmt.Fprintln(out, highlight.ANSI(seq))
	}
	return nil
}
