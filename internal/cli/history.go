package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"monu/internal/port"
)

var (
	historyLimit int
	historyClear bool
	historyPrune bool
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List or clear corrections stored in the bolt cache",
	Long: `List corrections stored in the persistent cache (cache.backend: bolt).

Examples:
  monu history --limit 5
  monu history --prune   # drop entries older than cache.ttl_minutes
  monu history --clear`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum entries to list (0 for all)")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "delete all stored corrections")
	historyCmd.Flags().BoolVar(&historyPrune, "prune", false, "delete expired corrections")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "print entries as JSON lines")
}

// pruner is implemented by histories that can drop expired entries.
type pruner interface {
	Prune() (int, error)
}

func runHistory(cmd *cobra.Command, args []string) error {
	h, cleanup, err := openHistory(GetConfig(), GetRootDir())
	if err != nil {
		return err
	}
	defer cleanup()

	return printHistory(cmd.OutOrStdout(), h)
}

func printHistory(out io.Writer, h port.CorrectionHistory) error {
	if historyClear {
		n, err := h.Count()
		if err != nil {
			return err
		}
		if err := h.Clear(); err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		fmt.Fprintf(out, "Cleared %d stored corrections.\n", n)
		return nil
	}
	if historyPrune {
		p, ok := h.(pruner)
		if !ok {
			return fmt.Errorf("this history backend does not support pruning")
		}
		n, err := p.Prune()
		if err != nil {
			return fmt.Errorf("failed to prune history: %w", err)
		}
		fmt.Fprintf(out, "Pruned %d expired corrections.\n", n)
		return nil
	}

	recs, err := h.List(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	if historyJSON {
		enc := json.NewEncoder(out)
		for _, rec := range recs {
			if err := enc.Encode(rec); err != nil {
				return err
			}
		}
		return nil
	}

	if len(recs) == 0 {
		fmt.Fprintln(out, "No stored corrections.")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tMODEL\tINPUT\tCORRECTED")
	for _, rec := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			rec.CreatedAt.Local().Format("2006-01-02 15:04"),
			rec.Model,
			truncate(rec.Result.UserInput, 40),
			truncate(rec.Result.CorrectedText, 40))
	}
	return tw.Flush()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
