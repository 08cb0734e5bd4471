package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"monu/internal/adapter/highlight"
	"monu/internal/domain"
	"monu/internal/usecase"
)

var (
	checkJSON   bool
	checkMarkup bool
)

var checkCmd = &cobra.Command{
	Use:   "check [text...]",
	Short: "Check text for grammar errors",
	Long: `Send text to the configured oracle and print the highlighted correction.
Reads stdin when no text is given.

Examples:
  monu check "He go to school yesterday"
  echo "alot of people" | monu check --json`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "print the full result as JSON")
	checkCmd.Flags().BoolVar(&checkMarkup, "markup", false, "print [r%...%r]/[g%...%g] markup instead of colors")
}

func runCheck(cmd *cobra.Command, args []string) error {
	text, err := inputText(cmd, args)
	if err != nil {
		return err
	}

	cfg := GetConfig()
	o, _, cleanup, err := buildOracle(cfg, GetRootDir())
	if err != nil {
		return fmt.Errorf("failed to create oracle: %w", err)
	}
	defer cleanup()

	res, err := usecase.NewCheckUseCase(o, cfg.Server.MaxTextChars).Check(cmd.Context(), text)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if checkJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	printResult(out, res, checkMarkup)
	return nil
}

func printResult(out io.Writer, res *domain.CheckResult, markup bool) {
	if !res.Stats.Changed() {
		fmt.Fprintln(out, "No corrections.")
		return
	}
	if markup {
		fmt.Fprintln(out, res.Markup)
	} else {
		fmt.Fprintln(out, highlight.ANSI(res.Highlight))
	}
	fmt.Fprintf(out, "\nCorrected: %s\n", res.CorrectedText)
	if res.Explanation != "" {
		fmt.Fprintf(out, "Why:       %s\n", res.Explanation)
	}
}

func inputText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok {
		if st, err := f.Stat(); err == nil && st.Mode()&os.ModeCharDevice != 0 {
			return "", fmt.Errorf("no text given: pass it as arguments or on stdin")
		}
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}
