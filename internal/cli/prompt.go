package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"monu/internal/adapter/oracle"
)

var promptSystem bool

var promptCmd = &cobra.Command{
	Use:   "prompt [text...]",
	Short: "Print the prompt sent to the oracle",
	Long: `Print the rendered oracle prompt for a text, for manual use with any model.

Examples:
  monu prompt "He go to school"
  monu prompt --system`,
	RunE: runPrompt,
}

func init() {
	rootCmd.AddCommand(promptCmd)
	promptCmd.Flags().BoolVar(&promptSystem, "system", false, "print only the system instructions")
}

func runPrompt(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if promptSystem {
		fmt.Fprintln(out, oracle.SystemPrompt())
		return nil
	}

	text, err := inputText(cmd, args)
	if err != nil {
		return err
	}
	p, err := oracle.FullPrompt(text)
	if err != nil {
		return fmt.Errorf("failed to render prompt: %w", err)
	}
	fmt.Fprintln(out, p)
	return nil
}
