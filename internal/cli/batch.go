package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"monu/internal/adapter/fs"
	"monu/internal/usecase"
)

var (
	batchOut     string
	batchWorkers int
	batchQuiet   bool
)

var batchCmd = &cobra.Command{
	Use:   "batch [patterns...]",
	Short: "Check every paragraph of matching files",
	Long: `Check text files under the root directory paragraph by paragraph.
Patterns are doublestar globs relative to the root (default from config,
**/*.txt and **/*.md). Results are written as JSON lines.

Examples:
  monu batch                         # Check configured files under .
  monu batch "docs/**/*.md" --out results.jsonl
  monu -d ~/notes batch --workers 4`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().StringVarP(&batchOut, "out", "o", "", "write JSON lines to this file instead of stdout")
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 0, "concurrent checks (default from config)")
	batchCmd.Flags().BoolVarP(&batchQuiet, "quiet", "q", false, "hide the progress bar")
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	root := GetRootDir()

	includes := cfg.Batch.Includes
	if len(args) > 0 {
		includes = args
	}
	workers := cfg.Batch.Workers
	if batchWorkers > 0 {
		workers = batchWorkers
	}

	var out io.Writer = cmd.OutOrStdout()
	if batchOut != "" {
		f, err := os.Create(batchOut)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	o, _, cleanup, err := buildOracle(cfg, root)
	if err != nil {
		return fmt.Errorf("failed to create oracle: %w", err)
	}
	defer cleanup()

	walker := fs.NewWalker(includes, cfg.Batch.Excludes)
	uc := usecase.NewBatchUseCase(usecase.NewCheckUseCase(o, cfg.Server.MaxTextChars), walker, workers)

	var progress usecase.ProgressFunc
	if !batchQuiet {
		progress = newProgress(cmd.ErrOrStderr())
	}

	start := time.Now()
	items, summary, runErr := uc.RunDir(cmd.Context(), root, progress)
	if summary.Files == 0 {
		if runErr != nil {
			return runErr
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "No files matched under %s\n", root)
		return nil
	}

	enc := json.NewEncoder(out)
	for _, item := range items {
		if rel, err := filepath.Rel(root, item.File); err == nil {
			item.File = filepath.ToSlash(rel)
		}
		if err := enc.Encode(item); err != nil {
			return fmt.Errorf("failed to write result: %w", err)
		}
	}

	errOut := cmd.ErrOrStderr()
	fmt.Fprintf(errOut, "\nBatch complete in %s:\n", formatDuration(time.Since(start)))
	fmt.Fprintf(errOut, "  Files:      %d\n", summary.Files)
	fmt.Fprintf(errOut, "  Paragraphs: %d\n", summary.Paragraphs)
	fmt.Fprintf(errOut, "  Changed:    %d\n", summary.Changed)
	if summary.Cached > 0 {
		fmt.Fprintf(errOut, "  Cached:     %d\n", summary.Cached)
	}
	if summary.Failed > 0 {
		fmt.Fprintf(errOut, "  Failed:     %d\n", summary.Failed)
	}

	if runErr != nil {
		return fmt.Errorf("batch interrupted: %w", runErr)
	}
	return nil
}

// newProgress returns a progress callback that lazily creates its bar once
// the total is known.
func newProgress(w io.Writer) usecase.ProgressFunc {
	var (
		bar       *progressbar.ProgressBar
		mu        sync.Mutex
		startTime time.Time
	)

	return func(processed, total int, current string) {
		mu.Lock()
		defer mu.Unlock()

		if bar == nil {
			startTime = time.Now()
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(w),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Checking[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Fprintln(w)
				}),
			)
		}

		bar.Set(processed)

		if processed > 0 {
			elapsed := time.Since(startTime)
			rate := float64(processed) / elapsed.Seconds()
			remaining := total - processed
			if rate > 0 {
				eta := time.Duration(float64(remaining)/rate) * time.Second
				bar.Describe(fmt.Sprintf("[cyan]Checking[reset] ETA: %s", formatDuration(eta)))
			}
		}
	}
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "<1s"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", h, m)
}
