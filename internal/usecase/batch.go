package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"monu/internal/adapter/fs"
	"monu/internal/domain"
	"monu/internal/logging"
	"monu/internal/port"
)

// Paragraph is a blank-line separated block of a checked file.
type Paragraph struct {
	File  string
	Index int
	Line  int
	Text  string
}

// BatchItem is the outcome of checking one paragraph.
type BatchItem struct {
	File      string              `json:"file"`
	Paragraph int                 `json:"paragraph"`
	Line      int                 `json:"line"`
	Result    *domain.CheckResult `json:"result,omitempty"`
	Error     string              `json:"error,omitempty"`
	ErrorKind domain.ErrorKind    `json:"error_kind,omitempty"`
}

type BatchSummary struct {
	Files      int `json:"files"`
	Paragraphs int `json:"paragraphs"`
	Changed    int `json:"changed"`
	Cached     int `json:"cached"`
	Failed     int `json:"failed"`
}

// ProgressFunc is called after each paragraph completes.
type ProgressFunc func(done, total int, current string)

// BatchUseCase checks every paragraph of a set of files on a worker pool.
type BatchUseCase struct {
	checker *CheckUseCase
	walker  port.FileWalker
	workers int
}

func NewBatchUseCase(checker *CheckUseCase, walker port.FileWalker, workers int) *BatchUseCase {
	if workers < 1 {
		workers = 1
	}
	return &BatchUseCase{
		checker: checker,
		walker:  walker,
		workers: workers,
	}
}

// RunDir walks root for matching files and checks them.
func (u *BatchUseCase) RunDir(ctx context.Context, root string, progress ProgressFunc) ([]BatchItem, BatchSummary, error) {
	files, err := u.walker.Walk(root)
	if err != nil {
		return nil, BatchSummary{}, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	logging.Debug("batch files found", "root", root, "files", len(files))
	return u.Run(ctx, files, progress)
}

// SplitParagraphs splits text on blank lines. Line numbers are 1-based.
func SplitParagraphs(file, text string) []Paragraph {
	var (
		paras []Paragraph
		buf   []string
		start int
	)
	flush := func() {
		if len(buf) == 0 {
			return
		}
		paras = append(paras, Paragraph{
			File:  file,
			Index: len(paras),
			Line:  start,
			Text:  strings.Join(buf, "\n"),
		})
		buf = buf[:0]
	}

	for i, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if len(buf) == 0 {
			start = i + 1
		}
		buf = append(buf, line)
	}
	flush()
	return paras
}

// Run checks all files. Items keep file and paragraph order. Per-paragraph
// failures are recorded on the item; only cancellation aborts the run, and
// paragraphs it left unchecked carry the cancellation error.
func (u *BatchUseCase) Run(ctx context.Context, files []port.FileInfo, progress ProgressFunc) ([]BatchItem, BatchSummary, error) {
	summary := BatchSummary{Files: len(files)}

	var (
		items []BatchItem
		jobs  []Paragraph
		slots []int
	)
	for _, f := range files {
		text, err := fs.ReadText(f.Path)
		if err != nil {
			logging.Warn("failed to read file", "path", f.Path, "error", err)
			items = append(items, failedItem(BatchItem{File: f.Path}, err))
			summary.Failed++
			continue
		}
		for _, p := range SplitParagraphs(f.Path, text) {
			slots = append(slots, len(items))
			items = append(items, BatchItem{File: p.File, Paragraph: p.Index, Line: p.Line})
			jobs = append(jobs, p)
		}
	}
	summary.Paragraphs = len(jobs)

	type job struct {
		idx  int
		para Paragraph
	}
	queue := make(chan job)
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		done int
	)

	for w := 0; w < u.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range queue {
				res, err := u.checker.Check(ctx, j.para.Text)

				mu.Lock()
				item := &items[slots[j.idx]]
				if err != nil {
					*item = failedItem(*item, err)
					summary.Failed++
				} else {
					item.Result = res
					if res.Stats.Changed() {
						summary.Changed++
					}
					if res.Cached {
						summary.Cached++
					}
				}
				done++
				if progress != nil {
					progress(done, len(jobs), j.para.File)
				}
				mu.Unlock()
			}
		}()
	}

dispatch:
	for i, p := range jobs {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break dispatch
		case queue <- job{idx: i, para: p}:
		}
	}
	close(queue)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		for _, slot := range slots {
			if items[slot].Result == nil && items[slot].Error == "" {
				items[slot] = failedItem(items[slot], err)
				summary.Failed++
			}
		}
		return items, summary, err
	}
	return items, summary, nil
}

func failedItem(item BatchItem, err error) BatchItem {
	item.Error = err.Error()
	item.ErrorKind = domain.Classify(err)
	return item
}
