package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"monu/internal/adapter/highlight"
	"monu/internal/domain"
	"monu/internal/logging"
	"monu/internal/metrics"
	"monu/internal/port"
)

// trackedOracle is implemented by oracles that can report cache hits.
type trackedOracle interface {
	CorrectTracked(ctx context.Context, text string) (domain.Correction, bool, error)
}

// CheckUseCase runs one text through the oracle and highlights the result.
type CheckUseCase struct {
	oracle       port.Oracle
	maxTextChars int // 0 = unlimited
}

// NewCheckUseCase creates a new check use case.
func NewCheckUseCase(oracle port.Oracle, maxTextChars int) *CheckUseCase {
	return &CheckUseCase{
		oracle:       oracle,
		maxTextChars: maxTextChars,
	}
}

// Check corrects text and annotates the difference between the oracle's
// echo of the input and its corrected text.
func (u *CheckUseCase) Check(ctx context.Context, text string) (*domain.CheckResult, error) {
	res, err := u.check(ctx, text)
	metrics.ObserveCheck(err)
	return res, err
}

// Oracle returns the oracle checks are sent to.
func (u *CheckUseCase) Oracle() port.Oracle {
	return u.oracle
}

func (u *CheckUseCase) check(ctx context.Context, text string) (*domain.CheckResult, error) {
	if err := u.validate(text); err != nil {
		return nil, err
	}

	start := time.Now()
	var (
		c      domain.Correction
		cached bool
		err    error
	)
	if t, ok := u.oracle.(trackedOracle); ok {
		c, cached, err = t.CorrectTracked(ctx, text)
	} else {
		c, err = u.oracle.Correct(ctx, text)
	}
	if err != nil {
		return nil, fmt.Errorf("grammar check failed: %w", err)
	}

	seq, err := highlight.BuildChecked(c.UserInput, c.CorrectedText)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrOracleMalformedOutput, err)
	}
	stats := highlight.Stats(seq)
	metrics.ObserveHighlight(stats)

	log := logging.FromContext(ctx)
	if strings.Join(highlight.Tokenize(c.UserInput), " ") != strings.Join(highlight.Tokenize(text), " ") {
		log.Warn("oracle did not echo the input verbatim", "submitted_words", highlight.CountWords(text), "echoed_words", highlight.CountWords(c.UserInput))
	}
	log.Info("grammar check",
		"provider", u.oracle.Provider(),
		"model", u.oracle.ModelName(),
		"words", highlight.CountWords(text),
		"changed", stats.Changed(),
		"cached", cached,
		"duration_ms", time.Since(start).Milliseconds())

	return &domain.CheckResult{
		Correction: c,
		Highlight:  seq,
		Markup:     highlight.Markup(seq),
		Stats:      stats,
		Cached:     cached,
	}, nil
}

func (u *CheckUseCase) validate(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: text cannot be empty", domain.ErrInvalidInput)
	}
	if !utf8.ValidString(text) {
		return fmt.Errorf("%w: text is not valid UTF-8", domain.ErrInvalidInput)
	}
	if u.maxTextChars > 0 {
		if n := utf8.RuneCountInString(text); n > u.maxTextChars {
			return fmt.Errorf("%w: text has %d characters, limit is %d", domain.ErrInvalidInput, n, u.maxTextChars)
		}
	}
	return nil
}
