package port

import (
	"context"

	"monu/internal/domain"
)

// Oracle corrects the grammar of free text.
type Oracle interface {
	// Correct returns the oracle's correction of text. Failures wrap
	// domain.ErrOracleUnavailable or domain.ErrOracleMalformedOutput.
	Correct(ctx context.Context, text string) (domain.Correction, error)

	// Provider returns the provider name, e.g. "ollama".
	Provider() string

	// ModelName returns the name of the model.
	ModelName() string
}
