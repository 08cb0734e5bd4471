package domain

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrOracleUnavailable     = errors.New("correction service unavailable")
	ErrOracleMalformedOutput = errors.New("correction service returned malformed output")
)

// ErrorKind is a stable label for a failure class.
type ErrorKind string

const (
	KindInvalidInput          ErrorKind = "invalid_input"
	KindOracleUnavailable     ErrorKind = "oracle_unavailable"
	KindOracleMalformedOutput ErrorKind = "oracle_malformed_output"
	KindInternal              ErrorKind = "internal"
)

// Classify maps an error chain onto its failure class.
func Classify(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrOracleUnavailable):
		return KindOracleUnavailable
	case errors.Is(err, ErrOracleMalformedOutput):
		return KindOracleMalformedOutput
	default:
		return KindInternal
	}
}

// Sentinel returns the sentinel error for a kind, or nil for KindInternal.
func (k ErrorKind) Sentinel() error {
	switch k {
	case KindInvalidInput:
		return ErrInvalidInput
	case KindOracleUnavailable:
		return ErrOracleUnavailable
	case KindOracleMalformedOutput:
		return ErrOracleMalformedOutput
	default:
		return nil
	}
}
