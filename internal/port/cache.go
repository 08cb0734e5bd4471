package port

import "monu/internal/domain"

// CorrectionCache stores successful corrections by key.
type CorrectionCache interface {
	Get(key string) (domain.Correction, bool)

	Put(key string, rec domain.CorrectionRecord) error
}

// CorrectionHistory lists and clears stored corrections.
type CorrectionHistory interface {
	List(limit int) ([]domain.CorrectionRecord, error)

	Count() (int, error)

	Clear() error
}
