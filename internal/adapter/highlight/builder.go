// Package highlight compares an original text with its corrected form word by
// word and annotates which words were removed, added or replaced.
package highlight

import (
	"fmt"
	"unicode/utf8"

	"monu/internal/domain"
)

// Build tokenizes both texts, aligns them and annotates the alignment.
// It is total over all string pairs.
func Build(original, corrected string) domain.AnnotatedSequence {
	return Annotate(Align(Tokenize(original), Tokenize(corrected)))
}

// BuildChecked is Build with input validation: both texts must be valid UTF-8.
func BuildChecked(original, corrected string) (domain.AnnotatedSequence, error) {
	if !utf8.ValidString(original) {
		return nil, fmt.Errorf("%w: original text is not valid UTF-8", domain.ErrInvalidInput)
	}
	if !utf8.ValidString(corrected) {
		return nil, fmt.Errorf("%w: corrected text is not valid UTF-8", domain.ErrInvalidInput)
	}
	return Build(original, corrected), nil
}

// Annotate collapses an edit script into annotated units in a single forward
// pass with one op of lookahead. A Delete directly followed by an Insert
// becomes one Replaced unit; longer runs pair up only at that boundary.
func Annotate(ops []Op) domain.AnnotatedSequence {
	seq := make(domain.AnnotatedSequence, 0, len(ops))
	for i := 0; i < len(ops); i++ {
		op := ops[i]
		switch op.Kind {
		case OpDelete:
			if i+1 < len(ops) && ops[i+1].Kind == OpInsert {
				seq = append(seq, domain.Replaced(op.Token, ops[i+1].Token))
				i++
				continue
			}
			seq = append(seq, domain.Removed(op.Token))
		case OpInsert:
			seq = append(seq, domain.Added(op.Token))
		default:
			seq = append(seq, domain.Plain(op.Token))
		}
	}
	return seq
}
