package highlight

import (
	"unicode"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// OpKind is the kind of a single edit operation.
type OpKind int8

const (
	OpEqual OpKind = iota
	OpDelete
	OpInsert
)

func (k OpKind) String() string {
	switch k {
	case OpEqual:
		return "equal"
	case OpDelete:
		return "delete"
	case OpInsert:
		return "insert"
	default:
		return "unknown"
	}
}

// Op is one word-level edit operation.
type Op struct {
	Kind  OpKind
	Token string
}

// Surrogate code points do not survive a rune -> string -> rune round trip,
// so the symbol alphabet skips them.
const (
	surrogateFirst = 0xD800
	surrogateLast  = 0xDFFF
	surrogateSpan  = surrogateLast - surrogateFirst + 1
	maxSymbols     = unicode.MaxRune + 1 - surrogateSpan
)

// symbolTable interns tokens as runes so the character diff can run at word
// granularity.
type symbolTable struct {
	ids    map[string]rune
	tokens []string
}

func newSymbolTable(sizeHint int) *symbolTable {
	return &symbolTable{
		ids:    make(map[string]rune, sizeHint),
		tokens: make([]string, 0, sizeHint),
	}
}

// encode maps tokens to symbols in order of first appearance. It reports
// false once the alphabet is exhausted.
func (t *symbolTable) encode(tokens []string) ([]rune, bool) {
	out := make([]rune, len(tokens))
	for i, tok := range tokens {
		sym, ok := t.ids[tok]
		if !ok {
			if len(t.tokens) >= maxSymbols {
				return nil, false
			}
			sym = symbolFor(len(t.tokens))
			t.ids[tok] = sym
			t.tokens = append(t.tokens, tok)
		}
		out[i] = sym
	}
	return out, true
}

func (t *symbolTable) token(sym rune) string {
	return t.tokens[indexFor(sym)]
}

func symbolFor(index int) rune {
	if index >= surrogateFirst {
		return rune(index + surrogateSpan)
	}
	return rune(index)
}

func indexFor(sym rune) int {
	if sym > surrogateLast {
		return int(sym) - surrogateSpan
	}
	return int(sym)
}

// Align computes a minimal edit script turning original into corrected.
// Replaying Delete and Equal ops yields original; replaying Insert and Equal
// ops yields corrected. Within a changed region deletions precede insertions.
// The result is deterministic for a given input pair.
func Align(original, corrected []string) []Op {
	if len(original) == 0 && len(corrected) == 0 {
		return nil
	}

	table := newSymbolTable(len(original) + len(corrected))
	a, okA := table.encode(original)
	b, okB := table.encode(corrected)
	if !okA || !okB {
		return replaceAll(original, corrected)
	}

	dmp := diffmatchpatch.New()
	// No deadline: the bisection always runs to the optimal path.
	dmp.DiffTimeout = 0
	diffs := dmp.DiffMainRunes(a, b, false)

	ops := make([]Op, 0, len(original)+len(corrected))
	for _, d := range diffs {
		kind := opKindOf(d.Type)
		for _, sym := range d.Text {
			ops = append(ops, Op{Kind: kind, Token: table.token(sym)})
		}
	}
	return ops
}

func opKindOf(t diffmatchpatch.Operation) OpKind {
	switch t {
	case diffmatchpatch.DiffDelete:
		return OpDelete
	case diffmatchpatch.DiffInsert:
		return OpInsert
	default:
		return OpEqual
	}
}

// replaceAll is the fallback script for inputs with more distinct words than
// the symbol alphabet holds.
func replaceAll(original, corrected []string) []Op {
	ops := make([]Op, 0, len(original)+len(corrected))
	for _, tok := range original {
		ops = append(ops, Op{Kind: OpDelete, Token: tok})
	}
	for _, tok := range corrected {
		ops = append(ops, Op{Kind: OpInsert, Token: tok})
	}
	return ops
}
