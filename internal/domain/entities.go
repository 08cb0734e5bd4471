package domain

import (
	"fmt"
	"time"
)

// Correction is what the oracle returns for one piece of user text.
type Correction struct {
	UserInput     string `json:"user_input"`
	CorrectedText string `json:"corrected_text"`
	Explanation   string `json:"explanation"`
}

// UnitKind classifies an annotated unit.
type UnitKind int

const (
	UnitPlain UnitKind = iota
	UnitRemoved
	UnitAdded
	UnitReplaced
)

var unitKindNames = [...]string{
	UnitPlain:    "plain",
	UnitRemoved:  "removed",
	UnitAdded:    "added",
	UnitReplaced: "replaced",
}

func (k UnitKind) String() string {
	if k < 0 || int(k) >= len(unitKindNames) {
		return fmt.Sprintf("UnitKind(%d)", int(k))
	}
	return unitKindNames[k]
}

// MarshalText encodes the kind as its lowercase name.
func (k UnitKind) MarshalText() ([]byte, error) {
	if k < 0 || int(k) >= len(unitKindNames) {
		return nil, fmt.Errorf("unknown unit kind %d", int(k))
	}
	return []byte(unitKindNames[k]), nil
}

// UnmarshalText decodes a lowercase kind name.
func (k *UnitKind) UnmarshalText(text []byte) error {
	for i, name := range unitKindNames {
		if name == string(text) {
			*k = UnitKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown unit kind %q", text)
}

// Unit is one render-ready element of a highlight.
// Plain units carry Text, Removed units carry Removed, Added units carry
// Added and Replaced units carry both Removed and Added.
type Unit struct {
	Kind    UnitKind `json:"kind"`
	Text    string   `json:"text,omitempty"`
	Removed string   `json:"removed,omitempty"`
	Added   string   `json:"added,omitempty"`
}

func Plain(w string) Unit       { return Unit{Kind: UnitPlain, Text: w} }
func Removed(w string) Unit     { return Unit{Kind: UnitRemoved, Removed: w} }
func Added(v string) Unit       { return Unit{Kind: UnitAdded, Added: v} }
func Replaced(w, v string) Unit { return Unit{Kind: UnitReplaced, Removed: w, Added: v} }

// AnnotatedSequence is the ordered output of the highlight builder.
type AnnotatedSequence []Unit

// HighlightStats counts units per kind.
type HighlightStats struct {
	Plain    int `json:"plain"`
	Removed  int `json:"removed"`
	Added    int `json:"added"`
	Replaced int `json:"replaced"`
}

// Changed reports whether any unit differs between the two texts.
func (s HighlightStats) Changed() bool {
	return s.Removed+s.Added+s.Replaced > 0
}

// CheckResult is the full outcome of checking one text.
type CheckResult struct {
	Correction
	Highlight AnnotatedSequence `json:"highlight"`
	Markup    string            `json:"where_in_user_input_highlight"`
	Stats     HighlightStats    `json:"stats"`
	Cached    bool              `json:"cached,omitempty"`
}

// CorrectionRecord is a stored correction with bookkeeping.
type CorrectionRecord struct {
	Key       string     `json:"key"`
	Provider  string     `json:"provider"`
	Model     string     `json:"model"`
	CreatedAt time.Time  `json:"created_at"`
	Result    Correction `json:"result"`
}
