package highlight

import (
	"strings"
	"unicode"
)

// Tokenize splits text into whitespace-delimited words.
// Runs of whitespace collapse and leading/trailing whitespace is ignored.
// Tokens are kept verbatim: no case folding, no punctuation stripping.
func Tokenize(text string) []string {
	return strings.FieldsFunc(text, unicode.IsSpace)
}

// CountWords returns the number of tokens in text without allocating them.
func CountWords(text string) int {
	n := 0
	inWord := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			inWord = false
			continue
		}
		if !inWord {
			n++
			inWord = true
		}
	}
	return n
}
