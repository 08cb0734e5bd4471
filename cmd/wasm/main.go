//go:build js && wasm

package main

import (
	"encoding/json"
	"fmt"
	"syscall/js"

	"monu/internal/adapter/highlight"
	"monu/internal/domain"
)

func main() {
	c := make(chan struct{})

	js.Global().Set("monuHighlight", js.FuncOf(highlightTexts))
	js.Global().Set("monuMarkup", js.FuncOf(markupTexts))

	<-c
}

// highlightTexts returns {"highlight": [...], "stats": {...}} as a JSON string.
func highlightTexts(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return makeError("usage: monuHighlight(original, corrected)")
	}

	seq, err := build(args[0], args[1])
	if err != nil {
		return makeError(err.Error())
	}

	return makeResult(map[string]interface{}{
		"highlight": seq,
		"stats":     highlight.Stats(seq),
	})
}

func markupTexts(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return makeError("usage: monuMarkup(original, corrected)")
	}

	seq, err := build(args[0], args[1])
	if err != nil {
		return makeError(err.Error())
	}

	return makeResult(map[string]interface{}{
		"markup": highlight.Markup(seq),
	})
}

// build rejects anything but two JS strings; String() on null or a number
// would otherwise yield text such as "<null>".
func build(original, corrected js.Value) (domain.AnnotatedSequence, error) {
	if original.Type() != js.TypeString {
		return nil, fmt.Errorf("%w: original must be a string, got %s", domain.ErrInvalidInput, original.Type())
	}
	if corrected.Type() != js.TypeString {
		return nil, fmt.Errorf("%w: corrected must be a string, got %s", domain.ErrInvalidInput, corrected.Type())
	}
	return highlight.BuildChecked(original.String(), corrected.String())
}

func makeError(msg string) interface{} {
	result, _ := json.Marshal(map[string]interface{}{
		"error": msg,
	})
	return string(result)
}

func makeResult(data map[string]interface{}) interface{} {
	result, _ := json.Marshal(data)
	return string(result)
}
