package oracle

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed templates/*.txt
var promptTemplates embed.FS

var (
	systemPrompt string
	userTemplate *template.Template
)

func init() {
	data, err := promptTemplates.ReadFile("templates/system.txt")
	if err != nil {
		panic(fmt.Sprintf("oracle: system prompt missing: %v", err))
	}
	systemPrompt = strings.TrimSpace(string(data))

	userTemplate = template.Must(template.ParseFS(promptTemplates, "templates/user.txt"))
}

// PromptData is the data available to the user prompt template.
type PromptData struct {
	Text string
}

// SystemPrompt returns the grammar instructions sent ahead of the user text.
func SystemPrompt() string {
	return systemPrompt
}

// UserPrompt renders the user part of the prompt for text.
func UserPrompt(text string) (string, error) {
	var buf bytes.Buffer
	if err := userTemplate.Execute(&buf, PromptData{Text: text}); err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return buf.String(), nil
}

// FullPrompt joins system and user prompts for single-prompt completion APIs.
func FullPrompt(text string) (string, error) {
	user, err := UserPrompt(text)
	if err != nil {
		return "", err
	}
	return systemPrompt + "\n\n" + user, nil
}
