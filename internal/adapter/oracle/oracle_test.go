package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"monu/config"
	"monu/internal/domain"
)

const correctionJSON = `{"user_input":"He go to school","corrected_text":"He goes to school","explanation":"Subject-verb agreement."}`

func TestParseCorrection(t *testing.T) {
	raw := "Sure! Here you go:\n```json\n" + correctionJSON + "\n```"
	c, err := ParseCorrection(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.UserInput != "He go to school" || c.CorrectedText != "He goes to school" {
		t.Errorf("unexpected correction %+v", c)
	}
	if c.Explanation != "Subject-verb agreement." {
		t.Errorf("unexpected explanation %q", c.Explanation)
	}
}

func TestParseCorrection_Malformed(t *testing.T) {
	cases := map[string]string{
		"no json":            "I could not process that.",
		"invalid json":       `{"user_input": "x", "corrected_text": }`,
		"missing corrected":  `{"user_input":"x","explanation":"y"}`,
		"missing user input": `{"corrected_text":"x"}`,
		"non-string field":   `{"user_input":"x","corrected_text":42}`,
		"null field":         `{"user_input":null,"corrected_text":"x"}`,
	}
	for name, raw := range cases {
		_, err := ParseCorrection(raw)
		if !errors.Is(err, domain.ErrOracleMalformedOutput) {
			t.Errorf("%s: expected malformed output error, got %v", name, err)
		}
	}
}

func TestPreview_KeepsRunesWhole(t *testing.T) {
	s := strings.Repeat("a", 199) + "é and more"
	got := preview(s)
	if got != strings.Repeat("a", 199)+"..." {
		t.Errorf("unexpected preview %q", got)
	}
	if short := preview("héllo"); short != "héllo" {
		t.Errorf("short input should be unchanged, got %q", short)
	}

	_, err := ParseCorrection(strings.Repeat("मैं बाज़ार जाता ", 40))
	if err == nil || !utf8.ValidString(err.Error()) {
		t.Errorf("expected a valid UTF-8 error message, got %q", err)
	}
}

func TestParseCorrection_OptionalExplanation(t *testing.T) {
	c, err := ParseCorrection(`{"user_input":"","corrected_text":""}`)
	if err != nil {
		t.Fatalf("empty strings are valid: %v", err)
	}
	if c.Explanation != "" {
		t.Errorf("expected empty explanation, got %q", c.Explanation)
	}

	c, err = ParseCorrection(`{"user_input":"a","corrected_text":"b","explanation":["Tense.","Article."]}`)
	if err != nil {
		t.Fatal(err)
	}
	if c.Explanation != "Tense. Article." {
		t.Errorf("expected joined explanation, got %q", c.Explanation)
	}
}

func TestUserPrompt(t *testing.T) {
	p, err := UserPrompt("adheel go market")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(p, "adheel go market") {
		t.Errorf("prompt missing user text: %q", p)
	}
	full, err := FullPrompt("adheel go market")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(full, SystemPrompt()) || !strings.Contains(full, "corrected_text") {
		t.Errorf("full prompt should start with instructions")
	}
}

func TestOllamaOracle_Correct(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		json.NewEncoder(w).Encode(generateResponse{Response: "  " + correctionJSON + "\n"})
	}))
	defer srv.Close()

	o := NewOllamaOracle(srv.URL+"/", "gemma3:4b", 5*time.Second, 0, true)
	c, err := o.Correct(context.Background(), "He go to school")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.CorrectedText != "He goes to school" {
		t.Errorf("unexpected correction %+v", c)
	}
	if got.Model != "gemma3:4b" || got.Stream || got.Format != "json" {
		t.Errorf("unexpected request %+v", got)
	}
	if !strings.Contains(got.Prompt, "He go to school") {
		t.Error("prompt should carry the user text")
	}
	if o.Provider() != "ollama" || o.ModelName() != "gemma3:4b" {
		t.Error("unexpected provider/model")
	}
}

func TestOllamaOracle_Failures(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
		want    error
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}, domain.ErrOracleUnavailable},
		{"model missing", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"model 'x' not found"}`))
		}, domain.ErrOracleUnavailable},
		{"non-json envelope", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>proxy</html>"))
		}, domain.ErrOracleMalformedOutput},
		{"prose answer", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(generateResponse{Response: "The sentence is fine."})
		}, domain.ErrOracleMalformedOutput},
		{"slow", func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(300 * time.Millisecond)
			json.NewEncoder(w).Encode(generateResponse{Response: correctionJSON})
		}, domain.ErrOracleUnavailable},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			srv := httptest.NewServer(c.handler)
			defer srv.Close()

			o := NewOllamaOracle(srv.URL, "m", 100*time.Millisecond, 0, false)
			_, err := o.Correct(context.Background(), "text")
			if !errors.Is(err, c.want) {
				t.Errorf("expected %v, got %v", c.want, err)
			}
		})
	}
}

func TestOllamaOracle_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	o := NewOllamaOracle(url, "m", time.Second, 0, false)
	_, err := o.Correct(context.Background(), "text")
	if !errors.Is(err, domain.ErrOracleUnavailable) {
		t.Errorf("expected unavailable, got %v", err)
	}
}

func TestChatOracle_Correct(t *testing.T) {
	var got chatRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		auth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":` + mustQuote(correctionJSON) + `}}]}`))
	}))
	defer srv.Close()

	o := NewChatOracle(srv.URL+"/v1", "secret", "llama3", 5*time.Second, 0.2, true)
	c, err := o.Correct(context.Background(), "He go to school")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.CorrectedText != "He goes to school" {
		t.Errorf("unexpected correction %+v", c)
	}
	if auth != "Bearer secret" {
		t.Errorf("expected bearer auth, got %q", auth)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Role != "user" {
		t.Errorf("unexpected messages %+v", got.Messages)
	}
	if got.ResponseFormat == nil || got.ResponseFormat.Type != "json_object" {
		t.Error("expected json_object response format")
	}
}

func TestChatOracle_Failures(t *testing.T) {
	cases := map[string]struct {
		body string
		want error
	}{
		"api error":  {`{"error":{"message":"rate limited"}}`, domain.ErrOracleUnavailable},
		"no choices": {`{"choices":[]}`, domain.ErrOracleMalformedOutput},
		"garbage":    {`not json`, domain.ErrOracleMalformedOutput},
	}
	for name, c := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(c.body))
		}))
		o := NewChatOracle(srv.URL, "", "m", time.Second, 0, false)
		_, err := o.Correct(context.Background(), "text")
		if !errors.Is(err, c.want) {
			t.Errorf("%s: expected %v, got %v", name, c.want, err)
		}
		srv.Close()
	}
}

func TestNew(t *testing.T) {
	cfg := config.DefaultConfig().Oracle
	o, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if o.Provider() != "ollama" {
		t.Errorf("expected ollama, got %s", o.Provider())
	}

	cfg.Provider = "openai"
	cfg.APIKeyEnv = "MONU_TEST_KEY"
	t.Setenv("MONU_TEST_KEY", "k")
	o, err = New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if co, ok := o.(*ChatOracle); !ok || co.apiKey != "k" {
		t.Errorf("expected chat oracle with key, got %#v", o)
	}

	cfg.Provider = "unknown"
	if _, err := New(cfg); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func mustQuote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
