package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"monu/internal/adapter/cache"
	"monu/internal/domain"
	"monu/internal/usecase"
)

// execute runs the root command with fresh flag state.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cfgFile, rootDir, logLevel = "", "", ""
	checkJSON, checkMarkup = false, false
	diffJSON, diffMarkup = false, false
	historyLimit, historyClear, historyPrune, historyJSON = 20, false, false, false
	batchOut, batchWorkers, batchQuiet = "", 0, false
	promptSystem = false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func fakeOllama(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Prompt string `json:"prompt"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		text := req.Prompt[strings.LastIndex(req.Prompt, "Text:\n")+len("Text:\n"):]
		text = strings.TrimSpace(text)
		corrected := strings.ReplaceAll(text, " go ", " goes ")
		answer, _ := json.Marshal(map[string]string{
			"user_input":     text,
			"corrected_text": corrected,
			"explanation":    "Agreement.",
		})
		json.NewEncoder(w).Encode(map[string]string{"response": string(answer)})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeConfig(t *testing.T, dir, backendURL string) {
	t.Helper()
	cfg := "oracle:\n  base_url: " + backendURL + "\ncache:\n  backend: bolt\n  path: cache.db\n"
	if err := os.WriteFile(filepath.Join(dir, "monu.yaml"), []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDiffCommand(t *testing.T) {
	out, err := execute(t, "", "--dir", t.TempDir(), "diff", "--markup", "alot of time", "a lot of time")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "[r%alot%r] [g%a%g] [g%lot%g] of time" {
		t.Errorf("unexpected output %q", out)
	}

	out, err = execute(t, "", "--dir", t.TempDir(), "diff", "--json", "a b", "a c")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"kind":"replaced"`) {
		t.Errorf("expected JSON units, got %q", out)
	}

	if _, err := execute(t, "", "--dir", t.TempDir(), "diff", "only-one"); err == nil {
		t.Error("expected argument error")
	}
}

func TestPromptCommand(t *testing.T) {
	out, err := execute(t, "", "--dir", t.TempDir(), "prompt", "adheel", "go", "market")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "adheel go market") || !strings.Contains(out, "corrected_text") {
		t.Errorf("unexpected prompt %q", out)
	}
}

func TestCheckAndHistory(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, fakeOllama(t).URL)

	out, err := execute(t, "", "--dir", dir, "check", "--markup", "He go to school")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "He [r%go%r] [g%goes%g] to school") || !strings.Contains(out, "Agreement.") {
		t.Errorf("unexpected check output %q", out)
	}

	out, err = execute(t, "She go home", "--dir", dir, "check", "--json")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"corrected_text": "She goes home"`) {
		t.Errorf("expected JSON result from stdin, got %q", out)
	}

	out, err = execute(t, "", "--dir", dir, "history", "--json")
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(strings.TrimSpace(out), "\n") + 1; n != 2 {
		t.Errorf("expected 2 history entries, got %d: %q", n, out)
	}

	out, err = execute(t, "", "--dir", dir, "history", "--clear")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Cleared 2") {
		t.Errorf("unexpected clear output %q", out)
	}
}

func TestHistory_NeedsPersistentBackend(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "monu.yaml"), []byte("cache:\n  backend: memory\n"), 0644)
	_, err := execute(t, "", "--dir", dir, "history")
	if err == nil || !strings.Contains(err.Error(), "bolt") {
		t.Errorf("expected a bolt backend error, got %v", err)
	}
}

func TestPrintHistory_MemoryCache(t *testing.T) {
	mc := cache.NewMemoryCache(10, 0)
	mc.Put("k1", domain.CorrectionRecord{
		Key:    "k1",
		Model:  "fake-1",
		Result: domain.Correction{UserInput: "he go", CorrectedText: "He goes."},
	})

	historyLimit, historyClear, historyPrune, historyJSON = 20, false, false, false
	var out bytes.Buffer
	if err := printHistory(&out, mc); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "He goes.") || !strings.Contains(out.String(), "fake-1") {
		t.Errorf("unexpected listing %q", out.String())
	}

	historyPrune = true
	defer func() { historyPrune = false }()
	if err := printHistory(&bytes.Buffer{}, mc); err == nil {
		t.Error("expected pruning to be unsupported for the memory cache")
	}
}

func TestCheck_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "monu.yaml"), []byte("oracle:\n  provider: nope\n"), 0644)
	if _, err := execute(t, "", "--dir", dir, "check", "hello"); err == nil {
		t.Error("expected config validation error")
	}
}

func TestBatchCommand(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, fakeOllama(t).URL)
	os.MkdirAll(filepath.Join(dir, "docs"), 0755)
	os.WriteFile(filepath.Join(dir, "docs", "a.txt"), []byte("They go to work every day\n\nAll good here"), 0644)
	os.WriteFile(filepath.Join(dir, "docs", "skip.log"), []byte("He go"), 0644)

	out, err := execute(t, "", "--dir", dir, "batch", "--quiet", "docs/**/*.txt")
	if err != nil {
		t.Fatal(err)
	}

	var items []usecase.BatchItem
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		var item usecase.BatchItem
		if err := json.Unmarshal([]byte(line), &item); err != nil {
			t.Fatalf("bad JSON line %q: %v", line, err)
		}
		items = append(items, item)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 paragraphs, got %d", len(items))
	}
	if items[0].File != "docs/a.txt" || items[0].Result == nil || !items[0].Result.Stats.Changed() {
		t.Errorf("unexpected first item %+v", items[0])
	}
	if items[1].Line != 3 || items[1].Result == nil || items[1].Result.Stats.Changed() {
		t.Errorf("unexpected second item %+v", items[1])
	}
}
