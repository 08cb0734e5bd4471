package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"monu/config"
	"monu/internal/adapter/cache"
	"monu/internal/domain"
	"monu/internal/usecase"
)

// stubOracle returns fixed corrections keyed by input text.
type stubOracle struct {
	answers map[string]domain.Correction
	errs    map[string]error
}

func (o *stubOracle) Correct(ctx context.Context, text string) (domain.Correction, error) {
	if err, ok := o.errs[text]; ok {
		return domain.Correction{}, err
	}
	if c, ok := o.answers[text]; ok {
		return c, nil
	}
	return domain.Correction{UserInput: text, CorrectedText: text}, nil
}

func (o *stubOracle) Provider() string  { return "stub" }
func (o *stubOracle) ModelName() string { return "stub-1" }

func newTestServer(t *testing.T, mutate func(*config.ServerConfig)) *httptest.Server {
	t.Helper()
	o := &stubOracle{
		answers: map[string]domain.Correction{
			"He go to school yesterday": {
				UserInput:     "He go to school yesterday",
				CorrectedText: "He goes to the school",
				Explanation:   "Verb agreement and article.",
			},
		},
		errs: map[string]error{
			"offline": domain.ErrOracleUnavailable,
			"garbage": domain.ErrOracleMalformedOutput,
		},
	}
	cfg := config.DefaultConfig().Server
	if mutate != nil {
		mutate(&cfg)
	}
	srv := httptest.NewServer(NewServer(usecase.NewCheckUseCase(o, cfg.MaxTextChars), cfg).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, data
}

func TestCheckGrammar(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, body := post(t, srv.URL+"/check-grammar", `{"text":"He go to school yesterday"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}

	var got domain.CheckResult
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatal(err)
	}
	if got.CorrectedText != "He goes to the school" || got.Explanation == "" {
		t.Errorf("unexpected correction %+v", got.Correction)
	}
	want := "He [r%go%r] [g%goes%g] to [g%the%g] school [r%yesterday%r]"
	if got.Markup != want {
		t.Errorf("markup:\n got %q\nwant %q", got.Markup, want)
	}
	kinds := make([]domain.UnitKind, len(got.Highlight))
	for i, u := range got.Highlight {
		kinds[i] = u.Kind
	}
	wantKinds := []domain.UnitKind{domain.UnitPlain, domain.UnitReplaced, domain.UnitPlain, domain.UnitAdded, domain.UnitPlain, domain.UnitRemoved}
	if len(kinds) != len(wantKinds) {
		t.Fatalf("unexpected units %+v", got.Highlight)
	}
	for i := range kinds {
		if kinds[i] != wantKinds[i] {
			t.Errorf("unit %d: got %s want %s", i, kinds[i], wantKinds[i])
		}
	}
}

func TestCheckGrammar_Errors(t *testing.T) {
	srv := newTestServer(t, func(c *config.ServerConfig) {
		c.MaxBodyBytes = 64
	})

	cases := []struct {
		name   string
		body   string
		status int
		kind   domain.ErrorKind
	}{
		{"blank text", `{"text":"   "}`, http.StatusBadRequest, domain.KindInvalidInput},
		{"not json", `text=hello`, http.StatusBadRequest, domain.KindInvalidInput},
		{"too large", `{"text":"` + strings.Repeat("a", 100) + `"}`, http.StatusRequestEntityTooLarge, domain.KindInvalidInput},
		{"oracle down", `{"text":"offline"}`, http.StatusServiceUnavailable, domain.KindOracleUnavailable},
		{"oracle garbage", `{"text":"garbage"}`, http.StatusBadGateway, domain.KindOracleMalformedOutput},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			resp, body := post(t, srv.URL+"/check-grammar", c.body)
			if resp.StatusCode != c.status {
				t.Errorf("expected %d, got %d: %s", c.status, resp.StatusCode, body)
			}
			var e errorResponse
			if err := json.Unmarshal(body, &e); err != nil {
				t.Fatalf("error body is not JSON: %s", body)
			}
			if e.Error.Kind != c.kind || e.Error.Message == "" {
				t.Errorf("unexpected error body %+v", e)
			}
		})
	}
}

func TestCheckGrammar_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, nil)
	resp, err := http.Get(srv.URL + "/check-grammar")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", resp.StatusCode)
	}
}

func TestHighlight(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, body := post(t, srv.URL+"/highlight", `{"original":"alot of time","corrected":"a lot of time"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	var got highlightResponse
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatal(err)
	}
	if got.Markup != "[r%alot%r] [g%a%g] [g%lot%g] of time" {
		t.Errorf("unexpected markup %q", got.Markup)
	}
	if got.Stats.Replaced != 1 || got.Stats.Added != 1 || got.Stats.Plain != 2 {
		t.Errorf("unexpected stats %+v", got.Stats)
	}

	resp, body = post(t, srv.URL+"/highlight", `{"original":"","corrected":""}`)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"highlight":[]`) && !strings.Contains(string(body), `"highlight":null`) {
		t.Errorf("empty inputs should give an empty highlight, got %d: %s", resp.StatusCode, body)
	}
}

func TestHighlight_RejectsMissingOrNullFields(t *testing.T) {
	srv := newTestServer(t, nil)

	bodies := map[string]string{
		"empty object":      `{}`,
		"missing corrected": `{"original":"adheel go market"}`,
		"null corrected":    `{"original":"adheel go market","corrected":null}`,
		"missing original":  `{"corrected":"Adheel goes to the market."}`,
		"null original":     `{"original":null,"corrected":"x"}`,
		"json null":         `null`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			resp, data := post(t, srv.URL+"/highlight", body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", resp.StatusCode, data)
			}
			var e errorResponse
			if err := json.Unmarshal(data, &e); err != nil {
				t.Fatalf("error body is not JSON: %s", data)
			}
			if e.Error.Kind != domain.KindInvalidInput {
				t.Errorf("expected invalid_input, got %+v", e)
			}
			if strings.Contains(string(data), `"highlight"`) {
				t.Errorf("rejected request must not carry a highlight: %s", data)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, nil)
	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var h healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		t.Fatal(err)
	}
	if h.Status != "ok" || h.Provider != "stub" || h.Model != "stub-1" {
		t.Errorf("unexpected health %+v", h)
	}
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode
}

func TestHistory_MemoryCache(t *testing.T) {
	mc := cache.NewMemoryCache(10, time.Hour)
	o := cache.NewCachedOracle(&stubOracle{}, mc)
	cfg := config.DefaultConfig().Server
	srv := httptest.NewServer(NewServer(usecase.NewCheckUseCase(o, cfg.MaxTextChars), cfg).WithHistory(mc).Handler())
	t.Cleanup(srv.Close)

	for _, text := range []string{"one", "two", "three"} {
		if resp, body := post(t, srv.URL+"/check-grammar", `{"text":"`+text+`"}`); resp.StatusCode != http.StatusOK {
			t.Fatalf("check %q: %d %s", text, resp.StatusCode, body)
		}
	}

	var h healthResponse
	getJSON(t, srv.URL+"/health", &h)
	if h.Cached == nil || *h.Cached != 3 {
		t.Errorf("expected 3 cached corrections in health, got %+v", h.Cached)
	}

	var hist historyResponse
	if code := getJSON(t, srv.URL+"/history?limit=2", &hist); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if hist.Count != 3 || len(hist.Entries) != 2 || hist.Entries[0].Result.UserInput != "three" {
		t.Errorf("unexpected history %+v", hist)
	}

	var e errorResponse
	if code := getJSON(t, srv.URL+"/history?limit=-1", &e); code != http.StatusBadRequest || e.Error.Kind != domain.KindInvalidInput {
		t.Errorf("expected 400 invalid_input for a negative limit, got %d %+v", code, e)
	}

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/history", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	var cleared clearResponse
	json.NewDecoder(resp.Body).Decode(&cleared)
	resp.Body.Close()
	if cleared.Cleared != 3 {
		t.Errorf("expected 3 cleared, got %+v", cleared)
	}
	if n, _ := mc.Count(); n != 0 {
		t.Errorf("expected empty cache after clear, got %d", n)
	}
}

func TestHistory_DisabledWithoutCache(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/history")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 without a history, got %d", resp.StatusCode)
	}

	var h healthResponse
	getJSON(t, srv.URL+"/health", &h)
	if h.Cached != nil {
		t.Errorf("expected no cached count, got %d", *h.Cached)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)
	post(t, srv.URL+"/check-grammar", `{"text":"fine"}`)

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `monu_http_requests_total{code="200",route="/check-grammar"}`) {
		t.Errorf("expected request counter in metrics output")
	}

	off := newTestServer(t, func(c *config.ServerConfig) { c.EnableMetric = false })
	resp, err = http.Get(off.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 with metrics disabled, got %d", resp.StatusCode)
	}
}

func TestWebSocket(t *testing.T) {
	srv := newTestServer(t, nil)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	frames := []string{
		`{"id":"1","text":"He go to school yesterday"}`,
		`{"id":"2","text":"offline"}`,
		`not json`,
	}
	for _, f := range frames {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
			t.Fatal(err)
		}
	}

	var first wsResponse
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatal(err)
	}
	if first.Type != "result" || first.ID != "1" || first.Result == nil || first.Result.Stats.Replaced != 1 {
		t.Errorf("unexpected first response %+v", first)
	}

	var second wsResponse
	if err := conn.ReadJSON(&second); err != nil {
		t.Fatal(err)
	}
	if second.Type != "error" || second.ID != "2" || second.Error == nil || second.Error.Kind != domain.KindOracleUnavailable {
		t.Errorf("unexpected second response %+v", second)
	}

	var third wsResponse
	if err := conn.ReadJSON(&third); err != nil {
		t.Fatal(err)
	}
	if third.Type != "error" || third.Error == nil || third.Error.Kind != domain.KindInvalidInput {
		t.Errorf("unexpected third response %+v", third)
	}
}

func TestWebSocket_Disabled(t *testing.T) {
	srv := newTestServer(t, func(c *config.ServerConfig) { c.EnableWS = false })
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	if _, _, err := websocket.DefaultDialer.Dial(wsURL, nil); err == nil {
		t.Error("expected dial to fail with websocket disabled")
	}
}
