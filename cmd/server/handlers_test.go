package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/DanieloDark/philemma"
	"github.com/DanieloDark/philemma/internal/config"
	"github.com/DanieloDark/philemma/internal/logging"
)

func TestMain(m *testing.M) {
	logging.InitLogger(io.Discard, logging.LevelError, logging.FormatText)
	os.Exit(m.Run())
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.RateLimit = 0
	return cfg
}

func newTestServer(t *testing.T, cfg config.Config) http.Handler {
	t.Helper()
	a, err := cfg.NewAnalyzer()
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}
	h, err := newHandler(a, cfg)
	if err != nil {
		t.Fatalf("newHandler: %v", err)
	}
	return h
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return v
}

func TestAnalyzeEndpoint(t *testing.T) {
	h := newTestServer(t, testConfig())

	rec := do(t, h, http.MethodPost, "/api/analyze", `{"text":"Pumunta ang bata. Nagbasa!","dialect":"tagalog"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	resp := decode[analyzeResponse](t, rec)
	if resp.DetectedDialect != philemma.Tagalog || resp.Confidence != 1 {
		t.Errorf("dialect = %s %.2f, want tagalog 1", resp.DetectedDialect, resp.Confidence)
	}
	if got := strings.Join(resp.Tokens, " "); got != "pumunta ang bata nagbasa" {
		t.Errorf("tokens = %q", got)
	}
	if len(resp.Results) != 4 || !resp.Results[0].Irregular || resp.Results[0].Lemma != "punta" {
		t.Errorf("results = %+v", resp.Results)
	}
	want := summaryJSON{TokensProcessed: 4, TotalLemmas: 4, IrregularWords: 1, Lemmas: []string{"punta", "ang", "bata", "basa"}}
	if strings.Join(resp.Summary.Lemmas, ",") != strings.Join(want.Lemmas, ",") ||
		resp.Summary.TokensProcessed != want.TokensProcessed ||
		resp.Summary.TotalLemmas != want.TotalLemmas ||
		resp.Summary.IrregularWords != want.IrregularWords {
		t.Errorf("summary = %+v, want %+v", resp.Summary, want)
	}
	if !strings.Contains(rec.Body.String(), `"affixes":["nag-"]`) {
		t.Errorf("affixes not in hyphen notation: %s", rec.Body)
	}
}

func TestAnalyzeEndpointFallback(t *testing.T) {
	h := newTestServer(t, testConfig())
	for _, body := range []string{`{"text":"kumakain"}`, `{"text":"kumakain","dialect":"klingon"}`} {
		resp := decode[analyzeResponse](t, do(t, h, http.MethodPost, "/api/analyze", body))
		if resp.DetectedDialect != philemma.Tagalog || resp.Confidence != 0 {
			t.Errorf("%s: dialect = %s %.2f, want tagalog 0", body, resp.DetectedDialect, resp.Confidence)
		}
		if resp.Scores != nil {
			t.Errorf("%s: scores = %v without detection", body, resp.Scores)
		}
	}
}

func TestAnalyzeEndpointDetection(t *testing.T) {
	cfg := testConfig()
	cfg.DetectDialect = true
	h := newTestServer(t, cfg)

	resp := decode[analyzeResponse](t, do(t, h, http.MethodPost, "/api/analyze", `{"text":"Mikaon ko sa balay","dialect":"auto"}`))
	if resp.DetectedDialect != philemma.Cebuano {
		t.Errorf("detectedDialect = %s, want cebuano", resp.DetectedDialect)
	}
	if resp.Confidence <= 0 || resp.Confidence > 1 || len(resp.Scores) != 3 {
		t.Errorf("confidence = %.2f scores = %v", resp.Confidence, resp.Scores)
	}
}

func TestAnalyzeEndpointErrors(t *testing.T) {
	h := newTestServer(t, testConfig())
	tests := []struct {
		name, method, body string
		status             int
	}{
		{"empty text", http.MethodPost, `{"text":"   "}`, http.StatusBadRequest},
		{"missing text", http.MethodPost, `{}`, http.StatusBadRequest},
		{"bad json", http.MethodPost, `{"text":`, http.StatusBadRequest},
		{"wrong method", http.MethodGet, "", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, "/api/analyze", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body)
			}
			if e := decode[errorResponse](t, rec); e.Error == "" {
				t.Error("error message is empty")
			}
		})
	}
}

func TestAnalyzeTokenCache(t *testing.T) {
	h := newTestServer(t, testConfig())

	first := do(t, h, http.MethodGet, "/api/analyze/token?token=Nagbasa&dialect=tagalog", "")
	if first.Code != http.StatusOK || first.Header().Get("X-Cache") != "miss" {
		t.Fatalf("first: status %d X-Cache %q", first.Code, first.Header().Get("X-Cache"))
	}
	// auto resolves to tagalog and normalization folds the case
	second := do(t, h, http.MethodGet, "/api/analyze/token?token=nagbasa&dialect=auto", "")
	if second.Header().Get("X-Cache") != "hit" {
		t.Errorf("second: X-Cache %q, want hit", second.Header().Get("X-Cache"))
	}
	if first.Body.String() != second.Body.String() {
		t.Errorf("cached body differs:\n%s\n%s", first.Body, second.Body)
	}
	res := decode[philemma.AnalysisResult](t, second)
	if res.Lemma != "basa" || res.Rule != "affix:nag-" {
		t.Errorf("result = %+v", res)
	}

	if rec := do(t, h, http.MethodGet, "/api/analyze/token", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("missing token: status %d, want 400", rec.Code)
	}
}

func TestAnalyzeTokenWithoutCache(t *testing.T) {
	cfg := testConfig()
	cfg.CacheSize = 0
	h := newTestServer(t, cfg)
	rec := do(t, h, http.MethodGet, "/api/analyze/token?token=pumunta", "")
	if rec.Code != http.StatusOK || rec.Header().Get("X-Cache") != "" {
		t.Errorf("status %d X-Cache %q", rec.Code, rec.Header().Get("X-Cache"))
	}
}

func TestInflectionEndpoint(t *testing.T) {
	h := newTestServer(t, testConfig())

	rec := do(t, h, http.MethodGet, "/api/inflection?root=basa&dialect=tagalog", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body)
	}
	table := decode[philemma.InflectionTable](t, rec)
	if table.Cells["nag-"] != "nagbasa" || table.Cells["-in-"] != "binasa" {
		t.Errorf("cells = %v", table.Cells)
	}

	if rec := do(t, h, http.MethodGet, "/api/inflection?root=zzz", ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown root: status %d, want 404", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/inflection", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("missing root: status %d, want 400", rec.Code)
	}
}

func TestLexiconEndpoint(t *testing.T) {
	h := newTestServer(t, testConfig())

	resp := decode[lexiconResponse](t, do(t, h, http.MethodGet, "/api/lexicon?kind=irregulars&q=kain", ""))
	if resp.Dialect != philemma.Tagalog || len(resp.Entries) != 1 || resp.Entries[0].Form != "kumain" {
		t.Errorf("irregulars = %+v", resp)
	}

	resp = decode[lexiconResponse](t, do(t, h, http.MethodGet, "/api/lexicon?dialect=cebuano", ""))
	if resp.Kind != "roots" || len(resp.Entries) != 4 {
		t.Errorf("cebuano roots = %+v", resp)
	}

	rec := do(t, h, http.MethodGet, "/api/lexicon?kind=roots&q=zzz", "")
	if !strings.Contains(rec.Body.String(), `"entries":[]`) {
		t.Errorf("no-match body = %s, want empty entries array", rec.Body)
	}

	if rec := do(t, h, http.MethodGet, "/api/lexicon?kind=verbs", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown kind: status %d, want 400", rec.Code)
	}
}

func TestDialectsEndpoint(t *testing.T) {
	h := newTestServer(t, testConfig())
	resp := decode[dialectsResponse](t, do(t, h, http.MethodGet, "/api/dialects", ""))
	if resp.Default != philemma.Tagalog || len(resp.Dialects) != 3 {
		t.Fatalf("dialects = %+v", resp)
	}
	if d := resp.Dialects[0]; d.Dialect != philemma.Tagalog || !d.Default || d.Irregulars != 5 || d.Infixes != 2 {
		t.Errorf("tagalog = %+v", d)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	cfg := testConfig()
	cfg.HistorySize = 2
	h := newTestServer(t, cfg)

	for _, text := range []string{"pumunta", "nagbasa", "kumain ang bata"} {
		if rec := do(t, h, http.MethodPost, "/api/analyze", `{"text":"`+text+`"}`); rec.Code != http.StatusOK {
			t.Fatalf("analyze %q: status %d", text, rec.Code)
		}
	}
	// rejected requests are not recorded
	do(t, h, http.MethodPost, "/api/analyze", `{"text":""}`)

	resp := decode[historyResponse](t, do(t, h, http.MethodGet, "/api/history", ""))
	if len(resp.Entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(resp.Entries))
	}
	newest := resp.Entries[0]
	if newest.Text != "kumain ang bata" || newest.IrregularCount != 1 || newest.TokenCount != 3 || newest.ID == "" {
		t.Errorf("newest = %+v", newest)
	}
	if resp.Entries[1].Text != "nagbasa" {
		t.Errorf("second = %q, want nagbasa", resp.Entries[1].Text)
	}

	resp = decode[historyResponse](t, do(t, h, http.MethodGet, "/api/history?limit=1", ""))
	if len(resp.Entries) != 1 {
		t.Errorf("limit=1 returned %d entries", len(resp.Entries))
	}
	if rec := do(t, h, http.MethodGet, "/api/history?limit=x", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit: status %d, want 400", rec.Code)
	}
}

func TestHistoryStore(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 8, 0, 0, 0, time.FixedZone("PHT", 8*3600))
	h := newHistoryStore(3)
	h.now = func() time.Time { return fixed }

	e := h.Add(&philemma.TextAnalysis{Text: "x", Dialect: philemma.Tagalog})
	if !e.Timestamp.Equal(fixed) || e.Timestamp.Location() != time.UTC {
		t.Errorf("Timestamp = %v, want %v in UTC", e.Timestamp, fixed)
	}
	if e.Lemmas == nil {
		t.Error("Lemmas is nil")
	}

	off := newHistoryStore(0)
	off.Add(&philemma.TextAnalysis{Text: "x"})
	if got := off.Recent(0); len(got) != 0 {
		t.Errorf("disabled store kept %d entries", len(got))
	}
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = 1
	cfg.RateBurst = 1
	h := newTestServer(t, cfg)

	if rec := do(t, h, http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Fatalf("first request: status %d", rec.Code)
	}
	rec := do(t, h, http.MethodGet, "/health", "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: status %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Retry-After missing")
	}

	// other clients have their own budget
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "198.51.100.7:4000"
	other := httptest.NewRecorder()
	h.ServeHTTP(other, req)
	if other.Code != http.StatusOK {
		t.Errorf("other client: status %d", other.Code)
	}
}

func TestMiddlewareHeaders(t *testing.T) {
	cfg := testConfig()
	cfg.AllowedOrigins = []string{"https://example.org"}
	h := newTestServer(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/dialects", nil)
	req.Header.Set("Origin", "https://example.org")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://example.org" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID missing")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/dialects", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("disallowed origin got Access-Control-Allow-Origin %q", got)
	}
}

func TestResolveFlagsOverConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "philemma.yaml")
	src := "addr: :9000\nstrategy: longest-match\nlog_level: warn\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	cli := serverCLI{Config: path, Addr: ":7000", Infixes: true}
	cfg, err := cli.resolve()
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Addr != ":7000" || cfg.Strategy != "longest-match" || cfg.LogLevel != "warn" || !cfg.StripInfixes {
		t.Errorf("cfg = %+v", cfg)
	}

	cli = serverCLI{Strategy: "best"}
	if _, err := cli.resolve(); err == nil {
		t.Error("resolve accepted an unknown strategy")
	}
}
