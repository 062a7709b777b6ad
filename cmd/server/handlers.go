package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/DanieloDark/philemma"
	"github.com/DanieloDark/philemma/internal/logging"
)

// maxBodyBytes caps the size of POST /api/analyze bodies.
const maxBodyBytes = 1 << 20

// ---- JSON request/response types ----------------------------------------

type analyzeRequest struct {
	Text    string `json:"text"`
	Dialect string `json:"dialect"`
}

type summaryJSON struct {
	TokensProcessed int      `json:"tokensProcessed"`
	TotalLemmas     int      `json:"totalLemmas"`
	IrregularWords  int      `json:"irregularWords"`
	Lemmas          []string `json:"lemmas"`
}

type analyzeResponse struct {
	DetectedDialect philemma.Dialect          `json:"detectedDialect"`
	Confidence      float64                   `json:"confidence"`
	Scores          []philemma.DialectScore   `json:"scores,omitempty"`
	Tokens          []string                  `json:"tokens"`
	Results         []philemma.AnalysisResult `json:"results"`
	Summary         summaryJSON               `json:"summary"`
}

type lexiconResponse struct {
	Dialect philemma.Dialect `json:"dialect"`
	Kind    string           `json:"kind"`
	Query   string           `json:"query,omitempty"`
	Entries []philemma.Entry `json:"entries"`
}

type dialectJSON struct {
	Dialect    philemma.Dialect `json:"dialect"`
	Default    bool             `json:"default"`
	Roots      int              `json:"roots"`
	Irregulars int              `json:"irregulars"`
	Prefixes   int              `json:"prefixes"`
	Infixes    int              `json:"infixes"`
	Suffixes   int              `json:"suffixes"`
}

type dialectsResponse struct {
	Default  philemma.Dialect `json:"default"`
	Dialects []dialectJSON    `json:"dialects"`
}

type historyResponse struct {
	Entries []historyEntry `json:"entries"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ---- helpers ------------------------------------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("encode error", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeAnalysisError maps analyzer errors onto HTTP statuses.
func writeAnalysisError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, philemma.ErrEmptyInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, philemma.ErrUnknownRoot):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		logging.ErrorContext(r.Context(), "analysis failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func toAnalyzeResponse(reg *philemma.Registry, selector string, ta *philemma.TextAnalysis) analyzeResponse {
	resp := analyzeResponse{
		DetectedDialect: ta.Dialect,
		Tokens:          ta.Tokens,
		Results:         ta.Results,
		Summary: summaryJSON{
			TokensProcessed: len(ta.Tokens),
			TotalLemmas:     len(ta.Results),
			IrregularWords:  ta.IrregularCount(),
			Lemmas:          ta.Lemmas(),
		},
	}
	switch {
	case ta.Detection != nil:
		resp.Confidence = ta.Detection.Confidence
		resp.Scores = ta.Detection.Scores
	default:
		// an explicitly requested dialect is certain; a fallback is not
		if _, ok := reg.Lookup(philemma.ParseDialect(selector)); ok {
			resp.Confidence = 1
		}
	}
	if resp.Tokens == nil {
		resp.Tokens = []string{}
	}
	if resp.Results == nil {
		resp.Results = []philemma.AnalysisResult{}
	}
	if resp.Summary.Lemmas == nil {
		resp.Summary.Lemmas = []string{}
	}
	return resp
}

// ---- handlers -----------------------------------------------------------

func handleAnalyze(a *philemma.Analyzer, hist *historyStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "POST required")
			return
		}
		var body analyzeRequest
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err := dec.Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "body must be JSON with a 'text' field")
			return
		}
		if body.Dialect == "" {
			body.Dialect = string(philemma.Auto)
		}

		ta, err := a.AnalyzeText(body.Text, body.Dialect)
		if err != nil {
			writeAnalysisError(w, r, err)
			return
		}
		hist.Add(ta)
		writeJSON(w, http.StatusOK, toAnalyzeResponse(a.Registry(), body.Dialect, ta))
	}
}

// tokenCache memoizes single-token analyses per resolved dialect.
type tokenCache = lru.Cache[string, philemma.AnalysisResult]

func handleAnalyzeToken(a *philemma.Analyzer, cache *tokenCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "GET required")
			return
		}
		token := philemma.NormalizeToken(r.URL.Query().Get("token"))
		if token == "" {
			writeError(w, http.StatusBadRequest, "missing 'token' query parameter")
			return
		}
		lex, err := a.Registry().Resolve(r.URL.Query().Get("dialect"))
		if err != nil {
			writeAnalysisError(w, r, err)
			return
		}

		key := string(lex.Dialect()) + "\x00" + token
		if cache != nil {
			if res, ok := cache.Get(key); ok {
				w.Header().Set("X-Cache", "hit")
				writeJSON(w, http.StatusOK, res)
				return
			}
		}
		res, err := a.Analyze(token, string(lex.Dialect()))
		if err != nil {
			writeAnalysisError(w, r, err)
			return
		}
		if cache != nil {
			cache.Add(key, res)
			w.Header().Set("X-Cache", "miss")
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func handleInflection(a *philemma.Analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "GET required")
			return
		}
		root := r.URL.Query().Get("root")
		if root == "" {
			writeError(w, http.StatusBadRequest, "missing 'root' query parameter")
			return
		}
		table, err := a.Inflections(root, r.URL.Query().Get("dialect"))
		if err != nil {
			writeAnalysisError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, table)
	}
}

func handleLexicon(a *philemma.Analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "GET required")
			return
		}
		q := r.URL.Query()
		kind := philemma.EntryKind(q.Get("kind"))
		if kind == "" {
			kind = philemma.EntryRoots
		}
		switch kind {
		case philemma.EntryRoots, philemma.EntryIrregulars, philemma.EntryAffixes:
		default:
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown kind %q (want roots, irregulars or affixes)", kind))
			return
		}
		lex, err := a.Registry().Resolve(q.Get("dialect"))
		if err != nil {
			writeAnalysisError(w, r, err)
			return
		}
		entries := lex.Entries(kind, q.Get("q"))
		if entries == nil {
			entries = []philemma.Entry{}
		}
		writeJSON(w, http.StatusOK, lexiconResponse{
			Dialect: lex.Dialect(),
			Kind:    string(kind),
			Query:   q.Get("q"),
			Entries: entries,
		})
	}
}

func handleDialects(a *philemma.Analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "GET required")
			return
		}
		reg := a.Registry()
		resp := dialectsResponse{Default: reg.Default()}
		for _, d := range reg.Dialects() {
			lex, _ := reg.Lookup(d)
			affixes := lex.Affixes()
			resp.Dialects = append(resp.Dialects, dialectJSON{
				Dialect:    d,
				Default:    d == reg.Default(),
				Roots:      len(lex.Roots()),
				Irregulars: len(lex.Irregulars()),
				Prefixes:   len(affixes.Prefixes),
				Infixes:    len(affixes.Infixes),
				Suffixes:   len(affixes.Suffixes),
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func handleHistory(hist *historyStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "GET required")
			return
		}
		limit := 0
		if s := r.URL.Query().Get("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 {
				writeError(w, http.StatusBadRequest, "'limit' must be a non-negative integer")
				return
			}
			limit = n
		}
		writeJSON(w, http.StatusOK, historyResponse{Entries: hist.Recent(limit)})
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
