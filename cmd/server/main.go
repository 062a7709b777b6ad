// Command server exposes the philemma analyzer as a JSON REST API.
//
// Endpoints:
//
//	POST /api/analyze              body: {"text":"...","dialect":"auto"}
//	GET  /api/analyze/token?token=<word>[&dialect=<d>]
//	GET  /api/inflection?root=<root>[&dialect=<d>]
//	GET  /api/lexicon?[dialect=<d>&]kind=roots|irregulars|affixes[&q=<text>]
//	GET  /api/dialects
//	GET  /api/history[?limit=<n>]
//	GET  /health
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/DanieloDark/philemma"
	"github.com/DanieloDark/philemma/internal/config"
	"github.com/DanieloDark/philemma/internal/logging"
)

// serverCLI holds the command-line flags. Flags left at their zero
// value keep the configuration file (or default) setting.
type serverCLI struct {
	Config    string `short:"c" help:"YAML configuration file" type:"existingfile"`
	Addr      string `help:"Listen address, e.g. :8080"`
	Data      string `help:"Directory of *.lex lexicon files (default: built-in lexicons)" type:"existingdir"`
	Dialect   string `help:"Fallback dialect for auto and unknown selectors"`
	Strategy  string `help:"Affix selection: first-match or longest-match"`
	Infixes   bool   `help:"Strip infixes when the result is a listed root"`
	Detect    bool   `help:"Score every lexicon for dialect=auto batch requests"`
	LogLevel  string `help:"debug, info, warn or error"`
	LogFormat string `help:"text or json"`
}

// resolve merges the flags over the configuration file.
func (c *serverCLI) resolve() (config.Config, error) {
	cfg := config.Default()
	if c.Config != "" {
		var err error
		if cfg, err = config.Load(c.Config); err != nil {
			return config.Config{}, err
		}
	}
	if c.Addr != "" {
		cfg.Addr = c.Addr
	}
	if c.Data != "" {
		cfg.DataDir = c.Data
	}
	if c.Dialect != "" {
		cfg.DefaultDialect = c.Dialect
	}
	if c.Strategy != "" {
		cfg.Strategy = c.Strategy
	}
	if c.Infixes {
		cfg.StripInfixes = true
	}
	if c.Detect {
		cfg.DetectDialect = true
	}
	if c.LogLevel != "" {
		cfg.LogLevel = c.LogLevel
	}
	if c.LogFormat != "" {
		cfg.LogFormat = c.LogFormat
	}
	return cfg, cfg.Validate()
}

// newHandler wires the routes and middleware. Outermost first: request
// ID, logging, CORS, rate limiting.
func newHandler(a *philemma.Analyzer, cfg config.Config) (http.Handler, error) {
	var cache *tokenCache
	if cfg.CacheSize > 0 {
		var err error
		if cache, err = lru.New[string, philemma.AnalysisResult](cfg.CacheSize); err != nil {
			return nil, fmt.Errorf("token cache: %w", err)
		}
	}
	hist := newHistoryStore(cfg.HistorySize)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/analyze/token", handleAnalyzeToken(a, cache))
	mux.HandleFunc("/api/analyze", handleAnalyze(a, hist))
	mux.HandleFunc("/api/inflection", handleInflection(a))
	mux.HandleFunc("/api/lexicon", handleLexicon(a))
	mux.HandleFunc("/api/dialects", handleDialects(a))
	mux.HandleFunc("/api/history", handleHistory(hist))
	mux.HandleFunc("/health", handleHealth)

	var handler http.Handler = mux
	if cfg.RateLimit > 0 {
		rl, err := newRateLimiter(cfg.RateLimit, cfg.RateBurst)
		if err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
		handler = rl.Middleware(handler)
	}
	handler = corsMiddleware(cfg.AllowedOrigins).Handler(handler)
	return logging.CombinedMiddleware(handler), nil
}

func run(ctx context.Context, cfg config.Config) error {
	if err := cfg.InitLogging(os.Stderr); err != nil {
		return err
	}
	a, err := cfg.NewAnalyzer()
	if err != nil {
		return err
	}
	reg := a.Registry()
	for _, d := range reg.Dialects() {
		lex, _ := reg.Lookup(d)
		inv := lex.Affixes()
		logging.LexiconLoaded(string(d), len(lex.Roots()), len(lex.Irregulars()),
			len(inv.Prefixes)+len(inv.Infixes)+len(inv.Suffixes), d == reg.Default())
	}

	handler, err := newHandler(a, cfg)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logging.ServerStartup(cfg.Addr,
			"default_dialect", reg.Default(),
			"strategy", cfg.Strategy,
			"strip_infixes", cfg.StripInfixes,
			"detect_dialect", cfg.DetectDialect,
			"rate_limit", cfg.RateLimit)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	logging.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func main() {
	var cli serverCLI
	kctx := kong.Parse(&cli,
		kong.Name("philemma-server"),
		kong.Description("JSON API for Philippine-language lemmatization"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
	)
	cfg, err := cli.resolve()
	kctx.FatalIfErrorf(err)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	kctx.FatalIfErrorf(run(ctx, cfg))
}
