// Package config loads the philemma server and CLI settings from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/DanieloDark/philemma"
	"github.com/DanieloDark/philemma/internal/logging"
)

// Config holds every tunable of the analyzer host.
type Config struct {
	Addr string `yaml:"addr"`
	// DataDir holds *.lex files; empty means the built-in lexicons.
	DataDir        string `yaml:"data_dir"`
	DefaultDialect string `yaml:"default_dialect"`
	Strategy       string `yaml:"strategy"`
	StripInfixes   bool   `yaml:"strip_infixes"`
	DetectDialect  bool   `yaml:"detect_dialect"`

	HistorySize int `yaml:"history_size"`
	CacheSize   int `yaml:"cache_size"`
	// RateLimit is requests per second per client; 0 disables limiting.
	RateLimit      float64  `yaml:"rate_limit"`
	RateBurst      int      `yaml:"rate_burst"`
	AllowedOrigins []string `yaml:"allowed_origins"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		Addr:           ":8080",
		DefaultDialect: string(philemma.Tagalog),
		Strategy:       philemma.FirstMatch.String(),
		HistorySize:    100,
		CacheSize:      1024,
		RateLimit:      10,
		RateBurst:      20,
		AllowedOrigins: []string{"*"},
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

// Load reads path over Default. Unknown keys are an error.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(bytes.NewReader(data))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML from r over Default and validates the result.
func Parse(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the server cannot start with.
func (c Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr is empty"))
	}
	if d := philemma.ParseDialect(c.DefaultDialect); d == "" || d == philemma.Auto {
		errs = append(errs, fmt.Errorf("default_dialect %q is not a dialect", c.DefaultDialect))
	}
	if _, err := philemma.ParseMatchStrategy(c.Strategy); err != nil {
		errs = append(errs, err)
	}
	if c.HistorySize < 0 {
		errs = append(errs, fmt.Errorf("history_size %d is negative", c.HistorySize))
	}
	if c.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("cache_size %d is negative", c.CacheSize))
	}
	if c.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("rate_limit %v is negative", c.RateLimit))
	}
	if c.RateLimit > 0 && c.RateBurst < 1 {
		errs = append(errs, fmt.Errorf("rate_burst %d must be at least 1 when rate_limit is set", c.RateBurst))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if _, err := logging.ParseFormat(c.LogFormat); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// InitLogging installs the global logger configured by c, writing to w.
func (c Config) InitLogging(w io.Writer) error {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return err
	}
	format, err := logging.ParseFormat(c.LogFormat)
	if err != nil {
		return err
	}
	logging.InitLogger(w, level, format)
	return nil
}

// Registry loads the lexicons named by DataDir, or the built-in ones.
func (c Config) Registry() (*philemma.Registry, error) {
	def := philemma.ParseDialect(c.DefaultDialect)
	if c.DataDir == "" {
		return philemma.EmbeddedRegistry(def)
	}
	return philemma.LoadRegistry(c.DataDir, def)
}

// AnalyzerOptions translates the analysis settings into options for
// philemma.New.
func (c Config) AnalyzerOptions() ([]philemma.Option, error) {
	strategy, err := philemma.ParseMatchStrategy(c.Strategy)
	if err != nil {
		return nil, err
	}
	opts := []philemma.Option{philemma.WithStrategy(strategy)}
	if c.StripInfixes {
		opts = append(opts, philemma.WithInfixStripping())
	}
	if c.DetectDialect {
		opts = append(opts, philemma.WithDialectDetection())
	}
	return opts, nil
}

// NewAnalyzer builds the registry and analyzer described by c.
func (c Config) NewAnalyzer() (*philemma.Analyzer, error) {
	reg, err := c.Registry()
	if err != nil {
		return nil, fmt.Errorf("load lexicons: %w", err)
	}
	opts, err := c.AnalyzerOptions()
	if err != nil {
		return nil, err
	}
	return philemma.New(reg, opts...)
}
