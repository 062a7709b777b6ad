// Command philemma lemmatizes Tagalog, Cebuano and Ilocano text from the
// command line.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/alecthomas/kong"

	"github.com/DanieloDark/philemma"
	"github.com/DanieloDark/philemma/internal/config"
	"github.com/DanieloDark/philemma/internal/logging"
)

const version = "0.1.0"

// CLI defines the command-line interface for philemma.
type CLI struct {
	// Global flags
	Config   string `short:"c" help:"YAML configuration file" type:"existingfile"`
	Data     string `help:"Directory of *.lex lexicon files (default: built-in lexicons)" type:"existingdir"`
	Default  string `name:"default-dialect" help:"Fallback dialect for auto and unknown selectors"`
	Strategy string `help:"Affix selection: first-match or longest-match"`
	Infixes  bool   `help:"Strip infixes when the result is a listed root"`
	LogLevel string `help:"debug, info, warn or error" default:"warn"`

	Analyze AnalyzeCmd `cmd:"" help:"Lemmatize text (reads stdin when no text is given)"`
	Detect  DetectCmd  `cmd:"" help:"Rank the dialects by how well they explain the text"`
	Lexicon LexiconCmd `cmd:"" help:"List roots, irregular forms or affixes of a dialect"`
	Inflect InflectCmd `cmd:"" help:"List the forms the affixes derive from a root"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// app is handed to every command's Run method.
type app struct {
	cfg config.Config
	in  io.Reader
	out io.Writer
}

func (a *app) analyzer(detect bool) (*philemma.Analyzer, error) {
	cfg := a.cfg
	cfg.DetectDialect = cfg.DetectDialect || detect
	return cfg.NewAnalyzer()
}

// configure merges the global flags over the configuration file.
func (c *CLI) configure() (config.Config, error) {
	cfg := config.Default()
	if c.Config != "" {
		var err error
		if cfg, err = config.Load(c.Config); err != nil {
			return config.Config{}, err
		}
	}
	if c.Data != "" {
		cfg.DataDir = c.Data
	}
	if c.Default != "" {
		cfg.DefaultDialect = c.Default
	}
	if c.Strategy != "" {
		cfg.Strategy = c.Strategy
	}
	if c.Infixes {
		cfg.StripInfixes = true
	}
	if c.LogLevel != "" {
		cfg.LogLevel = c.LogLevel
	}
	return cfg, cfg.Validate()
}

// AnalyzeCmd lemmatizes text.
type AnalyzeCmd struct {
	Dialect string   `short:"d" help:"Dialect, or auto" default:"auto"`
	JSON    bool     `help:"Print the full analysis as JSON"`
	Detect  bool     `help:"Detect the dialect when --dialect=auto"`
	Text    []string `arg:"" optional:"" help:"Text to analyze"`
}

func (c *AnalyzeCmd) Run(a *app) error {
	text := strings.Join(c.Text, " ")
	if len(c.Text) == 0 {
		b, err := io.ReadAll(a.in)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = string(b)
	}

	an, err := a.analyzer(c.Detect)
	if err != nil {
		return err
	}
	ta, err := an.AnalyzeText(text, c.Dialect)
	if err != nil {
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(ta)
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TOKEN\tPOS\tAFFIXES\tCANDIDATES\tLEMMA\tRULE")
	for _, r := range ta.Results {
		affixes := "none"
		if len(r.Affixes) > 0 {
			parts := make([]string, len(r.Affixes))
			for i, af := range r.Affixes {
				parts[i] = af.String()
			}
			affixes = strings.Join(parts, ", ")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Token, r.POS, affixes, strings.Join(r.Candidates, ", "), r.Lemma, r.Rule)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	dialect := string(ta.Dialect)
	if ta.Detection != nil {
		dialect = fmt.Sprintf("%s (%.0f%%)", ta.Dialect, ta.Detection.Confidence*100)
	}
	fmt.Fprintf(a.out, "\ndialect: %s  tokens: %d  irregular: %d\nlemmas: %s\n",
		dialect, len(ta.Tokens), ta.IrregularCount(), strings.Join(ta.Lemmas(), ", "))
	return nil
}

// DetectCmd ranks dialects for a text.
type DetectCmd struct {
	Text []string `arg:"" help:"Text to score"`
}

func (c *DetectCmd) Run(a *app) error {
	an, err := a.analyzer(true)
	if err != nil {
		return err
	}
	tokens := philemma.Tokenize(strings.Join(c.Text, " "))
	det := philemma.Detect(tokens, an.Registry(), an.SegmentOptions())

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DIALECT\tCONFIDENCE")
	for _, s := range det.Scores {
		fmt.Fprintf(tw, "%s\t%.3f\n", s.Dialect, s.Confidence)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "\ndetected: %s\n", det.Dialect)
	return nil
}

// LexiconCmd lists lexicon entries.
type LexiconCmd struct {
	Dialect string `short:"d" help:"Dialect (default: the fallback dialect)"`
	Kind    string `short:"k" help:"Entry kind" enum:"roots,irregulars,affixes" default:"roots"`
	Query   string `short:"q" help:"Only entries containing this text"`
}

func (c *LexiconCmd) Run(a *app) error {
	an, err := a.analyzer(false)
	if err != nil {
		return err
	}
	lex, err := an.Registry().Resolve(c.Dialect)
	if err != nil {
		return err
	}
	entries := lex.Entries(philemma.EntryKind(c.Kind), c.Query)

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FORM\tKIND\tLEMMA")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Form, e.Kind, e.Lemma)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "\n%d %s in %s\n", len(entries), c.Kind, lex.Dialect())
	return nil
}

// InflectCmd prints the inflection table of a root.
type InflectCmd struct {
	Dialect string `short:"d" help:"Dialect (default: the fallback dialect)"`
	Root    string `arg:"" help:"Root to inflect"`
}

func (c *InflectCmd) Run(a *app) error {
	an, err := a.analyzer(false)
	if err != nil {
		return err
	}
	table, err := an.Inflections(c.Root, c.Dialect)
	if err != nil {
		return err
	}

	affixes := make([]string, 0, len(table.Cells))
	for af := range table.Cells {
		affixes = append(affixes, af)
	}
	sort.Strings(affixes)

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "AFFIX\tFORM")
	for _, af := range affixes {
		fmt.Fprintf(tw, "%s\t%s\n", af, table.Cells[af])
	}
	for _, form := range table.Irregulars {
		fmt.Fprintf(tw, "irregular\t%s\n", form)
	}
	return tw.Flush()
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(a *app) error {
	_, err := fmt.Fprintf(a.out, "philemma %s\n", version)
	return err
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("philemma"),
		kong.Description("Rule-based lemmatizer for Philippine-language verbs"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
	)
	cfg, err := cli.configure()
	ctx.FatalIfErrorf(err)
	ctx.FatalIfErrorf(cfg.InitLogging(os.Stderr))
	logging.Debug("configuration loaded", "data_dir", cfg.DataDir, "default_dialect", cfg.DefaultDialect, "strategy", cfg.Strategy)

	err = ctx.Run(&app{cfg: cfg, in: os.Stdin, out: os.Stdout})
	ctx.FatalIfErrorf(err)
}
