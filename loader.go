package philemma

import (
	"bufio"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
)

// lexiconExt is the extension of lexicon data files.
const lexiconExt = ".lex"

//go:embed data/*.lex
var embeddedData embed.FS

// DefaultRegistry returns the built-in Tagalog, Cebuano and Ilocano
// lexicons with Tagalog as the fallback dialect.
func DefaultRegistry() (*Registry, error) {
	return EmbeddedRegistry(Tagalog)
}

// EmbeddedRegistry returns the built-in lexicons with def as fallback.
func EmbeddedRegistry(def Dialect) (*Registry, error) {
	sub, err := fs.Sub(embeddedData, "data")
	if err != nil {
		return nil, err
	}
	return LoadRegistryFS(sub, def)
}

// LoadRegistry reads every *.lex file in dir.
func LoadRegistry(dir string, def Dialect) (*Registry, error) {
	return LoadRegistryFS(os.DirFS(dir), def)
}

// LoadRegistryFS reads every *.lex file at the root of fsys. The
// default dialect is registered first, the others in file-name order.
func LoadRegistryFS(fsys fs.FS, def Dialect) (*Registry, error) {
	matches, err := fs.Glob(fsys, "*"+lexiconExt)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("philemma: no %s files found", lexiconExt)
	}
	sort.Strings(matches)

	def = ParseDialect(string(def))
	var lexicons []*Lexicon
	for _, name := range matches {
		lex, err := loadLexiconFile(fsys, name)
		if err != nil {
			return nil, err
		}
		if lex.dialect == def {
			lexicons = append([]*Lexicon{lex}, lexicons...)
		} else {
			lexicons = append(lexicons, lex)
		}
	}

	reg := NewRegistry(def, lexicons...)
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return reg, nil
}

func loadLexiconFile(fsys fs.FS, name string) (*Lexicon, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	fallback := Dialect(strings.TrimSuffix(path.Base(name), lexiconExt))
	lex, err := ParseLexicon(f, fallback)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return lex, nil
}

// ParseLexicon reads a lexicon in the line format of the data files:
//
//	! comment
//	dialect:tagalog
//	root:basa
//	irreg:pumunta:punta
//	prefix:nag
//	suffix:an
//	infix:um
//
// Affix order in the file is matching priority. The dialect directive
// may be omitted, in which case d is used.
func ParseLexicon(r io.Reader, d Dialect) (*Lexicon, error) {
	var (
		roots   []string
		irregs  = make(map[string]string)
		affixes AffixInventory
		lineNo  int
	)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "!") {
			continue
		}

		eclats := strings.Split(line, ":")
		if len(eclats) < 2 {
			return nil, fmt.Errorf("line %d: missing ':' in %q", lineNo, line)
		}
		value := strings.TrimSpace(eclats[1])

		switch strings.TrimSpace(eclats[0]) {
		case "dialect":
			d = Dialect(value)
		case "root":
			roots = append(roots, value)
		case "irreg":
			if len(eclats) < 3 {
				return nil, fmt.Errorf("line %d: irreg needs form:root, got %q", lineNo, line)
			}
			form := NormalizeToken(value)
			if _, dup := irregs[form]; dup {
				return nil, fmt.Errorf("line %d: duplicate irregular form %q", lineNo, form)
			}
			irregs[form] = strings.TrimSpace(eclats[2])
		case "prefix":
			affixes.Prefixes = append(affixes.Prefixes, value)
		case "suffix":
			affixes.Suffixes = append(affixes.Suffixes, value)
		case "infix":
			affixes.Infixes = append(affixes.Infixes, value)
		default:
			return nil, fmt.Errorf("line %d: unknown directive %q", lineNo, eclats[0])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	return NewLexicon(d, roots, irregs, affixes)
}
