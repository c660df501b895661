package questionbank

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/persona/internal/dimension"
	"github.com/abhisek/persona/internal/docschema"
)

//go:embed questions.yaml
var defaultCatalogYAML []byte

//go:embed catalog.schema.json
var catalogSchema []byte

// SupportedMajor is the catalog format major version this build reads.
const SupportedMajor = "v1"

// IntegrityError reports a malformed catalog. It is fatal at startup.
type IntegrityError struct {
	Source   string
	Problems []string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("%s validation failed:\n  %s", e.Source, strings.Join(e.Problems, "\n  "))
}

type catalogFile struct {
	Version        string     `yaml:"version"`
	DefaultOptions []Option   `yaml:"default_options"`
	Questions      []Question `yaml:"questions"`
}

// Catalog is the validated, read-only question set.
type Catalog struct {
	version   string
	questions []Question
	byID      map[string]int
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the embedded catalog, parsing it on first use.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Parse(defaultCatalogYAML)
	})
	return defaultCatalog, defaultErr
}

// LoadFile reads and validates a catalog from disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML catalog data, checks it against the catalog schema and
// the format version, fills in default options, then runs the structural
// checks.
func Parse(data []byte) (*Catalog, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &IntegrityError{Source: "question catalog", Problems: []string{fmt.Sprintf("parse yaml: %v", err)}}
	}
	if err := docschema.Validate("question-catalog", catalogSchema, raw); err != nil {
		return nil, &IntegrityError{Source: "question catalog", Problems: []string{err.Error()}}
	}

	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &IntegrityError{Source: "question catalog", Problems: []string{fmt.Sprintf("decode: %v", err)}}
	}

	if !semver.IsValid(f.Version) || semver.Major(f.Version) != SupportedMajor {
		return nil, &IntegrityError{
			Source:   "question catalog",
			Problems: []string{fmt.Sprintf("unsupported version %q (want %s.x.y)", f.Version, SupportedMajor)},
		}
	}

	defaults := f.DefaultOptions
	if len(defaults) == 0 {
		defaults = DefaultOptions()
	}
	for i := range f.Questions {
		if len(f.Questions[i].Options) == 0 {
			f.Questions[i].Options = append([]Option(nil), defaults...)
		}
	}

	return NewCatalog(f.Version, f.Questions)
}

// NewCatalog validates qs and builds a catalog preserving their order.
func NewCatalog(version string, qs []Question) (*Catalog, error) {
	if problems := validateQuestions(qs); len(problems) > 0 {
		return nil, &IntegrityError{Source: "question catalog", Problems: problems}
	}
	c := &Catalog{
		version:   version,
		questions: append([]Question(nil), qs...),
		byID:      make(map[string]int, len(qs)),
	}
	for i, q := range c.questions {
		c.byID[q.ID] = i
	}
	return c, nil
}

// Version returns the catalog's semantic version.
func (c *Catalog) Version() string { return c.version }

// Len returns the number of questions in the catalog.
func (c *Catalog) Len() int { return len(c.questions) }

// Questions returns all questions in catalog order.
func (c *Catalog) Questions() []Question {
	return append([]Question(nil), c.questions...)
}

// Get looks up a question by ID.
func (c *Catalog) Get(id string) (Question, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Question{}, false
	}
	return c.questions[i], true
}

// ByDimension returns the questions of d in catalog order.
func (c *Catalog) ByDimension(d dimension.Dimension) []Question {
	var out []Question
	for _, q := range c.questions {
		if q.Dimension == d {
			out = append(out, q)
		}
	}
	return out
}
