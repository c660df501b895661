// Package typedesc holds descriptive material for the sixteen type codes
// and turns a scored result into a readable analysis.
package typedesc

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/persona/internal/docschema"
	"github.com/abhisek/persona/internal/scoring"
)

//go:embed types.yaml
var defaultTypesYAML []byte

//go:embed types.schema.json
var typesSchema []byte

// ErrUnknownType is returned for codes outside the sixteen valid ones.
var ErrUnknownType = errors.New("unknown personality type")

// IntegrityError reports malformed description data.
type IntegrityError struct {
	Problems []string
}

func (e *IntegrityError) Error() string {
	return "type descriptions validation failed:\n  " + strings.Join(e.Problems, "\n  ")
}

// Function is a cognitive function.
type Function struct {
	Code            string   `yaml:"-" json:"code"`
	Name            string   `yaml:"name" json:"name"`
	Description     string   `yaml:"description" json:"description"`
	Characteristics []string `yaml:"characteristics" json:"characteristics"`
}

// CognitiveStack lists a type's functions from strongest to weakest.
type CognitiveStack struct {
	Dominant  string `json:"dominant"`
	Auxiliary string `json:"auxiliary"`
	Tertiary  string `json:"tertiary"`
	Inferior  string `json:"inferior"`
}

// Positions pairs each stack slot with its label, strongest first.
func (s CognitiveStack) Positions() [][2]string {
	return [][2]string{
		{"Dominant", s.Dominant},
		{"Auxiliary", s.Auxiliary},
		{"Tertiary", s.Tertiary},
		{"Inferior", s.Inferior},
	}
}

// Description is the static material for one type.
type Description struct {
	Title             string   `yaml:"title"`
	Stack             []string `yaml:"stack"`
	Overview          string   `yaml:"overview"`
	Strengths         []string `yaml:"strengths"`
	Weaknesses        []string `yaml:"weaknesses"`
	CareerMatches     []string `yaml:"career_matches"`
	FamousExamples    []string `yaml:"famous_examples"`
	RelationshipStyle string   `yaml:"relationship_style"`
}

// Family is a group of four related types.
type Family struct {
	Key     string   `yaml:"-" json:"key"`
	Title   string   `yaml:"title" json:"title"`
	Members []string `yaml:"members" json:"members"`
}

// Analysis is the description of a scored type.
type Analysis struct {
	Type              string         `json:"type"`
	Title             string         `json:"title"`
	Overview          string         `json:"overview"`
	Strengths         []string       `json:"strengths"`
	Weaknesses        []string       `json:"weaknesses"`
	CareerMatches     []string       `json:"career_matches"`
	CognitiveStack    CognitiveStack `json:"cognitive_stack"`
	FamousExamples    []string       `json:"famous_examples"`
	RelationshipStyle string         `json:"relationship_style"`
	DimensionInsights []string       `json:"dimension_analysis"`
	Family            string         `json:"family"`
	Compatible        []string       `json:"compatible_types"`
}

type typesFile struct {
	Version   string                 `yaml:"version"`
	Families  map[string]Family      `yaml:"families"`
	Functions map[string]Function    `yaml:"functions"`
	Types     map[string]Description `yaml:"types"`
}

// Catalog is the validated description set.
type Catalog struct {
	version   string
	types     map[string]Description
	functions map[string]Function
	families  []Family
	familyOf  map[string]int
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Parse(defaultTypesYAML)
	})
	return defaultCatalog, defaultErr
}

// Parse decodes and validates YAML description data.
func Parse(data []byte) (*Catalog, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &IntegrityError{Problems: []string{fmt.Sprintf("parse yaml: %v", err)}}
	}
	if err := docschema.Validate("type-descriptions", typesSchema, raw); err != nil {
		return nil, &IntegrityError{Problems: []string{err.Error()}}
	}

	var f typesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &IntegrityError{Problems: []string{fmt.Sprintf("decode: %v", err)}}
	}
	if !semver.IsValid(f.Version) || semver.Major(f.Version) != "v1" {
		return nil, &IntegrityError{Problems: []string{fmt.Sprintf("unsupported version %q", f.Version)}}
	}

	c := &Catalog{
		version:   f.Version,
		types:     f.Types,
		functions: make(map[string]Function, len(f.Functions)),
		familyOf:  make(map[string]int, 16),
	}
	for code, fn := range f.Functions {
		fn.Code = code
		c.functions[code] = fn
	}

	keys := make([]string, 0, len(f.Families))
	for k := range f.Families {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var problems []string
	for _, k := range keys {
		fam := f.Families[k]
		fam.Key = k
		for _, m := range fam.Members {
			if _, dup := c.familyOf[m]; dup {
				problems = append(problems, fmt.Sprintf("type %s belongs to more than one family", m))
				continue
			}
			c.familyOf[m] = len(c.families)
		}
		c.families = append(c.families, fam)
	}

	for _, code := range Codes() {
		d, ok := c.types[code]
		if !ok {
			problems = append(problems, fmt.Sprintf("missing type %s", code))
			continue
		}
		if _, ok := c.familyOf[code]; !ok {
			problems = append(problems, fmt.Sprintf("type %s has no family", code))
		}
		for _, fn := range d.Stack {
			if _, ok := c.functions[fn]; !ok {
				problems = append(problems, fmt.Sprintf("type %s: unknown function %q in stack", code, fn))
			}
		}
	}
	if len(problems) > 0 {
		return nil, &IntegrityError{Problems: problems}
	}
	return c, nil
}

// Codes returns the sixteen type codes in a stable order.
func Codes() []string {
	out := make([]string, 0, 16)
	for _, a := range "EI" {
		for _, b := range "SN" {
			for _, c := range "TF" {
				for _, d := range "JP" {
					out = append(out, string([]rune{a, b, c, d}))
				}
			}
		}
	}
	return out
}

// Version returns the description set's semantic version.
func (c *Catalog) Version() string { return c.version }

// Describe returns the static description for code.
func (c *Catalog) Describe(code string) (Description, error) {
	d, ok := c.types[strings.ToUpper(code)]
	if !ok {
		return Description{}, fmt.Errorf("%w: %s", ErrUnknownType, code)
	}
	return d, nil
}

// Function looks up a cognitive function by its two-letter code.
func (c *Catalog) Function(code string) (Function, bool) {
	fn, ok := c.functions[code]
	return fn, ok
}

// Families returns the type families ordered by key.
func (c *Catalog) Families() []Family {
	return append([]Family(nil), c.families...)
}

// FamilyOf returns the family containing code.
func (c *Catalog) FamilyOf(code string) (Family, bool) {
	i, ok := c.familyOf[strings.ToUpper(code)]
	if !ok {
		return Family{}, false
	}
	return c.families[i], true
}

// Compatible returns the other members of code's family.
func (c *Catalog) Compatible(code string) []string {
	code = strings.ToUpper(code)
	fam, ok := c.FamilyOf(code)
	if !ok {
		return nil
	}
	var out []string
	for _, m := range fam.Members {
		if m != code {
			out = append(out, m)
		}
	}
	return out
}

// Stack expands a type's function codes into labelled stack slots.
func (c *Catalog) Stack(code string) (CognitiveStack, error) {
	d, err := c.Describe(code)
	if err != nil {
		return CognitiveStack{}, err
	}
	label := func(i int) string {
		if i >= len(d.Stack) {
			return "Unknown"
		}
		fn := c.functions[d.Stack[i]]
		return fmt.Sprintf("%s (%s)", fn.Code, fn.Name)
	}
	return CognitiveStack{
		Dominant:  label(0),
		Auxiliary: label(1),
		Tertiary:  label(2),
		Inferior:  label(3),
	}, nil
}

// Analyze describes code and adds insight lines drawn from scores.
func (c *Catalog) Analyze(code string, scores []scoring.DimensionScore) (Analysis, error) {
	code = strings.ToUpper(code)
	d, err := c.Describe(code)
	if err != nil {
		return Analysis{}, err
	}
	stack, err := c.Stack(code)
	if err != nil {
		return Analysis{}, err
	}
	a := Analysis{
		Type:              code,
		Title:             d.Title,
		Overview:          d.Overview,
		Strengths:         d.Strengths,
		Weaknesses:        d.Weaknesses,
		CareerMatches:     d.CareerMatches,
		CognitiveStack:    stack,
		FamousExamples:    d.FamousExamples,
		RelationshipStyle: d.RelationshipStyle,
		DimensionInsights: scoring.Insights(scores),
		Compatible:        c.Compatible(code),
	}
	if fam, ok := c.FamilyOf(code); ok {
		a.Family = fam.Title
	}
	return a, nil
}
