package recipe

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/KaramelBytes/civtab/internal/analysis"
	"github.com/KaramelBytes/civtab/internal/parser"
	"github.com/KaramelBytes/civtab/internal/table"
	"github.com/KaramelBytes/civtab/internal/utils"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

const fileExt = ".yaml"

// Kind names the operation a recipe runs.
type Kind string

const (
	KindCount Kind = "count"
	KindStats Kind = "stats"
	KindSum   Kind = "sum"
)

var (
	// ErrNotFound is returned when a recipe file does not exist.
	ErrNotFound = errors.New("recipe not found")
	// ErrInvalid wraps every validation failure.
	ErrInvalid = errors.New("invalid recipe")
)

// Input locates and describes the table a recipe reads.
type Input struct {
	Path       string `yaml:"path"`
	Encoding   string `yaml:"encoding,omitempty"`
	Delimiter  string `yaml:"delimiter,omitempty"`
	Thousands  string `yaml:"thousands,omitempty"`
	Decimal    string `yaml:"decimal,omitempty"`
	SheetName  string `yaml:"sheet_name,omitempty"`
	SheetIndex int    `yaml:"sheet_index,omitempty"`
}

// Recipe is a saved, repeatable analysis persisted as YAML.
type Recipe struct {
	ID          string              `yaml:"id"`
	Name        string              `yaml:"name"`
	Description string              `yaml:"description,omitempty"`
	Kind        Kind                `yaml:"kind"`
	Input       Input               `yaml:"input"`
	Derive      []string            `yaml:"derive,omitempty"`
	GroupBy     []string            `yaml:"group_by,omitempty"`
	Filters     analysis.FilterSpec `yaml:"filters,omitempty"`
	ExtraSingle analysis.FilterSpec `yaml:"extra_single,omitempty"`
	Target      string              `yaml:"target,omitempty"`
	ValueColumn string              `yaml:"value_column,omitempty"`
	Label       string              `yaml:"label,omitempty"`
	RangeMethod string              `yaml:"range_method,omitempty"`
	Outputs     []string            `yaml:"outputs,omitempty"`
	CreatedAt   time.Time           `yaml:"created_at"`
	UpdatedAt   time.Time           `yaml:"updated_at"`

	// Not serialized: on-disk location of the recipe file
	path string
}

// New constructs an in-memory recipe stored under dir. Call Save() to persist.
func New(name string, kind Kind, dir string) *Recipe {
	now := time.Now().UTC()
	return &Recipe{
		ID:        uuid.NewString(),
		Name:      name,
		Kind:      kind,
		CreatedAt: now,
		UpdatedAt: now,
		path:      filepath.Join(dir, name+fileExt),
	}
}

// Load reads a recipe file.
func Load(path string) (*Recipe, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read recipe: %w", err)
	}
	var r Recipe
	if err := yaml.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("parse recipe %s: %w", path, err)
	}
	r.path = path
	return &r, nil
}

// Find resolves ref as a recipe file path, or else as a recipe name in dir.
func Find(dir, ref string) (*Recipe, error) {
	if strings.HasSuffix(ref, fileExt) || strings.HasSuffix(ref, ".yml") || strings.ContainsRune(ref, os.PathSeparator) {
		return Load(ref)
	}
	return Load(filepath.Join(dir, ref+fileExt))
}

// Path returns the on-disk recipe path.
func (r *Recipe) Path() string { return r.path }

// Save validates and writes the recipe using atomic write.
func (r *Recipe) Save() error {
	if r.path == "" {
		return errors.New("recipe path not set")
	}
	if err := r.Validate(); err != nil {
		return err
	}
	if err := utils.EnsureDir(filepath.Dir(r.path)); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	r.UpdatedAt = time.Now().UTC()
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal recipe: %w", err)
	}
	return utils.SafeWriteFile(r.path, data)
}

// Validate checks that the recipe has what its kind needs.
func (r *Recipe) Validate() error {
	var problems []string
	if strings.TrimSpace(r.Name) == "" {
		problems = append(problems, "name is required")
	} else if strings.ContainsAny(r.Name, `/\`) {
		problems = append(problems, "name must not contain path separators")
	}
	if r.Input.Path == "" {
		problems = append(problems, "input.path is required")
	} else if !parser.Supported(r.Input.Path) {
		problems = append(problems, fmt.Sprintf("input.path %q is not a CSV, TSV or XLSX file", r.Input.Path))
	}
	if _, err := analysis.ParseDerivations(r.Derive); err != nil {
		problems = append(problems, err.Error())
	}
	for _, d := range append(append(analysis.FilterSpec{}, r.Filters...), r.ExtraSingle...) {
		if len(d.Values) == 0 {
			problems = append(problems, fmt.Sprintf("filter %q lists no values", d.Column))
		}
	}
	switch r.Kind {
	case KindCount:
		if len(r.Filters) == 0 && len(r.ExtraSingle) == 0 {
			problems = append(problems, "count needs filters or extra_single")
		}
	case KindStats:
		if r.Target == "" {
			problems = append(problems, "stats needs target")
		}
	case KindSum:
		if r.ValueColumn == "" {
			problems = append(problems, "sum needs value_column")
		}
	default:
		problems = append(problems, fmt.Sprintf("kind %q must be count, stats or sum", r.Kind))
	}
	if r.RangeMethod != "" {
		if _, err := analysis.ParseRangeMethod(r.RangeMethod); err != nil {
			problems = append(problems, err.Error())
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w %q: %s", ErrInvalid, r.Name, strings.Join(problems, "; "))
	}
	return nil
}

// InputPath resolves Input.Path; relative paths are taken from the recipe's directory.
func (r *Recipe) InputPath() string {
	p := utils.ExpandHome(r.Input.Path)
	if filepath.IsAbs(p) || r.path == "" {
		return p
	}
	return filepath.Join(filepath.Dir(r.path), p)
}

// Run executes the recipe's operation against t, after adding any derived
// columns. Warnings from deriving and filtering are carried on the result.
func (r *Recipe) Run(a *analysis.Analyzer, t *table.Table) (analysis.Tabular, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	derivs, err := analysis.ParseDerivations(r.Derive)
	if err != nil {
		return nil, err
	}
	t, warnings, err := a.Derive(t, derivs)
	if err != nil {
		return nil, fmt.Errorf("recipe %s: %w", r.Name, err)
	}
	var res analysis.Tabular
	switch r.Kind {
	case KindCount:
		res, err = unwrap(a.CountByFilters(t, r.GroupBy, r.Filters, r.ExtraSingle))
	case KindStats:
		res, err = unwrap(a.FilterAndStats(t, r.Filters, r.Target, r.GroupBy))
	case KindSum:
		if len(r.Filters) > 0 {
			filtered, fw, ferr := a.Filter(t, r.Filters)
			if ferr != nil {
				return nil, fmt.Errorf("recipe %s: %w", r.Name, ferr)
			}
			t = filtered
			warnings = append(warnings, fw...)
		}
		res, err = unwrap(a.SumBy(t, r.GroupBy, r.ValueColumn, r.Label))
	}
	if err != nil {
		return nil, fmt.Errorf("recipe %s: %w", r.Name, err)
	}
	analysis.PrependWarnings(res, warnings)
	return res, nil
}

func unwrap[T analysis.Tabular](res T, err error) (analysis.Tabular, error) {
	if err != nil {
		return nil, err
	}
	return res, nil
}

// List loads every recipe in dir, sorted by name. A missing dir yields none.
func List(dir string) ([]*Recipe, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read recipes dir: %w", err)
	}
	var out []*Recipe
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext != fileExt && ext != ".yml" {
			continue
		}
		r, err := Load(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
