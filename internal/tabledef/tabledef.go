// Package tabledef loads declarative table definitions from YAML files and
// builds them over a SQL source.
package tabledef

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"tablekit/internal/source/sqlsource"
	"tablekit/internal/table"
)

// File is the YAML shape of one table definition.
type File struct {
	Name        string       `yaml:"name"`
	Source      SourceSpec   `yaml:"source"`
	DefaultSort *SortSpec    `yaml:"default_sort,omitempty"`
	PerPage     int          `yaml:"per_page,omitempty"`
	MaxPerPage  int          `yaml:"max_per_page,omitempty"`
	TieBreaker  string       `yaml:"tie_breaker,omitempty"`
	ColumnSpecs []ColumnSpec `yaml:"columns"`

	// Path is the file the definition was read from, if any.
	Path string `yaml:"-"`
}

// SourceSpec names the relation a table reads from.
type SourceSpec struct {
	Table       string            `yaml:"table"`
	Expressions map[string]string `yaml:"expressions,omitempty"`
}

// SortSpec is a default sort.
type SortSpec struct {
	Column    string `yaml:"column"`
	Direction string `yaml:"direction,omitempty"`
}

// ColumnSpec is the YAML shape of a column.
type ColumnSpec struct {
	Key        string   `yaml:"key"`
	Label      string   `yaml:"label,omitempty"`
	Type       string   `yaml:"type,omitempty"`
	Align      string   `yaml:"align,omitempty"`
	Sortable   bool     `yaml:"sortable,omitempty"`
	Filterable bool     `yaml:"filterable,omitempty"`
	Clauses    []string `yaml:"clauses,omitempty"`
}

// Parse decodes one YAML document. Unknown fields are rejected.
func Parse(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty table definition")
		}
		return nil, fmt.Errorf("decode table definition: %w", err)
	}
	if f.Source.Table == "" {
		f.Source.Table = f.Name
	}
	return &f, nil
}

// LoadDir parses every *.yaml / *.yml file in dir, sorted by file name.
func LoadDir(fsys fs.FS, dir string) ([]*File, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read table directory %s: %w", dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var files []*File
	for _, e := range entries {
		ext := strings.ToLower(path.Ext(e.Name()))
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		p := path.Join(dir, e.Name())
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		f, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		f.Path = p
		files = append(files, f)
	}
	return files, nil
}

// Columns converts the column specs to table columns.
func (f *File) Columns() ([]table.Column, error) {
	cols := make([]table.Column, 0, len(f.ColumnSpecs))
	var errs []error
	for _, spec := range f.ColumnSpecs {
		col, err := spec.column()
		if err != nil {
			errs = append(errs, fmt.Errorf("column %q: %w", spec.Key, err))
			continue
		}
		cols = append(cols, col)
	}
	return cols, errors.Join(errs...)
}

// Options converts the sort and paging settings to definition options.
func (f *File) Options() []table.Option {
	var opts []table.Option
	if f.DefaultSort != nil {
		opts = append(opts, table.WithDefaultSort(f.DefaultSort.Column, table.ParseDirection(f.DefaultSort.Direction)))
	}
	if f.PerPage != 0 {
		opts = append(opts, table.WithPerPage(f.PerPage))
	}
	if f.MaxPerPage != 0 {
		opts = append(opts, table.WithMaxPerPage(f.MaxPerPage))
	}
	if f.TieBreaker != "" {
		opts = append(opts, table.WithTieBreaker(f.TieBreaker))
	}
	return opts
}

// Build creates the definition over the file's source relation in db.
func (f *File) Build(db sqlsource.Querier, dialect sqlsource.Dialect) (*table.Definition, error) {
	cols, err := f.Columns()
	if err != nil {
		return nil, fmt.Errorf("table %q: %w", f.Name, err)
	}

	keys := make([]string, len(cols))
	for i, c := range cols {
		keys[i] = c.Key
	}
	opts := []sqlsource.Option{sqlsource.WithColumns(keys...)}
	for key, expr := range f.Source.Expressions {
		opts = append(opts, sqlsource.WithExpression(key, expr))
	}
	src, err := sqlsource.New(db, dialect, f.Source.Table, opts...)
	if err != nil {
		return nil, fmt.Errorf("table %q: %w", f.Name, err)
	}
	return table.New(f.Name, src, cols, f.Options()...)
}

func (s ColumnSpec) column() (table.Column, error) {
	typ, err := table.ParseColumnType(s.Type)
	if err != nil {
		return table.Column{}, err
	}
	col := table.Column{
		Key:        s.Key,
		Label:      s.Label,
		Type:       typ,
		Sortable:   s.Sortable,
		Filterable: s.Filterable || len(s.Clauses) > 0,
	}
	if s.Align != "" {
		if col.Alignment, err = table.ParseAlignment(s.Align); err != nil {
			return table.Column{}, err
		}
	}
	for _, name := range s.Clauses {
		c, ok := table.ParseClause(name)
		if !ok {
			return table.Column{}, fmt.Errorf("unknown clause %q", name)
		}
		col.Clauses = append(col.Clauses, c)
	}
	return col, nil
}
