package schema

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the YAML form of a set of model declarations.
//
//	models:
//	  - name: User
//	    table: users
//	    columns:
//	      - property: id
//	        type: number
//	        generated: true
//	      - property: userName
//	        type: string
//	        name: user_name
//	        nullable: false
type File struct {
	Models []FileModel `yaml:"models"`
}

// FileModel declares one model.
type FileModel struct {
	Name    string       `yaml:"name"`
	Table   string       `yaml:"table"`
	Columns []FileColumn `yaml:"columns"`
}

// FileColumn declares one column. Nullable is a pointer so that an omitted
// key keeps the nullable default.
type FileColumn struct {
	Property   string     `yaml:"property"`
	Type       string     `yaml:"type"`
	Primary    bool       `yaml:"primary"`
	Generated  bool       `yaml:"generated"`
	Nullable   *bool      `yaml:"nullable"`
	Unique     bool       `yaml:"unique"`
	Default    any        `yaml:"default"`
	Name       string     `yaml:"name"`
	References *Reference `yaml:"references"`
}

// Decode reads a models file and returns the metadata it declares, in file order.
func Decode(r io.Reader) ([]*Metadata, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to decode models: %w", err)
	}

	out := make([]*Metadata, 0, len(f.Models))
	for _, fm := range f.Models {
		cols := make([]ColumnDefinition, 0, len(fm.Columns))
		for _, fc := range fm.Columns {
			typ, err := ParseColumnType(fc.Type)
			if err != nil {
				return nil, fmt.Errorf("model %s, column %s: %w", fm.Name, fc.Property, err)
			}
			cols = append(cols, fc.definition(typ))
		}
		m, err := New(fm.Name, fm.Table, cols...)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (fc FileColumn) definition(typ ColumnType) ColumnDefinition {
	var opts []ColumnOption
	if fc.Primary {
		opts = append(opts, PrimaryKey())
	}
	if fc.Generated {
		opts = append(opts, PrimaryGenerated())
	}
	if fc.Nullable != nil && !*fc.Nullable {
		opts = append(opts, NotNull())
	}
	if fc.Unique {
		opts = append(opts, Unique())
	}
	if fc.Default != nil && !fc.Generated {
		opts = append(opts, Default(fc.Default))
	}
	if fc.Name != "" {
		opts = append(opts, Name(fc.Name))
	}
	if fc.References != nil {
		opts = append(opts, References(fc.References.Table, fc.References.Column))
	}
	return Column(fc.Property, typ, opts...)
}

// LoadFile decodes the models file at path and registers every model in r
// the way Load does.
func LoadFile(path string, r *Registry) ([]*Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open models file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Load(f, r)
}

// Load decodes a models file from src and registers every model in r. On
// error no model of the file is registered.
func Load(src io.Reader, r *Registry) ([]*Metadata, error) {
	models, err := Decode(src)
	if err != nil {
		return nil, err
	}
	if err := r.RegisterAll(models...); err != nil {
		return nil, err
	}
	return models, nil
}
