package compiler

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/mbrukman/sqlsmith/internal/relmodel"
)

type yamlColumn struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type yamlTable struct {
	Name      string       `yaml:"name"`
	Schema    string       `yaml:"schema,omitempty"`
	BaseTable *bool        `yaml:"base_table,omitempty"`
	Columns   []yamlColumn `yaml:"columns"`
}

type yamlOp struct {
	Name   string `yaml:"name"`
	Left   string `yaml:"left"`
	Right  string `yaml:"right"`
	Result string `yaml:"result"`
}

type yamlCatalog struct {
	Tables    []yamlTable `yaml:"tables"`
	Operators []yamlOp    `yaml:"operators,omitempty"`
}

// CompileYAML parses a YAML catalog document:
//
//	tables:
//	  - name: T1
//	    columns:
//	      - {name: a, type: integer}
//	operators:
//	  - {name: "=", left: integer, right: integer, result: bool}
//
// Unknown fields are rejected so typos surface as errors.
func CompileYAML(data []byte) (*relmodel.Catalog, error) {
	var doc yamlCatalog
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, &CompileError{Field: "yaml", Message: err.Error()}
	}

	cat := &relmodel.Catalog{}
	for i, yt := range doc.Tables {
		if yt.Name == "" {
			return nil, &CompileError{Field: "tables", Message: fmt.Sprintf("table[%d]: name is required", i)}
		}
		t := relmodel.Table{Schema: yt.Schema, IsBaseTable: true}
		t.Name = yt.Name
		if yt.BaseTable != nil {
			t.IsBaseTable = *yt.BaseTable
		}
		for _, yc := range yt.Columns {
			if yc.Name == "" || yc.Type == "" {
				return nil, &CompileError{Field: "columns", Message: fmt.Sprintf("table %s: column needs a name and a type", yt.Name)}
			}
			t.Columns = append(t.Columns, relmodel.Column{Name: yc.Name, Type: relmodel.NormalizeType(yc.Type)})
		}
		if len(t.Columns) == 0 {
			return nil, &CompileError{Field: "columns", Message: fmt.Sprintf("table %s: at least one column is required", yt.Name)}
		}
		cat.Tables = append(cat.Tables, t)
	}

	for _, yo := range doc.Operators {
		if yo.Name == "" || yo.Left == "" || yo.Right == "" || yo.Result == "" {
			return nil, &CompileError{Field: "operator", Message: fmt.Sprintf("operator %q: name and all three types are required", yo.Name)}
		}
		cat.Operators = append(cat.Operators, relmodel.Op{
			Name:   yo.Name,
			Left:   relmodel.NormalizeType(yo.Left),
			Right:  relmodel.NormalizeType(yo.Right),
			Result: relmodel.NormalizeType(yo.Result),
		})
	}

	return cat, nil
}

// MarshalYAML renders a catalog in the document form CompileYAML reads.
func MarshalYAML(cat *relmodel.Catalog) ([]byte, error) {
	doc := yamlCatalog{}
	for _, t := range cat.Tables {
		base := t.IsBaseTable
		yt := yamlTable{Name: t.Name, Schema: t.Schema, BaseTable: &base}
		for _, c := range t.Columns {
			yt.Columns = append(yt.Columns, yamlColumn{Name: c.Name, Type: string(c.Type)})
		}
		doc.Tables = append(doc.Tables, yt)
	}
	for _, o := range cat.Operators {
		doc.Operators = append(doc.Operators, yamlOp{
			Name: o.Name, Left: string(o.Left), Right: string(o.Right), Result: string(o.Result),
		})
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("marshal catalog: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("marshal catalog: %w", err)
	}
	return buf.Bytes(), nil
}
