package compiler

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbrukman/sqlsmith/internal/relmodel"
)

func TestLoadCatalogCUEFile(t *testing.T) {
	cat, err := LoadCatalog("testdata/t1.cue")
	require.NoError(t, err)
	require.Len(t, cat.Tables, 1)
	assert.Equal(t, "T1", cat.Tables[0].Ident())
	assert.Equal(t, []relmodel.Type{relmodel.Integer, relmodel.Bool},
		[]relmodel.Type{cat.Tables[0].Columns[0].Type, cat.Tables[0].Columns[1].Type})
}

func TestLoadCatalogYAML(t *testing.T) {
	cat, err := LoadCatalog("testdata/shop.yaml")
	require.NoError(t, err)
	require.Len(t, cat.Tables, 2)
	assert.Equal(t, "public.orders", cat.Tables[0].Ident())
	assert.Equal(t, relmodel.Numeric, cat.Tables[0].Columns[1].Type)
	assert.Len(t, cat.Operators, 2)
}

func TestLoadCatalogDirectory(t *testing.T) {
	cat, err := LoadCatalog("testdata/split")
	require.NoError(t, err)
	assert.Len(t, cat.Tables, 2)
	assert.Len(t, cat.Operators, 1)
}

func TestLoadCatalogUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))

	_, err := LoadCatalog(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}

func TestLoadCatalogMissing(t *testing.T) {
	_, err := LoadCatalog("testdata/nope.cue")
	assert.Error(t, err)
}

func TestLoadCatalogInvalidCUE(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.cue")
	require.NoError(t, os.WriteFile(path, []byte("table: T1: columns: {a: \"integer\"\n"), 0o644))

	_, err := LoadCatalog(path)
	require.Error(t, err)
}

func TestLoadCatalogValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dup.yaml")
	doc := "tables:\n  - name: T1\n    columns: [{name: a, type: integer}]\n  - name: T1\n    columns: [{name: b, type: integer}]\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	_, err := LoadCatalog(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestLoadCatalogCUEFilePosition(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty_type.cue")
	require.NoError(t, os.WriteFile(path, []byte("table: T1: columns: {\n\ta: \"\"\n}\n"), 0o644))

	_, err := LoadCatalog(path)
	require.Error(t, err)

	var cerr *CompileError
	require.True(t, errors.As(err, &cerr), "want *CompileError, got %T", err)
	assert.Equal(t, "type", cerr.Field)
	require.True(t, cerr.Pos.IsValid())
	assert.Equal(t, path, cerr.Pos.Filename())
	assert.Equal(t, 2, cerr.Pos.Line())
	assert.Contains(t, err.Error(), path+":2:")
}
