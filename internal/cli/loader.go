package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"cuelang.org/go/cue/token"

	"github.com/mbrukman/sqlsmith/internal/compiler"
	"github.com/mbrukman/sqlsmith/internal/relmodel"
)

// LoadError represents an error that occurred while loading a catalog.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error code constants, unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeLoadFailed  = "E004" // CUE load or build failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeWriteFailed = "E007" // File write error

	// Catalog errors
	ErrCodeCatalogTables    = "E101" // Bad table or column declaration
	ErrCodeCatalogType      = "E102" // Bad or empty type name
	ErrCodeCatalogOperators = "E103" // Bad operator declaration
	ErrCodeCatalogYAML      = "E104" // Malformed YAML catalog

	// Run errors
	ErrCodeTarget     = "E201" // Target connection failed
	ErrCodeStore      = "E202" // Run log unavailable
	ErrCodeExhausted  = "E203" // Catalog cannot produce a statement
	ErrCodeRunMissing = "E204" // Run ID not in the log
)

// LoadCatalog loads a catalog file or directory and completes it with the
// default operators when it declares none. Errors are *LoadError.
func LoadCatalog(path string) (*relmodel.Catalog, error) {
	cat, err := compiler.LoadCatalog(path)
	if err != nil {
		return nil, convertCompileError(err, path)
	}
	return cat.WithDefaultOperators(), nil
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error, path string) *LoadError {
	if errors.Is(err, fs.ErrNotExist) {
		return &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("catalog not found: %s", path)}
	}
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: compileErr.Message,
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
}

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch field {
	case "cue":
		return ErrCodeLoadFailed
	case "table", "tables", "columns":
		return ErrCodeCatalogTables
	case "type":
		return ErrCodeCatalogType
	case "operator":
		return ErrCodeCatalogOperators
	case "yaml":
		return ErrCodeCatalogYAML
	default:
		return ErrCodeGeneric
	}
}

// loadErrorCode returns err's code, or ErrCodeGeneric.
func loadErrorCode(err error) string {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Code
	}
	return ErrCodeGeneric
}
