package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/mbrukman/sqlsmith/internal/relmodel"
)

// LoadCatalog reads a catalog from path and validates it:
//   - a directory is loaded as one CUE instance (all .cue files unify)
//   - a .cue file is compiled on its own
//   - a .yaml or .yml file is decoded with CompileYAML
func LoadCatalog(path string) (*relmodel.Catalog, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	var cat *relmodel.Catalog
	switch ext := strings.ToLower(filepath.Ext(path)); {
	case info.IsDir():
		cat, err = loadCUEDir(path)
	case ext == ".cue":
		cat, err = loadCUEFile(path)
	case ext == ".yaml" || ext == ".yml":
		var data []byte
		if data, err = os.ReadFile(path); err == nil {
			cat, err = CompileYAML(data)
		}
	default:
		return nil, fmt.Errorf("catalog %s: unsupported file type %q (want .cue, .yaml or a directory)", path, ext)
	}
	if err != nil {
		return nil, err
	}

	if err := cat.Validate(); err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return cat, nil
}

func loadCUEDir(dir string) (*relmodel.Catalog, error) {
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("catalog %s: no CUE instances loaded", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, fmt.Errorf("catalog %s: loading CUE files: %w", dir, inst.Err)
	}
	return CompileCatalog(cuecontext.New().BuildInstance(inst))
}

func loadCUEFile(path string) (*relmodel.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	v := cuecontext.New().CompileBytes(data, cue.Filename(path))
	return CompileCatalog(v)
}
