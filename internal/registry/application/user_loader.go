package registry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/zjrosen/benchschema/internal/domain/registry"
	"github.com/zjrosen/benchschema/internal/log"
)

// LoadUserSpecs loads the declaration files listed under schemas.user_files.
// Paths are resolved relative to the working directory. A listed file that
// is missing or invalid is an error.
func LoadUserSpecs(paths []string) ([]*registry.RecordSpec, error) {
	var all []*registry.RecordSpec

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", p, err)
		}

		// Root the FS at the file's directory
		fsys := os.DirFS(filepath.Dir(abs))
		specs, err := LoadSpecsFromYAML(fsys, filepath.Base(abs), registry.SourceUser)
		if err != nil {
			return nil, fmt.Errorf("load user schemas: %w", err)
		}

		log.Info(log.CatRegistry, "Loaded user schemas", "file", abs, "count", len(specs))
		all = append(all, specs...)
	}

	return all, nil
}

// NewUserRegistry returns a sealed registry holding the built-in specs
// followed by the user specs. Redeclaring a built-in version fails with
// *registry.DuplicateVersionError.
func NewUserRegistry(builtins, user []*registry.RecordSpec) (*registry.Registry, error) {
	reg := registry.NewRegistry()

	for _, spec := range builtins {
		if err := reg.Register(spec); err != nil {
			return nil, fmt.Errorf("register built-in %s: %w", spec.Identifier(), err)
		}
	}
	for _, spec := range user {
		if err := reg.Register(spec); err != nil {
			return nil, fmt.Errorf("register user schema %s: %w", spec.Identifier(), err)
		}
	}

	reg.Seal()
	return reg, nil
}
