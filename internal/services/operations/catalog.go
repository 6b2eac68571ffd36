package operations

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

var ErrInvalidCatalog = errors.New("invalid command catalog")

// CatalogEntry describes one exec-backed command.
type CatalogEntry struct {
	Name    string            `yaml:"name"`
	Help    string            `yaml:"help"`
	Path    string            `yaml:"path"`
	Args    []string          `yaml:"args"`
	Env     map[string]string `yaml:"env"`
	Dir     string            `yaml:"dir"`
	Timeout time.Duration     `yaml:"timeout"`
}

type Catalog struct {
	Commands []CatalogEntry `yaml:"commands"`
}

// LoadCatalog reads a YAML catalog of exec-backed commands.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	for i := range catalog.Commands {
		if err := catalog.Commands[i].Validate(); err != nil {
			return nil, err
		}
	}
	return &catalog, nil
}

func (e *CatalogEntry) Validate() error {
	if err := validateName(e.Name); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if !filepath.IsAbs(e.Path) {
		return fmt.Errorf("%w: %s: binary path must be absolute: %q", ErrInvalidCatalog, e.Name, e.Path)
	}
	info, err := os.Stat(e.Path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidCatalog, e.Name, err)
	}
	if info.IsDir() || info.Mode().Perm()&0o111 == 0 {
		return fmt.Errorf("%w: %s: %s is not executable", ErrInvalidCatalog, e.Name, e.Path)
	}
	if e.Timeout < 0 {
		return fmt.Errorf("%w: %s: negative timeout", ErrInvalidCatalog, e.Name)
	}
	return nil
}

// Operation builds the exec operation for the entry.
func (e *CatalogEntry) Operation(grace time.Duration) *ExecOperation {
	env := make([]string, 0, len(e.Env))
	for k, v := range e.Env {
		env = append(env, k+"="+v)
	}
	sort.Strings(env)
	return &ExecOperation{
		Path:             e.Path,
		Args:             e.Args,
		Env:              env,
		Dir:              e.Dir,
		Timeout:          e.Timeout,
		TerminationGrace: grace,
	}
}

// RegisterCatalog adds every catalog entry to reg as an exec operation.
func RegisterCatalog(reg *Registry, catalog *Catalog, grace time.Duration) error {
	for i := range catalog.Commands {
		entry := &catalog.Commands[i]
		help := entry.Help
		if help == "" {
			help = entry.Path
		}
		err := reg.Register(Definition{
			Name:      entry.Name,
			Help:      help,
			Kind:      KindExec,
			Operation: entry.Operation(grace),
		})
		if err != nil {
			return err
		}
	}
	return nil
}
