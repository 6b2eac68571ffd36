package operations

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/sirupsen/logrus"
)

// Registry maps command names to operations.
type Registry struct {
	definitions map[string]Definition
	logger      *logrus.Entry
	mutex       sync.RWMutex
}

func NewRegistry(logger *logrus.Logger) *Registry {
	return &Registry{
		definitions: make(map[string]Definition),
		logger:      logger.WithField("component", "operation-registry"),
	}
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("operation name cannot be empty")
	}
	if strings.IndexFunc(name, unicode.IsSpace) >= 0 {
		return fmt.Errorf("operation name %q must not contain whitespace", name)
	}
	return nil
}

func (r *Registry) Register(def Definition) error {
	if err := validateName(def.Name); err != nil {
		return err
	}
	if def.Operation == nil {
		return fmt.Errorf("operation %s has no implementation", def.Name)
	}
	if def.Kind == "" {
		def.Kind = KindFunc
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.definitions[def.Name]; exists {
		return fmt.Errorf("operation %s already registered", def.Name)
	}
	r.definitions[def.Name] = def

	r.logger.WithFields(logrus.Fields{
		"name": def.Name,
		"kind": def.Kind,
	}).Debug("operation registered")
	return nil
}

func (r *Registry) MustRegister(def Definition) {
	if err := r.Register(def); err != nil {
		panic(err)
	}
}

// Resolve returns the operation registered under name or a *NotFoundError.
func (r *Registry) Resolve(name string) (Operation, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	def, ok := r.definitions[name]
	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	return def.Operation, nil
}

func (r *Registry) Lookup(name string) (Definition, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	def, ok := r.definitions[name]
	return def, ok
}

// List returns all definitions sorted by name.
func (r *Registry) List() []Definition {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	defs := make([]Definition, 0, len(r.definitions))
	for _, def := range r.definitions {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool {
		return defs[i].Name < defs[j].Name
	})
	return defs
}
