package codegen

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"go.rxlab.dev/toolbox/testkit"
)

//go:embed templates/jest.ts.tmpl
var jestTemplateContent string

// Built-in output kinds.
const (
	JestKind = "jest"
)

// Registry holds the output kinds a plan can be generated to. It is safe for
// concurrent use.
type Registry struct {
	mu    sync.RWMutex
	kinds map[string]*OutputKind
}

// NewRegistry returns a registry with the built-in output kinds.
func NewRegistry() *Registry {
	r := &Registry{kinds: make(map[string]*OutputKind)}
	for _, k := range builtinKinds() {
		if err := r.Register(k); err != nil {
			panic(err)
		}
	}
	return r
}

func builtinKinds() []*OutputKind {
	jest, err := NewOutputKind(JestKind, "test.ts", "Jest test suite for the mock Telegram client", jestTemplateContent)
	if err != nil {
		panic(fmt.Sprintf("codegen: failed to parse the built-in %s template: %s", JestKind, err))
	}
	return []*OutputKind{jest}
}

func isBuiltinKind(name string) bool {
	return name == JestKind
}

// Register adds kind to the registry. Names are unique; registering a second
// kind with the same name is an error.
func (r *Registry) Register(kind *OutputKind) error {
	if kind == nil || kind.tmpl == nil {
		return fmt.Errorf("output kind is not initialized, use NewOutputKind")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.kinds[kind.Name]; exists {
		return fmt.Errorf("output kind %q is already registered", kind.Name)
	}
	r.kinds[kind.Name] = kind
	return nil
}

// Lookup returns the output kind registered under name.
func (r *Registry) Lookup(name string) (*OutputKind, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kind, ok := r.kinds[name]
	if !ok {
		return nil, &TemplateError{Kind: name, Err: ErrUnknownKind}
	}
	return kind, nil
}

// Kinds returns the registered output kinds sorted by name.
func (r *Registry) Kinds() []*OutputKind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]*OutputKind, 0, len(r.kinds))
	for _, k := range r.kinds {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i].Name < kinds[j].Name })
	return kinds
}

// Generate renders plan with the output kind registered under kind.
func (r *Registry) Generate(plan testkit.Plan, kind string) (string, error) {
	k, err := r.Lookup(kind)
	if err != nil {
		return "", err
	}
	return k.Render(plan)
}

//nolint:gochecknoglobals
var defaultRegistry = NewRegistry()

// Generate renders plan with one of the built-in output kinds.
func Generate(plan testkit.Plan, kind string) (string, error) {
	return defaultRegistry.Generate(plan, kind)
}

// DefaultKinds returns the built-in output kinds.
func DefaultKinds() []*OutputKind {
	return defaultRegistry.Kinds()
}
