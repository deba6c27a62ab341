package factory

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/mitchellh/mapstructure"
)

var (
	// ErrUnknownType is returned by Create for a type nobody registered.
	ErrUnknownType = errors.New("unknown module type")
	// ErrDuplicate is returned by Register when the name is taken.
	ErrDuplicate = errors.New("module type already registered")
)

// ModuleConfig names a module type and carries its raw settings.
type ModuleConfig struct {
	Type string         `json:"type"`
	Conf map[string]any `json:"conf"`
}

// Factory builds a T from raw settings.
type Factory[T any] func(map[string]any) (T, error)

// Registry maps module type names to factories. Names are case insensitive.
type Registry[T any] struct {
	mu        sync.RWMutex
	factories map[string]Factory[T]
}

func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{factories: map[string]Factory[T]{}}
}

func normalize(name string) string { return strings.ToLower(strings.TrimSpace(name)) }

// Register adds f under name.
func (r *Registry[T]) Register(name string, f Factory[T]) error {
	key := normalize(name)
	if key == "" || f == nil {
		return fmt.Errorf("register %q: name and factory are required", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.factories[key]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicate, key)
	}
	r.factories[key] = f
	return nil
}

// Create builds the module described by cfg. Factory errors are prefixed
// with the module type.
func (r *Registry[T]) Create(cfg ModuleConfig) (T, error) {
	key := normalize(cfg.Type)
	r.mu.RLock()
	f, ok := r.factories[key]
	r.mu.RUnlock()
	var zero T
	if !ok {
		return zero, fmt.Errorf("%w %q (known: %s)", ErrUnknownType, cfg.Type, strings.Join(r.Names(), ", "))
	}
	conf := cfg.Conf
	if conf == nil {
		conf = map[string]any{}
	}
	m, err := f(conf)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", key, err)
	}
	return m, nil
}

// Names returns the registered type names, sorted.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Decode copies raw settings into out using json tags. Settings coming from
// environment variables arrive as strings, so scalars convert weakly and
// durations such as "5s" are parsed. Unknown keys are an error.
func Decode(data map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return err
	}
	return dec.Decode(data)
}
