package admin

import (
	"fmt"
	"regexp"
	"slices"
	"sort"
	"sync"
)

// DefaultListPerPage is the page size of record lists unless the
// registration sets its own.
const DefaultListPerPage = 32

var namePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Options is the presentation config of a registered resource.
type Options struct {
	// ListDisplay names the fields shown in record lists.
	// Empty means every field.
	ListDisplay []string `json:"list_display"`
	ListPerPage uint32   `json:"list_per_page"`
}

type Registration struct {
	Resource Resource
	Options  Options
}

// Registry maps resource names to their registrations. It is filled once
// during bootstrap and read-only after Seal.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Registration
	sealed  bool
}

func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*Registration),
	}
}

// Register adds res with opts, or with the default options if opts is nil.
//
// It returns ErrAlreadyRegistered if a resource with the same name is
// registered, keeping the first registration, and ErrRegistrySealed
// after Seal.
func (r *Registry) Register(res Resource, opts *Options) error {
	name := res.Name()
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	options, err := resolveOptions(res, opts)
	if err != nil {
		return fmt.Errorf("failed to register %s: %w", name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return fmt.Errorf("failed to register %s: %w", name, ErrRegistrySealed)
	}
	if _, exists := r.entries[name]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, name)
	}

	r.entries[name] = &Registration{
		Resource: res,
		Options:  options,
	}
	return nil
}

// RegisterAll registers every resource with the default options,
// stopping at the first error.
func RegisterAll(r *Registry, resources ...Resource) error {
	for _, res := range resources {
		err := r.Register(res, nil)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) Lookup(name string) (*Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.entries[name]
	return reg, ok
}

// All returns the registrations sorted by resource name.
func (r *Registry) All() []*Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]*Registration, len(names))
	for i, name := range names {
		result[i] = r.entries[name]
	}
	return result
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Seal makes the registry read-only.
func (r *Registry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
}

func resolveOptions(res Resource, opts *Options) (Options, error) {
	fields := res.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}

	options := Options{
		ListDisplay: names,
		ListPerPage: DefaultListPerPage,
	}
	if opts == nil {
		return options, nil
	}

	if len(opts.ListDisplay) > 0 {
		for _, name := range opts.ListDisplay {
			if !slices.Contains(names, name) {
				return Options{}, fmt.Errorf("%w: %s", ErrUnknownField, name)
			}
		}
		options.ListDisplay = slices.Clone(opts.ListDisplay)
	}
	if opts.ListPerPage > 0 {
		options.ListPerPage = opts.ListPerPage
	}
	return options, nil
}
