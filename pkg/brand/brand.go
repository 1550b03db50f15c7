// Package brand holds the OS personality hooks of a jail. A brand prepares
// the jail filesystem before start (init), renders the shell fragment that
// boots the jail (boot) and tears down whatever init set up (halt).
package brand

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"github.com/fifo-tools/jadm/pkg/types"
)

// ErrUnknownBrand is returned by Lookup for names nobody registered.
var ErrUnknownBrand = errors.New("unknown brand")

// Target is the jail a brand hook is acting on.
type Target struct {
	// UUID of the jail.
	UUID string

	// Root is the dataset backing the jail.
	Root string

	// Path is the mountpoint of the jail root filesystem.
	Path string

	// Config is the full jail configuration.
	Config types.JailConfig
}

// NewTarget builds the hook target of a jail from its index data.
func NewTarget(uuid, root string, config types.JailConfig) Target {
	return Target{
		UUID:   uuid,
		Root:   root,
		Path:   RootPath(root),
		Config: config,
	}
}

// RootPath is the mountpoint of the root filesystem inside a jail dataset.
func RootPath(root string) string {
	return filepath.Join("/", root, "root")
}

// Brand is a named set of OS personality hooks.
type Brand interface {
	// Init prepares brand specific filesystem and mount state.
	Init(ctx context.Context, t Target) error

	// Halt undoes Init once the jail is gone or failed to start.
	Halt(ctx context.Context, t Target) error

	// Boot renders the shell fragment that brings the jail up. It is
	// appended to the exec.start script of the jail.
	Boot(t Target) (string, error)
}

// Registry maps brand names to brands.
type Registry struct {
	mu     sync.RWMutex
	brands map[string]Brand
}

// NewRegistry returns a registry containing the built-in jail brand.
func NewRegistry() *Registry {
	r := &Registry{brands: make(map[string]Brand)}
	r.Register(types.DefaultBrand, Native{})
	return r
}

// Register adds or replaces the brand called name.
func (r *Registry) Register(name string, b Brand) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.brands[name] = b
}

// Lookup returns the brand called name.
func (r *Registry) Lookup(name string) (Brand, error) {
	if name == "" {
		name = types.DefaultBrand
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.brands[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBrand, name)
	}
	return b, nil
}

// Names returns the registered brand names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.brands))
	for name := range r.brands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Native is the built-in FreeBSD brand: no preparation, boot through rc.
type Native struct{}

func (Native) Init(ctx context.Context, t Target) error { return nil }

func (Native) Halt(ctx context.Context, t Target) error { return nil }

func (Native) Boot(t Target) (string, error) {
	return "/bin/sh /etc/rc", nil
}
