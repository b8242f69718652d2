// Package registry keeps a process-wide inventory of tracked wrappers so
// reporting layers (uploaders, exporters) can enumerate them. It is the only
// interface those layers need: wrappers register here once and are read back
// as point-in-time snapshots.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/jonwraymond/callstats/track"
)

var (
	// ErrInvalidRegistration indicates a missing name or nil wrapper.
	ErrInvalidRegistration = errors.New("registry: name and wrapper are required")
)

// Registry manages named wrappers.
type Registry struct {
	mu       sync.RWMutex
	wrappers map[string]*track.Wrapper
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{wrappers: make(map[string]*track.Wrapper)}
}

// Register adds a wrapper under name, typically the fully qualified name of
// the wrapped function.
func (r *Registry) Register(name string, w *track.Wrapper) error {
	name = strings.TrimSpace(name)
	if name == "" || w == nil {
		return ErrInvalidRegistration
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.wrappers[name]; exists {
		return fmt.Errorf("registry: wrapper %q already registered", name)
	}
	r.wrappers[name] = w
	return nil
}

// Lookup returns the wrapper registered under name.
func (r *Registry) Lookup(name string) (*track.Wrapper, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.wrappers[name]
	return w, ok
}

// Names returns registered wrapper names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.wrappers))
	for name := range r.wrappers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered wrappers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.wrappers)
}

// FunctionStats is the snapshot of one registered wrapper.
type FunctionStats struct {
	Name            string
	TotalCalls      int64
	ErrorResults    int64
	InvalidArgCalls int64
	Params          []track.ParamStat
}

// Snapshot returns per-wrapper statistics ordered by total calls descending,
// name ascending on ties. Uncalled wrappers are omitted when skipUncalled is
// set.
func (r *Registry) Snapshot(skipUncalled bool) []FunctionStats {
	r.mu.RLock()
	wrappers := make(map[string]*track.Wrapper, len(r.wrappers))
	for name, w := range r.wrappers {
		wrappers[name] = w
	}
	r.mu.RUnlock()

	stats := make([]FunctionStats, 0, len(wrappers))
	for name, w := range wrappers {
		total, errs, invalid := w.Counts()
		if skipUncalled && total == 0 {
			continue
		}
		stats = append(stats, FunctionStats{
			Name:            name,
			TotalCalls:      total,
			ErrorResults:    errs,
			InvalidArgCalls: invalid,
			Params:          w.ParamStats(),
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].TotalCalls != stats[j].TotalCalls {
			return stats[i].TotalCalls > stats[j].TotalCalls
		}
		return stats[i].Name < stats[j].Name
	})
	return stats
}

// Default is the global registry wrappers register with unless told
// otherwise.
var Default = New()
