// Package settings holds the named boolean toggles renderers consult.
package settings

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

var ErrUnknownToggle = errors.New("unknown toggle")

type Toggle struct {
	ID      string
	Label   string
	Default bool
}

type entry struct {
	toggle Toggle
	on     bool
}

type Registry struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]*entry
}

// Default is the process-wide registry.
var Default = New()

func New() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// Register adds t with its default state. Registering an id twice keeps the
// first registration and whatever state it has reached.
func (r *Registry) Register(t Toggle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[t.ID]; ok {
		return
	}
	r.entries[t.ID] = &entry{toggle: t, on: t.Default}
	r.order = append(r.order, t.ID)
}

// IsSelected reports the current state of id. Unknown ids are off.
func (r *Registry) IsSelected(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	return ok && e.on
}

func (r *Registry) Set(id string, on bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownToggle, id)
	}
	e.on = on
	return nil
}

// Reset puts every toggle back to its default.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		e.on = e.toggle.Default
	}
}

// Toggles lists registered toggles in registration order.
func (r *Registry) Toggles() []Toggle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Toggle, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.entries[id].toggle)
	}
	return out
}

// Apply sets toggles from "id=bool" assignments. A bare "id" turns the
// toggle on. Each assignment may itself be a comma separated list, which is
// the form the JDA_SETTINGS environment variable uses.
func (r *Registry) Apply(assignments []string) error {
	for _, a := range assignments {
		for _, part := range strings.Split(a, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, value, hasValue := strings.Cut(part, "=")
			on := true
			if hasValue {
				v, err := strconv.ParseBool(strings.TrimSpace(value))
				if err != nil {
					return fmt.Errorf("parse %q: %w", part, err)
				}
				on = v
			}
			if err := r.Set(strings.TrimSpace(id), on); err != nil {
				return err
			}
		}
	}
	return nil
}
