// Package migration describes schema change descriptors: an ordered list of
// atomic operations plus the descriptors they depend on.
package migration

import (
	"fmt"
	"strings"
)

// Key identifies a descriptor within the whole project.
type Key struct {
	App  string `yaml:"app"`
	Name string `yaml:"name"`
}

func (k Key) String() string {
	return k.App + "." + k.Name
}

// ParseKey accepts "app.name".
func ParseKey(s string) (Key, error) {
	app, name, ok := strings.Cut(s, ".")
	if !ok || app == "" || name == "" {
		return Key{}, fmt.Errorf("invalid migration key %q, expected app.name", s)
	}
	return Key{App: app, Name: name}, nil
}

// Migration is one schema change descriptor. Once applied to any database it
// must never be edited; the runner stores a checksum to detect drift.
type Migration struct {
	App  string
	Name string
	Deps []Key
	Ops  []Operation
}

func (m Migration) Key() Key {
	return Key{App: m.App, Name: m.Name}
}

// Dependencies returns the descriptors that must be applied before this one.
func (m Migration) Dependencies() []Key {
	out := make([]Key, len(m.Deps))
	copy(out, m.Deps)
	return out
}

// Operations returns the atomic operations in the order they must be applied.
func (m Migration) Operations() []Operation {
	out := make([]Operation, len(m.Ops))
	copy(out, m.Ops)
	return out
}

// Validate runs the static checks of every operation.
func (m Migration) Validate() error {
	for i, op := range m.Ops {
		if err := op.Validate(); err != nil {
			return fmt.Errorf("%s operation %d (%s): %w", m.Key(), i+1, op.Describe(), err)
		}
	}
	return nil
}
