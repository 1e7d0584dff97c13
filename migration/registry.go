package migration

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registryMu sync.Mutex
	registry   = map[Key]Migration{}
)

// Register adds a descriptor to the process-wide registry.
// Called by init() functions in individual migration files.
func Register(m Migration) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, dup := registry[m.Key()]; dup {
		panic(fmt.Sprintf("migration %s registered twice", m.Key()))
	}
	registry[m.Key()] = m
}

// Registered returns every registered descriptor ordered by key.
func Registered() []Migration {
	registryMu.Lock()
	defer registryMu.Unlock()

	out := make([]Migration, 0, len(registry))
	for _, m := range registry {
		out = append(out, m)
	}
	SortByKey(out)
	return out
}

func SortByKey(ms []Migration) {
	sort.Slice(ms, func(i, j int) bool {
		if ms[i].App != ms[j].App {
			return ms[i].App < ms[j].App
		}
		return ms[i].Name < ms[j].Name
	})
}
