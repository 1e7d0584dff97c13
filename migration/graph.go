package migration

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ridoystarlord/schedmigrate/schema"
)

// Graph is the dependency DAG over a set of descriptors.
type Graph struct {
	nodes    map[Key]Migration
	children map[Key][]Key
}

// NewGraph builds the graph and rejects dangling dependencies and cycles.
func NewGraph(migrations []Migration) (*Graph, error) {
	g := &Graph{
		nodes:    make(map[Key]Migration, len(migrations)),
		children: map[Key][]Key{},
	}
	for _, m := range migrations {
		if _, dup := g.nodes[m.Key()]; dup {
			return nil, fmt.Errorf("migration %s declared twice", m.Key())
		}
		g.nodes[m.Key()] = m
	}
	for _, key := range g.sortedKeys() {
		for _, dep := range g.nodes[key].Deps {
			if _, ok := g.nodes[dep]; !ok {
				return nil, fmt.Errorf("%w: %s depends on %s", ErrNodeNotFound, key, dep)
			}
			g.children[dep] = append(g.children[dep], key)
		}
	}
	if cycle := g.findCycle(); cycle != nil {
		parts := make([]string, len(cycle))
		for i, k := range cycle {
			parts[i] = k.String()
		}
		return nil, fmt.Errorf("%w: %s", ErrCycle, strings.Join(parts, " -> "))
	}
	return g, nil
}

func (g *Graph) sortedKeys() []Key {
	keys := make([]Key, 0, len(g.nodes))
	for k := range g.nodes {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
	return keys
}

const (
	white = iota
	grey
	black
)

func (g *Graph) findCycle() []Key {
	color := make(map[Key]int, len(g.nodes))
	var stack []Key
	var cycle []Key

	var visit func(k Key) bool
	visit = func(k Key) bool {
		color[k] = grey
		stack = append(stack, k)
		for _, dep := range g.nodes[k].Deps {
			switch color[dep] {
			case grey:
				for i, s := range stack {
					if s == dep {
						cycle = append(append([]Key{}, stack[i:]...), dep)
						return true
					}
				}
			case white:
				if visit(dep) {
					return true
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[k] = black
		return false
	}

	for _, k := range g.sortedKeys() {
		if color[k] == white && visit(k) {
			return cycle
		}
	}
	return nil
}

// Node returns the descriptor stored under k.
func (g *Graph) Node(k Key) (Migration, bool) {
	m, ok := g.nodes[k]
	return m, ok
}

// Nodes returns every descriptor ordered by key.
func (g *Graph) Nodes() []Migration {
	out := make([]Migration, 0, len(g.nodes))
	for _, k := range g.sortedKeys() {
		out = append(out, g.nodes[k])
	}
	return out
}

// ForwardsPlan returns target and all its ancestors, dependencies first.
// Dependencies are visited in declared order, so the plan is deterministic.
func (g *Graph) ForwardsPlan(target Key) ([]Key, error) {
	if _, ok := g.nodes[target]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMigration, target)
	}
	seen := map[Key]bool{}
	var plan []Key
	g.appendPlan(target, seen, &plan)
	return plan, nil
}

func (g *Graph) appendPlan(k Key, seen map[Key]bool, plan *[]Key) {
	if seen[k] {
		return
	}
	seen[k] = true
	for _, dep := range g.nodes[k].Deps {
		g.appendPlan(dep, seen, plan)
	}
	*plan = append(*plan, k)
}

// FullPlan orders every node so that each follows its dependencies.
func (g *Graph) FullPlan() []Key {
	seen := map[Key]bool{}
	var plan []Key
	for _, leaf := range g.LeafNodes() {
		g.appendPlan(leaf, seen, &plan)
	}
	return plan
}

// LeafNodes returns the nodes nothing depends on, ordered by key.
func (g *Graph) LeafNodes() []Key {
	var leaves []Key
	for _, k := range g.sortedKeys() {
		if len(g.children[k]) == 0 {
			leaves = append(leaves, k)
		}
	}
	return leaves
}

// LeafNodesByApp groups leaves per app; more than one leaf in an app means
// two branches of that app's history were never merged.
func (g *Graph) LeafNodesByApp() map[string][]Key {
	out := map[string][]Key{}
	for _, k := range g.sortedKeys() {
		sameApp := false
		for _, child := range g.children[k] {
			if child.App == k.App {
				sameApp = true
				break
			}
		}
		if !sameApp {
			out[k.App] = append(out[k.App], k)
		}
	}
	return out
}

// State replays the operations of plan in order.
func (g *Graph) State(plan []Key) (*schema.State, error) {
	state := schema.NewState()
	for _, k := range plan {
		m, ok := g.nodes[k]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownMigration, k)
		}
		for _, op := range m.Ops {
			if err := op.StateForwards(m.App, state); err != nil {
				return nil, fmt.Errorf("%s: %s: %w", k, op.Describe(), err)
			}
		}
	}
	return state, nil
}
