package migration

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForwardsPlanFollowsDependencies(t *testing.T) {
	history := bookingHistory()
	// Registration order must not matter.
	shuffled := []Migration{history[3], history[1], history[0], history[2]}
	g, err := NewGraph(shuffled)
	require.NoError(t, err)

	plan, err := g.ForwardsPlan(history[3].Key())
	require.NoError(t, err)
	require.Len(t, plan, 4)
	for i, m := range history {
		assert.Equal(t, m.Key(), plan[i])
	}

	plan, err = g.ForwardsPlan(history[1].Key())
	require.NoError(t, err)
	assert.Equal(t, []Key{history[0].Key(), history[1].Key()}, plan)

	_, err = g.ForwardsPlan(Key{App: "api", Name: "9999_missing"})
	assert.True(t, errors.Is(err, ErrUnknownMigration))
}

func TestFullPlanAcrossApps(t *testing.T) {
	history := bookingHistory()
	billing := Migration{
		App:  "billing",
		Name: "0001_initial",
		Deps: []Key{history[1].Key()},
	}
	g, err := NewGraph(append(history, billing))
	require.NoError(t, err)

	plan := g.FullPlan()
	require.Len(t, plan, 5)
	position := map[Key]int{}
	for i, k := range plan {
		position[k] = i
	}
	for _, m := range g.Nodes() {
		for _, dep := range m.Deps {
			assert.Less(t, position[dep], position[m.Key()], "%s must follow %s", m.Key(), dep)
		}
	}

	leaves := g.LeafNodesByApp()
	assert.Equal(t, []Key{history[3].Key()}, leaves["api"])
	assert.Equal(t, []Key{billing.Key()}, leaves["billing"])
}

func TestGraphRejectsDanglingDependency(t *testing.T) {
	history := bookingHistory()
	_, err := NewGraph(history[1:])
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNodeNotFound))
	assert.Contains(t, err.Error(), "api.0001_initial")
}

func TestGraphRejectsCycle(t *testing.T) {
	a := Migration{App: "api", Name: "0001_a", Deps: []Key{{App: "api", Name: "0002_b"}}}
	b := Migration{App: "api", Name: "0002_b", Deps: []Key{{App: "api", Name: "0001_a"}}}
	_, err := NewGraph([]Migration{a, b})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCycle))
	assert.Contains(t, err.Error(), "api.0001_a -> api.0002_b -> api.0001_a")
}

func TestGraphRejectsDuplicates(t *testing.T) {
	history := bookingHistory()
	_, err := NewGraph([]Migration{history[0], history[0]})
	assert.Error(t, err)
}

func TestLeafNodesByAppDetectsBranches(t *testing.T) {
	history := bookingHistory()
	branch := Migration{
		App:  "api",
		Name: "0004_service_price",
		Deps: []Key{history[2].Key()},
	}
	g, err := NewGraph(append(history, branch))
	require.NoError(t, err)
	assert.Len(t, g.LeafNodesByApp()["api"], 2)
}

func TestStateReplaysHistory(t *testing.T) {
	g, err := NewGraph(bookingHistory())
	require.NoError(t, err)

	state, err := g.State(g.FullPlan())
	require.NoError(t, err)

	schedule, ok := state.Model("api", "schedule")
	require.True(t, ok)
	names := make([]string, 0, len(schedule.Columns))
	for _, c := range schedule.Columns {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"id", "service_id", "end_time", "start_time"}, names)

	end, _ := schedule.Column("end_time")
	assert.True(t, end.NotNull)
	require.NotNil(t, end.Default)
	assert.Equal(t, "00:00:00", *end.Default)

	service, _ := state.Model("api", "service")
	description, _ := service.Column("description")
	assert.False(t, description.NotNull)
}
