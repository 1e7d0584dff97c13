package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridoystarlord/schedmigrate/schema"
)

func TestChecksumIsStable(t *testing.T) {
	a, err := Checksum(bookingHistory()[3])
	require.NoError(t, err)
	b, err := Checksum(bookingHistory()[3])
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestChecksumChangesWithContent(t *testing.T) {
	original := bookingHistory()[3]
	base, err := Checksum(original)
	require.NoError(t, err)

	edited := bookingHistory()[3]
	edited.Ops[0] = AddField{Model: "schedule", Field: schema.Column{Name: "end_time", Type: schema.TypeTime, NotNull: true, Default: strPtr("08:00:00")}}
	changed, err := Checksum(edited)
	require.NoError(t, err)
	assert.NotEqual(t, base, changed)

	reordered := bookingHistory()[3]
	reordered.Ops[0], reordered.Ops[1] = reordered.Ops[1], reordered.Ops[0]
	swapped, err := Checksum(reordered)
	require.NoError(t, err)
	assert.NotEqual(t, base, swapped)

	// The operation kind is part of the fingerprint, not just its fields.
	kind := bookingHistory()[3]
	kind.Ops[2] = AddField{Model: "service", Field: schema.Column{Name: "description", Type: schema.TypeText}}
	retyped, err := Checksum(kind)
	require.NoError(t, err)
	assert.NotEqual(t, base, retyped)
}

func TestParseKey(t *testing.T) {
	k, err := ParseKey("api.0004_schedule_end_time_schedule_start_time_and_more")
	require.NoError(t, err)
	assert.Equal(t, "api", k.App)
	assert.Equal(t, "0004_schedule_end_time_schedule_start_time_and_more", k.Name)

	_, err = ParseKey("api")
	assert.Error(t, err)
	_, err = ParseKey(".0001")
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	m := Migration{App: "registry_test", Name: "0001_initial"}
	Register(m)
	found := false
	for _, r := range Registered() {
		if r.Key() == m.Key() {
			found = true
		}
	}
	assert.True(t, found)
	assert.Panics(t, func() { Register(m) })
}
