package ruleset_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/risus/internal/game/ruleset"
)

func TestDefaultRegistry_HoldsBuiltins(t *testing.T) {
	reg := ruleset.DefaultRegistry()
	for _, id := range []string{ruleset.EvensID, ruleset.EvensUpID} {
		p, err := reg.Get(id)
		require.NoError(t, err, "ruleset %q", id)
		assert.Equal(t, id, p.ID)
	}
	all := reg.All()
	require.Len(t, all, 2)
	assert.Equal(t, ruleset.EvensID, all[0].ID)
	assert.Equal(t, ruleset.EvensUpID, all[1].ID)
}

func TestRegistry_GetUnknown(t *testing.T) {
	reg := ruleset.NewRegistry()
	_, err := reg.Get("nonexistent")
	assert.ErrorIs(t, err, ruleset.ErrUnknownRuleset)
}

func TestRegistry_RegisterDuplicate(t *testing.T) {
	reg := ruleset.DefaultRegistry()
	err := reg.Register(ruleset.Evens())
	assert.ErrorIs(t, err, ruleset.ErrDuplicateRuleset)
}

func TestRegistry_RegisterInvalid(t *testing.T) {
	reg := ruleset.NewRegistry()
	err := reg.Register(ruleset.Policy{})
	assert.ErrorIs(t, err, ruleset.ErrMissingID)
	assert.Empty(t, reg.All())
}
