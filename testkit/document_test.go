package testkit

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPlan(t *testing.T) {
	t.Parallel()

	first := simplePlan()
	second := NewPlan("Other").AddStep(NewTextInput("other"))

	bare, err := json.Marshal(first)
	require.NoError(t, err)
	doc, err := json.Marshal(map[string]interface{}{
		"hasInitialized": true,
		DocumentPlansKey: []Plan{first, second},
	})
	require.NoError(t, err)

	t.Run("bare plan", func(t *testing.T) {
		t.Parallel()

		p, err := LoadPlan(bare, "")
		require.NoError(t, err)
		assert.True(t, first.Equal(p))
	})

	t.Run("document first", func(t *testing.T) {
		t.Parallel()

		p, err := LoadPlan(doc, "")
		require.NoError(t, err)
		assert.True(t, first.Equal(p))
	})

	t.Run("document by name", func(t *testing.T) {
		t.Parallel()

		p, err := LoadPlan(doc, "Other")
		require.NoError(t, err)
		assert.True(t, second.Equal(p))
	})

	t.Run("document missing name", func(t *testing.T) {
		t.Parallel()

		_, err := LoadPlan(doc, "Nope")
		require.ErrorIs(t, err, ErrPlanNotFound)
	})

	t.Run("empty document", func(t *testing.T) {
		t.Parallel()

		_, err := LoadPlan([]byte(`{"testPlans":[]}`), "")
		require.ErrorIs(t, err, ErrPlanNotFound)
	})

	t.Run("plans not an array", func(t *testing.T) {
		t.Parallel()

		_, err := LoadPlan([]byte(`{"testPlans":{}}`), "")
		require.EqualError(t, err, "'testPlans' should be an array")
	})

	t.Run("invalid json", func(t *testing.T) {
		t.Parallel()

		_, err := LoadPlan([]byte(`{"name":`), "")
		require.Error(t, err)
	})

	t.Run("names", func(t *testing.T) {
		t.Parallel()

		names, err := PlanNames(doc)
		require.NoError(t, err)
		assert.Equal(t, []string{"Simple test", "Other"}, names)

		names, err = PlanNames(bare)
		require.NoError(t, err)
		assert.Equal(t, []string{"Simple test"}, names)
	})
}
