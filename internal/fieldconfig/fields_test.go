package fieldconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	defaults := Defaults()
	require.Len(t, defaults, 38)

	byName := make(map[string]Field, len(defaults))
	for _, f := range defaults {
		byName[f.Name] = f
	}

	t.Run("governorate has all 27 options", func(t *testing.T) {
		gov, ok := byName["Governorate"]
		require.True(t, ok)
		assert.Equal(t, TypeDropdown, gov.Type)
		assert.Len(t, gov.Options, 27)
		assert.True(t, gov.Required)
	})

	t.Run("break time is a bounded integer-step number", func(t *testing.T) {
		bt, ok := byName["Break Time ( Minutes)"]
		require.True(t, ok)
		assert.Equal(t, TypeNumber, bt.Type)
		require.NotNil(t, bt.MinValue)
		require.NotNil(t, bt.MaxValue)
		require.NotNil(t, bt.Step)
		assert.Equal(t, 0.0, *bt.MinValue)
		assert.Equal(t, 120.0, *bt.MaxValue)
		assert.Equal(t, 1.0, *bt.Step)
	})

	t.Run("comment fields are optional textareas", func(t *testing.T) {
		for _, name := range []string{"Positive Comments", "Negative Comments", "Students Comment", "Our Comments"} {
			f, ok := byName[name]
			require.True(t, ok, name)
			assert.Equal(t, TypeTextarea, f.Type)
			assert.False(t, f.Required)
		}
	})

	t.Run("scored dropdowns carry display scoring", func(t *testing.T) {
		full, ok := byName["Full Session?"]
		require.True(t, ok)
		assert.Equal(t, 10, full.Scoring["Yes"])
		assert.Equal(t, 0, full.Scoring["No"])
	})

	t.Run("form order starts with session identity fields", func(t *testing.T) {
		names := DefaultFieldNames()
		assert.Equal(t, "Level", names[0])
		assert.Equal(t, "Session type", names[1])
		assert.Equal(t, "Our Comments", names[len(names)-1])
	})
}

func TestValidType(t *testing.T) {
	for _, ft := range FieldTypes() {
		assert.True(t, ValidType(ft))
	}
	assert.False(t, ValidType("slider"))
	assert.False(t, ValidType(""))
}
