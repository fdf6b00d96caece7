package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstObject(t *testing.T) {
	t.Run("Should find an object surrounded by prose", func(t *testing.T) {
		obj, ok := FirstObject(`Sure, here it is: {"output": {"a": 1}} Hope that helps.`)
		require.True(t, ok)
		assert.Equal(t, map[string]any{"output": map[string]any{"a": float64(1)}}, obj)
	})

	t.Run("Should ignore braces inside strings", func(t *testing.T) {
		obj, ok := FirstObject(`{"quote": "use {braces} and \"quotes\" }", "n": 2}`)
		require.True(t, ok)
		assert.Equal(t, `use {braces} and "quotes" }`, obj["quote"])
		assert.Equal(t, float64(2), obj["n"])
	})

	t.Run("Should return the first of several objects", func(t *testing.T) {
		obj, ok := FirstObject(`{"first": true} and then {"second": true}`)
		require.True(t, ok)
		assert.Equal(t, map[string]any{"first": true}, obj)
	})

	t.Run("Should skip spans that are not JSON", func(t *testing.T) {
		obj, ok := FirstObject("Template {name} was filled:\n```json\n{\"ok\": true}\n```")
		require.True(t, ok)
		assert.Equal(t, map[string]any{"ok": true}, obj)
	})

	t.Run("Should fail on unbalanced or missing objects", func(t *testing.T) {
		_, ok := FirstObject(`{"a": [1, 2`)
		assert.False(t, ok)
		_, ok = FirstObject("no json here")
		assert.False(t, ok)
	})
}
