package tplengine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasTemplate(t *testing.T) {
	t.Run("Should detect template markers", func(t *testing.T) {
		assert.False(t, HasTemplate(""))
		assert.False(t, HasTemplate("plain text"))
		assert.False(t, HasTemplate("Hello {not tmpl}"))
		assert.True(t, HasTemplate("Hello {{ .name }}"))
		assert.True(t, HasTemplate("Hello {{- .name -}}"))
	})
}

func TestTemplateEngine_Render(t *testing.T) {
	t.Run("Should render registered templates", func(t *testing.T) {
		e := NewEngine(FormatText)
		require.NoError(t, e.AddTemplate("hello", "Hello {{ .name }}"))
		got, err := e.Render("hello", map[string]any{"name": "World"})
		require.NoError(t, err)
		assert.Equal(t, "Hello World", got)
	})

	t.Run("Should fail on unknown templates", func(t *testing.T) {
		_, err := NewEngine(FormatText).Render("missing", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "template not found")
	})

	t.Run("Should fail on missing keys", func(t *testing.T) {
		e := NewEngine(FormatText)
		require.NoError(t, e.AddTemplate("strict", "{{ .absent }}"))
		_, err := e.Render("strict", map[string]any{})
		require.Error(t, err)
	})

	t.Run("Should expose sprig functions", func(t *testing.T) {
		out, err := NewEngine(FormatText).RenderString(`{{ upper .v }} {{ list 1 2 | toJson }}`, map[string]any{"v": "ok"})
		require.NoError(t, err)
		assert.Equal(t, "OK [1,2]", out)
	})

	t.Run("Should merge global values under request values", func(t *testing.T) {
		e := NewEngine(FormatText)
		e.AddGlobalValue("product", "Plexify")
		e.AddGlobalValue("tone", "neutral")
		out, err := e.RenderString("{{ .product }}/{{ .tone }}", map[string]any{"tone": "formal"})
		require.NoError(t, err)
		assert.Equal(t, "Plexify/formal", out)
	})

	t.Run("Should return plain strings untouched", func(t *testing.T) {
		out, err := NewEngine(FormatJSON).RenderString("no templates here", nil)
		require.NoError(t, err)
		assert.Equal(t, "no templates here", out)
	})

	t.Run("Should render concurrently", func(t *testing.T) {
		e := NewEngine(FormatText).MustAddTemplate("n", "{{ .n }}")
		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := e.Render("n", map[string]any{"n": 1})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()
	})
}

func TestClip(t *testing.T) {
	t.Run("Should clip by runes", func(t *testing.T) {
		assert.Equal(t, "héll", Clip(4, "héllo"))
		assert.Equal(t, "short", Clip(10, "short"))
		assert.Equal(t, "", Clip(0, "text"))
	})

	t.Run("Should be usable from templates", func(t *testing.T) {
		out, err := NewEngine(FormatText).RenderString(`{{ clip 3 .s }}`, map[string]any{"s": "abcdef"})
		require.NoError(t, err)
		assert.Equal(t, "abc", out)
	})
}
