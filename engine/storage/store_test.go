package storage

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Save(t *testing.T) {
	t.Run("Should write under the root and return the public url", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		s := NewStore(fs, "public")
		url, err := s.Save(t.Context(), "audio", "Q3 Board Brief.mp3", []byte("mp3"))
		require.NoError(t, err)
		assert.Equal(t, "/audio/q3-board-brief.mp3", url)
		data, err := afero.ReadFile(fs, "public/audio/q3-board-brief.mp3")
		require.NoError(t, err)
		assert.Equal(t, []byte("mp3"), data)

		back, err := s.Open(url)
		require.NoError(t, err)
		assert.Equal(t, []byte("mp3"), back)
	})

	t.Run("Should keep traversal inside the root", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		s := NewStore(fs, "public")
		url, err := s.Save(t.Context(), "../../etc", "../passwd", []byte("x"))
		require.NoError(t, err)
		assert.Equal(t, "/etc/passwd", url)
		exists, err := afero.Exists(fs, "public/etc/passwd")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("Should stop on a cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		_, err := NewStore(afero.NewMemMapFs(), "public").Save(ctx, "audio", "a.mp3", nil)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestSafeName(t *testing.T) {
	t.Run("Should slugify and fall back", func(t *testing.T) {
		assert.Equal(t, "board-brief.docx", SafeName("Board Brief.DOCX", "x"))
		assert.Equal(t, "board-brief", SafeName("   ", "Board Brief"))
		assert.Equal(t, "report", SafeName("report.t@r", "x"))
	})
}
