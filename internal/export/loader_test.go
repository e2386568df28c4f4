package export

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLoader(t *testing.T, files map[string]string) (*Loader, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}
	l, err := NewLoader(fs, 2)
	require.NoError(t, err)
	return l, fs
}

func TestLoader_Load(t *testing.T) {
	l, _ := newTestLoader(t, map[string]string{"/cov/export.json": sampleExport})

	e, err := l.Load("/cov/export.json")
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", e.Version())
	assert.Equal(t, 1, l.Cached())

	again, err := l.Load("/cov/export.json")
	require.NoError(t, err)
	assert.Same(t, e, again, "unchanged file should be served from cache")
}

func TestLoader_ReloadsChangedFile(t *testing.T) {
	l, fs := newTestLoader(t, map[string]string{"/cov/export.json": sampleExport})

	first, err := l.Load("/cov/export.json")
	require.NoError(t, err)

	updated := `{"type": "llvm.coverage.json.export", "version": "2.0.0", "data": [{"files": [{"filename": "/src/new.c", "segments": []}]}]}`
	require.NoError(t, afero.WriteFile(fs, "/cov/export.json", []byte(updated), 0o644))
	require.NoError(t, fs.Chtimes("/cov/export.json", time.Now(), time.Now().Add(time.Minute)))

	second, err := l.Load("/cov/export.json")
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, []string{"/src/new.c"}, second.Filenames())

	l.Purge()
	assert.Equal(t, 0, l.Cached())
}

func TestLoader_Errors(t *testing.T) {
	l, _ := newTestLoader(t, map[string]string{
		"/cov/old.json": `{"type": "llvm.coverage.json.export", "version": "1.0.0"}`,
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := l.Load("/cov/missing.json")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to stat coverage export")
	})

	t.Run("unsupported version is not cached", func(t *testing.T) {
		_, err := l.Load("/cov/old.json")
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
		assert.Contains(t, err.Error(), "/cov/old.json")
		assert.Equal(t, 0, l.Cached())
	})
}

func TestLoader_LoadMapping(t *testing.T) {
	l, _ := newTestLoader(t, map[string]string{"/cov/export.json": sampleExport})

	m, err := l.LoadMapping("/cov/export.json", "/src/other.c")
	require.NoError(t, err)
	count, ok := m.LineCount(1)
	require.True(t, ok)
	assert.Equal(t, uint64(3), count)

	_, err = l.LoadMapping("/cov/export.json", "/src/none.c")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestNewLoader_DefaultCacheSize(t *testing.T) {
	l, err := NewLoader(afero.NewMemMapFs(), 0)
	require.NoError(t, err)
	assert.NotNil(t, l)
}
