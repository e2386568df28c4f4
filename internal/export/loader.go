package export

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/spf13/afero"

	"github.com/zjy-dev/covlens/internal/coverage"
	"github.com/zjy-dev/covlens/internal/logger"
)

// DefaultCacheSize is the number of parsed exports a Loader keeps.
const DefaultCacheSize = 8

// Loader reads exports from a filesystem and caches the parsed result.
// A cached entry is reused only while the file's size and mtime are unchanged.
type Loader struct {
	fs    afero.Fs
	cache *lru.Cache[string, *Export]
}

// NewLoader creates a Loader over fs. A cacheSize below 1 uses DefaultCacheSize.
func NewLoader(fs afero.Fs, cacheSize int) (*Loader, error) {
	if cacheSize < 1 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, *Export](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create export cache: %w", err)
	}
	return &Loader{fs: fs, cache: cache}, nil
}

// NewOsLoader creates a Loader over the host filesystem.
func NewOsLoader(cacheSize int) (*Loader, error) {
	return NewLoader(afero.NewOsFs(), cacheSize)
}

// Load reads and parses the export at path.
func (l *Loader) Load(path string) (*Export, error) {
	info, err := l.fs.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat coverage export: %w", err)
	}
	key := fmt.Sprintf("%s:%d:%d", path, info.Size(), info.ModTime().UnixNano())
	if e, ok := l.cache.Get(key); ok {
		logger.Debug("[Export] Cache hit for %s", path)
		return e, nil
	}

	logger.Debug("[Export] Reading %s (%d bytes)", path, info.Size())
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read coverage export: %w", err)
	}

	e, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	l.cache.Add(key, e)
	return e, nil
}

// LoadMapping loads the export at path and builds the mapping for filename.
func (l *Loader) LoadMapping(path, filename string) (*coverage.FileMapping, error) {
	e, err := l.Load(path)
	if err != nil {
		return nil, err
	}
	m, err := e.Mapping(filename)
	if err != nil {
		return nil, err
	}
	logger.Info("[Coverage] Loaded %s: %d counted lines, max count %d", filename, m.Lines(), m.MaxCount())
	return m, nil
}

// Cached returns the number of parsed exports currently held.
func (l *Loader) Cached() int {
	return l.cache.Len()
}

// Purge drops every cached export.
func (l *Loader) Purge() {
	l.cache.Purge()
}
