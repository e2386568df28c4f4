package render

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zjy-dev/covlens/internal/coverage"
)

func TestState_Lifecycle(t *testing.T) {
	st := NewState()
	assert.False(t, st.Active())
	assert.Nil(t, st.Mapping())
	assert.Equal(t, "", st.DisplayValue(1))
	assert.Equal(t, 4, st.GutterWidth())

	first := sampleMapping()
	st.Load(first)
	assert.True(t, st.Active())
	assert.Same(t, first, st.Mapping())
	assert.Len(t, st.Regions(), 1)

	second := coverage.NewFileMapping("f.c", nil)
	assert.True(t, st.Replace(second))
	assert.Same(t, second, st.Mapping())
	assert.Empty(t, st.Regions())

	st.Dispose()
	assert.False(t, st.Active())
	assert.False(t, st.Replace(first))
}

func TestState_DisplayValue(t *testing.T) {
	st := NewState()
	st.Load(sampleMapping())

	assert.Equal(t, "2", st.DisplayValue(1))
	assert.Equal(t, "0", st.DisplayValue(3))
	assert.Equal(t, "", st.DisplayValue(42))

	count, ok := st.LineCount(3)
	assert.True(t, ok)
	assert.Equal(t, uint64(0), count)
}

func TestState_GutterWidth(t *testing.T) {
	st := NewState()
	st.Load(coverage.NewFileMapping("w.c", []coverage.Segment{
		{Line: 1, Col: 1, Count: 1234567, HasCount: true, IsRegionEntry: true},
		{Line: 2, Col: 1},
	}))

	assert.Equal(t, 7, st.GutterWidth())
}
