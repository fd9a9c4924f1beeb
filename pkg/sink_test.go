package tracehist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultiSink(t *testing.T) {
	first, second := &MemorySink{}, &MemorySink{}
	sink := NewMultiSink(first, second)

	grid := NewGrid("hu_raw", Binning{NBins: 1, Min: -0.5, Max: 0.5}, Binning{NBins: 1, Min: 0, Max: 1}, 1)
	require.NoError(t, sink.Finalize(3, grid))
	assert.Equal(t, []FrameGrid{{Frame: 3, Grid: grid}}, first.Grids)
	assert.Equal(t, first.Grids, second.Grids)
}

func TestMultiSinkJoinsErrors(t *testing.T) {
	memory := &MemorySink{}
	sink := NewMultiSink(failingSink{}, memory, failingSink{})

	grid := NewGrid("hu_raw", Binning{NBins: 1, Min: -0.5, Max: 0.5}, Binning{NBins: 1, Min: 0, Max: 1}, 1)
	err := sink.Finalize(0, grid)
	assert.ErrorContains(t, err, "disk full")
	// the healthy sink still received the grid
	assert.Len(t, memory.Grids, 1)
}

func TestMemorySinkGet(t *testing.T) {
	sink := &MemorySink{}
	a := NewGrid("hu_raw", Binning{NBins: 1, Min: -0.5, Max: 0.5}, Binning{NBins: 1, Min: 0, Max: 1}, 1)
	b := NewGrid("hu_raw", Binning{NBins: 1, Min: -0.5, Max: 0.5}, Binning{NBins: 1, Min: 0, Max: 1}, 1)
	require.NoError(t, sink.Finalize(1, a))
	require.NoError(t, sink.Finalize(2, b))

	got, ok := sink.Get(2, "hu_raw")
	require.True(t, ok)
	assert.Same(t, b, got)
	_, ok = sink.Get(3, "hu_raw")
	assert.False(t, ok)
}
