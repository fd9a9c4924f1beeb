package tracehist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelBinning(t *testing.T) {
	tests := []struct {
		name   string
		values []int
		want   Binning
	}{
		{"spread", []int{7, 5, 6, 5}, Binning{NBins: 3, Min: 4.5, Max: 7.5}},
		{"single", []int{42}, Binning{NBins: 1, Min: 41.5, Max: 42.5}},
		{"gap", []int{100, 110}, Binning{NBins: 11, Min: 99.5, Max: 110.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ChannelBinning(tt.values)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, 1.0, got.BinWidth())
		})
	}
}

func TestTimeBinning(t *testing.T) {
	got, ok := TimeBinning([]int{10, 13, 11, 13})
	require.True(t, ok)
	assert.Equal(t, Binning{NBins: 3, Min: 10, Max: 13}, got)

	// a single tick boundary still gives one bin
	got, ok = TimeBinning([]int{8, 8})
	require.True(t, ok)
	assert.Equal(t, Binning{NBins: 1, Min: 8, Max: 9}, got)
}

func TestBinningEmpty(t *testing.T) {
	_, ok := TimeBinning(nil)
	assert.False(t, ok)
	_, ok = ChannelBinning([]int{})
	assert.False(t, ok)
}

func TestBinningBin(t *testing.T) {
	b := Binning{NBins: 3, Min: 4.5, Max: 7.5}
	assert.Equal(t, 0, b.Bin(5))
	assert.Equal(t, 1, b.Bin(6))
	assert.Equal(t, 2, b.Bin(7))
	assert.Equal(t, -1, b.Bin(4))
	assert.Equal(t, 3, b.Bin(8))
	assert.Equal(t, 3, b.Bin(7.5))
	assert.Equal(t, 6.0, b.Center(1))
}

func TestBinningRebin(t *testing.T) {
	b := Binning{NBins: 10, Min: 0, Max: 10}
	assert.Equal(t, b, b.Rebin(1))
	assert.Equal(t, Binning{NBins: 5, Min: 0, Max: 10}, b.Rebin(2))
	// one tick left over: the axis ends with the last whole group
	assert.Equal(t, Binning{NBins: 3, Min: 0, Max: 9}, b.Rebin(3))
	assert.Equal(t, 3.0, b.Rebin(3).BinWidth())
	assert.Equal(t, Binning{NBins: 1, Min: 0, Max: 20}, b.Rebin(20))
}

func TestBinningClosed(t *testing.T) {
	got, ok := TimeBinning([]int{10, 13})
	require.True(t, ok)
	assert.Equal(t, Binning{NBins: 4, Min: 10, Max: 14}, got.Closed())
}
