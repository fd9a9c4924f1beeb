package tracehist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collateOne(t *testing.T, traces []Trace) *Collation {
	t.Helper()
	c, err := CollateByPlane(traces, planeByHundreds{})
	require.NoError(t, err)
	return c
}

func TestAccumulateExample(t *testing.T) {
	traces := []Trace{
		{Channel: 5, TBin: 10, Charge: []float32{1, 1, 1}},
		{Channel: 7, TBin: 11, Charge: []float32{2, 2}},
	}
	c := collateOne(t, traces)
	assert.Equal(t, Binning{NBins: 3, Min: 4.5, Max: 7.5}, c.Channels[0])
	assert.Equal(t, Binning{NBins: 4, Min: 10, Max: 14}, c.Time)

	g := Accumulate("hu_raw", c.ByPlane[0], c.Channels[0], c.Time, 1)
	rows, cols := g.Dims()
	require.Equal(t, 3, rows)
	require.Equal(t, 4, cols)

	assert.Equal(t, []float64{1, 1, 1, 0}, g.Row(c.Channels[0].Bin(5)))
	assert.Equal(t, []float64{0, 0, 0, 0}, g.Row(c.Channels[0].Bin(6)))
	assert.Equal(t, []float64{0, 2, 2, 0}, g.Row(c.Channels[0].Bin(7)))
	assert.Equal(t, 7.0, g.Sum())
}

func TestAccumulateLosslessWithoutRebin(t *testing.T) {
	traces := []Trace{
		{Channel: 3, TBin: 100, Charge: []float32{0.5, 1.5, -2, 4}},
		{Channel: 9, TBin: 98, Charge: []float32{1, 2, 3}},
		{Channel: 3, TBin: 102, Charge: []float32{7, 8, 9}},
		{Channel: 50, TBin: 90, Charge: []float32{0.25}},
	}
	var total float64
	for _, trace := range traces {
		for _, q := range trace.Charge {
			total += float64(q)
		}
	}
	c := collateOne(t, traces)
	g := Accumulate("hu_raw", c.ByPlane[0], c.Channels[0], c.Time, 1)
	assert.InDelta(t, total, g.Sum(), 1e-9)
	assert.Equal(t, 0.0, g.OverflowSum())
}

func TestAccumulateRebinPairs(t *testing.T) {
	traces := []Trace{{Channel: 1, TBin: 0, Charge: []float32{1, 2, 3, 4}}}
	c := collateOne(t, traces)
	g := Accumulate("hu_raw", c.ByPlane[0], c.Channels[0], c.Time, 2)
	_, cols := g.Dims()
	require.Equal(t, 2, cols)
	assert.Equal(t, []float64{3, 7}, g.Row(0))
	assert.Equal(t, Binning{NBins: 2, Min: 0, Max: 4}, g.Time)
	assert.Equal(t, 2.0, g.Time.BinWidth())
	assert.Equal(t, 0.0, g.OverflowSum())
	assert.Equal(t, 2, g.Rebin)
}

func TestAccumulateRebinRemainder(t *testing.T) {
	traces := []Trace{{Channel: 1, TBin: 0, Charge: []float32{1, 2, 3, 4, 5}}}
	c := collateOne(t, traces)
	g := Accumulate("hu_raw", c.ByPlane[0], c.Channels[0], c.Time, 4)
	assert.Equal(t, []float64{10}, g.Row(0))
	// tick 4 falls past the last full group of four
	assert.Equal(t, 5.0, g.Overflow(0))
	assert.Equal(t, []float64{5}, g.OverflowData())
	assert.Equal(t, 15.0, g.Sum()+g.OverflowSum())
	assert.True(t, g.Truncated())
}

func TestAccumulateOverflowCancelling(t *testing.T) {
	traces := []Trace{
		{Channel: 1, TBin: 0, Charge: []float32{1, 1, 1, 1, 5}},
		{Channel: 2, TBin: 0, Charge: []float32{1, 1, 1, 1, -5}},
	}
	c := collateOne(t, traces)
	g := Accumulate("hu_raw", c.ByPlane[0], c.Channels[0], c.Time, 4)
	assert.Equal(t, 0.0, g.OverflowSum())
	assert.Equal(t, []float64{5, -5}, g.OverflowData())
	// the column must be kept even though it sums to zero
	assert.True(t, g.Truncated())
}

func TestGridTruncated(t *testing.T) {
	channels := Binning{NBins: 1, Min: -0.5, Max: 0.5}
	assert.False(t, NewGrid("hu_raw", channels, Binning{NBins: 8, Min: 0, Max: 8}, 1).Truncated())
	assert.False(t, NewGrid("hu_raw", channels, Binning{NBins: 8, Min: 0, Max: 8}, 4).Truncated())
	assert.True(t, NewGrid("hu_raw", channels, Binning{NBins: 9, Min: 0, Max: 9}, 4).Truncated())
	// a single wide bin holds every tick
	assert.False(t, NewGrid("hu_raw", channels, Binning{NBins: 3, Min: 0, Max: 3}, 10).Truncated())
}

func TestAccumulateRebinLargerThanAxis(t *testing.T) {
	traces := []Trace{{Channel: 1, TBin: 0, Charge: []float32{1, 2, 3}}}
	c := collateOne(t, traces)
	g := Accumulate("hu_raw", c.ByPlane[0], c.Channels[0], c.Time, 10)
	_, cols := g.Dims()
	require.Equal(t, 1, cols)
	assert.Equal(t, 6.0, g.At(0, 0))
}

func TestAccumulateOverlapSums(t *testing.T) {
	traces := []Trace{
		{Channel: 4, TBin: 0, Charge: []float32{1, 1, 1}},
		{Channel: 4, TBin: 1, Charge: []float32{10, 10, 10}},
	}
	c := collateOne(t, traces)
	g := Accumulate("hu_raw", c.ByPlane[0], c.Channels[0], c.Time, 1)
	assert.Equal(t, []float64{1, 11, 11, 10, 0}, g.Row(0))
}

func TestAccumulateData(t *testing.T) {
	traces := []Trace{
		{Channel: 0, TBin: 0, Charge: []float32{1, 2}},
		{Channel: 1, TBin: 0, Charge: []float32{3, 4}},
	}
	c := collateOne(t, traces)
	g := Accumulate("hu_raw", c.ByPlane[0], c.Channels[0], c.Time, 1)
	assert.Equal(t, []float64{1, 2, 0, 3, 4, 0}, g.Data())
}

func TestAccumulateOutsideBinningPanics(t *testing.T) {
	channels := Binning{NBins: 1, Min: 4.5, Max: 5.5}
	ticks := Binning{NBins: 2, Min: 0, Max: 2}

	assert.Panics(t, func() {
		Accumulate("hu_raw", []Trace{{Channel: 6, TBin: 0, Charge: []float32{1}}}, channels, ticks, 1)
	})
	assert.Panics(t, func() {
		Accumulate("hu_raw", []Trace{{Channel: 5, TBin: 1, Charge: []float32{1, 1}}}, channels, ticks, 1)
	})
	assert.NotPanics(t, func() {
		Accumulate("hu_raw", []Trace{{Channel: 5, TBin: 0, Charge: []float32{1, 1}}}, channels, ticks, 1)
	})
}
