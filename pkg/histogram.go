package tracehist

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Grid holds the accumulated charge of one plane for one tag, indexed by
// (channel bin, time bin).
type Grid struct {
	Name    string
	Tag     string
	Plane   int
	NTraces int
	// Channels is the channel axis, one bin per channel.
	Channels Binning
	// Ticks is the raw tick axis the grid was accumulated on.
	Ticks Binning
	// Time is Ticks merged by Rebin.
	Time  Binning
	Rebin int

	values *mat.Dense
	// overflow collects, per channel, the ticks past the last whole
	// rebinned time bin.
	overflow []float64
}

// NewGrid returns a zeroed grid over the given channel and tick axes with
// the time axis rebinned by rebin.
func NewGrid(name string, channels, ticks Binning, rebin int) *Grid {
	if rebin < 1 {
		rebin = 1
	}
	time := ticks.Rebin(rebin)
	return &Grid{
		Name:     name,
		Channels: channels,
		Ticks:    ticks,
		Time:     time,
		Rebin:    rebin,
		values:   mat.NewDense(channels.NBins, time.NBins, nil),
		overflow: make([]float64, channels.NBins),
	}
}

// Dims returns the number of channel and time bins.
func (g *Grid) Dims() (int, int) {
	return g.values.Dims()
}

// At returns the content of channel bin c and time bin t.
func (g *Grid) At(c, t int) float64 {
	return g.values.At(c, t)
}

// Row returns a copy of the time bins of channel bin c.
func (g *Grid) Row(c int) []float64 {
	return mat.Row(nil, c, g.values)
}

// Overflow returns the truncated final bin of channel bin c.
func (g *Grid) Overflow(c int) float64 {
	return g.overflow[c]
}

// Data returns a row-major copy of the grid contents.
func (g *Grid) Data() []float64 {
	rows, cols := g.values.Dims()
	data := make([]float64, 0, rows*cols)
	for c := 0; c < rows; c++ {
		data = append(data, g.values.RawRowView(c)...)
	}
	return data
}

// OverflowData returns a copy of the overflow column.
func (g *Grid) OverflowData() []float64 {
	data := make([]float64, len(g.overflow))
	copy(data, g.overflow)
	return data
}

// Sum returns the total content of the in-range bins.
func (g *Grid) Sum() float64 {
	return mat.Sum(g.values)
}

// Truncated reports whether rebinning left trailing ticks outside the time
// axis. Only then can the overflow column hold anything, whatever its sum.
func (g *Grid) Truncated() bool {
	return g.Ticks.NBins > g.Time.NBins*g.Rebin
}

// OverflowSum returns the total content of the overflow column.
func (g *Grid) OverflowSum() float64 {
	return floats.Sum(g.overflow)
}

func (g *Grid) add(c, t int, value float64) {
	if _, cols := g.values.Dims(); t >= cols {
		g.overflow[c] += value
		return
	}
	g.values.Set(c, t, g.values.At(c, t)+value)
}

// Accumulate sums the charge of traces into g. Every trace must lie inside
// the channel and tick axes of the grid; anything else is a binning bug and
// panics.
func (g *Grid) Accumulate(traces []Trace) {
	tmin := int(g.Ticks.Min)
	for _, trace := range traces {
		cbin := g.Channels.Bin(float64(trace.Channel))
		if cbin < 0 || cbin >= g.Channels.NBins {
			panic(fmt.Sprintf("channel %d outside binning %v of grid %s", trace.Channel, g.Channels, g.Name))
		}
		for itick, charge := range trace.Charge {
			raw := trace.TBin - tmin + itick
			if raw < 0 || raw >= g.Ticks.NBins {
				panic(fmt.Sprintf("tick %d of channel %d outside binning %v of grid %s",
					trace.TBin+itick, trace.Channel, g.Ticks, g.Name))
			}
			g.add(cbin, raw/g.Rebin, float64(charge))
		}
	}
}

// Accumulate builds the grid of one plane from its traces, its channel
// binning, the shared tick binning and the rebin factor.
func Accumulate(name string, traces []Trace, channels, ticks Binning, rebin int) *Grid {
	g := NewGrid(name, channels, ticks, rebin)
	g.Accumulate(traces)
	return g
}
