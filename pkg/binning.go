package tracehist

import (
	"fmt"
	"math"
)

// Binning describes a 1D axis of NBins equal bins over [Min, Max).
type Binning struct {
	NBins int
	Min   float64
	Max   float64
}

func (b Binning) String() string {
	return fmt.Sprintf("%d[%g,%g]", b.NBins, b.Min, b.Max)
}

// BinWidth returns the width of one bin.
func (b Binning) BinWidth() float64 {
	return (b.Max - b.Min) / float64(b.NBins)
}

// Bin returns the index of the bin holding x. Values below Min give -1 and
// values at or above Max give NBins.
func (b Binning) Bin(x float64) int {
	if x < b.Min {
		return -1
	}
	if x >= b.Max {
		return b.NBins
	}
	i := int(math.Floor((x - b.Min) / b.BinWidth()))
	if i >= b.NBins {
		// rounding at the upper edge
		i = b.NBins - 1
	}
	return i
}

// Center returns the center of bin i.
func (b Binning) Center(i int) float64 {
	return b.Min + (float64(i)+0.5)*b.BinWidth()
}

// Rebin merges every n consecutive bins. Trailing bins that do not fill a
// whole group are dropped from the axis and Max moves down to the end of
// the last group. An axis shorter than n gives one bin n wide.
func (b Binning) Rebin(n int) Binning {
	if n <= 1 {
		return b
	}
	nbins := b.NBins / n
	if nbins < 1 {
		nbins = 1
	}
	return Binning{NBins: nbins, Min: b.Min, Max: b.Min + float64(nbins*n)*b.BinWidth()}
}

// Closed appends one unit bin past Max so that a tick sitting on the upper
// boundary still has a bin.
func (b Binning) Closed() Binning {
	return Binning{NBins: b.NBins + 1, Min: b.Min, Max: b.Max + b.BinWidth()}
}

func minMax(values []int) (int, int) {
	vmin, vmax := values[0], values[0]
	for _, v := range values[1:] {
		if v < vmin {
			vmin = v
		}
		if v > vmax {
			vmax = v
		}
	}
	return vmin, vmax
}

// TimeBinning builds a unit-width half-open tick axis [min, max). It
// reports false when values is empty.
func TimeBinning(values []int) (Binning, bool) {
	if len(values) == 0 {
		return Binning{}, false
	}
	vmin, vmax := minMax(values)
	if vmax == vmin {
		vmax = vmin + 1
	}
	return Binning{NBins: vmax - vmin, Min: float64(vmin), Max: float64(vmax)}, true
}

// ChannelBinning builds an axis with one bin centered on every channel
// between the smallest and largest value. It reports false when values is
// empty.
func ChannelBinning(values []int) (Binning, bool) {
	if len(values) == 0 {
		return Binning{}, false
	}
	vmin, vmax := minMax(values)
	return Binning{NBins: vmax - vmin + 1, Min: float64(vmin) - 0.5, Max: float64(vmax) + 0.5}, true
}
