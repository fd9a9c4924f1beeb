// Package export writes grids in formats meant for inspection: ROOT files
// holding 2D histograms and PNG heat maps.
package export

import (
	"fmt"

	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/rhist"
	"go-hep.org/x/hep/groot/riofs"
	"go-hep.org/x/hep/hbook"

	tracehist "github.com/next-exp/tracehist_go/pkg"
)

// ROOTWriter stores every grid as a TH2D under a directory per frame.
type ROOTWriter struct {
	Filename string
	file     *riofs.File
	dir      riofs.Directory
	frames   map[int]bool
}

func NewROOTWriter(filename string) (*ROOTWriter, error) {
	f, err := groot.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("error creating ROOT file %q: %w", filename, err)
	}
	return &ROOTWriter{
		Filename: filename,
		file:     f,
		dir:      riofs.Dir(f),
		frames:   make(map[int]bool),
	}, nil
}

// ToH2D converts grid to a histogram with channels on x and time on y.
// The overflow column is not part of it, see OverflowH1D.
func ToH2D(grid *tracehist.Grid) *hbook.H2D {
	h := hbook.NewH2D(
		grid.Channels.NBins, grid.Channels.Min, grid.Channels.Max,
		grid.Time.NBins, grid.Time.Min, grid.Time.Max,
	)
	h.Annotation()["name"] = grid.Name
	h.Annotation()["title"] = grid.Name

	nChannels, _ := grid.Dims()
	for c := 0; c < nChannels; c++ {
		x := grid.Channels.Center(c)
		for t, value := range grid.Row(c) {
			if value != 0 {
				h.Fill(x, grid.Time.Center(t), value)
			}
		}
	}
	return h
}

// OverflowH1D holds, per channel, the ticks the rebinned time axis could
// not hold.
func OverflowH1D(grid *tracehist.Grid) *hbook.H1D {
	name := grid.Name + "_overflow"
	h := hbook.NewH1D(grid.Channels.NBins, grid.Channels.Min, grid.Channels.Max)
	h.Annotation()["name"] = name
	h.Annotation()["title"] = name
	for c, value := range grid.OverflowData() {
		if value != 0 {
			h.Fill(grid.Channels.Center(c), value)
		}
	}
	return h
}

func (w *ROOTWriter) Finalize(frame int, grid *tracehist.Grid) error {
	dirName := fmt.Sprintf("frame_%d", frame)
	if !w.frames[frame] {
		if _, err := w.dir.Mkdir(dirName); err != nil {
			return fmt.Errorf("error creating directory %q: %w", dirName, err)
		}
		w.frames[frame] = true
	}
	h := rhist.NewH2DFrom(ToH2D(grid))
	if err := w.dir.Put(dirName+"/"+grid.Name, h); err != nil {
		return fmt.Errorf("error writing %q: %w", grid.Name, err)
	}
	if grid.Truncated() {
		overflow := OverflowH1D(grid)
		if err := w.dir.Put(dirName+"/"+overflow.Name(), rhist.NewH1DFrom(overflow)); err != nil {
			return fmt.Errorf("error writing %q: %w", overflow.Name(), err)
		}
	}
	return nil
}

func (w *ROOTWriter) Close() error {
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("error closing ROOT file %q: %w", w.Filename, err)
	}
	return nil
}
