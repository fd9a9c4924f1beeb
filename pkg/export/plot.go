package export

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	tracehist "github.com/next-exp/tracehist_go/pkg"
)

// gridXYZ presents a grid to plotter.HeatMap with time on x and channel
// on y.
type gridXYZ struct {
	grid *tracehist.Grid
}

func (g gridXYZ) Dims() (c, r int) {
	nChannels, nTimes := g.grid.Dims()
	return nTimes, nChannels
}

func (g gridXYZ) Z(c, r int) float64 {
	return g.grid.At(r, c)
}

func (g gridXYZ) X(c int) float64 {
	return g.grid.Time.Center(c)
}

func (g gridXYZ) Y(r int) float64 {
	return g.grid.Channels.Center(r)
}

// PlotWriter saves every grid as a PNG heat map in Dir.
type PlotWriter struct {
	Dir    string
	Width  vg.Length
	Height vg.Length
}

func NewPlotWriter(dir string) (*PlotWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("error creating plot directory %q: %w", dir, err)
	}
	return &PlotWriter{Dir: dir, Width: 10 * vg.Inch, Height: 6 * vg.Inch}, nil
}

// PlotFilename returns the path of the heat map of grid name in frame.
func (w *PlotWriter) PlotFilename(frame int, name string) string {
	return filepath.Join(w.Dir, fmt.Sprintf("frame%d_%s.png", frame, name))
}

func (w *PlotWriter) Finalize(frame int, grid *tracehist.Grid) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s (frame %d)", grid.Name, frame)
	p.X.Label.Text = "Tick"
	p.Y.Label.Text = "Channel"

	heatMap := plotter.NewHeatMap(gridXYZ{grid: grid}, palette.Heat(12, 1))
	if heatMap.Min == heatMap.Max {
		heatMap.Max = heatMap.Min + 1
	}
	p.Add(heatMap)

	if err := p.Save(w.Width, w.Height, w.PlotFilename(frame, grid.Name)); err != nil {
		return fmt.Errorf("save heat map %q: %w", grid.Name, err)
	}
	return nil
}
