package tracehist

import "errors"

// GridSink persists finished grids. Finalize is called once per grid, after
// which the grid is not modified again.
type GridSink interface {
	Finalize(frame int, grid *Grid) error
}

// MultiSink forwards every grid to all of its sinks.
type MultiSink struct {
	sinks []GridSink
}

func NewMultiSink(sinks ...GridSink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) Finalize(frame int, grid *Grid) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Finalize(frame, grid); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// FrameGrid is a grid stored by MemorySink.
type FrameGrid struct {
	Frame int
	Grid  *Grid
}

// MemorySink keeps the finalized grids in memory, in finalization order.
type MemorySink struct {
	Grids []FrameGrid
}

func (m *MemorySink) Finalize(frame int, grid *Grid) error {
	m.Grids = append(m.Grids, FrameGrid{Frame: frame, Grid: grid})
	return nil
}

// Get returns the grid called name of the given frame.
func (m *MemorySink) Get(frame int, name string) (*Grid, bool) {
	for _, fg := range m.Grids {
		if fg.Frame == frame && fg.Grid.Name == name {
			return fg.Grid, true
		}
	}
	return nil, false
}

// Names lists the grid names in finalization order.
func (m *MemorySink) Names() []string {
	names := make([]string, len(m.Grids))
	for i, fg := range m.Grids {
		names[i] = fg.Grid.Name
	}
	return names
}
