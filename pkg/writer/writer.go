package writer

import (
	"errors"
	"fmt"
	"sort"

	"github.com/jmbenlloch/go-hdf5"
	tracehist "github.com/next-exp/tracehist_go/pkg"
)

// Writer stores grids in an HDF5 file, one group per frame and one 2D
// dataset per grid, plus a /grids index table.
type Writer struct {
	File             *hdf5.File
	Filename         string
	GridsTable       *hdf5.Dataset
	FrameGroups      map[int]*hdf5.Group
	RowCounter       int
	CompressionLevel int
}

// NewWriter opens filename in mode (RECREATE truncates, UPDATE appends).
func NewWriter(filename string, mode string, compressionLevel int) (*Writer, error) {
	// Set string size for HDF5
	hdf5.SetStringLength(STRLEN)

	file, err := openFile(filename, mode)
	if err != nil {
		return nil, &ErrOpenFile{Filename: filename, Err: err}
	}
	table, rows, err := openOrCreateTable(file, "grids", GridInfoHDF5{}, compressionLevel)
	if err != nil {
		file.Close()
		return nil, &ErrCreateTable{TableName: "grids", Err: err}
	}
	return &Writer{
		File:             file,
		Filename:         filename,
		GridsTable:       table,
		FrameGroups:      make(map[int]*hdf5.Group),
		RowCounter:       rows,
		CompressionLevel: compressionLevel,
	}, nil
}

func frameGroupName(frame int) string {
	return fmt.Sprintf("frame_%d", frame)
}

func (w *Writer) frameGroup(frame int) (*hdf5.Group, error) {
	if group, ok := w.FrameGroups[frame]; ok {
		return group, nil
	}
	name := frameGroupName(frame)
	group, err := openOrCreateGroup(w.File, name)
	if err != nil {
		return nil, &ErrCreateGroup{GroupName: name, Err: err}
	}
	w.FrameGroups[frame] = group
	return group, nil
}

// Finalize writes grid under the group of frame.
func (w *Writer) Finalize(frame int, grid *tracehist.Grid) error {
	group, err := w.frameGroup(frame)
	if err != nil {
		return err
	}

	nChannels, nTimes := grid.Dims()
	dset, err := create2dArray(group, grid.Name, nChannels, nTimes, w.CompressionLevel)
	if err != nil {
		return &ErrCreateTable{TableName: grid.Name, Err: err}
	}
	defer dset.Close()

	data := grid.Data()
	if err := dset.Write(&data); err != nil {
		return fmt.Errorf("error writing grid %q: %w", grid.Name, err)
	}
	if err := writeFloatAttribute(dset, "channel_binning", binningAttribute(grid.Channels)); err != nil {
		return err
	}
	if err := writeFloatAttribute(dset, "time_binning", binningAttribute(grid.Time)); err != nil {
		return err
	}
	if err := writeFloatAttribute(dset, "rebin", []float64{float64(grid.Rebin)}); err != nil {
		return err
	}

	if grid.Truncated() {
		if err := w.writeOverflow(group, grid); err != nil {
			return err
		}
	}

	entry := GridInfoHDF5{
		frame:     int32(frame),
		plane:     int32(grid.Plane),
		tag:       convertToHdf5String(grid.Tag),
		name:      convertToHdf5String(grid.Name),
		nchannels: int32(nChannels),
		ntimes:    int32(nTimes),
		rebin:     int32(grid.Rebin),
		sum:       grid.Sum(),
		overflow:  grid.OverflowSum(),
		truncated: boolToInt32(grid.Truncated()),
	}
	if err := writeEntryToTable(w.GridsTable, entry, w.RowCounter); err != nil {
		return fmt.Errorf("error writing grids table: %w", err)
	}
	w.RowCounter++
	return nil
}

func (w *Writer) writeOverflow(group *hdf5.Group, grid *tracehist.Grid) error {
	name := grid.Name + "_overflow"
	data := grid.OverflowData()
	dset, err := create1dArray(group, name, len(data), w.CompressionLevel)
	if err != nil {
		return &ErrCreateTable{TableName: name, Err: err}
	}
	defer dset.Close()
	if err := dset.Write(&data); err != nil {
		return fmt.Errorf("error writing overflow of %q: %w", grid.Name, err)
	}
	return nil
}

func (w *Writer) Close() error {
	var errs []error

	frames := make([]int, 0, len(w.FrameGroups))
	for frame := range w.FrameGroups {
		frames = append(frames, frame)
	}
	sort.Ints(frames)
	for _, frame := range frames {
		if err := w.FrameGroups[frame].Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing group of frame %d: %w", frame, err))
		}
	}
	if err := w.GridsTable.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing grids table: %w", err))
	}
	if err := w.File.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing file: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
