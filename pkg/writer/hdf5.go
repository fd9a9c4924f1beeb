package writer

import (
	"errors"
	"fmt"
	"os"

	"github.com/jmbenlloch/go-hdf5"
	tracehist "github.com/next-exp/tracehist_go/pkg"
)

type GridInfoHDF5 struct {
	frame     int32
	plane     int32
	tag       [STRLEN]byte
	name      [STRLEN]byte
	nchannels int32
	ntimes    int32
	rebin     int32
	sum       float64
	overflow  float64
	// set when a <name>_overflow dataset sits next to the grid
	truncated int32
}

const STRLEN = 32

func convertToHdf5String(s string) [STRLEN]byte {
	var byteArray [STRLEN]byte
	copy(byteArray[:], s)
	return byteArray
}

func boolToInt32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

func openFile(fname string, mode string) (*hdf5.File, error) {
	if mode == tracehist.ModeUpdate {
		if _, err := os.Stat(fname); err == nil {
			return hdf5.OpenFile(fname, hdf5.F_ACC_RDWR)
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	return hdf5.CreateFile(fname, hdf5.F_ACC_TRUNC)
}

func openOrCreateGroup(file *hdf5.File, groupName string) (*hdf5.Group, error) {
	if file.LinkExists(groupName) {
		return file.OpenGroup(groupName)
	}
	return file.CreateGroup(groupName)
}

func setCompression(plist *hdf5.PropList, chunks []uint, compressionLevel int) error {
	if err := plist.SetChunk(chunks); err != nil {
		return err
	}
	if compressionLevel > 0 {
		return plist.SetDeflate(compressionLevel)
	}
	return nil
}

func create2dArray(group *hdf5.Group, name string, nRows int, nCols int, compressionLevel int) (*hdf5.Dataset, error) {
	dims := []uint{uint(nRows), uint(nCols)}
	chunks := []uint{uint(min(nRows, 128)), uint(min(nCols, 4096))}
	return createArray(group, name, dims, chunks, compressionLevel)
}

func create1dArray(group *hdf5.Group, name string, n int, compressionLevel int) (*hdf5.Dataset, error) {
	dims := []uint{uint(n)}
	chunks := []uint{uint(min(n, 32768))}
	return createArray(group, name, dims, chunks, compressionLevel)
}

func createArray(group *hdf5.Group, name string, dims []uint, chunks []uint, compressionLevel int) (*hdf5.Dataset, error) {
	fileSpace, err := hdf5.CreateSimpleDataspace(dims, nil)
	if err != nil {
		return nil, err
	}
	defer fileSpace.Close()

	plist, err := hdf5.NewPropList(hdf5.P_DATASET_CREATE)
	if err != nil {
		return nil, err
	}
	defer plist.Close()

	if err := setCompression(plist, chunks, compressionLevel); err != nil {
		return nil, err
	}
	return group.CreateDatasetWith(name, hdf5.T_NATIVE_DOUBLE, fileSpace, plist)
}

func createTable(file *hdf5.File, name string, datatype interface{}, compressionLevel int) (*hdf5.Dataset, error) {
	dims := []uint{0}
	unlimitedDims := -1 // H5S_UNLIMITED is -1L
	maxDims := []uint{uint(unlimitedDims)}
	fileSpace, err := hdf5.CreateSimpleDataspace(dims, maxDims)
	if err != nil {
		return nil, err
	}
	defer fileSpace.Close()

	plist, err := hdf5.NewPropList(hdf5.P_DATASET_CREATE)
	if err != nil {
		return nil, err
	}
	defer plist.Close()

	if err := setCompression(plist, []uint{1024}, compressionLevel); err != nil {
		return nil, err
	}

	dtype, err := hdf5.NewDatatypeFromValue(datatype)
	if err != nil {
		return nil, err
	}
	return file.CreateDatasetWith(name, dtype, fileSpace, plist)
}

// openOrCreateTable returns the table and the number of rows it holds.
func openOrCreateTable(file *hdf5.File, name string, datatype interface{}, compressionLevel int) (*hdf5.Dataset, int, error) {
	if !file.LinkExists(name) {
		dset, err := createTable(file, name, datatype, compressionLevel)
		return dset, 0, err
	}
	dset, err := file.OpenDataset(name)
	if err != nil {
		return nil, 0, err
	}
	space := dset.Space()
	defer space.Close()
	dims, _, err := space.SimpleExtentDims()
	if err != nil {
		dset.Close()
		return nil, 0, err
	}
	return dset, int(dims[0]), nil
}

func writeEntryToTable[T any](dataset *hdf5.Dataset, data T, rowCounter int) error {
	array := []T{data}
	return writeArrayToTable(dataset, &array, rowCounter)
}

func writeArrayToTable[T any](dataset *hdf5.Dataset, data *[]T, rowCounter int) error {
	length := uint(len(*data))
	dataspace, err := hdf5.CreateSimpleDataspace([]uint{length}, nil)
	if err != nil {
		return err
	}
	defer dataspace.Close()

	// extend
	rowsInFile := uint(rowCounter)
	if err := dataset.Resize([]uint{rowsInFile + length}); err != nil {
		return err
	}
	filespace := dataset.Space()
	defer filespace.Close()

	start := []uint{rowsInFile}
	count := []uint{length}
	if err := filespace.SelectHyperslab(start, nil, count, nil); err != nil {
		return err
	}
	return dataset.WriteSubset(data, dataspace, filespace)
}

func writeFloatAttribute(dataset *hdf5.Dataset, name string, values []float64) error {
	space, err := hdf5.CreateSimpleDataspace([]uint{uint(len(values))}, nil)
	if err != nil {
		return err
	}
	defer space.Close()

	attr, err := dataset.CreateAttribute(name, hdf5.T_NATIVE_DOUBLE, space)
	if err != nil {
		return fmt.Errorf("error creating attribute %q: %w", name, err)
	}
	defer attr.Close()
	return attr.Write(&values, hdf5.T_NATIVE_DOUBLE)
}

func binningAttribute(b tracehist.Binning) []float64 {
	return []float64{float64(b.NBins), b.Min, b.Max}
}
