package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	tracehist "github.com/next-exp/tracehist_go/pkg"
	"github.com/next-exp/tracehist_go/pkg/writer"
)

var (
	cfgPath  string
	minLevel int
	maxLevel int
	repeat   int
)

var rootCmd = &cobra.Command{
	Use:   "measureLevels",
	Short: "Measure HDF5 write time and file size per deflate level",
	RunE:  run,
}

func init() {
	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Configuration file path")
	rootCmd.Flags().IntVar(&minLevel, "min-level", 0, "First compression level")
	rootCmd.Flags().IntVar(&maxLevel, "max-level", 9, "Last compression level")
	rootCmd.Flags().IntVar(&repeat, "repeat", 3, "Writes per compression level")
	rootCmd.MarkFlagRequired("config")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	configuration, err := tracehist.LoadConfiguration(cfgPath)
	if err != nil {
		return fmt.Errorf("error reading configuration file: %w", err)
	}
	if err := configuration.Validate(); err != nil {
		return err
	}

	var resolver tracehist.PlaneResolver
	if configuration.NoDB {
		resolver, err = tracehist.NewRangeResolver(configuration.Planes)
	} else {
		resolver, err = loadResolverFromDB(configuration)
	}
	if err != nil {
		return err
	}

	start := time.Now()
	grids, err := histogramFile(configuration, resolver)
	if err != nil {
		return err
	}
	fmt.Printf("Grids produced: %d in %d ms\n", len(grids.Grids), time.Since(start).Milliseconds())

	for level := minLevel; level <= maxLevel; level++ {
		for i := 0; i < repeat; i++ {
			start := time.Now()
			if err := writeGrids(configuration.OutputFilename, level, grids); err != nil {
				return err
			}
			duration := time.Since(start)
			fileInfo, err := os.Stat(configuration.OutputFilename)
			if err != nil {
				fmt.Printf("Error getting file info: %v\n", err)
				continue
			}
			fmt.Printf("(hdf5, comp %d) Time: %d ms, size %d bytes\n", level, duration.Milliseconds(), fileInfo.Size())
		}
	}
	return nil
}

func loadResolverFromDB(configuration tracehist.Configuration) (tracehist.PlaneResolver, error) {
	dbConn, err := tracehist.ConnectToDatabase(configuration.User, configuration.Passwd, configuration.Host, configuration.DBName)
	if err != nil {
		return nil, fmt.Errorf("error connection to database: %w", err)
	}
	defer dbConn.Close()
	return tracehist.LoadChannelPlanes(dbConn, configuration.RunNumber, 0, tracehist.NopLogger)
}

// histogramFile runs the whole input through the processor and keeps the
// grids in memory.
func histogramFile(configuration tracehist.Configuration, resolver tracehist.PlaneResolver) (*tracehist.MemorySink, error) {
	file, err := os.Open(configuration.FileIn)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer file.Close()

	sink := &tracehist.MemorySink{}
	processor := tracehist.NewProcessor(configuration, resolver, sink, tracehist.NopLogger, nil)
	reader := tracehist.NewFileReader(file, configuration, tracehist.NopLogger)
	for {
		frame, err := reader.GetNextFrame()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if err := processor.Process(frame); err != nil {
			return nil, err
		}
	}
	return sink, nil
}

func writeGrids(filename string, level int, grids *tracehist.MemorySink) error {
	w, err := writer.NewWriter(filename, tracehist.ModeRecreate, level)
	if err != nil {
		return err
	}
	for _, fg := range grids.Grids {
		if err := w.Finalize(fg.Frame, fg.Grid); err != nil {
			w.Close()
			return err
		}
	}
	return w.Close()
}
