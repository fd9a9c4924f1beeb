package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	tracehist "github.com/next-exp/tracehist_go/pkg"
	"github.com/next-exp/tracehist_go/pkg/export"
	"github.com/next-exp/tracehist_go/pkg/writer"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:          "tracehist [frames.json]",
	Short:        "Histogram tagged detector traces per wire plane",
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "Configuration file path")
	rootCmd.MarkPersistentFlagRequired("config")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	logger := NewLogger(os.Stdout, os.Stderr)

	configuration, err := tracehist.LoadConfiguration(cfgPath)
	if err != nil {
		message := fmt.Errorf("Error reading configuration file: %w", err)
		logger.Error(message.Error())
		return message
	}
	if len(args) == 1 {
		configuration.FileIn = args[0]
	}
	if err := configuration.Validate(); err != nil {
		logger.Error(err.Error())
		return err
	}

	if configuration.Verbosity > 0 {
		logger.Info(fmt.Sprintf("Reading configuration file: %s", cfgPath), "main")
		tracehist.PrintConfiguration(configuration, logger)
	}
	if len(configuration.Shunt) > 0 {
		logger.Warn(fmt.Sprintf("shunt requested for %v, objects are not copied", configuration.Shunt), "main")
	}
	if len(configuration.Summaries) > 0 {
		logger.Warn(fmt.Sprintf("summaries requested for %v, trace summaries are not histogrammed", configuration.Summaries), "main")
	}

	resolver, err := buildResolver(configuration, logger)
	if err != nil {
		message := fmt.Errorf("Error building channel map: %w", err)
		logger.Error(message.Error())
		return message
	}

	sink, closers, err := openSinks(configuration)
	if err != nil {
		message := fmt.Errorf("Error opening output: %w", err)
		logger.Error(message.Error())
		return message
	}

	metrics := tracehist.NewMetrics()
	nFrames, err := processFile(configuration, resolver, sink, logger, metrics)

	var errs []error
	if err != nil {
		errs = append(errs, err)
	}
	for _, c := range closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if configuration.MetricsFile != "" {
		if err := metrics.WriteTextfile(configuration.MetricsFile); err != nil {
			errs = append(errs, fmt.Errorf("error writing metrics: %w", err))
		}
	}
	if len(errs) > 0 {
		err := errors.Join(errs...)
		logger.Error(err.Error())
		return err
	}
	logger.Info(fmt.Sprintf("Total frames processed: %d", nFrames), "main")
	return nil
}

func buildResolver(configuration tracehist.Configuration, logger Logger) (tracehist.PlaneResolver, error) {
	if configuration.NoDB {
		return tracehist.NewRangeResolver(configuration.Planes)
	}
	dbConn, err := tracehist.ConnectToDatabase(configuration.User, configuration.Passwd, configuration.Host, configuration.DBName)
	if err != nil {
		return nil, fmt.Errorf("error connection to database: %w", err)
	}
	defer dbConn.Close()
	return tracehist.LoadChannelPlanes(dbConn, configuration.RunNumber, configuration.Verbosity, logger)
}

// openSinks opens one writer per output format. The closers must be closed
// once every frame is processed.
func openSinks(configuration tracehist.Configuration) (tracehist.GridSink, []io.Closer, error) {
	var sinks []tracehist.GridSink
	var closers []io.Closer
	fail := func(err error) (tracehist.GridSink, []io.Closer, error) {
		for _, c := range closers {
			c.Close()
		}
		return nil, nil, err
	}

	for _, format := range configuration.OutputFormats {
		switch format {
		case tracehist.FormatHDF5:
			w, err := writer.NewWriter(configuration.OutputFilename, configuration.RootFileMode, configuration.CompressionLevel)
			if err != nil {
				return fail(err)
			}
			sinks = append(sinks, w)
			closers = append(closers, w)
		case tracehist.FormatROOT:
			w, err := export.NewROOTWriter(rootFilename(configuration))
			if err != nil {
				return fail(err)
			}
			sinks = append(sinks, w)
			closers = append(closers, w)
		case tracehist.FormatPNG:
			w, err := export.NewPlotWriter(configuration.PlotDir)
			if err != nil {
				return fail(err)
			}
			sinks = append(sinks, w)
		}
	}
	if len(sinks) == 1 {
		return sinks[0], closers, nil
	}
	return tracehist.NewMultiSink(sinks...), closers, nil
}

// rootFilename keeps the ROOT output next to the HDF5 one when both are
// written.
func rootFilename(configuration tracehist.Configuration) string {
	for _, format := range configuration.OutputFormats {
		if format == tracehist.FormatHDF5 {
			return configuration.OutputFilename + ".root"
		}
	}
	return configuration.OutputFilename
}

// processFile feeds every frame of the input file to the processor.
func processFile(configuration tracehist.Configuration, resolver tracehist.PlaneResolver,
	sink tracehist.GridSink, logger Logger, metrics *tracehist.Metrics) (int, error) {
	var input io.Reader = os.Stdin
	if configuration.FileIn != "" && configuration.FileIn != "-" {
		file, err := os.Open(configuration.FileIn)
		if err != nil {
			return 0, fmt.Errorf("error opening file: %w", err)
		}
		defer file.Close()
		input = file
	}
	processor := tracehist.NewProcessor(configuration, resolver, sink, logger, metrics)
	return processFrames(tracehist.NewFileReader(input, configuration, logger), processor)
}

func processFrames(reader *tracehist.FileReader, processor tracehist.BatchProcessor) (int, error) {
	nFrames := 0
	for {
		frame, err := reader.GetNextFrame()
		if err != nil {
			if err != io.EOF {
				return nFrames, fmt.Errorf("error reading frame: %w", err)
			}
			break
		}
		if err := processor.Process(frame); err != nil {
			return nFrames, err
		}
		nFrames++
	}
	return nFrames, processor.Process(nil)
}
