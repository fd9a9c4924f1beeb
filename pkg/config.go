package tracehist

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	ModeRecreate = "RECREATE"
	ModeUpdate   = "UPDATE"
)

const (
	FormatHDF5 = "hdf5"
	FormatROOT = "root"
	FormatPNG  = "png"
)

type Configuration struct {
	// Companion input file; only required to shunt objects.
	InputFilename string   `json:"input_filename"`
	Shunt         []string `json:"shunt"`

	OutputFilename string   `json:"output_filename"`
	OutputFormats  []string `json:"output_formats"`
	PlotDir        string   `json:"plot_dir"`
	RootFileMode   string   `json:"root_file_mode"`

	// Frames lists the trace tags turned into histograms.
	Frames      []string `json:"frames"`
	TraceHasTag bool     `json:"trace_has_tag"`
	NRebin      int      `json:"nrebin"`

	// Parsed for compatibility, no aggregation is applied.
	Summaries       []string          `json:"summaries"`
	SummaryOperator map[string]string `json:"summary_operator"`

	FileIn    string `json:"file_in"`
	Skip      int    `json:"skip"`
	MaxFrames int    `json:"max_frames"`

	Verbosity        int  `json:"verbosity"`
	NumWorkers       int  `json:"num_workers"`
	Parallel         bool `json:"parallel"`
	CompressionLevel int  `json:"compression_level"`

	NoDB      bool         `json:"no_db"`
	Host      string       `json:"host"`
	User      string       `json:"user"`
	Passwd    string       `json:"pass"`
	DBName    string       `json:"dbname"`
	RunNumber int          `json:"run_number"`
	Planes    []PlaneRange `json:"planes"`

	MetricsFile string `json:"metrics_file"`
}

// DefaultConfiguration returns the values used for options missing from the
// configuration file.
func DefaultConfiguration() Configuration {
	return Configuration{
		RootFileMode:     ModeRecreate,
		TraceHasTag:      true,
		NRebin:           1,
		MaxFrames:        1000000000,
		NumWorkers:       1,
		CompressionLevel: 4,
		Host:             "localhost",
	}
}

// SetDefaults fills the options whose defaults cannot be set before
// unmarshalling.
func (c *Configuration) SetDefaults() {
	if len(c.OutputFormats) == 0 {
		c.OutputFormats = []string{FormatHDF5}
	}
}

// Validate reports the first configuration problem found, before any
// output is created.
func (c Configuration) Validate() error {
	if c.InputFilename == "" && len(c.Shunt) > 0 {
		return &ConfigError{Field: "input_filename", Reason: "asked to shunt but not given input file name"}
	}
	if c.OutputFilename == "" {
		return &ConfigError{Field: "output_filename", Reason: "must provide output filename"}
	}
	if c.NRebin < 1 {
		return &ConfigError{Field: "nrebin", Reason: fmt.Sprintf("rebin factor must be a positive integer, got %d", c.NRebin)}
	}
	if c.RootFileMode != ModeRecreate && c.RootFileMode != ModeUpdate {
		return &ConfigError{Field: "root_file_mode", Reason: fmt.Sprintf("unknown mode %q", c.RootFileMode)}
	}
	if len(c.OutputFormats) == 0 {
		return &ConfigError{Field: "output_formats", Reason: "no output format given"}
	}
	for _, format := range c.OutputFormats {
		switch format {
		case FormatHDF5, FormatROOT:
		case FormatPNG:
			if c.PlotDir == "" {
				return &ConfigError{Field: "plot_dir", Reason: "png output needs a plot directory"}
			}
		default:
			return &ConfigError{Field: "output_formats", Reason: fmt.Sprintf("unknown format %q", format)}
		}
	}
	if c.CompressionLevel < 0 || c.CompressionLevel > 9 {
		return &ConfigError{Field: "compression_level", Reason: fmt.Sprintf("must be in [0,9], got %d", c.CompressionLevel)}
	}
	if !c.NoDB {
		if c.Host == "" {
			return &ConfigError{Field: "host", Reason: "database host is required unless no_db is set"}
		}
		if c.DBName == "" {
			return &ConfigError{Field: "dbname", Reason: "database name is required unless no_db is set"}
		}
	}
	if c.NoDB {
		if len(c.Planes) == 0 {
			return &ConfigError{Field: "planes", Reason: "channel ranges are required when no_db is set"}
		}
		for _, r := range c.Planes {
			if r.Plane < 0 || r.Plane >= NumPlanes {
				return &ConfigError{Field: "planes", Reason: fmt.Sprintf("plane %d out of range", r.Plane)}
			}
		}
	}
	return nil
}

const envPrefix = "TRACEHIST_"

// LoadConfiguration reads a JSON or YAML configuration file on top of the
// defaults. TRACEHIST_<OPTION> environment variables override the file.
func LoadConfiguration(filename string) (Configuration, error) {
	config := DefaultConfiguration()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return config, fmt.Errorf("unsupported config format: %q", filename)
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(filename), parser); err != nil {
		return config, err
	}
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return config, err
	}
	if err := k.UnmarshalWithConf("", &config, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return config, err
	}
	config.SetDefaults()
	return config, nil
}

// PrintConfiguration logs every option, one per line.
func PrintConfiguration(config Configuration, logger Logger) {
	logger.Info(fmt.Sprintf("File in: %s", config.FileIn), "config")
	logger.Info(fmt.Sprintf("Output file: %s", config.OutputFilename), "config")
	logger.Info(fmt.Sprintf("Output formats: %v", config.OutputFormats), "config")
	logger.Info(fmt.Sprintf("Plot dir: %s", config.PlotDir), "config")
	logger.Info(fmt.Sprintf("Output mode: %s", config.RootFileMode), "config")
	logger.Info(fmt.Sprintf("Tags: %v", config.Frames), "config")
	logger.Info(fmt.Sprintf("Trace has tag: %t", config.TraceHasTag), "config")
	logger.Info(fmt.Sprintf("Rebin: %d", config.NRebin), "config")
	logger.Info(fmt.Sprintf("Skip: %d", config.Skip), "config")
	logger.Info(fmt.Sprintf("Max frames: %d", config.MaxFrames), "config")
	logger.Info(fmt.Sprintf("Verbosity: %d", config.Verbosity), "config")
	logger.Info(fmt.Sprintf("No DB: %t", config.NoDB), "config")
	logger.Info(fmt.Sprintf("Host: %s", config.Host), "config")
	logger.Info(fmt.Sprintf("DB name: %s", config.DBName), "config")
	logger.Info(fmt.Sprintf("Run number: %d", config.RunNumber), "config")
	logger.Info(fmt.Sprintf("Number of workers: %d", config.NumWorkers), "config")
	logger.Info(fmt.Sprintf("Parallel: %t", config.Parallel), "config")
	logger.Info(fmt.Sprintf("Compression level: %d", config.CompressionLevel), "config")
	logger.Info(fmt.Sprintf("Metrics file: %s", config.MetricsFile), "config")
}
