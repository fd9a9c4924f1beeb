package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tracehist "github.com/next-exp/tracehist_go/pkg"
)

const frames = `
{"ident": 0, "traces": [
	{"channel": 5, "tbin": 10, "charge": [1, 1, 1], "tags": ["raw"]},
	{"channel": 7, "tbin": 11, "charge": [2, 2], "tags": ["raw"]}
]}
{"ident": 1, "traces": []}
{"ident": 2, "traces": [{"channel": 1500, "tbin": 0, "charge": [4], "tags": ["raw"]}]}
`

func testConfiguration() tracehist.Configuration {
	configuration := tracehist.DefaultConfiguration()
	configuration.OutputFilename = "grids.h5"
	configuration.Frames = []string{"raw"}
	configuration.NoDB = true
	configuration.Planes = []tracehist.PlaneRange{
		{Plane: 0, First: 0, Last: 799},
		{Plane: 1, First: 800, Last: 1599},
	}
	configuration.SetDefaults()
	return configuration
}

func TestProcessFrames(t *testing.T) {
	configuration := testConfiguration()
	var stdout, stderr bytes.Buffer
	logger := NewLogger(&stdout, &stderr)

	resolver, err := buildResolver(configuration, logger)
	require.NoError(t, err)
	sink := &tracehist.MemorySink{}
	processor := tracehist.NewProcessor(configuration, resolver, sink, logger, nil)

	nFrames, err := processFrames(tracehist.NewFileReader(strings.NewReader(frames), configuration, logger), processor)
	require.NoError(t, err)
	assert.Equal(t, 3, nFrames)
	assert.Equal(t, []string{"hu_raw", "hv_raw"}, sink.Names())

	g, ok := sink.Get(0, "hu_raw")
	require.True(t, ok)
	assert.Equal(t, 7.0, g.Sum())
	assert.Contains(t, stdout.String(), "[WARN] [processor] plane v has no traces")
	assert.Empty(t, stderr.String())
}

func TestProcessFramesStopsOnResolutionError(t *testing.T) {
	configuration := testConfiguration()
	configuration.Planes = configuration.Planes[:1]
	resolver, err := buildResolver(configuration, NewLogger(&bytes.Buffer{}, &bytes.Buffer{}))
	require.NoError(t, err)
	sink := &tracehist.MemorySink{}
	processor := tracehist.NewProcessor(configuration, resolver, sink, nil, nil)

	nFrames, err := processFrames(tracehist.NewFileReader(strings.NewReader(frames), configuration, nil), processor)
	assert.ErrorIs(t, err, tracehist.ErrUnresolvedChannel)
	assert.Equal(t, 2, nFrames)
	assert.Equal(t, []string{"hu_raw"}, sink.Names())
}

func TestRootFilename(t *testing.T) {
	configuration := testConfiguration()
	configuration.OutputFormats = []string{tracehist.FormatROOT}
	assert.Equal(t, "grids.h5", rootFilename(configuration))

	configuration.OutputFormats = []string{tracehist.FormatHDF5, tracehist.FormatROOT}
	assert.Equal(t, "grids.h5.root", rootFilename(configuration))
}

func TestLoggerFormat(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger := NewLogger(&stdout, &stderr)

	logger.Info("hello", "main")
	logger.Warn("careful", "processor")
	logger.Error("broken")

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[0], "] [main] hello"))
	assert.NotContains(t, lines[0], "INFO")
	assert.True(t, strings.HasSuffix(lines[1], "] [WARN] [processor] careful"))
	assert.Contains(t, stderr.String(), `"msg":"broken"`)
	assert.Contains(t, stderr.String(), `"level":"ERROR"`)
}
