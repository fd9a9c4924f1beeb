package tracehist

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frameStream = `
{"ident": 0, "traces": [{"channel": 1, "tbin": 0, "charge": [1, 2], "tags": ["raw"]}]}
{"ident": 1, "tags": ["sigproc"], "traces": [
	{"channel": 2, "tbin": 5, "charge": [3], "tags": ["raw", "gauss"]},
	{"channel": 3, "tbin": 6, "charge": [4]}
]}
{"ident": 2, "traces": []}
`

func readAll(t *testing.T, reader *FileReader) []*Frame {
	t.Helper()
	var frames []*Frame
	for {
		frame, err := reader.GetNextFrame()
		if err == io.EOF {
			return frames
		}
		require.NoError(t, err)
		frames = append(frames, frame)
	}
}

func TestFileReader(t *testing.T) {
	config := DefaultConfiguration()
	frames := readAll(t, NewFileReader(strings.NewReader(frameStream), config, nil))
	require.Len(t, frames, 3)

	frame := frames[1]
	assert.Equal(t, 1, frame.Ident)
	assert.Equal(t, []string{"sigproc"}, frame.Tags)
	require.Len(t, frame.Traces, 2)
	assert.Equal(t, Trace{Channel: 2, TBin: 5, Charge: []float32{3}, Tags: []string{"raw", "gauss"}}, frame.Traces[0])
	assert.Equal(t, map[string][]int{"raw": {0}, "gauss": {0}}, frame.TraceTags)

	assert.Len(t, frame.TaggedTraces("sigproc"), 2)
	assert.Len(t, frame.TaggedTraces(""), 2)
	assert.Empty(t, frame.TaggedTraces("wiener"))
	assert.Empty(t, frames[2].Traces)
}

func TestFileReaderSkipAndMaxFrames(t *testing.T) {
	config := DefaultConfiguration()
	config.Skip = 1
	config.MaxFrames = 2
	logger := &recordingLogger{}
	config.Verbosity = 1

	frames := readAll(t, NewFileReader(strings.NewReader(frameStream), config, logger))
	require.Len(t, frames, 1)
	assert.Equal(t, 1, frames[0].Ident)
	assert.Contains(t, logger.infos, "Skipping frame 0 with ID 0")
	assert.Contains(t, logger.infos, "Max frames reached")
}

func TestFileReaderMalformed(t *testing.T) {
	reader := NewFileReader(strings.NewReader(`{"ident": 0, "traces": []} {"ident": "x"}`), DefaultConfiguration(), nil)
	_, err := reader.GetNextFrame()
	require.NoError(t, err)
	_, err = reader.GetNextFrame()
	assert.ErrorContains(t, err, "error decoding frame 1")
}
