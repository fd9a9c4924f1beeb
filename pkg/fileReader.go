package tracehist

import (
	"encoding/json"
	"fmt"
	"io"
)

// FileReader reads frames from a stream of JSON frame objects.
type FileReader struct {
	decoder    *json.Decoder
	FrameCount int
	skip       int
	maxFrames  int
	verbosity  int
	logger     Logger
}

func NewFileReader(r io.Reader, config Configuration, logger Logger) *FileReader {
	if logger == nil {
		logger = NopLogger
	}
	return &FileReader{
		decoder:    json.NewDecoder(r),
		FrameCount: -1,
		skip:       config.Skip,
		maxFrames:  config.MaxFrames,
		verbosity:  config.Verbosity,
		logger:     logger,
	}
}

// GetNextFrame returns the next frame to process, honouring skip and
// max_frames. It returns io.EOF when no frame is left.
func (f *FileReader) GetNextFrame() (*Frame, error) {
	for {
		frame := &Frame{}
		if err := f.decoder.Decode(frame); err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("error decoding frame %d: %w", f.FrameCount+1, err)
		}
		f.FrameCount++
		if f.FrameCount >= f.maxFrames {
			if f.verbosity > 0 {
				f.logger.Info("Max frames reached", "fileReader")
			}
			return nil, io.EOF
		}
		if f.FrameCount < f.skip {
			if f.verbosity > 0 {
				f.logger.Info(fmt.Sprintf("Skipping frame %d with ID %d", f.FrameCount, frame.Ident), "fileReader")
			}
			continue
		}
		if f.verbosity > 0 {
			message := fmt.Sprintf("Reading frame %d with ID %d (%d traces)", f.FrameCount, frame.Ident, len(frame.Traces))
			f.logger.Info(message, "fileReader")
		}
		frame.IndexTraceTags()
		return frame, nil
	}
}
