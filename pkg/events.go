package tracehist

// Trace is one channel's digitized waveform segment. Charge[i] belongs to
// tick TBin+i.
type Trace struct {
	Channel int       `json:"channel"`
	TBin    int       `json:"tbin"`
	Charge  []float32 `json:"charge"`
	Tags    []string  `json:"tags,omitempty"`
}

// Frame is one readout time window.
type Frame struct {
	Ident  int      `json:"ident"`
	Tags   []string `json:"tags,omitempty"`
	Traces []Trace  `json:"traces"`
	// TraceTags maps a trace tag to indices into Traces.
	TraceTags map[string][]int `json:"-"`
}

// IndexTraceTags rebuilds TraceTags from the per-trace tags.
func (f *Frame) IndexTraceTags() {
	f.TraceTags = make(map[string][]int)
	for i, trace := range f.Traces {
		for _, tag := range trace.Tags {
			f.TraceTags[tag] = append(f.TraceTags[tag], i)
		}
	}
}

// TaggedTraces selects the traces of the frame carrying tag. The empty tag
// selects every trace. A tag naming the frame itself also selects every
// trace.
func (f *Frame) TaggedTraces(tag string) []Trace {
	if tag == "" {
		return f.Traces
	}
	if indices, ok := f.TraceTags[tag]; ok {
		traces := make([]Trace, 0, len(indices))
		for _, i := range indices {
			if i >= 0 && i < len(f.Traces) {
				traces = append(traces, f.Traces[i])
			}
		}
		return traces
	}
	for _, frameTag := range f.Tags {
		if frameTag == tag {
			return f.Traces
		}
	}
	return nil
}
