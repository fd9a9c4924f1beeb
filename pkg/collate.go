package tracehist

// Collation is the result of partitioning one tag's traces by plane.
type Collation struct {
	ByPlane  [NumPlanes][]Trace
	Channels [NumPlanes]Binning
	// Time spans the ticks of all planes, closing boundary included: its
	// last bin is the tick right after the last sample and stays empty.
	Time Binning
}

// HasPlane reports whether any trace was assigned to plane.
func (c *Collation) HasPlane(plane int) bool {
	return len(c.ByPlane[plane]) > 0
}

// CollateByPlane assigns every trace to its plane and computes the channel
// binning of each plane plus the time binning shared by all of them. The
// first channel that cannot be resolved to a valid plane aborts collation.
func CollateByPlane(traces []Trace, resolver PlaneResolver) (*Collation, error) {
	var channels [NumPlanes][]int
	ticks := make([]int, 0, 2*len(traces))
	c := &Collation{}

	for _, trace := range traces {
		plane, err := resolver.Resolve(trace.Channel)
		if err != nil {
			return nil, &ResolutionError{Channel: trace.Channel, Plane: plane, Err: err}
		}
		if plane < 0 || plane >= NumPlanes {
			return nil, &ResolutionError{Channel: trace.Channel, Plane: plane, Err: ErrInvalidPlane}
		}
		channels[plane] = append(channels[plane], trace.Channel)
		c.ByPlane[plane] = append(c.ByPlane[plane], trace)
		ticks = append(ticks, trace.TBin, trace.TBin+len(trace.Charge))
	}

	for plane := 0; plane < NumPlanes; plane++ {
		if binning, ok := ChannelBinning(channels[plane]); ok {
			c.Channels[plane] = binning
		}
	}
	if binning, ok := TimeBinning(ticks); ok {
		c.Time = binning.Closed()
	}
	return c, nil
}
