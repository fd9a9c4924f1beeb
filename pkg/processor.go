package tracehist

import (
	"fmt"

	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
)

// BatchProcessor consumes one frame at a time. A nil frame marks the end
// of the stream.
type BatchProcessor interface {
	Process(frame *Frame) error
}

// Processor turns the tagged traces of every frame into one grid per tag
// and plane.
type Processor struct {
	tags        []string
	traceHasTag bool
	nrebin      int
	verbosity   int
	workers     int

	resolver PlaneResolver
	sink     GridSink
	logger   Logger
	metrics  *Metrics
}

// NewProcessor builds a processor from the configuration. metrics may be
// nil.
func NewProcessor(config Configuration, resolver PlaneResolver, sink GridSink, logger Logger, metrics *Metrics) *Processor {
	if logger == nil {
		logger = NopLogger
	}
	workers := 1
	if config.Parallel && config.NumWorkers > 1 {
		workers = config.NumWorkers
	}
	nrebin := config.NRebin
	if nrebin < 1 {
		nrebin = 1
	}
	return &Processor{
		tags:        uniqueTags(config.Frames),
		traceHasTag: config.TraceHasTag,
		nrebin:      nrebin,
		verbosity:   config.Verbosity,
		workers:     workers,
		resolver:    resolver,
		sink:        sink,
		logger:      logger,
		metrics:     metrics,
	}
}

// uniqueTags sorts the tags and drops duplicates.
func uniqueTags(tags []string) []string {
	unique := slices.Clone(tags)
	slices.Sort(unique)
	return slices.Compact(unique)
}

// Tags returns the tags processed for every frame, in processing order.
func (p *Processor) Tags() []string {
	return slices.Clone(p.tags)
}

// GridName composes the name of the grid of plane for tag.
func GridName(plane int, tag string) string {
	return fmt.Sprintf("h%c_%s", PlaneLetter(plane), tag)
}

func (p *Processor) Process(frame *Frame) error {
	if frame == nil {
		if p.verbosity > 0 {
			p.logger.Info("EOS", "processor")
		}
		return nil
	}
	if len(frame.Traces) == 0 {
		if p.verbosity > 0 {
			p.logger.Info(fmt.Sprintf("passing through empty frame ID %d", frame.Ident), "processor")
		}
		return nil
	}

	var err error
	if p.workers > 1 {
		err = p.processParallel(frame)
	} else {
		err = p.processSequential(frame)
	}
	if err != nil {
		return err
	}
	p.metrics.frameProcessed()
	return nil
}

func (p *Processor) processSequential(frame *Frame) error {
	for _, tag := range p.tags {
		grids, err := p.histogramTag(frame, tag)
		if err != nil {
			p.metrics.resolutionError()
			return fmt.Errorf("frame %d, tag %q: %w", frame.Ident, tag, err)
		}
		if err := p.finalize(frame.Ident, grids); err != nil {
			return err
		}
	}
	return nil
}

// processParallel histograms the tags concurrently and then finalizes them
// in tag order, so sinks see the same sequence as in sequential mode.
func (p *Processor) processParallel(frame *Frame) error {
	results := make([][]*Grid, len(p.tags))
	errs := make([]error, len(p.tags))

	g := new(errgroup.Group)
	g.SetLimit(p.workers)
	for i, tag := range p.tags {
		g.Go(func() error {
			results[i], errs[i] = p.histogramTag(frame, tag)
			return nil
		})
	}
	// Workers never fail the group: each tag's error is kept in errs and
	// reported below in tag order.
	_ = g.Wait()

	for i, tag := range p.tags {
		if errs[i] != nil {
			p.metrics.resolutionError()
			return fmt.Errorf("frame %d, tag %q: %w", frame.Ident, tag, errs[i])
		}
		if err := p.finalize(frame.Ident, results[i]); err != nil {
			return err
		}
	}
	return nil
}

func (p *Processor) finalize(frameID int, grids []*Grid) error {
	for _, grid := range grids {
		if err := p.sink.Finalize(frameID, grid); err != nil {
			return &ErrWriteGrid{Frame: frameID, Name: grid.Name, Err: err}
		}
		p.metrics.gridWritten(grid.Plane, grid.NTraces)
	}
	return nil
}

// histogramTag builds the grids of one tag. No grid is returned if the tag
// selects no trace or if collation fails.
func (p *Processor) histogramTag(frame *Frame, tag string) ([]*Grid, error) {
	traceTag := tag
	if !p.traceHasTag {
		traceTag = ""
		if p.verbosity > 1 {
			p.logger.Info("set desired trace tag to \"\" as trace_has_tag=false", "processor")
		}
	}

	traces := frame.TaggedTraces(traceTag)
	if len(traces) == 0 {
		p.logger.Warn(fmt.Sprintf("no tagged traces for %q in frame %d", tag, frame.Ident), "processor")
		p.metrics.emptyTag()
		return nil, nil
	}
	if p.verbosity > 0 {
		p.logger.Info(fmt.Sprintf("tag: %q with %d traces", tag, len(traces)), "processor")
	}

	collation, err := CollateByPlane(traces, p.resolver)
	if err != nil {
		return nil, err
	}

	grids := make([]*Grid, 0, NumPlanes)
	for plane := 0; plane < NumPlanes; plane++ {
		if !collation.HasPlane(plane) {
			p.logger.Warn(fmt.Sprintf("plane %c has no traces for %q in frame %d", PlaneLetter(plane), tag, frame.Ident), "processor")
			p.metrics.emptyPlane(plane)
			continue
		}
		cbin := collation.Channels[plane]
		if p.verbosity > 1 {
			message := fmt.Sprintf("cbin:%d[%g,%g] tbin:%d[%g,%g]", cbin.NBins, cbin.Min, cbin.Max,
				collation.Time.NBins, collation.Time.Min, collation.Time.Max)
			p.logger.Info(message, "processor")
		}
		grid := Accumulate(GridName(plane, tag), collation.ByPlane[plane], cbin, collation.Time, p.nrebin)
		grid.Tag = tag
		grid.Plane = plane
		grid.NTraces = len(collation.ByPlane[plane])
		grids = append(grids, grid)
	}
	return grids, nil
}
