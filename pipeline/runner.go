// Package pipeline runs every miner and metric on every event log of a
// directory and writes the reports, images and PNML files.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	petri "github.com/jt05610/pmeval"
	"github.com/jt05610/pmeval/analysis"
	"github.com/jt05610/pmeval/conformance"
	"github.com/jt05610/pmeval/discovery"
	"github.com/jt05610/pmeval/eventlog"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrMetricPanic  = errors.New("metric panicked")
	ErrInvalidValue = errors.New("metric returned a non-finite value")
)

type Loader interface {
	Load(io.Reader) (*eventlog.Log, error)
}

type Renderer interface {
	Flush(ctx context.Context, w io.Writer, model *petri.AcceptingNet) error
}

type Exporter interface {
	Flush(w io.Writer, model *petri.AcceptingNet) error
}

type Runner struct {
	Loader   Loader
	Miners   []discovery.Miner
	Metrics  []conformance.Metric
	Renderer Renderer
	Exporter Exporter
	// Filter drops traces before discovery. Nil keeps every trace.
	Filter *eventlog.Filter
	Logger *zap.Logger
	// Suffix selects the input files.
	Suffix string
	// ImageFormat is the extension of the rendered images.
	ImageFormat string
	// MetricTimeout bounds each metric. Zero means no bound.
	MetricTimeout time.Duration
	// Workers is the number of logs processed at once.
	Workers  int
	FailFast bool
	// Stats is optional.
	Stats *Stats
}

// Result describes one processed log.
type Result struct {
	File   string
	OutDir string
	Traces int
	Events int
	Times  []Timing
	// Metrics names the columns of Rows.
	Metrics []string
	Rows    []Row
}

// FileError is the failure of one input file.
type FileError struct {
	File string
	Err  error
}

func (e *FileError) Error() string { return e.File + ": " + e.Err.Error() }

func (e *FileError) Unwrap() error { return e.Err }

type Summary struct {
	RunID     string
	Files     []string
	Processed []*Result
	Failed    []*FileError
}

func (r *Runner) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

func (r *Runner) load(path string) (*eventlog.Log, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	log, err := r.Loader.Load(f)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", filepath.Base(path), err)
	}
	if log.Name == "" {
		log.Name = filepath.Base(path)
	}
	return r.Filter.Apply(log)
}

// compute runs one metric, turning errors, panics, timeouts and
// non-finite values into an error.
func (r *Runner) compute(ctx context.Context, m conformance.Metric, log *eventlog.Log, model *petri.AcceptingNet) (float64, error) {
	if r.MetricTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.MetricTimeout)
		defer cancel()
	}
	type outcome struct {
		v   float64
		err error
	}
	ch := make(chan outcome, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				ch <- outcome{err: fmt.Errorf("%w: %v", ErrMetricPanic, p)}
			}
		}()
		v, err := m.Compute(ctx, log, model)
		ch <- outcome{v: v, err: err}
	}()
	select {
	case o := <-ch:
		if o.err == nil && (math.IsNaN(o.v) || math.IsInf(o.v, 0)) {
			o.err = fmt.Errorf("%w: %v", ErrInvalidValue, o.v)
		}
		return o.v, o.err
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (r *Runner) metrics(ctx context.Context, logger *zap.Logger, name string, log *eventlog.Log, model *petri.AcceptingNet) (Row, error) {
	row := Row{Algorithm: name, Values: make([]*float64, len(r.Metrics))}
	for i, m := range r.Metrics {
		start := time.Now()
		v, err := r.compute(ctx, m, log, model)
		if ctx.Err() != nil {
			return row, ctx.Err()
		}
		r.Stats.metric(name, m.Name(), time.Since(start), err != nil)
		if err != nil {
			logger.Warn("metric failed",
				zap.String("algorithm", name),
				zap.String("metric", m.Name()),
				zap.Error(err),
			)
			continue
		}
		logger.Info("metric computed",
			zap.String("algorithm", name),
			zap.String("metric", m.Name()),
			zap.Float64("value", v),
		)
		row.Values[i] = &v
	}
	return row, nil
}

func (r *Runner) imageFormat() string {
	if r.ImageFormat == "" {
		return "png"
	}
	return r.ImageFormat
}

// Process runs the whole pipeline for one log, writing into outDir.
func (r *Runner) Process(ctx context.Context, path, outDir string) (*Result, error) {
	logger := r.logger().With(zap.String("file", filepath.Base(path)))
	logger.Info("loading event log")
	log, err := r.load(path)
	if err != nil {
		return nil, err
	}
	res := &Result{
		File:    path,
		OutDir:  outDir,
		Traces:  log.Len(),
		Events:  log.NumEvents(),
		Metrics: conformance.Names(r.Metrics),
	}
	logger.Info("event log loaded", zap.Int("traces", res.Traces), zap.Int("events", res.Events))

	models := make([]*petri.AcceptingNet, len(r.Miners))
	for i, m := range r.Miners {
		start := time.Now()
		model, err := m.Discover(ctx, log)
		elapsed := time.Since(start)
		if err != nil {
			return nil, fmt.Errorf("%s miner: %w", m.Name(), err)
		}
		models[i] = model
		res.Times = append(res.Times, Timing{Miner: m.Name(), Elapsed: elapsed})
		r.Stats.miner(m.Name(), elapsed)
		report := analysis.Check(model)
		logger.Info("model discovered",
			zap.String("algorithm", m.Name()),
			zap.Duration("elapsed", elapsed),
			zap.Int("places", report.Places),
			zap.Int("transitions", report.Transitions),
			zap.Int("silent", report.Silent),
			zap.Bool("workflow_net", report.WorkflowNet),
			zap.Strings("problems", report.Problems),
		)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}
	times := filepath.Join(outDir, TimesFile)
	if err := writeFile(times, func(w io.Writer) error { return WriteTimes(w, res.Times) }); err != nil {
		return nil, err
	}
	logger.Info("execution times saved", zap.String("path", times))

	for i, m := range r.Miners {
		name, model := m.Name(), models[i]
		row, err := r.metrics(ctx, logger, name, log, model)
		if err != nil {
			return nil, err
		}
		res.Rows = append(res.Rows, row)
		image := filepath.Join(outDir, fmt.Sprintf("%s_petri_net.%s", name, r.imageFormat()))
		if err := writeFile(image, func(w io.Writer) error { return r.Renderer.Flush(ctx, w, model) }); err != nil {
			return nil, fmt.Errorf("rendering %s: %w", name, err)
		}
		pnml := filepath.Join(outDir, fmt.Sprintf("%s_model.pnml", name))
		if err := writeFile(pnml, func(w io.Writer) error { return r.Exporter.Flush(w, model) }); err != nil {
			return nil, fmt.Errorf("exporting %s: %w", name, err)
		}
		logger.Info("model written", zap.String("algorithm", name), zap.String("image", image), zap.String("pnml", pnml))
	}

	metrics := filepath.Join(outDir, MetricsFile)
	if err := writeFile(metrics, func(w io.Writer) error {
		return WriteMetrics(w, res.Metrics, res.Rows)
	}); err != nil {
		return nil, err
	}
	logger.Info("conformance metrics saved", zap.String("path", metrics))
	return res, nil
}

// Run processes every matching file of inputDir into its own directory
// under outputDir. Files are dispatched in name order. Failures are
// collected and joined into the returned error; with FailFast the first
// one cancels the remaining files.
func (r *Runner) Run(ctx context.Context, inputDir, outputDir string) (*Summary, error) {
	sum := &Summary{RunID: uuid.NewString()}
	logger := r.logger().With(zap.String("run", sum.RunID))
	files, err := Scan(inputDir, r.Suffix)
	if err != nil {
		return sum, err
	}
	sum.Files = files
	logger.Info("event logs found", zap.String("dir", inputDir), zap.Strings("files", files))

	results := make([]*Result, len(files))
	errs := make([]error, len(files))
	workers := r.Workers
	if workers < 1 {
		workers = 1
	}
	var g *errgroup.Group
	gctx := ctx
	if r.FailFast {
		g, gctx = errgroup.WithContext(ctx)
	} else {
		g = new(errgroup.Group)
	}
	g.SetLimit(workers)
	var mu sync.Mutex
	local := *r
	local.Logger = logger
	for i, name := range files {
		i, name := i, name
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			// with FailFast a failure elsewhere cancels the files still queued
			if gctx.Err() != nil && ctx.Err() == nil {
				return nil
			}
			res, err := local.Process(gctx, filepath.Join(inputDir, name), filepath.Join(outputDir, name))
			mu.Lock()
			defer mu.Unlock()
			results[i], errs[i] = res, err
			if err != nil {
				r.Stats.file("failed")
				logger.Error("processing failed", zap.String("file", name), zap.Error(err))
				if r.FailFast {
					return err
				}
				return nil
			}
			r.Stats.file("processed")
			logger.Info("analysis complete", zap.String("file", name))
			return nil
		})
	}
	_ = g.Wait()

	var joined []error
	for i, name := range files {
		switch {
		case errs[i] != nil:
			fe := &FileError{File: name, Err: errs[i]}
			sum.Failed = append(sum.Failed, fe)
			joined = append(joined, fe)
		case results[i] != nil:
			sum.Processed = append(sum.Processed, results[i])
		}
	}
	if err := ctx.Err(); err != nil {
		joined = append(joined, err)
	}
	logger.Info("run finished", zap.Int("processed", len(sum.Processed)), zap.Int("failed", len(sum.Failed)))
	return sum, errors.Join(joined...)
}
