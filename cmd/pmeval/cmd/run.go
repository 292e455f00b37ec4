/*
Copyright © 2024 Jonathan Taylor <jonrtaylor12@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jt05610/pmeval/conformance"
	"github.com/jt05610/pmeval/config"
	"github.com/jt05610/pmeval/discovery"
	"github.com/jt05610/pmeval/eventlog"
	"github.com/jt05610/pmeval/eventlog/xes"
	"github.com/jt05610/pmeval/graphviz"
	"github.com/jt05610/pmeval/pipeline"
	"github.com/jt05610/pmeval/pnml"
	"github.com/jt05610/pmeval/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newRunner wires the pipeline from the resolved configuration.
func newRunner(cfg *config.Config, logger *zap.Logger) (*pipeline.Runner, error) {
	format, err := graphviz.ParseFormat(cfg.ImageFormat)
	if err != nil {
		return nil, err
	}
	filter, err := eventlog.NewFilter(cfg.Filter)
	if err != nil {
		return nil, err
	}
	return &pipeline.Runner{
		Loader: xes.NewReader(),
		Miners: discovery.WithOptions(discovery.Options{
			ILPMaxNodes: cfg.ILPMaxNodes,
			Logger:      logger,
		}),
		Metrics: conformance.WithOptions(conformance.Options{
			AlignmentMaxStates: cfg.AlignmentMaxStates,
		}),
		Renderer: graphviz.New(&graphviz.Config{
			Font:    graphviz.Helvetica,
			RankDir: graphviz.LeftToRight,
			Format:  format,
		}),
		Exporter:      pnml.NewWriter(),
		Filter:        filter,
		Logger:        logger,
		Suffix:        cfg.Suffix,
		ImageFormat:   string(format),
		MetricTimeout: cfg.MetricTimeout,
		Workers:       cfg.Workers,
		FailFast:      cfg.FailFast,
		Stats:         pipeline.NewStats(),
	}, nil
}

func record(ctx context.Context, path string, started time.Time, sum *pipeline.Summary) error {
	s, err := store.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() {
		_ = s.Close()
	}()
	return s.Save(ctx, started, sum)
}

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Discover and score models for every event log of a folder",
	Long: `Discover and score models for every event log of a folder. Each log gets
its own output folder holding execution_times.txt, conformance_metrics.csv and
an image and a PNML file per algorithm.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(v)
		if err != nil {
			return err
		}
		runner, err := newRunner(cfg, logger)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		started := time.Now()
		sum, err := runner.Run(ctx, cfg.InputDir, cfg.OutputDir)
		fmt.Fprintf(cmd.OutOrStdout(), "processed %d of %d event logs\n", len(sum.Processed), len(sum.Files))
		for _, f := range sum.Failed {
			fmt.Fprintf(cmd.OutOrStdout(), "failed: %s\n", f)
		}
		if cfg.StatsFile != "" {
			if werr := runner.Stats.WriteTextfile(cfg.StatsFile); werr != nil {
				logger.Error("writing stats", zap.String("path", cfg.StatsFile), zap.Error(werr))
			}
		}
		if cfg.Database != "" {
			if serr := record(context.Background(), cfg.Database, started, sum); serr != nil {
				return errors.Join(err, serr)
			}
			logger.Info("run recorded", zap.String("database", cfg.Database), zap.String("run", sum.RunID))
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	f := runCmd.Flags()
	f.StringP("input", "i", "", "folder holding the event logs")
	f.StringP("output", "o", "", "folder receiving one subfolder per log")
	f.String("suffix", "", "file name suffix of event logs")
	f.StringP("format", "f", "", "image format: png, svg or dot")
	f.Duration("metric-timeout", 0, "time limit per conformance metric (0 for none)")
	f.IntP("workers", "w", 0, "number of logs processed at once")
	f.Bool("fail-fast", false, "stop at the first log that fails")
	f.String("filter", "", "expression a trace must satisfy, e.g. 'length > 2'")
	f.Int("alignment-max-states", 0, "state limit of each alignment search")
	f.Int("ilp-max-nodes", 0, "branch and bound node limit per ILP place")
	f.String("stats-file", "", "file receiving Prometheus metrics of the run")
	bind(runCmd, config.KeyInputDir, "input")
	bind(runCmd, config.KeyOutputDir, "output")
	bind(runCmd, config.KeySuffix, "suffix")
	bind(runCmd, config.KeyImageFormat, "format")
	bind(runCmd, config.KeyMetricTimeout, "metric-timeout")
	bind(runCmd, config.KeyWorkers, "workers")
	bind(runCmd, config.KeyFailFast, "fail-fast")
	bind(runCmd, config.KeyFilter, "filter")
	bind(runCmd, config.KeyAlignmentMaxStates, "alignment-max-states")
	bind(runCmd, config.KeyILPMaxNodes, "ilp-max-nodes")
	bind(runCmd, config.KeyStatsFile, "stats-file")
}
