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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	petri "github.com/jt05610/pmeval"
	"github.com/jt05610/pmeval/analysis"
	"github.com/jt05610/pmeval/conformance"
	"github.com/jt05610/pmeval/config"
	"github.com/jt05610/pmeval/discovery"
	"github.com/jt05610/pmeval/eventlog"
	"github.com/jt05610/pmeval/eventlog/xes"
	"github.com/jt05610/pmeval/graphviz"
	"github.com/jt05610/pmeval/pnml"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	inputFile   string
	outputDir   string
	algorithm   string
	withMetrics bool
)

func loadLog(path string, filter *eventlog.Filter) (*eventlog.Log, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	l, err := xes.NewReader().Load(f)
	if err != nil {
		return nil, err
	}
	return filter.Apply(l)
}

func writeModel(ctx context.Context, model *petri.AcceptingNet, name, format string) error {
	if err := os.MkdirAll(outputDir, os.ModePerm); err != nil {
		return err
	}
	f, err := graphviz.ParseFormat(format)
	if err != nil {
		return err
	}
	img, err := os.Create(filepath.Join(outputDir, name+"_petri_net."+string(f)))
	if err != nil {
		return err
	}
	defer func() {
		_ = img.Close()
	}()
	w := graphviz.New(&graphviz.Config{Name: name, Font: graphviz.Helvetica, RankDir: graphviz.LeftToRight, Format: f})
	if err := w.Flush(ctx, img, model); err != nil {
		return err
	}
	df, err := os.Create(filepath.Join(outputDir, name+"_model.pnml"))
	if err != nil {
		return err
	}
	defer func() {
		_ = df.Close()
	}()
	return pnml.NewWriter().Flush(df, model)
}

// discoverCmd represents the discover command
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Run one discovery algorithm on one event log",
	Long: `Run one discovery algorithm on one event log and write the net as an image
and a PNML file. Algorithms: ` + strings.Join(minerNames(), ", ") + `.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(v)
		if err != nil {
			return err
		}
		filter, err := eventlog.NewFilter(cfg.Filter)
		if err != nil {
			return err
		}
		miner, ok := discovery.ByName(algorithm, discovery.Options{ILPMaxNodes: cfg.ILPMaxNodes, Logger: logger})
		if !ok {
			return fmt.Errorf("unknown algorithm %q", algorithm)
		}
		log, err := loadLog(inputFile, filter)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		model, err := miner.Discover(ctx, log)
		if err != nil {
			return err
		}
		report := analysis.Check(model)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: %d places, %d transitions (%d silent), %d arcs, workflow net: %v\n",
			miner.Name(), report.Places, report.Transitions, report.Silent, report.Arcs, report.WorkflowNet)
		for _, p := range report.Problems {
			fmt.Fprintf(out, "  %s\n", p)
		}
		if withMetrics {
			for _, m := range conformance.WithOptions(conformance.Options{AlignmentMaxStates: cfg.AlignmentMaxStates}) {
				val, err := m.Compute(ctx, log, model)
				if err != nil {
					logger.Warn("metric failed", zap.String("metric", m.Name()), zap.Error(err))
					continue
				}
				fmt.Fprintf(out, "%s: %.4f\n", m.Name(), val)
			}
		}
		return writeModel(ctx, model, miner.Name(), cfg.ImageFormat)
	},
}

func minerNames() []string {
	var ret []string
	for _, m := range discovery.Default() {
		ret = append(ret, m.Name())
	}
	return ret
}

func init() {
	rootCmd.AddCommand(discoverCmd)
	discoverCmd.Flags().StringVarP(&inputFile, "input", "i", "", "input event log")
	discoverCmd.Flags().StringVarP(&outputDir, "output", "o", ".", "output directory")
	discoverCmd.Flags().StringVarP(&algorithm, "algorithm", "a", discovery.Default()[0].Name(), "discovery algorithm")
	discoverCmd.Flags().BoolVarP(&withMetrics, "metrics", "m", false, "also print the conformance metrics")
	_ = discoverCmd.MarkFlagRequired("input")
}
