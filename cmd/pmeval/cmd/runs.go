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
	"text/tabwriter"

	"github.com/jt05610/pmeval/config"
	"github.com/jt05610/pmeval/store"
	"github.com/spf13/cobra"
)

// runsCmd represents the runs command
var runsCmd = &cobra.Command{
	Use:   "runs [run id]",
	Short: "List recorded runs, or the scores of one run",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := v.GetString(config.KeyDatabase)
		if path == "" {
			return fmt.Errorf("%w: %s is empty", config.ErrInvalid, config.KeyDatabase)
		}
		s, err := store.Open(path)
		if err != nil {
			return err
		}
		defer func() {
			_ = s.Close()
		}()
		ctx := context.Background()
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		defer func() {
			_ = w.Flush()
		}()
		if len(args) == 0 {
			runs, err := s.Runs(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(w, "RUN\tSTARTED\tFILES\tFAILED")
			for _, r := range runs {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), r.Files, r.Failed)
			}
			return nil
		}
		if _, err := s.Run(ctx, args[0]); err != nil {
			return err
		}
		scores, err := s.Scores(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "FILE\tALGORITHM\tMETRIC\tVALUE")
		for _, sc := range scores {
			value := "-"
			if sc.Value != nil {
				value = fmt.Sprintf("%.4f", *sc.Value)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", sc.File, sc.Algorithm, sc.Metric, value)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
}
