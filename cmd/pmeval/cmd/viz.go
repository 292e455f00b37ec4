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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	petri "github.com/jt05610/pmeval"
	"github.com/jt05610/pmeval/graphviz"
	"github.com/jt05610/pmeval/pnml"
	"github.com/spf13/cobra"
)

var format string

func loadNet(path string) (*petri.AcceptingNet, error) {
	df, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = df.Close()
	}()
	switch filepath.Ext(path) {
	case ".dot", ".gv":
		return graphviz.Loader().Load(df)
	}
	return pnml.NewReader().Load(df)
}

// vizCmd represents the viz command
var vizCmd = &cobra.Command{
	Use:   "viz",
	Short: "Create a graphviz figure from a petri net",
	Long:  `Create a graphviz figure from a petri net. The input file must be a PNML or DOT file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		net, err := loadNet(inputFile)
		if err != nil {
			return err
		}
		f, err := graphviz.ParseFormat(format)
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(filepath.Base(inputFile), filepath.Ext(inputFile))
		outPath := filepath.Join(outputDir, name+"."+string(f))
		fmt.Fprintf(cmd.OutOrStdout(), "writing figure for %s to %s...", inputFile, outPath)
		if err := os.MkdirAll(outputDir, os.ModePerm); err != nil {
			return err
		}
		df, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer func() {
			_ = df.Close()
		}()
		w := graphviz.New(&graphviz.Config{
			Name:    name,
			Font:    graphviz.Helvetica,
			RankDir: graphviz.LeftToRight,
			Format:  f,
		})
		if err := w.Flush(cmd.Context(), df, net); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "done")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(vizCmd)
	vizCmd.Flags().StringVarP(&inputFile, "input", "i", "", "input file")
	vizCmd.Flags().StringVarP(&outputDir, "output", "o", ".", "output directory")
	vizCmd.Flags().StringVarP(&format, "format", "f", "svg", "output format")
	_ = vizCmd.MarkFlagRequired("input")
}
