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
	"strings"

	"github.com/jt05610/pmeval/eventlog/xes"
	"github.com/jt05610/pmeval/examples"
	"github.com/spf13/cobra"
)

var sampleName string

// sampleCmd represents the sample command
var sampleCmd = &cobra.Command{
	Use:   "sample [file]",
	Short: "Write an example event log",
	Long: `Write an example event log as XES, to the given file or stdout. Logs: ` +
		strings.Join(examples.LogNames(), ", ") + `.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log, ok := examples.Log(sampleName)
		if !ok {
			return fmt.Errorf("unknown example log %q", sampleName)
		}
		if len(args) == 0 {
			return xes.NewWriter().Flush(cmd.OutOrStdout(), log)
		}
		df, err := os.Create(args[0])
		if err != nil {
			return err
		}
		defer func() {
			_ = df.Close()
		}()
		return xes.NewWriter().Flush(df, log)
	},
}

func init() {
	rootCmd.AddCommand(sampleCmd)
	sampleCmd.Flags().StringVarP(&sampleName, "log", "l", "running", "example log")
}
