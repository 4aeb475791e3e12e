// Command satpg is the CLI front end for the ATPG toolkit: dtpg, fsim, and
// rtpg subcommands over a cobra root command, grounded on
// jhkimqd-chaos-utils/cmd/chaos-runner/main.go's root-command-plus-
// persistent-flags shape and the teacher's cmd/main.go flag set (circuit
// file, fault, output, verbose).
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "satpg",
	Short: "Automatic test pattern generation for combinational and scan logic",
	Long: `satpg enumerates single stuck-at and transition-delay faults over a
gate-level netlist, then for each fault either produces a test pattern or
declares it untestable, via a bit-parallel fault simulator and a SAT-based
deterministic test pattern generator.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "./satpg.yaml", "config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(dtpgCmd)
	rootCmd.AddCommand(fsimCmd)
	rootCmd.AddCommand(rtpgCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
