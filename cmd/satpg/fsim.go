package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var fsimCmd = &cobra.Command{
	Use:   "fsim",
	Short: "Seed patterns with RTPG then report fault coverage via PPSFP fault-dropping",
	RunE:  runFsim,
}

func init() {
	fsimCmd.Flags().IntP("npat", "n", 64, "number of random patterns to generate")
	fsimCmd.Flags().String("blif", "", "circuit file in BLIF format")
	fsimCmd.Flags().String("iscas89", "", "circuit file in ISCAS-89 format")
}

func runFsim(cmd *cobra.Command, args []string) error {
	blif, _ := cmd.Flags().GetString("blif")
	iscas89, _ := cmd.Flags().GetString("iscas89")
	npat, _ := cmd.Flags().GetInt("npat")

	path, format := formatFlag(blif, iscas89)
	sess, err := newSession(path, format, cfgFile, verbose)
	if err != nil {
		return err
	}
	sess.Config.Rtpg.PatternBudget = npat

	runner := sess.NewPlainRTPG(1)
	patterns := runner.Run()

	fmt.Printf("generated %d patterns, %.2f%% fault coverage over %d representative faults\n",
		len(patterns), sess.Coverage()*100, len(sess.DB.Representatives()))
	sess.Logger.Algorithm(fmt.Sprintf("fsim done: %d patterns", len(patterns)))
	return nil
}
