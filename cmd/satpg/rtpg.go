package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rtpgCmd = &cobra.Command{
	Use:   "rtpg",
	Short: "Run random test pattern generation, optionally WSA-constrained",
	RunE:  runRtpg,
}

func init() {
	rtpgCmd.Flags().IntP("npat", "n", 1000, "pattern budget")
	rtpgCmd.Flags().Float64("wsa-limit", 0, "reject/penalize vectors above this switching activity (0 disables)")
	rtpgCmd.Flags().Bool("p2", false, "use the Metropolis-style WSA acceptance walk instead of plain WSA rejection")
	rtpgCmd.Flags().String("blif", "", "circuit file in BLIF format")
	rtpgCmd.Flags().String("iscas89", "", "circuit file in ISCAS-89 format")
	rtpgCmd.Flags().String("output", "tests.txt", "output file for test vectors")
}

func runRtpg(cmd *cobra.Command, args []string) error {
	blif, _ := cmd.Flags().GetString("blif")
	iscas89, _ := cmd.Flags().GetString("iscas89")
	npat, _ := cmd.Flags().GetInt("npat")
	wsaLimit, _ := cmd.Flags().GetFloat64("wsa-limit")
	p2, _ := cmd.Flags().GetBool("p2")
	output, _ := cmd.Flags().GetString("output")

	path, format := formatFlag(blif, iscas89)
	sess, err := newSession(path, format, cfgFile, verbose)
	if err != nil {
		return err
	}
	sess.Config.Rtpg.PatternBudget = npat
	sess.Config.Rtpg.WSALimit = wsaLimit

	var patterns []patternLike
	if wsaLimit > 0 {
		runner := sess.NewWSARTPG(1, p2)
		for _, tv := range runner.Run() {
			patterns = append(patterns, tv)
		}
	} else {
		runner := sess.NewPlainRTPG(1)
		for _, tv := range runner.Run() {
			patterns = append(patterns, tv)
		}
	}

	f, err := createOutput(output)
	if err != nil {
		return err
	}
	defer f.Close()
	for i, tv := range patterns {
		fmt.Fprintf(f, "# pattern %d\n%s\n", i, tv)
	}

	fmt.Printf("generated %d patterns, %.2f%% fault coverage\n", len(patterns), sess.Coverage()*100)
	return nil
}

// patternLike is satisfied by *testvector.TestVector's String method;
// declared narrowly here so rtpg.go does not need to import testvector
// just to name the slice element type.
type patternLike interface {
	String() string
}
