// Command gopherprove is a saturation-based first-order theorem prover
// with AVATAR-style clause splitting.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/crillab/gopherprove/env"
	"github.com/crillab/gopherprove/fol"
	"github.com/crillab/gopherprove/order"
	"github.com/crillab/gopherprove/saturation"
	"github.com/crillab/gopherprove/tptp"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		inputFile   string
		mode        string
		timeLimit   time.Duration
		memoryLimit uint64
		proof       string
		randomSeed  int64
		testID      string
	)
	cmd := &cobra.Command{
		Use:           "gopherprove [flags] problem.p",
		Short:         "saturation-based first-order theorem prover",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				inputFile = args[0]
			}
			if inputFile == "" {
				return fmt.Errorf("%w: no input file given", env.ErrUserError)
			}
			opts := env.Options{
				InputFile:   inputFile,
				TimeLimit:   timeLimit,
				MemoryLimit: memoryLimit,
				RandomSeed:  randomSeed,
				TestID:      testID,
			}
			switch mode {
			case "vampire":
				opts.Mode = env.ModeVampire
			case "spider":
				opts.Mode = env.ModeSpider
			default:
				return fmt.Errorf("%w: unknown mode %q", env.ErrUserError, mode)
			}
			switch proof {
			case "off":
				opts.Proof = env.ProofOff
			case "on":
				opts.Proof = env.ProofOn
			case "tptp":
				opts.Proof = env.ProofTPTP
			default:
				return fmt.Errorf("%w: unknown proof style %q", env.ErrUserError, proof)
			}
			return run(opts)
		},
	}
	cmd.Flags().StringVar(&inputFile, "input_file", "", "path to the problem file")
	cmd.Flags().StringVar(&mode, "mode", "vampire", "output mode: vampire|spider")
	cmd.Flags().DurationVar(&timeLimit, "time_limit", 0, "wall-clock budget, 0 for none")
	cmd.Flags().Uint64Var(&memoryLimit, "memory_limit", 0, "heap budget in bytes, 0 for none")
	cmd.Flags().StringVar(&proof, "proof", "off", "proof output: off|on|tptp")
	cmd.Flags().Int64Var(&randomSeed, "random_seed", 0, "seed for randomized choices")
	cmd.Flags().StringVar(&testID, "test_id", "unspecified_test", "opaque id echoed into output")
	return cmd
}

func run(opts env.Options) error {
	e := env.New(opts)

	f, err := os.Open(opts.InputFile)
	if err != nil {
		return fmt.Errorf("%w: %v", env.ErrUserError, err)
	}
	defer f.Close()

	sig := fol.NewSignature()
	sharing := fol.NewSharing(sig)
	units, err := tptp.Parse(f, sharing)
	if err != nil {
		return err
	}

	alg, err := saturation.NewAlgorithm(e, sharing, order.New(), 2)
	if err != nil {
		return err
	}
	alg.AddInputClauses(units)

	reason, err := alg.Saturate()
	if err != nil {
		// internal fault: dump statistics, then report upwards
		e.Statistics.Print(os.Stdout)
		return err
	}
	if opts.Mode == env.ModeSpider {
		outputSpider(e, reason)
		return nil
	}
	outputVampire(e, sig, alg, reason)
	return nil
}

func outputVampire(e *env.Env, sig *fol.Signature, alg *saturation.Algorithm, reason env.TerminationReason) {
	fmt.Printf("%s on %s\n", e.Options.TestID, e.Options.InputFile)
	switch reason {
	case env.Refutation:
		fmt.Println("Refutation found")
		saturation.PrintProof(os.Stdout, sig, alg.Refutation(), e.Options.Proof)
	case env.TimeLimit:
		fmt.Println("Time limit reached!")
	case env.MemoryLimit:
		fmt.Println("Memory limit exceeded!")
	default:
		fmt.Println("Refutation not found!")
	}
	e.Statistics.Print(os.Stdout)
}

func outputSpider(e *env.Env, reason env.TerminationReason) {
	var status string
	switch reason {
	case env.Refutation:
		status = "+"
	case env.TimeLimit, env.MemoryLimit:
		status = "?"
	default:
		status = "-"
	}
	problem := strings.TrimSuffix(filepath.Base(e.Options.InputFile), filepath.Ext(e.Options.InputFile))
	fmt.Printf("%s %s %d %s %d\n", status, problem, e.ElapsedDeciseconds(),
		e.Options.TestID, e.Statistics.BDDTimeMs)
}
