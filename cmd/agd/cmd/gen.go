// Copyright 2024 The agd Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package cmd

import (
	"fmt"
	"log/slog"
	"math/rand"
	"os"

	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"

	"github.com/agp-bio/agd"
)

var genFlags struct {
	records int
	dMax    float32
	lambda  float32
	library string
	seed    int64
	verbose bool
}

// genCmd represents the gen command
var genCmd = &cobra.Command{
	Use:   "gen <index.agd>",
	Short: "Generate a synthetic damage index for testing",
	Long: `Generate an index of synthetic reads: ksuid identifiers with random
strand/frame annotations and random sequences containing occasional ambiguous
bases.  Sequences are deterministic for a given --seed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rng := rand.New(rand.NewSource(genFlags.seed))

		var opts []agd.WriterOption
		if genFlags.verbose {
			opts = append(opts, agd.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, nil))))
		}
		w := agd.NewWriter(args[0], agd.SampleProfile{
			DMax:        genFlags.dMax,
			Lambda:      genFlags.lambda,
			LibraryType: genFlags.library,
		}, opts...)

		strands := []string{"+", "-"}
		for i := 0; i < genFlags.records; i++ {
			frame := rng.Intn(3)
			isForward := rng.Intn(2) == 0
			gene := agd.Gene{
				ReadID:      fmt.Sprintf("%s_%s_%d", ksuid.New(), strands[btoi(!isForward)], frame),
				Frame:       frame,
				IsForward:   isForward,
				DamageScore: rng.Float32() * 40,
				AncientProb: rng.Float32(),
			}
			if err := w.AddRecord(gene, randSequence(rng)); err != nil {
				return err
			}
		}
		if err := w.Finalize(); err != nil {
			return err
		}

		fmt.Printf("wrote %d records to %s\n", genFlags.records, args[0])
		return nil
	},
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}

func randSequence(rng *rand.Rand) string {
	const bases = "ACGT"
	n := 60 + rng.Intn(240)
	seq := make([]byte, n)
	for i := range seq {
		// ~1% ambiguous bases, like real basecalls
		if rng.Intn(100) == 0 {
			seq[i] = 'N'
			continue
		}
		seq[i] = bases[rng.Intn(4)]
	}
	return string(seq)
}

func init() {
	genCmd.Flags().IntVarP(&genFlags.records, "records", "n", 10000, "number of synthetic reads")
	genCmd.Flags().Float32Var(&genFlags.dMax, "d-max", 0.3, "peak damage probability")
	genCmd.Flags().Float32Var(&genFlags.lambda, "lambda", 0.25, "damage decay rate")
	genCmd.Flags().StringVar(&genFlags.library, "library", "double-stranded", "library type (single-stranded, double-stranded)")
	genCmd.Flags().Int64Var(&genFlags.seed, "seed", 42, "RNG seed for sequences")
	genCmd.Flags().BoolVarP(&genFlags.verbose, "verbose", "v", false, "log writer progress to stderr")
	rootCmd.AddCommand(genCmd)
}
