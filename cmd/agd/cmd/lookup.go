// Copyright 2024 The agd Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agp-bio/agd"
	"github.com/agp-bio/agd/internal/codec"
)

// lookupCmd represents the lookup command
var lookupCmd = &cobra.Command{
	Use:   "lookup <index.agd> <read-id>",
	Short: "Look up one read and print its decoded record",
	Long: `Look up a read by identifier.  The strand/frame suffix appended by
the annotation pipeline ("_+_0", "_-_2", ...) may be present or absent.

Example:
  agd lookup sample.agd read42`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := agd.Open(args[0])
		if err != nil {
			return err
		}
		defer func() { _ = r.Close() }()

		rec, ok := r.Find(args[1])
		if !ok {
			return fmt.Errorf("read %q not found in %s", args[1], args[0])
		}

		strand := "+"
		if rec.IsReverse() {
			strand = "-"
		}
		fmt.Printf("id_hash:   %#016x\n", rec.IDHash)
		fmt.Printf("seq_len:   %d\n", rec.SeqLen)
		fmt.Printf("frame:     %d (%s)\n", rec.Frame(), strand)
		fmt.Printf("damage:    %.1f%%\n", rec.DamagePct())
		fmt.Printf("p_damaged: %.3f\n", rec.ProbDamaged())
		fmt.Printf("5' codons: %s\n", formatCodons(rec.Codons5Prime[:rec.N5Prime]))
		fmt.Printf("3' codons: %s\n", formatCodons(rec.Codons3Prime[:rec.N3Prime]))
		fmt.Printf("5' bases:  %s\n", rec.Nucleotides5Prime())
		fmt.Printf("3' bases:  %s\n", rec.Nucleotides3Prime())

		res := agd.DetectSynonymousDamage(&rec, r.DMax(), r.Lambda())
		fmt.Printf("damage sites: %d (5' syn/non-syn %d/%d, 3' syn/non-syn %d/%d)\n",
			len(res.Sites), res.Synonymous5, res.NonSyn5, res.Synonymous3, res.NonSyn3)
		for _, site := range res.Sites {
			class := "non-synonymous"
			if site.Synonymous {
				class = "synonymous"
			}
			fmt.Printf("  codon %d pos %d: %c (was %c) %s\n",
				site.CodonIdx, site.NTPos, site.Observed, site.Expected, class)
		}
		return nil
	},
}

func formatCodons(codons []uint8) string {
	out := ""
	for i, c := range codons {
		if i > 0 {
			out += " "
		}
		out += fmt.Sprintf("%s(%c)", codec.DecodeCodon(c), agd.AminoAcid(c))
	}
	if out == "" {
		out = "-"
	}
	return out
}

func init() {
	rootCmd.AddCommand(lookupCmd)
}
