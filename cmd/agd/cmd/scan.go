// Copyright 2024 The agd Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agp-bio/agd"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan <index.agd>",
	Short: "Scan every record and summarize synonymous damage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := agd.Open(args[0])
		if err != nil {
			return err
		}
		defer func() { _ = r.Close() }()

		var (
			withSites, withSynonymous uint64
			syn5, non5, syn3, non3    int
		)
		for i := uint64(0); i < r.RecordCount(); i++ {
			rec, ok := r.RecordAt(i)
			if !ok {
				break
			}
			res := agd.DetectSynonymousDamage(&rec, r.DMax(), r.Lambda())
			if len(res.Sites) > 0 {
				withSites++
			}
			if res.HasSynonymous {
				withSynonymous++
			}
			syn5 += res.Synonymous5
			non5 += res.NonSyn5
			syn3 += res.Synonymous3
			non3 += res.NonSyn3
		}

		fmt.Printf("records:                %d\n", r.RecordCount())
		fmt.Printf("with candidate sites:   %d\n", withSites)
		fmt.Printf("with synonymous damage: %d\n", withSynonymous)
		fmt.Printf("5' sites:               %d synonymous, %d non-synonymous\n", syn5, non5)
		fmt.Printf("3' sites:               %d synonymous, %d non-synonymous\n", syn3, non3)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}
