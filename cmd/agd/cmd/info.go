// Copyright 2024 The agd Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agp-bio/agd"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <index.agd>",
	Short: "Print header metadata for a damage index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := agd.Open(args[0])
		if err != nil {
			return err
		}
		defer func() { _ = r.Close() }()

		fmt.Printf("records:      %d\n", r.RecordCount())
		fmt.Printf("library type: %s\n", r.LibraryType())
		fmt.Printf("d_max:        %g\n", r.DMax())
		fmt.Printf("lambda:       %g\n", r.Lambda())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
