// Copyright 2024 The agd Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "agd",
	Short: "Inspect and build .agd damage index files",
	Long: `agd works with binary damage index (.agd) files: hash-indexed,
fixed-size records of terminal-codon and quantized damage metadata written
once by an annotation pass and looked up many times afterward.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.  This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
