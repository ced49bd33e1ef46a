// Copyright 2024 The agd Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package main

import "github.com/agp-bio/agd/cmd/agd/cmd"

func main() {
	cmd.Execute()
}
