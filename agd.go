// Copyright 2024 The agd Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package agd

// LibraryType identifies the sequencing library preparation recorded in the
// index header.
type LibraryType uint8

const (
	LibraryUnknown        LibraryType = 0
	LibrarySingleStranded LibraryType = 1
	LibraryDoubleStranded LibraryType = 2
)

// ParseLibraryType maps the profile estimator's string form to the on-disk
// code.  Unrecognized strings map to LibraryUnknown.
func ParseLibraryType(s string) LibraryType {
	switch s {
	case "single-stranded":
		return LibrarySingleStranded
	case "double-stranded":
		return LibraryDoubleStranded
	default:
		return LibraryUnknown
	}
}

func (lt LibraryType) String() string {
	switch lt {
	case LibrarySingleStranded:
		return "single-stranded"
	case LibraryDoubleStranded:
		return "double-stranded"
	default:
		return "unknown"
	}
}

// Gene is the per-read output of the upstream annotation pipeline that the
// Writer consumes.  Frame is the reading frame (0-2) relative to the strand;
// DamageScore is a percentage in [0,100]; AncientProb is the probability in
// [0,1] that the read carries damage.
type Gene struct {
	ReadID      string
	Frame       int
	IsForward   bool
	DamageScore float32
	AncientProb float32
}

// SampleProfile carries the sample-level damage model estimated upstream:
// peak damage probability DMax, exponential decay rate Lambda, and the
// library preparation type ("single-stranded", "double-stranded", or other).
type SampleProfile struct {
	DMax        float32
	Lambda      float32
	LibraryType string
}
