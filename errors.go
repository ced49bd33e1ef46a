// Copyright 2024 The agd Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package agd

import "errors"

var (
	// ErrFormat reports that a file is not an .agd index this library can
	// read: bad magic, unsupported version, or a size inconsistent with the
	// header's own counts.  It is distinct from plain I/O errors so callers
	// can tell "not this kind of file" from "filesystem problem".
	ErrFormat = errors.New("not a valid agd index")

	// ErrFinalized reports a programming error: AddRecord called on a
	// Writer after Finalize.
	ErrFinalized = errors.New("agd: cannot add records after Finalize")
)
