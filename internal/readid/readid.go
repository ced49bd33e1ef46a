// Copyright 2024 The agd Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package readid derives the lookup key used by the .agd damage index from
// an annotated read identifier.
//
// The upstream gene-prediction pipeline appends a strand/frame suffix of the
// form "_+_0" or "_-_2" to read names.  Both the writer and the reader strip
// that suffix before hashing so the same read resolves to the same record
// regardless of which form the caller holds.
package readid

import "hash/fnv"

// StripSuffix removes a trailing _<+|-><0|1|2> strand/frame annotation.
// Identifiers without the suffix are returned unchanged.
func StripSuffix(id string) string {
	if n := len(id); n >= 4 {
		pos := n - 4
		if id[pos] == '_' &&
			(id[pos+1] == '+' || id[pos+1] == '-') &&
			id[pos+2] == '_' &&
			id[pos+3] >= '0' && id[pos+3] <= '2' {
			return id[:pos]
		}
	}
	return id
}

// Hash returns the 64-bit FNV-1a hash of id.  The .agd format pins this
// exact algorithm; files must hash identically across implementations and
// platforms.
func Hash(id string) uint64 {
	h := fnv.New64a()
	// Write on an fnv hash never fails.
	_, _ = h.Write([]byte(id))
	return h.Sum64()
}

// HashStripped strips the strand/frame suffix and hashes the remainder; this
// is the key derivation used for every bucket placement and lookup.
func HashStripped(id string) uint64 {
	return Hash(StripSuffix(id))
}
