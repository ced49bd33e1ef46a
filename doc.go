// Copyright 2024 The agd Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package agd builds and reads .agd damage index files: compact, hash-indexed
// binary records of terminal-codon and quantized damage metadata for
// annotated reads.  An index is written once by an annotation pass and read
// many times afterward, often by a different process, so the on-disk layout
// is pinned byte-for-byte.
//
// An .agd file looks like:
//
//	┌───────────────────────┐
//	│ header (64 bytes)     │
//	├───────────────────────┤
//	│ hash buckets          │
//	│ (num_buckets × 8)     │
//	├───────────────────────┤
//	│ records               │
//	│ (num_records × 32)    │
//	├───────────────────────┤
//	│ collision chain       │
//	│ (num_records × 4)     │
//	└───────────────────────┘
//
// All integers are little-endian.  Records are keyed by the 64-bit FNV-1a
// hash of the read identifier (strand/frame suffix stripped); lookups walk a
// per-bucket chain stored in the trailing section, so the record itself stays
// a fixed 32 bytes.  The full identifier is never stored -- 64-bit hash
// collisions between distinct reads are accepted as a negligible
// false-positive risk at realistic dataset sizes.
//
// A Writer accumulates records in memory and builds the hash table in a
// single pass at Finalize; a Reader memory-maps a finalized file and answers
// point lookups in expected O(1).  DetectSynonymousDamage consumes a decoded
// Record plus the sample-level damage model and classifies candidate
// C→T / G→A damage sites as synonymous or not at the protein level.
package agd
