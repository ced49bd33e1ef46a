// Copyright 2024 The agd Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package agd

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
	"golang.org/x/sys/unix"

	"github.com/agp-bio/agd/internal/readid"
)

// Reader is a memory-mapped view of a finalized .agd file.  It is immutable
// after Open and safe for unbounded concurrent use: lookups are pure reads
// over a read-only mapping with no shared mutable state.  The file handle and
// mapping are held for the Reader's lifetime and released together by Close.
type Reader struct {
	f    *os.File
	data mmap.MMap
	hdr  header

	// byte offsets of the section bases, computed from the header's counts
	bucketsOff int64
	recordsOff int64
	chainOff   int64
}

// Open maps path read-only and validates it.  Failures to open, stat, or map
// surface as I/O errors; bad magic, an unsupported version, or a file shorter
// than the header-declared sections surface wrapping ErrFormat.  Every
// failure path releases whatever was acquired before returning.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("os.Open(%s): %w", path, err)
	}

	stats, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("f.Stat: %w", err)
	}
	if stats.Size() < headerSize {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s is %d bytes, smaller than the %d-byte header",
			ErrFormat, path, stats.Size(), headerSize)
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("mmap.Map(%s): %w", path, err)
	}

	r := &Reader{f: f, data: data}

	// Point lookups touch scattered buckets and records; tell the kernel
	// not to read ahead.
	if err := unix.Madvise(data, unix.MADV_RANDOM); err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("madvise: %w", err)
	}

	if err := r.hdr.UnmarshalBytes(data); err != nil {
		_ = r.Close()
		return nil, err
	}

	// The header is trusted for sizing once magic and version pass; reject
	// anything shorter than the sections it declares.
	if expected := r.hdr.expectedFileSize(); uint64(stats.Size()) < expected {
		_ = r.Close()
		return nil, fmt.Errorf("%w: %s truncated: %d bytes, header declares %d",
			ErrFormat, path, stats.Size(), expected)
	}

	r.bucketsOff = headerSize
	r.recordsOff = r.bucketsOff + int64(r.hdr.numBuckets)*bucketSize
	r.chainOff = r.recordsOff + int64(r.hdr.numRecords)*recordSize
	return r, nil
}

// Find looks up a read by identifier.  The strand/frame suffix is stripped
// the same way the writer strips it, so either form of the name works.  The
// result is either a decoded record or an explicit miss, never an error: a
// finalized index answers every well-formed query.
func (r *Reader) Find(readID string) (Record, bool) {
	if r.hdr.numBuckets == 0 {
		return Record{}, false
	}

	hash := readid.HashStripped(readID)
	bucket := hash % r.hdr.numBuckets
	idx := binary.LittleEndian.Uint32(r.data[r.bucketsOff+int64(bucket)*bucketSize:])

	// Walk the collision chain comparing full 64-bit hashes.  An
	// out-of-range index means a corrupt chain; treat it as a miss rather
	// than reading past the record section.
	for idx != nilOffset && uint64(idx) < r.hdr.numRecords {
		off := r.recordsOff + int64(idx)*recordSize
		if binary.LittleEndian.Uint64(r.data[off:]) == hash {
			var rec Record
			rec.UnmarshalBytes(r.data[off : off+recordSize])
			return rec, true
		}
		idx = binary.LittleEndian.Uint32(r.data[r.chainOff+int64(idx)*chainEntrySize:])
	}
	return Record{}, false
}

// RecordAt returns the record at a raw position, for sequential scans.
func (r *Reader) RecordAt(i uint64) (Record, bool) {
	if i >= r.hdr.numRecords {
		return Record{}, false
	}
	off := r.recordsOff + int64(i)*recordSize
	var rec Record
	rec.UnmarshalBytes(r.data[off : off+recordSize])
	return rec, true
}

// RecordCount returns the total number of records in the index.
func (r *Reader) RecordCount() uint64 {
	return r.hdr.numRecords
}

// DMax returns the sample-level peak damage probability from the header.
func (r *Reader) DMax() float32 {
	return r.hdr.dMax
}

// Lambda returns the sample-level damage decay rate from the header.
func (r *Reader) Lambda() float32 {
	return r.hdr.lambda
}

// LibraryType returns the library preparation type from the header.
func (r *Reader) LibraryType() LibraryType {
	return r.hdr.libraryType
}

// Close unmaps the file and closes the handle.  It is safe to call more than
// once; the Reader must not be used afterward.
func (r *Reader) Close() error {
	var firstErr error
	if r.data != nil {
		if err := r.data.Unmap(); err != nil {
			firstErr = fmt.Errorf("mmap.Unmap: %w", err)
		}
		r.data = nil
	}
	if r.f != nil {
		if err := r.f.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("f.Close: %w", err)
		}
		r.f = nil
	}
	return firstErr
}
