// Copyright 2024 The agd Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package agd

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/agp-bio/agd/internal/codec"
	"github.com/agp-bio/agd/internal/readid"
)

const defaultBufferSize = 4 * 1024 * 1024

// WriterOption configures the Writer.
type WriterOption func(*writerOptions)

type writerOptions struct {
	logger *slog.Logger
}

// WithLogger sets an optional logger the writer uses for progress updates at
// finalize time.  If not provided, no logging output is produced.
func WithLogger(logger *slog.Logger) WriterOption {
	return func(opts *writerOptions) {
		opts.logger = logger
	}
}

// Writer accumulates per-read records in memory and writes a finalized,
// hash-indexed .agd file in a single bulk pass.  It is not safe for
// concurrent use: AddRecord calls must be sequential, and Finalize must
// happen after every AddRecord.
type Writer struct {
	path      string
	hdr       header
	records   []Record
	logger    *slog.Logger
	finalized bool
}

// NewWriter returns a Writer that will produce path at Finalize time.  The
// sample profile's damage model parameters are recorded in the file header.
func NewWriter(path string, profile SampleProfile, opts ...WriterOption) *Writer {
	var options writerOptions
	options.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	for _, opt := range opts {
		opt(&options)
	}
	return &Writer{
		path: path,
		hdr: header{
			dMax:        profile.DMax,
			lambda:      profile.Lambda,
			libraryType: ParseLibraryType(profile.LibraryType),
		},
		logger: options.logger,
	}
}

// AddRecord encodes one annotated read into a fixed-size record.  It returns
// ErrFinalized if called after Finalize.
func (w *Writer) AddRecord(gene Gene, dna string) error {
	if w.finalized {
		return ErrFinalized
	}

	var rec Record
	rec.IDHash = readid.HashStripped(gene.ReadID)
	if len(dna) > math.MaxUint16 {
		rec.SeqLen = math.MaxUint16
	} else {
		rec.SeqLen = uint16(len(dna))
	}
	rec.FrameStrand = codec.EncodeFrameStrand(gene.Frame, !gene.IsForward)
	rec.DamagePctQ = codec.QuantizeDamagePct(gene.DamageScore)
	rec.PDamagedQ = codec.QuantizeProbability(gene.AncientProb)

	extractTerminalCodons(dna, gene.Frame, !gene.IsForward, &rec)
	packTerminalNucleotides(dna, !gene.IsForward, &rec)

	w.records = append(w.records, rec)
	return nil
}

// extractTerminalCodons fills the codon slots at both termini of the
// translated protein.  Codon slots always count occupancy: a codon containing
// an ambiguous base still occupies its slot, only its identity is the invalid
// sentinel.
func extractTerminalCodons(dna string, frame int, isReverse bool, rec *Record) {
	for i := range rec.Codons5Prime {
		rec.Codons5Prime[i] = codec.InvalidCodon
		rec.Codons3Prime[i] = codec.InvalidCodon
	}

	n := len(dna)
	if n < 3 {
		return
	}

	if !isReverse {
		// 5' codons start at the frame offset and step forward.
		pos := frame
		for i := 0; i < maxTerminalCodons && pos+3 <= n; i++ {
			rec.Codons5Prime[i] = codec.EncodeCodon(dna[pos], dna[pos+1], dna[pos+2])
			rec.N5Prime = uint8(i + 1)
			pos += 3
		}

		// 3' codons walk backward from the last complete codon of the
		// coding region, never stepping before the frame offset.
		codingLen := (n - frame) / 3 * 3
		if codingLen >= 3 {
			pos = frame + codingLen - 3
			for i := 0; i < maxTerminalCodons && pos >= frame; i++ {
				rec.Codons3Prime[i] = codec.EncodeCodon(dna[pos], dna[pos+1], dna[pos+2])
				rec.N3Prime = uint8(i + 1)
				pos -= 3
			}
		}
		return
	}

	// Reverse strand: the protein's 5' terminus sits at the DNA's 3' end.
	// Each codon is complemented and reversed in place rather than
	// materializing the full reverse complement.
	codingLen := (n - frame) / 3 * 3
	if codingLen < 3 {
		return
	}

	pos := n - frame - 3
	for i := 0; i < maxTerminalCodons && pos >= 0; i++ {
		rec.Codons5Prime[i] = reverseComplementCodon(dna, pos)
		rec.N5Prime = uint8(i + 1)
		pos -= 3
	}

	pos = frame
	for i := 0; i < maxTerminalCodons && pos+3 <= n; i++ {
		rec.Codons3Prime[i] = reverseComplementCodon(dna, pos)
		rec.N3Prime = uint8(i + 1)
		pos += 3
	}
}

// reverseComplementCodon encodes the reverse complement of the codon at
// dna[pos:pos+3].
func reverseComplementCodon(dna string, pos int) uint8 {
	return codec.EncodeCodon(
		codec.Complement(dna[pos+2]),
		codec.Complement(dna[pos+1]),
		codec.Complement(dna[pos]),
	)
}

// packTerminalNucleotides stores the first and last 12 bases (not
// codon-aligned) strand-aware, 2 bits each.  This exact per-base window is
// what lets the detector re-derive single-nucleotide changes even though the
// codon slots only carry codon-rounded information.
func packTerminalNucleotides(dna string, isReverse bool, rec *Record) {
	n := len(dna)

	// Unfilled window slots pack as code 0, same as ambiguous bases.
	var w5, w3 [packedWindow]byte
	for i := range w5 {
		w5[i] = 'T'
		w3[i] = 'T'
	}

	if !isReverse {
		for i := 0; i < packedWindow && i < n; i++ {
			w5[i] = dna[i]
		}
		// The 3' window right-aligns: short sequences leave the leading
		// slots empty.
		for i := 0; i < packedWindow && i < n; i++ {
			pos := n - packedWindow + i
			if pos < 0 {
				continue
			}
			w3[i] = dna[pos]
		}
	} else {
		for i := 0; i < packedWindow && i < n; i++ {
			w5[i] = codec.Complement(dna[n-1-i])
		}
		for i := 0; i < packedWindow && i < n; i++ {
			pos := packedWindow - 1 - i
			if pos >= n {
				continue
			}
			w3[i] = codec.Complement(dna[pos])
		}
	}

	for k := 0; k < 3; k++ {
		rec.NT5Prime[k] = codec.Pack4(w5[4*k:])
		rec.NT3Prime[k] = codec.Pack4(w3[4*k:])
	}
}

// Finalize computes the hash table from the accumulated records and writes
// the file: header, bucket array, record array, chain-entry array, in that
// order.  It writes to a temp file in the destination directory and renames
// into place, so a crash mid-write never leaves a half-written index at the
// final path.  A second call is a no-op.
func (w *Writer) Finalize() error {
	if w.finalized {
		return nil
	}
	w.finalized = true

	w.hdr.numRecords = uint64(len(w.records))

	var buckets, chain []uint32
	if len(w.records) > 0 {
		// Load factor ~0.75.
		w.hdr.numBuckets = uint64(math.Round(float64(len(w.records))*1.33)) + 1

		buckets = make([]uint32, w.hdr.numBuckets)
		for i := range buckets {
			buckets[i] = nilOffset
		}
		chain = make([]uint32, len(w.records))
		for i := range chain {
			chain[i] = nilOffset
		}

		// Head-insertion chaining: a colliding record becomes the new
		// chain head and displaces the previous head into the chain
		// array.  Traversal order within a bucket is immaterial --
		// lookups compare the full 64-bit hash.
		for i := range w.records {
			b := w.records[i].IDHash % w.hdr.numBuckets
			if head := buckets[b]; head != nilOffset {
				chain[i] = head
			}
			buckets[b] = uint32(i)
		}
	}

	if err := w.writeFile(buckets, chain); err != nil {
		return err
	}

	w.logger.Info("finalized damage index",
		"path", w.path,
		"records", w.hdr.numRecords,
		"buckets", w.hdr.numBuckets)
	return nil
}

func (w *Writer) writeFile(buckets, chain []uint32) error {
	dir := filepath.Dir(w.path)
	f, err := os.CreateTemp(dir, "agd-writer.*.tmp")
	if err != nil {
		return fmt.Errorf("os.CreateTemp (may need permissions for dir %q): %w", dir, err)
	}
	defer func() {
		if f != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	bw := bufio.NewWriterSize(f, defaultBufferSize)

	hdrBuf := w.hdr.MarshalBytes()
	if _, err := bw.Write(hdrBuf[:]); err != nil {
		return fmt.Errorf("bufio.Write header: %w", err)
	}

	var bucketBuf [bucketSize]byte
	// next_offset (bytes 4-8) is reserved; chains live in the trailing
	// chain section, not here.
	binary.LittleEndian.PutUint32(bucketBuf[4:], nilOffset)
	for _, head := range buckets {
		binary.LittleEndian.PutUint32(bucketBuf[:4], head)
		if _, err := bw.Write(bucketBuf[:]); err != nil {
			return fmt.Errorf("bufio.Write bucket: %w", err)
		}
	}

	for i := range w.records {
		recBuf := w.records[i].MarshalBytes()
		if _, err := bw.Write(recBuf[:]); err != nil {
			return fmt.Errorf("bufio.Write record: %w", err)
		}
	}

	var chainBuf [chainEntrySize]byte
	for _, next := range chain {
		binary.LittleEndian.PutUint32(chainBuf[:], next)
		if _, err := bw.Write(chainBuf[:]); err != nil {
			return fmt.Errorf("bufio.Write chain: %w", err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("bufio.Flush: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("f.Sync: %w", err)
	}
	tmpName := f.Name()
	if err := f.Close(); err != nil {
		f = nil
		_ = os.Remove(tmpName)
		return fmt.Errorf("f.Close: %w", err)
	}
	f = nil
	// make the file read-only
	if err := os.Chmod(tmpName, 0444); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("os.Chmod(0444): %w", err)
	}
	if err := os.Rename(tmpName, w.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("os.Rename: %w", err)
	}
	return nil
}
