// Copyright 2024 The agd Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package agd

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/agp-bio/agd/internal/codec"
)

const (
	// magic is the bytes "AGD\x01" read as a little-endian uint32.
	magic         = 0x01444741
	formatVersion = 1

	headerSize     = 64
	bucketSize     = 8
	recordSize     = 32
	chainEntrySize = 4

	// nilOffset marks an empty bucket or the end of a collision chain.
	nilOffset = 0xFFFFFFFF

	// maxTerminalCodons bounds how many codons are stored per terminus.
	maxTerminalCodons = 5
	// packedWindow is how many nucleotides are stored per terminus,
	// 2 bits each, in 3 bytes.
	packedWindow = 12
)

// The section strides are load-bearing for every offset computation below;
// pin them at compile time.
var (
	_ [headerSize - 64]byte
	_ [64 - headerSize]byte
	_ [recordSize - 32]byte
	_ [32 - recordSize]byte
)

// header field offsets.  Bytes 33-63 are reserved and written as zero.
const (
	hdrOffMagic       = 0
	hdrOffVersion     = 4
	hdrOffNumRecords  = 8
	hdrOffNumBuckets  = 16
	hdrOffDMax        = 24
	hdrOffLambda      = 28
	hdrOffLibraryType = 32
)

type header struct {
	numRecords  uint64
	numBuckets  uint64
	dMax        float32
	lambda      float32
	libraryType LibraryType
}

func (h *header) MarshalBytes() [headerSize]byte {
	var buf [headerSize]byte
	binary.LittleEndian.PutUint32(buf[hdrOffMagic:], magic)
	binary.LittleEndian.PutUint32(buf[hdrOffVersion:], formatVersion)
	binary.LittleEndian.PutUint64(buf[hdrOffNumRecords:], h.numRecords)
	binary.LittleEndian.PutUint64(buf[hdrOffNumBuckets:], h.numBuckets)
	binary.LittleEndian.PutUint32(buf[hdrOffDMax:], math.Float32bits(h.dMax))
	binary.LittleEndian.PutUint32(buf[hdrOffLambda:], math.Float32bits(h.lambda))
	buf[hdrOffLibraryType] = byte(h.libraryType)
	return buf
}

func (h *header) UnmarshalBytes(b []byte) error {
	if len(b) < headerSize {
		return fmt.Errorf("%w: file too short for header: %d < %d", ErrFormat, len(b), headerSize)
	}
	if m := binary.LittleEndian.Uint32(b[hdrOffMagic:]); m != magic {
		return fmt.Errorf("%w: bad magic %#08x", ErrFormat, m)
	}
	if v := binary.LittleEndian.Uint32(b[hdrOffVersion:]); v != formatVersion {
		return fmt.Errorf("%w: unsupported version %d (this library reads v%d)", ErrFormat, v, formatVersion)
	}
	h.numRecords = binary.LittleEndian.Uint64(b[hdrOffNumRecords:])
	h.numBuckets = binary.LittleEndian.Uint64(b[hdrOffNumBuckets:])
	h.dMax = math.Float32frombits(binary.LittleEndian.Uint32(b[hdrOffDMax:]))
	h.lambda = math.Float32frombits(binary.LittleEndian.Uint32(b[hdrOffLambda:]))
	h.libraryType = LibraryType(b[hdrOffLibraryType])
	return nil
}

// expectedFileSize is the minimum byte length of a file whose header declares
// these counts.
func (h *header) expectedFileSize() uint64 {
	return headerSize +
		h.numBuckets*bucketSize +
		h.numRecords*recordSize +
		h.numRecords*chainEntrySize
}

// record field offsets within the 32-byte stride.  Byte 15 is alignment
// padding, written as zero.
const (
	recOffIDHash      = 0
	recOffSeqLen      = 8
	recOffFrameStrand = 10
	recOffDamagePctQ  = 11
	recOffPDamagedQ   = 12
	recOffN5Prime     = 13
	recOffN3Prime     = 14
	recOffCodons5     = 16
	recOffCodons3     = 21
	recOffNT5         = 26
	recOffNT3         = 29
)

// Record is one fixed-size entry of the index.  Quantized fields are stored
// as written; the accessor methods decode them.  A Record is immutable once
// written -- the Reader hands back copies decoded from the mapped file.
type Record struct {
	// IDHash is the 64-bit FNV-1a hash of the read identifier with any
	// strand/frame suffix stripped.  The identifier itself is not stored.
	IDHash uint64
	// SeqLen is the DNA sequence length, saturating at 65535.
	SeqLen uint16
	// FrameStrand packs the reading frame into the low 2 bits and the
	// strand into the high bit (set = reverse).
	FrameStrand uint8
	// DamagePctQ is the damage percentage quantized to 0.5% steps.
	DamagePctQ uint8
	// PDamagedQ is the read-is-damaged probability quantized to 1/255.
	PDamagedQ uint8
	// N5Prime and N3Prime count the occupied codon slots per terminus
	// (0-5).  Trailing slots hold the invalid sentinel.  A counted slot may
	// itself be the sentinel when the codon contained an ambiguous base.
	N5Prime uint8
	N3Prime uint8
	// Codons5Prime and Codons3Prime hold 6-bit codon indices (255 =
	// ambiguous), ordered outward-in from each terminus of the translated
	// protein.
	Codons5Prime [maxTerminalCodons]uint8
	Codons3Prime [maxTerminalCodons]uint8
	// NT5Prime and NT3Prime hold the first/last 12 nucleotides, 2 bits
	// each, stored strand-aware for exact per-base re-derivation.
	NT5Prime [3]uint8
	NT3Prime [3]uint8
}

func (r *Record) MarshalBytes() [recordSize]byte {
	var buf [recordSize]byte
	binary.LittleEndian.PutUint64(buf[recOffIDHash:], r.IDHash)
	binary.LittleEndian.PutUint16(buf[recOffSeqLen:], r.SeqLen)
	buf[recOffFrameStrand] = r.FrameStrand
	buf[recOffDamagePctQ] = r.DamagePctQ
	buf[recOffPDamagedQ] = r.PDamagedQ
	buf[recOffN5Prime] = r.N5Prime
	buf[recOffN3Prime] = r.N3Prime
	copy(buf[recOffCodons5:recOffCodons5+maxTerminalCodons], r.Codons5Prime[:])
	copy(buf[recOffCodons3:recOffCodons3+maxTerminalCodons], r.Codons3Prime[:])
	copy(buf[recOffNT5:recOffNT5+3], r.NT5Prime[:])
	copy(buf[recOffNT3:recOffNT3+3], r.NT3Prime[:])
	return buf
}

func (r *Record) UnmarshalBytes(b []byte) {
	_ = b[recordSize-1]
	r.IDHash = binary.LittleEndian.Uint64(b[recOffIDHash:])
	r.SeqLen = binary.LittleEndian.Uint16(b[recOffSeqLen:])
	r.FrameStrand = b[recOffFrameStrand]
	r.DamagePctQ = b[recOffDamagePctQ]
	r.PDamagedQ = b[recOffPDamagedQ]
	r.N5Prime = b[recOffN5Prime]
	r.N3Prime = b[recOffN3Prime]
	copy(r.Codons5Prime[:], b[recOffCodons5:recOffCodons5+maxTerminalCodons])
	copy(r.Codons3Prime[:], b[recOffCodons3:recOffCodons3+maxTerminalCodons])
	copy(r.NT5Prime[:], b[recOffNT5:recOffNT5+3])
	copy(r.NT3Prime[:], b[recOffNT3:recOffNT3+3])
}

// Frame returns the reading frame (0-2).
func (r *Record) Frame() int {
	return codec.DecodeFrame(r.FrameStrand)
}

// IsReverse reports whether the gene was called on the reverse strand.
func (r *Record) IsReverse() bool {
	return codec.DecodeIsReverse(r.FrameStrand)
}

// DamagePct returns the dequantized damage percentage.
func (r *Record) DamagePct() float32 {
	return codec.DequantizeDamagePct(r.DamagePctQ)
}

// ProbDamaged returns the dequantized probability that the read is damaged.
func (r *Record) ProbDamaged() float32 {
	return codec.DequantizeProbability(r.PDamagedQ)
}

// Nucleotides5Prime decodes the packed 12-base window at the protein's 5'
// terminus.  Positions beyond the sequence (or ambiguous bases, which pack
// lossily as code 0) decode as 'T'.
func (r *Record) Nucleotides5Prime() string {
	return unpackWindow(r.NT5Prime)
}

// Nucleotides3Prime decodes the packed 12-base window at the protein's 3'
// terminus.
func (r *Record) Nucleotides3Prime() string {
	return unpackWindow(r.NT3Prime)
}

func unpackWindow(packed [3]uint8) string {
	var out [packedWindow]byte
	for i, b := range packed {
		nts := codec.Unpack4(b)
		copy(out[4*i:], nts[:])
	}
	return string(out[:])
}
