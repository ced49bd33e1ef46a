// Copyright 2024 The agd Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package codec implements the bit-level encodings used by the .agd damage
// index: 2-bit nucleotides, 6-bit codon indices, the packed frame/strand
// byte, and the fixed-point quantizers for damage metrics.
//
// Codon indices follow standard genetic code ordering (TTT=0, TTC=1, TTA=2,
// ..., GGG=63): the first base varies slowest, the third fastest.  All
// functions here are total -- invalid or out-of-range inputs map to defined
// sentinels or clamp, never error, because upstream biological data routinely
// contains ambiguous bases and out-of-range scores.
package codec

// InvalidCodon is stored when a codon slot is occupied but contains at least
// one ambiguous base (N or other non-ACGT character).
const InvalidCodon = 0xFF

const bases = "TCAG"

// EncodeNucleotide maps a base to its 2-bit code: T=0, C=1, A=2, G=3
// (case-insensitive).  Anything else returns -1.
func EncodeNucleotide(nt byte) int {
	switch nt {
	case 'T', 't':
		return 0
	case 'C', 'c':
		return 1
	case 'A', 'a':
		return 2
	case 'G', 'g':
		return 3
	default:
		return -1
	}
}

// DecodeNucleotide is the inverse of EncodeNucleotide for codes 0-3.
func DecodeNucleotide(code byte) byte {
	return bases[code&3]
}

// Complement returns the Watson-Crick complement of a base, or 'N' for
// anything that is not an unambiguous ACGT character.
func Complement(nt byte) byte {
	switch nt {
	case 'A', 'a':
		return 'T'
	case 'T', 't':
		return 'A'
	case 'G', 'g':
		return 'C'
	case 'C', 'c':
		return 'G'
	default:
		return 'N'
	}
}

// EncodeCodon encodes three bases into a 6-bit codon index, most-significant
// base first.  Any ambiguous base yields InvalidCodon, never a defined index.
func EncodeCodon(b0, b1, b2 byte) uint8 {
	c0 := EncodeNucleotide(b0)
	c1 := EncodeNucleotide(b1)
	c2 := EncodeNucleotide(b2)
	if c0 < 0 || c1 < 0 || c2 < 0 {
		return InvalidCodon
	}
	return uint8(c0<<4 | c1<<2 | c2)
}

// DecodeCodon is the inverse of EncodeCodon.  Indices above 63 decode to
// "NNN", signaling an unknown codon.
func DecodeCodon(idx uint8) string {
	if idx > 63 {
		return "NNN"
	}
	return string([]byte{
		bases[(idx>>4)&3],
		bases[(idx>>2)&3],
		bases[idx&3],
	})
}

// Pack4 packs 4 bases into one byte, 2 bits each, most-significant base
// first.  Ambiguous bases pack as code 0 (T) -- a deliberate lossy fallback,
// not an error.
func Pack4(nts []byte) byte {
	_ = nts[3]
	var packed byte
	for i := 0; i < 4; i++ {
		code := EncodeNucleotide(nts[i])
		if code < 0 {
			code = 0
		}
		packed |= byte(code) << (6 - 2*i)
	}
	return packed
}

// Unpack4 is the inverse of Pack4.
func Unpack4(packed byte) [4]byte {
	var out [4]byte
	for i := 0; i < 4; i++ {
		out[i] = bases[(packed>>(6-2*i))&3]
	}
	return out
}

// EncodeFrameStrand packs a reading frame (0-2) into the low 2 bits and the
// strand into the high bit (set = reverse).
func EncodeFrameStrand(frame int, isReverse bool) byte {
	fs := byte(frame & 0x03)
	if isReverse {
		fs |= 0x80
	}
	return fs
}

// DecodeFrame extracts the reading frame from a frame/strand byte.
func DecodeFrame(fs byte) int {
	return int(fs & 0x03)
}

// DecodeIsReverse reports whether the frame/strand byte marks the reverse
// strand.
func DecodeIsReverse(fs byte) bool {
	return fs&0x80 != 0
}

// QuantizeDamagePct quantizes a damage percentage in [0,100] to a byte in
// [0,200] at 0.5% resolution, rounding half up and clamping at both ends.
func QuantizeDamagePct(pct float32) uint8 {
	if pct <= 0 {
		return 0
	}
	if pct >= 100 {
		return 200
	}
	return uint8(pct*2 + 0.5)
}

// DequantizeDamagePct is the inverse of QuantizeDamagePct (to within the
// 0.5% quantization step).
func DequantizeDamagePct(q uint8) float32 {
	return float32(q) * 0.5
}

// QuantizeProbability quantizes a probability in [0,1] to a byte, rounding
// half up and clamping at both ends.
func QuantizeProbability(p float32) uint8 {
	if p <= 0 {
		return 0
	}
	if p >= 1 {
		return 255
	}
	return uint8(p*255 + 0.5)
}

// DequantizeProbability is the inverse of QuantizeProbability (to within
// 1/510).
func DequantizeProbability(q uint8) float32 {
	return float32(q) / 255
}
