// Copyright 2024 The agd Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package agd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agp-bio/agd/internal/readid"
)

// encode one read and return the in-memory record the writer built
func encodeOne(t *testing.T, gene Gene, dna string) Record {
	t.Helper()
	w := NewWriter(filepath.Join(t.TempDir(), "unused.agd"), SampleProfile{})
	require.NoError(t, w.AddRecord(gene, dna))
	require.Len(t, w.records, 1)
	return w.records[0]
}

func TestAddRecordScalars(t *testing.T) {
	t.Parallel()

	gene := Gene{
		ReadID:      "read42_-_1",
		Frame:       1,
		IsForward:   false,
		DamageScore: 12.5,
		AncientProb: 0.8,
	}
	rec := encodeOne(t, gene, "ATGAAACCCGGGTTTTAA")

	assert.Equal(t, readid.Hash("read42"), rec.IDHash, "suffix must be stripped before hashing")
	assert.Equal(t, uint16(18), rec.SeqLen)
	assert.Equal(t, 1, rec.Frame())
	assert.True(t, rec.IsReverse())
	assert.Equal(t, uint8(25), rec.DamagePctQ)
	assert.Equal(t, uint8(204), rec.PDamagedQ)
}

func TestTerminalCodonExtraction(t *testing.T) {
	t.Parallel()

	inv := uint8(255)
	for _, testcase := range []struct {
		name      string
		dna       string
		frame     int
		isForward bool
		c5        [5]uint8
		n5        uint8
		c3        [5]uint8
		n3        uint8
	}{
		{
			// ATG AAA CCC GGG TTT TAA: codons read straight off, 3'
			// walks back from the final TAA
			name: "forward frame0",
			dna:  "ATGAAACCCGGGTTTTAA", frame: 0, isForward: true,
			c5: [5]uint8{35, 42, 21, 63, 0}, n5: 5,
			c3: [5]uint8{10, 0, 63, 21, 42}, n3: 5,
		},
		{
			// same sequence read as its reverse complement: protein 5'
			// is the DNA 3' end
			name: "reverse frame0",
			dna:  "ATGAAACCCGGGTTTTAA", frame: 0, isForward: false,
			c5: [5]uint8{2, 42, 21, 63, 0}, n5: 5,
			c3: [5]uint8{24, 0, 63, 21, 42}, n3: 5,
		},
		{
			name: "forward frame1",
			dna:  "TATGAAACCCGGGTTTTAAG", frame: 1, isForward: true,
			c5: [5]uint8{35, 42, 21, 63, 0}, n5: 5,
			c3: [5]uint8{10, 0, 63, 21, 42}, n3: 5,
		},
		{
			// ambiguous codons occupy their slot but encode the sentinel
			name: "ambiguous bases keep their slots",
			dna:  "ATGNNNCCC", frame: 0, isForward: true,
			c5: [5]uint8{35, inv, 21, inv, inv}, n5: 3,
			c3: [5]uint8{21, inv, 35, inv, inv}, n3: 3,
		},
		{
			// a single complete codon serves as both termini
			name: "single codon",
			dna:  "ATGAA", frame: 0, isForward: true,
			c5: [5]uint8{35, inv, inv, inv, inv}, n5: 1,
			c3: [5]uint8{35, inv, inv, inv, inv}, n3: 1,
		},
		{
			name: "two codons",
			dna:  "ACGTAC", frame: 0, isForward: true,
			c5: [5]uint8{39, 9, inv, inv, inv}, n5: 2,
			c3: [5]uint8{9, 39, inv, inv, inv}, n3: 2,
		},
		{
			name: "reverse frame2",
			dna:  "ACGTACGTACGTACGT", frame: 2, isForward: false,
			c5: [5]uint8{50, 28, 39, 9, inv}, n5: 4,
			c3: [5]uint8{9, 39, 28, 50, inv}, n3: 4,
		},
		{
			name: "too short for any codon",
			dna:  "AT", frame: 0, isForward: true,
			c5: [5]uint8{inv, inv, inv, inv, inv}, n5: 0,
			c3: [5]uint8{inv, inv, inv, inv, inv}, n3: 0,
		},
		{
			// reverse strand with an empty coding region stores nothing
			name: "reverse no coding region",
			dna:  "ATGA", frame: 2, isForward: false,
			c5: [5]uint8{inv, inv, inv, inv, inv}, n5: 0,
			c3: [5]uint8{inv, inv, inv, inv, inv}, n3: 0,
		},
		{
			name: "empty sequence",
			dna:  "", frame: 0, isForward: true,
			c5: [5]uint8{inv, inv, inv, inv, inv}, n5: 0,
			c3: [5]uint8{inv, inv, inv, inv, inv}, n3: 0,
		},
	} {
		testcase := testcase
		t.Run(testcase.name, func(t *testing.T) {
			t.Parallel()

			rec := encodeOne(t, Gene{
				ReadID:    "r",
				Frame:     testcase.frame,
				IsForward: testcase.isForward,
			}, testcase.dna)

			assert.Equal(t, testcase.c5, rec.Codons5Prime, "5' codons")
			assert.Equal(t, testcase.n5, rec.N5Prime, "5' count")
			assert.Equal(t, testcase.c3, rec.Codons3Prime, "3' codons")
			assert.Equal(t, testcase.n3, rec.N3Prime, "3' count")
		})
	}
}

func TestTerminalNucleotidePacking(t *testing.T) {
	t.Parallel()

	for _, testcase := range []struct {
		name      string
		dna       string
		frame     int
		isForward bool
		nt5       [3]uint8
		nt3       [3]uint8
	}{
		{
			name: "forward",
			dna:  "ATGAAACCCGGGTTTTAA", isForward: true,
			nt5: [3]uint8{0x8E, 0xA5, 0x7F},
			nt3: [3]uint8{0x57, 0xF0, 0x0A},
		},
		{
			name: "reverse",
			dna:  "ATGAAACCCGGGTTTTAA", isForward: false,
			nt5: [3]uint8{0x0A, 0xA5, 0x7F},
			nt3: [3]uint8{0x57, 0xF0, 0x18},
		},
		{
			// windows are not frame-aligned: frame changes nothing here
			name: "forward frame1",
			dna:  "TATGAAACCCGGGTTTTAAG", frame: 1, isForward: true,
			nt5: [3]uint8{0x23, 0xA9, 0x5F},
			nt3: [3]uint8{0x5F, 0xC0, 0x2B},
		},
		{
			// ambiguous bases pack lossily as code 0
			name: "ambiguous bases",
			dna:  "ATGNNNCCC", isForward: true,
			nt5: [3]uint8{0x8C, 0x05, 0x40},
			nt3: [3]uint8{0x02, 0x30, 0x00},
		},
		{
			// short forward sequences fill the 5' window from the left
			// and right-align into the 3' window
			name: "short sequence",
			dna:  "ACGTAC", isForward: true,
			nt5: [3]uint8{0x9C, 0x90, 0x00},
			nt3: [3]uint8{0x00, 0x00, 0x00},
		},
		{
			name: "shorter than a codon",
			dna:  "AT", isForward: true,
			nt5: [3]uint8{0x80, 0x00, 0x00},
			nt3: [3]uint8{0x00, 0x00, 0x00},
		},
	} {
		testcase := testcase
		t.Run(testcase.name, func(t *testing.T) {
			t.Parallel()

			rec := encodeOne(t, Gene{
				ReadID:    "r",
				Frame:     testcase.frame,
				IsForward: testcase.isForward,
			}, testcase.dna)

			assert.Equal(t, testcase.nt5, rec.NT5Prime, "5' packed window")
			assert.Equal(t, testcase.nt3, rec.NT3Prime, "3' packed window")
		})
	}
}

func TestPackingMatchesDecodedAccessors(t *testing.T) {
	t.Parallel()

	rec := encodeOne(t, Gene{ReadID: "r", IsForward: true}, "ATGAAACCCGGGTTTTAA")
	assert.Equal(t, "ATGAAACCCGGG", rec.Nucleotides5Prime())
	assert.Equal(t, "CCCGGGTTTTAA", rec.Nucleotides3Prime())

	rev := encodeOne(t, Gene{ReadID: "r", IsForward: false}, "ATGAAACCCGGGTTTTAA")
	// reverse complement of the DNA 3' end, read 3'→5'
	assert.Equal(t, "TTAAAACCCGGG", rev.Nucleotides5Prime())
	assert.Equal(t, "CCCGGGTTTCAT", rev.Nucleotides3Prime())
}

func TestAddRecordAfterFinalize(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.agd")
	w := NewWriter(path, SampleProfile{})
	require.NoError(t, w.AddRecord(Gene{ReadID: "r", IsForward: true}, "ATGAAA"))
	require.NoError(t, w.Finalize())

	err := w.AddRecord(Gene{ReadID: "r2", IsForward: true}, "ATGAAA")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFinalized)
}

func TestFinalizeIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.agd")
	w := NewWriter(path, SampleProfile{})
	require.NoError(t, w.AddRecord(Gene{ReadID: "r", IsForward: true}, "ATGAAA"))
	require.NoError(t, w.Finalize())
	require.NoError(t, w.Finalize())
}

func TestFinalizeUnwritableDir(t *testing.T) {
	t.Parallel()

	w := NewWriter("/nonexistent-dir-for-sure/out.agd", SampleProfile{})
	require.NoError(t, w.AddRecord(Gene{ReadID: "r", IsForward: true}, "ATGAAA"))
	require.Error(t, w.Finalize())
}

func TestSeqLenSaturates(t *testing.T) {
	t.Parallel()

	long := make([]byte, 70000)
	for i := range long {
		long[i] = 'A'
	}
	rec := encodeOne(t, Gene{ReadID: "r", IsForward: true}, string(long))
	assert.Equal(t, uint16(65535), rec.SeqLen)
}
