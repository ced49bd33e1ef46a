// Copyright 2024 The agd Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package agd

import "math"

// codonAminoAcids maps each 6-bit codon index to its amino acid letter under
// the standard genetic code ('*' = stop).  Indexed TTT=0 through GGG=63; a
// process-wide constant, never mutated.
const codonAminoAcids = "" +
	"FFLL" + // TTT TTC TTA TTG
	"SSSS" + // TCT TCC TCA TCG
	"YY**" + // TAT TAC TAA TAG
	"CC*W" + // TGT TGC TGA TGG
	"LLLL" + // CTT CTC CTA CTG
	"PPPP" + // CCT CCC CCA CCG
	"HHQQ" + // CAT CAC CAA CAG
	"RRRR" + // CGT CGC CGA CGG
	"IIIM" + // ATT ATC ATA ATG
	"TTTT" + // ACT ACC ACA ACG
	"NNKK" + // AAT AAC AAA AAG
	"SSRR" + // AGT AGC AGA AGG
	"VVVV" + // GTT GTC GTA GTG
	"AAAA" + // GCT GCC GCA GCG
	"DDEE" + // GAT GAC GAA GAG
	"GGGG" //   GGT GGC GGA GGG

// AminoAcid returns the amino acid letter for a codon index ('*' for stop),
// or 'X' for the invalid-codon sentinel and anything else above 63.
func AminoAcid(codonIdx uint8) byte {
	if codonIdx > 63 {
		return 'X'
	}
	return codonAminoAcids[codonIdx]
}

// damageProbThreshold prunes positions whose damage probability is too low
// to be worth classifying.  Sites below it are skipped, not classified
// either way.
const damageProbThreshold = 0.05

// DamageSite is one evaluated candidate damage position within a stored
// terminal codon.
type DamageSite struct {
	CodonIdx   int  // terminal codon slot (0-4), counted from the terminus
	NTPos      int  // position within the codon (0-2)
	Observed   byte // 'T' at 5' sites, 'A' at 3' sites
	Expected   byte // the undamaged base: 'C' or 'G'
	Synonymous bool // true if reverting the damage leaves the amino acid unchanged
}

// DamageResult aggregates the candidate damage sites of one record.
type DamageResult struct {
	HasSynonymous bool
	Synonymous5   int
	Synonymous3   int
	NonSyn5       int
	NonSyn3       int
	Sites         []DamageSite
}

// DetectSynonymousDamage classifies candidate deamination sites in a decoded
// record against the sample damage model.  Single-stranded damage chemistry
// converts C→T near the 5' terminus and, on the opposite strand convention,
// G→A near the 3' terminus; the probability of damage at distance d from the
// relevant terminus is dMax * exp(-lambda*d).
//
// A site is a candidate when the stored codon shows the damaged base (T at
// the 5' side, A at the 3' side) at a position whose damage probability
// clears the pruning threshold.  Synonymy is decided by flipping that
// nucleotide's 2-bit code back to the undamaged base -- T↔C and A↔G are each
// single-bit flips in this encoding -- and comparing amino acids.  Codons
// holding the invalid sentinel are skipped entirely.
//
// The function is pure and safe for concurrent use.
func DetectSynonymousDamage(rec *Record, dMax, lambda float32) DamageResult {
	var result DamageResult

	// 5' terminal codons: C→T damage shows as an observed T.
	for i := 0; i < int(rec.N5Prime); i++ {
		codonIdx := rec.Codons5Prime[i]
		if codonIdx > 63 {
			continue
		}
		for ntPos := 0; ntPos < 3; ntPos++ {
			// codon i covers read positions 3i..3i+2 from the 5' end
			dist := i*3 + ntPos
			if probDamage(dMax, lambda, dist) < damageProbThreshold {
				continue
			}

			shift := 4 - 2*ntPos
			if (codonIdx>>shift)&3 != 0 { // not a T
				continue
			}
			synonymous := flipIsSynonymous(codonIdx, shift)
			result.Sites = append(result.Sites, DamageSite{
				CodonIdx:   i,
				NTPos:      ntPos,
				Observed:   'T',
				Expected:   'C',
				Synonymous: synonymous,
			})
			if synonymous {
				result.Synonymous5++
				result.HasSynonymous = true
			} else {
				result.NonSyn5++
			}
		}
	}

	// 3' terminal codons: G→A damage shows as an observed A.  Slot 0 is the
	// last codon, so the distance to the terminus runs against codon order.
	for i := 0; i < int(rec.N3Prime); i++ {
		codonIdx := rec.Codons3Prime[i]
		if codonIdx > 63 {
			continue
		}
		for ntPos := 0; ntPos < 3; ntPos++ {
			dist := i*3 + (2 - ntPos)
			if probDamage(dMax, lambda, dist) < damageProbThreshold {
				continue
			}

			shift := 4 - 2*ntPos
			if (codonIdx>>shift)&3 != 2 { // not an A
				continue
			}
			synonymous := flipIsSynonymous(codonIdx, shift)
			result.Sites = append(result.Sites, DamageSite{
				CodonIdx:   i,
				NTPos:      ntPos,
				Observed:   'A',
				Expected:   'G',
				Synonymous: synonymous,
			})
			if synonymous {
				result.Synonymous3++
				result.HasSynonymous = true
			} else {
				result.NonSyn3++
			}
		}
	}

	return result
}

// probDamage evaluates the exponential damage model at an integer distance
// from a terminus.
func probDamage(dMax, lambda float32, dist int) float64 {
	return float64(dMax) * math.Exp(-float64(lambda)*float64(dist))
}

// flipIsSynonymous flips the 2-bit nucleotide at the given shift (T↔C or
// A↔G, both single-bit flips) and reports whether the amino acid is
// unchanged.
func flipIsSynonymous(codonIdx uint8, shift int) bool {
	alt := codonIdx ^ (1 << shift)
	return codonAminoAcids[codonIdx] == codonAminoAcids[alt]
}
