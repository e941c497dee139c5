// Package codon implements the genetic-code table used for codon
// classification: translation, stop-codon detection, and the derived set
// of four-fold-degenerate codon prefixes (two-base prefixes for which all
// four third-position nucleotides encode the same amino acid).
package codon

const nucleotides = "ACGT"

// Table maps codons to amino acids for one genetic code.
type Table struct {
	forward  map[string]byte
	stops    map[string]bool
	fourFold map[string]bool
}

// Bacterial is NCBI translation table 11 (bacterial, archaeal and plant
// plastid), the code used throughout the pipeline. The forward table is
// identical to the standard code; only start codons differ, which we do
// not model.
var bacterial = newTable(map[string]byte{
	"TTT": 'F', "TTC": 'F', "TTA": 'L', "TTG": 'L',
	"CTT": 'L', "CTC": 'L', "CTA": 'L', "CTG": 'L',
	"ATT": 'I', "ATC": 'I', "ATA": 'I', "ATG": 'M',
	"GTT": 'V', "GTC": 'V', "GTA": 'V', "GTG": 'V',
	"TCT": 'S', "TCC": 'S', "TCA": 'S', "TCG": 'S',
	"CCT": 'P', "CCC": 'P', "CCA": 'P', "CCG": 'P',
	"ACT": 'T', "ACC": 'T', "ACA": 'T', "ACG": 'T',
	"GCT": 'A', "GCC": 'A', "GCA": 'A', "GCG": 'A',
	"TAT": 'Y', "TAC": 'Y',
	"CAT": 'H', "CAC": 'H', "CAA": 'Q', "CAG": 'Q',
	"AAT": 'N', "AAC": 'N', "AAA": 'K', "AAG": 'K',
	"GAT": 'D', "GAC": 'D', "GAA": 'E', "GAG": 'E',
	"TGT": 'C', "TGC": 'C', "TGG": 'W',
	"CGT": 'R', "CGC": 'R', "CGA": 'R', "CGG": 'R',
	"AGT": 'S', "AGC": 'S', "AGA": 'R', "AGG": 'R',
	"GGT": 'G', "GGC": 'G', "GGA": 'G', "GGG": 'G',
}, []string{"TAA", "TAG", "TGA"})

// Bacterial returns translation table 11. The returned table is shared
// and read-only.
func Bacterial() *Table { return bacterial }

func newTable(forward map[string]byte, stopCodons []string) *Table {
	t := &Table{
		forward: forward,
		stops:   make(map[string]bool, len(stopCodons)),
	}
	for _, c := range stopCodons {
		t.stops[c] = true
	}
	t.fourFold = fourFoldPrefixes(t)
	return t
}

// fourFoldPrefixes derives the two-base prefixes whose four completions
// all translate to the same amino acid. Prefix families containing a
// stop codon never qualify.
func fourFoldPrefixes(t *Table) map[string]bool {
	prefixes := make(map[string]bool)
	for i := 0; i < len(nucleotides); i++ {
		for j := 0; j < len(nucleotides); j++ {
			prefix := string([]byte{nucleotides[i], nucleotides[j]})
			var first byte
			degenerate := true
			for k := 0; k < len(nucleotides); k++ {
				aa, ok := t.forward[prefix+string(nucleotides[k])]
				if !ok {
					degenerate = false
					break
				}
				if k == 0 {
					first = aa
				} else if aa != first {
					degenerate = false
					break
				}
			}
			if degenerate {
				prefixes[prefix] = true
			}
		}
	}
	return prefixes
}

// Translate returns the amino acid encoded by the given codon. ok is
// false for stop codons and for codons containing gaps or ambiguous
// bases.
func (t *Table) Translate(codon string) (aa byte, ok bool) {
	aa, ok = t.forward[codon]
	return aa, ok
}

// IsStop reports whether the codon is a stop codon.
func (t *Table) IsStop(codon string) bool { return t.stops[codon] }

// FourFoldDegenerate reports whether the codon starts with a four-fold
// degenerate prefix, i.e. whether every substitution at its third
// position is synonymous.
func (t *Table) FourFoldDegenerate(codon string) bool {
	if len(codon) != 3 {
		return false
	}
	return t.fourFold[codon[:2]]
}
