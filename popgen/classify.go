package popgen

import (
	"strings"

	"github.com/odosenl/divergence/align"
	"github.com/odosenl/divergence/codon"
)

// SiteCounts accumulates the spectra and counters produced by scanning
// one clade-restricted alignment codon column by codon column.
type SiteCounts struct {
	// Syn, NonSyn and FourFold are the site frequency spectra for
	// synonymous, non-synonymous and four-fold-degenerate polymorphisms.
	Syn      SFS
	NonSyn   SFS
	FourFold SFS
	// FourFoldSites counts codon columns matching a four-fold degenerate
	// prefix, whether or not they are polymorphic: the tally is of
	// potential degenerate sites, not just realized ones.
	FourFoldSites int
	// MultiSite counts codon columns with more than one polymorphic
	// nucleotide position; these contribute to no spectrum.
	MultiSite int
	// ComplexCodons counts columns where some but not all alleles at the
	// single polymorphic position change the amino acid. Scoring such
	// columns is inherently ambiguous, so they only get counted.
	ComplexCodons int
	// Codons is the number of complete codon columns scanned, including
	// excluded ones.
	Codons int
}

// Merge adds the counts of o into s.
func (s *SiteCounts) Merge(o SiteCounts) {
	s.Syn.Merge(o.Syn)
	s.NonSyn.Merge(o.NonSyn)
	s.FourFold.Merge(o.FourFold)
	s.FourFoldSites += o.FourFoldSites
	s.MultiSite += o.MultiSite
	s.ComplexCodons += o.ComplexCodons
	s.Codons += o.Codons
}

func isACGT(b byte) bool { return b == 'A' || b == 'C' || b == 'G' || b == 'T' }

// Classify scans the alignment codon by codon and accumulates the site
// frequency spectra and counters. The alignment length is truncated to
// a multiple of three. Codon columns where any row carries a gap, an
// ambiguous base or a stop codon are excluded entirely: they touch no
// counter and no spectrum.
func Classify(a *align.Alignment, tbl *codon.Table) SiteCounts {
	counts := SiteCounts{
		Syn:      make(SFS),
		NonSyn:   make(SFS),
		FourFold: make(SFS),
		Codons:   a.NumCodons(),
	}
	n := a.NumRows()
	if n == 0 {
		return counts
	}
	codons := make([]string, n)

column:
	for c := 0; c < a.NumCodons(); c++ {
		for i := 0; i < n; i++ {
			cod := strings.ToUpper(a.Codon(i, c))
			for k := 0; k < 3; k++ {
				if !isACGT(cod[k]) {
					continue column
				}
			}
			if tbl.IsStop(cod) {
				continue column
			}
			codons[i] = cod
		}

		aaUsage := make(map[byte]int, 2)
		for _, cod := range codons {
			aa, _ := tbl.Translate(cod)
			aaUsage[aa]++
		}

		var siteUsage [3]map[byte]int
		polymorphic := 0
		polySite := -1
		for k := 0; k < 3; k++ {
			usage := make(map[byte]int, 2)
			for _, cod := range codons {
				usage[cod[k]]++
			}
			siteUsage[k] = usage
			if len(usage) > 1 {
				polymorphic++
				polySite = k
			}
		}

		if polymorphic == 0 {
			// Monomorphic columns still tally potential four-fold sites.
			if tbl.FourFoldDegenerate(codons[0]) {
				counts.FourFoldSites++
			}
			continue
		}
		if polymorphic > 1 {
			counts.MultiSite++
			continue
		}

		usage := siteUsage[polySite]
		local := localSpectrum(usage)
		if len(aaUsage) == 1 {
			// All rows translate identically: synonymous.
			counts.Syn.Merge(local)
			if polySite == 2 && tbl.FourFoldDegenerate(codons[0]) {
				counts.FourFold.Merge(local)
				counts.FourFoldSites++
			}
		} else if len(usage) == len(aaUsage) {
			// One allele per amino acid: cleanly non-synonymous.
			counts.NonSyn.Merge(local)
		} else {
			counts.ComplexCodons++
		}
	}
	return counts
}

// localSpectrum converts the allele usage counts of one polymorphic
// site into its contribution to a site frequency spectrum: a bucket per
// allele count, minus one occupation for the reference allele (the most
// frequent one). Which allele is the reference does not affect the
// spectrum when counts tie for the maximum, since only its count value
// is removed; ties are nonetheless resolved to the lexicographically
// smallest base for determinism.
func localSpectrum(usage map[byte]int) SFS {
	var refBase byte
	refCount := -1
	for base, count := range usage {
		if count > refCount || (count == refCount && base < refBase) {
			refBase, refCount = base, count
		}
	}
	local := make(SFS)
	for _, count := range usage {
		local[count]++
	}
	local[refCount]--
	if local[refCount] == 0 {
		delete(local, refCount)
	}
	return local
}
