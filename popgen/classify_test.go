package popgen

import (
	"testing"

	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/assert"

	"github.com/odosenl/divergence/align"
	"github.com/odosenl/divergence/codon"
)

func testAlignment(seqs ...string) *align.Alignment {
	a := &align.Alignment{Name: "test"}
	for i, seq := range seqs {
		a.Rows = append(a.Rows, align.Row{ID: "strain" + string(rune('A'+i)), Seq: seq})
	}
	return a
}

func TestClassifyMonomorphicFourFold(t *testing.T) {
	// GGA is four-fold degenerate (Gly), monomorphic across rows: the
	// site counter moves but no spectrum does.
	counts := Classify(testAlignment("GGA", "GGA", "GGA"), codon.Bacterial())
	expect.EQ(t, counts.FourFoldSites, 1)
	expect.EQ(t, counts.Syn.Total(), 0)
	expect.EQ(t, counts.NonSyn.Total(), 0)
	expect.EQ(t, counts.FourFold.Total(), 0)
	expect.EQ(t, counts.Codons, 1)
}

func TestClassifyMonomorphicNonDegenerate(t *testing.T) {
	counts := Classify(testAlignment("ATG", "ATG"), codon.Bacterial())
	expect.EQ(t, counts.FourFoldSites, 0)
	expect.EQ(t, counts.Codons, 1)
}

func TestClassifyExcludedColumns(t *testing.T) {
	// Gapped, ambiguous and stop codons each exclude their column from
	// every counter and spectrum.
	for _, seqs := range [][]string{
		{"---", "GGA"},
		{"GGN", "GGA"},
		{"TAA", "GGA"}, // stop in one row excludes the column
	} {
		counts := Classify(testAlignment(seqs...), codon.Bacterial())
		expect.EQ(t, counts.FourFoldSites, 0)
		expect.EQ(t, counts.MultiSite, 0)
		expect.EQ(t, counts.ComplexCodons, 0)
		expect.EQ(t, counts.Syn.Total(), 0)
		expect.EQ(t, counts.NonSyn.Total(), 0)
		// Codons still counts the scanned column.
		expect.EQ(t, counts.Codons, 1)
	}
}

func TestClassifySynonymousThirdPosition(t *testing.T) {
	// GGA/GGA/GGA/GGG: Gly throughout, third position polymorphic with
	// minor-allele count 1, four-fold degenerate prefix GG.
	counts := Classify(testAlignment("GGA", "GGA", "GGA", "GGG"), codon.Bacterial())
	assert.Equal(t, SFS{1: 1}, counts.Syn)
	assert.Equal(t, SFS{1: 1}, counts.FourFold)
	expect.EQ(t, counts.FourFoldSites, 1)
	expect.EQ(t, counts.NonSyn.Total(), 0)
}

func TestClassifySynonymousTwoFoldSite(t *testing.T) {
	// TAT/TAC both encode Tyr but TA is not four-fold degenerate: the
	// synonymous spectrum moves, the four-fold one does not.
	counts := Classify(testAlignment("TAT", "TAT", "TAC"), codon.Bacterial())
	assert.Equal(t, SFS{1: 1}, counts.Syn)
	expect.EQ(t, counts.FourFold.Total(), 0)
	expect.EQ(t, counts.FourFoldSites, 0)
}

func TestClassifyNonSynonymous(t *testing.T) {
	// AAA (Lys) vs AGA (Arg): one polymorphic position, two alleles, two
	// amino acids. Cleanly non-synonymous.
	counts := Classify(testAlignment("AAA", "AAA", "AGA"), codon.Bacterial())
	assert.Equal(t, SFS{1: 1}, counts.NonSyn)
	expect.EQ(t, counts.Syn.Total(), 0)
	expect.EQ(t, counts.ComplexCodons, 0)
}

func TestClassifyNonSynonymousThreeAlleles(t *testing.T) {
	// CAT (His), AAT (Asn), GAT (Asp): three alleles, three amino acids,
	// still one allele per amino acid. Reference allele is the most
	// frequent; the two minor alleles are singletons.
	counts := Classify(testAlignment("CAT", "CAT", "AAT", "GAT"), codon.Bacterial())
	assert.Equal(t, SFS{1: 2}, counts.NonSyn)
}

func TestClassifyComplexCodon(t *testing.T) {
	// TTA (Leu), TTG (Leu), TTT (Phe): three alleles at the third
	// position but only two amino acids, so some alleles change the
	// amino acid and some do not.
	counts := Classify(testAlignment("TTA", "TTG", "TTT"), codon.Bacterial())
	expect.EQ(t, counts.ComplexCodons, 1)
	expect.EQ(t, counts.Syn.Total(), 0)
	expect.EQ(t, counts.NonSyn.Total(), 0)
}

func TestClassifyMultipleSitePolymorphism(t *testing.T) {
	// First and third positions both vary.
	counts := Classify(testAlignment("GGA", "CGA", "GGG"), codon.Bacterial())
	expect.EQ(t, counts.MultiSite, 1)
	expect.EQ(t, counts.Syn.Total(), 0)
	expect.EQ(t, counts.NonSyn.Total(), 0)
	expect.EQ(t, counts.FourFoldSites, 0)
}

func TestClassifyReferenceAlleleDecrement(t *testing.T) {
	// Six strains: GGA x3, GGG x2, GGC x1. All Gly. The reference
	// allele (A, count 3) is removed from the local spectrum; the
	// remaining buckets are one doubleton and one singleton.
	counts := Classify(testAlignment("GGA", "GGA", "GGA", "GGG", "GGG", "GGC"), codon.Bacterial())
	assert.Equal(t, SFS{1: 1, 2: 1}, counts.Syn)
	assert.Equal(t, SFS{1: 1, 2: 1}, counts.FourFold)
}

func TestClassifyReferenceTie(t *testing.T) {
	// Two alleles tied 2:2. Removing either reference leaves a single
	// doubleton bucket.
	counts := Classify(testAlignment("GGA", "GGA", "GGG", "GGG"), codon.Bacterial())
	assert.Equal(t, SFS{2: 1}, counts.Syn)
}

func TestClassifyLowercaseInput(t *testing.T) {
	counts := Classify(testAlignment("gga", "ggg"), codon.Bacterial())
	assert.Equal(t, SFS{1: 1}, counts.Syn)
}

func TestClassifyTruncatesPartialCodon(t *testing.T) {
	counts := Classify(testAlignment("GGAGG", "GGGGG"), codon.Bacterial())
	expect.EQ(t, counts.Codons, 1)
	assert.Equal(t, SFS{1: 1}, counts.Syn)
}

func TestClassifyMultipleColumns(t *testing.T) {
	counts := Classify(testAlignment(
		"GGAATGAAATAT",
		"GGGATGAGATAT"), codon.Bacterial())
	// Column 1: synonymous four-fold; column 2: monomorphic; column 3:
	// non-synonymous (Lys/Arg); column 4: monomorphic, not degenerate.
	assert.Equal(t, SFS{1: 1}, counts.Syn)
	assert.Equal(t, SFS{1: 1}, counts.NonSyn)
	expect.EQ(t, counts.FourFoldSites, 1)
	expect.EQ(t, counts.Codons, 4)
}
