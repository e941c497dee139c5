package codon

import (
	"testing"

	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/assert"
)

func TestTranslate(t *testing.T) {
	tbl := Bacterial()
	for _, tc := range []struct {
		codon string
		aa    byte
	}{
		{"ATG", 'M'},
		{"TGG", 'W'},
		{"GGA", 'G'},
		{"CTA", 'L'},
		{"AGA", 'R'},
		{"AGT", 'S'},
	} {
		aa, ok := tbl.Translate(tc.codon)
		assert.True(t, ok, tc.codon)
		assert.Equal(t, tc.aa, aa, tc.codon)
	}
	for _, bad := range []string{"TAA", "TAG", "TGA", "AC-", "ACN", "", "AC"} {
		_, ok := tbl.Translate(bad)
		assert.False(t, ok, bad)
	}
}

func TestIsStop(t *testing.T) {
	tbl := Bacterial()
	for _, c := range []string{"TAA", "TAG", "TGA"} {
		expect.True(t, tbl.IsStop(c))
	}
	expect.False(t, tbl.IsStop("TGG"))
	expect.False(t, tbl.IsStop("ATG"))
}

func TestFourFoldPrefixes(t *testing.T) {
	// Table 11 has exactly eight four-fold degenerate codon families.
	want := map[string]bool{
		"TC": true, // Ser
		"CT": true, // Leu
		"CC": true, // Pro
		"CG": true, // Arg
		"AC": true, // Thr
		"GT": true, // Val
		"GC": true, // Ala
		"GG": true, // Gly
	}
	got := fourFoldPrefixes(Bacterial())
	assert.Equal(t, want, got)
}

func TestFourFoldDegenerate(t *testing.T) {
	tbl := Bacterial()
	expect.True(t, tbl.FourFoldDegenerate("GGA"))
	expect.True(t, tbl.FourFoldDegenerate("CTT"))
	// Ile/Met family varies at the third position.
	expect.False(t, tbl.FourFoldDegenerate("ATT"))
	// Ser AGT/AGC vs Arg AGA/AGG.
	expect.False(t, tbl.FourFoldDegenerate("AGT"))
	expect.False(t, tbl.FourFoldDegenerate("TA"))
	expect.False(t, tbl.FourFoldDegenerate(""))
}
