package popgen

import (
	"testing"

	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/assert"
)

func TestPiSingleDoubleton(t *testing.T) {
	// Four strains, one doubleton, L=100:
	// 4/3 * 1 * 2 * (2/4) * (1 - 2/4) / 100.
	got := Pi(4, 100, SFS{2: 1})
	assert.InDelta(t, 0.006667, got, 1e-6)
}

func TestPiEmptySpectrum(t *testing.T) {
	expect.EQ(t, Pi(4, 100, SFS{}), 0.0)
	expect.EQ(t, Pi(1, 100, SFS{1: 3}), 0.0)
	expect.EQ(t, Pi(4, 0, SFS{1: 3}), 0.0)
}

func TestPiIgnoresBucketsAboveHalf(t *testing.T) {
	// For n=4 the sum runs to floor((n-1)/2)=1: only singletons count.
	withDoubleton := Pi(4, 100, SFS{1: 2, 2: 5})
	onlySingletons := Pi(4, 100, SFS{1: 2})
	expect.EQ(t, withDoubleton, onlySingletons)
}

func TestTheta(t *testing.T) {
	// Two segregating singleton sites, n=4, L=100:
	// 2 / (100 * (1 + 1/2 + 1/3)).
	theta := Theta(4, 100, SFS{1: 2})
	assert.True(t, theta.Defined)
	assert.InDelta(t, 2.0/(100*(1+0.5+1.0/3)), theta.Value, 1e-12)
}

func TestThetaEmptyAndUndefined(t *testing.T) {
	theta := Theta(4, 100, SFS{})
	assert.True(t, theta.Defined)
	expect.EQ(t, theta.Value, 0.0)
	assert.False(t, Theta(1, 100, SFS{1: 1}).Defined)
	assert.False(t, Theta(0, 100, SFS{}).Defined)
}

func deriveTestRecord(counts SiteCounts, div Divergence) *Record {
	r := &Record{
		Ortholog: "ortho1",
		Strains:  4,
		SeqLen:   300,
		Counts:   counts,
		Div:      div,
	}
	Derive(r)
	return r
}

func TestDeriveSites(t *testing.T) {
	r := deriveTestRecord(SiteCounts{Syn: SFS{}, NonSyn: SFS{}, FourFold: SFS{}},
		Divergence{N: 600, S: 200, Dn: 3, Ds: 9})
	assert.True(t, r.NonSynSites.Defined)
	assert.InDelta(t, 300.0*600/800, r.NonSynSites.Value, 1e-12)
	assert.InDelta(t, 300.0*200/800, r.SynSites.Value, 1e-12)
}

func TestDeriveSitesUndefinedWithoutDivergence(t *testing.T) {
	r := deriveTestRecord(SiteCounts{Syn: SFS{}, NonSyn: SFS{}, FourFold: SFS{}}, Divergence{})
	assert.False(t, r.NonSynSites.Defined)
	assert.False(t, r.SynSites.Defined)
}

func TestDeriveDoS(t *testing.T) {
	r := deriveTestRecord(
		SiteCounts{Syn: SFS{1: 3}, NonSyn: SFS{1: 1}, FourFold: SFS{}},
		Divergence{N: 600, S: 200, Dn: 3, Ds: 9})
	// Dn/(Dn+Ds) - Pn/(Pn+Ps) = 3/12 - 1/4 = 0.
	assert.True(t, r.DoS.Defined)
	assert.InDelta(t, 0.0, r.DoS.Value, 1e-12)
	expect.EQ(t, r.Pn, 1)
	expect.EQ(t, r.Ps, 3)
}

func TestDeriveDoSUndefined(t *testing.T) {
	// No substitutions.
	r := deriveTestRecord(
		SiteCounts{Syn: SFS{1: 3}, NonSyn: SFS{1: 1}, FourFold: SFS{}},
		Divergence{N: 600, S: 200})
	assert.False(t, r.DoS.Defined)
	// No polymorphisms.
	r = deriveTestRecord(
		SiteCounts{Syn: SFS{}, NonSyn: SFS{}, FourFold: SFS{}},
		Divergence{N: 600, S: 200, Dn: 3, Ds: 9})
	assert.False(t, r.DoS.Defined)
}

func TestDeriveNIComponents(t *testing.T) {
	r := deriveTestRecord(
		SiteCounts{Syn: SFS{1: 3}, NonSyn: SFS{1: 2}, FourFold: SFS{}},
		Divergence{N: 600, S: 200, Dn: 4, Ds: 9})
	// X = Ds*Pn/(Ps+Ds) = 9*2/12, Y = Dn*Ps/(Ps+Ds) = 4*3/12.
	assert.True(t, r.X.Defined)
	assert.InDelta(t, 1.5, r.X.Value, 1e-12)
	assert.InDelta(t, 1.0, r.Y.Value, 1e-12)
}

func TestDeriveNIComponentsUndefined(t *testing.T) {
	r := deriveTestRecord(
		SiteCounts{Syn: SFS{}, NonSyn: SFS{1: 2}, FourFold: SFS{}},
		Divergence{N: 600, S: 200, Dn: 4})
	// Ps + Ds == 0.
	assert.False(t, r.X.Defined)
	assert.False(t, r.Y.Defined)
}

func TestDerivePiUnion(t *testing.T) {
	r := deriveTestRecord(
		SiteCounts{Syn: SFS{1: 1}, NonSyn: SFS{1: 1}, FourFold: SFS{}},
		Divergence{N: 1, S: 1, Dn: 1, Ds: 1})
	// Union Pi covers both spectra; it must exceed either part alone.
	assert.Greater(t, r.Pi, r.PiSyn)
	assert.Greater(t, r.Pi, r.PiNonSyn)
	assert.InDelta(t, r.PiSyn+r.PiNonSyn, r.Pi, 1e-12)
	expect.EQ(t, r.PiFourFold, 0.0)
}

func TestOptFloatString(t *testing.T) {
	expect.EQ(t, Undefined.String(), "")
	expect.EQ(t, Defined(1.5).String(), "1.5")
	expect.EQ(t, Defined(5).String(), "5")
}

func TestMaxNton(t *testing.T) {
	expect.EQ(t, MaxNton(4), 2)
	expect.EQ(t, MaxNton(5), 2)
	expect.EQ(t, MaxNton(7), 3)
}
