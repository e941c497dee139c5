package popgen

import "strconv"

// OptFloat is a float64 that may be undefined. Statistics with guarded
// divide-by-zero conditions (DoS, the Neutrality Index components,
// Theta for fewer than two strains) are undefined rather than NaN, and
// print as an empty cell.
type OptFloat struct {
	Value   float64
	Defined bool
}

// Defined wraps v as a defined OptFloat.
func Defined(v float64) OptFloat { return OptFloat{Value: v, Defined: true} }

// Undefined is the zero OptFloat.
var Undefined = OptFloat{}

// String formats the value the way the statistics table prints it: an
// empty string when undefined.
func (o OptFloat) String() string {
	if !o.Defined {
		return ""
	}
	return strconv.FormatFloat(o.Value, 'g', -1, 64)
}

// Divergence holds the synonymous/non-synonymous site and substitution
// counts supplied by the external evolutionary-distance estimator run
// on the two clades of an ortholog.
type Divergence struct {
	N  float64 // non-synonymous sites
	S  float64 // synonymous sites
	Dn float64 // non-synonymous substitutions
	Ds float64 // synonymous substitutions
}

// Recombination holds the recombination-test statistics supplied by the
// external detector; they are merged verbatim into the output table.
type Recombination struct {
	Sites   OptFloat // informative sites examined
	Phi     OptFloat
	MaxChi2 OptFloat
	NSS     OptFloat
}

// Record is the full per-ortholog output row: annotations, counters,
// spectra, externally supplied divergence and recombination values, and
// every derived statistic.
type Record struct {
	Ortholog   string
	Product    string
	COGDigits  string
	COGLetters string

	Strains int // rows in the clade-restricted alignment
	SeqLen  int // alignment length truncated to a multiple of three

	Counts SiteCounts

	Div Divergence
	Rec Recombination

	// NonSynSites and SynSites are L*N/(N+S) and L*S/(N+S), undefined
	// when N+S is zero.
	NonSynSites OptFloat
	SynSites    OptFloat

	// Pn and Ps are the spectrum totals.
	Pn int
	Ps int

	DoS OptFloat

	Pi         float64 // over the union of the syn and non-syn spectra
	PiNonSyn   float64
	PiSyn      float64
	PiFourFold float64
	Theta      OptFloat

	// X = Ds*Pn/(Ps+Ds) and Y = Dn*Ps/(Ps+Ds) are the Neutrality Index
	// components, undefined when Ps+Ds is zero. Computed per ortholog,
	// summed across orthologs as NI = sum(X)/sum(Y), and hidden from the
	// printed table.
	X OptFloat
	Y OptFloat
}

// MaxNton returns the largest minor-allele count reportable for n
// strains.
func MaxNton(n int) int { return n / 2 }

// Pi computes nucleotide diversity from a site frequency spectrum:
//
//	n/(n-1) * sum(SFS[i] * 2*(i/n)*(1-i/n), i=1..floor((n-1)/2)) / L
//
// It returns zero for an empty spectrum, for fewer than two strains and
// for a zero-length sequence.
func Pi(n, seqLen int, sfs SFS) float64 {
	if n <= 1 || seqLen == 0 {
		return 0
	}
	nf := float64(n)
	sum := 0.0
	for i := 1; i <= (n-1)/2; i++ {
		f := float64(i) / nf
		sum += float64(sfs.Get(i)) * 2 * f * (1 - f)
	}
	return nf / (nf - 1) * sum / float64(seqLen)
}

// Theta computes Watterson's estimator: the number of segregating sites
// over L times the (n-1)th harmonic number. Undefined for fewer than
// two strains or a zero-length sequence.
func Theta(n, seqLen int, sfs SFS) OptFloat {
	if n <= 1 || seqLen == 0 {
		return Undefined
	}
	segregating := 0
	for i := 1; i <= n/2; i++ {
		segregating += sfs.Get(i)
	}
	harmonic := 0.0
	for i := 1; i < n; i++ {
		harmonic += 1 / float64(i)
	}
	return Defined(float64(segregating) / (float64(seqLen) * harmonic))
}

// Derive fills in every derived statistic of a Record from its
// spectra, counters and externally supplied divergence values. Strains
// and SeqLen must be set to the row count of the clade-restricted
// alignment and its length truncated to a multiple of three. Codons
// excluded from the scan for ambiguity still count toward SeqLen,
// matching the established behavior of this analysis.
func Derive(r *Record) {
	counts := r.Counts
	r.Pn = counts.NonSyn.Total()
	r.Ps = counts.Syn.Total()

	if total := r.Div.N + r.Div.S; total != 0 {
		r.NonSynSites = Defined(float64(r.SeqLen) * r.Div.N / total)
		r.SynSites = Defined(float64(r.SeqLen) * r.Div.S / total)
	}

	substitutions := r.Div.Dn + r.Div.Ds
	polymorphisms := r.Pn + r.Ps
	if substitutions != 0 && polymorphisms != 0 {
		r.DoS = Defined(r.Div.Dn/substitutions - float64(r.Pn)/float64(polymorphisms))
	}

	union := counts.Syn.Clone()
	union.Merge(counts.NonSyn)
	r.Pi = Pi(r.Strains, r.SeqLen, union)
	r.PiNonSyn = Pi(r.Strains, r.SeqLen, counts.NonSyn)
	r.PiSyn = Pi(r.Strains, r.SeqLen, counts.Syn)
	r.PiFourFold = Pi(r.Strains, r.SeqLen, counts.FourFold)
	r.Theta = Theta(r.Strains, r.SeqLen, union)

	if psPlusDs := float64(r.Ps) + r.Div.Ds; psPlusDs != 0 {
		r.X = Defined(r.Div.Ds * float64(r.Pn) / psPlusDs)
		r.Y = Defined(r.Div.Dn * float64(r.Ps) / psPlusDs)
	}
}
