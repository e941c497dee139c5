// Package popgen implements the codon-level population-genetics engine:
// per-codon polymorphism classification, site-frequency-spectrum
// construction, derived statistics (Pi, Watterson's Theta, Direction of
// Selection, McDonald-Kreitman Neutrality Index components), bootstrap
// confidence intervals for the aggregate Neutrality Index, and the
// tab-separated statistics table.
package popgen

// SFS is a site frequency spectrum: the number of polymorphic sites
// observed per minor-allele count.
type SFS map[int]int

// Get returns the number of sites with minor-allele count k, zero when
// the bucket is absent.
func (s SFS) Get(k int) int { return s[k] }

// Merge adds the buckets of o into s.
func (s SFS) Merge(o SFS) {
	for k, v := range o {
		s[k] += v
	}
}

// Total returns the sum over all buckets: the number of polymorphisms
// in the spectrum.
func (s SFS) Total() int {
	total := 0
	for _, v := range s {
		total += v
	}
	return total
}

// Clone returns a copy of s.
func (s SFS) Clone() SFS {
	out := make(SFS, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
