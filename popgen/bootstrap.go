package popgen

import (
	"math/rand"
	"sort"
)

// BootstrapResult is the 95% confidence interval on the aggregate
// Neutrality Index.
type BootstrapResult struct {
	Lower float64
	Upper float64
}

// AggregateNI computes the aggregate Neutrality Index sum(X)/sum(Y)
// over the records with defined components. Undefined when the Y sum is
// zero.
func AggregateNI(records []*Record) OptFloat {
	sumX, sumY := 0.0, 0.0
	for _, r := range records {
		if r.X.Defined && r.Y.Defined {
			sumX += r.X.Value
			sumY += r.Y.Value
		}
	}
	if sumY == 0 {
		return Undefined
	}
	return Defined(sumX / sumY)
}

// BootstrapNI estimates the 95% confidence interval on the aggregate
// Neutrality Index by resampling orthologs with replacement: N
// resamples of N genes each (N = len(records)), NI recomputed per
// resample, and the interval read off the sorted values at ranks
// round(0.025*(N-1)) and round(0.975*(N-1)). Resamples with an
// undefined NI are redrawn; the caller must ensure the aggregate NI
// over records is defined, which guarantees redraws terminate. The
// rand source is supplied by the caller so runs are reproducible.
func BootstrapNI(records []*Record, rng *rand.Rand) (BootstrapResult, bool) {
	n := len(records)
	if n == 0 || !AggregateNI(records).Defined {
		return BootstrapResult{}, false
	}
	values := make([]float64, 0, n)
	sample := make([]*Record, n)
	for len(values) < n {
		for i := range sample {
			sample[i] = records[rng.Intn(n)]
		}
		if ni := AggregateNI(sample); ni.Defined {
			values = append(values, ni.Value)
		}
	}
	sort.Float64s(values)
	lower := int(0.025*float64(n-1) + 0.5)
	upper := int(0.975*float64(n-1) + 0.5)
	return BootstrapResult{Lower: values[lower], Upper: values[upper]}, true
}
