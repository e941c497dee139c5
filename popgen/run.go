package popgen

import (
	"regexp"
	"strings"

	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"

	"github.com/odosenl/divergence/align"
	"github.com/odosenl/divergence/codon"
)

// Input bundles everything needed to compute one ortholog's record:
// the clade-restricted alignment plus the externally supplied
// annotations, divergence counts and recombination statistics.
type Input struct {
	Ortholog  string
	Alignment *align.Alignment
	Product   string
	// COGs are the raw COG assignments found on the ortholog, e.g.
	// "COG0001H"; digits and letters are split into separate columns.
	COGs []string
	Div  Divergence
	Rec  Recombination
}

// Failure reports an ortholog whose record could not be computed. One
// ortholog's failure never aborts the others.
type Failure struct {
	Ortholog string
	Err      error
}

var cogRE = regexp.MustCompile(`^(COG[0-9]+)([A-Z]*)$`)

// splitCOGs splits COG assignments into their numbered and functional-
// category halves, each comma-joined. Strings that do not look like COG
// identifiers are dropped.
func splitCOGs(cogs []string) (digits, letters string) {
	var ds, ls []string
	for _, cog := range cogs {
		m := cogRE.FindStringSubmatch(cog)
		if m == nil {
			continue
		}
		ds = append(ds, m[1])
		ls = append(ls, m[2])
	}
	return strings.Join(ds, ","), strings.Join(ls, ",")
}

// Compute builds the record for a single ortholog: validate, classify,
// derive.
func Compute(in Input, tbl *codon.Table) (*Record, error) {
	if err := in.Alignment.Validate(); err != nil {
		return nil, err
	}
	digits, letters := splitCOGs(in.COGs)
	r := &Record{
		Ortholog:   in.Ortholog,
		Product:    in.Product,
		COGDigits:  digits,
		COGLetters: letters,
		Strains:    in.Alignment.NumRows(),
		SeqLen:     in.Alignment.Length() - in.Alignment.Length()%3,
		Counts:     Classify(in.Alignment, tbl),
		Div:        in.Div,
		Rec:        in.Rec,
	}
	Derive(r)
	return r, nil
}

// ComputeAll computes records for all inputs in parallel. Failed
// orthologs are collected and logged; successful records come back in
// input order.
func ComputeAll(inputs []Input, tbl *codon.Table) ([]*Record, []Failure) {
	records := make([]*Record, len(inputs))
	errs := make([]error, len(inputs))
	_ = traverse.Each(len(inputs), func(i int) error {
		records[i], errs[i] = Compute(inputs[i], tbl)
		return nil
	})
	var out []*Record
	var failures []Failure
	for i, r := range records {
		if errs[i] != nil {
			log.Error.Printf("ortholog %s: %v", inputs[i].Ortholog, errs[i])
			failures = append(failures, Failure{Ortholog: inputs[i].Ortholog, Err: errs[i]})
			continue
		}
		out = append(out, r)
	}
	return out, failures
}
