package popgen

import (
	"fmt"
	"io"
	"math/rand"
	"sort"
	"strconv"
	"strings"

	"github.com/grailbio/base/tsv"
)

// column couples a column name with its accessor, so the header writer
// and the row writer can never drift apart. Text columns provide text;
// numeric columns provide value, reporting ok=false for an empty cell.
type column struct {
	name string
	// hidden columns are computed and summed but never printed.
	hidden bool
	// summable columns participate in the #sum and #mean rows.
	summable bool
	text     func(*Record) string
	value    func(*Record) (float64, bool)
}

func intCol(get func(*Record) int) func(*Record) (float64, bool) {
	return func(r *Record) (float64, bool) { return float64(get(r)), true }
}

func optCol(get func(*Record) OptFloat) func(*Record) (float64, bool) {
	return func(r *Record) (float64, bool) {
		o := get(r)
		return o.Value, o.Defined
	}
}

func floatCol(get func(*Record) float64) func(*Record) (float64, bool) {
	return func(r *Record) (float64, bool) { return get(r), true }
}

// NtonName names an SFS bucket by its minor-allele count: singletons,
// doubletons, tripletons, quadrupletons, quintupletons, then "6-tons"
// and so on.
func NtonName(nton int) string {
	named := map[int]string{1: "single", 2: "double", 3: "triple", 4: "quadruple", 5: "quintuple"}
	middle, ok := named[nton]
	if !ok {
		middle = strconv.Itoa(nton) + "-"
	}
	return middle + "tons"
}

func sfsColumns(prefix string, get func(*Record) SFS, maxNton int) []column {
	cols := make([]column, 0, maxNton)
	for nton := 1; nton <= maxNton; nton++ {
		k := nton
		cols = append(cols, column{
			name:     prefix + NtonName(nton),
			summable: true,
			value: func(r *Record) (float64, bool) {
				return float64(get(r).Get(k)), true
			},
		})
	}
	return cols
}

// columns returns the full ordered column list for a table whose clade
// has maxNton as its largest reportable minor-allele count.
func columns(maxNton int) []column {
	cols := []column{
		{name: "product", text: func(r *Record) string { return r.Product }},
		{name: "cog digits", text: func(r *Record) string { return r.COGDigits }},
		{name: "cog letters", text: func(r *Record) string { return r.COGLetters }},
		{name: "codons", value: intCol(func(r *Record) int { return r.Counts.Codons })},
		{name: "non-synonymous sites", summable: true, value: optCol(func(r *Record) OptFloat { return r.NonSynSites })},
		{name: "non-synonymous polymorphisms", summable: true, value: intCol(func(r *Record) int { return r.Pn })},
	}
	cols = append(cols, sfsColumns("non-synonymous sfs ", func(r *Record) SFS { return r.Counts.NonSyn }, maxNton)...)
	cols = append(cols,
		column{name: "synonymous sites", summable: true, value: optCol(func(r *Record) OptFloat { return r.SynSites })},
		column{name: "synonymous polymorphisms", summable: true, value: intCol(func(r *Record) int { return r.Ps })},
	)
	cols = append(cols, sfsColumns("synonymous sfs ", func(r *Record) SFS { return r.Counts.Syn }, maxNton)...)
	cols = append(cols,
		column{name: "4-fold synonymous sites", summable: true, value: intCol(func(r *Record) int { return r.Counts.FourFoldSites })},
		column{name: "4-fold synonymous polymorphisms", summable: true, value: intCol(func(r *Record) int { return r.Counts.FourFold.Total() })},
	)
	cols = append(cols, sfsColumns("4-fold synonymous sfs ", func(r *Record) SFS { return r.Counts.FourFold }, maxNton)...)
	cols = append(cols,
		column{name: "multiple site polymorphisms", summable: true, value: intCol(func(r *Record) int { return r.Counts.MultiSite })},
		column{name: "complex codons (with both synonymous and non-synonymous polymorphisms segregating)",
			summable: true, value: intCol(func(r *Record) int { return r.Counts.ComplexCodons })},
		column{name: "N", hidden: true, summable: true, value: floatCol(func(r *Record) float64 { return r.Div.N })},
		column{name: "Dn", summable: true, value: floatCol(func(r *Record) float64 { return r.Div.Dn })},
		column{name: "S", hidden: true, summable: true, value: floatCol(func(r *Record) float64 { return r.Div.S })},
		column{name: "Ds", summable: true, value: floatCol(func(r *Record) float64 { return r.Div.Ds })},
		column{name: "PhiPack sites", summable: true, value: optCol(func(r *Record) OptFloat { return r.Rec.Sites })},
		column{name: "Phi", summable: true, value: optCol(func(r *Record) OptFloat { return r.Rec.Phi })},
		column{name: "Max Chi^2", summable: true, value: optCol(func(r *Record) OptFloat { return r.Rec.MaxChi2 })},
		column{name: "NSS", summable: true, value: optCol(func(r *Record) OptFloat { return r.Rec.NSS })},
		column{name: "Pi", summable: true, value: floatCol(func(r *Record) float64 { return r.Pi })},
		column{name: "Pi nonsyn", summable: true, value: floatCol(func(r *Record) float64 { return r.PiNonSyn })},
		column{name: "Pi syn", summable: true, value: floatCol(func(r *Record) float64 { return r.PiSyn })},
		column{name: "Pi 4-fold syn", summable: true, value: floatCol(func(r *Record) float64 { return r.PiFourFold })},
		column{name: "Theta", summable: true, value: optCol(func(r *Record) OptFloat { return r.Theta })},
		column{name: "Ds*Pn/(Ps+Ds)", hidden: true, summable: true, value: optCol(func(r *Record) OptFloat { return r.X })},
		column{name: "Dn*Ps/(Ps+Ds)", hidden: true, summable: true, value: optCol(func(r *Record) OptFloat { return r.Y })},
		column{name: "neutrality index", value: func(r *Record) (float64, bool) { return 0, false }},
		column{name: "DoS", value: optCol(func(r *Record) OptFloat { return r.DoS })},
	)
	return cols
}

func formatValue(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

// TableMeta describes one statistics table: the clade it was computed
// for, the clade it was compared against, and whether the odd/even
// codon tables are stacked below the full one.
type TableMeta struct {
	Label   string
	IDs     []string
	VsLabel string
	VsIDs   []string
	Strains int
	OddEven bool
}

// writeSummary appends the #sum and #mean rows, and when the aggregate
// Neutrality Index is defined, the #NI row and its bootstrap 95%
// confidence bounds.
func writeSummary(tw *tsv.Writer, cols []column, records []*Record, rng *rand.Rand) error {
	sums := make(map[string]float64)
	for _, c := range cols {
		if !c.summable {
			continue
		}
		for _, r := range records {
			if v, ok := c.value(r); ok {
				sums[c.name] += v
			}
		}
	}
	if err := writeNamedRow(tw, cols, "#sum", sums); err != nil {
		return err
	}

	means := make(map[string]float64, len(sums))
	for name, sum := range sums {
		means[name] = sum / float64(len(records))
	}
	dosSum, dosCount := 0.0, 0
	for _, r := range records {
		if r.DoS.Defined {
			dosSum += r.DoS.Value
			dosCount++
		}
	}
	if dosCount > 0 {
		means["DoS"] = dosSum / float64(dosCount)
	}
	if err := writeNamedRow(tw, cols, "#mean", means); err != nil {
		return err
	}

	ni := AggregateNI(records)
	if !ni.Defined {
		return nil
	}
	if err := writeNamedRow(tw, cols, "#NI", map[string]float64{"neutrality index": ni.Value}); err != nil {
		return err
	}
	ci, ok := BootstrapNI(records, rng)
	if !ok {
		return nil
	}
	if err := writeNamedRow(tw, cols, "#NI 95% lower limit", map[string]float64{"neutrality index": ci.Lower}); err != nil {
		return err
	}
	return writeNamedRow(tw, cols, "#NI 95% upper limit", map[string]float64{"neutrality index": ci.Upper})
}

// writeNamedRow writes a summary row: cells present in values get their
// formatted value, the rest stay empty.
func writeNamedRow(tw *tsv.Writer, cols []column, name string, values map[string]float64) error {
	tw.WriteString(name)
	for _, c := range cols {
		if c.hidden {
			continue
		}
		if v, ok := values[c.name]; ok {
			tw.WriteString(formatValue(v))
		} else {
			tw.WriteString("")
		}
	}
	return tw.EndLine()
}

func writeHeader(tw *tsv.Writer, cols []column) error {
	tw.WriteString("#ortholog")
	for _, c := range cols {
		if c.hidden {
			continue
		}
		tw.WriteString(c.name)
	}
	return tw.EndLine()
}

func writeRecord(tw *tsv.Writer, cols []column, r *Record) error {
	tw.WriteString(r.Ortholog)
	for _, c := range cols {
		if c.hidden {
			continue
		}
		switch {
		case c.text != nil:
			tw.WriteString(c.text(r))
		default:
			if v, ok := c.value(r); ok {
				tw.WriteString(formatValue(v))
			} else {
				tw.WriteString("")
			}
		}
	}
	return tw.EndLine()
}

// WriteTable writes one statistics table: a preamble identifying the
// clades, then for each record section (the full alignment table,
// optionally followed by the odd- and even-codon tables) a header, one
// row per ortholog, and the summary rows. rng drives the Neutrality
// Index bootstrap.
func WriteTable(w io.Writer, meta TableMeta, sections [][]*Record, rng *rand.Rand) error {
	tw := tsv.NewWriter(w)
	tw.WriteString(fmt.Sprintf("#%d %s strains compared with %d %s strains",
		len(meta.IDs), meta.Label, len(meta.VsIDs), meta.VsLabel))
	if err := tw.EndLine(); err != nil {
		return err
	}
	for _, ids := range []struct {
		label string
		ids   []string
	}{{meta.Label, meta.IDs}, {meta.VsLabel, meta.VsIDs}} {
		sorted := append([]string(nil), ids.ids...)
		sort.Strings(sorted)
		tw.WriteString(fmt.Sprintf("#IDs %s: %s", ids.label, strings.Join(sorted, ", ")))
		if err := tw.EndLine(); err != nil {
			return err
		}
	}
	if meta.Strains <= 1 {
		tw.WriteString(fmt.Sprintf("#Need at least two genomes to calculate table, but was: %d", meta.Strains))
		if err := tw.EndLine(); err != nil {
			return err
		}
		return tw.Flush()
	}
	if meta.OddEven {
		for _, note := range []string{
			"#First table contains calculations for all codons",
			"#Second table contains calculations for odd codons only",
			"#Third table contains calculations for even codons only",
		} {
			tw.WriteString(note)
			if err := tw.EndLine(); err != nil {
				return err
			}
		}
	}

	cols := columns(MaxNton(meta.Strains))
	for _, records := range sections {
		if err := writeHeader(tw, cols); err != nil {
			return err
		}
		for _, r := range records {
			if err := writeRecord(tw, cols, r); err != nil {
				return err
			}
		}
		if len(records) > 0 {
			if err := writeSummary(tw, cols, records, rng); err != nil {
				return err
			}
		}
	}
	return tw.Flush()
}
