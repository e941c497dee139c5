package main

// divergence-calc computes the per-ortholog population-genetics
// statistics tables for two genome clades from trimmed codon
// alignments plus externally computed divergence and recombination
// values.
//
// Sequence identifiers are expected to carry pipe-separated fields,
// "genomeID|geneID|COG1234H", with the gene product as the FASTA
// description; the genome field selects the clade and the COG field
// feeds the annotation columns.
//
// The divergence file has one tab-separated line per ortholog:
// ortholog, N, S, Dn, Ds, as produced by a codeml-style estimator run
// on the two clades. The optional recombination file carries ortholog,
// informative sites, Phi, Max Chi^2 and NSS from a PhiPack-style test.
// Lines starting with '#' are skipped in both.
//
// Example:
//
//	divergence-calc -genomes-a=taxon_a.tsv -genomes-b=taxon_b.tsv \
//	    -orthologs=ortho1.ffn,ortho2.ffn -divergence=codeml.tsv \
//	    -recombination=phipack.tsv -table-a=a.tsv -table-b=b.tsv -odd-even

import (
	"bytes"
	"context"
	"flag"
	"math/rand"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"

	"github.com/odosenl/divergence/align"
	"github.com/odosenl/divergence/codon"
	"github.com/odosenl/divergence/encoding/fasta"
	"github.com/odosenl/divergence/popgen"
)

type clade struct {
	label string
	ids   map[string]bool
	list  []string
}

// readClade parses a genome list file: one genome per line, ID and name
// separated by a tab. The longest common prefix of the names becomes
// the clade label.
func readClade(ctx context.Context, path string) (clade, error) {
	data, err := file.ReadFile(ctx, path)
	if err != nil {
		return clade{}, err
	}
	c := clade{ids: make(map[string]bool)}
	prefix := ""
	first := true
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		c.ids[fields[0]] = true
		c.list = append(c.list, fields[0])
		name := ""
		if len(fields) > 1 {
			name = strings.TrimSpace(fields[1])
		}
		if first {
			prefix, first = name, false
		} else {
			prefix = commonPrefix(prefix, name)
		}
	}
	c.label = strings.TrimSpace(prefix)
	if c.label == "" {
		c.label = strings.TrimSuffix(file.Base(path), filepath.Ext(file.Base(path)))
	}
	return c, nil
}

func commonPrefix(a, b string) string {
	max := len(a)
	if len(b) < max {
		max = len(b)
	}
	i := 0
	for i < max && a[i] == b[i] {
		i++
	}
	return a[:i]
}

// readDivergence parses the external estimator output: ortholog, N, S,
// Dn, Ds per line.
func readDivergence(ctx context.Context, path string) (map[string]popgen.Divergence, error) {
	data, err := file.ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	out := make(map[string]popgen.Divergence)
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 5 {
			log.Error.Printf("%s: malformed divergence line %q", path, line)
			continue
		}
		var vals [4]float64
		ok := true
		for i := 0; i < 4; i++ {
			if vals[i], err = strconv.ParseFloat(fields[i+1], 64); err != nil {
				log.Error.Printf("%s: malformed divergence line %q: %v", path, line, err)
				ok = false
				break
			}
		}
		if ok {
			out[fields[0]] = popgen.Divergence{N: vals[0], S: vals[1], Dn: vals[2], Ds: vals[3]}
		}
	}
	return out, nil
}

// readRecombination parses the recombination-test output: ortholog,
// informative sites, Phi, Max Chi^2, NSS per line. Non-numeric cells
// (PhiPack prints "--" when a statistic cannot be computed) stay
// undefined.
func readRecombination(ctx context.Context, path string) (map[string]popgen.Recombination, error) {
	data, err := file.ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	out := make(map[string]popgen.Recombination)
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		opt := func(i int) popgen.OptFloat {
			if i >= len(fields) {
				return popgen.Undefined
			}
			v, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return popgen.Undefined
			}
			return popgen.Defined(v)
		}
		out[fields[0]] = popgen.Recombination{
			Sites:   opt(1),
			Phi:     opt(2),
			MaxChi2: opt(3),
			NSS:     opt(4),
		}
	}
	return out, nil
}

type ortholog struct {
	name      string
	alignment *align.Alignment
	product   string
	cogs      []string
}

func readOrtholog(ctx context.Context, path string) (ortholog, error) {
	data, err := file.ReadFile(ctx, path)
	if err != nil {
		return ortholog{}, err
	}
	records, err := fasta.Read(bytes.NewReader(data))
	if err != nil {
		return ortholog{}, err
	}
	base := file.Base(path)
	o := ortholog{name: strings.TrimSuffix(base, filepath.Ext(base))}
	o.alignment = &align.Alignment{Name: o.name}
	seenCOG := make(map[string]bool)
	for _, rec := range records {
		o.alignment.Rows = append(o.alignment.Rows, align.Row{ID: rec.ID, Seq: rec.Seq})
		if o.product == "" {
			o.product = rec.Doc
		}
		fields := strings.Split(rec.ID, "|")
		if len(fields) > 2 && fields[2] != "" && !seenCOG[fields[2]] {
			seenCOG[fields[2]] = true
			o.cogs = append(o.cogs, fields[2])
		}
	}
	return o, nil
}

func genomeOf(rowID string) string { return strings.SplitN(rowID, "|", 2)[0] }

// cladeInputs restricts every ortholog alignment to the given clade and
// bundles it with its external values.
func cladeInputs(orthologs []ortholog, c clade,
	div map[string]popgen.Divergence, rec map[string]popgen.Recombination) []popgen.Input {
	inputs := make([]popgen.Input, 0, len(orthologs))
	for _, o := range orthologs {
		sub := o.alignment.Subset(o.name, func(id string) bool { return c.ids[genomeOf(id)] })
		in := popgen.Input{
			Ortholog:  o.name,
			Alignment: sub,
			Product:   o.product,
			COGs:      o.cogs,
			Rec:       rec[o.name],
		}
		d, ok := div[o.name]
		if !ok {
			log.Error.Printf("ortholog %s: no divergence values supplied", o.name)
		}
		in.Div = d
		inputs = append(inputs, in)
	}
	return inputs
}

// oddEvenInputs splits each input alignment into its odd- and
// even-codon halves, keeping the external values of the parent.
func oddEvenInputs(inputs []popgen.Input) (odd, even []popgen.Input) {
	odd = make([]popgen.Input, len(inputs))
	even = make([]popgen.Input, len(inputs))
	for i, in := range inputs {
		o, e := in.Alignment.OddEvenCodons()
		odd[i], even[i] = in, in
		odd[i].Alignment = o
		even[i].Alignment = e
	}
	return odd, even
}

func writeCladeTable(ctx context.Context, path string, meta popgen.TableMeta,
	inputs []popgen.Input, oddEven bool, rng *rand.Rand) {
	tbl := codon.Bacterial()
	records, failures := popgen.ComputeAll(inputs, tbl)
	sections := [][]*popgen.Record{records}
	if oddEven {
		oddIn, evenIn := oddEvenInputs(inputs)
		oddRecords, _ := popgen.ComputeAll(oddIn, tbl)
		evenRecords, _ := popgen.ComputeAll(evenIn, tbl)
		sections = append(sections, oddRecords, evenRecords)
	}
	out, err := file.Create(ctx, path)
	if err != nil {
		log.Fatalf("create %s: %v", path, err)
	}
	if err := popgen.WriteTable(out.Writer(ctx), meta, sections, rng); err != nil {
		log.Fatalf("write %s: %v", path, err)
	}
	if err := out.Close(ctx); err != nil {
		log.Fatalf("close %s: %v", path, err)
	}
	log.Printf("Wrote %d ortholog rows (%d failed) to %s", len(records), len(failures), path)
}

func main() {
	var (
		genomesA      = flag.String("genomes-a", "", "Genome list file for clade A (ID<TAB>name per line).")
		genomesB      = flag.String("genomes-b", "", "Genome list file for clade B (ID<TAB>name per line).")
		orthologsFlag = flag.String("orthologs", "", "Comma-separated list of trimmed ortholog FASTA files.")
		divergencePth = flag.String("divergence", "", "Tab-separated divergence values per ortholog: ortholog, N, S, Dn, Ds.")
		recombPath    = flag.String("recombination", "", "Optional tab-separated recombination values per ortholog.")
		tableA        = flag.String("table-a", "", "Output statistics table for clade A.")
		tableB        = flag.String("table-b", "", "Output statistics table for clade B.")
		oddEven       = flag.Bool("odd-even", false, "Append tables computed separately for odd and even codons.")
		seed          = flag.Int64("seed", 1, "Seed for the Neutrality Index bootstrap.")
	)
	cleanup := grail.Init()
	defer cleanup()
	ctx := vcontext.Background()

	if *genomesA == "" || *genomesB == "" || *orthologsFlag == "" || *divergencePth == "" ||
		*tableA == "" || *tableB == "" {
		log.Fatal("-genomes-a, -genomes-b, -orthologs, -divergence, -table-a and -table-b are required")
	}

	cladeA, err := readClade(ctx, *genomesA)
	if err != nil {
		log.Fatalf("read %s: %v", *genomesA, err)
	}
	cladeB, err := readClade(ctx, *genomesB)
	if err != nil {
		log.Fatalf("read %s: %v", *genomesB, err)
	}
	div, err := readDivergence(ctx, *divergencePth)
	if err != nil {
		log.Fatalf("read %s: %v", *divergencePth, err)
	}
	rec := map[string]popgen.Recombination{}
	if *recombPath != "" {
		if rec, err = readRecombination(ctx, *recombPath); err != nil {
			log.Fatalf("read %s: %v", *recombPath, err)
		}
	}

	var orthologs []ortholog
	for _, path := range strings.Split(*orthologsFlag, ",") {
		o, err := readOrtholog(ctx, path)
		if err != nil {
			log.Fatalf("read %s: %v", path, err)
		}
		orthologs = append(orthologs, o)
	}
	log.Printf("Starting calculations of %d clade A genomes vs %d clade B over %d orthologs",
		len(cladeA.list), len(cladeB.list), len(orthologs))

	rng := rand.New(rand.NewSource(*seed))
	inputsA := cladeInputs(orthologs, cladeA, div, rec)
	writeCladeTable(ctx, *tableA, popgen.TableMeta{
		Label: cladeA.label, IDs: cladeA.list,
		VsLabel: cladeB.label, VsIDs: cladeB.list,
		Strains: len(cladeA.list), OddEven: *oddEven,
	}, inputsA, *oddEven, rng)

	inputsB := cladeInputs(orthologs, cladeB, div, rec)
	writeCladeTable(ctx, *tableB, popgen.TableMeta{
		Label: cladeB.label, IDs: cladeB.list,
		VsLabel: cladeA.label, VsIDs: cladeA.list,
		Strains: len(cladeB.list), OddEven: *oddEven,
	}, inputsB, *oddEven, rng)

	log.Printf("Produced %s and %s", *tableA, *tableB)
}
