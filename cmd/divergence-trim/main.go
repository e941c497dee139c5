package main

// divergence-trim trims codon alignments of orthologous genes to their
// informative window and splits them into accepted and misaligned sets.
//
// Input alignments must already be codon aligned (e.g. by a
// protein-guided aligner): every sequence the same length, a multiple
// of three, and no codon mixing gaps with bases.
//
// Example:
//
//	divergence-trim -orthologs=ortho1.ffn,ortho2.ffn \
//	    -retained-threshold=80 -max-indel-length=10 \
//	    -trimmed-dir=trimmed -misaligned-dir=misaligned -stats=trim.tsv

import (
	"bytes"
	"flag"
	"path/filepath"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"

	"github.com/odosenl/divergence/align"
	"github.com/odosenl/divergence/encoding/fasta"
)

func orthologName(path string) string {
	base := file.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func main() {
	var (
		orthologsFlag = flag.String("orthologs", "", "Comma-separated list of aligned ortholog FASTA files.")
		threshold     = flag.Float64("retained-threshold", 90, "Minimum percentage of sequence retained after trimming for an ortholog to be accepted.")
		maxIndel      = flag.Int("max-indel-length", 10, "Force orthologs with a gap run of at least this length to zero retention.")
		trimmedDir    = flag.String("trimmed-dir", "", "Directory for accepted trimmed alignments.")
		misalignedDir = flag.String("misaligned-dir", "", "Directory for misaligned trimmed alignments.")
		statsPath     = flag.String("stats", "", "Path for the trim statistics report.")
	)
	cleanup := grail.Init()
	defer cleanup()
	ctx := vcontext.Background()

	if *orthologsFlag == "" || *trimmedDir == "" || *misalignedDir == "" || *statsPath == "" {
		log.Fatal("-orthologs, -trimmed-dir, -misaligned-dir and -stats are required")
	}
	opts := align.Options{RetainedThreshold: *threshold, MaxIndelLength: *maxIndel}

	var alignments []*align.Alignment
	for _, path := range strings.Split(*orthologsFlag, ",") {
		data, err := file.ReadFile(ctx, path)
		if err != nil {
			log.Fatalf("read %s: %v", path, err)
		}
		records, err := fasta.Read(bytes.NewReader(data))
		if err != nil {
			log.Fatalf("parse %s: %v", path, err)
		}
		a := &align.Alignment{Name: orthologName(path)}
		for _, rec := range records {
			a.Rows = append(a.Rows, align.Row{ID: rec.ID, Seq: rec.Seq})
		}
		alignments = append(alignments, a)
	}
	log.Printf("Trimming %d alignments from first non-gap codon to last non-gap codon", len(alignments))

	outcomes := align.TrimAll(alignments, opts)
	accepted, misaligned, failed := 0, 0, 0
	for _, o := range outcomes {
		if o.Err != nil {
			log.Error.Printf("ortholog %s: %v", o.Name, o.Err)
			failed++
			continue
		}
		dir := *misalignedDir
		if o.Accepted {
			dir = *trimmedDir
			accepted++
		} else {
			misaligned++
		}
		records := make([]fasta.Record, len(o.Result.Trimmed.Rows))
		for i, row := range o.Result.Trimmed.Rows {
			records[i] = fasta.Record{ID: row.ID, Seq: row.Seq}
		}
		out, err := file.Create(ctx, file.Join(dir, o.Name+".ffn"))
		if err != nil {
			log.Fatalf("create %s: %v", file.Join(dir, o.Name+".ffn"), err)
		}
		if err := fasta.Write(out.Writer(ctx), records); err != nil {
			log.Fatalf("write %s: %v", out.Name(), err)
		}
		if err := out.Close(ctx); err != nil {
			log.Fatalf("close %s: %v", out.Name(), err)
		}
	}

	stats, err := file.Create(ctx, *statsPath)
	if err != nil {
		log.Fatalf("create %s: %v", *statsPath, err)
	}
	if err := align.WriteReport(stats.Writer(ctx), outcomes, opts); err != nil {
		log.Fatalf("write %s: %v", *statsPath, err)
	}
	if err := stats.Close(ctx); err != nil {
		log.Fatalf("close %s: %v", *statsPath, err)
	}
	log.Printf("Trimmed %d alignments: %d accepted, %d misaligned, %d failed", len(outcomes), accepted, misaligned, failed)
}
