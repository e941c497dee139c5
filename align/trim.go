package align

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/grailbio/base/traverse"
	"github.com/grailbio/base/tsv"
)

// TrimResult describes the outcome of trimming one alignment.
type TrimResult struct {
	// Trimmed spans the first through last fully resolved codon column of
	// the input. Columns in between may still contain gaps.
	Trimmed *Alignment
	// OriginalLen and TrimmedLen are column counts before and after.
	OriginalLen int
	TrimmedLen  int
	// RetainedPct is TrimmedLen/OriginalLen*100. Forced to zero, along
	// with TrimmedLen, when a gap run of MaxIndelLength or more survives
	// inside the trimmed window: such an indel signals a probable
	// misalignment regardless of how much sequence was retained.
	RetainedPct float64
}

// Options control trimming and the accepted/misaligned classification.
type Options struct {
	// RetainedThreshold is the minimum retained percentage for an
	// alignment to be accepted.
	RetainedThreshold float64
	// MaxIndelLength is the gap-run length at or above which a trimmed
	// alignment is forced to zero retention.
	MaxIndelLength int
}

// Trim cuts the alignment down to the window spanning its first and
// last fully resolved codon columns (columns without a gap in any row).
// It validates the codon-alignment invariant first and returns a
// *MalformedError on violation.
func Trim(a *Alignment, maxIndelLength int) (TrimResult, error) {
	if err := a.Validate(); err != nil {
		return TrimResult{}, err
	}
	res := TrimResult{OriginalLen: a.Length()}

	firstStart, lastEnd := -1, -1
	for c := 0; c < a.NumCodons(); c++ {
		resolved := true
		for i := range a.Rows {
			if strings.ContainsRune(a.Codon(i, c), Gap) {
				resolved = false
				break
			}
		}
		if !resolved {
			continue
		}
		if firstStart < 0 {
			firstStart = c * 3
		}
		lastEnd = c*3 + 3
	}
	if firstStart < 0 {
		// No fully resolved column at all.
		res.Trimmed = a.slice(0, 0)
		return res, nil
	}
	res.Trimmed = a.slice(firstStart, lastEnd)

	if maxIndelLength > 0 {
		indel := strings.Repeat(string(Gap), maxIndelLength)
		for _, row := range res.Trimmed.Rows {
			if strings.Contains(row.Seq, indel) {
				return res, nil // TrimmedLen and RetainedPct stay zero
			}
		}
	}
	res.TrimmedLen = lastEnd - firstStart
	res.RetainedPct = float64(res.TrimmedLen) / float64(res.OriginalLen) * 100
	return res, nil
}

// Outcome is the per-ortholog result of TrimAll. Classification is a
// policy decision: every alignment that validates yields Accepted or
// not, regardless of how little sequence was retained.
type Outcome struct {
	Name     string
	Result   TrimResult
	Accepted bool
	Err      error
}

// TrimAll trims the given alignments in parallel and classifies each as
// accepted or misaligned against opts.RetainedThreshold. A malformed
// alignment yields an Outcome with Err set and does not abort the
// others.
func TrimAll(alignments []*Alignment, opts Options) []Outcome {
	outcomes := make([]Outcome, len(alignments))
	_ = traverse.Each(len(alignments), func(i int) error {
		a := alignments[i]
		res, err := Trim(a, opts.MaxIndelLength)
		outcomes[i] = Outcome{
			Name:     a.Name,
			Result:   res,
			Accepted: err == nil && res.RetainedPct >= opts.RetainedThreshold,
			Err:      err,
		}
		return nil
	})
	return outcomes
}

// WriteReport writes the trim statistics report: total alignments
// trimmed, average retention, the number filtered, and a per-alignment
// table sorted by ascending retained percentage. Outcomes with errors
// are skipped; they are reported through their Err fields instead.
func WriteReport(w io.Writer, outcomes []Outcome, opts Options) error {
	trimmed := make([]Outcome, 0, len(outcomes))
	totalPct := 0.0
	filtered := 0
	for _, o := range outcomes {
		if o.Err != nil {
			continue
		}
		trimmed = append(trimmed, o)
		totalPct += o.Result.RetainedPct
		if !o.Accepted {
			filtered++
		}
	}
	sort.SliceStable(trimmed, func(i, j int) bool {
		return trimmed[i].Result.RetainedPct < trimmed[j].Result.RetainedPct
	})
	averagePct := 0.0
	if len(trimmed) > 0 {
		averagePct = totalPct / float64(len(trimmed))
	}

	tw := tsv.NewWriter(w)
	tw.WriteString(fmt.Sprintf("#%6d sequence alignments trimmed", len(trimmed)))
	if err := tw.EndLine(); err != nil {
		return err
	}
	tw.WriteString(fmt.Sprintf("#%5.1f%% sequence retained on average overall", averagePct))
	if err := tw.EndLine(); err != nil {
		return err
	}
	tw.WriteString(fmt.Sprintf("#%6d orthologs filtered because less than %v%% sequence retained or because of indel longer than %d",
		filtered, opts.RetainedThreshold, opts.MaxIndelLength))
	if err := tw.EndLine(); err != nil {
		return err
	}
	tw.WriteString("# Trimmed file\tOriginal length\tTrimmed length\tPercentage retained")
	if err := tw.EndLine(); err != nil {
		return err
	}
	for _, o := range trimmed {
		tw.WriteString(o.Name)
		tw.WriteInt64(int64(o.Result.OriginalLen))
		tw.WriteInt64(int64(o.Result.TrimmedLen))
		tw.WriteFloat64(o.Result.RetainedPct, 'f', 2)
		if err := tw.EndLine(); err != nil {
			return err
		}
	}
	return tw.Flush()
}
