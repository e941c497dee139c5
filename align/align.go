// Package align holds the in-memory model for codon-aligned multiple
// sequence alignments of orthologous genes, and the trimming step that
// cuts an alignment down to its informative window before any
// statistics are computed.
//
// Alignments are codon alignments: the column count is a multiple of
// three and every three-column codon slice of a row is either fully
// gapped ("---") or fully ungapped. Violations are reported as
// *MalformedError and are fatal for the ortholog concerned.
package align

import (
	"fmt"
	"strings"
)

// Gap is the alignment gap character.
const Gap = '-'

// Row is one aligned sequence, keyed by the FASTA-style identifier of
// the source gene.
type Row struct {
	ID  string
	Seq string
}

// Alignment is an ordered set of equal-length aligned sequences for one
// ortholog.
type Alignment struct {
	// Name identifies the ortholog, typically the source filename base.
	Name string
	Rows []Row
}

// MalformedError reports a violation of the codon-alignment invariant.
// It identifies the ortholog, the offending row and the column offset.
type MalformedError struct {
	Name   string
	RowID  string
	Column int
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("alignment %s: row %s, column %d: %s", e.Name, e.RowID, e.Column, e.Reason)
}

// NumRows returns the number of sequences in the alignment.
func (a *Alignment) NumRows() int { return len(a.Rows) }

// Length returns the column count of the alignment.
func (a *Alignment) Length() int {
	if len(a.Rows) == 0 {
		return 0
	}
	return len(a.Rows[0].Seq)
}

// NumCodons returns the number of complete codon columns, truncating a
// trailing partial codon.
func (a *Alignment) NumCodons() int { return a.Length() / 3 }

// Codon returns the three-character codon of the given row at codon
// column c.
func (a *Alignment) Codon(row, c int) string {
	return a.Rows[row].Seq[c*3 : c*3+3]
}

// Validate checks the codon-alignment invariant: equal row lengths, a
// column count that is a multiple of three, and no codon mixing gaps
// with bases.
func (a *Alignment) Validate() error {
	length := a.Length()
	for _, row := range a.Rows {
		if len(row.Seq) != length {
			return &MalformedError{Name: a.Name, RowID: row.ID, Column: 0,
				Reason: fmt.Sprintf("row length %d differs from %d", len(row.Seq), length)}
		}
	}
	if length%3 != 0 {
		rowID := ""
		if len(a.Rows) > 0 {
			rowID = a.Rows[0].ID
		}
		return &MalformedError{Name: a.Name, RowID: rowID, Column: length,
			Reason: fmt.Sprintf("length %d is not a multiple of three", length)}
	}
	for offset := 0; offset < length; offset += 3 {
		for _, row := range a.Rows {
			codon := row.Seq[offset : offset+3]
			if strings.ContainsRune(codon, Gap) && codon != "---" {
				return &MalformedError{Name: a.Name, RowID: row.ID, Column: offset,
					Reason: fmt.Sprintf("codon %q mixes gaps and bases", codon)}
			}
		}
	}
	return nil
}

// Subset returns a new alignment containing the rows for which keep
// returns true, preserving row order.
func (a *Alignment) Subset(name string, keep func(id string) bool) *Alignment {
	sub := &Alignment{Name: name}
	for _, row := range a.Rows {
		if keep(row.ID) {
			sub.Rows = append(sub.Rows, row)
		}
	}
	return sub
}

// slice returns the alignment restricted to columns [start, end).
func (a *Alignment) slice(start, end int) *Alignment {
	out := &Alignment{Name: a.Name, Rows: make([]Row, len(a.Rows))}
	for i, row := range a.Rows {
		out.Rows[i] = Row{ID: row.ID, Seq: row.Seq[start:end]}
	}
	return out
}

// OddEvenCodons splits the alignment into two alignments made of its
// odd-numbered and even-numbered codon columns (counting from one). The
// two halves carry statistically independent codon samples of the same
// genes, used for resampled versions of the downstream statistics. A
// trailing partial codon is dropped.
func (a *Alignment) OddEvenCodons() (odd, even *Alignment) {
	n := len(a.Rows)
	oddSeqs := make([]strings.Builder, n)
	evenSeqs := make([]strings.Builder, n)
	codons := a.NumCodons()
	for c := 0; c < codons; c++ {
		dst := oddSeqs
		if (c+1)%2 == 0 {
			dst = evenSeqs
		}
		for i := range a.Rows {
			dst[i].WriteString(a.Codon(i, c))
		}
	}
	odd = &Alignment{Name: a.Name, Rows: make([]Row, n)}
	even = &Alignment{Name: a.Name, Rows: make([]Row, n)}
	for i, row := range a.Rows {
		odd.Rows[i] = Row{ID: row.ID, Seq: oddSeqs[i].String()}
		even.Rows[i] = Row{ID: row.ID, Seq: evenSeqs[i].String()}
	}
	return odd, even
}
