// Package fasta reads and writes aligned FASTA files. Unlike an
// indexed random-access reader, records are kept in file order with
// their descriptions, since downstream processing treats the file as an
// ordered multiple sequence alignment whose row identifiers carry
// genome, gene and annotation fields.
package fasta

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Record is one FASTA entry. ID is the text between '>' and the first
// space; Doc is the remainder of the header line, if any.
type Record struct {
	ID  string
	Doc string
	Seq string
}

// Read parses all records from r, preserving file order.
func Read(r io.Reader) ([]Record, error) {
	var (
		records []Record
		current *Record
		seq     strings.Builder
	)
	flush := func() {
		if current != nil {
			current.Seq = seq.String()
			records = append(records, *current)
			seq.Reset()
		}
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			flush()
			header := line[1:]
			rec := Record{ID: header}
			if i := strings.IndexByte(header, ' '); i >= 0 {
				rec.ID, rec.Doc = header[:i], header[i+1:]
			}
			if rec.ID == "" {
				return nil, errors.New("fasta: empty sequence name")
			}
			current = &rec
			continue
		}
		if current == nil {
			return nil, errors.Errorf("fasta: sequence data %q before any header", line)
		}
		seq.WriteString(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "fasta: read")
	}
	flush()
	if len(records) == 0 {
		return nil, errors.New("fasta: no records")
	}
	return records, nil
}

const lineWidth = 80

// Write writes records to w, wrapping sequence lines at 80 characters.
func Write(w io.Writer, records []Record) error {
	bw := bufio.NewWriter(w)
	for _, rec := range records {
		header := rec.ID
		if rec.Doc != "" {
			header += " " + rec.Doc
		}
		if _, err := bw.WriteString(">" + header + "\n"); err != nil {
			return errors.Wrap(err, "fasta: write")
		}
		for start := 0; start < len(rec.Seq); start += lineWidth {
			end := start + lineWidth
			if end > len(rec.Seq) {
				end = len(rec.Seq)
			}
			if _, err := bw.WriteString(rec.Seq[start:end] + "\n"); err != nil {
				return errors.Wrap(err, "fasta: write")
			}
		}
	}
	return bw.Flush()
}
