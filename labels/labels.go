// Package labels reads the annotator's TSV files and writes the per-iteration
// to-verify and resolved sheets.
//
// A sheet has the columns id, name, category and label followed by the item
// attributes in name order. The label column holds a single label or the
// remaining candidates joined with "|".
package labels

import (
	"encoding/csv"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/teranos/treelabel/errors"
	"github.com/teranos/treelabel/tree"
)

// Column names.
const (
	ColumnID       = "id"
	ColumnName     = "name"
	ColumnCategory = "category"
	ColumnLabel    = "label"

	// legacyColumnID is accepted when reading sheets from older tasks.
	legacyColumnID = "product_id"
)

// Ingest counts what a sheet contained.
type Ingest struct {
	Rows      int `json:"n_rows"`
	Missing   int `json:"n_missing_rows"`
	Ambiguous int `json:"n_ambiguous_rows"`
}

// ReadFile reads the sheet at path. See Read.
func ReadFile(path string, allowed []string) (map[int64]string, Ingest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Ingest{}, errors.Wrapf(err, "open labels %s", path)
	}
	defer f.Close()

	manual, ingest, err := Read(f, allowed)
	if err != nil {
		return nil, ingest, errors.Wrapf(err, "read labels %s", path)
	}
	return manual, ingest, nil
}

// Read returns the single labels found in a sheet keyed by item id. Rows with
// an empty label or several candidates are counted and ignored. Every label
// token must belong to allowed or be one of the reserved labels.
func Read(r io.Reader, allowed []string) (map[int64]string, Ingest, error) {
	alphabet := map[string]bool{tree.Reject: true, tree.Skip: true}
	for _, l := range allowed {
		alphabet[l] = true
	}

	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	var ingest Ingest
	header, err := cr.Read()
	if err == io.EOF {
		return map[int64]string{}, ingest, nil
	}
	if err != nil {
		return nil, ingest, errors.Wrapf(errors.ErrMalformedRecord, "header: %v", err)
	}
	idCol := slices.Index(header, ColumnID)
	if idCol < 0 {
		idCol = slices.Index(header, legacyColumnID)
	}
	labelCol := slices.Index(header, ColumnLabel)
	if idCol < 0 || labelCol < 0 {
		return nil, ingest, errors.WithHintf(
			errors.NewMalformedRecordf("header %q lacks the %s or %s column", strings.Join(header, " "), ColumnID, ColumnLabel),
			"keep the header row of the to-verify sheet intact")
	}

	manual := make(map[int64]string)
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, ingest, errors.Wrapf(errors.ErrMalformedRecord, "%v", err)
		}
		line, _ := cr.FieldPos(0)
		ingest.Rows++

		id, err := strconv.ParseInt(strings.TrimSpace(record[idCol]), 10, 64)
		if err != nil {
			return nil, ingest, errors.NewMalformedRecordf("line %d: id %q is not an integer", line, record[idCol])
		}

		candidates := tree.ParseLabelSet(record[labelCol])
		if candidates.Len() == 0 {
			ingest.Missing++
			continue
		}
		for _, l := range candidates {
			if !alphabet[l] {
				return nil, ingest, errors.WithHintf(
					errors.Wrapf(errors.ErrUnknownLabel, "line %d: item %d: %q", line, id, l),
					"allowed labels are %v plus %q and %q", allowed, tree.Reject, tree.Skip)
			}
		}
		if candidates.Len() > 1 {
			ingest.Ambiguous++
			continue
		}
		manual[id] = candidates[0]
	}
	return manual, ingest, nil
}
