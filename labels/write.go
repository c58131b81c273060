package labels

import (
	"encoding/csv"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"

	"github.com/teranos/treelabel/errors"
	"github.com/teranos/treelabel/tree"
)

// ToVerify returns the items the annotator is shown next: every selected or
// manually labelled item, the most ambiguous first.
func ToVerify(t *tree.Tree) []tree.NodeID {
	var rows []tree.NodeID
	for _, n := range t.Items() {
		l := t.Node(n).Labels
		if l.Selected || l.Manual != "" {
			rows = append(rows, n)
		}
	}
	slices.SortStableFunc(rows, func(a, b tree.NodeID) int {
		la, lb := t.Node(a).Labels.ToVerify(), t.Node(b).Labels.ToVerify()
		if la.Len() != lb.Len() {
			return lb.Len() - la.Len()
		}
		return la.Compare(lb)
	})
	return rows
}

// Resolved returns the items whose prediction is a single label.
func Resolved(t *tree.Tree) []tree.NodeID {
	var rows []tree.NodeID
	for _, n := range t.Items() {
		if t.Node(n).Labels.IsGood() {
			rows = append(rows, n)
		}
	}
	return rows
}

// WriteToVerify writes the to-verify sheet and returns its row count.
func WriteToVerify(w io.Writer, t *tree.Tree) (int, error) {
	rows := ToVerify(t)
	return len(rows), write(w, t, rows, func(l tree.Labels) string { return l.ToVerify().String() })
}

// WriteResolved writes the resolved sheet and returns its row count.
func WriteResolved(w io.Writer, t *tree.Tree) (int, error) {
	rows := Resolved(t)
	return len(rows), write(w, t, rows, func(l tree.Labels) string {
		label, _ := l.GoodLabel()
		return label
	})
}

// WriteFile creates path and writes a sheet to it with fn.
func WriteFile(path string, t *tree.Tree, fn func(io.Writer, *tree.Tree) (int, error)) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, errors.Wrapf(err, "create %s", path)
	}
	n, err := fn(f, t)
	if err != nil {
		f.Close()
		return n, errors.Wrapf(err, "write %s", path)
	}
	return n, errors.Wrapf(f.Close(), "close %s", path)
}

func write(w io.Writer, t *tree.Tree, rows []tree.NodeID, label func(tree.Labels) string) error {
	attrSet := make(map[string]bool)
	for _, n := range rows {
		for k := range t.Node(n).Attrs {
			attrSet[k] = true
		}
	}
	attrs := slices.Sorted(maps.Keys(attrSet))

	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	header := append([]string{ColumnID, ColumnName, ColumnCategory, ColumnLabel}, attrs...)
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "write header")
	}

	record := make([]string, len(header))
	for _, n := range rows {
		node := t.Node(n)
		record[0] = strconv.FormatInt(node.ID, 10)
		record[1] = node.Name
		record[2] = t.CategoryPath(n)
		record[3] = label(node.Labels)
		for i, k := range attrs {
			record[4+i] = node.Attrs[k]
		}
		if err := cw.Write(record); err != nil {
			return errors.Wrapf(err, "write item %d", node.ID)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flush sheet")
}
