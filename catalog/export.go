package catalog

import (
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/teranos/treelabel/errors"
	"github.com/teranos/treelabel/tree"
)

type categoryRecord struct {
	Name     string            `yaml:"name"`
	ID       int64             `yaml:"id"`
	Attrs    map[string]string `yaml:",inline"`
	Children []any             `yaml:"children"`
}

type itemRecord struct {
	Name  string            `yaml:"name"`
	ID    int64             `yaml:"id"`
	Attrs map[string]string `yaml:",inline"`
}

// Export writes t in the form Parse reads. Detached nodes are left out.
func Export(w io.Writer, t *tree.Tree) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(toRecord(t, t.Root())); err != nil {
		return errors.Wrap(err, "encode tree")
	}
	return errors.Wrap(enc.Close(), "flush tree")
}

// ExportFile writes t to path, replacing any existing file.
func ExportFile(path string, t *tree.Tree) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if err := Export(f, t); err != nil {
		f.Close()
		return err
	}
	return errors.Wrapf(f.Close(), "close %s", path)
}

func toRecord(t *tree.Tree, id tree.NodeID) any {
	n := t.Node(id)
	if n.IsItem() {
		return &itemRecord{Name: n.Name, ID: n.ID, Attrs: n.Attrs}
	}
	rec := &categoryRecord{Name: n.Name, ID: n.ID, Attrs: n.Attrs, Children: make([]any, 0, len(n.Children()))}
	for _, c := range n.Children() {
		rec.Children = append(rec.Children, toRecord(t, c))
	}
	return rec
}
