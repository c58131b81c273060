// Package catalog reads and writes taxonomy trees in their YAML form.
//
// A document is one nested record:
//
//	name: categories
//	id: 1
//	children:
//	- name: Whiskies
//	  id: 111
//	  children:
//	  - name: Jack Daniel's
//	    id: 1111
//	    brand: Brown-Forman
//
// A record with a children key is a category; any other record is an item.
// Extra scalar keys are kept as opaque attributes. Parents are implied by
// nesting; a record declaring its own parent is rejected.
package catalog

import (
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/teranos/treelabel/errors"
	"github.com/teranos/treelabel/tree"
)

const (
	keyName     = "name"
	keyID       = "id"
	keyChildren = "children"
	keyParent   = "parent"
)

// ParseFile reads the tree stored at path.
func ParseFile(path string) (*tree.Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open tree %s", path)
	}
	defer f.Close()

	t, err := Parse(f)
	if err != nil {
		return nil, errors.Wrapf(err, "parse tree %s", path)
	}
	return t, nil
}

// Parse reads a YAML tree document.
func Parse(r io.Reader) (*tree.Tree, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.NewMalformedRecordf("empty tree document")
		}
		return nil, errors.Wrapf(errors.ErrMalformedRecord, "decode yaml: %v", err)
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}

	rec, err := readRecord(root)
	if err != nil {
		return nil, err
	}
	if rec.children == nil {
		return nil, errors.NewMalformedRecordf("line %d: root %q must be a category", root.Line, rec.name)
	}

	t := tree.New(rec.id, rec.name)
	t.Node(t.Root()).Attrs = rec.attrs
	if err := attach(t, t.Root(), rec.children); err != nil {
		return nil, err
	}
	return t, nil
}

type record struct {
	name     string
	id       int64
	attrs    map[string]string
	children *yaml.Node // nil for items
}

func attach(t *tree.Tree, parent tree.NodeID, seq *yaml.Node) error {
	if seq.Kind != yaml.SequenceNode {
		// "children:" with no value decodes as a null scalar
		if seq.Kind == yaml.ScalarNode && seq.ShortTag() == "!!null" {
			return nil
		}
		return errors.NewMalformedRecordf("line %d: children must be a list", seq.Line)
	}
	for _, child := range seq.Content {
		rec, err := readRecord(child)
		if err != nil {
			return err
		}
		if rec.children == nil {
			if _, err := t.AddItem(parent, rec.id, rec.name, rec.attrs); err != nil {
				return errors.Wrapf(err, "line %d", child.Line)
			}
			continue
		}
		n, err := t.AddCategory(parent, rec.id, rec.name, rec.attrs)
		if err != nil {
			return errors.Wrapf(err, "line %d", child.Line)
		}
		if err := attach(t, n, rec.children); err != nil {
			return err
		}
	}
	return nil
}

func readRecord(node *yaml.Node) (record, error) {
	var rec record
	if node.Kind != yaml.MappingNode {
		return rec, errors.NewMalformedRecordf("line %d: expected a record, got %s", node.Line, kindName(node.Kind))
	}

	hasName, hasID := false, false
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		switch key.Value {
		case keyParent:
			return rec, errors.WithHint(
				errors.NewMalformedRecordf("line %d: record declares a parent", key.Line),
				"parents are implied by nesting under children")
		case keyChildren:
			rec.children = value
		case keyName:
			if value.Kind != yaml.ScalarNode {
				return rec, errors.NewMalformedRecordf("line %d: name must be a scalar", value.Line)
			}
			rec.name = value.Value
			hasName = true
		case keyID:
			id, err := strconv.ParseInt(value.Value, 10, 64)
			if value.Kind != yaml.ScalarNode || err != nil {
				return rec, errors.NewMalformedRecordf("line %d: id %q is not an integer", value.Line, value.Value)
			}
			rec.id = id
			hasID = true
		default:
			if value.Kind != yaml.ScalarNode {
				return rec, errors.NewMalformedRecordf("line %d: attribute %q must be a scalar", value.Line, key.Value)
			}
			if rec.attrs == nil {
				rec.attrs = make(map[string]string)
			}
			rec.attrs[key.Value] = value.Value
		}
	}

	if !hasName {
		return rec, errors.NewMalformedRecordf("line %d: record without name", node.Line)
	}
	if !hasID {
		return rec, errors.NewMalformedRecordf("line %d: record %q without id", node.Line, rec.name)
	}
	return rec, nil
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.SequenceNode:
		return "a list"
	case yaml.ScalarNode:
		return "a scalar"
	case yaml.AliasNode:
		return "an alias"
	default:
		return "a document"
	}
}
