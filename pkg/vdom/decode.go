package vdom

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	qerrors "github.com/quarkc-go/quark/internal/errors"
)

// Decode reads a tree description in YAML or JSON. A node is a mapping with
// the optional fields tag, text, key, props, children and constructor; a
// bare string is a text node, a list is a fragment, and null is a hole.
//
// Decoded nodes are built with the construction API. A description that
// names a constructor keeps it, and the renderer refuses to render it.
func Decode(r io.Reader) (*VNode, error) {
	return decode(r, "")
}

// DecodeFile decodes the description stored at path. Errors carry the file
// position of the offending node.
func DecodeFile(path string) (*VNode, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return decode(f, path)
}

func decode(r io.Reader, file string) (*VNode, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, qerrors.New("Q020").WithDetail(err.Error()).Wrap(err)
	}
	d := &decoder{file: file}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	return d.node(root)
}

type decoder struct {
	file string
}

func (d *decoder) fail(code string, n *yaml.Node, detail string) error {
	err := qerrors.New(code).WithDetail(detail)
	if d.file != "" {
		err.WithLocation(d.file, n.Line, n.Column)
	} else {
		err.Location = &qerrors.Location{File: "<input>", Line: n.Line, Column: n.Column}
	}
	return err
}

func (d *decoder) node(n *yaml.Node) (*VNode, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return nil, nil
		}
		return Text(n.Value), nil

	case yaml.SequenceNode:
		kids, err := d.children(n)
		if err != nil {
			return nil, err
		}
		f := newVNode(KindFragment)
		f.Children = kids
		return f, nil

	case yaml.AliasNode:
		return d.node(n.Alias)

	case yaml.MappingNode:
		return d.element(n)
	}
	return nil, d.fail("Q020", n, "unexpected node")
}

func (d *decoder) element(n *yaml.Node) (*VNode, error) {
	var (
		tag, key, constructor string
		text                  *string
		props                 Props
		kids                  []*VNode
	)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, val := n.Content[i], n.Content[i+1]
		var err error
		switch k.Value {
		case "tag":
			tag = val.Value
		case "text":
			s := val.Value
			text = &s
		case "key":
			key = val.Value
		case "constructor":
			constructor = val.Value
		case "props":
			props, err = d.props(val)
		case "children":
			if val.Kind != yaml.SequenceNode {
				return nil, d.fail("Q020", val, "children must be a list")
			}
			kids, err = d.children(val)
		default:
			return nil, d.fail("Q020", k, fmt.Sprintf("unknown field %q", k.Value))
		}
		if err != nil {
			return nil, err
		}
	}

	if tag != "" && text != nil {
		return nil, d.fail("Q021", n, fmt.Sprintf("node has tag %q and text %q", tag, *text))
	}

	var v *VNode
	switch {
	case text != nil:
		v = Text(*text)
	case tag != "":
		v = H(tag, props)
		v.Children = kids
	default:
		v = newVNode(KindFragment)
		v.Children = kids
	}
	if key != "" {
		v.Key = key
	}
	v.Constructor = constructor
	return v, nil
}

func (d *decoder) props(n *yaml.Node) (Props, error) {
	if n.Kind != yaml.MappingNode {
		return nil, d.fail("Q020", n, "props must be a mapping")
	}
	for i := 0; i < len(n.Content); i += 2 {
		if name := n.Content[i].Value; strings.HasPrefix(name, "on") {
			return nil, d.fail("Q022", n.Content[i], fmt.Sprintf("prop %q", name))
		}
	}
	var props Props
	if err := n.Decode(&props); err != nil {
		return nil, d.fail("Q020", n, err.Error())
	}
	return props, nil
}

func (d *decoder) children(n *yaml.Node) ([]*VNode, error) {
	kids := make([]*VNode, len(n.Content))
	for i, c := range n.Content {
		v, err := d.node(c)
		if err != nil {
			return nil, err
		}
		kids[i] = v
	}
	return kids, nil
}
