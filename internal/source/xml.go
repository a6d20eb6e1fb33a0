// Package source reads the legacy XML export and turns its nodes into
// employer create payloads.
package source

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Node is one record element of the export. Fields are its child elements
// keyed by local name; attributes of the record element are a fallback.
type Node struct {
	Name   string
	fields map[string]string
	attrs  map[string]string
}

// NewNode builds a Node from field values. Blank values are dropped.
func NewNode(name string, fields map[string]string) Node {
	n := Node{Name: name, fields: make(map[string]string, len(fields))}
	for k, v := range fields {
		if v = strings.TrimSpace(v); v != "" {
			n.fields[k] = v
		}
	}
	return n
}

// Field returns the trimmed value of a field. Missing and blank fields are
// reported as absent.
func (n Node) Field(name string) (string, bool) {
	if v, ok := n.fields[name]; ok {
		return v, true
	}
	if v, ok := n.attrs[name]; ok {
		return v, true
	}
	return "", false
}

// ReadFile opens path and reads its nodes.
func ReadFile(path string) ([]Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open export file: %w", err)
	}
	defer f.Close()

	nodes, err := ReadNodes(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return nodes, nil
}

// ReadNodes returns the children of the document element in document order.
func ReadNodes(r io.Reader) ([]Node, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = false
	dec.Entity = xml.HTMLEntity

	var (
		nodes   []Node
		current *Node
		field   string
		text    strings.Builder
		depth   int
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch depth {
			case 2:
				current = &Node{
					Name:   t.Name.Local,
					fields: make(map[string]string),
					attrs:  make(map[string]string),
				}
				for _, a := range t.Attr {
					if v := strings.TrimSpace(a.Value); v != "" {
						current.attrs[a.Name.Local] = v
					}
				}
			case 3:
				field = t.Name.Local
				text.Reset()
			}
		case xml.CharData:
			if depth >= 3 && current != nil {
				text.Write(t)
			}
		case xml.EndElement:
			switch depth {
			case 3:
				if v := strings.TrimSpace(text.String()); v != "" && current != nil {
					if _, seen := current.fields[field]; !seen {
						current.fields[field] = v
					}
				}
				field = ""
			case 2:
				if current != nil {
					nodes = append(nodes, *current)
				}
				current = nil
			}
			depth--
		}
	}

	if depth != 0 {
		return nil, errors.New("failed to parse xml: unexpected end of document")
	}
	return nodes, nil
}
