// Package schema declares the nested shape a generation call must return.
//
// A Node is declared once per pipeline and serves two purposes: it is
// rendered into the structured-output contract sent to the model, and it is
// the structural model the decoded reply is validated against.
package schema

import (
	"strconv"
	"strings"

	"github.com/sashabaranov/go-openai/jsonschema"
)

type Kind int

const (
	KindString Kind = iota + 1
	KindInteger
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Shape is the value shape a flattener sees at a node. It is derived from
// the declaration, never from the decoded value.
type Shape int

const (
	ShapeScalar Shape = iota + 1
	ShapeStringList
	ShapeNestedList
	ShapeObjectList
	ShapeObject
)

func (s Shape) String() string {
	switch s {
	case ShapeScalar:
		return "scalar"
	case ShapeStringList:
		return "string_list"
	case ShapeNestedList:
		return "nested_list"
	case ShapeObjectList:
		return "object_list"
	case ShapeObject:
		return "object"
	default:
		return "shape(" + strconv.Itoa(int(s)) + ")"
	}
}

type Node struct {
	Kind        Kind
	Description string

	// Object nodes.
	Fields []Field
	Strict bool

	// Array nodes.
	Items    *Node
	MinItems int
}

type Field struct {
	Name     string
	Node     Node
	Required bool
}

func String(desc string) Node  { return Node{Kind: KindString, Description: desc} }
func Integer(desc string) Node { return Node{Kind: KindInteger, Description: desc} }

func ArrayOf(items Node, desc string) Node {
	it := items
	return Node{Kind: KindArray, Description: desc, Items: &it}
}

func StringList(desc string) Node { return ArrayOf(String(""), desc) }

// Object declares a strict object: fields not listed are rejected.
func Object(desc string, fields ...Field) Node {
	return Node{Kind: KindObject, Description: desc, Fields: fields, Strict: true}
}

func Required(name string, n Node) Field { return Field{Name: name, Node: n, Required: true} }
func Optional(name string, n Node) Field { return Field{Name: name, Node: n} }

// AtLeast returns a copy of an array node with a minimum length.
func (n Node) AtLeast(min int) Node {
	n.MinItems = min
	return n
}

// Lenient returns a copy of an object node that tolerates unknown fields.
func (n Node) Lenient() Node {
	n.Strict = false
	return n
}

func (n Node) Field(name string) (Field, bool) {
	for _, f := range n.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Lookup resolves a dotted path ("team_structure.leads"). Array nodes are
// stepped through transparently so "kpis_focus.focus_area" addresses the
// element field.
func (n Node) Lookup(path string) (Node, bool) {
	cur := n
	if strings.TrimSpace(path) == "" {
		return cur, true
	}
	for _, part := range strings.Split(path, ".") {
		for cur.Kind == KindArray && cur.Items != nil {
			cur = *cur.Items
		}
		if cur.Kind != KindObject {
			return Node{}, false
		}
		f, ok := cur.Field(part)
		if !ok {
			return Node{}, false
		}
		cur = f.Node
	}
	return cur, true
}

func (n Node) Shape() Shape {
	switch n.Kind {
	case KindObject:
		return ShapeObject
	case KindArray:
		if n.Items == nil {
			return ShapeStringList
		}
		switch n.Items.Kind {
		case KindArray:
			return ShapeNestedList
		case KindObject:
			return ShapeObjectList
		default:
			return ShapeStringList
		}
	default:
		return ShapeScalar
	}
}

// FullyRequired reports whether every object field in the tree is required,
// which is what strict structured outputs demand.
func (n Node) FullyRequired() bool {
	switch n.Kind {
	case KindObject:
		for _, f := range n.Fields {
			if !f.Required || !f.Node.FullyRequired() {
				return false
			}
		}
		return true
	case KindArray:
		return n.Items == nil || n.Items.FullyRequired()
	default:
		return true
	}
}

// ToOpenAI renders the node as a JSON Schema definition for json_schema
// structured outputs.
func (n Node) ToOpenAI() *jsonschema.Definition {
	d := &jsonschema.Definition{Description: n.Description}
	switch n.Kind {
	case KindString:
		d.Type = jsonschema.String
	case KindInteger:
		d.Type = jsonschema.Integer
	case KindArray:
		d.Type = jsonschema.Array
		if n.Items != nil {
			d.Items = n.Items.ToOpenAI()
		} else {
			d.Items = &jsonschema.Definition{Type: jsonschema.String}
		}
	case KindObject:
		d.Type = jsonschema.Object
		d.Properties = make(map[string]jsonschema.Definition, len(n.Fields))
		d.Required = make([]string, 0, len(n.Fields))
		for _, f := range n.Fields {
			d.Properties[f.Name] = *f.Node.ToOpenAI()
			if f.Required {
				d.Required = append(d.Required, f.Name)
			}
		}
		if n.Strict {
			d.AdditionalProperties = false
		}
	}
	return d
}
