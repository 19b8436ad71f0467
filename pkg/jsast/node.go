// Package jsast provides an ESTree-shaped syntax tree for JavaScript and
// TypeScript modules, built from tree-sitter parse trees.
//
// Nodes are a tagged variant: Type selects the kind and Fields carries the
// kind-specific values under their ESTree names. Kinds the transformer relies
// on (Program, VariableDeclaration, VariableDeclarator, ArrayExpression,
// ObjectExpression, Property, Identifier, Literal) are modelled explicitly;
// every other tree-sitter kind becomes a generic node that keeps its source
// text and named children.
package jsast

// ESTree node kinds produced by the parser.
const (
	KindProgram             = "Program"
	KindVariableDeclaration = "VariableDeclaration"
	KindVariableDeclarator  = "VariableDeclarator"
	KindArrayExpression     = "ArrayExpression"
	KindObjectExpression    = "ObjectExpression"
	KindProperty            = "Property"
	KindIdentifier          = "Identifier"
	KindLiteral             = "Literal"
)

// Field names used by the explicit kinds.
const (
	FieldBody           = "body"
	FieldKind           = "kind"
	FieldDeclarations   = "declarations"
	FieldID             = "id"
	FieldInit           = "init"
	FieldTypeAnnotation = "typeAnnotation"
	FieldElements       = "elements"
	FieldProperties     = "properties"
	FieldKey            = "key"
	FieldValue          = "value"
	FieldComputed       = "computed"
	FieldShorthand      = "shorthand"
	FieldName           = "name"
	FieldRaw            = "raw"
	FieldChildren       = "children"
)

// Span is a half-open byte range into the parsed source.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the span width in bytes.
func (s Span) Len() int {
	return s.End - s.Start
}

// Field is a named node attribute. Value holds a *Node, a []*Node (entries may
// be nil for array holes), or a scalar (string, float64, bool, nil).
type Field struct {
	Value any
	Name  string
}

// Node is a single syntax tree node.
type Node struct {
	Type             string   `json:"type"`
	Raw              string   `json:"-"`
	Fields           []Field  `json:"fields,omitempty"`
	LeadingComments  []string `json:"leadingComments,omitempty"`
	TrailingComments []string `json:"trailingComments,omitempty"`
	Span             Span     `json:"span"`
}

// New creates a node of the given kind with the given fields in order.
func New(kind string, fields ...Field) *Node {
	return &Node{Type: kind, Fields: fields}
}

// F is shorthand for building a Field.
func F(name string, value any) Field {
	return Field{Name: name, Value: value}
}

// Is reports whether the node is non-nil and of the given kind.
func (n *Node) Is(kind string) bool {
	return n != nil && n.Type == kind
}

// Get returns the raw value of the named field.
func (n *Node) Get(name string) (any, bool) {
	if n == nil {
		return nil, false
	}

	for _, field := range n.Fields {
		if field.Name == name {
			return field.Value, true
		}
	}

	return nil, false
}

// Set replaces the named field value, appending the field if it is absent.
func (n *Node) Set(name string, value any) {
	for idx := range n.Fields {
		if n.Fields[idx].Name == name {
			n.Fields[idx].Value = value

			return
		}
	}

	n.Fields = append(n.Fields, Field{Name: name, Value: value})
}

// Child returns the named field as a node, or nil.
func (n *Node) Child(name string) *Node {
	value, _ := n.Get(name)
	child, _ := value.(*Node)

	return child
}

// List returns the named field as a node list, or nil.
func (n *Node) List(name string) []*Node {
	value, _ := n.Get(name)
	list, _ := value.([]*Node)

	return list
}

// Str returns the named field as a string, or "".
func (n *Node) Str(name string) string {
	value, _ := n.Get(name)
	str, _ := value.(string)

	return str
}

// Bool returns the named field as a bool, or false.
func (n *Node) Bool(name string) bool {
	value, _ := n.Get(name)
	flag, _ := value.(bool)

	return flag
}

// Children returns every node-valued field entry in field order, skipping
// nil entries.
func (n *Node) Children() []*Node {
	if n == nil {
		return nil
	}

	var children []*Node

	for _, field := range n.Fields {
		switch value := field.Value.(type) {
		case *Node:
			if value != nil {
				children = append(children, value)
			}
		case []*Node:
			for _, child := range value {
				if child != nil {
					children = append(children, child)
				}
			}
		}
	}

	return children
}

// Name returns the identifier name of an Identifier node, or "".
func (n *Node) Name() string {
	if !n.Is(KindIdentifier) {
		return ""
	}

	return n.Str(FieldName)
}

// LiteralValue returns the value of a Literal node.
func (n *Node) LiteralValue() (any, bool) {
	if !n.Is(KindLiteral) {
		return nil, false
	}

	return n.Get(FieldValue)
}

// PropertyKeyName returns the static key name of a Property: the identifier
// name for non-computed identifier keys, or the string value of a string
// literal key.
func (n *Node) PropertyKeyName() (string, bool) {
	if !n.Is(KindProperty) {
		return "", false
	}

	key := n.Child(FieldKey)

	switch {
	case key.Is(KindIdentifier) && !n.Bool(FieldComputed):
		return key.Name(), true
	case key.Is(KindLiteral):
		value, _ := key.LiteralValue()
		str, ok := value.(string)

		return str, ok
	default:
		return "", false
	}
}
