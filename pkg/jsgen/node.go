// Package jsgen provides the generator-side syntax tree and the code
// generator that serializes it back into JavaScript/TypeScript source.
//
// The node set is intentionally small: the explicit kinds the rewriter
// constructs plus Generic, which reproduces any other syntax verbatim from
// its original source text while splicing in regenerated children.
package jsgen

// Node kinds.
const (
	KindProgram             = "Program"
	KindVariableDeclaration = "VariableDeclaration"
	KindVariableDeclarator  = "VariableDeclarator"
	KindArrayExpression     = "ArrayExpression"
	KindObjectExpression    = "ObjectExpression"
	KindObjectProperty      = "ObjectProperty"
	KindIdentifier          = "Identifier"
	KindStringLiteral       = "StringLiteral"
	KindNumericLiteral      = "NumericLiteral"
	KindBooleanLiteral      = "BooleanLiteral"
	KindNullLiteral         = "NullLiteral"
)

// Node is a generator-side syntax node.
type Node interface {
	Kind() string
	meta() *Meta
}

// Meta carries the source provenance shared by every node: the original byte
// range and text when the node was derived from parsed source, plus attached
// comments.
type Meta struct {
	Raw              string
	LeadingComments  []string
	TrailingComments []string
	Start            int
	End              int
	Located          bool
}

func (m *Meta) meta() *Meta { return m }

// MetaOf returns the metadata of n, or nil for a nil node.
func MetaOf(n Node) *Meta {
	if n == nil {
		return nil
	}

	return n.meta()
}

// SetLocation records the source range and text n was derived from.
func SetLocation(n Node, start, end int, raw string) {
	m := n.meta()
	m.Start = start
	m.End = end
	m.Raw = raw
	m.Located = true
}

// SetSpan records the source range n replaces without adopting the original
// text, so n is still printed from its own content.
func SetSpan(n Node, start, end int) {
	m := n.meta()
	m.Start = start
	m.End = end
	m.Located = true
}

// SetComments attaches comments to n.
func SetComments(n Node, leading, trailing []string) {
	m := n.meta()
	m.LeadingComments = leading
	m.TrailingComments = trailing
}

// Program is the root of a module.
type Program struct {
	Body []Node
	Meta
}

// VariableDeclaration is a var/let/const statement.
type VariableDeclaration struct {
	DeclKind     string
	Declarations []*VariableDeclarator
	Meta
}

// VariableDeclarator binds one name inside a VariableDeclaration.
type VariableDeclarator struct {
	ID             Node
	TypeAnnotation Node
	Init           Node
	Meta
}

// ArrayExpression is an array literal; nil elements are holes.
type ArrayExpression struct {
	Elements []Node
	Meta
}

// ObjectExpression is an object literal.
type ObjectExpression struct {
	Properties []Node
	Meta
}

// ObjectProperty is a key/value entry of an object literal.
type ObjectProperty struct {
	Key       Node
	Value     Node
	Computed  bool
	Shorthand bool
	Meta
}

// Identifier is a bare name.
type Identifier struct {
	Name string
	Meta
}

// StringLiteral is a string constant.
type StringLiteral struct {
	Value string
	Meta
}

// NumericLiteral is a number constant.
type NumericLiteral struct {
	Value float64
	Meta
}

// BooleanLiteral is true or false.
type BooleanLiteral struct {
	Value bool
	Meta
}

// NullLiteral is null.
type NullLiteral struct {
	Meta
}

// Field is a named attribute of a Generic node. Value holds a Node, a []Node
// or a scalar.
type Field struct {
	Value any
	Name  string
}

// Generic is any syntax the generator has no dedicated printer for. Located
// generics print their original text with located child nodes regenerated in
// place; unlocated generics print Raw verbatim.
type Generic struct {
	Type   string
	Fields []Field
	Meta
}

// Kind implements Node.
func (*Program) Kind() string { return KindProgram }

// Kind implements Node.
func (*VariableDeclaration) Kind() string { return KindVariableDeclaration }

// Kind implements Node.
func (*VariableDeclarator) Kind() string { return KindVariableDeclarator }

// Kind implements Node.
func (*ArrayExpression) Kind() string { return KindArrayExpression }

// Kind implements Node.
func (*ObjectExpression) Kind() string { return KindObjectExpression }

// Kind implements Node.
func (*ObjectProperty) Kind() string { return KindObjectProperty }

// Kind implements Node.
func (*Identifier) Kind() string { return KindIdentifier }

// Kind implements Node.
func (*StringLiteral) Kind() string { return KindStringLiteral }

// Kind implements Node.
func (*NumericLiteral) Kind() string { return KindNumericLiteral }

// Kind implements Node.
func (*BooleanLiteral) Kind() string { return KindBooleanLiteral }

// Kind implements Node.
func (*NullLiteral) Kind() string { return KindNullLiteral }

// Kind implements Node.
func (g *Generic) Kind() string { return g.Type }

// Get returns the named field value of a Generic node.
func (g *Generic) Get(name string) (any, bool) {
	for _, field := range g.Fields {
		if field.Name == name {
			return field.Value, true
		}
	}

	return nil, false
}

// children returns the node-valued field entries of g in field order.
func (g *Generic) children() []Node {
	var out []Node

	for _, field := range g.Fields {
		switch value := field.Value.(type) {
		case Node:
			if !isNil(value) {
				out = append(out, value)
			}
		case []Node:
			for _, child := range value {
				if !isNil(child) {
					out = append(out, child)
				}
			}
		}
	}

	return out
}
