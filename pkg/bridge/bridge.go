// Package bridge converts parsed syntax trees (jsast) into generator trees
// (jsgen).
//
// Conversion is total: kinds with a dedicated generator type are mapped
// explicitly and everything else becomes a jsgen.Generic that keeps its
// source range, original text, comments and converted children. Source
// trees are never modified; callers substitute rewritten subtrees through
// Converter.Replace.
package bridge

import (
	"github.com/Sumatoshi-tech/relabel/pkg/jsast"
	"github.com/Sumatoshi-tech/relabel/pkg/jsgen"
)

// Converter converts source nodes, substituting registered replacements.
type Converter struct {
	replacements map[*jsast.Node]jsgen.Node
}

// NewConverter creates a Converter with no replacements.
func NewConverter() *Converter {
	return &Converter{replacements: make(map[*jsast.Node]jsgen.Node)}
}

// Convert converts n without replacements.
func Convert(n *jsast.Node) jsgen.Node {
	return NewConverter().Convert(n)
}

// Replace makes every later conversion of src yield dst. A dst without a
// source range takes over src's range and comments so it is printed in src's
// place.
func (c *Converter) Replace(src *jsast.Node, dst jsgen.Node) {
	if src == nil || dst == nil {
		return
	}

	m := jsgen.MetaOf(dst)
	if !m.Located {
		jsgen.SetSpan(dst, src.Span.Start, src.Span.End)
	}

	if len(m.LeadingComments) == 0 && len(m.TrailingComments) == 0 {
		jsgen.SetComments(dst, cloneStrings(src.LeadingComments), cloneStrings(src.TrailingComments))
	}

	c.replacements[src] = dst
}

// Convert returns the generator form of n, or nil for a nil node.
func (c *Converter) Convert(n *jsast.Node) jsgen.Node {
	if n == nil {
		return nil
	}

	if dst, ok := c.replacements[n]; ok {
		return dst
	}

	var out jsgen.Node

	switch n.Type {
	case jsast.KindProgram:
		out = &jsgen.Program{Body: c.ConvertAll(n.List(jsast.FieldBody))}
	case jsast.KindObjectExpression:
		out = &jsgen.ObjectExpression{Properties: c.ConvertAll(n.List(jsast.FieldProperties))}
	case jsast.KindProperty:
		out = &jsgen.ObjectProperty{
			Key:       c.Convert(n.Child(jsast.FieldKey)),
			Value:     c.Convert(n.Child(jsast.FieldValue)),
			Computed:  n.Bool(jsast.FieldComputed),
			Shorthand: n.Bool(jsast.FieldShorthand),
		}
	case jsast.KindIdentifier:
		out = jsgen.NewIdentifier(n.Name())
	case jsast.KindLiteral:
		out = literal(n)
	}

	if out == nil {
		out = c.generic(n)
	}

	jsgen.SetLocation(out, n.Span.Start, n.Span.End, n.Raw)
	jsgen.SetComments(out, cloneStrings(n.LeadingComments), cloneStrings(n.TrailingComments))

	return out
}

// ConvertAll converts a node list, keeping nil entries (array holes) as nil.
func (c *Converter) ConvertAll(nodes []*jsast.Node) []jsgen.Node {
	if nodes == nil {
		return nil
	}

	out := make([]jsgen.Node, len(nodes))

	for idx, n := range nodes {
		if n != nil {
			out[idx] = c.Convert(n)
		}
	}

	return out
}

// ConvertValue converts a field value: nodes and node lists are converted,
// scalars are returned unchanged.
func (c *Converter) ConvertValue(value any) any {
	switch typed := value.(type) {
	case *jsast.Node:
		if typed == nil {
			return nil
		}

		return c.Convert(typed)
	case []*jsast.Node:
		return c.ConvertAll(typed)
	default:
		return value
	}
}

func (c *Converter) generic(n *jsast.Node) jsgen.Node {
	fields := make([]jsgen.Field, 0, len(n.Fields))

	for _, field := range n.Fields {
		fields = append(fields, jsgen.Field{Name: field.Name, Value: c.ConvertValue(field.Value)})
	}

	return &jsgen.Generic{Type: n.Type, Fields: fields}
}

// literal returns nil for literal values with no generator form so the
// caller falls back to a generic node.
func literal(n *jsast.Node) jsgen.Node {
	value, _ := n.LiteralValue()

	node, err := jsgen.ValueToNode(value)
	if err != nil {
		return nil
	}

	switch node.(type) {
	case *jsgen.StringLiteral, *jsgen.NumericLiteral, *jsgen.BooleanLiteral, *jsgen.NullLiteral:
		return node
	default:
		return nil
	}
}

func cloneStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}

	return append([]string(nil), in...)
}
