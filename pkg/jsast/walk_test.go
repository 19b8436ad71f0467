package jsast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/relabel/pkg/jsast"
)

func sampleTree() *jsast.Node {
	ident := func(name string) *jsast.Node {
		return jsast.New(jsast.KindIdentifier, jsast.F(jsast.FieldName, name))
	}

	return jsast.New(jsast.KindProgram, jsast.F(jsast.FieldBody, []*jsast.Node{
		jsast.New(jsast.KindVariableDeclaration,
			jsast.F(jsast.FieldDeclarations, []*jsast.Node{
				jsast.New(jsast.KindVariableDeclarator,
					jsast.F(jsast.FieldID, ident("first")),
					jsast.F(jsast.FieldInit, jsast.New(jsast.KindArrayExpression,
						jsast.F(jsast.FieldElements, []*jsast.Node{nil, ident("inner")}))),
				),
			}),
			jsast.F(jsast.FieldKind, "const"),
		),
		jsast.New(jsast.KindVariableDeclaration,
			jsast.F(jsast.FieldDeclarations, []*jsast.Node{
				jsast.New(jsast.KindVariableDeclarator, jsast.F(jsast.FieldID, ident("second"))),
			}),
			jsast.F(jsast.FieldKind, "let"),
		),
	}))
}

func TestFindPreOrder(t *testing.T) {
	t.Parallel()

	root := sampleTree()

	found, ok := jsast.Find(root, func(n *jsast.Node) bool {
		return n.Is(jsast.KindIdentifier)
	})

	assert.True(t, ok)
	assert.Equal(t, "first", found.Name())

	_, ok = jsast.Find(root, func(n *jsast.Node) bool { return n.Is(jsast.KindObjectExpression) })
	assert.False(t, ok)

	_, ok = jsast.Find(nil, func(*jsast.Node) bool { return true })
	assert.False(t, ok)
}

func TestFindAllOrder(t *testing.T) {
	t.Parallel()

	idents := jsast.FindAll(sampleTree(), func(n *jsast.Node) bool {
		return n.Is(jsast.KindIdentifier)
	})

	names := make([]string, 0, len(idents))
	for _, n := range idents {
		names = append(names, n.Name())
	}

	assert.Equal(t, []string{"first", "inner", "second"}, names)
}

func TestWalkStops(t *testing.T) {
	t.Parallel()

	visited := 0

	jsast.Walk(sampleTree(), func(n *jsast.Node) bool {
		visited++

		return !n.Is(jsast.KindVariableDeclaration)
	})

	assert.Equal(t, 2, visited)
}

func TestNodeAccessors(t *testing.T) {
	t.Parallel()

	n := jsast.New(jsast.KindProperty,
		jsast.F(jsast.FieldKey, jsast.New(jsast.KindLiteral, jsast.F(jsast.FieldValue, "label"))),
		jsast.F(jsast.FieldComputed, false),
	)

	name, ok := n.PropertyKeyName()
	assert.True(t, ok)
	assert.Equal(t, "label", name)

	n.Set(jsast.FieldShorthand, true)
	assert.True(t, n.Bool(jsast.FieldShorthand))
	assert.Empty(t, n.Str(jsast.FieldKind))
	assert.Nil(t, n.Child(jsast.FieldValue))
	assert.Len(t, n.Children(), 1)

	var missing *jsast.Node
	assert.False(t, missing.Is(jsast.KindProperty))
	assert.Empty(t, missing.Children())
}
