package transform

import (
	"github.com/Sumatoshi-tech/relabel/pkg/jsast"
)

// Locate returns the initializer of the first declarator bound to name, in
// depth-first pre-order. The walk stops at the first match, so when several
// declarations share the name only the first one is seen. The boolean is
// false when no declarator matches; a matching declarator without an
// initializer yields (nil, true).
func Locate(tree *jsast.Node, name string) (*jsast.Node, bool) {
	decl, found := jsast.Find(tree, func(n *jsast.Node) bool {
		return n.Is(jsast.KindVariableDeclarator) && n.Child(jsast.FieldID).Name() == name
	})
	if !found {
		return nil, false
	}

	return decl.Child(jsast.FieldInit), true
}
