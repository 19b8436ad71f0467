package jsast

// Find returns the first node, in depth-first pre-order, for which predicate
// returns true. The walk stops at the first hit.
func Find(root *Node, predicate func(*Node) bool) (*Node, bool) {
	if root == nil {
		return nil, false
	}

	stack := []*Node{root}

	for len(stack) > 0 {
		curr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if predicate(curr) {
			return curr, true
		}

		stack = pushReversedChildren(curr, stack)
	}

	return nil, false
}

// FindAll returns every node matching predicate in pre-order.
func FindAll(root *Node, predicate func(*Node) bool) []*Node {
	var result []*Node

	Walk(root, func(n *Node) bool {
		if predicate(n) {
			result = append(result, n)
		}

		return true
	})

	return result
}

// Walk visits nodes in pre-order. Returning false from fn stops the walk.
func Walk(root *Node, fn func(*Node) bool) {
	Find(root, func(n *Node) bool {
		return !fn(n)
	})
}

func pushReversedChildren(n *Node, stack []*Node) []*Node {
	children := n.Children()

	for idx := len(children) - 1; idx >= 0; idx-- {
		stack = append(stack, children[idx])
	}

	return stack
}
