package tree

import "golang.org/x/net/html"

// Action tells Walk how to proceed after visiting an element.
type Action int

const (
	// Next continues the traversal into the element's children.
	Next Action = iota

	// Skip continues the traversal without visiting the element's subtree.
	Skip

	// Break stops the traversal immediately.
	Break
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case Next:
		return "next"
	case Skip:
		return "skip"
	case Break:
		return "break"
	default:
		return "unknown"
	}
}

// Visitor is called for every element node reached by Walk.
// tag is the element's local name.
type Visitor func(tag string, n *html.Node) Action

// Walk traverses the tree rooted at root depth-first and calls fn for every
// element node. Text, comment, doctype and document nodes are passed
// through without a callback, but their children are still visited.
//
// Nodes are visited in document order (pre-order, left to right). A node's
// children are queued only after fn returns, so fn may mutate the node, and
// returning Skip never leaves any of its children queued.
//
// Design decision: We use an explicit LIFO work list rather than recursion
// because:
//  1. Stack depth stays constant for deeply nested documents
//  2. Break can stop the traversal without unwinding a call chain
func Walk(root *html.Node, fn Visitor) {
	if root == nil {
		return
	}

	stack := []*html.Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if n.Type == html.ElementNode {
			switch fn(n.Data, n) {
			case Break:
				return
			case Skip:
				continue
			case Next:
			}
		}

		// Push in reverse so the first child is popped first.
		for c := n.LastChild; c != nil; c = c.PrevSibling {
			stack = append(stack, c)
		}
	}
}
