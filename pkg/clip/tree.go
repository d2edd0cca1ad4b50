package clip

import "iter"

// Root is the arena index of a result tree's root node.
const Root = 0

// ResultNode is one boundary in an engine result. Children are arena
// indices into the owning ResultTree: holes directly inside a contour, or
// contours inside a hole.
type ResultNode struct {
	Contour  Path
	IsHole   bool
	IsOpen   bool
	Children []int
}

// ResultTree is an engine result stored as an arena. Nodes[Root] is the
// root, which normally has no contour of its own. A tree is built once by
// an engine backend and treated as immutable afterwards.
type ResultTree struct {
	Nodes []ResultNode
}

// NewResultTree returns a tree holding only an empty root.
func NewResultTree() *ResultTree {
	return &ResultTree{Nodes: []ResultNode{{}}}
}

// Add appends a node under parent and returns its index.
func (t *ResultTree) Add(parent int, contour Path, isHole, isOpen bool) int {
	idx := len(t.Nodes)
	t.Nodes = append(t.Nodes, ResultNode{
		Contour: contour,
		IsHole:  isHole,
		IsOpen:  isOpen,
	})
	t.Nodes[parent].Children = append(t.Nodes[parent].Children, idx)
	return idx
}

// Len returns the number of nodes, root included.
func (t *ResultTree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Nodes)
}

// Walk yields every node in pre-order: a node, then each child subtree in
// child order. The root is yielded first. Nodes are produced lazily and the
// sequence can be ranged over any number of times.
func (t *ResultTree) Walk() iter.Seq[ResultNode] {
	return func(yield func(ResultNode) bool) {
		t.walk(func(i int) bool {
			return yield(t.Nodes[i])
		})
	}
}

// PreOrder returns the arena indices in the order Walk visits them.
func (t *ResultTree) PreOrder() []int {
	order := make([]int, 0, t.Len())
	t.walk(func(i int) bool {
		order = append(order, i)
		return true
	})
	return order
}

func (t *ResultTree) walk(visit func(int) bool) {
	if t.Len() == 0 {
		return
	}
	stack := []int{Root}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !visit(i) {
			return
		}
		children := t.Nodes[i].Children
		for c := len(children) - 1; c >= 0; c-- {
			stack = append(stack, children[c])
		}
	}
}
