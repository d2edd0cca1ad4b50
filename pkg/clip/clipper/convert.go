package clipper

import (
	"github.com/chazu/planeclip/pkg/clip"
	gc "github.com/ctessum/go.clipper"
)

func toPoint(p clip.IntPoint) *gc.IntPoint {
	return &gc.IntPoint{X: gc.CInt(p.X), Y: gc.CInt(p.Y)}
}

// toPath converts a path to the library form, dropping consecutive
// duplicate vertices. go.clipper compares vertices by pointer, so
// duplicates produced by quantization would otherwise reach the engine
// as zero-length edges. A closed path also loses a trailing vertex equal
// to its first.
func toPath(p clip.Path, closed bool) gc.Path {
	out := make(gc.Path, 0, len(p))
	for i, pt := range p {
		if i > 0 && pt == p[i-1] {
			continue
		}
		out = append(out, toPoint(pt))
	}
	if closed {
		for len(out) > 1 && *out[len(out)-1] == *out[0] {
			out = out[:len(out)-1]
		}
	}
	return out
}

func fromPath(p gc.Path) clip.Path {
	out := make(clip.Path, len(p))
	for i, pt := range p {
		out[i] = clip.IntPoint{X: int64(pt.X), Y: int64(pt.Y)}
	}
	return out
}

func fromPaths(ps gc.Paths) []clip.Path {
	out := make([]clip.Path, 0, len(ps))
	for _, p := range ps {
		out = append(out, fromPath(p))
	}
	return out
}

// convertTree copies a PolyTree into a ResultTree. Hole status is taken
// from nesting depth rather than PolyNode.IsHole: negative offsets
// re-parent nodes without updating their parent links, which IsHole
// relies on.
func convertTree(pt *gc.PolyTree) *clip.ResultTree {
	tree := clip.NewResultTree()
	if pt == nil {
		return tree
	}

	type frame struct {
		node   *gc.PolyNode
		parent int
		depth  int
	}
	var stack []frame
	push := func(children []*gc.PolyNode, parent, depth int) {
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{children[i], parent, depth})
		}
	}

	push(pt.Childs(), clip.Root, 1)
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		idx := tree.Add(f.parent, fromPath(f.node.Contour()), f.depth%2 == 0, f.node.IsOpen)
		push(f.node.Childs(), idx, f.depth+1)
	}
	return tree
}
