package octree

import (
	"fmt"
	"io"
	"strings"
)

// DebugOctants writes the octant hierarchy to w, one octant per line,
// indented by depth.
func (tree *Octree[T]) DebugOctants(w io.Writer) error {
	if tree.root == nil {
		_, err := fmt.Fprintln(w, "empty octree")
		return err
	}
	return debugOctant(w, tree.root, 0)
}

func debugOctant[T any](w io.Writer, o *octant[T], depth int) error {
	_, err := fmt.Fprintf(w, "%sOctant %v - %v\tnum_children %d, num_eles %d, num_paired_eles %d\n",
		strings.Repeat("\t", depth),
		o.aabb.Position,
		o.aabb.End(),
		o.childrenCount,
		len(o.elements),
		len(o.pairableElements),
	)
	if err != nil {
		return err
	}

	for _, child := range o.children {
		if child != nil {
			if err := debugOctant(w, child, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}
