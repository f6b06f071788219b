package component

import (
	"github.com/planforge/planforge/internal/geo"
)

// Node links a component to its parent for coordinate resolution and
// traversal. Nodes are a snapshot: rebuild via Resolve after editing the
// tree.
type Node struct {
	Component Component
	Parent    *Node
	Children  []*Node
}

// Resolve builds the node tree rooted at the given component.
func Resolve(root Component) *Node {
	return resolve(root, nil)
}

func resolve(c Component, parent *Node) *Node {
	n := &Node{Component: c, Parent: parent}
	for _, child := range c.Subcomponents() {
		n.Children = append(n.Children, resolve(child, n))
	}
	return n
}

// AbsoluteCoordinate resolves the node's coordinate by accumulating offsets
// down from the root. A root without a coordinate of its own anchors the
// tree at (0, 0).
func (n *Node) AbsoluteCoordinate() geo.Coordinate {
	if n.Parent == nil {
		if p, ok := n.Component.(*Plan); ok {
			return p.Coordinate
		}
		return geo.Coordinate{}
	}
	return n.Parent.AbsoluteCoordinate().Translate(n.Component.Offset())
}

// ReferenceCoordinate resolves the absolute position of one of the
// component's reference offsets.
func (n *Node) ReferenceCoordinate(offset geo.Vector2) geo.Coordinate {
	return n.AbsoluteCoordinate().Translate(offset)
}

// Descendants returns the nodes below this one in pre-order. The slice is
// rebuilt on every call so it stays valid across tree edits.
func (n *Node) Descendants() []*Node {
	var out []*Node
	for _, child := range n.Children {
		out = append(out, child)
		out = append(out, child.Descendants()...)
	}
	return out
}

// FindDescendant returns the first pre-order descendant with the given
// component id, or nil.
func (n *Node) FindDescendant(id string) *Node {
	for _, child := range n.Children {
		if child.Component.Meta().ID == id {
			return child
		}
		if found := child.FindDescendant(id); found != nil {
			return found
		}
	}
	return nil
}

// PathAncestors returns the chain of nodes from the root down to this
// node's parent.
func (n *Node) PathAncestors() []*Node {
	if n.Parent == nil {
		return nil
	}
	return append(n.Parent.PathAncestors(), n.Parent)
}

// Reposition re-anchors c so that its first reference offset resolves to
// target. parent is the resolved coordinate of the component's parent. Plans
// move their own coordinate; variants without a position are left alone.
func Reposition(c Component, target, parent geo.Coordinate) {
	if p, ok := c.(*Plan); ok {
		p.Coordinate = target
		return
	}
	pos, ok := c.(Positional)
	if !ok {
		return
	}
	var anchor geo.Vector2
	if refs := c.ReferenceOffsets(); len(refs) > 0 {
		anchor = refs[0]
	}
	origin := target.Translate(anchor.Negated())
	pos.SetOffset(parent.OffsetTo(origin))
}
