package vdom

// If returns node when condition holds and a hole otherwise. A hole keeps
// its sibling position, so toggling it never shifts the siblings after it.
func If(condition bool, node *VNode) *VNode {
	if !condition {
		return nil
	}
	return node
}

// Range maps items to nodes with fn. A nil result stays in the list as a
// hole.
func Range[T any](items []T, fn func(item T, index int) *VNode) []*VNode {
	out := make([]*VNode, 0, len(items))
	for i, item := range items {
		out = append(out, fn(item, i))
	}
	return out
}
