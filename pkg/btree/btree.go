package btree

import (
	"slices"

	"rankidx/pkg/common"
)

// Node holds up to 2t-1 strictly increasing keys and, when internal,
// exactly len(Keys)+1 children. Nodes are owned by their parent; there are
// no parent back-pointers since search and insertion are purely top-down.
type Node struct {
	Leaf     bool
	Keys     []common.KeyType
	Children []*Node
}

// BTree is a balanced multiway search tree of order t: every non-root node
// keeps between t-1 and 2t-1 keys. Only the root may hold fewer, and since
// deletion is not supported the tree only ever grows.
type BTree struct {
	T    int
	Root *Node
}

// New creates an empty tree. Orders below 2 are clamped to 2.
func New(t int) *BTree {
	if t < 2 {
		t = 2
	}
	return &BTree{T: t, Root: &Node{Leaf: true}}
}

// Search descends from the root and returns the node and in-node index
// holding key, or false when the key is absent. The walk is iterative; at
// most O(t * log_t n) key comparisons.
func (bt *BTree) Search(key common.KeyType) (*Node, int, bool) {
	x := bt.Root
	for {
		i, found := slices.BinarySearch(x.Keys, key)
		if found {
			return x, i, true
		}
		if x.Leaf {
			return nil, 0, false
		}
		x = x.Children[i]
	}
}

// Insert adds key in a single top-down pass using proactive splitting:
// any full node on the descent path is split before it is entered, so no
// backtracking is ever needed. Inserting a key that is already present is
// a no-op, preserving strictly increasing keys within each node.
func (bt *BTree) Insert(key common.KeyType) {
	full := 2*bt.T - 1

	if len(bt.Root.Keys) == full {
		// Height grows only here, which keeps all leaves at equal depth.
		newRoot := &Node{Children: []*Node{bt.Root}}
		bt.Root = newRoot
		bt.splitChild(newRoot, 0)
	}

	x := bt.Root
	for !x.Leaf {
		i, found := slices.BinarySearch(x.Keys, key)
		if found {
			return
		}
		if len(x.Children[i].Keys) == full {
			bt.splitChild(x, i)
			// The promoted median landed at x.Keys[i]; re-route against it.
			if key == x.Keys[i] {
				return
			}
			if key > x.Keys[i] {
				i++
			}
		}
		x = x.Children[i]
	}

	i, found := slices.BinarySearch(x.Keys, key)
	if !found {
		x.Keys = slices.Insert(x.Keys, i, key)
	}
}

// splitChild splits the full child at parent.Children[i]: the child keeps
// keys [0, t-1), a new sibling takes keys [t, 2t-1) along with the upper t
// children, and the median key at t-1 moves up into the parent at index i.
func (bt *BTree) splitChild(parent *Node, i int) {
	t := bt.T
	child := parent.Children[i]
	sibling := &Node{Leaf: child.Leaf}

	sibling.Keys = append(sibling.Keys, child.Keys[t:]...)
	if !child.Leaf {
		sibling.Children = append(sibling.Children, child.Children[t:]...)
	}

	median := child.Keys[t-1]
	child.Keys = child.Keys[:t-1]
	if !child.Leaf {
		child.Children = child.Children[:t]
	}

	parent.Keys = slices.Insert(parent.Keys, i, median)
	parent.Children = slices.Insert(parent.Children, i+1, sibling)
}

// AscendKeys walks all keys in increasing order until fn returns false.
func (bt *BTree) AscendKeys(fn func(key common.KeyType) bool) {
	bt.Root.ascend(fn)
}

func (n *Node) ascend(fn func(key common.KeyType) bool) bool {
	for i, key := range n.Keys {
		if !n.Leaf && !n.Children[i].ascend(fn) {
			return false
		}
		if !fn(key) {
			return false
		}
	}
	if !n.Leaf {
		return n.Children[len(n.Keys)].ascend(fn)
	}
	return true
}

// NodeCount returns the number of allocated nodes.
func (bt *BTree) NodeCount() int {
	count := 0
	stack := []*Node{bt.Root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		count++
		if !n.Leaf {
			stack = append(stack, n.Children...)
		}
	}
	return count
}

// KeyCount returns the number of stored keys.
func (bt *BTree) KeyCount() int {
	count := 0
	stack := []*Node{bt.Root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		count += len(n.Keys)
		if !n.Leaf {
			stack = append(stack, n.Children...)
		}
	}
	return count
}

// TotalKeySlots is the allocated key capacity, NodeCount * (2t-1), used by
// harnesses for space accounting against the RMI's parameter count.
func (bt *BTree) TotalKeySlots() int {
	return bt.NodeCount() * (2*bt.T - 1)
}

// Height is the number of levels; leaves all sit at the same depth.
func (bt *BTree) Height() int {
	h := 1
	for x := bt.Root; !x.Leaf; x = x.Children[0] {
		h++
	}
	return h
}
