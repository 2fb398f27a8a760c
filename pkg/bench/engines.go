package bench

import (
	"rankidx/pkg/btree"
	"rankidx/pkg/common"
	"rankidx/pkg/learned"
)

// RMIEngine adapts the learned index to the suite.
type RMIEngine struct {
	LeafModels   int
	Adaptive     bool
	MaxLeafError int

	idx *learned.Index
}

func (e *RMIEngine) Name() string {
	if e.Adaptive {
		return "rmi-adaptive"
	}
	return "rmi"
}

func (e *RMIEngine) Build(keys []common.KeyType) error {
	var err error
	if e.Adaptive {
		e.idx, err = learned.BuildAdaptive(keys, e.MaxLeafError)
	} else {
		e.idx, err = learned.Build(keys, e.LeafModels)
	}
	return err
}

func (e *RMIEngine) Search(key common.KeyType) bool {
	_, ok := e.idx.Search(key)
	return ok
}

func (e *RMIEngine) SpaceCells() int { return e.idx.ParameterCount() }

// Index exposes the built index so drivers can report fallback counts and
// overflow length after the timed run.
func (e *RMIEngine) Index() *learned.Index { return e.idx }

// BTreeEngine adapts our order-t B-Tree to the suite. Build is repeated
// insertion, which is exactly the construction cost under comparison.
type BTreeEngine struct {
	Order int

	tree *btree.BTree
}

func (e *BTreeEngine) Name() string { return "btree" }

func (e *BTreeEngine) Build(keys []common.KeyType) error {
	e.tree = btree.New(e.Order)
	for _, key := range keys {
		e.tree.Insert(key)
	}
	return nil
}

func (e *BTreeEngine) Search(key common.KeyType) bool {
	_, _, ok := e.tree.Search(key)
	return ok
}

func (e *BTreeEngine) SpaceCells() int { return e.tree.TotalKeySlots() }

// Tree exposes the built tree for structural reporting.
func (e *BTreeEngine) Tree() *btree.BTree { return e.tree }
