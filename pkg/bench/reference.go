package bench

import (
	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
	gbtree "github.com/google/btree"

	"rankidx/pkg/common"
)

// keyItem adapts KeyType to google/btree's ordering interface.
type keyItem common.KeyType

func (i keyItem) Less(than gbtree.Item) bool {
	return i < than.(keyItem)
}

// GoogleBTree is the off-the-shelf ordered-index reference engine.
type GoogleBTree struct {
	Degree int

	tree *gbtree.BTree
}

func (e *GoogleBTree) Name() string { return "google-btree" }

func (e *GoogleBTree) Build(keys []common.KeyType) error {
	degree := e.Degree
	if degree < 2 {
		degree = 32
	}
	e.tree = gbtree.New(degree)
	for _, key := range keys {
		e.tree.ReplaceOrInsert(keyItem(key))
	}
	return nil
}

func (e *GoogleBTree) Search(key common.KeyType) bool {
	return e.tree.Has(keyItem(key))
}

func (e *GoogleBTree) SpaceCells() int { return e.tree.Len() }

// TreeMap is the red-black-tree reference engine.
type TreeMap struct {
	m *treemap.Map
}

func (e *TreeMap) Name() string { return "gods-treemap" }

func (e *TreeMap) Build(keys []common.KeyType) error {
	e.m = treemap.NewWith(utils.Int64Comparator)
	for i, key := range keys {
		e.m.Put(int64(key), i)
	}
	return nil
}

func (e *TreeMap) Search(key common.KeyType) bool {
	_, ok := e.m.Get(int64(key))
	return ok
}

func (e *TreeMap) SpaceCells() int { return e.m.Size() }
