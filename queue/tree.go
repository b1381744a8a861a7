package queue

import (
	"container/list"

	"github.com/google/btree"
)

// treeItem is one key's worth of an IndexTree: the key plus the KeyBucket
// of PacketEntry arena indices sharing it, in FIFO order. Elements of the
// bucket are int32 arena indices (admission or processing, depending on
// which tree this item belongs to).
type treeItem struct {
	key    uint64
	bucket *list.List
}

func treeLess(a, b treeItem) bool { return a.key < b.key }

// newTree constructs an IndexTree: an ordered key -> KeyBucket map with
// O(log n) insert/remove/lookup/last, realized with google/btree's generic
// BTreeG (see DESIGN.md for why this dependency was chosen).
func newTree() *btree.BTreeG[treeItem] {
	return btree.NewG[treeItem](32, treeLess)
}

// pushBack appends idx to the KeyBucket for key in tree, creating the
// bucket (and its tree node) if this is the first entry at key. It fills
// in e.key/e.bucket/e.elem so the entry can later be detached in O(1)
// without a further tree lookup.
func pushBack[P comparable](tree *btree.BTreeG[treeItem], key uint64, idx int32, e *entry[P]) {
	item, ok := tree.Get(treeItem{key: key})
	if !ok {
		item = treeItem{key: key, bucket: list.New()}
		tree.ReplaceOrInsert(item)
	}
	e.key = key
	e.bucket = item.bucket
	e.elem = item.bucket.PushBack(idx)
}

// detach removes e from its own KeyBucket in O(1); if the bucket becomes
// empty, its tree node is removed too (an empty KeyBucket never exists,
// per the data-model invariant).
func detach[P comparable](tree *btree.BTreeG[treeItem], e *entry[P]) {
	e.bucket.Remove(e.elem)
	if e.bucket.Len() == 0 {
		tree.Delete(treeItem{key: e.key})
	}
	e.bucket = nil
	e.elem = nil
}
