package store

// memberIndex is the hash-set membership mirror: it holds exactly the set
// of keys present in the skiplist, maintained in
// lockstep by Store so that presence checks never have to walk the
// skiplist. Keys are stored as strings (a copy of the bytes) since Go maps
// cannot key on []byte directly; the skiplist node holds the canonical
// backing array.
type memberIndex map[string]struct{}

func newMemberIndex() memberIndex {
	return make(memberIndex)
}

func (idx memberIndex) has(key []byte) bool {
	_, ok := idx[string(key)]
	return ok
}

func (idx memberIndex) add(key []byte) {
	idx[string(key)] = struct{}{}
}

func (idx memberIndex) remove(key []byte) {
	delete(idx, string(key))
}
