package store

import (
	"math/rand"
	"os"
	"time"
)

// Store is the server-wide dual index: a skiplist for ordered scans plus a
// membership set mirroring its keys for O(1) presence checks. It is not
// safe for concurrent use — tadpole's reactor is single-threaded and every
// Store method runs to completion between polls.
type Store struct {
	sl    *skiplist
	index memberIndex
}

// New creates an empty Store. The height generator is seeded once, here, at
// construction time with a process-unique seed (current time mixed with the
// pid), so successive runs don't reproduce the same node-height sequence.
func New() *Store {
	seed := time.Now().UnixNano() ^ int64(os.Getpid())
	return &Store{
		sl:    newSkiplist(rand.New(rand.NewSource(seed))),
		index: newMemberIndex(),
	}
}

// Len reports the number of distinct keys currently stored.
func (s *Store) Len() int {
	return s.sl.length
}

// Has reports whether key is present, via the O(1) membership index.
func (s *Store) Has(key []byte) bool {
	return s.index.has(key)
}

// Get returns the value for key and whether it was found.
func (s *Store) Get(key []byte) ([]byte, bool) {
	if !s.index.has(key) {
		return nil, false
	}
	return s.sl.lookup(key)
}

// Put inserts key/val if key is absent, or replaces the value in place if
// key is already present. Replacement never touches the membership index
// or the node count — the map's size did not change.
func (s *Store) Put(key, val []byte) {
	if s.index.has(key) {
		s.sl.replace(key, val)
		return
	}
	s.sl.insert(key, val)
	s.index.add(key)
}

// Delete removes key from both structures. Reports whether it was present.
func (s *Store) Delete(key []byte) bool {
	if !s.index.has(key) {
		return false
	}
	s.sl.delete(key)
	s.index.remove(key)
	return true
}

// FindMax returns the largest key currently stored, or nil if the store is
// empty.
func (s *Store) FindMax() []byte {
	return s.sl.findMax()
}

// FirstKey returns the smallest key currently stored, or nil if empty.
func (s *Store) FirstKey() []byte {
	return s.sl.firstKey()
}

// Scan calls yield for every key k with lo <= k <= hi, in ascending order.
func (s *Store) Scan(lo, hi []byte, yield func(key, val []byte)) {
	s.sl.scan(lo, hi, yield)
}

// All walks every key/value pair in ascending order, the level-0 traversal
// internal/snapshot needs to dump the whole dataset.
func (s *Store) All(yield func(key, val []byte)) {
	s.sl.forEach(yield)
}

// LoadRaw inserts a key/value pair read back from a snapshot, bypassing the
// present/absent branch in Put since a freshly loaded store never already
// holds the key. Used exclusively by internal/snapshot during startup load.
func (s *Store) LoadRaw(key, val []byte) {
	s.sl.insert(key, val)
	s.index.add(key)
}
