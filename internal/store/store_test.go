package store

import (
	"bytes"
	"fmt"
	"math/rand"
	"sort"
	"testing"
)

func k(s string) []byte { return []byte(s) }

func TestPutGetBasic(t *testing.T) {
	s := New()

	if _, ok := s.Get(k("foo")); ok {
		t.Fatal("expected miss on empty store")
	}

	s.Put(k("foo"), k("bar"))
	val, ok := s.Get(k("foo"))
	if !ok {
		t.Fatal("expected hit after put")
	}
	if !bytes.Equal(val, k("bar")) {
		t.Errorf("got %q, want %q", val, "bar")
	}
	if s.Len() != 1 {
		t.Errorf("got length %d, want 1", s.Len())
	}
}

func TestPutReplaceDoesNotChangeLength(t *testing.T) {
	s := New()
	s.Put(k("foo"), k("bar"))
	s.Put(k("foo"), k("baz"))

	if s.Len() != 1 {
		t.Errorf("replace changed length: got %d, want 1", s.Len())
	}
	val, ok := s.Get(k("foo"))
	if !ok || !bytes.Equal(val, k("baz")) {
		t.Errorf("got %q,%v want baz,true", val, ok)
	}
}

func TestDelete(t *testing.T) {
	s := New()
	s.Put(k("foo"), k("bar"))

	if !s.Delete(k("foo")) {
		t.Fatal("expected delete of present key to return true")
	}
	if _, ok := s.Get(k("foo")); ok {
		t.Fatal("expected miss after delete")
	}
	if s.Len() != 0 {
		t.Errorf("got length %d, want 0", s.Len())
	}
	if s.Delete(k("foo")) {
		t.Fatal("expected delete of absent key to return false")
	}
}

func TestFindMax(t *testing.T) {
	s := New()
	for _, key := range []string{"b", "a", "d", "c"} {
		s.Put(k(key), k("v"))
	}
	if got := string(s.FindMax()); got != "d" {
		t.Errorf("got max %q, want %q", got, "d")
	}
	if got := string(s.FirstKey()); got != "a" {
		t.Errorf("got first %q, want %q", got, "a")
	}
}

func TestFindMaxEmpty(t *testing.T) {
	s := New()
	if got := s.FindMax(); got != nil {
		t.Errorf("expected nil max on empty store, got %q", got)
	}
}

func TestScanRange(t *testing.T) {
	s := New()
	for _, key := range []string{"a", "b", "c", "d", "e"} {
		s.Put(k(key), []byte("v-"+key))
	}

	var got []string
	s.Scan(k("b"), k("d"), func(key, val []byte) {
		got = append(got, string(key))
	})

	want := []string{"b", "c", "d"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestScanNoMatches(t *testing.T) {
	s := New()
	s.Put(k("a"), k("v"))
	s.Put(k("z"), k("v"))

	var got []string
	s.Scan(k("m"), k("n"), func(key, val []byte) {
		got = append(got, string(key))
	})
	if len(got) != 0 {
		t.Errorf("expected no matches, got %v", got)
	}
}

// TestOrderingInvariant checks that level-0 traversal always yields keys in
// strictly ascending lexicographic order, even after interleaved
// insert/delete.
func TestOrderingInvariant(t *testing.T) {
	s := New()
	rnd := rand.New(rand.NewSource(1))
	present := map[string]bool{}

	for i := 0; i < 500; i++ {
		key := fmt.Sprintf("key-%04d", rnd.Intn(200))
		if rnd.Intn(3) == 0 && present[key] {
			s.Delete(k(key))
			delete(present, key)
		} else {
			s.Put(k(key), k("v"))
			present[key] = true
		}
	}

	var seen []string
	s.Scan(k(""), k("\xff\xff\xff\xff"), func(key, val []byte) {
		seen = append(seen, string(key))
	})

	for i := 1; i < len(seen); i++ {
		if seen[i-1] >= seen[i] {
			t.Fatalf("ordering violated at %d: %q >= %q", i, seen[i-1], seen[i])
		}
	}

	var want []string
	for key := range present {
		want = append(want, key)
	}
	sort.Strings(want)

	if len(seen) != len(want) {
		t.Fatalf("got %d keys, want %d", len(seen), len(want))
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("index %d: got %q, want %q", i, seen[i], want[i])
		}
	}
}

// TestMembershipIndexMirrorsSkiplist checks that the membership index's key
// set equals the set reachable from level 0.
func TestMembershipIndexMirrorsSkiplist(t *testing.T) {
	s := New()
	keys := []string{"delta", "alpha", "charlie", "bravo", "echo"}
	for _, key := range keys {
		s.Put(k(key), k("v"))
	}
	s.Delete(k("bravo"))

	var fromSkiplist []string
	s.Scan(k(""), k("\xff\xff\xff\xff"), func(key, val []byte) {
		fromSkiplist = append(fromSkiplist, string(key))
	})

	if len(fromSkiplist) != len(s.index) {
		t.Fatalf("skiplist has %d keys, index has %d", len(fromSkiplist), len(s.index))
	}
	for _, key := range fromSkiplist {
		if !s.index.has([]byte(key)) {
			t.Errorf("key %q present in skiplist but missing from index", key)
		}
	}
}

func TestRandomHeightDistributionCapped(t *testing.T) {
	sl := newSkiplist(rand.New(rand.NewSource(42)))
	for i := 0; i < 10000; i++ {
		h := sl.randomHeight()
		if h < 1 || h > MaxHeight {
			t.Fatalf("height %d out of range [1,%d]", h, MaxHeight)
		}
	}
}
