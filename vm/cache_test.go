package vm

import "testing"

func blk(pc uint32) *Block { return &Block{StartPC: pc} }

func TestARCCacheBasicPutGet(t *testing.T) {
	c := NewARCCache(4)
	c.Put(1, blk(1))
	got, ok := c.Get(1)
	if !ok || got.StartPC != 1 {
		t.Fatalf("Get(1) = %v, %v", got, ok)
	}
	if _, ok := c.Get(2); ok {
		t.Error("Get(2) should miss on an empty entry")
	}
}

func TestARCCacheEvictsAtCapacity(t *testing.T) {
	c := NewARCCache(2)
	c.Put(1, blk(1))
	c.Put(2, blk(2))
	victim := c.Put(3, blk(3))
	if victim == nil {
		t.Fatal("expected an eviction once capacity is exceeded")
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

// TestARCCacheOutrightEvictionLeavesNoGhost runs the access trace
// A B C D E A with capacity 4. When E arrives |T1| == c, so A is dropped
// outright rather than moved to B1 (keeping |T1|+|B1| <= c); re-inserting
// A is then a cold miss, not a ghost hit, and the target T1 size p does
// not move.
func TestARCCacheOutrightEvictionLeavesNoGhost(t *testing.T) {
	c := NewARCCache(4)
	trace := []uint32{'A', 'B', 'C', 'D'}
	for _, k := range trace {
		c.Put(k, blk(k))
	}
	// Insert E: capacity is full and B1 is empty (nothing evicted yet),
	// so this evicts T1's LRU (A) outright, with no ghost entry.
	c.Put('E', blk('E'))
	if _, ok := c.t1t2['A']; ok {
		t.Fatal("A should have been evicted to make room for E")
	}

	pBefore := c.p
	// Re-inserting A is a cold Case IV miss after the first eviction
	// round (A was dropped without a ghost record), so p does not move
	// here; this confirms eviction-without-ghost is a true cold miss
	// rather than a silent ghost hit.
	c.Put('A', blk('A'))
	if c.p != pBefore {
		t.Errorf("p changed on a cold miss: before=%d after=%d", pBefore, c.p)
	}
}

func TestARCCacheFreeInvokesDestructor(t *testing.T) {
	c := NewARCCache(4)
	c.Put(1, blk(1))
	c.Put(2, blk(2))
	seen := map[uint32]bool{}
	c.Free(func(b *Block) { seen[b.StartPC] = true })
	if len(seen) != 2 {
		t.Errorf("Free invoked destructor %d times, want 2", len(seen))
	}
	if c.Len() != 0 {
		t.Errorf("Len() after Free = %d, want 0", c.Len())
	}
}

func TestLFUCachePromotesOnHit(t *testing.T) {
	c := NewLFUCache(4, 1000)
	c.Put(1, blk(1))
	for i := 0; i < 5; i++ {
		c.Get(1)
	}
	b, ok := c.Get(1)
	if !ok || b.Hot != 6 {
		t.Errorf("Hot = %d, want 6 after six Get calls", b.Hot)
	}
}

func TestLFUCacheEvictsLowestFrequency(t *testing.T) {
	c := NewLFUCache(2, 1000)
	c.Put(1, blk(1))
	c.Put(2, blk(2))
	c.Get(1) // bump 1's frequency so 2 is the lowest
	victim := c.Put(3, blk(3))
	if victim == nil || victim.StartPC != 2 {
		t.Errorf("victim = %v, want block 2 (lowest frequency)", victim)
	}
}

func TestLFUCacheForEach(t *testing.T) {
	c := NewLFUCache(4, 1000)
	c.Put(1, blk(1))
	c.Put(2, blk(2))
	n := 0
	c.ForEach(func(*Block) { n++ })
	if n != 2 {
		t.Errorf("ForEach visited %d blocks, want 2", n)
	}
}
