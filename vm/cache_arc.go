package vm

import "container/list"

// arcEntry is the value carried by every T1/T2 list element.
type arcEntry struct {
	key   uint32
	block *Block
	inT1  bool
}

// ARCCache is an Adaptive Replacement Cache keyed by guest start-PC. T1
// holds recently-inserted blocks, T2 holds blocks that have been hit more
// than once, and B1/B2 are ghost lists of evicted keys used only to steer
// the T1/T2 balance.
//
// The replace() bound uses the classic Megiddo/Modha form, symmetric in
// both the plain-T1-full and B2-hit cases.
type ARCCache struct {
	capacity int
	p        int // target size of T1

	t1, t2 *list.List
	b1, b2 *list.List

	t1t2 map[uint32]*list.Element // live entries, key -> element in t1 or t2
	ghost map[uint32]*list.Element // ghost entries, key -> element in b1 or b2
}

// NewARCCache creates an ARC cache with the given power-of-two capacity.
func NewARCCache(capacity int) *ARCCache {
	return &ARCCache{
		capacity: capacity,
		t1:       list.New(),
		t2:       list.New(),
		b1:       list.New(),
		b2:       list.New(),
		t1t2:     make(map[uint32]*list.Element),
		ghost:    make(map[uint32]*list.Element),
	}
}

func (c *ARCCache) Get(pc uint32) (*Block, bool) {
	el, ok := c.t1t2[pc]
	if !ok {
		return nil, false
	}
	e := el.Value.(*arcEntry)
	e.block.Hot++
	if e.inT1 {
		c.t1.Remove(el)
		e.inT1 = false
		c.t1t2[pc] = c.t2.PushFront(e)
	} else {
		c.t2.MoveToFront(el)
	}
	return e.block, true
}

func (c *ARCCache) Put(pc uint32, b *Block) *Block {
	if el, ok := c.t1t2[pc]; ok {
		// Already cached: refresh in place, no eviction.
		e := el.Value.(*arcEntry)
		e.block = b
		return nil
	}

	var victim *Block

	if el, ok := c.ghost[pc]; ok && el.Value.(*ghostEntry).inB1 {
		var delta1 int
		if c.b1.Len() >= c.b2.Len() {
			delta1 = 1
		} else {
			delta1 = c.b2.Len() / c.b1.Len()
		}
		c.p = minInt(c.capacity, c.p+delta1)
		victim = c.replace(false)
		c.b1.Remove(el)
		delete(c.ghost, pc)
		c.t1t2[pc] = c.t2.PushFront(&arcEntry{key: pc, block: b})
		return victim
	}

	if el, ok := c.ghost[pc]; ok && !el.Value.(*ghostEntry).inB1 {
		var delta2 int
		if c.b2.Len() >= c.b1.Len() {
			delta2 = 1
		} else {
			delta2 = c.b1.Len() / c.b2.Len()
		}
		c.p = maxInt(0, c.p-delta2)
		victim = c.replace(true)
		c.b2.Remove(el)
		delete(c.ghost, pc)
		c.t1t2[pc] = c.t2.PushFront(&arcEntry{key: pc, block: b})
		return victim
	}

	// Case IV: pc is in none of T1, T2, B1, B2.
	l1 := c.t1.Len() + c.b1.Len()
	if l1 == c.capacity {
		if c.t1.Len() < c.capacity {
			if back := c.b1.Back(); back != nil {
				key := back.Value.(*ghostEntry).key
				c.b1.Remove(back)
				delete(c.ghost, key)
			}
			victim = c.replace(false)
		} else {
			// |T1| == c: B1 is empty, evict T1's LRU outright (no ghost).
			if back := c.t1.Back(); back != nil {
				e := back.Value.(*arcEntry)
				victim = e.block
				c.t1.Remove(back)
				delete(c.t1t2, e.key)
			}
		}
	} else if l1 < c.capacity {
		total := c.t1.Len() + c.t2.Len() + c.b1.Len() + c.b2.Len()
		if total >= c.capacity {
			if total == 2*c.capacity {
				if back := c.b2.Back(); back != nil {
					key := back.Value.(*ghostEntry).key
					c.b2.Remove(back)
					delete(c.ghost, key)
				}
			}
			victim = c.replace(false)
		}
	}

	c.t1t2[pc] = c.t1.PushFront(&arcEntry{key: pc, block: b, inT1: true})
	return victim
}

// replace evicts one entry from T1 or T2 into the matching ghost list and
// returns the evicted block.
func (c *ARCCache) replace(inB2Case bool) *Block {
	if c.t1.Len() > 0 && (c.t1.Len() > c.p || (inB2Case && c.t1.Len() == c.p)) {
		back := c.t1.Back()
		e := back.Value.(*arcEntry)
		c.t1.Remove(back)
		delete(c.t1t2, e.key)
		c.ghost[e.key] = c.b1.PushFront(&ghostEntry{key: e.key, inB1: true})
		return e.block
	}
	if back := c.t2.Back(); back != nil {
		e := back.Value.(*arcEntry)
		c.t2.Remove(back)
		delete(c.t1t2, e.key)
		c.ghost[e.key] = c.b2.PushFront(&ghostEntry{key: e.key, inB1: false})
		return e.block
	}
	return nil
}

// ghostEntry is the value carried by every B1/B2 list element.
type ghostEntry struct {
	key  uint32
	inB1 bool
}

func (c *ARCCache) IsHot(pc uint32) bool {
	el, ok := c.t1t2[pc]
	if !ok {
		return false
	}
	return el.Value.(*arcEntry).block.IsHot(JITThresholdDefault)
}

func (c *ARCCache) Free(destructor func(*Block)) {
	for _, l := range []*list.List{c.t1, c.t2} {
		for el := l.Front(); el != nil; el = el.Next() {
			destructor(el.Value.(*arcEntry).block)
		}
	}
	c.t1.Init()
	c.t2.Init()
	c.b1.Init()
	c.b2.Init()
	c.t1t2 = make(map[uint32]*list.Element)
	c.ghost = make(map[uint32]*list.Element)
	c.p = 0
}

func (c *ARCCache) Len() int { return c.t1.Len() + c.t2.Len() }

func (c *ARCCache) ForEach(f func(*Block)) {
	for _, l := range []*list.List{c.t1, c.t2} {
		for el := l.Front(); el != nil; el = el.Next() {
			f(el.Value.(*arcEntry).block)
		}
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
