package vm

// Block is the unit of caching: a straight-line run of decoded
// instructions ending at the first control-transfer or side-exit
// instruction. Once inserted into a cache, its instruction sequence and
// start PC are immutable; only Hot and the chain slots mutate.
type Block struct {
	StartPC    uint32
	Insns      []*Decoded
	LengthBytes uint32

	// Hot is incremented on every execution; once it reaches the
	// configured JIT threshold IsHot() returns true.
	Hot uint64

	// Fault, if non-nil, is the instruction-fetch fault that truncated
	// block construction. A faulting block is never cached.
	Fault error

	// chain slots: populated by TryChain (chain.go) once a successor is
	// statically known. Held as guest PCs rather than pointers so
	// eviction can simply drop the cache entry; BlockCache.Get
	// re-resolves a chain target through the normal lookup path, which
	// also keeps the design free of the raw-pointer cycles
	// warns about.
	ChainTaken    uint32
	ChainNotTaken uint32
	HasChainTaken    bool
	HasChainNotTaken bool
}

// IsHot reports whether this block has reached the JIT threshold and is a
// candidate for native compilation.
// The native backend itself is out of scope; this is the hook point.
func (b *Block) IsHot(threshold uint64) bool {
	return b.Hot >= threshold
}

// InsnCount returns the number of decoded instructions in the block.
func (b *Block) InsnCount() int { return len(b.Insns) }

// Terminator returns the block's last (control-transfer) instruction, or
// nil for an empty block.
func (b *Block) Terminator() *Decoded {
	if len(b.Insns) == 0 {
		return nil
	}
	return b.Insns[len(b.Insns)-1]
}

// unchain clears any chain slot pointing at target. Called by the cache's
// eviction destructor.
func (b *Block) unchain(target uint32) {
	if b.HasChainTaken && b.ChainTaken == target {
		b.HasChainTaken = false
	}
	if b.HasChainNotTaken && b.ChainNotTaken == target {
		b.HasChainNotTaken = false
	}
}
