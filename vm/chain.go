package vm

// TryChain populates a just-built block's chain slots when its terminator
// has a statically known successor. Direct jumps get a single taken
// slot; conditional branches get both the taken and
// not-taken (fall-through) targets, since both are computable without
// executing the instruction. `jalr`, `ecall`/`ebreak`, `mret`/`sret`,
// `fence.i`, and `sfence.vma` never chain: their successor depends on
// register or CSR state that is only known at runtime.
//
// If chaining is disabled at build time this is a no-op, and the
// dispatcher falls back to hashing the PC on every block boundary.
func TryChain(b *Block, enabled bool) {
	if !enabled {
		return
	}
	term := b.Terminator()
	if term == nil {
		return
	}

	switch {
	case term.Op == OpJal:
		b.ChainTaken = uint32(int64(term.PC) + int64(term.Imm))
		b.HasChainTaken = true

	case term.Op.IsBranch():
		b.ChainTaken = uint32(int64(term.PC) + int64(term.Imm))
		b.HasChainTaken = true
		b.ChainNotTaken = term.PC + term.Size
		b.HasChainNotTaken = true
	}
}
