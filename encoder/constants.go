// Package encoder is the inverse of vm.Decode: it packs register
// indices, immediates, and mnemonics into raw 32-bit RISC-V encodings.
// Tests use it to build instruction words and to check the decode ∘
// encode round-trip law, using a field-constant-and-Encode-function
// style per mnemonic.
package encoder

// Base opcode field values (bits [6:0]).
const (
	OpcodeLoad   = 0x03
	OpcodeLoadFP = 0x07
	OpcodeMiscMem = 0x0f
	OpcodeOpImm  = 0x13
	OpcodeAuipc  = 0x17
	OpcodeStore  = 0x23
	OpcodeStoreFP = 0x27
	OpcodeAmo    = 0x2f
	OpcodeOp     = 0x33
	OpcodeLui    = 0x37
	OpcodeFmadd  = 0x43
	OpcodeFmsub  = 0x47
	OpcodeFnmsub = 0x4b
	OpcodeFnmadd = 0x4f
	OpcodeOpFP   = 0x53
	OpcodeBranch = 0x63
	OpcodeJalr   = 0x67
	OpcodeJal    = 0x6f
	OpcodeSystem = 0x73
)
