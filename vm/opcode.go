package vm

// Opcode is the top nibble of an instruction. All sixteen values are
// defined, so decoding never fails.
type Opcode uint8

// opcodes
const (
	OP_BR Opcode = iota
	OP_ADD
	OP_LD
	OP_ST
	OP_JSR
	OP_AND
	OP_LDR
	OP_STR
	OP_RTI
	OP_NOT
	OP_LDI
	OP_STI
	OP_JMP
	OP_RES
	OP_LEA
	OP_TRAP
)

var opcodeNames = [16]string{
	OP_BR:   "BR",
	OP_ADD:  "ADD",
	OP_LD:   "LD",
	OP_ST:   "ST",
	OP_JSR:  "JSR",
	OP_AND:  "AND",
	OP_LDR:  "LDR",
	OP_STR:  "STR",
	OP_RTI:  "RTI",
	OP_NOT:  "NOT",
	OP_LDI:  "LDI",
	OP_STI:  "STI",
	OP_JMP:  "JMP",
	OP_RES:  "RES",
	OP_LEA:  "LEA",
	OP_TRAP: "TRAP",
}

func (op Opcode) String() string {
	return opcodeNames[op&0xF]
}

func decodeOpcode(instruction Word) Opcode {
	return Opcode(instruction >> 12)
}

// Register names one of the eight general purpose registers.
type Register uint8

// general purpose registers
const (
	R0 Register = 0b000
	R1 Register = 0b001
	R2 Register = 0b010
	R3 Register = 0b011
	R4 Register = 0b100
	R5 Register = 0b101
	R6 Register = 0b110
	R7 Register = 0b111
)

func (r Register) String() string {
	return "R" + string('0'+rune(r&0b111))
}

// register field decoding; the 3-bit mask keeps every result in R0..R7
func dr(instruction Word) Register  { return Register((instruction >> 9) & 0b111) }
func sr1(instruction Word) Register { return Register((instruction >> 6) & 0b111) }
func sr2(instruction Word) Register { return Register(instruction & 0b111) }

// offset field decoding, already sign extended
func imm5(instruction Word) Word      { return sext(instruction&0x1F, 5) }
func offset6(instruction Word) Word   { return sext(instruction&0x3F, 6) }
func pcoffset9(instruction Word) Word { return sext(instruction&0x1FF, 9) }
func pcoffset11(instruction Word) Word {
	return sext(instruction&0x7FF, 11)
}
