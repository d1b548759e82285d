package vm

// Word is the machine word. Addresses are words too, so every address
// computation wraps modulo 65536.
type Word uint16

const MemorySize = 1 << 16
const (
	UserSpaceStart             = 0x3000
	MemoryMappedRegistersStart = 0xFE00
)

// memory mapped register addresses
const (
	KBSR Word = MemoryMappedRegistersStart          /* keyboard status register */
	KBDR Word = MemoryMappedRegistersStart + 0x0002 /* keyboard data register */
)

const kbsrReady Word = 1 << 15

// Memory is the flat address space of the machine.
//
// Read is not a pure accessor: reading KBSR polls the keyboard and
// updates KBSR and KBDR before the value is returned. The poll never
// blocks.
type Memory struct {
	ram      [MemorySize]Word
	keyboard Keyboard
}

func newMemory(keyboard Keyboard) *Memory {
	return &Memory{keyboard: keyboard}
}

func (mem *Memory) Read(addr Word) Word {
	if addr == KBSR {
		mem.pollKeyboard()
	}
	return mem.ram[addr]
}

func (mem *Memory) Write(addr, value Word) {
	mem.ram[addr] = value
}

// Load copies words into memory starting at origin.
func (mem *Memory) Load(origin Word, words []Word) {
	addr := origin
	for _, w := range words {
		mem.ram[addr] = w
		addr++
	}
}

// peek reads a cell without device side effects.
func (mem *Memory) peek(addr Word) Word {
	return mem.ram[addr]
}

func (mem *Memory) pollKeyboard() {
	if mem.keyboard == nil {
		mem.ram[KBSR] = 0
		return
	}
	if b, ok := mem.keyboard.Poll(); ok {
		mem.ram[KBSR] = kbsrReady
		mem.ram[KBDR] = Word(b)
	} else {
		mem.ram[KBSR] = 0
	}
}
