package vm

import "testing"

func TestMemoryReadWrite(t *testing.T) {
	mem := newMemory(nil)

	mem.Write(0x0000, 0x1111)
	mem.Write(0xFFFF, 0x2222)
	if have := mem.Read(0x0000); have != 0x1111 {
		t.Errorf("memory[0x0000]: want 0x1111, have %#04x", have)
	}
	if have := mem.Read(0xFFFF); have != 0x2222 {
		t.Errorf("memory[0xFFFF]: want 0x2222, have %#04x", have)
	}

	addr := Word(0xFFFF)
	addr++
	if have := mem.Read(addr); have != 0x1111 {
		t.Errorf("wrapped address: want 0x1111, have %#04x", have)
	}
}

func TestMemoryLoad(t *testing.T) {
	mem := newMemory(nil)
	mem.Load(0x3000, []Word{0xCAFE, 0xBEEF})

	if have := mem.Read(0x3000); have != 0xCAFE {
		t.Errorf("memory[0x3000]: want 0xCAFE, have %#04x", have)
	}
	if have := mem.Read(0x3001); have != 0xBEEF {
		t.Errorf("memory[0x3001]: want 0xBEEF, have %#04x", have)
	}
	if have := mem.Read(0x3002); have != 0 {
		t.Errorf("memory[0x3002]: want 0, have %#04x", have)
	}
}

func TestKeyboardStatus(t *testing.T) {
	tests := []struct {
		Name     string
		Keyboard Keyboard
		KBSR     Word
		KBDR     Word
	}{
		{"No Keyboard", nil, 0x0000, 0x1234},
		{"No Pending Key", &scriptedKeyboard{}, 0x0000, 0x1234},
		{"Pending Key", &scriptedKeyboard{keys: []byte("f")}, 0x8000, 'f'},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			mem := newMemory(test.Keyboard)
			mem.Write(KBSR, 0xFFFF)
			mem.Write(KBDR, 0x1234)

			if have := mem.Read(KBSR); have != test.KBSR {
				t.Errorf("KBSR: want %#04x, have %#04x", test.KBSR, have)
			}
			if have := mem.peek(KBDR); have != test.KBDR {
				t.Errorf("KBDR: want %#04x, have %#04x", test.KBDR, have)
			}
		})
	}
}

func TestKeyboardDataReadDoesNotPoll(t *testing.T) {
	kb := &scriptedKeyboard{keys: []byte("ab")}
	mem := newMemory(kb)

	if have := mem.Read(KBDR); have != 0 {
		t.Errorf("KBDR: want 0, have %#04x", have)
	}
	if len(kb.keys) != 2 {
		t.Errorf("reading KBDR consumed a key")
	}

	mem.Read(KBSR)
	mem.Read(KBSR)
	if have := mem.Read(KBDR); have != 'b' {
		t.Errorf("KBDR after two polls: want 'b', have %#04x", have)
	}
}

// Reading KBSR through the instruction set, the way programs poll the
// keyboard.
func TestKeyboard(t *testing.T) {
	program := map[Word]Word{
		0x3000: 0b0110_000_001_000000, // LDR R0 R1 0x0
		0x3001: 0b0110_010_011_000000, // LDR R2 R3 0x0
		0xFE02: 0x1234,
	}

	testSuccess(t, []testCase{
		{
			Name:     "Read Keyboard",
			Steps:    2,
			Keyboard: "f",
			Input: testMachineState{
				PC:        0x3000,
				Registers: [8]Word{1: 0xFE00, 3: 0xFE02},
				Memory:    program,
			},
			Output: testMachineState{
				PC:        0x3002,
				Cond:      FLAG_POS,
				Registers: [8]Word{0: 0x8000, 1: 0xFE00, 2: 'f', 3: 0xFE02},
				Memory:    map[Word]Word{0xFE00: 0x8000, 0xFE02: 'f'},
			},
		},
		{
			Name:  "Read Empty Keyboard",
			Steps: 2,
			Input: testMachineState{
				PC:        0x3000,
				Registers: [8]Word{1: 0xFE00, 3: 0xFE02},
				Memory:    program,
			},
			Output: testMachineState{
				PC:        0x3002,
				Cond:      FLAG_POS,
				Registers: [8]Word{0: 0x0000, 1: 0xFE00, 2: 0x1234, 3: 0xFE02},
				Memory:    map[Word]Word{0xFE00: 0x0000},
			},
		},
	})
}
