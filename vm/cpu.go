package vm

// cpu is the register file: eight general purpose registers, the program
// counter and the condition register, plus the routines that execute
// each instruction against them.
type cpu struct {
	generalPurposeRegisters [8]Word
	internalRegisters       struct {
		pc   Word
		cond Flag
	}
}

func newCpu(pc Word) cpu {
	var c cpu
	c.setProgramCounter(pc)
	c.setConditionFlag(FLAG_ZRO)
	return c
}

func (cpu *cpu) read(r Register) Word {
	return cpu.generalPurposeRegisters[r&0b111]
}

func (cpu *cpu) write(r Register, value Word) {
	cpu.generalPurposeRegisters[r&0b111] = value
}

func (cpu *cpu) setConditionFlag(flag Flag) {
	cpu.internalRegisters.cond = flag
}

func (cpu *cpu) setProgramCounter(value Word) {
	cpu.internalRegisters.pc = value
}

// incrementProgramCounter advances PC by one, wrapping at 0xFFFF, and
// returns the new value.
func (cpu *cpu) incrementProgramCounter() Word {
	cpu.internalRegisters.pc++
	return cpu.internalRegisters.pc
}

func (cpu *cpu) updateFlags(r Register) {
	cpu.setConditionFlag(flagOf(cpu.read(r)))
}

// sext sign extends the low bitCount bits of x to a full word.
func sext(x Word, bitCount uint) Word {
	if ((x >> (bitCount - 1)) & 0b1) != 0 {
		x |= (0xFFFF << bitCount)
	}
	return x
}

// ADD  |0001    |DR   |SR1  |0|00 |SR2   |
// ADD  |0001    |DR   |SR1  |1|imm5      |
func (cpu *cpu) add(instruction Word) {
	d := dr(instruction)
	if (instruction>>5)&0b1 == 1 {
		cpu.write(d, cpu.read(sr1(instruction))+imm5(instruction))
	} else {
		cpu.write(d, cpu.read(sr1(instruction))+cpu.read(sr2(instruction)))
	}
	cpu.updateFlags(d)
}

// AND  |0101    |DR   |SR1  |0|00 |SR2   |
// AND  |0101    |DR   |SR1  |1|imm5      |
func (cpu *cpu) and(instruction Word) {
	d := dr(instruction)
	if (instruction>>5)&0b1 == 1 {
		cpu.write(d, cpu.read(sr1(instruction))&imm5(instruction))
	} else {
		cpu.write(d, cpu.read(sr1(instruction))&cpu.read(sr2(instruction)))
	}
	cpu.updateFlags(d)
}

// NOT  |1001    |DR   |SR   |1|11111     |
func (cpu *cpu) not(instruction Word) {
	d := dr(instruction)
	cpu.write(d, ^cpu.read(sr1(instruction)))
	cpu.updateFlags(d)
}

// BR   |0000    |N|Z|P|PCoffset9         |
func (cpu *cpu) br(instruction Word) {
	nzp := Flag((instruction >> 9) & 0b111)
	if nzp&cpu.internalRegisters.cond != 0 {
		cpu.internalRegisters.pc += pcoffset9(instruction)
	}
}

// JMP  |1100    |000  |BaseR|000000      |
func (cpu *cpu) jmp(instruction Word) {
	cpu.setProgramCounter(cpu.read(sr1(instruction)))
}

// JSR  |0100    |1|PCoffset11            |
// JSRR |0100    |0|00 |BaseR|000000      |
func (cpu *cpu) jsr(instruction Word) {
	pc := cpu.internalRegisters.pc
	if (instruction>>11)&0b1 == 1 {
		pc += pcoffset11(instruction)
	} else {
		// BaseR is read before R7 is overwritten, JSRR R7 jumps to the old R7
		pc = cpu.read(sr1(instruction))
	}
	cpu.write(R7, cpu.internalRegisters.pc)
	cpu.setProgramCounter(pc)
}

// LD   |0010    |DR   |PCoffset9         |
func (cpu *cpu) ld(instruction Word, mem *Memory) {
	d := dr(instruction)
	cpu.write(d, mem.Read(cpu.internalRegisters.pc+pcoffset9(instruction)))
	cpu.updateFlags(d)
}

// LDI  |1010    |DR   |PCoffset9         |
func (cpu *cpu) ldi(instruction Word, mem *Memory) {
	d := dr(instruction)
	addr := mem.Read(cpu.internalRegisters.pc + pcoffset9(instruction))
	cpu.write(d, mem.Read(addr))
	cpu.updateFlags(d)
}

// LDR  |0110    |DR   |BaseR|offset6     |
func (cpu *cpu) ldr(instruction Word, mem *Memory) {
	d := dr(instruction)
	cpu.write(d, mem.Read(cpu.read(sr1(instruction))+offset6(instruction)))
	cpu.updateFlags(d)
}

// LEA  |1110    |DR   |PCoffset9         |
func (cpu *cpu) lea(instruction Word) {
	d := dr(instruction)
	cpu.write(d, cpu.internalRegisters.pc+pcoffset9(instruction))
	cpu.updateFlags(d)
}

// ST   |0011    |SR   |PCoffset9         |
func (cpu *cpu) st(instruction Word, mem *Memory) {
	mem.Write(cpu.internalRegisters.pc+pcoffset9(instruction), cpu.read(dr(instruction)))
}

// STI  |1011    |SR   |PCoffset9         |
func (cpu *cpu) sti(instruction Word, mem *Memory) {
	addr := mem.Read(cpu.internalRegisters.pc + pcoffset9(instruction))
	mem.Write(addr, cpu.read(dr(instruction)))
}

// STR  |0111    |SR   |BaseR|offset6     |
func (cpu *cpu) str(instruction Word, mem *Memory) {
	mem.Write(cpu.read(sr1(instruction))+offset6(instruction), cpu.read(dr(instruction)))
}
