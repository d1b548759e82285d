package vm

import (
	"context"
	goIO "io"
)

// TrapVector selects a service routine through the TRAP instruction.
type TrapVector uint8

const (
	TRAP_GETC  TrapVector = 0x20 /* get character from keyboard, not echoed onto the terminal */
	TRAP_OUT   TrapVector = 0x21 /* output a character */
	TRAP_PUTS  TrapVector = 0x22 /* output a word string */
	TRAP_IN    TrapVector = 0x23 /* get character from keyboard, echoed onto the terminal */
	TRAP_PUTSP TrapVector = 0x24 /* output a byte string */
	TRAP_HALT  TrapVector = 0x25 /* halt the program */
)

const inPrompt = "Enter a character: "

type trapRoutine func(vm *VM, ctx context.Context) error

var trapRoutines = map[TrapVector]trapRoutine{
	TRAP_GETC:  (*VM).getc,
	TRAP_OUT:   (*VM).out,
	TRAP_PUTS:  (*VM).puts,
	TRAP_IN:    (*VM).in,
	TRAP_PUTSP: (*VM).putsp,
	TRAP_HALT:  (*VM).halt,
}

var trapNames = map[TrapVector]string{
	TRAP_GETC:  "GETC",
	TRAP_OUT:   "OUT",
	TRAP_PUTS:  "PUTS",
	TRAP_IN:    "IN",
	TRAP_PUTSP: "PUTSP",
	TRAP_HALT:  "HALT",
}

func (v TrapVector) String() string {
	if name, ok := trapNames[v]; ok {
		return name
	}
	return "UNKNOWN"
}

// trap runs the routine for the vector in the low byte of instruction.
// R7 has already been loaded with the return address. Routines waiting
// for a key give up when ctx is done.
func (vm *VM) trap(ctx context.Context, instruction Word) error {
	vector := TrapVector(instruction & 0xFF)
	routine, ok := trapRoutines[vector]
	if !ok {
		return &Fault{Kind: FaultUnknownTrap}
	}
	if vm.trace {
		vm.log.WithField("trap", vector).Debug("trap")
	}
	return routine(vm, ctx)
}

func inputFault(err error) error  { return &Fault{Kind: FaultInput, Err: err} }
func outputFault(err error) error { return &Fault{Kind: FaultOutput, Err: err} }

func (vm *VM) readKey(ctx context.Context) (byte, error) {
	if vm.keyboard == nil {
		return 0, inputFault(goIO.EOF)
	}
	c, err := vm.keyboard.ReadByte(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && err == ctxErr {
			return 0, err
		}
		return 0, inputFault(err)
	}
	return c, nil
}

func (vm *VM) flush() error {
	if err := vm.stdoutWriter.Flush(); err != nil {
		return outputFault(err)
	}
	return nil
}

func (vm *VM) getc(ctx context.Context) error {
	c, err := vm.readKey(ctx)
	if err != nil {
		return err
	}
	vm.cpu.write(R0, Word(c))
	return nil
}

func (vm *VM) out(context.Context) error {
	if err := vm.stdoutWriter.WriteByte(byte(vm.cpu.read(R0))); err != nil {
		return outputFault(err)
	}
	return vm.flush()
}

func (vm *VM) puts(context.Context) error {
	for addr := vm.cpu.read(R0); ; addr++ {
		c := vm.memory.peek(addr)
		if c == 0 {
			break
		}
		if err := vm.stdoutWriter.WriteByte(byte(c)); err != nil {
			return outputFault(err)
		}
	}
	return vm.flush()
}

func (vm *VM) in(ctx context.Context) error {
	if _, err := vm.stdoutWriter.WriteString(inPrompt); err != nil {
		return outputFault(err)
	}
	if err := vm.flush(); err != nil {
		return err
	}

	c, err := vm.readKey(ctx)
	if err != nil {
		return err
	}

	if err := vm.stdoutWriter.WriteByte(c); err != nil {
		return outputFault(err)
	}
	vm.cpu.write(R0, Word(c))
	return vm.flush()
}

func (vm *VM) putsp(context.Context) error {
	for addr := vm.cpu.read(R0); ; addr++ {
		word := vm.memory.peek(addr)
		if word == 0 {
			break
		}
		if err := vm.stdoutWriter.WriteByte(byte(word)); err != nil {
			return outputFault(err)
		}
		if word>>8 != 0 {
			if err := vm.stdoutWriter.WriteByte(byte(word >> 8)); err != nil {
				return outputFault(err)
			}
		}
	}
	return vm.flush()
}

func (vm *VM) halt(context.Context) error {
	vm.state = Halted
	return vm.flush()
}
