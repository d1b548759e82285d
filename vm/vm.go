package vm

import (
	"bufio"
	"context"
	"fmt"
	goIO "io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// State is the run state of a VM.
type State int

const (
	Running State = iota
	Halted        // stopped by the HALT trap
	Faulted       // stopped by a runtime fault, see Err
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Halted:
		return "halted"
	case Faulted:
		return "faulted"
	}
	return "unknown"
}

// VM owns the memory and register file of one machine.
type VM struct {
	memory       *Memory
	cpu          cpu
	keyboard     Keyboard
	stdoutWriter *bufio.Writer
	log          logrus.FieldLogger
	trace        bool
	origin       Word
	state        State
	err          error
	cycles       uint64
}

// Option configures a VM.
type Option func(*VM) error

// Input sets the keyboard used by the KBSR poll and the GETC and IN
// traps. Without one, the keyboard never has data and GETC faults.
func Input(k Keyboard) Option {
	return func(vm *VM) error {
		vm.keyboard = k
		return nil
	}
}

// Output sets where the trap routines write characters.
func Output(w goIO.Writer) Option {
	return func(vm *VM) error {
		if w == nil {
			return errors.New("nil output writer")
		}
		vm.stdoutWriter = bufio.NewWriter(w)
		return nil
	}
}

// Logger sets the logger used for the instruction trace, which is
// logged at debug level.
func Logger(l logrus.FieldLogger) Option {
	return func(vm *VM) error {
		vm.log = l
		return nil
	}
}

// Origin sets the initial program counter. The default is UserSpaceStart.
func Origin(pc Word) Option {
	return func(vm *VM) error {
		vm.origin = pc
		return nil
	}
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(goIO.Discard)
	return l
}

func debugEnabled(l logrus.FieldLogger) bool {
	switch l := l.(type) {
	case *logrus.Logger:
		return l.IsLevelEnabled(logrus.DebugLevel)
	case *logrus.Entry:
		return l.Logger.IsLevelEnabled(logrus.DebugLevel)
	}
	return true
}

// New creates a machine with zeroed memory, PC at the origin and the
// zero flag set.
func New(opts ...Option) (*VM, error) {
	vm := &VM{
		stdoutWriter: bufio.NewWriter(goIO.Discard),
		log:          discardLogger(),
		origin:       UserSpaceStart,
	}
	for _, opt := range opts {
		if err := opt(vm); err != nil {
			return nil, err
		}
	}
	vm.trace = debugEnabled(vm.log)
	vm.memory = newMemory(vm.keyboard)
	vm.cpu = newCpu(vm.origin)
	return vm, nil
}

func (vm *VM) Memory() *Memory { return vm.memory }

// Register returns the content of a general purpose register.
func (vm *VM) Register(r Register) Word { return vm.cpu.read(r) }

func (vm *VM) PC() Word     { return vm.cpu.internalRegisters.pc }
func (vm *VM) Cond() Flag   { return vm.cpu.internalRegisters.cond }
func (vm *VM) State() State { return vm.state }

// Halted reports whether the machine stopped, normally or not.
func (vm *VM) Halted() bool { return vm.state != Running }

// Err returns the fault that stopped the machine, if any.
func (vm *VM) Err() error { return vm.err }

// Cycles returns the number of instructions executed.
func (vm *VM) Cycles() uint64 { return vm.cycles }

// Step executes one instruction. Once the machine is halted Step does
// nothing and returns the fault that stopped it, if any.
func (vm *VM) Step() error {
	return vm.step(context.Background())
}

func (vm *VM) step(ctx context.Context) error {
	if vm.state != Running {
		return vm.err
	}

	addr := vm.cpu.internalRegisters.pc
	instruction := vm.memory.Read(addr)
	vm.cpu.incrementProgramCounter()
	op := decodeOpcode(instruction)
	vm.cycles++

	if vm.trace {
		vm.log.WithFields(logrus.Fields{
			"pc":    fmt.Sprintf("0x%04x", addr),
			"instr": fmt.Sprintf("0x%04x", instruction),
			"op":    op,
		}).Debug("decode")
	}

	link := vm.cpu.read(R7)
	if err := vm.execute(ctx, op, instruction); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && err == ctxErr {
			// interrupted while waiting for a key, the trap runs again on resume
			vm.cpu.write(R7, link)
			vm.cpu.setProgramCounter(addr)
			vm.cycles--
			return errors.Wrapf(err, "stopped at 0x%04x", addr)
		}
		vm.fault(err, addr, instruction, op)
		return vm.err
	}
	return nil
}

func (vm *VM) execute(ctx context.Context, op Opcode, instruction Word) error {
	switch op {
	case OP_BR:
		vm.cpu.br(instruction)
	case OP_ADD:
		vm.cpu.add(instruction)
	case OP_LD:
		vm.cpu.ld(instruction, vm.memory)
	case OP_ST:
		vm.cpu.st(instruction, vm.memory)
	case OP_JSR:
		vm.cpu.jsr(instruction)
	case OP_AND:
		vm.cpu.and(instruction)
	case OP_LDR:
		vm.cpu.ldr(instruction, vm.memory)
	case OP_STR:
		vm.cpu.str(instruction, vm.memory)
	case OP_NOT:
		vm.cpu.not(instruction)
	case OP_LDI:
		vm.cpu.ldi(instruction, vm.memory)
	case OP_STI:
		vm.cpu.sti(instruction, vm.memory)
	case OP_JMP:
		vm.cpu.jmp(instruction)
	case OP_LEA:
		vm.cpu.lea(instruction)
	case OP_TRAP:
		vm.cpu.write(R7, vm.cpu.internalRegisters.pc)
		return vm.trap(ctx, instruction)
	case OP_RTI, OP_RES:
		return &Fault{Kind: FaultIllegalOpcode}
	}
	return nil
}

func (vm *VM) fault(err error, addr, instruction Word, op Opcode) {
	f, ok := err.(*Fault)
	if !ok {
		f = &Fault{Err: err}
	}
	f.Addr = addr
	f.Instruction = instruction
	f.Opcode = op
	if op == OP_TRAP {
		f.Vector = TrapVector(instruction & 0xFF)
	}
	vm.state = Faulted
	vm.err = f
}

// Run executes instructions until the machine halts or ctx is done. It
// returns nil after HALT and the fault otherwise. A cancelled Run leaves
// the machine Running at the instruction it stopped on, so it can be
// resumed.
func (vm *VM) Run(ctx context.Context) error {
	for vm.state == Running {
		select {
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), "stopped at 0x%04x", vm.PC())
		default:
		}
		if err := vm.step(ctx); err != nil {
			return err
		}
	}
	return vm.err
}
