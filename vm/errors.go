package vm

import (
	"fmt"

	"github.com/pkg/errors"
)

// image errors
var (
	ErrImageTooShort  = errors.New("image is too short to hold an origin")
	ErrImageEmpty     = errors.New("image holds no program words")
	ErrImageTruncated = errors.New("image ends in the middle of a word")
	ErrImageOverflow  = errors.New("image does not fit above its origin")
)

// FaultKind classifies a runtime fault.
type FaultKind int

const (
	FaultIllegalOpcode FaultKind = iota + 1 /* RTI or RES reached in user mode */
	FaultUnknownTrap                        /* TRAP with an undefined vector */
	FaultInput                              /* keyboard closed or failed */
	FaultOutput                             /* display write failed */
)

func (k FaultKind) String() string {
	switch k {
	case FaultIllegalOpcode:
		return "illegal opcode"
	case FaultUnknownTrap:
		return "unknown trap vector"
	case FaultInput:
		return "input failure"
	case FaultOutput:
		return "output failure"
	}
	return "fault"
}

// Fault is a runtime error that stopped the machine. It describes the
// instruction that raised it.
type Fault struct {
	Kind        FaultKind
	Addr        Word // address the instruction was fetched from
	Instruction Word
	Opcode      Opcode
	Vector      TrapVector // only meaningful for TRAP faults
	Err         error
}

func (f *Fault) Error() string {
	msg := fmt.Sprintf("%s at 0x%04x: %s (0x%04x)", f.Kind, f.Addr, f.Opcode, f.Instruction)
	if f.Opcode == OP_TRAP {
		msg = fmt.Sprintf("%s at 0x%04x: TRAP 0x%02x (0x%04x)", f.Kind, f.Addr, uint8(f.Vector), f.Instruction)
	}
	if f.Err != nil {
		msg += ": " + f.Err.Error()
	}
	return msg
}

// Unwrap supports errors.Is and errors.As from the standard library.
func (f *Fault) Unwrap() error { return f.Err }
