package vm

import (
	"context"
	goIO "io"
	"os"

	"github.com/pkg/errors"
	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// Keyboard is the input device of the machine.
type Keyboard interface {
	// Poll returns the next pending byte, if any. It must not block.
	Poll() (byte, bool)
	// ReadByte waits for the next byte or for ctx to be done, in which
	// case it returns ctx.Err().
	ReadByte(ctx context.Context) (byte, error)
}

const keyBufferSize = 64

// KeyQueue is a Keyboard fed by a goroutine reading from an io.Reader, so
// the machine can poll for keys without ever waiting on the reader.
type KeyQueue struct {
	keyBuffer chan byte
	err       error
}

func NewKeyQueue(r goIO.Reader) *KeyQueue {
	q := &KeyQueue{keyBuffer: make(chan byte, keyBufferSize)}
	go q.readKeys(r)
	return q
}

func (q *KeyQueue) readKeys(r goIO.Reader) {
	defer close(q.keyBuffer)
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			q.keyBuffer <- buf[0]
		}
		if err != nil {
			if err != goIO.EOF {
				q.err = err
			}
			return
		}
	}
}

func (q *KeyQueue) Poll() (byte, bool) {
	select {
	case b, ok := <-q.keyBuffer:
		return b, ok
	default:
		return 0, false
	}
}

func (q *KeyQueue) ReadByte(ctx context.Context) (byte, error) {
	var b byte
	var ok bool
	select {
	case b, ok = <-q.keyBuffer:
	case <-ctx.Done():
		return 0, ctx.Err()
	}
	if !ok {
		if q.err != nil {
			return 0, errors.Wrap(q.err, "keyboard")
		}
		return 0, goIO.EOF
	}
	return b, nil
}

// EnableRawMode turns off line buffering and echo on f so single key
// presses reach the machine. The returned function restores the previous
// settings. Files that are not terminals are left alone.
func EnableRawMode(f *os.File) (restore func() error, err error) {
	fd := f.Fd()
	if !term.IsTerminal(int(fd)) {
		return func() error { return nil }, nil
	}

	var originalTerminalConfig unix.Termios
	if err := termios.Tcgetattr(fd, &originalTerminalConfig); err != nil {
		return nil, errors.Wrap(err, "Tcgetattr failed")
	}
	newTermios := originalTerminalConfig
	newTermios.Lflag &^= unix.ICANON | unix.ECHO
	if err := termios.Tcsetattr(fd, termios.TCSANOW, &newTermios); err != nil {
		// well, try to restore as it was if it errors
		termios.Tcsetattr(fd, termios.TCSANOW, &originalTerminalConfig)
		return nil, errors.Wrap(err, "Tcsetattr failed")
	}

	return func() error {
		return errors.Wrap(
			termios.Tcsetattr(fd, termios.TCSANOW, &originalTerminalConfig),
			"Tcsetattr failed",
		)
	}, nil
}
