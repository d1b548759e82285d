package vm

import (
	"encoding/binary"
	"fmt"
	goIO "io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DecodeImage splits a program image into its origin and program words.
// The image is a sequence of big-endian words, the first of which is the
// address the rest is loaded at.
func DecodeImage(file []byte) (origin Word, words []Word, err error) {
	if len(file) < 2 {
		return 0, nil, ErrImageTooShort
	}
	if len(file)%2 != 0 {
		return 0, nil, ErrImageTruncated
	}

	/* origin tells us where in memory to place the image */
	origin = Word(binary.BigEndian.Uint16(file))
	body := file[2:]
	if len(body) == 0 {
		return 0, nil, ErrImageEmpty
	}
	if int(origin)+len(body)/2 > MemorySize {
		return 0, nil, errors.Wrapf(ErrImageOverflow, "%d words at 0x%04x", len(body)/2, origin)
	}

	words = make([]Word, len(body)/2)
	for i := range words {
		words[i] = Word(binary.BigEndian.Uint16(body[2*i:]))
	}
	return origin, words, nil
}

// LoadImage reads a whole program image from r into memory. Memory is
// left untouched if the image is malformed.
func (vm *VM) LoadImage(r goIO.Reader) error {
	file, err := goIO.ReadAll(r)
	if err != nil {
		return errors.Wrap(err, "read image")
	}
	origin, words, err := DecodeImage(file)
	if err != nil {
		return errors.Wrap(err, "decode image")
	}
	vm.memory.Load(origin, words)
	vm.log.WithFields(logrus.Fields{
		"origin": fmt.Sprintf("0x%04x", origin),
		"words":  len(words),
	}).Debug("image loaded")
	return nil
}

// LoadFile loads the program image stored at path.
func (vm *VM) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "load image")
	}
	defer f.Close()
	return errors.Wrapf(vm.LoadImage(f), "load %s", path)
}
