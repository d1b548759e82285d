package vm

import (
	"context"
	goIO "io"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
)

func TestKeyQueueReadByte(t *testing.T) {
	q := NewKeyQueue(strings.NewReader("ab"))

	for _, want := range []byte("ab") {
		have, err := q.ReadByte(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if have != want {
			t.Errorf("want %q, have %q", want, have)
		}
	}
	if _, err := q.ReadByte(context.Background()); err != goIO.EOF {
		t.Errorf("want EOF, have %v", err)
	}
	if _, ok := q.Poll(); ok {
		t.Errorf("Poll on an exhausted queue reported a key")
	}
}

func TestKeyQueuePollDoesNotBlock(t *testing.T) {
	r, w := goIO.Pipe()
	defer w.Close()
	q := NewKeyQueue(r)

	done := make(chan bool)
	go func() {
		_, ok := q.Poll()
		done <- ok
	}()

	select {
	case ok := <-done:
		if ok {
			t.Errorf("Poll reported a key that was never typed")
		}
	case <-time.After(time.Second):
		t.Fatal("Poll blocked waiting for input")
	}

	go w.Write([]byte("k"))
	have, err := q.ReadByte(context.Background())
	if err != nil || have != 'k' {
		t.Errorf("want 'k', have %q (%v)", have, err)
	}
}

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

func TestKeyQueueReaderError(t *testing.T) {
	boom := errors.New("boom")
	q := NewKeyQueue(failingReader{boom})

	_, err := q.ReadByte(context.Background())
	if errors.Cause(err) != boom {
		t.Errorf("want %v, have %v", boom, err)
	}
}

func TestKeyQueueReadByteCancelled(t *testing.T) {
	r, w := goIO.Pipe()
	defer w.Close()
	q := NewKeyQueue(r)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := q.ReadByte(ctx); err != context.Canceled {
		t.Errorf("want %v, have %v", context.Canceled, err)
	}
}
