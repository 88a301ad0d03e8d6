// Package console holds the writers rxtk prints through.
package console

import (
	"bytes"
	"io"
	"os"
	"sync"
)

// Writer syncs writes with a mutex and, if the output is a TTY, clears
// the rest of the line on every newline.
type Writer struct {
	RawOut *os.File
	Mutex  *sync.Mutex
	Writer io.Writer
	IsTTY  bool
}

// Write writes the provided data, clearing the rest of each line when the
// output is a TTY.
func (w *Writer) Write(p []byte) (n int, err error) {
	origLen := len(p)
	if w.IsTTY {
		p = bytes.ReplaceAll(p, []byte{'\n'}, []byte{'\x1b', '[', '0', 'K', '\n'})
	}

	w.Mutex.Lock()
	n, err = w.Writer.Write(p)
	w.Mutex.Unlock()

	if err != nil && n < origLen {
		return n, err
	}
	return origLen, err
}
