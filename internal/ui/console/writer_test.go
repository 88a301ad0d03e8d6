package console

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := &Writer{Mutex: &sync.Mutex{}, Writer: &buf}
	n, err := w.Write([]byte("a\nb\n"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "a\nb\n", buf.String())

	buf.Reset()
	w.IsTTY = true
	n, err = w.Write([]byte("a\nb\n"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "a\x1b[0K\nb\x1b[0K\n", buf.String())
}
