package runner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCappedBuffer(t *testing.T) {
	buf := newCappedBuffer(8)

	n, err := buf.Write([]byte("12345"))
	assert.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.False(t, buf.Truncated())

	// The write is accepted in full but only the remaining room is kept.
	n, err = buf.Write([]byte("67890"))
	assert.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.True(t, buf.Truncated())
	assert.Equal(t, "12345678", string(buf.Bytes()))

	// Further writes are swallowed.
	_, _ = buf.Write([]byte("x"))
	assert.Equal(t, "12345678", string(buf.Bytes()))
}
