package handler

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResponseBuffers_ReturnEmpty(t *testing.T) {
	buf := getBuffer()
	buf.WriteString(`{"session_id":"s-1"}`)
	putBuffer(buf)

	next := getBuffer()
	defer putBuffer(next)
	assert.Zero(t, next.Len())
}

func TestResponseBuffers_DropOversized(t *testing.T) {
	big := bytes.NewBuffer(make([]byte, 0, maxPooledResponseSize+1))
	big.WriteString("sessions")
	putBuffer(big)

	assert.Equal(t, "sessions", big.String(), "oversized buffer is not reset or pooled")
}
