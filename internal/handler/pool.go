package handler

import (
	"bytes"
	"sync"
)

// Response buffers start large enough for a session snapshot. Buffers grown
// past maxPooledResponseSize by a long session list are left to the GC.
const (
	responseBufferSize    = 1 << 10
	maxPooledResponseSize = 64 << 10
)

var responseBuffers = sync.Pool{
	New: func() any {
		return bytes.NewBuffer(make([]byte, 0, responseBufferSize))
	},
}

func getBuffer() *bytes.Buffer {
	return responseBuffers.Get().(*bytes.Buffer)
}

func putBuffer(buf *bytes.Buffer) {
	if buf.Cap() > maxPooledResponseSize {
		return
	}
	buf.Reset()
	responseBuffers.Put(buf)
}
