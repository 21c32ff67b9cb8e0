package util

import "sync"

// RecvBufSize is the bounded read size for a single socket receive.
// Small enough that one dispatch never hogs the loop, large enough for
// any interactive burst.
const RecvBufSize = 4 * 1024

// BufPool provides reusable receive buffers, reducing GC pressure on
// the read pump which allocates once per wire chunk otherwise.
var BufPool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, RecvBufSize)
		return &buf
	},
}

// GetBuf retrieves a buffer from the pool.  Callers must return it
// with [PutBuf] when finished.
func GetBuf() *[]byte {
	return BufPool.Get().(*[]byte)
}

// PutBuf returns a buffer to the pool for reuse.
func PutBuf(buf *[]byte) {
	if buf == nil {
		return
	}
	BufPool.Put(buf)
}
