package platform

import "sync"

const copyBufSize = 1 << 20

var bufPool = sync.Pool{
	New: func() any {
		b := make([]byte, copyBufSize)
		return &b
	},
}
