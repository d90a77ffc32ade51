package repository

import (
	"bytes"
	"errors"
	"io"
)

// reverseLineReader splits the byte range [0, size) of r into lines,
// returning them from last to first.
type reverseLineReader struct {
	r      io.ReaderAt
	offset int64 // bytes in [0, offset) have not been read yet
	block  int
	buf    []byte // unconsumed bytes starting at offset
	done   bool
}

func newReverseLineReader(r io.ReaderAt, size int64, block int) *reverseLineReader {
	if block <= 0 {
		block = defaultBlockSize
	}
	return &reverseLineReader{r: r, offset: size, block: block}
}

// next returns the previous line. ok is false once the start of the range
// has been passed.
func (rr *reverseLineReader) next() (string, bool, error) {
	for {
		if rr.done {
			return "", false, nil
		}
		if i := bytes.LastIndexByte(rr.buf, '\n'); i >= 0 {
			line := string(rr.buf[i+1:])
			rr.buf = rr.buf[:i]
			return line, true, nil
		}
		if rr.offset == 0 {
			rr.done = true
			return string(rr.buf), true, nil
		}

		n := int64(rr.block)
		if n > rr.offset {
			n = rr.offset
		}
		rr.offset -= n

		chunk := make([]byte, int(n)+len(rr.buf))
		read, err := rr.r.ReadAt(chunk[:n], rr.offset)
		if err != nil && !(errors.Is(err, io.EOF) && int64(read) == n) {
			return "", false, err
		}
		copy(chunk[n:], rr.buf)
		rr.buf = chunk
	}
}
