package render

import "io"

// TriangleReader streams triangles. ReadTriangles returns io.EOF once
// no triangles remain.
type TriangleReader interface {
	ReadTriangles(t []Triangle3) (int, error)
}

// triangle3Buffer is a TriangleReader over an in-memory model.
type triangle3Buffer struct {
	buf []Triangle3
}

// ReadTriangles reads from this buffer.
func (b *triangle3Buffer) ReadTriangles(t []Triangle3) (int, error) {
	if len(b.buf) == 0 {
		return 0, io.EOF
	}
	n := copy(t, b.buf)
	b.buf = b.buf[n:]
	return n, nil
}

func (b *triangle3Buffer) Len() int { return len(b.buf) }
