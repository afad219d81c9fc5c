package render

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gonum.org/v1/gonum/spatial/r3"
)

// Binary STL: an 80 byte comment, a little endian uint32 triangle count and
// one 50 byte record per triangle.
const (
	stlHeaderSize = 84
	stlRecordSize = 50
)

const trianglesInBuffer = 1 << 10

var errEmptyModel = errors.New("empty triangle model")

// CreateSTL writes model to a binary STL file at path.
func CreateSTL(path string, model []Triangle3) error {
	if len(model) == 0 {
		return errEmptyModel
	}
	_, err := StreamSTL(path, &triangle3Buffer{buf: model})
	return err
}

// StreamSTL drains r into a binary STL file at path and returns the number of
// triangles written. The header count is written once r returns io.EOF.
func StreamSTL(path string, r TriangleReader) (n int, err error) {
	fp, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := fp.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err = fp.Seek(stlHeaderSize, io.SeekStart); err != nil {
		return 0, err
	}
	bw := bufio.NewWriterSize(fp, stlRecordSize*trianglesInBuffer)
	n, err = encodeTriangles(bw, r)
	if err != nil {
		return n, err
	}
	if err = bw.Flush(); err != nil {
		return n, err
	}
	if _, err = fp.Seek(0, io.SeekStart); err != nil {
		return n, err
	}
	return n, writeSTLHeader(fp, n)
}

// WriteSTL writes model to w in binary STL format.
func WriteSTL(w io.Writer, model []Triangle3) error {
	if len(model) == 0 {
		return errEmptyModel
	}
	if err := writeSTLHeader(w, len(model)); err != nil {
		return err
	}
	_, err := encodeTriangles(w, &triangle3Buffer{buf: model})
	return err
}

func writeSTLHeader(w io.Writer, n int) error {
	if uint64(n) > math.MaxUint32 {
		return fmt.Errorf("%d triangles overflow the STL count", n)
	}
	var hdr [stlHeaderSize]byte
	binary.LittleEndian.PutUint32(hdr[80:], uint32(n))
	_, err := w.Write(hdr[:])
	return err
}

// encodeTriangles writes an STL record for every triangle read from r.
func encodeTriangles(w io.Writer, r TriangleReader) (int, error) {
	tris := make([]Triangle3, trianglesInBuffer)
	rec := make([]byte, stlRecordSize*trianglesInBuffer)
	var total int
	for {
		n, err := r.ReadTriangles(tris)
		for i, t := range tris[:n] {
			putSTLRecord(rec[i*stlRecordSize:], t)
		}
		if n > 0 {
			if _, werr := w.Write(rec[:n*stlRecordSize]); werr != nil {
				return total, werr
			}
			total += n
		}
		switch {
		case errors.Is(err, io.EOF):
			return total, nil
		case err != nil:
			return total, err
		}
	}
}

// putSTLRecord encodes normal, 3 vertices and a zero attribute count.
func putSTLRecord(b []byte, t Triangle3) {
	_ = b[stlRecordSize-1]
	putVec32(b, t.Normal())
	putVec32(b[12:], t.V[0])
	putVec32(b[24:], t.V[1])
	putVec32(b[36:], t.V[2])
	binary.LittleEndian.PutUint16(b[48:], 0)
}

func putVec32(b []byte, v r3.Vec) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(float32(v.X)))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(float32(v.Y)))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(float32(v.Z)))
}
