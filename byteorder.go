package tiff

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/pkg/errors"
)

// ByteOrderReader reads typed values at absolute offsets from a seekable
// source, using a fixed endianness determined by the file header.
type ByteOrderReader struct {
	r     io.ReaderAt
	order binary.ByteOrder
	pos   int64
}

// NewByteOrderReader wraps r, reading multi-byte values with order.
func NewByteOrderReader(r io.ReaderAt, order binary.ByteOrder) *ByteOrderReader {
	return &ByteOrderReader{r: r, order: order}
}

// Order reports the endianness this reader was constructed with.
func (b *ByteOrderReader) Order() binary.ByteOrder { return b.order }

// Pos reports the current logical read position.
func (b *ByteOrderReader) Pos() int64 { return b.pos }

// GotoOffset seeks to an absolute offset. The next read starts there.
func (b *ByteOrderReader) GotoOffset(offset int64) {
	b.pos = offset
}

// ReadExact fills buf entirely starting at the current position, or
// returns an error wrapping the underlying I/O failure.
func (b *ByteOrderReader) ReadExact(buf []byte) error {
	n, err := b.r.ReadAt(buf, b.pos)
	b.pos += int64(n)
	if err != nil {
		return errors.Wrap(err, "tiff: short read")
	}
	return nil
}

func (b *ByteOrderReader) read(n int) ([]byte, error) {
	buf := make([]byte, n)
	if err := b.ReadExact(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ReadU8 reads an unsigned 8-bit value.
func (b *ByteOrderReader) ReadU8() (uint8, error) {
	buf, err := b.read(1)
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}

// ReadI8 reads a signed 8-bit value.
func (b *ByteOrderReader) ReadI8() (int8, error) {
	v, err := b.ReadU8()
	return int8(v), err
}

// ReadU16 reads an unsigned 16-bit value.
func (b *ByteOrderReader) ReadU16() (uint16, error) {
	buf, err := b.read(2)
	if err != nil {
		return 0, err
	}
	return b.order.Uint16(buf), nil
}

// ReadI16 reads a signed 16-bit value.
func (b *ByteOrderReader) ReadI16() (int16, error) {
	v, err := b.ReadU16()
	return int16(v), err
}

// ReadU32 reads an unsigned 32-bit value.
func (b *ByteOrderReader) ReadU32() (uint32, error) {
	buf, err := b.read(4)
	if err != nil {
		return 0, err
	}
	return b.order.Uint32(buf), nil
}

// ReadI32 reads a signed 32-bit value.
func (b *ByteOrderReader) ReadI32() (int32, error) {
	v, err := b.ReadU32()
	return int32(v), err
}

// ReadU64 reads an unsigned 64-bit value.
func (b *ByteOrderReader) ReadU64() (uint64, error) {
	buf, err := b.read(8)
	if err != nil {
		return 0, err
	}
	return b.order.Uint64(buf), nil
}

// ReadI64 reads a signed 64-bit value.
func (b *ByteOrderReader) ReadI64() (int64, error) {
	v, err := b.ReadU64()
	return int64(v), err
}

// ReadF32 reads an IEEE-754 single-precision value.
func (b *ByteOrderReader) ReadF32() (float32, error) {
	v, err := b.ReadU32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// ReadF64 reads an IEEE-754 double-precision value.
func (b *ByteOrderReader) ReadF64() (float64, error) {
	v, err := b.ReadU64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// ByteOrderWriter writes typed values sequentially to a seekable
// destination, using a fixed endianness and supporting out-of-order
// patching for deferred offset fields.
type ByteOrderWriter struct {
	w     io.WriterAt
	order binary.ByteOrder
	pos   int64
}

// NewByteOrderWriter wraps w, writing multi-byte values with order.
func NewByteOrderWriter(w io.WriterAt, order binary.ByteOrder) *ByteOrderWriter {
	return &ByteOrderWriter{w: w, order: order}
}

// Order reports the endianness this writer was constructed with.
func (b *ByteOrderWriter) Order() binary.ByteOrder { return b.order }

// Pos reports the current logical write position (i.e. how many bytes
// have been written so far through sequential Write* calls).
func (b *ByteOrderWriter) Pos() int64 { return b.pos }

// GotoOffset repositions the writer for a patch write; the next Write*
// call lands at offset instead of continuing sequentially.
func (b *ByteOrderWriter) GotoOffset(offset int64) {
	b.pos = offset
}

func (b *ByteOrderWriter) write(buf []byte) error {
	n, err := b.w.WriteAt(buf, b.pos)
	b.pos += int64(n)
	if err != nil {
		return errors.Wrap(err, "tiff: short write")
	}
	return nil
}

// WriteU8 writes an unsigned 8-bit value.
func (b *ByteOrderWriter) WriteU8(v uint8) error { return b.write([]byte{v}) }

// WriteU16 writes an unsigned 16-bit value.
func (b *ByteOrderWriter) WriteU16(v uint16) error {
	buf := make([]byte, 2)
	b.order.PutUint16(buf, v)
	return b.write(buf)
}

// WriteU32 writes an unsigned 32-bit value.
func (b *ByteOrderWriter) WriteU32(v uint32) error {
	buf := make([]byte, 4)
	b.order.PutUint32(buf, v)
	return b.write(buf)
}

// WriteU64 writes an unsigned 64-bit value.
func (b *ByteOrderWriter) WriteU64(v uint64) error {
	buf := make([]byte, 8)
	b.order.PutUint64(buf, v)
	return b.write(buf)
}

// WriteF32 writes an IEEE-754 single-precision value.
func (b *ByteOrderWriter) WriteF32(v float32) error {
	return b.WriteU32(math.Float32bits(v))
}

// WriteF64 writes an IEEE-754 double-precision value.
func (b *ByteOrderWriter) WriteF64(v float64) error {
	return b.WriteU64(math.Float64bits(v))
}

// WriteBytes writes a raw byte slice at the current position.
func (b *ByteOrderWriter) WriteBytes(buf []byte) error { return b.write(buf) }
