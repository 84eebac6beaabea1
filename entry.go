package tiff

import "encoding/binary"

// Entry is an unresolved IFD tag entry: its type and count are known, but
// its value bytes may still be sitting inline in the 4-byte (classic) or
// 8-byte (BigTIFF) offset field, or may need to be dereferenced from a
// file offset stored there.
type Entry struct {
	Tag            Tag
	Type           Type
	Count          uint64
	RawOffsetBytes []byte // always 4 bytes classic, 8 bytes BigTIFF
}

// inlineCap is 4 for classic TIFF, 8 for BigTIFF.
func (e Entry) inlineCap() uint64 { return uint64(len(e.RawOffsetBytes)) }

// Value resolves the entry to its decoded Value, dereferencing an offset
// through reader when the value does not fit inline.
func (e Entry) Value(limits Limits, order binary.ByteOrder, reader *ByteOrderReader) (Value, error) {
	if e.Count == 0 {
		return ListValue(nil), nil
	}

	size := e.Type.Size()
	if size == 0 {
		return Value{}, errFormatTag(InvalidTagValueType, e.Tag)
	}

	valueBytes, overflow := mulOverflowU64(e.Count, size)
	if overflow {
		return Value{}, ErrLimitsExceeded
	}

	if e.Type == TypeASCII {
		return e.resolveASCII(valueBytes, limits, order, reader)
	}

	if valueBytes <= e.inlineCap() {
		return e.resolveInline(order)
	}

	if err := limits.checkIFDValueSize(valueBytes); err != nil {
		return Value{}, err
	}

	offset := e.offsetValue(order)
	reader.GotoOffset(offset)
	return e.resolveSequence(e.Type, int(e.Count), reader)
}

func (e Entry) offsetValue(order binary.ByteOrder) int64 {
	if len(e.RawOffsetBytes) == 8 {
		return int64(order.Uint64(e.RawOffsetBytes))
	}
	return int64(order.Uint32(e.RawOffsetBytes))
}

func (e Entry) resolveInline(order binary.ByteOrder) (Value, error) {
	br := NewByteOrderReader(&inlineReaderAt{buf: e.RawOffsetBytes}, order)
	return e.resolveSequence(e.Type, int(e.Count), br)
}

func (e Entry) resolveASCII(valueBytes uint64, limits Limits, order binary.ByteOrder, reader *ByteOrderReader) (Value, error) {
	if valueBytes <= e.inlineCap() {
		buf := e.RawOffsetBytes[:e.Count]
		return AsciiValue(trimASCII(buf)), nil
	}
	if err := limits.checkIFDValueSize(valueBytes); err != nil {
		return Value{}, err
	}
	offset := e.offsetValue(order)
	reader.GotoOffset(offset)
	buf := make([]byte, e.Count)
	if err := reader.ReadExact(buf); err != nil {
		return Value{}, err
	}
	return AsciiValue(trimASCII(buf)), nil
}

func trimASCII(buf []byte) string {
	for i, b := range buf {
		if b == 0 {
			return string(buf[:i])
		}
	}
	return string(buf)
}

// resolveSequence reads count scalar values of type t sequentially from br,
// returning a bare scalar for count==1 and a List otherwise.
func (e Entry) resolveSequence(t Type, count int, br *ByteOrderReader) (Value, error) {
	values := make([]Value, count)
	for i := 0; i < count; i++ {
		v, err := readScalar(t, br)
		if err != nil {
			return Value{}, err
		}
		values[i] = v
	}
	if count == 1 {
		return values[0], nil
	}
	return ListValue(values), nil
}

func readScalar(t Type, br *ByteOrderReader) (Value, error) {
	switch t {
	case TypeByte:
		v, err := br.ReadU8()
		return ByteValue(v), err
	case TypeSByte:
		v, err := br.ReadI8()
		return SByteValue(v), err
	case TypeUndefined:
		v, err := br.ReadU8()
		return UndefinedValue(v), err
	case TypeShort:
		v, err := br.ReadU16()
		return ShortValue(v), err
	case TypeSShort:
		v, err := br.ReadI16()
		return SShortValue(v), err
	case TypeLong:
		v, err := br.ReadU32()
		return LongValue(v), err
	case TypeSLong:
		v, err := br.ReadI32()
		return SLongValue(v), err
	case TypeFloat:
		v, err := br.ReadF32()
		return FloatValue(v), err
	case TypeDouble:
		v, err := br.ReadF64()
		return DoubleValue(v), err
	case TypeLong8:
		v, err := br.ReadU64()
		return Long8Value(v), err
	case TypeSLong8:
		v, err := br.ReadI64()
		return SLong8Value(v), err
	case TypeIFD:
		v, err := br.ReadU32()
		return IfdValue(v), err
	case TypeIFD8:
		v, err := br.ReadU64()
		return IfdBigValue(v), err
	case TypeRational:
		num, err := br.ReadU32()
		if err != nil {
			return Value{}, err
		}
		den, err := br.ReadU32()
		return RationalValue(num, den), err
	case TypeSRational:
		num, err := br.ReadI32()
		if err != nil {
			return Value{}, err
		}
		den, err := br.ReadI32()
		return SRationalValue(num, den), err
	default:
		return Value{}, errFormat(InvalidTag)
	}
}

func mulOverflowU64(a, b uint64) (uint64, bool) {
	if a == 0 || b == 0 {
		return 0, false
	}
	p := a * b
	return p, p/a != b
}

// inlineReaderAt adapts a fixed inline value buffer to io.ReaderAt so the
// same ByteOrderReader machinery can decode inline and dereferenced
// values identically.
type inlineReaderAt struct{ buf []byte }

func (r *inlineReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || int(off) > len(r.buf) {
		return 0, errFormat(InvalidTag)
	}
	n := copy(p, r.buf[off:])
	if n < len(p) {
		return n, errFormat(InvalidTag)
	}
	return n, nil
}
