package tiff

import (
	"encoding/binary"
	"math"
)

// EncodedValue is a typed tag payload ready for serialization: it knows
// its own on-disk field type, its element count, and how to render
// itself as raw bytes in a given byte order. DirectoryEncoder.WriteTag
// accepts any EncodedValue, mirroring how the reader side accepts any
// on-disk Type through Entry.Value.
type EncodedValue interface {
	Type() Type
	Count() uint64
	Encode(order binary.ByteOrder) []byte
}

// Rational is a TIFF unsigned rational (numerator over denominator).
type Rational struct{ Num, Den uint32 }

// SRational is a TIFF signed rational.
type SRational struct{ Num, Den int32 }

type byteValues []uint8

func (v byteValues) Type() Type                        { return TypeByte }
func (v byteValues) Count() uint64                      { return uint64(len(v)) }
func (v byteValues) Encode(binary.ByteOrder) []byte     { return append([]byte(nil), v...) }

// Bytes wraps a sequence of BYTE-typed samples.
func Bytes(v ...uint8) EncodedValue { return byteValues(v) }

type sbyteValues []int8

func (v sbyteValues) Type() Type                    { return TypeSByte }
func (v sbyteValues) Count() uint64                  { return uint64(len(v)) }
func (v sbyteValues) Encode(binary.ByteOrder) []byte {
	buf := make([]byte, len(v))
	for i, x := range v {
		buf[i] = byte(x)
	}
	return buf
}

// SBytes wraps a sequence of SBYTE-typed samples.
func SBytes(v ...int8) EncodedValue { return sbyteValues(v) }

type undefinedValues []byte

func (v undefinedValues) Type() Type                    { return TypeUndefined }
func (v undefinedValues) Count() uint64                  { return uint64(len(v)) }
func (v undefinedValues) Encode(binary.ByteOrder) []byte { return append([]byte(nil), v...) }

// Undefined wraps raw UNDEFINED-typed bytes (e.g. JPEGTables).
func Undefined(v []byte) EncodedValue { return undefinedValues(v) }

type shortValues []uint16

func (v shortValues) Type() Type       { return TypeShort }
func (v shortValues) Count() uint64     { return uint64(len(v)) }
func (v shortValues) Encode(order binary.ByteOrder) []byte {
	buf := make([]byte, len(v)*2)
	for i, x := range v {
		order.PutUint16(buf[i*2:], x)
	}
	return buf
}

// Shorts wraps a sequence of SHORT-typed samples.
func Shorts(v ...uint16) EncodedValue { return shortValues(v) }

type sshortValues []int16

func (v sshortValues) Type() Type   { return TypeSShort }
func (v sshortValues) Count() uint64 { return uint64(len(v)) }
func (v sshortValues) Encode(order binary.ByteOrder) []byte {
	buf := make([]byte, len(v)*2)
	for i, x := range v {
		order.PutUint16(buf[i*2:], uint16(x))
	}
	return buf
}

// SShorts wraps a sequence of SSHORT-typed samples.
func SShorts(v ...int16) EncodedValue { return sshortValues(v) }

type longValues []uint32

func (v longValues) Type() Type   { return TypeLong }
func (v longValues) Count() uint64 { return uint64(len(v)) }
func (v longValues) Encode(order binary.ByteOrder) []byte {
	buf := make([]byte, len(v)*4)
	for i, x := range v {
		order.PutUint32(buf[i*4:], x)
	}
	return buf
}

// Longs wraps a sequence of LONG-typed samples.
func Longs(v ...uint32) EncodedValue { return longValues(v) }

type slongValues []int32

func (v slongValues) Type() Type   { return TypeSLong }
func (v slongValues) Count() uint64 { return uint64(len(v)) }
func (v slongValues) Encode(order binary.ByteOrder) []byte {
	buf := make([]byte, len(v)*4)
	for i, x := range v {
		order.PutUint32(buf[i*4:], uint32(x))
	}
	return buf
}

// SLongs wraps a sequence of SLONG-typed samples.
func SLongs(v ...int32) EncodedValue { return slongValues(v) }

type long8Values []uint64

func (v long8Values) Type() Type   { return TypeLong8 }
func (v long8Values) Count() uint64 { return uint64(len(v)) }
func (v long8Values) Encode(order binary.ByteOrder) []byte {
	buf := make([]byte, len(v)*8)
	for i, x := range v {
		order.PutUint64(buf[i*8:], x)
	}
	return buf
}

// Long8s wraps a sequence of LONG8-typed samples (BigTIFF).
func Long8s(v ...uint64) EncodedValue { return long8Values(v) }

type slong8Values []int64

func (v slong8Values) Type() Type   { return TypeSLong8 }
func (v slong8Values) Count() uint64 { return uint64(len(v)) }
func (v slong8Values) Encode(order binary.ByteOrder) []byte {
	buf := make([]byte, len(v)*8)
	for i, x := range v {
		order.PutUint64(buf[i*8:], uint64(x))
	}
	return buf
}

// SLong8s wraps a sequence of SLONG8-typed samples (BigTIFF).
func SLong8s(v ...int64) EncodedValue { return slong8Values(v) }

type floatValues []float32

func (v floatValues) Type() Type   { return TypeFloat }
func (v floatValues) Count() uint64 { return uint64(len(v)) }
func (v floatValues) Encode(order binary.ByteOrder) []byte {
	buf := make([]byte, len(v)*4)
	for i, x := range v {
		order.PutUint32(buf[i*4:], math.Float32bits(x))
	}
	return buf
}

// Floats wraps a sequence of FLOAT-typed samples.
func Floats(v ...float32) EncodedValue { return floatValues(v) }

type doubleValues []float64

func (v doubleValues) Type() Type   { return TypeDouble }
func (v doubleValues) Count() uint64 { return uint64(len(v)) }
func (v doubleValues) Encode(order binary.ByteOrder) []byte {
	buf := make([]byte, len(v)*8)
	for i, x := range v {
		order.PutUint64(buf[i*8:], math.Float64bits(x))
	}
	return buf
}

// Doubles wraps a sequence of DOUBLE-typed samples.
func Doubles(v ...float64) EncodedValue { return doubleValues(v) }

type ifdValues []uint32

func (v ifdValues) Type() Type   { return TypeIFD }
func (v ifdValues) Count() uint64 { return uint64(len(v)) }
func (v ifdValues) Encode(order binary.ByteOrder) []byte {
	buf := make([]byte, len(v)*4)
	for i, x := range v {
		order.PutUint32(buf[i*4:], x)
	}
	return buf
}

// IFDs wraps a sequence of IFD-typed pointer values.
func IFDs(v ...uint32) EncodedValue { return ifdValues(v) }

type ifd8Values []uint64

func (v ifd8Values) Type() Type   { return TypeIFD8 }
func (v ifd8Values) Count() uint64 { return uint64(len(v)) }
func (v ifd8Values) Encode(order binary.ByteOrder) []byte {
	buf := make([]byte, len(v)*8)
	for i, x := range v {
		order.PutUint64(buf[i*8:], x)
	}
	return buf
}

// IFD8s wraps a sequence of IFD8-typed pointer values (BigTIFF).
func IFD8s(v ...uint64) EncodedValue { return ifd8Values(v) }

type rationalValues []Rational

func (v rationalValues) Type() Type   { return TypeRational }
func (v rationalValues) Count() uint64 { return uint64(len(v)) }
func (v rationalValues) Encode(order binary.ByteOrder) []byte {
	buf := make([]byte, len(v)*8)
	for i, r := range v {
		order.PutUint32(buf[i*8:], r.Num)
		order.PutUint32(buf[i*8+4:], r.Den)
	}
	return buf
}

// Rationals wraps a sequence of RATIONAL-typed samples.
func Rationals(v ...Rational) EncodedValue { return rationalValues(v) }

// OneRational is the common case of a single RATIONAL value.
func OneRational(num, den uint32) EncodedValue { return rationalValues{{Num: num, Den: den}} }

type srationalValues []SRational

func (v srationalValues) Type() Type   { return TypeSRational }
func (v srationalValues) Count() uint64 { return uint64(len(v)) }
func (v srationalValues) Encode(order binary.ByteOrder) []byte {
	buf := make([]byte, len(v)*8)
	for i, r := range v {
		order.PutUint32(buf[i*8:], uint32(r.Num))
		order.PutUint32(buf[i*8+4:], uint32(r.Den))
	}
	return buf
}

// SRationals wraps a sequence of SRATIONAL-typed samples.
func SRationals(v ...SRational) EncodedValue { return srationalValues(v) }

type asciiValue string

func (v asciiValue) Type() Type   { return TypeASCII }
func (v asciiValue) Count() uint64 { return uint64(len(v)) + 1 }
func (v asciiValue) Encode(binary.ByteOrder) []byte {
	buf := make([]byte, len(v)+1)
	copy(buf, v)
	return buf
}

// ASCII wraps a Go string as a NUL-terminated TIFF ASCII value.
func ASCII(s string) EncodedValue { return asciiValue(s) }
