package tiff

import "math/big"

// ValueKind discriminates the variant held by a Value.
type ValueKind int

// Value variants, one per on-disk Type plus the aggregate List kind.
const (
	KindByte ValueKind = iota
	KindSByte
	KindShort
	KindSShort
	KindLong
	KindSLong
	KindLong8
	KindSLong8
	KindFloat
	KindDouble
	KindRational
	KindSRational
	KindRationalBig
	KindSRationalBig
	KindAscii
	KindIfd
	KindIfdBig
	KindUndefined
	KindList
)

// Value is a tagged union over every TIFF field type, mirroring the wire
// representation closely enough that no information is lost converting a
// raw entry into one. Scalars are held directly; List holds the resolved
// elements of a multi-valued entry.
type Value struct {
	Kind ValueKind

	u   uint64
	i   int64
	f   float64
	num uint64
	den uint64
	ns  int64
	ds  int64
	s   string
	lst []Value
}

func ByteValue(v uint8) Value        { return Value{Kind: KindByte, u: uint64(v)} }
func SByteValue(v int8) Value        { return Value{Kind: KindSByte, i: int64(v)} }
func ShortValue(v uint16) Value      { return Value{Kind: KindShort, u: uint64(v)} }
func SShortValue(v int16) Value      { return Value{Kind: KindSShort, i: int64(v)} }
func LongValue(v uint32) Value       { return Value{Kind: KindLong, u: uint64(v)} }
func SLongValue(v int32) Value       { return Value{Kind: KindSLong, i: int64(v)} }
func Long8Value(v uint64) Value      { return Value{Kind: KindLong8, u: v} }
func SLong8Value(v int64) Value      { return Value{Kind: KindSLong8, i: v} }
func FloatValue(v float32) Value     { return Value{Kind: KindFloat, f: float64(v)} }
func DoubleValue(v float64) Value    { return Value{Kind: KindDouble, f: v} }
func IfdValue(v uint32) Value        { return Value{Kind: KindIfd, u: uint64(v)} }
func IfdBigValue(v uint64) Value     { return Value{Kind: KindIfdBig, u: v} }
func UndefinedValue(v uint8) Value   { return Value{Kind: KindUndefined, u: uint64(v)} }
func AsciiValue(v string) Value      { return Value{Kind: KindAscii, s: v} }
func ListValue(v []Value) Value      { return Value{Kind: KindList, lst: v} }

func RationalValue(num, den uint32) Value {
	return Value{Kind: KindRational, num: uint64(num), den: uint64(den)}
}

func SRationalValue(num, den int32) Value {
	return Value{Kind: KindSRational, ns: int64(num), ds: int64(den)}
}

func RationalBigValue(num, den uint64) Value {
	return Value{Kind: KindRationalBig, num: num, den: den}
}

func SRationalBigValue(num, den int64) Value {
	return Value{Kind: KindSRationalBig, ns: num, ds: den}
}

// List returns the elements of a List value, or a single-element slice
// wrapping any scalar value (a scalar is a degenerate list of one).
func (v Value) List() []Value {
	if v.Kind == KindList {
		return v.lst
	}
	return []Value{v}
}

// First returns the first element if v is a non-empty List, or v itself
// if v is a scalar. It errors on an empty list.
func (v Value) First() (Value, error) {
	if v.Kind != KindList {
		return v, nil
	}
	if len(v.lst) == 0 {
		return Value{}, errFormat(InvalidTagValueType)
	}
	return v.lst[0], nil
}

// IntoU64 coerces v to an unsigned 64-bit integer, erroring if the
// variant cannot be represented without loss (a negative signed value,
// a non-integral rational, or a non-scalar list of more than one value).
func (v Value) IntoU64() (uint64, error) {
	switch v.Kind {
	case KindByte, KindShort, KindLong, KindLong8, KindIfd, KindIfdBig, KindUndefined:
		return v.u, nil
	case KindSByte, KindSShort, KindSLong, KindSLong8:
		if v.i < 0 {
			return 0, errFormat(InvalidTagValueType)
		}
		return uint64(v.i), nil
	case KindRational, KindRationalBig:
		if v.den == 0 || v.num%v.den != 0 {
			return 0, errFormat(InvalidTagValueType)
		}
		return v.num / v.den, nil
	case KindFloat, KindDouble:
		if v.f < 0 || v.f != float64(uint64(v.f)) {
			return 0, errFormat(InvalidTagValueType)
		}
		return uint64(v.f), nil
	case KindList:
		if len(v.lst) > 1 {
			return 0, errFormat(InvalidTagValueType)
		}
		first, err := v.First()
		if err != nil {
			return 0, err
		}
		return first.IntoU64()
	default:
		return 0, errFormat(InvalidTagValueType)
	}
}

// IntoU32 coerces v to an unsigned 32-bit integer, erroring if the value
// does not fit.
func (v Value) IntoU32() (uint32, error) {
	u, err := v.IntoU64()
	if err != nil {
		return 0, err
	}
	if u > 0xFFFFFFFF {
		return 0, &IntSizeError{}
	}
	return uint32(u), nil
}

// IntoU16 coerces v to an unsigned 16-bit integer, erroring if the value
// does not fit.
func (v Value) IntoU16() (uint16, error) {
	u, err := v.IntoU64()
	if err != nil {
		return 0, err
	}
	if u > 0xFFFF {
		return 0, &IntSizeError{}
	}
	return uint16(u), nil
}

// IntoI64 coerces v to a signed 64-bit integer.
func (v Value) IntoI64() (int64, error) {
	switch v.Kind {
	case KindSByte, KindSShort, KindSLong, KindSLong8:
		return v.i, nil
	case KindByte, KindShort, KindLong, KindLong8, KindIfd, KindIfdBig, KindUndefined:
		if v.u > 1<<63-1 {
			return 0, &IntSizeError{}
		}
		return int64(v.u), nil
	case KindSRational, KindSRationalBig:
		if v.ds == 0 || v.ns%v.ds != 0 {
			return 0, errFormat(InvalidTagValueType)
		}
		return v.ns / v.ds, nil
	case KindList:
		first, err := v.First()
		if err != nil {
			return 0, err
		}
		return first.IntoI64()
	default:
		return 0, errFormat(InvalidTagValueType)
	}
}

// IntoF64 coerces v to a double, always succeeding for numeric kinds
// (accepting precision loss widening integers, which matches how the
// format itself treats numeric tag values).
func (v Value) IntoF64() (float64, error) {
	switch v.Kind {
	case KindFloat, KindDouble:
		return v.f, nil
	case KindRational:
		return float64(v.num) / float64(v.den), nil
	case KindSRational:
		return float64(v.ns) / float64(v.ds), nil
	case KindRationalBig:
		r := new(big.Rat).SetFrac(new(big.Int).SetUint64(v.num), new(big.Int).SetUint64(v.den))
		f, _ := r.Float64()
		return f, nil
	case KindSRationalBig:
		r := new(big.Rat).SetFrac64(v.ns, v.ds)
		f, _ := r.Float64()
		return f, nil
	case KindByte, KindShort, KindLong, KindLong8, KindIfd, KindIfdBig, KindUndefined:
		return float64(v.u), nil
	case KindSByte, KindSShort, KindSLong, KindSLong8:
		return float64(v.i), nil
	case KindList:
		first, err := v.First()
		if err != nil {
			return 0, err
		}
		return first.IntoF64()
	default:
		return 0, errFormat(InvalidTagValueType)
	}
}

// IntoString returns the string held by an Ascii value, trimmed of its
// trailing NUL terminator and anything after it.
func (v Value) IntoString() (string, error) {
	if v.Kind != KindAscii {
		return "", errFormat(InvalidTagValueType)
	}
	return v.s, nil
}

// RationalParts returns the raw numerator/denominator of an unsigned
// rational value without reducing or converting it, for callers (such
// as metadata copying) that need to re-serialize the exact original
// fraction rather than its quotient.
func (v Value) RationalParts() (num, den uint32, ok bool) {
	if v.Kind != KindRational {
		return 0, 0, false
	}
	return uint32(v.num), uint32(v.den), true
}

// SRationalParts is RationalParts for a signed rational value.
func (v Value) SRationalParts() (num, den int32, ok bool) {
	if v.Kind != KindSRational {
		return 0, 0, false
	}
	return int32(v.ns), int32(v.ds), true
}

// IntoU64Slice coerces every element of v (scalar or list) to uint64.
func (v Value) IntoU64Slice() ([]uint64, error) {
	elems := v.List()
	out := make([]uint64, len(elems))
	for i, e := range elems {
		u, err := e.IntoU64()
		if err != nil {
			return nil, err
		}
		out[i] = u
	}
	return out, nil
}

// IntoU32Slice coerces every element of v (scalar or list) to uint32.
func (v Value) IntoU32Slice() ([]uint32, error) {
	elems := v.List()
	out := make([]uint32, len(elems))
	for i, e := range elems {
		u, err := e.IntoU32()
		if err != nil {
			return nil, err
		}
		out[i] = u
	}
	return out, nil
}
