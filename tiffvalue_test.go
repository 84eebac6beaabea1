package tiff

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodedValueShortsLittleEndian(t *testing.T) {
	v := Shorts(1, 0x0102)
	assert.Equal(t, TypeShort, v.Type())
	assert.Equal(t, uint64(2), v.Count())
	assert.Equal(t, []byte{0x01, 0x00, 0x02, 0x01}, v.Encode(binary.LittleEndian))
}

func TestEncodedValueFloatsRoundTripBitsForBits(t *testing.T) {
	v := Floats(1.5, -2.25)
	buf := v.Encode(binary.BigEndian)
	require.Len(t, buf, 8)
	assert.Equal(t, float32(1.5), math.Float32frombits(binary.BigEndian.Uint32(buf[0:4])))
	assert.Equal(t, float32(-2.25), math.Float32frombits(binary.BigEndian.Uint32(buf[4:8])))
}

func TestEncodedValueRationalsLayout(t *testing.T) {
	v := Rationals(Rational{Num: 1, Den: 3}, Rational{Num: 7, Den: 11})
	buf := v.Encode(binary.BigEndian)
	require.Len(t, buf, 16)
	assert.Equal(t, uint32(1), binary.BigEndian.Uint32(buf[0:4]))
	assert.Equal(t, uint32(3), binary.BigEndian.Uint32(buf[4:8]))
	assert.Equal(t, uint32(7), binary.BigEndian.Uint32(buf[8:12]))
	assert.Equal(t, uint32(11), binary.BigEndian.Uint32(buf[12:16]))
}

func TestEncodedValueASCIINulTerminated(t *testing.T) {
	v := ASCII("hey")
	assert.Equal(t, uint64(4), v.Count())
	assert.Equal(t, []byte{'h', 'e', 'y', 0}, v.Encode(binary.LittleEndian))
}
