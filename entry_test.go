package tiff

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEntryInlineFitBoundaryClassicVsBigTIFF(t *testing.T) {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint32(buf[0:4], 3)
	binary.LittleEndian.PutUint32(buf[4:8], 7)

	classic := Entry{Tag: TagXResolution, Type: TypeRational, Count: 1, RawOffsetBytes: buf[:4]}
	_, err := classic.Value(DefaultLimits(), binary.LittleEndian, NewByteOrderReader(&inlineReaderAt{buf: nil}, binary.LittleEndian))
	require.Error(t, err, "a classic-TIFF RATIONAL must be dereferenced through an offset, and there is no data behind it")

	big := Entry{Tag: TagXResolution, Type: TypeRational, Count: 1, RawOffsetBytes: buf}
	v, err := big.Value(DefaultLimits(), binary.LittleEndian, NewByteOrderReader(&inlineReaderAt{buf: nil}, binary.LittleEndian))
	require.NoError(t, err, "a BigTIFF RATIONAL (8 bytes) fits inline in the 8-byte slot and needs no dereference")
	num, den, ok := v.RationalParts()
	require.True(t, ok)
	require.Equal(t, uint32(3), num)
	require.Equal(t, uint32(7), den)
}
