package tiff

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildSourceWithExif(t *testing.T) *growingBuffer {
	t.Helper()
	dst := &growingBuffer{}
	enc, pointerPos, err := NewEncoder(dst, binary.LittleEndian, false)
	require.NoError(t, err)

	dir := enc.NewDirectory(pointerPos)
	imgEnc, err := NewImageEncoder(dir, binary.LittleEndian, ImageSpec{
		Width:         1,
		Height:        1,
		BitsPerSample: []uint16{8},
		Photometric:   PhotometricBlackIsZero,
		Compression:   CompressionNone,
	})
	require.NoError(t, err)
	require.NoError(t, imgEnc.WriteStrip([]byte{0x00}))

	dir.WriteTag(TagMake, ASCII("Acme"))
	dir.WriteTag(TagSoftware, ASCII("tiffcore"))

	dir.SubdirectoryStart()
	dir.WriteTag(TagExifVersion, Undefined([]byte("0231")))
	dir.WriteTag(TagISO, Shorts(200))
	subOffset, err := dir.SubdirectoryClose()
	require.NoError(t, err)
	dir.WriteTag(TagExifIFD, IFDs(uint32(subOffset)))

	require.NoError(t, dir.Finish())
	return dst
}

func TestCopyMetadataCopiesValueTagsAndSkipsSampleLayout(t *testing.T) {
	src := buildSourceWithExif(t)
	srcDecoder, err := NewDecoder(src)
	require.NoError(t, err)

	dst := &growingBuffer{}
	enc, pointerPos, err := NewEncoder(dst, binary.LittleEndian, false)
	require.NoError(t, err)
	dir := enc.NewDirectory(pointerPos)

	// The destination's own layout; CopyMetadata must not clobber these
	// with the source's sample-layout tags.
	_, err = NewImageEncoder(dir, binary.LittleEndian, ImageSpec{
		Width:         2,
		Height:        2,
		BitsPerSample: []uint16{8},
		Photometric:   PhotometricBlackIsZero,
		Compression:   CompressionNone,
	})
	require.NoError(t, err)

	require.NoError(t, CopyMetadata(dir, srcDecoder, MetadataCopyPolicy{
		TargetPhotometric: PhotometricBlackIsZero,
		TargetPlanar:      PlanarConfigChunky,
	}))
	require.NoError(t, dir.Finish())

	dstDecoder, err := NewDecoder(dst)
	require.NoError(t, err)

	width, err := dstDecoder.GetTagU32(TagImageWidth)
	require.NoError(t, err)
	require.Equal(t, uint32(2), width, "destination's own ImageWidth must survive, not the source's")

	make_, err := dstDecoder.GetTag(TagMake)
	require.NoError(t, err)
	s, err := make_.IntoString()
	require.NoError(t, err)
	require.Equal(t, "Acme", s)

	exifPtr, err := dstDecoder.GetTagU32(TagExifIFD)
	require.NoError(t, err)
	saved := dstDecoder.IfdPointer()
	require.NoError(t, dstDecoder.RestartAtImage(uint64(exifPtr)))
	iso, err := dstDecoder.GetTagU32(TagISO)
	require.NoError(t, err)
	require.Equal(t, uint32(200), iso)
	require.NoError(t, dstDecoder.RestartAtImage(saved))
}

func TestCopyMetadataWritesEightByteSubIFDPointerOnBigTIFF(t *testing.T) {
	src := buildSourceWithExif(t)
	srcDecoder, err := NewDecoder(src)
	require.NoError(t, err)

	dst := &growingBuffer{}
	enc, pointerPos, err := NewEncoder(dst, binary.LittleEndian, true)
	require.NoError(t, err)
	dir := enc.NewDirectory(pointerPos)

	_, err = NewImageEncoder(dir, binary.LittleEndian, ImageSpec{
		Width:         1,
		Height:        1,
		BitsPerSample: []uint16{8},
		Photometric:   PhotometricBlackIsZero,
		Compression:   CompressionNone,
	})
	require.NoError(t, err)

	require.NoError(t, CopyMetadata(dir, srcDecoder, MetadataCopyPolicy{
		TargetPhotometric: PhotometricBlackIsZero,
		TargetPlanar:      PlanarConfigChunky,
	}))
	require.NoError(t, dir.Finish())

	dstDecoder, err := NewDecoder(dst)
	require.NoError(t, err)
	require.True(t, dstDecoder.BigTiff())

	var wireType Type
	for _, de := range dstDecoder.Directory().Entries() {
		if de.Tag == TagExifIFD {
			wireType = de.Entry.Type
		}
	}
	require.Equal(t, TypeIFD8, wireType)

	v, err := dstDecoder.GetTag(TagExifIFD)
	require.NoError(t, err)
	exifPtr, err := v.IntoU64()
	require.NoError(t, err)
	saved := dstDecoder.IfdPointer()
	require.NoError(t, dstDecoder.RestartAtImage(exifPtr))
	iso, err := dstDecoder.GetTagU32(TagISO)
	require.NoError(t, err)
	require.Equal(t, uint32(200), iso)
	require.NoError(t, dstDecoder.RestartAtImage(saved))
}
