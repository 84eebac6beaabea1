package tiff

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDirectoryEncoderInlineVsSpill(t *testing.T) {
	dst := &growingBuffer{}
	enc, pointerPos, err := NewEncoder(dst, binary.LittleEndian, false)
	require.NoError(t, err)

	dir := enc.NewDirectory(pointerPos)
	dir.WriteTag(TagImageWidth, Longs(7))           // fits inline (4 bytes)
	dir.WriteTag(TagArtist, ASCII("a very long artist name that must be spilled"))
	require.NoError(t, dir.Finish())

	d, err := NewDecoder(dst)
	require.NoError(t, err)

	width, err := d.GetTagU32(TagImageWidth)
	require.NoError(t, err)
	require.Equal(t, uint32(7), width)

	v, err := d.GetTag(TagArtist)
	require.NoError(t, err)
	s, err := v.IntoString()
	require.NoError(t, err)
	require.Equal(t, "a very long artist name that must be spilled", s)
}

func TestDirectoryEncoderModifyTag(t *testing.T) {
	dst := &growingBuffer{}
	enc, pointerPos, err := NewEncoder(dst, binary.LittleEndian, false)
	require.NoError(t, err)

	dir := enc.NewDirectory(pointerPos)
	dir.WriteTag(TagStripOffsets, Longs(0, 0))
	require.NoError(t, dir.ModifyTag(TagStripOffsets, 4, Longs(99)))
	require.NoError(t, dir.Finish())

	d, err := NewDecoder(dst)
	require.NoError(t, err)
	offsets, err := d.GetTagU32Slice(TagStripOffsets)
	require.NoError(t, err)
	require.Equal(t, []uint32{0, 99}, offsets)
}

func TestDirectoryEncoderModifyTagUnknownTagErrors(t *testing.T) {
	dst := &growingBuffer{}
	enc, pointerPos, err := NewEncoder(dst, binary.LittleEndian, false)
	require.NoError(t, err)

	dir := enc.NewDirectory(pointerPos)
	err = dir.ModifyTag(TagStripOffsets, 0, Longs(1))
	require.Error(t, err)
	require.Equal(t, RequiredTagMissingForModify, err.(*UsageError).Kind)
}

func TestDirectoryEncoderSubdirectory(t *testing.T) {
	dst := &growingBuffer{}
	enc, pointerPos, err := NewEncoder(dst, binary.LittleEndian, false)
	require.NoError(t, err)

	dir := enc.NewDirectory(pointerPos)
	dir.WriteTag(TagImageWidth, Longs(10))

	dir.SubdirectoryStart()
	dir.WriteTag(TagExifVersion, Undefined([]byte("0231")))
	subOffset, err := dir.SubdirectoryClose()
	require.NoError(t, err)
	dir.WriteTag(TagExifIFD, IFDs(uint32(subOffset)))

	require.NoError(t, dir.Finish())

	d, err := NewDecoder(dst)
	require.NoError(t, err)

	ptr, err := d.GetTagU32(TagExifIFD)
	require.NoError(t, err)
	require.Equal(t, uint32(subOffset), ptr)

	saved := d.IfdPointer()
	require.NoError(t, d.RestartAtImage(uint64(ptr)))
	v, err := d.GetTag(TagExifVersion)
	require.NoError(t, err)
	bs, err := v.IntoU64Slice()
	require.NoError(t, err)
	require.Len(t, bs, 4)
	require.NoError(t, d.RestartAtImage(saved))
}

func TestDirectoryEncoderFinishTwiceErrors(t *testing.T) {
	dst := &growingBuffer{}
	enc, pointerPos, err := NewEncoder(dst, binary.LittleEndian, false)
	require.NoError(t, err)

	dir := enc.NewDirectory(pointerPos)
	dir.WriteTag(TagImageWidth, Longs(7))
	require.NoError(t, dir.Finish())

	err = dir.Finish()
	require.Error(t, err)
	require.Equal(t, DirectoryAlreadyFinished, err.(*UsageError).Kind)
}

func TestDirectoryEncoderCloseWithoutOpenSubdirectoryErrors(t *testing.T) {
	dst := &growingBuffer{}
	enc, pointerPos, err := NewEncoder(dst, binary.LittleEndian, false)
	require.NoError(t, err)

	dir := enc.NewDirectory(pointerPos)
	_, err = dir.SubdirectoryClose()
	require.Error(t, err)
	require.Equal(t, CloseNonExistentIfd, err.(*UsageError).Kind)
}
