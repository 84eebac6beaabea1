package tiff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectoryMultipleEntriesOverwriteSameTag(t *testing.T) {
	dir := NewDirectory()
	require.Equal(t, 0, dir.Len())

	const unknownTag Tag = 0xFFFF
	var lastCount uint64
	for i := uint64(0); i <= 0xFFFF; i++ {
		dir.Set(unknownTag, Entry{Type: TypeByte, Count: i, RawOffsetBytes: make([]byte, 8)})
		lastCount = i
	}

	require.Equal(t, 1, dir.Len(), "only one tag was ever modified")

	e, ok := dir.Get(unknownTag)
	require.True(t, ok)
	assert.Equal(t, lastCount, e.Count)
}

func TestDirectoryIterationOrder(t *testing.T) {
	dir := NewDirectory()
	require.Equal(t, 0, dir.Len())

	for i := 0; i < 32; i++ {
		dir.Set(Tag(i), Entry{Type: TypeByte, Count: 0, RawOffsetBytes: make([]byte, 8)})
	}

	var order []Tag
	for _, e := range dir.Entries() {
		order = append(order, e.Tag)
	}
	for i, tag := range order {
		assert.Equal(t, Tag(i), tag, "tags must be in ascending order")
	}
}
