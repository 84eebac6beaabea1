package tiff

import "sort"

// tiffEncoding distinguishes classic TIFF's 2-byte entry count and 4-byte
// offset/value-count fields from BigTIFF's 8-byte ones; every directory-layout
// decision (inline capacity, entry count width, offset width) is
// expressed in terms of it so DirectoryEncoder never special-cases the
// two layouts directly.
type tiffEncoding struct {
	bigTIFF bool
}

// inlineCap is 4 for classic TIFF, 8 for BigTIFF: the number of bytes
// available in an entry's own slot before its value must be spilled
// elsewhere and replaced with a pointer.
func (e tiffEncoding) inlineCap() int {
	if e.bigTIFF {
		return 8
	}
	return 4
}

func (e tiffEncoding) writeOffset(w *ByteOrderWriter, offset uint64) error {
	if e.bigTIFF {
		return w.WriteU64(offset)
	}
	return w.WriteU32(uint32(offset))
}

func (e tiffEncoding) writeEntryCount(w *ByteOrderWriter, n int) error {
	if e.bigTIFF {
		return w.WriteU64(uint64(n))
	}
	return w.WriteU16(uint16(n))
}

func (e tiffEncoding) writeValueCount(w *ByteOrderWriter, n uint64) error {
	if e.bigTIFF {
		return w.WriteU64(n)
	}
	return w.WriteU32(uint32(n))
}

// sliceWriterAt adapts a fixed-size byte slice to io.WriterAt, letting
// an offset be patched into an entry's still-in-memory inline data with
// the same ByteOrderWriter machinery used for the real file.
type sliceWriterAt struct{ buf []byte }

func (s *sliceWriterAt) WriteAt(p []byte, off int64) (int, error) {
	n := copy(s.buf[off:], p)
	return n, nil
}

// bufferedEntry holds one tag's serialized value before WriteDirectory
// either inlines it or spills it and replaces data with a pointer.
type bufferedEntry struct {
	fieldType Type
	count     uint64
	data      []byte
}

// DirectoryEncoder assembles one Image File Directory. Tag values are
// buffered as they are written; Finish flushes them (spilling anything
// too large to fit inline) and patches the offset slot that points at
// this directory.
//
// Unlike a Rust Drop guard, Finish is not invoked implicitly when a
// DirectoryEncoder is no longer referenced: Go has no deterministic
// destructor, so an un-finished encoder simply leaves a dangling
// pointer and a truncated directory. Callers must call Finish exactly
// once.
type DirectoryEncoder struct {
	w             *ByteOrderWriter
	enc           tiffEncoding
	ifdPointerPos int64
	ifd           map[Tag]*bufferedEntry
	subIfd        map[Tag]*bufferedEntry
	inSub         bool
	finished      bool
}

// NewDirectoryEncoder begins a new directory that will be linked from
// the offset slot at ifdPointerPos: either the header's first-IFD slot
// (for the first directory in the file) or a previously written
// directory's next-IFD slot (for a subsequent page).
func NewDirectoryEncoder(w *ByteOrderWriter, enc tiffEncoding, ifdPointerPos int64) *DirectoryEncoder {
	return &DirectoryEncoder{
		w:             w,
		enc:           enc,
		ifdPointerPos: ifdPointerPos,
		ifd:           make(map[Tag]*bufferedEntry),
	}
}

func (d *DirectoryEncoder) active() map[Tag]*bufferedEntry {
	if d.inSub {
		return d.subIfd
	}
	return d.ifd
}

// Contains reports whether tag has already been written to the
// currently active directory (the master directory, or an open
// sub-IFD).
func (d *DirectoryEncoder) Contains(tag Tag) bool {
	_, ok := d.active()[tag]
	return ok
}

// WriteTag serializes value and buffers it under tag in the currently
// active directory, overwriting any earlier value already buffered for
// the same tag.
func (d *DirectoryEncoder) WriteTag(tag Tag, value EncodedValue) {
	d.active()[tag] = &bufferedEntry{
		fieldType: value.Type(),
		count:     value.Count(),
		data:      value.Encode(d.w.Order()),
	}
}

// ModifyTag overwrites part of an already-buffered tag's bytes,
// starting at byteOffset within its encoded value, without changing
// its type or count. Used to patch per-strip placeholders
// (StripOffsets/StripByteCounts entries) once real offsets are known,
// before the directory itself is flushed to the writer.
func (d *DirectoryEncoder) ModifyTag(tag Tag, byteOffset uint64, value EncodedValue) error {
	entry, ok := d.active()[tag]
	if !ok {
		return &UsageError{Kind: RequiredTagMissingForModify}
	}
	encoded := value.Encode(d.w.Order())
	end := int(byteOffset) + len(encoded)
	if end > len(entry.data) {
		return &UsageError{Kind: InsufficientOutputBufferSize, Needed: end, Provided: len(entry.data)}
	}
	copy(entry.data[byteOffset:], encoded)
	return nil
}

// SubdirectoryStart opens a sub-IFD: subsequent WriteTag/ModifyTag calls
// target it instead of the master directory, until SubdirectoryClose.
func (d *DirectoryEncoder) SubdirectoryStart() {
	d.subIfd = make(map[Tag]*bufferedEntry)
	d.inSub = true
}

// SubdirectoryClose flushes the open sub-IFD to the writer and returns
// the offset it was written at, ready to be written into whichever
// parent entry points at it (ExifIFD, GPSIFD, and similar tags).
func (d *DirectoryEncoder) SubdirectoryClose() (uint64, error) {
	if !d.inSub {
		return 0, &UsageError{Kind: CloseNonExistentIfd}
	}
	ifd := d.subIfd
	d.subIfd = nil
	d.inSub = false

	offset, err := d.writeDirectory(ifd)
	if err != nil {
		return 0, err
	}
	if err := d.enc.writeOffset(d.w, 0); err != nil {
		return 0, err
	}
	return offset, nil
}

// WriteData writes raw bytes at the writer's current position,
// returning that position. Used to write pixel strips/tiles and any
// other directly-addressed blob that a tag then points to.
func (d *DirectoryEncoder) WriteData(raw []byte) (uint64, error) {
	offset := uint64(d.w.Pos())
	if err := d.w.WriteBytes(raw); err != nil {
		return 0, err
	}
	return offset, nil
}

// writeDirectory spills every entry whose value exceeds the inline
// capacity (writing its bytes at the current position and replacing
// its buffered data with a pointer to them, zero-padded to the inline
// width), then writes the entry count followed by each entry in
// ascending tag order: tag, type, count, and the (now always
// inline-width) data bytes. It returns the offset the directory itself
// was written at.
func (d *DirectoryEncoder) writeDirectory(ifd map[Tag]*bufferedEntry) (uint64, error) {
	tags := make([]Tag, 0, len(ifd))
	for tag := range ifd {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })

	inlineCap := d.enc.inlineCap()
	for _, tag := range tags {
		entry := ifd[tag]
		if len(entry.data) > inlineCap {
			offset := uint64(d.w.Pos())
			if err := d.w.WriteBytes(entry.data); err != nil {
				return 0, err
			}
			spilled := make([]byte, inlineCap)
			pw := NewByteOrderWriter(&sliceWriterAt{buf: spilled}, d.w.Order())
			if err := d.enc.writeOffset(pw, offset); err != nil {
				return 0, err
			}
			entry.data = spilled
		} else {
			padded := make([]byte, inlineCap)
			copy(padded, entry.data)
			entry.data = padded
		}
	}

	dirOffset := uint64(d.w.Pos())
	if err := d.enc.writeEntryCount(d.w, len(tags)); err != nil {
		return 0, err
	}
	for _, tag := range tags {
		entry := ifd[tag]
		if err := d.w.WriteU16(uint16(tag)); err != nil {
			return 0, err
		}
		if err := d.w.WriteU16(uint16(entry.fieldType)); err != nil {
			return 0, err
		}
		if err := d.enc.writeValueCount(d.w, entry.count); err != nil {
			return 0, err
		}
		if err := d.w.WriteBytes(entry.data); err != nil {
			return 0, err
		}
	}
	return dirOffset, nil
}

// Finish closes any still-open sub-IFD, flushes the master directory,
// patches the remembered pointer slot (ifdPointerPos) to the
// directory's actual offset, and terminates the directory with a
// zeroed next-IFD slot. Callers must call Finish exactly once; a second
// call returns a UsageError rather than re-writing the directory.
func (d *DirectoryEncoder) Finish() error {
	if d.finished {
		return &UsageError{Kind: DirectoryAlreadyFinished}
	}
	if d.inSub {
		if _, err := d.SubdirectoryClose(); err != nil {
			return err
		}
	}

	dirOffset, err := d.writeDirectory(d.ifd)
	if err != nil {
		return err
	}
	nextSlotPos := d.w.Pos()

	d.w.GotoOffset(d.ifdPointerPos)
	if err := d.enc.writeOffset(d.w, dirOffset); err != nil {
		return err
	}
	d.w.GotoOffset(nextSlotPos)
	if err := d.enc.writeOffset(d.w, 0); err != nil {
		return err
	}

	d.finished = true
	return nil
}
