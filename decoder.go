package tiff

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

const (
	leHeader = "II"
	beHeader = "MM"

	magicClassic = 42
	magicBig     = 43
)

// Decoder drives header parsing and IFD traversal over a seekable TIFF
// source. A single Decoder positions itself at one IFD at a time; callers
// advance through the chain with NextImage or jump directly with
// SeekToImage/RestartAtImage.
type Decoder struct {
	r         io.ReaderAt
	br        *ByteOrderReader
	order     binary.ByteOrder
	bigTiff   bool
	limits    Limits
	firstIfd  uint64
	curIfd    uint64
	curDir    *Directory
	cycles    *ifdCycles
	haveMore  bool
}

// NewDecoder parses the TIFF/BigTIFF header from r and loads the first
// IFD's entries, positioning the decoder there.
func NewDecoder(r io.ReaderAt) (*Decoder, error) {
	return NewDecoderWithLimits(r, DefaultLimits())
}

// NewDecoderWithLimits is like NewDecoder but overrides the default Limits.
func NewDecoderWithLimits(r io.ReaderAt, limits Limits) (*Decoder, error) {
	hdr := make([]byte, 8)
	if _, err := r.ReadAt(hdr, 0); err != nil {
		return nil, errors.Wrap(err, "tiff: reading header")
	}

	var order binary.ByteOrder
	switch string(hdr[0:2]) {
	case leHeader:
		order = binary.LittleEndian
	case beHeader:
		order = binary.BigEndian
	default:
		return nil, errFormat(TiffSignatureNotFound)
	}

	magic := order.Uint16(hdr[2:4])

	d := &Decoder{
		r:      r,
		order:  order,
		limits: limits,
		cycles: newIfdCycles(),
	}

	switch magic {
	case magicClassic:
		d.bigTiff = false
		d.firstIfd = uint64(order.Uint32(hdr[4:8]))
	case magicBig:
		d.bigTiff = true
		// bytes 4:6 = offset byte size (must be 8), 6:8 reserved (must be 0)
		if order.Uint16(hdr[4:6]) != 8 || order.Uint16(hdr[6:8]) != 0 {
			return nil, errFormat(TiffSignatureInvalid)
		}
		big := make([]byte, 8)
		if _, err := r.ReadAt(big, 8); err != nil {
			return nil, errors.Wrap(err, "tiff: reading BigTIFF header")
		}
		d.firstIfd = order.Uint64(big)
	default:
		return nil, errFormat(TiffSignatureInvalid)
	}

	d.br = NewByteOrderReader(r, order)

	if err := d.readDirectoryAt(d.firstIfd); err != nil {
		return nil, err
	}
	return d, nil
}

// ByteOrder reports the file's declared endianness.
func (d *Decoder) ByteOrder() binary.ByteOrder { return d.order }

// BigTiff reports whether the file uses the BigTIFF 64-bit offset layout.
func (d *Decoder) BigTiff() bool { return d.bigTiff }

// IfdPointer returns the file offset of the currently loaded IFD.
func (d *Decoder) IfdPointer() uint64 { return d.curIfd }

// Directory returns the currently loaded IFD.
func (d *Decoder) Directory() *Directory { return d.curDir }

func (d *Decoder) entrySize() int64 {
	if d.bigTiff {
		return 20
	}
	return 12
}

func (d *Decoder) offsetSize() int {
	if d.bigTiff {
		return 8
	}
	return 4
}

// readDirectoryAt loads the IFD at offset into d.curDir. It does not
// touch the cycle detector; NextImage registers the from->to edge before
// calling it.
func (d *Decoder) readDirectoryAt(offset uint64) error {
	dir, next, err := d.parseDirectory(offset)
	if err != nil {
		return err
	}
	d.curIfd = offset
	d.curDir = dir
	d.haveMore = next != 0
	dir.SetNext(next)
	return nil
}

func (d *Decoder) parseDirectory(offset uint64) (*Directory, uint64, error) {
	d.br.GotoOffset(int64(offset))

	var count uint64
	if d.bigTiff {
		c, err := d.br.ReadU64()
		if err != nil {
			return nil, 0, errors.Wrap(err, "tiff: reading IFD entry count")
		}
		count = c
	} else {
		c, err := d.br.ReadU16()
		if err != nil {
			return nil, 0, errors.Wrap(err, "tiff: reading IFD entry count")
		}
		count = uint64(c)
	}

	dir := NewDirectory()
	for i := uint64(0); i < count; i++ {
		tagID, err := d.br.ReadU16()
		if err != nil {
			return nil, 0, err
		}
		typeID, err := d.br.ReadU16()
		if err != nil {
			return nil, 0, err
		}
		var entryCount uint64
		if d.bigTiff {
			entryCount, err = d.br.ReadU64()
		} else {
			var c32 uint32
			c32, err = d.br.ReadU32()
			entryCount = uint64(c32)
		}
		if err != nil {
			return nil, 0, err
		}

		raw := make([]byte, d.offsetSize())
		if err := d.br.ReadExact(raw); err != nil {
			return nil, 0, err
		}

		dir.Set(Tag(tagID), Entry{
			Type:           Type(typeID),
			Count:          entryCount,
			RawOffsetBytes: raw,
		})
	}

	var next uint64
	if d.bigTiff {
		next, err := d.br.ReadU64()
		if err != nil {
			return nil, 0, err
		}
		return dir, next, nil
	}
	n32, err := d.br.ReadU32()
	if err != nil {
		return nil, 0, err
	}
	next = uint64(n32)
	return dir, next, nil
}

// MoreImages reports whether another IFD follows the current one.
func (d *Decoder) MoreImages() bool { return d.haveMore }

// NextImage advances to the next IFD in the chain, erroring with
// CycleInOffsets if doing so would revisit an already-seen component.
func (d *Decoder) NextImage() error {
	next, ok := d.curDir.Next()
	if !ok {
		return errFormat(ImageFileDirectoryNotFound)
	}
	if err := d.cycles.insertNext(d.curIfd, next, true); err != nil {
		return err
	}
	return d.readDirectoryAt(next)
}

// SeekToImage walks the chain from the first IFD to the i'th (0-indexed),
// validating the whole prefix for cycles as it goes.
func (d *Decoder) SeekToImage(i uint64) error {
	if err := d.readDirectoryAt(d.firstIfd); err != nil {
		return err
	}
	d.cycles = newIfdCycles()
	for n := uint64(0); n < i; n++ {
		if err := d.NextImage(); err != nil {
			return err
		}
	}
	return nil
}

// RestartAtImage repositions the decoder at an arbitrary IFD offset (used
// for sub-IFDs reached through a pointer tag such as ExifIFD), without
// consulting or mutating the top-level cycle detector.
func (d *Decoder) RestartAtImage(offset uint64) error {
	return d.readDirectoryAt(offset)
}

// FindTag returns the raw entry for tag in the current directory, if present.
func (d *Decoder) FindTag(tag Tag) (Entry, bool) {
	return d.curDir.Get(tag)
}

// GetTag resolves tag in the current directory to a Value, erroring with
// RequiredTagNotFound if it is absent.
func (d *Decoder) GetTag(tag Tag) (Value, error) {
	e, ok := d.FindTag(tag)
	if !ok {
		return Value{}, errFormatTag(RequiredTagNotFound, tag)
	}
	return e.Value(d.limits, d.order, d.br)
}

// GetTagU32 resolves tag to a uint32, erroring if absent or not coercible.
func (d *Decoder) GetTagU32(tag Tag) (uint32, error) {
	v, err := d.GetTag(tag)
	if err != nil {
		return 0, err
	}
	return v.IntoU32()
}

// GetTagU32Default resolves tag to a uint32, returning def if the tag is absent.
func (d *Decoder) GetTagU32Default(tag Tag, def uint32) (uint32, error) {
	if !d.curDir.Contains(tag) {
		return def, nil
	}
	return d.GetTagU32(tag)
}

// GetTagU32Slice resolves tag to a slice of uint32 values.
func (d *Decoder) GetTagU32Slice(tag Tag) ([]uint32, error) {
	v, err := d.GetTag(tag)
	if err != nil {
		return nil, err
	}
	return v.IntoU32Slice()
}

// GetTagU64Slice resolves tag to a slice of uint64 values (used for
// StripOffsets/TileOffsets in BigTIFF, which may carry LONG8 values).
func (d *Decoder) GetTagU64Slice(tag Tag) ([]uint64, error) {
	v, err := d.GetTag(tag)
	if err != nil {
		return nil, err
	}
	return v.IntoU64Slice()
}

// Limits returns the limits this decoder enforces.
func (d *Decoder) Limits() Limits { return d.limits }

// Reader exposes the underlying byte source for codec/chunk decode paths.
func (d *Decoder) Reader() io.ReaderAt { return d.r }

// ReadChunk decodes chunk index (a strip or tile number, per img.ChunkType)
// into dst, a buffer whose rows are dstRowStride bytes apart, applying the
// image's compression, predictor, byte-order, and photometric inversion.
// dst must be large enough to hold the chunk's data rows at that stride.
func (d *Decoder) ReadChunk(img *Image, index int, dst []byte, dstRowStride int) error {
	if index < 0 || index >= img.ChunkCount() {
		return &UsageError{Kind: InvalidChunkIndex, Index: uint32(index)}
	}
	offset := img.ChunkOffsets[index]
	length := img.ChunkBytes[index]
	sr := io.NewSectionReader(d.r, int64(offset), int64(length))
	return ExpandChunk(img, sr, length, dst, dstRowStride, index, d.order, d.limits)
}
