package tiff

import (
	"io"

	"golang.org/x/image/tiff/lzw"
)

// lzwCodec implements the TIFF-flavored LZW variant (compression code 5):
// MSB-first bit packing with the "early change" code-width switch one
// code early, as fixed by the TIFF 6.0 spec. Decoding is delegated to
// golang.org/x/image/tiff/lzw, the same package the teacher's decoder
// uses; that package exposes no writer, so Compress packs codes directly
// against an io.Writer using the same MSB/early-change convention the
// reader above expects.
type lzwCodec struct {
	limits Limits
}

func (c lzwCodec) Decompress(r io.Reader, blockWidth, blockHeight int) ([]byte, error) {
	rc := lzw.NewReader(r, lzw.MSB, 8)
	defer rc.Close()

	buf, err := boundedReadAll(rc, c.limits.DecodingBufferSize)
	if err != nil {
		if err == ErrLimitsExceeded {
			return nil, err
		}
		return nil, errCorrupt("lzw: " + err.Error())
	}
	return buf, nil
}

const (
	lzwClearCode = 256
	lzwEOICode   = 257
	lzwFirstCode = 258
	// lzwMaxCode bounds the codes this encoder assigns: the last one is
	// lzwMaxCode-1, after which it emits a fresh ClearCode and resets the
	// table. TIFF allows 4096 codes total; stopping below that leaves
	// headroom for the reset itself.
	lzwMaxCode = 4094
)

// lzwBitWriter packs variable-width codes MSB-first: the high bit of
// each code is the first bit written to the stream, matching the bit
// order golang.org/x/image/tiff/lzw's reader unpacks on decode.
type lzwBitWriter struct {
	w    io.Writer
	acc  uint32
	nbit uint
}

func (bw *lzwBitWriter) writeCode(code uint32, width uint) error {
	bw.acc = (bw.acc << width) | code
	bw.nbit += width
	for bw.nbit >= 8 {
		if _, err := bw.w.Write([]byte{byte(bw.acc >> (bw.nbit - 8))}); err != nil {
			return err
		}
		bw.nbit -= 8
	}
	return nil
}

// flush pads any partial final byte with zero bits on the right, the
// convention golang.org/x/image/tiff/lzw's reader tolerates after EOI.
func (bw *lzwBitWriter) flush() error {
	if bw.nbit == 0 {
		return nil
	}
	b := byte(bw.acc << (8 - bw.nbit))
	bw.nbit = 0
	_, err := bw.w.Write([]byte{b})
	return err
}

// Compress implements a byte-oriented TIFF-flavored LZW encoder: 9-bit
// codes growing to 12 bits as the string table fills, MSB-first packing,
// and the TIFF 6.0 "early change" rule that widens the code one table
// entry sooner than plain LZW (at 511/1023/2047 entries rather than
// 512/1024/2048). The string table itself is a hash from (prefix code,
// next byte) to the code it was assigned, the same trie shape
// compress/lzw's own writer builds, adapted here to TIFF's code
// numbering (Clear=256, EOI=257, first string code=258).
func (lzwCodec) Compress(w io.Writer, data []byte, blockWidth, blockHeight int) error {
	bw := &lzwBitWriter{w: w}

	nbits := uint(9)
	limit := uint32(1)<<nbits - 1
	nextCode := uint32(lzwFirstCode)
	table := make(map[uint32]uint32)

	reset := func() {
		nbits = 9
		limit = uint32(1)<<nbits - 1
		nextCode = lzwFirstCode
		table = make(map[uint32]uint32)
	}

	if err := bw.writeCode(lzwClearCode, nbits); err != nil {
		return err
	}
	if len(data) == 0 {
		if err := bw.writeCode(lzwEOICode, nbits); err != nil {
			return err
		}
		return bw.flush()
	}

	prefix := uint32(data[0])
	for _, b := range data[1:] {
		key := prefix<<8 | uint32(b)
		if code, ok := table[key]; ok {
			prefix = code
			continue
		}

		if err := bw.writeCode(prefix, nbits); err != nil {
			return err
		}

		if nextCode < lzwMaxCode {
			table[key] = nextCode
			nextCode++
			if nextCode == limit {
				nbits++
				limit = uint32(1)<<nbits - 1
			}
		} else {
			if err := bw.writeCode(lzwClearCode, nbits); err != nil {
				return err
			}
			reset()
		}
		prefix = uint32(b)
	}

	if err := bw.writeCode(prefix, nbits); err != nil {
		return err
	}
	if err := bw.writeCode(lzwEOICode, nbits); err != nil {
		return err
	}
	return bw.flush()
}
