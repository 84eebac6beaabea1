package tiff

import "io"

// ccittFax4Codec implements CCITT Group 4 (T.6) two-dimensional Modified
// Modified READ decoding (compression code 4). No library in the
// retrieved corpus implements Group 4 fax decoding (see DESIGN.md); this
// is a direct, self-contained implementation of the standard against a
// bit-level reader, in the style of the pack's other hand-rolled
// bitstream decoders.
//
// Output is packed MSB-first, one bit per sample, with white mapped to
// bit 0 and black to bit 1 regardless of PhotometricInterpretation,
// matching libtiff's convention.
type ccittFax4Codec struct {
	photometric PhotometricInterpretation
}

func (c ccittFax4Codec) Decompress(r io.Reader, blockWidth, blockHeight int) ([]byte, error) {
	br := newFaxBitReader(r)
	dec := &faxDecoder{br: br, width: blockWidth}

	rowBytes := (blockWidth + 7) / 8
	out := make([]byte, rowBytes*blockHeight)

	refLine := []int{blockWidth, blockWidth}
	for row := 0; row < blockHeight; row++ {
		codingLine, err := dec.decodeRow(refLine)
		if err != nil {
			return nil, errCorrupt("ccitt g4: " + err.Error())
		}
		writeFaxRow(out[row*rowBytes:(row+1)*rowBytes], codingLine, blockWidth)
		refLine = codingLine
	}
	return out, nil
}

func (ccittFax4Codec) Compress(w io.Writer, data []byte, blockWidth, blockHeight int) error {
	return errUnsupportedCompression(uint16(CompressionFax4))
}

// writeFaxRow packs a row described by its color-transition positions
// (codingLine, alternating white-run-end/black-run-end positions
// starting with white) into MSB-first bits, 1 = black.
func writeFaxRow(dst []byte, codingLine []int, width int) {
	pos := 0
	black := false
	for _, next := range codingLine {
		if next > width {
			next = width
		}
		if black {
			for x := pos; x < next; x++ {
				dst[x/8] |= 1 << (7 - uint(x%8))
			}
		}
		pos = next
		black = !black
		if pos >= width {
			break
		}
	}
}

// faxBitReader reads individual bits MSB-first from an underlying byte stream.
type faxBitReader struct {
	r    io.Reader
	buf  [4096]byte
	n    int
	pos  int
	cur  byte
	bits int
}

func newFaxBitReader(r io.Reader) *faxBitReader { return &faxBitReader{r: r} }

func (b *faxBitReader) fill() error {
	if b.pos >= b.n {
		n, err := b.r.Read(b.buf[:])
		if n == 0 {
			if err == nil {
				err = io.ErrUnexpectedEOF
			}
			return err
		}
		b.n = n
		b.pos = 0
	}
	return nil
}

// readBit returns the next bit and consumes it.
func (b *faxBitReader) readBit() (int, error) {
	if b.bits == 0 {
		if err := b.fill(); err != nil {
			return 0, err
		}
		b.cur = b.buf[b.pos]
		b.pos++
		b.bits = 8
	}
	bit := int((b.cur >> 7) & 1)
	b.cur <<= 1
	b.bits--
	return bit, nil
}

// faxDecoder decodes one CCITT G4 row at a time using the 2D MMR scheme.
type faxDecoder struct {
	br    *faxBitReader
	width int
}

// faxMode identifies a 2D coding mode code.
type faxMode int

const (
	faxModePass faxMode = iota
	faxModeHoriz
	faxModeV0
	faxModeVR1
	faxModeVR2
	faxModeVR3
	faxModeVL1
	faxModeVL2
	faxModeVL3
	faxModeExt
	faxModeEOL
)

// readMode reads one 2D mode code. Codes (MSB-first bit strings):
// V0=1, VR1=011, VL1=010, H=001, P=0001, VR2=000011, VL2=000010,
// VR3=0000011, VL3=0000010, EXT2D=0000001xxx.
func (d *faxDecoder) readMode() (faxMode, error) {
	b1, err := d.br.readBit()
	if err != nil {
		return 0, err
	}
	if b1 == 1 {
		return faxModeV0, nil
	}
	b2, err := d.br.readBit()
	if err != nil {
		return 0, err
	}
	b3, err := d.br.readBit()
	if err != nil {
		return 0, err
	}
	switch {
	case b2 == 1 && b3 == 1:
		return faxModeVR1, nil
	case b2 == 1 && b3 == 0:
		return faxModeVL1, nil
	case b2 == 0 && b3 == 1:
		return faxModeHoriz, nil
	}
	// b2==0 && b3==0
	b4, err := d.br.readBit()
	if err != nil {
		return 0, err
	}
	if b4 == 1 {
		return faxModePass, nil
	}
	b5, err := d.br.readBit()
	if err != nil {
		return 0, err
	}
	b6, err := d.br.readBit()
	if err != nil {
		return 0, err
	}
	switch {
	case b5 == 1 && b6 == 1:
		return faxModeVR2, nil
	case b5 == 1 && b6 == 0:
		return faxModeVL2, nil
	}
	b7, err := d.br.readBit()
	if err != nil {
		return 0, err
	}
	switch {
	case b6 == 1 && b7 == 1:
		return faxModeVR3, nil
	case b6 == 1 && b7 == 0:
		return faxModeVL3, nil
	}
	return faxModeExt, nil
}

// decodeRow decodes one row against refLine (the previous row's
// transition positions) and returns this row's transition positions.
// Transition positions alternate white-run-end, black-run-end, ...
// starting from an implied white run at column 0.
func (d *faxDecoder) decodeRow(refLine []int) ([]int, error) {
	var coding []int
	a0 := -1
	color := false // false = white, true = black

	for a0 < d.width {
		b1, b2 := findB1B2(refLine, a0, color, d.width)

		mode, err := d.readMode()
		if err != nil {
			return nil, err
		}

		switch mode {
		case faxModePass:
			a0 = b2
		case faxModeHoriz:
			run1, err := readRun(d.br, color)
			if err != nil {
				return nil, err
			}
			run2, err := readRun(d.br, !color)
			if err != nil {
				return nil, err
			}
			start := a0
			if start < 0 {
				start = 0
			}
			a1 := start + run1
			a2 := a1 + run2
			coding = append(coding, a1, a2)
			a0 = a2
		case faxModeV0, faxModeVR1, faxModeVR2, faxModeVR3, faxModeVL1, faxModeVL2, faxModeVL3:
			delta := map[faxMode]int{
				faxModeV0: 0, faxModeVR1: 1, faxModeVR2: 2, faxModeVR3: 3,
				faxModeVL1: -1, faxModeVL2: -2, faxModeVL3: -3,
			}[mode]
			a1 := b1 + delta
			coding = append(coding, a1)
			a0 = a1
			color = !color
		default:
			return nil, errCorrupt("ccitt g4: unsupported or extension mode code")
		}
	}
	return coding, nil
}

// findB1B2 locates, on the reference line, the first changing element to
// the right of a0 with color opposite to color (b1), and the next
// changing element after that (b2).
func findB1B2(refLine []int, a0 int, color bool, width int) (int, int) {
	i := 0
	// refLine transitions alternate starting with a white->black
	// transition at refLine[0]; transition i has "color after" = black
	// when i is even.
	for i < len(refLine) && refLine[i] <= a0 {
		i++
	}
	// b1 must have opposite color of `color`: the element at refLine[i]
	// changes TO color (i even -> changes to black, i odd -> to white).
	// We need the first changing element of opposite color to `color`,
	// i.e. changes to !color.
	for i < len(refLine) {
		changesToBlack := i%2 == 0
		if changesToBlack == !color {
			break
		}
		i++
	}
	b1 := width
	if i < len(refLine) {
		b1 = refLine[i]
	}
	b2 := width
	if i+1 < len(refLine) {
		b2 = refLine[i+1]
	}
	return b1, b2
}

// readRun reads one full run length (terminating code, possibly preceded
// by makeup codes) for the given color using the standard T.4 Huffman
// tables.
func readRun(br *faxBitReader, black bool) (int, error) {
	total := 0
	for {
		n, terminating, err := decodeRunCode(br, black)
		if err != nil {
			return 0, err
		}
		total += n
		if terminating {
			return total, nil
		}
	}
}
