package tiff

import "encoding/binary"

// RevHorizontalPredictor undoes horizontal differencing in place: each
// sample (other than the first pixel's) becomes the wrapping sum of
// itself and the corresponding sample of the previous pixel. buf holds
// height rows of resWidth pixels (resWidth may exceed width for the
// right/bottom edge tiles of a tiled image, where only the first width
// columns hold real data); samples is the number of samples per pixel
// and bitsPerSample the uniform bit depth (must be a multiple of 8).
func RevHorizontalPredictor(buf []byte, width, height, resWidth, samples int, bitsPerSample uint16, order binary.ByteOrder) error {
	if bitsPerSample%8 != 0 {
		return &UsageError{Kind: PredictorIncompatible}
	}
	sampleSize := int(bitsPerSample / 8)
	rowStride := resWidth * samples * sampleSize

	for row := 0; row < height; row++ {
		rowBuf := buf[row*rowStride:]
		for col := samples; col < width*samples; col++ {
			prevOff := (col - samples) * sampleSize
			curOff := col * sampleSize
			addSample(rowBuf, prevOff, curOff, sampleSize, order)
		}
	}
	return nil
}

// HorizontalPredictor applies horizontal differencing in place, the
// forward transform an encoder runs before compression; it is the
// inverse of RevHorizontalPredictor.
func HorizontalPredictor(buf []byte, width, height, resWidth, samples int, bitsPerSample uint16, order binary.ByteOrder) error {
	if bitsPerSample%8 != 0 {
		return &UsageError{Kind: PredictorIncompatible}
	}
	sampleSize := int(bitsPerSample / 8)
	rowStride := resWidth * samples * sampleSize

	for row := 0; row < height; row++ {
		rowBuf := buf[row*rowStride:]
		original := make([]byte, width*samples*sampleSize)
		copy(original, rowBuf[:width*samples*sampleSize])

		for col := width*samples - 1; col >= samples; col-- {
			prevOff := (col - samples) * sampleSize
			curOff := col * sampleSize
			subSample(rowBuf, original, prevOff, curOff, sampleSize, order)
		}
	}
	return nil
}

func addSample(buf []byte, prevOff, curOff, size int, order binary.ByteOrder) {
	switch size {
	case 1:
		buf[curOff] += buf[prevOff]
	case 2:
		prev := order.Uint16(buf[prevOff:])
		cur := order.Uint16(buf[curOff:])
		order.PutUint16(buf[curOff:], cur+prev)
	case 4:
		prev := order.Uint32(buf[prevOff:])
		cur := order.Uint32(buf[curOff:])
		order.PutUint32(buf[curOff:], cur+prev)
	case 8:
		prev := order.Uint64(buf[prevOff:])
		cur := order.Uint64(buf[curOff:])
		order.PutUint64(buf[curOff:], cur+prev)
	}
}

// subSample writes buf[curOff:] = original[curOff] - original[prevOff],
// reading both operands from the pristine original row so that earlier
// writes in the same pass don't corrupt later differences.
func subSample(buf, original []byte, prevOff, curOff, size int, order binary.ByteOrder) {
	switch size {
	case 1:
		buf[curOff] = original[curOff] - original[prevOff]
	case 2:
		prev := order.Uint16(original[prevOff:])
		cur := order.Uint16(original[curOff:])
		order.PutUint16(buf[curOff:], cur-prev)
	case 4:
		prev := order.Uint32(original[prevOff:])
		cur := order.Uint32(original[curOff:])
		order.PutUint32(buf[curOff:], cur-prev)
	case 8:
		prev := order.Uint64(original[prevOff:])
		cur := order.Uint64(original[curOff:])
		order.PutUint64(buf[curOff:], cur-prev)
	}
}

// RevFloatingPointPredictor undoes the floating-point predictor: buf
// holds height rows of resWidth*samples*byteLen bytes, laid out (after
// decompression) as byteLen horizontally-differenced byte planes per
// row, most-significant plane first. It restores plain big-endian
// IEEE-754 sample bytes in place; ExpandChunk leaves them big-endian
// regardless of the file's declared byte order, matching the Adobe TIFF
// predictor extension's fixed plane convention.
func RevFloatingPointPredictor(buf []byte, width, height, resWidth, samples, byteLen int) error {
	rowBytes := width * samples * byteLen
	resRowBytes := resWidth * samples * byteLen

	for row := 0; row < height; row++ {
		rowStart := row * resRowBytes
		rowBuf := buf[rowStart : rowStart+rowBytes]

		cp := make([]byte, len(rowBuf))
		copy(cp, rowBuf)

		for pixel := 1; pixel < width*byteLen; pixel++ {
			for sample := 0; sample < samples; sample++ {
				prev := cp[(pixel-1)*samples+sample]
				cp[pixel*samples+sample] += prev
			}
		}

		rowIncrement := width * samples
		for sample := 0; sample < rowIncrement; sample++ {
			for plane := 0; plane < byteLen; plane++ {
				rowBuf[sample*byteLen+plane] = cp[rowIncrement*plane+sample]
			}
		}
	}
	return nil
}

// FloatingPointPredictor applies the forward floating-point predictor
// transform, the inverse of RevFloatingPointPredictor: it plane-splits
// big-endian IEEE-754 sample bytes and horizontally differences each
// plane, the layout an encoder must produce before compression.
func FloatingPointPredictor(buf []byte, width, height, resWidth, samples, byteLen int) error {
	rowBytes := width * samples * byteLen
	resRowBytes := resWidth * samples * byteLen

	for row := 0; row < height; row++ {
		rowStart := row * resRowBytes
		rowBuf := buf[rowStart : rowStart+rowBytes]

		rowIncrement := width * samples
		planes := make([]byte, len(rowBuf))
		for sample := 0; sample < rowIncrement; sample++ {
			for plane := 0; plane < byteLen; plane++ {
				planes[rowIncrement*plane+sample] = rowBuf[sample*byteLen+plane]
			}
		}

		for pixel := width*byteLen - 1; pixel >= 1; pixel-- {
			for sample := 0; sample < samples; sample++ {
				planes[pixel*samples+sample] -= planes[(pixel-1)*samples+sample]
			}
		}

		copy(rowBuf, planes)
	}
	return nil
}
