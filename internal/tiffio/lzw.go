package tiffio

// TIFF's LZW flavor packs codes MSB-first and widens the code size one code
// earlier than the classic scheme ("early change"). No library in the Go
// ecosystem encodes this variant: compress/lzw lacks early change and
// golang.org/x/image/tiff/lzw is decode-only, as is the x/image TIFF
// encoder's compression support. The compressor below implements the
// variant directly; the decode side of the round trip is covered by
// x/image/tiff/lzw in tests and in this package's readers.

const (
	lzwClearCode = 256
	lzwEOICode   = 257
	lzwFirstCode = 258
	// One 12-bit code stays unused because of early change; clear the
	// table once 4094 codes have been assigned.
	lzwTableLimit = 4094
	lzwMinWidth   = 9
	lzwMaxWidth   = 12
)

func compressLZW(src []byte) []byte {
	var out bitWriter

	table := make(map[uint32]uint32, lzwTableLimit)
	nextCode := uint32(lzwFirstCode)
	width := uint(lzwMinWidth)

	out.write(lzwClearCode, width)
	if len(src) == 0 {
		out.write(lzwEOICode, width)
		return out.flush()
	}

	prefix := uint32(src[0])
	for _, c := range src[1:] {
		key := prefix<<8 | uint32(c)
		if code, ok := table[key]; ok {
			prefix = code
			continue
		}

		out.write(prefix, width)
		table[key] = nextCode
		nextCode++
		// Widen once nextCode no longer fits in the current width. The
		// decoder applies its early change one entry before its table
		// fills, which lands on exactly this point in the stream.
		if nextCode == 1<<width && width < lzwMaxWidth {
			width++
		}
		if nextCode >= lzwTableLimit {
			out.write(lzwClearCode, width)
			table = make(map[uint32]uint32, lzwTableLimit)
			nextCode = lzwFirstCode
			width = lzwMinWidth
		}
		prefix = uint32(c)
	}

	out.write(prefix, width)
	out.write(lzwEOICode, width)
	return out.flush()
}

// bitWriter accumulates variable-width codes MSB-first.
type bitWriter struct {
	buf   []byte
	bits  uint32
	nbits uint
}

func (w *bitWriter) write(code uint32, width uint) {
	w.bits |= code << (32 - width - w.nbits)
	w.nbits += width
	for w.nbits >= 8 {
		w.buf = append(w.buf, byte(w.bits>>24))
		w.bits <<= 8
		w.nbits -= 8
	}
}

func (w *bitWriter) flush() []byte {
	if w.nbits > 0 {
		w.buf = append(w.buf, byte(w.bits>>24))
		w.bits = 0
		w.nbits = 0
	}
	return w.buf
}
