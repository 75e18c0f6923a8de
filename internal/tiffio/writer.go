package tiffio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// TIFF tag and field constants for the single-strip grayscale layout this
// package emits. Field values follow TIFF 6.0.
const (
	tagImageWidth      = 256
	tagImageLength     = 257
	tagBitsPerSample   = 258
	tagCompression     = 259
	tagPhotometric     = 262
	tagStripOffsets    = 273
	tagSamplesPerPixel = 277
	tagRowsPerStrip    = 278
	tagStripByteCounts = 279
	tagSampleFormat    = 339

	typeShort = 3
	typeLong  = 4

	compressionLZW        = 5
	photometricBlackIsZero = 1

	sampleFormatUint  = 1
	sampleFormatFloat = 3
)

const (
	headerSize = 8
	entryCount = 10
	ifdSize    = 2 + entryCount*12 + 4
	dataOffset = headerSize + ifdSize
)

// EncodeGrayFloat32 writes a single-band float32 TIFF with LZW-compressed
// pixel data. Samples are written in row-major order, little-endian, as one
// strip covering the whole image.
func EncodeGrayFloat32(w io.Writer, width, height int, pix []float32) error {
	if err := checkDimensions(width, height, len(pix)); err != nil {
		return err
	}
	raw := make([]byte, len(pix)*4)
	for i, v := range pix {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(v))
	}
	return encodeGray(w, width, height, 32, sampleFormatFloat, raw)
}

// EncodeGray16 writes a single-band uint16 TIFF with LZW-compressed pixel
// data, one strip, little-endian samples.
func EncodeGray16(w io.Writer, width, height int, pix []uint16) error {
	if err := checkDimensions(width, height, len(pix)); err != nil {
		return err
	}
	raw := make([]byte, len(pix)*2)
	for i, v := range pix {
		binary.LittleEndian.PutUint16(raw[i*2:], v)
	}
	return encodeGray(w, width, height, 16, sampleFormatUint, raw)
}

func checkDimensions(width, height, samples int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("tiffio: invalid dimensions %dx%d", width, height)
	}
	if want := width * height; samples != want {
		return fmt.Errorf("tiffio: %d samples for %dx%d image, want %d", samples, width, height, want)
	}
	return nil
}

func encodeGray(w io.Writer, width, height, bits, sampleFormat int, raw []byte) error {
	strip := compressLZW(raw)

	buf := make([]byte, dataOffset, dataOffset+len(strip))
	buf[0] = 'I'
	buf[1] = 'I'
	binary.LittleEndian.PutUint16(buf[2:], 42)
	binary.LittleEndian.PutUint32(buf[4:], headerSize)

	binary.LittleEndian.PutUint16(buf[headerSize:], entryCount)
	entries := buf[headerSize+2:]
	putEntry(entries, 0, tagImageWidth, typeLong, uint32(width))
	putEntry(entries, 1, tagImageLength, typeLong, uint32(height))
	putEntry(entries, 2, tagBitsPerSample, typeShort, uint32(bits))
	putEntry(entries, 3, tagCompression, typeShort, compressionLZW)
	putEntry(entries, 4, tagPhotometric, typeShort, photometricBlackIsZero)
	putEntry(entries, 5, tagStripOffsets, typeLong, dataOffset)
	putEntry(entries, 6, tagSamplesPerPixel, typeShort, 1)
	putEntry(entries, 7, tagRowsPerStrip, typeLong, uint32(height))
	putEntry(entries, 8, tagStripByteCounts, typeLong, uint32(len(strip)))
	putEntry(entries, 9, tagSampleFormat, typeShort, uint32(sampleFormat))
	// Next IFD offset stays zero: single-image file.

	buf = append(buf, strip...)
	_, err := w.Write(buf)
	return err
}

// putEntry fills the i-th 12-byte IFD entry. All fields this writer emits
// have count 1 with the value stored inline.
func putEntry(entries []byte, i int, tag, fieldType uint16, value uint32) {
	offset := i * 12
	binary.LittleEndian.PutUint16(entries[offset:], tag)
	binary.LittleEndian.PutUint16(entries[offset+2:], fieldType)
	binary.LittleEndian.PutUint32(entries[offset+4:], 1)
	if fieldType == typeShort {
		binary.LittleEndian.PutUint16(entries[offset+8:], uint16(value))
		return
	}
	binary.LittleEndian.PutUint32(entries[offset+8:], value)
}
