package tiffio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"golang.org/x/image/tiff/lzw"
)

// The readers below understand exactly the layout the writers emit: one
// little-endian IFD, one LZW strip, one grayscale band. They exist so tools
// and tests can verify written rasters without an external TIFF stack.

type ifd struct {
	width        int
	height       int
	bits         int
	sampleFormat int
	strip        []byte
}

// DecodeGrayFloat32 reads a raster written by EncodeGrayFloat32.
func DecodeGrayFloat32(data []byte) (int, int, []float32, error) {
	parsed, err := parseGray(data)
	if err != nil {
		return 0, 0, nil, err
	}
	if parsed.bits != 32 || parsed.sampleFormat != sampleFormatFloat {
		return 0, 0, nil, fmt.Errorf("tiffio: not a float32 raster (bits=%d format=%d)", parsed.bits, parsed.sampleFormat)
	}
	raw, err := expandStrip(parsed.strip, parsed.width*parsed.height*4)
	if err != nil {
		return 0, 0, nil, err
	}
	pix := make([]float32, parsed.width*parsed.height)
	for i := range pix {
		pix[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return parsed.width, parsed.height, pix, nil
}

// DecodeGray16 reads a raster written by EncodeGray16.
func DecodeGray16(data []byte) (int, int, []uint16, error) {
	parsed, err := parseGray(data)
	if err != nil {
		return 0, 0, nil, err
	}
	if parsed.bits != 16 || parsed.sampleFormat != sampleFormatUint {
		return 0, 0, nil, fmt.Errorf("tiffio: not a uint16 raster (bits=%d format=%d)", parsed.bits, parsed.sampleFormat)
	}
	raw, err := expandStrip(parsed.strip, parsed.width*parsed.height*2)
	if err != nil {
		return 0, 0, nil, err
	}
	pix := make([]uint16, parsed.width*parsed.height)
	for i := range pix {
		pix[i] = binary.LittleEndian.Uint16(raw[i*2:])
	}
	return parsed.width, parsed.height, pix, nil
}

func parseGray(data []byte) (*ifd, error) {
	if len(data) < dataOffset {
		return nil, fmt.Errorf("tiffio: truncated file (%d bytes)", len(data))
	}
	if data[0] != 'I' || data[1] != 'I' || binary.LittleEndian.Uint16(data[2:]) != 42 {
		return nil, fmt.Errorf("tiffio: not a little-endian TIFF header")
	}
	ifdOffset := binary.LittleEndian.Uint32(data[4:])
	if int(ifdOffset)+2 > len(data) {
		return nil, fmt.Errorf("tiffio: IFD offset %d out of range", ifdOffset)
	}
	count := int(binary.LittleEndian.Uint16(data[ifdOffset:]))
	entriesEnd := int(ifdOffset) + 2 + count*12
	if entriesEnd > len(data) {
		return nil, fmt.Errorf("tiffio: IFD with %d entries exceeds file size", count)
	}

	fields := make(map[uint16]uint32, count)
	for i := 0; i < count; i++ {
		entry := data[int(ifdOffset)+2+i*12:]
		tag := binary.LittleEndian.Uint16(entry)
		fieldType := binary.LittleEndian.Uint16(entry[2:])
		if binary.LittleEndian.Uint32(entry[4:]) != 1 {
			continue
		}
		switch fieldType {
		case typeShort:
			fields[tag] = uint32(binary.LittleEndian.Uint16(entry[8:]))
		case typeLong:
			fields[tag] = binary.LittleEndian.Uint32(entry[8:])
		}
	}

	if fields[tagCompression] != compressionLZW {
		return nil, fmt.Errorf("tiffio: unsupported compression %d", fields[tagCompression])
	}
	width := int(fields[tagImageWidth])
	height := int(fields[tagImageLength])
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("tiffio: invalid dimensions %dx%d", width, height)
	}
	stripOffset := int(fields[tagStripOffsets])
	stripLen := int(fields[tagStripByteCounts])
	if stripOffset < 0 || stripLen < 0 || stripOffset+stripLen > len(data) {
		return nil, fmt.Errorf("tiffio: strip [%d:%d] out of range", stripOffset, stripOffset+stripLen)
	}

	return &ifd{
		width:        width,
		height:       height,
		bits:         int(fields[tagBitsPerSample]),
		sampleFormat: int(fields[tagSampleFormat]),
		strip:        data[stripOffset : stripOffset+stripLen],
	}, nil
}

func expandStrip(strip []byte, want int) ([]byte, error) {
	r := lzw.NewReader(bytes.NewReader(strip), lzw.MSB, 8)
	defer r.Close()
	raw := make([]byte, want)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("tiffio: expand strip: %w", err)
	}
	return raw, nil
}
