package object

import (
	"bytes"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Compression selects how encoded objects are written to a Backend.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionZstd Compression = "zstd"
)

// ParseCompression maps a config value to a Compression. The empty string
// means CompressionNone.
func ParseCompression(s string) (Compression, error) {
	switch Compression(s) {
	case "", CompressionNone:
		return CompressionNone, nil
	case CompressionZstd:
		return CompressionZstd, nil
	default:
		return "", fmt.Errorf("unknown compression %q", s)
	}
}

// zstdMagic starts every zstd frame. Encoded objects begin with an ASCII
// type tag, so the two forms can never be confused.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

func isZstdFrame(data []byte) bool {
	return bytes.HasPrefix(data, zstdMagic)
}

// compressZstd compresses data using zstd.
func compressZstd(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}

// decompressZstd decompresses zstd-compressed data.
func decompressZstd(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}
