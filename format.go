package keyguard

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Binary format constants.
const (
	// magic is the 2-byte signature "KG".
	magic = "KG"

	// formatVersion is the current binary format version.
	formatVersion = 0x01

	// algKeystreamXOR identifies XOR with the device keystream.
	algKeystreamXOR = 0x01

	// frameHeaderSize is magic(2) + version(1) + alg(1) + checksum(4).
	frameHeaderSize = 8
)

// header represents the parsed header of an obfuscated payload.
type header struct {
	version   byte
	algorithm byte
	checksum  uint32 // additive checksum of the plaintext
}

// writeHeader writes the binary header to w.
func writeHeader(w io.Writer, h *header) error {
	var buf [frameHeaderSize]byte
	copy(buf[0:2], magic)
	buf[2] = h.version
	buf[3] = h.algorithm
	binary.BigEndian.PutUint32(buf[4:8], h.checksum)
	_, err := w.Write(buf[:])
	return err
}

// readHeader parses the binary header from data, returning the header and the payload.
func readHeader(data []byte) (*header, []byte, error) {
	if len(data) < frameHeaderSize {
		return nil, nil, fmt.Errorf("%w: data too short", ErrInvalidFormat)
	}

	if string(data[0:2]) != magic {
		return nil, nil, fmt.Errorf("%w: invalid magic bytes", ErrInvalidFormat)
	}

	h := &header{
		version:   data[2],
		algorithm: data[3],
		checksum:  binary.BigEndian.Uint32(data[4:8]),
	}

	if h.version != formatVersion {
		return nil, nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidFormat, h.version)
	}
	if h.algorithm != algKeystreamXOR {
		return nil, nil, fmt.Errorf("%w: unsupported algorithm %d", ErrInvalidFormat, h.algorithm)
	}

	return h, data[frameHeaderSize:], nil
}
