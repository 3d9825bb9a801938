package keyguard

import (
	"bytes"
	"fmt"

	"github.com/awnumar/memguard"
)

// obfuscate frames plaintext and XORs it with the keystream of deviceID.
func obfuscate(plaintext []byte, deviceID string) ([]byte, error) {
	if deviceID == "" {
		return nil, ErrEmptyDeviceID
	}

	h := &header{
		version:   formatVersion,
		algorithm: algKeystreamXOR,
		checksum:  checksum(plaintext),
	}

	var buf bytes.Buffer
	buf.Grow(frameHeaderSize + len(plaintext))
	if err := writeHeader(&buf, h); err != nil {
		return nil, fmt.Errorf("keyguard: failed to write header: %w", err)
	}

	payload := make([]byte, len(plaintext))
	deriveKeystream(payload, deviceID)
	for i := range payload {
		payload[i] ^= plaintext[i]
	}
	buf.Write(payload)

	return buf.Bytes(), nil
}

// deobfuscate reverses obfuscate. A checksum mismatch means the data was
// produced for a different device identifier or was altered.
func deobfuscate(data []byte, deviceID string) ([]byte, error) {
	if deviceID == "" {
		return nil, ErrEmptyDeviceID
	}

	h, payload, err := readHeader(data)
	if err != nil {
		return nil, err
	}

	plaintext := make([]byte, len(payload))
	deriveKeystream(plaintext, deviceID)
	for i := range plaintext {
		plaintext[i] ^= payload[i]
	}

	if checksum(plaintext) != h.checksum {
		memguard.WipeBytes(plaintext)
		return nil, fmt.Errorf("%w: checksum mismatch", ErrDeviceMismatch)
	}
	return plaintext, nil
}
