package keyguard

import (
	"fmt"

	"github.com/awnumar/memguard"
)

// Fragment table layout.
const (
	// FragmentCount is the number of fragments in a table.
	FragmentCount = 3

	// FragmentSize is the stored size of one fragment in bytes.
	FragmentSize = 64

	// FragmentSpan is the number of leading bytes of a fragment that carry content.
	FragmentSpan = 32

	// printableMin and printableMax bound the bytes kept after decryption.
	printableMin = 32
	printableMax = 126
)

// Table holds the obfuscated fragments of a secret. A zero byte inside the
// span is padding.
type Table [FragmentCount][FragmentSize]byte

// defaultTable is compiled into the binary and never written.
var defaultTable = Table{
	{
		0x1A, 0x2B, 0x3C, 0x4D, 0x5E, 0x6F, 0x70, 0x81, 0x92, 0xA3, 0xB4, 0xC5, 0xD6, 0xE7, 0xF8, 0x09,
		0x0A, 0x1B, 0x2C, 0x3D, 0x4E, 0x5F, 0x60, 0x71, 0x82, 0x93, 0xA4, 0xB5, 0xC6, 0xD7, 0xE8, 0xF9,
	},
	{
		0x2B, 0x3C, 0x4D, 0x5E, 0x6F, 0x70, 0x81, 0x92, 0xA3, 0xB4, 0xC5, 0xD6, 0xE7, 0xF8, 0x09, 0x0A,
		0x1B, 0x2C, 0x3D, 0x4E, 0x5F, 0x60, 0x71, 0x82, 0x93, 0xA4, 0xB5, 0xC6, 0xD7, 0xE8, 0xF9, 0x1A,
	},
	{
		0x3C, 0x4D, 0x5E, 0x6F, 0x70, 0x81, 0x92, 0xA3, 0xB4, 0xC5, 0xD6, 0xE7, 0xF8, 0x09, 0x0A, 0x1B,
		0x2C, 0x3D, 0x4E, 0x5F, 0x60, 0x71, 0x82, 0x93, 0xA4, 0xB5, 0xC6, 0xD7, 0xE8, 0xF9, 0x1A, 0x2B,
	},
}

// DefaultTable returns a copy of the fragment table compiled into the binary.
func DefaultTable() Table {
	return defaultTable
}

// DecryptFragment decrypts fragment index of the default table with the
// keystream of deviceID. Invalid input yields an empty string.
func DecryptFragment(index int, deviceID string) string {
	s, err := defaultTable.DecryptFragment(index, deviceID)
	if err != nil {
		return ""
	}
	return s
}

// DecryptFragment reverses the obfuscation of one fragment. Zero bytes are
// skipped as padding and decrypted bytes outside printable ASCII are dropped,
// so the result is lossy when the table was built for another device.
func (t *Table) DecryptFragment(index int, deviceID string) (string, error) {
	b, err := t.appendFragment(make([]byte, 0, FragmentSpan), index, deviceID)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Assemble decrypts every fragment in index order and concatenates the results.
func (t *Table) Assemble(deviceID string) (string, error) {
	b, err := t.assemble(deviceID)
	if err != nil {
		return "", err
	}
	defer memguard.WipeBytes(b)
	return string(b), nil
}

// assemble is Assemble without the string copy. The caller owns the result.
func (t *Table) assemble(deviceID string) ([]byte, error) {
	if deviceID == "" {
		return nil, ErrEmptyDeviceID
	}
	out := make([]byte, 0, FragmentCount*FragmentSpan)
	for i := 0; i < FragmentCount; i++ {
		var err error
		if out, err = t.appendFragment(out, i, deviceID); err != nil {
			memguard.WipeBytes(out)
			return nil, err
		}
	}
	return out, nil
}

func (t *Table) appendFragment(dst []byte, index int, deviceID string) ([]byte, error) {
	if index < 0 || index >= FragmentCount {
		return dst, fmt.Errorf("%w: %d", ErrInvalidFragmentIndex, index)
	}
	if deviceID == "" {
		return dst, ErrEmptyDeviceID
	}

	var ks [FragmentSize]byte
	deriveKeystream(ks[:], deviceID)
	defer memguard.WipeBytes(ks[:])

	fragment := &t[index]
	for i := 0; i < FragmentSpan; i++ {
		if fragment[i] == 0 {
			continue
		}
		b := fragment[i] ^ ks[i]
		if b >= printableMin && b <= printableMax {
			dst = append(dst, b)
		}
	}
	return dst, nil
}
