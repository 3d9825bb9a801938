package keyguard

import (
	"fmt"

	"github.com/awnumar/memguard"
)

// EncodeTable builds a fragment table that decrypts to secret for deviceID.
// The secret must be printable ASCII and at most FragmentCount*FragmentSpan
// bytes long. It is split into consecutive FragmentSpan-sized chunks; unused
// positions stay zero and read back as padding.
//
// Every secret byte that XORs to zero with the keystream would be read as
// padding, so such secrets return ErrUnencodableByte for that device.
func EncodeTable(secret, deviceID string) (Table, error) {
	var t Table
	if deviceID == "" {
		return t, ErrEmptyDeviceID
	}
	if len(secret) > FragmentCount*FragmentSpan {
		return t, fmt.Errorf("%w: %d bytes, max %d", ErrSecretTooLong, len(secret), FragmentCount*FragmentSpan)
	}

	var ks [FragmentSize]byte
	deriveKeystream(ks[:], deviceID)
	defer memguard.WipeBytes(ks[:])

	for pos := 0; pos < len(secret); pos++ {
		c := secret[pos]
		if c < printableMin || c > printableMax {
			return Table{}, fmt.Errorf("%w: byte %d", ErrSecretNotPrintable, pos)
		}
		i := pos % FragmentSpan
		b := c ^ ks[i]
		if b == 0 {
			return Table{}, fmt.Errorf("%w: position %d", ErrUnencodableByte, pos)
		}
		t[pos/FragmentSpan][i] = b
	}
	return t, nil
}
