package keyguard

// keystreamSalt is added to the byte position before mixing it into the keystream.
const keystreamSalt = 0x5A

// DeriveKeystream returns length bytes derived from deviceID. Byte i is
// deviceID[i mod len(deviceID)] XOR byte(i+0x5A). The result is deterministic
// and provides obfuscation only.
//
// It returns nil when deviceID is empty or length is not positive; callers
// must treat that as "derivation skipped".
func DeriveKeystream(deviceID string, length int) []byte {
	if length <= 0 || deviceID == "" {
		return nil
	}
	ks := make([]byte, length)
	deriveKeystream(ks, deviceID)
	return ks
}

// deriveKeystream fills dst in place. dst is left untouched and false is
// returned when there is nothing to derive from.
func deriveKeystream(dst []byte, deviceID string) bool {
	if len(dst) == 0 || deviceID == "" {
		return false
	}
	n := len(deviceID)
	for i := range dst {
		dst[i] = deviceID[i%n] ^ byte(i+keystreamSalt)
	}
	return true
}
