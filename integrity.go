package keyguard

// ExpectedChecksum is the checksum of the default table. It must be updated
// whenever the compiled fragments change.
const ExpectedChecksum uint32 = 0x2FD0

// Checksum sums the content span of every fragment. It detects edits to the
// table itself and nothing else in the binary.
func (t *Table) Checksum() uint32 {
	var sum uint32
	for i := range t {
		sum += checksum(t[i][:FragmentSpan])
	}
	return sum
}

// VerifyIntegrity reports whether the table checksum equals expected.
func (t *Table) VerifyIntegrity(expected uint32) bool {
	return t.Checksum() == expected
}

// checksum is the additive byte sum shared by the table and the codec frame.
func checksum(b []byte) uint32 {
	var sum uint32
	for _, v := range b {
		sum += uint32(v)
	}
	return sum
}
