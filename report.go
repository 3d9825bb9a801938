package keyguard

// Status is the coarse verdict of an assessment.
type Status int

const (
	// StatusSecure means no check found evidence of tampering.
	StatusSecure Status = iota
	// StatusCompromised means at least one check did.
	StatusCompromised
)

// String returns "SECURE" or "COMPROMISED".
func (s Status) String() string {
	if s == StatusSecure {
		return "SECURE"
	}
	return "COMPROMISED"
}

// Finding is the outcome of one check.
type Finding struct {
	Check    string
	Detected bool
}

// Report is the detailed result of Guard.Assess.
type Report struct {
	Status      Status
	Findings    []Finding
	IntegrityOK bool
	Checksum    uint32
}

// Detected returns the names of the checks that reported a positive.
func (r Report) Detected() []string {
	var names []string
	for _, f := range r.Findings {
		if f.Detected {
			names = append(names, f.Check)
		}
	}
	return names
}
