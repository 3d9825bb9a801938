package keyguard

import "errors"

var (
	// ErrInvalidFragmentIndex is returned when a fragment index is outside [0, FragmentCount).
	ErrInvalidFragmentIndex = errors.New("keyguard: invalid fragment index")

	// ErrEmptyDeviceID is returned when no device identifier is available.
	ErrEmptyDeviceID = errors.New("keyguard: empty device identifier")

	// ErrDebuggerDetected is returned when a tracer is attached to the process.
	ErrDebuggerDetected = errors.New("keyguard: debugger detected")

	// ErrAnalysisToolDetected is returned when a known instrumentation tool is installed.
	ErrAnalysisToolDetected = errors.New("keyguard: analysis tool detected")

	// ErrRootDetected is returned when root indicators are found and the root check is enabled.
	ErrRootDetected = errors.New("keyguard: root indicators detected")

	// ErrEmulatorDetected is returned when emulator indicators are found and the emulator check is enabled.
	ErrEmulatorDetected = errors.New("keyguard: emulator detected")

	// ErrSecretTooLong is returned when a secret does not fit in the fragment table.
	ErrSecretTooLong = errors.New("keyguard: secret too long")

	// ErrSecretNotPrintable is returned when a secret contains bytes outside printable ASCII.
	ErrSecretNotPrintable = errors.New("keyguard: secret is not printable ASCII")

	// ErrUnencodableByte is returned when an obfuscated byte would collide with padding.
	ErrUnencodableByte = errors.New("keyguard: secret byte cannot be encoded for this device")

	// ErrInvalidFormat is returned when obfuscated codec data has an invalid format.
	ErrInvalidFormat = errors.New("keyguard: invalid obfuscated data format")

	// ErrDeviceMismatch is returned when codec data was obfuscated for another device.
	ErrDeviceMismatch = errors.New("keyguard: data does not belong to this device")

	// ErrInvalidSettings is returned when settings cannot be applied.
	ErrInvalidSettings = errors.New("keyguard: invalid settings")
)

// IsInvalidFragmentIndex returns true if the error is or wraps ErrInvalidFragmentIndex.
func IsInvalidFragmentIndex(err error) bool {
	return errors.Is(err, ErrInvalidFragmentIndex)
}

// IsEmptyDeviceID returns true if the error is or wraps ErrEmptyDeviceID.
func IsEmptyDeviceID(err error) bool {
	return errors.Is(err, ErrEmptyDeviceID)
}

// IsEnvironmentCompromised returns true if the error reports a positive environment check.
func IsEnvironmentCompromised(err error) bool {
	return errors.Is(err, ErrDebuggerDetected) ||
		errors.Is(err, ErrAnalysisToolDetected) ||
		errors.Is(err, ErrRootDetected) ||
		errors.Is(err, ErrEmulatorDetected)
}

// IsInvalidFormat returns true if the error is or wraps ErrInvalidFormat.
func IsInvalidFormat(err error) bool {
	return errors.Is(err, ErrInvalidFormat)
}

// IsDeviceMismatch returns true if the error is or wraps ErrDeviceMismatch.
func IsDeviceMismatch(err error) bool {
	return errors.Is(err, ErrDeviceMismatch)
}
