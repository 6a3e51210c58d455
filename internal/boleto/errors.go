package boleto

import "errors"

var (
	ErrMalformedInput   = errors.New("boleto: malformed input")
	ErrChecksumMismatch = errors.New("boleto: checksum mismatch")
	ErrDateOutOfRange   = errors.New("boleto: due date out of range")
	ErrAmountOverflow   = errors.New("boleto: amount exceeds field width")
)

// IsValidation reports whether err was caused by the caller's input rather
// than by the system.
func IsValidation(err error) bool {
	return errors.Is(err, ErrMalformedInput) ||
		errors.Is(err, ErrChecksumMismatch) ||
		errors.Is(err, ErrDateOutOfRange) ||
		errors.Is(err, ErrAmountOverflow)
}
