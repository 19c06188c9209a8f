package invite

import (
	"errors"
	"fmt"
)

var (
	// ErrTruncated indicates bytes that do not contain a whole invite.
	ErrTruncated = errors.New("truncated invite")
	// ErrTrailingData indicates bytes beyond the end of the encoded chain.
	ErrTrailingData = errors.New("trailing data after invite")
	// ErrVersion indicates an unsupported wire format version.
	ErrVersion = errors.New("unsupported invite version")
	// ErrEmptyChain indicates a chain with no links.
	ErrEmptyChain = errors.New("empty delegation chain")
	// ErrChainTooLong indicates a chain beyond MaxChainLength links.
	ErrChainTooLong = errors.New("delegation chain too long")
	// ErrBadCapability indicates a capability outside the four presets.
	ErrBadCapability = errors.New("invalid capability")
	// ErrEscalation indicates a link claiming more capability than its parent.
	ErrEscalation = errors.New("capability exceeds parent grant")
	// ErrDepthExhausted indicates delegation from a link with no remaining depth.
	ErrDepthExhausted = errors.New("delegation depth exhausted")
	// ErrDepthViolation indicates a link whose depth does not strictly decrease.
	ErrDepthViolation = errors.New("delegation depth does not decrease")
	// ErrExpiredLink indicates a link past its expiry.
	ErrExpiredLink = errors.New("invite link expired")
	// ErrBadLinkSignature indicates a link whose chained signature does not verify.
	ErrBadLinkSignature = errors.New("invalid link signature")
	// ErrInvalidEncoding indicates a string that is not valid invite base32.
	ErrInvalidEncoding = errors.New("invalid invite encoding")
)

// LinkError reports which link of a chain broke which verification rule.
type LinkError struct {
	Index int
	Cause error
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("link %d: %s", e.Index, e.Cause)
}

func (e *LinkError) Unwrap() error {
	return e.Cause
}
