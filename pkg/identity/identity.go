// Package identity provides the public-key identity primitives of the arc
// trust kernel: Ed25519 keys and signatures, display fingerprints, and the
// loopback sentinel identity.
package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"filippo.io/edwards25519"
	base32 "github.com/multiformats/go-base32"
)

const (
	// PublicKeySize is the size of a public key in bytes.
	PublicKeySize = 32
	// SignatureSize is the size of a signature in bytes.
	SignatureSize = 64
	// SeedSize is the size of a signing key seed in bytes.
	SeedSize = 32
)

// PublicKey is a 32-byte Ed25519 public key. It is the canonical identity of
// an actor and is compared by byte equality. Zero value is Loopback.
type PublicKey [PublicKeySize]byte

// Signature is a 64-byte Ed25519 signature.
type Signature [SignatureSize]byte

// Loopback is the all-zero sentinel identity representing the local operator.
// It never appears as the remote party of a connection and never verifies a
// signature; callers map it to the highest capability tier.
var Loopback PublicKey

var (
	// ErrBadSignature indicates a signature did not verify for the message.
	ErrBadSignature = errors.New("signature verification failed")
	// ErrInvalidKey indicates a key that is not a valid curve point, or Loopback.
	ErrInvalidKey = errors.New("invalid public key")
	// ErrInvalidSeed indicates a seed of the wrong length.
	ErrInvalidSeed = errors.New("invalid seed length")
	// ErrInvalidEncoding indicates an invalid encoded key or signature.
	ErrInvalidEncoding = errors.New("invalid encoding")
)

// SigningKey holds an Ed25519 private key. The private half is reachable only
// through Seed; SigningKey is always handled by pointer so it is not copied
// incidentally.
type SigningKey struct {
	priv ed25519.PrivateKey
	pub  PublicKey
}

// Generate creates a new random signing key.
func Generate() (*SigningKey, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	k := &SigningKey{priv: priv}
	copy(k.pub[:], pub)
	return k, nil
}

// FromSeed reconstructs a signing key from a 32-byte seed.
func FromSeed(seed []byte) (*SigningKey, error) {
	if len(seed) != SeedSize {
		return nil, ErrInvalidSeed
	}
	priv := ed25519.NewKeyFromSeed(seed)
	pub, _ := priv.Public().(ed25519.PublicKey)
	k := &SigningKey{priv: priv}
	copy(k.pub[:], pub)
	return k, nil
}

// PublicKey returns the public half of the key.
func (k *SigningKey) PublicKey() PublicKey {
	return k.pub
}

// Seed returns the 32-byte seed for this key.
func (k *SigningKey) Seed() []byte {
	return k.priv.Seed()
}

// Sign signs a message.
func (k *SigningKey) Sign(msg []byte) Signature {
	var sig Signature
	copy(sig[:], ed25519.Sign(k.priv, msg))
	return sig
}

// Verify checks sig over msg under pk. It returns ErrInvalidKey for Loopback
// or a key that is not a valid curve point, and ErrBadSignature on mismatch.
// It never panics, whatever the inputs.
func Verify(pk PublicKey, msg []byte, sig Signature) error {
	if IsLoopback(pk) {
		return fmt.Errorf("%w: loopback cannot sign", ErrInvalidKey)
	}
	if _, err := new(edwards25519.Point).SetBytes(pk[:]); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	if !ed25519.Verify(ed25519.PublicKey(pk[:]), msg, sig[:]) {
		return ErrBadSignature
	}
	return nil
}

// IsLoopback reports whether pk is the loopback sentinel.
func IsLoopback(pk PublicKey) bool {
	return pk == Loopback
}

const fingerprintPrefix = "at"

var fingerprintEncoding = base32.NewEncodingCI("abcdefghijklmnopqrstuvwxyz234567").WithPadding(base32.NoPadding)

// Fingerprint derives a short human-readable handle for a key: a fixed
// prefix plus the first 8 characters of the lowercase base32 key encoding.
// At 40 bits, collisions across distinct keys are possible; fingerprints are
// display-only and must never drive lookup or authorization.
func Fingerprint(pk PublicKey) string {
	return fingerprintPrefix + fingerprintEncoding.EncodeToString(pk[:])[:8]
}

// EncodePublicKey encodes a public key as lowercase hex.
func EncodePublicKey(pk PublicKey) string {
	return hex.EncodeToString(pk[:])
}

// DecodePublicKey decodes a public key from hex.
func DecodePublicKey(s string) (PublicKey, error) {
	var pk PublicKey
	raw, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil || len(raw) != PublicKeySize {
		return pk, ErrInvalidEncoding
	}
	copy(pk[:], raw)
	return pk, nil
}

// EncodeSignature encodes a signature as lowercase hex.
func EncodeSignature(sig Signature) string {
	return hex.EncodeToString(sig[:])
}

// DecodeSignature decodes a signature from hex.
func DecodeSignature(s string) (Signature, error) {
	var sig Signature
	raw, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil || len(raw) != SignatureSize {
		return sig, ErrInvalidEncoding
	}
	copy(sig[:], raw)
	return sig, nil
}
