// Package proof implements self-issued identity proofs: signed assertions
// that the holder of a key claims membership of (or linkage to) a given
// instance context. Proofs reuse the invite machinery's conventions: a
// fixed-width binary form wrapped in case-insensitive base32, decoded
// defensively because proofs travel between instances.
package proof

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	base32 "github.com/multiformats/go-base32"

	"github.com/gezibash/arc-trust/pkg/identity"
)

// Version is the wire format version this package produces.
const Version = 1

const proofDomain = "arc-trust/proof/v1\n"

// encodedSize: version(1) subject(32) context(32) issued-at(8) nonce(16) sig(64).
const encodedSize = 1 + identity.PublicKeySize + identity.PublicKeySize + 8 + 16 + identity.SignatureSize

var (
	// ErrTruncated indicates bytes that are not exactly one encoded proof.
	ErrTruncated = errors.New("malformed proof bytes")
	// ErrVersion indicates an unsupported proof version.
	ErrVersion = errors.New("unsupported proof version")
	// ErrInvalidEncoding indicates a string that is not valid proof base32.
	ErrInvalidEncoding = errors.New("invalid proof encoding")
)

// Proof links a subject key to an instance context, signed by the subject.
type Proof struct {
	Version  byte
	Subject  identity.PublicKey
	Context  identity.PublicKey
	IssuedAt int64
	Nonce    [16]byte
	Sig      identity.Signature
}

// New issues a proof binding sk's public key to the given context.
func New(sk *identity.SigningKey, context identity.PublicKey, issuedAt time.Time) Proof {
	p := Proof{
		Version:  Version,
		Subject:  sk.PublicKey(),
		Context:  context,
		IssuedAt: issuedAt.Unix(),
		Nonce:    [16]byte(uuid.New()),
	}
	p.Sig = sk.Sign(p.signingMessage())
	return p
}

// Verify checks the self-signature. A valid proof shows only that the
// subject key endorsed the linkage; whether the context honors it is the
// caller's decision against its own grants.
func (p *Proof) Verify() error {
	if p.Version != Version {
		return ErrVersion
	}
	if err := identity.Verify(p.Subject, p.signingMessage(), p.Sig); err != nil {
		return fmt.Errorf("proof: %w", err)
	}
	return nil
}

func (p *Proof) signingMessage() []byte {
	msg := make([]byte, 0, len(proofDomain)+encodedSize-identity.SignatureSize)
	msg = append(msg, proofDomain...)
	msg = append(msg, p.Version)
	msg = append(msg, p.Subject[:]...)
	msg = append(msg, p.Context[:]...)
	msg = binary.BigEndian.AppendUint64(msg, uint64(p.IssuedAt))
	msg = append(msg, p.Nonce[:]...)
	return msg
}

// Bytes encodes the proof in its fixed-width binary form.
func (p *Proof) Bytes() []byte {
	out := make([]byte, 0, encodedSize)
	out = append(out, p.Version)
	out = append(out, p.Subject[:]...)
	out = append(out, p.Context[:]...)
	out = binary.BigEndian.AppendUint64(out, uint64(p.IssuedAt))
	out = append(out, p.Nonce[:]...)
	out = append(out, p.Sig[:]...)
	return out
}

// FromBytes decodes a proof from untrusted bytes, never panicking.
func FromBytes(data []byte) (*Proof, error) {
	if len(data) != encodedSize {
		return nil, ErrTruncated
	}
	if data[0] != Version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, data[0])
	}
	p := &Proof{Version: data[0]}
	data = data[1:]
	copy(p.Subject[:], data[:identity.PublicKeySize])
	data = data[identity.PublicKeySize:]
	copy(p.Context[:], data[:identity.PublicKeySize])
	data = data[identity.PublicKeySize:]
	p.IssuedAt = int64(binary.BigEndian.Uint64(data[:8]))
	copy(p.Nonce[:], data[8:24])
	copy(p.Sig[:], data[24:])
	return p, nil
}

var textEncoding = base32.NewEncodingCI("abcdefghijklmnopqrstuvwxyz234567").WithPadding(base32.NoPadding)

// String encodes the proof for out-of-band sharing.
func (p *Proof) String() string {
	return textEncoding.EncodeToString(p.Bytes())
}

// Parse decodes a proof from its base32 form.
func Parse(s string) (*Proof, error) {
	raw, err := textEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	return FromBytes(raw)
}
