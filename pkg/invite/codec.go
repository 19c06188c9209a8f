package invite

import (
	"encoding/binary"
	"fmt"
	"strings"

	base32 "github.com/multiformats/go-base32"

	"github.com/gezibash/arc-trust/pkg/access"
	"github.com/gezibash/arc-trust/pkg/identity"
)

// Wire format, fixed width throughout:
//
//	version(1) instance(32) link-count(1)
//	per link: issuer(32) capability(1) max-depth(1) max-uses(4)
//	          expires-at(8) nonce(16) signature(64)
//
// Integers are big-endian. Invite bytes arrive from untrusted peers, so
// every read below is bounds-checked and decoding returns an error rather
// than panicking on any input.
const (
	headerSize     = 1 + identity.PublicKeySize + 1
	linkFieldsSize = identity.PublicKeySize + 1 + 1 + 4 + 8 + 16
	linkSize       = linkFieldsSize + identity.SignatureSize
)

// Bytes encodes the invite in the fixed-width binary format.
func (inv *Invite) Bytes() []byte {
	out := make([]byte, 0, headerSize+len(inv.Links)*linkSize)
	out = append(out, inv.Version)
	out = append(out, inv.Instance[:]...)
	out = append(out, byte(len(inv.Links)))
	for i := range inv.Links {
		out = append(out, encodeLink(&inv.Links[i])...)
	}
	return out
}

func encodeLink(l *Link) []byte {
	out := make([]byte, 0, linkSize)
	out = append(out, encodeLinkFields(l)...)
	out = append(out, l.Sig[:]...)
	return out
}

func encodeLinkFields(l *Link) []byte {
	out := make([]byte, 0, linkFieldsSize)
	out = append(out, l.Issuer[:]...)
	out = append(out, byte(l.Capability), l.MaxDepth)
	out = binary.BigEndian.AppendUint32(out, l.MaxUses)
	out = binary.BigEndian.AppendUint64(out, uint64(l.ExpiresAt))
	out = append(out, l.Nonce[:]...)
	return out
}

// FromBytes decodes an invite from untrusted bytes. The chain length cap is
// enforced before the link slice is allocated.
func FromBytes(data []byte) (*Invite, error) {
	if len(data) < headerSize {
		return nil, ErrTruncated
	}
	if data[0] != Version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, data[0])
	}

	inv := &Invite{Version: data[0]}
	copy(inv.Instance[:], data[1:1+identity.PublicKeySize])

	count := int(data[headerSize-1])
	if count == 0 {
		return nil, ErrEmptyChain
	}
	if count > MaxChainLength {
		return nil, fmt.Errorf("%w: %d links", ErrChainTooLong, count)
	}

	rest := data[headerSize:]
	if len(rest) < count*linkSize {
		return nil, ErrTruncated
	}
	if len(rest) > count*linkSize {
		return nil, ErrTrailingData
	}

	inv.Links = make([]Link, count)
	for i := range inv.Links {
		decodeLink(&inv.Links[i], rest[i*linkSize:(i+1)*linkSize])
		if !inv.Links[i].Capability.Valid() {
			return nil, &LinkError{Index: i, Cause: ErrBadCapability}
		}
	}
	return inv, nil
}

func decodeLink(l *Link, data []byte) {
	copy(l.Issuer[:], data[:identity.PublicKeySize])
	data = data[identity.PublicKeySize:]
	l.Capability = access.Capability(data[0])
	l.MaxDepth = data[1]
	l.MaxUses = binary.BigEndian.Uint32(data[2:6])
	l.ExpiresAt = int64(binary.BigEndian.Uint64(data[6:14]))
	copy(l.Nonce[:], data[14:30])
	copy(l.Sig[:], data[30:])
}

// textEncoding is lowercase unpadded base32 with a human alphabet; decoding
// is case-insensitive so invites survive transcription.
var textEncoding = base32.NewEncodingCI("abcdefghijklmnopqrstuvwxyz234567").WithPadding(base32.NoPadding)

// String encodes the invite for out-of-band sharing.
func (inv *Invite) String() string {
	return textEncoding.EncodeToString(inv.Bytes())
}

// Parse decodes an invite from its base32 form.
func Parse(s string) (*Invite, error) {
	raw, err := textEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	return FromBytes(raw)
}
