// Package invite implements delegation-chain invites: self-contained,
// offline-verifiable capability grants whose links are cryptographically
// chained from a root issuer down to a leaf.
//
// Each link authorizes the next under two monotonicity rules: capability
// never increases and remaining delegation depth strictly decreases. A flat
// invite is the degenerate one-link chain with no remaining depth.
// Verification is stateless; use counts and issuer grant validity live in
// external state and are checked by the caller at redemption time.
package invite

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"github.com/gezibash/arc-trust/pkg/access"
	"github.com/gezibash/arc-trust/pkg/identity"
)

const (
	// Version is the wire format version this package produces.
	Version = 1

	// MaxChainLength bounds delegation depth instance-wide, independent of
	// per-chain MaxDepth, so that adversarial chains cannot inflate
	// verification cost or allocation. Checked before any allocation.
	MaxChainLength = 8
)

// Link is one hop of a delegation chain. Its signature covers the hash of
// the previous link (an all-zero placeholder hash for the root), the
// instance identity, and the link's own fields.
type Link struct {
	Issuer     identity.PublicKey
	Capability access.Capability
	MaxDepth   uint8
	MaxUses    uint32
	ExpiresAt  int64 // unix seconds, 0 = no expiry
	Nonce      [16]byte
	Sig        identity.Signature
}

// Invite is an ordered chain of links from root to leaf, bound to one
// instance identity.
type Invite struct {
	Version  byte
	Instance identity.PublicKey
	Links    []Link
}

// Claims is the verified content of an invite.
type Claims struct {
	Instance   identity.PublicKey
	Capability access.Capability
	RootIssuer identity.PublicKey
	LeafIssuer identity.PublicKey
	Depth      int
	Nonce      [16]byte
}

// Leaf returns the last link of the chain.
func (inv *Invite) Leaf() *Link {
	return &inv.Links[len(inv.Links)-1]
}

// Create builds a new root invite with the given remaining delegation
// depth. maxUses and expiry are carried for the caller's redemption checks;
// expiresAt of zero means no expiry.
func Create(sk *identity.SigningKey, instance identity.PublicKey, c access.Capability, maxDepth uint8, maxUses uint32, expiresAt int64) (*Invite, error) {
	if !c.Valid() {
		return nil, ErrBadCapability
	}
	if int(maxDepth) >= MaxChainLength {
		return nil, ErrChainTooLong
	}
	link := Link{
		Issuer:     sk.PublicKey(),
		Capability: c,
		MaxDepth:   maxDepth,
		MaxUses:    maxUses,
		ExpiresAt:  expiresAt,
		Nonce:      [16]byte(uuid.New()),
	}
	link.Sig = sk.Sign(signingMessage(zeroHash(), instance, &link))
	return &Invite{Version: Version, Instance: instance, Links: []Link{link}}, nil
}

// CreateFlat builds a non-delegable single-link invite.
func CreateFlat(sk *identity.SigningKey, instance identity.PublicKey, c access.Capability, maxUses uint32, expiresAt int64) (*Invite, error) {
	return Create(sk, instance, c, 0, maxUses, expiresAt)
}

// Delegate appends a link to parent, narrowing authority. It rejects a
// capability greater than the parent leaf's and a parent with no remaining
// depth at construction time, not only at verification. The parent is not
// modified.
func Delegate(parent *Invite, sk *identity.SigningKey, c access.Capability, maxUses uint32, expiresAt int64) (*Invite, error) {
	if !c.Valid() {
		return nil, ErrBadCapability
	}
	if len(parent.Links) == 0 {
		return nil, ErrEmptyChain
	}
	leaf := parent.Leaf()
	if c > leaf.Capability {
		return nil, ErrEscalation
	}
	if leaf.MaxDepth == 0 {
		return nil, ErrDepthExhausted
	}
	if len(parent.Links)+1 > MaxChainLength {
		return nil, ErrChainTooLong
	}

	link := Link{
		Issuer:     sk.PublicKey(),
		Capability: c,
		MaxDepth:   leaf.MaxDepth - 1,
		MaxUses:    maxUses,
		ExpiresAt:  expiresAt,
		Nonce:      [16]byte(uuid.New()),
	}
	link.Sig = sk.Sign(signingMessage(linkHash(leaf), parent.Instance, &link))

	links := make([]Link, len(parent.Links), len(parent.Links)+1)
	copy(links, parent.Links)
	return &Invite{
		Version:  parent.Version,
		Instance: parent.Instance,
		Links:    append(links, link),
	}, nil
}

// Verify walks the chain root to leaf, checking per link: the signature
// over the previous link's hash, capability narrowing, strictly decreasing
// depth, and expiry against now. On failure it returns a *LinkError naming
// the offending link and rule. Verification is pure and stateless: the same
// bytes verify the same way every time.
func (inv *Invite) Verify(now time.Time) (Claims, error) {
	if inv.Version != Version {
		return Claims{}, ErrVersion
	}
	if len(inv.Links) == 0 {
		return Claims{}, ErrEmptyChain
	}
	if len(inv.Links) > MaxChainLength {
		return Claims{}, ErrChainTooLong
	}

	prevHash := zeroHash()
	for i := range inv.Links {
		link := &inv.Links[i]

		if err := identity.Verify(link.Issuer, signingMessage(prevHash, inv.Instance, link), link.Sig); err != nil {
			return Claims{}, &LinkError{Index: i, Cause: ErrBadLinkSignature}
		}
		if i > 0 {
			prev := &inv.Links[i-1]
			if link.Capability > prev.Capability {
				return Claims{}, &LinkError{Index: i, Cause: ErrEscalation}
			}
			if link.MaxDepth >= prev.MaxDepth {
				return Claims{}, &LinkError{Index: i, Cause: ErrDepthViolation}
			}
		}
		if link.ExpiresAt != 0 && now.Unix() > link.ExpiresAt {
			return Claims{}, &LinkError{Index: i, Cause: ErrExpiredLink}
		}

		prevHash = linkHash(link)
	}

	leaf := inv.Leaf()
	return Claims{
		Instance:   inv.Instance,
		Capability: leaf.Capability,
		RootIssuer: inv.Links[0].Issuer,
		LeafIssuer: leaf.Issuer,
		Depth:      len(inv.Links),
		Nonce:      leaf.Nonce,
	}, nil
}

func zeroHash() [32]byte {
	var zero [identity.PublicKeySize]byte
	return blake2b.Sum256(zero[:])
}

func linkHash(l *Link) [32]byte {
	return blake2b.Sum256(encodeLink(l))
}

// signingMessage is hash(previous link) ++ instance ++ the link's own
// fields (everything but the signature).
func signingMessage(prevHash [32]byte, instance identity.PublicKey, l *Link) []byte {
	msg := make([]byte, 0, 32+identity.PublicKeySize+linkFieldsSize)
	msg = append(msg, prevHash[:]...)
	msg = append(msg, instance[:]...)
	msg = append(msg, encodeLinkFields(l)...)
	return msg
}
