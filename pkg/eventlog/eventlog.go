// Package eventlog implements the hash-chained, checkpointed audit record
// of the arc trust kernel.
//
// Every change to authority is appended as an Event whose hash covers all
// of its fields plus the previous event's hash; the genesis event chains to
// a hash of the instance identity. The package is pure computation: it
// builds and verifies chains but stores nothing, and the caller must
// serialize appends per instance since each hash depends on the exact
// previous event.
package eventlog

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/gezibash/arc-trust/pkg/identity"
)

// Event type tags. The payload schema for each lives in payload.go.
const (
	TypeMemberInvited    = "member.invited"
	TypeMemberActivated  = "member.activated"
	TypeMemberSuspended  = "member.suspended"
	TypeMemberReinstated = "member.reinstated"
	TypeMemberRemoved    = "member.removed"
	TypeMemberReplaced   = "member.replaced"
	TypeGrantChanged     = "grant.changed"
	TypeInviteCreated    = "invite.created"
	TypeInviteRevoked    = "invite.revoked"
)

// HashSize is the size of a chain hash in bytes.
const HashSize = 32

// Event is one append-only audit record. Events are never mutated or
// deleted; a store asked to do either must refuse.
type Event struct {
	ID        uint64
	PrevHash  [HashSize]byte
	Type      string
	Actor     *identity.PublicKey
	Target    *identity.PublicKey
	Payload   []byte
	Timestamp int64
	Hash      [HashSize]byte
}

// GenesisPrev is the prev-hash the first event of an instance chains to.
func GenesisPrev(instance identity.PublicKey) [HashSize]byte {
	return blake2b.Sum256(instance[:])
}

// ComputeHash recomputes the event hash from all other fields.
func (e *Event) ComputeHash() [HashSize]byte {
	h, _ := blake2b.New256(nil)

	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], e.ID)
	h.Write(buf[:])
	h.Write(e.PrevHash[:])

	binary.BigEndian.PutUint64(buf[:], uint64(len(e.Type)))
	h.Write(buf[:])
	h.Write([]byte(e.Type))

	writeKey := func(pk *identity.PublicKey) {
		if pk == nil {
			h.Write([]byte{0})
			return
		}
		h.Write([]byte{1})
		h.Write(pk[:])
	}
	writeKey(e.Actor)
	writeKey(e.Target)

	binary.BigEndian.PutUint64(buf[:], uint64(len(e.Payload)))
	h.Write(buf[:])
	h.Write(e.Payload)

	binary.BigEndian.PutUint64(buf[:], uint64(e.Timestamp))
	h.Write(buf[:])

	var out [HashSize]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Next builds the event following prev. A nil prev starts the chain at ID 1
// against the instance's genesis hash. The caller owns append ordering: two
// events built against the same prev corrupt the chain.
func Next(prev *Event, instance identity.PublicKey, typ string, actor, target *identity.PublicKey, payload []byte, timestamp int64) Event {
	e := Event{
		ID:        1,
		PrevHash:  GenesisPrev(instance),
		Type:      typ,
		Actor:     actor,
		Target:    target,
		Payload:   payload,
		Timestamp: timestamp,
	}
	if prev != nil {
		e.ID = prev.ID + 1
		e.PrevHash = prev.ComputeHash()
	}
	e.Hash = e.ComputeHash()
	return e
}

// Reason classifies the first break VerifyChain found.
type Reason uint8

const (
	// ReasonBrokenLink: the event's prev-hash does not match the previous
	// event's recomputed hash.
	ReasonBrokenLink Reason = iota
	// ReasonBadHash: the event's stored hash does not match its contents.
	ReasonBadHash
	// ReasonBadSequence: event ids are not consecutive.
	ReasonBadSequence
)

func (r Reason) String() string {
	switch r {
	case ReasonBrokenLink:
		return "broken chain link"
	case ReasonBadHash:
		return "stored hash mismatch"
	case ReasonBadSequence:
		return "non-consecutive event id"
	default:
		return fmt.Sprintf("reason(%d)", uint8(r))
	}
}

// ChainError reports the index and nature of the first break in a chain.
type ChainError struct {
	Index  int
	Reason Reason
}

func (e *ChainError) Error() string {
	return fmt.Sprintf("event %d: %s", e.Index, e.Reason)
}

// VerifyChain scans events in order, confirming each event's prev-hash
// equals the previous event's recomputed hash and each stored hash matches
// its recomputed value. It reports the first break and never silently
// truncates; an empty chain is valid.
func VerifyChain(instance identity.PublicKey, events []Event) error {
	want := GenesisPrev(instance)
	for i := range events {
		e := &events[i]
		if i > 0 && e.ID != events[i-1].ID+1 {
			return &ChainError{Index: i, Reason: ReasonBadSequence}
		}
		if e.PrevHash != want {
			return &ChainError{Index: i, Reason: ReasonBrokenLink}
		}
		recomputed := e.ComputeHash()
		if e.Hash != recomputed {
			return &ChainError{Index: i, Reason: ReasonBadHash}
		}
		want = recomputed
	}
	return nil
}
