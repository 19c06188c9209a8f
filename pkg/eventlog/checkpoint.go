package eventlog

import (
	"encoding/binary"
	"fmt"

	"github.com/gezibash/arc-trust/pkg/identity"
)

// checkpointDomain separates checkpoint signatures from every other
// signature the instance key produces.
const checkpointDomain = "arc-trust/checkpoint/v1\n"

// Checkpoint is a signed anchor over a chain head. Signing the current
// (event id, hash) with the instance key makes the prefix up to that event
// unforgeable even by a log owner who controls the store.
type Checkpoint struct {
	EventID   uint64
	EventHash [HashSize]byte
	Timestamp int64
	Sig       identity.Signature
}

// SignCheckpoint signs the chain head with the instance signing key.
func SignCheckpoint(sk *identity.SigningKey, head *Event, timestamp int64) Checkpoint {
	c := Checkpoint{
		EventID:   head.ID,
		EventHash: head.ComputeHash(),
		Timestamp: timestamp,
	}
	c.Sig = sk.Sign(c.signingMessage())
	return c
}

// Verify confirms the checkpoint was signed by the instance key. Whether
// the anchored (id, hash) pair appears in a given chain is checked
// separately with Anchors.
func (c *Checkpoint) Verify(instance identity.PublicKey) error {
	if err := identity.Verify(instance, c.signingMessage(), c.Sig); err != nil {
		return fmt.Errorf("checkpoint: %w", err)
	}
	return nil
}

// Anchors reports whether the checkpoint attests an event present in the
// chain with a matching hash.
func (c *Checkpoint) Anchors(events []Event) bool {
	for i := range events {
		if events[i].ID == c.EventID {
			return events[i].ComputeHash() == c.EventHash
		}
	}
	return false
}

func (c *Checkpoint) signingMessage() []byte {
	msg := make([]byte, 0, len(checkpointDomain)+8+HashSize+8)
	msg = append(msg, checkpointDomain...)
	msg = binary.BigEndian.AppendUint64(msg, c.EventID)
	msg = append(msg, c.EventHash[:]...)
	msg = binary.BigEndian.AppendUint64(msg, uint64(c.Timestamp))
	return msg
}
