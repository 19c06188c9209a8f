package eventlog

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/gezibash/arc-trust/pkg/identity"
)

// JSON boundary for exported logs. Hashes and signatures travel as
// lowercase hex; the payload stays embedded JSON. Decoding validates every
// field length, since exports are re-read from files nobody else vouches
// for.

type eventJSON struct {
	ID        uint64          `json:"id"`
	PrevHash  string          `json:"prev_hash"`
	Type      string          `json:"type"`
	Actor     string          `json:"actor,omitempty"`
	Target    string          `json:"target,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
	Hash      string          `json:"hash"`
}

// MarshalJSON encodes the event for export.
func (e Event) MarshalJSON() ([]byte, error) {
	out := eventJSON{
		ID:        e.ID,
		PrevHash:  hex.EncodeToString(e.PrevHash[:]),
		Type:      e.Type,
		Payload:   e.Payload,
		Timestamp: e.Timestamp,
		Hash:      hex.EncodeToString(e.Hash[:]),
	}
	if e.Actor != nil {
		out.Actor = identity.EncodePublicKey(*e.Actor)
	}
	if e.Target != nil {
		out.Target = identity.EncodePublicKey(*e.Target)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes and validates an exported event.
func (e *Event) UnmarshalJSON(data []byte) error {
	var raw eventJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded := Event{
		ID:        raw.ID,
		Type:      raw.Type,
		Payload:   raw.Payload,
		Timestamp: raw.Timestamp,
	}
	if err := decodeHash(&decoded.PrevHash, raw.PrevHash); err != nil {
		return fmt.Errorf("prev_hash: %w", err)
	}
	if err := decodeHash(&decoded.Hash, raw.Hash); err != nil {
		return fmt.Errorf("hash: %w", err)
	}
	if raw.Actor != "" {
		pk, err := identity.DecodePublicKey(raw.Actor)
		if err != nil {
			return fmt.Errorf("actor: %w", err)
		}
		decoded.Actor = &pk
	}
	if raw.Target != "" {
		pk, err := identity.DecodePublicKey(raw.Target)
		if err != nil {
			return fmt.Errorf("target: %w", err)
		}
		decoded.Target = &pk
	}
	*e = decoded
	return nil
}

type checkpointJSON struct {
	EventID   uint64 `json:"event_id"`
	EventHash string `json:"event_hash"`
	Timestamp int64  `json:"timestamp"`
	Sig       string `json:"sig"`
}

// MarshalJSON encodes the checkpoint for export.
func (c Checkpoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(checkpointJSON{
		EventID:   c.EventID,
		EventHash: hex.EncodeToString(c.EventHash[:]),
		Timestamp: c.Timestamp,
		Sig:       identity.EncodeSignature(c.Sig),
	})
}

// UnmarshalJSON decodes and validates an exported checkpoint.
func (c *Checkpoint) UnmarshalJSON(data []byte) error {
	var raw checkpointJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded := Checkpoint{EventID: raw.EventID, Timestamp: raw.Timestamp}
	if err := decodeHash(&decoded.EventHash, raw.EventHash); err != nil {
		return fmt.Errorf("event_hash: %w", err)
	}
	sig, err := identity.DecodeSignature(raw.Sig)
	if err != nil {
		return fmt.Errorf("sig: %w", err)
	}
	decoded.Sig = sig
	*c = decoded
	return nil
}

func decodeHash(dst *[HashSize]byte, s string) error {
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != HashSize {
		return identity.ErrInvalidEncoding
	}
	copy(dst[:], raw)
	return nil
}

// Export is the JSON document shape produced and consumed by the operator
// CLI: an instance identity, its event chain, and any signed checkpoints.
type Export struct {
	Instance    identity.PublicKey
	Events      []Event
	Checkpoints []Checkpoint
}

type exportJSON struct {
	Instance    string       `json:"instance"`
	Events      []Event      `json:"events"`
	Checkpoints []Checkpoint `json:"checkpoints,omitempty"`
}

// MarshalJSON encodes the export document.
func (x Export) MarshalJSON() ([]byte, error) {
	return json.Marshal(exportJSON{
		Instance:    identity.EncodePublicKey(x.Instance),
		Events:      x.Events,
		Checkpoints: x.Checkpoints,
	})
}

// UnmarshalJSON decodes the export document.
func (x *Export) UnmarshalJSON(data []byte) error {
	var raw exportJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	instance, err := identity.DecodePublicKey(raw.Instance)
	if err != nil {
		return fmt.Errorf("instance: %w", err)
	}
	*x = Export{Instance: instance, Events: raw.Events, Checkpoints: raw.Checkpoints}
	return nil
}
