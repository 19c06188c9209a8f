package access

import (
	"encoding/json"
	"errors"
	"fmt"
)

// The JSON boundary shape of a right is {"type": <string>, "actions":
// [<string>, ...]}. The surrounding platform treats it as a loosely typed
// array; this side validates on the way in rather than trusting the shape.

// ErrInvalidRight indicates a right that fails boundary validation.
var ErrInvalidRight = errors.New("invalid access right")

// MarshalJSON encodes the capability as its preset name.
func (c Capability) MarshalJSON() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCapability, uint8(c))
	}
	return json.Marshal(c.String())
}

// UnmarshalJSON decodes a capability from its preset name.
func (c *Capability) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseCapability(name)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// UnmarshalJSON decodes and validates a single right.
func (r *Right) UnmarshalJSON(data []byte) error {
	type raw Right
	var decoded raw
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	if decoded.Type == "" {
		return fmt.Errorf("%w: empty resource type", ErrInvalidRight)
	}
	if len(decoded.Actions) == 0 {
		return fmt.Errorf("%w: %q has no actions", ErrInvalidRight, decoded.Type)
	}
	for _, action := range decoded.Actions {
		if action == "" {
			return fmt.Errorf("%w: %q has an empty action", ErrInvalidRight, decoded.Type)
		}
	}
	*r = Right(decoded)
	return nil
}

// ParseRights decodes a JSON array of rights into canonical form.
func ParseRights(data []byte) (Rights, error) {
	var r Rights
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return r.Clone(), nil
}
