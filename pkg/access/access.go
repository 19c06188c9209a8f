// Package access implements the capability algebra of the arc trust kernel.
//
// A Capability is a named preset (View, Collaborate, Admin, Owner) that
// expands to an ordered set of access rights. Rights are the sole
// authorization primitive: every check at enforcement time is a Contains
// call against a Rights value, and every comparison, narrowing, or audit of
// authority goes through the four algebra operations (Intersect, Contains,
// IsSupersetOf, Diff). Nothing else is allowed to manipulate rights.
package access

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Capability is an ordered named preset. Greater capabilities expand to a
// strict superset of a lesser capability's rights.
type Capability uint8

const (
	View Capability = iota
	Collaborate
	Admin
	Owner
)

// ErrUnknownCapability indicates a name that is not one of the four presets.
var ErrUnknownCapability = errors.New("unknown capability")

// String returns the lowercase preset name.
func (c Capability) String() string {
	switch c {
	case View:
		return "view"
	case Collaborate:
		return "collaborate"
	case Admin:
		return "admin"
	case Owner:
		return "owner"
	default:
		return fmt.Sprintf("capability(%d)", uint8(c))
	}
}

// Valid reports whether c is one of the four presets.
func (c Capability) Valid() bool {
	return c <= Owner
}

// ParseCapability parses a preset name, case-insensitively.
func ParseCapability(s string) (Capability, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "view":
		return View, nil
	case "collaborate":
		return Collaborate, nil
	case "admin":
		return Admin, nil
	case "owner":
		return Owner, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCapability, s)
	}
}

// Resource types rights may reference.
const (
	ResourceRecord   = "record"
	ResourceBlob     = "blob"
	ResourceMember   = "member"
	ResourceInvite   = "invite"
	ResourceInstance = "instance"
)

// Rights expands the preset to its access rights. The result is a fresh
// canonical copy the caller may mutate. Expansion is monotone: each preset's
// rights are a strict superset of every lesser preset's.
func (c Capability) Rights() Rights {
	var r Rights
	switch c {
	case View:
		r = Rights{
			{Type: ResourceBlob, Actions: []string{"read"}},
			{Type: ResourceRecord, Actions: []string{"read"}},
		}
	case Collaborate:
		r = Rights{
			{Type: ResourceBlob, Actions: []string{"read", "write"}},
			{Type: ResourceRecord, Actions: []string{"read", "write"}},
		}
	case Admin:
		r = Rights{
			{Type: ResourceBlob, Actions: []string{"delete", "read", "write"}},
			{Type: ResourceInvite, Actions: []string{"create", "revoke"}},
			{Type: ResourceMember, Actions: []string{"read", "reinstate", "remove", "suspend"}},
			{Type: ResourceRecord, Actions: []string{"delete", "read", "write"}},
		}
	case Owner:
		r = Rights{
			{Type: ResourceBlob, Actions: []string{"delete", "read", "write"}},
			{Type: ResourceInstance, Actions: []string{"checkpoint", "configure", "transfer"}},
			{Type: ResourceInvite, Actions: []string{"create", "revoke"}},
			{Type: ResourceMember, Actions: []string{"read", "reinstate", "remove", "replace", "suspend"}},
			{Type: ResourceRecord, Actions: []string{"delete", "read", "write"}},
		}
	}
	return r.Clone()
}

// CapabilityFromRights performs an exact-match reverse lookup of rights
// against the four presets. A grant whose rights were tweaked individually
// matches no preset and yields ok == false; callers must then display the
// raw rights rather than a preset label.
func CapabilityFromRights(r Rights) (Capability, bool) {
	canon := r.Clone()
	for _, c := range []Capability{View, Collaborate, Admin, Owner} {
		if canon.Equal(c.Rights()) {
			return c, true
		}
	}
	return 0, false
}

// Right grants a set of actions on one resource type.
type Right struct {
	Type    string   `json:"type"`
	Actions []string `json:"actions"`
}

// Rights is an ordered collection of rights, canonically sorted by resource
// type with sorted, deduplicated actions.
type Rights []Right

// Clone returns a canonicalized deep copy.
func (r Rights) Clone() Rights {
	merged := make(map[string][]string, len(r))
	for _, right := range r {
		merged[right.Type] = append(merged[right.Type], right.Actions...)
	}
	out := make(Rights, 0, len(merged))
	for typ, actions := range merged {
		slices.Sort(actions)
		out = append(out, Right{Type: typ, Actions: slices.Compact(actions)})
	}
	slices.SortFunc(out, func(a, b Right) int {
		return strings.Compare(a.Type, b.Type)
	})
	return out
}

// Equal reports whether two canonical rights values grant the same actions.
func (r Rights) Equal(other Rights) bool {
	a, b := r.Clone(), other.Clone()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Type != b[i].Type || !slices.Equal(a[i].Actions, b[i].Actions) {
			return false
		}
	}
	return true
}

// Contains is the authorization predicate: does r grant action on typ.
func (r Rights) Contains(typ, action string) bool {
	for _, right := range r {
		if right.Type == typ && slices.Contains(right.Actions, action) {
			return true
		}
	}
	return false
}

// Intersect returns the rights present in both r and other: a per-type
// action intersection, dropping types absent from either side. It is
// commutative and idempotent.
func (r Rights) Intersect(other Rights) Rights {
	a, b := r.Clone(), other.Clone()
	byType := make(map[string][]string, len(b))
	for _, right := range b {
		byType[right.Type] = right.Actions
	}
	out := make(Rights, 0, len(a))
	for _, right := range a {
		theirs, ok := byType[right.Type]
		if !ok {
			continue
		}
		var common []string
		for _, action := range right.Actions {
			if slices.Contains(theirs, action) {
				common = append(common, action)
			}
		}
		if len(common) > 0 {
			out = append(out, Right{Type: right.Type, Actions: common})
		}
	}
	return out
}

// IsSupersetOf reports whether every (type, action) pair in other is also
// granted by r. Delegation narrowing checks go through this.
func (r Rights) IsSupersetOf(other Rights) bool {
	for _, right := range other {
		for _, action := range right.Actions {
			if !r.Contains(right.Type, action) {
				return false
			}
		}
	}
	return true
}

// Diff returns the symmetric difference between two rights values: pairs in
// r but not other (added) and pairs in other but not r (removed). Audit
// trails record grant changes as a Diff.
func (r Rights) Diff(other Rights) (added, removed Rights) {
	return r.minus(other), other.minus(r)
}

func (r Rights) minus(other Rights) Rights {
	var out Rights
	for _, right := range r.Clone() {
		var missing []string
		for _, action := range right.Actions {
			if !other.Contains(right.Type, action) {
				missing = append(missing, action)
			}
		}
		if len(missing) > 0 {
			out = append(out, Right{Type: right.Type, Actions: missing})
		}
	}
	return out
}
