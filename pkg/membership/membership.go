// Package membership implements the member lifecycle state machine.
//
// A grant moves between four states (Invited, Active, Suspended, Removed)
// through an explicitly enumerated transition relation. Apply is the only
// way a grant changes; an invalid pair returns a TransitionError naming the
// attempted transition and the current state, never a generic failure.
package membership

import (
	"errors"
	"fmt"

	"github.com/gezibash/arc-trust/pkg/access"
	"github.com/gezibash/arc-trust/pkg/identity"
)

// State is the lifecycle state of a grant.
type State uint8

const (
	Invited State = iota
	Active
	Suspended
	Removed
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case Invited:
		return "invited"
	case Active:
		return "active"
	case Suspended:
		return "suspended"
	case Removed:
		return "removed"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Source identifies what suspended a grant.
type Source uint8

const (
	SourceAdmin Source = iota
	SourceBlocklist
)

// Suspension records why and by what a grant was suspended. Scope is set
// only for blocklist suspensions and must match on lift.
type Suspension struct {
	Source Source
	Scope  string
	Reason string
}

// Grant describes one actor's standing: identity, authority, lifecycle
// state, and provenance.
type Grant struct {
	Key        identity.PublicKey
	Capability access.Capability
	Rights     access.Rights
	State      State
	Suspension *Suspension

	// Provenance.
	InvitedBy  identity.PublicKey
	InvitedVia [16]byte
	Replaces   *identity.PublicKey
}

// LoopbackGrant seeds the synthetic local-operator grant. It is always
// active and always at the highest tier.
func LoopbackGrant() Grant {
	return Grant{
		Key:        identity.Loopback,
		Capability: access.Owner,
		Rights:     access.Owner.Rights(),
		State:      Active,
	}
}

// Transition is one letter of the transition alphabet. The set is closed;
// Apply switches exhaustively over it.
type Transition interface {
	transitionName() string
}

// Activate moves an invited grant to active.
type Activate struct{}

// Suspend suspends an active grant by admin action.
type Suspend struct {
	Reason string
}

// Reinstate lifts an admin suspension.
type Reinstate struct{}

// Remove terminates a grant. Removed is terminal.
type Remove struct{}

// Expire discards an invited grant whose invite lapsed unredeemed.
type Expire struct{}

// BlocklistHit suspends an active grant because a blocklist matched.
type BlocklistHit struct {
	Scope string
}

// BlocklistLift un-suspends a grant, but only if the stored suspension came
// from a blocklist with the same scope. Admin suspensions are not liftable
// by blocklist removal.
type BlocklistLift struct {
	Scope string
}

// Replace rebinds a grant to a new key, for key-loss recovery. State is
// preserved; provenance records the replaced key.
type Replace struct {
	NewKey identity.PublicKey
}

func (Activate) transitionName() string      { return "activate" }
func (Suspend) transitionName() string       { return "suspend" }
func (Reinstate) transitionName() string     { return "reinstate" }
func (Remove) transitionName() string        { return "remove" }
func (Expire) transitionName() string        { return "expire" }
func (BlocklistHit) transitionName() string  { return "blocklist-hit" }
func (BlocklistLift) transitionName() string { return "blocklist-lift" }
func (Replace) transitionName() string       { return "replace" }

// ErrLoopbackGrant indicates an attempt to suspend, remove, expire, or
// replace the loopback grant.
var ErrLoopbackGrant = errors.New("loopback grant cannot be altered")

// TransitionError reports an invalid (state, transition) pair.
type TransitionError struct {
	From      State
	Attempted Transition
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s a grant in state %s", e.Attempted.transitionName(), e.From)
}

// Apply advances a grant through one transition, returning the updated
// grant. The input grant is not modified. Every invalid pair returns a
// *TransitionError; the loopback grant additionally rejects anything that
// would suspend, remove, or rebind it.
func Apply(g Grant, t Transition) (Grant, error) {
	invalid := func() (Grant, error) {
		return Grant{}, &TransitionError{From: g.State, Attempted: t}
	}

	if identity.IsLoopback(g.Key) {
		switch t.(type) {
		case Suspend, BlocklistHit, Remove, Expire, Replace:
			return Grant{}, fmt.Errorf("%w: %s", ErrLoopbackGrant, t.transitionName())
		}
	}

	if g.State == Removed {
		return invalid()
	}

	switch tr := t.(type) {
	case Activate:
		if g.State != Invited {
			return invalid()
		}
		g.State = Active

	case Expire:
		if g.State != Invited {
			return invalid()
		}
		g.State = Removed

	case Suspend:
		if g.State != Active {
			return invalid()
		}
		g.State = Suspended
		g.Suspension = &Suspension{Source: SourceAdmin, Reason: tr.Reason}

	case BlocklistHit:
		if g.State != Active {
			return invalid()
		}
		g.State = Suspended
		g.Suspension = &Suspension{Source: SourceBlocklist, Scope: tr.Scope}

	case Reinstate:
		if g.State != Suspended {
			return invalid()
		}
		g.State = Active
		g.Suspension = nil

	case BlocklistLift:
		if g.State != Suspended {
			return invalid()
		}
		if g.Suspension == nil || g.Suspension.Source != SourceBlocklist || g.Suspension.Scope != tr.Scope {
			return invalid()
		}
		g.State = Active
		g.Suspension = nil

	case Remove:
		g.State = Removed
		g.Suspension = nil

	case Replace:
		old := g.Key
		g.Key = tr.NewKey
		g.Replaces = &old

	default:
		return invalid()
	}

	return g, nil
}
