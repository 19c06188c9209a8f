package eventlog

import (
	"encoding/json"

	"github.com/gezibash/arc-trust/pkg/access"
)

// GrantChange is the payload of a grant.changed event: the symmetric
// difference between the grant's rights before and after an admin tweak.
type GrantChange struct {
	Added   access.Rights `json:"added,omitempty"`
	Removed access.Rights `json:"removed,omitempty"`
}

// NewGrantChangePayload records a rights change as a diff.
func NewGrantChangePayload(before, after access.Rights) ([]byte, error) {
	added, removed := after.Diff(before)
	return json.Marshal(GrantChange{Added: added, Removed: removed})
}

// SuspensionPayload is the payload of a member.suspended event.
type SuspensionPayload struct {
	Source string `json:"source"`
	Scope  string `json:"scope,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// InvitePayload is the payload of invite.created and invite.revoked events.
type InvitePayload struct {
	Nonce      string            `json:"nonce"`
	Capability access.Capability `json:"capability"`
	MaxUses    uint32            `json:"max_uses"`
}
