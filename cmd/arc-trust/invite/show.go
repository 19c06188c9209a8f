package invite

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gezibash/arc-trust/internal/cli"
	"github.com/gezibash/arc-trust/pkg/identity"
	"github.com/gezibash/arc-trust/pkg/invite"
)

func newShowCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "show <invite>",
		Short: "Decode an invite without verifying it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := invite.Parse(args[0])
			if err != nil {
				return fmt.Errorf("parse invite: %w", err)
			}
			return cli.NewOutputFromViper(v).Render(inviteView{inv})
		},
	}
}

type inviteView struct {
	inv *invite.Invite
}

func (view inviteView) RenderJSON() any {
	type linkJSON struct {
		Issuer     string `json:"issuer"`
		Capability string `json:"capability"`
		MaxDepth   uint8  `json:"max_depth"`
		MaxUses    uint32 `json:"max_uses"`
		ExpiresAt  int64  `json:"expires_at,omitempty"`
	}
	links := make([]linkJSON, len(view.inv.Links))
	for i, link := range view.inv.Links {
		links[i] = linkJSON{
			Issuer:     identity.EncodePublicKey(link.Issuer),
			Capability: link.Capability.String(),
			MaxDepth:   link.MaxDepth,
			MaxUses:    link.MaxUses,
			ExpiresAt:  link.ExpiresAt,
		}
	}
	return map[string]any{
		"instance": identity.EncodePublicKey(view.inv.Instance),
		"links":    links,
	}
}

func (view inviteView) RenderText(w io.Writer, st cli.Styles) error {
	if _, err := fmt.Fprintf(w, "%s %s\n", st.Title.Render("Instance:"), identity.EncodePublicKey(view.inv.Instance)); err != nil {
		return err
	}
	for i, link := range view.inv.Links {
		expiry := "never"
		if link.ExpiresAt != 0 {
			expiry = time.Unix(link.ExpiresAt, 0).UTC().Format(time.RFC3339)
		}
		_, err := fmt.Fprintf(w, "  %s issuer=%s capability=%s depth=%d uses=%d expires=%s\n",
			st.Key.Render(fmt.Sprintf("link %d:", i)),
			identity.Fingerprint(link.Issuer),
			link.Capability, link.MaxDepth, link.MaxUses, expiry)
		if err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, st.Warn.Render("  (decoded only; run `arc-trust invite verify` to check signatures)"))
	return err
}
