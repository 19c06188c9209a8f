package invite

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gezibash/arc-trust/internal/cli"
	"github.com/gezibash/arc-trust/pkg/access"
	"github.com/gezibash/arc-trust/pkg/invite"
)

func newDelegateCmd(v *viper.Viper) *cobra.Command {
	var (
		keyRef    string
		capName   string
		maxUses   uint32
		expiresIn time.Duration
	)

	cmd := &cobra.Command{
		Use:   "delegate <invite>",
		Short: "Append a narrower link to an invite chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parent, err := invite.Parse(args[0])
			if err != nil {
				return fmt.Errorf("parent invite: %w", err)
			}

			capability := parent.Leaf().Capability
			if capName != "" {
				capability, err = access.ParseCapability(capName)
				if err != nil {
					return err
				}
			}

			signer, err := signerFromFlags(v, keyRef)
			if err != nil {
				return err
			}

			child, err := invite.Delegate(parent, signer, capability, maxUses, parseExpiry(expiresIn))
			if err != nil {
				return fmt.Errorf("delegate: %w", err)
			}

			return cli.NewOutputFromViper(v).
				Result("Invite delegated").
				With("Capability", capability.String()).
				With("Chain Length", len(child.Links)).
				With("Remaining Depth", child.Leaf().MaxDepth).
				With("Invite", child.String()).
				Render()
		},
	}

	f := cmd.Flags()
	f.StringVarP(&keyRef, "key", "k", "", "signing key alias or public key hex")
	f.StringVar(&capName, "capability", "", "granted capability (defaults to the parent's)")
	f.Uint32Var(&maxUses, "max-uses", 1, "redemption limit enforced by the instance")
	f.DurationVar(&expiresIn, "expires-in", 0, "validity window (0 = no expiry)")
	return cmd
}
