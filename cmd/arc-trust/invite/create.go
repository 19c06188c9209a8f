package invite

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gezibash/arc-trust/internal/cli"
	"github.com/gezibash/arc-trust/pkg/access"
	"github.com/gezibash/arc-trust/pkg/identity"
	"github.com/gezibash/arc-trust/pkg/invite"
)

func newCreateCmd(v *viper.Viper) *cobra.Command {
	var (
		keyRef    string
		capName   string
		maxDepth  uint8
		maxUses   uint32
		expiresIn time.Duration
	)

	cmd := &cobra.Command{
		Use:   "create <instance-pubkey>",
		Short: "Create a new invite for an instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			instance, err := identity.DecodePublicKey(args[0])
			if err != nil {
				return fmt.Errorf("instance key: %w", err)
			}

			capability, err := access.ParseCapability(capName)
			if err != nil {
				return err
			}

			signer, err := signerFromFlags(v, keyRef)
			if err != nil {
				return err
			}

			inv, err := invite.Create(signer, instance, capability, maxDepth, maxUses, parseExpiry(expiresIn))
			if err != nil {
				return fmt.Errorf("create invite: %w", err)
			}

			return cli.NewOutputFromViper(v).
				Result("Invite created").
				With("Instance", identity.Fingerprint(instance)).
				With("Capability", capability.String()).
				With("Max Depth", inv.Leaf().MaxDepth).
				With("Invite", inv.String()).
				Render()
		},
	}

	f := cmd.Flags()
	f.StringVarP(&keyRef, "key", "k", "", "signing key alias or public key hex")
	f.StringVar(&capName, "capability", "collaborate", "granted capability (view, collaborate, admin, owner)")
	f.Uint8Var(&maxDepth, "max-depth", 0, "allowed sub-delegations (0 = flat invite)")
	f.Uint32Var(&maxUses, "max-uses", 1, "redemption limit enforced by the instance")
	f.DurationVar(&expiresIn, "expires-in", 0, "validity window (0 = no expiry)")
	return cmd
}
