package invite

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gezibash/arc-trust/internal/cli"
	"github.com/gezibash/arc-trust/pkg/identity"
	"github.com/gezibash/arc-trust/pkg/invite"
)

func newVerifyCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <invite>",
		Short: "Verify an invite chain and print its claims",
		Long:  "Verify an invite offline: chained signatures, capability narrowing, depth,\nand expiry. Use counts are instance state and are not checked here.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := invite.Parse(args[0])
			if err != nil {
				return fmt.Errorf("parse invite: %w", err)
			}

			claims, err := inv.Verify(time.Now())
			if err != nil {
				return fmt.Errorf("verify invite: %w", err)
			}

			return cli.NewOutputFromViper(v).
				Result("Invite valid").
				With("Instance", identity.EncodePublicKey(claims.Instance)).
				With("Capability", claims.Capability.String()).
				With("Root Issuer", identity.Fingerprint(claims.RootIssuer)).
				With("Leaf Issuer", identity.Fingerprint(claims.LeafIssuer)).
				With("Depth", claims.Depth).
				Render()
		},
	}
}
