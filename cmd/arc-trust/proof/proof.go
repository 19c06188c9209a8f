// Package proof implements the identity-proof subcommands.
package proof

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gezibash/arc-trust/internal/cli"
	"github.com/gezibash/arc-trust/internal/config"
	"github.com/gezibash/arc-trust/internal/keyring"
	"github.com/gezibash/arc-trust/pkg/identity"
	"github.com/gezibash/arc-trust/pkg/proof"
)

// Entrypoint returns the proof command tree.
func Entrypoint(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proof",
		Short: "Issue and verify cross-context identity proofs",
	}

	cmd.AddCommand(newCreateCmd(v), newVerifyCmd(v))
	return cmd
}

func newCreateCmd(v *viper.Viper) *cobra.Command {
	var keyRef string

	cmd := &cobra.Command{
		Use:   "create <context-pubkey>",
		Short: "Issue a proof linking your key to an instance context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			context, err := identity.DecodePublicKey(args[0])
			if err != nil {
				return fmt.Errorf("context key: %w", err)
			}

			dir := v.GetString("data_dir")
			if dir == "" {
				dir = config.DefaultDataDir()
			}
			kr := keyring.New(dir)
			var key *keyring.Key
			if keyRef != "" {
				key, err = kr.Load(keyRef)
			} else {
				key, err = kr.Default()
			}
			if err != nil {
				return fmt.Errorf("load signing key: %w", err)
			}

			p := proof.New(key.Signer, context, time.Now())
			return cli.NewOutputFromViper(v).
				Result("Proof issued").
				With("Subject", identity.Fingerprint(p.Subject)).
				With("Context", identity.Fingerprint(p.Context)).
				With("Proof", p.String()).
				Render()
		},
	}

	cmd.Flags().StringVarP(&keyRef, "key", "k", "", "signing key alias or public key hex")
	return cmd
}

func newVerifyCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <proof>",
		Short: "Verify an identity proof",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := proof.Parse(args[0])
			if err != nil {
				return fmt.Errorf("parse proof: %w", err)
			}
			if err := p.Verify(); err != nil {
				return err
			}
			return cli.NewOutputFromViper(v).
				Result("Proof valid").
				With("Subject", identity.EncodePublicKey(p.Subject)).
				With("Context", identity.EncodePublicKey(p.Context)).
				With("Issued At", time.Unix(p.IssuedAt, 0).UTC().Format(time.RFC3339)).
				Render()
		},
	}
}
