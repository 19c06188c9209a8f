package keys

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gezibash/arc-trust/internal/cli"
	"github.com/gezibash/arc-trust/internal/keyring"
	"github.com/gezibash/arc-trust/pkg/identity"
)

func newShowCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "show [alias-or-pubkey]",
		Short: "Show a stored key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := loadKeyArg(openKeyring(v), args)
			if err != nil {
				return err
			}

			return cli.NewOutputFromViper(v).
				Result("Key").
				With("Public Key", key.PublicKey).
				With("Fingerprint", identity.Fingerprint(key.Signer.PublicKey())).
				Render()
		},
	}
}

// loadKeyArg resolves an optional alias-or-pubkey argument, falling back to
// the default key.
func loadKeyArg(kr *keyring.Keyring, args []string) (*keyring.Key, error) {
	if len(args) > 0 {
		return kr.Load(args[0])
	}
	return kr.Default()
}
