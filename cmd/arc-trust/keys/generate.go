package keys

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gezibash/arc-trust/internal/cli"
	"github.com/gezibash/arc-trust/internal/keyring"
	"github.com/gezibash/arc-trust/pkg/identity"
	"github.com/gezibash/arc-trust/pkg/logging"
)

func newGenerateCmd(v *viper.Viper) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "generate [alias]",
		Short: "Generate a new signing key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			alias := keyring.DefaultAlias
			if len(args) > 0 {
				alias = args[0]
			}

			kr := openKeyring(v)

			if !force {
				if _, err := kr.Load(alias); err == nil {
					return fmt.Errorf("key with alias %q already exists (use --force to overwrite)", alias)
				}
			}

			key, err := kr.Generate(alias)
			if err != nil {
				return fmt.Errorf("generate key: %w", err)
			}

			if alias == keyring.DefaultAlias {
				_ = kr.SetDefault(key.PublicKey)
			}

			logging.New(nil).WithComponent("keys").
				WithPubkey("key", key.Signer.PublicKey()).
				Debug("key generated", "alias", alias)

			out := cli.NewOutputFromViper(v)
			return out.Result(fmt.Sprintf("Key created: %s", alias)).
				With("Public Key", key.PublicKey).
				With("Fingerprint", identity.Fingerprint(key.Signer.PublicKey())).
				With("Stored at", filepath.Join(dataDir(v), "keys", key.PublicKey+".key")).
				Render()
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite existing alias")
	return cmd
}
