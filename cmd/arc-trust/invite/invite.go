// Package invite implements the invite subcommands: creating, delegating,
// verifying, and inspecting delegation-chain invites.
package invite

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gezibash/arc-trust/internal/config"
	"github.com/gezibash/arc-trust/internal/keyring"
	"github.com/gezibash/arc-trust/pkg/identity"
)

// Entrypoint returns the invite command tree.
func Entrypoint(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invite",
		Short: "Create and verify delegation-chain invites",
	}

	cmd.AddCommand(
		newCreateCmd(v),
		newDelegateCmd(v),
		newVerifyCmd(v),
		newShowCmd(v),
	)

	return cmd
}

func openKeyring(v *viper.Viper) *keyring.Keyring {
	dir := v.GetString("data_dir")
	if dir == "" {
		dir = config.DefaultDataDir()
	}
	return keyring.New(dir)
}

// signerFromFlags loads the signing key named by --key, or the default key.
func signerFromFlags(v *viper.Viper, keyRef string) (*identity.SigningKey, error) {
	kr := openKeyring(v)
	var (
		key *keyring.Key
		err error
	)
	if keyRef != "" {
		key, err = kr.Load(keyRef)
	} else {
		key, err = kr.Default()
	}
	if err != nil {
		return nil, fmt.Errorf("load signing key: %w", err)
	}
	return key.Signer, nil
}

// parseExpiry converts a --expires-in duration to a unix expiry, 0 if unset.
func parseExpiry(expiresIn time.Duration) int64 {
	if expiresIn <= 0 {
		return 0
	}
	return time.Now().Add(expiresIn).Unix()
}
