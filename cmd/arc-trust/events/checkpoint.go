package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gezibash/arc-trust/internal/cli"
	"github.com/gezibash/arc-trust/internal/config"
	"github.com/gezibash/arc-trust/internal/keyring"
	"github.com/gezibash/arc-trust/pkg/eventlog"
	"github.com/gezibash/arc-trust/pkg/logging"
)

func newCheckpointCmd(v *viper.Viper) *cobra.Command {
	var keyRef string

	cmd := &cobra.Command{
		Use:   "checkpoint <export.json>",
		Short: "Sign a checkpoint over the chain head of an exported log",
		Long:  "Verify the exported chain, sign its head with the instance signing key, and\nrewrite the export with the new checkpoint appended.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			export, err := readExport(args[0])
			if err != nil {
				return err
			}
			if len(export.Events) == 0 {
				return errors.New("cannot checkpoint an empty chain")
			}

			if err := eventlog.VerifyChain(export.Instance, export.Events); err != nil {
				logging.New(nil).WithComponent("events").WithError(err).
					Warn("refusing to checkpoint a broken chain", "path", args[0])
				return fmt.Errorf("refusing to checkpoint a broken chain: %w", err)
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
				return fmt.Errorf("load instance key: %w", err)
			}
			if key.Signer.PublicKey() != export.Instance {
				return errors.New("signing key is not the export's instance identity")
			}

			head := &export.Events[len(export.Events)-1]
			cp := eventlog.SignCheckpoint(key.Signer, head, time.Now().Unix())
			export.Checkpoints = append(export.Checkpoints, cp)

			raw, err := json.MarshalIndent(export, "", "  ")
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[0], raw, 0o600); err != nil {
				return err
			}

			return cli.NewOutputFromViper(v).
				Result("Checkpoint signed").
				With("Event ID", cp.EventID).
				With("Checkpoints", len(export.Checkpoints)).
				Render()
		},
	}

	cmd.Flags().StringVarP(&keyRef, "key", "k", "", "instance signing key alias or public key hex")
	return cmd
}
