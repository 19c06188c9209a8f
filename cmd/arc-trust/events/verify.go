package events

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gezibash/arc-trust/internal/cli"
	"github.com/gezibash/arc-trust/pkg/eventlog"
	"github.com/gezibash/arc-trust/pkg/identity"
)

func newVerifyCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <export.json>",
		Short: "Verify an exported event chain and its checkpoints",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			export, err := readExport(args[0])
			if err != nil {
				return err
			}

			if err := eventlog.VerifyChain(export.Instance, export.Events); err != nil {
				return fmt.Errorf("chain verification failed: %w", err)
			}

			anchored := 0
			for i := range export.Checkpoints {
				cp := &export.Checkpoints[i]
				if err := cp.Verify(export.Instance); err != nil {
					return fmt.Errorf("checkpoint %d: %w", i, err)
				}
				if !cp.Anchors(export.Events) {
					return fmt.Errorf("checkpoint %d attests event %d with a hash not in this chain", i, cp.EventID)
				}
				anchored++
			}

			return cli.NewOutputFromViper(v).
				Result("Event chain valid").
				With("Instance", identity.Fingerprint(export.Instance)).
				With("Events", len(export.Events)).
				With("Checkpoints", anchored).
				Render()
		},
	}
}
