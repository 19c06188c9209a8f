// Package events implements event-log verification and checkpointing
// subcommands over exported log files.
package events

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gezibash/arc-trust/pkg/eventlog"
)

// Entrypoint returns the events command tree.
func Entrypoint(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Verify and checkpoint exported event logs",
	}

	cmd.AddCommand(
		newVerifyCmd(v),
		newCheckpointCmd(v),
	)

	return cmd
}

func readExport(path string) (*eventlog.Export, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var export eventlog.Export
	if err := json.Unmarshal(raw, &export); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &export, nil
}
