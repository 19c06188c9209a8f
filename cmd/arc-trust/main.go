package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gezibash/arc-trust/cmd/arc-trust/events"
	"github.com/gezibash/arc-trust/cmd/arc-trust/invite"
	"github.com/gezibash/arc-trust/cmd/arc-trust/keys"
	"github.com/gezibash/arc-trust/cmd/arc-trust/proof"
	"github.com/gezibash/arc-trust/internal/config"
	"github.com/gezibash/arc-trust/pkg/logging"
)

func main() {
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:   "arc-trust",
		Short: "Arc trust kernel tooling",
		Long:  "Operator tooling for the arc trust kernel: keys, delegation-chain invites,\nidentity proofs, and event-log verification.",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			configFile, _ := cmd.Flags().GetString("config")
			if err := config.Load(v, configFile, config.DefaultDataDir()); err != nil {
				return err
			}
			log := logging.Setup(
				v.GetString("observability.log_level"),
				v.GetString("observability.log_format"),
			)
			log.WithComponent("cli").Debug("configuration loaded",
				"data_dir", v.GetString("data_dir"),
				"output", v.GetString("output"),
			)
			return nil
		},
	}

	config.BindCommonFlags(rootCmd, v)

	rootCmd.AddCommand(keys.Entrypoint(v))
	rootCmd.AddCommand(invite.Entrypoint(v))
	rootCmd.AddCommand(events.Entrypoint(v))
	rootCmd.AddCommand(proof.Entrypoint(v))
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
