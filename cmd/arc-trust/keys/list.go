package keys

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gezibash/arc-trust/internal/cli"
	"github.com/gezibash/arc-trust/internal/keyring"
)

func newListCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			infos, err := openKeyring(v).List()
			if err != nil {
				return err
			}
			return cli.NewOutputFromViper(v).Render(keyList(infos))
		},
	}
}

type keyList []keyring.KeyInfo

func (l keyList) RenderJSON() any {
	return []keyring.KeyInfo(l)
}

func (l keyList) RenderText(w io.Writer, st cli.Styles) error {
	if len(l) == 0 {
		_, err := fmt.Fprintln(w, "No keys stored.")
		return err
	}
	for _, info := range l {
		marker := " "
		if info.IsDefault {
			marker = "*"
		}
		line := fmt.Sprintf("%s %s  %s", marker, st.Key.Render(info.Fingerprint), info.PublicKey)
		if len(info.Aliases) > 0 {
			line += "  (" + strings.Join(info.Aliases, ", ") + ")"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
