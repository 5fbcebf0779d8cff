package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the first device key pair for this identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := sess.Initialize()
			if err != nil {
				return err
			}
			fp, err := sess.Fingerprint()
			if err != nil {
				return err
			}
			fmt.Printf("Identity ready.\nPublic key:  %s\nFingerprint: %s\n", info.PublicKey, fp.Short)
			return nil
		},
	}
}
