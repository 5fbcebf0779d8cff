package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"e2ecore"
)

func resolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <identity>",
		Short: "Look up a peer's published public key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			peer := e2ecore.IdentityID(args[0])
			pub, err := sess.ResolvePublicKey(cmd.Context(), peer)
			if err != nil {
				return err
			}
			if pub == nil {
				fmt.Printf("%s has not set up encryption.\n", peer)
				return nil
			}
			fp := e2ecore.ComputeFingerprint(*pub)
			fmt.Printf("Public key:  %s\nFingerprint: %s\n", pub, fp.Short)
			return nil
		},
	}
}
