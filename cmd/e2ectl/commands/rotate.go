package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func rotateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rotate",
		Short: "Generate a fresh active key pair",
		Long: "Generate a fresh active key pair. Prior pairs are retained so " +
			"messages encrypted under them keep decrypting.",
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := sess.Rotate()
			if err != nil {
				return err
			}
			fmt.Printf("Rotated.\nNew public key: %s\n", info.PublicKey)
			return nil
		},
	}
}
