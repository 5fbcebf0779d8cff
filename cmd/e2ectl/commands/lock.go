package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func lockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lock",
		Short: "Seal private key material under a passphrase",
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				return fmt.Errorf("passphrase required (-p)")
			}
			if err := sess.Lock(passphrase); err != nil {
				return err
			}
			fmt.Println("Vault locked.")
			return nil
		},
	}
}

func unlockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unlock",
		Short: "Restore sealed key material for this session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				return fmt.Errorf("passphrase required (-p)")
			}
			if err := sess.Unlock(passphrase); err != nil {
				return err
			}
			fmt.Println("Vault unlocked.")
			return nil
		},
	}
}
