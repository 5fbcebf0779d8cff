package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func backupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Create or restore an encrypted keyring backup",
	}
	cmd.AddCommand(backupCreateCmd(), backupRestoreCmd())
	return cmd
}

func backupCreateCmd() *cobra.Command {
	var code, out string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Export all key pairs sealed under a recovery code",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := sess.CreateBackup(code)
			if err != nil {
				return err
			}
			if out == "" {
				fmt.Println(b.Blob)
			} else if err := os.WriteFile(out, []byte(b.Blob), 0o600); err != nil {
				return err
			}
			// The code is shown once and never stored. Write it down.
			fmt.Fprintf(os.Stderr, "Recovery code: %s\n", b.Code)
			return nil
		},
	}
	cmd.Flags().StringVar(&code, "code", "", "recovery code (default: generate a mnemonic)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the blob to a file instead of stdout")
	return cmd
}

func backupRestoreCmd() *cobra.Command {
	var code, in string
	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Merge a backup's key pairs into the local keyring",
		RunE: func(cmd *cobra.Command, args []string) error {
			if code == "" {
				return fmt.Errorf("recovery code required (--code)")
			}
			blob, err := os.ReadFile(in)
			if err != nil {
				return err
			}
			if err := sess.RestoreBackup(code, string(blob)); err != nil {
				return err
			}
			fmt.Println("Backup restored.")
			return nil
		},
	}
	cmd.Flags().StringVar(&code, "code", "", "recovery code")
	cmd.Flags().StringVarP(&in, "in", "f", "", "backup blob file")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}
