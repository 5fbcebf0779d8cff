package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func fingerprintCmd() *cobra.Command {
	var qr bool
	cmd := &cobra.Command{
		Use:   "fingerprint",
		Short: "Print the active key's fingerprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			fp, err := sess.Fingerprint()
			if err != nil {
				return err
			}
			if qr {
				payload, err := sess.VerificationPayload()
				if err != nil {
					return err
				}
				out, err := json.Marshal(payload)
				if err != nil {
					return err
				}
				fmt.Println(string(out))
				return nil
			}
			fmt.Printf("Fingerprint: %s\nFull:        %s\n", fp.Short, fp.Full)
			return nil
		},
	}
	cmd.Flags().BoolVar(&qr, "qr", false, "print the QR verification payload as JSON")
	return cmd
}
