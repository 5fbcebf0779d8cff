package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"e2ecore"
)

func devicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List all device key pairs",
		RunE: func(cmd *cobra.Command, args []string) error {
			devices, err := sess.Devices()
			if err != nil {
				return err
			}
			for _, d := range devices {
				state := "unlocked"
				if d.Locked {
					state = "locked"
				}
				marker := " "
				if d.Active {
					marker = "*"
				}
				fmt.Printf("%s %-20s %s  %s  %s\n",
					marker, d.DeviceLabel, d.PublicKey, d.CreatedAt.Format("2006-01-02"), state)
			}
			return nil
		},
	}
}

func labelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "label <public-key> <label>",
		Short: "Rename a device key pair",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pub, err := e2ecore.ParsePublicKey(args[0])
			if err != nil {
				return err
			}
			if err := sess.UpdateDeviceLabel(pub, args[1]); err != nil {
				return err
			}
			fmt.Println("Label updated.")
			return nil
		},
	}
}
