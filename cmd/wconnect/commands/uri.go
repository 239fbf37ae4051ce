package commands

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"wconnect/internal/crypto"
	"wconnect/internal/protocol/wcuri"
)

func uriCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "uri <uri>",
		Short: "Parse a wc: connection URI and print its parts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := wcuri.Parse(args[0])
			if err != nil {
				return err
			}
			key, err := hex.DecodeString(u.Key)
			if err != nil {
				return fmt.Errorf("key: %w", err)
			}
			defer crypto.Wipe(key)

			fmt.Printf("Topic:   %s\n", u.HandshakeTopic)
			fmt.Printf("Version: %d\n", u.Version)
			fmt.Printf("Bridge:  %s\n", u.Bridge)
			fmt.Printf("Key:     %s (%d bits)\n", crypto.Fingerprint(key), len(key)*8)
			return nil
		},
	}
}
