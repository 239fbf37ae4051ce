package commands

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"wconnect/internal/crypto"
)

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, ok, err := appCtx.StoredSession()
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("No session.")
				return nil
			}
			key, err := hex.DecodeString(s.Key)
			if err != nil {
				return fmt.Errorf("stored key: %w", err)
			}
			defer crypto.Wipe(key)

			fmt.Printf("Bridge:   %s\n", s.Bridge)
			fmt.Printf("Client:   %s\n", s.ClientID)
			fmt.Printf("Peer:     %s\n", s.PeerID)
			if s.PeerMeta != nil {
				fmt.Printf("Peer app: %s (%s)\n", s.PeerMeta.Name, s.PeerMeta.URL)
			}
			fmt.Printf("Chain:    %d\n", s.ChainID)
			fmt.Printf("Accounts: %s\n", strings.Join(s.Accounts, ", "))
			fmt.Printf("Key:      %s\n", crypto.Fingerprint(key))
			return nil
		},
	}
}

func forgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forget",
		Short: "Drop the stored session without notifying the peer",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := appCtx.Forget(); err != nil {
				return err
			}
			fmt.Println("Session forgotten.")
			return nil
		},
	}
}
