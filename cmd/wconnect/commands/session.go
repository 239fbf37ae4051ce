package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"wconnect/internal/domain"
	"wconnect/internal/services/connector"
)

func sessionCmd() *cobra.Command {
	var chainID int64
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Offer a new session and wait for a wallet to approve it",
		Long: "Offer a new session and wait for a wallet to approve it. A stored\n" +
			"session is resumed and printed instead.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := interruptible(cmd.Context())
			defer stop()

			c, err := appCtx.Open(connector.Options{}, &termModal{out: os.Stdout})
			if err != nil {
				return err
			}
			defer c.Close()

			status, err := c.Connect(ctx, chainID)
			if err != nil {
				return err
			}
			printStatus(status)
			return nil
		},
	}
	cmd.Flags().Int64Var(&chainID, "chain-id", 0, "chain to request (0 lets the wallet choose)")
	return cmd
}

func printStatus(s domain.SessionStatus) {
	if s.PeerMeta != nil {
		fmt.Printf("Peer:     %s (%s)\n", s.PeerMeta.Name, s.PeerMeta.URL)
	}
	fmt.Printf("Peer ID:  %s\n", s.PeerID)
	fmt.Printf("Chain:    %d\n", s.ChainID)
	fmt.Printf("Accounts: %s\n", strings.Join(s.Accounts, ", "))
}
