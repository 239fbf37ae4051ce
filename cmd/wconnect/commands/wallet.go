package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"wconnect/internal/app"
	"wconnect/internal/domain"
	"wconnect/internal/services/connector"
)

// joinURI opens a client on a wc: URI and waits for the offered session
// request to arrive.
func joinURI(ctx context.Context, uri string) (*app.Client, error) {
	c, err := appCtx.Open(connector.Options{URI: uri}, nil)
	if err != nil {
		return nil, err
	}
	if err := waitUntil(ctx, func() bool { return c.PeerID() != "" }); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("no session request received: %w", err)
	}
	if meta := c.PeerMeta(); meta != nil {
		fmt.Printf("Session request from %s (%s)\n", meta.Name, meta.URL)
	} else {
		fmt.Printf("Session request from %s\n", c.PeerID())
	}
	return c, nil
}

func waitUntil(ctx context.Context, cond func() bool) error {
	t := time.NewTicker(50 * time.Millisecond)
	defer t.Stop()
	for !cond() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	return nil
}

func approveCmd() *cobra.Command {
	var (
		accounts []string
		chainID  int64
		wait     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "approve <uri>",
		Short: "Join a wc: URI as the wallet and approve the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := interruptible(cmd.Context())
			defer stop()
			ctx, cancel := context.WithTimeout(ctx, wait)
			defer cancel()

			c, err := joinURI(ctx, args[0])
			if err != nil {
				return err
			}
			defer c.Close()

			if err := c.ApproveSession(domain.SessionParams{
				ChainID:  chainID,
				Accounts: accounts,
			}); err != nil {
				return err
			}
			fmt.Println("Session approved.")
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&accounts, "account", nil, "account to expose (repeatable)")
	cmd.Flags().Int64Var(&chainID, "chain-id", 1, "chain to report")
	cmd.Flags().DurationVar(&wait, "wait", 30*time.Second, "how long to wait for the session request")
	_ = cmd.MarkFlagRequired("account")
	return cmd
}

func rejectCmd() *cobra.Command {
	var (
		message string
		wait    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "reject <uri>",
		Short: "Join a wc: URI as the wallet and reject the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := interruptible(cmd.Context())
			defer stop()
			ctx, cancel := context.WithTimeout(ctx, wait)
			defer cancel()

			c, err := joinURI(ctx, args[0])
			if err != nil {
				return err
			}
			defer c.Close()

			if err := c.RejectSession(message); err != nil {
				return err
			}
			fmt.Println("Session rejected.")
			return nil
		},
	}
	cmd.Flags().StringVar(&message, "message", "", "reason sent to the peer")
	cmd.Flags().DurationVar(&wait, "wait", 30*time.Second, "how long to wait for the session request")
	return cmd
}
