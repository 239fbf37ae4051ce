package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"wconnect/internal/app"
	"wconnect/internal/domain"
	"wconnect/internal/events"
	"wconnect/internal/protocol/jsonrpc"
	"wconnect/internal/services/connector"
)

var errNoSession = errors.New("no session stored; run session or approve first")

// resume opens the stored session.
func resume() (*app.Client, error) {
	if _, ok, err := appCtx.StoredSession(); err != nil {
		return nil, err
	} else if !ok {
		return nil, errNoSession
	}
	c, err := appCtx.Open(connector.Options{}, nil)
	if err != nil {
		return nil, err
	}
	if !c.Connected() {
		_ = c.Close()
		return nil, errNoSession
	}
	return c, nil
}

func callCmd() *cobra.Command {
	var (
		timeout time.Duration
		push    bool
	)
	cmd := &cobra.Command{
		Use:   "call <method> [params-json]",
		Short: "Send a JSON-RPC request to the peer and print the result",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := jsonrpc.Request{Method: args[0]}
			if len(args) == 2 {
				var params json.RawMessage
				if err := json.Unmarshal([]byte(args[1]), &params); err != nil {
					return fmt.Errorf("params: %w", err)
				}
				req.Params = params
			}

			c, err := resume()
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, stop := interruptible(cmd.Context())
			defer stop()
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			var opts []connector.CallOption
			if push {
				opts = append(opts, connector.WithPushNotification())
			}
			result, err := c.SendCustomRequest(ctx, req, opts...)
			if err != nil {
				return err
			}
			fmt.Println(string(result))
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "how long to wait for the answer")
	cmd.Flags().BoolVar(&push, "push", false, "ask the bridge to push-notify the peer")
	return cmd
}

func listenCmd() *cobra.Command {
	var reject bool
	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Print requests and updates arriving on the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := resume()
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, stop := interruptible(cmd.Context())
			defer stop()
			ended := make(chan string, 1)

			c.On(events.CallRequest, func(_ error, msg *domain.Message) {
				fmt.Printf("request %d %s %s\n", msg.ID, msg.Method, string(msg.Params))
				if !reject {
					return
				}
				if err := c.RejectRequest(domain.JSONRPCResponse{ID: msg.ID}); err != nil {
					fmt.Printf("reject %d: %v\n", msg.ID, err)
				}
			})
			c.On(events.SessionUpdate, func(_ error, msg *domain.Message) {
				var params []domain.SessionStatus
				if err := msg.DecodeParams(&params); err == nil && len(params) > 0 {
					fmt.Println("session updated")
					printStatus(params[0])
				}
			})
			c.On(events.Disconnect, func(_ error, msg *domain.Message) {
				var params []domain.SessionError
				reason := "disconnected"
				if err := msg.DecodeParams(&params); err == nil && len(params) > 0 {
					reason = params[0].Message
				}
				select {
				case ended <- reason:
				default:
				}
			})

			fmt.Println("Listening; press Ctrl-C to stop.")
			select {
			case reason := <-ended:
				fmt.Println("Session ended:", reason)
			case <-ctx.Done():
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&reject, "reject", false, "reject every request with the default error")
	return cmd
}

func killCmd() *cobra.Command {
	var (
		message string
		wait    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "kill",
		Short: "End the stored session and notify the peer",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := resume()
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), wait)
			defer cancel()
			if err := c.WaitOnline(ctx); err != nil {
				return err
			}
			if err := c.KillSession(message); err != nil {
				return err
			}
			fmt.Println("Session killed.")
			return nil
		},
	}
	cmd.Flags().StringVar(&message, "message", "", "reason sent to the peer")
	cmd.Flags().DurationVar(&wait, "wait", 10*time.Second, "how long to wait for the bridge")
	return cmd
}
