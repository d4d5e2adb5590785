package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/satriahrh/scorelink/domain/entities"
)

const (
	defaultURL = "ws://localhost:8081/ws"
	dialWait   = 5 * time.Second
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "sensorctl",
		Short:         "Send and watch sensor events on the relay",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("url", defaultURL, "relay websocket URL")

	root.AddCommand(newListenCmd(), newEmitCmd())
	return root
}

func newListenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Print every relayed sensor event",
		Long: `Connect to the relay and print the data of each sensor event, one
JSON document per line, until interrupted or --count events were seen.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := cmd.Flags().GetString("url")
			if err != nil {
				return fmt.Errorf("failed to read 'url' flag: %w", err)
			}
			count, err := cmd.Flags().GetInt("count")
			if err != nil {
				return fmt.Errorf("failed to read 'count' flag: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return listen(ctx, url, count, cmd.OutOrStdout())
		},
	}
	cmd.Flags().Int("count", 0, "exit after this many events (0 = unlimited)")
	return cmd
}

func newEmitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "emit <payload>",
		Short: "Send one sensor event",
		Long: `Send one sensor event whose data is the given JSON document.

Example:
  sensorctl emit '{"x":1,"y":2}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := cmd.Flags().GetString("url")
			if err != nil {
				return fmt.Errorf("failed to read 'url' flag: %w", err)
			}
			if err := emit(cmd.Context(), url, json.RawMessage(args[0])); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "sent")
			return nil
		},
	}
}

func dial(ctx context.Context, url string) (*websocket.Conn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, dialWait)
	defer cancel()

	conn, resp, err := websocket.DefaultDialer.DialContext(dialCtx, url, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("connect %s: status %d: %w", url, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("connect %s: %w", url, err)
	}
	return conn, nil
}

func emit(ctx context.Context, url string, payload json.RawMessage) error {
	if !json.Valid(payload) {
		return fmt.Errorf("payload is not valid JSON: %s", payload)
	}

	conn, err := dial(ctx, url)
	if err != nil {
		return err
	}
	defer conn.Close()

	event := entities.SensorEvent{Name: entities.SensorEventName, Payload: payload}
	if err := conn.WriteJSON(event); err != nil {
		return fmt.Errorf("send event: %w", err)
	}

	// polite close so the relay sees a normal closure
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	return nil
}

func listen(ctx context.Context, url string, count int, out io.Writer) error {
	conn, err := dial(ctx, url)
	if err != nil {
		return err
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	seen := 0
	for count <= 0 || seen < count {
		var event entities.SensorEvent
		if err := conn.ReadJSON(&event); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read event: %w", err)
		}
		if !event.IsSensor() {
			continue
		}
		seen++
		fmt.Fprintln(out, string(event.Payload))
	}
	return nil
}
