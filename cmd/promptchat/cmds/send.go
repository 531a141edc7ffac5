package cmds

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/zhouzirui/prompt-chat/backend/internal/render/terminal"
	"github.com/zhouzirui/prompt-chat/backend/internal/service/chat"
)

func newSendCmd(a *app) *cobra.Command {
	var (
		sessionID string
		output    string
	)

	cmd := &cobra.Command{
		Use:   "send MESSAGE...",
		Short: "Send one message and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := terminal.ParseMode(output)
			if err != nil {
				return err
			}

			var opts []chat.StoreOption
			if sessionID != "" {
				opts = append(opts, chat.WithSessionIDGenerator(func(time.Time) string { return sessionID }))
			}
			conv := chat.NewConversation(a.webhookClient(), chat.NewStore(opts...))

			exchange, err := conv.Send(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}

			r := terminal.New(cmd.OutOrStdout(), mode)
			fmt.Fprintln(cmd.OutOrStdout(), r.Reply(exchange.Assistant.Content))
			if exchange.Failed() {
				return errors.Wrap(exchange.Err, "webhook call failed")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionID, "session-id", "", "reuse an existing session id instead of minting one")
	cmd.Flags().StringVarP(&output, "output", "o", "auto", "reply rendering: auto, styled, raw, html")
	return cmd
}
