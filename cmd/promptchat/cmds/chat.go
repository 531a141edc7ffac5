package cmds

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/zhouzirui/prompt-chat/backend/internal/model/chat"
	"github.com/zhouzirui/prompt-chat/backend/internal/render/terminal"
	chatservice "github.com/zhouzirui/prompt-chat/backend/internal/service/chat"
)

const chatHelp = `commands:
  /new            start a new session
  /export [path]  write the history as JSON
  /copy           copy the last reply to the clipboard
  /help           show this help
  /quit           leave`

// copyToClipboard is swapped out in tests.
var copyToClipboard = clipboard.WriteAll

func newChatCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive chat in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			mode, err := terminal.ParseMode(output)
			if err != nil {
				return err
			}

			repl := &chatREPL{
				conv: chatservice.NewConversation(a.webhookClient(), nil),
				r:    terminal.New(cmd.OutOrStdout(), mode),
			}
			return repl.run(cmd, cmd.InOrStdin())
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "auto", "reply rendering: auto, styled, raw, html")
	return cmd
}

type chatREPL struct {
	conv      *chatservice.Conversation
	r         *terminal.Renderer
	lastReply string
}

func (c *chatREPL) run(cmd *cobra.Command, in io.Reader) error {
	c.r.Info("session %s (type /help for commands)", c.conv.SessionID())

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			quit, err := c.command(line)
			if err != nil {
				c.r.Info("error: %v", err)
			}
			if quit {
				return nil
			}
			continue
		}

		exchange, err := c.conv.Send(cmd.Context(), line)
		if err != nil {
			c.r.Info("error: %v", err)
			continue
		}
		c.lastReply = exchange.Assistant.Content
		c.r.Message(exchange.Assistant, exchange.Failed())

		if cmd.Context().Err() != nil {
			return nil
		}
	}
	return scanner.Err()
}

func (c *chatREPL) command(line string) (bool, error) {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		return true, nil
	case "/help":
		c.r.Info(chatHelp)
	case "/new":
		session := c.conv.NewSession()
		c.lastReply = ""
		c.r.Info("new session %s", session.ID)
	case "/export":
		path := c.conv.ExportFileName()
		if len(fields) > 1 {
			path = fields[1]
		}
		if err := writeExport(path, c.conv.ExportSnapshot()); err != nil {
			return false, err
		}
		c.r.Info("history exported to %s", path)
	case "/copy":
		if c.lastReply == "" {
			return false, errors.New("no reply to copy yet")
		}
		if err := copyToClipboard(c.lastReply); err != nil {
			return false, errors.Wrap(err, "copy to clipboard")
		}
		c.r.Info("reply copied")
	default:
		return false, errors.Errorf("unknown command %s", fields[0])
	}
	return false, nil
}

func writeExport(path string, snapshot chat.Snapshot) error {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode export")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}
