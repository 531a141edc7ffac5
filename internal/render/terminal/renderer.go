// Package terminal prints chat exchanges for the command line client.
package terminal

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/zhouzirui/prompt-chat/backend/internal/analysis/markup"
	"github.com/zhouzirui/prompt-chat/backend/internal/model/chat"
)

// Mode selects how assistant replies are printed.
type Mode string

const (
	// ModeAuto styles output on terminals and prints raw text otherwise.
	ModeAuto   Mode = "auto"
	ModeStyled Mode = "styled"
	ModeRaw    Mode = "raw"
	// ModeHTML prints the widget markup.
	ModeHTML Mode = "html"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeAuto, nil
	case ModeAuto, ModeStyled, ModeRaw, ModeHTML:
		return m, nil
	default:
		return "", fmt.Errorf("unknown output mode %q (want auto, styled, raw or html)", s)
	}
}

var (
	userLabel      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4ecdc4"))
	assistantLabel = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff6b6b"))
	errorLabel     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ef4444"))
	dim            = lipgloss.NewStyle().Faint(true)
)

// Renderer writes messages to an output stream.
type Renderer struct {
	out    io.Writer
	styled bool
	mode   Mode
}

// New creates a Renderer. ModeAuto resolves against whether out is a TTY.
func New(out io.Writer, mode Mode) *Renderer {
	styled := mode == ModeStyled
	if mode == ModeAuto || mode == "" {
		styled = isTerminal(out)
	}
	return &Renderer{out: out, styled: styled, mode: mode}
}

// Styled reports whether ANSI styling is applied.
func (r *Renderer) Styled() bool {
	return r.styled
}

// Reply formats assistant text according to the renderer mode.
func (r *Renderer) Reply(text string) string {
	switch {
	case r.mode == ModeHTML:
		return markup.Format(text)
	case r.styled:
		rendered, err := glamour.Render(text, "dark")
		if err != nil {
			return text
		}
		return strings.TrimRight(rendered, "\n")
	default:
		return text
	}
}

// Message prints a single history entry with its role label.
func (r *Renderer) Message(msg chat.Message, failed bool) {
	label := "you"
	style := userLabel
	body := msg.Content
	if msg.Role == chat.RoleAssistant {
		label = "assistant"
		style = assistantLabel
		if failed {
			style = errorLabel
		}
		body = r.Reply(msg.Content)
	}

	if r.styled {
		label = style.Render(label)
	}
	fmt.Fprintf(r.out, "%s> %s\n", label, body)
}

// Info prints a secondary status line.
func (r *Renderer) Info(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	if r.styled {
		line = dim.Render(line)
	}
	fmt.Fprintln(r.out, line)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd())
}
